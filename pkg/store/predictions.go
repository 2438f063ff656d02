// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const predictionColumns = `prediction_id, guild_id, creator_id, question, status, outcome,
	resolution_votes, created_at, closes_at, resolved_at, resolved_by`

func scanPrediction(row scanner) (*models.Prediction, error) {
	var p models.Prediction
	var outcome sql.NullBool
	var votes []byte
	err := row.Scan(&p.ID, &p.GuildID, &p.CreatorID, &p.Question, &p.Status, &outcome,
		&votes, &p.CreatedAt, &p.ClosesAt, &p.ResolvedAt, &p.ResolvedBy)
	if err != nil {
		return nil, err
	}
	if outcome.Valid {
		v := outcome.Bool
		p.Outcome = &v
	}
	p.ResolutionVotes = make(map[int64]models.PredictionVote)
	if len(votes) > 0 {
		if err := json.Unmarshal(votes, &p.ResolutionVotes); err != nil {
			return nil, fmt.Errorf("unmarshal resolution votes: %w", err)
		}
	}
	return &p, nil
}

// CreatePrediction opens a market and returns its id.
func (s *Store) CreatePrediction(scope *envelope.Scope, q Queryer, p *models.Prediction) (int64, error) {
	votes, err := json.Marshal(p.ResolutionVotes)
	if err != nil {
		return 0, fmt.Errorf("marshal resolution votes: %w", err)
	}
	var id int64
	err = q.QueryRowContext(scope.Ctx,
		`INSERT INTO predictions (guild_id, creator_id, question, status, resolution_votes, created_at, closes_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING prediction_id`,
		p.GuildID, p.CreatorID, p.Question, p.Status, votes, p.CreatedAt, p.ClosesAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create prediction: %w", err)
	}
	return id, nil
}

func (s *Store) GetPrediction(scope *envelope.Scope, q Queryer, guildID, predictionID int64) (*models.Prediction, error) {
	row := q.QueryRowContext(scope.Ctx,
		`SELECT `+predictionColumns+` FROM predictions WHERE guild_id = $1 AND prediction_id = $2`,
		guildID, predictionID)
	p, err := scanPrediction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrPredictionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction: %w", err)
	}
	return p, nil
}

// ListPredictions returns the guild's markets in one status, newest
// first.
func (s *Store) ListPredictions(scope *envelope.Scope, q Queryer, guildID int64, status string, limit int) ([]models.Prediction, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+predictionColumns+` FROM predictions
		WHERE guild_id = $1 AND status = $2
		ORDER BY created_at DESC, prediction_id DESC LIMIT $3`,
		guildID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		predictions = append(predictions, *p)
	}
	return predictions, rows.Err()
}

// ListExpiredOpenPredictions returns open markets whose close time has
// passed, for the sweep.
func (s *Store) ListExpiredOpenPredictions(scope *envelope.Scope, q Queryer, guildID, now int64) ([]models.Prediction, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+predictionColumns+` FROM predictions
		WHERE guild_id = $1 AND status = $2 AND closes_at <= $3
		ORDER BY closes_at, prediction_id`,
		guildID, constants.PredictionStatusOpen, now)
	if err != nil {
		return nil, fmt.Errorf("list expired predictions: %w", err)
	}
	defer rows.Close()

	var predictions []models.Prediction
	for rows.Next() {
		p, err := scanPrediction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		predictions = append(predictions, *p)
	}
	return predictions, rows.Err()
}

// UpdatePrediction rewrites the mutable fields of a market.
func (s *Store) UpdatePrediction(scope *envelope.Scope, q Queryer, p *models.Prediction) error {
	votes, err := json.Marshal(p.ResolutionVotes)
	if err != nil {
		return fmt.Errorf("marshal resolution votes: %w", err)
	}
	var outcome sql.NullBool
	if p.Outcome != nil {
		outcome = sql.NullBool{Bool: *p.Outcome, Valid: true}
	}
	res, err := q.ExecContext(scope.Ctx,
		`UPDATE predictions SET status = $3, outcome = $4, resolution_votes = $5,
			closes_at = $6, resolved_at = $7, resolved_by = $8
		WHERE guild_id = $1 AND prediction_id = $2`,
		p.GuildID, p.ID, p.Status, outcome, votes, p.ClosesAt, p.ResolvedAt, p.ResolvedBy)
	if err != nil {
		return fmt.Errorf("update prediction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update prediction: %w", err)
	}
	if n == 0 {
		return models.ErrPredictionNotFound
	}
	return nil
}

// InsertPredictionBet stores one accepted position.
func (s *Store) InsertPredictionBet(scope *envelope.Scope, q Queryer, b *models.PredictionBet) (int64, error) {
	var id int64
	err := q.QueryRowContext(scope.Ctx,
		`INSERT INTO prediction_bets (prediction_id, guild_id, player_id, position, amount, payout, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING bet_id`,
		b.PredictionID, b.GuildID, b.PlayerID, b.Position, b.Amount, b.Payout, b.PlacedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert prediction bet: %w", err)
	}
	return id, nil
}

func (s *Store) GetPredictionBets(scope *envelope.Scope, q Queryer, guildID, predictionID int64) ([]models.PredictionBet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT bet_id, prediction_id, guild_id, player_id, position, amount, payout, placed_at
		FROM prediction_bets WHERE guild_id = $1 AND prediction_id = $2 ORDER BY bet_id`,
		guildID, predictionID)
	if err != nil {
		return nil, fmt.Errorf("get prediction bets: %w", err)
	}
	defer rows.Close()

	var bets []models.PredictionBet
	for rows.Next() {
		var b models.PredictionBet
		if err := rows.Scan(&b.ID, &b.PredictionID, &b.GuildID, &b.PlayerID, &b.Position, &b.Amount, &b.Payout, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan prediction bet: %w", err)
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// GetPredictionPosition returns a player's existing position on a
// market, nil when they have not bet.
func (s *Store) GetPredictionPosition(scope *envelope.Scope, q Queryer, guildID, predictionID, playerID int64) (*models.PredictionBet, error) {
	var b models.PredictionBet
	err := q.QueryRowContext(scope.Ctx,
		`SELECT bet_id, prediction_id, guild_id, player_id, position, amount, payout, placed_at
		FROM prediction_bets
		WHERE guild_id = $1 AND prediction_id = $2 AND player_id = $3
		ORDER BY bet_id LIMIT 1`,
		guildID, predictionID, playerID).Scan(&b.ID, &b.PredictionID, &b.GuildID, &b.PlayerID,
		&b.Position, &b.Amount, &b.Payout, &b.PlacedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get prediction position: %w", err)
	}
	return &b, nil
}

// PredictionTotals sums the backed amounts per position.
func (s *Store) PredictionTotals(scope *envelope.Scope, q Queryer, guildID, predictionID int64) (models.PredictionOdds, error) {
	var odds models.PredictionOdds
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT position, COALESCE(SUM(amount), 0)
		FROM prediction_bets WHERE guild_id = $1 AND prediction_id = $2
		GROUP BY position`,
		guildID, predictionID)
	if err != nil {
		return odds, fmt.Errorf("prediction totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var position bool
		var total int64
		if err := rows.Scan(&position, &total); err != nil {
			return odds, fmt.Errorf("scan prediction total: %w", err)
		}
		if position {
			odds.YesTotal = total
		} else {
			odds.NoTotal = total
		}
	}
	if err := rows.Err(); err != nil {
		return odds, err
	}
	odds.Total = odds.YesTotal + odds.NoTotal
	return odds, nil
}

// SetPredictionBetPayout records what one position received.
func (s *Store) SetPredictionBetPayout(scope *envelope.Scope, q Queryer, betID, payout int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE prediction_bets SET payout = $2 WHERE bet_id = $1`,
		betID, payout)
	if err != nil {
		return fmt.Errorf("set prediction bet payout: %w", err)
	}
	return nil
}
