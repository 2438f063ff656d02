// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const spectatorBetColumns = `bet_id, guild_id, spectator_id, pending_match_id, match_id, team_bet_on,
	amount, payout, status, placed_at`

func scanSpectatorBet(row scanner) (*models.SpectatorBet, error) {
	var b models.SpectatorBet
	var side int
	err := row.Scan(&b.ID, &b.GuildID, &b.SpectatorID, &b.PendingMatchID, &b.MatchID, &side,
		&b.Amount, &b.Payout, &b.Status, &b.PlacedAt)
	if err != nil {
		return nil, err
	}
	b.Side = models.Side(side)
	return &b, nil
}

// InsertSpectatorBet stores a side-pool wager by a non-participant.
func (s *Store) InsertSpectatorBet(scope *envelope.Scope, q Queryer, b *models.SpectatorBet) (int64, error) {
	var betID int64
	err := q.QueryRowContext(scope.Ctx,
		`INSERT INTO spectator_bets (guild_id, spectator_id, pending_match_id, match_id, team_bet_on, amount, payout, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING bet_id`,
		b.GuildID, b.SpectatorID, b.PendingMatchID, b.MatchID, int(b.Side), b.Amount, b.Payout, b.Status, b.PlacedAt).Scan(&betID)
	if err != nil {
		return 0, fmt.Errorf("insert spectator bet: %w", err)
	}
	return betID, nil
}

func (s *Store) GetOpenSpectatorBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, spectatorID int64) (*models.SpectatorBet, error) {
	row := q.QueryRowContext(scope.Ctx,
		`SELECT `+spectatorBetColumns+` FROM spectator_bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND spectator_id = $3 AND status = $4`,
		guildID, pendingMatchID, spectatorID, constants.BetStatusOpen)
	b, err := scanSpectatorBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get open spectator bet: %w", err)
	}
	return b, nil
}

func (s *Store) GetOpenSpectatorBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.SpectatorBet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+spectatorBetColumns+` FROM spectator_bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3
		ORDER BY bet_id`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("get open spectator bets: %w", err)
	}
	defer rows.Close()

	var bets []models.SpectatorBet
	for rows.Next() {
		b, err := scanSpectatorBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spectator bet: %w", err)
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

// GetSettledSpectatorBets returns the bets a recorded match resolved,
// for corrections.
func (s *Store) GetSettledSpectatorBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.SpectatorBet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+spectatorBetColumns+` FROM spectator_bets
		WHERE guild_id = $1 AND match_id = $2
		ORDER BY bet_id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get settled spectator bets: %w", err)
	}
	defer rows.Close()

	var bets []models.SpectatorBet
	for rows.Next() {
		b, err := scanSpectatorBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan spectator bet: %w", err)
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

func (s *Store) SettleSpectatorBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE spectator_bets SET match_id = $2, payout = $3, status = $4 WHERE bet_id = $1`,
		betID, matchID, payout, status)
	if err != nil {
		return fmt.Errorf("settle spectator bet: %w", err)
	}
	return nil
}

func (s *Store) DeleteOpenSpectatorBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM spectator_bets WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return fmt.Errorf("delete open spectator bets: %w", err)
	}
	return nil
}
