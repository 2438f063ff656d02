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

const betColumns = `bet_id, guild_id, player_id, pending_match_id, match_id, team_bet_on,
	amount, leverage, is_blind, odds_at_placement, payout, status, placed_at`

func scanBet(row scanner) (*models.Bet, error) {
	var b models.Bet
	var side int
	err := row.Scan(&b.ID, &b.GuildID, &b.PlayerID, &b.PendingMatchID, &b.MatchID, &side,
		&b.Amount, &b.Leverage, &b.IsBlind, &b.OddsAtPlacement, &b.Payout, &b.Status, &b.PlacedAt)
	if err != nil {
		return nil, err
	}
	b.Side = models.Side(side)
	return &b, nil
}

// InsertBet stores an accepted primary-pool wager and returns its id.
func (s *Store) InsertBet(scope *envelope.Scope, q Queryer, b *models.Bet) (int64, error) {
	var betID int64
	err := q.QueryRowContext(scope.Ctx,
		`INSERT INTO bets (guild_id, player_id, pending_match_id, match_id, team_bet_on,
			amount, leverage, is_blind, odds_at_placement, payout, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING bet_id`,
		b.GuildID, b.PlayerID, b.PendingMatchID, b.MatchID, int(b.Side),
		b.Amount, b.Leverage, b.IsBlind, b.OddsAtPlacement, b.Payout, b.Status, b.PlacedAt).Scan(&betID)
	if err != nil {
		return 0, fmt.Errorf("insert bet: %w", err)
	}
	return betID, nil
}

// GetOpenBet returns a player's open wager on a pending match, or
// ErrBetNotFound when none exists.
func (s *Store) GetOpenBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, playerID int64) (*models.Bet, error) {
	row := q.QueryRowContext(scope.Ctx,
		`SELECT `+betColumns+` FROM bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND player_id = $3 AND status = $4`,
		guildID, pendingMatchID, playerID, constants.BetStatusOpen)
	b, err := scanBet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrBetNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get open bet: %w", err)
	}
	return b, nil
}

// GetOpenBets lists every open wager riding on a pending match.
func (s *Store) GetOpenBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.Bet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+betColumns+` FROM bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3
		ORDER BY bet_id`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("get open bets: %w", err)
	}
	defer rows.Close()

	var bets []models.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

// PoolTotals sums the leveraged open wagers per side of a pending match.
func (s *Store) PoolTotals(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) (models.PoolOdds, error) {
	var odds models.PoolOdds
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT team_bet_on, COALESCE(SUM(amount * leverage), 0)
		FROM bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3
		GROUP BY team_bet_on`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return odds, fmt.Errorf("pool totals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var side int
		var total int64
		if err := rows.Scan(&side, &total); err != nil {
			return odds, fmt.Errorf("scan pool total: %w", err)
		}
		switch models.Side(side) {
		case models.SideRadiant:
			odds.RadiantTotal = total
		case models.SideDire:
			odds.DireTotal = total
		}
	}
	if err := rows.Err(); err != nil {
		return odds, err
	}
	odds.Total = odds.RadiantTotal + odds.DireTotal
	return odds, nil
}

// SettleBet finalizes one wager: tags it with the real match, stores
// the payout, and flips the status to won or lost.
func (s *Store) SettleBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error {
	res, err := q.ExecContext(scope.Ctx,
		`UPDATE bets SET match_id = $2, payout = $3, status = $4 WHERE bet_id = $1`,
		betID, matchID, payout, status)
	if err != nil {
		return fmt.Errorf("settle bet: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("settle bet: %w", err)
	}
	if n == 0 {
		return models.ErrBetNotFound
	}
	return nil
}

// GetSettledBets lists the wagers tagged to a recorded match, for
// result corrections.
func (s *Store) GetSettledBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.Bet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+betColumns+` FROM bets
		WHERE guild_id = $1 AND match_id = $2
		ORDER BY bet_id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get settled bets: %w", err)
	}
	defer rows.Close()

	var bets []models.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		bets = append(bets, *b)
	}
	return bets, rows.Err()
}

// ResettleBet rewrites payout and status after a result correction.
func (s *Store) ResettleBet(scope *envelope.Scope, q Queryer, betID, payout int64, status string) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE bets SET payout = $2, status = $3 WHERE bet_id = $1`,
		betID, payout, status)
	if err != nil {
		return fmt.Errorf("resettle bet: %w", err)
	}
	return nil
}

// DeleteOpenBets removes the open wagers of an aborted pending match.
// Refunds happen before this in the same transaction.
func (s *Store) DeleteOpenBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM bets WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return fmt.Errorf("delete open bets: %w", err)
	}
	return nil
}
