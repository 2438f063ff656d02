// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// InsertStakeRows seats every drafted player in the stake pool.
func (s *Store) InsertStakeRows(scope *envelope.Scope, q Queryer, rows []models.StakeRow) error {
	for _, r := range rows {
		_, err := q.ExecContext(scope.Ctx,
			`INSERT INTO player_stakes (guild_id, player_id, pending_match_id, team, is_excluded, payout, staked_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			r.GuildID, r.PlayerID, r.PendingMatchID, int(r.Team), r.IsExcluded, r.Payout, r.StakedAt)
		if err != nil {
			return fmt.Errorf("insert stake row: %w", err)
		}
	}
	return nil
}

func (s *Store) GetStakeRows(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.StakeRow, error) {
	return s.queryStakeRows(scope, q,
		`SELECT stake_id, guild_id, player_id, pending_match_id, match_id, team, is_excluded, payout, staked_at
		FROM player_stakes WHERE guild_id = $1 AND pending_match_id = $2 ORDER BY stake_id`,
		guildID, pendingMatchID)
}

// GetStakeRowsByMatch returns the settled stake rows of a recorded
// match. Settlement stamps the match id on each row.
func (s *Store) GetStakeRowsByMatch(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.StakeRow, error) {
	return s.queryStakeRows(scope, q,
		`SELECT stake_id, guild_id, player_id, pending_match_id, match_id, team, is_excluded, payout, staked_at
		FROM player_stakes WHERE guild_id = $1 AND match_id = $2 ORDER BY stake_id`,
		guildID, matchID)
}

func (s *Store) queryStakeRows(scope *envelope.Scope, q Queryer, query string, args ...any) ([]models.StakeRow, error) {
	rows, err := q.QueryContext(scope.Ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get stake rows: %w", err)
	}
	defer rows.Close()

	var stakes []models.StakeRow
	for rows.Next() {
		var r models.StakeRow
		var team int
		if err := rows.Scan(&r.ID, &r.GuildID, &r.PlayerID, &r.PendingMatchID, &r.MatchID, &team, &r.IsExcluded, &r.Payout, &r.StakedAt); err != nil {
			return nil, fmt.Errorf("scan stake row: %w", err)
		}
		r.Team = models.Side(team)
		stakes = append(stakes, r)
	}
	return stakes, rows.Err()
}

// SetStakePayout records the minted winnings of one seat and stamps the
// match it settled under.
func (s *Store) SetStakePayout(scope *envelope.Scope, q Queryer, stakeID, matchID, payout int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE player_stakes SET match_id = $2, payout = $3 WHERE stake_id = $1`,
		stakeID, matchID, payout)
	if err != nil {
		return fmt.Errorf("set stake payout: %w", err)
	}
	return nil
}

func (s *Store) DeleteStakeRows(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM player_stakes WHERE guild_id = $1 AND pending_match_id = $2`,
		guildID, pendingMatchID)
	if err != nil {
		return fmt.Errorf("delete stake rows: %w", err)
	}
	return nil
}

// InsertPlayerPoolBet stores a drafted player's optional stake-pool
// wager. The unique constraint rejects a second bet on the same match.
func (s *Store) InsertPlayerPoolBet(scope *envelope.Scope, q Queryer, b *models.PlayerPoolBet) (int64, error) {
	var betID int64
	err := q.QueryRowContext(scope.Ctx,
		`INSERT INTO player_pool_bets (guild_id, player_id, pending_match_id, match_id, team_bet_on, amount, payout, status, placed_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING bet_id`,
		b.GuildID, b.PlayerID, b.PendingMatchID, b.MatchID, int(b.Side), b.Amount, b.Payout, b.Status, b.PlacedAt).Scan(&betID)
	if err != nil {
		return 0, fmt.Errorf("insert player pool bet: %w", err)
	}
	return betID, nil
}

func (s *Store) GetOpenPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.PlayerPoolBet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT bet_id, guild_id, player_id, pending_match_id, match_id, team_bet_on, amount, payout, status, placed_at
		FROM player_pool_bets
		WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3
		ORDER BY bet_id`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("get open player pool bets: %w", err)
	}
	defer rows.Close()

	var bets []models.PlayerPoolBet
	for rows.Next() {
		var b models.PlayerPoolBet
		var side int
		if err := rows.Scan(&b.ID, &b.GuildID, &b.PlayerID, &b.PendingMatchID, &b.MatchID, &side, &b.Amount, &b.Payout, &b.Status, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan player pool bet: %w", err)
		}
		b.Side = models.Side(side)
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// GetSettledPlayerPoolBets returns the bets a recorded match resolved,
// for corrections.
func (s *Store) GetSettledPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.PlayerPoolBet, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT bet_id, guild_id, player_id, pending_match_id, match_id, team_bet_on, amount, payout, status, placed_at
		FROM player_pool_bets
		WHERE guild_id = $1 AND match_id = $2
		ORDER BY bet_id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get settled player pool bets: %w", err)
	}
	defer rows.Close()

	var bets []models.PlayerPoolBet
	for rows.Next() {
		var b models.PlayerPoolBet
		var side int
		if err := rows.Scan(&b.ID, &b.GuildID, &b.PlayerID, &b.PendingMatchID, &b.MatchID, &side, &b.Amount, &b.Payout, &b.Status, &b.PlacedAt); err != nil {
			return nil, fmt.Errorf("scan player pool bet: %w", err)
		}
		b.Side = models.Side(side)
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func (s *Store) HasPlayerPoolBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, playerID int64) (bool, error) {
	var exists bool
	err := q.QueryRowContext(scope.Ctx,
		`SELECT EXISTS (
			SELECT 1 FROM player_pool_bets
			WHERE guild_id = $1 AND pending_match_id = $2 AND player_id = $3 AND status = $4
		)`,
		guildID, pendingMatchID, playerID, constants.BetStatusOpen).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("has player pool bet: %w", err)
	}
	return exists, nil
}

func (s *Store) SettlePlayerPoolBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE player_pool_bets SET match_id = $2, payout = $3, status = $4 WHERE bet_id = $1`,
		betID, matchID, payout, status)
	if err != nil {
		return fmt.Errorf("settle player pool bet: %w", err)
	}
	return nil
}

func (s *Store) DeleteOpenPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM player_pool_bets WHERE guild_id = $1 AND pending_match_id = $2 AND status = $3`,
		guildID, pendingMatchID, constants.BetStatusOpen)
	if err != nil {
		return fmt.Errorf("delete open player pool bets: %w", err)
	}
	return nil
}
