// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// GetBankruptcyState returns a player's declaration history,
// zero-valued when the player never declared.
func (s *Store) GetBankruptcyState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.BankruptcyState, error) {
	state := models.BankruptcyState{PlayerID: playerID, GuildID: guildID}
	err := q.QueryRowContext(scope.Ctx,
		`SELECT last_bankruptcy_at, penalty_games_remaining, bankruptcy_count
		FROM bankruptcy_state WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID).Scan(&state.LastBankruptcyAt, &state.PenaltyGamesRemaining, &state.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get bankruptcy state: %w", err)
	}
	return state, nil
}

func (s *Store) UpsertBankruptcyState(scope *envelope.Scope, q Queryer, state models.BankruptcyState) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO bankruptcy_state (guild_id, player_id, last_bankruptcy_at, penalty_games_remaining, bankruptcy_count)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, player_id) DO UPDATE SET
			last_bankruptcy_at = EXCLUDED.last_bankruptcy_at,
			penalty_games_remaining = EXCLUDED.penalty_games_remaining,
			bankruptcy_count = EXCLUDED.bankruptcy_count`,
		state.GuildID, state.PlayerID, state.LastBankruptcyAt, state.PenaltyGamesRemaining, state.Count)
	if err != nil {
		return fmt.Errorf("upsert bankruptcy state: %w", err)
	}
	return nil
}

// GetPenaltyStates returns the active penalty windows among the given
// players, keyed by player id.
func (s *Store) GetPenaltyStates(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) (map[int64]models.BankruptcyState, error) {
	if len(playerIDs) == 0 {
		return map[int64]models.BankruptcyState{}, nil
	}
	args := make([]interface{}, 0, len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT player_id, guild_id, last_bankruptcy_at, penalty_games_remaining, bankruptcy_count
		FROM bankruptcy_state
		WHERE guild_id = $1 AND player_id IN (`+placeholders(2, len(playerIDs))+`)
			AND penalty_games_remaining > 0`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get penalty states: %w", err)
	}
	defer rows.Close()

	states := make(map[int64]models.BankruptcyState)
	for rows.Next() {
		var state models.BankruptcyState
		err := rows.Scan(&state.PlayerID, &state.GuildID, &state.LastBankruptcyAt,
			&state.PenaltyGamesRemaining, &state.Count)
		if err != nil {
			return nil, fmt.Errorf("scan bankruptcy state: %w", err)
		}
		states[state.PlayerID] = state
	}
	return states, rows.Err()
}

// DecrementPenaltyGames burns one penalty game off a winner's window.
func (s *Store) DecrementPenaltyGames(scope *envelope.Scope, q Queryer, guildID, playerID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE bankruptcy_state SET penalty_games_remaining = GREATEST(0, penalty_games_remaining - 1)
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID)
	if err != nil {
		return fmt.Errorf("decrement penalty games: %w", err)
	}
	return nil
}
