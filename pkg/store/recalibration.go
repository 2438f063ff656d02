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

// GetRecalibrationState returns a player's reset history, zero-valued
// when the player never recalibrated.
func (s *Store) GetRecalibrationState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.RecalibrationState, error) {
	state := models.RecalibrationState{PlayerID: playerID, GuildID: guildID}
	err := q.QueryRowContext(scope.Ctx,
		`SELECT last_recalibration_at, total_recalibrations, rating_at_recalibration
		FROM recalibration_state WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID).Scan(&state.LastRecalibrationAt, &state.Total, &state.RatingAt)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get recalibration state: %w", err)
	}
	return state, nil
}

func (s *Store) UpsertRecalibrationState(scope *envelope.Scope, q Queryer, state models.RecalibrationState) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO recalibration_state (guild_id, player_id, last_recalibration_at, total_recalibrations, rating_at_recalibration)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, player_id) DO UPDATE SET
			last_recalibration_at = EXCLUDED.last_recalibration_at,
			total_recalibrations = EXCLUDED.total_recalibrations,
			rating_at_recalibration = EXCLUDED.rating_at_recalibration`,
		state.GuildID, state.PlayerID, state.LastRecalibrationAt, state.Total, state.RatingAt)
	if err != nil {
		return fmt.Errorf("upsert recalibration state: %w", err)
	}
	return nil
}
