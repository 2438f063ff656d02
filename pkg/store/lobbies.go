// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
)

// SaveLobbySnapshot persists the guild's lobby as an opaque document.
// Restarts rebuild the in-memory lobby from this row.
func (s *Store) SaveLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64, snapshot interface{}, updatedAt int64) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal lobby snapshot: %w", err)
	}
	_, err = q.ExecContext(scope.Ctx,
		`INSERT INTO lobby_state (guild_id, payload, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (guild_id) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		guildID, payload, updatedAt)
	if err != nil {
		return fmt.Errorf("save lobby snapshot: %w", err)
	}
	return nil
}

// LoadLobbySnapshot unmarshals the guild's persisted lobby into the
// given value. Returns false when no snapshot exists.
func (s *Store) LoadLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64, into interface{}) (bool, error) {
	var payload []byte
	err := q.QueryRowContext(scope.Ctx,
		`SELECT payload FROM lobby_state WHERE guild_id = $1`,
		guildID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load lobby snapshot: %w", err)
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return false, fmt.Errorf("unmarshal lobby snapshot: %w", err)
	}
	return true, nil
}

func (s *Store) DeleteLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM lobby_state WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("delete lobby snapshot: %w", err)
	}
	return nil
}
