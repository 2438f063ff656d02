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
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// SavePendingMatch inserts a new pending row and assigns its id. Multiple
// pending matches may coexist in one guild.
func (s *Store) SavePendingMatch(scope *envelope.Scope, q Queryer, pending *models.PendingMatch) (int64, error) {
	payload, err := json.Marshal(pending)
	if err != nil {
		return 0, fmt.Errorf("marshal pending payload: %w", err)
	}
	var id int64
	err = q.QueryRowContext(scope.Ctx,
		`INSERT INTO pending_matches (guild_id, payload, created_at) VALUES ($1, $2, $3)
		RETURNING pending_match_id`,
		pending.GuildID, payload, pending.CreatedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save pending match: %w", err)
	}
	return id, nil
}

// UpdatePendingMatch rewrites the payload of an existing pending row.
func (s *Store) UpdatePendingMatch(scope *envelope.Scope, q Queryer, pending *models.PendingMatch) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return fmt.Errorf("marshal pending payload: %w", err)
	}
	res, err := q.ExecContext(scope.Ctx,
		`UPDATE pending_matches SET payload = $3 WHERE guild_id = $1 AND pending_match_id = $2`,
		pending.GuildID, pending.ID, payload)
	if err != nil {
		return fmt.Errorf("update pending match: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update pending match rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrNoPendingMatch
	}
	return nil
}

// GetPendingMatchByID loads one pending row.
func (s *Store) GetPendingMatchByID(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	var payload []byte
	err := q.QueryRowContext(scope.Ctx,
		`SELECT payload FROM pending_matches WHERE guild_id = $1 AND pending_match_id = $2`,
		guildID, pendingMatchID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNoPendingMatch
	}
	if err != nil {
		return nil, fmt.Errorf("get pending match: %w", err)
	}
	return unmarshalPending(payload, guildID, pendingMatchID)
}

// GetPendingMatch loads the guild's single pending match. With none it
// reports ErrNoPendingMatch; with several, ErrAmbiguousPending so the
// caller must address one by id.
func (s *Store) GetPendingMatch(scope *envelope.Scope, q Queryer, guildID int64) (*models.PendingMatch, error) {
	pendings, err := s.GetPendingMatches(scope, q, guildID)
	if err != nil {
		return nil, err
	}
	switch len(pendings) {
	case 0:
		return nil, models.ErrNoPendingMatch
	case 1:
		return pendings[0], nil
	default:
		return nil, models.ErrAmbiguousPending
	}
}

// GetPendingMatches lists a guild's pending matches oldest first.
func (s *Store) GetPendingMatches(scope *envelope.Scope, q Queryer, guildID int64) ([]*models.PendingMatch, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT pending_match_id, payload FROM pending_matches WHERE guild_id = $1 ORDER BY created_at, pending_match_id`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("get pending matches: %w", err)
	}
	defer rows.Close()

	var pendings []*models.PendingMatch
	for rows.Next() {
		var id int64
		var payload []byte
		if err := rows.Scan(&id, &payload); err != nil {
			return nil, fmt.Errorf("scan pending match: %w", err)
		}
		pending, err := unmarshalPending(payload, guildID, id)
		if err != nil {
			return nil, err
		}
		pendings = append(pendings, pending)
	}
	return pendings, rows.Err()
}

// GetPendingMatchForPlayer finds the pending match seating a player.
func (s *Store) GetPendingMatchForPlayer(scope *envelope.Scope, q Queryer, guildID, playerID int64) (*models.PendingMatch, error) {
	pendings, err := s.GetPendingMatches(scope, q, guildID)
	if err != nil {
		return nil, err
	}
	for _, pending := range pendings {
		if pending.TeamOf(playerID) != models.SideNone {
			return pending, nil
		}
	}
	return nil, models.ErrNoPendingMatch
}

// DeletePendingMatch removes one pending row.
func (s *Store) DeletePendingMatch(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM pending_matches WHERE guild_id = $1 AND pending_match_id = $2`,
		guildID, pendingMatchID)
	if err != nil {
		return fmt.Errorf("delete pending match: %w", err)
	}
	return nil
}

// DeleteAllPendingMatches clears a guild's pending state.
func (s *Store) DeleteAllPendingMatches(scope *envelope.Scope, q Queryer, guildID int64) (int64, error) {
	res, err := q.ExecContext(scope.Ctx,
		`DELETE FROM pending_matches WHERE guild_id = $1`, guildID)
	if err != nil {
		return 0, fmt.Errorf("delete pending matches: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete pending matches rows affected: %w", err)
	}
	return affected, nil
}

func unmarshalPending(payload []byte, guildID, id int64) (*models.PendingMatch, error) {
	var pending models.PendingMatch
	if err := json.Unmarshal(payload, &pending); err != nil {
		return nil, fmt.Errorf("unmarshal pending payload: %w", err)
	}
	pending.ID = id
	pending.GuildID = guildID
	if pending.Votes == nil {
		pending.Votes = make(map[int64]models.Vote)
	}
	return &pending, nil
}
