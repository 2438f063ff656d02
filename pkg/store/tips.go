// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// InsertTip records a completed transfer.
func (s *Store) InsertTip(scope *envelope.Scope, q Queryer, t models.TipTransaction) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO tip_transactions (guild_id, from_id, to_id, amount, fee, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		t.GuildID, t.FromID, t.ToID, t.Amount, t.Fee, t.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert tip: %w", err)
	}
	return nil
}

// GetTipsSentSince sums what a player tipped out after a cutoff,
// feeding the rate limit.
func (s *Store) GetTipsSentSince(scope *envelope.Scope, q Queryer, guildID, fromID, since int64) (int64, int, error) {
	var total int64
	var count int
	err := q.QueryRowContext(scope.Ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*)
		FROM tip_transactions WHERE guild_id = $1 AND from_id = $2 AND created_at >= $3`,
		guildID, fromID, since).Scan(&total, &count)
	if err != nil {
		return 0, 0, fmt.Errorf("get tips sent: %w", err)
	}
	return total, count, nil
}

func (s *Store) GetRecentTips(scope *envelope.Scope, q Queryer, guildID int64, limit int) ([]models.TipTransaction, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, guild_id, from_id, to_id, amount, fee, created_at
		FROM tip_transactions WHERE guild_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent tips: %w", err)
	}
	defer rows.Close()

	var tips []models.TipTransaction
	for rows.Next() {
		var t models.TipTransaction
		if err := rows.Scan(&t.ID, &t.GuildID, &t.FromID, &t.ToID, &t.Amount, &t.Fee, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan tip: %w", err)
		}
		tips = append(tips, t)
	}
	return tips, rows.Err()
}
