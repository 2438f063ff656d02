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

// UpsertSoftAvoid creates or refreshes a directed avoid request.
func (s *Store) UpsertSoftAvoid(scope *envelope.Scope, q Queryer, a models.SoftAvoid) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO soft_avoids (guild_id, avoider_id, avoided_id, games_remaining, created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, avoider_id, avoided_id) DO UPDATE SET
			games_remaining = EXCLUDED.games_remaining,
			created_at = EXCLUDED.created_at`,
		a.GuildID, a.AvoiderID, a.AvoidedID, a.GamesRemaining, a.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert soft avoid: %w", err)
	}
	return nil
}

// GetSoftAvoid returns the directed avoid row, nil when none exists.
func (s *Store) GetSoftAvoid(scope *envelope.Scope, q Queryer, guildID, avoiderID, avoidedID int64) (*models.SoftAvoid, error) {
	var a models.SoftAvoid
	err := q.QueryRowContext(scope.Ctx,
		`SELECT id, guild_id, avoider_id, avoided_id, games_remaining, created_at
		FROM soft_avoids WHERE guild_id = $1 AND avoider_id = $2 AND avoided_id = $3`,
		guildID, avoiderID, avoidedID).Scan(&a.ID, &a.GuildID, &a.AvoiderID, &a.AvoidedID,
		&a.GamesRemaining, &a.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get soft avoid: %w", err)
	}
	return &a, nil
}

func (s *Store) DeleteSoftAvoid(scope *envelope.Scope, q Queryer, guildID, avoiderID, avoidedID int64) error {
	res, err := q.ExecContext(scope.Ctx,
		`DELETE FROM soft_avoids WHERE guild_id = $1 AND avoider_id = $2 AND avoided_id = $3`,
		guildID, avoiderID, avoidedID)
	if err != nil {
		return fmt.Errorf("delete soft avoid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete soft avoid: %w", err)
	}
	if n == 0 {
		return models.ErrAvoidNotFound
	}
	return nil
}

// CountSoftAvoidsBy returns how many active avoids a player holds.
func (s *Store) CountSoftAvoidsBy(scope *envelope.Scope, q Queryer, guildID, avoiderID int64) (int, error) {
	var count int
	err := q.QueryRowContext(scope.Ctx,
		`SELECT COUNT(*) FROM soft_avoids
		WHERE guild_id = $1 AND avoider_id = $2 AND games_remaining > 0`,
		guildID, avoiderID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count soft avoids: %w", err)
	}
	return count, nil
}

// GetActiveSoftAvoidsAmong returns the avoid requests where both sides
// sit in the given participant set.
func (s *Store) GetActiveSoftAvoidsAmong(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.SoftAvoid, error) {
	if len(playerIDs) < 2 {
		return nil, nil
	}
	args := make([]interface{}, 0, 2*len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	in := placeholders(2, len(playerIDs))
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, guild_id, avoider_id, avoided_id, games_remaining, created_at
		FROM soft_avoids
		WHERE guild_id = $1 AND games_remaining > 0
			AND avoider_id IN (`+in+`) AND avoided_id IN (`+in+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get active soft avoids: %w", err)
	}
	defer rows.Close()

	var avoids []models.SoftAvoid
	for rows.Next() {
		var a models.SoftAvoid
		if err := rows.Scan(&a.ID, &a.GuildID, &a.AvoiderID, &a.AvoidedID, &a.GamesRemaining, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan soft avoid: %w", err)
		}
		avoids = append(avoids, a)
	}
	return avoids, rows.Err()
}

// DecayAvoidsByID burns one game off the given avoid rows, deleting
// the exhausted ones. Shuffles record which rows the split honored and
// settlement passes those ids here.
func (s *Store) DecayAvoidsByID(scope *envelope.Scope, q Queryer, guildID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, guildID)
	for _, id := range ids {
		args = append(args, id)
	}
	in := placeholders(2, len(ids))
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE soft_avoids SET games_remaining = games_remaining - 1
		WHERE guild_id = $1 AND id IN (`+in+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("decay soft avoids: %w", err)
	}
	_, err = q.ExecContext(scope.Ctx,
		`DELETE FROM soft_avoids WHERE guild_id = $1 AND games_remaining <= 0`,
		guildID)
	if err != nil {
		return fmt.Errorf("purge exhausted avoids: %w", err)
	}
	return nil
}

// UpsertPackageDeal creates or refreshes a same-team purchase.
func (s *Store) UpsertPackageDeal(scope *envelope.Scope, q Queryer, d models.PackageDeal) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO package_deals (guild_id, buyer_id, partner_id, games_remaining, cost_paid, created_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (guild_id, buyer_id, partner_id) DO UPDATE SET
			games_remaining = EXCLUDED.games_remaining,
			cost_paid = EXCLUDED.cost_paid,
			created_at = EXCLUDED.created_at`,
		d.GuildID, d.BuyerID, d.PartnerID, d.GamesRemaining, d.CostPaid, d.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert package deal: %w", err)
	}
	return nil
}

// GetPackageDeal returns the deal between buyer and partner, nil when
// none exists.
func (s *Store) GetPackageDeal(scope *envelope.Scope, q Queryer, guildID, buyerID, partnerID int64) (*models.PackageDeal, error) {
	var d models.PackageDeal
	err := q.QueryRowContext(scope.Ctx,
		`SELECT id, guild_id, buyer_id, partner_id, games_remaining, cost_paid, created_at
		FROM package_deals WHERE guild_id = $1 AND buyer_id = $2 AND partner_id = $3`,
		guildID, buyerID, partnerID).Scan(&d.ID, &d.GuildID, &d.BuyerID, &d.PartnerID,
		&d.GamesRemaining, &d.CostPaid, &d.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get package deal: %w", err)
	}
	return &d, nil
}

// GetActivePackageDealsAmong returns the deals where both buyer and
// partner sit in the given participant set.
func (s *Store) GetActivePackageDealsAmong(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.PackageDeal, error) {
	if len(playerIDs) < 2 {
		return nil, nil
	}
	args := make([]interface{}, 0, 2*len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	in := placeholders(2, len(playerIDs))
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, guild_id, buyer_id, partner_id, games_remaining, cost_paid, created_at
		FROM package_deals
		WHERE guild_id = $1 AND games_remaining > 0
			AND buyer_id IN (`+in+`) AND partner_id IN (`+in+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get active package deals: %w", err)
	}
	defer rows.Close()

	var deals []models.PackageDeal
	for rows.Next() {
		var d models.PackageDeal
		if err := rows.Scan(&d.ID, &d.GuildID, &d.BuyerID, &d.PartnerID, &d.GamesRemaining, &d.CostPaid, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan package deal: %w", err)
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// DecayPackageDealsByID burns one game off the given deal rows,
// deleting the exhausted ones.
func (s *Store) DecayPackageDealsByID(scope *envelope.Scope, q Queryer, guildID int64, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, guildID)
	for _, id := range ids {
		args = append(args, id)
	}
	in := placeholders(2, len(ids))
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE package_deals SET games_remaining = games_remaining - 1
		WHERE guild_id = $1 AND id IN (`+in+`)`,
		args...)
	if err != nil {
		return fmt.Errorf("decay package deals: %w", err)
	}
	_, err = q.ExecContext(scope.Ctx,
		`DELETE FROM package_deals WHERE guild_id = $1 AND games_remaining <= 0`,
		guildID)
	if err != nil {
		return fmt.Errorf("purge exhausted package deals: %w", err)
	}
	return nil
}
