// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const playerColumns = `player_id, guild_id, username, steam_id, balance, wins, losses,
	exclusion_halves, glicko_rating, glicko_rd, glicko_volatility, os_mu, os_sigma,
	preferred_roles, main_role, charity_games, lowest_balance, last_match_at,
	first_calibrated_at, is_captain_eligible, created_at`

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanPlayer(row scanner) (models.Player, error) {
	var p models.Player
	var roles string
	err := row.Scan(&p.ID, &p.GuildID, &p.Username, &p.SteamID, &p.Balance, &p.Wins, &p.Losses,
		&p.ExclusionHalves, &p.Glicko.Rating, &p.Glicko.RD, &p.Glicko.Volatility,
		&p.OpenSkill.Mu, &p.OpenSkill.Sigma, &roles, &p.MainRole, &p.CharityGames,
		&p.LowestBalance, &p.LastMatchAt, &p.FirstCalibrated, &p.CaptainEligible, &p.CreatedAt)
	if err != nil {
		return models.Player{}, err
	}
	p.PreferredRoles = rolesFromCSV(roles)
	return p, nil
}

func rolesToCSV(roles []int) string {
	parts := make([]string, len(roles))
	for i, r := range roles {
		parts[i] = strconv.Itoa(r)
	}
	return strings.Join(parts, ",")
}

func rolesFromCSV(csv string) []int {
	if csv == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	roles := make([]int, 0, len(parts))
	for _, part := range parts {
		if r, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			roles = append(roles, r)
		}
	}
	return roles
}

// placeholders renders $start..$start+n-1 for dynamic IN clauses.
func placeholders(start, n int) string {
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = "$" + strconv.Itoa(start+i)
	}
	return strings.Join(parts, ",")
}

// CreatePlayer inserts a new registration. A duplicate id reports
// ErrPlayerExists.
func (s *Store) CreatePlayer(scope *envelope.Scope, q Queryer, p models.Player) error {
	res, err := q.ExecContext(scope.Ctx, `INSERT INTO players (
			player_id, guild_id, username, steam_id, balance, wins, losses, exclusion_halves,
			glicko_rating, glicko_rd, glicko_volatility, os_mu, os_sigma,
			preferred_roles, main_role, charity_games, lowest_balance, last_match_at,
			first_calibrated_at, is_captain_eligible, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)
		ON CONFLICT (guild_id, player_id) DO NOTHING`,
		p.ID, p.GuildID, p.Username, p.SteamID, p.Balance, p.Wins, p.Losses, p.ExclusionHalves,
		p.Glicko.Rating, p.Glicko.RD, p.Glicko.Volatility, p.OpenSkill.Mu, p.OpenSkill.Sigma,
		rolesToCSV(p.PreferredRoles), p.MainRole, p.CharityGames, p.LowestBalance, p.LastMatchAt,
		p.FirstCalibrated, p.CaptainEligible, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create player rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrPlayerExists
	}
	return nil
}

func (s *Store) GetPlayer(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.Player, error) {
	row := q.QueryRowContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID)
	p, err := scanPlayer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Player{}, models.ErrPlayerNotFound
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

// GetPlayers loads a set of players. Missing ids are simply absent from
// the result; callers validate completeness.
func (s *Store) GetPlayers(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.Player, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	args := make([]interface{}, 0, len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 AND player_id IN (`+placeholders(2, len(playerIDs))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get players: %w", err)
	}
	defer rows.Close()

	players := make([]models.Player, 0, len(playerIDs))
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) ListPlayers(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 ORDER BY player_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetDebtors lists players in debt, most indebted first.
func (s *Store) GetDebtors(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 AND balance < 0 ORDER BY balance ASC, player_id`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("get debtors: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// GetStimulusEligible lists non-debtors excluding the three richest.
func (s *Store) GetStimulusEligible(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 AND balance >= 0
		ORDER BY balance DESC, player_id OFFSET 3`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("get stimulus eligible: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *Store) CountPlayers(scope *envelope.Scope, q Queryer, guildID int64) (int, error) {
	var count int
	err := q.QueryRowContext(scope.Ctx,
		`SELECT COUNT(*) FROM players WHERE guild_id = $1`, guildID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count players: %w", err)
	}
	return count, nil
}

// AddBalance moves a balance by delta and returns the new value. The
// lowest-ever watermark follows automatically.
func (s *Store) AddBalance(scope *envelope.Scope, q Queryer, guildID, playerID, delta int64) (int64, error) {
	var balance int64
	err := q.QueryRowContext(scope.Ctx,
		`UPDATE players SET balance = balance + $3,
			lowest_balance = LEAST(lowest_balance, balance + $3)
		WHERE guild_id = $1 AND player_id = $2
		RETURNING balance`,
		guildID, playerID, delta).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("add balance: %w", err)
	}
	return balance, nil
}

func (s *Store) GetBalance(scope *envelope.Scope, q Queryer, guildID, playerID int64) (int64, error) {
	var balance int64
	err := q.QueryRowContext(scope.Ctx,
		`SELECT balance FROM players WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// SetBalance overwrites a balance and returns the previous value.
func (s *Store) SetBalance(scope *envelope.Scope, q Queryer, guildID, playerID, balance int64) (int64, error) {
	var previous int64
	err := q.QueryRowContext(scope.Ctx,
		`UPDATE players p SET balance = $3,
			lowest_balance = LEAST(lowest_balance, $3)
		FROM (SELECT balance AS old_balance FROM players WHERE guild_id = $1 AND player_id = $2) prev
		WHERE p.guild_id = $1 AND p.player_id = $2
		RETURNING prev.old_balance`,
		guildID, playerID, balance).Scan(&previous)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, models.ErrPlayerNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("set balance: %w", err)
	}
	return previous, nil
}

// ApplyMatchOutcome updates one participant's counters and both rating
// pairs after a recorded match.
func (s *Store) ApplyMatchOutcome(scope *envelope.Scope, q Queryer, guildID, playerID int64, won bool, glicko models.Glicko2Rating, openskill models.OpenSkillRating, matchTime int64, calibrated bool) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET
			wins = wins + CASE WHEN $3 THEN 1 ELSE 0 END,
			losses = losses + CASE WHEN $3 THEN 0 ELSE 1 END,
			glicko_rating = $4, glicko_rd = $5, glicko_volatility = $6,
			os_mu = $7, os_sigma = $8,
			last_match_at = $9,
			first_calibrated_at = CASE WHEN first_calibrated_at = 0 AND $10 THEN $9 ELSE first_calibrated_at END
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, won, glicko.Rating, glicko.RD, glicko.Volatility,
		openskill.Mu, openskill.Sigma, matchTime, calibrated)
	if err != nil {
		return fmt.Errorf("apply match outcome: %w", err)
	}
	return nil
}

// SetRatings overwrites both rating pairs without touching counters.
// Corrections and recalibrations use this.
func (s *Store) SetRatings(scope *envelope.Scope, q Queryer, guildID, playerID int64, glicko models.Glicko2Rating, openskill models.OpenSkillRating) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET glicko_rating = $3, glicko_rd = $4, glicko_volatility = $5,
			os_mu = $6, os_sigma = $7
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, glicko.Rating, glicko.RD, glicko.Volatility, openskill.Mu, openskill.Sigma)
	if err != nil {
		return fmt.Errorf("set ratings: %w", err)
	}
	return nil
}

// SetOpenSkillRating overwrites the OpenSkill pair only. The Phase-2
// enrichment pass uses this so Glicko stays untouched.
func (s *Store) SetOpenSkillRating(scope *envelope.Scope, q Queryer, guildID, playerID int64, openskill models.OpenSkillRating) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET os_mu = $3, os_sigma = $4
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, openskill.Mu, openskill.Sigma)
	if err != nil {
		return fmt.Errorf("set openskill rating: %w", err)
	}
	return nil
}

// SwapWinLoss moves one game between the win and loss columns, used when
// a recorded result is corrected.
func (s *Store) SwapWinLoss(scope *envelope.Scope, q Queryer, guildID, playerID int64, nowWon bool) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET
			wins = wins + CASE WHEN $3 THEN 1 ELSE -1 END,
			losses = losses + CASE WHEN $3 THEN -1 ELSE 1 END
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, nowWon)
	if err != nil {
		return fmt.Errorf("swap win loss: %w", err)
	}
	return nil
}

func (s *Store) SetExclusionHalves(scope *envelope.Scope, q Queryer, guildID, playerID int64, halves int) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET exclusion_halves = $3 WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, halves)
	if err != nil {
		return fmt.Errorf("set exclusion halves: %w", err)
	}
	return nil
}

func (s *Store) UpdateRoles(scope *envelope.Scope, q Queryer, guildID, playerID int64, roles []int, mainRole int) error {
	res, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET preferred_roles = $3, main_role = $4 WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, rolesToCSV(roles), mainRole)
	if err != nil {
		return fmt.Errorf("update roles: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update roles rows affected: %w", err)
	}
	if affected == 0 {
		return models.ErrPlayerNotFound
	}
	return nil
}

// SetCharityGames overwrites the reduced-rate blind counter.
func (s *Store) SetCharityGames(scope *envelope.Scope, q Queryer, guildID, playerID int64, games int) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET charity_games = $3 WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, games)
	if err != nil {
		return fmt.Errorf("set charity games: %w", err)
	}
	return nil
}

// DecrementCharityGames consumes one reduced-rate blind game if any remain.
func (s *Store) DecrementCharityGames(scope *envelope.Scope, q Queryer, guildID, playerID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE players SET charity_games = charity_games - 1
		WHERE guild_id = $1 AND player_id = $2 AND charity_games > 0`,
		guildID, playerID)
	if err != nil {
		return fmt.Errorf("decrement charity games: %w", err)
	}
	return nil
}

// TopBalances returns the richest players for leaderboard reads.
func (s *Store) TopBalances(scope *envelope.Scope, q Queryer, guildID int64, limit int) ([]models.Player, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT `+playerColumns+` FROM players WHERE guild_id = $1 ORDER BY balance DESC, player_id LIMIT $2`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("top balances: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
