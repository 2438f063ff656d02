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
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

// IncrementTeammatePairing bumps the together counters for a pair.
// winsDelta is +1 when the pair won, 0 when they lost, -1 on reversal.
func (s *Store) IncrementTeammatePairing(scope *envelope.Scope, q Queryer, guildID, a, b int64, gamesDelta, winsDelta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO player_pairings (guild_id, p1, p2, games_together, wins_together)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, p1, p2) DO UPDATE SET
			games_together = player_pairings.games_together + EXCLUDED.games_together,
			wins_together = player_pairings.wins_together + EXCLUDED.wins_together`,
		guildID, p1, p2, gamesDelta, winsDelta)
	if err != nil {
		return fmt.Errorf("increment teammate pairing: %w", err)
	}
	return nil
}

// IncrementOpponentPairing bumps the against counters. winnerID names
// the player who won the cross-team encounter; p1 wins are directional.
func (s *Store) IncrementOpponentPairing(scope *envelope.Scope, q Queryer, guildID, a, b, winnerID int64, gamesDelta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	p1Wins := 0
	if winnerID == p1 {
		p1Wins = gamesDelta
	}
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO player_pairings (guild_id, p1, p2, games_against, p1_wins_against)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, p1, p2) DO UPDATE SET
			games_against = player_pairings.games_against + EXCLUDED.games_against,
			p1_wins_against = player_pairings.p1_wins_against + EXCLUDED.p1_wins_against`,
		guildID, p1, p2, gamesDelta, p1Wins)
	if err != nil {
		return fmt.Errorf("increment opponent pairing: %w", err)
	}
	return nil
}

// SwapOpponentWins flips the directional against counter for a pair
// after a result correction.
func (s *Store) SwapOpponentWins(scope *envelope.Scope, q Queryer, guildID, a, b int64, delta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE player_pairings SET p1_wins_against = p1_wins_against + $4
		WHERE guild_id = $1 AND p1 = $2 AND p2 = $3`,
		guildID, p1, p2, delta)
	if err != nil {
		return fmt.Errorf("swap opponent wins: %w", err)
	}
	return nil
}

// SwapTeammateWins flips the together win counter for a pair after a
// result correction.
func (s *Store) SwapTeammateWins(scope *envelope.Scope, q Queryer, guildID, a, b int64, delta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE player_pairings SET wins_together = wins_together + $4
		WHERE guild_id = $1 AND p1 = $2 AND p2 = $3`,
		guildID, p1, p2, delta)
	if err != nil {
		return fmt.Errorf("swap teammate wins: %w", err)
	}
	return nil
}

// GetPairing returns the accumulated relationship for one pair,
// zero-valued when the players never met.
func (s *Store) GetPairing(scope *envelope.Scope, q Queryer, guildID, a, b int64) (models.Pairing, error) {
	p1, p2 := utils.CanonicalPair(a, b)
	pairing := models.Pairing{GuildID: guildID, P1: p1, P2: p2}
	err := q.QueryRowContext(scope.Ctx,
		`SELECT games_together, wins_together, games_against, p1_wins_against
		FROM player_pairings WHERE guild_id = $1 AND p1 = $2 AND p2 = $3`,
		guildID, p1, p2).Scan(&pairing.GamesTogether, &pairing.WinsTogether,
		&pairing.GamesAgainst, &pairing.P1WinsAgainst)
	if errors.Is(err, sql.ErrNoRows) {
		return pairing, nil
	}
	if err != nil {
		return pairing, fmt.Errorf("get pairing: %w", err)
	}
	return pairing, nil
}

// GetPairingsFor returns every recorded relationship involving one
// player, keyed by the other player's id.
func (s *Store) GetPairingsFor(scope *envelope.Scope, q Queryer, guildID, playerID int64) (map[int64]models.Pairing, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT guild_id, p1, p2, games_together, wins_together, games_against, p1_wins_against
		FROM player_pairings WHERE guild_id = $1 AND (p1 = $2 OR p2 = $2)`,
		guildID, playerID)
	if err != nil {
		return nil, fmt.Errorf("get pairings for player: %w", err)
	}
	defer rows.Close()

	pairings := make(map[int64]models.Pairing)
	for rows.Next() {
		var p models.Pairing
		err := rows.Scan(&p.GuildID, &p.P1, &p.P2, &p.GamesTogether, &p.WinsTogether,
			&p.GamesAgainst, &p.P1WinsAgainst)
		if err != nil {
			return nil, fmt.Errorf("scan pairing: %w", err)
		}
		other := p.P1
		if other == playerID {
			other = p.P2
		}
		pairings[other] = p
	}
	return pairings, rows.Err()
}

// GetPairingsAmong returns the relationships among a participant set,
// keyed by canonical pair.
func (s *Store) GetPairingsAmong(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) (map[[2]int64]models.Pairing, error) {
	pairings := make(map[[2]int64]models.Pairing)
	if len(playerIDs) < 2 {
		return pairings, nil
	}
	args := make([]interface{}, 0, 2*len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	in := placeholders(2, len(playerIDs))
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT guild_id, p1, p2, games_together, wins_together, games_against, p1_wins_against
		FROM player_pairings
		WHERE guild_id = $1 AND p1 IN (`+in+`) AND p2 IN (`+in+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get pairings among players: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Pairing
		err := rows.Scan(&p.GuildID, &p.P1, &p.P2, &p.GamesTogether, &p.WinsTogether,
			&p.GamesAgainst, &p.P1WinsAgainst)
		if err != nil {
			return nil, fmt.Errorf("scan pairing: %w", err)
		}
		pairings[[2]int64{p.P1, p.P2}] = p
	}
	return pairings, rows.Err()
}

// CountPairings reports how many pairing rows a guild holds.
func (s *Store) CountPairings(scope *envelope.Scope, q Queryer, guildID int64) (int, error) {
	var count int
	err := q.QueryRowContext(scope.Ctx,
		`SELECT COUNT(*) FROM player_pairings WHERE guild_id = $1`, guildID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count pairings: %w", err)
	}
	return count, nil
}

// DeletePairingsForGuild clears the accumulator ahead of a rebuild.
func (s *Store) DeletePairingsForGuild(scope *envelope.Scope, q Queryer, guildID int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM player_pairings WHERE guild_id = $1`, guildID)
	if err != nil {
		return fmt.Errorf("delete pairings: %w", err)
	}
	return nil
}

// AllMatchTeams streams every recorded match's sides for a guild in
// chronological order, feeding the pairing rebuild.
func (s *Store) AllMatchTeams(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Match, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT match_id, guild_id, radiant_ids, dire_ids, winning_team, created_at
		FROM matches WHERE guild_id = $1 ORDER BY created_at, match_id`,
		guildID)
	if err != nil {
		return nil, fmt.Errorf("all match teams: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		var m models.Match
		var radiant, dire []byte
		var winner int
		if err := rows.Scan(&m.ID, &m.GuildID, &radiant, &dire, &winner, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan match teams: %w", err)
		}
		m.Winner = models.Side(winner)
		if err := unmarshalIDs(radiant, &m.RadiantIDs); err != nil {
			return nil, err
		}
		if err := unmarshalIDs(dire, &m.DireIDs); err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}
