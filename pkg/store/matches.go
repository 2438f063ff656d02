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

// InsertMatch records a finished game and its participant rows.
func (s *Store) InsertMatch(scope *envelope.Scope, q Queryer, match *models.Match, participants []models.MatchParticipant) (int64, error) {
	radiant, err := json.Marshal(match.RadiantIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal radiant ids: %w", err)
	}
	dire, err := json.Marshal(match.DireIDs)
	if err != nil {
		return 0, fmt.Errorf("marshal dire ids: %w", err)
	}

	var matchID int64
	err = q.QueryRowContext(scope.Ctx,
		`INSERT INTO matches (guild_id, radiant_ids, dire_ids, winning_team, lobby_type, betting_mode,
			balancing_rating_system, radiant_win_prob, notes, recorded_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING match_id`,
		match.GuildID, radiant, dire, int(match.Winner), match.LobbyType, match.BettingMode,
		match.BalancingSystem, match.RadiantWinProb, match.Notes, match.RecordedBy, match.CreatedAt).Scan(&matchID)
	if err != nil {
		return 0, fmt.Errorf("insert match: %w", err)
	}

	for _, participant := range participants {
		_, err = q.ExecContext(scope.Ctx,
			`INSERT INTO match_participants (match_id, player_id, guild_id, team_number, won, role, fantasy_points)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			matchID, participant.PlayerID, participant.GuildID, int(participant.Team),
			participant.Won, participant.Role, participant.FantasyPoints)
		if err != nil {
			return 0, fmt.Errorf("insert match participant: %w", err)
		}
	}
	return matchID, nil
}

func (s *Store) GetMatch(scope *envelope.Scope, q Queryer, guildID, matchID int64) (*models.Match, error) {
	var m models.Match
	var radiant, dire []byte
	var winner int
	err := q.QueryRowContext(scope.Ctx,
		`SELECT match_id, guild_id, radiant_ids, dire_ids, winning_team, lobby_type, betting_mode,
			balancing_rating_system, radiant_win_prob, notes, recorded_by, created_at
		FROM matches WHERE guild_id = $1 AND match_id = $2`,
		guildID, matchID).Scan(&m.ID, &m.GuildID, &radiant, &dire, &winner,
		&m.LobbyType, &m.BettingMode, &m.BalancingSystem, &m.RadiantWinProb, &m.Notes, &m.RecordedBy, &m.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrMatchNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	m.Winner = models.Side(winner)
	if err := json.Unmarshal(radiant, &m.RadiantIDs); err != nil {
		return nil, fmt.Errorf("unmarshal radiant ids: %w", err)
	}
	if err := json.Unmarshal(dire, &m.DireIDs); err != nil {
		return nil, fmt.Errorf("unmarshal dire ids: %w", err)
	}
	return &m, nil
}

func (s *Store) GetMatchParticipants(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.MatchParticipant, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT match_id, player_id, guild_id, team_number, won, role, fantasy_points
		FROM match_participants WHERE guild_id = $1 AND match_id = $2 ORDER BY team_number, player_id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match participants: %w", err)
	}
	defer rows.Close()

	var participants []models.MatchParticipant
	for rows.Next() {
		var p models.MatchParticipant
		var team int
		if err := rows.Scan(&p.MatchID, &p.PlayerID, &p.GuildID, &team, &p.Won, &p.Role, &p.FantasyPoints); err != nil {
			return nil, fmt.Errorf("scan match participant: %w", err)
		}
		p.Team = models.Side(team)
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

// SetParticipantFantasyPoints stores the enrichment inputs for Phase-2.
func (s *Store) SetParticipantFantasyPoints(scope *envelope.Scope, q Queryer, guildID, matchID, playerID int64, points float64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE match_participants SET fantasy_points = $4
		WHERE guild_id = $1 AND match_id = $2 AND player_id = $3`,
		guildID, matchID, playerID, points)
	if err != nil {
		return fmt.Errorf("set participant fantasy points: %w", err)
	}
	return nil
}

// FlipMatchResult swaps the winning team on the match and its participants.
func (s *Store) FlipMatchResult(scope *envelope.Scope, q Queryer, guildID, matchID int64, newWinner models.Side) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE matches SET winning_team = $3 WHERE guild_id = $1 AND match_id = $2`,
		guildID, matchID, int(newWinner))
	if err != nil {
		return fmt.Errorf("flip match result: %w", err)
	}
	_, err = q.ExecContext(scope.Ctx,
		`UPDATE match_participants SET won = (team_number = $3)
		WHERE guild_id = $1 AND match_id = $2`,
		guildID, matchID, int(newWinner))
	if err != nil {
		return fmt.Errorf("flip participant results: %w", err)
	}
	return nil
}

// InsertRatingHistory snapshots one player's rating movement for a match.
func (s *Store) InsertRatingHistory(scope *envelope.Scope, q Queryer, h models.RatingHistory) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO rating_history (match_id, player_id, guild_id, team_number, won,
			rating_before, rating_after, rd_before, rd_after, volatility_before, volatility_after,
			os_mu_before, os_mu_after, os_sigma_before, os_sigma_after,
			expected_team_win_prob, fantasy_points, fantasy_weight, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19)`,
		h.MatchID, h.PlayerID, h.GuildID, int(h.Team), h.Won,
		h.RatingBefore, h.RatingAfter, h.RDBefore, h.RDAfter, h.VolatilityBefore, h.VolatilityAfter,
		h.MuBefore, h.MuAfter, h.SigmaBefore, h.SigmaAfter,
		h.ExpectedTeamWinProb, h.FantasyPoints, h.FantasyWeight, h.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert rating history: %w", err)
	}
	return nil
}

// GetRatingHistory loads every snapshot of one match.
func (s *Store) GetRatingHistory(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.RatingHistory, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, match_id, player_id, guild_id, team_number, won,
			rating_before, rating_after, rd_before, rd_after, volatility_before, volatility_after,
			os_mu_before, os_mu_after, os_sigma_before, os_sigma_after,
			expected_team_win_prob, fantasy_points, fantasy_weight, created_at
		FROM rating_history WHERE guild_id = $1 AND match_id = $2 ORDER BY team_number, player_id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get rating history: %w", err)
	}
	defer rows.Close()

	var history []models.RatingHistory
	for rows.Next() {
		var h models.RatingHistory
		var team int
		err := rows.Scan(&h.ID, &h.MatchID, &h.PlayerID, &h.GuildID, &team, &h.Won,
			&h.RatingBefore, &h.RatingAfter, &h.RDBefore, &h.RDAfter, &h.VolatilityBefore, &h.VolatilityAfter,
			&h.MuBefore, &h.MuAfter, &h.SigmaBefore, &h.SigmaAfter,
			&h.ExpectedTeamWinProb, &h.FantasyPoints, &h.FantasyWeight, &h.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan rating history: %w", err)
		}
		h.Team = models.Side(team)
		history = append(history, h)
	}
	return history, rows.Err()
}

// UpdateRatingHistoryAfter rewrites the after-values of one snapshot.
// Before-values stay untouched so the row remains a restore point.
func (s *Store) UpdateRatingHistoryAfter(scope *envelope.Scope, q Queryer, h models.RatingHistory) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE rating_history SET won = $4, rating_after = $5, rd_after = $6, volatility_after = $7,
			os_mu_after = $8, os_sigma_after = $9, fantasy_points = $10, fantasy_weight = $11
		WHERE guild_id = $1 AND match_id = $2 AND player_id = $3`,
		h.GuildID, h.MatchID, h.PlayerID, h.Won, h.RatingAfter, h.RDAfter, h.VolatilityAfter,
		h.MuAfter, h.SigmaAfter, h.FantasyPoints, h.FantasyWeight)
	if err != nil {
		return fmt.Errorf("update rating history: %w", err)
	}
	return nil
}

// InsertMatchCorrection writes the audit row for a flipped result.
func (s *Store) InsertMatchCorrection(scope *envelope.Scope, q Queryer, c models.MatchCorrection) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO match_corrections (match_id, guild_id, old_winning_team, new_winning_team, corrected_by, corrected_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		c.MatchID, c.GuildID, int(c.OldWinner), int(c.NewWinner), c.CorrectedBy, c.CorrectedAt)
	if err != nil {
		return fmt.Errorf("insert match correction: %w", err)
	}
	return nil
}

func (s *Store) GetMatchCorrections(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.MatchCorrection, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, match_id, guild_id, old_winning_team, new_winning_team, corrected_by, corrected_at
		FROM match_corrections WHERE guild_id = $1 AND match_id = $2 ORDER BY id`,
		guildID, matchID)
	if err != nil {
		return nil, fmt.Errorf("get match corrections: %w", err)
	}
	defer rows.Close()

	var corrections []models.MatchCorrection
	for rows.Next() {
		var c models.MatchCorrection
		var oldWinner, newWinner int
		if err := rows.Scan(&c.ID, &c.MatchID, &c.GuildID, &oldWinner, &newWinner, &c.CorrectedBy, &c.CorrectedAt); err != nil {
			return nil, fmt.Errorf("scan match correction: %w", err)
		}
		c.OldWinner = models.Side(oldWinner)
		c.NewWinner = models.Side(newWinner)
		corrections = append(corrections, c)
	}
	return corrections, rows.Err()
}

func unmarshalIDs(raw []byte, into *[]int64) error {
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("unmarshal id list: %w", err)
	}
	return nil
}

// LastMatchParticipantIDs returns who played in the guild's most recent
// match, feeding the shuffle's recent-participation weight.
func (s *Store) LastMatchParticipantIDs(scope *envelope.Scope, q Queryer, guildID int64) ([]int64, error) {
	var radiant, dire []byte
	err := q.QueryRowContext(scope.Ctx,
		`SELECT radiant_ids, dire_ids FROM matches WHERE guild_id = $1 ORDER BY created_at DESC, match_id DESC LIMIT 1`,
		guildID).Scan(&radiant, &dire)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last match participants: %w", err)
	}
	var radiantIDs, direIDs []int64
	if err := json.Unmarshal(radiant, &radiantIDs); err != nil {
		return nil, fmt.Errorf("unmarshal radiant ids: %w", err)
	}
	if err := json.Unmarshal(dire, &direIDs); err != nil {
		return nil, fmt.Errorf("unmarshal dire ids: %w", err)
	}
	return append(radiantIDs, direIDs...), nil
}
