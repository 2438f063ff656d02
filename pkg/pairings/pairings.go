// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package pairings tracks pairwise player history: how often two
// players shared a team or faced each other, and who came out ahead.
// Counters are folded into match recording and queried for teammate
// and rivalry rankings.
package pairings

import (
	"database/sql"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

const (
	// rankingMinGames is the sample floor for best and worst rankings.
	rankingMinGames = 3
	// playedMinGames is the sample floor for the most-played lists.
	playedMinGames = 1
	// evenMatchMinGames is the sample floor for evenly matched pairs.
	evenMatchMinGames = 5
	// defaultLimit caps ranking results.
	defaultLimit = 5
)

// Service answers pairwise history questions and keeps the counters in
// step with recorded and corrected matches.
type Service struct {
	st store.API
}

func New(st store.API) *Service {
	return &Service{st: st}
}

// Record folds one finished match into the pairwise counters: every
// same-team pair gains a shared game, every cross-team pair gains an
// opposing game with the win credited to the winning side's member.
//
// Runs on the caller's queryer so match recording can fold it into its
// own transaction.
func (s *Service) Record(scope *envelope.Scope, q store.Queryer, guildID int64, radiantIDs, direIDs []int64, winner models.Side) error {
	if err := s.recordTeammates(scope, q, guildID, radiantIDs, winner == models.SideRadiant); err != nil {
		return err
	}
	if err := s.recordTeammates(scope, q, guildID, direIDs, winner == models.SideDire); err != nil {
		return err
	}
	for _, r := range radiantIDs {
		for _, d := range direIDs {
			crossWinner := r
			if winner == models.SideDire {
				crossWinner = d
			}
			if err := s.st.IncrementOpponentPairing(scope, q, guildID, r, d, crossWinner, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) recordTeammates(scope *envelope.Scope, q store.Queryer, guildID int64, ids []int64, won bool) error {
	wins := 0
	if won {
		wins = 1
	}
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if err := s.st.IncrementTeammatePairing(scope, q, guildID, a, b, 1, wins); err != nil {
				return err
			}
		}
	}
	return nil
}

// SwapResult moves the win counters from the originally recorded
// winner to the corrected one. Game counts stay untouched, so a swap
// followed by the opposite swap restores the original state.
//
// Runs on the caller's queryer so result correction can fold it into
// its own transaction.
func (s *Service) SwapResult(scope *envelope.Scope, q store.Queryer, guildID int64, radiantIDs, direIDs []int64, newWinner models.Side) error {
	winners, losers := radiantIDs, direIDs
	if newWinner == models.SideDire {
		winners, losers = direIDs, radiantIDs
	}
	if err := s.swapTeammates(scope, q, guildID, winners, 1); err != nil {
		return err
	}
	if err := s.swapTeammates(scope, q, guildID, losers, -1); err != nil {
		return err
	}
	for _, r := range radiantIDs {
		for _, d := range direIDs {
			crossWinner := r
			if newWinner == models.SideDire {
				crossWinner = d
			}
			// The directional counter tracks the canonical first
			// player, so the sign depends on which side that is.
			p1, _ := utils.CanonicalPair(r, d)
			delta := -1
			if p1 == crossWinner {
				delta = 1
			}
			if err := s.st.SwapOpponentWins(scope, q, guildID, r, d, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Service) swapTeammates(scope *envelope.Scope, q store.Queryer, guildID int64, ids []int64, delta int) error {
	for i, a := range ids {
		for _, b := range ids[i+1:] {
			if err := s.st.SwapTeammateWins(scope, q, guildID, a, b, delta); err != nil {
				return err
			}
		}
	}
	return nil
}

// Rebuild wipes a guild's counters and replays its entire match
// history in chronological order. Returns the number of pairing rows
// after the replay.
func (s *Service) Rebuild(scope *envelope.Scope, guildID int64) (int, error) {
	scope = scope.NewChildScope("Pairings.Rebuild")
	defer scope.Finish()

	var total int
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		if err := s.st.DeletePairingsForGuild(scope, tx, guildID); err != nil {
			return err
		}
		matches, err := s.st.AllMatchTeams(scope, tx, guildID)
		if err != nil {
			return err
		}
		for _, m := range matches {
			if !m.Winner.Valid() {
				continue
			}
			if err := s.Record(scope, tx, guildID, m.RadiantIDs, m.DireIDs, m.Winner); err != nil {
				return err
			}
		}
		total, err = s.st.CountPairings(scope, tx, guildID)
		return err
	})
	if err != nil {
		return 0, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"pairings": total,
	}).Info("pairings rebuilt")
	return total, nil
}

// HeadToHead returns the full relationship between two players,
// zero-valued when they never met.
func (s *Service) HeadToHead(scope *envelope.Scope, guildID, a, b int64) (models.Pairing, error) {
	scope = scope.NewChildScope("Pairings.HeadToHead")
	defer scope.Finish()

	return s.st.GetPairing(scope, s.st.DB(), guildID, a, b)
}

// BestTeammates ranks the partners a player holds a winning record
// with. Pairs need minGames shared games and a rate strictly above
// one half to qualify.
func (s *Service) BestTeammates(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.BestTeammates")
	defer scope.Finish()

	minGames = orDefault(minGames, rankingMinGames)
	return s.teammateStats(scope, guildID, playerID, limit, byRateDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.WinRate > 0.5
	})
}

// WorstTeammates ranks the partners a player holds a losing record
// with.
func (s *Service) WorstTeammates(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.WorstTeammates")
	defer scope.Finish()

	minGames = orDefault(minGames, rankingMinGames)
	return s.teammateStats(scope, guildID, playerID, limit, byRateAsc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.WinRate < 0.5
	})
}

// BestMatchups ranks the opponents a player beats more often than not.
func (s *Service) BestMatchups(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.BestMatchups")
	defer scope.Finish()

	minGames = orDefault(minGames, rankingMinGames)
	return s.opponentStats(scope, guildID, playerID, limit, byRateDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.WinRate > 0.5
	})
}

// WorstMatchups ranks the opponents a player loses to more often than
// not.
func (s *Service) WorstMatchups(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.WorstMatchups")
	defer scope.Finish()

	minGames = orDefault(minGames, rankingMinGames)
	return s.opponentStats(scope, guildID, playerID, limit, byRateAsc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.WinRate < 0.5
	})
}

// MostPlayedWith ranks teammates by shared game count.
func (s *Service) MostPlayedWith(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.MostPlayedWith")
	defer scope.Finish()

	minGames = orDefault(minGames, playedMinGames)
	return s.teammateStats(scope, guildID, playerID, limit, byGamesDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames
	})
}

// MostPlayedAgainst ranks opponents by opposing game count.
func (s *Service) MostPlayedAgainst(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.MostPlayedAgainst")
	defer scope.Finish()

	minGames = orDefault(minGames, playedMinGames)
	return s.opponentStats(scope, guildID, playerID, limit, byGamesDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames
	})
}

// EvenlyMatchedTeammates lists partners a player splits games with
// exactly evenly, longest shared history first.
func (s *Service) EvenlyMatchedTeammates(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.EvenlyMatchedTeammates")
	defer scope.Finish()

	minGames = orDefault(minGames, evenMatchMinGames)
	return s.teammateStats(scope, guildID, playerID, limit, byGamesDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.Wins*2 == st.Games
	})
}

// EvenlyMatchedOpponents lists rivals a player trades wins with
// exactly evenly, longest rivalry first.
func (s *Service) EvenlyMatchedOpponents(scope *envelope.Scope, guildID, playerID int64, minGames, limit int) ([]models.PairingStat, error) {
	scope = scope.NewChildScope("Pairings.EvenlyMatchedOpponents")
	defer scope.Finish()

	minGames = orDefault(minGames, evenMatchMinGames)
	return s.opponentStats(scope, guildID, playerID, limit, byGamesDesc, func(st models.PairingStat) bool {
		return st.Games >= minGames && st.Wins*2 == st.Games
	})
}

// PairingCounts reports how many distinct teammates and opponents a
// player has met at least minGames times.
func (s *Service) PairingCounts(scope *envelope.Scope, guildID, playerID int64, minGames int) (models.PairingCounts, error) {
	scope = scope.NewChildScope("Pairings.PairingCounts")
	defer scope.Finish()

	minGames = orDefault(minGames, playedMinGames)
	pairings, err := s.st.GetPairingsFor(scope, s.st.DB(), guildID, playerID)
	if err != nil {
		return models.PairingCounts{}, err
	}
	var counts models.PairingCounts
	for _, p := range pairings {
		if p.GamesTogether >= minGames {
			counts.UniqueTeammates++
		}
		if p.GamesAgainst >= minGames {
			counts.UniqueOpponents++
		}
	}
	return counts, nil
}

func (s *Service) teammateStats(scope *envelope.Scope, guildID, playerID int64, limit int, less func(a, b models.PairingStat) bool, keep func(models.PairingStat) bool) ([]models.PairingStat, error) {
	pairings, err := s.st.GetPairingsFor(scope, s.st.DB(), guildID, playerID)
	if err != nil {
		return nil, err
	}
	var stats []models.PairingStat
	for _, p := range pairings {
		st := teammateStat(playerID, p)
		if keep(st) {
			stats = append(stats, st)
		}
	}
	return rank(stats, less, orDefault(limit, defaultLimit)), nil
}

func (s *Service) opponentStats(scope *envelope.Scope, guildID, playerID int64, limit int, less func(a, b models.PairingStat) bool, keep func(models.PairingStat) bool) ([]models.PairingStat, error) {
	pairings, err := s.st.GetPairingsFor(scope, s.st.DB(), guildID, playerID)
	if err != nil {
		return nil, err
	}
	var stats []models.PairingStat
	for _, p := range pairings {
		st := opponentStat(playerID, p)
		if keep(st) {
			stats = append(stats, st)
		}
	}
	return rank(stats, less, orDefault(limit, defaultLimit)), nil
}

func teammateStat(playerID int64, p models.Pairing) models.PairingStat {
	other := p.P1
	if other == playerID {
		other = p.P2
	}
	return models.PairingStat{
		PlayerID: playerID,
		OtherID:  other,
		Games:    p.GamesTogether,
		Wins:     p.WinsTogether,
		WinRate:  p.TeammateWinRate(),
	}
}

func opponentStat(playerID int64, p models.Pairing) models.PairingStat {
	other := p.P1
	if other == playerID {
		other = p.P2
	}
	wins := p.P1WinsAgainst
	if playerID == p.P2 {
		wins = p.GamesAgainst - p.P1WinsAgainst
	}
	return models.PairingStat{
		PlayerID: playerID,
		OtherID:  other,
		Games:    p.GamesAgainst,
		Wins:     wins,
		WinRate:  p.WinRateAgainst(playerID),
	}
}

// rank sorts in place and truncates to limit.
func rank(stats []models.PairingStat, less func(a, b models.PairingStat) bool, limit int) []models.PairingStat {
	sort.Slice(stats, func(i, j int) bool { return less(stats[i], stats[j]) })
	if limit > 0 && len(stats) > limit {
		stats = stats[:limit]
	}
	return stats
}

func byRateDesc(a, b models.PairingStat) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	if a.Games != b.Games {
		return a.Games > b.Games
	}
	return a.OtherID < b.OtherID
}

func byRateAsc(a, b models.PairingStat) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate < b.WinRate
	}
	if a.Games != b.Games {
		return a.Games > b.Games
	}
	return a.OtherID < b.OtherID
}

func byGamesDesc(a, b models.PairingStat) bool {
	if a.Games != b.Games {
		return a.Games > b.Games
	}
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	return a.OtherID < b.OtherID
}

func orDefault(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}
