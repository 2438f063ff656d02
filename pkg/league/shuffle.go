// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/rating"
	"github.com/AccelByte/extend-inhouse-league/pkg/shuffler"
	"github.com/AccelByte/extend-inhouse-league/pkg/wager"
)

// Shuffle builds a pending match from the pool: balanced role-assigned
// teams, the betting window, exclusion bookkeeping, auto blinds, and
// for drafts the stake pool seats. The pending row, blinds, and stakes
// land in one transaction; the in-memory cache adopts the match only
// after commit.
func (s *Service) Shuffle(scope *envelope.Scope, req *models.ShuffleRequest) (*models.ShuffleOutput, error) {
	scope = scope.NewChildScope("League.Shuffle")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, req.GuildID)

	started := time.Now()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lobbyType := req.LobbyType
	if lobbyType == "" {
		lobbyType = constants.LobbyTypeShuffle
	}
	bettingMode := req.BettingMode
	if bettingMode == "" {
		bettingMode = constants.BettingModePool
	}
	system := req.RatingSystem
	if system == "" {
		system = s.cfg.BalancingRatingSystem
	}

	players, err := s.loadPool(scope, req.GuildID, req.PlayerIDs)
	if err != nil {
		return nil, err
	}
	recent, err := s.st.LastMatchParticipantIDs(scope, s.st.DB(), req.GuildID)
	if err != nil {
		return nil, err
	}
	recentIDs := make(map[int64]struct{}, len(recent))
	for _, id := range recent {
		recentIDs[id] = struct{}{}
	}
	avoids, err := s.st.GetActiveSoftAvoidsAmong(scope, s.st.DB(), req.GuildID, req.PlayerIDs)
	if err != nil {
		return nil, err
	}
	deals, err := s.st.GetActivePackageDealsAmong(scope, s.st.DB(), req.GuildID, req.PlayerIDs)
	if err != nil {
		return nil, err
	}

	split, err := s.shuffler.Shuffle(scope, shuffler.Request{
		GuildID:   req.GuildID,
		Players:   players,
		System:    system,
		RecentIDs: recentIDs,
		Avoids:    avoids,
		Deals:     deals,
		Seed:      req.Seed,
	})
	if err != nil {
		s.rejectShuffle(req.GuildID, err)
		return nil, err
	}

	conditional := make(map[int64]struct{}, len(req.ConditionalIDs))
	for _, id := range req.ConditionalIDs {
		conditional[id] = struct{}{}
	}
	for i := range split.Excluded {
		_, isConditional := conditional[split.Excluded[i].PlayerID]
		split.Excluded[i].Conditional = isConditional
	}

	now := time.Now()
	pm := &models.PendingMatch{
		GuildID:                 req.GuildID,
		Radiant:                 split.Radiant,
		Dire:                    split.Dire,
		Excluded:                split.Excluded,
		LobbyType:               lobbyType,
		BettingMode:             bettingMode,
		BombPot:                 req.BombPot,
		BalancingSystem:         split.BalancingSystem,
		RadiantValue:            split.RadiantValue,
		DireValue:               split.DireValue,
		ValueDiff:               split.ValueDiff,
		GlickoRadiantWinProb:    split.GlickoRadiantWinProb,
		OpenSkillRadiantWinProb: split.OpenSkillRadiantWinProb,
		FirstPick:               split.FirstPick,
		ShuffleTime:             now.Unix(),
		BetLockUntil:            now.Unix() + int64(s.cfg.BetLockSeconds),
		Votes:                   make(map[int64]models.Vote),
		AvoidPairIDs:            split.EffectiveAvoidIDs,
		PackageDealIDs:          split.EffectiveDealIDs,
		CreatedAt:               now.Unix(),
	}

	byID := make(map[int64]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	inputs := make([]wager.BlindInput, 0, len(pm.Radiant)+len(pm.Dire))
	for _, seat := range pm.Radiant {
		p := byID[seat.PlayerID]
		inputs = append(inputs, wager.BlindInput{PlayerID: p.ID, Side: models.SideRadiant, Balance: p.Balance, CharityGames: p.CharityGames})
	}
	for _, seat := range pm.Dire {
		p := byID[seat.PlayerID]
		inputs = append(inputs, wager.BlindInput{PlayerID: p.ID, Side: models.SideDire, Balance: p.Balance, CharityGames: p.CharityGames})
	}
	plans := s.wagers.PlanBlinds(inputs, req.BombPot)

	var blindRadiant, blindDire int64
	err = s.st.WithTx(scope, func(tx *sql.Tx) error {
		id, err := s.st.SavePendingMatch(scope, tx, pm)
		if err != nil {
			return err
		}
		pm.ID = id
		if err := s.applyExclusionSteps(scope, tx, pm, byID); err != nil {
			return err
		}
		if len(plans) > 0 {
			blindRadiant, blindDire, err = s.wagers.ExecuteBlinds(scope, tx, pm, plans)
			if err != nil {
				return err
			}
		}
		if pm.IsDraft() {
			if err := s.st.InsertStakeRows(scope, tx, stakeRows(pm, now.Unix())); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.state.Adopt(scope, pm); err != nil {
		return nil, err
	}

	output := &models.ShuffleOutput{
		Pending:             pm,
		Goodness:            split.Goodness,
		CandidatesEvaluated: split.CandidatesEvaluated,
	}
	if len(plans) > 0 {
		output.AutoBlinds = make([]models.Bet, 0, len(plans))
		for _, plan := range plans {
			output.AutoBlinds = append(output.AutoBlinds, models.Bet{
				GuildID:        req.GuildID,
				PlayerID:       plan.PlayerID,
				PendingMatchID: pm.ID,
				Side:           plan.Side,
				Amount:         plan.Amount,
				Leverage:       1,
				IsBlind:        true,
				Status:         constants.BetStatusOpen,
				PlacedAt:       pm.ShuffleTime,
			})
		}
		if req.BombPot {
			output.BombPotAntes = make(map[int64]int64, len(plans))
			for _, plan := range plans {
				output.BombPotAntes[plan.PlayerID] = plan.Amount
			}
		}
	}

	s.metrics.AddShuffleElapsedTimeMs(req.GuildID, lobbyType, time.Since(started))
	s.metrics.AddShuffleCandidates(req.GuildID, lobbyType, split.CandidatesEvaluated)

	scope.SetAttributes(envelope.PendingMatchTag, pm.ID)
	scope.Log.WithFields(logrus.Fields{
		"guildID":        req.GuildID,
		"pendingMatchID": pm.ID,
		"lobbyType":      lobbyType,
		"bettingMode":    bettingMode,
		"bombPot":        req.BombPot,
		"excluded":       len(pm.Excluded),
		"autoBlinds":     len(plans),
		"blindRadiant":   blindRadiant,
		"blindDire":      blindDire,
		"betLockUntil":   pm.BetLockUntil,
	}).Info("pending match created")
	return output, nil
}

// loadPool fetches the pool and applies in-memory deviation decay so
// time away from the league widens uncertainty for balancing without
// touching the stored ratings.
func (s *Service) loadPool(scope *envelope.Scope, guildID int64, playerIDs []int64) ([]models.Player, error) {
	players, err := s.st.GetPlayers(scope, s.st.DB(), guildID, playerIDs)
	if err != nil {
		return nil, err
	}
	if len(players) != len(playerIDs) {
		found := make(map[int64]struct{}, len(players))
		for _, p := range players {
			found[p.ID] = struct{}{}
		}
		for _, id := range playerIDs {
			if _, ok := found[id]; !ok {
				return nil, fmt.Errorf("player %d: %w", id, models.ErrPlayerNotFound)
			}
		}
	}
	now := time.Now()
	for i := range players {
		players[i].Glicko.RD = rating.DecayedRD(players[i].Glicko.RD, players[i].LastMatchAt, now,
			s.cfg.RdDecayGraceSeconds, s.cfg.RdDecayC)
	}
	return players, nil
}

// applyExclusionSteps advances the bench-fairness counters: benched
// players climb a full step (conditionals half), seated players halve.
func (s *Service) applyExclusionSteps(scope *envelope.Scope, tx *sql.Tx, pm *models.PendingMatch, byID map[int64]models.Player) error {
	for _, ex := range pm.Excluded {
		step := 2
		if ex.Conditional {
			step = 1
		}
		if err := s.st.SetExclusionHalves(scope, tx, pm.GuildID, ex.PlayerID, byID[ex.PlayerID].ExclusionHalves+step); err != nil {
			return err
		}
	}
	for _, id := range pm.ParticipantIDs() {
		halves := byID[id].ExclusionHalves
		if halves == 0 {
			continue
		}
		if err := s.st.SetExclusionHalves(scope, tx, pm.GuildID, id, halves/2); err != nil {
			return err
		}
	}
	return nil
}

// stakeRows seats every pool member in the stake pool, bench included.
func stakeRows(pm *models.PendingMatch, now int64) []models.StakeRow {
	rows := make([]models.StakeRow, 0, len(pm.Radiant)+len(pm.Dire)+len(pm.Excluded))
	for _, seat := range pm.Radiant {
		rows = append(rows, models.StakeRow{GuildID: pm.GuildID, PlayerID: seat.PlayerID, PendingMatchID: pm.ID, Team: models.SideRadiant, StakedAt: now})
	}
	for _, seat := range pm.Dire {
		rows = append(rows, models.StakeRow{GuildID: pm.GuildID, PlayerID: seat.PlayerID, PendingMatchID: pm.ID, Team: models.SideDire, StakedAt: now})
	}
	for _, ex := range pm.Excluded {
		rows = append(rows, models.StakeRow{GuildID: pm.GuildID, PlayerID: ex.PlayerID, PendingMatchID: pm.ID, IsExcluded: true, StakedAt: now})
	}
	return rows
}

func (s *Service) rejectShuffle(guildID int64, err error) {
	switch {
	case errors.Is(err, models.ErrInsufficientPlayers):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonNotEnoughPlayers)
	case errors.Is(err, models.ErrRolesNotCoverable):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonRolesNotCoverable)
	}
}
