// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/wager"
)

// CorrectMatchResult reverses a recorded result and re-applies it under
// the corrected winner. Win/loss counters swap, both rating systems are
// recomputed from the rating-history before-snapshots with the inverted
// outcome, every settled wager pool is re-run and balances move by the
// payout difference, pairing win counters swap sides, and an audit row
// is written. Participation coins and win bonuses are left as paid; the
// books only move where the result decided a payout.
func (s *Service) CorrectMatchResult(scope *envelope.Scope, guildID, matchID int64, newWinner models.Side, correctedBy int64) (*models.CorrectionResult, error) {
	scope = scope.NewChildScope("League.CorrectMatchResult")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)
	scope.SetAttributes(envelope.MatchIDTag, matchID)

	if !newWinner.Valid() {
		return nil, models.ErrInvalidResult
	}
	if err := s.beginFinalize(guildID); err != nil {
		s.metrics.AddRejectedOperation(guildID, constants.ReasonRecordInProgress)
		return nil, err
	}
	defer s.endFinalize(guildID)

	var result *models.CorrectionResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		var txErr error
		result, txErr = s.correct(scope, tx, guildID, matchID, newWinner, correctedBy)
		return txErr
	})
	if err != nil {
		s.rejectFinalize(guildID, err)
		return nil, err
	}

	var net int64
	for _, delta := range result.NetDeltas {
		net += delta
	}
	s.metrics.AddCoinFlow(guildID, "correction_net", net)

	scope.Log.WithFields(logrus.Fields{
		"guildID":     guildID,
		"matchID":     matchID,
		"oldWinner":   int(result.OldWinner),
		"newWinner":   int(newWinner),
		"correctedBy": correctedBy,
		"playersHit":  len(result.NetDeltas),
	}).Info("match result corrected")
	return result, nil
}

func (s *Service) correct(scope *envelope.Scope, tx *sql.Tx, guildID, matchID int64, newWinner models.Side, correctedBy int64) (*models.CorrectionResult, error) {
	match, err := s.st.GetMatch(scope, tx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if match.Winner == newWinner {
		return nil, models.ErrMatchAlreadyRecorded
	}
	history, err := s.st.GetRatingHistory(scope, tx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, models.ErrNoRatingHistory
	}

	result := &models.CorrectionResult{
		MatchID:   matchID,
		OldWinner: match.Winner,
		NewWinner: newWinner,
		NetDeltas: make(map[int64]int64),
	}
	winnerIDs := match.SideIDs(newWinner)
	loserIDs := match.SideIDs(newWinner.Opposite())

	if err := s.reapplyRatings(scope, tx, guildID, history, winnerIDs, loserIDs, result); err != nil {
		return nil, err
	}
	if err := s.st.FlipMatchResult(scope, tx, guildID, matchID, newWinner); err != nil {
		return nil, err
	}
	if err := s.resettlePrimaryPool(scope, tx, match, newWinner, result); err != nil {
		return nil, err
	}
	if match.LobbyType == constants.LobbyTypeDraft {
		if err := s.resettleStakePool(scope, tx, match, newWinner, result); err != nil {
			return nil, err
		}
	}
	if err := s.resettleSpectatorPool(scope, tx, match, newWinner, result); err != nil {
		return nil, err
	}
	if err := s.pairs.SwapResult(scope, tx, guildID, match.RadiantIDs, match.DireIDs, newWinner); err != nil {
		return nil, err
	}
	if err := s.st.InsertMatchCorrection(scope, tx, models.MatchCorrection{
		MatchID:     matchID,
		GuildID:     guildID,
		OldWinner:   match.Winner,
		NewWinner:   newWinner,
		CorrectedBy: correctedBy,
		CorrectedAt: time.Now().Unix(),
	}); err != nil {
		return nil, err
	}
	return result, nil
}

// reapplyRatings replays the rating update from the history
// before-snapshots under the corrected winner. Stored fantasy weights
// carry over, so a correction after a Phase-2 enrichment keeps the
// weighted movement. Win/loss counters flip for every participant.
func (s *Service) reapplyRatings(scope *envelope.Scope, tx *sql.Tx, guildID int64, history []models.RatingHistory, winnerIDs, loserIDs []int64, result *models.CorrectionResult) error {
	byPlayer := make(map[int64]models.RatingHistory, len(history))
	for _, h := range history {
		byPlayer[h.PlayerID] = h
	}
	snapshot := func(ids []int64) ([]models.Glicko2Rating, []models.OpenSkillRating, []float64, error) {
		glicko := make([]models.Glicko2Rating, len(ids))
		openskill := make([]models.OpenSkillRating, len(ids))
		weights := make([]float64, len(ids))
		for i, id := range ids {
			h, ok := byPlayer[id]
			if !ok {
				return nil, nil, nil, models.ErrNoRatingHistory
			}
			glicko[i] = models.Glicko2Rating{Rating: h.RatingBefore, RD: h.RDBefore, Volatility: h.VolatilityBefore}
			openskill[i] = models.OpenSkillRating{Mu: h.MuBefore, Sigma: h.SigmaBefore}
			weights[i] = h.FantasyWeight
		}
		return glicko, openskill, weights, nil
	}
	winnerGlicko, winnerOS, winnerWeights, err := snapshot(winnerIDs)
	if err != nil {
		return err
	}
	loserGlicko, loserOS, loserWeights, err := snapshot(loserIDs)
	if err != nil {
		return err
	}

	outcome := s.glicko.RateTeams(winnerGlicko, loserGlicko)
	newWinnerOS, newLoserOS := s.openskill.RateWeighted(winnerOS, loserOS, winnerWeights, loserWeights)

	apply := func(ids []int64, before, after []models.Glicko2Rating, beforeOS, afterOS []models.OpenSkillRating, won bool, teamDelta, expected float64) error {
		for i, id := range ids {
			if err := s.st.SetRatings(scope, tx, guildID, id, after[i], afterOS[i]); err != nil {
				return err
			}
			if err := s.st.SwapWinLoss(scope, tx, guildID, id, won); err != nil {
				return err
			}
			h := byPlayer[id]
			h.Won = won
			h.RatingAfter = after[i].Rating
			h.RDAfter = after[i].RD
			h.VolatilityAfter = after[i].Volatility
			h.MuAfter = afterOS[i].Mu
			h.SigmaAfter = afterOS[i].Sigma
			if err := s.st.UpdateRatingHistoryAfter(scope, tx, h); err != nil {
				return err
			}
			result.Glicko = append(result.Glicko, models.GlickoChange{
				PlayerID: id, Before: before[i], After: after[i],
				TeamDelta: teamDelta, ExpectedTeamWinProb: expected, Won: won,
			})
			result.OpenSkill = append(result.OpenSkill, models.OpenSkillChange{
				PlayerID: id, Before: beforeOS[i], After: afterOS[i], Weight: h.FantasyWeight, Won: won,
			})
		}
		return nil
	}
	if err := apply(winnerIDs, winnerGlicko, outcome.Winners, winnerOS, newWinnerOS, true, outcome.WinnerDelta, outcome.WinnerExpected); err != nil {
		return err
	}
	return apply(loserIDs, loserGlicko, outcome.Losers, loserOS, newLoserOS, false, outcome.LoserDelta, 1-outcome.WinnerExpected)
}

// resettlePrimaryPool re-runs the pool or house book under the new
// winner and moves each bettor's balance by the payout difference.
func (s *Service) resettlePrimaryPool(scope *envelope.Scope, tx *sql.Tx, match *models.Match, newWinner models.Side, result *models.CorrectionResult) error {
	bets, err := s.st.GetSettledBets(scope, tx, match.GuildID, match.ID)
	if err != nil {
		return err
	}
	if len(bets) == 0 {
		return nil
	}
	var settled wager.PoolSettlement
	if match.BettingMode == constants.BettingModeHouse {
		settled = wager.SettleHouse(bets, newWinner, s.cfg.HousePayoutMultiplier)
	} else {
		settled = wager.SettlePool(bets, newWinner)
	}
	for _, p := range settled.Payouts {
		if err := s.applyDelta(scope, tx, match.GuildID, p.Bet.PlayerID, p.Payout-p.Bet.Payout, result); err != nil {
			return err
		}
		if err := s.st.ResettleBet(scope, tx, p.Bet.ID, p.Payout, p.Status()); err != nil {
			return err
		}
		s.metrics.AddBetSettled(match.GuildID, poolPrimary, p.Status())
	}
	return nil
}

// resettleStakePool re-mints the per-seat fate payouts and re-runs the
// optional player bets against the rebuilt combined pool. Excluded
// seats were paid under either result, so their delta is zero.
func (s *Service) resettleStakePool(scope *envelope.Scope, tx *sql.Tx, match *models.Match, newWinner models.Side, result *models.CorrectionResult) error {
	rows, err := s.st.GetStakeRowsByMatch(scope, tx, match.GuildID, match.ID)
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		settled := wager.SettleStakes(rows, newWinner, match.RadiantWinProb, s.cfg)
		for _, p := range settled.Payouts {
			if err := s.applyDelta(scope, tx, match.GuildID, p.Row.PlayerID, p.Payout-p.Row.Payout, result); err != nil {
				return err
			}
			if err := s.st.SetStakePayout(scope, tx, p.Row.ID, match.ID, p.Payout); err != nil {
				return err
			}
		}
	}

	poolBets, err := s.st.GetSettledPlayerPoolBets(scope, tx, match.GuildID, match.ID)
	if err != nil {
		return err
	}
	if len(poolBets) == 0 {
		return nil
	}
	// The combined pool is rebuilt from the carried win probability and
	// the settled bets themselves, matching the state settlement saw.
	radiantAuto, direAuto := wager.AutoLiquidity(match.RadiantWinProb, s.cfg)
	state := wager.StakeState{RadiantAuto: radiantAuto, DireAuto: direAuto}
	for _, b := range poolBets {
		if b.Side == models.SideRadiant {
			state.RadiantBets += b.Amount
		} else {
			state.DireBets += b.Amount
		}
	}
	for _, p := range wager.SettlePlayerPool(poolBets, newWinner, state) {
		status := constants.BetStatusLost
		if p.Won {
			status = constants.BetStatusWon
		}
		if err := s.applyDelta(scope, tx, match.GuildID, p.Bet.PlayerID, p.Payout-p.Bet.Payout, result); err != nil {
			return err
		}
		if err := s.st.SettlePlayerPoolBet(scope, tx, p.Bet.ID, match.ID, p.Payout, status); err != nil {
			return err
		}
		s.metrics.AddBetSettled(match.GuildID, poolStake, status)
	}
	return nil
}

// resettleSpectatorPool re-runs the side pool. The seat bonus is not
// stored per player, so the original split is recomputed the same way
// settlement produced it, clawed back from the old winning seats, and
// paid to the new ones.
func (s *Service) resettleSpectatorPool(scope *envelope.Scope, tx *sql.Tx, match *models.Match, newWinner models.Side, result *models.CorrectionResult) error {
	bets, err := s.st.GetSettledSpectatorBets(scope, tx, match.GuildID, match.ID)
	if err != nil {
		return err
	}
	if len(bets) == 0 {
		return nil
	}
	oldWinnerIDs := match.SideIDs(match.Winner)
	newWinnerIDs := match.SideIDs(newWinner)
	oldSettled := wager.SettleSpectator(bets, match.Winner, len(oldWinnerIDs), s.cfg.SpectatorPlayerCut)
	newSettled := wager.SettleSpectator(bets, newWinner, len(newWinnerIDs), s.cfg.SpectatorPlayerCut)

	for _, p := range newSettled.Payouts {
		status := constants.BetStatusLost
		if p.Won {
			status = constants.BetStatusWon
		}
		if err := s.applyDelta(scope, tx, match.GuildID, p.Bet.SpectatorID, p.Payout-p.Bet.Payout, result); err != nil {
			return err
		}
		if err := s.st.SettleSpectatorBet(scope, tx, p.Bet.ID, match.ID, p.Payout, status); err != nil {
			return err
		}
		s.metrics.AddBetSettled(match.GuildID, poolSpectator, status)
	}
	for _, id := range oldWinnerIDs {
		if err := s.applyDelta(scope, tx, match.GuildID, id, -oldSettled.BonusEach, result); err != nil {
			return err
		}
	}
	for _, id := range newWinnerIDs {
		if err := s.applyDelta(scope, tx, match.GuildID, id, newSettled.BonusEach, result); err != nil {
			return err
		}
	}
	return nil
}

// applyDelta moves one balance by a correction difference and folds it
// into the per-player net.
func (s *Service) applyDelta(scope *envelope.Scope, tx *sql.Tx, guildID, playerID, delta int64, result *models.CorrectionResult) error {
	if delta == 0 {
		return nil
	}
	if _, err := s.st.AddBalance(scope, tx, guildID, playerID, delta); err != nil {
		return err
	}
	result.NetDeltas[playerID] += delta
	return nil
}
