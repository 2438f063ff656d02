// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"database/sql"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/rating"
	"github.com/AccelByte/extend-inhouse-league/pkg/wager"
)

// RecordMatch finalizes a pending match. The whole settlement runs in
// one serializable transaction: the match row, participation coins,
// every wager pool, loan repayments, both rating systems, pairing
// stats, and the pending cleanup land together or not at all. A zero
// pendingMatchID resolves the guild's only pending match.
func (s *Service) RecordMatch(scope *envelope.Scope, guildID, pendingMatchID int64, winner models.Side, recordedBy int64, notes string) (*models.RecordResult, error) {
	scope = scope.NewChildScope("League.RecordMatch")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	if !winner.Valid() {
		return nil, models.ErrInvalidResult
	}
	if err := s.beginFinalize(guildID); err != nil {
		s.metrics.AddRejectedOperation(guildID, constants.ReasonRecordInProgress)
		return nil, err
	}
	defer s.endFinalize(guildID)

	started := time.Now()
	var result *models.RecordResult
	var resolvedID int64
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		var txErr error
		result, resolvedID, txErr = s.settle(scope, tx, guildID, pendingMatchID, winner, recordedBy, notes, started)
		return txErr
	})
	if err != nil {
		s.rejectFinalize(guildID, err)
		return nil, err
	}
	s.state.Drop(guildID, resolvedID)

	s.metrics.AddRecordElapsedTimeMs(guildID, result.LobbyType, time.Since(started))
	s.emitRecordFlows(guildID, result)

	scope.SetAttributes(envelope.MatchIDTag, result.MatchID)
	scope.Log.WithFields(logrus.Fields{
		"guildID":   guildID,
		"matchID":   result.MatchID,
		"winner":    int(winner),
		"lobbyType": result.LobbyType,
		"bets":      result.Bets != nil,
		"stakes":    result.Stakes != nil,
		"loans":     len(result.Loans),
	}).Info("match recorded")
	return result, nil
}

// settle runs the settlement pipeline on the caller's transaction and
// returns the result plus the consumed pending id.
func (s *Service) settle(scope *envelope.Scope, tx *sql.Tx, guildID, pendingMatchID int64, winner models.Side, recordedBy int64, notes string, now time.Time) (*models.RecordResult, int64, error) {
	var pm *models.PendingMatch
	var err error
	if pendingMatchID != 0 {
		pm, err = s.st.GetPendingMatchByID(scope, tx, guildID, pendingMatchID)
	} else {
		pm, err = s.st.GetPendingMatch(scope, tx, guildID)
	}
	if err != nil {
		return nil, 0, err
	}
	for _, ex := range pm.Excluded {
		if pm.TeamOf(ex.PlayerID) != models.SideNone {
			return nil, 0, models.ErrExcludedInTeams
		}
	}
	participantIDs := pm.ParticipantIDs()
	players, err := s.loadParticipants(scope, tx, guildID, participantIDs)
	if err != nil {
		return nil, 0, err
	}
	winnerIDs := pm.SideIDs(winner)
	loserIDs := pm.SideIDs(winner.Opposite())

	// The match row and its seats.
	match := &models.Match{
		GuildID:         guildID,
		RadiantIDs:      pm.SideIDs(models.SideRadiant),
		DireIDs:         pm.SideIDs(models.SideDire),
		Winner:          winner,
		LobbyType:       pm.LobbyType,
		BettingMode:     pm.BettingMode,
		BalancingSystem: pm.BalancingSystem,
		RadiantWinProb:  pm.GlickoRadiantWinProb,
		Notes:           notes,
		RecordedBy:      recordedBy,
		CreatedAt:       now.Unix(),
	}
	participants := make([]models.MatchParticipant, 0, len(participantIDs))
	for _, seat := range pm.Radiant {
		participants = append(participants, models.MatchParticipant{
			GuildID: guildID, PlayerID: seat.PlayerID, Team: models.SideRadiant,
			Won: winner == models.SideRadiant, Role: seat.Role,
		})
	}
	for _, seat := range pm.Dire {
		participants = append(participants, models.MatchParticipant{
			GuildID: guildID, PlayerID: seat.PlayerID, Team: models.SideDire,
			Won: winner == models.SideDire, Role: seat.Role,
		})
	}
	matchID, err := s.st.InsertMatch(scope, tx, match, participants)
	if err != nil {
		return nil, 0, err
	}

	result := &models.RecordResult{
		MatchID:          matchID,
		Winner:           winner,
		LobbyType:        pm.LobbyType,
		Participation:    make(map[int64]int64),
		WinBonuses:       make(map[int64]models.WinBonus),
		ExclusionBonuses: make(map[int64]int64),
	}

	// Participation coins go to the losing side; winners get the win
	// bonus instead. Bomb pots add a bonus for every seat.
	for _, id := range loserIDs {
		income, err := s.eco.AddIncome(scope, tx, guildID, id, s.cfg.CoinsPerGame)
		if err != nil {
			return nil, 0, err
		}
		result.Participation[id] = income.Gross
	}
	if pm.BombPot {
		result.BombPotBonuses = make(map[int64]int64, len(participantIDs))
		for _, id := range participantIDs {
			income, err := s.eco.AddIncome(scope, tx, guildID, id, s.cfg.BombPotParticipationBonus)
			if err != nil {
				return nil, 0, err
			}
			result.BombPotBonuses[id] = income.Gross
		}
	}
	// Penalty windows tick on wins only; charity games tick for anyone
	// seated with games remaining.
	for _, id := range winnerIDs {
		if err := s.st.DecrementPenaltyGames(scope, tx, guildID, id); err != nil {
			return nil, 0, err
		}
	}
	for _, id := range participantIDs {
		if players[id].CharityGames > 0 {
			if err := s.st.DecrementCharityGames(scope, tx, guildID, id); err != nil {
				return nil, 0, err
			}
		}
	}

	// Primary pool.
	bets, err := s.st.GetOpenBets(scope, tx, guildID, pm.ID)
	if err != nil {
		return nil, 0, err
	}
	if len(bets) > 0 {
		result.Bets, err = s.settlePrimaryPool(scope, tx, pm, matchID, winner, bets)
		if err != nil {
			return nil, 0, err
		}
	}

	// Win bonuses, halved while a bankruptcy penalty window is active.
	// The window already ticked above, so the final penalty game pays
	// in full.
	penalties, err := s.st.GetPenaltyStates(scope, tx, guildID, winnerIDs)
	if err != nil {
		return nil, 0, err
	}
	for _, id := range winnerIDs {
		reward := s.cfg.CoinsWinReward
		bonus := models.WinBonus{}
		if state, active := penalties[id]; active && state.PenaltyGamesRemaining > 0 {
			reward, _ = s.eco.PenalizeWinnings(reward, state.PenaltyGamesRemaining)
			bonus.PenaltyApplied = true
		}
		income, err := s.eco.AddIncome(scope, tx, guildID, id, reward)
		if err != nil {
			return nil, 0, err
		}
		bonus.Gross = income.Gross
		bonus.Garnished = income.Garnished
		bonus.Net = income.Net
		result.WinBonuses[id] = bonus
	}

	// Exclusion compensation, halved for conditional bench seats.
	for _, ex := range pm.Excluded {
		reward := s.cfg.CoinsExclusionReward
		if ex.Conditional {
			reward /= 2
		}
		income, err := s.eco.AddIncome(scope, tx, guildID, ex.PlayerID, reward)
		if err != nil {
			return nil, 0, err
		}
		result.ExclusionBonuses[ex.PlayerID] = income.Gross
	}

	// Draft stake pool, then the spectator side pool.
	if pm.IsDraft() {
		result.Stakes, err = s.settleStakePool(scope, tx, pm, matchID, winner)
		if err != nil {
			return nil, 0, err
		}
	}
	specBets, err := s.st.GetOpenSpectatorBets(scope, tx, guildID, pm.ID)
	if err != nil {
		return nil, 0, err
	}
	if len(specBets) > 0 {
		result.Spectators, err = s.settleSpectatorPool(scope, tx, pm, matchID, winner, winnerIDs, specBets)
		if err != nil {
			return nil, 0, err
		}
	}

	// Outstanding loans collect from whatever the game paid out.
	for _, id := range participantIDs {
		repayment, err := s.eco.RepayLoan(scope, tx, guildID, id)
		if err != nil {
			return nil, 0, err
		}
		if repayment != nil {
			result.Loans = append(result.Loans, *repayment)
		}
	}

	// Both rating systems move on the same snapshot.
	result.Glicko, result.OpenSkill, err = s.applyRatings(scope, tx, pm, matchID, winner, players, now)
	if err != nil {
		return nil, 0, err
	}

	// Pairwise stats and the consumed avoid and deal games.
	if err := s.pairs.Record(scope, tx, guildID, match.RadiantIDs, match.DireIDs, winner); err != nil {
		return nil, 0, err
	}
	result.PairingsUpdated = pairCount(len(match.RadiantIDs), len(match.DireIDs))
	if err := s.st.DecayAvoidsByID(scope, tx, guildID, pm.AvoidPairIDs); err != nil {
		return nil, 0, err
	}
	if err := s.st.DecayPackageDealsByID(scope, tx, guildID, pm.PackageDealIDs); err != nil {
		return nil, 0, err
	}

	if err := s.st.DeletePendingMatch(scope, tx, guildID, pm.ID); err != nil {
		return nil, 0, err
	}
	return result, pm.ID, nil
}

// settlePrimaryPool resolves the pool or house book, credits payouts,
// and reports the mint or burn against the pot.
func (s *Service) settlePrimaryPool(scope *envelope.Scope, tx *sql.Tx, pm *models.PendingMatch, matchID int64, winner models.Side, bets []models.Bet) (*models.PoolSettlement, error) {
	var settled wager.PoolSettlement
	if pm.BettingMode == constants.BettingModeHouse {
		settled = wager.SettleHouse(bets, winner, s.cfg.HousePayoutMultiplier)
	} else {
		settled = wager.SettlePool(bets, winner)
	}
	out := &models.PoolSettlement{
		Mode:         pm.BettingMode,
		Winner:       winner,
		Total:        settled.Total,
		WinningTotal: settled.WinningTotal,
		Payouts:      make(map[int64]int64),
		Refunds:      make(map[int64]int64),
		Refunded:     settled.Refunded,
	}
	var paid int64
	for _, p := range settled.Payouts {
		if err := s.st.SettleBet(scope, tx, p.Bet.ID, matchID, p.Payout, p.Status()); err != nil {
			return nil, err
		}
		s.metrics.AddBetSettled(pm.GuildID, poolPrimary, p.Status())
		if p.Payout <= 0 {
			continue
		}
		if _, err := s.st.AddBalance(scope, tx, pm.GuildID, p.Bet.PlayerID, p.Payout); err != nil {
			return nil, err
		}
		paid += p.Payout
		if p.Refunded {
			out.Refunds[p.Bet.PlayerID] += p.Payout
		} else {
			out.Payouts[p.Bet.PlayerID] += p.Payout
		}
	}
	switch {
	case settled.Refunded:
		// One-sided pool; stakes went back untouched.
	case pm.BettingMode == constants.BettingModeHouse:
		out.Burned = settled.Total - settled.WinningTotal
		out.Minted = paid - settled.WinningTotal
	case paid > settled.Total:
		out.Minted = paid - settled.Total
	default:
		out.Burned = settled.Total - paid
	}
	return out, nil
}

// settleStakePool mints the per-seat payouts for the winning draft side
// and the bench, then resolves optional player bets against the
// combined auto-liquidity pool.
func (s *Service) settleStakePool(scope *envelope.Scope, tx *sql.Tx, pm *models.PendingMatch, matchID int64, winner models.Side) (*models.StakeSettlement, error) {
	rows, err := s.st.GetStakeRows(scope, tx, pm.GuildID, pm.ID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	state, err := s.wagers.StakePoolState(scope, tx, pm)
	if err != nil {
		return nil, err
	}
	poolBets, err := s.st.GetOpenPlayerPoolBets(scope, tx, pm.GuildID, pm.ID)
	if err != nil {
		return nil, err
	}

	settled := wager.SettleStakes(rows, winner, pm.GlickoRadiantWinProb, s.cfg)
	out := &models.StakeSettlement{
		RadiantAuto:   int64(math.Round(state.RadiantAuto)),
		DireAuto:      int64(math.Round(state.DireAuto)),
		WinnerProb:    settled.WinnerProb,
		PlayerPayouts: make(map[int64]int64),
		Minted:        settled.PerWinner,
	}
	for _, p := range settled.Payouts {
		if err := s.st.SetStakePayout(scope, tx, p.Row.ID, matchID, p.Payout); err != nil {
			return nil, err
		}
		if p.Payout <= 0 {
			continue
		}
		if _, err := s.st.AddBalance(scope, tx, pm.GuildID, p.Row.PlayerID, p.Payout); err != nil {
			return nil, err
		}
		out.PlayerPayouts[p.Row.PlayerID] = p.Payout
	}
	if len(poolBets) > 0 {
		out.PoolBetPayouts = make(map[int64]int64)
		for _, p := range wager.SettlePlayerPool(poolBets, winner, state) {
			status := constants.BetStatusLost
			if p.Won {
				status = constants.BetStatusWon
			}
			if err := s.st.SettlePlayerPoolBet(scope, tx, p.Bet.ID, matchID, p.Payout, status); err != nil {
				return nil, err
			}
			s.metrics.AddBetSettled(pm.GuildID, poolStake, status)
			if p.Payout <= 0 {
				continue
			}
			if _, err := s.st.AddBalance(scope, tx, pm.GuildID, p.Bet.PlayerID, p.Payout); err != nil {
				return nil, err
			}
			out.PoolBetPayouts[p.Bet.PlayerID] += p.Payout
		}
	}
	return out, nil
}

// settleSpectatorPool splits the side pool between winning bettors and
// the winning seats.
func (s *Service) settleSpectatorPool(scope *envelope.Scope, tx *sql.Tx, pm *models.PendingMatch, matchID int64, winner models.Side, winnerIDs []int64, bets []models.SpectatorBet) (*models.SpectatorSettlement, error) {
	settled := wager.SettleSpectator(bets, winner, len(winnerIDs), s.cfg.SpectatorPlayerCut)
	out := &models.SpectatorSettlement{
		Total:           settled.Total,
		BettorShare:     settled.Total - settled.ParticipantBonus,
		PlayerBonus:     settled.ParticipantBonus,
		PlayerBonusEach: settled.BonusEach,
		Payouts:         make(map[int64]int64),
		Refunded:        settled.WinningTotal == 0,
	}
	if settled.WinningTotal > 0 {
		out.Multiplier = float64(settled.Total) * (1 - s.cfg.SpectatorPlayerCut) / float64(settled.WinningTotal)
	}
	for _, p := range settled.Payouts {
		status := constants.BetStatusLost
		if p.Won {
			status = constants.BetStatusWon
		}
		if err := s.st.SettleSpectatorBet(scope, tx, p.Bet.ID, matchID, p.Payout, status); err != nil {
			return nil, err
		}
		s.metrics.AddBetSettled(pm.GuildID, poolSpectator, status)
		if p.Payout <= 0 {
			continue
		}
		if _, err := s.st.AddBalance(scope, tx, pm.GuildID, p.Bet.SpectatorID, p.Payout); err != nil {
			return nil, err
		}
		out.Payouts[p.Bet.SpectatorID] += p.Payout
	}
	if settled.BonusEach > 0 {
		out.BonusRecipients = append([]int64(nil), winnerIDs...)
		for _, id := range winnerIDs {
			if _, err := s.st.AddBalance(scope, tx, pm.GuildID, id, settled.BonusEach); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

// applyRatings runs the Glicko-2 team update on decayed deviations plus
// the equal-weight OpenSkill pass, persists both, and snapshots rating
// history per participant. History before-values hold the decayed
// inputs so corrections replay exactly what was rated.
func (s *Service) applyRatings(scope *envelope.Scope, tx *sql.Tx, pm *models.PendingMatch, matchID int64, winner models.Side, players map[int64]models.Player, now time.Time) ([]models.GlickoChange, []models.OpenSkillChange, error) {
	winnerIDs := pm.SideIDs(winner)
	loserIDs := pm.SideIDs(winner.Opposite())

	snapshot := func(ids []int64) ([]models.Glicko2Rating, []models.OpenSkillRating) {
		glicko := make([]models.Glicko2Rating, len(ids))
		openskill := make([]models.OpenSkillRating, len(ids))
		for i, id := range ids {
			p := players[id]
			glicko[i] = p.Glicko
			glicko[i].RD = rating.DecayedRD(p.Glicko.RD, p.LastMatchAt, now, s.cfg.RdDecayGraceSeconds, s.cfg.RdDecayC)
			openskill[i] = p.OpenSkill
		}
		return glicko, openskill
	}
	winnerGlicko, winnerOS := snapshot(winnerIDs)
	loserGlicko, loserOS := snapshot(loserIDs)

	outcome := s.glicko.RateTeams(winnerGlicko, loserGlicko)
	newWinnerOS, newLoserOS := s.openskill.RateEqual(winnerOS, loserOS)

	glickoChanges := make([]models.GlickoChange, 0, len(winnerIDs)+len(loserIDs))
	osChanges := make([]models.OpenSkillChange, 0, len(winnerIDs)+len(loserIDs))

	apply := func(ids []int64, before, after []models.Glicko2Rating, beforeOS, afterOS []models.OpenSkillRating, won bool, teamDelta, expected float64) error {
		for i, id := range ids {
			calibrated := after[i].RD <= s.cfg.CalibrationRD
			if err := s.st.ApplyMatchOutcome(scope, tx, pm.GuildID, id, won, after[i], afterOS[i], now.Unix(), calibrated); err != nil {
				return err
			}
			history := models.RatingHistory{
				MatchID:             matchID,
				PlayerID:            id,
				GuildID:             pm.GuildID,
				Team:                pm.TeamOf(id),
				Won:                 won,
				RatingBefore:        before[i].Rating,
				RatingAfter:         after[i].Rating,
				RDBefore:            before[i].RD,
				RDAfter:             after[i].RD,
				VolatilityBefore:    before[i].Volatility,
				VolatilityAfter:     after[i].Volatility,
				MuBefore:            beforeOS[i].Mu,
				MuAfter:             afterOS[i].Mu,
				SigmaBefore:         beforeOS[i].Sigma,
				SigmaAfter:          afterOS[i].Sigma,
				ExpectedTeamWinProb: expected,
				FantasyWeight:       1,
				CreatedAt:           now.Unix(),
			}
			if err := s.st.InsertRatingHistory(scope, tx, history); err != nil {
				return err
			}
			glickoChanges = append(glickoChanges, models.GlickoChange{
				PlayerID: id, Before: before[i], After: after[i],
				TeamDelta: teamDelta, ExpectedTeamWinProb: expected, Won: won,
			})
			osChanges = append(osChanges, models.OpenSkillChange{
				PlayerID: id, Before: beforeOS[i], After: afterOS[i], Weight: 1, Won: won,
			})
		}
		return nil
	}
	if err := apply(winnerIDs, winnerGlicko, outcome.Winners, winnerOS, newWinnerOS, true, outcome.WinnerDelta, outcome.WinnerExpected); err != nil {
		return nil, nil, err
	}
	if err := apply(loserIDs, loserGlicko, outcome.Losers, loserOS, newLoserOS, false, outcome.LoserDelta, 1-outcome.WinnerExpected); err != nil {
		return nil, nil, err
	}
	return glickoChanges, osChanges, nil
}

// AbortMatch refunds every open wager and deletes the pending match.
// No match row, no rating movement, no participation coins.
func (s *Service) AbortMatch(scope *envelope.Scope, guildID, pendingMatchID int64) (*models.AbortResult, error) {
	scope = scope.NewChildScope("League.AbortMatch")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	if err := s.beginFinalize(guildID); err != nil {
		s.metrics.AddRejectedOperation(guildID, constants.ReasonRecordInProgress)
		return nil, err
	}
	defer s.endFinalize(guildID)

	var result *models.AbortResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		var pm *models.PendingMatch
		var err error
		if pendingMatchID != 0 {
			pm, err = s.st.GetPendingMatchByID(scope, tx, guildID, pendingMatchID)
		} else {
			pm, err = s.st.GetPendingMatch(scope, tx, guildID)
		}
		if err != nil {
			return err
		}
		result = &models.AbortResult{
			PendingMatchID:   pm.ID,
			BetRefunds:       make(map[int64]int64),
			PoolBetRefunds:   make(map[int64]int64),
			SpectatorRefunds: make(map[int64]int64),
		}

		bets, err := s.st.GetOpenBets(scope, tx, guildID, pm.ID)
		if err != nil {
			return err
		}
		for _, b := range bets {
			if _, err := s.st.AddBalance(scope, tx, guildID, b.PlayerID, b.EffectiveStake()); err != nil {
				return err
			}
			result.BetRefunds[b.PlayerID] += b.EffectiveStake()
		}
		if err := s.st.DeleteOpenBets(scope, tx, guildID, pm.ID); err != nil {
			return err
		}

		poolBets, err := s.st.GetOpenPlayerPoolBets(scope, tx, guildID, pm.ID)
		if err != nil {
			return err
		}
		for _, b := range poolBets {
			if _, err := s.st.AddBalance(scope, tx, guildID, b.PlayerID, b.Amount); err != nil {
				return err
			}
			result.PoolBetRefunds[b.PlayerID] += b.Amount
		}
		if err := s.st.DeleteOpenPlayerPoolBets(scope, tx, guildID, pm.ID); err != nil {
			return err
		}

		specBets, err := s.st.GetOpenSpectatorBets(scope, tx, guildID, pm.ID)
		if err != nil {
			return err
		}
		for _, b := range specBets {
			if _, err := s.st.AddBalance(scope, tx, guildID, b.SpectatorID, b.Amount); err != nil {
				return err
			}
			result.SpectatorRefunds[b.SpectatorID] += b.Amount
		}
		if err := s.st.DeleteOpenSpectatorBets(scope, tx, guildID, pm.ID); err != nil {
			return err
		}

		stakes, err := s.st.GetStakeRows(scope, tx, guildID, pm.ID)
		if err != nil {
			return err
		}
		if len(stakes) > 0 {
			if err := s.st.DeleteStakeRows(scope, tx, guildID, pm.ID); err != nil {
				return err
			}
			result.StakesCleared = len(stakes)
		}

		return s.st.DeletePendingMatch(scope, tx, guildID, pm.ID)
	})
	if err != nil {
		s.rejectFinalize(guildID, err)
		return nil, err
	}
	s.state.Drop(guildID, result.PendingMatchID)

	s.metrics.AddCoinFlow(guildID, "bet_refund", sumValues(result.BetRefunds))
	s.metrics.AddCoinFlow(guildID, "bet_refund", sumValues(result.PoolBetRefunds))
	s.metrics.AddCoinFlow(guildID, "bet_refund", sumValues(result.SpectatorRefunds))

	scope.Log.WithFields(logrus.Fields{
		"guildID":          guildID,
		"pendingMatchID":   result.PendingMatchID,
		"betRefunds":       len(result.BetRefunds),
		"poolBetRefunds":   len(result.PoolBetRefunds),
		"spectatorRefunds": len(result.SpectatorRefunds),
		"stakesCleared":    result.StakesCleared,
	}).Info("pending match aborted")
	return result, nil
}

func (s *Service) emitRecordFlows(guildID int64, result *models.RecordResult) {
	s.metrics.AddCoinFlow(guildID, "participation", sumValues(result.Participation))
	s.metrics.AddCoinFlow(guildID, "bomb_pot_bonus", sumValues(result.BombPotBonuses))
	var winTotal int64
	for _, bonus := range result.WinBonuses {
		winTotal += bonus.Gross
	}
	s.metrics.AddCoinFlow(guildID, "win_bonus", winTotal)
	s.metrics.AddCoinFlow(guildID, "exclusion_bonus", sumValues(result.ExclusionBonuses))
	if result.Bets != nil {
		s.metrics.AddCoinFlow(guildID, "bet_payout", sumValues(result.Bets.Payouts))
		s.metrics.AddCoinFlow(guildID, "bet_refund", sumValues(result.Bets.Refunds))
	}
	if result.Stakes != nil {
		s.metrics.AddCoinFlow(guildID, "stake_minted", sumValues(result.Stakes.PlayerPayouts))
		s.metrics.AddCoinFlow(guildID, "stake_pool_payout", sumValues(result.Stakes.PoolBetPayouts))
	}
	if result.Spectators != nil {
		s.metrics.AddCoinFlow(guildID, "spectator_payout", sumValues(result.Spectators.Payouts))
		s.metrics.AddCoinFlow(guildID, "spectator_bonus", result.Spectators.PlayerBonusEach*int64(len(result.Spectators.BonusRecipients)))
	}
	var loanTotal int64
	for _, repayment := range result.Loans {
		loanTotal += repayment.Principal + repayment.Fee
	}
	s.metrics.AddCoinFlow(guildID, "loan_repayment", loanTotal)
}

// pairCount is the number of pairing rows one match touches.
func pairCount(radiant, dire int) int {
	return radiant*(radiant-1)/2 + dire*(dire-1)/2 + radiant*dire
}
