// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package wager

import (
	"math"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

// BlindInput is one seated participant at shuffle time.
type BlindInput struct {
	PlayerID     int64
	Side         models.Side
	Balance      int64
	CharityGames int
}

// BlindPlan is a forced wager to execute against the primary pool.
type BlindPlan struct {
	PlayerID int64
	Side     models.Side
	Amount   int64
}

// PlanBlinds computes the auto blinds for a freshly shuffled match.
// Normal rounds skip players under the threshold and apply the charity
// reduced rate where games remain. Bomb pot rounds ante everyone in and
// may push balances past the debt floor.
func (s *Service) PlanBlinds(inputs []BlindInput, bombPot bool) []BlindPlan {
	if !s.cfg.AutoBlindEnabled {
		return nil
	}
	plans := make([]BlindPlan, 0, len(inputs))
	for _, in := range inputs {
		var amount int64
		if bombPot {
			if in.Balance > 0 {
				amount = int64(math.Round(float64(in.Balance) * s.cfg.BombPotBlindRate))
			}
			amount += s.cfg.BombPotAnte
			if amount < s.cfg.BombPotAnte {
				amount = s.cfg.BombPotAnte
			}
		} else {
			if in.Balance < s.cfg.AutoBlindThreshold {
				continue
			}
			rate := s.cfg.AutoBlindRate
			if in.CharityGames > 0 {
				rate = s.cfg.CharityReducedRate
			}
			amount = int64(math.Round(float64(in.Balance) * rate))
			if amount < 1 {
				amount = 1
			}
		}
		plans = append(plans, BlindPlan{PlayerID: in.PlayerID, Side: in.Side, Amount: amount})
	}
	return plans
}

// ExecuteBlinds debits each planned blind and inserts its bet row,
// snapshotting the odds as the pool builds up. Runs on the caller's
// transaction so a failed shuffle leaves no partial blinds. Returns the
// per-side totals actually placed.
func (s *Service) ExecuteBlinds(scope *envelope.Scope, q store.Queryer, pm *models.PendingMatch, plans []BlindPlan) (radiantTotal, direTotal int64, err error) {
	for _, plan := range plans {
		totals, err := s.st.PoolTotals(scope, q, pm.GuildID, pm.ID)
		if err != nil {
			return radiantTotal, direTotal, err
		}
		if _, err := s.st.AddBalance(scope, q, pm.GuildID, plan.PlayerID, -plan.Amount); err != nil {
			return radiantTotal, direTotal, err
		}
		bet := &models.Bet{
			GuildID:         pm.GuildID,
			PlayerID:        plan.PlayerID,
			PendingMatchID:  pm.ID,
			Side:            plan.Side,
			Amount:          plan.Amount,
			Leverage:        1,
			IsBlind:         true,
			OddsAtPlacement: totals.Odds(plan.Side),
			Status:          constants.BetStatusOpen,
			PlacedAt:        pm.ShuffleTime,
		}
		if _, err := s.st.InsertBet(scope, q, bet); err != nil {
			return radiantTotal, direTotal, err
		}
		if plan.Side == models.SideRadiant {
			radiantTotal += plan.Amount
		} else {
			direTotal += plan.Amount
		}
	}
	return radiantTotal, direTotal, nil
}
