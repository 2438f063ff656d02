// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package wager

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func testConfig() *config.Config {
	return &config.Config{
		HousePayoutMultiplier: 1.0,
		StakePoolSize:         50,
		StakePerPlayer:        5,
		StakeWinProbMin:       0.10,
		StakeWinProbMax:       0.90,
		SpectatorPlayerCut:    0.10,
	}
}

func bet(playerID int64, side models.Side, amount, leverage int64) models.Bet {
	return models.Bet{PlayerID: playerID, Side: side, Amount: amount, Leverage: leverage}
}

func TestSettlePool_TwoSidedPoolPaysWinnerTheWholePot(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.Bet{
		bet(1, models.SideRadiant, 50, 1),
		bet(2, models.SideDire, 50, 1),
	}
	out := SettlePool(bets, models.SideRadiant)

	g.Expect(out.Total).To(Equal(int64(100)))
	g.Expect(out.WinningTotal).To(Equal(int64(50)))
	g.Expect(out.Refunded).To(BeFalse())
	g.Expect(out.Payouts).To(HaveLen(2))
	g.Expect(out.Payouts[0].Won).To(BeTrue())
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(100)))
	g.Expect(out.Payouts[1].Won).To(BeFalse())
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(0)))
}

func TestSettlePool_OneSidedPoolRefundsEveryStake(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.Bet{
		bet(1, models.SideDire, 30, 2),
		bet(2, models.SideDire, 10, 1),
	}
	out := SettlePool(bets, models.SideRadiant)

	g.Expect(out.Refunded).To(BeTrue())
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(60)))
	g.Expect(out.Payouts[0].Refunded).To(BeTrue())
	g.Expect(out.Payouts[0].Status()).To(Equal("refunded"))
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(10)))
}

func TestSettlePool_LeverageScalesTheStakeAndTheShare(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.Bet{
		bet(1, models.SideRadiant, 10, 5),
		bet(2, models.SideRadiant, 50, 1),
		bet(3, models.SideDire, 100, 1),
	}
	out := SettlePool(bets, models.SideRadiant)

	g.Expect(out.Total).To(Equal(int64(200)))
	g.Expect(out.WinningTotal).To(Equal(int64(100)))
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(100)))
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(100)))
	g.Expect(out.Payouts[2].Payout).To(Equal(int64(0)))
}

func TestSettlePool_RoundingNeverShortsAWinner(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.Bet{
		bet(1, models.SideRadiant, 1, 1),
		bet(2, models.SideRadiant, 2, 1),
		bet(3, models.SideDire, 4, 1),
	}
	out := SettlePool(bets, models.SideRadiant)

	var paid int64
	for _, p := range out.Payouts {
		if p.Won {
			g.Expect(p.Payout).To(BeNumerically(">=", p.Bet.EffectiveStake()))
			paid += p.Payout
		}
	}
	// Ceiling division may mint a coin or two past the pot.
	g.Expect(paid).To(BeNumerically(">=", out.Total))
}

func TestSettleHouse_PaysMultiplierAndBurnsLosers(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.Bet{
		bet(1, models.SideRadiant, 50, 1),
		bet(2, models.SideDire, 50, 1),
	}
	out := SettleHouse(bets, models.SideRadiant, 1.0)

	g.Expect(out.Payouts[0].Won).To(BeTrue())
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(100)))
	g.Expect(out.Payouts[1].Won).To(BeFalse())
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(0)))
	g.Expect(out.Refunded).To(BeFalse())
}

func TestAutoLiquidity_SplitsByOppositeWinProbability(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	radiant, dire := AutoLiquidity(0.55, testConfig())

	g.Expect(radiant).To(BeNumerically("~", 22.5, 1e-9))
	g.Expect(dire).To(BeNumerically("~", 27.5, 1e-9))
}

func TestAutoLiquidity_ClampsExtremeProbabilities(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	radiant, dire := AutoLiquidity(0.99, testConfig())

	g.Expect(radiant).To(BeNumerically("~", 5.0, 1e-9))
	g.Expect(dire).To(BeNumerically("~", 45.0, 1e-9))
}

func TestMintedPayout_UnderdogWinMintsMore(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	cfg := testConfig()

	g.Expect(MintedPayout(0.55, models.SideDire, cfg)).To(Equal(int64(11)))
	g.Expect(MintedPayout(0.55, models.SideRadiant, cfg)).To(Equal(int64(9)))
}

func TestSettleStakes_PaysWinnersAndExcludedAlike(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	rows := []models.StakeRow{
		{ID: 1, PlayerID: 1, Team: models.SideRadiant},
		{ID: 2, PlayerID: 2, Team: models.SideDire},
		{ID: 3, PlayerID: 3, IsExcluded: true},
	}
	out := SettleStakes(rows, models.SideDire, 0.55, testConfig())

	g.Expect(out.PerWinner).To(Equal(int64(11)))
	g.Expect(out.WinnerProb).To(BeNumerically("~", 0.45, 1e-9))
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(0)))
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(11)))
	g.Expect(out.Payouts[2].Payout).To(Equal(int64(11)))
}

func TestSettlePlayerPool_MultiplierComesFromTheCombinedPool(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := StakeState{RadiantAuto: 22.5, DireAuto: 27.5, RadiantBets: 10, DireBets: 40}
	bets := []models.PlayerPoolBet{
		{ID: 1, PlayerID: 1, Side: models.SideRadiant, Amount: 10},
		{ID: 2, PlayerID: 2, Side: models.SideDire, Amount: 40},
	}
	out := SettlePlayerPool(bets, models.SideRadiant, state)

	// Combined pool 100 over radiant side 32.5, share truncated.
	g.Expect(out[0].Won).To(BeTrue())
	g.Expect(out[0].Payout).To(Equal(int64(30)))
	g.Expect(out[1].Won).To(BeFalse())
	g.Expect(out[1].Payout).To(Equal(int64(0)))
}

func TestSettleSpectator_SplitsBettorAndPlayerShares(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.SpectatorBet{
		{ID: 1, SpectatorID: 11, Side: models.SideRadiant, Amount: 60},
		{ID: 2, SpectatorID: 12, Side: models.SideDire, Amount: 40},
	}
	out := SettleSpectator(bets, models.SideRadiant, 5, 0.10)

	g.Expect(out.Total).To(Equal(int64(100)))
	g.Expect(out.WinningTotal).To(Equal(int64(60)))
	g.Expect(out.ParticipantBonus).To(Equal(int64(10)))
	g.Expect(out.BonusEach).To(Equal(int64(2)))
	// Bettor share 90 over the 60 backing the winner.
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(90)))
	g.Expect(out.Payouts[1].Payout).To(Equal(int64(0)))
}

func TestSettleSpectator_NoWinningBettorRoutesThePoolToPlayers(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	bets := []models.SpectatorBet{
		{ID: 1, SpectatorID: 11, Side: models.SideDire, Amount: 100},
	}
	out := SettleSpectator(bets, models.SideRadiant, 5, 0.10)

	g.Expect(out.ParticipantBonus).To(Equal(int64(100)))
	g.Expect(out.BonusEach).To(Equal(int64(20)))
	g.Expect(out.Payouts[0].Payout).To(Equal(int64(0)))
}

func TestStakeState_MultiplierHandlesEmptySides(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	state := StakeState{RadiantAuto: 0, DireAuto: 50}
	g.Expect(state.Multiplier(models.SideRadiant)).To(Equal(0.0))
	g.Expect(state.Multiplier(models.SideDire)).To(Equal(1.0))
}
