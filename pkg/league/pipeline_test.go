// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"fmt"
	"testing"
	"time"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/economy"
	"github.com/AccelByte/extend-inhouse-league/pkg/matchstate"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/pairings"
	"github.com/AccelByte/extend-inhouse-league/pkg/rating"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
	"github.com/AccelByte/extend-inhouse-league/pkg/voting"
	"github.com/AccelByte/extend-inhouse-league/pkg/wager"
)

const pipelineGuild = int64(77)

func pipelineConfig() *config.Config {
	return &config.Config{
		StartingBalance:        3,
		CoinsPerGame:           1,
		CoinsWinReward:         2,
		CoinsExclusionReward:   3,
		MaxDebt:                500,
		GarnishmentRate:        1.0,
		BetLockSeconds:         900,
		HousePayoutMultiplier:  1.0,
		LeverageTiers:          []int64{2, 3, 5},
		StakePoolSize:          50,
		StakePerPlayer:         5,
		StakeWinProbMin:        0.10,
		StakeWinProbMax:        0.90,
		SpectatorPlayerCut:     0.10,
		CalibrationRD:          100,
		MaxRatingSwing:         400,
		RdDecayC:               50,
		RdDecayGraceSeconds:    1_209_600,
		OpenSkillMaxDelta:      2.0,
		FantasyWeightInfluence: 0.10,
	}
}

// newPipeline wires the full service stack against the in-memory store
// so the settlement pipelines run end to end.
func newPipeline() (*Service, *testsetup.MemStore) {
	cfg := pipelineConfig()
	mem := testsetup.NewMemStore()
	state := matchstate.New(mem)
	svc := New(cfg, mem, state, voting.New(cfg, state), wager.New(cfg, mem),
		economy.New(cfg, mem), pairings.New(mem), testsetup.NewMetrics())
	return svc, mem
}

func seedPlayers(g testsetup.GomegaWithScope, mem *testsetup.MemStore, balance int64, ids ...int64) {
	for _, id := range ids {
		p := models.Player{
			ID:        id,
			GuildID:   pipelineGuild,
			Username:  fmt.Sprintf("player-%d", id),
			Balance:   balance,
			Glicko:    rating.Seed(rating.DefaultMMR),
			OpenSkill: rating.SeedOpenSkill(rating.DefaultMMR),
		}
		g.Expect(mem.CreatePlayer(g.TestScope, nil, p)).To(Succeed())
	}
}

// twoVsTwoPending seats 1,2 against 3,4 with the betting window open.
func twoVsTwoPending() *models.PendingMatch {
	now := time.Now().Unix()
	return &models.PendingMatch{
		GuildID:                 pipelineGuild,
		Radiant:                 []models.TeamSeat{{PlayerID: 1, Role: 1}, {PlayerID: 2, Role: 2}},
		Dire:                    []models.TeamSeat{{PlayerID: 3, Role: 1}, {PlayerID: 4, Role: 2}},
		LobbyType:               constants.LobbyTypeShuffle,
		BettingMode:             constants.BettingModePool,
		BalancingSystem:         constants.RatingSystemGlicko,
		GlickoRadiantWinProb:    0.5,
		OpenSkillRadiantWinProb: 0.5,
		ShuffleTime:             now,
		BetLockUntil:            now + 900,
		Votes:                   map[int64]models.Vote{},
		CreatedAt:               now,
	}
}

func seedPending(g testsetup.GomegaWithScope, mem *testsetup.MemStore, pm *models.PendingMatch) int64 {
	id, err := mem.SavePendingMatch(g.TestScope, nil, pm)
	g.Expect(err).NotTo(HaveOccurred())
	pm.ID = id
	return id
}

func balanceOf(g testsetup.GomegaWithScope, mem *testsetup.MemStore, playerID int64) int64 {
	balance, err := mem.GetBalance(g.TestScope, nil, pipelineGuild, playerID)
	g.Expect(err).NotTo(HaveOccurred())
	return balance
}

func totalBalance(g testsetup.GomegaWithScope, mem *testsetup.MemStore) int64 {
	players, err := mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	var total int64
	for _, p := range players {
		total += p.Balance
	}
	return total
}

func TestRecordMatch_PoolBetsPayWinnersFromThePot(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 10, 11)
	pmID := seedPending(g, mem, twoVsTwoPending())

	_, err := svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 50, 1)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlaceBet(g.TestScope, pipelineGuild, 11, pmID, models.SideDire, 50, 1)
	g.Expect(err).NotTo(HaveOccurred())

	before := totalBalance(g, mem)
	result, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	// The winning bettor collects the whole pot; nothing is minted or
	// burned when both sides are backed and the split is exact.
	g.Expect(result.Bets).NotTo(BeNil())
	g.Expect(result.Bets.Payouts).To(Equal(map[int64]int64{10: 100}))
	g.Expect(result.Bets.Minted).To(BeZero())
	g.Expect(result.Bets.Burned).To(BeZero())
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(150)))
	g.Expect(balanceOf(g, mem, 11)).To(Equal(int64(50)))

	// Participation for the losers, win bonus for the winners.
	g.Expect(result.Participation).To(Equal(map[int64]int64{3: 1, 4: 1}))
	g.Expect(result.WinBonuses).To(HaveKey(int64(1)))
	g.Expect(result.WinBonuses[1].Gross).To(Equal(int64(2)))
	g.Expect(balanceOf(g, mem, 1)).To(Equal(int64(102)))
	g.Expect(balanceOf(g, mem, 3)).To(Equal(int64(101)))

	// Coin supply only moved by the explicit grants: two participation
	// coins and two win bonuses. The bet pot itself conserved.
	g.Expect(totalBalance(g, mem) - before).To(Equal(int64(6)))

	// The pending match is consumed.
	_, err = mem.GetPendingMatch(g.TestScope, nil, pipelineGuild)
	g.Expect(err).To(MatchError(models.ErrNoPendingMatch))
}

func TestRecordMatch_HouseModeBurnsLosersAndMintsWinnings(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 10, 11)
	pm := twoVsTwoPending()
	pm.BettingMode = constants.BettingModeHouse
	pmID := seedPending(g, mem, pm)

	_, err := svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 60, 1)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlaceBet(g.TestScope, pipelineGuild, 11, pmID, models.SideDire, 40, 1)
	g.Expect(err).NotTo(HaveOccurred())

	result, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	// House book: the winner is paid stake times 1+multiplier by the
	// house, the losing stake is burned instead of redistributed.
	g.Expect(result.Bets.Payouts).To(Equal(map[int64]int64{10: 120}))
	g.Expect(result.Bets.Burned).To(Equal(int64(40)))
	g.Expect(result.Bets.Minted).To(Equal(int64(60)))
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(160)))
	g.Expect(balanceOf(g, mem, 11)).To(Equal(int64(60)))
}

func TestRecordMatch_DraftStakePoolPaysWinningSideAndBench(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 5)
	pm := twoVsTwoPending()
	pm.LobbyType = constants.LobbyTypeDraft
	pm.Excluded = []models.ExcludedPlayer{{PlayerID: 5}}
	pmID := seedPending(g, mem, pm)

	now := time.Now().Unix()
	rows := []models.StakeRow{
		{GuildID: pipelineGuild, PlayerID: 1, PendingMatchID: pmID, Team: models.SideRadiant, StakedAt: now},
		{GuildID: pipelineGuild, PlayerID: 2, PendingMatchID: pmID, Team: models.SideRadiant, StakedAt: now},
		{GuildID: pipelineGuild, PlayerID: 3, PendingMatchID: pmID, Team: models.SideDire, StakedAt: now},
		{GuildID: pipelineGuild, PlayerID: 4, PendingMatchID: pmID, Team: models.SideDire, StakedAt: now},
		{GuildID: pipelineGuild, PlayerID: 5, PendingMatchID: pmID, IsExcluded: true, StakedAt: now},
	}
	g.Expect(mem.InsertStakeRows(g.TestScope, nil, rows)).To(Succeed())

	result, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	// At an even book each winning seat mints stake/probability, and
	// the bench is paid the same regardless of the result.
	g.Expect(result.Stakes).NotTo(BeNil())
	g.Expect(result.Stakes.Minted).To(Equal(int64(10)))
	g.Expect(result.Stakes.WinnerProb).To(BeNumerically("~", 0.5, 1e-12))
	g.Expect(result.Stakes.PlayerPayouts).To(Equal(map[int64]int64{1: 10, 2: 10, 5: 10}))

	// Winner: stake mint plus win bonus. Loser: participation only.
	// Bench: stake mint plus the full exclusion reward.
	g.Expect(balanceOf(g, mem, 1)).To(Equal(int64(112)))
	g.Expect(balanceOf(g, mem, 3)).To(Equal(int64(101)))
	g.Expect(result.ExclusionBonuses).To(Equal(map[int64]int64{5: 3}))
	g.Expect(balanceOf(g, mem, 5)).To(Equal(int64(113)))
}

func TestRecordMatch_SpectatorPoolSplitsBettorsAndSeats(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 12, 13)
	pmID := seedPending(g, mem, twoVsTwoPending())

	_, err := svc.PlaceSpectatorBet(g.TestScope, pipelineGuild, 12, pmID, models.SideRadiant, 20)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlaceSpectatorBet(g.TestScope, pipelineGuild, 13, pmID, models.SideDire, 20)
	g.Expect(err).NotTo(HaveOccurred())

	result, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	// Ten percent of the 40-coin pool goes to the winning seats, the
	// rest is shared by the winning bettors pro rata.
	g.Expect(result.Spectators).NotTo(BeNil())
	g.Expect(result.Spectators.PlayerBonus).To(Equal(int64(4)))
	g.Expect(result.Spectators.PlayerBonusEach).To(Equal(int64(2)))
	g.Expect(result.Spectators.BonusRecipients).To(ConsistOf(int64(1), int64(2)))
	g.Expect(result.Spectators.Payouts).To(Equal(map[int64]int64{12: 36}))
	g.Expect(balanceOf(g, mem, 12)).To(Equal(int64(116)))
	g.Expect(balanceOf(g, mem, 13)).To(Equal(int64(80)))
	// Winning seat: win bonus plus the spectator cut.
	g.Expect(balanceOf(g, mem, 1)).To(Equal(int64(104)))
}

func TestRecordMatch_CollectsOutstandingLoanIntoFund(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4)
	pmID := seedPending(g, mem, twoVsTwoPending())

	g.Expect(mem.UpsertLoanState(g.TestScope, nil, models.LoanState{
		PlayerID:             3,
		GuildID:              pipelineGuild,
		OutstandingPrincipal: 10,
		OutstandingFee:       2,
	})).To(Succeed())

	result, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(result.Loans).To(ConsistOf(models.LoanRepayment{PlayerID: 3, Principal: 10, Fee: 2}))
	// Participation coin in, twelve coins of loan out.
	g.Expect(balanceOf(g, mem, 3)).To(Equal(int64(89)))

	fund, err := mem.GetNonprofitFund(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(fund.Total).To(Equal(int64(2)))

	state, err := mem.GetLoanState(g.TestScope, nil, pipelineGuild, 3)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(state.HasOutstanding()).To(BeFalse())
	g.Expect(state.TotalFeesPaid).To(Equal(int64(2)))
}

func TestAbortMatch_RefundsEveryOpenWager(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 10, 12)
	pm := twoVsTwoPending()
	pm.LobbyType = constants.LobbyTypeDraft
	pmID := seedPending(g, mem, pm)

	now := time.Now().Unix()
	g.Expect(mem.InsertStakeRows(g.TestScope, nil, []models.StakeRow{
		{GuildID: pipelineGuild, PlayerID: 1, PendingMatchID: pmID, Team: models.SideRadiant, StakedAt: now},
		{GuildID: pipelineGuild, PlayerID: 3, PendingMatchID: pmID, Team: models.SideDire, StakedAt: now},
	})).To(Succeed())

	_, err := svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 30, 2)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlaceSpectatorBet(g.TestScope, pipelineGuild, 12, pmID, models.SideDire, 25)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlacePlayerPoolBet(g.TestScope, pipelineGuild, 1, pmID, 20)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(40)))

	result, err := svc.AbortMatch(g.TestScope, pipelineGuild, pmID)
	g.Expect(err).NotTo(HaveOccurred())

	// Every wager refunds at its effective stake and the stake rows are
	// cleared without paying out.
	g.Expect(result.BetRefunds).To(Equal(map[int64]int64{10: 60}))
	g.Expect(result.SpectatorRefunds).To(Equal(map[int64]int64{12: 25}))
	g.Expect(result.PoolBetRefunds).To(Equal(map[int64]int64{1: 20}))
	g.Expect(result.StakesCleared).To(Equal(2))
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(100)))
	g.Expect(balanceOf(g, mem, 12)).To(Equal(int64(100)))
	g.Expect(balanceOf(g, mem, 1)).To(Equal(int64(100)))

	_, err = mem.GetPendingMatch(g.TestScope, nil, pipelineGuild)
	g.Expect(err).To(MatchError(models.ErrNoPendingMatch))
}

func TestPlaceBet_RejectsOppositeSideHedge(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 10)
	pmID := seedPending(g, mem, twoVsTwoPending())

	_, err := svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 10, 1)
	g.Expect(err).NotTo(HaveOccurred())

	// The opposite side is a hedge and is rejected without touching the
	// balance.
	_, err = svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideDire, 10, 1)
	g.Expect(err).To(MatchError(models.ErrOppositeSideBet))
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(90)))

	// Topping up the same side stays allowed.
	_, err = svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 10, 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(80)))
}

func TestCorrectMatchResult_DoubleCorrectionRestoresTheBooks(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4, 10, 11)
	pmID := seedPending(g, mem, twoVsTwoPending())

	_, err := svc.PlaceBet(g.TestScope, pipelineGuild, 10, pmID, models.SideRadiant, 50, 1)
	g.Expect(err).NotTo(HaveOccurred())
	_, err = svc.PlaceBet(g.TestScope, pipelineGuild, 11, pmID, models.SideDire, 50, 1)
	g.Expect(err).NotTo(HaveOccurred())

	recorded, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	snapshot := make(map[int64]models.Player)
	players, err := mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range players {
		snapshot[p.ID] = p
	}

	// First correction flips the result; the pot moves to the other
	// bettor and the win/loss columns swap.
	correction, err := svc.CorrectMatchResult(g.TestScope, pipelineGuild, recorded.MatchID, models.SideDire, 999)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(correction.NetDeltas[10]).To(Equal(int64(-100)))
	g.Expect(correction.NetDeltas[11]).To(Equal(int64(100)))
	g.Expect(balanceOf(g, mem, 10)).To(Equal(int64(50)))
	g.Expect(balanceOf(g, mem, 11)).To(Equal(int64(150)))

	flipped, err := mem.GetPlayer(g.TestScope, nil, pipelineGuild, 1)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(flipped.Wins).To(Equal(0))
	g.Expect(flipped.Losses).To(Equal(1))

	// Correcting back replays the original outcome from the same rating
	// snapshots, so balances, counters, and both rating systems land
	// exactly where the first settlement left them.
	_, err = svc.CorrectMatchResult(g.TestScope, pipelineGuild, recorded.MatchID, models.SideRadiant, 999)
	g.Expect(err).NotTo(HaveOccurred())

	restored, err := mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range restored {
		want := snapshot[p.ID]
		g.Expect(p.Balance).To(Equal(want.Balance), "player %d balance", p.ID)
		g.Expect(p.Wins).To(Equal(want.Wins), "player %d wins", p.ID)
		g.Expect(p.Losses).To(Equal(want.Losses), "player %d losses", p.ID)
		g.Expect(p.Glicko).To(Equal(want.Glicko), "player %d glicko", p.ID)
		g.Expect(p.OpenSkill).To(Equal(want.OpenSkill), "player %d openskill", p.ID)
	}
}

func TestCorrectMatchResult_SameWinnerIsRejected(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4)
	pmID := seedPending(g, mem, twoVsTwoPending())

	recorded, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	_, err = svc.CorrectMatchResult(g.TestScope, pipelineGuild, recorded.MatchID, models.SideRadiant, 999)
	g.Expect(err).To(MatchError(models.ErrMatchAlreadyRecorded))
}

func TestApplyEnrichmentWeights_ReplayLandsOnSameRatings(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	svc, mem := newPipeline()
	seedPlayers(g, mem, 100, 1, 2, 3, 4)
	pmID := seedPending(g, mem, twoVsTwoPending())

	recorded, err := svc.RecordMatch(g.TestScope, pipelineGuild, pmID, models.SideRadiant, 999, "")
	g.Expect(err).NotTo(HaveOccurred())

	glickoAfterRecord := make(map[int64]models.Glicko2Rating)
	players, err := mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range players {
		glickoAfterRecord[p.ID] = p.Glicko
	}

	points := map[int64]float64{1: 30, 3: 4}
	first, err := svc.ApplyEnrichmentWeights(g.TestScope, pipelineGuild, recorded.MatchID, points)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(first.Weights).To(HaveLen(4))

	firstRatings := make(map[int64]models.OpenSkillRating)
	players, err = mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range players {
		firstRatings[p.ID] = p.OpenSkill
	}

	// Replaying the same points recomputes from the pre-match baseline
	// and lands on identical ratings. Glicko never moves here.
	second, err := svc.ApplyEnrichmentWeights(g.TestScope, pipelineGuild, recorded.MatchID, points)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(second.Weights).To(Equal(first.Weights))

	players, err = mem.ListPlayers(g.TestScope, nil, pipelineGuild)
	g.Expect(err).NotTo(HaveOccurred())
	for _, p := range players {
		g.Expect(p.OpenSkill).To(Equal(firstRatings[p.ID]), "player %d openskill", p.ID)
		g.Expect(p.Glicko).To(Equal(glickoAfterRecord[p.ID]), "player %d glicko", p.ID)
	}
}
