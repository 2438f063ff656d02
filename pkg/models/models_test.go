// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"testing"
	"time"

	. "github.com/onsi/gomega"
)

func TestSide(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	g.Expect(SideRadiant.Valid()).To(BeTrue())
	g.Expect(SideDire.Valid()).To(BeTrue())
	g.Expect(SideNone.Valid()).To(BeFalse())

	g.Expect(SideRadiant.Opposite()).To(Equal(SideDire))
	g.Expect(SideDire.Opposite()).To(Equal(SideRadiant))
	g.Expect(SideNone.Opposite()).To(Equal(SideNone))

	g.Expect(SideFromString("radiant")).To(Equal(SideRadiant))
	g.Expect(SideFromString("dire")).To(Equal(SideDire))
	g.Expect(SideFromString("tie")).To(Equal(SideNone))
	g.Expect(SideFromString(SideRadiant.String())).To(Equal(SideRadiant))
}

func TestVoteKind(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	g.Expect(VoteRadiantWin.WinnerSide()).To(Equal(SideRadiant))
	g.Expect(VoteDireWin.WinnerSide()).To(Equal(SideDire))
	g.Expect(VoteAbort.WinnerSide()).To(Equal(SideNone))
	g.Expect(VoteKind(0).Valid()).To(BeFalse())
}

func TestBet_EffectiveStake(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	g.Expect(Bet{Amount: 10, Leverage: 1}.EffectiveStake()).To(Equal(int64(10)))
	g.Expect(Bet{Amount: 10, Leverage: 5}.EffectiveStake()).To(Equal(int64(50)))
}

func TestPoolOdds(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	odds := PoolOdds{Total: 150, RadiantTotal: 100, DireTotal: 50}
	g.Expect(odds.Odds(SideRadiant)).To(Equal(1.5))
	g.Expect(odds.Odds(SideDire)).To(Equal(3.0))
	g.Expect(odds.Odds(SideNone)).To(Equal(0.0))

	empty := PoolOdds{Total: 40, RadiantTotal: 40}
	g.Expect(empty.Odds(SideDire)).To(Equal(0.0))
}

func TestPlayer(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	p := Player{Wins: 7, Losses: 3, Balance: -20, ExclusionHalves: 3}
	g.Expect(p.Games()).To(Equal(10))
	g.Expect(p.InDebt()).To(BeTrue())
	g.Expect(p.ExclusionCount()).To(Equal(1.5))

	g.Expect(Player{PreferredRoles: nil}.PrefersRole(4)).To(BeTrue())
	g.Expect(Player{PreferredRoles: []int{1, 2}}.PrefersRole(2)).To(BeTrue())
	g.Expect(Player{PreferredRoles: []int{1, 2}}.PrefersRole(5)).To(BeFalse())

	g.Expect(Player{Glicko: Glicko2Rating{RD: 90}}.Calibrated(100)).To(BeTrue())
	g.Expect(Player{Glicko: Glicko2Rating{RD: 150}}.Calibrated(100)).To(BeFalse())
}

func TestPendingMatch_Rosters(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	pm := &PendingMatch{
		Radiant: []TeamSeat{{PlayerID: 1}, {PlayerID: 2}},
		Dire:    []TeamSeat{{PlayerID: 3}, {PlayerID: 4}},
		Excluded: []ExcludedPlayer{
			{PlayerID: 5},
			{PlayerID: 6, Conditional: true},
		},
	}

	g.Expect(pm.TeamOf(1)).To(Equal(SideRadiant))
	g.Expect(pm.TeamOf(4)).To(Equal(SideDire))
	g.Expect(pm.TeamOf(5)).To(Equal(SideNone))
	g.Expect(pm.SideIDs(SideRadiant)).To(Equal([]int64{1, 2}))
	g.Expect(pm.ParticipantIDs()).To(Equal([]int64{1, 2, 3, 4}))
	g.Expect(pm.ExcludedIDs()).To(Equal([]int64{5, 6}))
}

func TestPendingMatch_BettingOpen(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	now := time.Unix(1000, 0)
	pm := &PendingMatch{BetLockUntil: 1000}
	g.Expect(pm.BettingOpen(now)).To(BeFalse())
	g.Expect(pm.BettingOpen(time.Unix(999, 0))).To(BeTrue())
}

func TestPendingMatch_Copy(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	pm := &PendingMatch{
		ID:      5,
		Radiant: []TeamSeat{{PlayerID: 1, Role: 2}},
		Votes:   map[int64]Vote{1: {Kind: VoteRadiantWin}},
	}
	copied := pm.Copy()

	g.Expect(copied).To(Equal(pm))
	copied.Votes[2] = Vote{Kind: VoteDireWin}
	g.Expect(pm.Votes).To(HaveLen(1))
}

func TestPendingMatch_WinProbOf(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	pm := &PendingMatch{
		BalancingSystem:         "glicko",
		GlickoRadiantWinProb:    0.6,
		OpenSkillRadiantWinProb: 0.7,
	}
	g.Expect(pm.WinProbOf(SideRadiant)).To(Equal(0.6))
	g.Expect(pm.WinProbOf(SideDire)).To(BeNumerically("~", 0.4, 1e-9))

	pm.BalancingSystem = "openskill"
	g.Expect(pm.WinProbOf(SideRadiant)).To(Equal(0.7))
}

func TestMatch_SideIDs(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	m := Match{RadiantIDs: []int64{1, 2}, DireIDs: []int64{3, 4}}
	g.Expect(m.SideIDs(SideRadiant)).To(Equal([]int64{1, 2}))
	g.Expect(m.SideIDs(SideDire)).To(Equal([]int64{3, 4}))
	g.Expect(m.SideIDs(SideNone)).To(BeNil())
}

func TestShuffleRequest_Validate(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	g.Expect((&ShuffleRequest{GuildID: 1, PlayerIDs: []int64{1, 2, 3}}).Validate()).To(Succeed())
	g.Expect((&ShuffleRequest{GuildID: 1, PlayerIDs: []int64{1, 0}}).Validate()).
		To(MatchError(ValidationErrorPlayerID))
	g.Expect((&ShuffleRequest{GuildID: 1, PlayerIDs: []int64{1, 2, 1}}).Validate()).
		To(MatchError(ValidationErrorDuplicatePool))
	g.Expect((&ShuffleRequest{GuildID: 1, PlayerIDs: []int64{1, 2}, ConditionalIDs: []int64{9}}).Validate()).
		To(MatchError(ValidationErrorConditionalPool))
	g.Expect((&ShuffleRequest{GuildID: -1, PlayerIDs: []int64{1}}).Validate()).
		To(MatchError(ErrInvalidGuild))
}

func TestValidationErrorCode(t *testing.T) {
	g := NewGomegaWithT(t)
	t.Parallel()

	g.Expect(ValidationErrorCode(ValidationErrorPlayerID)).To(Equal(510115))
	g.Expect(ValidationErrorCode(ValidationErrorDuplicatePool)).To(Equal(510116))
	g.Expect(ValidationErrorCode(ValidationErrorConditionalPool)).To(Equal(510117))
	g.Expect(ValidationErrorCode(ErrInvalidGuild)).To(Equal(20002))
}
