// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"math/rand"
	"testing"

	"github.com/davecgh/go-spew/spew"
	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func debtor(id, balance int64) models.Player {
	return models.Player{ID: id, Balance: balance}
}

func TestDistributeEvenly_CapsAtDebtAndRecyclesTheExcess(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	debtors := []models.Player{
		debtor(1, -10),
		debtor(2, -100),
		debtor(3, -100),
	}
	out := DistributeEvenly(90, debtors)

	g.Expect(out[1]).To(Equal(int64(10)))
	g.Expect(out[2]).To(Equal(int64(40)))
	g.Expect(out[3]).To(Equal(int64(40)))
}

func TestDistributeEvenly_StopsWhenEveryDebtIsCleared(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	out := DistributeEvenly(500, []models.Player{debtor(1, -30), debtor(2, -20)})

	g.Expect(out[1]).To(Equal(int64(30)))
	g.Expect(out[2]).To(Equal(int64(20)))
	var total int64
	for _, v := range out {
		total += v
	}
	g.Expect(total).To(Equal(int64(50)))
}

func TestDistributeProportionally_SplitsByDebtShare(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	debtors := []models.Player{
		debtor(1, -300),
		debtor(2, -100),
	}
	out := DistributeProportionally(100, debtors)

	// 300/400 and 100/400 of the fund, remainder to the smallest debtor.
	g.Expect(out[1]).To(Equal(int64(75)))
	g.Expect(out[2]).To(Equal(int64(25)))
}

func TestDistributeProportionally_SmallestDebtorAbsorbsTheRemainderCapped(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	debtors := []models.Player{
		debtor(1, -200),
		debtor(2, -5),
	}
	out := DistributeProportionally(100, debtors)

	g.Expect(out[1]).To(Equal(int64(97)))
	g.Expect(out[2]).To(Equal(int64(3)))
	if out[1]+out[2] > 100 {
		t.Fatal(spew.Sdump(out))
	}
}

func TestDistributeToNeediest_PicksTheDeepestDebt(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	debtors := []models.Player{
		debtor(1, -40),
		debtor(2, -90),
		debtor(3, -10),
	}
	out := DistributeToNeediest(60, debtors)

	g.Expect(out).To(HaveLen(1))
	g.Expect(out[2]).To(Equal(int64(60)))

	out = DistributeToNeediest(500, debtors)
	g.Expect(out[2]).To(Equal(int64(90)))
}

func TestDistributeStimulus_EvenSplitWithRemainderToTheFront(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	eligible := []models.Player{debtor(1, 0), debtor(2, 0), debtor(3, 0)}
	out := DistributeStimulus(11, eligible)

	g.Expect(out[1]).To(Equal(int64(4)))
	g.Expect(out[2]).To(Equal(int64(4)))
	g.Expect(out[3]).To(Equal(int64(3)))
}

func TestDistributeLottery_SeededDrawIsDeterministic(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	players := []models.Player{debtor(1, 0), debtor(2, 0), debtor(3, 0)}
	first := DistributeLottery(50, players, rand.New(rand.NewSource(7)))
	second := DistributeLottery(50, players, rand.New(rand.NewSource(7)))

	g.Expect(first).To(Equal(second))
	g.Expect(first).To(HaveLen(1))
	for _, amount := range first {
		g.Expect(amount).To(Equal(int64(50)))
	}
}

func TestDistributeSocialSecurity_SplitsByGamesPlayed(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	players := []models.Player{
		{ID: 1, Wins: 6, Losses: 4},
		{ID: 2, Wins: 2, Losses: 3},
		{ID: 3, Wins: 3, Losses: 2},
	}
	out := DistributeSocialSecurity(100, players)

	g.Expect(out[1]).To(Equal(int64(50)))
	g.Expect(out[2] + out[3]).To(Equal(int64(50)))
	g.Expect(out[1] + out[2] + out[3]).To(Equal(int64(100)))
}

func TestDistributeSocialSecurity_NoGamesPaysNothing(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	out := DistributeSocialSecurity(100, []models.Player{{ID: 1}, {ID: 2}})

	g.Expect(out).To(BeEmpty())
}

func TestWinningMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts map[string]int
		want   string
	}{
		{
			name:   "plurality wins",
			counts: map[string]int{constants.DisburseMethodLottery: 3, constants.DisburseMethodEven: 1},
			want:   constants.DisburseMethodLottery,
		},
		{
			name:   "tie falls to the earlier priority entry",
			counts: map[string]int{constants.DisburseMethodNeediest: 2, constants.DisburseMethodProportional: 2},
			want:   constants.DisburseMethodProportional,
		},
		{
			name:   "no votes defaults to even",
			counts: map[string]int{},
			want:   constants.DisburseMethodEven,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := winningMethod(tt.counts); got != tt.want {
				t.Errorf("winningMethod() = %q, want %q", got, tt.want)
			}
		})
	}
}
