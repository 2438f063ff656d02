// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package pairings

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func TestTeammateStat_ResolvesTheOtherPlayer(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	p := models.Pairing{P1: 1, P2: 2, GamesTogether: 10, WinsTogether: 7}

	fromP1 := teammateStat(1, p)
	g.Expect(fromP1.OtherID).To(Equal(int64(2)))
	g.Expect(fromP1.Games).To(Equal(10))
	g.Expect(fromP1.WinRate).To(Equal(0.7))

	fromP2 := teammateStat(2, p)
	g.Expect(fromP2.OtherID).To(Equal(int64(1)))
	// Teammates share the same record from both perspectives.
	g.Expect(fromP2.WinRate).To(Equal(0.7))
}

func TestOpponentStat_FlipsTheDirectionalCounter(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	p := models.Pairing{P1: 1, P2: 2, GamesAgainst: 10, P1WinsAgainst: 7}

	fromP1 := opponentStat(1, p)
	g.Expect(fromP1.Wins).To(Equal(7))
	g.Expect(fromP1.WinRate).To(Equal(0.7))

	fromP2 := opponentStat(2, p)
	g.Expect(fromP2.Wins).To(Equal(3))
	g.Expect(fromP2.WinRate).To(BeNumerically("~", 0.3, 1e-9))
}

func TestRank_SortsAndTruncates(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	stats := []models.PairingStat{
		{OtherID: 1, Games: 4, WinRate: 0.5},
		{OtherID: 2, Games: 8, WinRate: 0.75},
		{OtherID: 3, Games: 8, WinRate: 0.25},
	}

	top := rank(append([]models.PairingStat(nil), stats...), byRateDesc, 2)
	g.Expect(top).To(HaveLen(2))
	g.Expect(top[0].OtherID).To(Equal(int64(2)))
	g.Expect(top[1].OtherID).To(Equal(int64(1)))

	bottom := rank(append([]models.PairingStat(nil), stats...), byRateAsc, 1)
	g.Expect(bottom[0].OtherID).To(Equal(int64(3)))

	most := rank(append([]models.PairingStat(nil), stats...), byGamesDesc, 3)
	g.Expect(most[0].OtherID).To(Equal(int64(2)))
	g.Expect(most[1].OtherID).To(Equal(int64(3)))
}

func TestRank_TieBreaksOnGamesThenID(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	stats := []models.PairingStat{
		{OtherID: 5, Games: 3, WinRate: 0.6},
		{OtherID: 4, Games: 6, WinRate: 0.6},
		{OtherID: 2, Games: 3, WinRate: 0.6},
	}
	ranked := rank(stats, byRateDesc, 0)

	g.Expect(ranked[0].OtherID).To(Equal(int64(4)))
	g.Expect(ranked[1].OtherID).To(Equal(int64(2)))
	g.Expect(ranked[2].OtherID).To(Equal(int64(5)))
}

func TestOrDefault(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(orDefault(0, 5)).To(Equal(5))
	g.Expect(orDefault(-1, 5)).To(Equal(5))
	g.Expect(orDefault(2, 5)).To(Equal(2))
}

func TestPairing_WinRateAgainst(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	p := models.Pairing{P1: 1, P2: 2, GamesAgainst: 4, P1WinsAgainst: 3}
	g.Expect(p.WinRateAgainst(1)).To(Equal(0.75))
	g.Expect(p.WinRateAgainst(2)).To(Equal(0.25))
	g.Expect(p.WinRateAgainst(99)).To(Equal(0.0))
	g.Expect(models.Pairing{P1: 1, P2: 2}.WinRateAgainst(1)).To(Equal(0.0))
}
