// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func newGlicko() *Glicko {
	return NewGlicko(&config.Config{MaxRatingSwing: 400})
}

func fresh(rating float64) models.Glicko2Rating {
	return models.Glicko2Rating{Rating: rating, RD: InitialRD, Volatility: InitialVol}
}

func TestSeed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		mmr  int64
		want float64
	}{
		{"reported mmr maps linearly", 4000, 1000},
		{"zero falls back to the default", 0, 1000},
		{"negative falls back to the default", -50, 1000},
		{"overreported mmr clamps to the ceiling", 20000, 3000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Seed(tt.mmr)
			if got.Rating != tt.want {
				t.Errorf("Seed(%d).Rating = %v, want %v", tt.mmr, got.Rating, tt.want)
			}
			if got.RD != InitialRD || got.Volatility != InitialVol {
				t.Errorf("Seed(%d) = %+v, want fresh RD and volatility", tt.mmr, got)
			}
		})
	}
}

func TestDisplayMMR_RoundTripsTheSeed(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(DisplayMMR(Seed(4000))).To(Equal(int64(4000)))
	g.Expect(DisplayMMR(Seed(9000))).To(Equal(int64(9000)))
}

func TestTeamAggregate(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	agg := TeamAggregate([]models.Glicko2Rating{
		{Rating: 1400, RD: 300, Volatility: 0.06},
		{Rating: 1600, RD: 400, Volatility: 0.08},
	})

	g.Expect(agg.Rating).To(BeNumerically("~", 1500, 1e-9))
	// Root mean square of the deviations.
	g.Expect(agg.RD).To(BeNumerically("~", 353.5533905932738, 1e-9))
	g.Expect(agg.Volatility).To(BeNumerically("~", 0.07, 1e-9))

	empty := TeamAggregate(nil)
	g.Expect(empty.Rating).To(Equal(1500.0))
	g.Expect(empty.RD).To(Equal(InitialRD))
}

func TestExpectedWinProb_EqualTeamsAreEven(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	a := []models.Glicko2Rating{fresh(1500), fresh(1500)}
	b := []models.Glicko2Rating{fresh(1500), fresh(1500)}

	g.Expect(ExpectedWinProb(a, b)).To(BeNumerically("~", 0.5, 1e-9))
}

func TestExpectedWinProb_StrongerTeamIsFavored(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	strong := []models.Glicko2Rating{fresh(1800)}
	weak := []models.Glicko2Rating{fresh(1200)}

	g.Expect(ExpectedWinProb(strong, weak)).To(BeNumerically(">", 0.5))
	g.Expect(ExpectedWinProb(weak, strong)).To(BeNumerically("<", 0.5))
}

func TestRateTeams_WinnersGainAndLosersLoseTogether(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	winners := []models.Glicko2Rating{fresh(1450), fresh(1550)}
	losers := []models.Glicko2Rating{fresh(1500), fresh(1500)}
	out := newGlicko().RateTeams(winners, losers)

	g.Expect(out.WinnerDelta).To(BeNumerically(">", 0))
	g.Expect(out.LoserDelta).To(BeNumerically("<", 0))
	g.Expect(out.UpsetDampened).To(BeFalse())
	// The shared delta moves every roster member by the same amount.
	g.Expect(out.Winners[0].Rating - winners[0].Rating).To(BeNumerically("~", out.WinnerDelta, 1e-9))
	g.Expect(out.Winners[1].Rating - winners[1].Rating).To(BeNumerically("~", out.WinnerDelta, 1e-9))
	g.Expect(out.Losers[0].Rating - losers[0].Rating).To(BeNumerically("~", out.LoserDelta, 1e-9))
	// Deviation tightens after a rated match.
	g.Expect(out.Winners[0].RD).To(BeNumerically("<", InitialRD))
	g.Expect(out.Losers[0].RD).To(BeNumerically("<", InitialRD))
}

func TestRateTeams_BigUpsetsAreDampened(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	k := newGlicko()

	underdogs := []models.Glicko2Rating{fresh(1000)}
	favorites := []models.Glicko2Rating{fresh(1300)}

	upset := k.RateTeams(underdogs, favorites)
	expected := k.RateTeams(favorites, underdogs)

	g.Expect(upset.UpsetDampened).To(BeTrue())
	g.Expect(expected.UpsetDampened).To(BeFalse())
	g.Expect(upset.WinnerDelta).To(BeNumerically("<", expected.WinnerDelta))
	g.Expect(upset.WinnerDelta).To(BeNumerically(">", 0))
}

func TestRateTeams_DeltaIsClampedToTheConfiguredSwing(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	k := NewGlicko(&config.Config{MaxRatingSwing: 5})
	out := k.RateTeams([]models.Glicko2Rating{fresh(1500)}, []models.Glicko2Rating{fresh(1500)})

	g.Expect(out.WinnerDelta).To(Equal(5.0))
	g.Expect(out.LoserDelta).To(Equal(-5.0))
}

func TestRateTeams_RatingNeverDropsBelowZero(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	out := newGlicko().RateTeams(
		[]models.Glicko2Rating{fresh(1500)},
		[]models.Glicko2Rating{fresh(10)},
	)

	g.Expect(out.Losers[0].Rating).To(BeNumerically(">=", 0))
}

func TestUncertainty(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(Uncertainty(350)).To(Equal(100.0))
	g.Expect(Uncertainty(175)).To(Equal(50.0))
	g.Expect(Uncertainty(700)).To(Equal(100.0))
}
