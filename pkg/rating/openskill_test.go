// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"testing"

	"github.com/go-openapi/swag"
	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func newOpenSkill() *OpenSkill {
	return NewOpenSkill(&config.Config{OpenSkillMaxDelta: 2.0, FantasyWeightInfluence: 0.10})
}

func freshOS() models.OpenSkillRating {
	return models.OpenSkillRating{Mu: OpenSkillMu, Sigma: OpenSkillSigma}
}

func TestSeedOpenSkill(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	seeded := SeedOpenSkill(4000)
	g.Expect(seeded.Mu).To(BeNumerically("~", 45.0, 1e-9))
	g.Expect(seeded.Sigma).To(Equal(OpenSkillSigma))

	g.Expect(SeedOpenSkill(0)).To(Equal(SeedOpenSkill(DefaultMMR)))
	g.Expect(SeedOpenSkill(99999).Mu).To(Equal(SeedOpenSkill(MaxMMR).Mu))
}

func TestBalanceValue_FloorsAtZero(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(BalanceValue(models.OpenSkillRating{Mu: 27})).To(BeNumerically("~", 150, 1e-9))
	g.Expect(BalanceValue(models.OpenSkillRating{Mu: 20})).To(Equal(0.0))
}

func TestRateEqual_MovesBothRostersInOppositeDirections(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	winners := []models.OpenSkillRating{freshOS(), freshOS()}
	losers := []models.OpenSkillRating{freshOS(), freshOS()}
	newWinners, newLosers := newOpenSkill().RateEqual(winners, losers)

	for i := range newWinners {
		g.Expect(newWinners[i].Mu).To(BeNumerically(">", winners[i].Mu))
		g.Expect(newWinners[i].Sigma).To(BeNumerically("<", winners[i].Sigma))
	}
	for i := range newLosers {
		// The mu floor catches fresh losers at the baseline.
		g.Expect(newLosers[i].Mu).To(BeNumerically(">=", OpenSkillMu))
		g.Expect(newLosers[i].Sigma).To(BeNumerically("<", losers[i].Sigma))
	}
}

func TestRateEqual_LosersAboveTheFloorLoseGround(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	winners := []models.OpenSkillRating{{Mu: 30, Sigma: OpenSkillSigma}}
	losers := []models.OpenSkillRating{{Mu: 30, Sigma: OpenSkillSigma}}
	_, newLosers := newOpenSkill().RateEqual(winners, losers)

	g.Expect(newLosers[0].Mu).To(BeNumerically("<", 30))
}

func TestRateEqual_ClampsPerMatchMovement(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	o := NewOpenSkill(&config.Config{OpenSkillMaxDelta: 0.5, FantasyWeightInfluence: 0.10})
	winners := []models.OpenSkillRating{{Mu: 26, Sigma: OpenSkillSigma}}
	losers := []models.OpenSkillRating{{Mu: 40, Sigma: OpenSkillSigma}}
	newWinners, newLosers := o.RateEqual(winners, losers)

	g.Expect(newWinners[0].Mu - 26).To(BeNumerically("<=", 0.5+1e-9))
	g.Expect(40 - newLosers[0].Mu).To(BeNumerically("<=", 0.5+1e-9))
}

func TestRateWeighted_HigherWeightMovesWinnersMore(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	winners := []models.OpenSkillRating{{Mu: 30, Sigma: OpenSkillSigma}, {Mu: 30, Sigma: OpenSkillSigma}}
	losers := []models.OpenSkillRating{{Mu: 30, Sigma: OpenSkillSigma}, {Mu: 30, Sigma: OpenSkillSigma}}
	newWinners, newLosers := newOpenSkill().RateWeighted(winners, losers,
		[]float64{1.2, 1.0}, []float64{1.2, 1.0})

	g.Expect(newWinners[0].Mu).To(BeNumerically(">", newWinners[1].Mu))
	// A weighted loser sheds less than an unweighted one.
	g.Expect(newLosers[0].Mu).To(BeNumerically(">", newLosers[1].Mu))
}

func TestRateWeighted_ReplayFromTheSameBaselineIsDeterministic(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	o := newOpenSkill()

	winners := []models.OpenSkillRating{{Mu: 28, Sigma: 7}}
	losers := []models.OpenSkillRating{{Mu: 27, Sigma: 6}}
	weights := []float64{1.1}

	w1, l1 := o.RateWeighted(winners, losers, weights, weights)
	w2, l2 := o.RateWeighted(winners, losers, weights, weights)

	g.Expect(w1).To(Equal(w2))
	g.Expect(l1).To(Equal(l2))
}

func TestFantasyWeight(t *testing.T) {
	t.Parallel()

	o := newOpenSkill()
	tests := []struct {
		name   string
		points *float64
		want   float64
	}{
		{"missing points weigh one", nil, 1.0},
		{"floor of the range", swag.Float64(5), 1.0},
		{"ceiling of the range", swag.Float64(30), 1.2},
		{"midpoint blends halfway", swag.Float64(17.5), 1.1},
		{"below range clamps to the floor", swag.Float64(-3), 1.0},
		{"above range clamps to the ceiling", swag.Float64(80), 1.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := o.FantasyWeight(tt.points)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("FantasyWeight(%v) = %v, want %v", tt.points, got, tt.want)
			}
		})
	}
}
