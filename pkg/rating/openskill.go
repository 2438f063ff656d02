// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"math"

	"github.com/intinig/go-openskill/rating"
	"github.com/intinig/go-openskill/types"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/mathutil"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const (
	OpenSkillMu    = 25.0
	OpenSkillSigma = 25.0 / 3
	openSkillZ     = 3

	// Display scale keeps parity with the Glicko range.
	displayScale = 75.0

	calibratedSigma = 4.0

	fantasyPointsMin  = 5.0
	fantasyPointsMax  = 30.0
	fantasyWeightMin  = 1.0
	fantasyWeightSpan = 2.0
)

// OpenSkill wraps the Plackett-Luce model with the league's clamps and
// the two-phase fantasy weighting.
type OpenSkill struct {
	maxDelta        float64
	weightInfluence float64
}

func NewOpenSkill(cfg *config.Config) *OpenSkill {
	return &OpenSkill{
		maxDelta:        cfg.OpenSkillMaxDelta,
		weightInfluence: cfg.FantasyWeightInfluence,
	}
}

// SeedOpenSkill converts an optional self-reported MMR into a starting pair.
func SeedOpenSkill(mmr int64) models.OpenSkillRating {
	if mmr <= 0 {
		mmr = DefaultMMR
	}
	if mmr > MaxMMR {
		mmr = MaxMMR
	}
	return models.OpenSkillRating{
		Mu:    OpenSkillMu + float64(mmr)/200,
		Sigma: OpenSkillSigma,
	}
}

// Ordinal is the conservative skill estimate mu - 3*sigma.
func Ordinal(r models.OpenSkillRating) float64 {
	return rating.Ordinal(toOpenSkill(r))
}

// Display maps mu onto the non-negative display range.
func Display(r models.OpenSkillRating) int64 {
	return int64(math.Round(BalanceValue(r)))
}

// BalanceValue is the unrounded display value, used as the team
// balancing contribution when shuffling on OpenSkill.
func BalanceValue(r models.OpenSkillRating) float64 {
	v := (r.Mu - OpenSkillMu) * displayScale
	if v < 0 {
		return 0
	}
	return v
}

// CalibratedOpenSkill reports whether sigma has converged.
func CalibratedOpenSkill(r models.OpenSkillRating) bool {
	return r.Sigma <= calibratedSigma
}

// PredictWin returns the probability that team a beats team b. Empty
// teams report an even match.
func (o *OpenSkill) PredictWin(a, b []models.OpenSkillRating) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0.5
	}
	teams := []types.Team{toTeam(a), toTeam(b)}
	predictions := rating.PredictWin(teams, nil)
	if len(predictions) != 2 {
		return 0.5
	}
	return predictions[0]
}

// RateEqual applies Phase-1: one match, both rosters at weight 1.
func (o *OpenSkill) RateEqual(winners, losers []models.OpenSkillRating) ([]models.OpenSkillRating, []models.OpenSkillRating) {
	ones := make([]float64, len(winners)+len(losers))
	for i := range ones {
		ones[i] = 1
	}
	return o.RateWeighted(winners, losers, ones[:len(winners)], ones[len(winners):])
}

// RateWeighted applies fantasy-weighted movement. The Plackett-Luce delta
// is computed once per player, then winners scale gains by their weight
// while losers shrink losses by theirs. Movement is clamped and mu floored
// so display ratings stay non-negative.
func (o *OpenSkill) RateWeighted(winners, losers []models.OpenSkillRating, winnerWeights, loserWeights []float64) ([]models.OpenSkillRating, []models.OpenSkillRating) {
	rated := rating.Rate([]types.Team{toTeam(winners), toTeam(losers)}, &types.OpenSkillOptions{
		Score: []int{1, 0},
	})

	newWinners := make([]models.OpenSkillRating, len(winners))
	for i, before := range winners {
		after := fromOpenSkill(rated[0][i])
		delta := (after.Mu - before.Mu) * weightAt(winnerWeights, i)
		newWinners[i] = o.applyDelta(before, delta, after.Sigma)
	}
	newLosers := make([]models.OpenSkillRating, len(losers))
	for i, before := range losers {
		after := fromOpenSkill(rated[1][i])
		delta := (after.Mu - before.Mu) / weightAt(loserWeights, i)
		newLosers[i] = o.applyDelta(before, delta, after.Sigma)
	}
	return newWinners, newLosers
}

// FantasyWeight maps fantasy points onto the blended 1..3 weight range.
// Missing points weigh 1.
func (o *OpenSkill) FantasyWeight(points *float64) float64 {
	if points == nil {
		return 1
	}
	fp := *points
	if fp < fantasyPointsMin {
		fp = fantasyPointsMin
	}
	if fp > fantasyPointsMax {
		fp = fantasyPointsMax
	}
	raw := fantasyWeightMin + (fp-fantasyPointsMin)/(fantasyPointsMax-fantasyPointsMin)*fantasyWeightSpan
	return o.weightInfluence*raw + (1 - o.weightInfluence)
}

func (o *OpenSkill) applyDelta(before models.OpenSkillRating, delta, sigma float64) models.OpenSkillRating {
	delta = mathutil.ClampMagnitude(delta, o.maxDelta)
	mu := before.Mu + delta
	if mu < OpenSkillMu {
		mu = OpenSkillMu
	}
	return models.OpenSkillRating{Mu: mu, Sigma: sigma}
}

func weightAt(weights []float64, i int) float64 {
	if i >= len(weights) || weights[i] <= 0 {
		return 1
	}
	return weights[i]
}

func toOpenSkill(r models.OpenSkillRating) types.Rating {
	return types.Rating{Mu: r.Mu, Sigma: r.Sigma, Z: openSkillZ}
}

func fromOpenSkill(r types.Rating) models.OpenSkillRating {
	return models.OpenSkillRating{Mu: r.Mu, Sigma: r.Sigma}
}

func toTeam(rs []models.OpenSkillRating) types.Team {
	team := make(types.Team, len(rs))
	for i, r := range rs {
		team[i] = toOpenSkill(r)
	}
	return team
}
