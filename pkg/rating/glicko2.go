// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/mathutil"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

const (
	glickoScale           = 173.7178
	glickoCenter          = 1500.0
	glickoTau             = 0.5
	volatilityConvergence = 0.000001

	// MMR maps linearly onto the 0..3000 rating range.
	MaxMMR     = 12000
	MaxRating  = 3000.0
	DefaultMMR = 4000
	InitialRD  = 350.0
	InitialVol = 0.06
)

// Glicko is the team-flavored Glicko-2 kernel. Both teams share one
// aggregate-derived rating delta; deviation and volatility move per player.
type Glicko struct {
	maxSwing       float64
	upsetMargin    float64
	upsetDampening float64
}

func NewGlicko(cfg *config.Config) *Glicko {
	return &Glicko{
		maxSwing:       cfg.MaxRatingSwing,
		upsetMargin:    200,
		upsetDampening: 0.05,
	}
}

// Seed converts an optional self-reported MMR into a fresh rating triple.
func Seed(mmr int64) models.Glicko2Rating {
	if mmr <= 0 {
		mmr = DefaultMMR
	}
	if mmr > MaxMMR {
		mmr = MaxMMR
	}
	return models.Glicko2Rating{
		Rating:     float64(mmr) / (MaxMMR / MaxRating),
		RD:         InitialRD,
		Volatility: InitialVol,
	}
}

// DisplayMMR maps a rating back onto the MMR range.
func DisplayMMR(r models.Glicko2Rating) int64 {
	return int64(math.Round(r.Rating * (MaxMMR / MaxRating)))
}

// Uncertainty reports deviation as a 0..100 percentage of the initial RD.
func Uncertainty(rd float64) float64 {
	return mathutil.Min(100, rd/InitialRD*100)
}

// TeamAggregate folds a roster into one synthetic rating: mean rating,
// root-mean-square deviation, mean volatility.
func TeamAggregate(team []models.Glicko2Rating) models.Glicko2Rating {
	if len(team) == 0 {
		return models.Glicko2Rating{Rating: glickoCenter, RD: InitialRD, Volatility: InitialVol}
	}
	ratings := make([]float64, len(team))
	vols := make([]float64, len(team))
	rdSquares := 0.0
	for i, r := range team {
		ratings[i] = r.Rating
		vols[i] = r.Volatility
		rdSquares += r.RD * r.RD
	}
	return models.Glicko2Rating{
		Rating:     stat.Mean(ratings, nil),
		RD:         math.Sqrt(rdSquares / float64(len(team))),
		Volatility: stat.Mean(vols, nil),
	}
}

// ExpectedWinProb is the Glicko-2 expectation that team a beats team b,
// computed on the aggregates.
func ExpectedWinProb(a, b []models.Glicko2Rating) float64 {
	aggA := TeamAggregate(a)
	aggB := TeamAggregate(b)
	muA := toInternal(aggA.Rating)
	muB := toInternal(aggB.Rating)
	phiB := aggB.RD / glickoScale
	return expectation(muA, muB, phiB)
}

// GlickoOutcome carries the per-team shared deltas and per-player updates
// of one rated match.
type GlickoOutcome struct {
	WinnerDelta    float64
	LoserDelta     float64
	WinnerExpected float64
	Winners        []models.Glicko2Rating
	Losers         []models.Glicko2Rating
	UpsetDampened  bool
}

// RateTeams applies one match result. Winners and losers keep their order.
func (g *Glicko) RateTeams(winners, losers []models.Glicko2Rating) GlickoOutcome {
	winAgg := TeamAggregate(winners)
	loseAgg := TeamAggregate(losers)

	winUpdated := updateAgainst(winAgg, loseAgg, 1)
	loseUpdated := updateAgainst(loseAgg, winAgg, 0)

	winnerDelta := winUpdated.Rating - winAgg.Rating
	loserDelta := loseUpdated.Rating - loseAgg.Rating

	dampened := false
	if loseAgg.Rating-winAgg.Rating > g.upsetMargin {
		winnerDelta *= g.upsetDampening
		loserDelta *= g.upsetDampening
		dampened = true
	}
	winnerDelta = mathutil.ClampMagnitude(winnerDelta, g.maxSwing)
	loserDelta = mathutil.ClampMagnitude(loserDelta, g.maxSwing)

	out := GlickoOutcome{
		WinnerDelta:    winnerDelta,
		LoserDelta:     loserDelta,
		WinnerExpected: expectation(toInternal(winAgg.Rating), toInternal(loseAgg.Rating), loseAgg.RD/glickoScale),
		Winners:        make([]models.Glicko2Rating, len(winners)),
		Losers:         make([]models.Glicko2Rating, len(losers)),
		UpsetDampened:  dampened,
	}
	for i, r := range winners {
		updated := updateAgainst(r, loseAgg, 1)
		updated.Rating = mathutil.Max(0, r.Rating+winnerDelta)
		out.Winners[i] = updated
	}
	for i, r := range losers {
		updated := updateAgainst(r, winAgg, 0)
		updated.Rating = mathutil.Max(0, r.Rating+loserDelta)
		out.Losers[i] = updated
	}
	return out
}

func toInternal(rating float64) float64 {
	return (rating - glickoCenter) / glickoScale
}

func fromInternal(mu float64) float64 {
	return mu*glickoScale + glickoCenter
}

func deviationWeight(phi float64) float64 {
	return 1 / math.Sqrt(1+3*phi*phi/(math.Pi*math.Pi))
}

func expectation(mu, muOpp, phiOpp float64) float64 {
	return 1 / (1 + math.Exp(-deviationWeight(phiOpp)*(mu-muOpp)))
}

// updateAgainst runs a full single-opponent Glicko-2 period for one rating.
// score is 1 for a win, 0 for a loss.
func updateAgainst(r, opp models.Glicko2Rating, score float64) models.Glicko2Rating {
	mu := toInternal(r.Rating)
	phi := r.RD / glickoScale
	muOpp := toInternal(opp.Rating)
	phiOpp := opp.RD / glickoScale

	gOpp := deviationWeight(phiOpp)
	e := expectation(mu, muOpp, phiOpp)
	v := 1 / (gOpp * gOpp * e * (1 - e))
	delta := v * gOpp * (score - e)

	sigma := nextVolatility(phi, v, delta, r.Volatility)
	phiStar := math.Sqrt(phi*phi + sigma*sigma)
	phiNew := 1 / math.Sqrt(1/(phiStar*phiStar)+1/v)
	muNew := mu + phiNew*phiNew*gOpp*(score-e)

	return models.Glicko2Rating{
		Rating:     fromInternal(muNew),
		RD:         phiNew * glickoScale,
		Volatility: sigma,
	}
}

// nextVolatility is the Illinois iteration from the Glicko-2 paper.
func nextVolatility(phi, v, delta, sigma float64) float64 {
	a := math.Log(sigma * sigma)
	phi2 := phi * phi
	delta2 := delta * delta
	tau2 := glickoTau * glickoTau

	f := func(x float64) float64 {
		ex := math.Exp(x)
		num := ex * (delta2 - phi2 - v - ex)
		den := 2 * (phi2 + v + ex) * (phi2 + v + ex)
		return num/den - (x-a)/tau2
	}

	bigA := a
	var bigB float64
	if delta2 > phi2+v {
		bigB = math.Log(delta2 - phi2 - v)
	} else {
		k := 1.0
		for f(a-k*glickoTau) < 0 {
			k++
		}
		bigB = a - k*glickoTau
	}

	fA := f(bigA)
	fB := f(bigB)
	for math.Abs(bigB-bigA) > volatilityConvergence {
		bigC := bigA + (bigA-bigB)*fA/(fB-fA)
		fC := f(bigC)
		if fC*fB <= 0 {
			bigA = bigB
			fA = fB
		} else {
			fA /= 2
		}
		bigB = bigC
		fB = fC
	}
	return math.Exp(bigA / 2)
}
