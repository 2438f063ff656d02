// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package shuffler searches the combinatorial space of team
// compositions for the most balanced 5v5 split of a player pool.
package shuffler

import (
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/combin"
	"gopkg.in/typ.v4/sync2"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/rating"
)

// Role assignment exploration is capped per team. Exact ten-player
// shuffles afford a wider search than pool shuffles, which multiply
// every split by up to 1001 subsets.
const (
	assignmentLimitExact = 20
	assignmentLimitPool  = 3
)

// Shuffler builds balanced teams from a registered player pool.
type Shuffler struct {
	cfg       *config.Config
	openskill *rating.OpenSkill
	assignBuf *sync2.Pool[[]teamAssign]
}

func New(cfg *config.Config) *Shuffler {
	return &Shuffler{
		cfg:       cfg,
		openskill: rating.NewOpenSkill(cfg),
		assignBuf: &sync2.Pool[[]teamAssign]{
			New: func() []teamAssign {
				return make([]teamAssign, 0, assignmentLimitExact)
			},
		},
	}
}

// Request is one shuffle invocation. Players carry pre-decayed
// deviations; Seed pins the side and first-pick coin flips for tests.
type Request struct {
	GuildID   int64
	Players   []models.Player
	System    string
	RecentIDs map[int64]struct{}
	Avoids    []models.SoftAvoid
	Deals     []models.PackageDeal
	Seed      int64
}

// Result is the chosen composition. Lifecycle state (betting window,
// votes, pot flags) is attached by the match service.
type Result struct {
	Radiant                 []models.TeamSeat
	Dire                    []models.TeamSeat
	Excluded                []models.ExcludedPlayer
	RadiantValue            float64
	DireValue               float64
	ValueDiff               float64
	Goodness                float64
	OffRoleSeats            int
	FirstPick               models.Side
	GlickoRadiantWinProb    float64
	OpenSkillRadiantWinProb float64
	BalancingSystem         string
	CandidatesEvaluated     int
	EffectiveAvoidIDs       []int64
	EffectiveDealIDs        []int64
}

type poolPlayer struct {
	id         int64
	value      float64
	mask       uint8
	exclusions float64
	recent     bool
	glicko     models.Glicko2Rating
	openskill  models.OpenSkillRating
}

type candidate struct {
	subset    []int
	teamA     [constants.TeamSize]int
	teamB     [constants.TeamSize]int
	asgA      teamAssign
	asgB      teamAssign
	score     float64
	valueDiff float64
	offRoles  int
}

// Shuffle selects ten players, splits them into two role-assigned
// teams, and benches the rest. Pools above fourteen are truncated;
// pools below ten fail with ErrInsufficientPlayers.
func (s *Shuffler) Shuffle(rootScope *envelope.Scope, req Request) (*Result, error) {
	scope := rootScope.NewChildScope("Shuffler.Shuffle")
	defer scope.Finish()

	players := req.Players
	if len(players) < constants.MinShuffle {
		return nil, models.ErrInsufficientPlayers
	}
	if len(players) > constants.MaxShuffle {
		scope.Log.WithFields(logrus.Fields{
			"poolSize": len(players),
			"cap":      constants.MaxShuffle,
		}).Warn("shuffle pool truncated")
		players = players[:constants.MaxShuffle]
	}

	pool := s.buildPool(players, req.System, req.RecentIDs)
	avoidPairs, dealPairs := buildPairConstraints(pool, req.Avoids, req.Deals,
		s.cfg.AvoidPenaltyWeight, s.cfg.PackageDealPenaltyWeight)

	best, evaluated := s.search(pool, avoidPairs, dealPairs)
	if best == nil {
		return nil, models.ErrInsufficientPlayers
	}

	seed := req.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	result := s.buildResult(pool, best, avoidPairs, dealPairs, req.System, rng)
	result.CandidatesEvaluated = evaluated

	scope.Log.WithFields(logrus.Fields{
		"guildID":      req.GuildID,
		"poolSize":     len(players),
		"system":       req.System,
		"candidates":   evaluated,
		"goodness":     result.Goodness,
		"valueDiff":    result.ValueDiff,
		"offRoleSeats": result.OffRoleSeats,
		"excluded":     len(result.Excluded),
	}).Info("shuffle done")
	return result, nil
}

func (s *Shuffler) buildPool(players []models.Player, system string, recent map[int64]struct{}) []poolPlayer {
	pool := make([]poolPlayer, len(players))
	for i, p := range players {
		value := p.Glicko.Rating
		if system == constants.RatingSystemOpenSkill {
			value = rating.BalanceValue(p.OpenSkill)
		}
		_, isRecent := recent[p.ID]
		pool[i] = poolPlayer{
			id:         p.ID,
			value:      value,
			mask:       roleMask(p.PreferredRoles),
			exclusions: p.ExclusionCount(),
			recent:     isRecent,
			glicko:     p.Glicko,
			openskill:  p.OpenSkill,
		}
	}
	return pool
}

// search walks every subset of ten and every split of five, pruning
// branches whose fixed penalties already exceed the best score.
func (s *Shuffler) search(pool []poolPlayer, avoidPairs, dealPairs []pairConstraint) (*candidate, int) {
	n := len(pool)
	assignLimit := assignmentLimitExact
	var subsets [][]int
	if n == constants.MinShuffle {
		whole := make([]int, n)
		for i := range whole {
			whole[i] = i
		}
		subsets = [][]int{whole}
	} else {
		subsets = combin.Combinations(n, constants.MinShuffle)
		assignLimit = assignmentLimitPool
	}

	totalExclusions := 0.0
	for _, p := range pool {
		totalExclusions += p.exclusions
	}

	// Splits pin the subset's first player onto team A, halving the
	// symmetric duplicates.
	splits := combin.Combinations(constants.MinShuffle-1, constants.TeamSize-1)

	var best *candidate
	bestScore := math.Inf(1)
	evaluated := 0

	var selected, inTeamA [constants.MaxShuffle]bool
	var teamAPlayers, teamBPlayers [constants.TeamSize]poolPlayer

	for _, subset := range subsets {
		selectedExclusions := 0.0
		recentCount := 0
		for i := range selected {
			selected[i] = false
		}
		for _, idx := range subset {
			selected[idx] = true
			selectedExclusions += pool[idx].exclusions
			if pool[idx].recent {
				recentCount++
			}
		}
		subsetPenalty := (totalExclusions-selectedExclusions)*s.cfg.ExclusionPenaltyWeight +
			float64(recentCount)*s.cfg.RecentMatchPenaltyWeight
		if subsetPenalty > bestScore {
			continue
		}

		for _, split := range splits {
			var teamA, teamB [constants.TeamSize]int
			teamA[0] = subset[0]
			inA := [constants.MinShuffle]bool{0: true}
			for i, pos := range split {
				teamA[i+1] = subset[pos+1]
				inA[pos+1] = true
			}
			bi := 0
			for i := 1; i < constants.MinShuffle; i++ {
				if !inA[i] {
					teamB[bi] = subset[i]
					bi++
				}
			}

			for i := range inTeamA {
				inTeamA[i] = false
			}
			for _, idx := range teamA {
				inTeamA[idx] = true
			}
			fixedPenalty := subsetPenalty + splitPenalty(avoidPairs, dealPairs, selected[:n], inTeamA[:n])
			if fixedPenalty > bestScore {
				continue
			}

			for i := range teamA {
				teamAPlayers[i] = pool[teamA[i]]
				teamBPlayers[i] = pool[teamB[i]]
			}
			bufA := s.assignBuf.Get()
			bufB := s.assignBuf.Get()
			assignsA := buildAssignments(teamAPlayers[:], s.cfg.OffRoleMultiplier, assignLimit, bufA)
			assignsB := buildAssignments(teamBPlayers[:], s.cfg.OffRoleMultiplier, assignLimit, bufB)

			for _, asgA := range assignsA {
				for _, asgB := range assignsB {
					evaluated++
					valueDiff := math.Abs(asgA.value - asgB.value)
					offRoles := asgA.off + asgB.off
					partial := fixedPenalty + valueDiff + float64(offRoles)*s.cfg.OffRoleFlatPenalty
					if partial > bestScore {
						continue
					}
					matchup := matchupDelta(asgA, asgB)
					score := partial + matchup*s.cfg.RoleMatchupDeltaWeight

					next := candidate{
						subset:    subset,
						teamA:     teamA,
						teamB:     teamB,
						asgA:      asgA,
						asgB:      asgB,
						score:     score,
						valueDiff: valueDiff,
						offRoles:  offRoles,
					}
					if best == nil || less(&next, best, pool) {
						clone := next
						best = &clone
						bestScore = score
					}
				}
			}
			s.assignBuf.Put(assignsA[:0])
			s.assignBuf.Put(assignsB[:0])

			if bestScore == 0 {
				return best, evaluated
			}
		}
	}
	return best, evaluated
}

// matchupDelta is the worst lane mismatch: carry into enemy offlane on
// both sides, and mid against mid.
func matchupDelta(a, b teamAssign) float64 {
	carryA := math.Abs(a.effByRole[constants.RoleCarry] - b.effByRole[constants.RoleOfflane])
	carryB := math.Abs(b.effByRole[constants.RoleCarry] - a.effByRole[constants.RoleOfflane])
	mid := math.Abs(a.effByRole[constants.RoleMid] - b.effByRole[constants.RoleMid])
	return math.Max(math.Max(carryA, carryB), mid)
}

// less orders candidates by score, then value difference, then off-role
// seats, then the lexicographic id signature. The full chain keeps the
// search deterministic regardless of enumeration order.
func less(a, b *candidate, pool []poolPlayer) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	if a.valueDiff != b.valueDiff {
		return a.valueDiff < b.valueDiff
	}
	if a.offRoles != b.offRoles {
		return a.offRoles < b.offRoles
	}
	sigA := signature(a, pool)
	sigB := signature(b, pool)
	for i := range sigA {
		if sigA[i] != sigB[i] {
			return sigA[i] < sigB[i]
		}
	}
	return false
}

// signature is the canonical id tuple of a candidate: both teams
// sorted internally, lower team first.
func signature(c *candidate, pool []poolPlayer) [2 * constants.TeamSize]int64 {
	var a, b [constants.TeamSize]int64
	for i := range c.teamA {
		a[i] = pool[c.teamA[i]].id
		b[i] = pool[c.teamB[i]].id
	}
	sortIDs(a[:])
	sortIDs(b[:])
	if teamLess(b, a) {
		a, b = b, a
	}
	var sig [2 * constants.TeamSize]int64
	copy(sig[:constants.TeamSize], a[:])
	copy(sig[constants.TeamSize:], b[:])
	return sig
}

func sortIDs(ids []int64) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}

func teamLess(a, b [constants.TeamSize]int64) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func (s *Shuffler) buildResult(pool []poolPlayer, best *candidate, avoidPairs, dealPairs []pairConstraint, system string, rng *rand.Rand) *Result {
	seatsA := buildSeats(pool, best.teamA, best.asgA)
	seatsB := buildSeats(pool, best.teamB, best.asgB)

	result := &Result{
		ValueDiff:       best.valueDiff,
		Goodness:        best.score,
		OffRoleSeats:    best.offRoles,
		BalancingSystem: system,
	}
	if rng.Intn(2) == 0 {
		result.Radiant, result.Dire = seatsA, seatsB
		result.RadiantValue, result.DireValue = best.asgA.value, best.asgB.value
	} else {
		result.Radiant, result.Dire = seatsB, seatsA
		result.RadiantValue, result.DireValue = best.asgB.value, best.asgA.value
	}
	result.FirstPick = models.SideRadiant
	if rng.Intn(2) == 1 {
		result.FirstPick = models.SideDire
	}

	selected := make([]bool, len(pool))
	for _, idx := range best.subset {
		selected[idx] = true
	}
	inTeamA := make([]bool, len(pool))
	for _, idx := range best.teamA {
		inTeamA[idx] = true
	}
	for i, p := range pool {
		if !selected[i] {
			result.Excluded = append(result.Excluded, models.ExcludedPlayer{PlayerID: p.id})
		}
	}
	result.EffectiveAvoidIDs = honoredIDs(avoidPairs, selected, inTeamA, false)
	result.EffectiveDealIDs = honoredIDs(dealPairs, selected, inTeamA, true)

	index := make(map[int64]int, len(pool))
	for i, p := range pool {
		index[p.id] = i
	}
	radiantGlicko := make([]models.Glicko2Rating, 0, constants.TeamSize)
	direGlicko := make([]models.Glicko2Rating, 0, constants.TeamSize)
	radiantOS := make([]models.OpenSkillRating, 0, constants.TeamSize)
	direOS := make([]models.OpenSkillRating, 0, constants.TeamSize)
	for _, seat := range result.Radiant {
		p := pool[index[seat.PlayerID]]
		radiantGlicko = append(radiantGlicko, p.glicko)
		radiantOS = append(radiantOS, p.openskill)
	}
	for _, seat := range result.Dire {
		p := pool[index[seat.PlayerID]]
		direGlicko = append(direGlicko, p.glicko)
		direOS = append(direOS, p.openskill)
	}
	result.GlickoRadiantWinProb = rating.ExpectedWinProb(radiantGlicko, direGlicko)
	result.OpenSkillRadiantWinProb = s.openskill.PredictWin(radiantOS, direOS)
	return result
}

func buildSeats(pool []poolPlayer, team [constants.TeamSize]int, asg teamAssign) []models.TeamSeat {
	seats := make([]models.TeamSeat, constants.TeamSize)
	for i, idx := range team {
		p := pool[idx]
		role := asg.roles[i]
		seats[i] = models.TeamSeat{
			PlayerID: p.id,
			Role:     role,
			OffRole:  !onRole(p.mask, role),
			Value:    asg.effByRole[role],
		}
	}
	return seats
}
