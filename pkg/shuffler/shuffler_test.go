// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package shuffler

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func shuffleConfig() *config.Config {
	return &config.Config{
		BalancingRatingSystem:    constants.RatingSystemGlicko,
		OffRoleMultiplier:        0.95,
		OffRoleFlatPenalty:       350,
		RoleMatchupDeltaWeight:   0.18,
		ExclusionPenaltyWeight:   45,
		RecentMatchPenaltyWeight: 25,
		AvoidPenaltyWeight:       200,
		PackageDealPenaltyWeight: 200,
	}
}

// flexPool builds n players without role preferences so every seat is
// on-role and balance is decided by rating alone.
func flexPool(n int, baseRating float64) []models.Player {
	players := make([]models.Player, n)
	for i := range players {
		players[i] = models.Player{
			ID:        int64(i + 1),
			Glicko:    models.Glicko2Rating{Rating: baseRating + float64(i)*10, RD: 120, Volatility: 0.06},
			OpenSkill: models.OpenSkillRating{Mu: 30, Sigma: 5},
		}
	}
	return players
}

func seatIDs(seats []models.TeamSeat) map[int64]bool {
	ids := make(map[int64]bool, len(seats))
	for _, seat := range seats {
		ids[seat.PlayerID] = true
	}
	return ids
}

func TestShuffle_RejectsSmallPools(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	_, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(constants.MinShuffle-1, 1500),
		System:  constants.RatingSystemGlicko,
		Seed:    1,
	})

	g.Expect(err).To(MatchError(models.ErrInsufficientPlayers))
}

func TestShuffle_ExactTenSeatsEveryoneAcrossAllRoles(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(constants.MinShuffle, 1500),
		System:  constants.RatingSystemGlicko,
		Seed:    1,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Radiant).To(HaveLen(constants.TeamSize))
	g.Expect(result.Dire).To(HaveLen(constants.TeamSize))
	g.Expect(result.Excluded).To(BeEmpty())
	g.Expect(result.OffRoleSeats).To(Equal(0))
	g.Expect(result.FirstPick.Valid()).To(BeTrue())

	for _, seats := range [][]models.TeamSeat{result.Radiant, result.Dire} {
		roles := map[int]bool{}
		for _, seat := range seats {
			roles[seat.Role] = true
		}
		g.Expect(roles).To(HaveLen(constants.RoleCount))
	}

	radiant := seatIDs(result.Radiant)
	dire := seatIDs(result.Dire)
	for id := range radiant {
		g.Expect(dire).NotTo(HaveKey(id))
	}
}

func TestShuffle_LargerPoolBenchesTheRest(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(12, 1500),
		System:  constants.RatingSystemGlicko,
		Seed:    1,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Excluded).To(HaveLen(2))
}

func TestShuffle_OversizedPoolIsTruncated(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(16, 1500),
		System:  constants.RatingSystemGlicko,
		Seed:    1,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.Excluded).To(HaveLen(constants.MaxShuffle - constants.MinShuffle))
	seen := seatIDs(result.Radiant)
	for id := range seatIDs(result.Dire) {
		seen[id] = true
	}
	for _, ex := range result.Excluded {
		seen[ex.PlayerID] = true
	}
	g.Expect(seen).NotTo(HaveKey(int64(15)))
	g.Expect(seen).NotTo(HaveKey(int64(16)))
}

func TestShuffle_FixedSeedIsDeterministic(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope
	s := New(shuffleConfig())

	req := Request{
		GuildID: 1,
		Players: flexPool(12, 1400),
		System:  constants.RatingSystemGlicko,
		Seed:    42,
	}
	first, err := s.Shuffle(scope, req)
	g.Expect(err).NotTo(HaveOccurred())
	second, err := s.Shuffle(scope, req)
	g.Expect(err).NotTo(HaveOccurred())

	g.Expect(second.Radiant).To(Equal(first.Radiant))
	g.Expect(second.Dire).To(Equal(first.Dire))
	g.Expect(second.Excluded).To(Equal(first.Excluded))
	g.Expect(second.FirstPick).To(Equal(first.FirstPick))
}

func TestShuffle_SoftAvoidSplitsThePair(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	avoid := models.SoftAvoid{ID: 7, AvoiderID: 1, AvoidedID: 2}
	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(constants.MinShuffle, 1500),
		System:  constants.RatingSystemGlicko,
		Avoids:  []models.SoftAvoid{avoid},
		Seed:    1,
	})

	g.Expect(err).NotTo(HaveOccurred())
	radiant := seatIDs(result.Radiant)
	g.Expect(radiant[1]).NotTo(Equal(radiant[2]))
	g.Expect(result.EffectiveAvoidIDs).To(ContainElement(int64(7)))
}

func TestShuffle_PackageDealKeepsThePairTogether(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	deal := models.PackageDeal{ID: 9, BuyerID: 1, PartnerID: 2}
	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(constants.MinShuffle, 1500),
		System:  constants.RatingSystemGlicko,
		Deals:   []models.PackageDeal{deal},
		Seed:    1,
	})

	g.Expect(err).NotTo(HaveOccurred())
	radiant := seatIDs(result.Radiant)
	g.Expect(radiant[1]).To(Equal(radiant[2]))
	g.Expect(result.EffectiveDealIDs).To(ContainElement(int64(9)))
}

func TestShuffle_WinProbabilitiesAreReported(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	result, err := New(shuffleConfig()).Shuffle(scope, Request{
		GuildID: 1,
		Players: flexPool(constants.MinShuffle, 1500),
		System:  constants.RatingSystemOpenSkill,
		Seed:    3,
	})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(result.BalancingSystem).To(Equal(constants.RatingSystemOpenSkill))
	g.Expect(result.GlickoRadiantWinProb).To(BeNumerically(">", 0))
	g.Expect(result.GlickoRadiantWinProb).To(BeNumerically("<", 1))
	g.Expect(result.OpenSkillRadiantWinProb).To(BeNumerically(">", 0))
	g.Expect(result.OpenSkillRadiantWinProb).To(BeNumerically("<", 1))
}

func TestRoleMask_EmptyPreferencesCoverEveryRole(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	mask := roleMask(nil)
	for role := 1; role <= constants.RoleCount; role++ {
		g.Expect(onRole(mask, role)).To(BeTrue())
	}

	mask = roleMask([]int{constants.RoleCarry, constants.RoleMid})
	g.Expect(onRole(mask, constants.RoleCarry)).To(BeTrue())
	g.Expect(onRole(mask, constants.RoleHardSupport)).To(BeFalse())
}
