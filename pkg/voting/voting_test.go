// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package voting

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func newService() *Service {
	return New(&config.Config{MinNonAdminSubmissions: 3}, nil)
}

func pendingWithVotes(votes map[int64]models.Vote) *models.PendingMatch {
	return &models.PendingMatch{ID: 1, GuildID: 1, Votes: votes}
}

func TestPendingResult_ThreeAgreeingNonAdminVotesAreActionable(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		1: {Kind: models.VoteRadiantWin},
		2: {Kind: models.VoteRadiantWin},
		3: {Kind: models.VoteRadiantWin},
	})
	winner, ok := s.PendingResult(pm)

	g.Expect(ok).To(BeTrue())
	g.Expect(winner).To(Equal(models.SideRadiant))
}

func TestPendingResult_TwoVotesAreNotEnough(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		1: {Kind: models.VoteDireWin},
		2: {Kind: models.VoteDireWin},
	})
	_, ok := s.PendingResult(pm)

	g.Expect(ok).To(BeFalse())
}

func TestPendingResult_SplitVotesDoNotCombine(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		1: {Kind: models.VoteRadiantWin},
		2: {Kind: models.VoteRadiantWin},
		3: {Kind: models.VoteDireWin},
	})
	_, ok := s.PendingResult(pm)

	g.Expect(ok).To(BeFalse())
}

func TestPendingResult_SingleAdminVoteOverridesTheTally(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		1: {Kind: models.VoteRadiantWin},
		2: {Kind: models.VoteRadiantWin},
		9: {Kind: models.VoteDireWin, IsAdmin: true},
	})
	winner, ok := s.PendingResult(pm)

	g.Expect(ok).To(BeTrue())
	g.Expect(winner).To(Equal(models.SideDire))
}

func TestPendingResult_AdminAbortDoesNotCountAsAResult(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		9: {Kind: models.VoteAbort, IsAdmin: true},
	})
	_, ok := s.PendingResult(pm)

	g.Expect(ok).To(BeFalse())
	g.Expect(s.PendingAbort(pm)).To(BeTrue())
}

func TestPendingAbort_NonAdminThreshold(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	s := newService()

	pm := pendingWithVotes(map[int64]models.Vote{
		1: {Kind: models.VoteAbort},
		2: {Kind: models.VoteAbort},
	})
	g.Expect(s.PendingAbort(pm)).To(BeFalse())

	pm.Votes[3] = models.Vote{Kind: models.VoteAbort}
	g.Expect(s.PendingAbort(pm)).To(BeTrue())
}

func TestCountNonAdmin_AdminVotesAreExcluded(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	votes := map[int64]models.Vote{
		1: {Kind: models.VoteRadiantWin},
		2: {Kind: models.VoteRadiantWin, IsAdmin: true},
		3: {Kind: models.VoteDireWin},
	}

	g.Expect(countNonAdmin(votes, models.VoteRadiantWin)).To(Equal(1))
	g.Expect(countNonAdmin(votes, models.VoteDireWin)).To(Equal(1))
	g.Expect(countNonAdmin(votes, models.VoteAbort)).To(Equal(0))
}
