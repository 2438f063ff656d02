// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package predictions

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func TestTallyResolution(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	votes := map[int64]models.PredictionVote{
		1: {Outcome: true},
		2: {Outcome: true},
		3: {Outcome: false},
	}
	ballot := tallyResolution(votes, true)

	g.Expect(ballot.YesVotes).To(Equal(2))
	g.Expect(ballot.NoVotes).To(Equal(1))
	g.Expect(ballot.HasAdminVote).To(BeFalse())
}

func TestTallyResolution_AdminVoteOnlyCountsForItsOutcome(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	votes := map[int64]models.PredictionVote{
		1: {Outcome: false, IsAdmin: true},
	}

	g.Expect(tallyResolution(votes, false).HasAdminVote).To(BeTrue())
	g.Expect(tallyResolution(votes, true).HasAdminVote).To(BeFalse())
}

func TestCeilDiv(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, want int64
	}{
		{10, 5, 2},
		{11, 5, 3},
		{1, 3, 1},
		{0, 3, 0},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := ceilDiv(tt.a, tt.b); got != tt.want {
			t.Errorf("ceilDiv(%d, %d) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
