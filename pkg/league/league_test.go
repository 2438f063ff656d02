// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func TestPairCount(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		radiant, dire int
		want          int
	}{
		{"full five versus five", 5, 5, 45},
		{"four versus four", 4, 4, 28},
		{"lopsided rosters", 5, 4, 36},
		{"solo sides", 1, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := pairCount(tt.radiant, tt.dire); got != tt.want {
				t.Errorf("pairCount(%d, %d) = %d, want %d", tt.radiant, tt.dire, got, tt.want)
			}
		})
	}
}

func TestVoteKindLabel(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(voteKindLabel(models.VoteRadiantWin)).To(Equal("radiant_win"))
	g.Expect(voteKindLabel(models.VoteDireWin)).To(Equal("dire_win"))
	g.Expect(voteKindLabel(models.VoteAbort)).To(Equal("abort"))
	g.Expect(voteKindLabel(models.VoteKind(99))).To(Equal("unknown"))
}

func TestSumValues(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(sumValues(map[int64]int64{1: 10, 2: -3})).To(Equal(int64(7)))
	g.Expect(sumValues(nil)).To(Equal(int64(0)))
}

func TestFinalizeGuard_OneFinalizationPerGuild(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	s := &Service{inFlight: make(map[int64]struct{})}

	g.Expect(s.beginFinalize(1)).To(Succeed())
	g.Expect(s.beginFinalize(1)).To(MatchError(models.ErrRecordInProgress))
	// Another guild is unaffected.
	g.Expect(s.beginFinalize(2)).To(Succeed())

	s.endFinalize(1)
	g.Expect(s.beginFinalize(1)).To(Succeed())
}
