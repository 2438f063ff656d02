// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"testing"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
)

func TestPenalizeWinnings(t *testing.T) {
	t.Parallel()

	s := New(&config.Config{BankruptcyPenaltyRate: 0.5}, nil)

	tests := []struct {
		name         string
		amount       int64
		penaltyGames int
		wantPaid     int64
		wantWithheld int64
	}{
		{"penalty window halves the reward", 2, 5, 1, 1},
		{"odd rewards truncate toward zero", 3, 1, 1, 2},
		{"no penalty games pays in full", 2, 0, 2, 0},
		{"zero reward stays zero", 0, 5, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			paid, withheld := s.PenalizeWinnings(tt.amount, tt.penaltyGames)
			if paid != tt.wantPaid || withheld != tt.wantWithheld {
				t.Errorf("PenalizeWinnings(%d, %d) = (%d, %d), want (%d, %d)",
					tt.amount, tt.penaltyGames, paid, withheld, tt.wantPaid, tt.wantWithheld)
			}
		})
	}
}
