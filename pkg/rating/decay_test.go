// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"testing"
	"time"
)

func TestDecayedRD(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	grace := int64(1_209_600) // two weeks
	const c = 50.0

	tests := []struct {
		name        string
		rd          float64
		lastMatchAt int64
		want        float64
	}{
		{
			name:        "no recorded match yet",
			rd:          100,
			lastMatchAt: 0,
			want:        100,
		},
		{
			name:        "inside the grace window",
			rd:          100,
			lastMatchAt: now.Unix() - grace,
			want:        100,
		},
		{
			name:        "one idle week past grace",
			rd:          100,
			lastMatchAt: now.Unix() - grace - secondsPerWeek,
			want:        111.80339887498948,
		},
		{
			name:        "already at the initial deviation",
			rd:          350,
			lastMatchAt: now.Unix() - grace - 100*secondsPerWeek,
			want:        350,
		},
		{
			name:        "long idling caps at the initial deviation",
			rd:          340,
			lastMatchAt: now.Unix() - grace - 100*secondsPerWeek,
			want:        350,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := DecayedRD(tt.rd, tt.lastMatchAt, now, grace, c)
			if diff := got - tt.want; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("DecayedRD(%v) = %v, want %v", tt.rd, got, tt.want)
			}
		})
	}
}

func TestDecayedRD_GrowthIsMonotonic(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_700_000_000, 0)
	prev := 80.0
	for weeks := int64(1); weeks <= 20; weeks++ {
		got := DecayedRD(80, now.Unix()-1_209_600-weeks*secondsPerWeek, now, 1_209_600, 50)
		if got < prev {
			t.Fatalf("decay shrank at week %d: %v < %v", weeks, got, prev)
		}
		if got > InitialRD {
			t.Fatalf("decay exceeded the initial deviation at week %d: %v", weeks, got)
		}
		prev = got
	}
}
