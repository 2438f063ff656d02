// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package utils

import (
	"reflect"
	"strings"
	"testing"
)

func TestContains(t *testing.T) {
	t.Parallel()

	if !Contains([]string{"a", "b"}, "b") {
		t.Error("expected b to be found")
	}
	if Contains([]string{"a", "b"}, "c") {
		t.Error("did not expect c to be found")
	}
	if Contains(nil, int64(1)) {
		t.Error("did not expect a hit in an empty list")
	}
}

func TestSortedKeys(t *testing.T) {
	t.Parallel()

	m := map[int64]string{3: "c", 1: "a", 2: "b"}
	got := SortedKeys(m)
	want := []int64{1, 2, 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedKeys() = %v, want %v", got, want)
	}
}

func TestCanonicalPair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b, wantA, wantB int64
	}{
		{1, 2, 1, 2},
		{2, 1, 1, 2},
		{5, 5, 5, 5},
	}
	for _, tt := range tests {
		gotA, gotB := CanonicalPair(tt.a, tt.b)
		if gotA != tt.wantA || gotB != tt.wantB {
			t.Errorf("CanonicalPair(%d, %d) = (%d, %d), want (%d, %d)",
				tt.a, tt.b, gotA, gotB, tt.wantA, tt.wantB)
		}
	}
}

func TestOverlapAndToSet(t *testing.T) {
	t.Parallel()

	set := ToSet([]int64{1, 2, 3})
	got := Overlap([]int64{4, 2, 1}, set)
	want := []int64{2, 1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Overlap() = %v, want %v", got, want)
	}
}

func TestGenerateUUID(t *testing.T) {
	t.Parallel()

	id := GenerateUUID()
	if len(id) != 32 {
		t.Errorf("GenerateUUID() length = %d, want 32", len(id))
	}
	if strings.Contains(id, "-") {
		t.Errorf("GenerateUUID() = %q, want no hyphens", id)
	}
	if id == GenerateUUID() {
		t.Error("expected distinct ids")
	}
}
