// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package utils

import (
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Contains return true if val exist in list, else return false.
func Contains[T comparable](list []T, val T) bool {
	for _, v := range list {
		if v == val {
			return true
		}
	}
	return false
}

// GenerateUUID generates uuid without hyphens.
func GenerateUUID() string {
	id, _ := uuid.NewRandom()
	return strings.ReplaceAll(id.String(), "-", "")
}

// SortedKeys returns the keys of m in ascending order. Settlement and
// disbursement loops iterate maps through this so payouts apply in a
// stable order.
func SortedKeys[K interface {
	~int | ~int32 | ~int64 | ~string
}, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// CanonicalPair orders two ids so (a,b) and (b,a) address the same row.
func CanonicalPair(a, b int64) (int64, int64) {
	if a <= b {
		return a, b
	}
	return b, a
}

// Overlap returns the elements of list present in set.
func Overlap[T comparable](list []T, set map[T]struct{}) []T {
	out := make([]T, 0, len(list))
	for _, v := range list {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// ToSet builds a membership set from a list.
func ToSet[T comparable](list []T) map[T]struct{} {
	set := make(map[T]struct{}, len(list))
	for _, v := range list {
		set[v] = struct{}{}
	}
	return set
}
