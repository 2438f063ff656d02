// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package rating

import (
	"math"
	"time"
)

const secondsPerWeek = 7 * 24 * 3600

// DecayedRD projects deviation growth for an idle player. Each whole week
// past the grace window widens RD toward the initial value. The projection
// is read-only at shuffle time; the widened value persists only through a
// recorded match.
func DecayedRD(rd float64, lastMatchAt int64, now time.Time, graceSeconds int64, c float64) float64 {
	if lastMatchAt <= 0 || rd >= InitialRD {
		return rd
	}
	idle := now.Unix() - lastMatchAt - graceSeconds
	if idle <= 0 {
		return rd
	}
	weeks := idle / secondsPerWeek
	for i := int64(0); i < weeks; i++ {
		rd = math.Sqrt(rd*rd + c*c)
		if rd >= InitialRD {
			return InitialRD
		}
	}
	return rd
}
