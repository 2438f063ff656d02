// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"gopkg.in/typ.v4/sync2"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
)

// Pool reusable objects to reduce garbage collector
type Pool struct {
	IDBuffers   *sync2.Pool[[]int64]
	SeatBuffers *sync2.Pool[[]TeamSeat]
}

func NewPool() *Pool {
	return &Pool{
		IDBuffers: &sync2.Pool[[]int64]{
			New: func() []int64 {
				return make([]int64, 0, constants.MaxShuffle)
			},
		},
		SeatBuffers: &sync2.Pool[[]TeamSeat]{
			New: func() []TeamSeat {
				return make([]TeamSeat, 0, constants.TeamSize)
			},
		},
	}
}
