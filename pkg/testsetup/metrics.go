// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"time"

	"github.com/AccelByte/extend-inhouse-league/pkg/metrics"
)

type stubMetricsCollection struct{}

func (s stubMetricsCollection) AddShuffleElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration) {
}

func (s stubMetricsCollection) AddShuffleCandidates(guildID int64, lobbyType string, candidates int) {
}

func (s stubMetricsCollection) AddRecordElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration) {
}

func (s stubMetricsCollection) AddBetPlaced(guildID int64, pool string, amount int64) {
}

func (s stubMetricsCollection) AddBetSettled(guildID int64, pool string, status string) {
}

func (s stubMetricsCollection) AddCoinFlow(guildID int64, flow string, amount int64) {
}

func (s stubMetricsCollection) AddVoteSubmitted(guildID int64, kind string) {
}

func (s stubMetricsCollection) AddEconomyEvent(guildID int64, event string) {
}

func (s stubMetricsCollection) AddRejectedOperation(guildID int64, reason string) {
}

func NewMetrics() metrics.LeagueMetrics {
	return stubMetricsCollection{}
}
