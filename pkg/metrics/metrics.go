// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type LeagueMetrics interface {
	AddShuffleElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration)
	AddShuffleCandidates(guildID int64, lobbyType string, candidates int)
	AddRecordElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration)
	AddBetPlaced(guildID int64, pool string, amount int64)
	AddBetSettled(guildID int64, pool string, status string)
	AddCoinFlow(guildID int64, flow string, amount int64)
	AddVoteSubmitted(guildID int64, kind string)
	AddEconomyEvent(guildID int64, event string)
	AddRejectedOperation(guildID int64, reason string)
}

func NewMetrics(registry *prometheus.Registry) LeagueMetrics {
	return setupPrometheusMetrics(registry)
}
