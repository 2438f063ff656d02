// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type prometheusMetrics struct {
	shuffleElapsedTime prometheus.HistogramVec
	shuffleCandidates  prometheus.HistogramVec
	recordElapsedTime  prometheus.HistogramVec
	betsPlaced         prometheus.CounterVec
	betAmounts         prometheus.CounterVec
	betsSettled        prometheus.CounterVec
	coinFlow           prometheus.CounterVec
	votesSubmitted     prometheus.CounterVec
	economyEvents      prometheus.CounterVec
	rejectedOperations prometheus.CounterVec
}

func setupPrometheusMetrics(registry *prometheus.Registry) prometheusMetrics {
	factory := promauto.With(registry)

	//nolint:promlinter
	shuffleElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ab_league_shuffle_elapsed_time_ms",
			Help:    "A histogram of shuffle elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"guild", "lobby_type"})
	shuffleCandidates := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ab_league_shuffle_candidates",
			Help:    "A histogram of team combinations evaluated per shuffle",
			Buckets: prometheus.ExponentialBuckets(16, 2, 12),
		}, []string{"guild", "lobby_type"})
	//nolint:promlinter
	recordElapsedTime := factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ab_league_record_elapsed_time_ms",
			Help:    "A histogram of match finalization elapsed time in milliseconds",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}, []string{"guild", "lobby_type"})
	betsPlaced := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_bets_placed_total",
			Help: "A counter of accepted wagers per pool",
		}, []string{"guild", "pool"})
	betAmounts := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_bet_amount_total",
			Help: "A counter of wagered coins per pool",
		}, []string{"guild", "pool"})
	betsSettled := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_bets_settled_total",
			Help: "A counter of settled wagers per pool and status",
		}, []string{"guild", "pool", "status"})
	coinFlow := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_coin_flow_total",
			Help: "A counter of minted, burned and fee coins",
		}, []string{"guild", "flow"})
	votesSubmitted := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_votes_submitted_total",
			Help: "A counter of lifecycle votes per kind",
		}, []string{"guild", "kind"})
	economyEvents := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_economy_events_total",
			Help: "A counter of loans, bankruptcies and fund movements",
		}, []string{"guild", "event"})
	rejectedOperations := factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ab_league_rejected_operations_total",
			Help: "A counter of rejected operations per reason",
		}, []string{"guild", "reason"})

	return prometheusMetrics{
		shuffleElapsedTime: *shuffleElapsedTime,
		shuffleCandidates:  *shuffleCandidates,
		recordElapsedTime:  *recordElapsedTime,
		betsPlaced:         *betsPlaced,
		betAmounts:         *betAmounts,
		betsSettled:        *betsSettled,
		coinFlow:           *coinFlow,
		votesSubmitted:     *votesSubmitted,
		economyEvents:      *economyEvents,
		rejectedOperations: *rejectedOperations,
	}
}

func guildLabel(guildID int64) string {
	return strconv.FormatInt(guildID, 10)
}

func (metrics prometheusMetrics) AddShuffleElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration) {
	metrics.shuffleElapsedTime.With(prometheus.Labels{"guild": guildLabel(guildID), "lobby_type": lobbyType}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddShuffleCandidates(guildID int64, lobbyType string, candidates int) {
	metrics.shuffleCandidates.With(prometheus.Labels{"guild": guildLabel(guildID), "lobby_type": lobbyType}).Observe(float64(candidates))
}

func (metrics prometheusMetrics) AddRecordElapsedTimeMs(guildID int64, lobbyType string, elapsedTime time.Duration) {
	metrics.recordElapsedTime.With(prometheus.Labels{"guild": guildLabel(guildID), "lobby_type": lobbyType}).Observe(float64(elapsedTime.Milliseconds()))
}

func (metrics prometheusMetrics) AddBetPlaced(guildID int64, pool string, amount int64) {
	labels := prometheus.Labels{"guild": guildLabel(guildID), "pool": pool}
	metrics.betsPlaced.With(labels).Add(1)
	metrics.betAmounts.With(labels).Add(float64(amount))
}

func (metrics prometheusMetrics) AddBetSettled(guildID int64, pool string, status string) {
	metrics.betsSettled.With(prometheus.Labels{"guild": guildLabel(guildID), "pool": pool, "status": status}).Add(1)
}

func (metrics prometheusMetrics) AddCoinFlow(guildID int64, flow string, amount int64) {
	if amount <= 0 {
		return
	}
	metrics.coinFlow.With(prometheus.Labels{"guild": guildLabel(guildID), "flow": flow}).Add(float64(amount))
}

func (metrics prometheusMetrics) AddVoteSubmitted(guildID int64, kind string) {
	metrics.votesSubmitted.With(prometheus.Labels{"guild": guildLabel(guildID), "kind": kind}).Add(1)
}

func (metrics prometheusMetrics) AddEconomyEvent(guildID int64, event string) {
	metrics.economyEvents.With(prometheus.Labels{"guild": guildLabel(guildID), "event": event}).Add(1)
}

func (metrics prometheusMetrics) AddRejectedOperation(guildID int64, reason string) {
	metrics.rejectedOperations.With(prometheus.Labels{"guild": guildLabel(guildID), "reason": reason}).Add(1)
}
