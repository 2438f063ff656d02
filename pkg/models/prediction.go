// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import "math"

// Prediction is a tenant-scoped yes/no market.
type Prediction struct {
	ID              int64
	GuildID         int64
	CreatorID       int64
	Question        string
	Status          string
	Outcome         *bool
	ResolutionVotes map[int64]PredictionVote
	CreatedAt       int64
	ClosesAt        int64
	ResolvedAt      int64
	ResolvedBy      int64
}

// PredictionVote is one member's resolution vote.
type PredictionVote struct {
	Outcome bool  `json:"outcome"`
	IsAdmin bool  `json:"isAdmin"`
	CastAt  int64 `json:"castAt"`
}

// PredictionBet is one position in a market. Position true backs yes.
type PredictionBet struct {
	ID           int64
	PredictionID int64
	GuildID      int64
	PlayerID     int64
	Position     bool
	Amount       int64
	Payout       int64
	PlacedAt     int64
}

// PredictionOdds reports the standing totals of a market.
type PredictionOdds struct {
	Total    int64
	YesTotal int64
	NoTotal  int64
}

// YesOdds is the pool multiplier paid per unit backed on yes, rounded
// to two decimals. Zero when nothing backs yes.
func (o PredictionOdds) YesOdds() float64 {
	return poolOdds(o.Total, o.YesTotal)
}

// NoOdds is the pool multiplier paid per unit backed on no.
func (o PredictionOdds) NoOdds() float64 {
	return poolOdds(o.Total, o.NoTotal)
}

func poolOdds(total, side int64) float64 {
	if side <= 0 {
		return 0
	}
	return math.Round(float64(total)/float64(side)*100) / 100
}

// PredictionBetResult reports an accepted market position.
type PredictionBetResult struct {
	BetID      int64
	Position   bool
	Amount     int64
	NewBalance int64
	Odds       PredictionOdds
}

// ResolutionBallot reports the standing resolution votes after a cast.
type ResolutionBallot struct {
	YesVotes     int
	NoVotes      int
	Outcome      bool
	HasAdminVote bool
	CanResolve   bool
	VotesNeeded  int
}

// PredictionSettlement reports a resolved or cancelled market.
// ConsensusWrong flags markets where at least ninety percent of the
// pool sat on the losing side.
type PredictionSettlement struct {
	PredictionID   int64
	Outcome        *bool
	Refunded       bool
	Payouts        map[int64]int64
	ConsensusWrong bool
}
