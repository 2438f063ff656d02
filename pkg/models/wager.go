// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// Bet is a primary pool wager on a pending match.
type Bet struct {
	ID              int64
	GuildID         int64
	PlayerID        int64
	PendingMatchID  int64
	MatchID         int64
	Side            Side
	Amount          int64
	Leverage        int64
	IsBlind         bool
	OddsAtPlacement float64
	Payout          int64
	Status          string
	PlacedAt        int64
}

// EffectiveStake is the leveraged amount actually at risk.
func (b Bet) EffectiveStake() int64 {
	return b.Amount * b.Leverage
}

// StakeRow is one drafted player's seat in the stake pool. Excluded
// players keep a row so fate still pays them. MatchID is stamped at
// settlement.
type StakeRow struct {
	ID             int64
	GuildID        int64
	PlayerID       int64
	PendingMatchID int64
	MatchID        int64
	Team           Side
	IsExcluded     bool
	Payout         int64
	StakedAt       int64
}

// SpectatorBet is a side-pool wager by a non-participant.
type SpectatorBet struct {
	ID             int64
	GuildID        int64
	SpectatorID    int64
	PendingMatchID int64
	MatchID        int64
	Side           Side
	Amount         int64
	Payout         int64
	Status         string
	PlacedAt       int64
}

// PlayerPoolBet is an optional wager into the draft stake pool.
type PlayerPoolBet struct {
	ID             int64
	GuildID        int64
	PlayerID       int64
	PendingMatchID int64
	MatchID        int64
	Side           Side
	Amount         int64
	Payout         int64
	Status         string
	PlacedAt       int64
}

// BetReceipt confirms an accepted wager.
type BetReceipt struct {
	BetID           int64
	ReceiptID       string
	Side            Side
	Amount          int64
	Leverage        int64
	EffectiveStake  int64
	OddsAtPlacement float64
	NewBalance      int64
}

// PoolOdds reports the standing totals of the primary pool.
type PoolOdds struct {
	Total        int64
	RadiantTotal int64
	DireTotal    int64
}

// SideTotal returns the leveraged total behind one side.
func (o PoolOdds) SideTotal(side Side) int64 {
	switch side {
	case SideRadiant:
		return o.RadiantTotal
	case SideDire:
		return o.DireTotal
	default:
		return 0
	}
}

// Odds returns total/side, the snapshot stored on each accepted bet.
// An empty side reports zero.
func (o PoolOdds) Odds(side Side) float64 {
	sideTotal := o.SideTotal(side)
	if sideTotal == 0 {
		return 0
	}
	return float64(o.Total) / float64(sideTotal)
}
