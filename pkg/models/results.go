// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// ShuffleOutput is the full result of a team shuffle.
type ShuffleOutput struct {
	Pending             *PendingMatch
	Goodness            float64
	CandidatesEvaluated int
	AutoBlinds          []Bet
	BombPotAntes        map[int64]int64
}

// WinBonus splits one winner's reward for display. Net equals Gross minus
// nothing; garnishment reports but does not reduce the credit.
type WinBonus struct {
	Gross          int64
	Garnished      int64
	Net            int64
	PenaltyApplied bool
}

// PoolSettlement reports the primary pool outcome.
type PoolSettlement struct {
	Mode         string
	Winner       Side
	Total        int64
	WinningTotal int64
	Payouts      map[int64]int64
	Refunds      map[int64]int64
	Burned       int64
	Minted       int64
	Refunded     bool
}

// StakeSettlement reports the draft stake pool outcome.
type StakeSettlement struct {
	RadiantAuto    int64
	DireAuto       int64
	WinnerProb     float64
	PlayerPayouts  map[int64]int64
	PoolBetPayouts map[int64]int64
	Minted         int64
	Refunded       bool
}

// SpectatorSettlement reports the spectator pool outcome.
type SpectatorSettlement struct {
	Total           int64
	BettorShare     int64
	PlayerBonus     int64
	Multiplier      float64
	Payouts         map[int64]int64
	PlayerBonusEach int64
	BonusRecipients []int64
	Refunded        bool
}

// GlickoChange is one player's Glicko-2 movement in a settlement.
type GlickoChange struct {
	PlayerID            int64
	Before              Glicko2Rating
	After               Glicko2Rating
	TeamDelta           float64
	ExpectedTeamWinProb float64
	Won                 bool
}

// OpenSkillChange is one player's OpenSkill movement in a settlement.
type OpenSkillChange struct {
	PlayerID int64
	Before   OpenSkillRating
	After    OpenSkillRating
	Weight   float64
	Won      bool
}

// RecordResult enumerates every delta applied by a finalization.
type RecordResult struct {
	MatchID          int64
	Winner           Side
	LobbyType        string
	Participation    map[int64]int64
	WinBonuses       map[int64]WinBonus
	ExclusionBonuses map[int64]int64
	BombPotBonuses   map[int64]int64
	Bets             *PoolSettlement
	Stakes           *StakeSettlement
	Spectators       *SpectatorSettlement
	Loans            []LoanRepayment
	Glicko           []GlickoChange
	OpenSkill        []OpenSkillChange
	PairingsUpdated  int
}

// AbortResult enumerates the refunds applied by an abort.
type AbortResult struct {
	PendingMatchID   int64
	BetRefunds       map[int64]int64
	PoolBetRefunds   map[int64]int64
	SpectatorRefunds map[int64]int64
	StakesCleared    int
}

// CorrectionResult reports a reversed and re-applied match result.
type CorrectionResult struct {
	MatchID   int64
	OldWinner Side
	NewWinner Side
	NetDeltas map[int64]int64
	Glicko    []GlickoChange
	OpenSkill []OpenSkillChange
}

// EnrichmentResult reports a Phase-2 rating recompute.
type EnrichmentResult struct {
	MatchID int64
	Changes []OpenSkillChange
	Weights map[int64]float64
}
