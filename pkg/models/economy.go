// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// LoanState tracks one player's loan lifecycle in a guild.
type LoanState struct {
	PlayerID             int64
	GuildID              int64
	LastLoanAt           int64
	TotalLoansTaken      int
	NegativeLoansTaken   int
	TotalFeesPaid        int64
	OutstandingPrincipal int64
	OutstandingFee       int64
}

// Outstanding is the amount collected at the next match settlement.
func (s LoanState) Outstanding() int64 {
	return s.OutstandingPrincipal + s.OutstandingFee
}

func (s LoanState) HasOutstanding() bool {
	return s.Outstanding() > 0
}

// LoanResult reports an executed loan.
type LoanResult struct {
	Amount      int64
	Fee         int64
	NewBalance  int64
	WasNegative bool
}

// LoanRepayment is one settlement-time collection.
type LoanRepayment struct {
	PlayerID  int64
	Principal int64
	Fee       int64
}

// BankruptcyState tracks declarations and the active penalty window.
type BankruptcyState struct {
	PlayerID              int64
	GuildID               int64
	LastBankruptcyAt      int64
	PenaltyGamesRemaining int
	Count                 int
}

// BankruptcyResult reports a completed declaration.
type BankruptcyResult struct {
	ForgivenDebt int64
	NewBalance   int64
	PenaltyGames int
	Count        int
}

// RecalibrationState tracks voluntary deviation resets.
type RecalibrationState struct {
	PlayerID            int64
	GuildID             int64
	LastRecalibrationAt int64
	Total               int
	RatingAt            float64
}

// RecalibrationResult reports a completed reset.
type RecalibrationResult struct {
	Rating     float64
	RD         float64
	Volatility float64
	Total      int
}

// NonprofitFund is the per-guild fee accumulator.
type NonprofitFund struct {
	GuildID int64
	Total   int64
}

// DisburseProposal is the active or settled vote on paying out the fund.
type DisburseProposal struct {
	GuildID        int64
	ProposalID     string
	FundAmount     int64
	QuorumRequired int
	Status         string
	Method         string
	ProposedBy     int64
	CreatedAt      int64
}

// DisburseVote is one member's method choice on a proposal.
type DisburseVote struct {
	GuildID    int64
	ProposalID string
	VoterID    int64
	Method     string
	VotedAt    int64
}

// DisburseHistory is the audit row for an executed disbursement.
type DisburseHistory struct {
	ID             int64
	GuildID        int64
	ProposalID     string
	Method         string
	TotalAmount    int64
	RecipientCount int
	ExecutedAt     int64
}

// DisburseOutcome reports an executed or cancelled disbursement.
type DisburseOutcome struct {
	ProposalID string
	Method     string
	Total      int64
	Recipients map[int64]int64
}

// TipTransaction is the audit row for a direct transfer.
type TipTransaction struct {
	ID        int64
	GuildID   int64
	FromID    int64
	ToID      int64
	Amount    int64
	Fee       int64
	CreatedAt int64
}

// TipResult reports a completed transfer.
type TipResult struct {
	Amount           int64
	Fee              int64
	SenderBalance    int64
	RecipientBalance int64
}

// PayDebtResult reports a debt payment and any charity grant it earned.
type PayDebtResult struct {
	Paid             int64
	CharityGranted   bool
	CharityGames     int
	RecipientBalance int64
	PayerBalance     int64
}

// GarnishedIncome reports income credited while the recipient was in debt.
// The full gross is credited; garnished and net only split it for display.
type GarnishedIncome struct {
	Gross     int64
	Garnished int64
	Net       int64
}
