// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// API is the persistence surface the services depend on. The SQL-backed
// Store implements it for production; tests substitute an in-memory
// double so the full pipelines can run without Postgres.
type API interface {
	DB() Queryer
	WithTx(scope *envelope.Scope, fn func(tx *sql.Tx) error) error

	// Players and balances.
	CreatePlayer(scope *envelope.Scope, q Queryer, p models.Player) error
	GetPlayer(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.Player, error)
	GetPlayers(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.Player, error)
	ListPlayers(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error)
	CountPlayers(scope *envelope.Scope, q Queryer, guildID int64) (int, error)
	GetBalance(scope *envelope.Scope, q Queryer, guildID, playerID int64) (int64, error)
	AddBalance(scope *envelope.Scope, q Queryer, guildID, playerID, delta int64) (int64, error)
	SetBalance(scope *envelope.Scope, q Queryer, guildID, playerID, balance int64) (int64, error)
	GetDebtors(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error)
	GetStimulusEligible(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Player, error)
	ApplyMatchOutcome(scope *envelope.Scope, q Queryer, guildID, playerID int64, won bool, glicko models.Glicko2Rating, openskill models.OpenSkillRating, matchTime int64, calibrated bool) error
	SwapWinLoss(scope *envelope.Scope, q Queryer, guildID, playerID int64, nowWon bool) error
	SetRatings(scope *envelope.Scope, q Queryer, guildID, playerID int64, glicko models.Glicko2Rating, openskill models.OpenSkillRating) error
	SetOpenSkillRating(scope *envelope.Scope, q Queryer, guildID, playerID int64, openskill models.OpenSkillRating) error
	SetExclusionHalves(scope *envelope.Scope, q Queryer, guildID, playerID int64, halves int) error
	SetCharityGames(scope *envelope.Scope, q Queryer, guildID, playerID int64, games int) error
	DecrementCharityGames(scope *envelope.Scope, q Queryer, guildID, playerID int64) error

	// Pending matches.
	SavePendingMatch(scope *envelope.Scope, q Queryer, pending *models.PendingMatch) (int64, error)
	UpdatePendingMatch(scope *envelope.Scope, q Queryer, pending *models.PendingMatch) error
	GetPendingMatch(scope *envelope.Scope, q Queryer, guildID int64) (*models.PendingMatch, error)
	GetPendingMatchByID(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) (*models.PendingMatch, error)
	GetPendingMatches(scope *envelope.Scope, q Queryer, guildID int64) ([]*models.PendingMatch, error)
	DeletePendingMatch(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error
	DeleteAllPendingMatches(scope *envelope.Scope, q Queryer, guildID int64) (int64, error)

	// Primary-pool bets.
	InsertBet(scope *envelope.Scope, q Queryer, b *models.Bet) (int64, error)
	GetOpenBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, playerID int64) (*models.Bet, error)
	GetOpenBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.Bet, error)
	PoolTotals(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) (models.PoolOdds, error)
	SettleBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error
	ResettleBet(scope *envelope.Scope, q Queryer, betID, payout int64, status string) error
	GetSettledBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.Bet, error)
	DeleteOpenBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error

	// Stake rows and player-pool bets.
	InsertStakeRows(scope *envelope.Scope, q Queryer, rows []models.StakeRow) error
	GetStakeRows(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.StakeRow, error)
	GetStakeRowsByMatch(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.StakeRow, error)
	SetStakePayout(scope *envelope.Scope, q Queryer, stakeID, matchID, payout int64) error
	DeleteStakeRows(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error
	InsertPlayerPoolBet(scope *envelope.Scope, q Queryer, b *models.PlayerPoolBet) (int64, error)
	GetOpenPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.PlayerPoolBet, error)
	GetSettledPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.PlayerPoolBet, error)
	HasPlayerPoolBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, playerID int64) (bool, error)
	SettlePlayerPoolBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error
	DeleteOpenPlayerPoolBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error

	// Spectator bets.
	InsertSpectatorBet(scope *envelope.Scope, q Queryer, b *models.SpectatorBet) (int64, error)
	GetOpenSpectatorBet(scope *envelope.Scope, q Queryer, guildID, pendingMatchID, spectatorID int64) (*models.SpectatorBet, error)
	GetOpenSpectatorBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) ([]models.SpectatorBet, error)
	GetSettledSpectatorBets(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.SpectatorBet, error)
	SettleSpectatorBet(scope *envelope.Scope, q Queryer, betID, matchID, payout int64, status string) error
	DeleteOpenSpectatorBets(scope *envelope.Scope, q Queryer, guildID, pendingMatchID int64) error

	// Recorded matches, ratings, corrections.
	InsertMatch(scope *envelope.Scope, q Queryer, match *models.Match, participants []models.MatchParticipant) (int64, error)
	GetMatch(scope *envelope.Scope, q Queryer, guildID, matchID int64) (*models.Match, error)
	AllMatchTeams(scope *envelope.Scope, q Queryer, guildID int64) ([]models.Match, error)
	LastMatchParticipantIDs(scope *envelope.Scope, q Queryer, guildID int64) ([]int64, error)
	FlipMatchResult(scope *envelope.Scope, q Queryer, guildID, matchID int64, newWinner models.Side) error
	SetParticipantFantasyPoints(scope *envelope.Scope, q Queryer, guildID, matchID, playerID int64, points float64) error
	InsertRatingHistory(scope *envelope.Scope, q Queryer, h models.RatingHistory) error
	GetRatingHistory(scope *envelope.Scope, q Queryer, guildID, matchID int64) ([]models.RatingHistory, error)
	UpdateRatingHistoryAfter(scope *envelope.Scope, q Queryer, h models.RatingHistory) error
	InsertMatchCorrection(scope *envelope.Scope, q Queryer, c models.MatchCorrection) error

	// Bankruptcy, loans, nonprofit fund.
	GetBankruptcyState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.BankruptcyState, error)
	UpsertBankruptcyState(scope *envelope.Scope, q Queryer, state models.BankruptcyState) error
	GetPenaltyStates(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) (map[int64]models.BankruptcyState, error)
	DecrementPenaltyGames(scope *envelope.Scope, q Queryer, guildID, playerID int64) error
	GetLoanState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.LoanState, error)
	UpsertLoanState(scope *envelope.Scope, q Queryer, state models.LoanState) error
	ClearOutstandingLoan(scope *envelope.Scope, q Queryer, guildID, playerID, feePaid int64) error
	GetNonprofitFund(scope *envelope.Scope, q Queryer, guildID int64) (models.NonprofitFund, error)
	AddToNonprofitFund(scope *envelope.Scope, q Queryer, guildID, amount int64) error
	DeductFromNonprofitFund(scope *envelope.Scope, q Queryer, guildID, amount int64) error
	GetRecalibrationState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.RecalibrationState, error)
	UpsertRecalibrationState(scope *envelope.Scope, q Queryer, state models.RecalibrationState) error

	// Pairings.
	IncrementTeammatePairing(scope *envelope.Scope, q Queryer, guildID, a, b int64, gamesDelta, winsDelta int) error
	IncrementOpponentPairing(scope *envelope.Scope, q Queryer, guildID, a, b, winnerID int64, gamesDelta int) error
	SwapTeammateWins(scope *envelope.Scope, q Queryer, guildID, a, b int64, delta int) error
	SwapOpponentWins(scope *envelope.Scope, q Queryer, guildID, a, b int64, delta int) error
	GetPairing(scope *envelope.Scope, q Queryer, guildID, a, b int64) (models.Pairing, error)
	GetPairingsFor(scope *envelope.Scope, q Queryer, guildID, playerID int64) (map[int64]models.Pairing, error)
	CountPairings(scope *envelope.Scope, q Queryer, guildID int64) (int, error)
	DeletePairingsForGuild(scope *envelope.Scope, q Queryer, guildID int64) error

	// Soft avoids and package deals.
	UpsertSoftAvoid(scope *envelope.Scope, q Queryer, a models.SoftAvoid) error
	GetSoftAvoid(scope *envelope.Scope, q Queryer, guildID, avoiderID, avoidedID int64) (*models.SoftAvoid, error)
	DeleteSoftAvoid(scope *envelope.Scope, q Queryer, guildID, avoiderID, avoidedID int64) error
	GetActiveSoftAvoidsAmong(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.SoftAvoid, error)
	DecayAvoidsByID(scope *envelope.Scope, q Queryer, guildID int64, ids []int64) error
	UpsertPackageDeal(scope *envelope.Scope, q Queryer, d models.PackageDeal) error
	GetPackageDeal(scope *envelope.Scope, q Queryer, guildID, buyerID, partnerID int64) (*models.PackageDeal, error)
	GetActivePackageDealsAmong(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) ([]models.PackageDeal, error)
	DecayPackageDealsByID(scope *envelope.Scope, q Queryer, guildID int64, ids []int64) error

	// Predictions.
	CreatePrediction(scope *envelope.Scope, q Queryer, p *models.Prediction) (int64, error)
	GetPrediction(scope *envelope.Scope, q Queryer, guildID, predictionID int64) (*models.Prediction, error)
	ListPredictions(scope *envelope.Scope, q Queryer, guildID int64, status string, limit int) ([]models.Prediction, error)
	ListExpiredOpenPredictions(scope *envelope.Scope, q Queryer, guildID, now int64) ([]models.Prediction, error)
	UpdatePrediction(scope *envelope.Scope, q Queryer, p *models.Prediction) error
	InsertPredictionBet(scope *envelope.Scope, q Queryer, b *models.PredictionBet) (int64, error)
	GetPredictionBets(scope *envelope.Scope, q Queryer, guildID, predictionID int64) ([]models.PredictionBet, error)
	GetPredictionPosition(scope *envelope.Scope, q Queryer, guildID, predictionID, playerID int64) (*models.PredictionBet, error)
	PredictionTotals(scope *envelope.Scope, q Queryer, guildID, predictionID int64) (models.PredictionOdds, error)
	SetPredictionBetPayout(scope *envelope.Scope, q Queryer, betID, payout int64) error

	// Disburse proposals.
	CreateDisburseProposal(scope *envelope.Scope, q Queryer, p models.DisburseProposal) error
	GetActiveDisburseProposal(scope *envelope.Scope, q Queryer, guildID int64) (*models.DisburseProposal, error)
	DeleteDisburseProposal(scope *envelope.Scope, q Queryer, guildID int64, proposalID string) error
	UpsertDisburseVote(scope *envelope.Scope, q Queryer, v models.DisburseVote) error
	GetDisburseVotes(scope *envelope.Scope, q Queryer, guildID int64, proposalID string) ([]models.DisburseVote, error)
	InsertDisburseHistory(scope *envelope.Scope, q Queryer, h models.DisburseHistory) error
	GetDisburseHistory(scope *envelope.Scope, q Queryer, guildID int64, limit int) ([]models.DisburseHistory, error)

	// Tips.
	InsertTip(scope *envelope.Scope, q Queryer, t models.TipTransaction) error
	GetRecentTips(scope *envelope.Scope, q Queryer, guildID int64, limit int) ([]models.TipTransaction, error)
	GetTipsSentSince(scope *envelope.Scope, q Queryer, guildID, fromID, since int64) (int64, int, error)

	// Lobby snapshots.
	SaveLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64, snapshot interface{}, updatedAt int64) error
	LoadLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64, into interface{}) (bool, error)
	DeleteLobbySnapshot(scope *envelope.Scope, q Queryer, guildID int64) error
}

var _ API = (*Store)(nil)
