// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"errors"
	"fmt"
)

// Validation failures. Inputs that can never be valid.
var (
	ErrInvalidGuild     = errors.New("guild id must not be negative")
	ErrInvalidSide      = errors.New("side must be radiant or dire")
	ErrInvalidAmount    = errors.New("amount must be positive")
	ErrInvalidLeverage  = errors.New("leverage is not an allowed tier")
	ErrInvalidRoles     = errors.New("preferred roles must be within 1..5")
	ErrInvalidUsername  = errors.New("username is not valid")
	ErrInvalidSteamID   = errors.New("steam id is not valid")
	ErrSelfPair         = errors.New("player cannot pair with themselves")
	ErrInvalidPosition  = errors.New("position must be yes or no")
	ErrQuestionTooShort = errors.New("question must be at least 5 characters")
	ErrCloseTooSoon     = errors.New("close time must be at least a minute ahead")
	ErrInvalidMethod    = errors.New("unknown disbursement method")
	ErrInvalidResult    = errors.New("result must name a winning side or abort")
)

// Not-found failures.
var (
	ErrPlayerNotFound     = errors.New("player is not registered")
	ErrPlayerExists       = errors.New("player is already registered")
	ErrMatchNotFound      = errors.New("match not found")
	ErrNoPendingMatch     = errors.New("no pending match")
	ErrAmbiguousPending   = errors.New("multiple pending matches, id required")
	ErrPredictionNotFound = errors.New("prediction not found")
	ErrLobbyNotFound      = errors.New("no open lobby")
	ErrBetNotFound        = errors.New("bet not found")
	ErrAvoidNotFound      = errors.New("avoid request not found")
)

// Precondition failures. Valid inputs rejected by current state.
var (
	ErrBettingClosed         = errors.New("betting window is closed")
	ErrAlreadyBet            = errors.New("a bet already exists for this match")
	ErrOppositeSideBet       = errors.New("an opposite side bet already exists")
	ErrOwnTeamOnly           = errors.New("participants may only back their own team")
	ErrVoteConflict          = errors.New("a different vote was already submitted")
	ErrMatchAlreadyRecorded  = errors.New("match result was already recorded")
	ErrNoRatingHistory       = errors.New("no rating history for match")
	ErrExcludedInTeams       = errors.New("excluded player appears in a team")
	ErrInsufficientPlayers   = errors.New("not enough players to shuffle")
	ErrRolesNotCoverable     = errors.New("role coverage is not satisfiable")
	ErrOutstandingLoan       = errors.New("an outstanding loan must be repaid first")
	ErrLoanCooldown          = errors.New("loan cooldown is still active")
	ErrLoanTooLarge          = errors.New("loan amount exceeds the maximum")
	ErrBankruptcyCooldown    = errors.New("bankruptcy cooldown is still active")
	ErrNotInDebt             = errors.New("player is not in debt")
	ErrInDebt                = errors.New("player is in debt")
	ErrRecalibrationCooldown = errors.New("recalibration cooldown is still active")
	ErrInsufficientGames     = errors.New("not enough recorded games")
	ErrNoRecalibration       = errors.New("no recalibration history")
	ErrPredictionClosed      = errors.New("prediction is closed to bets")
	ErrPredictionResolved    = errors.New("prediction is already resolved")
	ErrPredictionCancelled   = errors.New("prediction was cancelled")
	ErrPredictionOpen        = errors.New("prediction has not closed yet")
	ErrAlreadyVoted          = errors.New("a resolution vote was already submitted")
	ErrProposalActive        = errors.New("a disbursement proposal is already active")
	ErrNoActiveProposal      = errors.New("no active disbursement proposal")
	ErrQuorumNotReached      = errors.New("quorum has not been reached")
	ErrFundTooSmall          = errors.New("nonprofit fund is below the proposal minimum")
	ErrNoEligibleRecipients  = errors.New("no eligible disbursement recipients")
	ErrSpectatorPlays        = errors.New("participants cannot place spectator bets")
	ErrNotDraftLobby         = errors.New("operation requires a draft lobby")
	ErrLobbyFull             = errors.New("lobby is full")
	ErrLobbyClosed           = errors.New("lobby is closed")
	ErrNotInLobby            = errors.New("player is not in the lobby")
	ErrAlreadyInLobby        = errors.New("player is already in the lobby")
	ErrNotInReadyCheck       = errors.New("player is not part of the ready check")
)

// Busy, storage, and invariant failures.
var (
	ErrRecordInProgress   = errors.New("a record operation is already in flight")
	ErrStorageConflict    = errors.New("storage transaction conflict")
	ErrInvariantViolation = errors.New("internal invariant violated")
)

var errorCodeMap = map[error]string{
	ErrInvalidGuild:     "validation_error",
	ErrInvalidSide:      "invalid_result",
	ErrInvalidAmount:    "validation_error",
	ErrInvalidLeverage:  "validation_error",
	ErrInvalidRoles:     "invalid_roles",
	ErrInvalidUsername:  "validation_error",
	ErrInvalidSteamID:   "invalid_steam_id",
	ErrSelfPair:         "validation_error",
	ErrInvalidPosition:  "invalid_position",
	ErrQuestionTooShort: "validation_error",
	ErrCloseTooSoon:     "validation_error",
	ErrInvalidMethod:    "validation_error",
	ErrInvalidResult:    "invalid_result",

	ErrPlayerNotFound:     "player_not_found",
	ErrPlayerExists:       "player_already_exists",
	ErrMatchNotFound:      "match_not_found",
	ErrNoPendingMatch:     "no_pending_match",
	ErrAmbiguousPending:   "no_pending_match",
	ErrPredictionNotFound: "prediction_not_found",
	ErrLobbyNotFound:      "lobby_not_found",
	ErrBetNotFound:        "bet_not_found",
	ErrAvoidNotFound:      "state_error",

	ErrBettingClosed:         "betting_closed",
	ErrAlreadyBet:            "already_bet",
	ErrOppositeSideBet:       "already_bet",
	ErrOwnTeamOnly:           "state_error",
	ErrVoteConflict:          "already_voted",
	ErrMatchAlreadyRecorded:  "match_already_recorded",
	ErrNoRatingHistory:       "state_error",
	ErrExcludedInTeams:       "state_error",
	ErrInsufficientPlayers:   "insufficient_players",
	ErrRolesNotCoverable:     "insufficient_players",
	ErrOutstandingLoan:       "loan_already_exists",
	ErrLoanCooldown:          "cooldown_active",
	ErrLoanTooLarge:          "loan_amount_exceeded",
	ErrBankruptcyCooldown:    "bankruptcy_cooldown",
	ErrNotInDebt:             "not_in_debt",
	ErrInDebt:                "in_debt",
	ErrRecalibrationCooldown: "recalibration_cooldown",
	ErrInsufficientGames:     "insufficient_games",
	ErrNoRecalibration:       "state_error",
	ErrPredictionClosed:      "prediction_closed",
	ErrPredictionResolved:    "prediction_resolved",
	ErrPredictionCancelled:   "state_error",
	ErrPredictionOpen:        "state_error",
	ErrAlreadyVoted:          "already_voted",
	ErrProposalActive:        "state_error",
	ErrNoActiveProposal:      "state_error",
	ErrQuorumNotReached:      "insufficient_quorum",
	ErrFundTooSmall:          "state_error",
	ErrNoEligibleRecipients:  "state_error",
	ErrSpectatorPlays:        "state_error",
	ErrNotDraftLobby:         "state_error",
	ErrLobbyFull:             "lobby_full",
	ErrLobbyClosed:           "lobby_closed",
	ErrNotInLobby:            "not_in_lobby",
	ErrAlreadyInLobby:        "already_in_lobby",
	ErrNotInReadyCheck:       "not_in_lobby",

	ErrRecordInProgress:   "rate_limited",
	ErrStorageConflict:    "rate_limited",
	ErrInvariantViolation: "state_error",
}

// ErrorCode returns the stable code for an error so UI adapters can key
// messages off it. Unregistered errors report "validation_error".
func ErrorCode(err error) string {
	if code, ok := errorCodeMap[err]; ok {
		return code
	}
	var insufficient *InsufficientFundsError
	if errors.As(err, &insufficient) {
		return "insufficient_funds"
	}
	for e, code := range errorCodeMap {
		if errors.Is(err, e) {
			return code
		}
	}
	return "validation_error"
}

// InsufficientFundsError reports a rejected balance movement together with
// the balances needed to explain it.
type InsufficientFundsError struct {
	PlayerID  int64
	Available int64
	Requested int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: player %d has %d, needs %d", e.PlayerID, e.Available, e.Requested)
}

// NewInsufficientFunds builds the typed error for a rejected debit.
func NewInsufficientFunds(playerID, available, requested int64) error {
	return &InsufficientFundsError{PlayerID: playerID, Available: available, Requested: requested}
}
