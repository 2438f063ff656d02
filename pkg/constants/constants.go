// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package constants

import "time"

const (
	TeamSize     = 5
	RoleCount    = 5
	MinShuffle   = 10
	MaxShuffle   = 14
	StateLockTTL = 10 * time.Second
)

// Role identifiers 1..5 (carry, mid, offlane, soft support, hard support).
const (
	RoleCarry       = 1
	RoleMid         = 2
	RoleOfflane     = 3
	RoleSoftSupport = 4
	RoleHardSupport = 5
)

// Balancing rating systems.
const (
	RatingSystemGlicko    = "glicko"
	RatingSystemOpenSkill = "openskill"
)

// Lobby types.
const (
	LobbyTypeShuffle = "shuffle"
	LobbyTypeDraft   = "draft"
)

// Lobby statuses.
const (
	LobbyStatusOpen   = "open"
	LobbyStatusClosed = "closed"
)

// Betting modes for the primary wager pool.
const (
	BettingModePool  = "pool"
	BettingModeHouse = "house"
)

// Bet status markers stored on wager rows.
const (
	BetStatusOpen     = "open"
	BetStatusWon      = "won"
	BetStatusLost     = "lost"
	BetStatusRefunded = "refunded"
)

// Prediction market statuses.
const (
	PredictionStatusOpen      = "open"
	PredictionStatusLocked    = "locked"
	PredictionStatusResolved  = "resolved"
	PredictionStatusCancelled = "cancelled"
)

// Disbursement proposal statuses and methods.
const (
	DisburseStatusActive   = "active"
	DisburseStatusExecuted = "executed"
	DisburseStatusExpired  = "expired"

	DisburseMethodEven           = "even"
	DisburseMethodProportional   = "proportional"
	DisburseMethodNeediest       = "neediest"
	DisburseMethodStimulus       = "stimulus"
	DisburseMethodLottery        = "lottery"
	DisburseMethodSocialSecurity = "social_security"
	DisburseMethodCancel         = "cancel"
)

// Rejection reason constants surfaced on shuffle and record failures.
const (
	ReasonNotEnoughPlayers   = "not_enough_players"
	ReasonRolesNotCoverable  = "roles_not_coverable"
	ReasonRecordInProgress   = "record_in_progress"
	ReasonNoPendingMatch     = "no_pending_match"
	ReasonAmbiguousPending   = "ambiguous_pending_match"
	ReasonExcludedInTeams    = "excluded_player_in_teams"
	ReasonBettingWindowOpen  = "betting_window_open"
	ReasonVotingInProgress   = "voting_in_progress"
	ReasonMatchAlreadyEnded  = "match_already_recorded"
	ReasonStorageConflict    = "storage_conflict"
	ReasonInsufficientQuorum = "insufficient_quorum"
)
