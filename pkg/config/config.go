// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"fmt"

	"github.com/caarlos0/env"
)

// FromEnv builds the configuration from the process environment,
// falling back to the documented defaults.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

type Config struct {
	// Lobby and shuffle.
	LobbyReadyThreshold      int     `env:"LOBBY_READY_THRESHOLD"       envDefault:"10"   envDocs:"minimum players before a lobby can shuffle"`
	LobbyMaxPlayers          int     `env:"LOBBY_MAX_PLAYERS"           envDefault:"14"   envDocs:"pool cap; larger pools are truncated before shuffling"`
	BalancingRatingSystem    string  `env:"BALANCING_RATING_SYSTEM"     envDefault:"glicko" envDocs:"rating system driving team balance (glicko or openskill)"`
	OffRoleMultiplier        float64 `env:"OFF_ROLE_MULTIPLIER"         envDefault:"0.95" envDocs:"value multiplier for a seat outside the player's preferred roles"`
	OffRoleFlatPenalty       float64 `env:"OFF_ROLE_FLAT_PENALTY"       envDefault:"350"  envDocs:"flat value subtracted per off-role seat"`
	RoleMatchupDeltaWeight   float64 `env:"ROLE_MATCHUP_DELTA_WEIGHT"   envDefault:"0.18" envDocs:"weight of per-role lane matchup deltas in goodness"`
	ExclusionPenaltyWeight   float64 `env:"EXCLUSION_PENALTY_WEIGHT"    envDefault:"45"   envDocs:"goodness penalty per accumulated exclusion of a benched player"`
	RecentMatchPenaltyWeight float64 `env:"RECENT_MATCH_PENALTY_WEIGHT" envDefault:"25"   envDocs:"goodness penalty per selected player who sat in the previous match"`
	AvoidPenaltyWeight       float64 `env:"AVOID_PENALTY_WEIGHT"        envDefault:"200"  envDocs:"goodness penalty per violated soft-avoid pair"`
	PackageDealPenaltyWeight float64 `env:"PACKAGE_DEAL_PENALTY_WEIGHT" envDefault:"200"  envDocs:"goodness penalty per split package-deal pair"`

	// Participation economy.
	StartingBalance      int64   `env:"STARTING_BALANCE"       envDefault:"3"   envDocs:"coins granted at registration"`
	CoinsPerGame         int64   `env:"COINS_PER_GAME"         envDefault:"1"   envDocs:"participation coins per recorded game"`
	CoinsWinReward       int64   `env:"COINS_WIN_REWARD"       envDefault:"2"   envDocs:"bonus coins per win"`
	CoinsExclusionReward int64   `env:"COINS_EXCLUSION_REWARD" envDefault:"3"   envDocs:"coins per excluded bench seat (half when conditional)"`
	MaxDebt              int64   `env:"MAX_DEBT"               envDefault:"500" envDocs:"absolute balance floor; bets may not push balance below -MAX_DEBT"`
	GarnishmentRate      float64 `env:"GARNISHMENT_PERCENTAGE" envDefault:"1.0" envDocs:"share of gross income reported as garnished while in debt"`

	// Primary wager pool.
	BetLockSeconds        int     `env:"BET_LOCK_SECONDS"        envDefault:"900"   envDocs:"betting window length after a shuffle"`
	HousePayoutMultiplier float64 `env:"HOUSE_PAYOUT_MULTIPLIER" envDefault:"1.0"   envDocs:"profit multiplier for winning house-mode bets"`
	LeverageTiers         []int64 `env:"LEVERAGE_TIERS"          envDefault:"2,3,5" envSeparator:"," envDocs:"allowed leverage multipliers beyond 1x"`
	AutoBlindEnabled      bool    `env:"AUTO_BLIND_ENABLED"      envDefault:"true"  envDocs:"place automatic blind bets for participants at shuffle"`
	AutoBlindThreshold    int64   `env:"AUTO_BLIND_THRESHOLD"    envDefault:"50"    envDocs:"minimum balance before an auto blind is placed"`
	AutoBlindRate         float64 `env:"AUTO_BLIND_PERCENTAGE"   envDefault:"0.05"  envDocs:"balance share staked by an auto blind"`

	// Bomb pot rounds.
	BombPotAnte               int64   `env:"BOMB_POT_ANTE"                envDefault:"10"   envDocs:"forced ante per participant in a bomb pot round"`
	BombPotParticipationBonus int64   `env:"BOMB_POT_PARTICIPATION_BONUS" envDefault:"1"    envDocs:"extra participation coin per player in a bomb pot round"`
	BombPotBlindRate          float64 `env:"BOMB_POT_BLIND_PERCENTAGE"    envDefault:"0.10" envDocs:"auto blind rate while a bomb pot round is active"`

	// Draft stake pool.
	StakePoolSize   int64   `env:"PLAYER_STAKE_POOL_SIZE" envDefault:"50"   envDocs:"auto-liquidity minted per draft side before scaling by win probability"`
	StakePerPlayer  int64   `env:"STAKE_PER_PLAYER"       envDefault:"5"    envDocs:"base stake used to derive per-player minted payouts"`
	StakeWinProbMin float64 `env:"STAKE_WIN_PROB_MIN"     envDefault:"0.10" envDocs:"lower clamp for stake pool win probability"`
	StakeWinProbMax float64 `env:"STAKE_WIN_PROB_MAX"     envDefault:"0.90" envDocs:"upper clamp for stake pool win probability"`

	// Spectator pool.
	SpectatorPlayerCut float64 `env:"SPECTATOR_POOL_PLAYER_CUT" envDefault:"0.10" envDocs:"share of the spectator pool routed to winning participants"`

	// Voting.
	MinNonAdminSubmissions int `env:"MIN_NON_ADMIN_SUBMISSIONS" envDefault:"3" envDocs:"matching non-admin votes required to action a result or abort"`

	// Loans.
	LoanCooldownSeconds int64   `env:"LOAN_COOLDOWN_SECONDS" envDefault:"259200" envDocs:"seconds between loans"`
	LoanMaxAmount       int64   `env:"LOAN_MAX_AMOUNT"       envDefault:"100"    envDocs:"largest loan principal"`
	LoanFeeRate         float64 `env:"LOAN_FEE_RATE"         envDefault:"0.20"   envDocs:"fee charged on the principal, routed to the nonprofit fund on repayment"`

	// Bankruptcy.
	BankruptcyCooldownSeconds int64   `env:"BANKRUPTCY_COOLDOWN_SECONDS"    envDefault:"604800" envDocs:"seconds between bankruptcy declarations"`
	BankruptcyPenaltyGames    int     `env:"BANKRUPTCY_PENALTY_GAMES"       envDefault:"5"      envDocs:"wins with reduced rewards after a declaration"`
	BankruptcyPenaltyRate     float64 `env:"BANKRUPTCY_PENALTY_RATE"        envDefault:"0.5"    envDocs:"win reward multiplier during penalty games"`
	BankruptcyFreshStart      int64   `env:"BANKRUPTCY_FRESH_START_BALANCE" envDefault:"3"      envDocs:"balance after a declaration"`

	// Nonprofit fund disbursement.
	DisburseMinFund      int64   `env:"DISBURSE_MIN_FUND"          envDefault:"250"  envDocs:"fund balance required before a disbursement proposal"`
	DisburseQuorumRate   float64 `env:"DISBURSE_QUORUM_PERCENTAGE" envDefault:"0.40" envDocs:"share of registered players required as quorum"`
	TipFeeRate           float64 `env:"TIP_FEE_RATE"               envDefault:"0.01" envDocs:"tip fee share routed to the nonprofit fund"`
	CharityCap           int64   `env:"CHARITY_CONTRIBUTION_CAP"   envDefault:"100"  envDocs:"largest debt payment counted toward charity qualification"`
	CharityGames         int     `env:"CHARITY_GAMES_DURATION"     envDefault:"2"    envDocs:"reduced-rate blind games granted per qualifying charity"`
	CharityMinTargetDebt int64   `env:"CHARITY_MIN_TARGET_DEBT"    envDefault:"50"   envDocs:"minimum recipient debt for charity qualification"`
	CharityMinGames      int     `env:"CHARITY_MIN_TARGET_GAMES"   envDefault:"3"    envDocs:"minimum recipient games for charity qualification"`
	CharityReducedRate   float64 `env:"CHARITY_REDUCED_RATE"       envDefault:"0.01" envDocs:"auto blind rate while charity games remain"`

	// Rating kernels.
	CalibrationRD         float64 `env:"CALIBRATION_RD"           envDefault:"100"     envDocs:"deviation at or below which a player counts as calibrated"`
	MaxRatingSwing        float64 `env:"MAX_RATING_SWING"         envDefault:"400"     envDocs:"cap on the shared per-team rating delta in one match"`
	RdDecayC              float64 `env:"RD_DECAY_C"               envDefault:"50"      envDocs:"weekly deviation growth constant for idle players"`
	RdDecayGraceSeconds   int64   `env:"RD_DECAY_GRACE_SECONDS"   envDefault:"1209600" envDocs:"idle seconds before deviation decay begins"`
	OpenSkillMaxDelta     float64 `env:"OPENSKILL_MAX_DELTA"      envDefault:"2.0"     envDocs:"per-match clamp on OpenSkill mu movement"`
	FantasyWeightInfluence float64 `env:"FANTASY_WEIGHT_INFLUENCE" envDefault:"0.10"    envDocs:"blend factor applied to raw fantasy weights in the enrichment phase"`

	// Recalibration.
	RecalibrationCooldownSeconds int64   `env:"RECALIBRATION_COOLDOWN_SECONDS"   envDefault:"7776000" envDocs:"seconds between voluntary recalibrations"`
	RecalibrationInitialRD       float64 `env:"RECALIBRATION_INITIAL_RD"         envDefault:"350"     envDocs:"deviation restored by a recalibration"`
	RecalibrationInitialVol      float64 `env:"RECALIBRATION_INITIAL_VOLATILITY" envDefault:"0.06"    envDocs:"volatility restored by a recalibration"`
	RecalibrationMinGames        int     `env:"RECALIBRATION_MIN_GAMES"          envDefault:"5"       envDocs:"games required before recalibration"`

	// Prediction markets.
	PredictionMinWindowSeconds int64 `env:"PREDICTION_MIN_WINDOW_SECONDS"   envDefault:"60" envDocs:"minimum seconds between creation and close"`
	PredictionMinVotes         int   `env:"PREDICTION_MIN_RESOLUTION_VOTES" envDefault:"3"  envDocs:"matching non-admin votes required to resolve a market"`

	// Soft avoids and package deals.
	SoftAvoidDefaultGames int `env:"SOFT_AVOID_DEFAULT_GAMES" envDefault:"10" envDocs:"games an avoid or package deal stays active when unspecified"`

	// Storage.
	DatabaseURL          string `env:"DB_URL"            envDefault:"postgres://localhost:5432/league?sslmode=disable" envDocs:"postgres connection string"`
	DatabaseMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS" envDefault:"10" envDocs:"sql pool open connection cap"`
	DatabaseMaxIdleConns int    `env:"DB_MAX_IDLE_CONNS" envDefault:"5"  envDocs:"sql pool idle connection cap"`
}
