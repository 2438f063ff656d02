// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS players (
		player_id           BIGINT NOT NULL,
		guild_id            BIGINT NOT NULL,
		username            TEXT NOT NULL DEFAULT '',
		steam_id            BIGINT NOT NULL DEFAULT 0,
		balance             BIGINT NOT NULL DEFAULT 3,
		wins                INT NOT NULL DEFAULT 0,
		losses              INT NOT NULL DEFAULT 0,
		exclusion_halves    INT NOT NULL DEFAULT 0,
		glicko_rating       DOUBLE PRECISION NOT NULL DEFAULT 1000,
		glicko_rd           DOUBLE PRECISION NOT NULL DEFAULT 350,
		glicko_volatility   DOUBLE PRECISION NOT NULL DEFAULT 0.06,
		os_mu               DOUBLE PRECISION NOT NULL DEFAULT 45,
		os_sigma            DOUBLE PRECISION NOT NULL DEFAULT 8.333333333333334,
		preferred_roles     TEXT NOT NULL DEFAULT '',
		main_role           INT NOT NULL DEFAULT 0,
		charity_games       INT NOT NULL DEFAULT 0,
		lowest_balance      BIGINT NOT NULL DEFAULT 3,
		last_match_at       BIGINT NOT NULL DEFAULT 0,
		first_calibrated_at BIGINT NOT NULL DEFAULT 0,
		is_captain_eligible BOOLEAN NOT NULL DEFAULT FALSE,
		created_at          BIGINT NOT NULL,
		PRIMARY KEY (guild_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		match_id                BIGSERIAL PRIMARY KEY,
		guild_id                BIGINT NOT NULL,
		radiant_ids             JSONB NOT NULL,
		dire_ids                JSONB NOT NULL,
		winning_team            INT NOT NULL,
		lobby_type              TEXT NOT NULL DEFAULT 'shuffle',
		betting_mode            TEXT NOT NULL DEFAULT 'pool',
		balancing_rating_system TEXT NOT NULL DEFAULT 'glicko',
		radiant_win_prob        DOUBLE PRECISION NOT NULL DEFAULT 0.5,
		notes                   TEXT NOT NULL DEFAULT '',
		recorded_by             BIGINT NOT NULL DEFAULT 0,
		created_at              BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_matches_guild ON matches (guild_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS match_participants (
		match_id       BIGINT NOT NULL,
		player_id      BIGINT NOT NULL,
		guild_id       BIGINT NOT NULL,
		team_number    INT NOT NULL,
		won            BOOLEAN NOT NULL,
		role           INT NOT NULL DEFAULT 0,
		fantasy_points DOUBLE PRECISION,
		PRIMARY KEY (match_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS rating_history (
		id                     BIGSERIAL PRIMARY KEY,
		match_id               BIGINT NOT NULL,
		player_id              BIGINT NOT NULL,
		guild_id               BIGINT NOT NULL,
		team_number            INT NOT NULL,
		won                    BOOLEAN NOT NULL,
		rating_before          DOUBLE PRECISION NOT NULL,
		rating_after           DOUBLE PRECISION NOT NULL,
		rd_before              DOUBLE PRECISION NOT NULL,
		rd_after               DOUBLE PRECISION NOT NULL,
		volatility_before      DOUBLE PRECISION NOT NULL,
		volatility_after       DOUBLE PRECISION NOT NULL,
		os_mu_before           DOUBLE PRECISION NOT NULL,
		os_mu_after            DOUBLE PRECISION NOT NULL,
		os_sigma_before        DOUBLE PRECISION NOT NULL,
		os_sigma_after         DOUBLE PRECISION NOT NULL,
		expected_team_win_prob DOUBLE PRECISION NOT NULL DEFAULT 0,
		fantasy_points         DOUBLE PRECISION,
		fantasy_weight         DOUBLE PRECISION NOT NULL DEFAULT 1,
		created_at             BIGINT NOT NULL,
		UNIQUE (match_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS pending_matches (
		pending_match_id BIGSERIAL PRIMARY KEY,
		guild_id         BIGINT NOT NULL,
		payload          JSONB NOT NULL,
		created_at       BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_pending_matches_guild ON pending_matches (guild_id)`,
	`CREATE TABLE IF NOT EXISTS bets (
		bet_id            BIGSERIAL PRIMARY KEY,
		guild_id          BIGINT NOT NULL,
		player_id         BIGINT NOT NULL,
		pending_match_id  BIGINT NOT NULL,
		match_id          BIGINT NOT NULL DEFAULT 0,
		team_bet_on       INT NOT NULL,
		amount            BIGINT NOT NULL,
		leverage          BIGINT NOT NULL DEFAULT 1,
		is_blind          BOOLEAN NOT NULL DEFAULT FALSE,
		odds_at_placement DOUBLE PRECISION NOT NULL DEFAULT 0,
		payout            BIGINT NOT NULL DEFAULT 0,
		status            TEXT NOT NULL DEFAULT 'open',
		placed_at         BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_bets_pending ON bets (pending_match_id) WHERE match_id = 0`,
	`CREATE TABLE IF NOT EXISTS player_stakes (
		stake_id         BIGSERIAL PRIMARY KEY,
		guild_id         BIGINT NOT NULL,
		player_id        BIGINT NOT NULL,
		pending_match_id BIGINT NOT NULL,
		match_id         BIGINT NOT NULL DEFAULT 0,
		team             INT NOT NULL,
		is_excluded      BOOLEAN NOT NULL DEFAULT FALSE,
		payout           BIGINT NOT NULL DEFAULT 0,
		staked_at        BIGINT NOT NULL,
		UNIQUE (pending_match_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS spectator_bets (
		bet_id           BIGSERIAL PRIMARY KEY,
		guild_id         BIGINT NOT NULL,
		spectator_id     BIGINT NOT NULL,
		pending_match_id BIGINT NOT NULL,
		match_id         BIGINT NOT NULL DEFAULT 0,
		team_bet_on      INT NOT NULL,
		amount           BIGINT NOT NULL,
		payout           BIGINT NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'open',
		placed_at        BIGINT NOT NULL,
		UNIQUE (pending_match_id, spectator_id)
	)`,
	`CREATE TABLE IF NOT EXISTS player_pool_bets (
		bet_id           BIGSERIAL PRIMARY KEY,
		guild_id         BIGINT NOT NULL,
		player_id        BIGINT NOT NULL,
		pending_match_id BIGINT NOT NULL,
		match_id         BIGINT NOT NULL DEFAULT 0,
		team_bet_on      INT NOT NULL,
		amount           BIGINT NOT NULL,
		payout           BIGINT NOT NULL DEFAULT 0,
		status           TEXT NOT NULL DEFAULT 'open',
		placed_at        BIGINT NOT NULL,
		UNIQUE (pending_match_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS predictions (
		prediction_id    BIGSERIAL PRIMARY KEY,
		guild_id         BIGINT NOT NULL,
		creator_id       BIGINT NOT NULL,
		question         TEXT NOT NULL,
		status           TEXT NOT NULL DEFAULT 'open',
		outcome          BOOLEAN,
		resolution_votes JSONB NOT NULL DEFAULT '{}',
		created_at       BIGINT NOT NULL,
		closes_at        BIGINT NOT NULL,
		resolved_at      BIGINT NOT NULL DEFAULT 0,
		resolved_by      BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS prediction_bets (
		bet_id        BIGSERIAL PRIMARY KEY,
		prediction_id BIGINT NOT NULL,
		guild_id      BIGINT NOT NULL,
		player_id     BIGINT NOT NULL,
		position      BOOLEAN NOT NULL,
		amount        BIGINT NOT NULL,
		payout        BIGINT NOT NULL DEFAULT 0,
		placed_at     BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_prediction_bets ON prediction_bets (prediction_id)`,
	`CREATE TABLE IF NOT EXISTS loan_state (
		player_id             BIGINT NOT NULL,
		guild_id              BIGINT NOT NULL,
		last_loan_at          BIGINT NOT NULL DEFAULT 0,
		total_loans_taken     INT NOT NULL DEFAULT 0,
		negative_loans_taken  INT NOT NULL DEFAULT 0,
		total_fees_paid       BIGINT NOT NULL DEFAULT 0,
		outstanding_principal BIGINT NOT NULL DEFAULT 0,
		outstanding_fee       BIGINT NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS nonprofit_fund (
		guild_id        BIGINT PRIMARY KEY,
		total_collected BIGINT NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS bankruptcy_state (
		player_id               BIGINT NOT NULL,
		guild_id                BIGINT NOT NULL,
		last_bankruptcy_at      BIGINT NOT NULL DEFAULT 0,
		penalty_games_remaining INT NOT NULL DEFAULT 0,
		bankruptcy_count        INT NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS recalibration_state (
		player_id               BIGINT NOT NULL,
		guild_id                BIGINT NOT NULL,
		last_recalibration_at   BIGINT NOT NULL DEFAULT 0,
		total_recalibrations    INT NOT NULL DEFAULT 0,
		rating_at_recalibration DOUBLE PRECISION NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, player_id)
	)`,
	`CREATE TABLE IF NOT EXISTS disburse_proposals (
		guild_id        BIGINT PRIMARY KEY,
		proposal_id     TEXT NOT NULL,
		fund_amount     BIGINT NOT NULL,
		quorum_required INT NOT NULL,
		status          TEXT NOT NULL DEFAULT 'active',
		method          TEXT NOT NULL DEFAULT '',
		proposed_by     BIGINT NOT NULL DEFAULT 0,
		created_at      BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS disburse_votes (
		guild_id    BIGINT NOT NULL,
		proposal_id TEXT NOT NULL,
		voter_id    BIGINT NOT NULL,
		vote_method TEXT NOT NULL,
		voted_at    BIGINT NOT NULL,
		PRIMARY KEY (guild_id, proposal_id, voter_id)
	)`,
	`CREATE TABLE IF NOT EXISTS disburse_history (
		id              BIGSERIAL PRIMARY KEY,
		guild_id        BIGINT NOT NULL,
		proposal_id     TEXT NOT NULL,
		method          TEXT NOT NULL,
		total_amount    BIGINT NOT NULL,
		recipient_count INT NOT NULL,
		executed_at     BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS player_pairings (
		guild_id        BIGINT NOT NULL,
		p1              BIGINT NOT NULL,
		p2              BIGINT NOT NULL,
		games_together  INT NOT NULL DEFAULT 0,
		wins_together   INT NOT NULL DEFAULT 0,
		games_against   INT NOT NULL DEFAULT 0,
		p1_wins_against INT NOT NULL DEFAULT 0,
		PRIMARY KEY (guild_id, p1, p2),
		CHECK (p1 < p2)
	)`,
	`CREATE TABLE IF NOT EXISTS tip_transactions (
		id         BIGSERIAL PRIMARY KEY,
		guild_id   BIGINT NOT NULL,
		from_id    BIGINT NOT NULL,
		to_id      BIGINT NOT NULL,
		amount     BIGINT NOT NULL,
		fee        BIGINT NOT NULL,
		created_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS soft_avoids (
		id              BIGSERIAL PRIMARY KEY,
		guild_id        BIGINT NOT NULL,
		avoider_id      BIGINT NOT NULL,
		avoided_id      BIGINT NOT NULL,
		games_remaining INT NOT NULL DEFAULT 10,
		created_at      BIGINT NOT NULL,
		UNIQUE (guild_id, avoider_id, avoided_id)
	)`,
	`CREATE TABLE IF NOT EXISTS package_deals (
		id              BIGSERIAL PRIMARY KEY,
		guild_id        BIGINT NOT NULL,
		buyer_id        BIGINT NOT NULL,
		partner_id      BIGINT NOT NULL,
		games_remaining INT NOT NULL DEFAULT 0,
		cost_paid       BIGINT NOT NULL DEFAULT 0,
		created_at      BIGINT NOT NULL,
		UNIQUE (guild_id, buyer_id, partner_id)
	)`,
	`CREATE TABLE IF NOT EXISTS match_corrections (
		id               BIGSERIAL PRIMARY KEY,
		match_id         BIGINT NOT NULL,
		guild_id         BIGINT NOT NULL,
		old_winning_team INT NOT NULL,
		new_winning_team INT NOT NULL,
		corrected_by     BIGINT NOT NULL,
		corrected_at     BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS lobby_state (
		guild_id   BIGINT PRIMARY KEY,
		payload    JSONB NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
}

// Initialize creates every table and index idempotently. There is no
// migration framework; the schema is the contract.
func (s *Store) Initialize(scope *envelope.Scope) error {
	initScope := scope.NewChildScope("Store.Initialize")
	defer initScope.Finish()

	for _, stmt := range schemaStatements {
		if _, err := s.db.ExecContext(initScope.Ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement: %w", err)
		}
	}
	initScope.Log.WithField("statements", len(schemaStatements)).Info("schema initialized")
	return nil
}
