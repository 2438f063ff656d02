// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// GetLoanState returns a player's loan ledger, zero-valued when the
// player has never borrowed.
func (s *Store) GetLoanState(scope *envelope.Scope, q Queryer, guildID, playerID int64) (models.LoanState, error) {
	state := models.LoanState{PlayerID: playerID, GuildID: guildID}
	err := q.QueryRowContext(scope.Ctx,
		`SELECT last_loan_at, total_loans_taken, negative_loans_taken, total_fees_paid,
			outstanding_principal, outstanding_fee
		FROM loan_state WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID).Scan(&state.LastLoanAt, &state.TotalLoansTaken, &state.NegativeLoansTaken,
		&state.TotalFeesPaid, &state.OutstandingPrincipal, &state.OutstandingFee)
	if errors.Is(err, sql.ErrNoRows) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("get loan state: %w", err)
	}
	return state, nil
}

// UpsertLoanState writes the full loan ledger for a player.
func (s *Store) UpsertLoanState(scope *envelope.Scope, q Queryer, state models.LoanState) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO loan_state (guild_id, player_id, last_loan_at, total_loans_taken, negative_loans_taken,
			total_fees_paid, outstanding_principal, outstanding_fee)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (guild_id, player_id) DO UPDATE SET
			last_loan_at = EXCLUDED.last_loan_at,
			total_loans_taken = EXCLUDED.total_loans_taken,
			negative_loans_taken = EXCLUDED.negative_loans_taken,
			total_fees_paid = EXCLUDED.total_fees_paid,
			outstanding_principal = EXCLUDED.outstanding_principal,
			outstanding_fee = EXCLUDED.outstanding_fee`,
		state.GuildID, state.PlayerID, state.LastLoanAt, state.TotalLoansTaken, state.NegativeLoansTaken,
		state.TotalFeesPaid, state.OutstandingPrincipal, state.OutstandingFee)
	if err != nil {
		return fmt.Errorf("upsert loan state: %w", err)
	}
	return nil
}

// GetOutstandingLoans returns the ledgers with debt among the given
// players, keyed by player id.
func (s *Store) GetOutstandingLoans(scope *envelope.Scope, q Queryer, guildID int64, playerIDs []int64) (map[int64]models.LoanState, error) {
	if len(playerIDs) == 0 {
		return map[int64]models.LoanState{}, nil
	}
	args := make([]interface{}, 0, len(playerIDs)+1)
	args = append(args, guildID)
	for _, id := range playerIDs {
		args = append(args, id)
	}
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT player_id, guild_id, last_loan_at, total_loans_taken, negative_loans_taken,
			total_fees_paid, outstanding_principal, outstanding_fee
		FROM loan_state
		WHERE guild_id = $1 AND player_id IN (`+placeholders(2, len(playerIDs))+`)
			AND outstanding_principal + outstanding_fee > 0`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("get outstanding loans: %w", err)
	}
	defer rows.Close()

	loans := make(map[int64]models.LoanState)
	for rows.Next() {
		var state models.LoanState
		err := rows.Scan(&state.PlayerID, &state.GuildID, &state.LastLoanAt, &state.TotalLoansTaken,
			&state.NegativeLoansTaken, &state.TotalFeesPaid, &state.OutstandingPrincipal, &state.OutstandingFee)
		if err != nil {
			return nil, fmt.Errorf("scan loan state: %w", err)
		}
		loans[state.PlayerID] = state
	}
	return loans, rows.Err()
}

// ClearOutstandingLoan zeroes a player's debt, crediting fees paid.
func (s *Store) ClearOutstandingLoan(scope *envelope.Scope, q Queryer, guildID, playerID, feePaid int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE loan_state SET outstanding_principal = 0, outstanding_fee = 0,
			total_fees_paid = total_fees_paid + $3
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, feePaid)
	if err != nil {
		return fmt.Errorf("clear outstanding loan: %w", err)
	}
	return nil
}

// ReduceOutstandingLoan applies a partial repayment, principal first.
func (s *Store) ReduceOutstandingLoan(scope *envelope.Scope, q Queryer, guildID, playerID, principal, fee int64) error {
	_, err := q.ExecContext(scope.Ctx,
		`UPDATE loan_state SET
			outstanding_principal = GREATEST(0, outstanding_principal - $3),
			outstanding_fee = GREATEST(0, outstanding_fee - $4),
			total_fees_paid = total_fees_paid + $4
		WHERE guild_id = $1 AND player_id = $2`,
		guildID, playerID, principal, fee)
	if err != nil {
		return fmt.Errorf("reduce outstanding loan: %w", err)
	}
	return nil
}

// GetNonprofitFund returns the guild's accumulated fees.
func (s *Store) GetNonprofitFund(scope *envelope.Scope, q Queryer, guildID int64) (models.NonprofitFund, error) {
	fund := models.NonprofitFund{GuildID: guildID}
	err := q.QueryRowContext(scope.Ctx,
		`SELECT total_collected FROM nonprofit_fund WHERE guild_id = $1`,
		guildID).Scan(&fund.Total)
	if errors.Is(err, sql.ErrNoRows) {
		return fund, nil
	}
	if err != nil {
		return fund, fmt.Errorf("get nonprofit fund: %w", err)
	}
	return fund, nil
}

// AddToNonprofitFund credits fees into the guild fund.
func (s *Store) AddToNonprofitFund(scope *envelope.Scope, q Queryer, guildID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO nonprofit_fund (guild_id, total_collected)
		VALUES ($1, $2)
		ON CONFLICT (guild_id) DO UPDATE SET total_collected = nonprofit_fund.total_collected + EXCLUDED.total_collected`,
		guildID, amount)
	if err != nil {
		return fmt.Errorf("add to nonprofit fund: %w", err)
	}
	return nil
}

// DeductFromNonprofitFund removes a disbursed amount from the fund.
// The fund can never go negative; a shortfall is an invariant breach
// because proposals snapshot a balance the fund still holds.
func (s *Store) DeductFromNonprofitFund(scope *envelope.Scope, q Queryer, guildID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	res, err := q.ExecContext(scope.Ctx,
		`UPDATE nonprofit_fund SET total_collected = total_collected - $2
		WHERE guild_id = $1 AND total_collected >= $2`,
		guildID, amount)
	if err != nil {
		return fmt.Errorf("deduct nonprofit fund: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct nonprofit fund: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("deduct nonprofit fund: %w", models.ErrInvariantViolation)
	}
	return nil
}
