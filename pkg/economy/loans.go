// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

// ExecuteLoan validates and books a loan in one transaction. The full
// principal is credited immediately; principal plus fee is collected
// when the borrower next appears in a recorded match.
func (s *Service) ExecuteLoan(scope *envelope.Scope, guildID, playerID, amount int64) (*models.LoanResult, error) {
	scope = scope.NewChildScope("Economy.ExecuteLoan")
	defer scope.Finish()

	var result *models.LoanResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		state, err := s.st.GetLoanState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if state.HasOutstanding() {
			return models.ErrOutstandingLoan
		}
		now := time.Now().Unix()
		if state.LastLoanAt > 0 && now-state.LastLoanAt < s.cfg.LoanCooldownSeconds {
			return models.ErrLoanCooldown
		}
		if amount <= 0 {
			return models.ErrInvalidAmount
		}
		if amount > s.cfg.LoanMaxAmount {
			return models.ErrLoanTooLarge
		}

		player, err := s.st.GetPlayer(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		fee := int64(float64(amount) * s.cfg.LoanFeeRate)
		newBalance, err := s.st.AddBalance(scope, tx, guildID, playerID, amount)
		if err != nil {
			return err
		}

		wasNegative := player.Balance < 0
		state.LastLoanAt = now
		state.TotalLoansTaken++
		if wasNegative {
			state.NegativeLoansTaken++
		}
		state.OutstandingPrincipal = amount
		state.OutstandingFee = fee
		if err := s.st.UpsertLoanState(scope, tx, state); err != nil {
			return err
		}

		result = &models.LoanResult{
			Amount:      amount,
			Fee:         fee,
			NewBalance:  newBalance,
			WasNegative: wasNegative,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"amount":   result.Amount,
		"fee":      result.Fee,
	}).Info("loan executed")
	return result, nil
}

// RepayLoan collects an outstanding loan at match settlement. The full
// principal plus fee is deducted even when that pushes the balance
// negative; the fee lands in the nonprofit fund. Returns nil when the
// player owes nothing.
//
// Runs on the caller's queryer so match finalization can fold it into
// its own transaction.
func (s *Service) RepayLoan(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (*models.LoanRepayment, error) {
	state, err := s.st.GetLoanState(scope, q, guildID, playerID)
	if err != nil {
		return nil, err
	}
	if !state.HasOutstanding() {
		return nil, nil
	}

	if _, err := s.st.AddBalance(scope, q, guildID, playerID, -state.Outstanding()); err != nil {
		return nil, err
	}
	if err := s.st.AddToNonprofitFund(scope, q, guildID, state.OutstandingFee); err != nil {
		return nil, err
	}
	if err := s.st.ClearOutstandingLoan(scope, q, guildID, playerID, state.OutstandingFee); err != nil {
		return nil, err
	}
	return &models.LoanRepayment{
		PlayerID:  playerID,
		Principal: state.OutstandingPrincipal,
		Fee:       state.OutstandingFee,
	}, nil
}

// LoanStatus reports a player's loan ledger.
func (s *Service) LoanStatus(scope *envelope.Scope, guildID, playerID int64) (models.LoanState, error) {
	scope = scope.NewChildScope("Economy.LoanStatus")
	defer scope.Finish()

	return s.st.GetLoanState(scope, s.st.DB(), guildID, playerID)
}

// ResetLoanCooldown clears the loan cooldown without touching the
// outstanding ledger. Admin operation.
func (s *Service) ResetLoanCooldown(scope *envelope.Scope, guildID, playerID int64) error {
	scope = scope.NewChildScope("Economy.ResetLoanCooldown")
	defer scope.Finish()

	return s.st.WithTx(scope, func(tx *sql.Tx) error {
		state, err := s.st.GetLoanState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		state.LastLoanAt = 0
		return s.st.UpsertLoanState(scope, tx, state)
	})
}
