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
)

// DeclareBankruptcy wipes a debtor back to the fresh-start balance and
// opens the reduced-winnings penalty window. Only players in debt and
// off cooldown may declare.
func (s *Service) DeclareBankruptcy(scope *envelope.Scope, guildID, playerID int64) (*models.BankruptcyResult, error) {
	scope = scope.NewChildScope("Economy.DeclareBankruptcy")
	defer scope.Finish()

	var result *models.BankruptcyResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		balance, err := s.st.GetBalance(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if balance >= 0 {
			return models.ErrNotInDebt
		}
		state, err := s.st.GetBankruptcyState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		now := time.Now().Unix()
		if state.LastBankruptcyAt > 0 && now-state.LastBankruptcyAt < s.cfg.BankruptcyCooldownSeconds {
			return models.ErrBankruptcyCooldown
		}

		if _, err := s.st.SetBalance(scope, tx, guildID, playerID, s.cfg.BankruptcyFreshStart); err != nil {
			return err
		}
		state.LastBankruptcyAt = now
		state.PenaltyGamesRemaining = s.cfg.BankruptcyPenaltyGames
		state.Count++
		if err := s.st.UpsertBankruptcyState(scope, tx, state); err != nil {
			return err
		}

		result = &models.BankruptcyResult{
			ForgivenDebt: -balance,
			NewBalance:   s.cfg.BankruptcyFreshStart,
			PenaltyGames: state.PenaltyGamesRemaining,
			Count:        state.Count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"playerID":     playerID,
		"forgivenDebt": result.ForgivenDebt,
		"penaltyGames": result.PenaltyGames,
		"count":        result.Count,
	}).Info("bankruptcy declared")
	return result, nil
}

// PenalizeWinnings scales a win reward by the penalty rate while a
// bankruptcy window is open. Returns the reward to pay and the part
// withheld.
func (s *Service) PenalizeWinnings(amount int64, penaltyGames int) (int64, int64) {
	if penaltyGames <= 0 || amount <= 0 {
		return amount, 0
	}
	penalized := int64(float64(amount) * s.cfg.BankruptcyPenaltyRate)
	return penalized, amount - penalized
}

// BankruptcyStatus reports a player's declaration history.
func (s *Service) BankruptcyStatus(scope *envelope.Scope, guildID, playerID int64) (models.BankruptcyState, error) {
	scope = scope.NewChildScope("Economy.BankruptcyStatus")
	defer scope.Finish()

	return s.st.GetBankruptcyState(scope, s.st.DB(), guildID, playerID)
}

// ResetBankruptcyCooldown clears the cooldown and any open penalty
// window without bumping the declaration count. Admin operation.
func (s *Service) ResetBankruptcyCooldown(scope *envelope.Scope, guildID, playerID int64) error {
	scope = scope.NewChildScope("Economy.ResetBankruptcyCooldown")
	defer scope.Finish()

	return s.st.WithTx(scope, func(tx *sql.Tx) error {
		state, err := s.st.GetBankruptcyState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		state.LastBankruptcyAt = 0
		state.PenaltyGamesRemaining = 0
		return s.st.UpsertBankruptcyState(scope, tx, state)
	})
}
