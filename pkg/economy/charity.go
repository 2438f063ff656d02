// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// PayDebt moves coins from one member onto another's debt. The payment
// is capped at the debt and the payer needs the full capped amount on
// hand. A qualifying payment earns the payer reduced-rate blind games.
func (s *Service) PayDebt(scope *envelope.Scope, guildID, payerID, recipientID, amount int64) (*models.PayDebtResult, error) {
	scope = scope.NewChildScope("Economy.PayDebt")
	defer scope.Finish()

	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var result *models.PayDebtResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		payer, err := s.st.GetPlayer(scope, tx, guildID, payerID)
		if err != nil {
			return err
		}
		if payer.Balance < amount {
			return models.NewInsufficientFunds(payerID, payer.Balance, amount)
		}
		recipient, err := s.st.GetPlayer(scope, tx, guildID, recipientID)
		if err != nil {
			return err
		}
		if recipient.Balance >= 0 {
			return models.ErrNotInDebt
		}

		debt := -recipient.Balance
		paid := amount
		if paid > debt {
			paid = debt
		}
		payerBalance, err := s.st.AddBalance(scope, tx, guildID, payerID, -paid)
		if err != nil {
			return err
		}
		recipientBalance, err := s.st.AddBalance(scope, tx, guildID, recipientID, paid)
		if err != nil {
			return err
		}

		result = &models.PayDebtResult{
			Paid:             paid,
			PayerBalance:     payerBalance,
			RecipientBalance: recipientBalance,
		}
		if s.charityQualifies(paid, debt, recipient.Games()) {
			if err := s.st.SetCharityGames(scope, tx, guildID, payerID, s.cfg.CharityGames); err != nil {
				return err
			}
			result.CharityGranted = true
			result.CharityGames = s.cfg.CharityGames
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":     guildID,
		"payerID":     payerID,
		"recipientID": recipientID,
		"paid":        result.Paid,
		"charity":     result.CharityGranted,
	}).Info("debt paid")
	return result, nil
}

// charityQualifies decides whether a debt payment earns the reduced
// blind rate: the target owed enough, has played enough, and the
// payment covered min(debt, cap).
func (s *Service) charityQualifies(paid, debtBefore int64, recipientGames int) bool {
	if debtBefore < s.cfg.CharityMinTargetDebt {
		return false
	}
	if recipientGames < s.cfg.CharityMinGames {
		return false
	}
	threshold := debtBefore
	if threshold > s.cfg.CharityCap {
		threshold = s.cfg.CharityCap
	}
	return paid >= threshold
}
