// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"database/sql"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// Tip transfers coins between members. The sender covers the amount
// plus a fee of at least one coin that lands in the nonprofit fund; the
// recipient receives the amount only. Tips never push the sender into
// debt.
func (s *Service) Tip(scope *envelope.Scope, guildID, fromID, toID, amount int64) (*models.TipResult, error) {
	scope = scope.NewChildScope("Economy.Tip")
	defer scope.Finish()

	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if fromID == toID {
		return nil, models.ErrSelfPair
	}

	fee := int64(math.Ceil(float64(amount) * s.cfg.TipFeeRate))
	if fee < 1 {
		fee = 1
	}

	var result *models.TipResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		sender, err := s.st.GetPlayer(scope, tx, guildID, fromID)
		if err != nil {
			return err
		}
		if sender.Balance < amount+fee {
			return models.NewInsufficientFunds(fromID, sender.Balance, amount+fee)
		}
		if _, err := s.st.GetPlayer(scope, tx, guildID, toID); err != nil {
			return err
		}

		senderBalance, err := s.st.AddBalance(scope, tx, guildID, fromID, -(amount + fee))
		if err != nil {
			return err
		}
		recipientBalance, err := s.st.AddBalance(scope, tx, guildID, toID, amount)
		if err != nil {
			return err
		}
		if err := s.st.AddToNonprofitFund(scope, tx, guildID, fee); err != nil {
			return err
		}
		if err := s.st.InsertTip(scope, tx, models.TipTransaction{
			GuildID:   guildID,
			FromID:    fromID,
			ToID:      toID,
			Amount:    amount,
			Fee:       fee,
			CreatedAt: time.Now().Unix(),
		}); err != nil {
			return err
		}

		result = &models.TipResult{
			Amount:           amount,
			Fee:              fee,
			SenderBalance:    senderBalance,
			RecipientBalance: recipientBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID": guildID,
		"fromID":  fromID,
		"toID":    toID,
		"amount":  amount,
		"fee":     fee,
	}).Info("tip sent")
	return result, nil
}

// RecentTips lists the latest transfers for the guild activity feed.
func (s *Service) RecentTips(scope *envelope.Scope, guildID int64, limit int) ([]models.TipTransaction, error) {
	scope = scope.NewChildScope("Economy.RecentTips")
	defer scope.Finish()

	return s.st.GetRecentTips(scope, s.st.DB(), guildID, limit)
}

// TipsSentToday sums a member's outbound tips over the last day.
func (s *Service) TipsSentToday(scope *envelope.Scope, guildID, fromID int64) (int64, int, error) {
	scope = scope.NewChildScope("Economy.TipsSentToday")
	defer scope.Finish()

	since := time.Now().Add(-24 * time.Hour).Unix()
	return s.st.GetTipsSentSince(scope, s.st.DB(), guildID, fromID, since)
}
