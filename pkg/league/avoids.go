// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// CreateSoftAvoid buys or extends a directed request to keep two
// players on opposite teams. Buying again stacks onto the remaining
// games. The shuffler treats active pairs as a scoring penalty, never a
// hard constraint.
func (s *Service) CreateSoftAvoid(scope *envelope.Scope, guildID, avoiderID, avoidedID int64, games int) (*models.SoftAvoid, error) {
	scope = scope.NewChildScope("League.CreateSoftAvoid")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	if avoiderID == avoidedID {
		return nil, models.ErrSelfPair
	}
	if games <= 0 {
		games = s.cfg.SoftAvoidDefaultGames
	}

	var avoid models.SoftAvoid
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		if _, err := s.st.GetPlayer(scope, tx, guildID, avoiderID); err != nil {
			return err
		}
		if _, err := s.st.GetPlayer(scope, tx, guildID, avoidedID); err != nil {
			return err
		}
		remaining := games
		existing, err := s.st.GetSoftAvoid(scope, tx, guildID, avoiderID, avoidedID)
		if err != nil {
			return err
		}
		if existing != nil && existing.GamesRemaining > 0 {
			remaining += existing.GamesRemaining
		}
		avoid = models.SoftAvoid{
			GuildID:        guildID,
			AvoiderID:      avoiderID,
			AvoidedID:      avoidedID,
			GamesRemaining: remaining,
			CreatedAt:      time.Now().Unix(),
		}
		return s.st.UpsertSoftAvoid(scope, tx, avoid)
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":   guildID,
		"avoiderID": avoiderID,
		"avoidedID": avoidedID,
		"games":     avoid.GamesRemaining,
	}).Info("soft avoid created")
	return &avoid, nil
}

// CreatePackageDeal buys or extends a request to keep two players on
// the same team. The cost is debited from the buyer and lands in the
// nonprofit fund; repeat purchases stack games and accumulate cost.
func (s *Service) CreatePackageDeal(scope *envelope.Scope, guildID, buyerID, partnerID int64, games int, cost int64) (*models.PackageDeal, error) {
	scope = scope.NewChildScope("League.CreatePackageDeal")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	if buyerID == partnerID {
		return nil, models.ErrSelfPair
	}
	if cost < 0 {
		return nil, models.ErrInvalidAmount
	}
	if games <= 0 {
		games = s.cfg.SoftAvoidDefaultGames
	}

	var deal models.PackageDeal
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		buyer, err := s.st.GetPlayer(scope, tx, guildID, buyerID)
		if err != nil {
			return err
		}
		if _, err := s.st.GetPlayer(scope, tx, guildID, partnerID); err != nil {
			return err
		}
		if cost > 0 {
			if buyer.Balance < cost {
				return models.NewInsufficientFunds(buyerID, buyer.Balance, cost)
			}
			if _, err := s.st.AddBalance(scope, tx, guildID, buyerID, -cost); err != nil {
				return err
			}
			if err := s.st.AddToNonprofitFund(scope, tx, guildID, cost); err != nil {
				return err
			}
		}
		remaining := games
		paid := cost
		existing, err := s.st.GetPackageDeal(scope, tx, guildID, buyerID, partnerID)
		if err != nil {
			return err
		}
		if existing != nil && existing.GamesRemaining > 0 {
			remaining += existing.GamesRemaining
			paid += existing.CostPaid
		}
		deal = models.PackageDeal{
			GuildID:        guildID,
			BuyerID:        buyerID,
			PartnerID:      partnerID,
			GamesRemaining: remaining,
			CostPaid:       paid,
			CreatedAt:      time.Now().Unix(),
		}
		return s.st.UpsertPackageDeal(scope, tx, deal)
	})
	if err != nil {
		return nil, err
	}

	if cost > 0 {
		s.metrics.AddCoinFlow(guildID, "package_deal_cost", cost)
	}
	scope.Log.WithFields(logrus.Fields{
		"guildID":   guildID,
		"buyerID":   buyerID,
		"partnerID": partnerID,
		"games":     deal.GamesRemaining,
		"cost":      cost,
	}).Info("package deal created")
	return &deal, nil
}

// RemoveSoftAvoid cancels a standing avoid request early.
func (s *Service) RemoveSoftAvoid(scope *envelope.Scope, guildID, avoiderID, avoidedID int64) error {
	scope = scope.NewChildScope("League.RemoveSoftAvoid")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	return s.st.DeleteSoftAvoid(scope, s.st.DB(), guildID, avoiderID, avoidedID)
}
