// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package economy implements the balance mechanics around the wager
// pools: garnished income, loans with deferred repayment, bankruptcy
// declarations, debt payments with charity rewards, tips, voluntary
// rating recalibration and the nonprofit fund with its voted
// disbursements.
package economy

import (
	"math/rand"
	"time"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

type Service struct {
	cfg *config.Config
	st  store.API
	rng *rand.Rand
}

func New(cfg *config.Config, st store.API) *Service {
	return &Service{
		cfg: cfg,
		st:  st,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// AddIncome credits match income onto a balance. The full gross always
// lands on the balance; when the recipient is in debt a share of it is
// reported as garnished so callers can show how much went toward the
// debt. Amounts at or below zero are not credited.
//
// Runs on the caller's queryer so match finalization can fold it into
// its own transaction.
func (s *Service) AddIncome(scope *envelope.Scope, q store.Queryer, guildID, playerID, amount int64) (models.GarnishedIncome, error) {
	income := models.GarnishedIncome{Gross: amount, Net: amount}
	if amount <= 0 {
		return income, nil
	}

	balance, err := s.st.GetBalance(scope, q, guildID, playerID)
	if err != nil {
		return income, err
	}
	if _, err := s.st.AddBalance(scope, q, guildID, playerID, amount); err != nil {
		return income, err
	}
	if balance < 0 {
		income.Garnished = int64(float64(amount) * s.cfg.GarnishmentRate)
		income.Net = amount - income.Garnished
	}
	return income, nil
}
