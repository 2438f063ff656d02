// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package predictions runs tenant-scoped yes/no markets. Anyone can
// open a question, positions pool against each other while the market
// is open, and after close the outcome is settled by resolution votes
// with winners splitting the whole pool.
package predictions

import (
	"database/sql"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

const minQuestionRunes = 5

// Service runs the prediction markets.
type Service struct {
	cfg *config.Config
	st  store.API
}

func New(cfg *config.Config, st store.API) *Service {
	return &Service{cfg: cfg, st: st}
}

// Create opens a market. The question must carry at least five runes
// after trimming and the close time must leave a minimum betting
// window.
func (s *Service) Create(scope *envelope.Scope, guildID, creatorID int64, question string, closesAt int64) (*models.Prediction, error) {
	scope = scope.NewChildScope("Predictions.Create")
	defer scope.Finish()

	question = strings.TrimSpace(question)
	if utf8.RuneCountInString(question) < minQuestionRunes {
		return nil, models.ErrQuestionTooShort
	}
	now := time.Now().Unix()
	if closesAt-now < s.cfg.PredictionMinWindowSeconds {
		return nil, models.ErrCloseTooSoon
	}

	p := &models.Prediction{
		GuildID:         guildID,
		CreatorID:       creatorID,
		Question:        question,
		Status:          constants.PredictionStatusOpen,
		ResolutionVotes: map[int64]models.PredictionVote{},
		CreatedAt:       now,
		ClosesAt:        closesAt,
	}
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		id, err := s.st.CreatePrediction(scope, tx, p)
		if err != nil {
			return err
		}
		p.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": p.ID,
		"closesAt":     closesAt,
	}).Info("prediction created")
	return p, nil
}

// PlaceBet backs one side of an open market. Players may add to an
// existing position but never hold both sides, must not be in debt,
// and must cover the amount in full.
func (s *Service) PlaceBet(scope *envelope.Scope, guildID, predictionID, playerID int64, position bool, amount int64) (*models.PredictionBetResult, error) {
	scope = scope.NewChildScope("Predictions.PlaceBet")
	defer scope.Finish()

	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var result *models.PredictionBetResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		p, err := s.st.GetPrediction(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		now := time.Now().Unix()
		if p.Status != constants.PredictionStatusOpen || now >= p.ClosesAt {
			return models.ErrPredictionClosed
		}

		existing, err := s.st.GetPredictionPosition(scope, tx, guildID, predictionID, playerID)
		if err != nil {
			return err
		}
		if existing != nil && existing.Position != position {
			return models.ErrOppositeSideBet
		}

		player, err := s.st.GetPlayer(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if player.Balance < 0 {
			return models.ErrInDebt
		}
		if player.Balance < amount {
			return models.NewInsufficientFunds(playerID, player.Balance, amount)
		}

		newBalance, err := s.st.AddBalance(scope, tx, guildID, playerID, -amount)
		if err != nil {
			return err
		}
		bet := &models.PredictionBet{
			PredictionID: predictionID,
			GuildID:      guildID,
			PlayerID:     playerID,
			Position:     position,
			Amount:       amount,
			PlacedAt:     now,
		}
		betID, err := s.st.InsertPredictionBet(scope, tx, bet)
		if err != nil {
			return err
		}
		odds, err := s.st.PredictionTotals(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		result = &models.PredictionBetResult{
			BetID:      betID,
			Position:   position,
			Amount:     amount,
			NewBalance: newBalance,
			Odds:       odds,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": predictionID,
		"playerID":     playerID,
		"position":     position,
		"amount":       amount,
	}).Info("prediction bet placed")
	return result, nil
}

// VoteResolution casts a resolution vote once betting has closed. A
// voter may repeat their vote but never change it. The ballot reports
// whether the market can now be resolved: one matching admin vote is
// enough, otherwise the configured count of matching votes.
func (s *Service) VoteResolution(scope *envelope.Scope, guildID, predictionID, voterID int64, outcome bool, isAdmin bool) (*models.ResolutionBallot, error) {
	scope = scope.NewChildScope("Predictions.VoteResolution")
	defer scope.Finish()

	var ballot *models.ResolutionBallot
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		p, err := s.st.GetPrediction(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		switch p.Status {
		case constants.PredictionStatusResolved:
			return models.ErrPredictionResolved
		case constants.PredictionStatusCancelled:
			return models.ErrPredictionCancelled
		}
		now := time.Now().Unix()
		if now < p.ClosesAt {
			return models.ErrPredictionOpen
		}

		if existing, ok := p.ResolutionVotes[voterID]; ok && existing.Outcome != outcome {
			return models.ErrAlreadyVoted
		}
		p.ResolutionVotes[voterID] = models.PredictionVote{Outcome: outcome, IsAdmin: isAdmin, CastAt: now}
		if err := s.st.UpdatePrediction(scope, tx, p); err != nil {
			return err
		}

		ballot = tallyResolution(p.ResolutionVotes, outcome)
		ballot.VotesNeeded = s.cfg.PredictionMinVotes
		matching := ballot.NoVotes
		if outcome {
			matching = ballot.YesVotes
		}
		ballot.CanResolve = ballot.HasAdminVote || matching >= s.cfg.PredictionMinVotes
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": predictionID,
		"voterID":      voterID,
		"outcome":      outcome,
		"canResolve":   ballot.CanResolve,
	}).Info("resolution vote cast")
	return ballot, nil
}

func tallyResolution(votes map[int64]models.PredictionVote, outcome bool) *models.ResolutionBallot {
	ballot := &models.ResolutionBallot{Outcome: outcome}
	for _, v := range votes {
		if v.Outcome {
			ballot.YesVotes++
		} else {
			ballot.NoVotes++
		}
		if v.IsAdmin && v.Outcome == outcome {
			ballot.HasAdminVote = true
		}
	}
	return ballot
}

// Resolve marks the outcome and settles every position. Winners split
// the whole pool in proportion to their stake, rounded up per player.
// A market nobody backed on the winning side refunds everyone.
// Callers gate resolution on the ballot; admins may force an outcome.
func (s *Service) Resolve(scope *envelope.Scope, guildID, predictionID int64, outcome bool, resolvedBy int64) (*models.PredictionSettlement, error) {
	scope = scope.NewChildScope("Predictions.Resolve")
	defer scope.Finish()

	var settlement *models.PredictionSettlement
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		p, err := s.st.GetPrediction(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		switch p.Status {
		case constants.PredictionStatusResolved:
			return models.ErrPredictionResolved
		case constants.PredictionStatusCancelled:
			return models.ErrPredictionCancelled
		}

		p.Status = constants.PredictionStatusResolved
		p.Outcome = &outcome
		p.ResolvedAt = time.Now().Unix()
		p.ResolvedBy = resolvedBy
		if err := s.st.UpdatePrediction(scope, tx, p); err != nil {
			return err
		}

		bets, err := s.st.GetPredictionBets(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		settlement = &models.PredictionSettlement{
			PredictionID: predictionID,
			Outcome:      &outcome,
			Payouts:      make(map[int64]int64),
		}

		var totalPool, winnerPool int64
		byPlayer := make(map[int64]int64)
		winners := make(map[int64]int64)
		var winningBets []models.PredictionBet
		for _, b := range bets {
			totalPool += b.Amount
			byPlayer[b.PlayerID] += b.Amount
			if b.Position == outcome {
				winnerPool += b.Amount
				winners[b.PlayerID] += b.Amount
				winningBets = append(winningBets, b)
			}
		}
		if totalPool > 0 && (totalPool-winnerPool)*10 >= totalPool*9 {
			settlement.ConsensusWrong = true
		}

		if totalPool > 0 && winnerPool == 0 {
			settlement.Refunded = true
			for _, playerID := range utils.SortedKeys(byPlayer) {
				refund := byPlayer[playerID]
				if _, err := s.st.AddBalance(scope, tx, guildID, playerID, refund); err != nil {
					return err
				}
				settlement.Payouts[playerID] = refund
			}
			return nil
		}

		for _, playerID := range utils.SortedKeys(winners) {
			payout := ceilDiv(winners[playerID]*totalPool, winnerPool)
			if _, err := s.st.AddBalance(scope, tx, guildID, playerID, payout); err != nil {
				return err
			}
			settlement.Payouts[playerID] = payout
		}
		for _, b := range winningBets {
			if err := s.st.SetPredictionBetPayout(scope, tx, b.ID, settlement.Payouts[b.PlayerID]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": predictionID,
		"outcome":      outcome,
		"resolvedBy":   resolvedBy,
		"refunded":     settlement.Refunded,
	}).Info("prediction resolved")
	return settlement, nil
}

// Cancel voids an open market and refunds every position. Admin
// operation; callers verify permission.
func (s *Service) Cancel(scope *envelope.Scope, guildID, predictionID, cancelledBy int64) (*models.PredictionSettlement, error) {
	scope = scope.NewChildScope("Predictions.Cancel")
	defer scope.Finish()

	var settlement *models.PredictionSettlement
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		p, err := s.st.GetPrediction(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		switch p.Status {
		case constants.PredictionStatusResolved:
			return models.ErrPredictionResolved
		case constants.PredictionStatusCancelled:
			return models.ErrPredictionCancelled
		}
		if p.Status != constants.PredictionStatusOpen {
			return models.ErrPredictionClosed
		}

		p.Status = constants.PredictionStatusCancelled
		if err := s.st.UpdatePrediction(scope, tx, p); err != nil {
			return err
		}

		bets, err := s.st.GetPredictionBets(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		byPlayer := make(map[int64]int64)
		for _, b := range bets {
			byPlayer[b.PlayerID] += b.Amount
		}
		settlement = &models.PredictionSettlement{
			PredictionID: predictionID,
			Refunded:     true,
			Payouts:      make(map[int64]int64),
		}
		for _, playerID := range utils.SortedKeys(byPlayer) {
			refund := byPlayer[playerID]
			if _, err := s.st.AddBalance(scope, tx, guildID, playerID, refund); err != nil {
				return err
			}
			settlement.Payouts[playerID] = refund
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": predictionID,
		"cancelledBy":  cancelledBy,
		"refunds":      len(settlement.Payouts),
	}).Info("prediction cancelled")
	return settlement, nil
}

// LockExpired sweeps open markets whose close time has passed into the
// locked state so resolution voting can start. Returns the locked ids.
func (s *Service) LockExpired(scope *envelope.Scope, guildID int64) ([]int64, error) {
	scope = scope.NewChildScope("Predictions.LockExpired")
	defer scope.Finish()

	var locked []int64
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		expired, err := s.st.ListExpiredOpenPredictions(scope, tx, guildID, time.Now().Unix())
		if err != nil {
			return err
		}
		for i := range expired {
			p := &expired[i]
			p.Status = constants.PredictionStatusLocked
			if err := s.st.UpdatePrediction(scope, tx, p); err != nil {
				return err
			}
			locked = append(locked, p.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(locked) > 0 {
		scope.Log.WithFields(logrus.Fields{
			"guildID": guildID,
			"locked":  len(locked),
		}).Info("expired predictions locked")
	}
	return locked, nil
}

// CloseEarly locks an open market ahead of schedule and moves its
// close time to now so resolution voting can start immediately. Admin
// operation.
func (s *Service) CloseEarly(scope *envelope.Scope, guildID, predictionID int64) (*models.Prediction, error) {
	scope = scope.NewChildScope("Predictions.CloseEarly")
	defer scope.Finish()

	var p *models.Prediction
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		var err error
		p, err = s.st.GetPrediction(scope, tx, guildID, predictionID)
		if err != nil {
			return err
		}
		switch p.Status {
		case constants.PredictionStatusResolved:
			return models.ErrPredictionResolved
		case constants.PredictionStatusCancelled:
			return models.ErrPredictionCancelled
		}
		if p.Status != constants.PredictionStatusOpen {
			return models.ErrPredictionClosed
		}
		p.Status = constants.PredictionStatusLocked
		p.ClosesAt = time.Now().Unix()
		return s.st.UpdatePrediction(scope, tx, p)
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"predictionID": predictionID,
	}).Info("prediction betting closed early")
	return p, nil
}

// Get returns one market with its standing totals.
func (s *Service) Get(scope *envelope.Scope, guildID, predictionID int64) (*models.Prediction, models.PredictionOdds, error) {
	scope = scope.NewChildScope("Predictions.Get")
	defer scope.Finish()

	p, err := s.st.GetPrediction(scope, s.st.DB(), guildID, predictionID)
	if err != nil {
		return nil, models.PredictionOdds{}, err
	}
	odds, err := s.st.PredictionTotals(scope, s.st.DB(), guildID, predictionID)
	if err != nil {
		return nil, models.PredictionOdds{}, err
	}
	return p, odds, nil
}

// Active lists the guild's open markets, newest first.
func (s *Service) Active(scope *envelope.Scope, guildID int64, limit int) ([]models.Prediction, error) {
	scope = scope.NewChildScope("Predictions.Active")
	defer scope.Finish()

	return s.st.ListPredictions(scope, s.st.DB(), guildID, constants.PredictionStatusOpen, limit)
}

// Position returns a player's standing bet on a market, nil when they
// have not bet.
func (s *Service) Position(scope *envelope.Scope, guildID, predictionID, playerID int64) (*models.PredictionBet, error) {
	scope = scope.NewChildScope("Predictions.Position")
	defer scope.Finish()

	return s.st.GetPredictionPosition(scope, s.st.DB(), guildID, predictionID, playerID)
}

// Odds returns the standing totals of a market.
func (s *Service) Odds(scope *envelope.Scope, guildID, predictionID int64) (models.PredictionOdds, error) {
	scope = scope.NewChildScope("Predictions.Odds")
	defer scope.Finish()

	return s.st.PredictionTotals(scope, s.st.DB(), guildID, predictionID)
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
