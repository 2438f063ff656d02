// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package wager runs the three betting pools riding on a pending match:
// the primary pool or house book, the draft stake pool and the spectator
// side pool. Placement validates against the live pending match inside a
// serializable transaction; settlement math is pure so the finalization
// pipeline can apply it atomically.
package wager

import (
	"database/sql"
	"errors"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

type Service struct {
	cfg *config.Config
	st  store.API
}

func New(cfg *config.Config, st store.API) *Service {
	return &Service{cfg: cfg, st: st}
}

// PlaceBet accepts a primary-pool wager. The betting window, team
// restriction and hedge check are all evaluated against the persisted
// pending match inside one transaction so a concurrent settlement cannot
// race the placement.
func (s *Service) PlaceBet(scope *envelope.Scope, guildID, playerID, pendingMatchID int64, side models.Side, amount, leverage int64) (*models.BetReceipt, error) {
	scope = scope.NewChildScope("Wager.PlaceBet")
	defer scope.Finish()

	if !side.Valid() {
		return nil, models.ErrInvalidSide
	}
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}
	if !s.leverageValid(leverage) {
		return nil, models.ErrInvalidLeverage
	}

	var receipt *models.BetReceipt
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		pm, err := s.loadOpenPending(scope, tx, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		if team := pm.TeamOf(playerID); team != models.SideNone && team != side {
			return models.ErrOwnTeamOnly
		}
		existing, err := s.st.GetOpenBet(scope, tx, guildID, pm.ID, playerID)
		if err != nil && !errors.Is(err, models.ErrBetNotFound) {
			return err
		}
		if existing != nil && existing.Side != side {
			return models.ErrOppositeSideBet
		}

		player, err := s.st.GetPlayer(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		stake := amount * leverage
		if player.Balance-stake < -s.cfg.MaxDebt {
			return models.NewInsufficientFunds(playerID, player.Balance+s.cfg.MaxDebt, stake)
		}

		totals, err := s.st.PoolTotals(scope, tx, guildID, pm.ID)
		if err != nil {
			return err
		}
		newBalance, err := s.st.AddBalance(scope, tx, guildID, playerID, -stake)
		if err != nil {
			return err
		}
		bet := &models.Bet{
			GuildID:         guildID,
			PlayerID:        playerID,
			PendingMatchID:  pm.ID,
			Side:            side,
			Amount:          amount,
			Leverage:        leverage,
			OddsAtPlacement: totals.Odds(side),
			Status:          constants.BetStatusOpen,
			PlacedAt:        time.Now().Unix(),
		}
		betID, err := s.st.InsertBet(scope, tx, bet)
		if err != nil {
			return err
		}
		receipt = &models.BetReceipt{
			BetID:           betID,
			ReceiptID:       ulid.Make().String(),
			Side:            side,
			Amount:          amount,
			Leverage:        leverage,
			EffectiveStake:  stake,
			OddsAtPlacement: bet.OddsAtPlacement,
			NewBalance:      newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"betID":    receipt.BetID,
		"side":     side,
		"amount":   amount,
		"leverage": leverage,
	}).Info("bet placed")
	return receipt, nil
}

// PlaceSpectatorBet accepts a side-pool wager from a non-participant.
// One bet per spectator per match; spectators cannot wager into debt.
func (s *Service) PlaceSpectatorBet(scope *envelope.Scope, guildID, spectatorID, pendingMatchID int64, side models.Side, amount int64) (*models.BetReceipt, error) {
	scope = scope.NewChildScope("Wager.PlaceSpectatorBet")
	defer scope.Finish()

	if !side.Valid() {
		return nil, models.ErrInvalidSide
	}
	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var receipt *models.BetReceipt
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		pm, err := s.loadOpenPending(scope, tx, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		if pm.TeamOf(spectatorID) != models.SideNone {
			return models.ErrSpectatorPlays
		}
		existing, err := s.st.GetOpenSpectatorBet(scope, tx, guildID, pm.ID, spectatorID)
		if err != nil && !errors.Is(err, models.ErrBetNotFound) {
			return err
		}
		if existing != nil {
			return models.ErrAlreadyBet
		}

		balance, err := s.st.GetBalance(scope, tx, guildID, spectatorID)
		if err != nil {
			return err
		}
		if balance < amount {
			return models.NewInsufficientFunds(spectatorID, balance, amount)
		}
		newBalance, err := s.st.AddBalance(scope, tx, guildID, spectatorID, -amount)
		if err != nil {
			return err
		}
		bet := &models.SpectatorBet{
			GuildID:        guildID,
			SpectatorID:    spectatorID,
			PendingMatchID: pm.ID,
			Side:           side,
			Amount:         amount,
			Status:         constants.BetStatusOpen,
			PlacedAt:       time.Now().Unix(),
		}
		betID, err := s.st.InsertSpectatorBet(scope, tx, bet)
		if err != nil {
			return err
		}
		receipt = &models.BetReceipt{
			BetID:          betID,
			ReceiptID:      ulid.Make().String(),
			Side:           side,
			Amount:         amount,
			Leverage:       1,
			EffectiveStake: amount,
			NewBalance:     newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":     guildID,
		"spectatorID": spectatorID,
		"betID":       receipt.BetID,
		"side":        side,
		"amount":      amount,
	}).Info("spectator bet placed")
	return receipt, nil
}

// PlacePlayerPoolBet accepts an optional stake-pool wager. Draft matches
// only; participants back their own team and may bet once.
func (s *Service) PlacePlayerPoolBet(scope *envelope.Scope, guildID, playerID, pendingMatchID int64, amount int64) (*models.BetReceipt, error) {
	scope = scope.NewChildScope("Wager.PlacePlayerPoolBet")
	defer scope.Finish()

	if amount <= 0 {
		return nil, models.ErrInvalidAmount
	}

	var receipt *models.BetReceipt
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		pm, err := s.loadOpenPending(scope, tx, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		if !pm.IsDraft() {
			return models.ErrNotDraftLobby
		}
		side := pm.TeamOf(playerID)
		if side == models.SideNone {
			return models.ErrOwnTeamOnly
		}
		has, err := s.st.HasPlayerPoolBet(scope, tx, guildID, pm.ID, playerID)
		if err != nil {
			return err
		}
		if has {
			return models.ErrAlreadyBet
		}

		balance, err := s.st.GetBalance(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if balance < amount {
			return models.NewInsufficientFunds(playerID, balance, amount)
		}
		newBalance, err := s.st.AddBalance(scope, tx, guildID, playerID, -amount)
		if err != nil {
			return err
		}
		bet := &models.PlayerPoolBet{
			GuildID:        guildID,
			PlayerID:       playerID,
			PendingMatchID: pm.ID,
			Side:           side,
			Amount:         amount,
			Status:         constants.BetStatusOpen,
			PlacedAt:       time.Now().Unix(),
		}
		betID, err := s.st.InsertPlayerPoolBet(scope, tx, bet)
		if err != nil {
			return err
		}
		receipt = &models.BetReceipt{
			BetID:          betID,
			ReceiptID:      ulid.Make().String(),
			Side:           side,
			Amount:         amount,
			Leverage:       1,
			EffectiveStake: amount,
			NewBalance:     newBalance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"betID":    receipt.BetID,
		"side":     receipt.Side,
		"amount":   amount,
	}).Info("player pool bet placed")
	return receipt, nil
}

// PoolOdds reports the standing leveraged totals of the primary pool.
func (s *Service) PoolOdds(scope *envelope.Scope, guildID, pendingMatchID int64) (models.PoolOdds, error) {
	return s.st.PoolTotals(scope, s.st.DB(), guildID, pendingMatchID)
}

// StakePoolState reconstructs the combined draft pool from the persisted
// win probability and the open player bets.
func (s *Service) StakePoolState(scope *envelope.Scope, q store.Queryer, pm *models.PendingMatch) (StakeState, error) {
	radiantAuto, direAuto := AutoLiquidity(pm.GlickoRadiantWinProb, s.cfg)
	state := StakeState{RadiantAuto: radiantAuto, DireAuto: direAuto}
	bets, err := s.st.GetOpenPlayerPoolBets(scope, q, pm.GuildID, pm.ID)
	if err != nil {
		return state, err
	}
	for _, b := range bets {
		if b.Side == models.SideRadiant {
			state.RadiantBets += b.Amount
		} else {
			state.DireBets += b.Amount
		}
	}
	return state, nil
}

// loadOpenPending resolves the pending match from the store and checks
// the betting window. Reading the row instead of the cache keeps the
// window check honest inside the placement transaction.
func (s *Service) loadOpenPending(scope *envelope.Scope, tx *sql.Tx, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	var pm *models.PendingMatch
	var err error
	if pendingMatchID != 0 {
		pm, err = s.st.GetPendingMatchByID(scope, tx, guildID, pendingMatchID)
	} else {
		pm, err = s.st.GetPendingMatch(scope, tx, guildID)
	}
	if err != nil {
		return nil, err
	}
	if !pm.BettingOpen(time.Now()) {
		return nil, models.ErrBettingClosed
	}
	return pm, nil
}

func (s *Service) leverageValid(leverage int64) bool {
	if leverage == 1 {
		return true
	}
	for _, tier := range s.cfg.LeverageTiers {
		if leverage == tier {
			return true
		}
	}
	return false
}
