// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package league ties the engine together. It owns the guild-facing
// operations: registration, shuffling a pool into a pending match, the
// wager windows, lifecycle votes, and the settlement pipeline that
// turns a finished game into coins, ratings, and history in one
// serializable transaction.
package league

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/economy"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/matchstate"
	"github.com/AccelByte/extend-inhouse-league/pkg/metrics"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/pairings"
	"github.com/AccelByte/extend-inhouse-league/pkg/rating"
	"github.com/AccelByte/extend-inhouse-league/pkg/shuffler"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
	"github.com/AccelByte/extend-inhouse-league/pkg/voting"
	"github.com/AccelByte/extend-inhouse-league/pkg/wager"
)

// Service is the top-level orchestrator. Every entry point validates,
// runs its state changes through the store's serializable transactions,
// and only then syncs the in-memory pending cache and emits metrics.
type Service struct {
	cfg       *config.Config
	st        store.API
	state     *matchstate.Tracker
	votes     *voting.Service
	wagers    *wager.Service
	eco       *economy.Service
	pairs     *pairings.Service
	shuffler  *shuffler.Shuffler
	glicko    *rating.Glicko
	openskill *rating.OpenSkill
	metrics   metrics.LeagueMetrics

	// inFlight holds the guilds with a finalization in progress. The
	// mutex guards the set only and is never held across I/O.
	mu       sync.Mutex
	inFlight map[int64]struct{}
}

func New(cfg *config.Config, st store.API, state *matchstate.Tracker, votes *voting.Service, wagers *wager.Service, eco *economy.Service, pairs *pairings.Service, m metrics.LeagueMetrics) *Service {
	return &Service{
		cfg:       cfg,
		st:        st,
		state:     state,
		votes:     votes,
		wagers:    wagers,
		eco:       eco,
		pairs:     pairs,
		shuffler:  shuffler.New(cfg),
		glicko:    rating.NewGlicko(cfg),
		openskill: rating.NewOpenSkill(cfg),
		metrics:   m,
		inFlight:  make(map[int64]struct{}),
	}
}

// beginFinalize claims the guild for one record, abort, or correction.
// A second finalization for the same guild fails fast instead of
// queueing behind the first.
func (s *Service) beginFinalize(guildID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.inFlight[guildID]; busy {
		return models.ErrRecordInProgress
	}
	s.inFlight[guildID] = struct{}{}
	return nil
}

func (s *Service) endFinalize(guildID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.inFlight, guildID)
}

// Register enrolls a guild member. An optional MMR seeds both rating
// systems; zero seeds the default placement rating.
func (s *Service) Register(scope *envelope.Scope, req *models.RegisterRequest) (*models.Player, error) {
	scope = scope.NewChildScope("League.Register")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, req.GuildID)

	if err := req.Validate(); err != nil {
		return nil, err
	}
	mmr := req.InitialMMR
	if mmr == 0 {
		mmr = rating.DefaultMMR
	}
	now := time.Now().Unix()
	player := models.Player{
		ID:             req.PlayerID,
		GuildID:        req.GuildID,
		Username:       req.Username,
		SteamID:        req.SteamID,
		Balance:        s.cfg.StartingBalance,
		Glicko:         rating.Seed(mmr),
		OpenSkill:      rating.SeedOpenSkill(mmr),
		PreferredRoles: req.PreferredRoles,
		MainRole:       req.MainRole,
		LowestBalance:  s.cfg.StartingBalance,
		CreatedAt:      now,
	}
	if err := s.st.CreatePlayer(scope, s.st.DB(), player); err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  req.GuildID,
		"playerID": req.PlayerID,
		"username": req.Username,
		"seedMMR":  mmr,
	}).Info("player registered")
	return &player, nil
}

// Vote records one lifecycle vote and reports the tally so the caller
// can decide whether to finalize.
func (s *Service) Vote(scope *envelope.Scope, guildID, pendingMatchID, voterID int64, kind models.VoteKind, isAdmin bool) (*voting.Outcome, error) {
	scope = scope.NewChildScope("League.Vote")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)

	outcome, err := s.votes.CastVote(scope, guildID, pendingMatchID, voterID, kind, isAdmin)
	if err != nil {
		return nil, err
	}
	s.metrics.AddVoteSubmitted(guildID, voteKindLabel(outcome.Kind))
	return outcome, nil
}

// PlaceBet forwards a primary pool wager.
func (s *Service) PlaceBet(scope *envelope.Scope, guildID, playerID, pendingMatchID int64, side models.Side, amount, leverage int64) (*models.BetReceipt, error) {
	receipt, err := s.wagers.PlaceBet(scope, guildID, playerID, pendingMatchID, side, amount, leverage)
	if err != nil {
		return nil, err
	}
	s.metrics.AddBetPlaced(guildID, poolPrimary, receipt.EffectiveStake)
	return receipt, nil
}

// PlaceSpectatorBet forwards a spectator side-pool wager.
func (s *Service) PlaceSpectatorBet(scope *envelope.Scope, guildID, spectatorID, pendingMatchID int64, side models.Side, amount int64) (*models.BetReceipt, error) {
	receipt, err := s.wagers.PlaceSpectatorBet(scope, guildID, spectatorID, pendingMatchID, side, amount)
	if err != nil {
		return nil, err
	}
	s.metrics.AddBetPlaced(guildID, poolSpectator, receipt.Amount)
	return receipt, nil
}

// PlacePlayerPoolBet forwards a drafted player's stake-pool wager.
func (s *Service) PlacePlayerPoolBet(scope *envelope.Scope, guildID, playerID, pendingMatchID int64, amount int64) (*models.BetReceipt, error) {
	receipt, err := s.wagers.PlacePlayerPoolBet(scope, guildID, playerID, pendingMatchID, amount)
	if err != nil {
		return nil, err
	}
	s.metrics.AddBetPlaced(guildID, poolStake, receipt.Amount)
	return receipt, nil
}

// PoolOdds reports the standing primary pool totals.
func (s *Service) PoolOdds(scope *envelope.Scope, guildID, pendingMatchID int64) (models.PoolOdds, error) {
	return s.wagers.PoolOdds(scope, guildID, pendingMatchID)
}

// PendingMatches lists the guild's live pending matches.
func (s *Service) PendingMatches(scope *envelope.Scope, guildID int64) ([]*models.PendingMatch, error) {
	return s.state.GetAll(scope, guildID)
}

// PendingMatchForPlayer finds the pending match a player is seated in.
func (s *Service) PendingMatchForPlayer(scope *envelope.Scope, guildID, playerID int64) (*models.PendingMatch, error) {
	return s.state.GetForPlayer(scope, guildID, playerID)
}

// DeclareBankruptcy forwards to the economy and counts the event.
func (s *Service) DeclareBankruptcy(scope *envelope.Scope, guildID, playerID int64) (*models.BankruptcyResult, error) {
	result, err := s.eco.DeclareBankruptcy(scope, guildID, playerID)
	if err != nil {
		return nil, err
	}
	s.metrics.AddEconomyEvent(guildID, "bankruptcy")
	return result, nil
}

// TakeLoan forwards to the economy and counts the event.
func (s *Service) TakeLoan(scope *envelope.Scope, guildID, playerID, amount int64) (*models.LoanResult, error) {
	result, err := s.eco.ExecuteLoan(scope, guildID, playerID, amount)
	if err != nil {
		return nil, err
	}
	s.metrics.AddEconomyEvent(guildID, "loan")
	s.metrics.AddCoinFlow(guildID, "loan_principal", result.Amount)
	return result, nil
}

// Tip forwards to the economy and counts the event.
func (s *Service) Tip(scope *envelope.Scope, guildID, fromID, toID, amount int64) (*models.TipResult, error) {
	result, err := s.eco.Tip(scope, guildID, fromID, toID, amount)
	if err != nil {
		return nil, err
	}
	s.metrics.AddEconomyEvent(guildID, "tip")
	return result, nil
}

// PayDebt forwards to the economy and counts the event.
func (s *Service) PayDebt(scope *envelope.Scope, guildID, payerID, recipientID, amount int64) (*models.PayDebtResult, error) {
	result, err := s.eco.PayDebt(scope, guildID, payerID, recipientID, amount)
	if err != nil {
		return nil, err
	}
	s.metrics.AddEconomyEvent(guildID, "debt_payment")
	return result, nil
}

// Recalibrate forwards to the economy and counts the event.
func (s *Service) Recalibrate(scope *envelope.Scope, guildID, playerID int64) (*models.RecalibrationResult, error) {
	result, err := s.eco.Recalibrate(scope, guildID, playerID)
	if err != nil {
		return nil, err
	}
	s.metrics.AddEconomyEvent(guildID, "recalibration")
	return result, nil
}

// Pool labels shared by bet placement and settlement metrics.
const (
	poolPrimary   = "primary"
	poolStake     = "stake"
	poolSpectator = "spectator"
)

func voteKindLabel(kind models.VoteKind) string {
	switch kind {
	case models.VoteRadiantWin:
		return "radiant_win"
	case models.VoteDireWin:
		return "dire_win"
	case models.VoteAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// loadParticipants fetches every named player or fails; settlement must
// never proceed with a partial roster.
func (s *Service) loadParticipants(scope *envelope.Scope, q store.Queryer, guildID int64, ids []int64) (map[int64]models.Player, error) {
	players, err := s.st.GetPlayers(scope, q, guildID, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]models.Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("player %d: %w", id, models.ErrPlayerNotFound)
		}
	}
	return byID, nil
}

// rejectFinalize maps finalization failures onto rejection counters.
func (s *Service) rejectFinalize(guildID int64, err error) {
	switch {
	case errors.Is(err, models.ErrNoPendingMatch):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonNoPendingMatch)
	case errors.Is(err, models.ErrAmbiguousPending):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonAmbiguousPending)
	case errors.Is(err, models.ErrExcludedInTeams):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonExcludedInTeams)
	case errors.Is(err, models.ErrMatchAlreadyRecorded):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonMatchAlreadyEnded)
	case errors.Is(err, models.ErrStorageConflict):
		s.metrics.AddRejectedOperation(guildID, constants.ReasonStorageConflict)
	}
}

func sumValues(m map[int64]int64) int64 {
	var total int64
	for _, v := range m {
		total += v
	}
	return total
}
