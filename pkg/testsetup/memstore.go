// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package testsetup

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

type playerKey struct {
	guildID  int64
	playerID int64
}

type pairingKey struct {
	guildID int64
	p1      int64
	p2      int64
}

type disburseVoteKey struct {
	guildID    int64
	proposalID string
	voterID    int64
}

type pendingRow struct {
	id        int64
	guildID   int64
	createdAt int64
	payload   []byte
}

// memState holds every table of the in-memory double. Keeping it in
// one struct lets WithTx snapshot and restore the whole store on a
// rolled-back transaction.
type memState struct {
	players         map[playerKey]models.Player
	pendings        map[int64]pendingRow
	bets            map[int64]models.Bet
	stakes          map[int64]models.StakeRow
	spectatorBets   map[int64]models.SpectatorBet
	poolBets        map[int64]models.PlayerPoolBet
	matches         map[int64]models.Match
	participants    []models.MatchParticipant
	history         []models.RatingHistory
	corrections     []models.MatchCorrection
	bankruptcies    map[playerKey]models.BankruptcyState
	loans           map[playerKey]models.LoanState
	recalibrations  map[playerKey]models.RecalibrationState
	funds           map[int64]int64
	pairings        map[pairingKey]models.Pairing
	avoids          map[int64]models.SoftAvoid
	deals           map[int64]models.PackageDeal
	predictions     map[int64]models.Prediction
	predictionBets  map[int64]models.PredictionBet
	proposals       map[int64]models.DisburseProposal
	disburseVotes   map[disburseVoteKey]models.DisburseVote
	disburseHistory []models.DisburseHistory
	tips            []models.TipTransaction
	snapshots       map[int64][]byte

	nextPendingID       int64
	nextBetID           int64
	nextStakeID         int64
	nextSpectatorBetID  int64
	nextPoolBetID       int64
	nextMatchID         int64
	nextHistoryID       int64
	nextCorrectionID    int64
	nextAvoidID         int64
	nextDealID          int64
	nextPredictionID    int64
	nextPredictionBetID int64
	nextTipID           int64
	nextDisburseID      int64
}

// MemStore is a map-backed store.API double for pipeline tests. It
// mirrors the row-level behavior of the SQL store, including sentinel
// errors, open/settled status filtering, the lowest-balance watermark
// and transaction rollback. Methods are not safe for concurrent use
// from multiple goroutines; each test owns its own instance.
type MemStore struct {
	state memState
}

var _ store.API = (*MemStore)(nil)

func NewMemStore() *MemStore {
	return &MemStore{state: memState{
		players:        make(map[playerKey]models.Player),
		pendings:       make(map[int64]pendingRow),
		bets:           make(map[int64]models.Bet),
		stakes:         make(map[int64]models.StakeRow),
		spectatorBets:  make(map[int64]models.SpectatorBet),
		poolBets:       make(map[int64]models.PlayerPoolBet),
		matches:        make(map[int64]models.Match),
		bankruptcies:   make(map[playerKey]models.BankruptcyState),
		loans:          make(map[playerKey]models.LoanState),
		recalibrations: make(map[playerKey]models.RecalibrationState),
		funds:          make(map[int64]int64),
		pairings:       make(map[pairingKey]models.Pairing),
		avoids:         make(map[int64]models.SoftAvoid),
		deals:          make(map[int64]models.PackageDeal),
		predictions:    make(map[int64]models.Prediction),
		predictionBets: make(map[int64]models.PredictionBet),
		proposals:      make(map[int64]models.DisburseProposal),
		disburseVotes:  make(map[disburseVoteKey]models.DisburseVote),
		snapshots:      make(map[int64][]byte),
	}}
}

func (m *MemStore) DB() store.Queryer { return nil }

// WithTx runs fn against the live state and restores the pre-call
// snapshot when fn fails, matching the SQL store's rollback.
func (m *MemStore) WithTx(scope *envelope.Scope, fn func(tx *sql.Tx) error) error {
	saved := m.state.clone()
	if err := fn(nil); err != nil {
		m.state = saved
		return err
	}
	return nil
}

func (s memState) clone() memState {
	out := s
	out.players = cloneMap(s.players)
	out.pendings = cloneMap(s.pendings)
	out.bets = cloneMap(s.bets)
	out.stakes = cloneMap(s.stakes)
	out.spectatorBets = cloneMap(s.spectatorBets)
	out.poolBets = cloneMap(s.poolBets)
	out.matches = cloneMap(s.matches)
	out.participants = append([]models.MatchParticipant(nil), s.participants...)
	out.history = append([]models.RatingHistory(nil), s.history...)
	out.corrections = append([]models.MatchCorrection(nil), s.corrections...)
	out.bankruptcies = cloneMap(s.bankruptcies)
	out.loans = cloneMap(s.loans)
	out.recalibrations = cloneMap(s.recalibrations)
	out.funds = cloneMap(s.funds)
	out.pairings = cloneMap(s.pairings)
	out.avoids = cloneMap(s.avoids)
	out.deals = cloneMap(s.deals)
	out.predictions = cloneMap(s.predictions)
	out.predictionBets = cloneMap(s.predictionBets)
	out.proposals = cloneMap(s.proposals)
	out.disburseVotes = cloneMap(s.disburseVotes)
	out.disburseHistory = append([]models.DisburseHistory(nil), s.disburseHistory...)
	out.tips = append([]models.TipTransaction(nil), s.tips...)
	out.snapshots = cloneMap(s.snapshots)
	return out
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// Players and balances.

func (m *MemStore) CreatePlayer(scope *envelope.Scope, q store.Queryer, p models.Player) error {
	key := playerKey{p.GuildID, p.ID}
	if _, ok := m.state.players[key]; ok {
		return models.ErrPlayerExists
	}
	p.LowestBalance = p.Balance
	m.state.players[key] = p
	return nil
}

func (m *MemStore) GetPlayer(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (models.Player, error) {
	p, ok := m.state.players[playerKey{guildID, playerID}]
	if !ok {
		return models.Player{}, models.ErrPlayerNotFound
	}
	return p, nil
}

func (m *MemStore) GetPlayers(scope *envelope.Scope, q store.Queryer, guildID int64, playerIDs []int64) ([]models.Player, error) {
	var out []models.Player
	for _, id := range playerIDs {
		if p, ok := m.state.players[playerKey{guildID, id}]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MemStore) ListPlayers(scope *envelope.Scope, q store.Queryer, guildID int64) ([]models.Player, error) {
	var out []models.Player
	for key, p := range m.state.players {
		if key.guildID == guildID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) CountPlayers(scope *envelope.Scope, q store.Queryer, guildID int64) (int, error) {
	n := 0
	for key := range m.state.players {
		if key.guildID == guildID {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) GetBalance(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (int64, error) {
	p, ok := m.state.players[playerKey{guildID, playerID}]
	if !ok {
		return 0, models.ErrPlayerNotFound
	}
	return p.Balance, nil
}

func (m *MemStore) AddBalance(scope *envelope.Scope, q store.Queryer, guildID, playerID, delta int64) (int64, error) {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return 0, models.ErrPlayerNotFound
	}
	p.Balance += delta
	if p.Balance < p.LowestBalance {
		p.LowestBalance = p.Balance
	}
	m.state.players[key] = p
	return p.Balance, nil
}

func (m *MemStore) SetBalance(scope *envelope.Scope, q store.Queryer, guildID, playerID, balance int64) (int64, error) {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return 0, models.ErrPlayerNotFound
	}
	previous := p.Balance
	p.Balance = balance
	if p.Balance < p.LowestBalance {
		p.LowestBalance = p.Balance
	}
	m.state.players[key] = p
	return previous, nil
}

func (m *MemStore) GetDebtors(scope *envelope.Scope, q store.Queryer, guildID int64) ([]models.Player, error) {
	var out []models.Player
	for key, p := range m.state.players {
		if key.guildID == guildID && p.Balance < 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance < out[j].Balance
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) GetStimulusEligible(scope *envelope.Scope, q store.Queryer, guildID int64) ([]models.Player, error) {
	var out []models.Player
	for key, p := range m.state.players {
		if key.guildID == guildID && p.Balance >= 0 {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Balance != out[j].Balance {
			return out[i].Balance > out[j].Balance
		}
		return out[i].ID < out[j].ID
	})
	if len(out) <= 3 {
		return nil, nil
	}
	return out[3:], nil
}

func (m *MemStore) ApplyMatchOutcome(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, won bool, glicko models.Glicko2Rating, openskill models.OpenSkillRating, matchTime int64, calibrated bool) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	if won {
		p.Wins++
	} else {
		p.Losses++
	}
	p.Glicko = glicko
	p.OpenSkill = openskill
	p.LastMatchAt = matchTime
	if calibrated && p.FirstCalibrated == 0 {
		p.FirstCalibrated = matchTime
	}
	m.state.players[key] = p
	return nil
}

func (m *MemStore) SwapWinLoss(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, nowWon bool) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	if nowWon {
		p.Wins++
		p.Losses--
	} else {
		p.Wins--
		p.Losses++
	}
	m.state.players[key] = p
	return nil
}

func (m *MemStore) SetRatings(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, glicko models.Glicko2Rating, openskill models.OpenSkillRating) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	p.Glicko = glicko
	p.OpenSkill = openskill
	m.state.players[key] = p
	return nil
}

func (m *MemStore) SetOpenSkillRating(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, openskill models.OpenSkillRating) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	p.OpenSkill = openskill
	m.state.players[key] = p
	return nil
}

func (m *MemStore) SetExclusionHalves(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, halves int) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	p.ExclusionHalves = halves
	m.state.players[key] = p
	return nil
}

func (m *MemStore) SetCharityGames(scope *envelope.Scope, q store.Queryer, guildID, playerID int64, games int) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	p.CharityGames = games
	m.state.players[key] = p
	return nil
}

func (m *MemStore) DecrementCharityGames(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) error {
	key := playerKey{guildID, playerID}
	p, ok := m.state.players[key]
	if !ok {
		return nil
	}
	if p.CharityGames > 0 {
		p.CharityGames--
	}
	m.state.players[key] = p
	return nil
}

// Pending matches.

func (m *MemStore) SavePendingMatch(scope *envelope.Scope, q store.Queryer, pending *models.PendingMatch) (int64, error) {
	payload, err := json.Marshal(pending)
	if err != nil {
		return 0, err
	}
	m.state.nextPendingID++
	id := m.state.nextPendingID
	m.state.pendings[id] = pendingRow{id: id, guildID: pending.GuildID, createdAt: pending.CreatedAt, payload: payload}
	return id, nil
}

func (m *MemStore) UpdatePendingMatch(scope *envelope.Scope, q store.Queryer, pending *models.PendingMatch) error {
	row, ok := m.state.pendings[pending.ID]
	if !ok || row.guildID != pending.GuildID {
		return models.ErrNoPendingMatch
	}
	payload, err := json.Marshal(pending)
	if err != nil {
		return err
	}
	row.payload = payload
	m.state.pendings[pending.ID] = row
	return nil
}

func decodePending(row pendingRow) (*models.PendingMatch, error) {
	var pm models.PendingMatch
	if err := json.Unmarshal(row.payload, &pm); err != nil {
		return nil, err
	}
	pm.ID = row.id
	pm.GuildID = row.guildID
	if pm.Votes == nil {
		pm.Votes = make(map[int64]models.Vote)
	}
	return &pm, nil
}

func (m *MemStore) GetPendingMatch(scope *envelope.Scope, q store.Queryer, guildID int64) (*models.PendingMatch, error) {
	var found []pendingRow
	for _, row := range m.state.pendings {
		if row.guildID == guildID {
			found = append(found, row)
		}
	}
	switch len(found) {
	case 0:
		return nil, models.ErrNoPendingMatch
	case 1:
		return decodePending(found[0])
	default:
		return nil, models.ErrAmbiguousPending
	}
}

func (m *MemStore) GetPendingMatchByID(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	row, ok := m.state.pendings[pendingMatchID]
	if !ok || row.guildID != guildID {
		return nil, models.ErrNoPendingMatch
	}
	return decodePending(row)
}

func (m *MemStore) GetPendingMatches(scope *envelope.Scope, q store.Queryer, guildID int64) ([]*models.PendingMatch, error) {
	var rows []pendingRow
	for _, row := range m.state.pendings {
		if row.guildID == guildID {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].createdAt != rows[j].createdAt {
			return rows[i].createdAt < rows[j].createdAt
		}
		return rows[i].id < rows[j].id
	})
	out := make([]*models.PendingMatch, 0, len(rows))
	for _, row := range rows {
		pm, err := decodePending(row)
		if err != nil {
			return nil, err
		}
		out = append(out, pm)
	}
	return out, nil
}

func (m *MemStore) DeletePendingMatch(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) error {
	row, ok := m.state.pendings[pendingMatchID]
	if ok && row.guildID == guildID {
		delete(m.state.pendings, pendingMatchID)
	}
	return nil
}

func (m *MemStore) DeleteAllPendingMatches(scope *envelope.Scope, q store.Queryer, guildID int64) (int64, error) {
	var n int64
	for id, row := range m.state.pendings {
		if row.guildID == guildID {
			delete(m.state.pendings, id)
			n++
		}
	}
	return n, nil
}

// Primary-pool bets.

func (m *MemStore) InsertBet(scope *envelope.Scope, q store.Queryer, b *models.Bet) (int64, error) {
	m.state.nextBetID++
	stored := *b
	stored.ID = m.state.nextBetID
	m.state.bets[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemStore) GetOpenBet(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID, playerID int64) (*models.Bet, error) {
	for _, b := range m.state.bets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID &&
			b.PlayerID == playerID && b.Status == constants.BetStatusOpen {
			found := b
			return &found, nil
		}
	}
	return nil, models.ErrBetNotFound
}

func (m *MemStore) GetOpenBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) ([]models.Bet, error) {
	var out []models.Bet
	for _, b := range m.state.bets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) PoolTotals(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) (models.PoolOdds, error) {
	var odds models.PoolOdds
	for _, b := range m.state.bets {
		if b.GuildID != guildID || b.PendingMatchID != pendingMatchID || b.Status != constants.BetStatusOpen {
			continue
		}
		stake := b.EffectiveStake()
		odds.Total += stake
		if b.Side == models.SideRadiant {
			odds.RadiantTotal += stake
		} else {
			odds.DireTotal += stake
		}
	}
	return odds, nil
}

func (m *MemStore) SettleBet(scope *envelope.Scope, q store.Queryer, betID, matchID, payout int64, status string) error {
	b, ok := m.state.bets[betID]
	if !ok {
		return models.ErrBetNotFound
	}
	b.MatchID = matchID
	b.Payout = payout
	b.Status = status
	m.state.bets[betID] = b
	return nil
}

func (m *MemStore) ResettleBet(scope *envelope.Scope, q store.Queryer, betID, payout int64, status string) error {
	b, ok := m.state.bets[betID]
	if !ok {
		return models.ErrBetNotFound
	}
	b.Payout = payout
	b.Status = status
	m.state.bets[betID] = b
	return nil
}

func (m *MemStore) GetSettledBets(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) ([]models.Bet, error) {
	var out []models.Bet
	for _, b := range m.state.bets {
		if b.GuildID == guildID && b.MatchID == matchID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DeleteOpenBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) error {
	for id, b := range m.state.bets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			delete(m.state.bets, id)
		}
	}
	return nil
}

// Stake rows and player-pool bets.

func (m *MemStore) InsertStakeRows(scope *envelope.Scope, q store.Queryer, rows []models.StakeRow) error {
	for _, row := range rows {
		m.state.nextStakeID++
		row.ID = m.state.nextStakeID
		m.state.stakes[row.ID] = row
	}
	return nil
}

func (m *MemStore) GetStakeRows(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) ([]models.StakeRow, error) {
	var out []models.StakeRow
	for _, row := range m.state.stakes {
		if row.GuildID == guildID && row.PendingMatchID == pendingMatchID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetStakeRowsByMatch(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) ([]models.StakeRow, error) {
	var out []models.StakeRow
	for _, row := range m.state.stakes {
		if row.GuildID == guildID && row.MatchID == matchID {
			out = append(out, row)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) SetStakePayout(scope *envelope.Scope, q store.Queryer, stakeID, matchID, payout int64) error {
	row, ok := m.state.stakes[stakeID]
	if !ok {
		return nil
	}
	row.MatchID = matchID
	row.Payout = payout
	m.state.stakes[stakeID] = row
	return nil
}

func (m *MemStore) DeleteStakeRows(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) error {
	for id, row := range m.state.stakes {
		if row.GuildID == guildID && row.PendingMatchID == pendingMatchID {
			delete(m.state.stakes, id)
		}
	}
	return nil
}

func (m *MemStore) InsertPlayerPoolBet(scope *envelope.Scope, q store.Queryer, b *models.PlayerPoolBet) (int64, error) {
	m.state.nextPoolBetID++
	stored := *b
	stored.ID = m.state.nextPoolBetID
	m.state.poolBets[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemStore) GetOpenPlayerPoolBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) ([]models.PlayerPoolBet, error) {
	var out []models.PlayerPoolBet
	for _, b := range m.state.poolBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetSettledPlayerPoolBets(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) ([]models.PlayerPoolBet, error) {
	var out []models.PlayerPoolBet
	for _, b := range m.state.poolBets {
		if b.GuildID == guildID && b.MatchID == matchID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) HasPlayerPoolBet(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID, playerID int64) (bool, error) {
	for _, b := range m.state.poolBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID &&
			b.PlayerID == playerID && b.Status == constants.BetStatusOpen {
			return true, nil
		}
	}
	return false, nil
}

func (m *MemStore) SettlePlayerPoolBet(scope *envelope.Scope, q store.Queryer, betID, matchID, payout int64, status string) error {
	b, ok := m.state.poolBets[betID]
	if !ok {
		return models.ErrBetNotFound
	}
	b.MatchID = matchID
	b.Payout = payout
	b.Status = status
	m.state.poolBets[betID] = b
	return nil
}

func (m *MemStore) DeleteOpenPlayerPoolBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) error {
	for id, b := range m.state.poolBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			delete(m.state.poolBets, id)
		}
	}
	return nil
}

// Spectator bets.

func (m *MemStore) InsertSpectatorBet(scope *envelope.Scope, q store.Queryer, b *models.SpectatorBet) (int64, error) {
	m.state.nextSpectatorBetID++
	stored := *b
	stored.ID = m.state.nextSpectatorBetID
	m.state.spectatorBets[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemStore) GetOpenSpectatorBet(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID, spectatorID int64) (*models.SpectatorBet, error) {
	for _, b := range m.state.spectatorBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID &&
			b.SpectatorID == spectatorID && b.Status == constants.BetStatusOpen {
			found := b
			return &found, nil
		}
	}
	return nil, models.ErrBetNotFound
}

func (m *MemStore) GetOpenSpectatorBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) ([]models.SpectatorBet, error) {
	var out []models.SpectatorBet
	for _, b := range m.state.spectatorBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetSettledSpectatorBets(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) ([]models.SpectatorBet, error) {
	var out []models.SpectatorBet
	for _, b := range m.state.spectatorBets {
		if b.GuildID == guildID && b.MatchID == matchID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) SettleSpectatorBet(scope *envelope.Scope, q store.Queryer, betID, matchID, payout int64, status string) error {
	b, ok := m.state.spectatorBets[betID]
	if !ok {
		return models.ErrBetNotFound
	}
	b.MatchID = matchID
	b.Payout = payout
	b.Status = status
	m.state.spectatorBets[betID] = b
	return nil
}

func (m *MemStore) DeleteOpenSpectatorBets(scope *envelope.Scope, q store.Queryer, guildID, pendingMatchID int64) error {
	for id, b := range m.state.spectatorBets {
		if b.GuildID == guildID && b.PendingMatchID == pendingMatchID && b.Status == constants.BetStatusOpen {
			delete(m.state.spectatorBets, id)
		}
	}
	return nil
}

// Recorded matches, ratings, corrections.

func (m *MemStore) InsertMatch(scope *envelope.Scope, q store.Queryer, match *models.Match, participants []models.MatchParticipant) (int64, error) {
	m.state.nextMatchID++
	stored := *match
	stored.ID = m.state.nextMatchID
	m.state.matches[stored.ID] = stored
	for _, participant := range participants {
		participant.MatchID = stored.ID
		m.state.participants = append(m.state.participants, participant)
	}
	return stored.ID, nil
}

func (m *MemStore) GetMatch(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) (*models.Match, error) {
	match, ok := m.state.matches[matchID]
	if !ok || match.GuildID != guildID {
		return nil, models.ErrMatchNotFound
	}
	return &match, nil
}

func (m *MemStore) AllMatchTeams(scope *envelope.Scope, q store.Queryer, guildID int64) ([]models.Match, error) {
	var out []models.Match
	for _, match := range m.state.matches {
		if match.GuildID == guildID {
			out = append(out, match)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt < out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) LastMatchParticipantIDs(scope *envelope.Scope, q store.Queryer, guildID int64) ([]int64, error) {
	matches, err := m.AllMatchTeams(scope, q, guildID)
	if err != nil || len(matches) == 0 {
		return nil, err
	}
	last := matches[len(matches)-1]
	ids := append([]int64(nil), last.RadiantIDs...)
	return append(ids, last.DireIDs...), nil
}

func (m *MemStore) FlipMatchResult(scope *envelope.Scope, q store.Queryer, guildID, matchID int64, newWinner models.Side) error {
	match, ok := m.state.matches[matchID]
	if !ok || match.GuildID != guildID {
		return models.ErrMatchNotFound
	}
	match.Winner = newWinner
	m.state.matches[matchID] = match
	for i, participant := range m.state.participants {
		if participant.MatchID == matchID {
			m.state.participants[i].Won = participant.Team == newWinner
		}
	}
	return nil
}

func (m *MemStore) SetParticipantFantasyPoints(scope *envelope.Scope, q store.Queryer, guildID, matchID, playerID int64, points float64) error {
	for i, participant := range m.state.participants {
		if participant.GuildID == guildID && participant.MatchID == matchID && participant.PlayerID == playerID {
			value := points
			m.state.participants[i].FantasyPoints = &value
		}
	}
	return nil
}

func (m *MemStore) InsertRatingHistory(scope *envelope.Scope, q store.Queryer, h models.RatingHistory) error {
	m.state.nextHistoryID++
	h.ID = m.state.nextHistoryID
	m.state.history = append(m.state.history, h)
	return nil
}

func (m *MemStore) GetRatingHistory(scope *envelope.Scope, q store.Queryer, guildID, matchID int64) ([]models.RatingHistory, error) {
	var out []models.RatingHistory
	for _, h := range m.state.history {
		if h.GuildID == guildID && h.MatchID == matchID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out, nil
}

func (m *MemStore) UpdateRatingHistoryAfter(scope *envelope.Scope, q store.Queryer, h models.RatingHistory) error {
	for i, existing := range m.state.history {
		if existing.GuildID != h.GuildID || existing.MatchID != h.MatchID || existing.PlayerID != h.PlayerID {
			continue
		}
		existing.Won = h.Won
		existing.RatingAfter = h.RatingAfter
		existing.RDAfter = h.RDAfter
		existing.VolatilityAfter = h.VolatilityAfter
		existing.MuAfter = h.MuAfter
		existing.SigmaAfter = h.SigmaAfter
		existing.FantasyPoints = h.FantasyPoints
		existing.FantasyWeight = h.FantasyWeight
		m.state.history[i] = existing
	}
	return nil
}

func (m *MemStore) InsertMatchCorrection(scope *envelope.Scope, q store.Queryer, c models.MatchCorrection) error {
	m.state.nextCorrectionID++
	c.ID = m.state.nextCorrectionID
	m.state.corrections = append(m.state.corrections, c)
	return nil
}

// Bankruptcy, loans, nonprofit fund, recalibration.

func (m *MemStore) GetBankruptcyState(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (models.BankruptcyState, error) {
	if state, ok := m.state.bankruptcies[playerKey{guildID, playerID}]; ok {
		return state, nil
	}
	return models.BankruptcyState{PlayerID: playerID, GuildID: guildID}, nil
}

func (m *MemStore) UpsertBankruptcyState(scope *envelope.Scope, q store.Queryer, state models.BankruptcyState) error {
	m.state.bankruptcies[playerKey{state.GuildID, state.PlayerID}] = state
	return nil
}

func (m *MemStore) GetPenaltyStates(scope *envelope.Scope, q store.Queryer, guildID int64, playerIDs []int64) (map[int64]models.BankruptcyState, error) {
	out := make(map[int64]models.BankruptcyState)
	for _, id := range playerIDs {
		if state, ok := m.state.bankruptcies[playerKey{guildID, id}]; ok && state.PenaltyGamesRemaining > 0 {
			out[id] = state
		}
	}
	return out, nil
}

func (m *MemStore) DecrementPenaltyGames(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) error {
	key := playerKey{guildID, playerID}
	state, ok := m.state.bankruptcies[key]
	if !ok {
		return nil
	}
	if state.PenaltyGamesRemaining > 0 {
		state.PenaltyGamesRemaining--
	}
	m.state.bankruptcies[key] = state
	return nil
}

func (m *MemStore) GetLoanState(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (models.LoanState, error) {
	if state, ok := m.state.loans[playerKey{guildID, playerID}]; ok {
		return state, nil
	}
	return models.LoanState{PlayerID: playerID, GuildID: guildID}, nil
}

func (m *MemStore) UpsertLoanState(scope *envelope.Scope, q store.Queryer, state models.LoanState) error {
	m.state.loans[playerKey{state.GuildID, state.PlayerID}] = state
	return nil
}

func (m *MemStore) ClearOutstandingLoan(scope *envelope.Scope, q store.Queryer, guildID, playerID, feePaid int64) error {
	key := playerKey{guildID, playerID}
	state, ok := m.state.loans[key]
	if !ok {
		return nil
	}
	state.TotalFeesPaid += feePaid
	state.OutstandingPrincipal = 0
	state.OutstandingFee = 0
	m.state.loans[key] = state
	return nil
}

func (m *MemStore) GetNonprofitFund(scope *envelope.Scope, q store.Queryer, guildID int64) (models.NonprofitFund, error) {
	return models.NonprofitFund{GuildID: guildID, Total: m.state.funds[guildID]}, nil
}

func (m *MemStore) AddToNonprofitFund(scope *envelope.Scope, q store.Queryer, guildID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	m.state.funds[guildID] += amount
	return nil
}

func (m *MemStore) DeductFromNonprofitFund(scope *envelope.Scope, q store.Queryer, guildID, amount int64) error {
	if amount <= 0 {
		return nil
	}
	if m.state.funds[guildID] < amount {
		return fmt.Errorf("deduct nonprofit fund: %w", models.ErrInvariantViolation)
	}
	m.state.funds[guildID] -= amount
	return nil
}

func (m *MemStore) GetRecalibrationState(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (models.RecalibrationState, error) {
	if state, ok := m.state.recalibrations[playerKey{guildID, playerID}]; ok {
		return state, nil
	}
	return models.RecalibrationState{PlayerID: playerID, GuildID: guildID}, nil
}

func (m *MemStore) UpsertRecalibrationState(scope *envelope.Scope, q store.Queryer, state models.RecalibrationState) error {
	m.state.recalibrations[playerKey{state.GuildID, state.PlayerID}] = state
	return nil
}

// Pairings.

func (m *MemStore) pairingAt(guildID, a, b int64) (pairingKey, models.Pairing) {
	p1, p2 := utils.CanonicalPair(a, b)
	key := pairingKey{guildID, p1, p2}
	pairing, ok := m.state.pairings[key]
	if !ok {
		pairing = models.Pairing{GuildID: guildID, P1: p1, P2: p2}
	}
	return key, pairing
}

func (m *MemStore) IncrementTeammatePairing(scope *envelope.Scope, q store.Queryer, guildID, a, b int64, gamesDelta, winsDelta int) error {
	key, pairing := m.pairingAt(guildID, a, b)
	pairing.GamesTogether += gamesDelta
	pairing.WinsTogether += winsDelta
	m.state.pairings[key] = pairing
	return nil
}

func (m *MemStore) IncrementOpponentPairing(scope *envelope.Scope, q store.Queryer, guildID, a, b, winnerID int64, gamesDelta int) error {
	key, pairing := m.pairingAt(guildID, a, b)
	pairing.GamesAgainst += gamesDelta
	if winnerID == pairing.P1 {
		pairing.P1WinsAgainst += gamesDelta
	}
	m.state.pairings[key] = pairing
	return nil
}

func (m *MemStore) SwapTeammateWins(scope *envelope.Scope, q store.Queryer, guildID, a, b int64, delta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	key := pairingKey{guildID, p1, p2}
	pairing, ok := m.state.pairings[key]
	if !ok {
		return nil
	}
	pairing.WinsTogether += delta
	m.state.pairings[key] = pairing
	return nil
}

func (m *MemStore) SwapOpponentWins(scope *envelope.Scope, q store.Queryer, guildID, a, b int64, delta int) error {
	p1, p2 := utils.CanonicalPair(a, b)
	key := pairingKey{guildID, p1, p2}
	pairing, ok := m.state.pairings[key]
	if !ok {
		return nil
	}
	pairing.P1WinsAgainst += delta
	m.state.pairings[key] = pairing
	return nil
}

func (m *MemStore) GetPairing(scope *envelope.Scope, q store.Queryer, guildID, a, b int64) (models.Pairing, error) {
	_, pairing := m.pairingAt(guildID, a, b)
	return pairing, nil
}

func (m *MemStore) GetPairingsFor(scope *envelope.Scope, q store.Queryer, guildID, playerID int64) (map[int64]models.Pairing, error) {
	out := make(map[int64]models.Pairing)
	for key, pairing := range m.state.pairings {
		if key.guildID != guildID {
			continue
		}
		switch playerID {
		case key.p1:
			out[key.p2] = pairing
		case key.p2:
			out[key.p1] = pairing
		}
	}
	return out, nil
}

func (m *MemStore) CountPairings(scope *envelope.Scope, q store.Queryer, guildID int64) (int, error) {
	n := 0
	for key := range m.state.pairings {
		if key.guildID == guildID {
			n++
		}
	}
	return n, nil
}

func (m *MemStore) DeletePairingsForGuild(scope *envelope.Scope, q store.Queryer, guildID int64) error {
	for key := range m.state.pairings {
		if key.guildID == guildID {
			delete(m.state.pairings, key)
		}
	}
	return nil
}

// Soft avoids and package deals.

func (m *MemStore) UpsertSoftAvoid(scope *envelope.Scope, q store.Queryer, a models.SoftAvoid) error {
	for id, existing := range m.state.avoids {
		if existing.GuildID == a.GuildID && existing.AvoiderID == a.AvoiderID && existing.AvoidedID == a.AvoidedID {
			existing.GamesRemaining = a.GamesRemaining
			existing.CreatedAt = a.CreatedAt
			m.state.avoids[id] = existing
			return nil
		}
	}
	m.state.nextAvoidID++
	a.ID = m.state.nextAvoidID
	m.state.avoids[a.ID] = a
	return nil
}

func (m *MemStore) GetSoftAvoid(scope *envelope.Scope, q store.Queryer, guildID, avoiderID, avoidedID int64) (*models.SoftAvoid, error) {
	for _, a := range m.state.avoids {
		if a.GuildID == guildID && a.AvoiderID == avoiderID && a.AvoidedID == avoidedID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemStore) DeleteSoftAvoid(scope *envelope.Scope, q store.Queryer, guildID, avoiderID, avoidedID int64) error {
	for id, a := range m.state.avoids {
		if a.GuildID == guildID && a.AvoiderID == avoiderID && a.AvoidedID == avoidedID {
			delete(m.state.avoids, id)
			return nil
		}
	}
	return models.ErrAvoidNotFound
}

func (m *MemStore) GetActiveSoftAvoidsAmong(scope *envelope.Scope, q store.Queryer, guildID int64, playerIDs []int64) ([]models.SoftAvoid, error) {
	set := make(map[int64]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		set[id] = struct{}{}
	}
	var out []models.SoftAvoid
	for _, a := range m.state.avoids {
		if a.GuildID != guildID || a.GamesRemaining <= 0 {
			continue
		}
		if _, ok := set[a.AvoiderID]; !ok {
			continue
		}
		if _, ok := set[a.AvoidedID]; !ok {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DecayAvoidsByID(scope *envelope.Scope, q store.Queryer, guildID int64, ids []int64) error {
	for _, id := range ids {
		if a, ok := m.state.avoids[id]; ok && a.GuildID == guildID {
			a.GamesRemaining--
			m.state.avoids[id] = a
		}
	}
	for id, a := range m.state.avoids {
		if a.GuildID == guildID && a.GamesRemaining <= 0 {
			delete(m.state.avoids, id)
		}
	}
	return nil
}

func (m *MemStore) UpsertPackageDeal(scope *envelope.Scope, q store.Queryer, d models.PackageDeal) error {
	for id, existing := range m.state.deals {
		if existing.GuildID == d.GuildID && existing.BuyerID == d.BuyerID && existing.PartnerID == d.PartnerID {
			existing.GamesRemaining = d.GamesRemaining
			existing.CostPaid = d.CostPaid
			existing.CreatedAt = d.CreatedAt
			m.state.deals[id] = existing
			return nil
		}
	}
	m.state.nextDealID++
	d.ID = m.state.nextDealID
	m.state.deals[d.ID] = d
	return nil
}

func (m *MemStore) GetPackageDeal(scope *envelope.Scope, q store.Queryer, guildID, buyerID, partnerID int64) (*models.PackageDeal, error) {
	for _, d := range m.state.deals {
		if d.GuildID == guildID && d.BuyerID == buyerID && d.PartnerID == partnerID {
			found := d
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemStore) GetActivePackageDealsAmong(scope *envelope.Scope, q store.Queryer, guildID int64, playerIDs []int64) ([]models.PackageDeal, error) {
	set := make(map[int64]struct{}, len(playerIDs))
	for _, id := range playerIDs {
		set[id] = struct{}{}
	}
	var out []models.PackageDeal
	for _, d := range m.state.deals {
		if d.GuildID != guildID || d.GamesRemaining <= 0 {
			continue
		}
		if _, ok := set[d.BuyerID]; !ok {
			continue
		}
		if _, ok := set[d.PartnerID]; !ok {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) DecayPackageDealsByID(scope *envelope.Scope, q store.Queryer, guildID int64, ids []int64) error {
	for _, id := range ids {
		if d, ok := m.state.deals[id]; ok && d.GuildID == guildID {
			d.GamesRemaining--
			m.state.deals[id] = d
		}
	}
	for id, d := range m.state.deals {
		if d.GuildID == guildID && d.GamesRemaining <= 0 {
			delete(m.state.deals, id)
		}
	}
	return nil
}

// Predictions.

func (m *MemStore) CreatePrediction(scope *envelope.Scope, q store.Queryer, p *models.Prediction) (int64, error) {
	m.state.nextPredictionID++
	stored := *p
	stored.ID = m.state.nextPredictionID
	m.state.predictions[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemStore) GetPrediction(scope *envelope.Scope, q store.Queryer, guildID, predictionID int64) (*models.Prediction, error) {
	p, ok := m.state.predictions[predictionID]
	if !ok || p.GuildID != guildID {
		return nil, models.ErrPredictionNotFound
	}
	return &p, nil
}

func (m *MemStore) ListPredictions(scope *envelope.Scope, q store.Queryer, guildID int64, status string, limit int) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range m.state.predictions {
		if p.GuildID == guildID && p.Status == status {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) ListExpiredOpenPredictions(scope *envelope.Scope, q store.Queryer, guildID, now int64) ([]models.Prediction, error) {
	var out []models.Prediction
	for _, p := range m.state.predictions {
		if p.GuildID == guildID && p.Status == constants.PredictionStatusOpen && p.ClosesAt <= now {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ClosesAt != out[j].ClosesAt {
			return out[i].ClosesAt < out[j].ClosesAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *MemStore) UpdatePrediction(scope *envelope.Scope, q store.Queryer, p *models.Prediction) error {
	existing, ok := m.state.predictions[p.ID]
	if !ok || existing.GuildID != p.GuildID {
		return models.ErrPredictionNotFound
	}
	m.state.predictions[p.ID] = *p
	return nil
}

func (m *MemStore) InsertPredictionBet(scope *envelope.Scope, q store.Queryer, b *models.PredictionBet) (int64, error) {
	m.state.nextPredictionBetID++
	stored := *b
	stored.ID = m.state.nextPredictionBetID
	m.state.predictionBets[stored.ID] = stored
	return stored.ID, nil
}

func (m *MemStore) GetPredictionBets(scope *envelope.Scope, q store.Queryer, guildID, predictionID int64) ([]models.PredictionBet, error) {
	var out []models.PredictionBet
	for _, b := range m.state.predictionBets {
		if b.GuildID == guildID && b.PredictionID == predictionID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MemStore) GetPredictionPosition(scope *envelope.Scope, q store.Queryer, guildID, predictionID, playerID int64) (*models.PredictionBet, error) {
	bets, _ := m.GetPredictionBets(scope, q, guildID, predictionID)
	for _, b := range bets {
		if b.PlayerID == playerID {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (m *MemStore) PredictionTotals(scope *envelope.Scope, q store.Queryer, guildID, predictionID int64) (models.PredictionOdds, error) {
	var odds models.PredictionOdds
	for _, b := range m.state.predictionBets {
		if b.GuildID != guildID || b.PredictionID != predictionID {
			continue
		}
		odds.Total += b.Amount
		if b.Position {
			odds.YesTotal += b.Amount
		} else {
			odds.NoTotal += b.Amount
		}
	}
	return odds, nil
}

func (m *MemStore) SetPredictionBetPayout(scope *envelope.Scope, q store.Queryer, betID, payout int64) error {
	b, ok := m.state.predictionBets[betID]
	if !ok {
		return models.ErrBetNotFound
	}
	b.Payout = payout
	m.state.predictionBets[betID] = b
	return nil
}

// Disburse proposals.

func (m *MemStore) CreateDisburseProposal(scope *envelope.Scope, q store.Queryer, p models.DisburseProposal) error {
	if _, ok := m.state.proposals[p.GuildID]; ok {
		return models.ErrProposalActive
	}
	m.state.proposals[p.GuildID] = p
	return nil
}

func (m *MemStore) GetActiveDisburseProposal(scope *envelope.Scope, q store.Queryer, guildID int64) (*models.DisburseProposal, error) {
	p, ok := m.state.proposals[guildID]
	if !ok || p.Status != constants.DisburseStatusActive {
		return nil, models.ErrNoActiveProposal
	}
	return &p, nil
}

func (m *MemStore) DeleteDisburseProposal(scope *envelope.Scope, q store.Queryer, guildID int64, proposalID string) error {
	if p, ok := m.state.proposals[guildID]; ok && p.ProposalID == proposalID {
		delete(m.state.proposals, guildID)
	}
	for key := range m.state.disburseVotes {
		if key.guildID == guildID && key.proposalID == proposalID {
			delete(m.state.disburseVotes, key)
		}
	}
	return nil
}

func (m *MemStore) UpsertDisburseVote(scope *envelope.Scope, q store.Queryer, v models.DisburseVote) error {
	m.state.disburseVotes[disburseVoteKey{v.GuildID, v.ProposalID, v.VoterID}] = v
	return nil
}

func (m *MemStore) GetDisburseVotes(scope *envelope.Scope, q store.Queryer, guildID int64, proposalID string) ([]models.DisburseVote, error) {
	var out []models.DisburseVote
	for key, v := range m.state.disburseVotes {
		if key.guildID == guildID && key.proposalID == proposalID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VoterID < out[j].VoterID })
	return out, nil
}

func (m *MemStore) InsertDisburseHistory(scope *envelope.Scope, q store.Queryer, h models.DisburseHistory) error {
	m.state.nextDisburseID++
	h.ID = m.state.nextDisburseID
	m.state.disburseHistory = append(m.state.disburseHistory, h)
	return nil
}

func (m *MemStore) GetDisburseHistory(scope *envelope.Scope, q store.Queryer, guildID int64, limit int) ([]models.DisburseHistory, error) {
	var out []models.DisburseHistory
	for _, h := range m.state.disburseHistory {
		if h.GuildID == guildID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Tips.

func (m *MemStore) InsertTip(scope *envelope.Scope, q store.Queryer, t models.TipTransaction) error {
	m.state.nextTipID++
	t.ID = m.state.nextTipID
	m.state.tips = append(m.state.tips, t)
	return nil
}

func (m *MemStore) GetRecentTips(scope *envelope.Scope, q store.Queryer, guildID int64, limit int) ([]models.TipTransaction, error) {
	var out []models.TipTransaction
	for _, t := range m.state.tips {
		if t.GuildID == guildID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) GetTipsSentSince(scope *envelope.Scope, q store.Queryer, guildID, fromID, since int64) (int64, int, error) {
	var total int64
	count := 0
	for _, t := range m.state.tips {
		if t.GuildID == guildID && t.FromID == fromID && t.CreatedAt >= since {
			total += t.Amount
			count++
		}
	}
	return total, count, nil
}

// Lobby snapshots.

func (m *MemStore) SaveLobbySnapshot(scope *envelope.Scope, q store.Queryer, guildID int64, snapshot interface{}, updatedAt int64) error {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	m.state.snapshots[guildID] = payload
	return nil
}

func (m *MemStore) LoadLobbySnapshot(scope *envelope.Scope, q store.Queryer, guildID int64, into interface{}) (bool, error) {
	payload, ok := m.state.snapshots[guildID]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, into); err != nil {
		return false, err
	}
	return true, nil
}

func (m *MemStore) DeleteLobbySnapshot(scope *envelope.Scope, q store.Queryer, guildID int64) error {
	delete(m.state.snapshots, guildID)
	return nil
}
