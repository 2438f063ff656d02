// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

// Manager keeps each guild's lobby in memory and mirrors every change
// through the store so restarts recover open lobbies. Ready checks
// live beside the lobby but are never persisted.
//
// All methods return copies; callers never share memory with the
// manager.
type Manager struct {
	cfg *config.Config
	st  store.API

	mu      sync.Mutex
	lobbies map[int64]*Lobby
	checks  map[int64]*ReadyCheck
}

func NewManager(cfg *config.Config, st store.API) *Manager {
	return &Manager{
		cfg:     cfg,
		st:      st,
		lobbies: make(map[int64]*Lobby),
		checks:  make(map[int64]*ReadyCheck),
	}
}

// Join places a player in the regular set, moving them out of the
// conditional set or waitlist when present. A full lobby rejects
// every entry into the counted sets, including switches.
func (m *Manager) Join(scope *envelope.Scope, guildID, playerID int64) (*Lobby, error) {
	scope = scope.NewChildScope("Lobby.Join")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.getOrCreateLocked(scope, guildID, playerID)
	if err != nil {
		return nil, err
	}
	if l.Contains(playerID) {
		return nil, models.ErrAlreadyInLobby
	}
	if l.TotalCount() >= m.cfg.LobbyMaxPlayers {
		return nil, models.ErrLobbyFull
	}
	l.Conditional = remove(l.Conditional, playerID)
	l.Waitlist = remove(l.Waitlist, playerID)
	l.Players = append(l.Players, playerID)
	if err := m.persistLocked(scope, l); err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"total":    l.TotalCount(),
	}).Info("player joined lobby")
	return l.clone(), nil
}

// JoinConditional places a player in the conditional set, the bench of
// players who only play when the pool would otherwise fall short.
func (m *Manager) JoinConditional(scope *envelope.Scope, guildID, playerID int64) (*Lobby, error) {
	scope = scope.NewChildScope("Lobby.JoinConditional")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.getOrCreateLocked(scope, guildID, playerID)
	if err != nil {
		return nil, err
	}
	if l.IsConditional(playerID) {
		return nil, models.ErrAlreadyInLobby
	}
	if l.TotalCount() >= m.cfg.LobbyMaxPlayers {
		return nil, models.ErrLobbyFull
	}
	l.Players = remove(l.Players, playerID)
	l.Waitlist = remove(l.Waitlist, playerID)
	l.Conditional = append(l.Conditional, playerID)
	if err := m.persistLocked(scope, l); err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"total":    l.TotalCount(),
	}).Info("player joined lobby as conditional")
	return l.clone(), nil
}

// JoinWaitlist queues a player behind a full lobby. The first waiting
// player is promoted into the regular set whenever a slot frees.
func (m *Manager) JoinWaitlist(scope *envelope.Scope, guildID, playerID int64) (*Lobby, error) {
	scope = scope.NewChildScope("Lobby.JoinWaitlist")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.getOrCreateLocked(scope, guildID, playerID)
	if err != nil {
		return nil, err
	}
	if l.Contains(playerID) || l.IsConditional(playerID) || l.IsWaitlisted(playerID) {
		return nil, models.ErrAlreadyInLobby
	}
	l.Waitlist = append(l.Waitlist, playerID)
	if err := m.persistLocked(scope, l); err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"position": len(l.Waitlist),
	}).Info("player joined waitlist")
	return l.clone(), nil
}

// Leave removes a player from whichever set holds them and promotes
// the head of the waitlist into any freed capacity.
func (m *Manager) Leave(scope *envelope.Scope, guildID, playerID int64) (*Lobby, error) {
	scope = scope.NewChildScope("Lobby.Leave")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loadLocked(scope, guildID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, models.ErrLobbyNotFound
	}
	switch {
	case l.Contains(playerID):
		l.Players = remove(l.Players, playerID)
	case l.IsConditional(playerID):
		l.Conditional = remove(l.Conditional, playerID)
	case l.IsWaitlisted(playerID):
		l.Waitlist = remove(l.Waitlist, playerID)
	default:
		return nil, models.ErrNotInLobby
	}
	promoted := m.promoteLocked(l)
	if err := m.persistLocked(scope, l); err != nil {
		return nil, err
	}

	fields := logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"total":    l.TotalCount(),
	}
	if promoted != 0 {
		fields["promoted"] = promoted
	}
	scope.Log.WithFields(fields).Info("player left lobby")
	return l.clone(), nil
}

// promoteLocked moves the first waiting player into the regular set
// when capacity allows. Returns the promoted id, zero when none.
func (m *Manager) promoteLocked(l *Lobby) int64 {
	if len(l.Waitlist) == 0 || l.TotalCount() >= m.cfg.LobbyMaxPlayers {
		return 0
	}
	next := l.Waitlist[0]
	l.Waitlist = l.Waitlist[1:]
	l.Players = append(l.Players, next)
	return next
}

// Get returns the guild's open lobby.
func (m *Manager) Get(scope *envelope.Scope, guildID int64) (*Lobby, error) {
	scope = scope.NewChildScope("Lobby.Get")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	l, err := m.loadLocked(scope, guildID)
	if err != nil {
		return nil, err
	}
	if l == nil {
		return nil, models.ErrLobbyNotFound
	}
	return l.clone(), nil
}

// Ready reports whether the guild's lobby meets the shuffle threshold.
func (m *Manager) Ready(scope *envelope.Scope, guildID int64) (bool, error) {
	l, err := m.Get(scope, guildID)
	if err != nil {
		return false, err
	}
	return l.ReadyAt(m.cfg.LobbyReadyThreshold), nil
}

// Reset closes and discards the guild's lobby along with any active
// ready check. Resetting a guild without a lobby is a no-op.
func (m *Manager) Reset(scope *envelope.Scope, guildID int64) error {
	scope = scope.NewChildScope("Lobby.Reset")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	if l := m.lobbies[guildID]; l != nil {
		l.Status = constants.LobbyStatusClosed
	}
	delete(m.lobbies, guildID)
	delete(m.checks, guildID)
	if err := m.st.DeleteLobbySnapshot(scope, m.st.DB(), guildID); err != nil {
		return err
	}

	scope.Log.WithFields(logrus.Fields{"guildID": guildID}).Info("lobby reset")
	return nil
}

// getOrCreateLocked returns the guild's open lobby, restoring a
// persisted one or opening a fresh one as needed.
func (m *Manager) getOrCreateLocked(scope *envelope.Scope, guildID, creatorID int64) (*Lobby, error) {
	l, err := m.loadLocked(scope, guildID)
	if err != nil {
		return nil, err
	}
	if l != nil {
		return l, nil
	}
	l = &Lobby{
		GuildID:   guildID,
		CreatedBy: creatorID,
		CreatedAt: time.Now().Unix(),
		Status:    constants.LobbyStatusOpen,
	}
	m.lobbies[guildID] = l
	return l, nil
}

// loadLocked returns the cached open lobby, falling back to the store
// snapshot. Returns nil when the guild has no open lobby.
func (m *Manager) loadLocked(scope *envelope.Scope, guildID int64) (*Lobby, error) {
	if l := m.lobbies[guildID]; l != nil {
		if l.Open() {
			return l, nil
		}
		delete(m.lobbies, guildID)
		return nil, nil
	}
	var snapshot Lobby
	found, err := m.st.LoadLobbySnapshot(scope, m.st.DB(), guildID, &snapshot)
	if err != nil {
		return nil, err
	}
	if !found || !snapshot.Open() {
		return nil, nil
	}
	m.lobbies[guildID] = &snapshot
	return &snapshot, nil
}

func (m *Manager) persistLocked(scope *envelope.Scope, l *Lobby) error {
	return m.st.SaveLobbySnapshot(scope, m.st.DB(), l.GuildID, l, time.Now().Unix())
}

func (l *Lobby) clone() *Lobby {
	c := *l
	c.Players = append([]int64(nil), l.Players...)
	c.Conditional = append([]int64(nil), l.Conditional...)
	c.Waitlist = append([]int64(nil), l.Waitlist...)
	return &c
}
