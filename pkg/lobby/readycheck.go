// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

// ReadyCheck is one guild's confirmation session ahead of a shuffle.
// When no admin sits in the lobby a designated member holds the
// permission to drop unresponsive players. Sessions are in-memory
// only; a restart or lobby reset clears them.
type ReadyCheck struct {
	GuildID      int64
	Total        []int64
	Ready        map[int64]bool
	DesignatedID int64
	AdminPresent bool
	StartedAt    int64
}

// ReadyCount is the number of confirmed players.
func (c *ReadyCheck) ReadyCount() int {
	return len(c.Ready)
}

// AllReady reports whether every member has confirmed.
func (c *ReadyCheck) AllReady() bool {
	return len(c.Ready) >= len(c.Total)
}

// Includes reports session membership.
func (c *ReadyCheck) Includes(playerID int64) bool {
	return utils.Contains(c.Total, playerID)
}

func (c *ReadyCheck) clone() *ReadyCheck {
	d := *c
	d.Total = append([]int64(nil), c.Total...)
	d.Ready = make(map[int64]bool, len(c.Ready))
	for id := range c.Ready {
		d.Ready[id] = true
	}
	return &d
}

// StartReadyCheck opens a confirmation session over the given members,
// replacing any session already running for the guild. designatedID is
// zero when an admin is present to moderate instead.
func (m *Manager) StartReadyCheck(scope *envelope.Scope, guildID int64, playerIDs []int64, designatedID int64, adminPresent bool) *ReadyCheck {
	scope = scope.NewChildScope("Lobby.StartReadyCheck")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	check := &ReadyCheck{
		GuildID:      guildID,
		Total:        append([]int64(nil), playerIDs...),
		Ready:        make(map[int64]bool),
		DesignatedID: designatedID,
		AdminPresent: adminPresent,
		StartedAt:    time.Now().Unix(),
	}
	m.checks[guildID] = check

	scope.Log.WithFields(logrus.Fields{
		"guildID":      guildID,
		"players":      len(playerIDs),
		"designatedID": designatedID,
		"adminPresent": adminPresent,
	}).Info("ready check started")
	return check.clone()
}

// MarkReady confirms one member of the active session. Confirming
// twice is a no-op.
func (m *Manager) MarkReady(scope *envelope.Scope, guildID, playerID int64) (*ReadyCheck, error) {
	scope = scope.NewChildScope("Lobby.MarkReady")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	check := m.checks[guildID]
	if check == nil || !check.Includes(playerID) {
		return nil, models.ErrNotInReadyCheck
	}
	check.Ready[playerID] = true

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"ready":    check.ReadyCount(),
		"total":    len(check.Total),
	}).Info("player marked ready")
	return check.clone(), nil
}

// ReadyState returns the active session, ok false when none runs.
func (m *Manager) ReadyState(guildID int64) (*ReadyCheck, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	check := m.checks[guildID]
	if check == nil {
		return nil, false
	}
	return check.clone(), true
}

// UpdateDesignated replaces the designated member mid-session, used
// when the current one goes unresponsive.
func (m *Manager) UpdateDesignated(scope *envelope.Scope, guildID, playerID int64) error {
	scope = scope.NewChildScope("Lobby.UpdateDesignated")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	check := m.checks[guildID]
	if check == nil {
		return models.ErrNotInReadyCheck
	}
	old := check.DesignatedID
	check.DesignatedID = playerID

	scope.Log.WithFields(logrus.Fields{
		"guildID": guildID,
		"from":    old,
		"to":      playerID,
	}).Info("designated player updated")
	return nil
}

// CancelReadyCheck drops the active session, if any.
func (m *Manager) CancelReadyCheck(scope *envelope.Scope, guildID int64) {
	scope = scope.NewChildScope("Lobby.CancelReadyCheck")
	defer scope.Finish()

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.checks[guildID]; !ok {
		return
	}
	delete(m.checks, guildID)
	scope.Log.WithFields(logrus.Fields{"guildID": guildID}).Info("ready check cancelled")
}
