// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package matchstate caches pending matches per guild in front of the
// store. A single mutex guards the cache; callers that read, decide and
// write in one critical section wrap it in WithLock and use the Locked
// accessors, everything else goes through the plain accessors which lock
// internally and hand out deep copies.
package matchstate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/store"
)

type Tracker struct {
	mu     sync.Mutex
	st     store.API
	cache  map[int64]map[int64]*models.PendingMatch
	loaded map[int64]bool
}

func New(st store.API) *Tracker {
	return &Tracker{
		st:     st,
		cache:  make(map[int64]map[int64]*models.PendingMatch),
		loaded: make(map[int64]bool),
	}
}

// WithLock runs fn while holding the state mutex. The Locked accessors
// must only be called from inside fn.
func (t *Tracker) WithLock(fn func() error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn()
}

// ensureLoadedLocked promotes persisted pending rows into the cache the
// first time a guild is touched, so state survives a restart.
func (t *Tracker) ensureLoadedLocked(scope *envelope.Scope, guildID int64) error {
	if t.loaded[guildID] {
		return nil
	}
	rows, err := t.st.GetPendingMatches(scope, t.st.DB(), guildID)
	if err != nil {
		return fmt.Errorf("load pending matches: %w", err)
	}
	guild := make(map[int64]*models.PendingMatch, len(rows))
	for _, pm := range rows {
		guild[pm.ID] = pm
	}
	t.cache[guildID] = guild
	t.loaded[guildID] = true
	if len(rows) > 0 {
		scope.Log.WithFields(logrus.Fields{
			"guildID": guildID,
			"count":   len(rows),
		}).Info("pending matches restored")
	}
	return nil
}

// GetLocked returns the live cached pending match. pendingMatchID zero
// resolves to the guild's only pending match and fails with
// ErrAmbiguousPending when several exist. Mutations made through the
// returned pointer are not persisted until PersistLocked.
func (t *Tracker) GetLocked(scope *envelope.Scope, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	if err := t.ensureLoadedLocked(scope, guildID); err != nil {
		return nil, err
	}
	guild := t.cache[guildID]
	if pendingMatchID != 0 {
		pm, ok := guild[pendingMatchID]
		if !ok {
			return nil, models.ErrNoPendingMatch
		}
		return pm, nil
	}
	switch len(guild) {
	case 0:
		return nil, models.ErrNoPendingMatch
	case 1:
		for _, pm := range guild {
			return pm, nil
		}
	}
	return nil, models.ErrAmbiguousPending
}

// GetAllLocked returns the live cached pending matches ordered by id.
func (t *Tracker) GetAllLocked(scope *envelope.Scope, guildID int64) ([]*models.PendingMatch, error) {
	if err := t.ensureLoadedLocked(scope, guildID); err != nil {
		return nil, err
	}
	guild := t.cache[guildID]
	out := make([]*models.PendingMatch, 0, len(guild))
	for _, pm := range guild {
		out = append(out, pm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetForPlayerLocked returns the oldest pending match seating the player.
func (t *Tracker) GetForPlayerLocked(scope *envelope.Scope, guildID, playerID int64) (*models.PendingMatch, error) {
	all, err := t.GetAllLocked(scope, guildID)
	if err != nil {
		return nil, err
	}
	for _, pm := range all {
		if pm.TeamOf(playerID) != models.SideNone {
			return pm, nil
		}
	}
	return nil, models.ErrNoPendingMatch
}

// PersistLocked writes the pending match through to the store and caches
// it. The first save assigns the pending match id.
func (t *Tracker) PersistLocked(scope *envelope.Scope, pm *models.PendingMatch) error {
	if err := t.ensureLoadedLocked(scope, pm.GuildID); err != nil {
		return err
	}
	if pm.ID == 0 {
		id, err := t.st.SavePendingMatch(scope, t.st.DB(), pm)
		if err != nil {
			return err
		}
		pm.ID = id
	} else {
		if err := t.st.UpdatePendingMatch(scope, t.st.DB(), pm); err != nil {
			return err
		}
	}
	t.cache[pm.GuildID][pm.ID] = pm
	return nil
}

// ClearLocked deletes one pending match, or every pending match of the
// guild when pendingMatchID is zero. Returns how many were cleared.
func (t *Tracker) ClearLocked(scope *envelope.Scope, guildID, pendingMatchID int64) (int64, error) {
	if err := t.ensureLoadedLocked(scope, guildID); err != nil {
		return 0, err
	}
	if pendingMatchID == 0 {
		cleared, err := t.st.DeleteAllPendingMatches(scope, t.st.DB(), guildID)
		if err != nil {
			return 0, err
		}
		t.cache[guildID] = make(map[int64]*models.PendingMatch)
		return cleared, nil
	}
	if err := t.st.DeletePendingMatch(scope, t.st.DB(), guildID, pendingMatchID); err != nil {
		return 0, err
	}
	delete(t.cache[guildID], pendingMatchID)
	return 1, nil
}

// ConsumeLocked removes the pending match from cache and store and
// returns it. pendingMatchID zero resolves like GetLocked.
func (t *Tracker) ConsumeLocked(scope *envelope.Scope, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	pm, err := t.GetLocked(scope, guildID, pendingMatchID)
	if err != nil {
		return nil, err
	}
	if err := t.st.DeletePendingMatch(scope, t.st.DB(), guildID, pm.ID); err != nil {
		return nil, err
	}
	delete(t.cache[guildID], pm.ID)
	return pm, nil
}

// DropLocked evicts cache entries without touching the store. Callers
// that delete pending rows inside their own transaction sync the cache
// with this after commit. pendingMatchID zero drops the whole guild.
func (t *Tracker) DropLocked(guildID, pendingMatchID int64) {
	guild, ok := t.cache[guildID]
	if !ok {
		return
	}
	if pendingMatchID == 0 {
		t.cache[guildID] = make(map[int64]*models.PendingMatch)
		return
	}
	delete(guild, pendingMatchID)
}

// CacheLocked adopts an already-persisted pending match into the cache.
// The companion to DropLocked for callers that insert the row inside
// their own transaction.
func (t *Tracker) CacheLocked(scope *envelope.Scope, pm *models.PendingMatch) error {
	if err := t.ensureLoadedLocked(scope, pm.GuildID); err != nil {
		return err
	}
	t.cache[pm.GuildID][pm.ID] = pm
	return nil
}

// Get returns a deep copy of one pending match.
func (t *Tracker) Get(scope *envelope.Scope, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	var out *models.PendingMatch
	err := t.WithLock(func() error {
		pm, err := t.GetLocked(scope, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		out = pm.Copy()
		return nil
	})
	return out, err
}

// GetAll returns deep copies of every pending match in the guild.
func (t *Tracker) GetAll(scope *envelope.Scope, guildID int64) ([]*models.PendingMatch, error) {
	var out []*models.PendingMatch
	err := t.WithLock(func() error {
		all, err := t.GetAllLocked(scope, guildID)
		if err != nil {
			return err
		}
		out = make([]*models.PendingMatch, 0, len(all))
		for _, pm := range all {
			out = append(out, pm.Copy())
		}
		return nil
	})
	return out, err
}

// GetForPlayer returns a deep copy of the pending match seating the player.
func (t *Tracker) GetForPlayer(scope *envelope.Scope, guildID, playerID int64) (*models.PendingMatch, error) {
	var out *models.PendingMatch
	err := t.WithLock(func() error {
		pm, err := t.GetForPlayerLocked(scope, guildID, playerID)
		if err != nil {
			return err
		}
		out = pm.Copy()
		return nil
	})
	return out, err
}

// Persist saves the pending match, assigning its id on first save.
func (t *Tracker) Persist(scope *envelope.Scope, pm *models.PendingMatch) error {
	return t.WithLock(func() error {
		return t.PersistLocked(scope, pm)
	})
}

// Adopt caches an already-persisted pending match.
func (t *Tracker) Adopt(scope *envelope.Scope, pm *models.PendingMatch) error {
	return t.WithLock(func() error {
		return t.CacheLocked(scope, pm)
	})
}

// Drop evicts cache entries without touching the store.
func (t *Tracker) Drop(guildID, pendingMatchID int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.DropLocked(guildID, pendingMatchID)
}

// Clear removes one pending match, or all of them when pendingMatchID is
// zero, and returns how many were cleared.
func (t *Tracker) Clear(scope *envelope.Scope, guildID, pendingMatchID int64) (int64, error) {
	var cleared int64
	err := t.WithLock(func() error {
		var clearErr error
		cleared, clearErr = t.ClearLocked(scope, guildID, pendingMatchID)
		return clearErr
	})
	return cleared, err
}

// Consume removes and returns the pending match in one step.
func (t *Tracker) Consume(scope *envelope.Scope, guildID, pendingMatchID int64) (*models.PendingMatch, error) {
	var out *models.PendingMatch
	err := t.WithLock(func() error {
		pm, err := t.ConsumeLocked(scope, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		out = pm
		return nil
	})
	return out, err
}
