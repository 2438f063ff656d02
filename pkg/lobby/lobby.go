// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package lobby gathers players ahead of a shuffle. Each guild holds
// at most one open lobby with a regular set, a conditional set for
// players who only play if needed, and a first-come waitlist that
// feeds freed slots. Lobbies survive restarts through store snapshots;
// ready checks are session state and do not.
package lobby

import (
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

// Lobby is one guild's player gathering. Membership slices keep join
// order and never hold duplicates; a player sits in at most one of the
// three sets.
type Lobby struct {
	GuildID     int64   `json:"guildId"`
	CreatedBy   int64   `json:"createdBy"`
	CreatedAt   int64   `json:"createdAt"`
	Players     []int64 `json:"players"`
	Conditional []int64 `json:"conditional"`
	Waitlist    []int64 `json:"waitlist"`
	Status      string  `json:"status"`
}

// Open reports whether the lobby still accepts players.
func (l *Lobby) Open() bool {
	return l.Status == constants.LobbyStatusOpen
}

// Contains reports regular membership.
func (l *Lobby) Contains(playerID int64) bool {
	return utils.Contains(l.Players, playerID)
}

// IsConditional reports conditional membership.
func (l *Lobby) IsConditional(playerID int64) bool {
	return utils.Contains(l.Conditional, playerID)
}

// IsWaitlisted reports waitlist membership.
func (l *Lobby) IsWaitlisted(playerID int64) bool {
	return utils.Contains(l.Waitlist, playerID)
}

// TotalCount is the combined regular and conditional membership. The
// waitlist does not count against capacity.
func (l *Lobby) TotalCount() int {
	return len(l.Players) + len(l.Conditional)
}

// ReadyAt reports whether the combined membership meets the shuffle
// threshold.
func (l *Lobby) ReadyAt(threshold int) bool {
	return l.TotalCount() >= threshold
}

// Members returns regular then conditional players in join order.
func (l *Lobby) Members() []int64 {
	members := make([]int64, 0, l.TotalCount())
	members = append(members, l.Players...)
	members = append(members, l.Conditional...)
	return members
}

// CoversRoles reports whether the members' primary roles cover every
// role at least twice, one per team. Players without preferences do
// not count toward any role.
func (l *Lobby) CoversRoles(preferred map[int64][]int) bool {
	counts := make(map[int]int, constants.RoleCount)
	for _, id := range l.Members() {
		roles := preferred[id]
		if len(roles) == 0 {
			continue
		}
		counts[roles[0]]++
	}
	for role := 1; role <= constants.RoleCount; role++ {
		if counts[role] < 2 {
			return false
		}
	}
	return true
}

func remove(ids []int64, playerID int64) []int64 {
	for i, id := range ids {
		if id == playerID {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
