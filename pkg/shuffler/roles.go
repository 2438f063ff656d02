// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package shuffler

import (
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
)

// rolePerms holds every permutation of roles 1..5, generated once.
// Team role assignment scans all of them for each candidate split.
var rolePerms = buildRolePerms()

func buildRolePerms() [][constants.TeamSize]int {
	perms := make([][constants.TeamSize]int, 0, 120)
	var current [constants.TeamSize]int
	used := [constants.TeamSize + 1]bool{}
	var walk func(depth int)
	walk = func(depth int) {
		if depth == constants.TeamSize {
			perms = append(perms, current)
			return
		}
		for role := 1; role <= constants.RoleCount; role++ {
			if used[role] {
				continue
			}
			used[role] = true
			current[depth] = role
			walk(depth + 1)
			used[role] = false
		}
	}
	walk(0)
	return perms
}

const allRolesMask = (1 << constants.RoleCount) - 1

// roleMask packs a preference list into a bitmask, bit role-1 per role.
// An empty list means the player accepts every role.
func roleMask(roles []int) uint8 {
	if len(roles) == 0 {
		return allRolesMask
	}
	var mask uint8
	for _, r := range roles {
		if r >= 1 && r <= constants.RoleCount {
			mask |= 1 << (r - 1)
		}
	}
	if mask == 0 {
		return allRolesMask
	}
	return mask
}

func onRole(mask uint8, role int) bool {
	return mask&(1<<(role-1)) != 0
}

// teamAssign is one role permutation applied to a candidate team.
type teamAssign struct {
	roles     [constants.TeamSize]int
	off       int
	value     float64
	effByRole [constants.RoleCount + 1]float64
}

// buildAssignments returns up to limit minimum-off-role assignments for
// a team, with team value and per-role effective values precomputed.
// Results are appended into buf, which callers recycle between splits.
func buildAssignments(team []poolPlayer, offRoleMultiplier float64, limit int, buf []teamAssign) []teamAssign {
	minOff := constants.TeamSize + 1
	for _, perm := range rolePerms {
		off := 0
		for i, role := range perm {
			if !onRole(team[i].mask, role) {
				off++
			}
		}
		if off < minOff {
			minOff = off
			if off == 0 {
				break
			}
		}
	}

	assignments := buf[:0]
	for _, perm := range rolePerms {
		off := 0
		for i, role := range perm {
			if !onRole(team[i].mask, role) {
				off++
			}
		}
		if off != minOff {
			continue
		}
		a := teamAssign{roles: perm, off: off}
		for i, role := range perm {
			eff := team[i].value
			if !onRole(team[i].mask, role) {
				eff *= offRoleMultiplier
			}
			a.value += eff
			a.effByRole[role] = eff
		}
		assignments = append(assignments, a)
		if len(assignments) == limit {
			break
		}
	}
	return assignments
}
