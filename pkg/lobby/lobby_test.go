// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package lobby

import (
	"testing"

	. "github.com/onsi/gomega"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/testsetup"
)

func testConfig() *config.Config {
	return &config.Config{
		LobbyReadyThreshold: 10,
		LobbyMaxPlayers:     14,
	}
}

func openLobby() *Lobby {
	return &Lobby{
		GuildID:     1,
		Players:     []int64{1, 2, 3},
		Conditional: []int64{4},
		Waitlist:    []int64{5, 6},
		Status:      constants.LobbyStatusOpen,
	}
}

func TestLobby_Membership(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	l := openLobby()

	g.Expect(l.Open()).To(BeTrue())
	g.Expect(l.Contains(2)).To(BeTrue())
	g.Expect(l.Contains(4)).To(BeFalse())
	g.Expect(l.IsConditional(4)).To(BeTrue())
	g.Expect(l.IsWaitlisted(5)).To(BeTrue())
	g.Expect(l.IsWaitlisted(1)).To(BeFalse())
}

func TestLobby_TotalCountExcludesWaitlist(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	l := openLobby()

	g.Expect(l.TotalCount()).To(Equal(4))
	g.Expect(l.ReadyAt(4)).To(BeTrue())
	g.Expect(l.ReadyAt(5)).To(BeFalse())
}

func TestLobby_MembersKeepJoinOrder(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	l := openLobby()

	g.Expect(l.Members()).To(Equal([]int64{1, 2, 3, 4}))
}

func TestLobby_CoversRoles(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	l := &Lobby{Status: constants.LobbyStatusOpen}
	preferred := make(map[int64][]int)
	// Two players per role, primaries only.
	for role := 1; role <= constants.RoleCount; role++ {
		for seat := 0; seat < 2; seat++ {
			id := int64(role*10 + seat)
			l.Players = append(l.Players, id)
			preferred[id] = []int{role}
		}
	}
	g.Expect(l.CoversRoles(preferred)).To(BeTrue())

	// A secondary preference does not cover the missing primary.
	preferred[10] = []int{2, 1}
	g.Expect(l.CoversRoles(preferred)).To(BeFalse())

	// Players without preferences count toward no role.
	preferred[10] = nil
	g.Expect(l.CoversRoles(preferred)).To(BeFalse())
}

func TestRemove(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)

	g.Expect(remove([]int64{1, 2, 3}, 2)).To(Equal([]int64{1, 3}))
	g.Expect(remove([]int64{1, 2, 3}, 9)).To(Equal([]int64{1, 2, 3}))
	g.Expect(remove(nil, 1)).To(BeEmpty())
}

func TestReadyCheck_Session(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	m := NewManager(testConfig(), nil)

	check := m.StartReadyCheck(scope, 1, []int64{1, 2, 3}, 3, false)
	g.Expect(check.Total).To(Equal([]int64{1, 2, 3}))
	g.Expect(check.DesignatedID).To(Equal(int64(3)))
	g.Expect(check.AllReady()).To(BeFalse())

	_, err := m.MarkReady(scope, 1, 1)
	g.Expect(err).ToNot(HaveOccurred())
	_, err = m.MarkReady(scope, 1, 2)
	g.Expect(err).ToNot(HaveOccurred())

	// Confirming twice is a no-op.
	state, err := m.MarkReady(scope, 1, 1)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(state.ReadyCount()).To(Equal(2))
	g.Expect(state.AllReady()).To(BeFalse())

	state, err = m.MarkReady(scope, 1, 3)
	g.Expect(err).ToNot(HaveOccurred())
	g.Expect(state.AllReady()).To(BeTrue())
}

func TestReadyCheck_RejectsOutsiders(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	m := NewManager(testConfig(), nil)
	m.StartReadyCheck(scope, 1, []int64{1, 2}, 0, true)

	_, err := m.MarkReady(scope, 1, 9)
	g.Expect(err).To(MatchError(models.ErrNotInReadyCheck))

	// A different guild has no session at all.
	_, err = m.MarkReady(scope, 2, 1)
	g.Expect(err).To(MatchError(models.ErrNotInReadyCheck))
}

func TestReadyCheck_StateAndCancel(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	m := NewManager(testConfig(), nil)

	_, ok := m.ReadyState(1)
	g.Expect(ok).To(BeFalse())

	m.StartReadyCheck(scope, 1, []int64{1, 2}, 2, false)
	state, ok := m.ReadyState(1)
	g.Expect(ok).To(BeTrue())
	g.Expect(state.Includes(2)).To(BeTrue())

	g.Expect(m.UpdateDesignated(scope, 1, 1)).To(Succeed())
	state, _ = m.ReadyState(1)
	g.Expect(state.DesignatedID).To(Equal(int64(1)))

	m.CancelReadyCheck(scope, 1)
	_, ok = m.ReadyState(1)
	g.Expect(ok).To(BeFalse())

	g.Expect(m.UpdateDesignated(scope, 1, 1)).To(MatchError(models.ErrNotInReadyCheck))
}

func TestReadyCheck_RestartReplacesSession(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	m := NewManager(testConfig(), nil)
	m.StartReadyCheck(scope, 1, []int64{1, 2}, 0, true)
	_, err := m.MarkReady(scope, 1, 1)
	g.Expect(err).ToNot(HaveOccurred())

	fresh := m.StartReadyCheck(scope, 1, []int64{1, 2, 3}, 0, true)
	g.Expect(fresh.ReadyCount()).To(BeZero())
	g.Expect(fresh.Total).To(HaveLen(3))
}

func TestReadyCheck_CloneIsolation(t *testing.T) {
	g := testsetup.ParallelWithGomega(t)
	scope := g.TestScope

	m := NewManager(testConfig(), nil)
	check := m.StartReadyCheck(scope, 1, []int64{1, 2}, 0, true)

	// Mutating the returned copy must not leak into the session.
	check.Ready[1] = true
	check.Total[0] = 99

	state, _ := m.ReadyState(1)
	g.Expect(state.ReadyCount()).To(BeZero())
	g.Expect(state.Total).To(Equal([]int64{1, 2}))
}
