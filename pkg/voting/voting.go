// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

// Package voting tallies result and abort votes on pending matches.
package voting

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/matchstate"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// Service serializes vote mutations through the match-state lock and
// persists the vote map after every change.
type Service struct {
	cfg   *config.Config
	state *matchstate.Tracker
}

func New(cfg *config.Config, state *matchstate.Tracker) *Service {
	return &Service{cfg: cfg, state: state}
}

// Outcome describes the tally after one vote was recorded.
type Outcome struct {
	PendingMatchID int64
	Kind           models.VoteKind
	Winner         models.Side
	Actionable     bool
	Agreeing       int
	Required       int
	ByAdmin        bool
}

// CastVote records one vote. A voter may repeat their earlier choice but
// never change it. An admin vote is actionable immediately, non-admin
// votes once enough of them agree.
func (s *Service) CastVote(scope *envelope.Scope, guildID, pendingMatchID, voterID int64, kind models.VoteKind, isAdmin bool) (*Outcome, error) {
	if !kind.Valid() {
		return nil, models.ErrInvalidResult
	}
	var out *Outcome
	err := s.state.WithLock(func() error {
		pm, err := s.state.GetLocked(scope, guildID, pendingMatchID)
		if err != nil {
			return err
		}
		if prev, ok := pm.Votes[voterID]; ok && prev.Kind != kind {
			return models.ErrVoteConflict
		}
		if pm.Votes == nil {
			pm.Votes = make(map[int64]models.Vote)
		}
		pm.Votes[voterID] = models.Vote{Kind: kind, IsAdmin: isAdmin, CastAt: time.Now().Unix()}
		if err := s.state.PersistLocked(scope, pm); err != nil {
			return err
		}
		agreeing := countNonAdmin(pm.Votes, kind)
		out = &Outcome{
			PendingMatchID: pm.ID,
			Kind:           kind,
			Winner:         kind.WinnerSide(),
			Actionable:     isAdmin || agreeing >= s.cfg.MinNonAdminSubmissions,
			Agreeing:       agreeing,
			Required:       s.cfg.MinNonAdminSubmissions,
			ByAdmin:        isAdmin,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Actionable {
		scope.Log.WithFields(logrus.Fields{
			"guildID":        guildID,
			"pendingMatchID": out.PendingMatchID,
			"kind":           out.Kind,
			"byAdmin":        out.ByAdmin,
		}).Info("vote actionable")
	}
	return out, nil
}

// PendingResult reports the actionable result winner, if any. Admin
// votes win over tallies.
func (s *Service) PendingResult(pm *models.PendingMatch) (models.Side, bool) {
	for _, v := range pm.Votes {
		if v.IsAdmin && v.Kind.WinnerSide() != models.SideNone {
			return v.Kind.WinnerSide(), true
		}
	}
	for _, kind := range []models.VoteKind{models.VoteRadiantWin, models.VoteDireWin} {
		if countNonAdmin(pm.Votes, kind) >= s.cfg.MinNonAdminSubmissions {
			return kind.WinnerSide(), true
		}
	}
	return models.SideNone, false
}

// PendingAbort reports whether an abort is actionable.
func (s *Service) PendingAbort(pm *models.PendingMatch) bool {
	for _, v := range pm.Votes {
		if v.IsAdmin && v.Kind == models.VoteAbort {
			return true
		}
	}
	return countNonAdmin(pm.Votes, models.VoteAbort) >= s.cfg.MinNonAdminSubmissions
}

func countNonAdmin(votes map[int64]models.Vote, kind models.VoteKind) int {
	n := 0
	for _, v := range votes {
		if !v.IsAdmin && v.Kind == kind {
			n++
		}
	}
	return n
}
