// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/mitchellh/copystructure"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
)

// Side identifies one of the two teams. The zero value means no side.
type Side int

const (
	SideNone    Side = 0
	SideRadiant Side = 1
	SideDire    Side = 2
)

func (s Side) Valid() bool {
	return s == SideRadiant || s == SideDire
}

// Opposite returns the other side. SideNone maps to itself.
func (s Side) Opposite() Side {
	switch s {
	case SideRadiant:
		return SideDire
	case SideDire:
		return SideRadiant
	default:
		return SideNone
	}
}

func (s Side) String() string {
	switch s {
	case SideRadiant:
		return "radiant"
	case SideDire:
		return "dire"
	default:
		return "none"
	}
}

// SideFromString parses the stored side marker.
func SideFromString(s string) Side {
	switch s {
	case "radiant":
		return SideRadiant
	case "dire":
		return SideDire
	default:
		return SideNone
	}
}

// Glicko2Rating is the persisted Glicko-2 triple.
type Glicko2Rating struct {
	Rating     float64 `json:"rating"`
	RD         float64 `json:"rd"`
	Volatility float64 `json:"volatility"`
}

// OpenSkillRating is the persisted OpenSkill pair.
type OpenSkillRating struct {
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
}

// Player is a registered league member scoped to one guild.
type Player struct {
	ID              int64
	GuildID         int64
	Username        string
	SteamID         int64
	Balance         int64
	Wins            int
	Losses          int
	ExclusionHalves int
	Glicko          Glicko2Rating
	OpenSkill       OpenSkillRating
	PreferredRoles  []int
	MainRole        int
	CharityGames    int
	LowestBalance   int64
	LastMatchAt     int64
	FirstCalibrated int64
	CaptainEligible bool
	CreatedAt       int64
}

// Games counts recorded matches.
func (p Player) Games() int {
	return p.Wins + p.Losses
}

func (p Player) InDebt() bool {
	return p.Balance < 0
}

// ExclusionCount converts the stored half-step counter back to bench units.
// A full exclusion adds two halves, a conditional exclusion one.
func (p Player) ExclusionCount() float64 {
	return float64(p.ExclusionHalves) / 2
}

// PrefersRole reports whether role is in the player's preference set.
// Players without preferences accept every role.
func (p Player) PrefersRole(role int) bool {
	if len(p.PreferredRoles) == 0 {
		return true
	}
	for _, r := range p.PreferredRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Calibrated reports Glicko calibration against the configured deviation bar.
func (p Player) Calibrated(calibrationRD float64) bool {
	return p.Glicko.RD <= calibrationRD
}

// Vote is one submitted lifecycle vote on a pending match.
type Vote struct {
	Kind    VoteKind `json:"kind"`
	IsAdmin bool     `json:"isAdmin"`
	CastAt  int64    `json:"castAt"`
}

// VoteKind is the closed set of lifecycle votes.
type VoteKind int

const (
	VoteRadiantWin VoteKind = 1
	VoteDireWin    VoteKind = 2
	VoteAbort      VoteKind = 3
)

func (k VoteKind) Valid() bool {
	return k == VoteRadiantWin || k == VoteDireWin || k == VoteAbort
}

// WinnerSide maps a result vote to the side it backs. Abort maps to SideNone.
func (k VoteKind) WinnerSide() Side {
	switch k {
	case VoteRadiantWin:
		return SideRadiant
	case VoteDireWin:
		return SideDire
	default:
		return SideNone
	}
}

// TeamSeat binds a player to an assigned role on one team.
type TeamSeat struct {
	PlayerID int64   `json:"playerId"`
	Role     int     `json:"role"`
	OffRole  bool    `json:"offRole"`
	Value    float64 `json:"value"`
}

// ExcludedPlayer is a benched pool member. Conditional members earn half
// the exclusion compensation and half an exclusion step.
type ExcludedPlayer struct {
	PlayerID    int64 `json:"playerId"`
	Conditional bool  `json:"conditional"`
}

// PendingMatch is the full lifecycle state between shuffle and record.
// The struct is persisted as the pending row payload and cached in memory.
type PendingMatch struct {
	ID                      int64            `json:"id"`
	GuildID                 int64            `json:"guildId"`
	Radiant                 []TeamSeat       `json:"radiant"`
	Dire                    []TeamSeat       `json:"dire"`
	Excluded                []ExcludedPlayer `json:"excluded"`
	LobbyType               string           `json:"lobbyType"`
	BettingMode             string           `json:"bettingMode"`
	BombPot                 bool             `json:"bombPot"`
	BalancingSystem         string           `json:"balancingSystem"`
	RadiantValue            float64          `json:"radiantValue"`
	DireValue               float64          `json:"direValue"`
	ValueDiff               float64          `json:"valueDiff"`
	GlickoRadiantWinProb    float64          `json:"glickoRadiantWinProb"`
	OpenSkillRadiantWinProb float64          `json:"openskillRadiantWinProb"`
	FirstPick               Side             `json:"firstPick"`
	ShuffleTime             int64            `json:"shuffleTime"`
	BetLockUntil            int64            `json:"betLockUntil"`
	Votes                   map[int64]Vote   `json:"votes"`
	AvoidPairIDs            []int64          `json:"avoidPairIds"`
	PackageDealIDs          []int64          `json:"packageDealIds"`
	MessageID               int64            `json:"messageId"`
	ThreadID                int64            `json:"threadId"`
	CreatedAt               int64            `json:"createdAt"`
}

// TeamOf returns the side a player is seated on, or SideNone.
func (pm *PendingMatch) TeamOf(playerID int64) Side {
	for _, seat := range pm.Radiant {
		if seat.PlayerID == playerID {
			return SideRadiant
		}
	}
	for _, seat := range pm.Dire {
		if seat.PlayerID == playerID {
			return SideDire
		}
	}
	return SideNone
}

// SideIDs returns the player ids seated on one side.
func (pm *PendingMatch) SideIDs(side Side) []int64 {
	switch side {
	case SideRadiant:
		return pie.Map(pm.Radiant, seatPlayerID)
	case SideDire:
		return pie.Map(pm.Dire, seatPlayerID)
	default:
		return nil
	}
}

func seatPlayerID(seat TeamSeat) int64 { return seat.PlayerID }

// ParticipantIDs returns every seated player id, radiant first.
func (pm *PendingMatch) ParticipantIDs() []int64 {
	ids := make([]int64, 0, len(pm.Radiant)+len(pm.Dire))
	ids = append(ids, pm.SideIDs(SideRadiant)...)
	ids = append(ids, pm.SideIDs(SideDire)...)
	return ids
}

// ExcludedIDs returns the benched player ids.
func (pm *PendingMatch) ExcludedIDs() []int64 {
	return pie.Map(pm.Excluded, func(ex ExcludedPlayer) int64 { return ex.PlayerID })
}

// BettingOpen reports whether the wager window is still open at now.
func (pm *PendingMatch) BettingOpen(now time.Time) bool {
	return now.Unix() < pm.BetLockUntil
}

// IsDraft reports whether the pending match came from a draft lobby.
func (pm *PendingMatch) IsDraft() bool {
	return pm.LobbyType == constants.LobbyTypeDraft
}

// Copy returns a deep copy of the pending match.
func (pm *PendingMatch) Copy() *PendingMatch {
	copied, err := copystructure.Copy(pm)
	if err != nil {
		logrus.Warn("failed copy pending match:", err)
		return nil
	}
	copyPending, _ := copied.(*PendingMatch)
	return copyPending
}

// WinProbOf returns the balancing-system win probability for a side.
func (pm *PendingMatch) WinProbOf(side Side) float64 {
	radiant := pm.GlickoRadiantWinProb
	if pm.BalancingSystem == constants.RatingSystemOpenSkill {
		radiant = pm.OpenSkillRadiantWinProb
	}
	if side == SideDire {
		return 1 - radiant
	}
	return radiant
}

// Match is a recorded game. BettingMode and RadiantWinProb are carried
// over from the pending match so corrections can re-run the books.
type Match struct {
	ID              int64
	GuildID         int64
	RadiantIDs      []int64
	DireIDs         []int64
	Winner          Side
	LobbyType       string
	BettingMode     string
	BalancingSystem string
	RadiantWinProb  float64
	Notes           string
	RecordedBy      int64
	CreatedAt       int64
}

// SideIDs returns the recorded roster for one side.
func (m Match) SideIDs(side Side) []int64 {
	switch side {
	case SideRadiant:
		return m.RadiantIDs
	case SideDire:
		return m.DireIDs
	default:
		return nil
	}
}

// MatchParticipant is one seat of a recorded game.
type MatchParticipant struct {
	MatchID       int64
	PlayerID      int64
	GuildID       int64
	Team          Side
	Won           bool
	Role          int
	FantasyPoints *float64
}

// RatingHistory snapshots a player's ratings around one match. Before
// values are the restore point for corrections and the Phase-2 baseline.
type RatingHistory struct {
	ID                  int64
	MatchID             int64
	PlayerID            int64
	GuildID             int64
	Team                Side
	Won                 bool
	RatingBefore        float64
	RatingAfter         float64
	RDBefore            float64
	RDAfter             float64
	VolatilityBefore    float64
	VolatilityAfter     float64
	MuBefore            float64
	MuAfter             float64
	SigmaBefore         float64
	SigmaAfter          float64
	ExpectedTeamWinProb float64
	FantasyPoints       *float64
	FantasyWeight       float64
	CreatedAt           int64
}

// MatchCorrection is the audit row for a reversed result.
type MatchCorrection struct {
	ID          int64
	MatchID     int64
	GuildID     int64
	OldWinner   Side
	NewWinner   Side
	CorrectedBy int64
	CorrectedAt int64
}

// SoftAvoid is a directed request to keep two players on opposite teams.
type SoftAvoid struct {
	ID             int64
	GuildID        int64
	AvoiderID      int64
	AvoidedID      int64
	GamesRemaining int
	CreatedAt      int64
}

// PackageDeal is a purchased request to keep two players on the same team.
type PackageDeal struct {
	ID             int64
	GuildID        int64
	BuyerID        int64
	PartnerID      int64
	GamesRemaining int
	CostPaid       int64
	CreatedAt      int64
}
