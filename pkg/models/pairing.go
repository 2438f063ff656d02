// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

// Pairing accumulates the relationship between two players in a guild.
// Rows are keyed with P1 < P2; directional counters follow that order.
type Pairing struct {
	GuildID       int64
	P1            int64
	P2            int64
	GamesTogether int
	WinsTogether  int
	GamesAgainst  int
	P1WinsAgainst int
}

// TeammateWinRate is wins over games when paired on a team.
func (p Pairing) TeammateWinRate() float64 {
	if p.GamesTogether == 0 {
		return 0
	}
	return float64(p.WinsTogether) / float64(p.GamesTogether)
}

// WinRateAgainst is the win rate of player id over the other across
// opposing games. Unknown ids report zero.
func (p Pairing) WinRateAgainst(id int64) float64 {
	if p.GamesAgainst == 0 {
		return 0
	}
	wins := p.P1WinsAgainst
	if id == p.P2 {
		wins = p.GamesAgainst - p.P1WinsAgainst
	} else if id != p.P1 {
		return 0
	}
	return float64(wins) / float64(p.GamesAgainst)
}

// PairingStat is a query row binding a pairing to one subject player.
type PairingStat struct {
	PlayerID int64
	OtherID  int64
	Games    int
	Wins     int
	WinRate  float64
}

// PairingCounts summarizes how many distinct partners and rivals a
// player has accumulated.
type PairingCounts struct {
	UniqueTeammates int
	UniqueOpponents int
}
