// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package wager

import (
	"math"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// BetPayout pairs one primary-pool bet with its settlement credit.
type BetPayout struct {
	Bet      models.Bet
	Payout   int64
	Won      bool
	Refunded bool
}

// Status maps the payout outcome onto the stored bet status.
func (p BetPayout) Status() string {
	switch {
	case p.Refunded:
		return constants.BetStatusRefunded
	case p.Won:
		return constants.BetStatusWon
	default:
		return constants.BetStatusLost
	}
}

// PoolSettlement is the outcome of settling the primary pool.
type PoolSettlement struct {
	Payouts      []BetPayout
	Total        int64
	WinningTotal int64
	Refunded     bool
}

// SettlePool resolves parimutuel bets against the leveraged totals. When
// nothing backs the winner every stake is refunded instead.
func SettlePool(bets []models.Bet, winner models.Side) PoolSettlement {
	out := PoolSettlement{Payouts: make([]BetPayout, 0, len(bets))}
	if len(bets) == 0 {
		return out
	}
	for _, b := range bets {
		out.Total += b.EffectiveStake()
		if b.Side == winner {
			out.WinningTotal += b.EffectiveStake()
		}
	}
	if out.WinningTotal == 0 {
		out.Refunded = true
		for _, b := range bets {
			out.Payouts = append(out.Payouts, BetPayout{Bet: b, Payout: b.EffectiveStake(), Refunded: true})
		}
		return out
	}
	for _, b := range bets {
		p := BetPayout{Bet: b}
		if b.Side == winner {
			p.Won = true
			p.Payout = ceilDiv(b.EffectiveStake()*out.Total, out.WinningTotal)
		}
		out.Payouts = append(out.Payouts, p)
	}
	return out
}

// SettleHouse pays each winning stake times 1+multiplier. Losing stakes
// are burned rather than redistributed.
func SettleHouse(bets []models.Bet, winner models.Side, multiplier float64) PoolSettlement {
	out := PoolSettlement{Payouts: make([]BetPayout, 0, len(bets))}
	for _, b := range bets {
		out.Total += b.EffectiveStake()
		p := BetPayout{Bet: b}
		if b.Side == winner {
			out.WinningTotal += b.EffectiveStake()
			p.Won = true
			p.Payout = int64(float64(b.EffectiveStake()) * (1 + multiplier))
		}
		out.Payouts = append(out.Payouts, p)
	}
	return out
}

// StakeState tracks the combined draft stake pool: synthetic
// auto-liquidity plus optional player bets.
type StakeState struct {
	RadiantAuto float64
	DireAuto    float64
	RadiantBets int64
	DireBets    int64
}

func (s StakeState) Total() float64 {
	return s.RadiantAuto + s.DireAuto + float64(s.RadiantBets+s.DireBets)
}

func (s StakeState) SideTotal(side models.Side) float64 {
	switch side {
	case models.SideRadiant:
		return s.RadiantAuto + float64(s.RadiantBets)
	case models.SideDire:
		return s.DireAuto + float64(s.DireBets)
	default:
		return 0
	}
}

// Multiplier returns total/side for the combined pool, zero for an
// empty side.
func (s StakeState) Multiplier(side models.Side) float64 {
	sideTotal := s.SideTotal(side)
	if sideTotal <= 0 {
		return 0
	}
	return s.Total() / sideTotal
}

func clampWinProb(p float64, cfg *config.Config) float64 {
	return math.Min(cfg.StakeWinProbMax, math.Max(cfg.StakeWinProbMin, p))
}

// AutoLiquidity splits the synthetic pool across the sides by opposite
// win probability so the underdog carries more liquidity and starting
// odds come out near fair.
func AutoLiquidity(radiantWinProb float64, cfg *config.Config) (radiantAuto, direAuto float64) {
	p := clampWinProb(radiantWinProb, cfg)
	total := float64(cfg.StakePoolSize)
	return total * (1 - p), total * p
}

// winnerProb is the clamped probability of the side that actually won.
func winnerProb(radiantWinProb float64, winner models.Side, cfg *config.Config) float64 {
	p := clampWinProb(radiantWinProb, cfg)
	if winner == models.SideDire {
		p = 1 - p
	}
	return p
}

// MintedPayout is the per-player fate payout when a side wins. Underdog
// wins mint more.
func MintedPayout(radiantWinProb float64, winner models.Side, cfg *config.Config) int64 {
	return int64(math.Round(float64(cfg.StakePerPlayer) / winnerProb(radiantWinProb, winner, cfg)))
}

// StakePayout pairs one drafted seat with its minted credit.
type StakePayout struct {
	Row    models.StakeRow
	Payout int64
	Won    bool
}

// StakeSettlement resolves the draft stake rows.
type StakeSettlement struct {
	Payouts    []StakePayout
	PerWinner  int64
	WinnerProb float64
}

// SettleStakes mints the fate payout for participants on the winning
// team. Excluded players are paid regardless of the result so sitting
// out never costs them.
func SettleStakes(rows []models.StakeRow, winner models.Side, radiantWinProb float64, cfg *config.Config) StakeSettlement {
	minted := MintedPayout(radiantWinProb, winner, cfg)
	out := StakeSettlement{
		PerWinner:  minted,
		WinnerProb: winnerProb(radiantWinProb, winner, cfg),
		Payouts:    make([]StakePayout, 0, len(rows)),
	}
	for _, row := range rows {
		p := StakePayout{Row: row}
		if row.IsExcluded || row.Team == winner {
			p.Won = true
			p.Payout = minted
		}
		out.Payouts = append(out.Payouts, p)
	}
	return out
}

// PlayerPoolPayout pairs one optional draft bet with its credit.
type PlayerPoolPayout struct {
	Bet    models.PlayerPoolBet
	Payout int64
	Won    bool
}

// SettlePlayerPool resolves optional draft bets parimutuel against the
// combined auto plus player pool.
func SettlePlayerPool(bets []models.PlayerPoolBet, winner models.Side, state StakeState) []PlayerPoolPayout {
	mult := state.Multiplier(winner)
	out := make([]PlayerPoolPayout, 0, len(bets))
	for _, b := range bets {
		p := PlayerPoolPayout{Bet: b}
		if b.Side == winner {
			p.Won = true
			p.Payout = int64(float64(b.Amount) * mult)
		}
		out = append(out, p)
	}
	return out
}

// SpectatorPayout pairs one spectator bet with its credit.
type SpectatorPayout struct {
	Bet    models.SpectatorBet
	Payout int64
	Won    bool
}

// SpectatorSettlement splits the spectator pool between winning bettors
// and the winning seats.
type SpectatorSettlement struct {
	Payouts          []SpectatorPayout
	Total            int64
	WinningTotal     int64
	ParticipantBonus int64
	BonusEach        int64
}

// SettleSpectator pays winning bettors from the bettor share of the pool
// and splits the participant cut evenly across the winning seats,
// remainder unsplit. With no winning bettor the whole pool goes to the
// participants.
func SettleSpectator(bets []models.SpectatorBet, winner models.Side, winnerSeats int, playerCut float64) SpectatorSettlement {
	out := SpectatorSettlement{Payouts: make([]SpectatorPayout, 0, len(bets))}
	for _, b := range bets {
		out.Total += b.Amount
		if b.Side == winner {
			out.WinningTotal += b.Amount
		}
	}
	if out.Total == 0 {
		return out
	}
	bonus := int64(float64(out.Total) * playerCut)
	multiplier := 0.0
	if out.WinningTotal > 0 {
		multiplier = float64(out.Total) * (1 - playerCut) / float64(out.WinningTotal)
	} else {
		bonus = out.Total
	}
	for _, b := range bets {
		p := SpectatorPayout{Bet: b}
		if b.Side == winner {
			p.Won = true
			p.Payout = int64(float64(b.Amount) * multiplier)
		}
		out.Payouts = append(out.Payouts, p)
	}
	out.ParticipantBonus = bonus
	if winnerSeats > 0 && bonus > 0 {
		out.BonusEach = bonus / int64(winnerSeats)
	}
	return out
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
