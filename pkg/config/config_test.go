// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.LobbyReadyThreshold)
	assert.Equal(t, 14, cfg.LobbyMaxPlayers)
	assert.Equal(t, "glicko", cfg.BalancingRatingSystem)
	assert.Equal(t, int64(3), cfg.StartingBalance)
	assert.Equal(t, int64(500), cfg.MaxDebt)
	assert.Equal(t, 900, cfg.BetLockSeconds)
	assert.Equal(t, 1.0, cfg.HousePayoutMultiplier)
	assert.Equal(t, []int64{2, 3, 5}, cfg.LeverageTiers)
	assert.True(t, cfg.AutoBlindEnabled)
	assert.Equal(t, int64(50), cfg.StakePoolSize)
	assert.Equal(t, 0.10, cfg.SpectatorPlayerCut)
	assert.Equal(t, 3, cfg.MinNonAdminSubmissions)
	assert.Equal(t, 400.0, cfg.MaxRatingSwing)
	assert.Equal(t, 2.0, cfg.OpenSkillMaxDelta)
	assert.Equal(t, 0.10, cfg.FantasyWeightInfluence)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("LOBBY_READY_THRESHOLD", "12")
	t.Setenv("HOUSE_PAYOUT_MULTIPLIER", "0.8")
	t.Setenv("LEVERAGE_TIERS", "2,4")
	t.Setenv("AUTO_BLIND_ENABLED", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 12, cfg.LobbyReadyThreshold)
	assert.Equal(t, 0.8, cfg.HousePayoutMultiplier)
	assert.Equal(t, []int64{2, 4}, cfg.LeverageTiers)
	assert.False(t, cfg.AutoBlindEnabled)
}
