// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package wager

import (
	"reflect"
	"testing"

	"github.com/AccelByte/extend-inhouse-league/pkg/config"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

func blindConfig() *config.Config {
	return &config.Config{
		AutoBlindEnabled:   true,
		AutoBlindThreshold: 50,
		AutoBlindRate:      0.05,
		CharityReducedRate: 0.01,
		BombPotAnte:        10,
		BombPotBlindRate:   0.10,
	}
}

func TestPlanBlinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     func(*config.Config)
		inputs  []BlindInput
		bombPot bool
		want    []BlindPlan
	}{
		{
			name: "normal round stakes five percent",
			inputs: []BlindInput{
				{PlayerID: 1, Side: models.SideRadiant, Balance: 200},
			},
			want: []BlindPlan{
				{PlayerID: 1, Side: models.SideRadiant, Amount: 10},
			},
		},
		{
			name: "below threshold is skipped",
			inputs: []BlindInput{
				{PlayerID: 1, Side: models.SideRadiant, Balance: 49},
				{PlayerID: 2, Side: models.SideDire, Balance: 50},
			},
			want: []BlindPlan{
				{PlayerID: 2, Side: models.SideDire, Amount: 3},
			},
		},
		{
			name: "charity games use the reduced rate with a one coin floor",
			inputs: []BlindInput{
				{PlayerID: 1, Side: models.SideDire, Balance: 60, CharityGames: 1},
			},
			want: []BlindPlan{
				{PlayerID: 1, Side: models.SideDire, Amount: 1},
			},
		},
		{
			name: "bomb pot antes everyone regardless of balance",
			inputs: []BlindInput{
				{PlayerID: 1, Side: models.SideRadiant, Balance: 100},
				{PlayerID: 2, Side: models.SideDire, Balance: -40},
			},
			bombPot: true,
			want: []BlindPlan{
				{PlayerID: 1, Side: models.SideRadiant, Amount: 20},
				{PlayerID: 2, Side: models.SideDire, Amount: 10},
			},
		},
		{
			name: "disabled auto blinds plan nothing",
			cfg:  func(c *config.Config) { c.AutoBlindEnabled = false },
			inputs: []BlindInput{
				{PlayerID: 1, Side: models.SideRadiant, Balance: 500},
			},
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := blindConfig()
			if tt.cfg != nil {
				tt.cfg(cfg)
			}
			got := New(cfg, nil).PlanBlinds(tt.inputs, tt.bombPot)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("PlanBlinds() = %v, want %v", got, tt.want)
			}
		})
	}
}
