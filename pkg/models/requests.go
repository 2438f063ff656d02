// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package models

import (
	validator "github.com/AccelByte/justice-input-validation-go"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
)

// RegisterRequest enrolls one guild member. InitialMMR is optional and
// only seeds the rating systems; zero means the default placement.
type RegisterRequest struct {
	GuildID        int64  `json:"guild_id"`
	PlayerID       int64  `json:"player_id"`
	Username       string `json:"username"                  valid:"stringlength(1|32)"`
	SteamID        int64  `json:"steam_id,omitempty"        optional:"true"`
	InitialMMR     int64  `json:"initial_mmr,omitempty"     optional:"true" valid:"range(0|12000)"`
	PreferredRoles []int  `json:"preferred_roles,omitempty" optional:"true"`
	MainRole       int    `json:"main_role,omitempty"       optional:"true" valid:"range(0|5)"`
}

func (reqData *RegisterRequest) Validate() error {
	if _, err := validator.ValidateStruct(reqData); err != nil {
		return err
	}
	if reqData.GuildID < 0 {
		return ErrInvalidGuild
	}
	if reqData.PlayerID <= 0 {
		return ValidationErrorPlayerID
	}
	if reqData.SteamID < 0 {
		return ErrInvalidSteamID
	}
	for _, role := range reqData.PreferredRoles {
		if role < constants.RoleCarry || role > constants.RoleHardSupport {
			return ErrInvalidRoles
		}
	}
	return nil
}

// ShuffleRequest asks for balanced teams from a pool of registered
// players. ConditionalIDs marks members who joined knowing they might
// ride the bench; they earn half the exclusion compensation.
type ShuffleRequest struct {
	GuildID        int64   `json:"guild_id"`
	PlayerIDs      []int64 `json:"player_ids"`
	ConditionalIDs []int64 `json:"conditional_ids,omitempty" optional:"true"`
	LobbyType      string  `json:"lobby_type,omitempty"      optional:"true" valid:"in(shuffle|draft)"`
	BettingMode    string  `json:"betting_mode,omitempty"    optional:"true" valid:"in(pool|house)"`
	RatingSystem   string  `json:"rating_system,omitempty"   optional:"true" valid:"in(glicko|openskill)"`
	BombPot        bool    `json:"bomb_pot,omitempty"        optional:"true"`
	Seed           int64   `json:"-"`
}

func (reqData *ShuffleRequest) Validate() error {
	if _, err := validator.ValidateStruct(reqData); err != nil {
		return err
	}
	if reqData.GuildID < 0 {
		return ErrInvalidGuild
	}
	seen := make(map[int64]struct{}, len(reqData.PlayerIDs))
	for _, id := range reqData.PlayerIDs {
		if id <= 0 {
			return ValidationErrorPlayerID
		}
		if _, dup := seen[id]; dup {
			return ValidationErrorDuplicatePool
		}
		seen[id] = struct{}{}
	}
	for _, id := range reqData.ConditionalIDs {
		if _, ok := seen[id]; !ok {
			return ValidationErrorConditionalPool
		}
	}
	return nil
}
