// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// Recalibrate restores a player's rating deviation and volatility to
// their calibration values so the next matches move the rating quickly.
// The rating itself and the OpenSkill pair are preserved.
func (s *Service) Recalibrate(scope *envelope.Scope, guildID, playerID int64) (*models.RecalibrationResult, error) {
	scope = scope.NewChildScope("Economy.Recalibrate")
	defer scope.Finish()

	var result *models.RecalibrationResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		player, err := s.st.GetPlayer(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if player.Games() < s.cfg.RecalibrationMinGames {
			return models.ErrInsufficientGames
		}
		state, err := s.st.GetRecalibrationState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		now := time.Now().Unix()
		if state.LastRecalibrationAt > 0 && now-state.LastRecalibrationAt < s.cfg.RecalibrationCooldownSeconds {
			return models.ErrRecalibrationCooldown
		}

		glicko := player.Glicko
		glicko.RD = s.cfg.RecalibrationInitialRD
		glicko.Volatility = s.cfg.RecalibrationInitialVol
		if err := s.st.SetRatings(scope, tx, guildID, playerID, glicko, player.OpenSkill); err != nil {
			return err
		}

		state.LastRecalibrationAt = now
		state.Total++
		state.RatingAt = player.Glicko.Rating
		if err := s.st.UpsertRecalibrationState(scope, tx, state); err != nil {
			return err
		}

		result = &models.RecalibrationResult{
			Rating:     glicko.Rating,
			RD:         glicko.RD,
			Volatility: glicko.Volatility,
			Total:      state.Total,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"playerID": playerID,
		"rating":   result.Rating,
		"rd":       result.RD,
		"total":    result.Total,
	}).Info("player recalibrated")
	return result, nil
}

// RecalibrationStatus reports a player's reset history.
func (s *Service) RecalibrationStatus(scope *envelope.Scope, guildID, playerID int64) (models.RecalibrationState, error) {
	scope = scope.NewChildScope("Economy.RecalibrationStatus")
	defer scope.Finish()

	return s.st.GetRecalibrationState(scope, s.st.DB(), guildID, playerID)
}

// ResetRecalibrationCooldown clears the cooldown for a player who has
// recalibrated before. Admin operation.
func (s *Service) ResetRecalibrationCooldown(scope *envelope.Scope, guildID, playerID int64) error {
	scope = scope.NewChildScope("Economy.ResetRecalibrationCooldown")
	defer scope.Finish()

	return s.st.WithTx(scope, func(tx *sql.Tx) error {
		state, err := s.st.GetRecalibrationState(scope, tx, guildID, playerID)
		if err != nil {
			return err
		}
		if state.LastRecalibrationAt == 0 {
			return models.ErrNoRecalibration
		}
		state.LastRecalibrationAt = 0
		return s.st.UpsertRecalibrationState(scope, tx, state)
	})
}
