// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package league

import (
	"database/sql"

	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// ApplyEnrichmentWeights runs the Phase-2 OpenSkill pass once fantasy
// points arrive for a recorded match. The update always starts from the
// rating-history pre-match (mu, sigma) baseline, so replaying the same
// points lands on the same final ratings. Glicko does not move here.
// Participants missing from the points map weigh 1; history rows
// missing a baseline fall back to the player's current rating.
func (s *Service) ApplyEnrichmentWeights(scope *envelope.Scope, guildID, matchID int64, fantasyPoints map[int64]float64) (*models.EnrichmentResult, error) {
	scope = scope.NewChildScope("League.ApplyEnrichmentWeights")
	defer scope.Finish()
	scope.SetAttributes(envelope.GuildIDTag, guildID)
	scope.SetAttributes(envelope.MatchIDTag, matchID)

	if err := s.beginFinalize(guildID); err != nil {
		s.metrics.AddRejectedOperation(guildID, constants.ReasonRecordInProgress)
		return nil, err
	}
	defer s.endFinalize(guildID)

	var result *models.EnrichmentResult
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		var txErr error
		result, txErr = s.enrich(scope, tx, guildID, matchID, fantasyPoints)
		return txErr
	})
	if err != nil {
		s.rejectFinalize(guildID, err)
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":  guildID,
		"matchID":  matchID,
		"weighted": len(fantasyPoints),
		"players":  len(result.Changes),
	}).Info("enrichment weights applied")
	return result, nil
}

func (s *Service) enrich(scope *envelope.Scope, tx *sql.Tx, guildID, matchID int64, fantasyPoints map[int64]float64) (*models.EnrichmentResult, error) {
	match, err := s.st.GetMatch(scope, tx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if !match.Winner.Valid() {
		return nil, models.ErrInvalidResult
	}
	history, err := s.st.GetRatingHistory(scope, tx, guildID, matchID)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, models.ErrNoRatingHistory
	}
	byPlayer := make(map[int64]models.RatingHistory, len(history))
	for _, h := range history {
		byPlayer[h.PlayerID] = h
	}

	winnerIDs := match.SideIDs(match.Winner)
	loserIDs := match.SideIDs(match.Winner.Opposite())
	players, err := s.loadParticipants(scope, tx, guildID, append(append([]int64(nil), winnerIDs...), loserIDs...))
	if err != nil {
		return nil, err
	}

	result := &models.EnrichmentResult{
		MatchID: matchID,
		Weights: make(map[int64]float64),
	}
	snapshot := func(ids []int64) ([]models.OpenSkillRating, []float64) {
		baseline := make([]models.OpenSkillRating, len(ids))
		weights := make([]float64, len(ids))
		for i, id := range ids {
			if h, ok := byPlayer[id]; ok {
				baseline[i] = models.OpenSkillRating{Mu: h.MuBefore, Sigma: h.SigmaBefore}
			} else {
				baseline[i] = players[id].OpenSkill
			}
			weights[i] = s.openskill.FantasyWeight(pointsOf(fantasyPoints, id))
			result.Weights[id] = weights[i]
		}
		return baseline, weights
	}
	winnerOS, winnerWeights := snapshot(winnerIDs)
	loserOS, loserWeights := snapshot(loserIDs)

	newWinnerOS, newLoserOS := s.openskill.RateWeighted(winnerOS, loserOS, winnerWeights, loserWeights)

	apply := func(ids []int64, before, after []models.OpenSkillRating, weights []float64, won bool) error {
		for i, id := range ids {
			if err := s.st.SetOpenSkillRating(scope, tx, guildID, id, after[i]); err != nil {
				return err
			}
			points := pointsOf(fantasyPoints, id)
			if h, ok := byPlayer[id]; ok {
				h.MuAfter = after[i].Mu
				h.SigmaAfter = after[i].Sigma
				h.FantasyPoints = points
				h.FantasyWeight = weights[i]
				if err := s.st.UpdateRatingHistoryAfter(scope, tx, h); err != nil {
					return err
				}
			}
			if points != nil {
				if err := s.st.SetParticipantFantasyPoints(scope, tx, guildID, matchID, id, *points); err != nil {
					return err
				}
			}
			result.Changes = append(result.Changes, models.OpenSkillChange{
				PlayerID: id, Before: before[i], After: after[i], Weight: weights[i], Won: won,
			})
		}
		return nil
	}
	if err := apply(winnerIDs, winnerOS, newWinnerOS, winnerWeights, true); err != nil {
		return nil, err
	}
	if err := apply(loserIDs, loserOS, newLoserOS, loserWeights, false); err != nil {
		return nil, err
	}
	return result, nil
}

func pointsOf(points map[int64]float64, id int64) *float64 {
	if p, ok := points[id]; ok {
		return &p
	}
	return nil
}
