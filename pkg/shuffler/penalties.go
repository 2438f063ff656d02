// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package shuffler

import (
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// pairConstraint is a soft avoid or package deal reduced to the two
// pool indices it binds. Avoids penalize same-team placement, deals
// penalize split placement.
type pairConstraint struct {
	id     int64
	a, b   int
	weight float64
}

// buildPairConstraints maps avoid and deal rows onto pool indices.
// Rows touching players outside the pool are dropped.
func buildPairConstraints(pool []poolPlayer, avoids []models.SoftAvoid, deals []models.PackageDeal, avoidWeight, dealWeight float64) (avoidPairs, dealPairs []pairConstraint) {
	index := make(map[int64]int, len(pool))
	for i, p := range pool {
		index[p.id] = i
	}
	for _, avoid := range avoids {
		a, okA := index[avoid.AvoiderID]
		b, okB := index[avoid.AvoidedID]
		if !okA || !okB {
			continue
		}
		avoidPairs = append(avoidPairs, pairConstraint{id: avoid.ID, a: a, b: b, weight: avoidWeight})
	}
	for _, deal := range deals {
		a, okA := index[deal.BuyerID]
		b, okB := index[deal.PartnerID]
		if !okA || !okB {
			continue
		}
		dealPairs = append(dealPairs, pairConstraint{id: deal.ID, a: a, b: b, weight: dealWeight})
	}
	return avoidPairs, dealPairs
}

// splitPenalty scores the pair constraints against one team split.
// inTeamA marks pool indices seated on team A; selected marks pool
// indices in the 10-player subset.
func splitPenalty(avoidPairs, dealPairs []pairConstraint, selected, inTeamA []bool) float64 {
	var penalty float64
	for _, pair := range avoidPairs {
		if !selected[pair.a] || !selected[pair.b] {
			continue
		}
		if inTeamA[pair.a] == inTeamA[pair.b] {
			penalty += pair.weight
		}
	}
	for _, pair := range dealPairs {
		if !selected[pair.a] || !selected[pair.b] {
			continue
		}
		if inTeamA[pair.a] != inTeamA[pair.b] {
			penalty += pair.weight
		}
	}
	return penalty
}

// honoredIDs returns the constraint ids the final split actually
// honored: both parties seated, on the same team when sameTeam is set,
// on opposite teams otherwise. Only honored constraints burn a game at
// settlement.
func honoredIDs(pairs []pairConstraint, selected, inTeamA []bool, sameTeam bool) []int64 {
	var ids []int64
	for _, pair := range pairs {
		if !selected[pair.a] || !selected[pair.b] {
			continue
		}
		if (inTeamA[pair.a] == inTeamA[pair.b]) == sameTeam {
			ids = append(ids, pair.id)
		}
	}
	return ids
}
