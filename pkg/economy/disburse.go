// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package economy

import (
	"database/sql"
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
	"github.com/AccelByte/extend-inhouse-league/pkg/utils"
)

// methodPriority breaks vote ties; earlier entries win.
var methodPriority = []string{
	constants.DisburseMethodEven,
	constants.DisburseMethodProportional,
	constants.DisburseMethodNeediest,
	constants.DisburseMethodStimulus,
	constants.DisburseMethodLottery,
	constants.DisburseMethodSocialSecurity,
	constants.DisburseMethodCancel,
}

// DisburseBallot reports the vote state after a ballot lands.
type DisburseBallot struct {
	Proposal      models.DisburseProposal
	Counts        map[string]int
	TotalVotes    int
	QuorumReached bool
}

// ProposeDisbursement opens a vote on paying out the nonprofit fund.
// The fund snapshot and the quorum are fixed at proposal time, and only
// one proposal per guild can be active.
func (s *Service) ProposeDisbursement(scope *envelope.Scope, guildID, proposerID int64) (*models.DisburseProposal, error) {
	scope = scope.NewChildScope("Economy.ProposeDisbursement")
	defer scope.Finish()

	var proposal *models.DisburseProposal
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		if _, err := s.st.GetActiveDisburseProposal(scope, tx, guildID); err == nil {
			return models.ErrProposalActive
		} else if !errors.Is(err, models.ErrNoActiveProposal) {
			return err
		}
		fund, err := s.st.GetNonprofitFund(scope, tx, guildID)
		if err != nil {
			return err
		}
		if fund.Total < s.cfg.DisburseMinFund {
			return models.ErrFundTooSmall
		}
		debtors, err := s.st.GetDebtors(scope, tx, guildID)
		if err != nil {
			return err
		}
		if len(debtors) == 0 {
			eligible, err := s.st.GetStimulusEligible(scope, tx, guildID)
			if err != nil {
				return err
			}
			if len(eligible) == 0 {
				return models.ErrNoEligibleRecipients
			}
		}
		count, err := s.st.CountPlayers(scope, tx, guildID)
		if err != nil {
			return err
		}
		quorum := int(math.Ceil(float64(count) * s.cfg.DisburseQuorumRate))
		if quorum < 1 {
			quorum = 1
		}

		proposal = &models.DisburseProposal{
			GuildID:        guildID,
			ProposalID:     ulid.Make().String(),
			FundAmount:     fund.Total,
			QuorumRequired: quorum,
			Status:         constants.DisburseStatusActive,
			ProposedBy:     proposerID,
			CreatedAt:      time.Now().Unix(),
		}
		return s.st.CreateDisburseProposal(scope, tx, *proposal)
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":    guildID,
		"proposalID": proposal.ProposalID,
		"fund":       proposal.FundAmount,
		"quorum":     proposal.QuorumRequired,
	}).Info("disbursement proposed")
	return proposal, nil
}

// VoteDisbursement records or changes one member's method choice on the
// active proposal.
func (s *Service) VoteDisbursement(scope *envelope.Scope, guildID, voterID int64, method string) (*DisburseBallot, error) {
	scope = scope.NewChildScope("Economy.VoteDisbursement")
	defer scope.Finish()

	if !utils.Contains(methodPriority, method) {
		return nil, models.ErrInvalidMethod
	}

	var ballot *DisburseBallot
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		proposal, err := s.st.GetActiveDisburseProposal(scope, tx, guildID)
		if err != nil {
			return err
		}
		if err := s.st.UpsertDisburseVote(scope, tx, models.DisburseVote{
			GuildID:    guildID,
			ProposalID: proposal.ProposalID,
			VoterID:    voterID,
			Method:     method,
			VotedAt:    time.Now().Unix(),
		}); err != nil {
			return err
		}
		votes, err := s.st.GetDisburseVotes(scope, tx, guildID, proposal.ProposalID)
		if err != nil {
			return err
		}
		ballot = &DisburseBallot{
			Proposal:      *proposal,
			Counts:        tallyVotes(votes),
			TotalVotes:    len(votes),
			QuorumReached: len(votes) >= proposal.QuorumRequired,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if ballot.QuorumReached {
		scope.Log.WithFields(logrus.Fields{
			"guildID":    guildID,
			"proposalID": ballot.Proposal.ProposalID,
			"votes":      ballot.TotalVotes,
			"method":     winningMethod(ballot.Counts),
		}).Info("disbursement quorum reached")
	}
	return ballot, nil
}

// ExecuteDisbursement settles the active proposal once quorum is
// reached: it picks the winning method, credits the recipients and
// deducts only what was distributed, so capped remainders stay in the
// fund. A cancel vote drops the proposal without paying out.
func (s *Service) ExecuteDisbursement(scope *envelope.Scope, guildID int64) (*models.DisburseOutcome, error) {
	scope = scope.NewChildScope("Economy.ExecuteDisbursement")
	defer scope.Finish()

	var outcome *models.DisburseOutcome
	err := s.st.WithTx(scope, func(tx *sql.Tx) error {
		proposal, err := s.st.GetActiveDisburseProposal(scope, tx, guildID)
		if err != nil {
			return err
		}
		votes, err := s.st.GetDisburseVotes(scope, tx, guildID, proposal.ProposalID)
		if err != nil {
			return err
		}
		if len(votes) < proposal.QuorumRequired {
			return models.ErrQuorumNotReached
		}
		method := winningMethod(tallyVotes(votes))

		outcome = &models.DisburseOutcome{
			ProposalID: proposal.ProposalID,
			Method:     method,
			Recipients: map[int64]int64{},
		}
		if method == constants.DisburseMethodCancel {
			return s.st.DeleteDisburseProposal(scope, tx, guildID, proposal.ProposalID)
		}

		recipients, err := s.planDistribution(scope, tx, guildID, method, proposal.FundAmount)
		if err != nil {
			return err
		}
		outcome.Recipients = recipients
		for _, playerID := range utils.SortedKeys(recipients) {
			if _, err := s.st.AddBalance(scope, tx, guildID, playerID, recipients[playerID]); err != nil {
				return err
			}
			outcome.Total += recipients[playerID]
		}
		if outcome.Total > 0 {
			if err := s.st.DeductFromNonprofitFund(scope, tx, guildID, outcome.Total); err != nil {
				return err
			}
			if err := s.st.InsertDisburseHistory(scope, tx, models.DisburseHistory{
				GuildID:        guildID,
				ProposalID:     proposal.ProposalID,
				Method:         method,
				TotalAmount:    outcome.Total,
				RecipientCount: len(recipients),
				ExecutedAt:     time.Now().Unix(),
			}); err != nil {
				return err
			}
		}
		return s.st.DeleteDisburseProposal(scope, tx, guildID, proposal.ProposalID)
	})
	if err != nil {
		return nil, err
	}

	scope.Log.WithFields(logrus.Fields{
		"guildID":    guildID,
		"proposalID": outcome.ProposalID,
		"method":     outcome.Method,
		"total":      outcome.Total,
		"recipients": len(outcome.Recipients),
	}).Info("disbursement executed")
	return outcome, nil
}

// ResetDisbursement drops the active proposal without distributing.
// Admin operation.
func (s *Service) ResetDisbursement(scope *envelope.Scope, guildID int64) error {
	scope = scope.NewChildScope("Economy.ResetDisbursement")
	defer scope.Finish()

	return s.st.WithTx(scope, func(tx *sql.Tx) error {
		proposal, err := s.st.GetActiveDisburseProposal(scope, tx, guildID)
		if err != nil {
			return err
		}
		return s.st.DeleteDisburseProposal(scope, tx, guildID, proposal.ProposalID)
	})
}

// ActiveDisbursement returns the open proposal with its current tally.
func (s *Service) ActiveDisbursement(scope *envelope.Scope, guildID int64) (*DisburseBallot, error) {
	scope = scope.NewChildScope("Economy.ActiveDisbursement")
	defer scope.Finish()

	proposal, err := s.st.GetActiveDisburseProposal(scope, s.st.DB(), guildID)
	if err != nil {
		return nil, err
	}
	votes, err := s.st.GetDisburseVotes(scope, s.st.DB(), guildID, proposal.ProposalID)
	if err != nil {
		return nil, err
	}
	return &DisburseBallot{
		Proposal:      *proposal,
		Counts:        tallyVotes(votes),
		TotalVotes:    len(votes),
		QuorumReached: len(votes) >= proposal.QuorumRequired,
	}, nil
}

// DisbursementHistory lists executed payouts, newest first.
func (s *Service) DisbursementHistory(scope *envelope.Scope, guildID int64, limit int) ([]models.DisburseHistory, error) {
	scope = scope.NewChildScope("Economy.DisbursementHistory")
	defer scope.Finish()

	return s.st.GetDisburseHistory(scope, s.st.DB(), guildID, limit)
}

// FundBalance reports the guild's accumulated fee pool.
func (s *Service) FundBalance(scope *envelope.Scope, guildID int64) (models.NonprofitFund, error) {
	scope = scope.NewChildScope("Economy.FundBalance")
	defer scope.Finish()

	return s.st.GetNonprofitFund(scope, s.st.DB(), guildID)
}

func (s *Service) planDistribution(scope *envelope.Scope, tx *sql.Tx, guildID int64, method string, fund int64) (map[int64]int64, error) {
	switch method {
	case constants.DisburseMethodStimulus:
		eligible, err := s.st.GetStimulusEligible(scope, tx, guildID)
		if err != nil {
			return nil, err
		}
		return DistributeStimulus(fund, eligible), nil
	case constants.DisburseMethodLottery:
		players, err := s.st.ListPlayers(scope, tx, guildID)
		if err != nil {
			return nil, err
		}
		return DistributeLottery(fund, players, s.rng), nil
	case constants.DisburseMethodSocialSecurity:
		players, err := s.st.ListPlayers(scope, tx, guildID)
		if err != nil {
			return nil, err
		}
		return DistributeSocialSecurity(fund, players), nil
	default:
		debtors, err := s.st.GetDebtors(scope, tx, guildID)
		if err != nil {
			return nil, err
		}
		switch method {
		case constants.DisburseMethodProportional:
			return DistributeProportionally(fund, debtors), nil
		case constants.DisburseMethodNeediest:
			return DistributeToNeediest(fund, debtors), nil
		default:
			return DistributeEvenly(fund, debtors), nil
		}
	}
}

func tallyVotes(votes []models.DisburseVote) map[string]int {
	counts := make(map[string]int, len(methodPriority))
	for _, v := range votes {
		counts[v.Method]++
	}
	return counts
}

// winningMethod picks the method with the most votes; ties fall to the
// earliest entry in methodPriority.
func winningMethod(counts map[string]int) string {
	best := methodPriority[0]
	bestVotes := counts[best]
	for _, method := range methodPriority[1:] {
		if counts[method] > bestVotes {
			best = method
			bestVotes = counts[method]
		}
	}
	return best
}

// DistributeEvenly splits the fund equally across debtors, capping each
// share at the debt. Excess from capped players recycles to whoever
// still owes, most indebted first within a round.
func DistributeEvenly(fund int64, debtors []models.Player) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 {
		return out
	}
	type slot struct {
		id   int64
		need int64
	}
	slots := make([]slot, 0, len(debtors))
	for _, d := range debtors {
		if d.Balance < 0 {
			slots = append(slots, slot{id: d.ID, need: -d.Balance})
		}
	}

	remaining := fund
	for remaining > 0 && len(slots) > 0 {
		per := remaining / int64(len(slots))
		if per == 0 {
			per = 1
		}
		var distributed int64
		next := slots[:0]
		for _, sl := range slots {
			give := per
			if give > sl.need {
				give = sl.need
			}
			if left := remaining - distributed; give > left {
				give = left
			}
			if give > 0 {
				out[sl.id] += give
				distributed += give
				sl.need -= give
			}
			if sl.need > 0 {
				next = append(next, sl)
			}
		}
		slots = next
		remaining -= distributed
		if distributed == 0 {
			break
		}
	}
	return out
}

// DistributeProportionally splits the fund by debt share, capped at
// each debt. Shares truncate toward zero and the smallest debtor
// absorbs whatever the truncation left over, still capped at their
// debt.
func DistributeProportionally(fund int64, debtors []models.Player) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 || len(debtors) == 0 {
		return out
	}
	var totalDebt int64
	for _, d := range debtors {
		totalDebt += -d.Balance
	}
	if totalDebt <= 0 {
		return DistributeEvenly(fund, debtors)
	}

	sorted := append([]models.Player(nil), debtors...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Balance < sorted[j].Balance })

	remaining := fund
	for i, d := range sorted {
		debt := -d.Balance
		var amount int64
		if i == len(sorted)-1 {
			amount = remaining
			if amount > debt {
				amount = debt
			}
		} else {
			amount = int64(float64(debt) / float64(totalDebt) * float64(fund))
			if amount > debt {
				amount = debt
			}
			if amount > remaining {
				amount = remaining
			}
		}
		if amount > 0 {
			out[d.ID] = amount
			remaining -= amount
		}
	}
	return out
}

// DistributeToNeediest sends everything to the most indebted player,
// capped at their debt.
func DistributeToNeediest(fund int64, debtors []models.Player) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 || len(debtors) == 0 {
		return out
	}
	neediest := debtors[0]
	for _, d := range debtors[1:] {
		if d.Balance < neediest.Balance {
			neediest = d
		}
	}
	amount := -neediest.Balance
	if amount > fund {
		amount = fund
	}
	if amount > 0 {
		out[neediest.ID] = amount
	}
	return out
}

// DistributeStimulus splits the whole fund evenly among the eligible
// players in their given order, handing one extra coin to the first
// players until the division remainder is gone. No debt cap applies.
func DistributeStimulus(fund int64, eligible []models.Player) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 || len(eligible) == 0 {
		return out
	}
	per := fund / int64(len(eligible))
	remainder := fund % int64(len(eligible))
	for i, p := range eligible {
		amount := per
		if int64(i) < remainder {
			amount++
		}
		if amount > 0 {
			out[p.ID] = amount
		}
	}
	return out
}

// DistributeLottery hands the whole fund to one randomly drawn player.
func DistributeLottery(fund int64, players []models.Player, rng *rand.Rand) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 || len(players) == 0 {
		return out
	}
	winner := players[rng.Intn(len(players))]
	out[winner.ID] = fund
	return out
}

// DistributeSocialSecurity splits the fund proportionally to games
// played, most games first, with the truncation remainder landing on
// the last player. Nothing is paid when no games are on record.
func DistributeSocialSecurity(fund int64, players []models.Player) map[int64]int64 {
	out := map[int64]int64{}
	if fund <= 0 || len(players) == 0 {
		return out
	}
	var totalGames int64
	for _, p := range players {
		totalGames += int64(p.Games())
	}
	if totalGames == 0 {
		return out
	}

	sorted := append([]models.Player(nil), players...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Games() > sorted[j].Games() })

	remaining := fund
	for i, p := range sorted {
		var amount int64
		if i == len(sorted)-1 {
			amount = remaining
		} else {
			amount = int64(float64(p.Games()) / float64(totalGames) * float64(fund))
		}
		if amount > 0 {
			out[p.ID] = amount
			remaining -= amount
		}
	}
	return out
}
