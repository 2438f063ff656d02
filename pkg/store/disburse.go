// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/AccelByte/extend-inhouse-league/pkg/constants"
	"github.com/AccelByte/extend-inhouse-league/pkg/envelope"
	"github.com/AccelByte/extend-inhouse-league/pkg/models"
)

// GetActiveDisburseProposal returns the guild's open proposal, or
// ErrNoActiveProposal. One proposal per guild at a time.
func (s *Store) GetActiveDisburseProposal(scope *envelope.Scope, q Queryer, guildID int64) (*models.DisburseProposal, error) {
	var p models.DisburseProposal
	err := q.QueryRowContext(scope.Ctx,
		`SELECT guild_id, proposal_id, fund_amount, quorum_required, status, method, proposed_by, created_at
		FROM disburse_proposals WHERE guild_id = $1 AND status = $2`,
		guildID, constants.DisburseStatusActive).Scan(&p.GuildID, &p.ProposalID, &p.FundAmount,
		&p.QuorumRequired, &p.Status, &p.Method, &p.ProposedBy, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNoActiveProposal
	}
	if err != nil {
		return nil, fmt.Errorf("get active disburse proposal: %w", err)
	}
	return &p, nil
}

// CreateDisburseProposal opens a proposal. ErrProposalActive when the
// guild slot is already occupied.
func (s *Store) CreateDisburseProposal(scope *envelope.Scope, q Queryer, p models.DisburseProposal) error {
	res, err := q.ExecContext(scope.Ctx,
		`INSERT INTO disburse_proposals (guild_id, proposal_id, fund_amount, quorum_required, status, method, proposed_by, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (guild_id) DO NOTHING`,
		p.GuildID, p.ProposalID, p.FundAmount, p.QuorumRequired, p.Status, p.Method, p.ProposedBy, p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create disburse proposal: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create disburse proposal: %w", err)
	}
	if n == 0 {
		return models.ErrProposalActive
	}
	return nil
}

// DeleteDisburseProposal clears the guild's proposal slot and its votes.
func (s *Store) DeleteDisburseProposal(scope *envelope.Scope, q Queryer, guildID int64, proposalID string) error {
	_, err := q.ExecContext(scope.Ctx,
		`DELETE FROM disburse_votes WHERE guild_id = $1 AND proposal_id = $2`,
		guildID, proposalID)
	if err != nil {
		return fmt.Errorf("delete disburse votes: %w", err)
	}
	_, err = q.ExecContext(scope.Ctx,
		`DELETE FROM disburse_proposals WHERE guild_id = $1 AND proposal_id = $2`,
		guildID, proposalID)
	if err != nil {
		return fmt.Errorf("delete disburse proposal: %w", err)
	}
	return nil
}

// UpsertDisburseVote records or changes one voter's method choice.
func (s *Store) UpsertDisburseVote(scope *envelope.Scope, q Queryer, v models.DisburseVote) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO disburse_votes (guild_id, proposal_id, voter_id, vote_method, voted_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (guild_id, proposal_id, voter_id) DO UPDATE SET
			vote_method = EXCLUDED.vote_method,
			voted_at = EXCLUDED.voted_at`,
		v.GuildID, v.ProposalID, v.VoterID, v.Method, v.VotedAt)
	if err != nil {
		return fmt.Errorf("upsert disburse vote: %w", err)
	}
	return nil
}

func (s *Store) GetDisburseVotes(scope *envelope.Scope, q Queryer, guildID int64, proposalID string) ([]models.DisburseVote, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT guild_id, proposal_id, voter_id, vote_method, voted_at
		FROM disburse_votes WHERE guild_id = $1 AND proposal_id = $2 ORDER BY voted_at, voter_id`,
		guildID, proposalID)
	if err != nil {
		return nil, fmt.Errorf("get disburse votes: %w", err)
	}
	defer rows.Close()

	var votes []models.DisburseVote
	for rows.Next() {
		var v models.DisburseVote
		if err := rows.Scan(&v.GuildID, &v.ProposalID, &v.VoterID, &v.Method, &v.VotedAt); err != nil {
			return nil, fmt.Errorf("scan disburse vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}

// InsertDisburseHistory writes the audit row for an executed payout.
func (s *Store) InsertDisburseHistory(scope *envelope.Scope, q Queryer, h models.DisburseHistory) error {
	_, err := q.ExecContext(scope.Ctx,
		`INSERT INTO disburse_history (guild_id, proposal_id, method, total_amount, recipient_count, executed_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		h.GuildID, h.ProposalID, h.Method, h.TotalAmount, h.RecipientCount, h.ExecutedAt)
	if err != nil {
		return fmt.Errorf("insert disburse history: %w", err)
	}
	return nil
}

func (s *Store) GetDisburseHistory(scope *envelope.Scope, q Queryer, guildID int64, limit int) ([]models.DisburseHistory, error) {
	rows, err := q.QueryContext(scope.Ctx,
		`SELECT id, guild_id, proposal_id, method, total_amount, recipient_count, executed_at
		FROM disburse_history WHERE guild_id = $1 ORDER BY executed_at DESC, id DESC LIMIT $2`,
		guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("get disburse history: %w", err)
	}
	defer rows.Close()

	var history []models.DisburseHistory
	for rows.Next() {
		var h models.DisburseHistory
		if err := rows.Scan(&h.ID, &h.GuildID, &h.ProposalID, &h.Method, &h.TotalAmount, &h.RecipientCount, &h.ExecutedAt); err != nil {
			return nil, fmt.Errorf("scan disburse history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
