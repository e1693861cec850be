// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/blueballot/audit"
	"github.com/danielhkuo/blueballot/db"
	"github.com/danielhkuo/blueballot/models"
)

var (
	ErrNotFound         = errors.New("contest not found")
	ErrAlreadyVoted     = errors.New("already voted in this contest")
	ErrNotEligible      = errors.New("not eligible to vote in this election")
	ErrInvalidSelection = errors.New("invalid option selection")
)

// Store is the slice of db.Store the engine reads and writes.
type Store interface {
	GetContest(ctx context.Context, id string) (models.Contest, error)
	ListOptionsByContest(ctx context.Context, contestID string) ([]models.Option, error)
	IsVoterEligible(ctx context.Context, electionID, userID string) (bool, error)
	ListEligibleElectionIDs(ctx context.Context, userID string) ([]string, error)
	HasVoted(ctx context.Context, userID, contestID string) (bool, error)
	GetVote(ctx context.Context, userID, contestID string) (models.Vote, error)
	ListVotesByContest(ctx context.Context, contestID string) ([]models.Vote, error)
	RecordVote(ctx context.Context, v models.Vote, entry models.AuditLog) (models.Vote, error)
}

// Engine decides whether a vote is admissible, records it, and tallies
// contests.
type Engine struct {
	store Store
	audit *audit.Logger
	locks *keyLock
	now   func() time.Time
	log   *slog.Logger
}

func NewEngine(store Store, auditLog *audit.Logger, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store: store,
		audit: auditLog,
		locks: newKeyLock(),
		now:   time.Now,
		log:   logger,
	}
}

// CastVote records voterID's selection for contestID. Checks run in order:
// the contest exists, the voter has not voted in it, the voter is eligible
// for its election, and the selection fits the contest. Casts for the same
// (voter, contest) pair are serialized; a uniqueness conflict from storage
// is reported as ErrAlreadyVoted.
func (e *Engine) CastVote(ctx context.Context, voterID, contestID string, optionIDs []string) (models.Vote, error) {
	unlock := e.locks.Lock(voterID + "\x00" + contestID)
	defer unlock()

	contest, err := e.store.GetContest(ctx, contestID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Vote{}, e.reject(ErrNotFound, voterID, contestID)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("load contest: %w", err)
	}

	voted, err := e.store.HasVoted(ctx, voterID, contestID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check existing vote: %w", err)
	}
	if voted {
		return models.Vote{}, e.reject(ErrAlreadyVoted, voterID, contestID)
	}

	eligible, err := e.store.IsVoterEligible(ctx, contest.ElectionID, voterID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("check eligibility: %w", err)
	}
	if !eligible {
		return models.Vote{}, e.reject(ErrNotEligible, voterID, contestID)
	}

	options, err := e.store.ListOptionsByContest(ctx, contestID)
	if err != nil {
		return models.Vote{}, fmt.Errorf("load options: %w", err)
	}
	if err := ValidateSelection(contest, options, optionIDs); err != nil {
		return models.Vote{}, e.reject(err, voterID, contestID)
	}

	entry, err := e.audit.Record(audit.Entry{
		UserID:     voterID,
		Action:     audit.ActionVoteCast,
		EntityType: audit.EntityVote,
		Details:    map[string]string{"contestId": contestID},
	})
	if err != nil {
		return models.Vote{}, err
	}

	vote, err := e.store.RecordVote(ctx, models.Vote{
		UserID:    voterID,
		ContestID: contestID,
		OptionIDs: append([]string{}, optionIDs...),
		CreatedAt: e.now().UTC(),
	}, entry)
	if errors.Is(err, db.ErrConflict) {
		return models.Vote{}, e.reject(ErrAlreadyVoted, voterID, contestID)
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("record vote: %w", err)
	}

	e.log.Info("vote cast",
		"event", "vote_cast",
		"vote_id", vote.ID,
		"contest_id", contestID,
		"election_id", contest.ElectionID,
		"option_count", len(vote.OptionIDs),
	)
	return vote, nil
}

func (e *Engine) reject(err error, voterID, contestID string) error {
	e.log.Warn("vote rejected",
		"event", "vote_rejected",
		"user_id", voterID,
		"contest_id", contestID,
		"reason", err.Error(),
	)
	return err
}

// ValidateSelection checks optionIDs against the contest's options and type.
// Single-choice contests take exactly one option; multi-choice contests take
// at least one and at most MaxChoices when it is set.
func ValidateSelection(contest models.Contest, options []models.Option, optionIDs []string) error {
	if len(optionIDs) == 0 {
		return fmt.Errorf("%w: at least one option is required", ErrInvalidSelection)
	}

	valid := make(map[string]bool, len(options))
	for _, o := range options {
		valid[o.ID] = true
	}
	seen := make(map[string]bool, len(optionIDs))
	for _, id := range optionIDs {
		if !valid[id] {
			return fmt.Errorf("%w: option %s does not belong to this contest", ErrInvalidSelection, id)
		}
		if seen[id] {
			return fmt.Errorf("%w: option %s selected more than once", ErrInvalidSelection, id)
		}
		seen[id] = true
	}

	switch contest.Type {
	case models.ContestMultiChoice:
		if contest.MaxChoices != nil && len(optionIDs) > *contest.MaxChoices {
			return fmt.Errorf("%w: at most %d options may be selected", ErrInvalidSelection, *contest.MaxChoices)
		}
	default:
		if len(optionIDs) != 1 {
			return fmt.Errorf("%w: exactly one option must be selected", ErrInvalidSelection)
		}
	}
	return nil
}

// IsVoterEligible reports whether userID holds an eligibility record for
// electionID.
func (e *Engine) IsVoterEligible(ctx context.Context, electionID, userID string) (bool, error) {
	ok, err := e.store.IsVoterEligible(ctx, electionID, userID)
	if err != nil {
		return false, fmt.Errorf("check eligibility: %w", err)
	}
	return ok, nil
}

// EligibleElections lists the election ids userID may vote in.
func (e *Engine) EligibleElections(ctx context.Context, userID string) ([]string, error) {
	ids, err := e.store.ListEligibleElectionIDs(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list eligible elections: %w", err)
	}
	return ids, nil
}

// GetVote returns voterID's vote in contestID, or ErrNotFound.
func (e *Engine) GetVote(ctx context.Context, voterID, contestID string) (models.Vote, error) {
	v, err := e.store.GetVote(ctx, voterID, contestID)
	if errors.Is(err, db.ErrNotFound) {
		return models.Vote{}, ErrNotFound
	}
	if err != nil {
		return models.Vote{}, fmt.Errorf("get vote: %w", err)
	}
	return v, nil
}

// TallyContest counts, for every option of the contest, the votes that
// selected it. TotalVotes is the number of votes, not the sum of counts.
// Results follow option creation order.
func (e *Engine) TallyContest(ctx context.Context, contestID string) (models.Tally, error) {
	if _, err := e.store.GetContest(ctx, contestID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.Tally{}, ErrNotFound
		}
		return models.Tally{}, fmt.Errorf("load contest: %w", err)
	}

	votes, err := e.store.ListVotesByContest(ctx, contestID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("load votes: %w", err)
	}
	options, err := e.store.ListOptionsByContest(ctx, contestID)
	if err != nil {
		return models.Tally{}, fmt.Errorf("load options: %w", err)
	}

	return Tally(contestID, options, votes), nil
}

// Tally is the pure counting step of TallyContest.
func Tally(contestID string, options []models.Option, votes []models.Vote) models.Tally {
	counts := make(map[string]int, len(options))
	for _, v := range votes {
		seen := make(map[string]bool, len(v.OptionIDs))
		for _, id := range v.OptionIDs {
			if !seen[id] {
				seen[id] = true
				counts[id]++
			}
		}
	}

	results := make([]models.OptionTally, len(options))
	for i, o := range options {
		results[i] = models.OptionTally{Option: o, VoteCount: counts[o.ID]}
	}
	return models.Tally{
		ContestID:  contestID,
		TotalVotes: len(votes),
		Results:    results,
	}
}
