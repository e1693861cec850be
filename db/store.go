// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/blueballot/models"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrConflict         = errors.New("record conflicts with an existing record")
	ErrInvalidReference = errors.New("referenced record does not exist")
)

// Store is the persistence contract for every entity the service manages.
// Create methods assign identifiers and timestamps. Implementations must be
// safe for concurrent use.
type Store interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)

	CreateElection(ctx context.Context, e models.Election) (models.Election, error)
	GetElection(ctx context.Context, id string) (models.Election, error)
	ListElections(ctx context.Context) ([]models.Election, error)
	UpdateElection(ctx context.Context, id string, u models.ElectionUpdate) (models.Election, error)
	DeleteElection(ctx context.Context, id string) (bool, error)

	CreateContest(ctx context.Context, c models.Contest) (models.Contest, error)
	GetContest(ctx context.Context, id string) (models.Contest, error)
	ListContestsByElection(ctx context.Context, electionID string) ([]models.Contest, error)
	UpdateContest(ctx context.Context, id string, u models.ContestUpdate) (models.Contest, error)
	DeleteContest(ctx context.Context, id string) (bool, error)

	CreateOption(ctx context.Context, o models.Option) (models.Option, error)
	GetOption(ctx context.Context, id string) (models.Option, error)
	ListOptionsByContest(ctx context.Context, contestID string) ([]models.Option, error)
	DeleteOption(ctx context.Context, id string) (bool, error)

	AddEligibleVoter(ctx context.Context, ev models.EligibleVoter) (models.EligibleVoter, error)
	RemoveEligibleVoter(ctx context.Context, electionID, userID string) (bool, error)
	ListEligibleVotersByElection(ctx context.Context, electionID string) ([]models.EligibleVoter, error)
	ListEligibleElectionIDs(ctx context.Context, userID string) ([]string, error)
	IsVoterEligible(ctx context.Context, electionID, userID string) (bool, error)

	// RecordVote inserts the vote and its audit entry atomically. A second
	// vote for the same (user, contest) pair fails with ErrConflict.
	RecordVote(ctx context.Context, v models.Vote, entry models.AuditLog) (models.Vote, error)
	GetVote(ctx context.Context, userID, contestID string) (models.Vote, error)
	HasVoted(ctx context.Context, userID, contestID string) (bool, error)
	ListVotesByContest(ctx context.Context, contestID string) ([]models.Vote, error)

	AppendAuditLog(ctx context.Context, entry models.AuditLog) (models.AuditLog, error)
	// ListAuditLogs returns matching entries newest first.
	ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error)

	Ping(ctx context.Context) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// Open constructs the store selected by backend. SQL backends are pinged and
// their schema created before returning.
func Open(ctx context.Context, backend, url string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemStore(), nil
	case BackendSQLite:
		return OpenSQLite(ctx, url)
	case BackendPostgres:
		return OpenPostgres(ctx, url)
	}
	return nil, fmt.Errorf("unknown database type %q", backend)
}
