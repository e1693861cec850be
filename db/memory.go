// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/blueballot/models"
)

// Ensure MemStore implements Store
var _ Store = (*MemStore)(nil)

type memRow[T any] struct {
	seq uint64
	val T
}

// memTable keeps rows by id and remembers insertion order.
type memTable[T any] map[string]memRow[T]

func (t memTable[T]) sorted(keep func(T) bool) []T {
	rows := make([]memRow[T], 0, len(t))
	for _, r := range t {
		if keep == nil || keep(r.val) {
			rows = append(rows, r)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	out := make([]T, len(rows))
	for i, r := range rows {
		out[i] = r.val
	}
	return out
}

// MemStore is an in-process Store. It enforces the same uniqueness and
// reference rules as the SQL schema and cascades deletes explicitly.
type MemStore struct {
	mu  sync.RWMutex
	seq uint64

	users     memTable[models.User]
	elections memTable[models.Election]
	contests  memTable[models.Contest]
	options   memTable[models.Option]
	voters    memTable[models.EligibleVoter]
	votes     memTable[models.Vote]
	auditLogs memTable[models.AuditLog]

	usersByEmail map[string]string
	voteIndex    map[[2]string]string // (user, contest) -> vote id
	voterIndex   map[[2]string]string // (election, user) -> eligible voter id
}

func NewMemStore() *MemStore {
	return &MemStore{
		users:        make(memTable[models.User]),
		elections:    make(memTable[models.Election]),
		contests:     make(memTable[models.Contest]),
		options:      make(memTable[models.Option]),
		voters:       make(memTable[models.EligibleVoter]),
		votes:        make(memTable[models.Vote]),
		auditLogs:    make(memTable[models.AuditLog]),
		usersByEmail: make(map[string]string),
		voteIndex:    make(map[[2]string]string),
		voterIndex:   make(map[[2]string]string),
	}
}

func (s *MemStore) next() uint64 {
	s.seq++
	return s.seq
}

func (s *MemStore) Ping(ctx context.Context) error { return ctx.Err() }

func (s *MemStore) Close() error { return nil }

// Users

func (s *MemStore) CreateUser(ctx context.Context, u models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.usersByEmail[u.Email]; taken {
		return models.User{}, fmt.Errorf("insert user: %w: email %s", ErrConflict, u.Email)
	}
	u.ID = uuid.NewString()
	s.users[u.ID] = memRow[models.User]{seq: s.next(), val: u}
	s.usersByEmail[u.Email] = u.ID
	return u, nil
}

func (s *MemStore) GetUser(ctx context.Context, id string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.users[id]
	if !ok {
		return models.User{}, fmt.Errorf("get user: %w", ErrNotFound)
	}
	return r.val, nil
}

func (s *MemStore) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[email]
	if !ok {
		return models.User{}, fmt.Errorf("get user by email: %w", ErrNotFound)
	}
	return s.users[id].val, nil
}

func (s *MemStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.users.sorted(nil), nil
}

// Elections

func (s *MemStore) CreateElection(ctx context.Context, e models.Election) (models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.ID = uuid.NewString()
	if e.Status == "" {
		e.Status = models.StatusDraft
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.StartAt, e.EndAt, e.CreatedAt = e.StartAt.UTC(), e.EndAt.UTC(), e.CreatedAt.UTC()
	s.elections[e.ID] = memRow[models.Election]{seq: s.next(), val: e}
	return e, nil
}

func (s *MemStore) GetElection(ctx context.Context, id string) (models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.elections[id]
	if !ok {
		return models.Election{}, fmt.Errorf("get election: %w", ErrNotFound)
	}
	return r.val, nil
}

func (s *MemStore) ListElections(ctx context.Context) ([]models.Election, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.elections.sorted(nil), nil
}

func (s *MemStore) UpdateElection(ctx context.Context, id string, u models.ElectionUpdate) (models.Election, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.elections[id]
	if !ok {
		return models.Election{}, fmt.Errorf("update election: %w", ErrNotFound)
	}
	r.val = u.Apply(r.val)
	r.val.StartAt, r.val.EndAt = r.val.StartAt.UTC(), r.val.EndAt.UTC()
	s.elections[id] = r
	return r.val, nil
}

func (s *MemStore) DeleteElection(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elections[id]; !ok {
		return false, nil
	}
	delete(s.elections, id)

	for cid, c := range s.contests {
		if c.val.ElectionID == id {
			s.deleteContestLocked(cid)
		}
	}
	for vid, v := range s.voters {
		if v.val.ElectionID == id {
			delete(s.voters, vid)
			delete(s.voterIndex, [2]string{v.val.ElectionID, v.val.UserID})
		}
	}
	return true, nil
}

// Contests

func (s *MemStore) CreateContest(ctx context.Context, c models.Contest) (models.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elections[c.ElectionID]; !ok {
		return models.Contest{}, fmt.Errorf("insert contest: %w: election %s", ErrInvalidReference, c.ElectionID)
	}
	c.ID = uuid.NewString()
	if c.Type == "" {
		c.Type = models.ContestSingleChoice
	}
	s.contests[c.ID] = memRow[models.Contest]{seq: s.next(), val: c}
	return c, nil
}

func (s *MemStore) GetContest(ctx context.Context, id string) (models.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.contests[id]
	if !ok {
		return models.Contest{}, fmt.Errorf("get contest: %w", ErrNotFound)
	}
	return r.val, nil
}

func (s *MemStore) ListContestsByElection(ctx context.Context, electionID string) ([]models.Contest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contests.sorted(func(c models.Contest) bool { return c.ElectionID == electionID }), nil
}

func (s *MemStore) UpdateContest(ctx context.Context, id string, u models.ContestUpdate) (models.Contest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.contests[id]
	if !ok {
		return models.Contest{}, fmt.Errorf("update contest: %w", ErrNotFound)
	}
	r.val = u.Apply(r.val)
	s.contests[id] = r
	return r.val, nil
}

func (s *MemStore) DeleteContest(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contests[id]; !ok {
		return false, nil
	}
	s.deleteContestLocked(id)
	return true, nil
}

// deleteContestLocked removes a contest with its options and votes.
func (s *MemStore) deleteContestLocked(id string) {
	delete(s.contests, id)
	for oid, o := range s.options {
		if o.val.ContestID == id {
			delete(s.options, oid)
		}
	}
	for vid, v := range s.votes {
		if v.val.ContestID == id {
			delete(s.votes, vid)
			delete(s.voteIndex, [2]string{v.val.UserID, v.val.ContestID})
		}
	}
}

// Options

func (s *MemStore) CreateOption(ctx context.Context, o models.Option) (models.Option, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contests[o.ContestID]; !ok {
		return models.Option{}, fmt.Errorf("insert option: %w: contest %s", ErrInvalidReference, o.ContestID)
	}
	o.ID = uuid.NewString()
	s.options[o.ID] = memRow[models.Option]{seq: s.next(), val: o}
	return o, nil
}

func (s *MemStore) GetOption(ctx context.Context, id string) (models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.options[id]
	if !ok {
		return models.Option{}, fmt.Errorf("get option: %w", ErrNotFound)
	}
	return r.val, nil
}

func (s *MemStore) ListOptionsByContest(ctx context.Context, contestID string) ([]models.Option, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.options.sorted(func(o models.Option) bool { return o.ContestID == contestID }), nil
}

func (s *MemStore) DeleteOption(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.options[id]; !ok {
		return false, nil
	}
	delete(s.options, id)
	return true, nil
}

// Eligible voters

func (s *MemStore) AddEligibleVoter(ctx context.Context, ev models.EligibleVoter) (models.EligibleVoter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.elections[ev.ElectionID]; !ok {
		return models.EligibleVoter{}, fmt.Errorf("insert eligible voter: %w: election %s", ErrInvalidReference, ev.ElectionID)
	}
	if _, ok := s.users[ev.UserID]; !ok {
		return models.EligibleVoter{}, fmt.Errorf("insert eligible voter: %w: user %s", ErrInvalidReference, ev.UserID)
	}
	key := [2]string{ev.ElectionID, ev.UserID}
	if _, dup := s.voterIndex[key]; dup {
		return models.EligibleVoter{}, fmt.Errorf("insert eligible voter: %w", ErrConflict)
	}

	ev.ID = uuid.NewString()
	s.voters[ev.ID] = memRow[models.EligibleVoter]{seq: s.next(), val: ev}
	s.voterIndex[key] = ev.ID
	return ev, nil
}

func (s *MemStore) RemoveEligibleVoter(ctx context.Context, electionID, userID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := [2]string{electionID, userID}
	id, ok := s.voterIndex[key]
	if !ok {
		return false, nil
	}
	delete(s.voters, id)
	delete(s.voterIndex, key)
	return true, nil
}

func (s *MemStore) ListEligibleVotersByElection(ctx context.Context, electionID string) ([]models.EligibleVoter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voters.sorted(func(v models.EligibleVoter) bool { return v.ElectionID == electionID }), nil
}

func (s *MemStore) ListEligibleElectionIDs(ctx context.Context, userID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	voters := s.voters.sorted(func(v models.EligibleVoter) bool { return v.UserID == userID })
	ids := make([]string, len(voters))
	for i, v := range voters {
		ids[i] = v.ElectionID
	}
	return ids, nil
}

func (s *MemStore) IsVoterEligible(ctx context.Context, electionID, userID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.voterIndex[[2]string{electionID, userID}]
	return ok, nil
}

// Votes

func (s *MemStore) RecordVote(ctx context.Context, v models.Vote, entry models.AuditLog) (models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.contests[v.ContestID]; !ok {
		return models.Vote{}, fmt.Errorf("insert vote: %w: contest %s", ErrInvalidReference, v.ContestID)
	}
	if _, ok := s.users[v.UserID]; !ok {
		return models.Vote{}, fmt.Errorf("insert vote: %w: user %s", ErrInvalidReference, v.UserID)
	}
	key := [2]string{v.UserID, v.ContestID}
	if _, dup := s.voteIndex[key]; dup {
		return models.Vote{}, fmt.Errorf("insert vote: %w", ErrConflict)
	}

	v.ID = uuid.NewString()
	if v.CreatedAt.IsZero() {
		v.CreatedAt = time.Now()
	}
	v.CreatedAt = v.CreatedAt.UTC()
	v = cloneVote(v)
	if entry.EntityID == nil {
		entry.EntityID = &v.ID
	}

	s.votes[v.ID] = memRow[models.Vote]{seq: s.next(), val: v}
	s.voteIndex[key] = v.ID
	s.appendAuditLogLocked(entry)
	return cloneVote(v), nil
}

func (s *MemStore) GetVote(ctx context.Context, userID, contestID string) (models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.voteIndex[[2]string{userID, contestID}]
	if !ok {
		return models.Vote{}, fmt.Errorf("get vote: %w", ErrNotFound)
	}
	return cloneVote(s.votes[id].val), nil
}

func (s *MemStore) HasVoted(ctx context.Context, userID, contestID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.voteIndex[[2]string{userID, contestID}]
	return ok, nil
}

func (s *MemStore) ListVotesByContest(ctx context.Context, contestID string) ([]models.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	votes := s.votes.sorted(func(v models.Vote) bool { return v.ContestID == contestID })
	for i := range votes {
		votes[i] = cloneVote(votes[i])
	}
	return votes, nil
}

// cloneVote detaches OptionIDs from the stored record
func cloneVote(v models.Vote) models.Vote {
	v.OptionIDs = append([]string{}, v.OptionIDs...)
	return v
}

// Audit logs

func (s *MemStore) AppendAuditLog(ctx context.Context, entry models.AuditLog) (models.AuditLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendAuditLogLocked(entry), nil
}

func (s *MemStore) appendAuditLogLocked(entry models.AuditLog) models.AuditLog {
	entry.ID = uuid.NewString()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	entry.CreatedAt = entry.CreatedAt.UTC()
	s.auditLogs[entry.ID] = memRow[models.AuditLog]{seq: s.next(), val: entry}
	return entry
}

func (s *MemStore) ListAuditLogs(ctx context.Context, filter models.AuditFilter) ([]models.AuditLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := s.auditLogs.sorted(func(l models.AuditLog) bool {
		return matches(l.UserID, filter.UserID) &&
			matches(l.EntityType, filter.EntityType) &&
			matches(l.EntityID, filter.EntityID)
	})
	// Newest first.
	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

func matches(field *string, want string) bool {
	if want == "" {
		return true
	}
	return field != nil && *field == want
}
