// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/blueballot/models"
)

// backends runs fn once per Store implementation
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemStore())
	})
	t.Run("sqlite", func(t *testing.T) {
		s, err := OpenSQLite(context.Background(), ":memory:")
		require.NoError(t, err)
		t.Cleanup(func() { s.Close() })
		fn(t, s)
	})
}

type fixture struct {
	user     models.User
	election models.Election
	contest  models.Contest
	options  []models.Option
}

func seed(t *testing.T, s Store) fixture {
	t.Helper()
	ctx := context.Background()

	u, err := s.CreateUser(ctx, models.User{Email: "voter@example.com", PasswordHash: "hash", Role: models.RoleVoter})
	require.NoError(t, err)

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	e, err := s.CreateElection(ctx, models.Election{
		Title:   "Spring Election",
		StartAt: start,
		EndAt:   start.Add(8 * time.Hour),
		Status:  models.StatusOpen,
	})
	require.NoError(t, err)

	c, err := s.CreateContest(ctx, models.Contest{ElectionID: e.ID, Title: "Mayor", Type: models.ContestSingleChoice})
	require.NoError(t, err)

	var opts []models.Option
	for _, label := range []string{"North", "South"} {
		o, err := s.CreateOption(ctx, models.Option{ContestID: c.ID, Label: label})
		require.NoError(t, err)
		opts = append(opts, o)
	}
	return fixture{user: u, election: e, contest: c, options: opts}
}

func TestUsers(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		name := "Alice"

		u, err := s.CreateUser(ctx, models.User{Email: "alice@example.com", PasswordHash: "hash", Role: models.RoleAdmin, Name: &name})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)

		got, err := s.GetUser(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, u, got)

		got, err = s.GetUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		assert.Equal(t, "hash", got.PasswordHash)

		_, err = s.CreateUser(ctx, models.User{Email: "alice@example.com", PasswordHash: "other", Role: models.RoleVoter})
		assert.ErrorIs(t, err, ErrConflict)

		_, err = s.GetUser(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetUserByEmail(ctx, "missing@example.com")
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.CreateUser(ctx, models.User{Email: "bob@example.com", PasswordHash: "hash", Role: models.RoleVoter})
		require.NoError(t, err)
		users, err := s.ListUsers(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice@example.com", users[0].Email)
		assert.Equal(t, "bob@example.com", users[1].Email)
	})
}

func TestElections(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)

		got, err := s.GetElection(ctx, f.election.ID)
		require.NoError(t, err)
		assert.Equal(t, f.election.Title, got.Title)
		assert.True(t, got.StartAt.Equal(f.election.StartAt))
		assert.True(t, got.EndAt.Equal(f.election.EndAt))
		assert.False(t, got.CreatedAt.IsZero())

		title := "Renamed"
		status := models.StatusClosed
		updated, err := s.UpdateElection(ctx, f.election.ID, models.ElectionUpdate{Title: &title, Status: &status})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", updated.Title)
		assert.Equal(t, models.StatusClosed, updated.Status)
		assert.True(t, updated.EndAt.Equal(f.election.EndAt), "unset fields keep their value")

		_, err = s.UpdateElection(ctx, "missing", models.ElectionUpdate{Title: &title})
		assert.ErrorIs(t, err, ErrNotFound)

		list, err := s.ListElections(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 1)

		ok, err := s.DeleteElection(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestContestsAndOptions(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)

		_, err := s.CreateContest(ctx, models.Contest{ElectionID: "missing", Title: "Orphan", Type: models.ContestSingleChoice})
		assert.ErrorIs(t, err, ErrInvalidReference)
		_, err = s.CreateOption(ctx, models.Option{ContestID: "missing", Label: "Orphan"})
		assert.ErrorIs(t, err, ErrInvalidReference)

		max := 2
		multi := models.ContestMultiChoice
		updated, err := s.UpdateContest(ctx, f.contest.ID, models.ContestUpdate{Type: &multi, MaxChoices: &max})
		require.NoError(t, err)
		assert.Equal(t, models.ContestMultiChoice, updated.Type)
		require.NotNil(t, updated.MaxChoices)
		assert.Equal(t, 2, *updated.MaxChoices)

		contests, err := s.ListContestsByElection(ctx, f.election.ID)
		require.NoError(t, err)
		require.Len(t, contests, 1)
		assert.Equal(t, updated, contests[0])

		opts, err := s.ListOptionsByContest(ctx, f.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, f.options, opts, "options keep creation order")

		ok, err := s.DeleteOption(ctx, f.options[0].ID)
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = s.GetOption(ctx, f.options[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)

		ok, err = s.DeleteContest(ctx, f.contest.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		_, err = s.GetOption(ctx, f.options[1].ID)
		assert.ErrorIs(t, err, ErrNotFound, "options are deleted with their contest")
	})
}

func TestEligibility(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)

		ev, err := s.AddEligibleVoter(ctx, models.EligibleVoter{ElectionID: f.election.ID, UserID: f.user.ID})
		require.NoError(t, err)
		assert.NotEmpty(t, ev.ID)

		_, err = s.AddEligibleVoter(ctx, models.EligibleVoter{ElectionID: f.election.ID, UserID: f.user.ID})
		assert.ErrorIs(t, err, ErrConflict)
		_, err = s.AddEligibleVoter(ctx, models.EligibleVoter{ElectionID: f.election.ID, UserID: "missing"})
		assert.ErrorIs(t, err, ErrInvalidReference)
		_, err = s.AddEligibleVoter(ctx, models.EligibleVoter{ElectionID: "missing", UserID: f.user.ID})
		assert.ErrorIs(t, err, ErrInvalidReference)

		eligible, err := s.IsVoterEligible(ctx, f.election.ID, f.user.ID)
		require.NoError(t, err)
		assert.True(t, eligible)

		ids, err := s.ListEligibleElectionIDs(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{f.election.ID}, ids)

		voters, err := s.ListEligibleVotersByElection(ctx, f.election.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.EligibleVoter{ev}, voters)

		ok, err := s.RemoveEligibleVoter(ctx, f.election.ID, f.user.ID)
		require.NoError(t, err)
		assert.True(t, ok)
		ok, err = s.RemoveEligibleVoter(ctx, f.election.ID, f.user.ID)
		require.NoError(t, err)
		assert.False(t, ok)

		eligible, err = s.IsVoterEligible(ctx, f.election.ID, f.user.ID)
		require.NoError(t, err)
		assert.False(t, eligible)
	})
}

func TestRecordVote(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)
		entry := func() models.AuditLog {
			userID, entityType := f.user.ID, "vote"
			return models.AuditLog{UserID: &userID, Action: "vote_cast", EntityType: &entityType}
		}

		v, err := s.RecordVote(ctx, models.Vote{UserID: f.user.ID, ContestID: f.contest.ID, OptionIDs: []string{f.options[1].ID}}, entry())
		require.NoError(t, err)
		assert.NotEmpty(t, v.ID)

		got, err := s.GetVote(ctx, f.user.ID, f.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, v.ID, got.ID)
		assert.Equal(t, []string{f.options[1].ID}, got.OptionIDs)

		voted, err := s.HasVoted(ctx, f.user.ID, f.contest.ID)
		require.NoError(t, err)
		assert.True(t, voted)

		// The audit entry points at the vote it records
		logs, err := s.ListAuditLogs(ctx, models.AuditFilter{EntityType: "vote"})
		require.NoError(t, err)
		require.Len(t, logs, 1)
		require.NotNil(t, logs[0].EntityID)
		assert.Equal(t, v.ID, *logs[0].EntityID)

		// A second vote fails and leaves no audit entry behind
		_, err = s.RecordVote(ctx, models.Vote{UserID: f.user.ID, ContestID: f.contest.ID, OptionIDs: []string{f.options[0].ID}}, entry())
		assert.ErrorIs(t, err, ErrConflict)
		logs, err = s.ListAuditLogs(ctx, models.AuditFilter{EntityType: "vote"})
		require.NoError(t, err)
		assert.Len(t, logs, 1)

		_, err = s.RecordVote(ctx, models.Vote{UserID: f.user.ID, ContestID: "missing", OptionIDs: []string{f.options[0].ID}}, entry())
		assert.ErrorIs(t, err, ErrInvalidReference)

		_, err = s.GetVote(ctx, f.user.ID, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		votes, err := s.ListVotesByContest(ctx, f.contest.ID)
		require.NoError(t, err)
		assert.Len(t, votes, 1)
	})
}

func TestVoteReadsAreCopies(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)
		want := []string{f.options[0].ID, f.options[1].ID}

		cast, err := s.RecordVote(ctx, models.Vote{UserID: f.user.ID, ContestID: f.contest.ID, OptionIDs: append([]string{}, want...)}, models.AuditLog{Action: "vote_cast"})
		require.NoError(t, err)
		cast.OptionIDs[0] = "tampered"

		got, err := s.GetVote(ctx, f.user.ID, f.contest.ID)
		require.NoError(t, err)
		got.OptionIDs[0] = "tampered"

		listed, err := s.ListVotesByContest(ctx, f.contest.ID)
		require.NoError(t, err)
		require.Len(t, listed, 1)
		listed[0].OptionIDs[1] = "tampered"

		again, err := s.GetVote(ctx, f.user.ID, f.contest.ID)
		require.NoError(t, err)
		assert.Equal(t, want, again.OptionIDs)
	})
}

func TestDeleteElectionCascades(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)

		_, err := s.AddEligibleVoter(ctx, models.EligibleVoter{ElectionID: f.election.ID, UserID: f.user.ID})
		require.NoError(t, err)
		_, err = s.RecordVote(ctx, models.Vote{UserID: f.user.ID, ContestID: f.contest.ID, OptionIDs: []string{f.options[0].ID}}, models.AuditLog{Action: "vote_cast"})
		require.NoError(t, err)

		ok, err := s.DeleteElection(ctx, f.election.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, err = s.GetElection(ctx, f.election.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetContest(ctx, f.contest.ID)
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = s.GetOption(ctx, f.options[0].ID)
		assert.ErrorIs(t, err, ErrNotFound)

		voted, err := s.HasVoted(ctx, f.user.ID, f.contest.ID)
		require.NoError(t, err)
		assert.False(t, voted)

		ids, err := s.ListEligibleElectionIDs(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Empty(t, ids)

		// Users and the audit trail survive
		_, err = s.GetUser(ctx, f.user.ID)
		assert.NoError(t, err)
		logs, err := s.ListAuditLogs(ctx, models.AuditFilter{})
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})
}

func TestAuditLogs(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		f := seed(t, s)

		str := func(v string) *string { return &v }
		details := `{"electionId":"` + f.election.ID + `"}`
		entries := []models.AuditLog{
			{UserID: str(f.user.ID), Action: "user_login", EntityType: str("user"), EntityID: str(f.user.ID)},
			{Action: "admin_bootstrapped"},
			{UserID: str(f.user.ID), Action: "contest_created", EntityType: str("contest"), EntityID: str(f.contest.ID), Details: &details},
		}
		for _, e := range entries {
			stored, err := s.AppendAuditLog(ctx, e)
			require.NoError(t, err)
			assert.NotEmpty(t, stored.ID)
			assert.False(t, stored.CreatedAt.IsZero())
		}

		all, err := s.ListAuditLogs(ctx, models.AuditFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "contest_created", all[0].Action, "newest first")
		assert.Equal(t, "user_login", all[2].Action)
		assert.Nil(t, all[1].UserID)
		assert.Nil(t, all[1].Details)
		require.NotNil(t, all[0].Details)
		assert.JSONEq(t, details, *all[0].Details)

		byUser, err := s.ListAuditLogs(ctx, models.AuditFilter{UserID: f.user.ID})
		require.NoError(t, err)
		assert.Len(t, byUser, 2)

		byEntity, err := s.ListAuditLogs(ctx, models.AuditFilter{EntityType: "contest", EntityID: f.contest.ID})
		require.NoError(t, err)
		require.Len(t, byEntity, 1)
		assert.Equal(t, "contest_created", byEntity[0].Action)

		none, err := s.ListAuditLogs(ctx, models.AuditFilter{EntityType: "election"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemStore{}, s)
	assert.NoError(t, s.Ping(ctx))

	s, err = Open(ctx, BackendSQLite, ":memory:")
	require.NoError(t, err)
	assert.IsType(t, &SQLStore{}, s)
	assert.NoError(t, s.Close())

	_, err = Open(ctx, BackendSQLite, "")
	assert.Error(t, err)

	_, err = Open(ctx, "mongo", "")
	assert.Error(t, err)
}
