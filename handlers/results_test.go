// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/blueballot/models"
	"github.com/danielhkuo/blueballot/testutil"
)

func TestGetResults(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.engine)
	ctx := context.Background()

	election := testutil.CreateTestElection(t, env.store, models.StatusOpen)
	contest := testutil.CreateTestContest(t, env.store, election.ID, models.ContestMultiChoice, 2)
	a := testutil.AddTestOption(t, env.store, contest.ID, "Alpha")
	b := testutil.AddTestOption(t, env.store, contest.ID, "Bravo")
	c := testutil.AddTestOption(t, env.store, contest.ID, "Charlie")

	ballots := [][]string{
		{a.ID, b.ID},
		{a.ID},
		{b.ID, a.ID},
	}
	for i, selection := range ballots {
		u := testutil.CreateTestUser(t, env.store, "voter"+string(rune('a'+i))+"@example.com", models.RoleVoter)
		testutil.MakeEligible(t, env.store, election.ID, u.ID)
		if _, err := env.engine.CastVote(ctx, u.ID, contest.ID, selection); err != nil {
			t.Fatalf("Failed to cast vote %d: %v", i, err)
		}
	}

	req := asUser(httptest.NewRequest("GET", "/contests/"+contest.ID+"/results", nil), env.admin)
	req.SetPathValue("id", contest.ID)
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var tally models.Tally
	testutil.AssertJSON(t, w, &tally)

	if tally.ContestID != contest.ID {
		t.Errorf("Expected contestId %s, got %s", contest.ID, tally.ContestID)
	}
	if tally.TotalVotes != len(ballots) {
		t.Errorf("Expected %d total votes, got %d", len(ballots), tally.TotalVotes)
	}

	expected := []struct {
		id    string
		count int
	}{{a.ID, 3}, {b.ID, 2}, {c.ID, 0}}
	if len(tally.Results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(tally.Results))
	}
	for i, e := range expected {
		if tally.Results[i].ID != e.id || tally.Results[i].VoteCount != e.count {
			t.Errorf("Result %d: expected %s=%d, got %s=%d", i, e.id, e.count, tally.Results[i].ID, tally.Results[i].VoteCount)
		}
	}
}

func TestGetResultsShape(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.engine)

	election := testutil.CreateTestElection(t, env.store, models.StatusOpen)
	contest := testutil.CreateTestContest(t, env.store, election.ID, models.ContestSingleChoice, 0)
	testutil.AddTestOption(t, env.store, contest.ID, "Only")

	req := asUser(httptest.NewRequest("GET", "/contests/"+contest.ID+"/results", nil), env.admin)
	req.SetPathValue("id", contest.ID)
	w := httptest.NewRecorder()
	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)

	var raw map[string]json.RawMessage
	testutil.AssertJSON(t, w, &raw)
	for _, key := range []string{"contestId", "totalVotes", "results"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in results", key)
		}
	}

	var results []map[string]interface{}
	if err := json.Unmarshal(raw["results"], &results); err != nil {
		t.Fatalf("Failed to decode results: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	for _, key := range []string{"id", "contestId", "label", "voteCount"} {
		if _, ok := results[0][key]; !ok {
			t.Errorf("Expected key %q in option result", key)
		}
	}
	if results[0]["voteCount"] != float64(0) {
		t.Errorf("Expected zero votes, got %v", results[0]["voteCount"])
	}
}

func TestGetResultsNotFound(t *testing.T) {
	env := newTestEnv(t)
	handler := NewResultsHandler(env.engine)

	req := asUser(httptest.NewRequest("GET", "/contests/nonexistent/results", nil), env.admin)
	req.SetPathValue("id", "nonexistent")
	w := httptest.NewRecorder()

	handler.GetResults(w, req)

	testutil.AssertStatus(t, w, http.StatusNotFound)
}
