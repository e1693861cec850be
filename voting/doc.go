// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting implements eligibility checks, single-vote enforcement and
tallies.

# Casting

	vote, err := engine.CastVote(ctx, voterID, contestID, optionIDs)

Checks, in order:

 1. the contest exists (ErrNotFound)
 2. the voter has no vote in it yet (ErrAlreadyVoted, never overwritten)
 3. the voter is eligible for the contest's election (ErrNotEligible)
 4. the selection fits the contest (ErrInvalidSelection)

A successful cast stores one Vote and one vote_cast audit entry in a single
store operation. Casts for the same (voter, contest) pair run one at a time;
the store's uniqueness constraint covers other processes.

# Tallies

	tally, err := engine.TallyContest(ctx, contestID)

Each option's count is the number of votes that include it, so a
multi-choice vote adds to several counts. TotalVotes counts vote records.
*/
package voting
