// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Domain Types

  - User: account with role admin or voter (password hash never serialized)
  - Election: title, window, lifecycle status
  - Contest: one decision within an election (single- or multi-choice)
  - Option: one selectable choice within a contest
  - EligibleVoter: grants a user the right to vote in an election
  - Vote: a voter's ordered option selection for one contest
  - AuditLog: append-only record of a security-relevant action

# Request Types

  - RegisterRequest, LoginRequest
  - CreateElectionRequest, ElectionUpdate
  - CreateContestRequest, ContestUpdate
  - CreateOptionRequest
  - AddEligibleVoterRequest
  - CastVoteRequest: contestId, optionIds

# Response Types

  - Tally: contestId, totalVotes, results (option fields plus voteCount)
  - SuccessResponse, ErrorResponse

# Constants

Roles:

	RoleAdmin = "admin"
	RoleVoter = "voter"

Election status:

	StatusDraft, StatusScheduled, StatusOpen, StatusClosed, StatusArchived

Contest types:

	ContestSingleChoice = "single-choice"
	ContestMultiChoice  = "multi-choice"

JSON keys are camelCase to match the web client.
*/
package models
