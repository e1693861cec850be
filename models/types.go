// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "time"

// User roles
const (
	RoleAdmin = "admin"
	RoleVoter = "voter"
)

// Election status constants
const (
	StatusDraft     = "draft"
	StatusScheduled = "scheduled"
	StatusOpen      = "open"
	StatusClosed    = "closed"
	StatusArchived  = "archived"
)

// Contest type constants
const (
	ContestSingleChoice = "single-choice"
	ContestMultiChoice  = "multi-choice"
)

// ValidElectionStatus reports whether s is one of the election status values.
func ValidElectionStatus(s string) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusOpen, StatusClosed, StatusArchived:
		return true
	}
	return false
}

// ValidContestType reports whether t is one of the contest type values.
func ValidContestType(t string) bool {
	return t == ContestSingleChoice || t == ContestMultiChoice
}

// Domain types

type User struct {
	ID           string  `json:"id"`
	Email        string  `json:"email"`
	PasswordHash string  `json:"-"` // Never expose in JSON
	Role         string  `json:"role"`
	Name         *string `json:"name,omitempty"`
}

type Election struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"createdAt"`
}

type Contest struct {
	ID          string  `json:"id"`
	ElectionID  string  `json:"electionId"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Type        string  `json:"type"`
	MaxChoices  *int    `json:"maxChoices,omitempty"`
}

type Option struct {
	ID          string  `json:"id"`
	ContestID   string  `json:"contestId"`
	Label       string  `json:"label"`
	Description *string `json:"description,omitempty"`
}

type EligibleVoter struct {
	ID         string `json:"id"`
	ElectionID string `json:"electionId"`
	UserID     string `json:"userId"`
}

type Vote struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ContestID string    `json:"contestId"`
	OptionIDs []string  `json:"optionIds"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuditLog struct {
	ID         string    `json:"id"`
	UserID     *string   `json:"userId,omitempty"`
	Action     string    `json:"action"`
	EntityType *string   `json:"entityType,omitempty"`
	EntityID   *string   `json:"entityId,omitempty"`
	Details    *string   `json:"details,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AuditFilter narrows an audit log query. Empty fields match everything.
type AuditFilter struct {
	UserID     string
	EntityType string
	EntityID   string
}

// Partial updates. Nil fields are left untouched.

type ElectionUpdate struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartAt     *time.Time `json:"startAt"`
	EndAt       *time.Time `json:"endAt"`
	Status      *string    `json:"status"`
}

type ContestUpdate struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Type        *string `json:"type"`
	MaxChoices  *int    `json:"maxChoices"`
}

// Apply returns e with the non-nil fields of u applied.
func (u ElectionUpdate) Apply(e Election) Election {
	if u.Title != nil {
		e.Title = *u.Title
	}
	if u.Description != nil {
		e.Description = u.Description
	}
	if u.StartAt != nil {
		e.StartAt = *u.StartAt
	}
	if u.EndAt != nil {
		e.EndAt = *u.EndAt
	}
	if u.Status != nil {
		e.Status = *u.Status
	}
	return e
}

// Apply returns c with the non-nil fields of u applied.
func (u ContestUpdate) Apply(c Contest) Contest {
	if u.Title != nil {
		c.Title = *u.Title
	}
	if u.Description != nil {
		c.Description = u.Description
	}
	if u.Type != nil {
		c.Type = *u.Type
	}
	if u.MaxChoices != nil {
		c.MaxChoices = u.MaxChoices
	}
	return c
}

// Tally types

type OptionTally struct {
	Option
	VoteCount int `json:"voteCount"`
}

type Tally struct {
	ContestID  string        `json:"contestId"`
	TotalVotes int           `json:"totalVotes"`
	Results    []OptionTally `json:"results"`
}

// Request types

type RegisterRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateElectionRequest struct {
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Status      string    `json:"status"`
}

type CreateContestRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Type        string  `json:"type"`
	MaxChoices  *int    `json:"maxChoices"`
}

type CreateOptionRequest struct {
	Label       string  `json:"label"`
	Description *string `json:"description"`
}

type AddEligibleVoterRequest struct {
	UserID string `json:"userId"`
}

type CastVoteRequest struct {
	ContestID string   `json:"contestId"`
	OptionIDs []string `json:"optionIds"`
}

// Response types

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
