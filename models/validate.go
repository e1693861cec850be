// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"errors"
	"strings"
)

// Validate checks the fields an election must always satisfy.
func (e Election) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return errors.New("title is required")
	}
	if e.StartAt.IsZero() || e.EndAt.IsZero() {
		return errors.New("startAt and endAt are required")
	}
	if e.EndAt.Before(e.StartAt) {
		return errors.New("endAt must not be before startAt")
	}
	if !ValidElectionStatus(e.Status) {
		return errors.New("status must be one of draft, scheduled, open, closed, archived")
	}
	return nil
}

func (c Contest) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if c.ElectionID == "" {
		return errors.New("electionId is required")
	}
	if !ValidContestType(c.Type) {
		return errors.New("type must be single-choice or multi-choice")
	}
	if c.MaxChoices != nil && *c.MaxChoices < 1 {
		return errors.New("maxChoices must be at least 1")
	}
	return nil
}

func (o Option) Validate() error {
	if strings.TrimSpace(o.Label) == "" {
		return errors.New("label is required")
	}
	if o.ContestID == "" {
		return errors.New("contestId is required")
	}
	return nil
}
