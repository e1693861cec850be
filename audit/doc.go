// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package audit records append-only events for security-relevant actions.

	logger := audit.NewLogger(store, slog.Default())
	logger.Append(ctx, audit.Entry{
		UserID:     admin.ID,
		Action:     audit.ActionElectionCreated,
		EntityType: audit.EntityElection,
		EntityID:   election.ID,
	})

Query filters by user, entity type and entity id; results are newest first.

Record builds the stored form without writing it, for callers that persist
the entry in the same transaction as the change it describes (vote casting).
*/
package audit
