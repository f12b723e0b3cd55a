// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ledger enforces at most one vote per session per target.

Each vote is one transaction:

 1. check the session exists (otherwise models.ErrNotFound)
 2. read the target's counter (missing target is models.ErrNotFound)
 3. insert the ledger row, or swing its vote type
 4. apply the counter delta
 5. credit the voter's reputation for up-votes

An insert that finds the row already present, or a swing that finds the
type already changed, means a concurrent request won. The whole unit is then
retried, up to three attempts.

# Outcomes

	no prior vote       Accepted   delta ±1
	same vote type      Unchanged  delta 0
	opposite vote type  Changed    delta ±2
	Unvote with a row   Withdrawn  inverse delta

# Address check

New votes are rejected with models.ErrRateLimited when the caller's hashed
address has voted on AbuseThreshold distinct targets under other sessions
within AbuseWindow.
*/
package ledger
