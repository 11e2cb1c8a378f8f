package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/sparcsched/internal/trace"
)

// ErrSessionNotFound is returned by ReadSession for an unknown ID.
var ErrSessionNotFound = errors.New("session not found")

// SessionSummary is one row of ListSessions.
type SessionSummary struct {
	ID          string `json:"id"`
	Routine     string `json:"routine"`
	RoutineHash string `json:"routine_hash"`
	Scheduler   string `json:"scheduler"`
	Policy      string `json:"policy,omitempty"`
	Decisions   int    `json:"decisions"`
	Hazards     int    `json:"hazards"`
	Fallbacks   int    `json:"fallbacks"`
}

// ReadSession loads a complete session. Block starts and decisions are
// ordered by seq.
func (s *Store) ReadSession(ctx context.Context, id string) (trace.Session, error) {
	var sess trace.Session
	err := s.db.QueryRowContext(ctx, `
		SELECT id, routine, routine_hash, scheduler, policy
		FROM sessions
		WHERE id = ?
	`, id).Scan(&sess.ID, &sess.Routine, &sess.RoutineHash, &sess.Scheduler, &sess.Policy)
	if errors.Is(err, sql.ErrNoRows) {
		return trace.Session{}, fmt.Errorf("read session %s: %w", id, ErrSessionNotFound)
	}
	if err != nil {
		return trace.Session{}, fmt.Errorf("read session %s: %w", id, err)
	}

	if sess.Blocks, err = s.readBlockStarts(ctx, id); err != nil {
		return trace.Session{}, err
	}
	if sess.Decisions, err = s.readDecisions(ctx, id); err != nil {
		return trace.Session{}, err
	}
	return sess, nil
}

func (s *Store) readBlockStarts(ctx context.Context, id string) ([]trace.BlockStart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, block, branch_condition
		FROM block_starts
		WHERE session_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query block starts: %w", err)
	}
	defer rows.Close()

	blocks := []trace.BlockStart{}
	for rows.Next() {
		var b trace.BlockStart
		if err := rows.Scan(&b.Seq, &b.Block, &b.BranchCondition); err != nil {
			return nil, fmt.Errorf("scan block start: %w", err)
		}
		blocks = append(blocks, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate block starts: %w", err)
	}
	return blocks, nil
}

func (s *Store) readDecisions(ctx context.Context, id string) ([]trace.Decision, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, block, ready, hazards, chosen, fallback
		FROM decisions
		WHERE session_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	decisions := []trace.Decision{}
	for rows.Next() {
		var (
			d        trace.Decision
			ready    string
			hazards  string
			fallback int
		)
		if err := rows.Scan(&d.Seq, &d.Block, &ready, &hazards, &d.Chosen, &fallback); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		if d.Ready, err = unmarshalReady(ready); err != nil {
			return nil, err
		}
		if d.Hazards, err = unmarshalHazards(hazards); err != nil {
			return nil, err
		}
		d.Fallback = fallback != 0
		decisions = append(decisions, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate decisions: %w", err)
	}
	return decisions, nil
}

// ListSessions returns a summary of every stored session in insertion
// order. A non-empty routineHash restricts the result to runs over that
// routine, which lets schedulers be compared on the same input.
func (s *Store) ListSessions(ctx context.Context, routineHash string) ([]SessionSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.id, s.routine, s.routine_hash, s.scheduler, s.policy,
		       COUNT(d.seq),
		       COALESCE(SUM(d.hazard_count), 0),
		       COALESCE(SUM(d.fallback), 0)
		FROM sessions s
		LEFT JOIN decisions d ON d.session_id = s.id
		WHERE ? = '' OR s.routine_hash = ?
		GROUP BY s.rowid
		ORDER BY s.rowid ASC
	`, routineHash, routineHash)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := []SessionSummary{}
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.ID, &sum.Routine, &sum.RoutineHash, &sum.Scheduler, &sum.Policy,
			&sum.Decisions, &sum.Hazards, &sum.Fallbacks); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}
