package store

import (
	"context"
	"fmt"

	"github.com/roach88/sparcsched/internal/trace"
)

// WriteSession stores a complete session in one transaction.
//
// Uses ON CONFLICT DO NOTHING throughout, so writing the same session twice
// is a no-op. A session ID is expected to be unique per run; rewriting an ID
// with different content keeps the first version.
func (s *Store) WriteSession(ctx context.Context, sess trace.Session) error {
	if sess.ID == "" {
		return fmt.Errorf("write session: empty session id")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write session: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions (id, routine, routine_hash, scheduler, policy)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, sess.ID, sess.Routine, sess.RoutineHash, sess.Scheduler, sess.Policy)
	if err != nil {
		return fmt.Errorf("write session %s: %w", sess.ID, err)
	}

	for _, b := range sess.Blocks {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO block_starts (session_id, seq, block, branch_condition)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(session_id, seq) DO NOTHING
		`, sess.ID, b.Seq, b.Block, b.BranchCondition)
		if err != nil {
			return fmt.Errorf("write block start seq=%d: %w", b.Seq, err)
		}
	}

	for _, d := range sess.Decisions {
		ready, err := marshalReady(d.Ready)
		if err != nil {
			return fmt.Errorf("write decision seq=%d: %w", d.Seq, err)
		}
		hazards, err := marshalHazards(d.Hazards)
		if err != nil {
			return fmt.Errorf("write decision seq=%d: %w", d.Seq, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO decisions
			(session_id, seq, block, ready, hazards, hazard_count, chosen, fallback)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(session_id, seq) DO NOTHING
		`, sess.ID, d.Seq, d.Block, ready, hazards, len(d.Hazards), d.Chosen, boolToInt(d.Fallback))
		if err != nil {
			return fmt.Errorf("write decision seq=%d: %w", d.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write session %s: commit: %w", sess.ID, err)
	}
	return nil
}
