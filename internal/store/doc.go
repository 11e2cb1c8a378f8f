// Package store provides SQLite-backed storage for scheduling decision
// traces.
//
// A session is one scheduler run over one routine. Its block starts and
// decisions are keyed by (session_id, seq), where seq is the logical clock
// of the recording trace.Memory, and every query orders by seq. Ready sets
// and hazards are stored as canonical JSON so identical sessions produce
// identical rows.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
