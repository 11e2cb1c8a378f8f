package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparcsched/internal/store"
	"github.com/roach88/sparcsched/internal/trace"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database    string
	SessionID   string
	RoutineHash string // optional - filter the session list
}

// TraceEvent is one entry of a session timeline.
type TraceEvent struct {
	Seq  int64  `json:"seq"`
	Type string `json:"type"` // "block" or "decision"

	Block           int64          `json:"block"`
	BranchCondition int64          `json:"branch_condition,omitempty"`
	Ready           []int64        `json:"ready,omitempty"`
	Hazards         []trace.Hazard `json:"hazards,omitempty"`
	Chosen          int64          `json:"chosen,omitempty"`
	Fallback        bool           `json:"fallback,omitempty"`
}

// TraceStats holds summary statistics for a session.
type TraceStats struct {
	Blocks    int `json:"blocks"`
	Decisions int `json:"decisions"`
	Hazards   int `json:"hazards"`
	Fallbacks int `json:"fallbacks"`
}

// TraceResult holds the complete trace of one session.
type TraceResult struct {
	SessionID   string       `json:"session_id"`
	Routine     string       `json:"routine"`
	RoutineHash string       `json:"routine_hash"`
	Scheduler   string       `json:"scheduler"`
	Policy      string       `json:"policy,omitempty"`
	Timeline    []TraceEvent `json:"timeline"`
	Stats       TraceStats   `json:"stats"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Inspect stored decision traces",
		Long: `Inspect the decision traces written by schedule --db.

Without --session, lists the stored sessions (optionally only those of one
routine hash). With --session, prints that session's timeline: every block
start and every selection with its ready set, detected hazards and choice.

Examples:
  sparcsched trace --db ./trace.db
  sparcsched trace --db ./trace.db --session 0192...
  sparcsched trace --db ./trace.db --session 0192... --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.SessionID, "session", "", "session to print")
	cmd.Flags().StringVar(&opts.RoutineHash, "routine", "", "list only sessions of this routine hash")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to open database", err)
	}
	defer st.Close()

	if opts.SessionID == "" {
		return listSessions(ctx, f, st, opts.RoutineHash)
	}

	session, err := st.ReadSession(ctx, opts.SessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return f.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("session not found: %s", opts.SessionID), nil)
	}
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to read session", err)
	}

	result := buildTraceResult(session)
	if f.IsJSON() {
		return f.Success(result)
	}
	outputTraceText(f.Writer, result)
	return nil
}

func listSessions(ctx context.Context, f *OutputFormatter, st *store.Store, routineHash string) error {
	sessions, err := st.ListSessions(ctx, routineHash)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeStore, "failed to list sessions", err)
	}
	if sessions == nil {
		sessions = []store.SessionSummary{}
	}

	if f.IsJSON() {
		return f.Success(map[string]any{"sessions": sessions})
	}

	w := f.Writer
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found.")
		return nil
	}
	fmt.Fprintf(w, "%-36s  %-16s  %-9s  %-8s  %9s  %7s  %9s\n",
		"SESSION", "ROUTINE", "SCHEDULER", "POLICY", "DECISIONS", "HAZARDS", "FALLBACKS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%-36s  %-16s  %-9s  %-8s  %9d  %7d  %9d\n",
			s.ID, s.Routine, s.Scheduler, s.Policy, s.Decisions, s.Hazards, s.Fallbacks)
	}
	return nil
}

// buildTraceResult merges block starts and decisions into one timeline in
// seq order.
func buildTraceResult(s trace.Session) TraceResult {
	timeline := make([]TraceEvent, 0, len(s.Blocks)+len(s.Decisions))
	bi, di := 0, 0
	for bi < len(s.Blocks) || di < len(s.Decisions) {
		if di >= len(s.Decisions) || (bi < len(s.Blocks) && s.Blocks[bi].Seq < s.Decisions[di].Seq) {
			b := s.Blocks[bi]
			timeline = append(timeline, TraceEvent{
				Seq:             b.Seq,
				Type:            "block",
				Block:           b.Block,
				BranchCondition: b.BranchCondition,
			})
			bi++
			continue
		}
		d := s.Decisions[di]
		timeline = append(timeline, TraceEvent{
			Seq:      d.Seq,
			Type:     "decision",
			Block:    d.Block,
			Ready:    d.Ready,
			Hazards:  d.Hazards,
			Chosen:   d.Chosen,
			Fallback: d.Fallback,
		})
		di++
	}

	return TraceResult{
		SessionID:   s.ID,
		Routine:     s.Routine,
		RoutineHash: s.RoutineHash,
		Scheduler:   s.Scheduler,
		Policy:      s.Policy,
		Timeline:    timeline,
		Stats: TraceStats{
			Blocks:    len(s.Blocks),
			Decisions: len(s.Decisions),
			Hazards:   s.HazardCount(),
			Fallbacks: s.FallbackCount(),
		},
	}
}

// outputTraceText outputs the trace result as text.
func outputTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Trace for Session: %s\n", result.SessionID)
	fmt.Fprintf(w, "Routine: %s (%s)\n", result.Routine, truncateID(result.RoutineHash))
	fmt.Fprintf(w, "Scheduler: %s, policy %s\n", result.Scheduler, result.Policy)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Timeline ===")
	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "  (no events)")
	}
	for _, e := range result.Timeline {
		switch e.Type {
		case "block":
			if e.BranchCondition != 0 {
				fmt.Fprintf(w, "  [%d] BLOCK %d cond %d\n", e.Seq, e.Block, e.BranchCondition)
			} else {
				fmt.Fprintf(w, "  [%d] BLOCK %d\n", e.Seq, e.Block)
			}
		case "decision":
			fmt.Fprintf(w, "  [%d] %s\n", e.Seq, formatDecision(trace.Decision{
				Block: e.Block, Ready: e.Ready, Hazards: e.Hazards, Chosen: e.Chosen, Fallback: e.Fallback,
			}))
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "=== Stats ===")
	fmt.Fprintf(w, "  Blocks:    %d\n", result.Stats.Blocks)
	fmt.Fprintf(w, "  Decisions: %d\n", result.Stats.Decisions)
	fmt.Fprintf(w, "  Hazards:   %d\n", result.Stats.Hazards)
	fmt.Fprintf(w, "  Fallbacks: %d\n", result.Stats.Fallbacks)
}

// formatDecision renders one selection as
// "PICK 6 from [3 6 7] hazards [7:branch] (fallback)".
func formatDecision(d trace.Decision) string {
	var b strings.Builder
	fmt.Fprintf(&b, "PICK %d from %s", d.Chosen, formatIDs(d.Ready))
	if len(d.Hazards) > 0 {
		parts := make([]string, len(d.Hazards))
		for i, h := range d.Hazards {
			parts[i] = fmt.Sprintf("%d:%s", h.Node, h.Kind)
		}
		fmt.Fprintf(&b, " hazards [%s]", strings.Join(parts, " "))
	}
	if d.Fallback {
		b.WriteString(" (fallback)")
	}
	return b.String()
}

func formatIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// truncateID truncates a long ID for display.
func truncateID(id string) string {
	if len(id) <= 16 {
		return id
	}
	return id[:8] + "..." + id[len(id)-8:]
}
