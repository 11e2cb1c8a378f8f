package harness

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/sparcsched/internal/compiler"
	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/listsched"
	"github.com/roach88/sparcsched/internal/logging"
	"github.com/roach88/sparcsched/internal/store"
	"github.com/roach88/sparcsched/internal/testutil"
	"github.com/roach88/sparcsched/internal/trace"

	// registers the sparc scheduler
	_ "github.com/roach88/sparcsched/internal/sparc"
)

// Option configures Run.
type Option func(*runOptions)

type runOptions struct {
	logger *slog.Logger
}

// WithLogger routes scheduler logs to logger. Runs are silent by default.
func WithLogger(logger *slog.Logger) Option {
	return func(o *runOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
//
// Execution flow:
//  1. Load, compile and validate the routine
//  2. Schedule it with the named scheduler, recording into trace.Memory
//  3. Write the session to the store and read it back
//  4. Evaluate assertions against the final block orders
//
// A returned error means the scenario could not run; assertion failures are
// reported in Result.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	o := runOptions{logger: logging.Discard()}
	for _, opt := range opts {
		opt(&o)
	}

	r, err := compiler.LoadFile(scenario.Routine)
	if err != nil {
		return nil, fmt.Errorf("load routine: %w", err)
	}
	if verrs := compiler.Validate(r); len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i, e := range verrs {
			errs[i] = e
		}
		return nil, fmt.Errorf("invalid routine: %w", errors.Join(errs...))
	}

	cfg := config.Default()
	if scenario.Scheduler != "" {
		cfg.Scheduler = scenario.Scheduler
	}
	if scenario.Policy != "" {
		cfg.Policy = scenario.Policy
	}
	cfg.ResetPerBlock = scenario.ResetPerBlock

	rec := trace.NewMemory()
	sched, err := listsched.New(cfg.Scheduler, listsched.Env{
		Logger:   o.logger,
		Recorder: rec,
		Config:   cfg,
	})
	if err != nil {
		return nil, err
	}

	schedule, err := sched.Schedule(r)
	if err != nil {
		return nil, fmt.Errorf("schedule %s: %w", r.Name, err)
	}

	hash, err := ir.RoutineHash(r)
	if err != nil {
		return nil, fmt.Errorf("hash routine: %w", err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	id := testutil.NewFixedSessionIDs(scenario.SessionID).Generate()
	ctx := context.Background()
	if err := st.WriteSession(ctx, rec.Session(id, r.Name, hash, sched.Name(), string(cfg.Policy))); err != nil {
		return nil, fmt.Errorf("write session: %w", err)
	}
	sess, err := st.ReadSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}

	result := NewResult()
	result.Session = sess
	result.Blocks = blockOrders(schedule)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}
	return result, nil
}

// blockOrders converts a schedule to name lists.
func blockOrders(s *listsched.Schedule) []BlockOrder {
	out := make([]BlockOrder, 0, len(s.Blocks))
	for _, bs := range s.Blocks {
		bo := BlockOrder{Block: displayName(bs.Block.Name, bs.Block.String()), Nodes: []string{}}
		for _, n := range bs.Nodes {
			bo.Nodes = append(bo.Nodes, displayName(n.Name, n.String()))
		}
		out = append(out, bo)
	}
	return out
}

func displayName(name, fallback string) string {
	if name != "" {
		return name
	}
	return fallback
}
