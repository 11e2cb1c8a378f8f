package sparc

import (
	"log/slog"

	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/listsched"
	"github.com/roach88/sparcsched/internal/trace"
)

// Name is the registry name of the SPARC scheduler.
const Name = "sparc"

func init() {
	listsched.Register(Name, func(env listsched.Env) listsched.Scheduler {
		return New(
			WithLogger(env.Logger),
			WithRecorder(env.Recorder),
			WithPolicy(env.Config.Policy),
			WithResetPerBlock(env.Config.ResetPerBlock),
		)
	})
}

// Scheduler is the hazard-aware SPARC list scheduler. A Scheduler holds
// configuration only; all hazard state lives in a per-call session, so one
// Scheduler may be reused for many routines.
type Scheduler struct {
	logger        *slog.Logger
	recorder      trace.Recorder
	policy        config.Policy
	resetPerBlock bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger sets the logger. Nil keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithRecorder sets the trace recorder. Nil keeps the default.
func WithRecorder(r trace.Recorder) Option {
	return func(s *Scheduler) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithPolicy sets the selection policy. Empty keeps PolicyFilter.
func WithPolicy(p config.Policy) Option {
	return func(s *Scheduler) {
		if p != "" {
			s.policy = p
		}
	}
}

// WithResetPerBlock clears the load and multiply/divide trackers at every
// block start. By default they carry across block boundaries.
func WithResetPerBlock(reset bool) Option {
	return func(s *Scheduler) {
		s.resetPerBlock = reset
	}
}

// New creates a Scheduler. Defaults: slog.Default(), trace.Discard,
// PolicyFilter, trackers carried across blocks.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		logger:   slog.Default(),
		recorder: trace.Discard{},
		policy:   config.PolicyFilter,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements listsched.Scheduler.
func (s *Scheduler) Name() string { return Name }

// Policy returns the configured selection policy.
func (s *Scheduler) Policy() config.Policy { return s.policy }

// Schedule runs one session over r: every block is visited once, its branch
// condition is resolved, and its nodes are issued one at a time until the
// ready set drains. Shape errors abort the session with an *InternalError.
func (s *Scheduler) Schedule(r *ir.Routine) (*listsched.Schedule, error) {
	ss := &session{
		Scheduler: s,
		engine:    listsched.NewEngine(s.logger),
	}
	ss.sel = selector{
		logger:   s.logger,
		recorder: s.recorder,
		policy:   s.policy,
		hazards:  &ss.hazards,
	}

	if err := ss.engine.Begin(r); err != nil {
		return nil, newEngineError(0, err)
	}
	s.logger.Debug("sparc schedule begin", "routine", r.Name, "policy", s.policy)

	if err := ir.WalkBlocks(r, ss.block); err != nil {
		ss.engine.Abort()
		return nil, err
	}

	sched, err := ss.engine.Finish()
	if err != nil {
		return nil, newEngineError(0, err)
	}
	s.logger.Debug("sparc schedule done", "routine", r.Name, "nodes", sched.Len())
	return sched, nil
}

// session is the state of one Schedule call.
type session struct {
	*Scheduler
	engine  *listsched.Engine
	hazards HazardState
	sel     selector
}

func (ss *session) block(b *ir.Block) error {
	cond, err := ResolveBranchCondition(b)
	if err != nil {
		ss.logger.Error("branch condition shape", "block", b.ID, "error", err)
		return err
	}

	if ss.resetPerBlock {
		ss.hazards.Reset()
	}
	ss.hazards.LastBranchCondition = cond

	start := trace.BlockStart{Block: b.ID}
	if cond != nil {
		start.BranchCondition = cond.ID
		ss.logger.Debug("branch condition", "block", b.ID, "node", cond.ID)
	}
	ss.recorder.BeginBlock(start)

	rs, err := ss.engine.BeginBlock(b)
	if err != nil {
		return newEngineError(b.ID, err)
	}
	for rs.Len() > 0 {
		n := ss.sel.next(b, rs.Nodes())
		if err := ss.engine.Schedule(n); err != nil {
			return newEngineError(b.ID, err)
		}
	}
	if err := ss.engine.EndBlock(); err != nil {
		return newEngineError(b.ID, err)
	}
	return nil
}
