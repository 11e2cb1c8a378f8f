package listsched

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/roach88/sparcsched/internal/ir"
)

// Engine misuse errors. Callers test with errors.Is.
var (
	ErrNotBegun    = errors.New("list scheduler: session not begun")
	ErrBegun       = errors.New("list scheduler: session already begun")
	ErrBlockActive = errors.New("list scheduler: block already active")
	ErrNoBlock     = errors.New("list scheduler: no active block")
	ErrNotReady    = errors.New("list scheduler: node not in ready set")
	ErrUnscheduled = errors.New("list scheduler: block has unscheduled nodes")
)

// BlockSchedule is the final order of one block.
type BlockSchedule struct {
	Block *ir.Block
	Nodes []*ir.Node
}

// Schedule is the result of one scheduling session. Blocks appear in the
// order they were scheduled.
type Schedule struct {
	Routine *ir.Routine
	Blocks  []BlockSchedule
}

// Order returns the scheduled nodes of b.
func (s *Schedule) Order(b *ir.Block) ([]*ir.Node, bool) {
	for _, bs := range s.Blocks {
		if bs.Block == b {
			return bs.Nodes, true
		}
	}
	return nil, false
}

// Len returns the total number of scheduled nodes.
func (s *Schedule) Len() int {
	n := 0
	for _, bs := range s.Blocks {
		n += len(bs.Nodes)
	}
	return n
}

// Engine is the generic list-scheduling engine. It owns the dependency
// bookkeeping and the ready set; an architecture-specific selector decides
// which ready node goes next.
//
// Protocol:
//
//	e.Begin(r)
//	for each block b:
//	    rs, _ := e.BeginBlock(b)
//	    for rs.Len() > 0 { e.Schedule(pick(rs)) }
//	    e.EndBlock()
//	sched, _ := e.Finish()
//
// Dependency rules:
//   - projections are never scheduled; reading a projection depends on the
//     node behind it
//   - operands defined in other blocks are available on entry
//   - control-flow nodes become ready only after every other node of the
//     block has been scheduled
//
// Not safe for concurrent use. One Engine runs one session at a time.
type Engine struct {
	logger *slog.Logger

	routine  *ir.Routine
	schedule *Schedule

	block     *ir.Block
	ready     ReadySet
	order     []*ir.Node
	pending   map[*ir.Node]int       // unscheduled in-block dependencies
	users     map[*ir.Node][]*ir.Node // in-block dependents
	held      []*ir.Node             // control flow waiting for the block to drain
	remaining int                    // unscheduled non-control-flow nodes
	total     int                    // schedulable nodes in the block
}

// NewEngine creates an engine that logs through logger (nil means
// slog.Default()).
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{logger: logger}
}

// Begin prepares a session for the whole routine and brings its
// control-flow outs up to date.
func (e *Engine) Begin(r *ir.Routine) error {
	if e.routine != nil {
		return ErrBegun
	}
	r.AssureOuts()
	e.routine = r
	e.schedule = &Schedule{Routine: r}
	e.logger.Debug("list scheduling begin", "routine", r.Name, "blocks", len(r.Blocks))
	return nil
}

// BeginBlock starts scheduling b and returns its initial ready set. The
// returned ReadySet stays live: the engine updates it on every Schedule.
func (e *Engine) BeginBlock(b *ir.Block) (*ReadySet, error) {
	if e.routine == nil {
		return nil, ErrNotBegun
	}
	if e.block != nil {
		return nil, fmt.Errorf("begin %s: %w (active %s)", b, ErrBlockActive, e.block)
	}

	e.block = b
	e.ready.clear()
	e.order = nil
	e.held = nil
	e.pending = make(map[*ir.Node]int)
	e.users = make(map[*ir.Node][]*ir.Node)
	e.remaining = 0
	e.total = 0

	for _, n := range b.Nodes {
		if !n.Op.IsScheduled() {
			continue
		}
		e.total++
		if !n.Op.IsControlFlow() {
			e.remaining++
		}
		for _, dep := range e.deps(n) {
			e.pending[n]++
			e.users[dep] = append(e.users[dep], n)
		}
	}

	for _, n := range b.Nodes {
		if n.Op.IsScheduled() && e.pending[n] == 0 {
			e.makeReady(n)
		}
	}
	e.releaseControlFlow()

	e.logger.Debug("block begin", "block", b.ID, "nodes", e.total, "ready", e.ready.Len())
	return &e.ready, nil
}

// deps returns the distinct in-block schedulable producers n reads,
// looking through projections.
func (e *Engine) deps(n *ir.Node) []*ir.Node {
	var out []*ir.Node
	seen := make(map[*ir.Node]bool)
	for _, op := range n.In {
		p := producer(op)
		if p == nil || p == n || p.Block != e.block || !p.Op.IsScheduled() || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// producer follows projection chains back to the node that occupies a
// schedule slot.
func producer(n *ir.Node) *ir.Node {
	for n != nil && n.Op.IsProj() {
		if len(n.In) == 0 {
			return nil
		}
		n = n.In[0]
	}
	return n
}

func (e *Engine) makeReady(n *ir.Node) {
	if n.Op.IsControlFlow() {
		e.held = append(e.held, n)
		return
	}
	e.ready.add(n)
}

func (e *Engine) releaseControlFlow() {
	if e.remaining > 0 || len(e.held) == 0 {
		return
	}
	for _, n := range e.held {
		e.ready.add(n)
	}
	e.held = nil
}

// Schedule commits n as the next node of the active block and updates the
// ready set.
func (e *Engine) Schedule(n *ir.Node) error {
	if e.block == nil {
		return ErrNoBlock
	}
	if !e.ready.remove(n) {
		return fmt.Errorf("schedule %s: %w", n, ErrNotReady)
	}

	e.order = append(e.order, n)
	if !n.Op.IsControlFlow() {
		e.remaining--
	}
	for _, u := range e.users[n] {
		e.pending[u]--
		if e.pending[u] == 0 {
			e.makeReady(u)
		}
	}
	e.releaseControlFlow()
	return nil
}

// EndBlock finishes the active block. It fails if nodes are left
// unscheduled, which only happens when the block's dependencies form a
// cycle.
func (e *Engine) EndBlock() error {
	if e.block == nil {
		return ErrNoBlock
	}
	b := e.block
	e.block = nil

	if len(e.order) != e.total {
		return fmt.Errorf("end %s: %w (%d of %d scheduled)", b, ErrUnscheduled, len(e.order), e.total)
	}
	e.schedule.Blocks = append(e.schedule.Blocks, BlockSchedule{Block: b, Nodes: e.order})
	e.order = nil
	e.logger.Debug("block end", "block", b.ID, "scheduled", e.total)
	return nil
}

// Finish ends the session and returns the schedule.
func (e *Engine) Finish() (*Schedule, error) {
	if e.routine == nil {
		return nil, ErrNotBegun
	}
	if e.block != nil {
		return nil, fmt.Errorf("finish: %w (active %s)", ErrBlockActive, e.block)
	}
	s := e.schedule
	e.logger.Debug("list scheduling finish", "routine", e.routine.Name, "nodes", s.Len())
	e.routine = nil
	e.schedule = nil
	return s, nil
}

// Abort drops the current session so the engine can be reused after a
// failed schedule.
func (e *Engine) Abort() {
	e.routine = nil
	e.schedule = nil
	e.block = nil
	e.ready.clear()
	e.order = nil
	e.held = nil
}
