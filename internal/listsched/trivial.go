package listsched

import (
	"fmt"
	"log/slog"

	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/trace"
)

// TrivialName is the registry name of the Trivial scheduler.
const TrivialName = "trivial"

func init() {
	Register(TrivialName, func(env Env) Scheduler {
		return &Trivial{logger: env.Logger, recorder: env.Recorder}
	})
}

// Trivial always picks the first ready node. It is the baseline the
// hazard-aware schedulers are compared against.
type Trivial struct {
	logger   *slog.Logger
	recorder trace.Recorder
}

// Name implements Scheduler.
func (t *Trivial) Name() string { return TrivialName }

// Schedule implements Scheduler.
func (t *Trivial) Schedule(r *ir.Routine) (*Schedule, error) {
	e := NewEngine(t.logger)
	if err := e.Begin(r); err != nil {
		return nil, err
	}
	err := ir.WalkBlocks(r, func(b *ir.Block) error {
		t.recorder.BeginBlock(trace.BlockStart{Block: b.ID})
		rs, err := e.BeginBlock(b)
		if err != nil {
			return err
		}
		for rs.Len() > 0 {
			n := rs.First()
			t.recorder.Decide(trace.Decision{Block: b.ID, Ready: rs.IDs(), Chosen: n.ID})
			if err := e.Schedule(n); err != nil {
				return err
			}
		}
		return e.EndBlock()
	})
	if err != nil {
		e.Abort()
		return nil, fmt.Errorf("trivial schedule %s: %w", r.Name, err)
	}
	return e.Finish()
}
