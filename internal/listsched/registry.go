package listsched

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/trace"
)

// Scheduler orders every block of a routine.
type Scheduler interface {
	// Name returns the name the scheduler is registered under.
	Name() string

	// Schedule runs one complete session over r. Each call is independent.
	Schedule(r *ir.Routine) (*Schedule, error)
}

// Env carries what a Factory needs to construct a Scheduler.
type Env struct {
	Logger   *slog.Logger
	Recorder trace.Recorder
	Config   config.Config
}

// Factory constructs a Scheduler from an Env.
type Factory func(env Env) Scheduler

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a scheduler available by name. Backends call it from an
// init function. Panics if the name is registered twice or f is nil.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if f == nil {
		panic("listsched: Register factory is nil")
	}
	if _, dup := registry[name]; dup {
		panic("listsched: Register called twice for scheduler " + name)
	}
	registry[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[name]
	return f, ok
}

// Names returns the registered scheduler names, sorted.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New looks name up and constructs the scheduler. Nil Logger and Recorder
// in env are replaced by slog.Default() and trace.Discard.
func New(name string, env Env) (Scheduler, error) {
	f, ok := Lookup(name)
	if !ok {
		return nil, fmt.Errorf("unknown scheduler %q (registered: %v)", name, Names())
	}
	if env.Logger == nil {
		env.Logger = slog.Default()
	}
	if env.Recorder == nil {
		env.Recorder = trace.Discard{}
	}
	return f(env), nil
}
