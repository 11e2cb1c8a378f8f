package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparcsched/internal/compiler"
	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/listsched"
	"github.com/roach88/sparcsched/internal/sparc"
	"github.com/roach88/sparcsched/internal/store"
	"github.com/roach88/sparcsched/internal/trace"
)

// ScheduleOptions holds flags for the schedule command.
type ScheduleOptions struct {
	*RootOptions
	Scheduler     string
	Policy        string
	ResetPerBlock bool
	Database      string
	ConfigPath    string

	// SessionIDs overrides the session ID generator (for testing).
	// If nil, defaults to trace.UUIDv7Generator.
	SessionIDs trace.SessionIDGenerator
}

// ScheduledBlock is the final order of one block.
type ScheduledBlock struct {
	Block           string   `json:"block"`
	BranchCondition string   `json:"branch_condition,omitempty"`
	Nodes           []string `json:"nodes"`
}

// ScheduleResult is the output of the schedule command.
type ScheduleResult struct {
	Routine     string           `json:"routine"`
	RoutineHash string           `json:"routine_hash"`
	Scheduler   string           `json:"scheduler"`
	Policy      string           `json:"policy"`
	SessionID   string           `json:"session_id,omitempty"` // set when the trace was stored
	Blocks      []ScheduledBlock `json:"blocks"`
	Hazards     int              `json:"hazards"`
	Fallbacks   int              `json:"fallbacks"`
}

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScheduleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "schedule <routine>",
		Short: "Schedule a routine and print the block orders",
		Long: `Schedule every block of a routine description (.yaml, .json or .cue).

Settings come from the defaults, then the --config file, then flags.
With --db (or trace_db in the config file) the decision trace is stored
and can be inspected with the trace command.

Examples:
  sparcsched schedule ./routine.yaml
  sparcsched schedule ./routine.cue --policy observe
  sparcsched schedule ./routine.yaml --scheduler trivial --format json
  sparcsched schedule ./routine.yaml --db ./trace.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchedule(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Scheduler, "scheduler", sparc.Name, "registered scheduler name")
	cmd.Flags().StringVar(&opts.Policy, "policy", string(config.PolicyFilter), "hazard policy (filter|observe)")
	cmd.Flags().BoolVar(&opts.ResetPerBlock, "reset-per-block", false, "clear hazard trackers at every block start")
	cmd.Flags().StringVar(&opts.Database, "db", "", "store the decision trace in this SQLite database")
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "YAML config file")

	return cmd
}

// resolveConfig lays changed flags over the config file.
func (o *ScheduleOptions) resolveConfig(cmd *cobra.Command, f *OutputFormatter) (config.Config, error) {
	cfg, err := loadConfig(f, o.ConfigPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("scheduler") || o.ConfigPath == "" {
		cfg.Scheduler = o.Scheduler
	}
	if flags.Changed("policy") || o.ConfigPath == "" {
		cfg.Policy = config.Policy(o.Policy)
	}
	if flags.Changed("reset-per-block") || o.ConfigPath == "" {
		cfg.ResetPerBlock = o.ResetPerBlock
	}
	if flags.Changed("db") || o.ConfigPath == "" {
		cfg.TraceDB = o.Database
	}

	if err := cfg.Validate(); err != nil {
		return cfg, f.Fail(ExitCommandError, ErrCodeConfig, "invalid settings", err)
	}
	return cfg, nil
}

func runSchedule(opts *ScheduleOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	cfg, err := opts.resolveConfig(cmd, f)
	if err != nil {
		return err
	}
	logger := opts.logger(cmd, cfg.LogLevel, cfg.LogFormat)

	r, err := loadRoutine(f, path)
	if err != nil {
		return err
	}
	if errs := compiler.Validate(r); len(errs) > 0 {
		return outputValidationErrors(f, ValidationResult{
			Routine: r.Name,
			Blocks:  len(r.Blocks),
			Nodes:   r.NumNodes(),
			Errors:  errs,
		})
	}
	hash, err := ir.RoutineHash(r)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeSchedule, "failed to hash routine", err)
	}

	rec := trace.NewMemory()
	sched, err := listsched.New(cfg.Scheduler, listsched.Env{
		Logger:   logger,
		Recorder: rec,
		Config:   cfg,
	})
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	logger.Info("scheduling routine", "routine", r.Name, "scheduler", sched.Name(), "policy", cfg.Policy)
	schedule, err := sched.Schedule(r)
	if err != nil {
		var ie *sparc.InternalError
		if errors.As(err, &ie) {
			return f.Fail(ExitFailure, ErrCodeInternal, ie.Error(), nil)
		}
		return f.Fail(ExitFailure, ErrCodeSchedule, "scheduling failed", err)
	}

	gen := opts.SessionIDs
	if gen == nil {
		gen = trace.UUIDv7Generator{}
	}
	session := rec.Session(gen.Generate(), r.Name, hash, sched.Name(), string(cfg.Policy))

	result := buildScheduleResult(schedule, session)
	if cfg.TraceDB != "" {
		if err := storeSession(cmd.Context(), cfg.TraceDB, session); err != nil {
			return f.Fail(ExitCommandError, ErrCodeStore, "failed to store trace", err)
		}
		result.SessionID = session.ID
		logger.Info("trace stored", "db", cfg.TraceDB, "session", session.ID)
	}

	for _, d := range session.Decisions {
		f.VerboseLog("%s", formatDecision(d))
	}

	if f.IsJSON() {
		return f.Success(result)
	}
	return f.Success(formatScheduleText(result))
}

func buildScheduleResult(s *listsched.Schedule, session trace.Session) ScheduleResult {
	conds := make(map[int64]int64, len(session.Blocks))
	for _, bs := range session.Blocks {
		conds[bs.Block] = bs.BranchCondition
	}

	result := ScheduleResult{
		Routine:     session.Routine,
		RoutineHash: session.RoutineHash,
		Scheduler:   session.Scheduler,
		Policy:      session.Policy,
		Blocks:      make([]ScheduledBlock, 0, len(s.Blocks)),
		Hazards:     session.HazardCount(),
		Fallbacks:   session.FallbackCount(),
	}
	for _, bs := range s.Blocks {
		sb := ScheduledBlock{Block: label(bs.Block.Name, bs.Block), Nodes: []string{}}
		if id := conds[bs.Block.ID]; id != 0 {
			if n, ok := s.Routine.Node(id); ok {
				sb.BranchCondition = label(n.Name, n)
			}
		}
		for _, n := range bs.Nodes {
			sb.Nodes = append(sb.Nodes, label(n.Name, n))
		}
		result.Blocks = append(result.Blocks, sb)
	}
	return result
}

func storeSession(ctx context.Context, path string, session trace.Session) error {
	if ctx == nil {
		ctx = context.Background()
	}
	st, err := store.Open(path)
	if err != nil {
		return err
	}
	defer st.Close()
	return st.WriteSession(ctx, session)
}

func formatScheduleText(r ScheduleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "routine %s (%s, policy %s)\n", r.Routine, r.Scheduler, r.Policy)
	for _, blk := range r.Blocks {
		name := blk.Block
		if blk.BranchCondition != "" {
			name += " [cond " + blk.BranchCondition + "]"
		}
		fmt.Fprintf(&b, "  %s: %s\n", name, strings.Join(blk.Nodes, " "))
	}
	fmt.Fprintf(&b, "hazards: %d, fallbacks: %d", r.Hazards, r.Fallbacks)
	if r.SessionID != "" {
		fmt.Fprintf(&b, "\nsession: %s", r.SessionID)
	}
	return b.String()
}
