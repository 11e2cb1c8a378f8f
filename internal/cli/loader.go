package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/sparcsched/internal/compiler"
	"github.com/roach88/sparcsched/internal/config"
	"github.com/roach88/sparcsched/internal/ir"
)

// loadRoutine compiles the routine at path, reporting failures through f.
// Missing files are command errors; descriptions that do not compile are
// failures.
func loadRoutine(f *OutputFormatter, path string) (*ir.Routine, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, f.Fail(ExitCommandError, ErrCodeNotFound,
			fmt.Sprintf("routine file not found: %s", path), nil)
	}

	r, err := compiler.LoadFile(path)
	if err != nil {
		var ce *compiler.CompileError
		if errors.As(err, &ce) {
			return nil, f.Fail(ExitFailure, ErrCodeCompile, ce.Error(), nil)
		}
		return nil, f.Fail(ExitFailure, ErrCodeCompile, "failed to load routine", err)
	}
	f.VerboseLog("Loaded routine %s: %d blocks, %d nodes", r.Name, len(r.Blocks), r.NumNodes())
	return r, nil
}

// loadConfig returns the defaults, or the file at path laid over them.
func loadConfig(f *OutputFormatter, path string) (config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, f.Fail(ExitCommandError, ErrCodeNotFound,
				fmt.Sprintf("config file not found: %s", path), nil)
		}
		return cfg, f.Fail(ExitCommandError, ErrCodeConfig, "invalid config", err)
	}
	f.VerboseLog("Loaded config %s", path)
	return cfg, nil
}

// label prefers a display name over the name#id rendering.
func label(name string, s fmt.Stringer) string {
	if name != "" {
		return name
	}
	return s.String()
}
