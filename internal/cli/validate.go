package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparcsched/internal/compiler"
	"github.com/roach88/sparcsched/internal/ir"
	"github.com/roach88/sparcsched/internal/sparc"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool                       `json:"valid"`
	Routine string                     `json:"routine"`
	Blocks  int                        `json:"blocks"`
	Nodes   int                        `json:"nodes"`
	Errors  []compiler.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <routine>",
		Short: "Check a routine description without scheduling it",
		Long: `Compile a routine description and check its structure: in-block
dependency cycles, control flow, reachability, and the shape the SPARC
scheduler expects around each conditional branch.

Compile errors are reported as E001; structural problems as E2xx; branch
shapes the scheduler would reject as E_INTERNAL.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	r, err := loadRoutine(f, path)
	if err != nil {
		return err
	}

	// The resolver assumes a structurally sound routine.
	errs := compiler.Validate(r)
	if len(errs) == 0 {
		errs = branchShapeErrors(r, f)
	}

	result := ValidationResult{
		Valid:   len(errs) == 0,
		Routine: r.Name,
		Blocks:  len(r.Blocks),
		Nodes:   r.NumNodes(),
		Errors:  errs,
	}

	if !result.Valid {
		return outputValidationErrors(f, result)
	}
	if f.IsJSON() {
		return f.Success(result)
	}
	return f.Success(fmt.Sprintf("✓ routine %s valid (%d blocks, %d nodes)", r.Name, result.Blocks, result.Nodes))
}

// branchShapeErrors runs the branch-condition resolver over every block.
func branchShapeErrors(r *ir.Routine, f *OutputFormatter) []compiler.ValidationError {
	var errs []compiler.ValidationError
	for _, b := range ir.BlockOrder(r) {
		cond, err := sparc.ResolveBranchCondition(b)
		if err != nil {
			errs = append(errs, compiler.ValidationError{
				Field:   "block." + label(b.Name, b),
				Message: err.Error(),
				Code:    ErrCodeInternal,
			})
			continue
		}
		if cond != nil {
			f.VerboseLog("Block %s: branch condition %s", label(b.Name, b), cond)
		}
	}
	return errs
}

func outputValidationErrors(f *OutputFormatter, result ValidationResult) error {
	msg := fmt.Sprintf("routine %s has %d problem(s)", result.Routine, len(result.Errors))

	if f.IsJSON() {
		if err := writeJSON(f.Writer, CLIResponse{
			Status: "error",
			Data:   result,
			Error: &CLIError{
				Code:    ErrCodeValidation,
				Message: msg,
				Details: result.Errors,
			},
		}); err != nil {
			return err
		}
		return NewExitError(ExitFailure, fmt.Sprintf("[%s] %s", ErrCodeValidation, msg))
	}

	var b strings.Builder
	for _, e := range result.Errors {
		fmt.Fprintf(&b, "✗ %s\n", e.Error())
	}
	fmt.Fprint(f.Writer, b.String())
	return NewExitError(ExitFailure, fmt.Sprintf("[%s] %s", ErrCodeValidation, msg))
}
