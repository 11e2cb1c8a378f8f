package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/sparcsched/internal/listsched"
)

// NewSchedulersCommand creates the schedulers command.
func NewSchedulersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "schedulers",
		Short:         "List registered schedulers",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			names := listsched.Names()
			if f.IsJSON() {
				return f.Success(map[string]any{"schedulers": names})
			}
			return f.Success(strings.Join(names, "\n"))
		},
	}
}
