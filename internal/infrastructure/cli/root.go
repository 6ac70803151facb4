package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/doeshing/trustgate/internal/app"
)

// Options holds CLI-level configuration.
type Options struct {
	Verbose bool
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(ctx context.Context, opts Options) (*cobra.Command, error) {
	container, err := app.BuildContainer(ctx, opts.Verbose)
	if err != nil {
		return nil, err
	}

	root := &cobra.Command{
		Use:   "trustgate",
		Short: "trustgate - earned trust for project commands",
		Long: "trustgate learns project commands from agents, verifies each one in an\n" +
			"inert dry run before trusting it, and only ever re-executes commands\n" +
			"that passed verification and kept succeeding.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newAskCommand(container))
	root.AddCommand(newTeachCommand(container))
	root.AddCommand(newRunCommand(container))
	root.AddCommand(newLearnCommand(container))
	root.AddCommand(newStatusCommand(container))
	root.AddCommand(newClearCommand(container))
	root.AddCommand(newHistoryCommand(container))
	root.AddCommand(newConfigCommand(container))
	root.AddCommand(newDoctorCommand(container))
	root.AddCommand(newServeCommand(container))
	root.AddCommand(newVersionCommand())
	return root, nil
}
