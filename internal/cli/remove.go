package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command.
func NewRemoveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a book",
		Args:    exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			core, err := openLibrary(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeLibrary(core)

			if !core.Library.Remove(cmd.Context(), id) {
				return NewExitError(ExitFailure, fmt.Sprintf("book #%d not found", id))
			}
			return formatter(cmd, rootOpts).Message(map[string]int{"removed": id},
				fmt.Sprintf("Removed #%d", id))
		},
	}
}
