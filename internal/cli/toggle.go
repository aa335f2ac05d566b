package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewToggleCommand creates the toggle command.
func NewToggleCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a book between read and not read",
		Args:  exactArgs(1),
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

			b, found := core.Library.Toggle(cmd.Context(), id)
			if !found {
				return NewExitError(ExitFailure, fmt.Sprintf("book #%d not found", id))
			}
			return formatter(cmd, rootOpts).Book("Marked", b)
		},
	}
}
