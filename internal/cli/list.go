package cli

import (
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List books, most recently added first",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			core, err := openLibrary(cmd, rootOpts)
			if err != nil {
				return err
			}
			defer closeLibrary(core)

			return formatter(cmd, rootOpts).Books(core.Library.List())
		},
	}
}
