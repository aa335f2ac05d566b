package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			return formatter(cmd, rootOpts).Message(info,
				fmt.Sprintf("shelf %s (commit=%s, built=%s, go=%s)",
					info.Version, info.Commit, info.BuildDate, info.GoVersion))
		},
	}
}
