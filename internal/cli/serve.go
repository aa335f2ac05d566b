package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API until SIGINT or SIGTERM.

Configuration comes from SHELF_* environment variables. Durable storage
being unreachable is not fatal: the list is served from memory and
written back once storage returns.`,
		Args: exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			level := cfg.LogLevel
			if rootOpts.Verbose {
				level = "debug"
			}
			loggerClient := logger.New(level, cfg.PrettyLog)
			defer func() { _ = loggerClient.Sync() }()

			a, err := app.New(cmd.Context(), cfg, loggerClient)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to start", err)
			}
			return a.Run()
		},
	}
}
