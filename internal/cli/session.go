package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/app"
	"github.com/MrSnakeDoc/shelf/internal/config"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// loadConfig turns the configuration panics into a command error.
func loadConfig() (cfg *config.Config, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewExitError(ExitCommandError, fmt.Sprint(r))
		}
	}()
	return config.Load(), nil
}

// cliLogger keeps one-shot commands quiet unless asked otherwise:
// --verbose forces debug, an explicit SHELF_LOG_LEVEL is honored,
// warn is the default.
func cliLogger(cfg *config.Config, opts *RootOptions) logger.Logger {
	level := "warn"
	switch {
	case opts.Verbose:
		level = "debug"
	case os.Getenv("SHELF_LOG_LEVEL") != "":
		level = cfg.LogLevel
	}
	return logger.New(level, cfg.PrettyLog)
}

// openLibrary bootstraps the library the same way the server does.
func openLibrary(cmd *cobra.Command, opts *RootOptions) (*app.Core, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	core, err := app.Bootstrap(cmd.Context(), cfg, cliLogger(cfg, opts))
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open library", err)
	}
	return core, nil
}

func closeLibrary(core *app.Core) {
	utils.MustClose(core.Store, core.Logger, "storage")
	_ = core.Logger.Sync()
}

func formatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
}

func parseID(raw string) (int, error) {
	id, err := strconv.Atoi(raw)
	if err != nil || id < 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid book id %q", raw))
	}
	return id, nil
}

// exactArgs is cobra.ExactArgs reporting a command error.
func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return WrapExitError(ExitCommandError, "invalid arguments", err)
		}
		return nil
	}
}
