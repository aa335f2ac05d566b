package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

type updateOptions struct {
	title  string
	author string
	status string
}

// NewUpdateCommand creates the update command.
func NewUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &updateOptions{}

	cmd := &cobra.Command{
		Use:   "update <id> [--title <title>] [--author <author>] [--status <status>]",
		Short: "Change the title, author or status of a book",
		Long: `Change fields of an existing book. Only the flags given are applied;
an empty value leaves the field as it is.`,
		Args: exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd, rootOpts, opts, args[0])
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "new title")
	cmd.Flags().StringVarP(&opts.author, "author", "a", "", "new author")
	cmd.Flags().StringVarP(&opts.status, "status", "s", "", `"Read" or "Not read"`)

	return cmd
}

func runUpdate(cmd *cobra.Command, rootOpts *RootOptions, opts *updateOptions, rawID string) error {
	id, err := parseID(rawID)
	if err != nil {
		return err
	}

	var patch domain.Patch
	if cmd.Flags().Changed("title") {
		patch.Title = &opts.title
	}
	if cmd.Flags().Changed("author") {
		patch.Author = &opts.author
	}
	if cmd.Flags().Changed("status") {
		status, err := domain.ParseStatus(opts.status)
		if err != nil {
			return WrapExitError(ExitCommandError, "invalid --status", err)
		}
		patch.Status = &status
	}
	if patch.IsEmpty() {
		return NewExitError(ExitCommandError, "nothing to update: pass --title, --author or --status")
	}

	core, err := openLibrary(cmd, rootOpts)
	if err != nil {
		return err
	}
	defer closeLibrary(core)

	changed := core.Library.Update(cmd.Context(), id, patch)
	b, found := core.Library.Get(id)
	if !found {
		return NewExitError(ExitFailure, fmt.Sprintf("book #%d not found", id))
	}

	f := formatter(cmd, rootOpts)
	if !changed {
		return f.Message(map[string]any{"changed": false, "book": viewOf(b)},
			fmt.Sprintf("No changes to #%d", id))
	}
	return f.Book("Updated", b)
}
