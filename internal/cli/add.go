package cli

import (
	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

type addOptions struct {
	title  string
	author string
	url    string
	status string
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &addOptions{}

	cmd := &cobra.Command{
		Use:   "add --title <title> --author <author>",
		Short: "Add a book on top of the list",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAdd(cmd, rootOpts, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "book title")
	cmd.Flags().StringVarP(&opts.author, "author", "a", "", "book author")
	cmd.Flags().StringVarP(&opts.url, "url", "u", "", "optional link (Goodreads pages are rendered as links)")
	cmd.Flags().StringVarP(&opts.status, "status", "s", domain.NotRead.String(), `"Read" or "Not read"`)

	return cmd
}

func runAdd(cmd *cobra.Command, rootOpts *RootOptions, opts *addOptions) error {
	status, err := domain.ParseStatus(opts.status)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid --status", err)
	}

	draft := domain.Draft{
		Title:  opts.title,
		Author: opts.author,
		URL:    opts.url,
		Status: status,
	}
	if err := domain.ValidateDraft(draft); err != nil {
		return WrapExitError(ExitFailure, "book rejected", err)
	}

	core, err := openLibrary(cmd, rootOpts)
	if err != nil {
		return err
	}
	defer closeLibrary(core)

	return formatter(cmd, rootOpts).Book("Added", core.Library.Add(cmd.Context(), draft))
}
