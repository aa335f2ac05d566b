package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Operation refused (unknown id, invalid book, ...)
	ExitCommandError = 2 // Command error (bad flags, unusable configuration, ...)
)

// ExitError carries the process exit code for a failed command.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// Response is the JSON envelope of every command output.
type Response struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

type CLIError struct {
	Message string              `json:"message"`
	Fields  []domain.FieldError `json:"fields,omitempty"`
}

// BookView is a book as the CLI prints it.
type BookView struct {
	ID     int           `json:"id"`
	Title  string        `json:"title"`
	Author string        `json:"author"`
	URL    string        `json:"url,omitempty"`
	Status domain.Status `json:"status"`
	Link   bool          `json:"link"`
}

func viewOf(b domain.Book) BookView {
	return BookView{
		ID:     b.ID,
		Title:  b.Title,
		Author: b.Author,
		URL:    b.URL,
		Status: b.Status,
		Link:   b.Linkable(),
	}
}

// OutputFormatter renders command results as text or JSON.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

func (f *OutputFormatter) json(v Response) error {
	enc := json.NewEncoder(f.Writer)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Books prints a list, newest first.
func (f *OutputFormatter) Books(books []domain.Book) error {
	if f.Format == "json" {
		views := make([]BookView, 0, len(books))
		for _, b := range books {
			views = append(views, viewOf(b))
		}
		return f.json(Response{Status: "ok", Data: views})
	}

	if len(books) == 0 {
		_, err := fmt.Fprintln(f.Writer, "No books yet.")
		return err
	}

	tw := tabwriter.NewWriter(f.Writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tTITLE\tAUTHOR")
	for _, b := range books {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", b.ID, b.Status, b.Title, b.Author)
	}
	return tw.Flush()
}

// Book prints a single book after a mutation.
func (f *OutputFormatter) Book(verb string, b domain.Book) error {
	if f.Format == "json" {
		return f.json(Response{Status: "ok", Data: viewOf(b)})
	}
	_, err := fmt.Fprintf(f.Writer, "%s #%d %q by %s (%s)\n", verb, b.ID, b.Title, b.Author, b.Status)
	return err
}

// Message prints a short confirmation.
func (f *OutputFormatter) Message(data any, text string) error {
	if f.Format == "json" {
		return f.json(Response{Status: "ok", Data: data})
	}
	_, err := fmt.Fprintln(f.Writer, text)
	return err
}

// Error prints err in the configured format. Text errors go to the
// writer the caller passes, typically stderr.
func (f *OutputFormatter) Error(err error) error {
	resp := &CLIError{Message: err.Error()}
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		resp.Fields = verr.Fields
	}

	if f.Format == "json" {
		return f.json(Response{Status: "error", Error: resp})
	}
	_, werr := fmt.Fprintf(f.Writer, "Error: %s\n", resp.Message)
	return werr
}
