package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

func writeSeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeSeed(t, `books:
  - title: Night Watch
    author: Terry Pratchett
    url: https://www.goodreads.com/book/show/47989.Night_Watch
    status: Not read
  - title: The War of Art
    author: Steven Pressfield
    status: read
`)

	drafts, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("Load() returned %d drafts, want 2", len(drafts))
	}
	if drafts[0].Status != domain.NotRead || drafts[1].Status != domain.Read {
		t.Errorf("statuses = %v, %v", drafts[0].Status, drafts[1].Status)
	}
	if drafts[0].URL != "https://www.goodreads.com/book/show/47989.Night_Watch" {
		t.Errorf("url = %q", drafts[0].URL)
	}
}

func TestLoaderLoadWithEnvVariables(t *testing.T) {
	t.Setenv("SHELF_TEST_AUTHOR", "Seneca")
	path := writeSeed(t, `books:
  - title: On the Shortness of Life
    author: ${SHELF_TEST_AUTHOR}
`)

	drafts, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if drafts[0].Author != "Seneca" {
		t.Errorf("author = %q, want Seneca", drafts[0].Author)
	}
}

func TestLoaderLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "invalid yaml", content: "books: [unclosed"},
		{name: "no books", content: "books: []"},
		{name: "missing author", content: "books:\n  - title: Dune\n"},
		{name: "unknown status", content: "books:\n  - title: Dune\n    author: Frank Herbert\n    status: skimmed\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewLoader(writeSeed(t, tt.content)).Load(); err == nil {
				t.Error("Load() should have failed")
			}
		})
	}

	t.Run("missing file", func(t *testing.T) {
		if _, err := NewLoader(filepath.Join(t.TempDir(), "nope.yaml")).Load(); err == nil {
			t.Error("Load() should have failed for a missing file")
		}
	})
}

func TestBuiltinIsValid(t *testing.T) {
	drafts := Builtin()
	if len(drafts) != 7 {
		t.Fatalf("Builtin() has %d entries, want 7", len(drafts))
	}
	for i, d := range drafts {
		if err := domain.ValidateDraft(d); err != nil {
			t.Errorf("Builtin()[%d] invalid: %v", i, err)
		}
	}
}
