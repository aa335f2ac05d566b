package domain

import "regexp"

// goodreadsURL matches the book pages worth rendering as a title link.
var goodreadsURL = regexp.MustCompile(`https://www\.goodreads\.com/book/show/\d{3,7}\.\w{2,30}`)

// Book is a single tracked record of the reading list.
//
// Field names and JSON tags are also the durable storage layout, so renaming
// any of them breaks previously saved data.
type Book struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is assigned by the library from a monotonic counter.
	// It is never reused, even after the book is removed.
	ID int `json:"id"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	// Title is never empty once stored.
	Title string `json:"title"`

	// Author is never empty once stored.
	Author string `json:"author"`

	// URL optionally points at an external page for the book.
	URL string `json:"url"`

	// ─────────────────────────────
	// Reading state
	// ─────────────────────────────

	Status Status `json:"status"`
}

// Linkable reports whether the title should be rendered as a link to URL.
// Only Goodreads book pages qualify.
func (b Book) Linkable() bool {
	return b.URL != "" && goodreadsURL.MatchString(b.URL)
}

// Draft is a book that has not been assigned an ID yet.
type Draft struct {
	Title  string `json:"title" yaml:"title" validate:"required,notblank,max=256"`
	Author string `json:"author" yaml:"author" validate:"required,notblank,max=256"`
	URL    string `json:"url" yaml:"url" validate:"omitempty,url,max=2048"`
	Status Status `json:"status" yaml:"status" validate:"bookstatus"`
}

// Patch lists the fields an update may overwrite. A nil field is absent.
//
// A present but empty string is also treated as absent, so a title or author
// can never be cleared through a patch.
type Patch struct {
	Title  *string `json:"title,omitempty"`
	Author *string `json:"author,omitempty"`
	Status *Status `json:"status,omitempty"`
}

// IsEmpty reports whether the patch carries no usable field.
func (p Patch) IsEmpty() bool {
	return !hasText(p.Title) && !hasText(p.Author) && p.Status == nil
}

func hasText(s *string) bool {
	return s != nil && *s != ""
}
