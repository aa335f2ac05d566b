package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Status is the reading state of a book. A book has exactly one.
type Status int

const (
	NotRead Status = iota
	Read
)

// Labels are what users see and what gets persisted.
const (
	labelNotRead = "Not read"
	labelRead    = "Read"
)

func (s Status) String() string {
	switch s {
	case NotRead:
		return labelNotRead
	case Read:
		return labelRead
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s == NotRead || s == Read
}

// Toggle flips NotRead <-> Read.
func (s Status) Toggle() Status {
	if s == Read {
		return NotRead
	}
	return Read
}

// ParseStatus accepts the display labels and a few common spellings,
// case-insensitively.
func ParseStatus(raw string) (Status, error) {
	norm := strings.ToLower(strings.TrimSpace(raw))
	norm = strings.NewReplacer("_", " ", "-", " ").Replace(norm)
	switch norm {
	case "not read", "notread", "unread":
		return NotRead, nil
	case "read":
		return Read, nil
	default:
		return NotRead, fmt.Errorf("unknown status %q", raw)
	}
}

func (s Status) MarshalJSON() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", s)
	}
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("status must be a string: %w", err)
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// UnmarshalYAML lets seed files use the same labels as the API.
func (s *Status) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
