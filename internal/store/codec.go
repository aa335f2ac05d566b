package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

func encodeBooks(books []domain.Book) (string, error) {
	if books == nil {
		books = []domain.Book{}
	}
	data, err := json.Marshal(books)
	if err != nil {
		return "", fmt.Errorf("failed to marshal books: %w", err)
	}
	return string(data), nil
}

// decodeBooks rejects content that would break library invariants:
// negative or duplicate ids and blank titles or authors.
func decodeBooks(raw string) ([]domain.Book, error) {
	var books []domain.Book
	if err := json.Unmarshal([]byte(raw), &books); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	seen := make(map[int]struct{}, len(books))
	for i, b := range books {
		if b.ID < 0 {
			return nil, fmt.Errorf("%w: book %d has negative id %d", ErrMalformed, i, b.ID)
		}
		if _, dup := seen[b.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrMalformed, b.ID)
		}
		seen[b.ID] = struct{}{}

		if strings.TrimSpace(b.Title) == "" || strings.TrimSpace(b.Author) == "" {
			return nil, fmt.Errorf("%w: book %d is missing title or author", ErrMalformed, b.ID)
		}
	}

	return books, nil
}

func encodeNextID(id int) string {
	return strconv.Itoa(id)
}

func decodeNextID(raw string) (int, error) {
	id, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: next id %q", ErrMalformed, raw)
	}
	if id < 0 {
		return 0, fmt.Errorf("%w: negative next id %d", ErrMalformed, id)
	}
	return id, nil
}
