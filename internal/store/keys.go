package store

import "github.com/google/uuid"

const (
	// DefaultKeyPrefix namespaces every key written by shelf
	DefaultKeyPrefix = "shelf:"

	keyBooks  = "books"
	keyNextID = "next_id"
	keyProbe  = "probe:"
)

// BooksKey returns the key holding the serialized book list
func BooksKey(prefix string) string {
	return prefix + keyBooks
}

// NextIDKey returns the key holding the id counter
func NextIDKey(prefix string) string {
	return prefix + keyNextID
}

// probeKey is unique per call so concurrent processes sharing a medium
// never delete each other's probe.
func probeKey(prefix string) string {
	return prefix + keyProbe + uuid.NewString()
}
