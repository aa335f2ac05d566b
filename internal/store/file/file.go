// Package file stores key-value pairs in a single JSON document on disk.
//
// Writes go to a temporary file that is renamed over the target, so a crash
// mid-write leaves the previous document intact.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// Backend is a file-backed store.Backend.
type Backend struct {
	mu   sync.Mutex
	path string
}

// New returns a backend writing to path. The file is created on first write.
func New(path string) *Backend {
	return &Backend{path: path}
}

func (b *Backend) Name() string { return "file" }

func (b *Backend) Get(_ context.Context, key string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.load()
	if err != nil {
		return "", err
	}
	v, ok := doc[key]
	if !ok {
		return "", store.ErrNotFound
	}
	return v, nil
}

func (b *Backend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.loadForWrite()
	if err != nil {
		return err
	}
	doc[key] = value
	return b.save(doc)
}

func (b *Backend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc, err := b.loadForWrite()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return b.save(doc)
}

func (b *Backend) Close() error { return nil }

// load reads the document. A missing file is an empty document.
func (b *Backend) load() (map[string]string, error) {
	f, err := os.Open(b.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	defer utils.Close(f)

	doc := map[string]string{}
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", store.ErrMalformed, b.path, err)
	}
	return doc, nil
}

// loadForWrite moves a corrupt document aside instead of refusing writes,
// so the medium recovers on the next save.
func (b *Backend) loadForWrite() (map[string]string, error) {
	doc, err := b.load()
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, store.ErrMalformed) {
		return nil, err
	}
	if err := os.Rename(b.path, b.path+".corrupt"); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return map[string]string{}, nil
}

func (b *Backend) save(doc map[string]string) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(b.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	tmpName := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		utils.Close(tmp)
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	if err := os.Rename(tmpName, b.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}
