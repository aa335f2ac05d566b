package seed

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// File is the YAML layout of a seed override:
//
//	books:
//	  - title: Dune
//	    author: Frank Herbert
//	    url: https://www.goodreads.com/book/show/44767458-dune
//	    status: Read
type File struct {
	Books []domain.Draft `yaml:"books"`
}

// Loader reads a seed override file.
type Loader struct {
	filePath string
}

// NewLoader creates a new seed file loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Load reads, parses and validates the seed file. Entries keep their file
// order, which is also their presentation order.
func (l *Loader) Load() ([]domain.Draft, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	// Allow ${VAR} references, e.g. for private reading-list URLs
	data = []byte(os.ExpandEnv(string(data)))

	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed yaml: %w", err)
	}

	if len(f.Books) == 0 {
		return nil, errors.New("seed file lists no books")
	}

	for i, d := range f.Books {
		if err := domain.ValidateDraft(d); err != nil {
			return nil, fmt.Errorf("seed book %d: %w", i+1, err)
		}
	}

	return f.Books, nil
}
