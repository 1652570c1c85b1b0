package labelstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/kozaktomas/photo-labeler/internal/constants"
)

// Load reads and parses a label file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("label file %s: %w", path, ErrNotFound)
		}
		return nil, fmt.Errorf("reading label file %s: %w: %v", path, ErrIO, err)
	}

	s := New()
	if err := json.Unmarshal(data, s); err != nil {
		if errors.Is(err, ErrFormat) {
			return nil, fmt.Errorf("label file %s: %w", path, err)
		}
		return nil, fmt.Errorf("label file %s: %w: %v", path, ErrFormat, err)
	}
	return s, nil
}

// Create writes an empty mapping to path, replacing any existing file.
func Create(path string) error {
	return Save(path, New())
}

// Save overwrites path with the full mapping. The file is rewritten in place,
// so a crash mid-write can leave it truncated.
func Save(path string, s *Store) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding labels: %w: %v", ErrIO, err)
	}
	if err := os.WriteFile(path, data, constants.LabelFilePerm); err != nil {
		return fmt.Errorf("writing label file %s: %w: %v", path, ErrIO, err)
	}
	return nil
}
