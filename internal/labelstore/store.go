// Package labelstore keeps the mapping from image filename to its person
// annotations, persists it as a JSON object and reconciles it against the
// images present in a directory.
package labelstore

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/constants"
)

// Error kinds surfaced by the store. Match with errors.Is.
var (
	ErrNotFound = errors.New("not found")
	ErrFormat   = errors.New("invalid label file format")
	ErrIO       = errors.New("i/o error")
	ErrIndex    = errors.New("label index out of range")
)

// Store is an ordered mapping from filename to annotations. Key order is the
// insertion order, which reconciliation sets to the directory scan order.
// The zero value is not usable; use New.
type Store struct {
	keys   []string
	labels map[string][]annotation.Annotation
}

// New returns an empty store.
func New() *Store {
	return &Store{labels: make(map[string][]annotation.Annotation)}
}

// Keys returns a copy of the filenames in store order.
func (s *Store) Keys() []string {
	return slices.Clone(s.keys)
}

// Len returns the number of photos in the store.
func (s *Store) Len() int { return len(s.keys) }

// Has reports whether the filename is a key.
func (s *Store) Has(name string) bool {
	_, ok := s.labels[name]
	return ok
}

// Labels returns a copy of the annotations for a photo.
func (s *Store) Labels(name string) []annotation.Annotation {
	src := s.labels[name]
	out := make([]annotation.Annotation, len(src))
	for i, a := range src {
		out[i] = a.Clone()
	}
	return out
}

// Count returns the number of annotations for a photo.
func (s *Store) Count(name string) int { return len(s.labels[name]) }

// Add inserts a key with an empty sequence. Existing keys are left untouched.
func (s *Store) Add(name string) {
	if s.Has(name) {
		return
	}
	s.keys = append(s.keys, name)
	s.labels[name] = []annotation.Annotation{}
}

// Remove deletes a key and its annotations.
func (s *Store) Remove(name string) {
	if !s.Has(name) {
		return
	}
	delete(s.labels, name)
	s.keys = slices.DeleteFunc(s.keys, func(k string) bool { return k == name })
}

// Append adds an annotation at the end of the photo's sequence, creating the
// key if needed.
func (s *Store) Append(name string, a annotation.Annotation) {
	s.Add(name)
	s.labels[name] = append(s.labels[name], a.Clone())
}

// RemoveAt deletes the annotation at index i of a photo.
func (s *Store) RemoveAt(name string, i int) error {
	seq, ok := s.labels[name]
	if !ok {
		return fmt.Errorf("photo %s: %w", name, ErrNotFound)
	}
	if i < 0 || i >= len(seq) {
		return fmt.Errorf("photo %s has %d labels, index %d: %w", name, len(seq), i, ErrIndex)
	}
	s.labels[name] = slices.Delete(seq, i, i+1)
	return nil
}

// Unlabeled returns the keys whose sequence is empty, in store order.
func (s *Store) Unlabeled() []string {
	var out []string
	for _, k := range s.keys {
		if len(s.labels[k]) == 0 {
			out = append(out, k)
		}
	}
	return out
}

// Stats summarises the store contents.
type Stats struct {
	Photos           int `json:"photos"`
	LabeledPhotos    int `json:"labeled_photos"`
	Persons          int `json:"persons"`
	NumberedPersons  int `json:"numbered_persons"`
	DuplicatePersons int `json:"duplicate_persons"` // boxes overlapping an earlier box on the same photo
}

// Stats counts photos and persons.
func (s *Store) Stats() Stats {
	st := Stats{Photos: len(s.keys)}
	for _, k := range s.keys {
		seq := s.labels[k]
		if len(seq) > 0 {
			st.LabeledPhotos++
		}
		st.Persons += len(seq)
		for i, a := range seq {
			if a.HasNumber() {
				st.NumberedPersons++
			}
			for _, prev := range seq[:i] {
				if a.Position.IoU(prev.Position) >= constants.DuplicateIoU {
					st.DuplicatePersons++
					break
				}
			}
		}
	}
	return st
}

// MarshalJSON writes the object with keys in store order.
func (s *Store) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range s.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		seq, err := json.Marshal(s.labels[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(seq)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a filename -> array-of-annotation object, keeping the
// key order of the document.
func (s *Store) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("%w: top level must be an object", ErrFormat)
	}

	out := New()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrFormat, err)
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("%w: unexpected key %v", ErrFormat, tok)
		}

		var seq []annotation.Annotation
		if err := dec.Decode(&seq); err != nil {
			return fmt.Errorf("%w: photo %s: %v", ErrFormat, name, err)
		}
		if seq == nil {
			return fmt.Errorf("%w: photo %s: labels must be an array", ErrFormat, name)
		}
		if out.Has(name) {
			return fmt.Errorf("%w: duplicate photo %s", ErrFormat, name)
		}
		out.keys = append(out.keys, name)
		out.labels[name] = seq
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if dec.More() {
		return fmt.Errorf("%w: trailing data", ErrFormat)
	}

	*s = *out
	return nil
}
