package labelstore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/kozaktomas/photo-labeler/internal/annotation"
)

// Lister returns the entries of a directory in listing order.
type Lister interface {
	List(dir string) ([]string, error)
}

// DirLister lists regular entries of a directory on disk in lexical order.
type DirLister struct{}

// List returns the names of the non-directory entries in dir.
func (DirLister) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("directory %s: %w", dir, ErrNotFound)
		}
		return nil, fmt.Errorf("reading directory %s: %w: %v", dir, ErrIO, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	return names, nil
}

// IsImage reports whether name ends with one of the extensions. The match is
// case-sensitive, so "IMG.JPG" does not qualify for ".jpg".
func IsImage(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Reconciliation is the outcome of syncing a store with a directory listing.
type Reconciliation struct {
	Photos  []string // store keys after reconciliation, in listing order
	Resume  int      // index in Photos where a session should start
	Added   []string // images found on disk with no entry in the store
	Removed []string // store entries whose image disappeared
	Renamed []Rename // entries moved to a differently normalized disk name
}

// Rename records labels carried over from one key to another.
type Rename struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Reconcile makes the store keys equal to the qualifying images of listing.
//
// Keys are rebuilt in listing order. New images get an empty sequence and
// missing images are dropped. The resume position is the number of images
// seen before the first image that already had labels, or 0 when no image had
// labels (or every image precedes it).
func Reconcile(s *Store, listing []string, extensions []string) Reconciliation {
	stale := make(map[string]struct{}, len(s.keys))
	for _, k := range s.keys {
		stale[k] = struct{}{}
	}

	// Stored names absent from the listing, by canonical form, so labels
	// survive a copy between filesystems that normalize Unicode differently.
	listed := make(map[string]struct{}, len(listing))
	for _, name := range listing {
		listed[name] = struct{}{}
	}
	forms := make(map[string]string)
	for _, k := range s.keys {
		if _, ok := listed[k]; !ok {
			forms[canonicalName(k)] = k
		}
	}

	var res Reconciliation
	seen := make(map[string]struct{}, len(listing))
	before := 0
	foundLabeled := false

	for _, name := range listing {
		if !IsImage(name, extensions) {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		if s.Has(name) {
			delete(stale, name)
		} else if old, ok := forms[canonicalName(name)]; ok {
			delete(forms, canonicalName(name))
			delete(stale, old)
			s.labels[name] = s.labels[old]
			delete(s.labels, old)
			res.Renamed = append(res.Renamed, Rename{From: old, To: name})
		} else {
			res.Added = append(res.Added, name)
		}
		if !foundLabeled && len(s.labels[name]) > 0 {
			foundLabeled = true
		}
		if !foundLabeled {
			before++
		}
		res.Photos = append(res.Photos, name)
	}

	for _, k := range s.keys {
		if _, ok := stale[k]; ok {
			res.Removed = append(res.Removed, k)
			delete(s.labels, k)
		}
	}
	for _, name := range res.Added {
		s.labels[name] = []annotation.Annotation{}
	}
	s.keys = append([]string(nil), res.Photos...)

	if before < len(res.Photos) {
		res.Resume = before
	}
	return res
}

// ReconcileDir lists dir with l and reconciles the store against it. The
// store is not modified when the listing fails.
func ReconcileDir(s *Store, dir string, l Lister, extensions []string) (Reconciliation, error) {
	if l == nil {
		l = DirLister{}
	}
	listing, err := l.List(dir)
	if err != nil {
		return Reconciliation{}, err
	}
	return Reconcile(s, listing, extensions), nil
}
