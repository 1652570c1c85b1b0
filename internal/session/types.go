// Package session walks a labeler through the photos of one label file: it
// loads and reconciles the store, keeps the active photo list and position,
// and routes pointer events to the capture machine of the open photo.
package session

import (
	"errors"
	"fmt"

	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"go.uber.org/zap"
)

var (
	ErrEmptyList  = errors.New("no photos in the active list")
	ErrAllLabeled = errors.New("all photos are labeled")
	ErrNoPhotos   = errors.New("no photos")
	ErrNoFile     = errors.New("no label file open")
)

// Filter selects which photos the active list holds.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterUnlabeled Filter = "unlabeled"
)

// Options configures a Navigator.
type Options struct {
	Extensions   []string
	AnchorMargin int
	Lister       labelstore.Lister // defaults to labelstore.DirLister
	Prober       imagefile.Prober  // defaults to imagefile.DiskProber
	OnRedraw     func()
	Logger       *zap.Logger
}

// Entry is one line of the side list next to the photo.
type Entry struct {
	Index   int    `json:"index"`
	Number  *int   `json:"number,omitempty"`
	Text    string `json:"text"`
	Pending bool   `json:"pending,omitempty"` // person drawn, not yet committed
}

func newEntry(i int, a annotation.Annotation) Entry {
	e := Entry{Index: i, Text: fmt.Sprintf("%d) No number", i)}
	if a.Dorsal != nil {
		n := a.Dorsal.Number
		e.Number = &n
		e.Text = fmt.Sprintf("%d) %d", i, n)
	}
	return e
}

// Snapshot is a read-only view of the session for rendering.
type Snapshot struct {
	SessionID   string                  `json:"session_id"`
	LabelFile   string                  `json:"label_file"`
	Photo       string                  `json:"photo"`
	Position    int                     `json:"position"`
	Total       int                     `json:"total"`
	Status      string                  `json:"status"`
	State       string                  `json:"state"`
	Filter      Filter                  `json:"filter"`
	Width       int                     `json:"width"`
	Height      int                     `json:"height"`
	Annotations []annotation.Annotation `json:"annotations"`
	Pending     *annotation.Annotation  `json:"pending,omitempty"`
	Live        *annotation.Rect        `json:"live,omitempty"`
	SideList    []Entry                 `json:"side_list"`
}
