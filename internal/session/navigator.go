package session

import (
	"fmt"
	"path/filepath"
	"slices"

	"github.com/google/uuid"
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/capture"
	"github.com/kozaktomas/photo-labeler/internal/imagefile"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"go.uber.org/zap"
)

// Navigator owns the label store of one file, the active photo list and the
// capture machine of the open photo. It is not safe for concurrent use.
type Navigator struct {
	opts   Options
	logger *zap.Logger

	id     string
	path   string
	dir    string
	store  *labelstore.Store
	active []string
	pos    int
	filter Filter

	machine  *capture.Machine
	width    int
	height   int
	entries  []Entry
	person   *Entry           // side list line of the person awaiting its dorsal
	prompter capture.Prompter // answers the number request of the current PointerUp
}

// New returns a navigator with no label file open.
func New(opts Options) *Navigator {
	if opts.Lister == nil {
		opts.Lister = labelstore.DirLister{}
	}
	if opts.Prober == nil {
		opts.Prober = imagefile.DiskProber{}
	}
	return &Navigator{
		opts:   opts,
		logger: logging.OrNop(opts.Logger),
		filter: FilterAll,
	}
}

// Open saves the current session, if any, then loads path. A failed load
// leaves the navigator as it was.
func (n *Navigator) Open(path string) error {
	if n.store != nil {
		if err := n.flushSave(); err != nil {
			return err
		}
	}
	return n.load(path)
}

// Create writes an empty label file at path and opens it.
func (n *Navigator) Create(path string) error {
	if n.store != nil {
		if err := n.flushSave(); err != nil {
			return err
		}
	}
	if err := labelstore.Create(path); err != nil {
		return err
	}
	n.logger.Info("created label file", zap.String("path", path))
	return n.load(path)
}

// LoadOrRefresh saves the session and reloads the label file, picking up
// photos added to or removed from its directory.
func (n *Navigator) LoadOrRefresh() error {
	if n.store == nil {
		return ErrNoFile
	}
	if err := n.flushSave(); err != nil {
		return err
	}
	return n.load(n.path)
}

// Save commits the capture in progress and writes the label file.
func (n *Navigator) Save() error {
	if n.store == nil {
		return ErrNoFile
	}
	return n.flushSave()
}

// FilterUnlabeled restricts the active list to photos without labels. When
// every photo is labeled it returns ErrAllLabeled and keeps the open photo.
func (n *Navigator) FilterUnlabeled() error {
	if n.store == nil {
		return ErrNoFile
	}
	if err := n.flushSave(); err != nil {
		return err
	}
	unlabeled := n.store.Unlabeled()
	if len(unlabeled) == 0 {
		return ErrAllLabeled
	}
	n.active = unlabeled
	n.pos = 0
	n.filter = FilterUnlabeled
	n.openPhoto()
	return nil
}

// FilterAll makes every photo active and moves to the first unlabeled one.
func (n *Navigator) FilterAll() error {
	if n.store == nil {
		return ErrNoFile
	}
	if err := n.flushSave(); err != nil {
		return err
	}
	n.active = n.store.Keys()
	n.pos = 0
	if i := slices.IndexFunc(n.active, func(name string) bool { return n.store.Count(name) == 0 }); i >= 0 {
		n.pos = i
	}
	n.filter = FilterAll
	n.openPhoto()
	if len(n.active) == 0 {
		return ErrNoPhotos
	}
	return nil
}

// Next saves and moves to the following photo, wrapping to the first.
func (n *Navigator) Next() error {
	return n.step(1)
}

// Previous saves and moves to the preceding photo, wrapping to the last.
func (n *Navigator) Previous() error {
	return n.step(-1)
}

func (n *Navigator) step(delta int) error {
	if n.store == nil {
		return ErrNoFile
	}
	if err := n.flushSave(); err != nil {
		return err
	}
	if len(n.active) == 0 {
		return ErrEmptyList
	}
	n.pos = (n.pos + delta + len(n.active)) % len(n.active)
	n.openPhoto()
	return nil
}

// NewPerson commits the capture in progress without moving on.
func (n *Navigator) NewPerson() error {
	m, err := n.current()
	if err != nil {
		return err
	}
	m.Flush()
	return nil
}

// DeleteLabel removes the label at index from the open photo and reopens it.
// A finished person still awaiting its dorsal is committed first, so the
// delete can follow a new "No number" entry; indexes count that entry.
func (n *Navigator) DeleteLabel(index int) error {
	m, err := n.current()
	if err != nil {
		return err
	}
	m.Flush()
	photo := m.Photo()
	if err := n.store.RemoveAt(photo, index); err != nil {
		return err
	}
	n.logger.Info("label deleted", zap.String("photo", photo), zap.Int("index", index))
	n.openPhoto()
	return nil
}

// PointerDown forwards a pointer press to the open photo.
func (n *Navigator) PointerDown(p annotation.Point) error {
	m, err := n.current()
	if err != nil {
		return err
	}
	m.PointerDown(p)
	return nil
}

// PointerMove forwards a drag to the open photo.
func (n *Navigator) PointerMove(p annotation.Point) error {
	m, err := n.current()
	if err != nil {
		return err
	}
	m.PointerMove(p)
	return nil
}

// PointerUp forwards a pointer release to the open photo. prompter answers
// the dorsal number request; nil cancels it.
func (n *Navigator) PointerUp(p annotation.Point, prompter capture.Prompter) error {
	m, err := n.current()
	if err != nil {
		return err
	}
	n.prompter = prompter
	defer func() { n.prompter = nil }()
	m.PointerUp(p)
	return nil
}

// Snapshot returns the state needed to render the session.
func (n *Navigator) Snapshot() Snapshot {
	s := Snapshot{
		SessionID:   n.id,
		LabelFile:   n.path,
		Total:       len(n.active),
		Filter:      n.filter,
		Width:       n.width,
		Height:      n.height,
		State:       capture.AwaitingPerson.String(),
		Annotations: []annotation.Annotation{},
		SideList:    slices.Clone(n.entries),
	}
	if n.person != nil {
		s.SideList = append(s.SideList, *n.person)
	}
	if s.SideList == nil {
		s.SideList = []Entry{}
	}
	switch {
	case n.store == nil:
		s.Status = "No file"
		return s
	case n.machine == nil:
		s.Status = "No photos"
		return s
	}

	s.Photo = n.machine.Photo()
	s.Position = n.pos
	s.Status = fmt.Sprintf("Photo: %s %d/%d", s.Photo, n.pos+1, len(n.active))
	s.State = n.machine.State().String()
	s.Annotations = n.store.Labels(s.Photo)
	if p, ok := n.machine.Pending(); ok {
		s.Pending = &p
	}
	if r, ok := n.machine.Live(); ok {
		s.Live = &r
	}
	return s
}

// Loaded reports whether a label file is open.
func (n *Navigator) Loaded() bool { return n.store != nil }

// LabelFile returns the path of the open label file.
func (n *Navigator) LabelFile() string { return n.path }

// Stats summarizes the open label file.
func (n *Navigator) Stats() (labelstore.Stats, error) {
	if n.store == nil {
		return labelstore.Stats{}, ErrNoFile
	}
	return n.store.Stats(), nil
}

// PhotoPath resolves a photo of the open label file to its path on disk.
// Only names known to the store resolve.
func (n *Navigator) PhotoPath(name string) (string, error) {
	if n.store == nil {
		return "", ErrNoFile
	}
	if !n.store.Has(name) {
		return "", fmt.Errorf("photo %s: %w", name, labelstore.ErrNotFound)
	}
	return filepath.Join(n.dir, name), nil
}

// PhotoLabels returns a copy of the labels stored for name.
func (n *Navigator) PhotoLabels(name string) ([]annotation.Annotation, error) {
	if n.store == nil {
		return nil, ErrNoFile
	}
	if !n.store.Has(name) {
		return nil, fmt.Errorf("photo %s: %w", name, labelstore.ErrNotFound)
	}
	return n.store.Labels(name), nil
}

func (n *Navigator) load(path string) error {
	store, err := labelstore.Load(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	rec, err := labelstore.ReconcileDir(store, dir, n.opts.Lister, n.opts.Extensions)
	if err != nil {
		return err
	}

	n.id = uuid.NewString()
	n.path = path
	n.dir = dir
	n.store = store
	n.active = rec.Photos
	n.pos = rec.Resume
	n.filter = FilterAll
	n.logger.Info("label file loaded",
		zap.String("path", path),
		zap.Int("photos", len(rec.Photos)),
		zap.Int("added", len(rec.Added)),
		zap.Int("removed", len(rec.Removed)),
		zap.Int("resume", rec.Resume),
	)
	n.openPhoto()
	return nil
}

func (n *Navigator) flushSave() error {
	if n.machine != nil {
		n.machine.Flush()
	}
	if err := labelstore.Save(n.path, n.store); err != nil {
		return err
	}
	n.logger.Debug("label file saved", zap.String("path", n.path))
	return nil
}

// openPhoto rebuilds the capture machine and side list for active[pos].
func (n *Navigator) openPhoto() {
	n.machine = nil
	n.width, n.height = 0, 0
	n.entries = nil
	n.person = nil
	if len(n.active) == 0 {
		n.redraw()
		return
	}

	name := n.active[n.pos]
	w, h, err := n.opts.Prober.Dimensions(filepath.Join(n.dir, name))
	if err != nil {
		n.logger.Warn("failed to read image size, drawing is not clamped", zap.String("photo", name), zap.Error(err))
	}
	n.width, n.height = w, h

	for i, a := range n.store.Labels(name) {
		n.entries = append(n.entries, newEntry(i, a))
	}
	n.machine = capture.New(name, n.store, capture.Options{
		Width:        w,
		Height:       h,
		AnchorMargin: n.opts.AnchorMargin,
		Prompter:     capture.PromptFunc(n.requestNumber),
		OnRedraw:     n.redraw,
		OnPerson: func(index int, r annotation.Rect) {
			e := newEntry(index, annotation.Annotation{Position: r})
			e.Pending = true
			n.person = &e
		},
		OnCommit: func(index int, a annotation.Annotation) {
			n.person = nil
			n.entries = append(n.entries, newEntry(index, a))
		},
		Logger: n.logger,
	})
	n.logger.Debug("photo opened", zap.String("photo", name), zap.Int("position", n.pos), zap.Int("total", len(n.active)))
	n.redraw()
}

func (n *Navigator) current() (*capture.Machine, error) {
	if n.store == nil {
		return nil, ErrNoFile
	}
	if n.machine == nil {
		return nil, ErrEmptyList
	}
	return n.machine, nil
}

func (n *Navigator) requestNumber() (int, bool) {
	if n.prompter == nil {
		return 0, false
	}
	return n.prompter.RequestNumber()
}

func (n *Navigator) redraw() {
	if n.opts.OnRedraw != nil {
		n.opts.OnRedraw()
	}
}
