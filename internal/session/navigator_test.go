package session

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/capture"
	"github.com/kozaktomas/photo-labeler/internal/labelstore"
)

type fixedProber struct {
	width, height int
}

func (p fixedProber) Dimensions(string) (int, int, error) {
	return p.width, p.height, nil
}

var testExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// setupDir creates empty photo files and a label file with the given content,
// returning the label file path.
func setupDir(t *testing.T, photos []string, labels string) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range photos {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	path := filepath.Join(dir, "labels.json")
	if err := os.WriteFile(path, []byte(labels), 0o644); err != nil {
		t.Fatalf("failed to write label file: %v", err)
	}
	return path
}

func newTestNavigator() *Navigator {
	return New(Options{
		Extensions:   testExtensions,
		AnchorMargin: 20,
		Prober:       fixedProber{width: 1000, height: 800},
	})
}

func openNavigator(t *testing.T, photos []string, labels string) (*Navigator, string) {
	t.Helper()
	path := setupDir(t, photos, labels)
	n := newTestNavigator()
	if err := n.Open(path); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return n, path
}

func answer(number int) capture.Prompter {
	return capture.PromptFunc(func() (int, bool) { return number, true })
}

func drawPerson(t *testing.T, n *Navigator, r annotation.Rect) {
	t.Helper()
	if err := n.PointerDown(annotation.Point{X: r[0], Y: r[1]}); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if err := n.PointerMove(annotation.Point{X: r[2], Y: r[3]}); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if err := n.PointerUp(annotation.Point{X: r[2], Y: r[3]}, nil); err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
}

func drawDorsal(t *testing.T, n *Navigator, r annotation.Rect, prompter capture.Prompter) {
	t.Helper()
	if err := n.PointerDown(annotation.Point{X: r[0], Y: r[1]}); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if err := n.PointerUp(annotation.Point{X: r[2], Y: r[3]}, prompter); err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
}

func TestNavigator_NoFile(t *testing.T) {
	n := newTestNavigator()

	ops := []struct {
		name string
		fn   func() error
	}{
		{name: "save", fn: n.Save},
		{name: "refresh", fn: n.LoadOrRefresh},
		{name: "next", fn: n.Next},
		{name: "previous", fn: n.Previous},
		{name: "filter unlabeled", fn: n.FilterUnlabeled},
		{name: "filter all", fn: n.FilterAll},
		{name: "new person", fn: n.NewPerson},
		{name: "delete label", fn: func() error { return n.DeleteLabel(0) }},
		{name: "pointer down", fn: func() error { return n.PointerDown(annotation.Point{}) }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.fn(); !errors.Is(err, ErrNoFile) {
				t.Errorf("expected ErrNoFile, got %v", err)
			}
		})
	}

	snap := n.Snapshot()
	if snap.Status != "No file" {
		t.Errorf("expected status 'No file', got %q", snap.Status)
	}
	if n.Loaded() {
		t.Error("expected navigator not loaded")
	}
}

func TestNavigator_OpenResumes(t *testing.T) {
	n, _ := openNavigator(t,
		[]string{"a.jpg", "b.jpg", "c.jpg", "notes.txt"},
		`{"b.jpg":[{"position":[1,2,3,4]}],"c.jpg":[]}`,
	)

	snap := n.Snapshot()
	if snap.Position != 1 || snap.Photo != "b.jpg" {
		t.Errorf("expected to resume at b.jpg (1), got %s (%d)", snap.Photo, snap.Position)
	}
	if snap.Total != 3 {
		t.Errorf("expected 3 photos, got %d", snap.Total)
	}
	if snap.Status != "Photo: b.jpg 2/3" {
		t.Errorf("unexpected status %q", snap.Status)
	}
	if snap.State != "awaiting_person" {
		t.Errorf("expected awaiting_person, got %s", snap.State)
	}
	if snap.Width != 1000 || snap.Height != 800 {
		t.Errorf("expected 1000x800, got %dx%d", snap.Width, snap.Height)
	}
	if len(snap.SideList) != 1 || snap.SideList[0].Text != "0) No number" {
		t.Errorf("unexpected side list %+v", snap.SideList)
	}
	if snap.SessionID == "" {
		t.Error("expected session id")
	}
}

func TestNavigator_OpenFailureKeepsState(t *testing.T) {
	n, path := openNavigator(t, []string{"a.jpg", "b.jpg"}, `{}`)
	before := n.Snapshot()

	tests := []struct {
		name    string
		path    string
		content string
		wantErr error
	}{
		{name: "missing file", path: filepath.Join(t.TempDir(), "nope.json"), wantErr: labelstore.ErrNotFound},
		{name: "malformed file", path: filepath.Join(t.TempDir(), "bad.json"), content: `["a.jpg"]`, wantErr: labelstore.ErrFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.content != "" {
				if err := os.WriteFile(tt.path, []byte(tt.content), 0o644); err != nil {
					t.Fatal(err)
				}
			}
			if err := n.Open(tt.path); !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			after := n.Snapshot()
			if after.LabelFile != path || after.SessionID != before.SessionID || after.Photo != before.Photo {
				t.Errorf("expected session unchanged, got %+v", after)
			}
		})
	}
}

func TestNavigator_Wraparound(t *testing.T) {
	n, _ := openNavigator(t, []string{"a.jpg", "b.jpg", "c.jpg"}, `{}`)

	if got := n.Snapshot().Position; got != 0 {
		t.Fatalf("expected start at 0, got %d", got)
	}
	if err := n.Previous(); err != nil {
		t.Fatalf("Previous failed: %v", err)
	}
	if got := n.Snapshot(); got.Position != 2 || got.Photo != "c.jpg" {
		t.Errorf("expected previous from 0 to wrap to 2, got %d (%s)", got.Position, got.Photo)
	}
	if err := n.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := n.Snapshot().Position; got != 0 {
		t.Errorf("expected next from 2 to wrap to 0, got %d", got)
	}
	if err := n.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := n.Snapshot().Position; got != 1 {
		t.Errorf("expected 1, got %d", got)
	}
}

func TestNavigator_EmptyDirectory(t *testing.T) {
	n, _ := openNavigator(t, nil, `{}`)

	if got := n.Snapshot().Status; got != "No photos" {
		t.Errorf("expected status 'No photos', got %q", got)
	}
	if err := n.Next(); !errors.Is(err, ErrEmptyList) {
		t.Errorf("expected ErrEmptyList from Next, got %v", err)
	}
	if err := n.Previous(); !errors.Is(err, ErrEmptyList) {
		t.Errorf("expected ErrEmptyList from Previous, got %v", err)
	}
	if err := n.PointerDown(annotation.Point{}); !errors.Is(err, ErrEmptyList) {
		t.Errorf("expected ErrEmptyList from PointerDown, got %v", err)
	}
	if err := n.FilterAll(); !errors.Is(err, ErrNoPhotos) {
		t.Errorf("expected ErrNoPhotos from FilterAll, got %v", err)
	}
}

func TestNavigator_FilterUnlabeledAllLabeled(t *testing.T) {
	n, _ := openNavigator(t,
		[]string{"a.jpg", "b.jpg"},
		`{"a.jpg":[{"position":[1,1,5,5]}],"b.jpg":[{"position":[2,2,6,6]}]}`,
	)
	if err := n.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	before := n.Snapshot()

	if err := n.FilterUnlabeled(); !errors.Is(err, ErrAllLabeled) {
		t.Fatalf("expected ErrAllLabeled, got %v", err)
	}

	after := n.Snapshot()
	if after.Photo != before.Photo || after.Position != before.Position || after.Total != 2 {
		t.Errorf("expected active list unchanged, before %+v after %+v", before, after)
	}
	if after.Filter != FilterAll {
		t.Errorf("expected filter all, got %s", after.Filter)
	}
}

func TestNavigator_Filters(t *testing.T) {
	n, _ := openNavigator(t,
		[]string{"a.jpg", "b.jpg", "c.jpg", "d.jpg"},
		`{"a.jpg":[{"position":[1,1,5,5]}],"c.jpg":[{"position":[2,2,6,6]}]}`,
	)

	if err := n.FilterUnlabeled(); err != nil {
		t.Fatalf("FilterUnlabeled failed: %v", err)
	}
	snap := n.Snapshot()
	if snap.Total != 2 || snap.Photo != "b.jpg" || snap.Position != 0 {
		t.Errorf("expected unlabeled list starting at b.jpg, got %+v", snap)
	}
	if snap.Filter != FilterUnlabeled {
		t.Errorf("expected filter unlabeled, got %s", snap.Filter)
	}

	// Labeling b keeps it in the list until the filter is applied again.
	drawPerson(t, n, annotation.R(10, 10, 50, 50))
	if err := n.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}
	if got := n.Snapshot().Photo; got != "d.jpg" {
		t.Errorf("expected d.jpg, got %s", got)
	}

	if err := n.FilterAll(); err != nil {
		t.Fatalf("FilterAll failed: %v", err)
	}
	snap = n.Snapshot()
	if snap.Total != 4 || snap.Photo != "d.jpg" || snap.Position != 3 {
		t.Errorf("expected all photos positioned at first unlabeled d.jpg, got %+v", snap)
	}
}

func TestNavigator_CaptureAndSave(t *testing.T) {
	n, path := openNavigator(t, []string{"a.jpg", "b.jpg"}, `{}`)

	drawPerson(t, n, annotation.R(100, 100, 300, 500))
	if got := n.Snapshot().State; got != "awaiting_dorsal" {
		t.Fatalf("expected awaiting_dorsal, got %s", got)
	}
	drawDorsal(t, n, annotation.R(150, 200, 250, 260), answer(42))

	snap := n.Snapshot()
	if snap.State != "awaiting_person" {
		t.Errorf("expected awaiting_person after commit, got %s", snap.State)
	}
	if len(snap.Annotations) != 1 || snap.Annotations[0].Dorsal == nil || snap.Annotations[0].Dorsal.Number != 42 {
		t.Fatalf("expected one numbered annotation, got %+v", snap.Annotations)
	}
	if len(snap.SideList) != 1 || snap.SideList[0].Text != "0) 42" {
		t.Errorf("unexpected side list %+v", snap.SideList)
	}

	// A person without a dorsal is committed when moving on.
	drawPerson(t, n, annotation.R(400, 100, 600, 500))
	if err := n.Next(); err != nil {
		t.Fatalf("Next failed: %v", err)
	}

	saved, err := labelstore.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	labels := saved.Labels("a.jpg")
	if len(labels) != 2 {
		t.Fatalf("expected 2 saved labels, got %d", len(labels))
	}
	if labels[0].Dorsal == nil || labels[0].Dorsal.Position != annotation.R(150, 200, 250, 260) {
		t.Errorf("unexpected first label %+v", labels[0])
	}
	if labels[1].Dorsal != nil || labels[1].Position != annotation.R(400, 100, 600, 500) {
		t.Errorf("unexpected second label %+v", labels[1])
	}
	if !saved.Has("b.jpg") || saved.Count("b.jpg") != 0 {
		t.Error("expected b.jpg saved with no labels")
	}
}

func TestNavigator_FinishedPersonInSideList(t *testing.T) {
	n, _ := openNavigator(t, []string{"a.jpg"}, `{"a.jpg":[{"position":[1,2,3,4],"number":{"number":5,"position":[1,1,2,2]}}]}`)

	drawPerson(t, n, annotation.R(100, 100, 300, 500))
	snap := n.Snapshot()
	if len(snap.SideList) != 2 {
		t.Fatalf("expected committed and pending entries, got %+v", snap.SideList)
	}
	pending := snap.SideList[1]
	if !pending.Pending || pending.Index != 1 || pending.Text != "1) No number" {
		t.Errorf("expected pending entry '1) No number', got %+v", pending)
	}
	if snap.SideList[0].Pending {
		t.Errorf("expected stored entry to not be pending, got %+v", snap.SideList[0])
	}

	drawDorsal(t, n, annotation.R(150, 200, 250, 260), answer(9))
	snap = n.Snapshot()
	if len(snap.SideList) != 2 || snap.SideList[1].Pending || snap.SideList[1].Text != "1) 9" {
		t.Errorf("expected pending entry replaced by '1) 9', got %+v", snap.SideList)
	}
}

func TestNavigator_CancelledNumber(t *testing.T) {
	n, _ := openNavigator(t, []string{"a.jpg"}, `{}`)

	drawPerson(t, n, annotation.R(100, 100, 300, 500))
	drawDorsal(t, n, annotation.R(150, 200, 250, 260), nil)

	snap := n.Snapshot()
	if snap.State != "awaiting_dorsal" {
		t.Fatalf("expected awaiting_dorsal after cancel, got %s", snap.State)
	}
	if snap.Pending == nil || snap.Pending.Dorsal != nil {
		t.Fatalf("expected pending person without dorsal, got %+v", snap.Pending)
	}

	if err := n.NewPerson(); err != nil {
		t.Fatalf("NewPerson failed: %v", err)
	}
	snap = n.Snapshot()
	if len(snap.Annotations) != 1 || snap.Annotations[0].Dorsal != nil {
		t.Errorf("expected number-less annotation, got %+v", snap.Annotations)
	}
	if len(snap.SideList) != 1 || snap.SideList[0].Number != nil {
		t.Errorf("unexpected side list %+v", snap.SideList)
	}
}

func TestNavigator_LiveRect(t *testing.T) {
	n, _ := openNavigator(t, []string{"a.jpg"}, `{}`)

	if err := n.PointerDown(annotation.Point{X: 100, Y: 100}); err != nil {
		t.Fatal(err)
	}
	if err := n.PointerMove(annotation.Point{X: 2000, Y: 300}); err != nil {
		t.Fatal(err)
	}

	snap := n.Snapshot()
	if snap.Live == nil {
		t.Fatal("expected live rect while drawing")
	}
	if *snap.Live != annotation.R(100, 100, 999, 300) {
		t.Errorf("expected live rect clamped to image, got %v", *snap.Live)
	}
}

func TestNavigator_DeleteLabelCommitsFinishedPerson(t *testing.T) {
	n, _ := openNavigator(t, []string{"a.jpg"}, `{"a.jpg":[{"position":[1,1,5,5],"number":{"number":3,"position":[2,2,3,3]}}]}`)

	drawPerson(t, n, annotation.R(100, 100, 300, 500))
	if err := n.DeleteLabel(0); err != nil {
		t.Fatalf("DeleteLabel failed: %v", err)
	}

	snap := n.Snapshot()
	if len(snap.Annotations) != 1 || snap.Annotations[0].Dorsal != nil || snap.Annotations[0].Position != annotation.R(100, 100, 300, 500) {
		t.Fatalf("expected the finished person kept without number, got %+v", snap.Annotations)
	}
	if len(snap.SideList) != 1 || snap.SideList[0].Pending || snap.SideList[0].Text != "0) No number" {
		t.Errorf("expected side list '0) No number', got %+v", snap.SideList)
	}
}

func TestNavigator_DeleteLabel(t *testing.T) {
	n, path := openNavigator(t,
		[]string{"a.jpg"},
		`{"a.jpg":[{"position":[1,1,5,5],"number":{"number":3,"position":[2,2,3,3]}},{"position":[10,10,50,50],"number":{"number":8,"position":[20,20,30,30]}}]}`,
	)

	if err := n.DeleteLabel(0); err != nil {
		t.Fatalf("DeleteLabel failed: %v", err)
	}

	snap := n.Snapshot()
	if len(snap.Annotations) != 1 || snap.Annotations[0].Dorsal.Number != 8 {
		t.Fatalf("expected remaining label with number 8, got %+v", snap.Annotations)
	}
	if len(snap.SideList) != 1 || snap.SideList[0].Index != 0 || snap.SideList[0].Text != "0) 8" {
		t.Errorf("expected side list '0) 8', got %+v", snap.SideList)
	}
	if snap.State != "awaiting_person" {
		t.Errorf("expected machine rebuilt in awaiting_person, got %s", snap.State)
	}

	if err := n.DeleteLabel(5); !errors.Is(err, labelstore.ErrIndex) {
		t.Errorf("expected ErrIndex, got %v", err)
	}

	if err := n.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	saved, err := labelstore.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if saved.Count("a.jpg") != 1 {
		t.Errorf("expected 1 saved label, got %d", saved.Count("a.jpg"))
	}
}

func TestNavigator_RefreshPicksUpNewPhotos(t *testing.T) {
	n, path := openNavigator(t, []string{"a.jpg"}, `{}`)
	dir := filepath.Dir(path)

	if err := os.WriteFile(filepath.Join(dir, "b.png"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(filepath.Join(dir, "a.jpg")); err != nil {
		t.Fatal(err)
	}
	if err := n.LoadOrRefresh(); err != nil {
		t.Fatalf("LoadOrRefresh failed: %v", err)
	}

	snap := n.Snapshot()
	if snap.Total != 1 || snap.Photo != "b.png" {
		t.Errorf("expected only b.png, got %+v", snap)
	}
	if _, err := n.PhotoPath("a.jpg"); !errors.Is(err, labelstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound for removed photo, got %v", err)
	}
	got, err := n.PhotoPath("b.png")
	if err != nil || got != filepath.Join(dir, "b.png") {
		t.Errorf("unexpected photo path %q, %v", got, err)
	}
}

func TestNavigator_Create(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.jpg"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "new.json")

	n := newTestNavigator()
	if err := n.Create(path); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !n.Loaded() {
		t.Fatal("expected file loaded")
	}
	if got := n.Snapshot().Photo; got != "a.jpg" {
		t.Errorf("expected a.jpg open, got %s", got)
	}

	stats, err := n.Stats()
	if err != nil {
		t.Fatal(err)
	}
	if stats.Photos != 1 || stats.LabeledPhotos != 0 {
		t.Errorf("unexpected stats %+v", stats)
	}
}

func TestNavigator_RedrawCallback(t *testing.T) {
	path := setupDir(t, []string{"a.jpg", "b.jpg"}, `{}`)
	redraws := 0
	n := New(Options{
		Extensions: testExtensions,
		Prober:     fixedProber{width: 100, height: 100},
		OnRedraw:   func() { redraws++ },
	})

	if err := n.Open(path); err != nil {
		t.Fatal(err)
	}
	if redraws == 0 {
		t.Error("expected redraw when a photo opens")
	}
	redraws = 0
	if err := n.PointerDown(annotation.Point{X: 1, Y: 1}); err != nil {
		t.Fatal(err)
	}
	if redraws == 0 {
		t.Error("expected redraw on capture transition")
	}
}
