package capture

import (
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/logging"
	"go.uber.org/zap"
)

// Machine is the per-photo capture controller. It is not safe for concurrent
// use; callers serialize events.
type Machine struct {
	photo   string
	store   Appender
	opts    Options
	logger  *zap.Logger
	box     *annotation.Box
	state   State
	pending *annotation.Annotation // person being captured, nil when none
	live    annotation.Rect        // rectangle under the pointer while drawing
}

// New returns a machine for photo in AwaitingPerson with nothing in progress.
func New(photo string, store Appender, opts Options) *Machine {
	return &Machine{
		photo:  photo,
		store:  store,
		opts:   opts,
		logger: logging.OrNop(opts.Logger).With(zap.String("photo", photo)),
		box:    annotation.NewBox(opts.Width, opts.Height, opts.AnchorMargin),
		state:  AwaitingPerson,
	}
}

// Photo returns the filename the machine captures for.
func (m *Machine) Photo() string { return m.photo }

// State returns the current capture step.
func (m *Machine) State() State { return m.state }

// Pending returns a copy of the in-progress annotation.
func (m *Machine) Pending() (annotation.Annotation, bool) {
	if m.pending == nil {
		return annotation.Annotation{}, false
	}
	return m.pending.Clone(), true
}

// Live returns the rectangle being dragged, if any.
func (m *Machine) Live() (annotation.Rect, bool) {
	if m.state != DrawingPerson && m.state != DrawingDorsal {
		return annotation.Rect{}, false
	}
	return m.live, true
}

// PointerDown starts a person box or, once the person is drawn, a dorsal box.
func (m *Machine) PointerDown(p annotation.Point) {
	switch m.state {
	case AwaitingPerson:
		a := m.box.Begin(p)
		m.live = annotation.R(a.X, a.Y, a.X, a.Y)
		m.pending = &annotation.Annotation{Position: m.live}
		m.transition(DrawingPerson)
	case AwaitingDorsal:
		a := m.box.Begin(p)
		m.live = annotation.R(a.X, a.Y, a.X, a.Y)
		m.pending.Dorsal = nil
		m.transition(DrawingDorsal)
	}
}

// PointerMove updates the live rectangle while drawing.
func (m *Machine) PointerMove(p annotation.Point) {
	if m.state != DrawingPerson && m.state != DrawingDorsal {
		return
	}
	m.live = m.box.Update(p)
	if m.state == DrawingPerson {
		m.pending.Position = m.live
	}
	m.redraw()
}

// PointerUp finalizes the rectangle being drawn. Finishing a dorsal box asks
// the prompter for its number: an answer commits the person, a cancel drops
// the dorsal box and keeps the person pending.
func (m *Machine) PointerUp(p annotation.Point) {
	switch m.state {
	case DrawingPerson:
		m.pending.Position = m.box.End(p)
		m.live = annotation.Rect{}
		if m.opts.OnPerson != nil {
			m.opts.OnPerson(m.store.Count(m.photo), m.pending.Position)
		}
		m.transition(AwaitingDorsal)
	case DrawingDorsal:
		r := m.box.End(p)
		m.live = r
		number, ok := m.requestNumber()
		m.live = annotation.Rect{}
		if !ok {
			m.logger.Debug("dorsal number cancelled")
			m.transition(AwaitingDorsal)
			return
		}
		m.pending.Dorsal = &annotation.Dorsal{Number: number, Position: r}
		m.commit()
	}
}

// Flush commits the pending person, without a number if the dorsal is not
// complete, and resets to AwaitingPerson. A person box still being dragged
// has no final rectangle and is dropped. Flush reports whether an annotation
// was committed.
func (m *Machine) Flush() bool {
	switch m.state {
	case AwaitingPerson:
		return false
	case DrawingPerson:
		m.box.Reset()
		m.pending = nil
		m.live = annotation.Rect{}
		m.logger.Debug("dropped unfinished person box")
		m.transition(AwaitingPerson)
		return false
	case DrawingDorsal:
		m.box.Reset()
		m.live = annotation.Rect{}
	}
	m.pending.Dorsal = nil
	m.commit()
	return true
}

func (m *Machine) requestNumber() (int, bool) {
	if m.opts.Prompter == nil {
		return 0, false
	}
	return m.opts.Prompter.RequestNumber()
}

func (m *Machine) commit() {
	a := *m.pending
	m.store.Append(m.photo, a)
	index := m.store.Count(m.photo) - 1
	m.pending = nil
	if a.Dorsal != nil {
		m.logger.Info("person committed", zap.Int("index", index), zap.Int("number", a.Dorsal.Number))
	} else {
		m.logger.Info("person committed without number", zap.Int("index", index))
	}
	if m.opts.OnCommit != nil {
		m.opts.OnCommit(index, a.Clone())
	}
	m.transition(AwaitingPerson)
}

func (m *Machine) transition(next State) {
	prev := m.state
	m.state = next
	m.logger.Debug("capture state transition", zap.Stringer("from", prev), zap.Stringer("to", next))
	m.redraw()
}

func (m *Machine) redraw() {
	if m.opts.OnRedraw != nil {
		m.opts.OnRedraw()
	}
}
