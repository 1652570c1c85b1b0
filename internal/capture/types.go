// Package capture sequences pointer events on one photo into person labels
// with optional dorsal numbers.
package capture

import (
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"go.uber.org/zap"
)

// State enumerates the steps of capturing one person.
type State int

const (
	AwaitingPerson State = iota
	DrawingPerson
	AwaitingDorsal
	DrawingDorsal
)

func (s State) String() string {
	switch s {
	case AwaitingPerson:
		return "awaiting_person"
	case DrawingPerson:
		return "drawing_person"
	case AwaitingDorsal:
		return "awaiting_dorsal"
	case DrawingDorsal:
		return "drawing_dorsal"
	default:
		return "unknown"
	}
}

// Prompter asks the user for a dorsal number. It blocks until the user
// answers; ok is false when the user cancels.
type Prompter interface {
	RequestNumber() (number int, ok bool)
}

// PromptFunc adapts a function to Prompter.
type PromptFunc func() (int, bool)

func (f PromptFunc) RequestNumber() (int, bool) { return f() }

// Appender receives committed annotations. *labelstore.Store satisfies it.
type Appender interface {
	Append(photo string, a annotation.Annotation)
	Count(photo string) int
}

// Options configures a Machine.
type Options struct {
	Width, Height int // image size used for clamping; zero disables the upper bound
	AnchorMargin  int
	Prompter      Prompter
	OnRedraw      func()
	OnPerson      func(index int, r annotation.Rect)       // called when a person box is finished; index is the one it will take
	OnCommit      func(index int, a annotation.Annotation) // called after each append
	Logger        *zap.Logger
}
