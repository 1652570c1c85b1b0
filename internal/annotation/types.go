// Package annotation holds the label record model and the rectangle capture
// primitive used while a person or dorsal box is being dragged.
package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"math"
)

// ErrInvalid is returned when a persisted annotation does not have the
// expected shape.
var ErrInvalid = errors.New("invalid annotation")

// Point is a position in image-pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is [x0, y0, x1, y1] in image-pixel space.
type Rect [4]float64

// R builds a rectangle from its two corners.
func R(x0, y0, x1, y1 float64) Rect {
	return Rect{x0, y0, x1, y1}
}

func (r Rect) Width() float64 { return math.Abs(r[2] - r[0]) }

func (r Rect) Height() float64 { return math.Abs(r[3] - r[1]) }

// Empty reports whether the rectangle has zero area.
func (r Rect) Empty() bool { return r.Width() == 0 || r.Height() == 0 }

// Normalize returns the rectangle with x0 <= x1 and y0 <= y1.
func (r Rect) Normalize() Rect {
	return Rect{min(r[0], r[2]), min(r[1], r[3]), max(r[0], r[2]), max(r[1], r[3])}
}

// Scale multiplies every coordinate by f.
func (r Rect) Scale(f float64) Rect {
	return Rect{r[0] * f, r[1] * f, r[2] * f, r[3] * f}
}

// Image converts the rectangle to integer pixel bounds, rounding outwards.
func (r Rect) Image() image.Rectangle {
	n := r.Normalize()
	return image.Rect(
		int(math.Floor(n[0])), int(math.Floor(n[1])),
		int(math.Ceil(n[2])), int(math.Ceil(n[3])),
	)
}

// UnmarshalJSON accepts exactly four numbers.
func (r *Rect) UnmarshalJSON(data []byte) error {
	var coords []float64
	if err := json.Unmarshal(data, &coords); err != nil {
		return fmt.Errorf("%w: position: %v", ErrInvalid, err)
	}
	if len(coords) != 4 {
		return fmt.Errorf("%w: position has %d coordinates, want 4", ErrInvalid, len(coords))
	}
	copy(r[:], coords)
	return nil
}

// Dorsal is the numbered sub-region of a person label.
type Dorsal struct {
	Number   int  `json:"number"`
	Position Rect `json:"position"`
}

// Annotation is one labeled person. Dorsal is nil for a "no number" label.
type Annotation struct {
	Position Rect    `json:"position"`
	Dorsal   *Dorsal `json:"number,omitempty"`
}

// HasNumber reports whether the person carries a dorsal number.
func (a Annotation) HasNumber() bool { return a.Dorsal != nil }

// Clone returns a deep copy.
func (a Annotation) Clone() Annotation {
	if a.Dorsal != nil {
		d := *a.Dorsal
		a.Dorsal = &d
	}
	return a
}

type rawDorsal struct {
	Number   *int  `json:"number"`
	Position *Rect `json:"position"`
}

type rawAnnotation struct {
	Position *Rect      `json:"position"`
	Number   *rawDorsal `json:"number"`
}

// UnmarshalJSON requires a position and rejects a dorsal without a number.
func (a *Annotation) UnmarshalJSON(data []byte) error {
	var raw rawAnnotation
	if err := json.Unmarshal(data, &raw); err != nil {
		if errors.Is(err, ErrInvalid) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if raw.Position == nil {
		return fmt.Errorf("%w: missing position", ErrInvalid)
	}

	out := Annotation{Position: *raw.Position}
	if raw.Number != nil {
		if raw.Number.Number == nil {
			return fmt.Errorf("%w: dorsal without number", ErrInvalid)
		}
		if raw.Number.Position == nil {
			return fmt.Errorf("%w: dorsal without position", ErrInvalid)
		}
		out.Dorsal = &Dorsal{Number: *raw.Number.Number, Position: *raw.Number.Position}
	}
	*a = out
	return nil
}
