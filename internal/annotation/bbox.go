package annotation

// Box tracks one rectangle being dragged from an anchor point.
//
// Coordinates are clamped to [0, dimension) on each axis. The anchor is also
// kept at least margin pixels away from the right and bottom edges; later drag
// points may reach the true edge. The second corner never moves above or left
// of the anchor: a pointer behind the anchor on an axis is pinned to the
// anchor's coordinate, so a box only grows down and to the right.
type Box struct {
	width, height float64
	margin        float64
	anchor        Point
	active        bool
}

// NewBox returns a box for an image of the given size. A non-positive size
// disables upper clamping on that axis.
func NewBox(width, height, margin int) *Box {
	return &Box{width: float64(width), height: float64(height), margin: float64(max(margin, 0))}
}

// Begin records the drag origin and returns the clamped anchor.
func (b *Box) Begin(p Point) Point {
	b.anchor = Point{
		X: clampAnchor(p.X, b.width, b.margin),
		Y: clampAnchor(p.Y, b.height, b.margin),
	}
	b.active = true
	return b.anchor
}

// Update returns the rectangle spanning the anchor to the clamped point.
func (b *Box) Update(p Point) Rect {
	if !b.active {
		return Rect{}
	}
	x := max(clampEdge(p.X, b.width), b.anchor.X)
	y := max(clampEdge(p.Y, b.height), b.anchor.Y)
	return Rect{b.anchor.X, b.anchor.Y, x, y}
}

// End returns the final rectangle and clears the box.
func (b *Box) End(p Point) Rect {
	r := b.Update(p)
	b.Reset()
	return r
}

// Reset drops the current drag without producing a rectangle.
func (b *Box) Reset() {
	b.active = false
	b.anchor = Point{}
}

// Active reports whether a drag is in progress.
func (b *Box) Active() bool { return b.active }

func clampEdge(v, dim float64) float64 {
	if v < 0 {
		return 0
	}
	if dim > 0 && v > dim-1 {
		return max(dim-1, 0)
	}
	return v
}

func clampAnchor(v, dim, margin float64) float64 {
	v = clampEdge(v, dim)
	if dim > 0 && v > dim-margin {
		return max(dim-margin, 0)
	}
	return v
}
