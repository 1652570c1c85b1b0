package imagefile

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/kozaktomas/photo-labeler/internal/annotation"
	"github.com/kozaktomas/photo-labeler/internal/constants"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// OverlayStyle selects the colours of the preview overlay.
type OverlayStyle struct {
	Person color.Color
	Dorsal color.Color
	Stroke int
}

// RenderOverlay decodes the photo, scales it to fit within maxSize and draws
// each person box with its index and each dorsal box with its number.
func RenderOverlay(path string, labels []annotation.Annotation, maxSize int, style OverlayStyle) (image.Image, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	scale := 1.0
	if maxSize > 0 && (bounds.Dx() > maxSize || bounds.Dy() > maxSize) {
		scale = float64(maxSize) / float64(max(bounds.Dx(), bounds.Dy()))
	}
	width := max(int(float64(bounds.Dx())*scale), 1)
	height := max(int(float64(bounds.Dy())*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	stroke := style.Stroke
	if stroke <= 0 {
		stroke = constants.OverlayStroke
	}
	for i, a := range labels {
		box := a.Position.Scale(scale).Image()
		strokeRect(dst, box, style.Person, stroke)
		drawLabel(dst, box.Min, strconv.Itoa(i), style.Person)
		if a.Dorsal != nil {
			dbox := a.Dorsal.Position.Scale(scale).Image()
			strokeRect(dst, dbox, style.Dorsal, stroke)
			drawLabel(dst, dbox.Min, strconv.Itoa(a.Dorsal.Number), style.Dorsal)
		}
	}
	return dst, nil
}

// strokeRect draws the outline of r with the given line width.
func strokeRect(dst draw.Image, r image.Rectangle, c color.Color, width int) {
	u := image.NewUniform(c)
	edges := []image.Rectangle{
		image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width),
		image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y),
		image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y),
		image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y),
	}
	for _, e := range edges {
		draw.Draw(dst, e.Intersect(dst.Bounds()), u, image.Point{}, draw.Src)
	}
}

func drawLabel(dst draw.Image, at image.Point, text string, c color.Color) {
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(c), Face: basicfont.Face7x13,
		Dot: fixed.P(at.X+2, at.Y+14)}
	d.DrawString(text)
}
