// Package mapplot renders state accident maps with gonum/plot.
package mapplot

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// boundsPadding widens the plotted range so edge points are not clipped.
const boundsPadding = 0.25

var pointColor = color.RGBA{R: 200, G: 30, B: 30, A: 255}

// Renderer implements fars.Renderer on a gonum plot. Call BaseMap, then
// Points, then WriteTo.
type Renderer struct {
	width, height vg.Length
	format        string
	plot          *plot.Plot
}

// NewRenderer creates a renderer producing images of the given size. format
// is any gonum/plot output format ("png", "svg", "pdf", ...).
func NewRenderer(width, height vg.Length, format string) *Renderer {
	return &Renderer{width: width, height: height, format: format}
}

// BaseMap starts a new plot scoped to bounds, with a latitude/longitude grid.
func (r *Renderer) BaseMap(title string, bounds domain.Bounds) error {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"

	p.X.Min = bounds.MinLon - boundsPadding
	p.X.Max = bounds.MaxLon + boundsPadding
	p.Y.Min = bounds.MinLat - boundsPadding
	p.Y.Max = bounds.MaxLat + boundsPadding

	p.Add(plotter.NewGrid())
	r.plot = p
	return nil
}

// Points overlays one dot per accident.
func (r *Renderer) Points(points []domain.Point) error {
	if r.plot == nil {
		return errors.New("points drawn before base map")
	}

	xys := make(plotter.XYs, 0, len(points))
	for _, pt := range points {
		if !pt.Valid() {
			continue
		}
		xys = append(xys, plotter.XY{X: pt.Lon, Y: pt.Lat})
	}

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = pointColor
	scatter.GlyphStyle.Radius = vg.Points(2)

	r.plot.Add(scatter)
	r.plot.Legend.Add(fmt.Sprintf("%d accidents", len(xys)), scatter)
	r.plot.Legend.Top = true
	return nil
}

// WriteTo encodes the finished plot.
func (r *Renderer) WriteTo(w io.Writer) (int64, error) {
	if r.plot == nil {
		return 0, errors.New("nothing rendered")
	}
	wt, err := r.plot.WriterTo(r.width, r.height, r.format)
	if err != nil {
		return 0, fmt.Errorf("encode %s: %w", r.format, err)
	}
	return wt.WriteTo(w)
}

// Rendered reports whether BaseMap has been called.
func (r *Renderer) Rendered() bool {
	return r.plot != nil
}
