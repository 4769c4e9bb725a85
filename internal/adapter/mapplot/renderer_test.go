package mapplot

import (
	"bytes"
	"image/png"
	"math"
	"testing"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/plot/vg"
)

func TestRenderer_PNG(t *testing.T) {
	r := NewRenderer(4*vg.Inch, 3*vg.Inch, "png")
	bounds := domain.Bounds{MinLat: 30, MaxLat: 35, MinLon: -88, MaxLon: -85}

	require.NoError(t, r.BaseMap("Fatal accidents in Alabama, 2013", bounds))
	require.NoError(t, r.Points([]domain.Point{
		{Lat: 32.5, Lon: -86.5},
		{Lat: 34.1, Lon: -87.2},
		{Lat: math.NaN(), Lon: -86.0},
	}))

	assert.InDelta(t, -88-boundsPadding, r.plot.X.Min, 1e-9)
	assert.InDelta(t, 35+boundsPadding, r.plot.Y.Max, 1e-9)

	var buf bytes.Buffer
	n, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(buf.Len()), n)

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Positive(t, img.Bounds().Dx())
}

func TestRenderer_SVG(t *testing.T) {
	r := NewRenderer(4*vg.Inch, 3*vg.Inch, "svg")
	require.NoError(t, r.BaseMap("map", domain.Bounds{MinLat: 1, MaxLat: 2, MinLon: 1, MaxLon: 2}))
	require.NoError(t, r.Points([]domain.Point{{Lat: 1.5, Lon: 1.5}}))

	var buf bytes.Buffer
	_, err := r.WriteTo(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
}

func TestRenderer_PointsBeforeBaseMap(t *testing.T) {
	r := NewRenderer(4*vg.Inch, 3*vg.Inch, "png")
	require.Error(t, r.Points([]domain.Point{{Lat: 1, Lon: 1}}))
	assert.False(t, r.Rendered())

	_, err := r.WriteTo(&bytes.Buffer{})
	require.Error(t, err)
}

func TestRenderer_UnknownFormat(t *testing.T) {
	r := NewRenderer(4*vg.Inch, 3*vg.Inch, "bmp")
	require.NoError(t, r.BaseMap("map", domain.Bounds{MinLat: 1, MaxLat: 2, MinLon: 1, MaxLon: 2}))

	_, err := r.WriteTo(&bytes.Buffer{})
	require.Error(t, err)
}
