package farsmock_test

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/couchcryptid/fars-accidents/internal/farsmock"
	"github.com/couchcryptid/fars-accidents/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReader(dir string) *fars.Reader {
	return fars.NewReader(dir, slog.New(slog.NewTextHandler(io.Discard, nil)), observability.NewMetricsForTesting())
}

func TestGenerate_Deterministic(t *testing.T) {
	a := farsmock.Generate(2014, 50, 3)
	b := farsmock.Generate(2014, 50, 3)
	assert.Equal(t, a, b)

	c := farsmock.Generate(2015, 50, 3)
	assert.NotEqual(t, a, c, "different years should yield different data")
}

func TestGenerate_FieldRanges(t *testing.T) {
	recs := farsmock.Generate(2013, 400, 1)
	require.Len(t, recs, 400)

	var unknown int
	for _, r := range recs {
		assert.True(t, domain.KnownState(r.State), "state %d", r.State)
		assert.GreaterOrEqual(t, r.Month, 1)
		assert.LessOrEqual(t, r.Month, 12)
		if r.Latitude == farsmock.UnknownLatitude {
			assert.Equal(t, farsmock.UnknownLongitude, r.Longitude)
			unknown++
			continue
		}
		assert.True(t, domain.SanitizeCoordinates(r.Latitude, r.Longitude).Valid())
	}
	assert.Positive(t, unknown, "some records should carry sentinel coordinates")
	assert.Less(t, unknown, 60)
}

func TestWriteFile_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	recs := farsmock.Generate(2013, 25, 9)

	path, err := farsmock.WriteFile(dir, 2013, recs)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "accident_2013.csv.bz2"), path)

	table, err := newReader(dir).Read(domain.MakeFilename(2013))
	require.NoError(t, err)
	assert.Equal(t, farsmock.Header, table.Columns())
	require.Equal(t, len(recs), table.Len())

	for i, r := range recs {
		state, err := table.Int(i, domain.ColState)
		require.NoError(t, err)
		assert.Equal(t, r.State, state)

		month, err := table.Int(i, domain.ColMonth)
		require.NoError(t, err)
		assert.Equal(t, r.Month, month)

		lat, err := table.Float(i, domain.ColLatitude)
		require.NoError(t, err)
		assert.InDelta(t, r.Latitude, lat, 1e-6)
	}
}

func TestWriteRawFile(t *testing.T) {
	dir := t.TempDir()
	_, err := farsmock.WriteRawFile(dir, 2020, "STATE,MONTH\n1,4\n")
	require.NoError(t, err)

	table, err := newReader(dir).Read(domain.MakeFilename(2020))
	require.NoError(t, err)
	assert.Equal(t, []string{"STATE", "MONTH"}, table.Columns())
	assert.Equal(t, 1, table.Len())
}
