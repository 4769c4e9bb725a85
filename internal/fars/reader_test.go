package fars

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/farsmock"
	"github.com/couchcryptid/fars-accidents/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestReader(dir string) (*Reader, *observability.Metrics) {
	metrics := observability.NewMetricsForTesting()
	return NewReader(dir, slog.New(slog.DiscardHandler), metrics), metrics
}

func TestRead_CheckedInArchive(t *testing.T) {
	r, metrics := newTestReader("testdata")

	table, err := r.Read("accident_2013.csv.bz2")
	require.NoError(t, err)

	assert.Equal(t, []string{"STATE", "ST_CASE", "COUNTY", "MONTH", "YEAR", "LATITUDE", "LONGITUD", "FATALS"}, table.Columns())
	require.Equal(t, 7, table.Len())
	assert.Equal(t, "10001", table.Row(0)[1], "row order preserved")
	assert.Equal(t, "480001", table.Row(6)[1])

	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesLoaded.WithLabelValues("success")), 0)
	assert.InDelta(t, 7, testutil.ToFloat64(metrics.RowsRead), 0)
}

func TestRead_MissingFile(t *testing.T) {
	dir := t.TempDir()
	r, metrics := newTestReader(dir)

	_, err := r.Read("accident_9999.csv.bz2")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
	assert.Contains(t, err.Error(), "accident_9999.csv.bz2")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesLoaded.WithLabelValues("not_found")), 0)
	assert.Zero(t, sampleCount(t, metrics))
}

func TestRead_AbsolutePathIgnoresDir(t *testing.T) {
	dir := t.TempDir()
	path, err := farsmock.WriteFile(dir, 2015, farsmock.Generate(2015, 25, 7))
	require.NoError(t, err)

	r, _ := newTestReader(filepath.Join(dir, "elsewhere"))
	table, err := r.Read(path)
	require.NoError(t, err)
	assert.Equal(t, 25, table.Len())
	assert.Equal(t, farsmock.Header, table.Columns())
}

func TestRead_PlainCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2013.csv"),
		[]byte("STATE,MONTH\n1,2\n6,3\n"), 0o600))

	r, _ := newTestReader(dir)
	table, err := r.Read("accident_2013.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestRead_MalformedCSV(t *testing.T) {
	r, metrics := newTestReader("testdata")

	_, err := r.Read("broken.csv")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrFileNotFound)
	assert.Contains(t, err.Error(), "broken.csv")
	assert.InDelta(t, 1, testutil.ToFloat64(metrics.FilesLoaded.WithLabelValues("error")), 0)
}

func TestRead_NotBzip2(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "accident_2013.csv.bz2"),
		[]byte("STATE,MONTH\n1,2\n"), 0o600))

	r, _ := newTestReader(dir)
	_, err := r.Read("accident_2013.csv.bz2")
	require.Error(t, err)
}

func TestRead_ObservesLoadDuration(t *testing.T) {
	dir := t.TempDir()
	_, err := farsmock.WriteFile(dir, 2013, farsmock.Generate(2013, 5, 1))
	require.NoError(t, err)

	r, metrics := newTestReader(dir)
	r.clock = clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	_, err = r.Read(domain.MakeFilename(2013))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), sampleCount(t, metrics))
}

func sampleCount(t *testing.T, metrics *observability.Metrics) uint64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.LoadDuration.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestParseCSV_EmptyInput(t *testing.T) {
	_, err := parseCSV(strings.NewReader(""))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header")
}

func TestParseCSV_StripsBOM(t *testing.T) {
	table, err := parseCSV(strings.NewReader("\ufeffSTATE,MONTH\n1,2\n"))
	require.NoError(t, err)
	assert.True(t, table.HasColumn("STATE"))
}

func TestParseCSV_RaggedRow(t *testing.T) {
	_, err := parseCSV(strings.NewReader("STATE,MONTH\n1,2\n3\n"))
	require.Error(t, err)
}
