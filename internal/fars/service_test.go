package fars_test

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/couchcryptid/fars-accidents/internal/farsmock"
	"github.com/couchcryptid/fars-accidents/internal/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	dir     string
	svc     *fars.Service
	metrics *observability.Metrics
	logs    *bytes.Buffer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	metrics := observability.NewMetricsForTesting()
	reader := fars.NewReader(dir, logger, metrics)
	return &testEnv{
		dir:     dir,
		svc:     fars.NewService(reader, logger, metrics),
		metrics: metrics,
		logs:    logs,
	}
}

func (e *testEnv) writeYear(t *testing.T, year int, recs []farsmock.Record) {
	t.Helper()
	_, err := farsmock.WriteFile(e.dir, year, recs)
	require.NoError(t, err)
}

func TestServiceRead(t *testing.T) {
	env := newTestEnv(t)
	env.writeYear(t, 2013, farsmock.Generate(2013, 40, 1))

	table, err := env.svc.Read("accident_2013.csv.bz2")
	require.NoError(t, err)
	assert.Equal(t, 40, table.Len())

	_, err = env.svc.Read("accident_2012.csv.bz2")
	require.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestReadYears_SkipsMissingYear(t *testing.T) {
	env := newTestEnv(t)
	recs := farsmock.Generate(2013, 30, 1)
	env.writeYear(t, 2013, recs)

	results, err := env.svc.ReadYears(context.Background(), []domain.Token{domain.Num(2013), domain.Num(9999)})
	require.NoError(t, err)
	require.Len(t, results, 2)

	first := results[0]
	require.True(t, first.OK())
	assert.Equal(t, 2013, first.Year)
	assert.Equal(t, []string{"MONTH", "year"}, first.Table.Columns())
	require.Equal(t, len(recs), first.Table.Len())
	for i := 0; i < first.Table.Len(); i++ {
		y, err := first.Table.Int(i, domain.ColYear)
		require.NoError(t, err)
		assert.Equal(t, 2013, y)
		m, err := first.Table.Int(i, domain.ColMonth)
		require.NoError(t, err)
		assert.Equal(t, recs[i].Month, m)
	}

	second := results[1]
	assert.False(t, second.OK())
	assert.Nil(t, second.Table)
	assert.ErrorIs(t, second.Err, domain.ErrInvalidYear)
	assert.ErrorIs(t, second.Err, domain.ErrFileNotFound)
	assert.Contains(t, second.Err.Error(), "9999")

	assert.Contains(t, env.logs.String(), `"msg":"invalid year"`)
	assert.Contains(t, env.logs.String(), `"year":"9999"`)
	assert.InDelta(t, 1, testutil.ToFloat64(env.metrics.YearsSkipped), 0)
}

func TestReadYears_MixedTokensKeepInputOrder(t *testing.T) {
	env := newTestEnv(t)
	env.writeYear(t, 2013, farsmock.Generate(2013, 10, 1))
	env.writeYear(t, 2014, farsmock.Generate(2014, 12, 1))

	tokens := []domain.Token{domain.Text("2014"), domain.Text("abc"), domain.Num(2013)}
	results, err := env.svc.ReadYears(context.Background(), tokens)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].OK())
	assert.Equal(t, 2014, results[0].Year)
	assert.Equal(t, 12, results[0].Table.Len())

	assert.False(t, results[1].OK())
	assert.ErrorIs(t, results[1].Err, domain.ErrInvalidToken)
	assert.Equal(t, "abc", results[1].Token.String())

	assert.True(t, results[2].OK())
	assert.Equal(t, 2013, results[2].Year)
}

func TestReadYears_NonIntegerMonthSkipsYear(t *testing.T) {
	env := newTestEnv(t)
	recs := farsmock.Generate(2013, 3, 1)
	env.writeYear(t, 2013, recs)
	_, err := farsmock.WriteRawFile(env.dir, 2014, "STATE,MONTH\n1,January\n")
	require.NoError(t, err)

	results, err := env.svc.ReadYears(context.Background(), []domain.Token{domain.Num(2014), domain.Num(2013)})
	require.NoError(t, err)
	assert.False(t, results[0].OK())
	assert.ErrorIs(t, results[0].Err, domain.ErrInvalidYear)
	assert.NotErrorIs(t, results[0].Err, domain.ErrFileNotFound)
	assert.True(t, results[1].OK())
}

func TestReadYears_CancelledContext(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := env.svc.ReadYears(ctx, []domain.Token{domain.Num(2013)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestSummarizeYears(t *testing.T) {
	env := newTestEnv(t)
	recs2013 := farsmock.Generate(2013, 200, 42)
	recs2014 := farsmock.Generate(2014, 150, 42)
	env.writeYear(t, 2013, recs2013)
	env.writeYear(t, 2014, recs2014)

	s, err := env.svc.SummarizeYears(context.Background(), []domain.Token{domain.Num(2013), domain.Text("2014")})
	require.NoError(t, err)

	assert.Equal(t, []int{2013, 2014}, s.Years)
	require.Len(t, s.Rows, 12)
	for i, row := range s.Rows {
		assert.Equal(t, i+1, row.Month)
		for _, c := range row.Counts {
			if c != nil {
				assert.Positive(t, *c)
			}
		}
	}
	assert.Equal(t, len(recs2013), s.Total(2013))
	assert.Equal(t, len(recs2014), s.Total(2014))

	expectedJan := 0
	for _, r := range recs2013 {
		if r.Month == 1 {
			expectedJan++
		}
	}
	n, ok := s.Count(1, 2013)
	if expectedJan == 0 {
		assert.False(t, ok)
	} else {
		require.True(t, ok)
		assert.Equal(t, expectedJan, n)
	}
}

func TestSummarizeYears_MonthWithoutAccidentsIsAbsent(t *testing.T) {
	env := newTestEnv(t)
	env.writeYear(t, 2013, []farsmock.Record{
		{State: 1, Case: 10001, Month: 1, Latitude: 33.5, Longitude: -86.8},
		{State: 1, Case: 10002, Month: 1, Latitude: 33.5, Longitude: -86.8},
		{State: 6, Case: 60001, Month: 4, Latitude: 34.0, Longitude: -118.2},
	})

	s, err := env.svc.SummarizeYears(context.Background(), []domain.Token{domain.Num(2013)})
	require.NoError(t, err)

	n, ok := s.Count(1, 2013)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	_, ok = s.Count(2, 2013)
	assert.False(t, ok)
	assert.Nil(t, s.Rows[1].Counts[0])
}

func TestSummarizeYears_AllYearsFail(t *testing.T) {
	env := newTestEnv(t)

	s, err := env.svc.SummarizeYears(context.Background(), []domain.Token{domain.Num(1900), domain.Text("x")})
	require.NoError(t, err)
	assert.True(t, s.Empty())
	assert.Equal(t, 2, strings.Count(env.logs.String(), `"msg":"invalid year"`))
}

func TestCheckReadiness(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.svc.CheckReadiness(context.Background()))

	logger := slog.New(slog.DiscardHandler)
	metrics := observability.NewMetricsForTesting()
	missing := fars.NewService(fars.NewReader(env.dir+"/missing", logger, metrics), logger, metrics)
	err := missing.CheckReadiness(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data directory")
}
