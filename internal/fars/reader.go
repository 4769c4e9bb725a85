package fars

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/observability"
	"github.com/dsnet/compress/bzip2"
	"github.com/jonboulle/clockwork"
)

const utf8BOM = "\ufeff"

// Reader loads archive files into tables.
type Reader struct {
	dir     string
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewReader creates a Reader that resolves relative filenames against dir.
// An empty dir means the process working directory.
func NewReader(dir string, logger *slog.Logger, metrics *observability.Metrics) *Reader {
	return &Reader{
		dir:     dir,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
}

// Dir returns the directory relative filenames resolve against.
func (r *Reader) Dir() string {
	return r.dir
}

// Read loads one archive. It fails with domain.ErrFileNotFound before any
// parse attempt when the file is absent. Files ending in .bz2 are
// decompressed; anything else is read as plain CSV.
func (r *Reader) Read(filename string) (*domain.Table, error) {
	path := r.resolve(filename)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.metrics.FilesLoaded.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("file '%s' does not exist: %w", filename, domain.ErrFileNotFound)
		}
		r.metrics.FilesLoaded.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("stat %s: %w", filename, err)
	}

	start := r.clock.Now()
	table, err := r.parse(path)
	if err != nil {
		r.metrics.FilesLoaded.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}

	r.metrics.FilesLoaded.WithLabelValues("success").Inc()
	r.metrics.RowsRead.Add(float64(table.Len()))
	r.metrics.LoadDuration.Observe(r.clock.Since(start).Seconds())
	r.logger.Debug("archive loaded", "file", filename, "rows", table.Len(), "columns", len(table.Columns()))
	return table, nil
}

func (r *Reader) resolve(filename string) string {
	if r.dir == "" || filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(r.dir, filename)
}

func (r *Reader) parse(path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, fmt.Errorf("bzip2: %w", err)
		}
		defer bz.Close()
		src = bz
	}

	return parseCSV(src)
}

// parseCSV reads a header row followed by records. Rows keep their order.
func parseCSV(src io.Reader) (*domain.Table, error) {
	cr := csv.NewReader(src)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("empty file: no header row")
	}
	if err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	table := domain.NewTable(header)
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := table.Append(rec); err != nil {
			return nil, err
		}
	}
	return table, nil
}
