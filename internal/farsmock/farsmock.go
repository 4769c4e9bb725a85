// Package farsmock writes synthetic FARS accident archives. The files have
// the same layout as the published ones (bzip2-compressed CSV, one row per
// crash) so the loader and the commands can be exercised without the real
// dataset.
package farsmock

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strconv"

	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/dsnet/compress/bzip2"
)

// Header is the column layout of generated archives: the four analysed
// columns plus a handful of pass-through ones from the real files.
var Header = []string{
	"STATE", "ST_CASE", "COUNTY", "DAY", "MONTH", "YEAR",
	"HOUR", "MINUTE", "LATITUDE", "LONGITUD", "FATALS",
}

// Unknown-coordinate sentinels as they appear in the archives.
const (
	UnknownLatitude  = 99.9999
	UnknownLongitude = 999.9999
)

// Record is one synthetic crash.
type Record struct {
	State     int
	Case      int
	County    int
	Day       int
	Month     int
	Hour      int
	Minute    int
	Latitude  float64
	Longitude float64
	Fatals    int
}

// centroid is a rough state centre used to scatter generated coordinates.
type centroid struct {
	state    int
	lat, lon float64
}

var centroids = []centroid{
	{1, 32.8, -86.8},
	{6, 36.8, -119.4},
	{12, 28.6, -82.4},
	{36, 42.9, -75.5},
	{48, 31.1, -97.6},
	{56, 43.0, -107.5},
}

// Generate returns n deterministic records for a year. Roughly one in twenty
// has unknown coordinates.
func Generate(year, n int, seed uint64) []Record {
	rng := rand.New(rand.NewPCG(seed, uint64(year)))
	recs := make([]Record, n)
	perState := make(map[int]int)
	for i := range recs {
		c := centroids[rng.IntN(len(centroids))]
		perState[c.state]++
		rec := Record{
			State:     c.state,
			Case:      c.state*10000 + perState[c.state],
			County:    1 + rng.IntN(200),
			Day:       1 + rng.IntN(28),
			Month:     1 + rng.IntN(12),
			Hour:      rng.IntN(24),
			Minute:    rng.IntN(60),
			Latitude:  c.lat + rng.Float64()*4 - 2,
			Longitude: c.lon + rng.Float64()*4 - 2,
			Fatals:    1 + rng.IntN(3),
		}
		if rng.IntN(20) == 0 {
			rec.Latitude, rec.Longitude = UnknownLatitude, UnknownLongitude
		}
		recs[i] = rec
	}
	return recs
}

// WriteCSV writes records for a year as bzip2-compressed CSV.
func WriteCSV(w io.Writer, year int, recs []Record) error {
	bz, err := bzip2.NewWriter(w, &bzip2.WriterConfig{Level: bzip2.DefaultCompression})
	if err != nil {
		return fmt.Errorf("bzip2 writer: %w", err)
	}

	cw := csv.NewWriter(bz)
	if err := cw.Write(Header); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r.fields(year)); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bz.Close()
}

// WriteFile writes an archive for year into dir under its canonical name and
// returns the full path.
func WriteFile(dir string, year int, recs []Record) (string, error) {
	path := filepath.Join(dir, domain.MakeFilename(year))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := WriteCSV(f, year, recs); err != nil {
		f.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, f.Close()
}

func (r Record) fields(year int) []string {
	return []string{
		strconv.Itoa(r.State),
		strconv.Itoa(r.Case),
		strconv.Itoa(r.County),
		strconv.Itoa(r.Day),
		strconv.Itoa(r.Month),
		strconv.Itoa(year),
		strconv.Itoa(r.Hour),
		strconv.Itoa(r.Minute),
		strconv.FormatFloat(r.Latitude, 'f', 8, 64),
		strconv.FormatFloat(r.Longitude, 'f', 8, 64),
		strconv.Itoa(r.Fatals),
	}
}

// WriteRawFile compresses arbitrary CSV text into the archive for year. It
// is meant for malformed-input fixtures.
func WriteRawFile(dir string, year int, content string) (string, error) {
	path := filepath.Join(dir, domain.MakeFilename(year))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	bz, err := bzip2.NewWriter(f, nil)
	if err != nil {
		return "", err
	}
	if _, err := io.WriteString(bz, content); err != nil {
		return "", err
	}
	if err := bz.Close(); err != nil {
		return "", err
	}
	return path, f.Close()
}
