package domain

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	filenamePrefix = "accident_"
	filenameSuffix = ".csv.bz2"
)

// MakeFilename returns the archive filename for a year, e.g.
// MakeFilename(2013) == "accident_2013.csv.bz2".
func MakeFilename(year int) string {
	return fmt.Sprintf("%s%d%s", filenamePrefix, year, filenameSuffix)
}

// YearFromFilename extracts the year from an archive filename produced by
// MakeFilename. Any leading directory is ignored.
func YearFromFilename(name string) (int, error) {
	base := filepath.Base(name)
	if !strings.HasPrefix(base, filenamePrefix) || !strings.HasSuffix(base, filenameSuffix) {
		return 0, fmt.Errorf("not an archive filename: %q", name)
	}
	digits := strings.TrimSuffix(strings.TrimPrefix(base, filenamePrefix), filenameSuffix)
	year, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("parse year from %q: %w", name, err)
	}
	return year, nil
}
