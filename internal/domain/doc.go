// Package domain models NHTSA Fatality Analysis Reporting System (FARS)
// accident data.
//
// # Data Source
//
// FARS publishes one accident file per year. The archive layout used here is
// one bzip2-compressed CSV per year named
//
//	accident_<year>.csv.bz2   e.g. accident_2013.csv.bz2
//
// where <year> is the plain decimal year with no padding. See [MakeFilename].
//
// # Columns
//
// Each row is one fatal crash. The analysis reads four columns and passes the
// rest through untouched:
//
//	STATE     FIPS state code, e.g. 6 = California, 48 = Texas
//	MONTH     1-12
//	LATITUDE  decimal degrees; values above 90 (99.9999) mean unknown
//	LONGITUD  decimal degrees; values above 900 (999.9999) mean unknown
//
// Unknown coordinates are mapped to NaN by [SanitizeCoordinates]; the row
// itself is kept.
//
// # Tokens
//
// Years and state codes arrive either as integers or as decimal strings
// (command-line flags, query parameters, JSON). [Token] carries either form
// and [Token.Int] is the one place they are normalized.
package domain
