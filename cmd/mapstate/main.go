// Command mapstate plots the fatal accidents of one state in one year.
//
// Usage:
//
//	go run ./cmd/mapstate -state 6 -year 2013 -out california_2013.png
//
// The output format follows the file extension (png, svg, pdf, jpg, ...).
// State codes are FIPS codes as used in the FARS STATE column.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/couchcryptid/fars-accidents/internal/adapter/mapplot"
	"github.com/couchcryptid/fars-accidents/internal/config"
	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/fars"
	"github.com/couchcryptid/fars-accidents/internal/observability"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	state := flag.String("state", "", "FIPS state code, e.g. 6")
	year := flag.String("year", "", "a single year, e.g. 2013")
	out := flag.String("out", "", "output image path")
	flag.Parse()

	if *state == "" || *year == "" || *out == "" {
		flag.Usage()
		return errors.New("missing required flags: -state, -year, -out")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	format := strings.TrimPrefix(filepath.Ext(*out), ".")
	if format == "" {
		format = "png"
	}
	renderer := mapplot.NewRenderer(cfg.MapWidth, cfg.MapHeight, format)

	svc := fars.NewService(fars.NewReader(cfg.DataDir, logger, metrics), logger, metrics)
	if err := svc.MapState(context.Background(), domain.Text(*state), domain.Text(*year), renderer); err != nil {
		return err
	}
	if !renderer.Rendered() {
		return nil
	}

	f, err := os.Create(*out)
	if err != nil {
		return err
	}
	if _, err := renderer.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", *out, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	logger.Info("wrote map", "path", *out)
	return nil
}
