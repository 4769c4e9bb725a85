// Command summarize prints monthly fatal-accident counts for one or more
// years of FARS archives, optionally exporting them to Excel and publishing
// them to Kafka.
//
// Usage:
//
//	go run ./cmd/summarize -years 2013,2014,2015 [-xlsx summary.xlsx] [-publish]
//
// Archives are resolved against FARS_DATA_DIR (default: working directory).
// Years whose archive is missing are reported as warnings and skipped.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	kafkaadapter "github.com/couchcryptid/fars-accidents/internal/adapter/kafka"
	"github.com/couchcryptid/fars-accidents/internal/adapter/xlsx"
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
	yearsFlag := flag.String("years", "", "comma-separated years, e.g. 2013,2014")
	xlsxOut := flag.String("xlsx", "", "optional path for an Excel export")
	publish := flag.Bool("publish", false, "publish counts to KAFKA_SUMMARY_TOPIC (also enabled by KAFKA_ENABLED=true)")
	flag.Parse()

	years := domain.ParseTokens(*yearsFlag)
	if len(years) == 0 {
		flag.Usage()
		return errors.New("missing required flag: -years")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetricsForTesting()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := fars.NewService(fars.NewReader(cfg.DataDir, logger, metrics), logger, metrics)
	summary, err := svc.SummarizeYears(ctx, years)
	if err != nil {
		return err
	}
	if summary.Empty() {
		logger.Warn("no year could be loaded", "years", *yearsFlag, "data_dir", cfg.DataDir)
	}

	if err := summary.WriteText(os.Stdout); err != nil {
		return err
	}

	if *xlsxOut != "" {
		if err := writeXLSX(*xlsxOut, summary); err != nil {
			return err
		}
		logger.Info("wrote excel export", "path", *xlsxOut)
	}

	if *publish || cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger, metrics)
		defer w.Close()
		if err := w.PublishSummary(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

func writeXLSX(path string, s domain.Summary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := xlsx.WriteSummary(f, s); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
