package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/fars-accidents/internal/config"
	"github.com/couchcryptid/fars-accidents/internal/domain"
	"github.com/couchcryptid/fars-accidents/internal/observability"
	kafkago "github.com/segmentio/kafka-go"
)

// MonthlyCount is the message payload: one cell of a monthly summary.
type MonthlyCount struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// messageWriter is the subset of *kafkago.Writer the publisher needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes monthly summaries to a Kafka topic, one message per
// month-year pair that has a count.
type Writer struct {
	writer  messageWriter
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWriter creates a Kafka producer for the configured summary topic.
func NewWriter(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSummaryTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger, metrics: metrics}
}

// PublishSummary writes every recorded count of s in a single WriteMessages
// call. Months with no accidents are not published.
func (w *Writer) PublishSummary(ctx context.Context, s domain.Summary) error {
	msgs, err := summaryMessages(s)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		w.logger.Info("summary has no counts, nothing published")
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish summary: %w", err)
	}
	w.metrics.SummariesPublished.Add(float64(len(msgs)))
	w.logger.Info("summary published", "messages", len(msgs), "years", s.Years)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

func summaryMessages(s domain.Summary) ([]kafkago.Message, error) {
	var msgs []kafkago.Message
	for _, row := range s.Rows {
		for j, c := range row.Counts {
			if c == nil {
				continue
			}
			msg, err := serializeToMessage(MonthlyCount{Year: s.Years[j], Month: row.Month, Count: *c}, s.GeneratedAt)
			if err != nil {
				return nil, err
			}
			msgs = append(msgs, msg)
		}
	}
	return msgs, nil
}

// serializeToMessage marshals a MonthlyCount into a Kafka message keyed by
// "<year>-<MM>" so reruns for the same month land on the same partition.
func serializeToMessage(mc MonthlyCount, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(mc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize monthly count: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(fmt.Sprintf("%d-%02d", mc.Year, mc.Month)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "year", Value: []byte(strconv.Itoa(mc.Year))},
			{Key: "generated_at", Value: []byte(generatedAt.Format(time.RFC3339))},
		},
	}, nil
}
