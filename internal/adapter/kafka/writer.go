package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/mannings-editor/internal/config"
	"github.com/couchcryptid/mannings-editor/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Publisher produces run reports to a Kafka topic.
// It implements pipeline.ReportSink.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaReportTopic,
		Balancer:               &kafkago.LeastBytes{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Publisher{writer: w, logger: logger}
}

// Name identifies the sink in logs and metrics.
func (p *Publisher) Name() string {
	return "kafka"
}

// Publish serializes report and writes it to the report topic.
func (p *Publisher) Publish(ctx context.Context, report domain.Report) error {
	msg, err := serializeToMessage(report)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish report: %w", err)
	}
	p.logger.Debug("report published", "topic", p.writer.Topic, "output", report.OutputFile)
	return nil
}

// Close flushes pending messages and closes the underlying writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals a Report into a Kafka message keyed by the
// output file so reports for the same file land on the same partition.
func serializeToMessage(report domain.Report) (kafkago.Message, error) {
	data, err := json.Marshal(report)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize report: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(report.OutputFile),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "criterion", Value: []byte(report.Criterion)},
			{Key: "modifier", Value: []byte(report.Modifier)},
			{Key: "completed_at", Value: []byte(report.CompletedAt.Format(time.RFC3339))},
		},
	}, nil
}
