// Package kafka hands MODE invocations to remote workers over Kafka.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/storm-mode-driver/internal/config"
	"github.com/couchcryptid/storm-mode-driver/internal/domain"
)

// Publisher produces one message per invocation to the configured topic.
// It implements pipeline.CommandRunner.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a Kafka producer for the invocation topic.
func NewPublisher(s *config.Settings, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(s.KafkaBrokers...),
		Topic:        s.KafkaTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Run publishes inv. Invocations that cannot form a command line are
// rejected before anything is written.
func (p *Publisher) Run(ctx context.Context, inv domain.Invocation) error {
	if _, err := inv.Args(); err != nil {
		return err
	}
	msg, err := serializeToMessage(inv)
	if err != nil {
		return err
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish invocation %s: %w", inv.ID, err)
	}
	p.logger.Debug("invocation published", "id", inv.ID, "topic", p.writer.Topic)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeToMessage marshals an Invocation into a Kafka message keyed by
// its ID.
func serializeToMessage(inv domain.Invocation) (kafkago.Message, error) {
	data, err := json.Marshal(inv)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize invocation: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(inv.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "fcst_var", Value: []byte(inv.FcstVar)},
			{Key: "fcst_thresh", Value: []byte(inv.FcstThresh)},
			{Key: "obs_thresh", Value: []byte(inv.ObsThresh)},
			{Key: "created_at", Value: []byte(inv.CreatedAt.Format(time.RFC3339))},
		},
	}, nil
}
