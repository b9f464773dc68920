package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/rainfall-intel/internal/config"
	"github.com/couchcryptid/rainfall-intel/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces prediction results to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes prediction results in a single
// WriteMessages call. Results are keyed by district so one district's
// predictions stay ordered on one partition.
func (w *Writer) LoadBatch(ctx context.Context, results []domain.PredictionResult) error {
	if len(results) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(results))
	for i := range results {
		msg, err := serializeToMessage(results[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d results: %w", len(msgs), err)
	}
	w.logger.Debug("results written", "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a PredictionResult into a Kafka message.
func serializeToMessage(result domain.PredictionResult) (kafkago.Message, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize prediction result: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(result.State + "/" + result.District),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "result_id", Value: []byte(result.ID)},
			{Key: "category", Value: []byte(result.Category)},
			{Key: "predicted_at", Value: []byte(result.PredictedAt.Format(time.RFC3339))},
		},
	}, nil
}
