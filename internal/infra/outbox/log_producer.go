package outbox

import (
	"context"
	"log/slog"
)

// LogProducer stands in for the broker when no Kafka brokers are configured.
type LogProducer struct {
	Logger *slog.Logger
}

func (p LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte, _ map[string]string) error {
	log := p.Logger
	if log == nil {
		log = slog.Default()
	}
	log.InfoContext(ctx, "event published", slog.String("topic", topic), slog.String("key", key), slog.Int("bytes", len(payload)))
	return nil
}
