package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Arkiv-Network/inf-demo/internal/config"
	"github.com/Arkiv-Network/inf-demo/internal/observability/metrics"
)

// QueueManager publishes indexer events. Delivery is best effort: failures
// are logged and counted, never returned to the caller.
type QueueManager struct {
	publisher Publisher
}

// NewQueueManager returns a manager that drops every event when cfg is nil
func NewQueueManager(cfg *config.QueueConfig) (*QueueManager, error) {
	if cfg == nil {
		return &QueueManager{publisher: noopPublisher{}}, nil
	}

	switch cfg.Type {
	case config.QueueTypeRabbitMQ:
		p, err := newRabbitMQPublisher(cfg.URL, cfg.Topic)
		if err != nil {
			return nil, err
		}
		return &QueueManager{publisher: p}, nil
	case config.QueueTypeKafka:
		return &QueueManager{publisher: newKafkaPublisher(cfg.Brokers, cfg.Topic)}, nil
	}

	return nil, fmt.Errorf("unsupported queue type %q", cfg.Type)
}

// NewQueueManagerWithPublisher is used to plug a custom transport
func NewQueueManagerWithPublisher(p Publisher) *QueueManager {
	return &QueueManager{publisher: p}
}

func (qm *QueueManager) PushStatsEvent(ctx context.Context, ev *StatsEvent) {
	key := fmt.Sprintf("%s:%s:%d", ev.EventType, ev.StatsType, ev.StatsTimestamp)
	qm.push(ctx, key, ev,
		attribute.String("stats.type", ev.StatsType),
		attribute.Int64("stats.timestamp", ev.StatsTimestamp),
	)
}

func (qm *QueueManager) PushBlocksStoredEvent(ctx context.Context, ev *BlocksStoredEvent) {
	key := fmt.Sprintf("%s:%d-%d", ev.EventType, ev.FirstBlock, ev.LastBlock)
	qm.push(ctx, key, ev,
		attribute.Int("blocks.count", ev.Count),
		attribute.Int64("block.first", int64(ev.FirstBlock)),
		attribute.Int64("block.last", int64(ev.LastBlock)),
	)
}

func (qm *QueueManager) push(ctx context.Context, key string, ev any, attrs ...attribute.KeyValue) {
	ctx, span := otel.Tracer("github.com/Arkiv-Network/inf-demo/queue").Start(ctx, "queue.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(attrs...),
	)
	defer span.End()

	body, err := json.Marshal(ev)
	if err == nil {
		err = qm.publisher.Publish(ctx, key, body)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordQueueSendError()
		log.Ctx(ctx).Error().Err(err).Str("key", key).Msg("failed to publish event")
	}
}

// Shutdown gracefully stops the interaction with the queue, ensuring all resources are properly released.
func (qm *QueueManager) Shutdown() {
	log.Info().Msg("Shutting down queue manager")
	if err := qm.publisher.Close(); err != nil {
		log.Error().Err(err).Msg("failed to close queue publisher")
	}
}
