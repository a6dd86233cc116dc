package services

import (
	"context"

	"ledger/internal/amqp"
	"ledger/internal/core"
	"ledger/internal/log"
)

// Publisher sends change messages to a broker. *amqp.Client implements it.
type Publisher interface {
	PublishChange(ctx context.Context, msg *amqp.ChangeMessage) error
}

// ChangePublisher forwards committed changes to the broker. The mutation
// has already committed, so a failed publish is logged and dropped.
type ChangePublisher struct {
	publisher Publisher
	logger    *log.Logger
}

// NewChangePublisher accepts a nil publisher, in which case events are only
// logged at debug level.
func NewChangePublisher(publisher Publisher, logger *log.Logger) *ChangePublisher {
	return &ChangePublisher{
		publisher: publisher,
		logger:    log.OrDefault(logger).WithComponent(log.ComponentAMQP),
	}
}

func (p *ChangePublisher) NotifyChange(ctx context.Context, ev core.ChangeEvent) {
	if p == nil {
		return
	}
	if p.publisher == nil {
		p.logger.DebugContext(ctx, "AMQP client not available, skipping change message",
			log.FieldEntity, ev.Entity, log.FieldOperation, ev.Operation)
		return
	}

	msg := amqp.NewChangeMessage(ev.Entity, ev.Operation, ev.IDs)
	msg.Timestamp = ev.Timestamp
	if err := p.publisher.PublishChange(ctx, msg); err != nil {
		p.logger.LogError(ctx, "Failed to publish change message", err, ev.Operation,
			log.NewFields().With(log.FieldEntity, ev.Entity).With(log.FieldCount, len(ev.IDs)))
	}
}
