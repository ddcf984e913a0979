package events

import (
	"context"

	"github.com/galexy/pennyledger/internal/core/domain"
	portssvc "github.com/galexy/pennyledger/internal/core/ports/services"
	"github.com/galexy/pennyledger/internal/middleware"
)

// SlogPublisher delivers domain events to the structured log. It stands in
// for a real broker; consumers tail the log stream.
type SlogPublisher struct{}

// NewSlogPublisher creates a log-backed event publisher.
func NewSlogPublisher() *SlogPublisher {
	return &SlogPublisher{}
}

var _ portssvc.EventPublisher = (*SlogPublisher)(nil)

// Publish writes each event as one structured log record.
func (p *SlogPublisher) Publish(ctx context.Context, events []domain.Event) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	for _, e := range events {
		logger.InfoContext(ctx, "domain event",
			"event_id", e.EventID,
			"kind", string(e.Kind),
			"transaction_id", e.TransactionID,
			"account_id", e.AccountID,
			"occurred_at", e.OccurredAt,
			"detail", e.Detail,
		)
	}
	return nil
}
