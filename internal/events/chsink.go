package events

import (
	"context"
	"log"

	"star-fee-distributor/internal/domain"
	"star-fee-distributor/internal/storage/clickhouse"
)

// ClickHouseSink persists events through a clickhouse.EventStore. Write
// failures are logged and swallowed: analytics must never fail a crank.
type ClickHouseSink struct {
	store  *clickhouse.EventStore
	logger *log.Logger
}

// NewClickHouseSink creates a sink over an event store.
func NewClickHouseSink(store *clickhouse.EventStore, logger *log.Logger) *ClickHouseSink {
	return &ClickHouseSink{store: store, logger: logger}
}

// Compile-time interface check.
var _ Sink = (*ClickHouseSink)(nil)

// Emit flattens and inserts the event.
func (s *ClickHouseSink) Emit(ctx context.Context, e domain.Event) {
	env, err := Wrap(e)
	if err != nil {
		s.logger.Printf("drop event %s: %v", e.EventType(), err)
		return
	}

	row := &clickhouse.EventRow{
		Vault:     env.Vault,
		EventType: env.Type,
		Payload:   string(env.Data),
		Timestamp: env.Timestamp,
	}

	switch ev := e.(type) {
	case domain.QuoteFeesClaimed:
		row.Day = ev.Day
		row.Amount = ev.Amount
	case domain.InvestorPayout:
		row.Day = ev.Day
		row.Page = ev.Page
		row.Amount = ev.Amount
		row.Account = ev.Investor
	case domain.InvestorPayoutPage:
		row.Day = ev.Day
		row.Page = ev.Page
		row.Amount = ev.Distributed
	case domain.DailyCapApplied:
		row.Day = ev.Day
		row.Amount = ev.CappedPayout
	case domain.CreatorPayoutDayClosed:
		row.Day = ev.Day
		row.Amount = ev.Remainder
		row.Account = ev.Creator
	case domain.DistributionAborted:
		row.Day = ev.Day
		row.Amount = ev.BaseFeeAmount
	}

	if err := s.store.InsertBulk(ctx, []*clickhouse.EventRow{row}); err != nil {
		s.logger.Printf("write event %s to clickhouse: %v", env.Type, err)
	}
}
