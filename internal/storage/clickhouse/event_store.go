package clickhouse

import (
	"context"
	"fmt"
	"time"
)

// EventRow is one distribution event flattened for analytics queries.
type EventRow struct {
	Vault     string
	EventType string
	Day       int64
	Page      uint64
	Amount    uint64
	Account   string // investor or creator destination, empty when not applicable
	Payload   string // full event JSON
	Timestamp int64  // Unix seconds
}

// EventStore writes distribution events to the distribution_events table.
type EventStore struct {
	conn *Conn
}

// NewEventStore creates a new EventStore.
func NewEventStore(conn *Conn) *EventStore {
	return &EventStore{conn: conn}
}

// EnsureSchema creates the distribution_events table if it does not exist.
// MergeTree ordered by (vault, day, timestamp); duplicates are tolerated
// because the table is an observability log, not a ledger.
func (s *EventStore) EnsureSchema(ctx context.Context) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS distribution_events (
			vault       String,
			event_type  LowCardinality(String),
			day         Int64,
			page        UInt64,
			amount      UInt64,
			account     String,
			payload     String,
			timestamp   DateTime
		) ENGINE = MergeTree()
		ORDER BY (vault, day, timestamp)
	`
	if err := s.conn.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("create distribution_events: %w", err)
	}
	return nil
}

// InsertBulk appends a batch of event rows.
func (s *EventStore) InsertBulk(ctx context.Context, rows []*EventRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO distribution_events (
			vault, event_type, day, page, amount, account, payload, timestamp
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, r := range rows {
		err = batch.Append(
			r.Vault, r.EventType, r.Day, r.Page, r.Amount,
			r.Account, r.Payload, time.Unix(r.Timestamp, 0).UTC(),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByVaultDay retrieves a vault's events for a day, ordered by timestamp.
func (s *EventStore) GetByVaultDay(ctx context.Context, vault string, day int64) ([]*EventRow, error) {
	query := `
		SELECT vault, event_type, day, page, amount, account, payload, timestamp
		FROM distribution_events
		WHERE vault = ? AND day = ?
		ORDER BY timestamp ASC
	`

	rows, err := s.conn.Query(ctx, query, vault, day)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var result []*EventRow
	for rows.Next() {
		var r EventRow
		var ts time.Time
		if err := rows.Scan(&r.Vault, &r.EventType, &r.Day, &r.Page, &r.Amount, &r.Account, &r.Payload, &ts); err != nil {
			return nil, fmt.Errorf("scan event row: %w", err)
		}
		r.Timestamp = ts.Unix()
		result = append(result, &r)
	}
	return result, rows.Err()
}
