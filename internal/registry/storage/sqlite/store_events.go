package sqlite

import (
	"context"
	"fmt"

	"github.com/smartpublish/registry/internal/registry/event"
)

const defaultEventPageSize = 100

// ListEvents returns up to limit events after afterSeq in sequence order.
func (s *Store) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = defaultEventPageSize
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT seq, occurred_at, event_type, entity_id, payload_json
		 FROM events WHERE seq > ? ORDER BY seq LIMIT ?`,
		afterSeq, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		var (
			evt        event.Event
			occurredAt int64
			eventType  string
		)
		if err := rows.Scan(&evt.Seq, &occurredAt, &eventType, &evt.EntityID, &evt.PayloadJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		evt.Timestamp = fromMillis(occurredAt)
		evt.Type = event.Type(eventType)
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// LatestSeq returns the highest assigned event sequence, zero when empty.
func (s *Store) LatestSeq(ctx context.Context) (uint64, error) {
	var seq uint64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM events`).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("query latest event seq: %w", err)
	}
	return seq, nil
}
