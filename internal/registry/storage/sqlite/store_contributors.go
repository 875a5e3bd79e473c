package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// CreateContributor inserts a new record or fails when the external id is
// already registered. The contributor.created event lands in the same
// transaction.
func (s *Store) CreateContributor(ctx context.Context, record contributor.Contributor) (event.Event, error) {
	var created event.Event
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := selectContributorByExternalID(ctx, tx, record.ExternalID)
		if err == nil {
			return contributor.ErrDuplicate
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if err := insertContributor(ctx, tx, record); err != nil {
			return err
		}
		evt, err := contributorCreatedEvent(record)
		if err != nil {
			return err
		}
		created, err = appendEvent(ctx, tx, evt)
		return err
	})
	if err != nil {
		return event.Event{}, err
	}
	return created, nil
}

// ResolveContributor returns the record matching the candidate's external id,
// inserting the candidate when no such record exists.
func (s *Store) ResolveContributor(ctx context.Context, candidate contributor.Contributor) (contributor.Contributor, bool, event.Event, error) {
	var (
		record      contributor.Contributor
		wasInserted bool
		createdEvt  event.Event
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		existing, err := selectContributorByExternalID(ctx, tx, candidate.ExternalID)
		if err == nil {
			record = existing
			return nil
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		if err := insertContributor(ctx, tx, candidate); err != nil {
			return err
		}
		evt, err := contributorCreatedEvent(candidate)
		if err != nil {
			return err
		}
		createdEvt, err = appendEvent(ctx, tx, evt)
		if err != nil {
			return err
		}
		record = candidate
		wasInserted = true
		return nil
	})
	if err != nil {
		return contributor.Contributor{}, false, event.Event{}, err
	}
	return record, wasInserted, createdEvt, nil
}

// GetContributor fetches a record by registry id.
func (s *Store) GetContributor(ctx context.Context, contributorID string) (contributor.Contributor, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, external_id, created_by, created_at FROM contributors WHERE id = ?`,
		contributorID,
	)
	return scanContributor(row)
}

// GetContributorByExternalID fetches a record by external id.
func (s *Store) GetContributorByExternalID(ctx context.Context, externalID string) (contributor.Contributor, error) {
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, external_id, created_by, created_at FROM contributors WHERE external_id = ?`,
		externalID,
	)
	return scanContributor(row)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContributor(row rowScanner) (contributor.Contributor, error) {
	var (
		record    contributor.Contributor
		createdAt int64
	)
	err := row.Scan(&record.ID, &record.ExternalID, &record.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return contributor.Contributor{}, storage.ErrNotFound
	}
	if err != nil {
		return contributor.Contributor{}, fmt.Errorf("scan contributor: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

func selectContributorByExternalID(ctx context.Context, tx *sql.Tx, externalID string) (contributor.Contributor, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT id, external_id, created_by, created_at FROM contributors WHERE external_id = ?`,
		externalID,
	)
	return scanContributor(row)
}

func insertContributor(ctx context.Context, tx *sql.Tx, record contributor.Contributor) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO contributors (id, external_id, created_by, created_at) VALUES (?, ?, ?, ?)`,
		record.ID, record.ExternalID, record.CreatedBy, toMillis(record.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert contributor: %w", err)
	}
	return nil
}

func contributorCreatedEvent(record contributor.Contributor) (event.Event, error) {
	return event.NewContributorCreated(record.CreatedAt, event.ContributorCreatedPayload{
		ContributorID: record.ID,
		ExternalID:    record.ExternalID,
	})
}
