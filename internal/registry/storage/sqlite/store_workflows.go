package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// CreateWorkflow inserts a workflow and its initial role grants atomically.
func (s *Store) CreateWorkflow(ctx context.Context, record workflow.Workflow, grants []storage.RoleGrant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO workflows (id, name, created_by, created_at) VALUES (?, ?, ?, ?)`,
			record.ID, record.Name, record.CreatedBy, toMillis(record.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert workflow: %w", err)
		}
		for _, grant := range grants {
			if err := insertRoleGrant(ctx, tx, grant, toMillis(record.CreatedAt)); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetWorkflow fetches a workflow definition.
func (s *Store) GetWorkflow(ctx context.Context, workflowID string) (workflow.Workflow, error) {
	var (
		record    workflow.Workflow
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, name, created_by, created_at FROM workflows WHERE id = ?`,
		workflowID,
	).Scan(&record.ID, &record.Name, &record.CreatedBy, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Workflow{}, storage.ErrNotFound
	}
	if err != nil {
		return workflow.Workflow{}, fmt.Errorf("scan workflow: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)
	return record, nil
}

// AssignRole persists one role grant. Existing grants are left untouched.
func (s *Store) AssignRole(ctx context.Context, grant storage.RoleGrant) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return insertRoleGrant(ctx, tx, grant, toMillis(time.Now()))
	})
}

// HasRole reports whether the identity holds the role in the workflow.
func (s *Store) HasRole(ctx context.Context, workflowID, identity string, role workflow.Role) (bool, error) {
	var found int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT 1 FROM workflow_roles WHERE workflow_id = ? AND identity = ? AND role = ?`,
		workflowID, identity, string(role),
	).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query role grant: %w", err)
	}
	return true, nil
}

// GetRecord fetches an asset's lifecycle record.
func (s *Store) GetRecord(ctx context.Context, assetAddress string) (workflow.Record, error) {
	return selectRecord(ctx, s.sqlDB.QueryRowContext, assetAddress)
}

// ApplyTransition persists the updated record, appends the history entry with
// the next per-asset sequence, and appends the asset.state_changed event, all
// in one transaction.
func (s *Store) ApplyTransition(ctx context.Context, updated workflow.Record, entry workflow.Transition) (workflow.Transition, event.Event, error) {
	var appendedEvt event.Event
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE workflow_records SET state = ?, review_count = ?, updated_at = ? WHERE asset_address = ?`,
			updated.State.Label(), updated.ReviewCount, toMillis(updated.UpdatedAt), updated.AssetAddress,
		)
		if err != nil {
			return fmt.Errorf("update workflow record: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update workflow record: %w", err)
		}
		if affected == 0 {
			return storage.ErrNotFound
		}

		var nextSeq uint64
		err = tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), 0) + 1 FROM transitions WHERE asset_address = ?`,
			entry.AssetAddress,
		).Scan(&nextSeq)
		if err != nil {
			return fmt.Errorf("next transition seq: %w", err)
		}
		entry.Seq = nextSeq

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transitions (asset_address, seq, old_state, new_state, action, actor, occurred_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.AssetAddress, entry.Seq, entry.OldState.Label(), entry.NewState.Label(),
			string(entry.Action), entry.Actor, toMillis(entry.OccurredAt),
		)
		if err != nil {
			return fmt.Errorf("insert transition: %w", err)
		}

		evt, err := event.NewAssetStateChanged(entry.OccurredAt, event.AssetStateChangedPayload{
			AssetAddress: entry.AssetAddress,
			OldState:     entry.OldState.Label(),
			NewState:     entry.NewState.Label(),
			Action:       string(entry.Action),
			Actor:        entry.Actor,
		})
		if err != nil {
			return err
		}
		appendedEvt, err = appendEvent(ctx, tx, evt)
		return err
	})
	if err != nil {
		return workflow.Transition{}, event.Event{}, err
	}
	return entry, appendedEvt, nil
}

// ListTransitions returns an asset's history in sequence order.
func (s *Store) ListTransitions(ctx context.Context, assetAddress string) ([]workflow.Transition, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT asset_address, seq, old_state, new_state, action, actor, occurred_at
		 FROM transitions WHERE asset_address = ? ORDER BY seq`,
		assetAddress,
	)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var entries []workflow.Transition
	for rows.Next() {
		var (
			entry      workflow.Transition
			oldLabel   string
			newLabel   string
			action     string
			occurredAt int64
		)
		if err := rows.Scan(&entry.AssetAddress, &entry.Seq, &oldLabel, &newLabel, &action, &entry.Actor, &occurredAt); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		if entry.OldState, err = workflow.StateFromLabel(oldLabel); err != nil {
			return nil, err
		}
		if entry.NewState, err = workflow.StateFromLabel(newLabel); err != nil {
			return nil, err
		}
		entry.Action = workflow.Action(action)
		entry.OccurredAt = fromMillis(occurredAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transitions: %w", err)
	}
	return entries, nil
}

// ListAssetsByState returns workflow assets currently in the given state.
func (s *Store) ListAssetsByState(ctx context.Context, workflowID string, state workflow.State) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT asset_address FROM workflow_records WHERE workflow_id = ? AND state = ? ORDER BY updated_at, asset_address`,
		workflowID, state.Label(),
	)
	if err != nil {
		return nil, fmt.Errorf("query workflow records: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("scan workflow record: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workflow records: %w", err)
	}
	return addresses, nil
}

type queryRower func(ctx context.Context, query string, args ...any) *sql.Row

func selectRecord(ctx context.Context, queryRow queryRower, assetAddress string) (workflow.Record, error) {
	var (
		record     workflow.Record
		stateLabel string
		updatedAt  int64
	)
	err := queryRow(ctx,
		`SELECT asset_address, workflow_id, state, review_count, updated_at FROM workflow_records WHERE asset_address = ?`,
		assetAddress,
	).Scan(&record.AssetAddress, &record.WorkflowID, &stateLabel, &record.ReviewCount, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return workflow.Record{}, storage.ErrNotFound
	}
	if err != nil {
		return workflow.Record{}, fmt.Errorf("scan workflow record: %w", err)
	}
	if record.State, err = workflow.StateFromLabel(stateLabel); err != nil {
		return workflow.Record{}, err
	}
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func insertRoleGrant(ctx context.Context, tx *sql.Tx, grant storage.RoleGrant, grantedAt int64) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO workflow_roles (workflow_id, identity, role, granted_by, granted_at)
		 VALUES (?, ?, ?, ?, ?)`,
		grant.WorkflowID, grant.Identity, string(grant.Role), grant.GrantedBy, grantedAt,
	)
	if err != nil {
		return fmt.Errorf("insert role grant: %w", err)
	}
	return nil
}
