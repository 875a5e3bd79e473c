package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/domain/paper"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// CreatePaper registers the paper, its files and authors, the initial
// lifecycle record, and the creation events in one transaction. The foreign
// key on papers.workflow_id rejects unknown workflows; on any failure nothing
// is persisted.
func (s *Store) CreatePaper(ctx context.Context, record paper.Paper, creator contributor.Contributor) (paper.Paper, bool, []event.Event, error) {
	var (
		contributorCreated bool
		appended           []event.Event
	)
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		// The author the paper references is the creator candidate when no
		// record with its external id exists yet, otherwise the existing
		// contributor record.
		author, err := selectContributorByExternalID(ctx, tx, creator.ExternalID)
		if errors.Is(err, storage.ErrNotFound) {
			if err := insertContributor(ctx, tx, creator); err != nil {
				return err
			}
			evt, err := contributorCreatedEvent(creator)
			if err != nil {
				return err
			}
			evt, err = appendEvent(ctx, tx, evt)
			if err != nil {
				return err
			}
			appended = append(appended, evt)
			author = creator
			contributorCreated = true
		} else if err != nil {
			return err
		}
		record.Contributors = []string{author.ID}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO papers (address, title, abstract, owner, workflow_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
			record.Address, record.Title, record.Abstract, record.Owner, record.WorkflowID, toMillis(record.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert paper: %w", err)
		}

		for index, file := range record.Files {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO paper_files (paper_address, file_index, file_system_name, public_location, hash_algorithm, hash)
				 VALUES (?, ?, ?, ?, ?, ?)`,
				record.Address, index, file.FileSystemName, file.PublicLocation, file.HashAlgorithm, file.Hash,
			)
			if err != nil {
				return fmt.Errorf("insert paper file %d: %w", index, err)
			}
		}

		for position, contributorID := range record.Contributors {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO paper_contributors (paper_address, position, contributor_id) VALUES (?, ?, ?)`,
				record.Address, position, contributorID,
			)
			if err != nil {
				return fmt.Errorf("insert paper contributor %d: %w", position, err)
			}
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO workflow_records (asset_address, workflow_id, state, review_count, updated_at) VALUES (?, ?, ?, 0, ?)`,
			record.Address, record.WorkflowID, workflow.StateSubmitted.Label(), toMillis(record.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert workflow record: %w", err)
		}

		evt, err := event.NewAssetCreated(record.CreatedAt, event.AssetCreatedPayload{
			AssetAddress: record.Address,
			AssetType:    event.AssetTypePaper,
			Creator:      record.Owner,
		})
		if err != nil {
			return err
		}
		evt, err = appendEvent(ctx, tx, evt)
		if err != nil {
			return err
		}
		appended = append(appended, evt)
		return nil
	})
	if err != nil {
		return paper.Paper{}, false, nil, err
	}
	return record, contributorCreated, appended, nil
}

// GetPaper fetches a paper with its files and authors.
func (s *Store) GetPaper(ctx context.Context, address string) (paper.Paper, error) {
	var (
		record    paper.Paper
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT address, title, abstract, owner, workflow_id, created_at FROM papers WHERE address = ?`,
		address,
	).Scan(&record.Address, &record.Title, &record.Abstract, &record.Owner, &record.WorkflowID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return paper.Paper{}, storage.ErrNotFound
	}
	if err != nil {
		return paper.Paper{}, fmt.Errorf("scan paper: %w", err)
	}
	record.CreatedAt = fromMillis(createdAt)

	if record.Files, err = s.listPaperFiles(ctx, address); err != nil {
		return paper.Paper{}, err
	}
	if record.Contributors, err = s.listPaperContributors(ctx, address); err != nil {
		return paper.Paper{}, err
	}
	return record, nil
}

// ListPapersByCreator returns addresses of papers owned by the identity.
func (s *Store) ListPapersByCreator(ctx context.Context, owner string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT address FROM papers WHERE owner = ? ORDER BY created_at, address`,
		owner,
	)
	if err != nil {
		return nil, fmt.Errorf("query papers by creator: %w", err)
	}
	defer rows.Close()

	var addresses []string
	for rows.Next() {
		var address string
		if err := rows.Scan(&address); err != nil {
			return nil, fmt.Errorf("scan paper address: %w", err)
		}
		addresses = append(addresses, address)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}
	return addresses, nil
}

func (s *Store) listPaperFiles(ctx context.Context, address string) ([]paper.FileDescriptor, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT file_system_name, public_location, hash_algorithm, hash
		 FROM paper_files WHERE paper_address = ? ORDER BY file_index`,
		address,
	)
	if err != nil {
		return nil, fmt.Errorf("query paper files: %w", err)
	}
	defer rows.Close()

	var files []paper.FileDescriptor
	for rows.Next() {
		var file paper.FileDescriptor
		if err := rows.Scan(&file.FileSystemName, &file.PublicLocation, &file.HashAlgorithm, &file.Hash); err != nil {
			return nil, fmt.Errorf("scan paper file: %w", err)
		}
		files = append(files, file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paper files: %w", err)
	}
	return files, nil
}

func (s *Store) listPaperContributors(ctx context.Context, address string) ([]string, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT contributor_id FROM paper_contributors WHERE paper_address = ? ORDER BY position`,
		address,
	)
	if err != nil {
		return nil, fmt.Errorf("query paper contributors: %w", err)
	}
	defer rows.Close()

	var contributorIDs []string
	for rows.Next() {
		var contributorID string
		if err := rows.Scan(&contributorID); err != nil {
			return nil, fmt.Errorf("scan paper contributor: %w", err)
		}
		contributorIDs = append(contributorIDs, contributorID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate paper contributors: %w", err)
	}
	return contributorIDs, nil
}
