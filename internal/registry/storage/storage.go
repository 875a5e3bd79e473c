// Package storage defines the persistence contracts for the registry.
// Implementations must make each composite method atomic: either every write
// it names lands, or none do.
package storage

import (
	"context"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/domain/paper"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// RoleGrant is one identity-to-role binding within a workflow.
type RoleGrant struct {
	WorkflowID string
	Identity   string
	Role       workflow.Role
	GrantedBy  string
}

// ContributorStore persists contributor identity records.
type ContributorStore interface {
	// CreateContributor inserts a new record and appends its
	// contributor.created event in one transaction. It fails with
	// contributor.ErrDuplicate when the external id is taken.
	CreateContributor(ctx context.Context, record contributor.Contributor) (event.Event, error)

	// ResolveContributor returns the record for the candidate's external id,
	// inserting the candidate when none exists. created reports whether the
	// insert happened; evt is the appended contributor.created event and is
	// only meaningful when created is true.
	ResolveContributor(ctx context.Context, candidate contributor.Contributor) (record contributor.Contributor, created bool, evt event.Event, err error)

	// GetContributor fetches a record by registry id.
	GetContributor(ctx context.Context, contributorID string) (contributor.Contributor, error)

	// GetContributorByExternalID fetches a record by external id.
	GetContributorByExternalID(ctx context.Context, externalID string) (contributor.Contributor, error)
}

// WorkflowStore persists workflow definitions, role grants, per-asset
// lifecycle records and their transition history.
type WorkflowStore interface {
	// CreateWorkflow inserts a workflow and its initial role grants in one
	// transaction.
	CreateWorkflow(ctx context.Context, record workflow.Workflow, grants []RoleGrant) error

	// GetWorkflow fetches a workflow definition.
	GetWorkflow(ctx context.Context, workflowID string) (workflow.Workflow, error)

	// AssignRole persists one role grant. Granting an already held role is a
	// no-op.
	AssignRole(ctx context.Context, grant RoleGrant) error

	// HasRole reports whether the identity holds the role in the workflow.
	HasRole(ctx context.Context, workflowID, identity string, role workflow.Role) (bool, error)

	// GetRecord fetches an asset's lifecycle record.
	GetRecord(ctx context.Context, assetAddress string) (workflow.Record, error)

	// ApplyTransition persists an updated record, appends the history entry
	// with the next per-asset sequence number, and appends the matching
	// asset.state_changed event, all in one transaction. The returned
	// transition and event carry their assigned sequence numbers.
	ApplyTransition(ctx context.Context, updated workflow.Record, entry workflow.Transition) (workflow.Transition, event.Event, error)

	// ListTransitions returns an asset's history in sequence order.
	ListTransitions(ctx context.Context, assetAddress string) ([]workflow.Transition, error)

	// ListAssetsByState returns addresses of assets in the workflow currently
	// in the given state, oldest update first.
	ListAssetsByState(ctx context.Context, workflowID string, state workflow.State) ([]string, error)
}

// PaperStore persists paper assets.
type PaperStore interface {
	// CreatePaper registers the paper, its files and authors, the initial
	// lifecycle record, and the creation events in one transaction. The
	// creator candidate is inserted first unless a contributor with its
	// external id already exists, in which case the persisted paper's author
	// list references the existing record instead of the candidate.
	// contributorCreated reports whether the insert happened. Events are
	// returned in append order with assigned sequence numbers.
	CreatePaper(ctx context.Context, record paper.Paper, creator contributor.Contributor) (persisted paper.Paper, contributorCreated bool, events []event.Event, err error)

	// GetPaper fetches a paper with its files and authors.
	GetPaper(ctx context.Context, address string) (paper.Paper, error)

	// ListPapersByCreator returns addresses of papers owned by the identity,
	// oldest first.
	ListPapersByCreator(ctx context.Context, owner string) ([]string, error)
}

// EventStore reads the append-only notification log.
type EventStore interface {
	// ListEvents returns up to limit events with Seq greater than afterSeq,
	// in sequence order.
	ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]event.Event, error)

	// LatestSeq returns the highest assigned sequence number, zero when the
	// log is empty.
	LatestSeq(ctx context.Context) (uint64, error)
}

// Store is the full persistence surface of the registry.
type Store interface {
	ContributorStore
	WorkflowStore
	PaperStore
	EventStore

	Close() error
}
