package service

import (
	"context"
	"time"

	"github.com/smartpublish/registry/internal/platform/id"
	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/domain/paper"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// FactoryStore is the persistence surface paper creation needs.
type FactoryStore interface {
	storage.PaperStore
	GetWorkflow(ctx context.Context, workflowID string) (workflow.Workflow, error)
	GetRecord(ctx context.Context, assetAddress string) (workflow.Record, error)
}

// AssetFactory registers new paper assets. Creation is all-or-nothing: the
// paper, its author record, its initial lifecycle record and the creation
// events land together or not at all.
type AssetFactory struct {
	store FactoryStore
	bus   *event.Bus
	locks *LockTable
	now   func() time.Time
	newID func() (string, error)
}

// NewAssetFactory wires an asset factory service.
func NewAssetFactory(store FactoryStore, bus *event.Bus, locks *LockTable) *AssetFactory {
	return &AssetFactory{
		store: store,
		bus:   bus,
		locks: locks,
		now:   time.Now,
		newID: id.NewID,
	}
}

// CreatePaper validates the input, resolves the creator contributor, and
// registers the paper under the named workflow in its initial state.
func (f *AssetFactory) CreatePaper(ctx context.Context, input paper.CreatePaperInput) (paper.Paper, error) {
	normalized, err := paper.NormalizeCreatePaperInput(input)
	if err != nil {
		return paper.Paper{}, err
	}

	// Reject unknown workflows before any write happens.
	if _, err := f.store.GetWorkflow(ctx, normalized.WorkflowID); err != nil {
		return paper.Paper{}, err
	}

	candidate, err := contributor.NewContributor(contributor.CreateContributorInput{
		ExternalID:     normalized.ExternalContributorID,
		CallerIdentity: normalized.CallerIdentity,
	}, f.now, f.newID)
	if err != nil {
		return paper.Paper{}, err
	}

	record, err := paper.NewPaper(normalized, candidate.ID, f.now, f.newID)
	if err != nil {
		return paper.Paper{}, err
	}

	f.locks.Contributors().Lock()
	defer f.locks.Contributors().Unlock()

	persisted, _, events, err := f.store.CreatePaper(ctx, record, candidate)
	if err != nil {
		return paper.Paper{}, err
	}
	f.bus.Publish(events...)
	return persisted, nil
}

// GetPaper fetches a registered paper.
func (f *AssetFactory) GetPaper(ctx context.Context, address string) (paper.Paper, error) {
	return f.store.GetPaper(ctx, address)
}

// GetAssetsByCreator returns addresses of papers the identity created.
// Unknown identities yield an empty list.
func (f *AssetFactory) GetAssetsByCreator(ctx context.Context, owner string) ([]string, error) {
	return f.store.ListPapersByCreator(ctx, owner)
}

// PaperView is a paper joined with its current lifecycle position.
type PaperView struct {
	Paper       paper.Paper
	State       workflow.State
	ReviewCount int
}

// GetPaperView fetches a paper together with its workflow record.
func (f *AssetFactory) GetPaperView(ctx context.Context, address string) (PaperView, error) {
	record, err := f.store.GetPaper(ctx, address)
	if err != nil {
		return PaperView{}, err
	}
	lifecycle, err := f.store.GetRecord(ctx, address)
	if err != nil {
		return PaperView{}, err
	}
	return PaperView{
		Paper:       record,
		State:       lifecycle.State,
		ReviewCount: lifecycle.ReviewCount,
	}, nil
}
