// Package service implements the registry's application operations on top of
// the storage contracts: contributor resolution, paper creation, and the
// peer-review lifecycle. Services publish persisted events on a shared bus
// after their transaction commits.
package service

import (
	"context"
	"time"

	"github.com/smartpublish/registry/internal/platform/id"
	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// ContributorRegistry manages the deduplicated contributor directory.
type ContributorRegistry struct {
	store storage.ContributorStore
	bus   *event.Bus
	locks *LockTable
	now   func() time.Time
	newID func() (string, error)
}

// NewContributorRegistry wires a contributor registry service.
func NewContributorRegistry(store storage.ContributorStore, bus *event.Bus, locks *LockTable) *ContributorRegistry {
	return &ContributorRegistry{
		store: store,
		bus:   bus,
		locks: locks,
		now:   time.Now,
		newID: id.NewID,
	}
}

// Create registers a new contributor. It fails with a duplicate error when
// the external id is already taken.
func (r *ContributorRegistry) Create(ctx context.Context, input contributor.CreateContributorInput) (contributor.Contributor, error) {
	candidate, err := contributor.NewContributor(input, r.now, r.newID)
	if err != nil {
		return contributor.Contributor{}, err
	}

	r.locks.Contributors().Lock()
	defer r.locks.Contributors().Unlock()

	evt, err := r.store.CreateContributor(ctx, candidate)
	if err != nil {
		return contributor.Contributor{}, err
	}
	r.bus.Publish(evt)
	return candidate, nil
}

// GetOrCreate returns the contributor for the external id, registering one
// when none exists. created reports whether a record was inserted; repeated
// calls with the same external id return the same record and emit no further
// events.
func (r *ContributorRegistry) GetOrCreate(ctx context.Context, input contributor.CreateContributorInput) (contributor.Contributor, bool, error) {
	candidate, err := contributor.NewContributor(input, r.now, r.newID)
	if err != nil {
		return contributor.Contributor{}, false, err
	}

	r.locks.Contributors().Lock()
	defer r.locks.Contributors().Unlock()

	record, created, evt, err := r.store.ResolveContributor(ctx, candidate)
	if err != nil {
		return contributor.Contributor{}, false, err
	}
	if created {
		r.bus.Publish(evt)
	}
	return record, created, nil
}

// Get fetches a contributor by registry id.
func (r *ContributorRegistry) Get(ctx context.Context, contributorID string) (contributor.Contributor, error) {
	return r.store.GetContributor(ctx, contributorID)
}

// GetByExternalID fetches a contributor by external id.
func (r *ContributorRegistry) GetByExternalID(ctx context.Context, externalID string) (contributor.Contributor, error) {
	return r.store.GetContributorByExternalID(ctx, externalID)
}
