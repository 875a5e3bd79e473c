package service

import (
	"context"
	"time"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/platform/id"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// PeerReviewWorkflow manages workflow definitions, role grants, and asset
// lifecycle transitions.
type PeerReviewWorkflow struct {
	store storage.WorkflowStore
	bus   *event.Bus
	locks *LockTable
	now   func() time.Time
	newID func() (string, error)
}

// NewPeerReviewWorkflow wires a workflow service.
func NewPeerReviewWorkflow(store storage.WorkflowStore, bus *event.Bus, locks *LockTable) *PeerReviewWorkflow {
	return &PeerReviewWorkflow{
		store: store,
		bus:   bus,
		locks: locks,
		now:   time.Now,
		newID: id.NewID,
	}
}

// CreateWorkflow registers a named workflow. The creator receives the admin
// role so it can delegate reviewer and decision-maker grants.
func (w *PeerReviewWorkflow) CreateWorkflow(ctx context.Context, input workflow.CreateWorkflowInput) (workflow.Workflow, error) {
	record, err := workflow.NewWorkflow(input, w.now, w.newID)
	if err != nil {
		return workflow.Workflow{}, err
	}

	grants := []storage.RoleGrant{{
		WorkflowID: record.ID,
		Identity:   record.CreatedBy,
		Role:       workflow.RoleAdmin,
		GrantedBy:  record.CreatedBy,
	}}
	if err := w.store.CreateWorkflow(ctx, record, grants); err != nil {
		return workflow.Workflow{}, err
	}
	return record, nil
}

// GetWorkflow fetches a workflow definition.
func (w *PeerReviewWorkflow) GetWorkflow(ctx context.Context, workflowID string) (workflow.Workflow, error) {
	return w.store.GetWorkflow(ctx, workflowID)
}

// AssignRole grants a role within a workflow. Only workflow admins may grant.
func (w *PeerReviewWorkflow) AssignRole(ctx context.Context, workflowID, identity string, role workflow.Role, callerIdentity string) error {
	if _, err := w.store.GetWorkflow(ctx, workflowID); err != nil {
		return err
	}

	isAdmin, err := w.store.HasRole(ctx, workflowID, callerIdentity, workflow.RoleAdmin)
	if err != nil {
		return err
	}
	if !isAdmin {
		return apperrors.WithMetadata(apperrors.CodeUnauthorized, "caller is not a workflow admin", map[string]string{
			"WorkflowID": workflowID,
			"Caller":     callerIdentity,
		})
	}

	return w.store.AssignRole(ctx, storage.RoleGrant{
		WorkflowID: workflowID,
		Identity:   identity,
		Role:       role,
		GrantedBy:  callerIdentity,
	})
}

// Review records one completed review round for the asset.
func (w *PeerReviewWorkflow) Review(ctx context.Context, assetAddress, actor string) (workflow.Record, workflow.Transition, error) {
	return w.apply(ctx, assetAddress, workflow.ActionReview, actor)
}

// Accept closes the asset's lifecycle with a positive outcome.
func (w *PeerReviewWorkflow) Accept(ctx context.Context, assetAddress, actor string) (workflow.Record, workflow.Transition, error) {
	return w.apply(ctx, assetAddress, workflow.ActionAccept, actor)
}

// Reject closes the asset's lifecycle with a negative outcome.
func (w *PeerReviewWorkflow) Reject(ctx context.Context, assetAddress, actor string) (workflow.Record, workflow.Transition, error) {
	return w.apply(ctx, assetAddress, workflow.ActionReject, actor)
}

// Apply performs the named action on the asset.
func (w *PeerReviewWorkflow) Apply(ctx context.Context, assetAddress string, action workflow.Action, actor string) (workflow.Record, workflow.Transition, error) {
	return w.apply(ctx, assetAddress, action, actor)
}

// apply runs one transition under the asset's lock: authorization first, then
// the state machine, then the transactional write. A failure at any step
// leaves the asset untouched.
func (w *PeerReviewWorkflow) apply(ctx context.Context, assetAddress string, action workflow.Action, actor string) (workflow.Record, workflow.Transition, error) {
	requiredRole, err := workflow.RequiredRole(action)
	if err != nil {
		return workflow.Record{}, workflow.Transition{}, err
	}

	lock := w.locks.Asset(assetAddress)
	lock.Lock()
	defer lock.Unlock()

	record, err := w.store.GetRecord(ctx, assetAddress)
	if err != nil {
		return workflow.Record{}, workflow.Transition{}, err
	}

	held, err := w.store.HasRole(ctx, record.WorkflowID, actor, requiredRole)
	if err != nil {
		return workflow.Record{}, workflow.Transition{}, err
	}
	if !held {
		return workflow.Record{}, workflow.Transition{}, apperrors.WithMetadata(apperrors.CodeUnauthorized, "actor lacks required role", map[string]string{
			"AssetAddress": assetAddress,
			"Actor":        actor,
			"Role":         string(requiredRole),
		})
	}

	updated, entry, err := workflow.ApplyTransition(record, action, actor, w.now)
	if err != nil {
		return workflow.Record{}, workflow.Transition{}, err
	}

	persistedEntry, evt, err := w.store.ApplyTransition(ctx, updated, entry)
	if err != nil {
		return workflow.Record{}, workflow.Transition{}, err
	}
	w.bus.Publish(evt)
	return updated, persistedEntry, nil
}

// GetRecord fetches an asset's lifecycle record.
func (w *PeerReviewWorkflow) GetRecord(ctx context.Context, assetAddress string) (workflow.Record, error) {
	return w.store.GetRecord(ctx, assetAddress)
}

// History returns an asset's transition history in sequence order.
func (w *PeerReviewWorkflow) History(ctx context.Context, assetAddress string) ([]workflow.Transition, error) {
	if _, err := w.store.GetRecord(ctx, assetAddress); err != nil {
		return nil, err
	}
	return w.store.ListTransitions(ctx, assetAddress)
}

// FindAssetsByState returns workflow assets currently in the given state.
func (w *PeerReviewWorkflow) FindAssetsByState(ctx context.Context, workflowID string, state workflow.State) ([]string, error) {
	if _, err := w.store.GetWorkflow(ctx, workflowID); err != nil {
		return nil, err
	}
	return w.store.ListAssetsByState(ctx, workflowID, state)
}
