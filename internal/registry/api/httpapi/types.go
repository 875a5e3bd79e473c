package httpapi

import (
	"encoding/json"
	"time"

	"github.com/smartpublish/registry/internal/registry/domain/contributor"
	"github.com/smartpublish/registry/internal/registry/domain/paper"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/service"
)

// ContributorResponse is the wire form of a contributor record.
type ContributorResponse struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

func toContributorResponse(record contributor.Contributor) ContributorResponse {
	return ContributorResponse{
		ID:         record.ID,
		ExternalID: record.ExternalID,
		CreatedBy:  record.CreatedBy,
		CreatedAt:  record.CreatedAt,
	}
}

// ResolveContributorResponse reports the record plus whether it was created
// by this call.
type ResolveContributorResponse struct {
	Contributor ContributorResponse `json:"contributor"`
	Created     bool                `json:"created"`
}

// WorkflowResponse is the wire form of a workflow definition.
type WorkflowResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

func toWorkflowResponse(record workflow.Workflow) WorkflowResponse {
	return WorkflowResponse{
		ID:        record.ID,
		Name:      record.Name,
		CreatedBy: record.CreatedBy,
		CreatedAt: record.CreatedAt,
	}
}

// FileResponse is the wire form of one content file descriptor.
type FileResponse struct {
	FileSystemName string `json:"file_system_name"`
	PublicLocation string `json:"public_location"`
	HashAlgorithm  string `json:"hash_algorithm"`
	Hash           string `json:"hash"`
}

func toFileResponse(file paper.FileDescriptor) FileResponse {
	return FileResponse{
		FileSystemName: file.FileSystemName,
		PublicLocation: file.PublicLocation,
		HashAlgorithm:  file.HashAlgorithm,
		Hash:           file.Hash,
	}
}

// PaperResponse is the wire form of a paper joined with its lifecycle state.
type PaperResponse struct {
	Address      string         `json:"address"`
	Title        string         `json:"title"`
	Abstract     string         `json:"abstract"`
	Files        []FileResponse `json:"files"`
	Contributors []string       `json:"contributors"`
	Owner        string         `json:"owner"`
	WorkflowID   string         `json:"workflow_id"`
	State        string         `json:"state"`
	ReviewCount  int            `json:"review_count"`
	CreatedAt    time.Time      `json:"created_at"`
}

func toPaperResponse(view service.PaperView) PaperResponse {
	files := make([]FileResponse, 0, len(view.Paper.Files))
	for _, file := range view.Paper.Files {
		files = append(files, toFileResponse(file))
	}
	return PaperResponse{
		Address:      view.Paper.Address,
		Title:        view.Paper.Title,
		Abstract:     view.Paper.Abstract,
		Files:        files,
		Contributors: view.Paper.Contributors,
		Owner:        view.Paper.Owner,
		WorkflowID:   view.Paper.WorkflowID,
		State:        view.State.Label(),
		ReviewCount:  view.ReviewCount,
		CreatedAt:    view.Paper.CreatedAt,
	}
}

// TransitionResponse is the wire form of one history entry.
type TransitionResponse struct {
	AssetAddress string    `json:"asset_address"`
	Seq          uint64    `json:"seq"`
	OldState     string    `json:"old_state"`
	NewState     string    `json:"new_state"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

func toTransitionResponse(entry workflow.Transition) TransitionResponse {
	return TransitionResponse{
		AssetAddress: entry.AssetAddress,
		Seq:          entry.Seq,
		OldState:     entry.OldState.Label(),
		NewState:     entry.NewState.Label(),
		Action:       string(entry.Action),
		Actor:        entry.Actor,
		OccurredAt:   entry.OccurredAt,
	}
}

// EventResponse is the wire form of one notification log entry.
type EventResponse struct {
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload"`
}

func toEventResponse(evt event.Event) EventResponse {
	return EventResponse{
		Seq:       evt.Seq,
		Timestamp: evt.Timestamp,
		Type:      string(evt.Type),
		EntityID:  evt.EntityID,
		Payload:   json.RawMessage(evt.PayloadJSON),
	}
}
