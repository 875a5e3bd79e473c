// Package workflow implements the peer-review lifecycle shared by all
// registered papers: a fixed state machine, role-gated actions, and an
// append-only transition history per asset.
package workflow

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/platform/id"
)

var (
	// ErrNameEmpty indicates a missing workflow name.
	ErrNameEmpty = apperrors.New(apperrors.CodeWorkflowNameEmpty, "workflow name is required")
	// ErrCallerIdentityEmpty indicates a missing caller identity.
	ErrCallerIdentityEmpty = apperrors.New(apperrors.CodeCallerIdentityEmpty, "caller identity is required")
)

// State is a position in the peer-review lifecycle.
type State int

const (
	StateUnspecified State = iota
	// StateSubmitted is the initial state of every registered paper.
	StateSubmitted
	// StateUnderReview means at least one review has been recorded.
	StateUnderReview
	// StateAccepted is terminal.
	StateAccepted
	// StateRejected is terminal.
	StateRejected
)

// Label returns the wire representation of the state.
func (s State) Label() string {
	switch s {
	case StateSubmitted:
		return "SUBMITTED"
	case StateUnderReview:
		return "UNDER_REVIEW"
	case StateAccepted:
		return "ACCEPTED"
	case StateRejected:
		return "REJECTED"
	default:
		return "UNSPECIFIED"
	}
}

// Terminal reports whether no further actions are possible from the state.
func (s State) Terminal() bool {
	return s == StateAccepted || s == StateRejected
}

// StateFromLabel parses a wire state label.
func StateFromLabel(label string) (State, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "SUBMITTED":
		return StateSubmitted, nil
	case "UNDER_REVIEW":
		return StateUnderReview, nil
	case "ACCEPTED":
		return StateAccepted, nil
	case "REJECTED":
		return StateRejected, nil
	default:
		return StateUnspecified, apperrors.WithMetadata(apperrors.CodeWorkflowInvalidState, "unknown workflow state", map[string]string{
			"State": label,
		})
	}
}

// Action is a caller-requested operation on an asset's lifecycle.
type Action string

const (
	// ActionReview records one completed review round.
	ActionReview Action = "review"
	// ActionAccept closes the lifecycle with a positive outcome.
	ActionAccept Action = "accept"
	// ActionReject closes the lifecycle with a negative outcome.
	ActionReject Action = "reject"
)

// ActionFromLabel parses a wire action label.
func ActionFromLabel(label string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(label))) {
	case ActionReview:
		return ActionReview, nil
	case ActionAccept:
		return ActionAccept, nil
	case ActionReject:
		return ActionReject, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidTransition, "unknown workflow action", map[string]string{
			"Action": label,
		})
	}
}

// Role gates who may perform which action within one workflow.
type Role string

const (
	// RoleReviewer may record review rounds.
	RoleReviewer Role = "reviewer"
	// RoleDecisionMaker may accept or reject.
	RoleDecisionMaker Role = "decision-maker"
	// RoleAdmin may assign roles to other identities.
	RoleAdmin Role = "admin"
)

// RoleFromLabel parses a wire role label.
func RoleFromLabel(label string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(label))) {
	case RoleReviewer:
		return RoleReviewer, nil
	case RoleDecisionMaker:
		return RoleDecisionMaker, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeWorkflowInvalidRole, "unknown workflow role", map[string]string{
			"Role": label,
		})
	}
}

// RequiredRole returns the role an actor must hold to perform the action.
func RequiredRole(action Action) (Role, error) {
	switch action {
	case ActionReview:
		return RoleReviewer, nil
	case ActionAccept, ActionReject:
		return RoleDecisionMaker, nil
	default:
		return "", apperrors.WithMetadata(apperrors.CodeInvalidTransition, "unknown workflow action", map[string]string{
			"Action": string(action),
		})
	}
}

// Workflow is one named peer-review process. Papers reference a workflow at
// creation and follow its state machine for life.
type Workflow struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// CreateWorkflowInput describes a new workflow instance.
type CreateWorkflowInput struct {
	Name           string
	CallerIdentity string
}

// NewWorkflow builds a workflow with a generated ID. The creator becomes its
// first admin; persisting that grant is the caller's responsibility.
func NewWorkflow(input CreateWorkflowInput, now func() time.Time, idGenerator func() (string, error)) (Workflow, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Workflow{}, ErrNameEmpty
	}
	input.CallerIdentity = strings.TrimSpace(input.CallerIdentity)
	if input.CallerIdentity == "" {
		return Workflow{}, ErrCallerIdentityEmpty
	}

	workflowID, err := idGenerator()
	if err != nil {
		return Workflow{}, fmt.Errorf("generate workflow id: %w", err)
	}

	return Workflow{
		ID:        workflowID,
		Name:      input.Name,
		CreatedBy: input.CallerIdentity,
		CreatedAt: now().UTC(),
	}, nil
}

// Record tracks one asset's position in its workflow.
type Record struct {
	AssetAddress string
	WorkflowID   string
	State        State
	// ReviewCount is the number of review rounds recorded so far.
	ReviewCount int
	UpdatedAt   time.Time
}

// NewRecord registers an asset in its initial state.
func NewRecord(assetAddress, workflowID string, now func() time.Time) Record {
	if now == nil {
		now = time.Now
	}
	return Record{
		AssetAddress: assetAddress,
		WorkflowID:   workflowID,
		State:        StateSubmitted,
		UpdatedAt:    now().UTC(),
	}
}

// Transition is one append-only history entry. Seq is monotonically
// increasing per asset, starting at 1.
type Transition struct {
	AssetAddress string
	Seq          uint64
	OldState     State
	NewState     State
	Action       Action
	Actor        string
	OccurredAt   time.Time
}

// isTransitionAllowed returns the resulting state for an action from a given
// state, or false when the pair is not in the state machine.
func isTransitionAllowed(from State, action Action) (State, bool) {
	switch from {
	case StateSubmitted:
		if action == ActionReview {
			return StateUnderReview, true
		}
	case StateUnderReview:
		switch action {
		case ActionReview:
			// Additional review rounds keep the state and bump the counter.
			return StateUnderReview, true
		case ActionAccept:
			return StateAccepted, true
		case ActionReject:
			return StateRejected, true
		}
	}
	return StateUnspecified, false
}

// ApplyTransition advances a record by one action. It returns the updated
// record and the history entry to append, or an invalid-transition error that
// leaves the input record meaningful as-is. Seq on the returned transition is
// zero; storage assigns it when the entry is appended.
func ApplyTransition(rec Record, action Action, actor string, now func() time.Time) (Record, Transition, error) {
	if now == nil {
		now = time.Now
	}
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return Record{}, Transition{}, apperrors.New(apperrors.CodeCallerIdentityEmpty, "transition actor is required")
	}

	next, ok := isTransitionAllowed(rec.State, action)
	if !ok {
		return Record{}, Transition{}, apperrors.WithMetadata(apperrors.CodeInvalidTransition, "transition not allowed", map[string]string{
			"AssetAddress": rec.AssetAddress,
			"FromState":    rec.State.Label(),
			"Action":       string(action),
		})
	}

	occurredAt := now().UTC()
	updated := rec
	updated.State = next
	updated.UpdatedAt = occurredAt
	if action == ActionReview {
		updated.ReviewCount++
	}

	return updated, Transition{
		AssetAddress: rec.AssetAddress,
		OldState:     rec.State,
		NewState:     next,
		Action:       action,
		Actor:        actor,
		OccurredAt:   occurredAt,
	}, nil
}
