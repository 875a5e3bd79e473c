package workflow

import (
	"testing"
	"time"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
)

func fixedClock() time.Time {
	return time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
}

func staticID(value string) func() (string, error) {
	return func() (string, error) { return value, nil }
}

func TestStateLabelRoundTrip(t *testing.T) {
	states := []State{StateSubmitted, StateUnderReview, StateAccepted, StateRejected}
	for _, s := range states {
		parsed, err := StateFromLabel(s.Label())
		if err != nil {
			t.Fatalf("parse %s: %v", s.Label(), err)
		}
		if parsed != s {
			t.Fatalf("expected %v, got %v", s, parsed)
		}
	}

	if _, err := StateFromLabel("DRAFT"); apperrors.CodeOf(err) != apperrors.CodeWorkflowInvalidState {
		t.Fatalf("expected invalid state error, got %v", err)
	}
}

func TestTerminalStates(t *testing.T) {
	if StateSubmitted.Terminal() || StateUnderReview.Terminal() {
		t.Fatal("expected non-terminal states")
	}
	if !StateAccepted.Terminal() || !StateRejected.Terminal() {
		t.Fatal("expected accepted and rejected to be terminal")
	}
}

func TestActionFromLabel(t *testing.T) {
	for _, label := range []string{"review", "Review", " ACCEPT ", "reject"} {
		if _, err := ActionFromLabel(label); err != nil {
			t.Fatalf("parse %q: %v", label, err)
		}
	}
	if _, err := ActionFromLabel("publish"); apperrors.CodeOf(err) != apperrors.CodeInvalidTransition {
		t.Fatalf("expected invalid transition error, got %v", err)
	}
}

func TestRequiredRole(t *testing.T) {
	tests := []struct {
		action Action
		role   Role
	}{
		{ActionReview, RoleReviewer},
		{ActionAccept, RoleDecisionMaker},
		{ActionReject, RoleDecisionMaker},
	}
	for _, tt := range tests {
		role, err := RequiredRole(tt.action)
		if err != nil {
			t.Fatalf("required role for %s: %v", tt.action, err)
		}
		if role != tt.role {
			t.Fatalf("action %s: expected role %s, got %s", tt.action, tt.role, role)
		}
	}
	if _, err := RequiredRole(Action("publish")); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestNewWorkflow(t *testing.T) {
	wf, err := NewWorkflow(CreateWorkflowInput{
		Name:           " Peer Review 2026 ",
		CallerIdentity: "editor@journal",
	}, fixedClock, staticID("wf-1"))
	if err != nil {
		t.Fatalf("new workflow: %v", err)
	}
	if wf.ID != "wf-1" {
		t.Fatalf("expected generated id, got %q", wf.ID)
	}
	if wf.Name != "Peer Review 2026" {
		t.Fatalf("expected trimmed name, got %q", wf.Name)
	}
	if wf.CreatedBy != "editor@journal" {
		t.Fatalf("expected creator preserved, got %q", wf.CreatedBy)
	}
}

func TestNewWorkflowValidation(t *testing.T) {
	if _, err := NewWorkflow(CreateWorkflowInput{CallerIdentity: "editor"}, fixedClock, staticID("wf-1")); apperrors.CodeOf(err) != apperrors.CodeWorkflowNameEmpty {
		t.Fatalf("expected name error, got %v", err)
	}
	if _, err := NewWorkflow(CreateWorkflowInput{Name: "review"}, fixedClock, staticID("wf-1")); apperrors.CodeOf(err) != apperrors.CodeCallerIdentityEmpty {
		t.Fatalf("expected caller identity error, got %v", err)
	}
}

func TestNewRecordStartsSubmitted(t *testing.T) {
	rec := NewRecord("paper-1", "wf-1", fixedClock)
	if rec.State != StateSubmitted {
		t.Fatalf("expected submitted, got %s", rec.State.Label())
	}
	if rec.ReviewCount != 0 {
		t.Fatalf("expected zero review count, got %d", rec.ReviewCount)
	}
}

func TestApplyTransitionFullLifecycle(t *testing.T) {
	rec := NewRecord("paper-1", "wf-1", fixedClock)

	rec, tr, err := ApplyTransition(rec, ActionReview, "reviewer-1", fixedClock)
	if err != nil {
		t.Fatalf("first review: %v", err)
	}
	if rec.State != StateUnderReview || rec.ReviewCount != 1 {
		t.Fatalf("expected under review with one round, got %s/%d", rec.State.Label(), rec.ReviewCount)
	}
	if tr.OldState != StateSubmitted || tr.NewState != StateUnderReview {
		t.Fatalf("expected submitted->under review, got %s->%s", tr.OldState.Label(), tr.NewState.Label())
	}
	if tr.Actor != "reviewer-1" {
		t.Fatalf("expected actor recorded, got %q", tr.Actor)
	}

	rec, tr, err = ApplyTransition(rec, ActionReview, "reviewer-2", fixedClock)
	if err != nil {
		t.Fatalf("second review: %v", err)
	}
	if rec.State != StateUnderReview || rec.ReviewCount != 2 {
		t.Fatalf("expected repeated review to stay under review and count, got %s/%d", rec.State.Label(), rec.ReviewCount)
	}
	if tr.OldState != StateUnderReview || tr.NewState != StateUnderReview {
		t.Fatalf("expected under review self-transition, got %s->%s", tr.OldState.Label(), tr.NewState.Label())
	}

	rec, tr, err = ApplyTransition(rec, ActionAccept, "editor-1", fixedClock)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if rec.State != StateAccepted {
		t.Fatalf("expected accepted, got %s", rec.State.Label())
	}
	if rec.ReviewCount != 2 {
		t.Fatalf("expected accept to leave review count, got %d", rec.ReviewCount)
	}
	if tr.Action != ActionAccept {
		t.Fatalf("expected accept action recorded, got %s", tr.Action)
	}
}

func TestApplyTransitionRejected(t *testing.T) {
	rec := NewRecord("paper-1", "wf-1", fixedClock)
	rec, _, err := ApplyTransition(rec, ActionReview, "reviewer-1", fixedClock)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	rec, _, err = ApplyTransition(rec, ActionReject, "editor-1", fixedClock)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if rec.State != StateRejected {
		t.Fatalf("expected rejected, got %s", rec.State.Label())
	}
}

func TestApplyTransitionInvalid(t *testing.T) {
	tests := []struct {
		name   string
		state  State
		action Action
	}{
		{"accept from submitted", StateSubmitted, ActionAccept},
		{"reject from submitted", StateSubmitted, ActionReject},
		{"review after accept", StateAccepted, ActionReview},
		{"accept after accept", StateAccepted, ActionAccept},
		{"review after reject", StateRejected, ActionReview},
		{"reject after reject", StateRejected, ActionReject},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := NewRecord("paper-1", "wf-1", fixedClock)
			rec.State = tt.state
			before := rec
			_, _, err := ApplyTransition(rec, tt.action, "anyone", fixedClock)
			if apperrors.CodeOf(err) != apperrors.CodeInvalidTransition {
				t.Fatalf("expected invalid transition, got %v", err)
			}
			if rec != before {
				t.Fatal("expected input record untouched on rejection")
			}
		})
	}
}

func TestApplyTransitionRequiresActor(t *testing.T) {
	rec := NewRecord("paper-1", "wf-1", fixedClock)
	_, _, err := ApplyTransition(rec, ActionReview, "  ", fixedClock)
	if apperrors.CodeOf(err) != apperrors.CodeCallerIdentityEmpty {
		t.Fatalf("expected caller identity error, got %v", err)
	}
}
