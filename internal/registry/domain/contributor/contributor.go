// Package contributor defines the deduplicated identity record for a human
// author, keyed by an external identity string such as an ORCID iD or a
// federated login subject.
package contributor

import (
	"fmt"
	"strings"
	"time"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/platform/id"
)

var (
	// ErrExternalIDEmpty indicates a missing external identity string.
	ErrExternalIDEmpty = apperrors.New(apperrors.CodeExternalIDEmpty, "contributor external id is required")
	// ErrCallerIdentityEmpty indicates a missing caller identity.
	ErrCallerIdentityEmpty = apperrors.New(apperrors.CodeCallerIdentityEmpty, "caller identity is required")
	// ErrDuplicate indicates the external id is already registered.
	ErrDuplicate = apperrors.New(apperrors.CodeDuplicateContributor, "contributor external id is already registered")
)

// Contributor is the registry's identity record for one human author.
// ExternalID is unique across all records; neither field ever changes after
// creation and records are never deleted.
type Contributor struct {
	ID         string
	ExternalID string
	// CreatedBy is the caller identity that first referenced this author.
	CreatedBy string
	CreatedAt time.Time
}

// CreateContributorInput describes the identity needed to register an author.
type CreateContributorInput struct {
	ExternalID     string
	CallerIdentity string
}

// NewContributor builds a contributor record with a generated ID and timestamp.
func NewContributor(input CreateContributorInput, now func() time.Time, idGenerator func() (string, error)) (Contributor, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreateContributorInput(input)
	if err != nil {
		return Contributor{}, err
	}

	contributorID, err := idGenerator()
	if err != nil {
		return Contributor{}, fmt.Errorf("generate contributor id: %w", err)
	}

	return Contributor{
		ID:         contributorID,
		ExternalID: normalized.ExternalID,
		CreatedBy:  normalized.CallerIdentity,
		CreatedAt:  now().UTC(),
	}, nil
}

// NormalizeCreateContributorInput trims and validates contributor input.
func NormalizeCreateContributorInput(input CreateContributorInput) (CreateContributorInput, error) {
	input.ExternalID = strings.TrimSpace(input.ExternalID)
	if input.ExternalID == "" {
		return CreateContributorInput{}, ErrExternalIDEmpty
	}
	input.CallerIdentity = strings.TrimSpace(input.CallerIdentity)
	if input.CallerIdentity == "" {
		return CreateContributorInput{}, ErrCallerIdentityEmpty
	}
	return input, nil
}
