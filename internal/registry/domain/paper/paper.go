// Package paper defines the immutable scholarly paper asset: bibliographic
// metadata plus content file descriptors pointing at externally stored bytes.
package paper

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/platform/id"
)

var (
	// ErrTitleEmpty indicates a missing paper title.
	ErrTitleEmpty = apperrors.New(apperrors.CodeTitleEmpty, "paper title is required")
	// ErrAbstractEmpty indicates a missing paper abstract.
	ErrAbstractEmpty = apperrors.New(apperrors.CodeAbstractEmpty, "paper abstract is required")
	// ErrWorkflowIDEmpty indicates a missing workflow reference.
	ErrWorkflowIDEmpty = apperrors.New(apperrors.CodeValidation, "paper workflow id is required")
	// ErrExternalContributorIDEmpty indicates a missing author external id.
	ErrExternalContributorIDEmpty = apperrors.New(apperrors.CodeExternalIDEmpty, "paper author external id is required")
	// ErrCallerIdentityEmpty indicates a missing caller identity.
	ErrCallerIdentityEmpty = apperrors.New(apperrors.CodeCallerIdentityEmpty, "caller identity is required")
)

// FileDescriptor locates one content file for a paper. The registry stores
// only this descriptor; the bytes live in the named external file system.
type FileDescriptor struct {
	// FileSystemName identifies the storage backend, e.g. "IPFS" or "localfs".
	FileSystemName string
	// PublicLocation is the retrieval address within that backend.
	PublicLocation string
	// HashAlgorithm names the digest algorithm, e.g. "blake2b".
	HashAlgorithm string
	// Hash is the content digest in the algorithm's canonical encoding.
	Hash string
}

// Paper is an immutable scholarly asset. All fields are fixed at creation;
// there are no update operations.
type Paper struct {
	// Address is the asset's unique registry address.
	Address  string
	Title    string
	Abstract string
	Files    []FileDescriptor
	// Contributors lists author contributor IDs in authorship order.
	Contributors []string
	// Owner is the caller identity that created the paper.
	Owner      string
	WorkflowID string
	CreatedAt  time.Time
}

// GetFile returns the descriptor at the given zero-based index.
func (p Paper) GetFile(index int) (FileDescriptor, error) {
	if index < 0 || index >= len(p.Files) {
		return FileDescriptor{}, apperrors.WithMetadata(apperrors.CodeNotFound, "paper file index out of range", map[string]string{
			"Address": p.Address,
			"Index":   strconv.Itoa(index),
		})
	}
	return p.Files[index], nil
}

// FileCount reports how many content files the paper carries.
func (p Paper) FileCount() int {
	return len(p.Files)
}

// CreatePaperInput carries everything needed to register a paper with its
// first content file and first author.
type CreatePaperInput struct {
	Title    string
	Abstract string

	FileSystemName string
	PublicLocation string
	HashAlgorithm  string
	Hash           string

	WorkflowID            string
	ExternalContributorID string
	CallerIdentity        string
}

// NewPaper builds a paper asset with a generated address and timestamp.
// The author contributor ID is resolved by the caller before construction.
func NewPaper(input CreatePaperInput, contributorID string, now func() time.Time, idGenerator func() (string, error)) (Paper, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	normalized, err := NormalizeCreatePaperInput(input)
	if err != nil {
		return Paper{}, err
	}
	if strings.TrimSpace(contributorID) == "" {
		return Paper{}, apperrors.New(apperrors.CodeValidation, "paper author contributor id is required")
	}

	address, err := idGenerator()
	if err != nil {
		return Paper{}, fmt.Errorf("generate paper address: %w", err)
	}

	return Paper{
		Address:  address,
		Title:    normalized.Title,
		Abstract: normalized.Abstract,
		Files: []FileDescriptor{{
			FileSystemName: normalized.FileSystemName,
			PublicLocation: normalized.PublicLocation,
			HashAlgorithm:  normalized.HashAlgorithm,
			Hash:           normalized.Hash,
		}},
		Contributors: []string{contributorID},
		Owner:        normalized.CallerIdentity,
		WorkflowID:   normalized.WorkflowID,
		CreatedAt:    now().UTC(),
	}, nil
}

// NormalizeCreatePaperInput trims and validates paper input. Every field is
// required; the first missing one is reported.
func NormalizeCreatePaperInput(input CreatePaperInput) (CreatePaperInput, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreatePaperInput{}, ErrTitleEmpty
	}
	input.Abstract = strings.TrimSpace(input.Abstract)
	if input.Abstract == "" {
		return CreatePaperInput{}, ErrAbstractEmpty
	}

	fileFields := []struct {
		name  string
		value *string
	}{
		{"FileSystemName", &input.FileSystemName},
		{"PublicLocation", &input.PublicLocation},
		{"HashAlgorithm", &input.HashAlgorithm},
		{"Hash", &input.Hash},
	}
	for _, field := range fileFields {
		*field.value = strings.TrimSpace(*field.value)
		if *field.value == "" {
			return CreatePaperInput{}, apperrors.WithMetadata(apperrors.CodeFileDescriptorEmpty, "paper file descriptor field is required", map[string]string{
				"Field": field.name,
			})
		}
	}

	input.WorkflowID = strings.TrimSpace(input.WorkflowID)
	if input.WorkflowID == "" {
		return CreatePaperInput{}, ErrWorkflowIDEmpty
	}
	input.ExternalContributorID = strings.TrimSpace(input.ExternalContributorID)
	if input.ExternalContributorID == "" {
		return CreatePaperInput{}, ErrExternalContributorIDEmpty
	}
	input.CallerIdentity = strings.TrimSpace(input.CallerIdentity)
	if input.CallerIdentity == "" {
		return CreatePaperInput{}, ErrCallerIdentityEmpty
	}
	return input, nil
}
