// Package errors provides structured, coded error handling for the registry.
package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Validation errors
	CodeValidation           Code = "VALIDATION_ERROR"
	CodeTitleEmpty           Code = "PAPER_TITLE_EMPTY"
	CodeAbstractEmpty        Code = "PAPER_ABSTRACT_EMPTY"
	CodeFileDescriptorEmpty  Code = "PAPER_FILE_DESCRIPTOR_EMPTY"
	CodeExternalIDEmpty      Code = "CONTRIBUTOR_EXTERNAL_ID_EMPTY"
	CodeCallerIdentityEmpty  Code = "CALLER_IDENTITY_EMPTY"
	CodeWorkflowNameEmpty    Code = "WORKFLOW_NAME_EMPTY"
	CodeWorkflowInvalidRole  Code = "WORKFLOW_INVALID_ROLE"
	CodeWorkflowInvalidState Code = "WORKFLOW_INVALID_STATE"

	// Conflict errors
	CodeDuplicateContributor Code = "DUPLICATE_CONTRIBUTOR"
	CodeInvalidTransition    Code = "INVALID_TRANSITION"

	// Authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Lookup errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidation,
		CodeTitleEmpty,
		CodeAbstractEmpty,
		CodeFileDescriptorEmpty,
		CodeExternalIDEmpty,
		CodeCallerIdentityEmpty,
		CodeWorkflowNameEmpty,
		CodeWorkflowInvalidRole,
		CodeWorkflowInvalidState:
		return http.StatusBadRequest

	case CodeDuplicateContributor,
		CodeInvalidTransition:
		return http.StatusConflict

	case CodeUnauthorized:
		return http.StatusForbidden

	case CodeNotFound:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
