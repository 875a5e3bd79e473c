package sdk

import (
	"encoding/json"
	"fmt"
	"time"
)

// Contributor is a registry contributor record.
type Contributor struct {
	ID         string    `json:"id"`
	ExternalID string    `json:"external_id"`
	CreatedBy  string    `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

// Workflow is a named peer-review workflow.
type Workflow struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// File is one content file descriptor.
type File struct {
	FileSystemName string `json:"file_system_name"`
	PublicLocation string `json:"public_location"`
	HashAlgorithm  string `json:"hash_algorithm"`
	Hash           string `json:"hash"`
}

// Paper is a registered paper with its lifecycle position.
type Paper struct {
	Address      string    `json:"address"`
	Title        string    `json:"title"`
	Abstract     string    `json:"abstract"`
	Files        []File    `json:"files"`
	Contributors []string  `json:"contributors"`
	Owner        string    `json:"owner"`
	WorkflowID   string    `json:"workflow_id"`
	State        string    `json:"state"`
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaperSubmission carries everything needed to register a paper.
type PaperSubmission struct {
	Title                 string `json:"title"`
	Abstract              string `json:"abstract"`
	FileSystemName        string `json:"file_system_name"`
	PublicLocation        string `json:"public_location"`
	HashAlgorithm         string `json:"hash_algorithm"`
	Hash                  string `json:"hash"`
	WorkflowID            string `json:"workflow_id"`
	ExternalContributorID string `json:"external_contributor_id"`
}

// Transition is one history entry.
type Transition struct {
	AssetAddress string    `json:"asset_address"`
	Seq          uint64    `json:"seq"`
	OldState     string    `json:"old_state"`
	NewState     string    `json:"new_state"`
	Action       string    `json:"action"`
	Actor        string    `json:"actor"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// TransitionResult is the outcome of applying one action.
type TransitionResult struct {
	State       string     `json:"state"`
	ReviewCount int        `json:"review_count"`
	Transition  Transition `json:"transition"`
}

// Event is one notification log entry.
type Event struct {
	Seq       uint64          `json:"seq"`
	Timestamp time.Time       `json:"timestamp"`
	Type      string          `json:"type"`
	EntityID  string          `json:"entity_id"`
	Payload   json.RawMessage `json:"payload"`
}

// APIError is a registry error response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("registry: %s (%s)", e.Message, e.Code)
}
