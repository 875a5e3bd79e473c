// Package sdk provides the client-side library for the paper registry's HTTP
// API. A Client asserts one caller identity on every request.
package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// IdentityHeader carries the caller's asserted identity.
const IdentityHeader = "X-Caller-Identity"

// Client talks to one registry server as one identity.
type Client struct {
	baseURL    string
	identity   string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New creates a client for the registry at baseURL acting as identity.
func New(baseURL, identity string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		identity:   identity,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateContributor registers a new contributor for this client's identity.
func (c *Client) CreateContributor(ctx context.Context, externalID string) (Contributor, error) {
	var out Contributor
	err := c.do(ctx, http.MethodPost, "/v1/contributors", map[string]string{"external_id": externalID}, &out)
	return out, err
}

// ResolveContributor returns the contributor for an external id, creating one
// when none exists. created reports whether this call inserted the record.
func (c *Client) ResolveContributor(ctx context.Context, externalID string) (Contributor, bool, error) {
	var out struct {
		Contributor Contributor `json:"contributor"`
		Created     bool        `json:"created"`
	}
	err := c.do(ctx, http.MethodPost, "/v1/contributors/resolve", map[string]string{"external_id": externalID}, &out)
	return out.Contributor, out.Created, err
}

// GetContributor fetches a contributor by registry id.
func (c *Client) GetContributor(ctx context.Context, contributorID string) (Contributor, error) {
	var out Contributor
	err := c.do(ctx, http.MethodGet, "/v1/contributors/"+url.PathEscape(contributorID), nil, &out)
	return out, err
}

// CreateWorkflow registers a named workflow with this identity as admin.
func (c *Client) CreateWorkflow(ctx context.Context, name string) (Workflow, error) {
	var out Workflow
	err := c.do(ctx, http.MethodPost, "/v1/workflows", map[string]string{"name": name}, &out)
	return out, err
}

// GetWorkflow fetches a workflow definition.
func (c *Client) GetWorkflow(ctx context.Context, workflowID string) (Workflow, error) {
	var out Workflow
	err := c.do(ctx, http.MethodGet, "/v1/workflows/"+url.PathEscape(workflowID), nil, &out)
	return out, err
}

// AssignRole grants a workflow role to an identity. Admin only.
func (c *Client) AssignRole(ctx context.Context, workflowID, identity, role string) error {
	path := "/v1/workflows/" + url.PathEscape(workflowID) + "/roles"
	return c.do(ctx, http.MethodPost, path, map[string]string{"identity": identity, "role": role}, nil)
}

// AssetsByState lists workflow assets currently in the given state.
func (c *Client) AssetsByState(ctx context.Context, workflowID, state string) ([]string, error) {
	var out struct {
		Assets []string `json:"assets"`
	}
	path := "/v1/workflows/" + url.PathEscape(workflowID) + "/assets?state=" + url.QueryEscape(state)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Assets, err
}

// CreatePaper registers a paper with its first file and author.
func (c *Client) CreatePaper(ctx context.Context, submission PaperSubmission) (Paper, error) {
	var out Paper
	err := c.do(ctx, http.MethodPost, "/v1/papers", submission, &out)
	return out, err
}

// GetPaper fetches a paper with its lifecycle state.
func (c *Client) GetPaper(ctx context.Context, address string) (Paper, error) {
	var out Paper
	err := c.do(ctx, http.MethodGet, "/v1/papers/"+url.PathEscape(address), nil, &out)
	return out, err
}

// GetPaperFile fetches one content file descriptor by index.
func (c *Client) GetPaperFile(ctx context.Context, address string, index int) (File, error) {
	var out File
	path := "/v1/papers/" + url.PathEscape(address) + "/files/" + strconv.Itoa(index)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out, err
}

// PapersByCreator lists addresses of papers the identity created.
func (c *Client) PapersByCreator(ctx context.Context, creator string) ([]string, error) {
	var out struct {
		Assets []string `json:"assets"`
	}
	err := c.do(ctx, http.MethodGet, "/v1/papers?creator="+url.QueryEscape(creator), nil, &out)
	return out.Assets, err
}

// ApplyTransition performs a workflow action on a paper as this identity.
func (c *Client) ApplyTransition(ctx context.Context, address, action string) (TransitionResult, error) {
	var out TransitionResult
	path := "/v1/papers/" + url.PathEscape(address) + "/transitions"
	err := c.do(ctx, http.MethodPost, path, map[string]string{"action": action}, &out)
	return out, err
}

// ListTransitions returns a paper's history in sequence order.
func (c *Client) ListTransitions(ctx context.Context, address string) ([]Transition, error) {
	var out struct {
		Transitions []Transition `json:"transitions"`
	}
	path := "/v1/papers/" + url.PathEscape(address) + "/transitions"
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Transitions, err
}

// ListEvents returns a page of the notification log after the given sequence.
func (c *Client) ListEvents(ctx context.Context, afterSeq uint64, limit int) ([]Event, error) {
	var out struct {
		Events []Event `json:"events"`
	}
	path := fmt.Sprintf("/v1/events?after_seq=%d&limit=%d", afterSeq, limit)
	err := c.do(ctx, http.MethodGet, path, nil, &out)
	return out.Events, err
}

// do issues one JSON request and decodes the response into out when non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.identity != "" {
		req.Header.Set(IdentityHeader, c.identity)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call registry: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
