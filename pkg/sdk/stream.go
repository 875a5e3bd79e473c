package sdk

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Watch follows the registry's event stream, invoking fn for each event with
// Seq greater than afterSeq. It returns when the context is canceled, the
// server closes the stream, or fn returns an error.
func (c *Client) Watch(ctx context.Context, afterSeq uint64, fn func(Event) error) error {
	if fn == nil {
		return fmt.Errorf("watch callback is required")
	}

	path := fmt.Sprintf("/v1/events/stream?after_seq=%d", afterSeq)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	if c.identity != "" {
		req.Header.Set(IdentityHeader, c.identity)
	}

	// The default client's timeout would cut the stream short.
	streamClient := &http.Client{Transport: c.httpClient.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil || apiErr.Message == "" {
			apiErr.Message = resp.Status
		}
		return apiErr
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}

		// Tolerate both raw and JSON-quoted data payloads.
		raw := payload
		var quoted string
		if err := json.Unmarshal([]byte(payload), &quoted); err == nil {
			raw = quoted
		}

		var evt Event
		if err := json.Unmarshal([]byte(raw), &evt); err != nil {
			return fmt.Errorf("decode stream event: %w", err)
		}
		if err := fn(evt); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return nil
}
