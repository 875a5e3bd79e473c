package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/registry/event"
)

const maxEventPage = 1000

// ListEvents returns a page of the notification log after the given sequence.
func (h *Handler) ListEvents(c *gin.Context) {
	afterSeq, err := parseSeq(c.DefaultQuery("after_seq", "0"))
	if err != nil {
		renderError(c, err)
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 0 || limit > maxEventPage {
		renderError(c, apperrors.New(apperrors.CodeValidation, "limit must be between 0 and 1000"))
		return
	}

	events, err := h.Events.ListEvents(c.Request.Context(), afterSeq, limit)
	if err != nil {
		renderError(c, err)
		return
	}

	out := make([]EventResponse, 0, len(events))
	for _, evt := range events {
		out = append(out, toEventResponse(evt))
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

// StreamEvents replays the log from after_seq and then follows new events as
// server-sent events until the client disconnects.
func (h *Handler) StreamEvents(c *gin.Context) {
	afterSeq, err := parseSeq(c.DefaultQuery("after_seq", "0"))
	if err != nil {
		renderError(c, err)
		return
	}

	ctx := c.Request.Context()

	// Subscribe before replay so nothing between the two is lost; duplicates
	// are filtered by sequence below.
	live, cancel := h.Bus.Subscribe(ctx)
	defer cancel()

	lastSent := afterSeq
	for {
		page, err := h.Events.ListEvents(ctx, lastSent, maxEventPage)
		if err != nil {
			renderError(c, err)
			return
		}
		if len(page) == 0 {
			break
		}
		for _, evt := range page {
			writeSSE(c, evt)
			lastSent = evt.Seq
		}
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case evt, open := <-live:
			if !open {
				return false
			}
			if evt.Seq <= lastSent {
				return true
			}
			writeSSE(c, evt)
			lastSent = evt.Seq
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func writeSSE(c *gin.Context, evt event.Event) {
	body, err := json.Marshal(toEventResponse(evt))
	if err != nil {
		return
	}
	c.SSEvent(string(evt.Type), string(body))
}

func parseSeq(value string) (uint64, error) {
	seq, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, apperrors.New(apperrors.CodeValidation, "after_seq must be a non-negative integer")
	}
	return seq, nil
}
