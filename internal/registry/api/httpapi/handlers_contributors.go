package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartpublish/registry/internal/registry/domain/contributor"
)

type createContributorRequest struct {
	ExternalID string `json:"external_id"`
}

// CreateContributor registers a new contributor for the caller.
func (h *Handler) CreateContributor(c *gin.Context) {
	var req createContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	record, err := h.Contributors.Create(c.Request.Context(), contributor.CreateContributorInput{
		ExternalID:     req.ExternalID,
		CallerIdentity: callerIdentity(c),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toContributorResponse(record))
}

// ResolveContributor returns the contributor for an external id, creating one
// when none exists. Safe to call repeatedly.
func (h *Handler) ResolveContributor(c *gin.Context) {
	var req createContributorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	record, created, err := h.Contributors.GetOrCreate(c.Request.Context(), contributor.CreateContributorInput{
		ExternalID:     req.ExternalID,
		CallerIdentity: callerIdentity(c),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, ResolveContributorResponse{
		Contributor: toContributorResponse(record),
		Created:     created,
	})
}

// GetContributor fetches a contributor by registry id.
func (h *Handler) GetContributor(c *gin.Context) {
	record, err := h.Contributors.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toContributorResponse(record))
}
