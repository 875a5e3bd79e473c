package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/registry/domain/paper"
	"github.com/smartpublish/registry/internal/registry/domain/workflow"
)

type createPaperRequest struct {
	Title                 string `json:"title"`
	Abstract              string `json:"abstract"`
	FileSystemName        string `json:"file_system_name"`
	PublicLocation        string `json:"public_location"`
	HashAlgorithm         string `json:"hash_algorithm"`
	Hash                  string `json:"hash"`
	WorkflowID            string `json:"workflow_id"`
	ExternalContributorID string `json:"external_contributor_id"`
}

// CreatePaper registers a paper with its first file and author.
func (h *Handler) CreatePaper(c *gin.Context) {
	var req createPaperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	created, err := h.Factory.CreatePaper(c.Request.Context(), paper.CreatePaperInput{
		Title:                 req.Title,
		Abstract:              req.Abstract,
		FileSystemName:        req.FileSystemName,
		PublicLocation:        req.PublicLocation,
		HashAlgorithm:         req.HashAlgorithm,
		Hash:                  req.Hash,
		WorkflowID:            req.WorkflowID,
		ExternalContributorID: req.ExternalContributorID,
		CallerIdentity:        callerIdentity(c),
	})
	if err != nil {
		renderError(c, err)
		return
	}

	view, err := h.Factory.GetPaperView(c.Request.Context(), created.Address)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPaperResponse(view))
}

// GetPaper fetches a paper with its lifecycle state.
func (h *Handler) GetPaper(c *gin.Context) {
	view, err := h.Factory.GetPaperView(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaperResponse(view))
}

// GetPaperFile fetches one content file descriptor by index.
func (h *Handler) GetPaperFile(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		renderError(c, apperrors.New(apperrors.CodeNotFound, "file index must be an integer"))
		return
	}

	record, err := h.Factory.GetPaper(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}

	file, err := record.GetFile(index)
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toFileResponse(file))
}

// ListPapersByCreator lists addresses of papers the queried identity created.
func (h *Handler) ListPapersByCreator(c *gin.Context) {
	creator := c.Query("creator")
	if creator == "" {
		renderError(c, apperrors.New(apperrors.CodeValidation, "creator query parameter is required"))
		return
	}

	addresses, err := h.Factory.GetAssetsByCreator(c.Request.Context(), creator)
	if err != nil {
		renderError(c, err)
		return
	}
	if addresses == nil {
		addresses = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"assets": addresses})
}

type applyTransitionRequest struct {
	Action string `json:"action"`
}

type applyTransitionResponse struct {
	State       string             `json:"state"`
	ReviewCount int                `json:"review_count"`
	Transition  TransitionResponse `json:"transition"`
}

// ApplyTransition performs a workflow action on the paper as the caller.
func (h *Handler) ApplyTransition(c *gin.Context) {
	var req applyTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	action, err := workflow.ActionFromLabel(req.Action)
	if err != nil {
		renderError(c, err)
		return
	}

	record, entry, err := h.Workflows.Apply(c.Request.Context(), c.Param("address"), action, callerIdentity(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, applyTransitionResponse{
		State:       record.State.Label(),
		ReviewCount: record.ReviewCount,
		Transition:  toTransitionResponse(entry),
	})
}

// ListTransitions returns a paper's transition history in order.
func (h *Handler) ListTransitions(c *gin.Context) {
	entries, err := h.Workflows.History(c.Request.Context(), c.Param("address"))
	if err != nil {
		renderError(c, err)
		return
	}

	out := make([]TransitionResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toTransitionResponse(entry))
	}
	c.JSON(http.StatusOK, gin.H{"transitions": out})
}
