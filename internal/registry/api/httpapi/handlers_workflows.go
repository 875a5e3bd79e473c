package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/smartpublish/registry/internal/registry/domain/workflow"
)

type createWorkflowRequest struct {
	Name string `json:"name"`
}

// CreateWorkflow registers a named workflow with the caller as admin.
func (h *Handler) CreateWorkflow(c *gin.Context) {
	var req createWorkflowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	record, err := h.Workflows.CreateWorkflow(c.Request.Context(), workflow.CreateWorkflowInput{
		Name:           req.Name,
		CallerIdentity: callerIdentity(c),
	})
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toWorkflowResponse(record))
}

// GetWorkflow fetches a workflow definition.
func (h *Handler) GetWorkflow(c *gin.Context) {
	record, err := h.Workflows.GetWorkflow(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, toWorkflowResponse(record))
}

type assignRoleRequest struct {
	Identity string `json:"identity"`
	Role     string `json:"role"`
}

// AssignRole grants a workflow role. Admin only.
func (h *Handler) AssignRole(c *gin.Context) {
	var req assignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		renderValidation(c, err)
		return
	}

	role, err := workflow.RoleFromLabel(req.Role)
	if err != nil {
		renderError(c, err)
		return
	}

	err = h.Workflows.AssignRole(c.Request.Context(), c.Param("id"), req.Identity, role, callerIdentity(c))
	if err != nil {
		renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "granted"})
}

// FindAssetsByState lists workflow assets currently in the queried state.
func (h *Handler) FindAssetsByState(c *gin.Context) {
	state, err := workflow.StateFromLabel(c.Query("state"))
	if err != nil {
		renderError(c, err)
		return
	}

	addresses, err := h.Workflows.FindAssetsByState(c.Request.Context(), c.Param("id"), state)
	if err != nil {
		renderError(c, err)
		return
	}
	if addresses == nil {
		addresses = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"assets": addresses})
}
