// Package httpapi exposes the registry over HTTP. Callers authenticate by
// asserting an identity in the X-Caller-Identity header; the registry treats
// that identity as opaque and checks it against workflow role grants.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/smartpublish/registry/internal/platform/errors"
	"github.com/smartpublish/registry/internal/registry/event"
	"github.com/smartpublish/registry/internal/registry/service"
	"github.com/smartpublish/registry/internal/registry/storage"
)

// IdentityHeader carries the caller's asserted identity.
const IdentityHeader = "X-Caller-Identity"

// Handler bundles the services the HTTP surface exposes.
type Handler struct {
	Contributors *service.ContributorRegistry
	Factory      *service.AssetFactory
	Workflows    *service.PeerReviewWorkflow
	Events       storage.EventStore
	Bus          *event.Bus
}

// NewRouter builds the registry's HTTP routes.
func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	v1 := r.Group("/v1")
	{
		v1.POST("/contributors", h.CreateContributor)
		v1.POST("/contributors/resolve", h.ResolveContributor)
		v1.GET("/contributors/:id", h.GetContributor)

		v1.POST("/workflows", h.CreateWorkflow)
		v1.GET("/workflows/:id", h.GetWorkflow)
		v1.POST("/workflows/:id/roles", h.AssignRole)
		v1.GET("/workflows/:id/assets", h.FindAssetsByState)

		v1.POST("/papers", h.CreatePaper)
		v1.GET("/papers", h.ListPapersByCreator)
		v1.GET("/papers/:address", h.GetPaper)
		v1.GET("/papers/:address/files/:index", h.GetPaperFile)
		v1.POST("/papers/:address/transitions", h.ApplyTransition)
		v1.GET("/papers/:address/transitions", h.ListTransitions)

		v1.GET("/events", h.ListEvents)
		v1.GET("/events/stream", h.StreamEvents)
	}

	return r
}

// callerIdentity reads the asserted identity header.
func callerIdentity(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(IdentityHeader))
}

// renderError maps domain error codes onto HTTP statuses.
func renderError(c *gin.Context, err error) {
	code := apperrors.CodeOf(err)
	c.JSON(code.HTTPStatus(), gin.H{
		"error": err.Error(),
		"code":  string(code),
	})
}

func renderValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": err.Error(),
		"code":  string(apperrors.CodeValidation),
	})
}
