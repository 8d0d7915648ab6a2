package medication

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/medassist/assistant-api/internal/service/medication"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/httputil"
)

type Handler struct {
	service *medication.Service
}

func NewHandler(service *medication.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/medications")
	{
		g.GET("", h.List)
		g.GET("/:id", h.Get)
	}
}

// List returns the catalog, optionally filtered by a search term.
func (h *Handler) List(c *gin.Context) {
	term := c.Query("search")

	medications, err := h.service.Search(c.Request.Context(), term)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, medications)
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid medication id", err))
		return
	}

	med, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, med)
}
