package reading

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/medassist/assistant-api/internal/middleware"
	"github.com/medassist/assistant-api/internal/model"
	"github.com/medassist/assistant-api/internal/service/health"
	apperrors "github.com/medassist/assistant-api/pkg/errors"
	"github.com/medassist/assistant-api/pkg/httputil"
)

type Handler struct {
	service *health.Service
}

func NewHandler(service *health.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	g := r.Group("/readings")
	{
		g.GET("", h.List)
		g.POST("", h.Record)
	}
}

type readingResponse struct {
	*model.HealthReading
	Level model.PulseLevel `json:"level,omitempty"`
}

func (h *Handler) Record(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	var req model.RecordReadingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondWithError(c, apperrors.NewValidation("invalid request body", err))
		return
	}

	reading, err := h.service.Record(c.Request.Context(), userID, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithCreated(c, h.annotate(reading))
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	readings, err := h.service.List(c.Request.Context(), userID, c.Query("type"), limit)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	out := make([]readingResponse, 0, len(readings))
	for _, r := range readings {
		out = append(out, h.annotate(r))
	}
	httputil.RespondWithSuccess(c, out)
}

func (h *Handler) annotate(r *model.HealthReading) readingResponse {
	resp := readingResponse{HealthReading: r}
	if level, ok := h.service.ClassifyReading(r); ok {
		resp.Level = level
	}
	return resp
}
