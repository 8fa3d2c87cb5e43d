package generations

import (
	"encoding/base64"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/server/middleware"
	"dealscope-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the generations service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches generation routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generations", h.generate)
	rg.GET("/generations", h.listGenerations)
}

type generateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspectRatio"`
	Mode        string `json:"mode"`
	RefImage    *struct {
		MIMEType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"refImage,omitempty"`
}

func (h *Handler) generate(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Prompt == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "prompt is required", nil)
		return
	}
	if req.AspectRatio != "" && !llm.ValidAspectRatio(req.AspectRatio) {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unsupported aspect ratio", nil)
		return
	}

	var refImage *llm.InlineData
	if req.RefImage != nil {
		data, err := base64.StdEncoding.DecodeString(req.RefImage.Data)
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid reference image", nil)
			return
		}
		refImage = &llm.InlineData{MIMEType: req.RefImage.MIMEType, Data: data}
	}

	record, err := h.Svc.Generate(c.Request.Context(), userID, req.Prompt, req.AspectRatio, req.Mode, refImage)
	if err != nil {
		respond.Error(c, http.StatusBadGateway, "model_error", "Could not generate an image right now. Please try again.", nil)
		return
	}
	if record == nil {
		// The model produced no image part; a valid outcome the client renders
		// as "failed to generate".
		respond.OK(c, gin.H{"generated": false})
		return
	}

	respond.OK(c, gin.H{"generated": true, "record": record})
}

func (h *Handler) listGenerations(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	records, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list generations", nil)
		return
	}

	respond.OK(c, records)
}
