package analyses

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/server/middleware"
	"dealscope-backend/internal/shared/server/respond"
)

const maxImageBytes = 8 << 20

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyses", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
}

func (h *Handler) analyze(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "product image is required", nil)
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "image too large", nil)
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes+1))
	if err != nil || len(image) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not read image", nil)
		return
	}
	if len(image) > maxImageBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "validation_error", "image too large", nil)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(image)
	}

	userContext := c.PostForm("context")

	result, err := h.Svc.Analyze(c.Request.Context(), userID, image, mimeType, userContext)
	if err != nil {
		switch {
		case errors.Is(err, llm.ErrEmptyResponse):
			respond.Error(c, http.StatusBadGateway, "model_empty", "The model returned no analysis. Please try again.", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "model_error", "Could not analyze this product right now. Please try again.", nil)
		}
		return
	}

	c.Set("analysisId", result.ID)
	respond.OK(c, result)
}

func (h *Handler) listAnalyses(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	results, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list analyses", nil)
		return
	}

	respond.OK(c, results)
}
