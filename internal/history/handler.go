package history

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/shared/server/middleware"
	"dealscope-backend/internal/shared/server/respond"
)

// Handler exposes cross-feature history operations.
type Handler struct {
	Store *Store
}

// NewHandler constructs a Handler.
func NewHandler(store *Store) *Handler {
	return &Handler{Store: store}
}

// RegisterRoutes attaches history routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.DELETE("/history", h.clearAll)
}

func (h *Handler) clearAll(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	if err := h.Store.ClearAll(c.Request.Context(), userID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to clear history", nil)
		return
	}

	respond.OK(c, gin.H{"cleared": true})
}
