package chats

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/llm"
	"dealscope-backend/internal/shared/server/middleware"
	"dealscope-backend/internal/shared/server/respond"
)

// fallbackReply is shown when the model returns nothing usable.
const fallbackReply = "Sorry, I couldn't come up with a response. Please try again."

// Handler wires HTTP handlers to the chats service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/chat/messages", h.sendMessage)
	rg.PUT("/chats/:id", h.saveSession)
	rg.GET("/chats", h.listSessions)
}

type sendMessageRequest struct {
	Session           ChatSession `json:"session"`
	Text              string      `json:"text"`
	Image             *Attachment `json:"image,omitempty"`
	ExtendedReasoning bool        `json:"extendedReasoning"`
}

type sendMessageResponse struct {
	Session ChatSession `json:"session"`
	Reply   ChatMessage `json:"reply"`
}

func (h *Handler) sendMessage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if req.Text == "" && req.Image == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "message text or image is required", nil)
		return
	}

	session, reply, err := h.Svc.SendMessage(c.Request.Context(), userID, req.Session, req.Text, req.Image, req.ExtendedReasoning)
	if err != nil {
		if errors.Is(err, llm.ErrEmptyResponse) {
			reply = ChatMessage{Role: RoleModel, Text: fallbackReply}
			respond.OK(c, sendMessageResponse{Session: session, Reply: reply})
			return
		}
		respond.Error(c, http.StatusBadGateway, "model_error", "The assistant is unavailable right now. Please try again.", nil)
		return
	}

	c.Set("sessionId", session.ID)
	respond.OK(c, sendMessageResponse{Session: session, Reply: reply})
}

func (h *Handler) saveSession(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var session ChatSession
	if err := c.ShouldBindJSON(&session); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid session body", nil)
		return
	}
	session.ID = c.Param("id")

	if err := h.Svc.SaveSession(userID, session); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}

	c.Set("sessionId", session.ID)
	respond.JSON(c, http.StatusAccepted, gin.H{"scheduled": true})
}

func (h *Handler) listSessions(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	limit := 20
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	sessions, err := h.Svc.List(c.Request.Context(), userID, limit)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list chats", nil)
		return
	}

	respond.OK(c, sessions)
}
