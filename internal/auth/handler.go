package auth

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dealscope-backend/internal/shared/server/respond"
	"dealscope-backend/internal/users"
)

// Handler exposes email/password and demo auth over HTTP.
type Handler struct {
	Email *EmailService
}

// NewHandler constructs a Handler.
func NewHandler(email *EmailService) *Handler {
	return &Handler{Email: email}
}

// RegisterRoutes attaches email and demo auth routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/auth/register", h.register)
	rg.POST("/auth/login", h.login)
	rg.POST("/auth/reset", h.reset)
	rg.POST("/auth/signout", h.signOut)
	rg.POST("/auth/demo", h.demo)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token string        `json:"token"`
	User  publicProfile `json:"user"`
	Demo  bool          `json:"demo,omitempty"`
}

type publicProfile struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
	Initials    string `json:"initials,omitempty"`
}

func toPublic(p users.UserProfile) publicProfile {
	return publicProfile{
		UID:         p.UID,
		Email:       p.Email,
		DisplayName: p.DisplayName,
		PhotoURL:    p.PhotoURL,
		Initials:    p.Initials,
	}
}

func (h *Handler) register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	token, profile, err := h.Email.Register(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidEmail):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Please enter a valid email address.", nil)
		case errors.Is(err, ErrWeakPassword):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Password must be at least 8 characters.", nil)
		case errors.Is(err, ErrEmailInUse):
			respond.Error(c, http.StatusConflict, "email_in_use", "An account with this email already exists.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Could not create your account. Please try again.", nil)
		}
		return
	}

	respond.OK(c, sessionResponse{Token: token, User: toPublic(profile)})
}

func (h *Handler) login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	token, profile, err := h.Email.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			respond.Error(c, http.StatusUnauthorized, "invalid_credentials", "Incorrect email or password.", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Could not sign you in. Please try again.", nil)
		}
		return
	}

	respond.OK(c, sessionResponse{Token: token, User: toPublic(profile)})
}

func (h *Handler) reset(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "email is required", nil)
		return
	}

	h.Email.ResetPassword(c.Request.Context(), req.Email)
	// Always acknowledge so the endpoint cannot be used to probe addresses.
	respond.OK(c, gin.H{"sent": true})
}

func (h *Handler) signOut(c *gin.Context) {
	h.Email.SignOut()
	respond.OK(c, gin.H{"signedOut": true})
}

func (h *Handler) demo(c *gin.Context) {
	token, err := IssueDemoToken()
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to issue token", nil)
		return
	}
	h.Email.Registry.Publish(Event{Type: EventSignedIn, User: DemoProfile(), Demo: true})
	respond.OK(c, sessionResponse{Token: token, User: toPublic(DemoProfile()), Demo: true})
}
