package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	sharedauth "dealscope-backend/internal/shared/auth"
	"dealscope-backend/internal/shared/telemetry"
	"dealscope-backend/internal/users"
)

// Typed failures mapped to user-facing guidance by the handler.
var (
	ErrEmailInUse         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrInvalidEmail       = errors.New("invalid email address")
)

// EmailService implements email/password registration and login on top of
// the users repository.
type EmailService struct {
	Repo     users.Repo
	Registry *Registry
}

// NewEmailService builds an EmailService.
func NewEmailService(repo users.Repo, registry *Registry) *EmailService {
	return &EmailService{Repo: repo, Registry: registry}
}

// Register creates an account and returns a signed session token.
func (s *EmailService) Register(ctx context.Context, email, password string) (string, users.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", users.UserProfile{}, ErrInvalidEmail
	}
	if len(password) < 8 {
		return "", users.UserProfile{}, ErrWeakPassword
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return "", users.UserProfile{}, ErrEmailInUse
	} else if !errors.Is(err, users.ErrNotFound) {
		return "", users.UserProfile{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", users.UserProfile{}, err
	}

	displayName := strings.SplitN(email, "@", 2)[0]
	profile := users.UserProfile{
		UID:          "email:" + uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		Initials:     users.DeriveInitials(displayName),
		PasswordHash: string(hash),
	}
	if err := s.Repo.Upsert(ctx, profile); err != nil {
		return "", users.UserProfile{}, err
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return "", users.UserProfile{}, err
	}
	if s.Registry != nil {
		s.Registry.Publish(Event{Type: EventSignedIn, User: profile})
	}
	return token, profile, nil
}

// Login verifies credentials and returns a signed session token.
func (s *EmailService) Login(ctx context.Context, email, password string) (string, users.UserProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	profile, err := s.Repo.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		return "", users.UserProfile{}, ErrInvalidCredentials
	}
	if err != nil {
		return "", users.UserProfile{}, err
	}
	if profile.PasswordHash == "" {
		return "", users.UserProfile{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(password)) != nil {
		return "", users.UserProfile{}, ErrInvalidCredentials
	}

	if err := s.Repo.TouchLastLogin(ctx, profile.UID); err != nil {
		telemetry.Warn("auth.touch_last_login_failed", map[string]any{
			"uid":   profile.UID,
			"error": err.Error(),
		})
	}

	token, err := s.issueToken(profile)
	if err != nil {
		return "", users.UserProfile{}, err
	}
	if s.Registry != nil {
		s.Registry.Publish(Event{Type: EventSignedIn, User: profile})
	}
	return token, profile, nil
}

// ResetPassword issues a reset request. The response never reveals whether
// the address is registered.
func (s *EmailService) ResetPassword(ctx context.Context, email string) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := s.Repo.GetByEmail(ctx, email); err != nil {
		return
	}
	// Delivery is handled out of band; record the request for the operator.
	telemetry.Info("auth.password_reset_requested", map[string]any{"email": email})
}

// SignOut publishes the signed-out event. Tokens are stateless; the client
// discards its copy.
func (s *EmailService) SignOut() {
	if s.Registry != nil {
		s.Registry.Publish(Event{Type: EventSignedOut})
	}
}

func (s *EmailService) issueToken(profile users.UserProfile) (string, error) {
	return sharedauth.SignJWT(sharedauth.Claims{
		Sub:     profile.UID,
		Email:   profile.Email,
		Name:    profile.DisplayName,
		Picture: profile.PhotoURL,
	})
}
