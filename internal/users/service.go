package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// EnsureProfile persists the identity after a real sign-in: first sight
// creates the profile with derived initials, later sign-ins touch the
// last-login timestamp.
func (s *Service) EnsureProfile(ctx context.Context, user UserProfile) error {
	if s == nil || s.Repo == nil {
		return errors.New("users service not configured")
	}
	if strings.TrimSpace(user.UID) == "" {
		return errors.New("user uid is required")
	}

	if _, err := s.Repo.GetByUID(ctx, user.UID); err == nil {
		return s.Repo.TouchLastLogin(ctx, user.UID)
	} else if !errors.Is(err, ErrNotFound) {
		return err
	}

	if user.Initials == "" {
		user.Initials = DeriveInitials(user.DisplayName)
	}
	return s.Repo.Upsert(ctx, user)
}

func (s *Service) GetByUID(ctx context.Context, uid string) (UserProfile, error) {
	if s == nil || s.Repo == nil {
		return UserProfile{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(uid) == "" {
		return UserProfile{}, errors.New("user uid is required")
	}
	return s.Repo.GetByUID(ctx, uid)
}

// DeriveInitials builds up to two uppercase initials from a display name.
func DeriveInitials(displayName string) string {
	fields := strings.Fields(displayName)
	if len(fields) == 0 {
		return ""
	}
	initials := string([]rune(fields[0])[0:1])
	if len(fields) > 1 {
		initials += string([]rune(fields[len(fields)-1])[0:1])
	}
	return strings.ToUpper(initials)
}
