package users

import (
	"context"
	"strings"
	"sync"
	"time"
)

// MemoryRepo stores profiles in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu      sync.RWMutex
	byUID   map[string]UserProfile
	byEmail map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byUID:   make(map[string]UserProfile),
		byEmail: make(map[string]string),
	}
}

// Upsert stores the profile, preserving CreatedAt for existing users.
func (r *MemoryRepo) Upsert(ctx context.Context, user UserProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byUID[user.UID]; ok {
		user.CreatedAt = existing.CreatedAt
		if user.PasswordHash == "" {
			user.PasswordHash = existing.PasswordHash
		}
	} else if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.LastLoginAt.IsZero() {
		user.LastLoginAt = time.Now().UTC()
	}

	r.byUID[user.UID] = user
	if user.Email != "" {
		r.byEmail[strings.ToLower(user.Email)] = user.UID
	}
	return nil
}

// GetByUID returns a profile by its UID.
func (r *MemoryRepo) GetByUID(ctx context.Context, uid string) (UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return UserProfile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.byUID[uid]
	if !ok {
		return UserProfile{}, ErrNotFound
	}
	return user, nil
}

// GetByEmail returns a profile by email, case-insensitively.
func (r *MemoryRepo) GetByEmail(ctx context.Context, email string) (UserProfile, error) {
	if err := ctx.Err(); err != nil {
		return UserProfile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	uid, ok := r.byEmail[strings.ToLower(email)]
	if !ok {
		return UserProfile{}, ErrNotFound
	}
	return r.byUID[uid], nil
}

// TouchLastLogin updates the last-login timestamp.
func (r *MemoryRepo) TouchLastLogin(ctx context.Context, uid string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	user.LastLoginAt = time.Now().UTC()
	r.byUID[uid] = user
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
