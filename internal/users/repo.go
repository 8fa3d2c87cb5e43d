package users

import "context"

var ErrNotFound = errNotFound{}

type errNotFound struct{}

func (errNotFound) Error() string { return "user not found" }

type Repo interface {
	Upsert(ctx context.Context, user UserProfile) error
	GetByUID(ctx context.Context, uid string) (UserProfile, error)
	GetByEmail(ctx context.Context, email string) (UserProfile, error)
	TouchLastLogin(ctx context.Context, uid string) error
}
