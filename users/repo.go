package users

import "context"

// UserRepo is the user directory consumed by the auth service. Lookups return
// (nil, nil) when no user matches, so callers can distinguish "absent" from an
// unreachable directory.
type UserRepo interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	Create(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User) (*User, error)
}
