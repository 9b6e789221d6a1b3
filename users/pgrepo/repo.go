// Package pgrepo implements the users.UserRepo interface on PostgreSQL.
package pgrepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrsteele09/go-blog-server/users"
)

var _ users.UserRepo = (*UserRepo)(nil)

const userColumns = `id, name, username, email, password_hash, providers, roles, bio, avatar, verified, created_at, updated_at`

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	return ur.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (ur *UserRepo) GetByUsername(ctx context.Context, username string) (*users.User, error) {
	return ur.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
}

func (ur *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	return ur.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (ur *UserRepo) Create(ctx context.Context, user *users.User) (*users.User, error) {
	id := user.ID
	if id == "" {
		id = uuid.New().String()
	}
	roles := user.Roles
	if len(roles) == 0 {
		roles = []users.RoleType{users.RoleReader}
	}

	providers, err := json.Marshal(user.Providers)
	if err != nil {
		return nil, fmt.Errorf("[UserRepo.Create] marshal providers: %w", err)
	}

	now := time.Now().UTC()
	row := ur.pool.QueryRow(ctx, `
		INSERT INTO users (id, name, username, email, password_hash, providers, roles, bio, avatar, verified, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+userColumns,
		id, user.Name, user.Username, user.Email, user.PasswordHash, providers, rolesToText(roles), user.Bio, user.Avatar, user.Verified, now)

	created, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("[UserRepo.Create] insert user: %w", err)
	}
	return created, nil
}

func (ur *UserRepo) Update(ctx context.Context, user *users.User) (*users.User, error) {
	providers, err := json.Marshal(user.Providers)
	if err != nil {
		return nil, fmt.Errorf("[UserRepo.Update] marshal providers: %w", err)
	}

	row := ur.pool.QueryRow(ctx, `
		UPDATE users
		SET name = $2, username = $3, email = $4, password_hash = $5, providers = $6,
		    roles = $7, bio = $8, avatar = $9, verified = $10, updated_at = $11
		WHERE id = $1
		RETURNING `+userColumns,
		user.ID, user.Name, user.Username, user.Email, user.PasswordHash, providers,
		rolesToText(user.Roles), user.Bio, user.Avatar, user.Verified, time.Now().UTC())

	updated, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("[UserRepo.Update] update user: %w", err)
	}
	return updated, nil
}

func (ur *UserRepo) getOne(ctx context.Context, query string, arg any) (*users.User, error) {
	user, err := scanUser(ur.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("[UserRepo] query user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		user      users.User
		providers []byte
		roles     []string
	)
	err := row.Scan(&user.ID, &user.Name, &user.Username, &user.Email, &user.PasswordHash,
		&providers, &roles, &user.Bio, &user.Avatar, &user.Verified, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if len(providers) > 0 {
		if err := json.Unmarshal(providers, &user.Providers); err != nil {
			return nil, fmt.Errorf("unmarshal providers: %w", err)
		}
	}
	for _, r := range roles {
		user.Roles = append(user.Roles, users.RoleType(r))
	}
	return &user, nil
}

func rolesToText(roles []users.RoleType) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		out = append(out, string(r))
	}
	return out
}
