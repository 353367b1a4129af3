// Package auth_repo provides PostgreSQL storage for workspace users.
package auth_repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"fakturo/internal/core/apperror"
	"fakturo/internal/core/id"
	"fakturo/internal/domain/auth"
	"fakturo/internal/infrastructure/storage/postgres"
)

var sq = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

const usersTable = "users"

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	columns []string
}

var _ auth.UserRepository = (*UserRepo)(nil)

// NewUserRepo creates a PostgreSQL user repository.
func NewUserRepo() *UserRepo {
	return &UserRepo{
		columns: postgres.ExtractDBColumns[auth.User](),
	}
}

func (r *UserRepo) querier(ctx context.Context) postgres.Querier {
	return postgres.MustGetTxManager(ctx).GetQuerier(ctx)
}

// Create inserts a new user. Emails are stored lowercase and unique per
// workspace database.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	user.Email = strings.ToLower(user.Email)

	values := postgres.StructToMap(user)
	query, args, err := sq.Insert(usersTable).SetMap(values).ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build user insert: %w", err))
	}
	if _, err := r.querier(ctx).Exec(ctx, query, args...); err != nil {
		return postgres.MapConstraintError(err, "user", "email", user.Email)
	}

	return r.replaceRoles(ctx, user.ID, user.Roles)
}

// GetByID retrieves a user by ID with roles loaded.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	return r.findOne(ctx, squirrel.Eq{"id": userID}, userID.String())
}

// GetByEmail retrieves a user by email with roles loaded.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return r.findOne(ctx, squirrel.Eq{"email": strings.ToLower(email)}, email)
}

func (r *UserRepo) findOne(ctx context.Context, cond squirrel.Sqlizer, key string) (*auth.User, error) {
	query, args, err := sq.Select(r.columns...).From(usersTable).Where(cond).ToSql()
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("build user select: %w", err))
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.querier(ctx), &user, query, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, apperror.NewInternal(fmt.Errorf("get user: %w", err))
	}

	roles, err := r.loadRoles(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	user.Roles = roles
	return &user, nil
}

// Update saves user fields and replaces the role set.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	user.UpdatedAt = time.Now()

	values := postgres.StructToMap(user)
	delete(values, "id")
	delete(values, "created_at")

	query, args, err := sq.Update(usersTable).
		SetMap(values).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build user update: %w", err))
	}

	tag, err := r.querier(ctx).Exec(ctx, query, args...)
	if err != nil {
		return postgres.MapConstraintError(err, "user", "email", user.Email)
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}

	return r.replaceRoles(ctx, user.ID, user.Roles)
}

// Exists checks whether a user with the email exists.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	query, args, err := sq.Select("1").
		From(usersTable).
		Where(squirrel.Eq{"email": strings.ToLower(email)}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("build user exists: %w", err))
	}

	var one int
	err = r.querier(ctx).QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, apperror.NewInternal(fmt.Errorf("check user exists: %w", err))
	}
	return true, nil
}

func (r *UserRepo) loadRoles(ctx context.Context, userID id.ID) ([]string, error) {
	roles := []string{}
	err := pgxscan.Select(ctx, r.querier(ctx), &roles,
		`SELECT role FROM user_roles WHERE user_id = $1 ORDER BY role`, userID)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("load user roles: %w", err))
	}
	return roles, nil
}

// replaceRoles rewrites the user's role set to match the given list.
func (r *UserRepo) replaceRoles(ctx context.Context, userID id.ID, roles []string) error {
	q := r.querier(ctx)

	if _, err := q.Exec(ctx, `DELETE FROM user_roles WHERE user_id = $1`, userID); err != nil {
		return apperror.NewInternal(fmt.Errorf("clear user roles: %w", err))
	}
	if len(roles) == 0 {
		return nil
	}

	insert := sq.Insert("user_roles").Columns("user_id", "role")
	for _, role := range roles {
		insert = insert.Values(userID, role)
	}
	query, args, err := insert.ToSql()
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("build role insert: %w", err))
	}
	if _, err := q.Exec(ctx, query, args...); err != nil {
		return apperror.NewInternal(fmt.Errorf("insert user roles: %w", err))
	}
	return nil
}
