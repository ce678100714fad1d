package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/musiccompanion/apiserver/types"
)

const userColumns = `id, name, email, password_hash, is_admin, is_banned, ban_reason, banned_at, banned_by, created_at, updated_at`

// UserRepository handles persistence for users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func scanUser(row rowScanner) (types.User, error) {
	var user types.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.IsAdmin,
		&user.IsBanned,
		&user.BanReason,
		&user.BannedAt,
		&user.BannedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

// GetActiveByID loads a user that is not banned. Banned users are
// reported as ErrNotFound.
func (r *UserRepository) GetActiveByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE id = $1 AND is_banned = FALSE`
	return scanUser(r.db.QueryRowContext(ctx, query, id))
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, query, email))
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	now := dbNow()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = now
	user.UpdatedAt = now

	const query = `
		INSERT INTO users (id, name, email, password_hash, is_admin, is_banned, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
		user.IsAdmin,
		user.IsBanned,
		user.CreatedAt,
		user.UpdatedAt,
	); err != nil {
		return types.User{}, mapWriteError(err)
	}
	return user, nil
}

// List returns users matching filter, newest first.
func (r *UserRepository) List(ctx context.Context, filter types.UserFilter) ([]types.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	var args []any
	if filter.Banned != nil {
		query += ` WHERE is_banned = $1`
		args = append(args, *filter.Banned)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]types.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// Ban marks the user as banned in a single statement.
func (r *UserRepository) Ban(ctx context.Context, id uuid.UUID, reason *string, bannedBy uuid.UUID) (types.User, error) {
	now := dbNow()
	const query = `
		UPDATE users
		SET is_banned = TRUE,
			ban_reason = $1,
			banned_at = $2,
			banned_by = $3,
			updated_at = $2
		WHERE id = $4
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, reason, now, bannedBy, id))
}

// Unban clears the ban flag and metadata whether or not the user was banned.
func (r *UserRepository) Unban(ctx context.Context, id uuid.UUID) (types.User, error) {
	const query = `
		UPDATE users
		SET is_banned = FALSE,
			ban_reason = NULL,
			banned_at = NULL,
			banned_by = NULL,
			updated_at = $1
		WHERE id = $2
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, dbNow(), id))
}

func (r *UserRepository) SetAdmin(ctx context.Context, email string, isAdmin bool) (types.User, error) {
	const query = `
		UPDATE users
		SET is_admin = $1,
			updated_at = $2
		WHERE email = $3
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, query, isAdmin, dbNow(), email))
}

// Counts returns the total number of users and how many are banned.
func (r *UserRepository) Counts(ctx context.Context) (total, banned int, err error) {
	const query = `SELECT COUNT(1), COUNT(1) FILTER (WHERE is_banned) FROM users`
	err = r.db.QueryRowContext(ctx, query).Scan(&total, &banned)
	return total, banned, err
}
