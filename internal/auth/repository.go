package auth

import (
	"context"
	"fmt"
	"time"

	db "github.com/JonMunkholm/gradebook/internal/database"
	"github.com/jackc/pgx/v5/pgtype"
)

// UserRepository persists accounts.
type UserRepository interface {
	// Exists reports whether username or email is taken.
	Exists(ctx context.Context, username, email string) (bool, error)
	// Create stores a new account. Returns ErrUserExists on a unique violation.
	Create(ctx context.Context, nu NewUser, passwordHash string) (User, error)
	// ByUsername returns ErrUserNotFound if there is no such account.
	ByUsername(ctx context.Context, username string) (StoredUser, error)
	// TouchLogin records a successful login.
	TouchLogin(ctx context.Context, id int32) error
}

// PgRepository implements UserRepository on PostgreSQL.
type PgRepository struct {
	q *db.Queries
}

// NewPgRepository returns a repository using conn.
func NewPgRepository(conn db.DBTX) *PgRepository {
	return &PgRepository{q: db.New(conn)}
}

func (r *PgRepository) Exists(ctx context.Context, username, email string) (bool, error) {
	ok, err := r.q.UserExists(ctx, username, email)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return ok, nil
}

func (r *PgRepository) Create(ctx context.Context, nu NewUser, passwordHash string) (User, error) {
	row, err := r.q.InsertUser(ctx, db.InsertUserParams{
		Username:     nu.Username,
		Email:        nu.Email,
		PasswordHash: passwordHash,
		FullName:     nu.FullName,
	})
	if err != nil {
		if db.IsUniqueViolation(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("insert user: %w", err)
	}
	return fromRow(row).User, nil
}

func (r *PgRepository) ByUsername(ctx context.Context, username string) (StoredUser, error) {
	row, err := r.q.GetUserByUsername(ctx, username)
	if err != nil {
		if db.IsNoRows(err) {
			return StoredUser{}, ErrUserNotFound
		}
		return StoredUser{}, fmt.Errorf("get user: %w", err)
	}
	return fromRow(row), nil
}

func (r *PgRepository) TouchLogin(ctx context.Context, id int32) error {
	if err := r.q.TouchUserLogin(ctx, id); err != nil {
		return fmt.Errorf("touch login: %w", err)
	}
	return nil
}

func fromRow(row db.User) StoredUser {
	return StoredUser{
		User: User{
			ID:        row.ID,
			Username:  row.Username,
			Email:     row.Email,
			FullName:  row.FullName,
			Role:      row.Role,
			CreatedAt: row.CreatedAt.Time,
			LastLogin: timePtr(row.LastLogin),
		},
		PasswordHash: row.PasswordHash,
	}
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}
