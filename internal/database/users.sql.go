package database

import (
	"context"
)

const userColumns = `id, username, email, password_hash, full_name, role, created_at, last_login`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Email,
		&i.PasswordHash,
		&i.FullName,
		&i.Role,
		&i.CreatedAt,
		&i.LastLogin,
	)
	return i, err
}

const insertUser = `-- name: InsertUser :one
INSERT INTO users (username, email, password_hash, full_name)
VALUES ($1, $2, $3, $4)
RETURNING ` + userColumns + `
`

type InsertUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	FullName     string
}

func (q *Queries) InsertUser(ctx context.Context, arg InsertUserParams) (User, error) {
	row := q.db.QueryRow(ctx, insertUser, arg.Username, arg.Email, arg.PasswordHash, arg.FullName)
	return scanUser(row)
}

const getUserByUsername = `-- name: GetUserByUsername :one
SELECT ` + userColumns + `
FROM users
WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByUsername, username)
	return scanUser(row)
}

const userExists = `-- name: UserExists :one
SELECT EXISTS (SELECT 1 FROM users WHERE username = $1 OR email = $2)
`

func (q *Queries) UserExists(ctx context.Context, username, email string) (bool, error) {
	row := q.db.QueryRow(ctx, userExists, username, email)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const touchUserLogin = `-- name: TouchUserLogin :exec
UPDATE users SET last_login = now() WHERE id = $1
`

func (q *Queries) TouchUserLogin(ctx context.Context, id int32) error {
	_, err := q.db.Exec(ctx, touchUserLogin, id)
	return err
}
