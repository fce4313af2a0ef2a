package database

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type StudentResult struct {
	ID          int32
	IndexNumber string
	FullName    string
	Course      string
	Score       int32
	Grade       pgtype.Text
	ImportID    pgtype.UUID
	CreatedAt   pgtype.Timestamptz
	UpdatedAt   pgtype.Timestamptz
}

type User struct {
	ID           int32
	Username     string
	Email        string
	PasswordHash string
	FullName     string
	Role         string
	CreatedAt    pgtype.Timestamptz
	LastLogin    pgtype.Timestamptz
}

type ImportBatch struct {
	ID         pgtype.UUID
	FileName   string
	Lines      int32
	Accepted   int32
	Rejected   int32
	Inserted   int32
	Updated    int32
	Failed     int32
	ImportedBy pgtype.Text
	CreatedAt  pgtype.Timestamptz
}
