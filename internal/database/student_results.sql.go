package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const studentResultColumns = `id, index_number, full_name, course, score, grade, import_id, created_at, updated_at`

func scanStudentResult(row interface{ Scan(...any) error }) (StudentResult, error) {
	var i StudentResult
	err := row.Scan(
		&i.ID,
		&i.IndexNumber,
		&i.FullName,
		&i.Course,
		&i.Score,
		&i.Grade,
		&i.ImportID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertStudentResult = `-- name: InsertStudentResult :exec
INSERT INTO student_results (index_number, full_name, course, score, grade, import_id)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertStudentResultParams struct {
	IndexNumber string
	FullName    string
	Course      string
	Score       int32
	Grade       pgtype.Text
	ImportID    pgtype.UUID
}

func (q *Queries) InsertStudentResult(ctx context.Context, arg InsertStudentResultParams) error {
	_, err := q.db.Exec(ctx, insertStudentResult,
		arg.IndexNumber,
		arg.FullName,
		arg.Course,
		arg.Score,
		arg.Grade,
		arg.ImportID,
	)
	return err
}

// xmax is zero for a freshly inserted tuple and non-zero when
// ON CONFLICT rewrote an existing one.
const upsertStudentResult = `-- name: UpsertStudentResult :one
INSERT INTO student_results (index_number, full_name, course, score, grade, import_id)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (index_number) DO UPDATE
SET full_name = EXCLUDED.full_name,
    course = EXCLUDED.course,
    score = EXCLUDED.score,
    grade = EXCLUDED.grade,
    import_id = EXCLUDED.import_id,
    updated_at = now()
RETURNING (xmax = 0) AS inserted
`

type UpsertStudentResultParams = InsertStudentResultParams

// UpsertStudentResult returns true when a new row was inserted.
func (q *Queries) UpsertStudentResult(ctx context.Context, arg UpsertStudentResultParams) (bool, error) {
	row := q.db.QueryRow(ctx, upsertStudentResult,
		arg.IndexNumber,
		arg.FullName,
		arg.Course,
		arg.Score,
		arg.Grade,
		arg.ImportID,
	)
	var inserted bool
	err := row.Scan(&inserted)
	return inserted, err
}

const getStudentResult = `-- name: GetStudentResult :one
SELECT ` + studentResultColumns + `
FROM student_results
WHERE index_number = $1
`

func (q *Queries) GetStudentResult(ctx context.Context, indexNumber string) (StudentResult, error) {
	row := q.db.QueryRow(ctx, getStudentResult, indexNumber)
	return scanStudentResult(row)
}

const listStudentResults = `-- name: ListStudentResults :many
SELECT ` + studentResultColumns + `
FROM student_results
ORDER BY index_number
`

func (q *Queries) ListStudentResults(ctx context.Context) ([]StudentResult, error) {
	rows, err := q.db.Query(ctx, listStudentResults)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []StudentResult
	for rows.Next() {
		i, err := scanStudentResult(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateStudentScore = `-- name: UpdateStudentScore :execrows
UPDATE student_results
SET score = $2, grade = $3, updated_at = now()
WHERE index_number = $1
`

type UpdateStudentScoreParams struct {
	IndexNumber string
	Score       int32
	Grade       pgtype.Text
}

func (q *Queries) UpdateStudentScore(ctx context.Context, arg UpdateStudentScoreParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateStudentScore, arg.IndexNumber, arg.Score, arg.Grade)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const deleteStudentResult = `-- name: DeleteStudentResult :execrows
DELETE FROM student_results
WHERE index_number = $1
`

func (q *Queries) DeleteStudentResult(ctx context.Context, indexNumber string) (int64, error) {
	result, err := q.db.Exec(ctx, deleteStudentResult, indexNumber)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const resetStudentResults = `-- name: ResetStudentResults :execrows
DELETE FROM student_results
`

func (q *Queries) ResetStudentResults(ctx context.Context) (int64, error) {
	result, err := q.db.Exec(ctx, resetStudentResults)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const countStudentResults = `-- name: CountStudentResults :one
SELECT COUNT(*) FROM student_results
`

func (q *Queries) CountStudentResults(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countStudentResults)
	var count int64
	err := row.Scan(&count)
	return count, err
}
