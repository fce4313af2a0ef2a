package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertImportBatch = `-- name: InsertImportBatch :exec
INSERT INTO import_batches (id, file_name, lines, accepted, rejected, inserted, updated, failed, imported_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type InsertImportBatchParams struct {
	ID         pgtype.UUID
	FileName   string
	Lines      int32
	Accepted   int32
	Rejected   int32
	Inserted   int32
	Updated    int32
	Failed     int32
	ImportedBy pgtype.Text
}

func (q *Queries) InsertImportBatch(ctx context.Context, arg InsertImportBatchParams) error {
	_, err := q.db.Exec(ctx, insertImportBatch,
		arg.ID,
		arg.FileName,
		arg.Lines,
		arg.Accepted,
		arg.Rejected,
		arg.Inserted,
		arg.Updated,
		arg.Failed,
		arg.ImportedBy,
	)
	return err
}

const listImportBatches = `-- name: ListImportBatches :many
SELECT id, file_name, lines, accepted, rejected, inserted, updated, failed, imported_by, created_at
FROM import_batches
ORDER BY created_at DESC
LIMIT $1
`

func (q *Queries) ListImportBatches(ctx context.Context, limit int32) ([]ImportBatch, error) {
	rows, err := q.db.Query(ctx, listImportBatches, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ImportBatch
	for rows.Next() {
		var i ImportBatch
		if err := rows.Scan(
			&i.ID,
			&i.FileName,
			&i.Lines,
			&i.Accepted,
			&i.Rejected,
			&i.Inserted,
			&i.Updated,
			&i.Failed,
			&i.ImportedBy,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const resetImportBatches = `-- name: ResetImportBatches :exec
DELETE FROM import_batches
`

func (q *Queries) ResetImportBatches(ctx context.Context) error {
	_, err := q.db.Exec(ctx, resetImportBatches)
	return err
}
