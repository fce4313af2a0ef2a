package core

import (
	"context"
	"fmt"
	"time"

	db "github.com/JonMunkholm/gradebook/internal/database"
	"github.com/jackc/pgx/v5"
)

// Store is the persistence collaborator for student records.
type Store interface {
	// SaveRecord inserts rec. Returns ErrDuplicateKey if the index number exists.
	SaveRecord(ctx context.Context, rec StudentRecord) error
	// ListRecords returns all records ordered by index number.
	ListRecords(ctx context.Context) ([]StudentRecord, error)
	// GetRecord returns ErrNotFound if no record has indexNumber.
	GetRecord(ctx context.Context, indexNumber string) (StudentRecord, error)
	// UpdateScore returns ErrNotFound if no record has indexNumber.
	UpdateScore(ctx context.Context, indexNumber string, score int, grade Grade) error
	// DeleteRecord returns ErrNotFound if no record has indexNumber.
	DeleteRecord(ctx context.Context, indexNumber string) error
	// Reset removes every record and the import history.
	Reset(ctx context.Context) (int64, error)
	// SaveBatch writes records in one transaction. A record that fails is
	// reported in the outcome and does not affect the others.
	SaveBatch(ctx context.Context, records []StudentRecord, opts SaveOptions) (SaveOutcome, error)
	// RecordImport stores an import history entry.
	RecordImport(ctx context.Context, b ImportBatch) error
	// ListImports returns the latest import history entries, newest first.
	ListImports(ctx context.Context, limit int) ([]ImportBatch, error)
}

// SaveOptions control SaveBatch.
type SaveOptions struct {
	Mode     ImportMode
	ImportID string
}

// SaveOutcome counts what SaveBatch did.
type SaveOutcome struct {
	Inserted int
	Updated  int
	Failures []PersistFailure
}

// TxDB is a DBTX that can begin transactions. *pgxpool.Pool satisfies it.
type TxDB interface {
	DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PgStore implements Store on PostgreSQL.
type PgStore struct {
	pool TxDB
}

// NewPgStore returns a Store backed by pool.
func NewPgStore(pool TxDB) *PgStore {
	return &PgStore{pool: pool}
}

func (s *PgStore) SaveRecord(ctx context.Context, rec StudentRecord) error {
	err := db.New(s.pool).InsertStudentResult(ctx, insertParams(rec, ""))
	return mapStoreError(err)
}

func (s *PgStore) ListRecords(ctx context.Context) ([]StudentRecord, error) {
	rows, err := db.New(s.pool).ListStudentResults(ctx)
	if err != nil {
		return nil, fmt.Errorf("list student results: %w", err)
	}
	out := make([]StudentRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, fromRow(r))
	}
	return out, nil
}

func (s *PgStore) GetRecord(ctx context.Context, indexNumber string) (StudentRecord, error) {
	row, err := db.New(s.pool).GetStudentResult(ctx, indexNumber)
	if err != nil {
		return StudentRecord{}, mapStoreError(err)
	}
	return fromRow(row), nil
}

func (s *PgStore) UpdateScore(ctx context.Context, indexNumber string, score int, grade Grade) error {
	n, err := db.New(s.pool).UpdateStudentScore(ctx, db.UpdateStudentScoreParams{
		IndexNumber: indexNumber,
		Score:       int32(score),
		Grade:       ToPgGrade(grade),
	})
	if err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) DeleteRecord(ctx context.Context, indexNumber string) error {
	n, err := db.New(s.pool).DeleteStudentResult(ctx, indexNumber)
	if err != nil {
		return fmt.Errorf("delete student result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PgStore) Reset(ctx context.Context) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)
	n, err := q.ResetStudentResults(ctx)
	if err != nil {
		return 0, fmt.Errorf("reset student results: %w", err)
	}
	if err := q.ResetImportBatches(ctx); err != nil {
		return 0, fmt.Errorf("reset import history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return n, nil
}

// SaveBatch uses a savepoint per record so one failed insert does not
// abort the surrounding transaction.
func (s *PgStore) SaveBatch(ctx context.Context, records []StudentRecord, opts SaveOptions) (SaveOutcome, error) {
	var out SaveOutcome

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return out, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	q := db.New(tx)

	for i, rec := range records {
		if i%ContextCheckInterval == 0 && ctx.Err() != nil {
			return SaveOutcome{}, ctx.Err()
		}

		savepoint := fmt.Sprintf("sp_%d", i)
		if _, err := tx.Exec(ctx, "SAVEPOINT "+savepoint); err != nil {
			return SaveOutcome{}, fmt.Errorf("create savepoint: %w", err)
		}

		params := insertParams(rec, opts.ImportID)
		inserted := true
		if opts.Mode == ModeUpsert {
			inserted, err = q.UpsertStudentResult(ctx, params)
		} else {
			err = q.InsertStudentResult(ctx, params)
		}

		if err != nil {
			// A failed rollback leaves the transaction aborted.
			if _, rbErr := tx.Exec(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				return SaveOutcome{}, fmt.Errorf("rollback to savepoint for %s: %w", rec.IndexNumber, rbErr)
			}
			out.Failures = append(out.Failures, PersistFailure{
				IndexNumber: rec.IndexNumber,
				Reason:      mapStoreError(err).Error(),
			})
			continue
		}

		if _, err := tx.Exec(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return SaveOutcome{}, fmt.Errorf("release savepoint for %s: %w", rec.IndexNumber, err)
		}

		if inserted {
			out.Inserted++
		} else {
			out.Updated++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return SaveOutcome{}, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

func (s *PgStore) RecordImport(ctx context.Context, b ImportBatch) error {
	err := db.New(s.pool).InsertImportBatch(ctx, db.InsertImportBatchParams{
		ID:         ToPgUUID(b.ID),
		FileName:   b.FileName,
		Lines:      int32(b.Lines),
		Accepted:   int32(b.Accepted),
		Rejected:   int32(b.Rejected),
		Inserted:   int32(b.Inserted),
		Updated:    int32(b.Updated),
		Failed:     int32(b.Failed),
		ImportedBy: ToPgText(b.ImportedBy),
	})
	if err != nil {
		return fmt.Errorf("record import: %w", err)
	}
	return nil
}

func (s *PgStore) ListImports(ctx context.Context, limit int) ([]ImportBatch, error) {
	rows, err := db.New(s.pool).ListImportBatches(ctx, int32(limit))
	if err != nil {
		return nil, fmt.Errorf("list imports: %w", err)
	}
	out := make([]ImportBatch, 0, len(rows))
	for _, r := range rows {
		out = append(out, ImportBatch{
			ID:         PgUUIDToString(r.ID),
			FileName:   r.FileName,
			Lines:      int(r.Lines),
			Accepted:   int(r.Accepted),
			Rejected:   int(r.Rejected),
			Inserted:   int(r.Inserted),
			Updated:    int(r.Updated),
			Failed:     int(r.Failed),
			ImportedBy: r.ImportedBy.String,
			CreatedAt:  r.CreatedAt.Time,
		})
	}
	return out, nil
}

// ContextCheckInterval is how often (in rows) SaveBatch checks for cancellation.
var ContextCheckInterval = 100

func insertParams(rec StudentRecord, importID string) db.InsertStudentResultParams {
	return db.InsertStudentResultParams{
		IndexNumber: rec.IndexNumber,
		FullName:    rec.FullName,
		Course:      rec.Course,
		Score:       int32(rec.Score),
		Grade:       ToPgGrade(rec.Grade),
		ImportID:    ToPgUUID(importID),
	}
}

func fromRow(r db.StudentResult) StudentRecord {
	rec := StudentRecord{
		IndexNumber: r.IndexNumber,
		FullName:    r.FullName,
		Course:      r.Course,
		Score:       int(r.Score),
		Grade:       FromPgGrade(r.Grade),
	}
	if r.UpdatedAt.Valid {
		rec.UpdatedAt = r.UpdatedAt.Time.UTC().Truncate(time.Second)
	}
	if rec.Grade == GradeNone {
		rec.Grade = Classify(rec.Score)
	}
	return rec
}

// mapStoreError translates driver errors into core errors.
func mapStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", ErrDuplicateKey, err)
	case db.IsNoRows(err):
		return ErrNotFound
	default:
		return err
	}
}
