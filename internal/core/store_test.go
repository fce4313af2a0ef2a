package core

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx records the statements SaveBatch issues. Inserts are logged as
// "INSERT <index>" and upserts as "UPSERT <index>".
type fakeTx struct {
	pgx.Tx

	log        []string
	failRow    map[string]error // index number -> insert error
	existing   map[string]bool  // index numbers an upsert overwrites
	failExec   map[string]error // exact statement -> error
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if strings.Contains(sql, "InsertStudentResult") {
		index := args[0].(string)
		tx.log = append(tx.log, "INSERT "+index)
		return pgconn.NewCommandTag("INSERT 0 1"), tx.failRow[index]
	}
	tx.log = append(tx.log, sql)
	return pgconn.CommandTag{}, tx.failExec[sql]
}

func (tx *fakeTx) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	index := args[0].(string)
	tx.log = append(tx.log, "UPSERT "+index)
	return fakeRow{inserted: !tx.existing[index], err: tx.failRow[index]}
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if !tx.committed {
		tx.rolledBack = true
	}
	return nil
}

type fakeRow struct {
	inserted bool
	err      error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.inserted
	return nil
}

// fakeDB hands out one fakeTx.
type fakeDB struct {
	DBTX
	tx       *fakeTx
	beginErr error
}

func (db *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return db.tx, nil
}

func batchRecords(indexes ...string) []StudentRecord {
	out := make([]StudentRecord, 0, len(indexes))
	for _, idx := range indexes {
		out = append(out, StudentRecord{IndexNumber: idx, FullName: "Student " + idx, Course: "IT", Score: 70, Grade: GradeB})
	}
	return out
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: `duplicate key value violates unique constraint "student_results_index_number_key"`}
}

func TestPgStore_SaveBatch_FailedRowDoesNotPoisonBatch(t *testing.T) {
	tx := &fakeTx{failRow: map[string]error{"2": uniqueViolation()}}
	store := NewPgStore(&fakeDB{tx: tx})

	out, err := store.SaveBatch(context.Background(), batchRecords("1", "2", "3"), SaveOptions{Mode: ModeInsert})
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}

	wantLog := []string{
		"SAVEPOINT sp_0", "INSERT 1", "RELEASE SAVEPOINT sp_0",
		"SAVEPOINT sp_1", "INSERT 2", "ROLLBACK TO SAVEPOINT sp_1",
		"SAVEPOINT sp_2", "INSERT 3", "RELEASE SAVEPOINT sp_2",
	}
	if !reflect.DeepEqual(tx.log, wantLog) {
		t.Errorf("statements =\n%q\nwant\n%q", tx.log, wantLog)
	}
	if !tx.committed {
		t.Error("remaining rows were not committed")
	}

	if out.Inserted != 2 || out.Updated != 0 {
		t.Errorf("inserted=%d updated=%d, want 2/0", out.Inserted, out.Updated)
	}
	if len(out.Failures) != 1 {
		t.Fatalf("failures = %+v, want 1", out.Failures)
	}
	f := out.Failures[0]
	if f.IndexNumber != "2" || !strings.HasPrefix(f.Reason, ErrDuplicateKey.Error()) {
		t.Errorf("failure = %+v, want index 2 mapped to %q", f, ErrDuplicateKey)
	}
}

func TestPgStore_SaveBatch_UpsertCounts(t *testing.T) {
	tx := &fakeTx{existing: map[string]bool{"2": true}}
	store := NewPgStore(&fakeDB{tx: tx})

	out, err := store.SaveBatch(context.Background(), batchRecords("1", "2"), SaveOptions{Mode: ModeUpsert, ImportID: NewImportID()})
	if err != nil {
		t.Fatalf("SaveBatch() error = %v", err)
	}
	if out.Inserted != 1 || out.Updated != 1 || len(out.Failures) != 0 {
		t.Errorf("outcome = %+v, want 1 inserted 1 updated", out)
	}
	if tx.log[1] != "UPSERT 1" || tx.log[4] != "UPSERT 2" {
		t.Errorf("statements = %q, want upserts", tx.log)
	}
}

func TestPgStore_SaveBatch_BatchFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name     string
		db       *fakeDB
		ctx      func() context.Context
		wantErr  error
		wantLast string
	}{
		{
			name: "rollback to savepoint fails",
			db: &fakeDB{tx: &fakeTx{
				failRow:  map[string]error{"1": uniqueViolation()},
				failExec: map[string]error{"ROLLBACK TO SAVEPOINT sp_0": boom},
			}},
			wantErr:  boom,
			wantLast: "ROLLBACK TO SAVEPOINT sp_0",
		},
		{
			name:     "release savepoint fails",
			db:       &fakeDB{tx: &fakeTx{failExec: map[string]error{"RELEASE SAVEPOINT sp_0": boom}}},
			wantErr:  boom,
			wantLast: "RELEASE SAVEPOINT sp_0",
		},
		{
			name:     "savepoint fails",
			db:       &fakeDB{tx: &fakeTx{failExec: map[string]error{"SAVEPOINT sp_0": boom}}},
			wantErr:  boom,
			wantLast: "SAVEPOINT sp_0",
		},
		{
			name:    "begin fails",
			db:      &fakeDB{tx: &fakeTx{}, beginErr: boom},
			wantErr: boom,
		},
		{
			name: "cancelled",
			db:   &fakeDB{tx: &fakeTx{}},
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			},
			wantErr: context.Canceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.ctx != nil {
				ctx = tt.ctx()
			}

			out, err := NewPgStore(tt.db).SaveBatch(ctx, batchRecords("1", "2"), SaveOptions{Mode: ModeInsert})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if out.Inserted != 0 || len(out.Failures) != 0 {
				t.Errorf("outcome = %+v, want empty", out)
			}

			tx := tt.db.tx
			if tx.committed {
				t.Error("failed batch was committed")
			}
			if tt.wantLast != "" {
				if got := tx.log[len(tx.log)-1]; got != tt.wantLast {
					t.Errorf("last statement = %q, want %q (no later rows)", got, tt.wantLast)
				}
				if !tx.rolledBack {
					t.Error("transaction not rolled back")
				}
			}
		})
	}
}
