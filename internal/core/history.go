package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultHistoryLimit is how many import history entries are listed by default.
const DefaultHistoryLimit = 20

// ImportBatch is one entry of the import history.
type ImportBatch struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	Lines      int       `json:"lines"`
	Accepted   int       `json:"accepted"`
	Rejected   int       `json:"rejected"`
	Inserted   int       `json:"inserted"`
	Updated    int       `json:"updated"`
	Failed     int       `json:"failed"`
	ImportedBy string    `json:"importedBy,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewImportID returns a fresh import identifier.
func NewImportID() string {
	return uuid.NewString()
}

// newImportBatch summarises a finished import for the history table.
func newImportBatch(ctx context.Context, report ImportReport) ImportBatch {
	return ImportBatch{
		ID:         report.ImportID,
		FileName:   report.FileName,
		Lines:      report.Result.Lines,
		Accepted:   report.Result.AcceptedCount(),
		Rejected:   len(report.Result.Rejected),
		Inserted:   report.Inserted,
		Updated:    report.Updated,
		Failed:     len(report.PersistFailures),
		ImportedBy: ActorFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}
}

// Imports returns the most recent imports, newest first.
func (s *Service) Imports(ctx context.Context, limit int) ([]ImportBatch, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListImports(ctx, limit)
}
