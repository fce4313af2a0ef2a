package core

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/logging"
)

// ResetTimeout is the maximum duration for a reset operation.
var ResetTimeout = 30 * time.Second

// Service provides the business logic shared by the CLI, the menu and the
// HTTP API: importing files, maintaining records and summarising them.
type Service struct {
	store         Store
	importer      *Importer
	limiter       *ImportLimiter
	mode          ImportMode
	importTimeout time.Duration
	topN          int
}

// NewService creates a Service backed by store.
func NewService(store Store, cfg *config.Config) *Service {
	mode, _ := ParseImportMode(strings.ToLower(cfg.Import.Mode))

	imp := NewImporter(cfg.Import.DelimiterRune())
	imp.MaxFileSize = cfg.Import.MaxFileSize

	return &Service{
		store:         store,
		importer:      imp,
		limiter:       NewImportLimiter(cfg.Import.MaxConcurrent, cfg.Import.MaxWait),
		mode:          mode,
		importTimeout: cfg.Import.Timeout,
		topN:          cfg.Report.TopN,
	}
}

// DefaultMode returns the configured import mode.
func (s *Service) DefaultMode() ImportMode { return s.mode }

// TopN returns the configured number of top performers.
func (s *Service) TopN() int { return s.topN }

// ActiveImports returns how many imports are writing to the store.
func (s *Service) ActiveImports() int { return s.limiter.ActiveCount() }

// ImportSlots reports the import limiter's free and total slots.
func (s *Service) ImportSlots() (available, total int) {
	return s.limiter.Available(), s.limiter.MaxConcurrent()
}

// WaitForImports blocks until running imports finish or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.Wait(ctx)
}

// ImportFile parses the file at path and persists the accepted records.
// An unreadable file is the only batch-level failure; bad lines are listed
// in the report.
func (s *Service) ImportFile(ctx context.Context, path string, opts ImportOptions) (ImportReport, error) {
	name := filepath.Base(path)

	result, err := s.importer.ImportFile(path)
	if err != nil {
		logging.WithFields(ctx, "file", path).Error("import failed", "error", err)
		return ImportReport{FileName: name, Result: result}, err
	}
	return s.persist(ctx, name, result, opts)
}

// ImportReader is ImportFile for an already open stream, such as an HTTP upload.
func (s *Service) ImportReader(ctx context.Context, name string, r io.Reader, opts ImportOptions) (ImportReport, error) {
	if s.importer.MaxFileSize > 0 {
		r = &sizeLimitReader{r: r, remaining: s.importer.MaxFileSize, limit: s.importer.MaxFileSize}
	}

	result, err := s.importer.ImportReader(r)
	if err != nil {
		logging.WithFields(ctx, "file", name).Error("import failed", "error", err)
		return ImportReport{FileName: name, Result: result}, err
	}
	return s.persist(ctx, name, result, opts)
}

// persist writes the accepted records of result and records the import in
// the history table. Dry runs stop after logging.
func (s *Service) persist(ctx context.Context, name string, result ImportResult, opts ImportOptions) (ImportReport, error) {
	start := time.Now()
	if opts.Mode == "" {
		opts.Mode = s.mode
	}

	report := ImportReport{
		ImportID: NewImportID(),
		FileName: name,
		Result:   result,
		DryRun:   opts.DryRun,
	}

	log := logging.WithFields(ctx,
		"import_id", report.ImportID,
		"file", name,
		"mode", opts.Mode,
	)
	log.Info("import parsed",
		"lines", result.Lines,
		"accepted", result.AcceptedCount(),
		"rejected", len(result.Rejected),
		"skipped", result.Skipped,
	)
	for _, rej := range result.Rejected {
		log.Debug("line rejected", "line", rej.Line, "reason", rej.Reason(), "error", rej.Err)
	}

	if opts.DryRun {
		report.Duration = time.Since(start)
		return report, nil
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return report, err
	}
	defer s.limiter.Release()

	saveCtx, cancel := context.WithTimeout(ctx, s.importTimeout)
	defer cancel()

	if len(result.Accepted) > 0 {
		out, err := s.store.SaveBatch(saveCtx, result.Accepted, SaveOptions{
			Mode:     opts.Mode,
			ImportID: report.ImportID,
		})
		if err != nil {
			log.Error("import save failed", "error", err)
			return report, fmt.Errorf("save batch: %w", err)
		}
		report.Inserted = out.Inserted
		report.Updated = out.Updated
		report.PersistFailures = out.Failures
	}

	if err := s.store.RecordImport(saveCtx, newImportBatch(ctx, report)); err != nil {
		log.Warn("record import history failed", "error", err)
	}

	report.Duration = time.Since(start)
	log.Info("import completed",
		"inserted", report.Inserted,
		"updated", report.Updated,
		"failed", len(report.PersistFailures),
		"duration", report.Duration,
	)
	return report, nil
}

// AddRecord validates a single entry and inserts it.
// Returns the ValidationError from Validate, or ErrDuplicateKey.
func (s *Service) AddRecord(ctx context.Context, f Fields) (StudentRecord, error) {
	f = Fields{
		IndexNumber: CleanCell(f.IndexNumber),
		FullName:    CleanCell(f.FullName),
		Course:      CleanCell(f.Course),
		Score:       CleanCell(f.Score),
	}

	rec, err := Validate(f)
	if err != nil {
		return StudentRecord{}, err
	}
	if err := s.store.SaveRecord(ctx, rec); err != nil {
		return StudentRecord{}, err
	}

	logging.WithFields(ctx, "index_number", rec.IndexNumber).Info("record added", "grade", rec.Grade)
	return rec, nil
}

// GetRecord returns the record for indexNumber or ErrNotFound.
func (s *Service) GetRecord(ctx context.Context, indexNumber string) (StudentRecord, error) {
	return s.store.GetRecord(ctx, CleanCell(indexNumber))
}

// ListRecords returns every stored record ordered by index number.
func (s *Service) ListRecords(ctx context.Context) ([]StudentRecord, error) {
	return s.store.ListRecords(ctx)
}

// UpdateScore changes a record's score and recomputes its grade.
func (s *Service) UpdateScore(ctx context.Context, indexNumber string, score int) (StudentRecord, error) {
	indexNumber = CleanCell(indexNumber)
	if indexNumber == "" {
		return StudentRecord{}, &ValidationError{Field: FieldIndexNumber, Err: ErrEmptyIndexNumber}
	}
	if err := CheckScore(score); err != nil {
		return StudentRecord{}, err
	}

	grade := Classify(score)
	if err := s.store.UpdateScore(ctx, indexNumber, score, grade); err != nil {
		return StudentRecord{}, err
	}

	logging.WithFields(ctx, "index_number", indexNumber).Info("score updated", "score", score, "grade", grade)
	return s.store.GetRecord(ctx, indexNumber)
}

// DeleteRecord removes the record for indexNumber or returns ErrNotFound.
func (s *Service) DeleteRecord(ctx context.Context, indexNumber string) error {
	indexNumber = CleanCell(indexNumber)
	if err := s.store.DeleteRecord(ctx, indexNumber); err != nil {
		return err
	}
	logging.WithFields(ctx, "index_number", indexNumber).Info("record deleted")
	return nil
}

// Reset deletes every record and the import history.
func (s *Service) Reset(ctx context.Context) (int64, error) {
	resetCtx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := s.store.Reset(resetCtx)
	if err != nil {
		return 0, fmt.Errorf("reset: %w", err)
	}
	logging.FromContext(ctx).Warn("all records deleted", "count", n)
	return n, nil
}

// Summary loads every record and aggregates it. topN <= 0 uses the
// configured default.
func (s *Service) Summary(ctx context.Context, topN int) (Summary, []StudentRecord, error) {
	if topN <= 0 {
		topN = s.topN
	}
	records, err := s.store.ListRecords(ctx)
	if err != nil {
		return Summary{}, nil, err
	}
	return Summarize(records, topN), records, nil
}

// sizeLimitReader fails with ErrFileTooLarge once more than limit bytes
// have been read.
type sizeLimitReader struct {
	r         io.Reader
	remaining int64
	limit     int64
}

func (l *sizeLimitReader) Read(p []byte) (int, error) {
	if l.remaining < 0 {
		return 0, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, l.limit)
	}
	// Read one byte past the limit so an exact-size input still succeeds.
	if int64(len(p)) > l.remaining+1 {
		p = p[:l.remaining+1]
	}
	n, err := l.r.Read(p)
	l.remaining -= int64(n)
	if l.remaining < 0 {
		return n, fmt.Errorf("%w: exceeds %d bytes", ErrFileTooLarge, l.limit)
	}
	return n, err
}
