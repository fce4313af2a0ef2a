package web

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/gradebook/internal/auth"
	"github.com/JonMunkholm/gradebook/internal/config"
	"github.com/JonMunkholm/gradebook/internal/core"
)

func testConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	base := map[string]string{
		"RATE_LIMIT_ENABLED": "false",
		"AUTH_REQUIRED":      "false",
		"AUTH_SECRET":        "test-secret",
	}
	for k, v := range env {
		base[k] = v
	}
	cfg, err := config.LoadFrom(func(k string) string { return base[k] })
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	return cfg
}

type testServer struct {
	*Server
	store *core.MemStore
}

func newTestServer(t *testing.T, env map[string]string) testServer {
	t.Helper()
	cfg := testConfig(t, env)
	store := core.NewMemStore()
	tokens, err := auth.NewTokenManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	if err != nil {
		t.Fatal(err)
	}
	users := auth.NewService(auth.NewMemRepository(), tokens, cfg.Auth.MinPasswordLength)
	return testServer{
		Server: NewServer(core.NewService(store, cfg), users, cfg),
		store:  store,
	}
}

func (ts testServer) do(t *testing.T, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" && strings.HasPrefix(body, "{") {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

const sampleFile = "20250001, Kwesi Mensah, IT, 78\n20250002, Ama Owusu, CS, 91\nbad line\n20250003, Yaw Boateng, IT, 150\n"

func TestHealth(t *testing.T) {
	ts := newTestServer(t, map[string]string{"IMPORT_MAX_CONCURRENT": "3"})
	rec := ts.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Error("security headers missing")
	}

	got := decode[struct {
		Status           string `json:"status"`
		ActiveImports    int    `json:"activeImports"`
		AvailableImports int    `json:"availableImports"`
		MaxImports       int    `json:"maxImports"`
	}](t, rec)
	if got.Status != "ok" || got.ActiveImports != 0 || got.AvailableImports != 3 || got.MaxImports != 3 {
		t.Errorf("health = %+v", got)
	}
}

func TestImport_RawBody(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/import?name=results.txt", sampleFile, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	got := decode[struct {
		FileName string `json:"fileName"`
		Lines    int    `json:"lines"`
		Accepted int    `json:"accepted"`
		Inserted int    `json:"inserted"`
		Rejected []struct {
			Line   int    `json:"line"`
			Reason string `json:"reason"`
		} `json:"rejected"`
	}](t, rec)

	if got.FileName != "results.txt" || got.Lines != 4 || got.Accepted != 2 || got.Inserted != 2 {
		t.Errorf("report = %+v", got)
	}
	if len(got.Rejected) != 2 || got.Rejected[0].Reason != "MalformedLine" || got.Rejected[1].Reason != "ScoreOutOfRange" {
		t.Errorf("rejected = %+v", got.Rejected)
	}

	records, _ := ts.store.ListRecords(t.Context())
	if len(records) != 2 {
		t.Errorf("stored %d records, want 2", len(records))
	}
}

func TestImport_MultipartDryRun(t *testing.T) {
	ts := newTestServer(t, nil)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "sample_data.txt")
	fw.Write([]byte(sampleFile))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/import?dry_run=true", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decode[struct {
		FileName string `json:"fileName"`
		DryRun   bool   `json:"dryRun"`
		Accepted int    `json:"accepted"`
	}](t, rec)
	if got.FileName != "sample_data.txt" || !got.DryRun || got.Accepted != 2 {
		t.Errorf("report = %+v", got)
	}

	records, _ := ts.store.ListRecords(t.Context())
	if len(records) != 0 {
		t.Errorf("dry run stored %d records", len(records))
	}
}

func TestImport_Errors(t *testing.T) {
	ts := newTestServer(t, map[string]string{"IMPORT_MAX_FILE_SIZE": "16"})

	rec := ts.do(t, http.MethodPost, "/api/import", sampleFile, nil)
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("oversized status = %d, want 413", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "FILE002" {
		t.Errorf("code = %q, want FILE002", got.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/import?mode=merge", "1, A, B, 50\n", nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d, want 400", rec.Code)
	}
}

func TestStudents_CRUD(t *testing.T) {
	ts := newTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/students", `{"indexNumber":"20250001","fullName":"Kwesi Mensah","course":"IT","score":"78"}`, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.StudentRecord](t, rec); got.Grade != core.GradeB {
		t.Errorf("grade = %q, want B", got.Grade)
	}

	rec = ts.do(t, http.MethodPost, "/api/students", `{"indexNumber":"20250001","fullName":"Again","course":"IT","score":"50"}`, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/students", `{"indexNumber":"2","fullName":"X","course":"IT","score":"abc"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("non-numeric status = %d, want 400", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "VAL005" {
		t.Errorf("code = %q, want VAL005", got.Code)
	}

	rec = ts.do(t, http.MethodPut, "/api/students/20250001/score", `{"score":85}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := decode[core.StudentRecord](t, rec); got.Score != 85 || got.Grade != core.GradeA {
		t.Errorf("updated = %+v", got)
	}

	rec = ts.do(t, http.MethodPut, "/api/students/20250001/score", `{"score":101}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("out of range status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/students/20250001", "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/students", "", nil)
	if got := decode[struct{ Count int }](t, rec); got.Count != 1 {
		t.Errorf("list count = %d, want 1", got.Count)
	}

	rec = ts.do(t, http.MethodDelete, "/api/students/20250001", "", nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/students/20250001", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "DB002" {
		t.Errorf("code = %q, want DB002", got.Code)
	}
}

func TestStatsReportExport(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodPost, "/api/import", sampleFile, nil)

	rec := ts.do(t, http.MethodGet, "/api/stats", "", nil)
	got := decode[struct {
		Summary  core.Summary `json:"summary"`
		PassRate float64      `json:"passRate"`
	}](t, rec)
	if got.Summary.Total != 2 || got.PassRate != 100 {
		t.Errorf("stats = %+v", got)
	}

	rec = ts.do(t, http.MethodGet, "/api/report/summary", "", nil)
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "Summary Report") {
		t.Errorf("summary report status = %d, body = %q", rec.Code, rec.Body.String())
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "summary_report_") {
		t.Errorf("Content-Disposition = %q", cd)
	}

	rec = ts.do(t, http.MethodGet, "/api/report/pdf", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown report status = %d, want 404", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/export", "", nil)
	rows, err := csv.NewReader(rec.Body).ReadAll()
	if err != nil || len(rows) != 3 {
		t.Fatalf("export rows = %d, err = %v", len(rows), err)
	}
	if rows[1][0] != "20250001" || rows[2][4] != "A" {
		t.Errorf("export rows = %v", rows)
	}

	rec = ts.do(t, http.MethodGet, "/api/imports", "", nil)
	if got := decode[struct{ Count int }](t, rec); got.Count != 1 {
		t.Errorf("history count = %d, want 1", got.Count)
	}
}

func TestReset(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodPost, "/api/import", sampleFile, nil)

	rec := ts.do(t, http.MethodPost, "/api/reset", `{"confirm":false}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed status = %d, want 400", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/reset", `{"confirm":true}`, nil)
	if got := decode[struct{ Deleted int64 }](t, rec); got.Deleted != 2 {
		t.Errorf("deleted = %d, want 2", got.Deleted)
	}
}

func TestDashboard(t *testing.T) {
	ts := newTestServer(t, nil)
	ts.do(t, http.MethodPost, "/api/import", sampleFile, nil)

	rec := ts.do(t, http.MethodGet, "/", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Student Results", "Kwesi Mensah", "80-100"} {
		if !strings.Contains(body, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t, map[string]string{"AUTH_REQUIRED": "true"})

	rec := ts.do(t, http.MethodGet, "/api/students", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d, want 401", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); got.Code != "AUTH003" {
		t.Errorf("code = %q, want AUTH003", got.Code)
	}

	register := `{"fullName":"Ama Owusu","username":"ama","email":"ama@example.com","password":"secret1","confirmPassword":"secret1"}`
	rec = ts.do(t, http.MethodPost, "/api/auth/register", register, nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body = %s", rec.Code, rec.Body.String())
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/register", register, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/register", `{"fullName":"","username":"x","email":"nope","password":"a","confirmPassword":"b"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid register status = %d, want 400", rec.Code)
	}
	if got := decode[ErrorResponse](t, rec); len(got.Fields) == 0 {
		t.Error("invalid register should list field errors")
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"ama","password":"wrong"}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad login status = %d, want 401", rec.Code)
	}

	rec = ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"ama","password":"secret1"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", rec.Code, rec.Body.String())
	}
	session := decode[auth.Session](t, rec)
	if session.Token == "" || !session.ExpiresAt.After(time.Now()) {
		t.Fatalf("session = %+v", session)
	}

	bearer := map[string]string{"Authorization": "Bearer " + session.Token}
	rec = ts.do(t, http.MethodPost, "/api/import", sampleFile, bearer)
	if rec.Code != http.StatusOK {
		t.Fatalf("authorised import status = %d", rec.Code)
	}

	rec = ts.do(t, http.MethodGet, "/api/imports", "", bearer)
	got := decode[struct {
		Imports []core.ImportBatch `json:"imports"`
	}](t, rec)
	if len(got.Imports) != 1 || got.Imports[0].ImportedBy != "ama" {
		t.Errorf("imports = %+v", got.Imports)
	}
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, map[string]string{
		"RATE_LIMIT_ENABLED":             "true",
		"RATE_LIMIT_REQUESTS_PER_MINUTE": "2",
	})

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = ts.do(t, http.MethodGet, "/healthz", "", nil)
	}
	if last.Code != http.StatusTooManyRequests {
		t.Errorf("third request status = %d, want 429", last.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrNotFound, http.StatusNotFound},
		{core.ErrDuplicateKey, http.StatusConflict},
		{&core.ValidationError{Field: core.FieldScore, Err: core.ErrScoreOutOfRange}, http.StatusBadRequest},
		{core.ErrTooManyImports, http.StatusServiceUnavailable},
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.FieldErrors{"email": "bad"}, http.StatusBadRequest},
		{errBadRequest, http.StatusBadRequest},
		{http.ErrHandlerTimeout, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
