package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/metrics"
)

func newTestServer(t *testing.T, dir string) *Server {
	t.Helper()
	srv, err := New(dir, metrics.New(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func writeReport(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("writing fixture report: %v", err)
	}
}

func TestIndexListsReports(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "aadhaar_analysis_20260101-120000.html", "<html>a</html>")
	writeReport(t, dir, "aadhaar_analysis_20260201-120000.html", "<html>b</html>")
	writeReport(t, dir, "notes.txt", "not a report")
	srv := newTestServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "aadhaar_analysis_20260101-120000.html") {
		t.Errorf("index missing first report:\n%s", body)
	}
	if !strings.Contains(body, "aadhaar_analysis_20260201-120000.html") {
		t.Errorf("index missing second report:\n%s", body)
	}
	if strings.Contains(body, "notes.txt") {
		t.Errorf("index lists non-report file:\n%s", body)
	}
	// Newest first.
	if strings.Index(body, "20260201") > strings.Index(body, "20260101") {
		t.Errorf("reports not sorted newest first:\n%s", body)
	}
}

func TestIndexEmptyDir(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No reports yet") {
		t.Errorf("empty index missing placeholder:\n%s", rec.Body.String())
	}
}

func TestIndexMissingDir(t *testing.T) {
	srv := newTestServer(t, filepath.Join(t.TempDir(), "never-created"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("index status = %d, want 200 for missing dir", rec.Code)
	}
}

func TestServeReportFile(t *testing.T) {
	dir := t.TempDir()
	writeReport(t, dir, "aadhaar_analysis_20260101-120000.html", "<html>report body</html>")
	srv := newTestServer(t, dir)

	req := httptest.NewRequest(http.MethodGet, "/reports/aadhaar_analysis_20260101-120000.html", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("report status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "report body") {
		t.Errorf("report body not served:\n%s", rec.Body.String())
	}
}

func TestUnknownPathNotFound(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d, want 404", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, t.TempDir())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d, want 200", rec.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	met := metrics.New()
	met.ReportsRendered.Inc()
	srv, err := New(t.TempDir(), met, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "uidai_reports_rendered_total") {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}
}
