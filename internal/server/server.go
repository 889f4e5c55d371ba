package server

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ansh0308/UIDAI-DATA-HACKATHON/internal/metrics"
)

const indexTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>UIDAI Analytics Reports</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 56rem; margin: 2rem auto; padding: 0 1rem; }
li { margin: 0.3rem 0; }
.muted { color: #777; }
</style>
</head>
<body>
<h1>Generated Reports</h1>
{{if .Reports}}
<ul>
{{range .Reports}}<li><a href="/reports/{{.}}">{{.}}</a></li>
{{end}}</ul>
{{else}}
<p class="muted">No reports yet. Run the pipeline first.</p>
{{end}}
</body>
</html>
`

// Server lists and serves the reports generated into the output
// directory, alongside health and Prometheus endpoints.
type Server struct {
	dir   string
	log   *zap.Logger
	index *template.Template
	mux   *http.ServeMux
}

// New creates a server over an output directory. A nil metrics instance
// omits the /metrics endpoint; a nil logger discards logs.
func New(dir string, met *metrics.Metrics, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	index, err := template.New("index").Parse(indexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parsing index template: %w", err)
	}

	s := &Server{dir: dir, log: log, index: index, mux: http.NewServeMux()}
	s.mux.HandleFunc("/", s.handleIndex)
	s.mux.Handle("/reports/", http.StripPrefix("/reports/", http.FileServer(http.Dir(dir))))
	s.mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "ok")
	})
	if met != nil {
		s.mux.Handle("/metrics", promhttp.HandlerFor(met.Registry, promhttp.HandlerOpts{}))
	}
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	reports, err := listReports(s.dir)
	if err != nil {
		s.log.Error("listing reports", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, map[string]any{"Reports": reports}); err != nil {
		s.log.Error("rendering index", zap.Error(err))
	}
}

// listReports returns the rendered report files, newest first. A missing
// output directory reads as no reports rather than an error.
func listReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var reports []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, "aadhaar_analysis_") &&
			(strings.HasSuffix(name, ".html") || strings.HasSuffix(name, ".md")) {
			reports = append(reports, name)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(reports)))
	return reports, nil
}

// Serve starts the HTTP server on the given port.
func Serve(dir string, met *metrics.Metrics, log *zap.Logger, port int) error {
	srv, err := New(dir, met, log)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	srv.log.Info("server listening",
		zap.String("addr", addr),
		zap.String("reports_dir", filepath.Clean(dir)))
	return http.ListenAndServe(addr, srv.Handler())
}
