// Package serve exposes a finished report over HTTP.
package serve

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tliron/commonlog"

	"typesizes/internal/diagfmt"
	"typesizes/internal/reportfmt"
)

// Server serves one immutable report.
type Server struct {
	router chi.Router
	report reportfmt.Report
	diags  diagfmt.DiagnosticsOutput
	log    commonlog.Logger
}

// NewServer builds the routes for r and its diagnostics.
func NewServer(r reportfmt.Report, diags diagfmt.DiagnosticsOutput, log commonlog.Logger) *Server {
	if log == nil {
		log = commonlog.GetLogger("type-sizes.serve")
	}
	s := &Server{report: r, diags: diags, log: log}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(RequestLogger(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	static := http.FileServer(http.FS(reportfmt.Static()))
	r.Get("/styles.css", static.ServeHTTP)
	r.Get("/index.js", static.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/types", s.handleTypes)
		r.Get("/types/{index}", s.handleType)
		r.Get("/diagnostics", s.handleDiagnostics)
	})

	s.router = r
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportfmt.RenderHTML(w, s.report); err != nil {
		s.log.Errorf("render index: %s", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.report)
}

func (s *Server) handleType(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || idx < 0 || idx >= len(s.report.Types) {
		jsonError(w, "no type at index "+chi.URLParam(r, "index"), http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, s.report.Types[idx])
}

func (s *Server) handleDiagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.diags)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}
