package webui

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"github.com/hession/gsearch/internal/logger"
	"github.com/hession/gsearch/internal/search"
	"github.com/hession/gsearch/internal/session"
)

// Server serves the search page and the JSON API
type Server struct {
	controller *session.Controller
	addr       string
	router     *httprouter.Router
	page       *template.Template
	startedAt  time.Time
	server     *http.Server
}

// NewServer creates a server bound to addr
func NewServer(controller *session.Controller, addr string) *Server {
	s := &Server{
		controller: controller,
		addr:       addr,
		router:     httprouter.New(),
		page:       template.Must(template.New("index").Parse(indexHTML)),
		startedAt:  time.Now().UTC(),
	}

	s.setupRoutes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	// Page
	s.router.GET("/", s.handleIndex)
	s.router.POST("/search", s.handleSearch)
	s.router.POST("/replay", s.handleReplay)
	s.router.POST("/focus", s.handleFocus)
	s.router.POST("/history/clear", s.handleClearHistory)

	// JSON API
	s.router.GET("/api/status", s.handleStatus)
	s.router.POST("/api/search", s.handleAPISearch)
	s.router.GET("/api/history", s.handleAPIHistory)
	s.router.DELETE("/api/history", s.handleAPIClearHistory)
}

// Start listens on the configured address until Stop is called
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if l := logger.GetDefault(); l != nil {
		s.server.ErrorLog = log.New(l.GetWriter(logger.ERROR), "", 0)
	}

	logger.Info("Starting web UI on http://%s", s.addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop shuts the server down, waiting up to 5 seconds for open requests
func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return s.server.Shutdown(ctx)
}

type pageData struct {
	Snapshot session.Snapshot
	Focuses  []search.Focus
	Notice   string
}

func (s *Server) renderPage(w http.ResponseWriter, status int, notice string) {
	data := pageData{
		Snapshot: s.controller.Snapshot(),
		Focuses:  search.Focuses,
		Notice:   notice,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.page.Execute(w, data); err != nil {
		logger.Error("Failed to render page: %v", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.renderPage(w, http.StatusOK, "")
}

// searchContext keeps request values but drops cancellation, so an issued
// search runs to completion even if the client goes away
func searchContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	focus, err := search.ParseFocus(r.PostFormValue("focus"))
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, err.Error())
		return
	}

	_, err = s.controller.SubmitWithFocus(searchContext(r), r.PostFormValue("query"), focus)
	s.renderPage(w, statusFor(err), noticeFor(err))
}

func (s *Server) handleReplay(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	_, err := s.controller.Replay(searchContext(r), r.PostFormValue("query"))
	s.renderPage(w, statusFor(err), noticeFor(err))
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := r.ParseForm(); err != nil {
		s.renderPage(w, http.StatusBadRequest, "Invalid form submission.")
		return
	}

	focus, err := search.ParseFocus(r.PostFormValue("focus"))
	if err != nil {
		s.renderPage(w, http.StatusBadRequest, err.Error())
		return
	}

	s.controller.SelectFocus(focus)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.controller.ClearHistory(); err != nil {
		logger.Error("Failed to clear history: %v", err)
		s.renderPage(w, http.StatusInternalServerError, "Failed to clear history.")
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// statusFor maps a submit error to an HTTP status
func statusFor(err error) int {
	var cfgErr *search.ConfigurationError
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, session.ErrEmptyQuery):
		return http.StatusBadRequest
	case errors.Is(err, session.ErrBusy):
		return http.StatusConflict
	case errors.As(err, &cfgErr):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// noticeFor returns a page notice for rejected submits. Search failures
// are already part of the controller snapshot.
func noticeFor(err error) string {
	switch {
	case errors.Is(err, session.ErrEmptyQuery):
		return "Enter a query to search."
	case errors.Is(err, session.ErrBusy):
		return "A search is already in progress."
	default:
		return ""
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	snap := s.controller.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":         true,
		"state":      snap.State,
		"busy":       snap.Busy(),
		"focus":      snap.Focus,
		"focuses":    search.Focuses,
		"started_at": s.startedAt.Format(time.RFC3339),
		"uptime_sec": int(time.Since(s.startedAt).Seconds()),
	})
}

type searchRequest struct {
	Query string `json:"query"`
	Focus string `json:"focus"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return
	}

	focus, err := search.ParseFocus(req.Focus)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	result, err := s.controller.SubmitWithFocus(searchContext(r), req.Query, focus)
	if err != nil {
		msg := search.UserMessage(err)
		if errors.Is(err, session.ErrEmptyQuery) || errors.Is(err, session.ErrBusy) {
			msg = err.Error()
		}
		writeJSON(w, statusFor(err), map[string]string{"error": msg})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAPIHistory(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]any{"recent": s.controller.Recent()})
}

func (s *Server) handleAPIClearHistory(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	if err := s.controller.ClearHistory(); err != nil {
		logger.Error("Failed to clear history: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to clear history"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"recent": []string{}})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
