// Package server exposes the feed engine over HTTP.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/amirkhadim36-creator/reelpress/internal/audio"
	"github.com/amirkhadim36-creator/reelpress/internal/catalog"
	"github.com/amirkhadim36-creator/reelpress/internal/feed"
	"github.com/amirkhadim36-creator/reelpress/internal/feedstate"
	"github.com/amirkhadim36-creator/reelpress/internal/orchestrator"
	"github.com/amirkhadim36-creator/reelpress/internal/synth"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Server is the main HTTP server.
type Server struct {
	state      *feedstate.State
	controller *feed.Controller
	orch       *orchestrator.Orchestrator
	catalog    *catalog.Client
	router     chi.Router
	templates  *template.Template
	httpServer *http.Server
}

// New creates a new server.
func New(state *feedstate.State, controller *feed.Controller, orch *orchestrator.Orchestrator, cat *catalog.Client) (*Server, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		"timeAgo": timeAgo,
		"raw":     func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		state:      state,
		controller: controller,
		orch:       orch,
		catalog:    cat,
		templates:  tmpl,
	}
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/", s.handleHome)

	r.Route("/api", func(r chi.Router) {
		r.Get("/feed", s.handleFeed)
		r.Get("/topics", s.handleTopics)
		r.Get("/genres", s.handleGenres)
		r.Get("/videos/{catalogID}", s.handleVideos)
		r.Post("/filter", s.handleSetFilter)
		r.Post("/search", s.handleSetSearch)
		r.Post("/search/shortcut", s.handleSearchShortcut)
		r.Post("/next-page", s.handleNextPage)
		r.Post("/refresh", s.handleRefresh)
		r.Post("/autopilot/start", s.handleAutopilotStart)
		r.Post("/autopilot/stop", s.handleAutopilotStop)
		r.Post("/generate", s.handleGenerate)
		r.Post("/retry", s.handleRetry)
		r.Post("/clips", s.handleRenderClip)
		r.Get("/posts/{postID}/narration", s.handleNarration)
	})

	s.router = r
}

// Start starts the HTTP server. Blocks until Shutdown.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{Addr: addr, Handler: s.router}
	log.Printf("Server starting on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// --- Page handler ---

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	data := map[string]any{
		"Entries": s.controller.Feed(),
		"Session": snap.Session,
		"Genre":   snap.Genre,
		"Genres":  catalog.Genres(),
		"Query":   snap.Query,
		"Loading": snap.Loading,
	}
	if err := s.templates.ExecuteTemplate(w, "feed.html", data); err != nil {
		log.Printf("Template error: %v", err)
	}
}

// --- API handlers ---

type feedResponse struct {
	Entries []feed.Entry      `json:"entries"`
	Session feedstate.Session `json:"session"`
	Genre   string            `json:"genre"`
	Query   string            `json:"query"`
	Page    int               `json:"page"`
	Loading bool              `json:"loading"`
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	entries := s.controller.Feed()
	if entries == nil {
		entries = []feed.Entry{}
	}
	writeJSON(w, feedResponse{
		Entries: entries,
		Session: snap.Session,
		Genre:   snap.Genre,
		Query:   snap.Query,
		Page:    snap.Page,
		Loading: snap.Loading,
	})
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	snap := s.state.Snapshot()
	topics := snap.Topics
	if topics == nil {
		topics = []catalog.Topic{}
	}
	writeJSON(w, topics)
}

func (s *Server) handleGenres(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, append([]string{catalog.GenreAll}, catalog.Genres()...))
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "catalogID"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid catalog id", http.StatusBadRequest)
		return
	}

	videos, err := s.catalog.Videos(r.Context(), id)
	if err != nil {
		// Transient fetch fault: degrade to an empty list.
		log.Printf("Video fetch failed: %v", err)
		videos = nil
	}
	if videos == nil {
		videos = []catalog.Video{}
	}
	writeJSON(w, videos)
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Genre string `json:"genre"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.controller.SetGenre(r.Context(), req.Genre)
	s.handleFeed(w, r)
}

func (s *Server) handleSetSearch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.controller.SetSearchQuery(context.Background(), req.Query)
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSearchShortcut(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	s.controller.CommitSearchShortcut(r.Context(), req.Query)
	s.handleFeed(w, r)
}

func (s *Server) handleNextPage(w http.ResponseWriter, r *http.Request) {
	s.controller.RequestNextPage(r.Context())
	s.handleFeed(w, r)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.controller.Refresh(r.Context()); err != nil {
		log.Printf("Refresh failed: %v", err)
	}
	s.handleFeed(w, r)
}

func (s *Server) handleAutopilotStart(w http.ResponseWriter, r *http.Request) {
	s.orch.StartAutopilot()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleAutopilotStop(w http.ResponseWriter, r *http.Request) {
	s.orch.StopAutopilot()
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req catalog.Movie
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == 0 {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	post, err := s.orch.GenerateFor(r.Context(), &req)
	if err == orchestrator.ErrBusy {
		http.Error(w, "Generation already in flight", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, post)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	post, err := s.orch.RetryLast(r.Context())
	if err == orchestrator.ErrBusy {
		http.Error(w, "Generation already in flight", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, post)
}

func (s *Server) handleRenderClip(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt      string `json:"prompt"`
		Resolution  string `json:"resolution"`
		AspectRatio string `json:"aspect_ratio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Prompt) == "" {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	video, err := s.orch.RenderClip(r.Context(), synth.ClipRequest{
		Prompt:      req.Prompt,
		Resolution:  req.Resolution,
		AspectRatio: req.AspectRatio,
	}, func(status string) {
		log.Printf("Clip render: %s", status)
	})
	if err == orchestrator.ErrBusy {
		http.Error(w, "Clip render already in flight", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="cinematic_vision.mp4"`)
	w.Write(video)
}

func (s *Server) handleNarration(w http.ResponseWriter, r *http.Request) {
	postID := chi.URLParam(r, "postID")

	pcm, err := s.orch.NarrationPCM(r.Context(), postID)
	if err != nil {
		log.Printf("Narration failed: %v", err)
		http.Error(w, "Narration unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "audio/wav")
	w.Write(audio.EncodeWAV(pcm, s.orch.SampleRate()))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("JSON encode error: %v", err)
	}
}

func timeAgo(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
