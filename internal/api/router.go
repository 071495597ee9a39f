// Package api exposes the advisory engine, chat governance, and report
// export over HTTP for the dashboard.
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/hearthline/hearth/internal/advisory"
	"github.com/hearthline/hearth/internal/chat"
	"github.com/hearthline/hearth/internal/events"
	"github.com/hearthline/hearth/internal/websocket"
	"github.com/hearthline/hearth/pkg/report"
)

// Deps carries everything the router serves.
type Deps struct {
	Engine    *advisory.Engine
	Sessions  *chat.Manager
	EventLog  *events.Log
	Hub       *websocket.Hub
	Reports   *report.Generator
	Version   string
	HomeLabel string
}

// Router handles HTTP routing
type Router struct {
	mux       *http.ServeMux
	deps      Deps
	handler   http.Handler
	startTime time.Time
}

// NewRouter creates a new router instance
func NewRouter(deps Deps) http.Handler {
	r := &Router{
		mux:       http.NewServeMux(),
		deps:      deps,
		startTime: time.Now(),
	}
	r.setupRoutes()
	r.handler = requestLogger(r.mux)
	return r
}

func (r *Router) setupRoutes() {
	r.mux.HandleFunc("/api/health", r.handleHealth)
	r.mux.HandleFunc("/api/version", r.handleVersion)
	r.mux.HandleFunc("/api/state", r.handleState)
	r.mux.HandleFunc("/api/advisory", r.handleAdvisory)
	r.mux.HandleFunc("/api/confidence", r.handleConfidence)
	r.mux.HandleFunc("/api/events", r.handleEvents)

	r.mux.HandleFunc("/api/chat/sessions", r.handleChatSessions)
	r.mux.HandleFunc("/api/chat/sessions/", r.handleChatSession)

	r.mux.HandleFunc("/api/systems/", r.handleSystem)

	r.mux.HandleFunc("/api/report", r.handleReport)

	if r.deps.Hub != nil {
		r.mux.HandleFunc("/ws", r.deps.Hub.HandleWebSocket)
	}
}

// ServeHTTP implements http.Handler
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if strings.HasPrefix(req.URL.Path, "/api/") || strings.HasPrefix(req.URL.Path, "/ws") {
		addSecurityHeaders(w)
	}
	r.handler.ServeHTTP(w, req)
}

func addSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "SAMEORIGIN")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
}
