package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/hearthline/hearth/internal/chat"
	"github.com/hearthline/hearth/internal/events"
)

type messageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type autoOpenRequest struct {
	TriggerKey string `json:"trigger_key"`
}

// handleChatSessions serves the session collection.
func (r *Router) handleChatSessions(w http.ResponseWriter, req *http.Request) {
	switch req.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, r.deps.Sessions.List())
	case http.MethodPost:
		view := r.deps.Sessions.Create()
		r.appendEvent(events.Event{Type: events.TypeSessionStarted, Detail: view.ID})
		writeJSON(w, http.StatusCreated, view)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleChatSession serves one session and its sub-resources.
func (r *Router) handleChatSession(w http.ResponseWriter, req *http.Request) {
	rest := strings.TrimPrefix(req.URL.Path, "/api/chat/sessions/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Session ID required", http.StatusBadRequest)
		return
	}
	id := parts[0]

	switch {
	case len(parts) == 1:
		if req.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		view, err := r.deps.Sessions.Get(id)
		if err != nil {
			r.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case len(parts) == 2 && parts[1] == "messages":
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.handleChatMessage(w, req, id)

	case len(parts) == 2 && parts[1] == "auto-open":
		if req.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.handleAutoOpen(w, req, id)

	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

func (r *Router) handleChatMessage(w http.ResponseWriter, req *http.Request, id string) {
	var body messageRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_body",
			"Request body must be JSON with role and content", nil)
		return
	}

	switch body.Role {
	case "user":
		if strings.TrimSpace(body.Content) == "" {
			writeErrorResponse(w, http.StatusBadRequest, "empty_message",
				"User messages need content", nil)
			return
		}
		view, err := r.deps.Sessions.UserMessage(id, body.Content)
		if err != nil {
			r.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	case "agent", "assistant":
		view, err := r.deps.Sessions.AgentMessage(id)
		if err != nil {
			r.writeSessionError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, view)

	default:
		writeErrorResponse(w, http.StatusBadRequest, "invalid_role",
			"Role must be user or agent", nil)
	}
}

func (r *Router) handleAutoOpen(w http.ResponseWriter, req *http.Request, id string) {
	var body autoOpenRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || strings.TrimSpace(body.TriggerKey) == "" {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_body",
			"Request body must be JSON with a trigger_key", nil)
		return
	}

	view, err := r.deps.Sessions.AutoOpen(id, body.TriggerKey)
	if err != nil {
		r.writeSessionError(w, err)
		return
	}

	r.appendEvent(events.Event{Type: events.TypeAutoOpen, TriggerKey: body.TriggerKey, Detail: id})
	writeJSON(w, http.StatusOK, view)
}

// writeSessionError maps chat layer errors onto HTTP statuses: unknown
// session is 404, a governance refusal is 429 with the guard details.
func (r *Router) writeSessionError(w http.ResponseWriter, err error) {
	if errors.Is(err, chat.ErrSessionNotFound) {
		writeErrorResponse(w, http.StatusNotFound, "session_not_found",
			"No such chat session", nil)
		return
	}

	var blocked *chat.BlockedError
	if errors.As(err, &blocked) {
		writeErrorResponse(w, http.StatusTooManyRequests, blocked.Code(), blocked.Error(),
			map[string]string{"guard": blocked.Guard, "reason": blocked.Reason})
		return
	}

	writeErrorResponse(w, http.StatusInternalServerError, "internal_error",
		sanitizeErrorForClient(err, "Chat operation failed"), nil)
}

func (r *Router) appendEvent(event events.Event) {
	if r.deps.EventLog != nil {
		r.deps.EventLog.Append(event)
	}
}
