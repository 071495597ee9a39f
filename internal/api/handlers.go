package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hearthline/hearth/internal/advisory"
	"github.com/hearthline/hearth/internal/models"
)

// handleHealth handles health check requests
func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
		"uptime":    time.Since(r.startTime).Seconds(),
		"mode":      r.deps.Engine.Mode(),
	}
	if r.deps.Hub != nil {
		health["dashboardClients"] = r.deps.Hub.ClientCount()
	}

	writeJSON(w, http.StatusOK, health)
}

// handleVersion handles version requests
func (r *Router) handleVersion(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	version := r.deps.Version
	if version == "" {
		version = "dev"
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"version": version,
		"runtime": "go",
	})
}

// handleState returns the latest cached advisory snapshot, the
// dashboard's bootstrap payload.
func (r *Router) handleState(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := r.currentSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleAdvisory returns the snapshot, optionally recomputed for an
// alternate climate zone via ?zone=.
func (r *Router) handleAdvisory(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if zone := req.URL.Query().Get("zone"); zone != "" {
		snap, err := r.deps.Engine.Preview(models.ParseClimateZone(zone))
		if err != nil {
			writeErrorResponse(w, http.StatusInternalServerError, "evaluation_failed",
				sanitizeErrorForClient(err, "Failed to evaluate advisory"), nil)
			return
		}
		writeJSON(w, http.StatusOK, snap)
		return
	}

	snap := r.currentSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleConfidence returns only the confidence summary.
func (r *Router) handleConfidence(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snap := r.currentSnapshot(w)
	if snap == nil {
		return
	}
	writeJSON(w, http.StatusOK, snap.Confidence)
}

// handleEvents returns recent advisory events, newest first.
func (r *Router) handleEvents(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := 50
	if raw := req.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeErrorResponse(w, http.StatusBadRequest, "invalid_limit",
				"limit must be a positive integer", nil)
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, r.deps.EventLog.Recent(limit))
}

// currentSnapshot fetches the cached snapshot, answering 503 while the
// first evaluation is still pending.
func (r *Router) currentSnapshot(w http.ResponseWriter) *advisory.Snapshot {
	snap := r.deps.Engine.Snapshot()
	if snap == nil {
		writeErrorResponse(w, http.StatusServiceUnavailable, "warming_up",
			"Advisory engine has not completed its first evaluation", nil)
		return nil
	}
	return snap
}
