package api

import (
	"encoding/json"
	"net/http"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/go-chi/chi/v5"
)

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	opts, err := s.prefs.Get(r.Context(), userID)
	if err != nil {
		s.log.Error("load preferences", "user_id", userID, "error", err)
		jsonError(w, "failed to load preferences", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id":           userID,
		"include_hidden_at": opts.IncludeHiddenAT,
	})
}

// handlePutPreferences stores the options and rebuilds every tab the user
// last scanned, so open trees follow the new setting.
func (s *Server) handlePutPreferences(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var opts heading.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.prefs.Set(r.Context(), userID, opts); err != nil {
		s.log.Error("save preferences", "user_id", userID, "error", err)
		jsonError(w, "failed to save preferences", http.StatusInternalServerError)
		return
	}

	scans, err := s.orchestrator.RebuildUser(userID, opts)
	if err != nil {
		s.log.Warn("rebuild after preference change", "user_id", userID, "error", err)
	}
	ids := make([]string, 0, len(scans))
	for _, scan := range scans {
		ids = append(ids, scan.ID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user_id":           userID,
		"include_hidden_at": opts.IncludeHiddenAT,
		"rebuilt_scans":     ids,
	})
}
