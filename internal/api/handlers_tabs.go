package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/pipeline"
	"github.com/dgallion1/outliner/internal/presenter"
	"github.com/dgallion1/outliner/internal/relay"
	"github.com/go-chi/chi/v5"
)

type scanRequest struct {
	UserID   string           `json:"user_id"`
	Headings []heading.Record `json:"headings"`
}

type activateRequest struct {
	Ordinal int `json:"ordinal"`
}

// handleSubmitScan queues a page scan for a tab. The outline is applied in
// scan order, so a late result for an older scan never replaces a newer one.
func (s *Server) handleSubmitScan(w http.ResponseWriter, r *http.Request) {
	tabID := chi.URLParam(r, "tabID")
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	opts := heading.Options{IncludeHiddenAT: s.cfg.DefaultIncludeHiddenAT}
	if req.UserID != "" {
		var err error
		if opts, err = s.prefs.Get(r.Context(), req.UserID); err != nil {
			s.log.Error("load preferences", "user_id", req.UserID, "error", err)
			jsonError(w, "failed to load preferences", http.StatusInternalServerError)
			return
		}
	}

	scan := pipeline.NewScan(tabID, req.UserID, req.Headings, opts)
	if err := s.orchestrator.Submit(scan); err != nil {
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	snap := scan.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]any{
		"scan_id":  snap.ID,
		"tab_id":   snap.TabID,
		"sequence": snap.Sequence,
		"status":   snap.Status,
		"poll_url": fmt.Sprintf("/api/scans/%s", snap.ID),
	})
}

func (s *Server) handleScanStatus(w http.ResponseWriter, r *http.Request) {
	scan := s.orchestrator.GetScan(chi.URLParam(r, "scanID"))
	if scan == nil {
		jsonError(w, "scan not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(scan.Snapshot())
}

func (s *Server) handleTabOutline(w http.ResponseWriter, r *http.Request) {
	format, err := requestedFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	out := s.orchestrator.Outline(chi.URLParam(r, "tabID"))
	if out == nil {
		jsonError(w, "no outline for tab", http.StatusNotFound)
		return
	}
	w.Header().Set("X-Scan-Id", out.ScanID)
	w.Header().Set("X-Scan-Sequence", fmt.Sprint(out.Sequence))
	s.writeOutline(w, format, "", out.Result)
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	s.orchestrator.CloseTab(chi.URLParam(r, "tabID"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	s.activate(w, r, false)
}

func (s *Server) handleFocus(w http.ResponseWriter, r *http.Request) {
	s.activate(w, r, true)
}

// activate relays the chosen tree item back to the page as a highlight or a
// focus request.
func (s *Server) activate(w http.ResponseWriter, r *http.Request, focus bool) {
	tabID := chi.URLParam(r, "tabID")
	out := s.orchestrator.Outline(tabID)
	if out == nil {
		jsonError(w, "no outline for tab", http.StatusNotFound)
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	var h presenter.Highlighter = relay.LogHighlighter{Log: s.log, TabID: tabID}
	if s.bridge != nil {
		h = relay.Tab{Client: s.bridge, TabID: tabID, Focus: focus}
	}

	view := presenter.NewView(out.Result.Nodes)
	sent, err := view.Activate(r.Context(), h, req.Ordinal)
	switch {
	case errors.Is(err, presenter.ErrUnknownOrdinal):
		jsonError(w, err.Error(), http.StatusNotFound)
		return
	case err != nil:
		s.log.Warn("relay failed", "tab_id", tabID, "ordinal", req.Ordinal, "error", err)
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(sent)
}
