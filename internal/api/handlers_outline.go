package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/dgallion1/outliner/internal/heading"
	"github.com/dgallion1/outliner/internal/outline"
	"github.com/dgallion1/outliner/internal/presenter"
	"github.com/dgallion1/outliner/internal/scanner"
)

type outlineRequest struct {
	Headings        []heading.Record `json:"headings"`
	IncludeHiddenAT bool             `json:"include_hidden_at"`
}

type outlineResponse struct {
	Title   string          `json:"title,omitempty"`
	Count   int             `json:"count"`
	Summary string          `json:"summary"`
	Nodes   []*outline.Node `json:"nodes"`
}

// handleOutline builds a forest synchronously from posted scan records.
func (s *Server) handleOutline(w http.ResponseWriter, r *http.Request) {
	format, err := requestedFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	var req outlineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid json body: "+err.Error(), http.StatusBadRequest)
		return
	}

	if r.URL.Query().Get("strict") == "true" {
		if err := heading.Validate(req.Headings); err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"error":    "malformed headings",
				"problems": heading.Problems(err),
			})
			return
		}
	}

	res := outline.New(req.Headings, heading.Options{IncludeHiddenAT: req.IncludeHiddenAT})
	s.writeOutline(w, format, "", res)
}

// handleOutlineDocument scans an uploaded document and returns its outline.
func (s *Server) handleOutlineDocument(w http.ResponseWriter, r *http.Request) {
	format, err := requestedFormat(r)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	sc, err := scanner.ForFile(filename)
	if err != nil {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	page, err := sc.Scan(io.LimitReader(file, s.cfg.MaxUploadBytes), filename)
	if err != nil {
		s.log.Warn("scan failed", "filename", filename, "error", err)
		jsonError(w, "failed to scan document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	opts := heading.Options{IncludeHiddenAT: r.FormValue("include_hidden_at") == "true"}
	s.writeOutline(w, format, page.Title, outline.New(page.Headings, opts))
}

// outputFormat is the rendering requested with the "format" query value.
type outputFormat string

const (
	formatJSON outputFormat = "json"
	formatHTML outputFormat = "html"
	formatCSV  outputFormat = "csv"
	formatText outputFormat = "text"
)

// requestedFormat reads the "format" query value; an empty value means JSON.
func requestedFormat(r *http.Request) (outputFormat, error) {
	switch f := outputFormat(r.URL.Query().Get("format")); f {
	case "":
		return formatJSON, nil
	case formatJSON, formatHTML, formatCSV, formatText:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format: %s", f)
	}
}

// writeOutline renders res in format.
func (s *Server) writeOutline(w http.ResponseWriter, format outputFormat, title string, res outline.Result) {
	var err error
	switch format {
	case formatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err = presenter.Render(w, res.Nodes, presenter.NewView(res.Nodes))
	case formatCSV:
		w.Header().Set("Content-Type", "text/csv")
		err = presenter.WriteCSV(w, res.Nodes)
	case formatText:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		err = presenter.WriteText(w, res.Nodes)
	default:
		w.Header().Set("Content-Type", "application/json")
		err = json.NewEncoder(w).Encode(outlineResponse{
			Title:   title,
			Count:   res.Count,
			Summary: presenter.Summary(res.Count),
			Nodes:   res.Nodes,
		})
	}
	if err != nil {
		s.log.Error("write outline", "error", err)
	}
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
