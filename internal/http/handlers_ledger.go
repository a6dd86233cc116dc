package http

import (
	"fmt"
	"net/http"
	"time"

	"ledger/internal/core"
	"ledger/internal/log"
)

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.deps.Repos.Config.Get(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var cfg core.UserConfig
	if err := decodeJSON(w, r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	updated, err := s.deps.Repos.Config.Update(r.Context(), cfg)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	rng, err := parseDateRange(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rep, err := s.deps.Reports.Report(r.Context(), rng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	doc, err := s.deps.Backup.Export(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	name := fmt.Sprintf("ledger-backup-%s.json", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := core.EncodeDocument(w, doc); err != nil {
		s.logger.LogError(r.Context(), "Failed to write export", err, log.OpExport, nil)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	res, err := s.deps.Backup.ImportJSON(r.Context(), http.MaxBytesReader(w, r.Body, maxDocumentBytes))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.deps.Backup.ResetToDefaults(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
