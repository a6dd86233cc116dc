package http

import (
	"net/http"

	"ledger/internal/core"
)

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

func (s *Server) handleQueryTransactions(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	rows, err := s.deps.Repos.Transactions.Query(r.Context(), f)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.deps.Repos.Transactions.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if t == nil {
		s.writeError(w, r, core.NewNotFoundError(core.EntityTransaction, id))
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	id, err := s.deps.Repos.Transactions.Add(r.Context(), t)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var t core.Transaction
	if err := decodeJSON(w, r, &t); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Repos.Transactions.Update(r.Context(), id, t); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Repos.Transactions.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDeleteTransactions(w http.ResponseWriter, r *http.Request) {
	var req bulkDeleteRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.deps.Repos.Transactions.DeleteMany(r.Context(), req.IDs); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
