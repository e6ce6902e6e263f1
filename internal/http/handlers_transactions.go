package http

import (
	"fmt"
	"net/http"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
	applog "zenledger/internal/log"
)

type transactionsResponse struct {
	Selection ledger.Selection `json:"selection"`
	View      ledger.View      `json:"view"`
}

// handleListTransactions projects the log through the account and tag
// filters. Filters naming a deleted account or tag are dropped.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	order, err := parseSort(q, s.ledger.Preferences().DefaultSort)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	snap := s.ledger.Snapshot()
	sel := selectionFrom(q).Resolve(snap.Accounts, snap.Tags)
	view := ledger.Project(snap.Transactions, ledger.ViewOptions{
		AccountID: sel.AccountID,
		TagID:     sel.TagID,
		Sort:      order,
		Location:  s.loc,
	})
	writeJSON(w, http.StatusOK, transactionsResponse{Selection: sel, View: view})
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tx, ok := s.ledger.Transaction(id)
	if !ok {
		writeError(w, r, applog.OpRead, fmt.Errorf("transaction %s: %w", id, core.ErrNotFound))
		return
	}
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.Transaction
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.createTransaction(w, r, in)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request, in core.Transaction) {
	in.ID = ""
	in.Note = sanitizeInput(in.Note)
	saved, err := s.ledger.AddTransaction(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var in core.Transaction
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	in.Note = sanitizeInput(in.Note)
	saved, err := s.ledger.UpdateTransaction(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeNoContent(w)
}
