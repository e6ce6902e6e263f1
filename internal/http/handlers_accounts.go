package http

import (
	"net/http"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
	applog "zenledger/internal/log"
	"zenledger/internal/store"
)

type accountsResponse struct {
	Accounts []ledger.AccountBalance `json:"accounts"`
	Position ledger.Position         `json:"position"`
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	balances := ledger.Balances(snap.Accounts, snap.Transactions)
	writeJSON(w, http.StatusOK, accountsResponse{
		Accounts: balances,
		Position: ledger.PositionOf(balances),
	})
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var in core.Account
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in.ID = ""
	in.Name = sanitizeInput(in.Name)
	saved, err := s.ledger.AddAccount(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var patch store.AccountPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	if patch.Name != nil {
		name := sanitizeInput(*patch.Name)
		patch.Name = &name
	}
	saved, err := s.ledger.UpdateAccount(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeNoContent(w)
}
