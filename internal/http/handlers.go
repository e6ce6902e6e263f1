package http

import (
	"fmt"
	"net/http"

	"zenledger/internal/assistant"
	"zenledger/internal/core"
	applog "zenledger/internal/log"
)

type askRequest struct {
	Input string `json:"input"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var in askRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	if s.assistant == nil {
		writeJSON(w, http.StatusOK, assistant.Response{Action: assistant.ActionChat, Text: assistant.MissingKeyText})
		return
	}
	resp, err := s.assistant.Ask(r.Context(), sanitizeInput(in.Input))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleAcceptDraft saves an assistant draft through the normal create path.
func (s *Server) handleAcceptDraft(w http.ResponseWriter, r *http.Request) {
	var in core.Transaction
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.createTransaction(w, r, in)
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Preferences())
}

func (s *Server) handleSetPreferences(w http.ResponseWriter, r *http.Request) {
	var in core.Preferences
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	if err := in.Validate(); err != nil {
		writeError(w, r, applog.OpUpdate, fmt.Errorf("preferences: %w", err))
		return
	}
	saved, err := s.ledger.SetPreferences(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}
