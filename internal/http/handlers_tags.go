package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"

	"zenledger/internal/core"
	applog "zenledger/internal/log"
	"zenledger/internal/store"
)

type budgetRequest struct {
	Limit json.RawMessage `json:"limit"`
}

// limit reads the budget as either a JSON number or a decimal string such as
// "12,50". Both go through core.ParseBudget so rounding matches form input.
// A null or missing limit yields nil.
func (b budgetRequest) limit() (*float64, error) {
	raw := bytes.TrimSpace(b.Limit)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	text := string(raw)
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, core.ErrInvalidBudget
		}
	}
	v, err := core.ParseBudget(text)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

type subTagRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ledger.Snapshot().Tags)
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in core.Tag
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in.ID = ""
	in.Name = sanitizeInput(in.Name)
	saved, err := s.ledger.AddTag(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleUpdateTag(w http.ResponseWriter, r *http.Request) {
	var patch store.TagPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	if patch.Name != nil {
		name := sanitizeInput(*patch.Name)
		patch.Name = &name
	}
	saved, err := s.ledger.UpdateTag(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

// handleSetBudget takes {"limit": n} or {"limit": "n"}; a null or missing
// limit removes the budget.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var in budgetRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	limit, err := in.limit()
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	saved, err := s.ledger.SetBudget(r.Context(), r.PathValue("id"), limit)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleAddSubTag(w http.ResponseWriter, r *http.Request) {
	var in subTagRequest
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	name := sanitizeInput(in.Name)
	if name == "" {
		writeError(w, r, applog.OpUpdate, fmt.Errorf("sub-tag: %w", core.ErrEmptyName))
		return
	}
	saved, err := s.ledger.AddSubTag(r.Context(), r.PathValue("id"), name)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleRemoveSubTag(w http.ResponseWriter, r *http.Request) {
	saved, err := s.ledger.RemoveSubTag(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTag(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	writeNoContent(w)
}

func (s *Server) handleResetTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.ledger.ResetTags(r.Context())
	if err != nil {
		writeError(w, r, applog.OpReset, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}
