package http

import (
	"bytes"
	"net/http"

	applog "zenledger/internal/log"
	"zenledger/internal/snapshot"
	"zenledger/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type importResponse struct {
	Restored store.Restored `json:"restored"`
}

func (s *Server) handleExportSnapshot(w http.ResponseWriter, r *http.Request) {
	body, err := snapshot.Marshal(s.ledger.Snapshot().Document())
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeAttachment(w, "application/json", exportName("backup", s.now(), s.loc, "json"), body)
}

// handleImportSnapshot restores the collections present in the uploaded
// document. Nothing changes unless the whole document validates.
func (s *Server) handleImportSnapshot(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r, maxSnapshotBytes)
	if err != nil {
		writeError(w, r, applog.OpRestore, err)
		return
	}
	doc, err := snapshot.Unmarshal(raw)
	if err != nil {
		writeError(w, r, applog.OpRestore, err)
		return
	}
	restored, err := s.ledger.Restore(r.Context(), doc)
	if err != nil {
		writeError(w, r, applog.OpRestore, err)
		return
	}
	writeJSON(w, http.StatusOK, importResponse{Restored: restored})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	var buf bytes.Buffer
	if err := snapshot.WriteCSV(&buf, snap.Accounts, snap.Tags, snap.Transactions, s.loc); err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeAttachment(w, "text/csv; charset=utf-8", exportName("export", s.now(), s.loc, "csv"), buf.Bytes())
}

func (s *Server) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	snap := s.ledger.Snapshot()
	body, err := snapshot.XLSX(snap.Accounts, snap.Tags, snap.Transactions, s.loc)
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}
	writeAttachment(w, xlsxContentType, exportName("export", s.now(), s.loc, "xlsx"), body)
}
