package http

import (
	"net/http"

	"zenledger/internal/ledger"
	applog "zenledger/internal/log"
)

type summaryResponse struct {
	Window    string            `json:"window"`
	Period    ledger.Period     `json:"period"`
	Selection ledger.Selection  `json:"selection"`
	Summary   ledger.Summary    `json:"summary"`
	Budgets   []ledger.Budget   `json:"budgets"`
	Breakdown []ledger.Slice    `json:"breakdown"`
	TagTotals []ledger.TagTotal `json:"tagTotals"`
}

type seriesResponse struct {
	Window  string          `json:"window"`
	Period  ledger.Period   `json:"period"`
	Buckets []ledger.Bucket `json:"buckets"`
}

type trendResponse struct {
	Months  int             `json:"months"`
	Buckets []ledger.Bucket `json:"buckets"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := parseWindow(q, s.now(), s.loc)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	snap := s.ledger.Snapshot()
	sel := ledger.Selection{TagID: sanitizeInput(q.Get("tag"))}.Resolve(snap.Accounts, snap.Tags)

	report := ledger.Aggregate(snap.Tags, snap.Transactions, win, sel.TagID)
	writeJSON(w, http.StatusOK, summaryResponse{
		Window:    win.String(),
		Period:    win.Period,
		Selection: sel,
		Summary:   report.Summary,
		Budgets:   report.Budgets,
		Breakdown: report.Breakdown,
		TagTotals: ledger.TagTotals(snap.Tags, snap.Transactions, win),
	})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := parseWindow(q, s.now(), s.loc)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	snap := s.ledger.Snapshot()
	sel := selectionFrom(q).Resolve(snap.Accounts, snap.Tags)
	txs := ledger.Filter(snap.Transactions, sel.AccountID, sel.TagID)
	writeJSON(w, http.StatusOK, seriesResponse{
		Window:  win.String(),
		Period:  win.Period,
		Buckets: ledger.Series(txs, win),
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	n, err := parseMonths(r.URL.Query())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	snap := s.ledger.Snapshot()
	writeJSON(w, http.StatusOK, trendResponse{
		Months:  n,
		Buckets: ledger.RecentMonths(snap.Transactions, s.now(), n, s.loc),
	})
}
