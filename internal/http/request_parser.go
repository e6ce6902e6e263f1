package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"zenledger/internal/core"
	"zenledger/internal/ledger"
)

const (
	maxBodyBytes     = 1 << 20
	maxSnapshotBytes = 64 << 20
	maxTrendMonths   = 120
)

// decodeJSON reads a single JSON value from the body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	raw, err := readBody(w, r, maxBodyBytes)
	if err != nil {
		return err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return fmt.Errorf("%w: empty body", errBadRequest)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}

func readBody(w http.ResponseWriter, r *http.Request, limit int64) ([]byte, error) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return raw, nil
}

// parseWindow reads period, year and month from the query. Missing values
// default to the calendar month or year containing now.
func parseWindow(q url.Values, now time.Time, loc *time.Location) (ledger.Window, error) {
	current := ledger.CurrentMonth(now, loc)

	year := current.Year
	if v := strings.TrimSpace(q.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return ledger.Window{}, fmt.Errorf("%w: year %q", errBadRequest, v)
		}
		year = y
	}

	var w ledger.Window
	switch ledger.Period(strings.TrimSpace(q.Get("period"))) {
	case "", ledger.PeriodMonth:
		month := current.Month
		if v := strings.TrimSpace(q.Get("month")); v != "" {
			m, err := strconv.Atoi(v)
			if err != nil {
				return ledger.Window{}, fmt.Errorf("%w: month %q", errBadRequest, v)
			}
			month = time.Month(m)
		}
		w = ledger.MonthWindow(year, month, loc)
	case ledger.PeriodYear:
		w = ledger.YearWindow(year, loc)
	default:
		return ledger.Window{}, fmt.Errorf("%w: period %q", errBadRequest, q.Get("period"))
	}
	if err := w.Validate(); err != nil {
		return ledger.Window{}, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return w, nil
}

// parseSort reads the sort parameter, falling back to fallback when unset.
func parseSort(q url.Values, fallback core.SortOrder) (core.SortOrder, error) {
	v := core.SortOrder(strings.TrimSpace(q.Get("sort")))
	if v == "" {
		if fallback.Valid() {
			return fallback, nil
		}
		return core.SortDateDesc, nil
	}
	if !v.Valid() {
		return "", fmt.Errorf("%w: sort %q", errBadRequest, v)
	}
	return v, nil
}

// parseMonths reads the trend length; it defaults to six.
func parseMonths(q url.Values) (int, error) {
	v := strings.TrimSpace(q.Get("months"))
	if v == "" {
		return 6, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxTrendMonths {
		return 0, fmt.Errorf("%w: months must be between 1 and %d", errBadRequest, maxTrendMonths)
	}
	return n, nil
}

// selectionFrom reads the account and tag filters from the query.
func selectionFrom(q url.Values) ledger.Selection {
	return ledger.Selection{
		AccountID: sanitizeInput(q.Get("account")),
		TagID:     sanitizeInput(q.Get("tag")),
	}
}
