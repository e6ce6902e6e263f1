package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// fakeSheets serves the values endpoints the client uses.
type fakeSheets struct {
	mu      sync.Mutex
	values  [][]any
	clears  int
	updates []string
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":clear"):
		f.clears++
		f.values = nil
		w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		var vr gsheet.ValueRange
		if err := json.NewDecoder(r.Body).Decode(&vr); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.updates = append(f.updates, r.URL.Query().Get("valueInputOption"))
		f.values = vr.Values
		w.Write([]byte(`{}`))
	default:
		http.Error(w, "unexpected "+r.Method+" "+r.URL.Path, http.StatusNotFound)
	}
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return NewWithService(svc, "sheet-123", "")
}

func TestClient_ReplaceRows(t *testing.T) {
	fake := &fakeSheets{values: [][]any{{"stale"}}}
	c := newTestClient(t, fake)
	ctx := context.Background()

	rows := [][]string{
		{"Date", "Type", "Amount"},
		{"2024-03-01", "expense", "12.50"},
	}
	if err := c.ReplaceRows(ctx, rows); err != nil {
		t.Fatalf("ReplaceRows() error = %v", err)
	}
	if fake.clears != 1 || len(fake.updates) != 1 || fake.updates[0] != "RAW" {
		t.Fatalf("clears=%d updates=%v", fake.clears, fake.updates)
	}

	want := [][]any{
		{"Date", "Type", "Amount"},
		{"2024-03-01", "expense", "12.50"},
	}
	if !reflect.DeepEqual(fake.values, want) {
		t.Errorf("sheet values = %v, want %v", fake.values, want)
	}
}

func TestClient_ReplaceWithNoRowsOnlyClears(t *testing.T) {
	fake := &fakeSheets{values: [][]any{{"stale"}}}
	c := newTestClient(t, fake)

	if err := c.ReplaceRows(context.Background(), nil); err != nil {
		t.Fatalf("ReplaceRows() error = %v", err)
	}
	if fake.clears != 1 || len(fake.updates) != 0 || fake.values != nil {
		t.Errorf("clears=%d updates=%v values=%v", fake.clears, fake.updates, fake.values)
	}
}

func TestClient_NotInitialized(t *testing.T) {
	c := &Client{spreadsheetID: "x", sheetName: "Transactions"}
	if err := c.ReplaceRows(context.Background(), [][]string{{"Date"}}); err == nil {
		t.Error("expected error without service")
	}
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Options{CredentialsJSON: "{}"})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet-123"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Options{SpreadsheetID: "sheet-123", CredentialsFile: "/non/existent.json"})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("unexpected error: %v", err)
	}
}
