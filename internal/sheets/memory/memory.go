package memory

import (
	"context"
	"sync"

	ports "zenledger/internal/sheets"
)

var _ ports.RowWriter = (*Store)(nil)

// Store keeps the exported rows in memory for tests of the sheet sink.
type Store struct {
	mu     sync.Mutex
	rows   [][]string
	writes int

	// FailWrites, when set, is returned by every ReplaceRows call.
	FailWrites error
}

func New() *Store {
	return &Store{}
}

// ReplaceRows stores a copy of rows.
func (s *Store) ReplaceRows(_ context.Context, rows [][]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailWrites != nil {
		return s.FailWrites
	}
	s.rows = copyRows(rows)
	s.writes++
	return nil
}

// Rows returns a copy of the last written rows.
func (s *Store) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyRows(s.rows)
}

// Writes reports how many successful replacements happened.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func copyRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, row := range in {
		out[i] = append([]string(nil), row...)
	}
	return out
}
