package memory

import (
	"context"
	"sync"

	"finweb/internal/core"
	ports "finweb/internal/sheets"
)

var _ ports.TransactionExporter = (*Store)(nil)

// Export is one recorded call to ExportTransactions.
type Export struct {
	Account core.Account
	Rows    []ports.Row
}

// Store records exports in memory. Useful for local development and tests.
type Store struct {
	mu      sync.Mutex
	exports []Export
	err     error
}

func New() *Store {
	return &Store{}
}

// FailWith makes subsequent exports return err.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// ExportTransactions records the rows and returns how many were written.
func (s *Store) ExportTransactions(_ context.Context, account core.Account, rows []ports.Row) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	s.exports = append(s.exports, Export{Account: account, Rows: append([]ports.Row(nil), rows...)})
	return len(rows), nil
}

// Exports returns a copy of every recorded export.
func (s *Store) Exports() []Export {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Export(nil), s.exports...)
}
