package memory

import (
	"context"
	"errors"
	"testing"

	"finweb/internal/core"
	ports "finweb/internal/sheets"
)

func TestStore_ExportTransactions(t *testing.T) {
	s := New()
	rows := []ports.Row{{Name: "Lunch", Amount: "12.50"}, {Name: "Salary", Amount: "3000.00"}}

	n, err := s.ExportTransactions(context.Background(), core.Account{ID: "1"}, rows)
	if err != nil {
		t.Fatalf("ExportTransactions() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ExportTransactions() = %d, want 2", n)
	}

	rows[0].Name = "mutated"
	exports := s.Exports()
	if len(exports) != 1 || exports[0].Account.ID != "1" || exports[0].Rows[0].Name != "Lunch" {
		t.Errorf("Exports() = %+v", exports)
	}
}

func TestStore_FailWith(t *testing.T) {
	s := New()
	boom := errors.New("quota exceeded")
	s.FailWith(boom)

	if _, err := s.ExportTransactions(context.Background(), core.Account{}, nil); !errors.Is(err, boom) {
		t.Errorf("ExportTransactions() error = %v, want %v", err, boom)
	}
	if len(s.Exports()) != 0 {
		t.Error("failed export must not be recorded")
	}
}
