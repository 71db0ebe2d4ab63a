// Package sheets exports account transactions to spreadsheet targets.
package sheets

import (
	"context"

	"finweb/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter appends an account's transactions to an external sheet.
	TransactionExporter interface {
		// ExportTransactions returns the number of transaction rows written.
		ExportTransactions(ctx context.Context, account core.Account, rows []Row) (int, error)
	}
)
