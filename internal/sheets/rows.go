package sheets

import (
	"sort"

	"finweb/internal/core"
)

// Columns lists the exported columns in order.
var Columns = []string{"Date", "Name", "Type", "Amount", "Currency", "Category"}

// Row is one exported transaction, already formatted for display.
type Row struct {
	Date     string
	Name     string
	Type     string
	Amount   string
	Currency string
	Category string
}

// Values returns the row as spreadsheet cells in column order.
func (r Row) Values() []any {
	return []any{r.Date, r.Name, r.Type, r.Amount, r.Currency, r.Category}
}

// BuildRows formats transactions oldest first. Transactions without a currency
// inherit the account's.
func BuildRows(account core.Account, txs []core.Transaction, categories core.CategoryIndex, dateLayout string) []Row {
	sorted := make([]core.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	rows := make([]Row, 0, len(sorted))
	for _, tx := range sorted {
		currency := tx.CurrencyCode
		if currency == "" {
			currency = account.CurrencyCode
		}
		rows = append(rows, Row{
			Date:     core.FormatDisplayDate(tx.Date, dateLayout),
			Name:     tx.Name,
			Type:     tx.Type.String(),
			Amount:   tx.Amount.StringFixed(2),
			Currency: currency,
			Category: categories.Resolve(tx.CategoryID),
		})
	}
	return rows
}
