package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finweb/internal/core"
)

func TestAccountFormInput(t *testing.T) {
	valid := AccountForm{Name: "Main", Balance: "1 200,50", CurrencyCode: "PLN", Type: "credit"}

	tests := []struct {
		name    string
		mutate  func(*AccountForm)
		wantMsg string
	}{
		{"valid", func(*AccountForm) {}, ""},
		{"missing name", func(f *AccountForm) { f.Name = "" }, "Account name is required."},
		{"missing balance", func(f *AccountForm) { f.Balance = "" }, "Balance is required."},
		{"missing currency", func(f *AccountForm) { f.CurrencyCode = "" }, "Currency is required."},
		{"bad balance", func(f *AccountForm) { f.Balance = "lots" }, "Balance must be a number."},
		{"negative balance allowed", func(f *AccountForm) { f.Balance = "-10" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := valid
			tt.mutate(&f)
			_, msg := f.Input()
			if msg != tt.wantMsg {
				t.Errorf("Input() message = %q, want %q", msg, tt.wantMsg)
			}
		})
	}

	in, _ := valid.Input()
	if !in.Balance.Equal(decimal.RequireFromString("1200.50")) {
		t.Errorf("Balance = %s, want 1200.50", in.Balance)
	}
	if in.Type != core.AccountCredit {
		t.Errorf("Type = %v, want credit", in.Type)
	}
}

func TestCategoryFormInput(t *testing.T) {
	tests := []struct {
		name      string
		form      CategoryForm
		wantMsg   string
		wantColor string
	}{
		{"valid", CategoryForm{Name: "Food", Color: "#ff0000"}, "", "#ff0000"},
		{"default color", CategoryForm{Name: "Food"}, "", core.DefaultCategoryColor},
		{"missing name", CategoryForm{Color: "#ff0000"}, "Category name is required.", ""},
		{"blank name", CategoryForm{Name: "   "}, "Category name is required.", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, msg := tt.form.Input()
			if msg != tt.wantMsg {
				t.Fatalf("Input() message = %q, want %q", msg, tt.wantMsg)
			}
			if in.Color != tt.wantColor {
				t.Errorf("Color = %q, want %q", in.Color, tt.wantColor)
			}
		})
	}
}

func TestTransactionFormInput(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		form       TransactionForm
		wantMsg    string
		wantAmount string
		wantType   core.TransactionType
		wantName   string
		wantDate   time.Time
	}{
		{
			name:       "negative amount becomes absolute",
			form:       TransactionForm{Type: "income", Amount: "-50"},
			wantAmount: "50",
			wantType:   core.TransactionIncome,
			wantName:   defaultTransactionName,
			wantDate:   now,
		},
		{
			name:       "comma decimal and explicit date",
			form:       TransactionForm{Type: "expense", Amount: "12,30", Description: "Lunch", Date: "2024-03-01"},
			wantAmount: "12.3",
			wantType:   core.TransactionExpense,
			wantName:   "Lunch",
			wantDate:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:       "unknown type defaults to income",
			form:       TransactionForm{Type: "refund", Amount: "1"},
			wantAmount: "1",
			wantType:   core.TransactionIncome,
			wantName:   defaultTransactionName,
			wantDate:   now,
		},
		{name: "missing amount", form: TransactionForm{Type: "income"}, wantMsg: "Amount is required."},
		{name: "bad amount", form: TransactionForm{Amount: "ten"}, wantMsg: "Amount must be a number."},
		{name: "bad date", form: TransactionForm{Amount: "1", Date: "15.06.2024"}, wantMsg: "Date must use the YYYY-MM-DD format."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, msg := tt.form.Input("EUR", now)
			if msg != tt.wantMsg {
				t.Fatalf("Input() message = %q, want %q", msg, tt.wantMsg)
			}
			if msg != "" {
				return
			}
			if !in.Amount.Equal(decimal.RequireFromString(tt.wantAmount)) {
				t.Errorf("Amount = %s, want %s", in.Amount, tt.wantAmount)
			}
			if in.Type != tt.wantType {
				t.Errorf("Type = %v, want %v", in.Type, tt.wantType)
			}
			if in.Name != tt.wantName {
				t.Errorf("Name = %q, want %q", in.Name, tt.wantName)
			}
			if !in.Date.Equal(tt.wantDate) {
				t.Errorf("Date = %v, want %v", in.Date, tt.wantDate)
			}
			if in.CurrencyCode != "EUR" {
				t.Errorf("CurrencyCode = %q, want EUR", in.CurrencyCode)
			}
		})
	}
}

func TestTransactionFormInput_TransferFields(t *testing.T) {
	now := time.Now()
	form := TransactionForm{Amount: "5", SenderAccountID: "1", ReceiverAccountID: "2"}

	in, _ := form.Input("PLN", now)
	if in.SenderAccountID != "" || in.ReceiverAccountID != "" {
		t.Errorf("non-transfer kept account ids: %+v", in)
	}

	form.Type = "transfer"
	in, _ = form.Input("PLN", now)
	if in.SenderAccountID != "1" || in.ReceiverAccountID != "2" {
		t.Errorf("transfer lost account ids: %+v", in)
	}
}

func TestParseForm(t *testing.T) {
	form := url.Values{
		"name":     {"  Main\x00 "},
		"currency": {"eur"},
	}
	req := httptest.NewRequest(http.MethodPost, "/accounts/add", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	values, err := parseForm(req)
	if err != nil {
		t.Fatalf("parseForm() error = %v", err)
	}
	f := parseAccountForm(values)
	if f.Name != "Main" {
		t.Errorf("Name = %q, want trimmed and sanitized", f.Name)
	}
	if f.CurrencyCode != "EUR" {
		t.Errorf("CurrencyCode = %q, want EUR", f.CurrencyCode)
	}
}

func TestTransactionFormFrom(t *testing.T) {
	tx := core.Transaction{
		ID:         "9",
		Type:       core.TransactionExpense,
		Amount:     decimal.RequireFromString("12.5"),
		CategoryID: "3",
		Name:       "Lunch",
		Date:       time.Date(2024, 3, 1, 12, 0, 0, 0, time.Local),
	}

	f := transactionFormFrom(tx)
	if f.Type != "expense" || f.Amount != "12.5" || f.Category != "3" || f.Description != "Lunch" {
		t.Errorf("form = %+v", f)
	}
	if f.Date != "2024-03-01" {
		t.Errorf("Date = %q, want 2024-03-01", f.Date)
	}
}

func TestTransactionFormDate_SurvivesNonUTCLocalZone(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("EST", -5*3600)
	t.Cleanup(func() { time.Local = orig })

	in, msg := TransactionForm{Amount: "1", Date: "2024-03-05"}.Input("PLN", time.Now())
	if msg != "" {
		t.Fatalf("Input() message = %q", msg)
	}

	if got := transactionFormFrom(core.Transaction{Date: in.Date}).Date; got != "2024-03-05" {
		t.Errorf("form date = %q, want 2024-03-05", got)
	}
	if got := core.FormatDisplayDate(in.Date, "02.01.2006"); got != "05.03.2024" {
		t.Errorf("display date = %q, want 05.03.2024", got)
	}
}
