// Package http provides HTTP server and handler implementations.
//
// This file implements parsing of the HTML forms into form view models. Form
// models keep every submitted value as the raw string so a rejected
// submission can be rendered again exactly as the user typed it.

package http

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"finweb/internal/core"
)

const (
	defaultTransactionName = "New transaction"
	invalidFormMessage     = "Invalid form submission."
)

// formValue returns a sanitized form field.
func formValue(form url.Values, key string) string {
	return sanitizeInput(form.Get(key))
}

// parseForm parses a urlencoded or multipart body.
func parseForm(r *http.Request) (url.Values, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			return nil, err
		}
		return r.PostForm, nil
	}
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return r.PostForm, nil
}

// AccountForm holds the account form fields.
type AccountForm struct {
	ID            string
	Name          string
	Balance       string
	CurrencyCode  string
	AccountNumber string
	Description   string
	Type          string
}

func accountFormFrom(a core.Account) AccountForm {
	return AccountForm{
		ID:            a.ID,
		Name:          a.Name,
		Balance:       a.Balance.String(),
		CurrencyCode:  a.CurrencyCode,
		AccountNumber: a.AccountNumber,
		Description:   a.Description,
		Type:          a.Type.String(),
	}
}

func parseAccountForm(form url.Values) AccountForm {
	return AccountForm{
		Name:          formValue(form, "name"),
		Balance:       formValue(form, "balance"),
		CurrencyCode:  strings.ToUpper(formValue(form, "currency")),
		AccountNumber: formValue(form, "accountNumber"),
		Description:   formValue(form, "description"),
		Type:          formValue(form, "type"),
	}
}

// Input validates presence of the required fields and builds the write model.
// The returned message is empty when the form is valid.
func (f AccountForm) Input() (core.AccountInput, string) {
	if f.Name == "" {
		return core.AccountInput{}, "Account name is required."
	}
	if f.Balance == "" {
		return core.AccountInput{}, "Balance is required."
	}
	if f.CurrencyCode == "" {
		return core.AccountInput{}, "Currency is required."
	}
	balance, err := core.ParseBalance(f.Balance)
	if err != nil {
		return core.AccountInput{}, "Balance must be a number."
	}
	in := core.AccountInput{
		Name:          f.Name,
		Balance:       balance,
		CurrencyCode:  f.CurrencyCode,
		AccountNumber: f.AccountNumber,
		Description:   f.Description,
		Type:          core.ParseAccountType(f.Type),
	}
	if err := in.Validate(); err != nil {
		return core.AccountInput{}, "Account name and currency are required."
	}
	return in, ""
}

// CategoryForm holds the category form fields.
type CategoryForm struct {
	ID          string
	Name        string
	Description string
	Color       string
}

func categoryFormFrom(c core.Category) CategoryForm {
	return CategoryForm{ID: c.ID, Name: c.Name, Description: c.Description, Color: c.Color}
}

func parseCategoryForm(form url.Values) CategoryForm {
	return CategoryForm{
		Name:        formValue(form, "name"),
		Description: formValue(form, "description"),
		Color:       formValue(form, "color"),
	}
}

// Input validates the category form. The color falls back to the default.
func (f CategoryForm) Input() (core.CategoryInput, string) {
	in := core.CategoryInput{Name: f.Name, Description: f.Description, Color: f.Color}
	if err := in.Validate(); err != nil {
		return core.CategoryInput{}, "Category name is required."
	}
	return in.Normalized(), ""
}

// TransactionForm holds the transaction form fields.
type TransactionForm struct {
	ID                string
	Type              string
	Amount            string
	Category          string
	Description       string
	Date              string
	SenderAccountID   string
	ReceiverAccountID string
}

func transactionFormFrom(tx core.Transaction) TransactionForm {
	f := TransactionForm{
		ID:                tx.ID,
		Type:              tx.Type.String(),
		Amount:            tx.Amount.String(),
		Category:          tx.CategoryID,
		Description:       tx.Name,
		SenderAccountID:   tx.SenderAccountID,
		ReceiverAccountID: tx.ReceiverAccountID,
	}
	if !tx.Date.IsZero() {
		f.Date = tx.Date.Local().Format(core.FormDateLayout)
	}
	return f
}

func parseTransactionForm(form url.Values) TransactionForm {
	return TransactionForm{
		Type:              formValue(form, "type"),
		Amount:            formValue(form, "amount"),
		Category:          formValue(form, "category"),
		Description:       formValue(form, "description"),
		Date:              formValue(form, "date"),
		SenderAccountID:   formValue(form, "senderAccountId"),
		ReceiverAccountID: formValue(form, "receiverAccountId"),
	}
}

// Input builds the write model. The amount is sent as its absolute value, the
// currency comes from the owning account and an empty date means now.
func (f TransactionForm) Input(currency string, now time.Time) (core.TransactionInput, string) {
	if f.Amount == "" {
		return core.TransactionInput{}, "Amount is required."
	}
	amount, err := core.ParseAmount(f.Amount)
	if err != nil {
		return core.TransactionInput{}, "Amount must be a number."
	}
	date, err := core.ParseFormDate(f.Date, now)
	if err != nil {
		return core.TransactionInput{}, "Date must use the YYYY-MM-DD format."
	}

	name := f.Description
	if name == "" {
		name = defaultTransactionName
	}
	in := core.TransactionInput{
		Type:              core.ParseTransactionType(f.Type),
		Amount:            amount,
		CategoryID:        f.Category,
		Name:              name,
		CurrencyCode:      currency,
		SenderAccountID:   f.SenderAccountID,
		ReceiverAccountID: f.ReceiverAccountID,
		Date:              date,
	}.Normalized()
	if err := in.Validate(); err != nil {
		return core.TransactionInput{}, "Amount and date are required."
	}
	return in, ""
}

// ShareForm holds the account sharing form fields.
type ShareForm struct {
	Email       string
	AccessLevel string
}

func parseShareForm(form url.Values) ShareForm {
	return ShareForm{
		Email:       formValue(form, "email"),
		AccessLevel: formValue(form, "accessLevel"),
	}
}

// LoginForm holds the login form fields. The password is never echoed back.
type LoginForm struct {
	Email string
}
