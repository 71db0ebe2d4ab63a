package financeapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"finweb/internal/core"
)

// wireID accepts identifiers encoded either as JSON numbers or strings.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

// wireEnum accepts enumeration values sent either as integer codes or names.
type wireEnum string

func (e *wireEnum) UnmarshalJSON(b []byte) error {
	var id wireID
	if err := id.UnmarshalJSON(b); err != nil {
		return err
	}
	*e = wireEnum(id)
	return nil
}

// canonicalID picks the first non-empty identifier among the accepted spellings.
// Field matching in encoding/json is case-insensitive, so "id" also covers "Id" and "ID".
func canonicalID(ids ...wireID) string {
	for _, id := range ids {
		if id != "" {
			return string(id)
		}
	}
	return ""
}

// idValue sends numeric identifiers as JSON numbers and anything else as a string.
// Empty identifiers encode as null.
func idValue(id string) any {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	if n, err := strconv.ParseInt(id, 10, 64); err == nil {
		return n
	}
	return id
}

// Accounts use the API's PascalCase DTO.

type accountResponse struct {
	ID            wireID                 `json:"id"`
	MongoID       wireID                 `json:"_id"`
	Name          string                 `json:"name"`
	Balance       decimal.Decimal        `json:"balance"`
	CurrencyCode  string                 `json:"currencyCode"`
	Currency      string                 `json:"currency"`
	AccountNumber string                 `json:"accountNumber"`
	Description   string                 `json:"description"`
	Type          wireEnum               `json:"type"`
	SharedUsers   []sharedAccessResponse `json:"sharedUsers"`
}

type sharedAccessResponse struct {
	UserID      wireID   `json:"userId"`
	ID          wireID   `json:"id"`
	Email       string   `json:"email"`
	UserEmail   string   `json:"userEmail"`
	AccessLevel wireEnum `json:"accessLevel"`
}

func (a accountResponse) toCore() core.Account {
	acc := core.Account{
		ID:            canonicalID(a.ID, a.MongoID),
		Name:          a.Name,
		Balance:       a.Balance,
		CurrencyCode:  firstNonEmpty(a.CurrencyCode, a.Currency),
		AccountNumber: a.AccountNumber,
		Description:   a.Description,
		Type:          core.ParseAccountType(string(a.Type)),
	}
	for _, s := range a.SharedUsers {
		level, _ := core.ParseAccessLevel(string(s.AccessLevel))
		acc.SharedUsers = append(acc.SharedUsers, core.SharedAccess{
			UserID:      canonicalID(s.UserID, s.ID),
			Email:       firstNonEmpty(s.Email, s.UserEmail),
			AccessLevel: level,
		})
	}
	return acc
}

type accountRequest struct {
	ID            any     `json:"Id,omitempty"`
	Name          string  `json:"Name"`
	Balance       float64 `json:"Balance"`
	CurrencyCode  string  `json:"CurrencyCode"`
	AccountNumber string  `json:"AccountNumber"`
	Description   string  `json:"Description"`
	Type          int     `json:"Type"`
	ShowInSummary bool    `json:"ShowInSummary"`
	OwnerID       *int    `json:"OwnerId,omitempty"`
}

func newAccountRequest(in core.AccountInput) accountRequest {
	return accountRequest{
		Name:          strings.TrimSpace(in.Name),
		Balance:       in.Balance.InexactFloat64(),
		CurrencyCode:  strings.ToUpper(strings.TrimSpace(in.CurrencyCode)),
		AccountNumber: strings.TrimSpace(in.AccountNumber),
		Description:   strings.TrimSpace(in.Description),
		Type:          in.Type.Code(),
		ShowInSummary: true,
	}
}

type shareRequest struct {
	Email       string `json:"Email"`
	AccessLevel int    `json:"AccessLevel"`
}

type accessUpdateRequest struct {
	AccessLevel int `json:"AccessLevel"`
}

// Categories use camelCase.

type categoryResponse struct {
	ID          wireID `json:"id"`
	MongoID     wireID `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Color       string `json:"color"`
}

func (c categoryResponse) toCore() core.Category {
	return core.Category{
		ID:          canonicalID(c.ID, c.MongoID),
		Name:        c.Name,
		Description: c.Description,
		Color:       c.Color,
	}
}

type categoryRequest struct {
	ID          any    `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color"`
}

func newCategoryRequest(in core.CategoryInput) categoryRequest {
	in = in.Normalized()
	return categoryRequest{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
		Color:       strings.TrimSpace(in.Color),
	}
}

// Transactions use camelCase.

type transactionResponse struct {
	ID                wireID          `json:"id"`
	MongoID           wireID          `json:"_id"`
	AccountID         wireID          `json:"accountId"`
	Type              wireEnum        `json:"type"`
	Amount            decimal.Decimal `json:"amount"`
	CategoryID        wireID          `json:"categoryId"`
	Name              string          `json:"name"`
	Description       string          `json:"description"`
	CurrencyCode      string          `json:"currencyCode"`
	SenderAccountID   wireID          `json:"senderAccountId"`
	ReceiverAccountID wireID          `json:"receiverAccountId"`
	Date              string          `json:"date"`
}

func (t transactionResponse) toCore() core.Transaction {
	return core.Transaction{
		ID:                canonicalID(t.ID, t.MongoID),
		AccountID:         string(t.AccountID),
		Type:              core.ParseTransactionType(string(t.Type)),
		Amount:            t.Amount.Abs(),
		CategoryID:        string(t.CategoryID),
		Name:              firstNonEmpty(t.Name, t.Description),
		CurrencyCode:      t.CurrencyCode,
		SenderAccountID:   string(t.SenderAccountID),
		ReceiverAccountID: string(t.ReceiverAccountID),
		Date:              parseTimestamp(t.Date),
	}
}

type transactionRequest struct {
	ID                any     `json:"id,omitempty"`
	Name              string  `json:"name"`
	Amount            float64 `json:"amount"`
	AccountID         any     `json:"accountId"`
	CategoryID        any     `json:"categoryId"`
	Type              int     `json:"type"`
	CurrencyCode      string  `json:"currencyCode,omitempty"`
	Date              string  `json:"date"`
	SenderAccountID   any     `json:"senderAccountId,omitempty"`
	ReceiverAccountID any     `json:"receiverAccountId,omitempty"`
}

func newTransactionRequest(accountID string, in core.TransactionInput) transactionRequest {
	in = in.Normalized()
	return transactionRequest{
		Name:              strings.TrimSpace(in.Name),
		Amount:            in.Amount.InexactFloat64(),
		AccountID:         idValue(accountID),
		CategoryID:        idValue(in.CategoryID),
		Type:              in.Type.Code(),
		CurrencyCode:      strings.TrimSpace(in.CurrencyCode),
		Date:              in.Date.UTC().Format(time.RFC3339),
		SenderAccountID:   idValue(in.SenderAccountID),
		ReceiverAccountID: idValue(in.ReceiverAccountID),
	}
}

// Auth.

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token       string       `json:"token"`
	AccessToken string       `json:"accessToken"`
	UserID      wireID       `json:"userId"`
	Email       string       `json:"email"`
	User        *userPayload `json:"user"`
}

type userPayload struct {
	ID      wireID `json:"id"`
	MongoID wireID `json:"_id"`
	Email   string `json:"email"`
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	core.FormDateLayout,
}

// parseTimestamp accepts ISO-8601 timestamps with or without a zone. Zoneless
// values are read in local time; unparseable values yield the zero time.
func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
