package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategoryColor is used when a category is submitted without a color.
const DefaultCategoryColor = "#495057"

// NoCategoryName is displayed for transactions without a resolvable category.
const NoCategoryName = "None"

type (
	// SharedAccess is one grant of access to an account for another user.
	SharedAccess struct {
		UserID      string
		Email       string
		AccessLevel AccessLevel
	}

	Account struct {
		ID            string
		Name          string
		Balance       decimal.Decimal
		CurrencyCode  string
		AccountNumber string
		Description   string
		Type          AccountType
		SharedUsers   []SharedAccess
	}

	Category struct {
		ID          string
		Name        string
		Description string
		Color       string
	}

	Transaction struct {
		ID                string
		AccountID         string
		Type              TransactionType
		Amount            decimal.Decimal // always non-negative, direction comes from Type
		CategoryID        string
		Name              string
		CurrencyCode      string
		SenderAccountID   string
		ReceiverAccountID string
		Date              time.Time
	}
)

// Write-side shapes submitted by the forms.
type (
	AccountInput struct {
		Name          string
		Balance       decimal.Decimal
		CurrencyCode  string
		AccountNumber string
		Description   string
		Type          AccountType
	}

	CategoryInput struct {
		Name        string
		Description string
		Color       string
	}

	TransactionInput struct {
		Type              TransactionType
		Amount            decimal.Decimal
		CategoryID        string
		Name              string
		CurrencyCode      string
		SenderAccountID   string
		ReceiverAccountID string
		Date              time.Time
	}
)

var (
	ErrEmptyName     = errors.New("name is required")
	ErrEmptyCurrency = errors.New("currency is required")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidDate   = errors.New("invalid date")
)

func (in AccountInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	if strings.TrimSpace(in.CurrencyCode) == "" {
		return ErrEmptyCurrency
	}
	return nil
}

func (in CategoryInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Normalized returns a copy with the default color applied.
func (in CategoryInput) Normalized() CategoryInput {
	if strings.TrimSpace(in.Color) == "" {
		in.Color = DefaultCategoryColor
	}
	return in
}

func (in TransactionInput) Validate() error {
	if in.Amount.IsNegative() {
		return ErrInvalidAmount
	}
	if in.Date.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Normalized returns a copy ready to be sent: the amount is absolute and
// transfer-only fields are cleared for other types.
func (in TransactionInput) Normalized() TransactionInput {
	in.Amount = in.Amount.Abs()
	if in.Type != TransactionTransfer {
		in.SenderAccountID = ""
		in.ReceiverAccountID = ""
	}
	return in
}
