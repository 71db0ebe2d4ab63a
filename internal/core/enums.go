// Package core provides the view models shared by the data-access and HTTP layers.
//
// This file holds the fixed tables mapping human-readable enumeration names to the
// integer codes used on the wire by the finance API.
package core

import (
	"strconv"
	"strings"
)

type (
	AccountType     int
	AccessLevel     int
	TransactionType int
)

const (
	AccountPersonal AccountType = 0
	AccountSavings  AccountType = 1
	AccountCredit   AccountType = 2
)

const (
	AccessRead  AccessLevel = 0
	AccessWrite AccessLevel = 1
	AccessOwner AccessLevel = 2
)

const (
	TransactionIncome   TransactionType = 0
	TransactionExpense  TransactionType = 1
	TransactionTransfer TransactionType = 2
)

// Option is a name/label pair used to render select inputs.
type Option struct {
	Value string
	Label string
}

var accountTypeNames = [...]string{"personal", "savings", "credit"}
var accessLevelNames = [...]string{"read", "write", "owner"}
var transactionTypeNames = [...]string{"income", "expense", "transfer"}

func (t AccountType) Code() int { return int(t) }

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return accountTypeNames[0]
	}
	return accountTypeNames[t]
}

// ParseAccountType maps a form value to an account type. Empty or unknown
// values fall back to the first member of the table.
func ParseAccountType(s string) AccountType {
	if i, ok := lookup(accountTypeNames[:], s); ok {
		return AccountType(i)
	}
	return AccountPersonal
}

func (l AccessLevel) Code() int { return int(l) }

func (l AccessLevel) String() string {
	if l < 0 || int(l) >= len(accessLevelNames) {
		return accessLevelNames[0]
	}
	return accessLevelNames[l]
}

// ParseAccessLevel accepts a level name or its numeric code.
func ParseAccessLevel(s string) (AccessLevel, bool) {
	i, ok := lookup(accessLevelNames[:], s)
	return AccessLevel(i), ok
}

func (t TransactionType) Code() int { return int(t) }

func (t TransactionType) String() string {
	if t < 0 || int(t) >= len(transactionTypeNames) {
		return transactionTypeNames[0]
	}
	return transactionTypeNames[t]
}

// ParseTransactionType accepts a type name or its numeric code, defaulting to income.
func ParseTransactionType(s string) TransactionType {
	if i, ok := lookup(transactionTypeNames[:], s); ok {
		return TransactionType(i)
	}
	return TransactionIncome
}

// lookup resolves s against names either by case-insensitive name or by index.
func lookup(names []string, s string) (int, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}
	for i, n := range names {
		if n == s {
			return i, true
		}
	}
	if i, err := strconv.Atoi(s); err == nil && i >= 0 && i < len(names) {
		return i, true
	}
	return 0, false
}

// AccountTypeOptions returns select options for account types.
func AccountTypeOptions() []Option {
	return options(accountTypeNames[:])
}

// AccessLevelOptions returns select options for access levels.
func AccessLevelOptions() []Option {
	return options(accessLevelNames[:])
}

// TransactionTypeOptions returns select options for transaction types.
func TransactionTypeOptions() []Option {
	return options(transactionTypeNames[:])
}

func options(names []string) []Option {
	out := make([]Option, 0, len(names))
	for _, n := range names {
		out = append(out, Option{Value: n, Label: strings.ToUpper(n[:1]) + n[1:]})
	}
	return out
}
