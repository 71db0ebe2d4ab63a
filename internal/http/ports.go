package http

import (
	"context"

	"finweb/internal/amqp"
	"finweb/internal/core"
	"finweb/internal/financeapi"
)

// Ports the handlers depend on. *financeapi.Client satisfies all of them.
type (
	Authenticator interface {
		Login(ctx context.Context, email, password string) (financeapi.Identity, error)
	}

	AccountService interface {
		ListAccounts(ctx context.Context, token string) ([]core.Account, error)
		GetAccount(ctx context.Context, token, id string) (core.Account, error)
		CreateAccount(ctx context.Context, token string, in core.AccountInput) (core.Account, error)
		UpdateAccount(ctx context.Context, token, id string, in core.AccountInput) error
		DeleteAccount(ctx context.Context, token, id string) error
		ShareAccount(ctx context.Context, token, accountID, email string, level core.AccessLevel) error
		UpdateSharedAccess(ctx context.Context, token, accountID, sharedUserID string, level core.AccessLevel) error
		RemoveSharedUser(ctx context.Context, token, accountID, sharedUserID string) error
	}

	CategoryService interface {
		ListCategories(ctx context.Context, token string) ([]core.Category, error)
		GetCategory(ctx context.Context, token, id string) (core.Category, error)
		CreateCategory(ctx context.Context, token string, in core.CategoryInput) (core.Category, error)
		UpdateCategory(ctx context.Context, token, id string, in core.CategoryInput) error
		DeleteCategory(ctx context.Context, token, id string) error
	}

	TransactionService interface {
		ListTransactions(ctx context.Context, token, accountID string) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, token, accountID, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, token, accountID string, in core.TransactionInput) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, token, accountID, id string, in core.TransactionInput) error
		DeleteTransaction(ctx context.Context, token, accountID, id string) error
		TransactionCategory(ctx context.Context, token string, tx core.Transaction) (core.Category, error)
	}

	// FinanceAPI is everything the web layer needs from the remote finance service.
	FinanceAPI interface {
		Authenticator
		AccountService
		CategoryService
		TransactionService
	}

	// ActivityPublisher announces successful mutations. A nil *amqp.Client is valid.
	ActivityPublisher interface {
		Publish(ctx context.Context, ev *amqp.ActivityEvent) error
	}
)

// Ensure interface conformance
var (
	_ FinanceAPI        = (*financeapi.Client)(nil)
	_ ActivityPublisher = (*amqp.Client)(nil)
)
