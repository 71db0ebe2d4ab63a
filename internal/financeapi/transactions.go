package financeapi

import (
	"context"
	"net/http"
	"net/url"

	"finweb/internal/core"
)

const (
	opListTransactions  = "load transactions"
	opGetTransaction    = "load transaction"
	opCreateTransaction = "create transaction"
	opUpdateTransaction = "update transaction"
	opDeleteTransaction = "delete transaction"
)

// Transactions are always addressed through their owning account.
func transactionsPath(accountID string) string {
	return accountPath(accountID) + "/transactions"
}

func transactionPath(accountID, id string) string {
	return transactionsPath(accountID) + "/" + url.PathEscape(id)
}

// ListTransactions returns the transactions recorded on an account.
func (c *Client) ListTransactions(ctx context.Context, token, accountID string) ([]core.Transaction, error) {
	var resp []transactionResponse
	if err := c.do(ctx, token, opListTransactions, http.MethodGet, transactionsPath(accountID), nil, &resp); err != nil {
		return nil, err
	}
	txs := make([]core.Transaction, 0, len(resp))
	for _, t := range resp {
		tx := t.toCore()
		if tx.AccountID == "" {
			tx.AccountID = accountID
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// GetTransaction fetches one transaction of an account.
func (c *Client) GetTransaction(ctx context.Context, token, accountID, id string) (core.Transaction, error) {
	var resp transactionResponse
	if err := c.do(ctx, token, opGetTransaction, http.MethodGet, transactionPath(accountID, id), nil, &resp); err != nil {
		return core.Transaction{}, err
	}
	tx := resp.toCore()
	if tx.ID == "" {
		tx.ID = id
	}
	if tx.AccountID == "" {
		tx.AccountID = accountID
	}
	return tx, nil
}

// CreateTransaction records a transaction on the account.
func (c *Client) CreateTransaction(ctx context.Context, token, accountID string, in core.TransactionInput) (core.Transaction, error) {
	var resp transactionResponse
	req := newTransactionRequest(accountID, in)
	if err := c.do(ctx, token, opCreateTransaction, http.MethodPost, transactionsPath(accountID), req, &resp); err != nil {
		return core.Transaction{}, err
	}
	return resp.toCore(), nil
}

// UpdateTransaction replaces the transaction's editable fields.
func (c *Client) UpdateTransaction(ctx context.Context, token, accountID, id string, in core.TransactionInput) error {
	req := newTransactionRequest(accountID, in)
	req.ID = idValue(id)
	return c.do(ctx, token, opUpdateTransaction, http.MethodPut, transactionPath(accountID, id), req, nil)
}

// DeleteTransaction removes the transaction from the account.
func (c *Client) DeleteTransaction(ctx context.Context, token, accountID, id string) error {
	return c.do(ctx, token, opDeleteTransaction, http.MethodDelete, transactionPath(accountID, id), nil, nil)
}

// TransactionCategory fetches the category assigned to tx. It returns an error
// matching ErrNotFound when the transaction has no category.
func (c *Client) TransactionCategory(ctx context.Context, token string, tx core.Transaction) (core.Category, error) {
	if tx.CategoryID == "" {
		return core.Category{}, &Error{
			Op:         opGetCategory,
			StatusCode: http.StatusNotFound,
			Message:    "The transaction has no category.",
			Err:        ErrNotFound,
		}
	}
	return c.GetCategory(ctx, token, tx.CategoryID)
}
