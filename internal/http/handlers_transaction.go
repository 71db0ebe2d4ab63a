package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"golang.org/x/sync/errgroup"

	"finweb/internal/amqp"
	"finweb/internal/core"
	"finweb/internal/financeapi"
	"finweb/internal/log"
	"finweb/internal/session"
	"finweb/internal/sheets"
)

const resourceTransaction = "transaction"

type transactionRow struct {
	Transaction  core.Transaction
	CategoryName string
	Currency     string
}

type transactionListView struct {
	Account       core.Account
	Rows          []transactionRow
	ExportEnabled bool
}

type transactionFormView struct {
	Account    core.Account
	Form       TransactionForm
	Editing    bool
	Types      []core.Option
	Categories []core.Category
	Accounts   []core.Account
}

// transactionFormData is everything a transaction form needs besides its values.
type transactionFormData struct {
	account    core.Account
	categories []core.Category
	accounts   []core.Account
}

func (d transactionFormData) view(f TransactionForm, editing bool) transactionFormView {
	return transactionFormView{
		Account:    d.account,
		Form:       f,
		Editing:    editing,
		Types:      core.TransactionTypeOptions(),
		Categories: d.categories,
		Accounts:   d.accounts,
	}
}

func transactionsPath(accountID string) string {
	return "/accounts/" + url.PathEscape(accountID) + "/transactions"
}

// buildTransactionRows joins transactions against categories, newest first.
func buildTransactionRows(account core.Account, txs []core.Transaction, categories []core.Category) []transactionRow {
	idx := core.CategoryNames(categories)
	rows := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		currency := tx.CurrencyCode
		if currency == "" {
			currency = account.CurrencyCode
		}
		rows = append(rows, transactionRow{
			Transaction:  tx,
			CategoryName: core.ResolveCategoryName(idx, tx.CategoryID),
			Currency:     currency,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Transaction.Date.After(rows[j].Transaction.Date)
	})
	return rows
}

// loadTransactions fetches an account, its transactions and the categories
// concurrently.
func (s *Server) loadTransactions(ctx context.Context, token, accountID string) (core.Account, []core.Transaction, []core.Category, error) {
	var (
		account    core.Account
		txs        []core.Transaction
		categories []core.Category
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		account, err = s.finance.GetAccount(gctx, token, accountID)
		return err
	})
	g.Go(func() (err error) {
		txs, err = s.finance.ListTransactions(gctx, token, accountID)
		return err
	})
	g.Go(func() (err error) {
		categories, err = s.finance.ListCategories(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Account{}, nil, nil, err
	}
	return account, txs, categories, nil
}

// loadTransactionForm fetches the owning account, the categories and every
// account (for transfer selects) concurrently.
func (s *Server) loadTransactionForm(ctx context.Context, token, accountID string) (transactionFormData, error) {
	var d transactionFormData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.account, err = s.finance.GetAccount(gctx, token, accountID)
		return err
	})
	g.Go(func() (err error) {
		d.categories, err = s.finance.ListCategories(gctx, token)
		return err
	})
	g.Go(func() (err error) {
		d.accounts, err = s.finance.ListAccounts(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return transactionFormData{}, err
	}
	return d, nil
}

func (s *Server) handleTransactionList(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	account, txs, categories, err := s.loadTransactions(r.Context(), sess.Token, accountID)
	if err != nil {
		return s.remoteFailure(sess, err, "/accounts", "Failed to load transactions.")
	}
	return Render("transactions_index", transactionListView{
		Account:       account,
		Rows:          buildTransactionRows(account, txs, categories),
		ExportEnabled: s.exporter != nil,
	})
}

func (s *Server) handleTransactionAddForm(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	data, err := s.loadTransactionForm(r.Context(), sess.Token, accountID)
	if err != nil {
		return s.remoteFailure(sess, err, transactionsPath(accountID), "Failed to load the transaction form.")
	}
	f := TransactionForm{
		Type: core.TransactionIncome.String(),
		Date: s.now().Format(core.FormDateLayout),
	}
	return Render("transactions_form", data.view(f, false))
}

func (s *Server) handleTransactionAdd(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	form, err := parseForm(r)
	if err != nil {
		return Redirect(transactionsPath(accountID) + "/add").Error(invalidFormMessage)
	}
	f := parseTransactionForm(form)

	data, err := s.loadTransactionForm(r.Context(), sess.Token, accountID)
	if err != nil {
		return s.remoteFailure(sess, err, transactionsPath(accountID), "Failed to load the transaction form.")
	}
	view := data.view(f, false)

	in, msg := f.Input(data.account.CurrencyCode, s.now())
	if msg != "" {
		return Render("transactions_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	tx, err := s.finance.CreateTransaction(r.Context(), sess.Token, accountID, in)
	if err != nil {
		return s.formFailure(sess, err, "transactions_form", view, "Failed to create transaction.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction created",
		log.FieldAccountID, accountID,
		log.FieldTransactionID, tx.ID,
		log.FieldOperation, log.OpCreate)
	s.publish(r, sess, activity(resourceTransaction, amqp.ActionCreated, tx.ID, accountID))
	return Redirect(transactionsPath(accountID)).Success("Transaction created successfully.")
}

func (s *Server) handleTransactionEditForm(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	id := pathID(r, "transactionId")

	var (
		data transactionFormData
		tx   core.Transaction
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() (err error) {
		data, err = s.loadTransactionForm(ctx, sess.Token, accountID)
		return err
	})
	g.Go(func() (err error) {
		tx, err = s.finance.GetTransaction(ctx, sess.Token, accountID, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.remoteFailure(sess, err, transactionsPath(accountID), "Failed to load transaction.")
	}
	data.categories = s.withTransactionCategory(r.Context(), sess.Token, data.categories, tx)

	return Render("transactions_form", data.view(transactionFormFrom(tx), true))
}

// withTransactionCategory makes sure the select can show tx's current category
// when the category list does not include it.
func (s *Server) withTransactionCategory(ctx context.Context, token string, categories []core.Category, tx core.Transaction) []core.Category {
	if tx.CategoryID == "" {
		return categories
	}
	for _, c := range categories {
		if c.ID == tx.CategoryID {
			return categories
		}
	}
	cat, err := s.finance.TransactionCategory(ctx, token, tx)
	if err != nil {
		if !errors.Is(err, financeapi.ErrNotFound) {
			s.logger.LogError(ctx, "Failed to load transaction category", err, log.OpRead,
				log.NewFields().With(log.FieldTransactionID, tx.ID).With(log.FieldCategoryID, tx.CategoryID))
		}
		return categories
	}
	return append(categories, cat)
}

func (s *Server) handleTransactionEdit(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	id := pathID(r, "transactionId")
	form, err := parseForm(r)
	if err != nil {
		return Redirect(transactionsPath(accountID) + "/edit/" + url.PathEscape(id)).Error(invalidFormMessage)
	}
	f := parseTransactionForm(form)
	f.ID = id

	data, err := s.loadTransactionForm(r.Context(), sess.Token, accountID)
	if err != nil {
		return s.remoteFailure(sess, err, transactionsPath(accountID), "Failed to load the transaction form.")
	}
	view := data.view(f, true)

	in, msg := f.Input(data.account.CurrencyCode, s.now())
	if msg != "" {
		return Render("transactions_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	if err := s.finance.UpdateTransaction(r.Context(), sess.Token, accountID, id, in); err != nil {
		return s.formFailure(sess, err, "transactions_form", view, "Failed to update transaction.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction updated",
		log.FieldAccountID, accountID,
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpUpdate)
	s.publish(r, sess, activity(resourceTransaction, amqp.ActionUpdated, id, accountID))
	return Redirect(transactionsPath(accountID)).Success("Transaction updated successfully.")
}

func (s *Server) handleTransactionDelete(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	id := pathID(r, "transactionId")
	if err := s.finance.DeleteTransaction(r.Context(), sess.Token, accountID, id); err != nil {
		return s.remoteFailure(sess, err, transactionsPath(accountID), "Failed to delete transaction.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Transaction deleted",
		log.FieldAccountID, accountID,
		log.FieldTransactionID, id,
		log.FieldOperation, log.OpDelete)
	s.publish(r, sess, activity(resourceTransaction, amqp.ActionDeleted, id, accountID))
	return Redirect(transactionsPath(accountID)).Success("Transaction deleted successfully.")
}

// handleTransactionExport appends the account's transactions to the configured
// spreadsheet.
func (s *Server) handleTransactionExport(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	back := transactionsPath(accountID)
	if s.exporter == nil {
		return Redirect(back).Error("Export to Google Sheets is not configured.")
	}

	ctx := r.Context()
	account, txs, categories, err := s.loadTransactions(ctx, sess.Token, accountID)
	if err != nil {
		return s.remoteFailure(sess, err, back, "Failed to load transactions.")
	}

	rows := sheets.BuildRows(account, txs, core.CategoryNames(categories), s.cfg.DateDisplayLayout)
	written, err := s.exporter.ExportTransactions(ctx, account, rows)
	if err != nil {
		s.logger.LogError(ctx, "Transaction export failed", err, log.OpExport,
			log.NewFields().WithComponent(log.ComponentSheets).WithResource(resourceAccount, accountID))
		return Redirect(back).Error("Failed to export transactions.")
	}

	s.publish(r, sess, activity(resourceTransaction, amqp.ActionExport, "", accountID))
	return Redirect(back).Success(fmt.Sprintf("Exported %d transactions to Google Sheets.", written))
}
