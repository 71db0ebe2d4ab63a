package http

import (
	"net/http"
	"net/url"
	"strings"

	"finweb/internal/amqp"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/session"
)

const (
	resourceAccount      = "account"
	resourceSharedAccess = "shared_access"
)

type accountListView struct {
	Accounts []core.Account
}

type accountFormView struct {
	Form         AccountForm
	Editing      bool
	Types        []core.Option
	SharedUsers  []core.SharedAccess
	AccessLevels []core.Option
	// ShowSharing is set only when SharedUsers comes from a fresh fetch.
	ShowSharing bool
}

type accountShareView struct {
	Account       core.Account
	Form          ShareForm
	AccessLevels  []core.Option
	CurrentUserID string
}

func newAccountFormView(f AccountForm, editing bool, shared []core.SharedAccess) accountFormView {
	return accountFormView{
		Form:         f,
		Editing:      editing,
		Types:        core.AccountTypeOptions(),
		SharedUsers:  shared,
		AccessLevels: core.AccessLevelOptions(),
	}
}

func accountEditPath(id string) string  { return "/accounts/edit/" + url.PathEscape(id) }
func accountSharePath(id string) string { return "/accounts/share/" + url.PathEscape(id) }

func (s *Server) handleAccountList(r *http.Request, sess *session.Session) *Response {
	accounts, err := s.finance.ListAccounts(r.Context(), sess.Token)
	if err != nil {
		return s.remoteFailure(sess, err, "/", "Failed to load accounts.")
	}
	return Render("accounts_index", accountListView{Accounts: accounts})
}

func (s *Server) handleAccountAddForm(r *http.Request, sess *session.Session) *Response {
	f := AccountForm{
		CurrencyCode: s.cfg.DefaultCurrency,
		Type:         core.AccountPersonal.String(),
	}
	return Render("accounts_form", newAccountFormView(f, false, nil))
}

func (s *Server) handleAccountAdd(r *http.Request, sess *session.Session) *Response {
	form, err := parseForm(r)
	if err != nil {
		return Redirect("/accounts/add").Error(invalidFormMessage)
	}
	f := parseAccountForm(form)
	view := newAccountFormView(f, false, nil)

	in, msg := f.Input()
	if msg != "" {
		return Render("accounts_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	account, err := s.finance.CreateAccount(r.Context(), sess.Token, in)
	if err != nil {
		return s.formFailure(sess, err, "accounts_form", view, "Failed to create account.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Account created",
		log.FieldAccountID, account.ID,
		log.FieldOperation, log.OpCreate)
	s.publish(r, sess, activity(resourceAccount, amqp.ActionCreated, account.ID, account.ID))
	return Redirect("/accounts").Success("Account created successfully.")
}

func (s *Server) handleAccountEditForm(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	account, err := s.finance.GetAccount(r.Context(), sess.Token, id)
	if err != nil {
		return s.remoteFailure(sess, err, "/accounts", "Failed to load account.")
	}
	view := newAccountFormView(accountFormFrom(account), true, account.SharedUsers)
	view.ShowSharing = true
	return Render("accounts_form", view)
}

func (s *Server) handleAccountEdit(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	form, err := parseForm(r)
	if err != nil {
		return Redirect(accountEditPath(id)).Error(invalidFormMessage)
	}
	f := parseAccountForm(form)
	f.ID = id
	view := newAccountFormView(f, true, nil)

	in, msg := f.Input()
	if msg != "" {
		return Render("accounts_form", view).Status(http.StatusUnprocessableEntity).Error(msg)
	}

	if err := s.finance.UpdateAccount(r.Context(), sess.Token, id, in); err != nil {
		return s.formFailure(sess, err, "accounts_form", view, "Failed to update account.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Account updated",
		log.FieldAccountID, id,
		log.FieldOperation, log.OpUpdate)
	s.publish(r, sess, activity(resourceAccount, amqp.ActionUpdated, id, id))
	return Redirect("/accounts").Success("Account updated successfully.")
}

func (s *Server) handleAccountDelete(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	if err := s.finance.DeleteAccount(r.Context(), sess.Token, id); err != nil {
		return s.remoteFailure(sess, err, "/accounts", "Failed to delete account.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Account deleted",
		log.FieldAccountID, id,
		log.FieldOperation, log.OpDelete)
	s.publish(r, sess, activity(resourceAccount, amqp.ActionDeleted, id, id))
	return Redirect("/accounts").Success("Account deleted successfully.")
}

func (s *Server) handleAccountShareForm(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	account, err := s.finance.GetAccount(r.Context(), sess.Token, id)
	if err != nil {
		return s.remoteFailure(sess, err, "/accounts", "Failed to load account.")
	}
	return Render("accounts_share", accountShareView{
		Account:       account,
		Form:          ShareForm{AccessLevel: core.AccessRead.String()},
		AccessLevels:  core.AccessLevelOptions(),
		CurrentUserID: sess.UserID,
	})
}

func (s *Server) handleAccountShare(r *http.Request, sess *session.Session) *Response {
	id := pathID(r, "id")
	form, err := parseForm(r)
	if err != nil {
		return Redirect(accountSharePath(id)).Error(invalidFormMessage)
	}
	f := parseShareForm(form)
	if f.Email == "" {
		return Redirect(accountSharePath(id)).Error("Email is required.")
	}
	level, ok := core.ParseAccessLevel(f.AccessLevel)
	if !ok {
		return Redirect(accountSharePath(id)).Error("Access level is required.")
	}

	if err := s.finance.ShareAccount(r.Context(), sess.Token, id, f.Email, level); err != nil {
		return s.remoteFailure(sess, err, accountSharePath(id), "Failed to share account.")
	}

	log.FromContext(r.Context()).InfoContext(r.Context(), "Account shared",
		log.FieldAccountID, id,
		log.FieldOperation, log.OpShare)
	s.publish(r, sess, activity(resourceAccount, amqp.ActionShared, id, id))
	return Redirect(accountEditPath(id)).Success("Account shared with " + f.Email + ".")
}

// handleSharedAccess updates or removes one user's access. HTML forms can only
// POST, so the intended verb travels in the _method field; PUT is the default.
func (s *Server) handleSharedAccess(r *http.Request, sess *session.Session) *Response {
	accountID := pathID(r, "accountId")
	sharedUserID := pathID(r, "sharedUserId")
	back := accountEditPath(accountID)

	form, err := parseForm(r)
	if err != nil {
		return Redirect(back).Error(invalidFormMessage)
	}

	switch strings.ToUpper(formValue(form, "_method")) {
	case http.MethodDelete:
		if err := s.finance.RemoveSharedUser(r.Context(), sess.Token, accountID, sharedUserID); err != nil {
			return s.remoteFailure(sess, err, back, "Failed to remove shared user.")
		}
		log.FromContext(r.Context()).InfoContext(r.Context(), "Shared access removed",
			log.FieldAccountID, accountID,
			log.FieldSharedUserID, sharedUserID,
			log.FieldOperation, log.OpDelete)
		s.publish(r, sess, activity(resourceSharedAccess, amqp.ActionRevoked, sharedUserID, accountID))
		return Redirect(back).Success("Shared access removed.")

	case "", http.MethodPut:
		level, ok := core.ParseAccessLevel(formValue(form, "accessLevel"))
		if !ok {
			return Redirect(back).Error("Access level is required.")
		}
		if err := s.finance.UpdateSharedAccess(r.Context(), sess.Token, accountID, sharedUserID, level); err != nil {
			return s.remoteFailure(sess, err, back, "Failed to update shared access.")
		}
		log.FromContext(r.Context()).InfoContext(r.Context(), "Shared access updated",
			log.FieldAccountID, accountID,
			log.FieldSharedUserID, sharedUserID,
			log.FieldOperation, log.OpUpdate)
		s.publish(r, sess, activity(resourceSharedAccess, amqp.ActionUpdated, sharedUserID, accountID))
		return Redirect(back).Success("Shared access updated.")
	}

	return Redirect(back).Error("Unsupported action.")
}
