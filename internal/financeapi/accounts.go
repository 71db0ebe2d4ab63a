package financeapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"finweb/internal/core"
)

const (
	opListAccounts       = "load accounts"
	opGetAccount         = "load account"
	opCreateAccount      = "create account"
	opUpdateAccount      = "update account"
	opDeleteAccount      = "delete account"
	opShareAccount       = "share account"
	opUpdateSharedAccess = "update shared access"
	opRemoveSharedUser   = "remove shared user"
)

func accountPath(id string) string {
	return "/accounts/" + url.PathEscape(id)
}

// ListAccounts returns every account visible to the token's user.
func (c *Client) ListAccounts(ctx context.Context, token string) ([]core.Account, error) {
	var resp []accountResponse
	if err := c.do(ctx, token, opListAccounts, http.MethodGet, "/accounts", nil, &resp); err != nil {
		return nil, err
	}
	accounts := make([]core.Account, 0, len(resp))
	for _, a := range resp {
		accounts = append(accounts, a.toCore())
	}
	return accounts, nil
}

// GetAccount fetches one account including its shared-access grants.
func (c *Client) GetAccount(ctx context.Context, token, id string) (core.Account, error) {
	var resp accountResponse
	if err := c.do(ctx, token, opGetAccount, http.MethodGet, accountPath(id), nil, &resp); err != nil {
		return core.Account{}, err
	}
	acc := resp.toCore()
	if acc.ID == "" {
		acc.ID = id
	}
	return acc, nil
}

// CreateAccount creates an account owned by the token's user.
func (c *Client) CreateAccount(ctx context.Context, token string, in core.AccountInput) (core.Account, error) {
	req := newAccountRequest(in)
	owner := 0
	req.OwnerID = &owner

	var resp accountResponse
	if err := c.do(ctx, token, opCreateAccount, http.MethodPost, "/accounts", req, &resp); err != nil {
		return core.Account{}, err
	}
	return resp.toCore(), nil
}

// UpdateAccount replaces the account's editable fields.
func (c *Client) UpdateAccount(ctx context.Context, token, id string, in core.AccountInput) error {
	req := newAccountRequest(in)
	req.ID = idValue(id)
	return c.do(ctx, token, opUpdateAccount, http.MethodPut, accountPath(id), req, nil)
}

// DeleteAccount removes the account.
func (c *Client) DeleteAccount(ctx context.Context, token, id string) error {
	return c.do(ctx, token, opDeleteAccount, http.MethodDelete, accountPath(id), nil, nil)
}

// ShareAccount grants the user identified by email access to the account.
func (c *Client) ShareAccount(ctx context.Context, token, accountID, email string, level core.AccessLevel) error {
	req := shareRequest{
		Email:       strings.TrimSpace(email),
		AccessLevel: level.Code(),
	}
	return c.do(ctx, token, opShareAccount, http.MethodPost, accountPath(accountID)+"/share", req, nil)
}

// UpdateSharedAccess changes the access level of an existing grant.
func (c *Client) UpdateSharedAccess(ctx context.Context, token, accountID, sharedUserID string, level core.AccessLevel) error {
	req := accessUpdateRequest{AccessLevel: level.Code()}
	path := accountPath(accountID) + "/share/" + url.PathEscape(sharedUserID)
	return c.do(ctx, token, opUpdateSharedAccess, http.MethodPut, path, req, nil)
}

// RemoveSharedUser revokes a grant.
func (c *Client) RemoveSharedUser(ctx context.Context, token, accountID, sharedUserID string) error {
	path := accountPath(accountID) + "/share/" + url.PathEscape(sharedUserID)
	return c.do(ctx, token, opRemoveSharedUser, http.MethodDelete, path, nil, nil)
}
