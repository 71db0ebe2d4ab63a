package financeapi

import (
	"context"
	"net/http"
	"strings"
)

const opLogin = "log in"

// Identity is the result of a successful login.
type Identity struct {
	Token  string
	UserID string
	Email  string
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (Identity, error) {
	req := loginRequest{Email: strings.TrimSpace(email), Password: password}

	var resp loginResponse
	if err := c.do(ctx, "", opLogin, http.MethodPost, "/auth/login", req, &resp); err != nil {
		return Identity{}, err
	}

	id := Identity{
		Token:  firstNonEmpty(resp.Token, resp.AccessToken),
		UserID: string(resp.UserID),
		Email:  firstNonEmpty(resp.Email, req.Email),
	}
	if resp.User != nil {
		if id.UserID == "" {
			id.UserID = canonicalID(resp.User.ID, resp.User.MongoID)
		}
		if resp.User.Email != "" {
			id.Email = resp.User.Email
		}
	}
	if id.Token == "" {
		return Identity{}, &Error{
			Op:         opLogin,
			Method:     http.MethodPost,
			Path:       "/auth/login",
			StatusCode: http.StatusUnauthorized,
			Message:    "Invalid email or password.",
		}
	}
	return id, nil
}
