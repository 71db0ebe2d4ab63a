package financeapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"finweb/internal/core"
	"finweb/internal/log"
)

type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   map[string]any
}

// newRemote starts a fake finance API that records each request and answers
// with the handler's status and body.
func newRemote(t *testing.T, status int, body string) (*Client, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recordedRequest{Method: r.Method, Path: r.URL.Path, Auth: r.Header.Get("Authorization")}
		raw, _ := io.ReadAll(r.Body)
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.Body); err != nil {
				t.Errorf("request body is not a JSON object: %v", err)
			}
		}
		got = append(got, rec)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", WithTimeout(5*time.Second)), &got
}

func TestClient_AttachesBearerToken(t *testing.T) {
	c, got := newRemote(t, http.StatusOK, `[]`)

	if _, err := c.ListAccounts(context.Background(), "tok-123"); err != nil {
		t.Fatalf("ListAccounts() error = %v", err)
	}
	if len(*got) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(*got))
	}
	req := (*got)[0]
	if req.Auth != "Bearer tok-123" {
		t.Errorf("Authorization = %q, want %q", req.Auth, "Bearer tok-123")
	}
	if req.Method != http.MethodGet || req.Path != "/accounts" {
		t.Errorf("request = %s %s, want GET /accounts", req.Method, req.Path)
	}
}

func TestClient_CreateAccountMapsType(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		wantCode float64
	}{
		{"savings", "savings", 1},
		{"credit", "credit", 2},
		{"missing defaults to personal", "", 0},
		{"unknown defaults to personal", "brokerage", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, got := newRemote(t, http.StatusCreated, `{"Id": 7, "Name": "Main"}`)
			in := core.AccountInput{
				Name:         "Main",
				Balance:      decimal.RequireFromString("100.50"),
				CurrencyCode: "pln",
				Type:         core.ParseAccountType(tt.typeName),
			}

			acc, err := c.CreateAccount(context.Background(), "tok", in)
			if err != nil {
				t.Fatalf("CreateAccount() error = %v", err)
			}
			if acc.ID != "7" {
				t.Errorf("account ID = %q, want %q", acc.ID, "7")
			}

			body := (*got)[0].Body
			if body["Type"] != tt.wantCode {
				t.Errorf("Type = %v, want %v", body["Type"], tt.wantCode)
			}
			if body["Balance"] != 100.5 {
				t.Errorf("Balance = %v, want 100.5", body["Balance"])
			}
			if body["CurrencyCode"] != "PLN" {
				t.Errorf("CurrencyCode = %v, want PLN", body["CurrencyCode"])
			}
			if body["ShowInSummary"] != true {
				t.Errorf("ShowInSummary = %v, want true", body["ShowInSummary"])
			}
			if body["OwnerId"] != float64(0) {
				t.Errorf("OwnerId = %v, want 0", body["OwnerId"])
			}
		})
	}
}

func TestClient_CreateTransactionPayload(t *testing.T) {
	c, got := newRemote(t, http.StatusCreated, `{"id": 11}`)
	in := core.TransactionInput{
		Type:              core.TransactionIncome,
		Amount:            decimal.NewFromInt(-50),
		CategoryID:        "3",
		Name:              "Salary",
		CurrencyCode:      "PLN",
		SenderAccountID:   "4",
		ReceiverAccountID: "5",
		Date:              time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	if _, err := c.CreateTransaction(context.Background(), "tok", "1", in); err != nil {
		t.Fatalf("CreateTransaction() error = %v", err)
	}

	req := (*got)[0]
	if req.Method != http.MethodPost || req.Path != "/accounts/1/transactions" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	want := map[string]any{
		"type":         float64(0),
		"amount":       float64(50),
		"categoryId":   float64(3),
		"accountId":    float64(1),
		"name":         "Salary",
		"currencyCode": "PLN",
		"date":         "2025-01-15T10:00:00Z",
	}
	for k, v := range want {
		if req.Body[k] != v {
			t.Errorf("%s = %v, want %v", k, req.Body[k], v)
		}
	}
	if _, ok := req.Body["senderAccountId"]; ok {
		t.Error("senderAccountId should be omitted for non-transfer transactions")
	}
	if _, ok := req.Body["id"]; ok {
		t.Error("id should be omitted on create")
	}
}

func TestClient_TransactionWithoutCategorySendsNull(t *testing.T) {
	c, got := newRemote(t, http.StatusNoContent, ``)
	in := core.TransactionInput{
		Type:   core.TransactionTransfer,
		Amount: decimal.NewFromInt(20),
		Date:   time.Now(),

		SenderAccountID:   "1",
		ReceiverAccountID: "2",
	}

	if err := c.UpdateTransaction(context.Background(), "tok", "1", "9", in); err != nil {
		t.Fatalf("UpdateTransaction() error = %v", err)
	}

	req := (*got)[0]
	if req.Method != http.MethodPut || req.Path != "/accounts/1/transactions/9" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if v, ok := req.Body["categoryId"]; !ok || v != nil {
		t.Errorf("categoryId = %v (present=%v), want null", v, ok)
	}
	if req.Body["id"] != float64(9) {
		t.Errorf("id = %v, want 9", req.Body["id"])
	}
	if req.Body["type"] != float64(2) || req.Body["receiverAccountId"] != float64(2) {
		t.Errorf("transfer fields not sent: %v", req.Body)
	}
}

func TestClient_CreateCategoryPayload(t *testing.T) {
	c, got := newRemote(t, http.StatusCreated, `{"id": 1, "name": "Groceries", "color": "#ff0000"}`)

	cat, err := c.CreateCategory(context.Background(), "tok", core.CategoryInput{Name: "Groceries", Color: "#ff0000"})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if cat.ID != "1" || cat.Name != "Groceries" {
		t.Errorf("category = %+v", cat)
	}

	body := (*got)[0].Body
	if len(body) != 2 || body["name"] != "Groceries" || body["color"] != "#ff0000" {
		t.Errorf("body = %v, want only name and color", body)
	}
}

func TestClient_ValidationErrorsAreFlattened(t *testing.T) {
	payload := `{
		"title": "One or more validation errors occurred.",
		"errors": {"Name": ["The Name field is required."], "Balance": ["Must be a number.", "Too large."]}
	}`
	c, _ := newRemote(t, http.StatusBadRequest, payload)

	_, err := c.CreateAccount(context.Background(), "tok", core.AccountInput{})
	if err == nil {
		t.Fatal("expected error")
	}
	want := "Balance: Must be a number., Too large.; Name: The Name field is required."
	if err.Error() != want {
		t.Errorf("message = %q, want %q", err.Error(), want)
	}

	var apiErr *Error
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("expected *Error with status 400, got %#v", err)
	}
}

func TestClient_ErrorMessages(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    string
		notFind bool
		unauth  bool
	}{
		{"message field", http.StatusConflict, `{"message": "Category is in use"}`, "Category is in use", false, false},
		{"title field", http.StatusBadRequest, `{"title": "Bad Request"}`, "Bad Request", false, false},
		{"json string body", http.StatusBadRequest, `"Account limit reached"`, "Account limit reached", false, false},
		{"not found generic", http.StatusNotFound, ``, "The requested account was not found.", true, false},
		{"server error generic", http.StatusInternalServerError, `<html>oops</html>`, "Failed to load account.", false, false},
		{"unauthorized", http.StatusUnauthorized, ``, "Your session has expired. Please log in again.", false, true},
		{"forbidden", http.StatusForbidden, `{}`, "Your session has expired. Please log in again.", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newRemote(t, tt.status, tt.body)
			_, err := c.GetAccount(context.Background(), "tok", "999")
			if err == nil {
				t.Fatal("expected error")
			}
			if err.Error() != tt.want {
				t.Errorf("message = %q, want %q", err.Error(), tt.want)
			}
			if got := errors.Is(err, ErrNotFound); got != tt.notFind {
				t.Errorf("errors.Is(ErrNotFound) = %v, want %v", got, tt.notFind)
			}
			if got := errors.Is(err, ErrUnauthorized); got != tt.unauth {
				t.Errorf("errors.Is(ErrUnauthorized) = %v, want %v", got, tt.unauth)
			}
		})
	}
}

func TestClient_UnreachableRemote(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url)
	_, err := c.ListCategories(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != unreachableMessage {
		t.Errorf("message = %q, want %q", err.Error(), unreachableMessage)
	}
}

func TestClient_NormalizesIdentifiers(t *testing.T) {
	body := `[
		{"id": 1, "name": "Food", "color": "#111111"},
		{"Id": "2", "Name": "Rent"},
		{"_id": "abc", "name": "Travel"}
	]`
	c, _ := newRemote(t, http.StatusOK, body)

	cats, err := c.ListCategories(context.Background(), "tok")
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	wantIDs := []string{"1", "2", "abc"}
	if len(cats) != len(wantIDs) {
		t.Fatalf("got %d categories, want %d", len(cats), len(wantIDs))
	}
	for i, id := range wantIDs {
		if cats[i].ID != id {
			t.Errorf("cats[%d].ID = %q, want %q", i, cats[i].ID, id)
		}
	}
	if cats[1].Name != "Rent" {
		t.Errorf("PascalCase name not decoded: %+v", cats[1])
	}
}

func TestClient_DecodesTransactions(t *testing.T) {
	body := `[
		{"Id": 5, "AccountId": 1, "Type": 1, "Amount": -12.5, "CategoryId": 3, "Name": "Lunch", "Date": "2025-01-15T12:00:00Z"},
		{"id": 6, "type": "transfer", "amount": "40", "categoryId": null, "description": "Move", "date": "2025-01-16T08:30:00"}
	]`
	c, _ := newRemote(t, http.StatusOK, body)

	txs, err := c.ListTransactions(context.Background(), "tok", "1")
	if err != nil {
		t.Fatalf("ListTransactions() error = %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("got %d transactions", len(txs))
	}

	first := txs[0]
	if first.ID != "5" || first.Type != core.TransactionExpense || first.CategoryID != "3" {
		t.Errorf("first = %+v", first)
	}
	if !first.Amount.Equal(decimal.RequireFromString("12.5")) {
		t.Errorf("amount = %s, want 12.5", first.Amount)
	}

	second := txs[1]
	if second.Type != core.TransactionTransfer || second.CategoryID != "" || second.Name != "Move" {
		t.Errorf("second = %+v", second)
	}
	if second.AccountID != "1" {
		t.Errorf("AccountID = %q, want fallback to the addressed account", second.AccountID)
	}
	if second.Date.IsZero() {
		t.Error("zone-less timestamp should still parse")
	}
}

func TestParseTimestamp_ZonelessIsLocal(t *testing.T) {
	orig := time.Local
	time.Local = time.FixedZone("EST", -5*3600)
	t.Cleanup(func() { time.Local = orig })

	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-03-05T00:00:00", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"2024-03-05", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"2024-03-05T05:00:00Z", time.Date(2024, 3, 5, 0, 0, 0, 0, time.Local)},
		{"garbage", time.Time{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := parseTimestamp(tt.in)
			if !got.Equal(tt.want) {
				t.Errorf("parseTimestamp(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		status int
		want   string
	}{
		{0, log.ErrorTypeNetwork},
		{http.StatusUnauthorized, log.ErrorTypeAuth},
		{http.StatusForbidden, log.ErrorTypeAuth},
		{http.StatusNotFound, log.ErrorTypeNotFound},
		{http.StatusBadRequest, log.ErrorTypeValidation},
		{http.StatusConflict, log.ErrorTypeValidation},
		{http.StatusInternalServerError, log.ErrorTypeRemote},
	}
	for _, tt := range tests {
		if got := errorType(tt.status); got != tt.want {
			t.Errorf("errorType(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}

func TestClient_ShareAccount(t *testing.T) {
	c, got := newRemote(t, http.StatusOK, ``)

	if err := c.ShareAccount(context.Background(), "tok", "4", " friend@example.com ", core.AccessWrite); err != nil {
		t.Fatalf("ShareAccount() error = %v", err)
	}
	req := (*got)[0]
	if req.Path != "/accounts/4/share" {
		t.Errorf("path = %q", req.Path)
	}
	if req.Body["Email"] != "friend@example.com" || req.Body["AccessLevel"] != float64(1) {
		t.Errorf("body = %v", req.Body)
	}
}

func TestClient_SharedAccessSubresource(t *testing.T) {
	c, got := newRemote(t, http.StatusNoContent, ``)
	ctx := context.Background()

	if err := c.UpdateSharedAccess(ctx, "tok", "4", "12", core.AccessOwner); err != nil {
		t.Fatalf("UpdateSharedAccess() error = %v", err)
	}
	if err := c.RemoveSharedUser(ctx, "tok", "4", "12"); err != nil {
		t.Fatalf("RemoveSharedUser() error = %v", err)
	}

	if (*got)[0].Method != http.MethodPut || (*got)[0].Path != "/accounts/4/share/12" || (*got)[0].Body["AccessLevel"] != float64(2) {
		t.Errorf("update request = %+v", (*got)[0])
	}
	if (*got)[1].Method != http.MethodDelete || (*got)[1].Path != "/accounts/4/share/12" {
		t.Errorf("remove request = %+v", (*got)[1])
	}
}

func TestClient_GetAccountWithSharedUsers(t *testing.T) {
	body := `{"Id": 4, "Name": "Joint", "Balance": 10.25, "CurrencyCode": "EUR", "Type": 1,
		"SharedUsers": [{"UserId": 12, "Email": "a@example.com", "AccessLevel": 1}]}`
	c, _ := newRemote(t, http.StatusOK, body)

	acc, err := c.GetAccount(context.Background(), "tok", "4")
	if err != nil {
		t.Fatalf("GetAccount() error = %v", err)
	}
	if acc.Type != core.AccountSavings || acc.CurrencyCode != "EUR" {
		t.Errorf("account = %+v", acc)
	}
	if len(acc.SharedUsers) != 1 || acc.SharedUsers[0].UserID != "12" || acc.SharedUsers[0].AccessLevel != core.AccessWrite {
		t.Errorf("shared users = %+v", acc.SharedUsers)
	}
}

func TestClient_TransactionCategory(t *testing.T) {
	c, got := newRemote(t, http.StatusOK, `{"id": 3, "name": "Food"}`)

	_, err := c.TransactionCategory(context.Background(), "tok", core.Transaction{ID: "1"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for uncategorized transaction, got %v", err)
	}
	if len(*got) != 0 {
		t.Error("no request expected for uncategorized transaction")
	}

	cat, err := c.TransactionCategory(context.Background(), "tok", core.Transaction{ID: "1", CategoryID: "3"})
	if err != nil {
		t.Fatalf("TransactionCategory() error = %v", err)
	}
	if cat.Name != "Food" || (*got)[0].Path != "/categories/3" {
		t.Errorf("category = %+v, path = %s", cat, (*got)[0].Path)
	}
}

func TestClient_Login(t *testing.T) {
	c, got := newRemote(t, http.StatusOK, `{"token": "jwt", "user": {"id": 42, "email": "me@example.com"}}`)

	id, err := c.Login(context.Background(), "me@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if id.Token != "jwt" || id.UserID != "42" || id.Email != "me@example.com" {
		t.Errorf("identity = %+v", id)
	}
	if (*got)[0].Auth != "" {
		t.Errorf("login must not send an Authorization header, got %q", (*got)[0].Auth)
	}
}

func TestClient_LoginRejected(t *testing.T) {
	c, _ := newRemote(t, http.StatusUnauthorized, ``)

	_, err := c.Login(context.Background(), "me@example.com", "wrong")
	if err == nil || err.Error() != "Invalid email or password." {
		t.Errorf("Login() error = %v", err)
	}
}

func TestMessage(t *testing.T) {
	if got := Message(errors.New("boom"), "fallback"); got != "fallback" {
		t.Errorf("Message(plain) = %q", got)
	}
	if got := Message(&Error{Message: "remote says no"}, "fallback"); got != "remote says no" {
		t.Errorf("Message(*Error) = %q", got)
	}
}
