package financeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNotFound matches remote 404 responses.
	ErrNotFound = errors.New("resource not found")
	// ErrUnauthorized matches remote 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")
)

// Error is the single error type returned by the client. Its message is safe to
// show to the end user; the underlying cause is only logged.
type Error struct {
	Op         string
	Method     string
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether the error matches one of the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	}
	return false
}

// Message returns the user-facing message of err, or fallback when err does not
// come from the client.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// errorPayload covers the problem-details and ad hoc error shapes the finance API emits.
type errorPayload struct {
	Errors  json.RawMessage `json:"errors"`
	Message string          `json:"message"`
	Title   string          `json:"title"`
}

// remoteMessage extracts a displayable message from a response body, preferring
// structured validation errors, then message, then title.
func remoteMessage(body []byte) string {
	var quoted string
	if err := json.Unmarshal(body, &quoted); err == nil {
		return strings.TrimSpace(quoted)
	}
	var p errorPayload
	if err := json.Unmarshal(body, &p); err != nil {
		// Plain text bodies are used as-is when short enough to display.
		text := strings.TrimSpace(string(body))
		if text != "" && len(text) <= 200 && !strings.HasPrefix(text, "<") {
			return text
		}
		return ""
	}
	if msg := flattenValidation(p.Errors); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(p.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(p.Title)
}

// flattenValidation turns {"Name": ["required"], "Balance": ["invalid"]} into
// "Balance: invalid; Name: required". Arrays of plain strings are joined as-is.
func flattenValidation(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var byField map[string]json.RawMessage
	if err := json.Unmarshal(raw, &byField); err == nil {
		fields := make([]string, 0, len(byField))
		for f := range byField {
			fields = append(fields, f)
		}
		sort.Strings(fields)

		parts := make([]string, 0, len(fields))
		for _, f := range fields {
			msgs := stringsOf(byField[f])
			if len(msgs) == 0 {
				continue
			}
			label := strings.TrimPrefix(f, "$.")
			parts = append(parts, label+": "+strings.Join(msgs, ", "))
		}
		return strings.Join(parts, "; ")
	}

	return strings.Join(stringsOf(raw), "; ")
}

func stringsOf(raw json.RawMessage) []string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return nonEmpty(list)
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return nonEmpty([]string{single})
	}
	var objects []struct {
		Message     string `json:"message"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(raw, &objects); err == nil {
		out := make([]string, 0, len(objects))
		for _, o := range objects {
			if o.Message != "" {
				out = append(out, o.Message)
			} else if o.Description != "" {
				out = append(out, o.Description)
			}
		}
		return out
	}
	return nil
}

func nonEmpty(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

const unreachableMessage = "The finance service is unavailable. Please try again later."

// fallbackMessage returns the generic message used when the remote payload carries none.
func fallbackMessage(op string, status int) string {
	switch {
	case op == opLogin && status >= 400 && status < 500:
		return "Invalid email or password."
	case status == http.StatusNotFound:
		return "The requested " + resourceOf(op) + " was not found."
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return "Your session has expired. Please log in again."
	default:
		return "Failed to " + op + "."
	}
}

// resourceOf returns the noun of an operation name such as "update account".
func resourceOf(op string) string {
	if i := strings.IndexByte(op, ' '); i >= 0 {
		return op[i+1:]
	}
	return "resource"
}
