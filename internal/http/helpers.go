package http

import (
	"errors"
	"net/http"
	"strings"

	"finweb/internal/amqp"
	"finweb/internal/financeapi"
	"finweb/internal/log"
	"finweb/internal/session"
)

const sessionExpiredMessage = "Your session has expired. Please log in again."

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	result := strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
	return result
}

// pathID returns a sanitized path parameter.
func pathID(r *http.Request, name string) string {
	return sanitizeInput(r.PathValue(name))
}

// remoteFailure converts a data-access error into a redirect with an error
// notice. Rejected credentials end the login and send the user to /login.
func (s *Server) remoteFailure(sess *session.Session, err error, fallbackPath, fallbackMessage string) *Response {
	s.remoteFailures.Add(1)
	if errors.Is(err, financeapi.ErrUnauthorized) {
		sess.SetIdentity("", "", "")
		return Redirect("/login").Error(sessionExpiredMessage)
	}
	return Redirect(fallbackPath).Error(financeapi.Message(err, fallbackMessage))
}

// publish records a successful mutation and announces it on the activity
// exchange. Publish failures are logged and never fail the request.
func (s *Server) publish(r *http.Request, sess *session.Session, ev *amqp.ActivityEvent) {
	s.mutations.Add(1)
	if s.publisher == nil {
		return
	}
	ev.UserID = sess.UserID
	if err := s.publisher.Publish(r.Context(), ev); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to publish activity event",
			log.FieldError, err,
			log.FieldOperation, log.OpPublish,
			"routing_key", ev.RoutingKey())
	}
}

// activity builds an event for resource/action; accountID is optional.
func activity(resource, action, id, accountID string) *amqp.ActivityEvent {
	ev := amqp.NewActivityEvent(resource, action, id)
	ev.AccountID = accountID
	return ev
}

// formFailure re-renders a form after the remote API rejected it, keeping the
// submitted values. Rejected credentials still end the login.
func (s *Server) formFailure(sess *session.Session, err error, tmpl string, data any, fallbackMessage string) *Response {
	if errors.Is(err, financeapi.ErrUnauthorized) {
		return s.remoteFailure(sess, err, "/login", fallbackMessage)
	}
	s.remoteFailures.Add(1)
	return Render(tmpl, data).
		Status(http.StatusUnprocessableEntity).
		Error(financeapi.Message(err, fallbackMessage))
}
