// Package http provides HTTP server and handler implementations.
//
// This file implements the Builder Pattern for handler results. Handlers never
// write to the http.ResponseWriter themselves: they return a *Response that
// either renders a page or redirects, optionally carrying a flash notice.

package http

import (
	"bytes"
	"net/http"

	"finweb/internal/log"
	"finweb/internal/session"
)

// Response is the outcome of a handler: a rendered page or a redirect.
type Response struct {
	template   string
	data       any
	location   string
	statusCode int
	flash      *session.Flash
}

// Render creates a response that renders the named page with data.
func Render(tmpl string, data any) *Response {
	return &Response{template: tmpl, data: data, statusCode: http.StatusOK}
}

// Redirect creates a 303 See Other response to path.
func Redirect(path string) *Response {
	return &Response{location: path, statusCode: http.StatusSeeOther}
}

// Status sets the HTTP status code for the response.
func (b *Response) Status(code int) *Response {
	b.statusCode = code
	return b
}

// Flash attaches a notice. Redirects carry it to the next page through the
// session; renders show it inline.
func (b *Response) Flash(kind, message string) *Response {
	if message == "" {
		b.flash = nil
		return b
	}
	b.flash = &session.Flash{Kind: kind, Message: message}
	return b
}

// Success is a convenience method for success notices.
func (b *Response) Success(message string) *Response {
	return b.Flash(session.FlashSuccess, message)
}

// Error is a convenience method for error notices.
func (b *Response) Error(message string) *Response {
	return b.Flash(session.FlashError, message)
}

// IsRedirect reports whether the response redirects.
func (b *Response) IsRedirect() bool { return b.location != "" }

// Location returns the redirect target, empty for renders.
func (b *Response) Location() string { return b.location }

// Template returns the page rendered by the response, empty for redirects.
func (b *Response) Template() string { return b.template }

// FlashMessage returns the attached notice, if any.
func (b *Response) FlashMessage() (session.Flash, bool) {
	if b.flash == nil {
		return session.Flash{}, false
	}
	return *b.flash, true
}

const genericFailureMessage = "Something went wrong. Please try again."

// pageView is the root value every page template receives.
type pageView struct {
	User    string
	Flashes []session.Flash
	Data    any
}

// write sends resp, persisting the session before any header is written so the
// cookie goes out with the response.
func (s *Server) write(w http.ResponseWriter, r *http.Request, sess *session.Session, resp *Response) {
	ctx := r.Context()

	if resp.IsRedirect() {
		if resp.flash != nil {
			sess.AddFlash(resp.flash.Kind, resp.flash.Message)
		}
		s.saveSession(w, r, sess)
		http.Redirect(w, r, resp.location, resp.statusCode)
		return
	}

	queued := sess.PopFlashes()
	flashes := queued
	if resp.flash != nil {
		flashes = append(flashes[:len(queued):len(queued)], *resp.flash)
	}

	var buf bytes.Buffer
	if err := s.renderPage(&buf, resp.template, pageView{User: sess.Email, Flashes: flashes, Data: resp.data}); err != nil {
		s.logger.LogError(ctx, "Template execution failed", err, log.OpRender,
			log.NewFields().WithComponent(log.ComponentTemplate).With(log.FieldTemplate, resp.template))
		for _, f := range queued {
			sess.AddFlash(f.Kind, f.Message)
		}
		s.fail(w, r, sess)
		return
	}

	s.saveSession(w, r, sess)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(resp.statusCode)
	_, _ = w.Write(buf.Bytes())
}

// fail sends the user to the dashboard with a generic notice. The dashboard
// itself gets a plain 500 so a broken home page cannot redirect to itself.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if r.URL.Path == "/" {
		http.Error(w, genericFailureMessage, http.StatusInternalServerError)
		return
	}
	s.write(w, r, sess, Redirect("/").Error(genericFailureMessage))
}

func (s *Server) saveSession(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	if !sess.Modified() {
		return
	}
	if err := s.sessions.Save(r.Context(), w, sess); err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to save session",
			log.FieldError, err,
			log.FieldComponent, log.ComponentSession)
	}
}
