package http

import (
	"net/http"

	"finweb/internal/financeapi"
	"finweb/internal/log"
	"finweb/internal/session"
)

func (s *Server) handleLoginForm(r *http.Request, sess *session.Session) *Response {
	if sess.Authenticated() {
		return Redirect("/")
	}
	return Render("login", LoginForm{})
}

func (s *Server) handleLogin(r *http.Request, sess *session.Session) *Response {
	form, err := parseForm(r)
	if err != nil {
		return Redirect("/login").Error(invalidFormMessage)
	}
	f := LoginForm{Email: formValue(form, "email")}
	password := form.Get("password")
	if f.Email == "" || password == "" {
		return Render("login", f).Status(http.StatusUnprocessableEntity).Error("Email and password are required.")
	}

	ctx := r.Context()
	identity, err := s.finance.Login(ctx, f.Email, password)
	if err != nil {
		s.remoteFailures.Add(1)
		return Render("login", f).Status(http.StatusUnauthorized).
			Error(financeapi.Message(err, "Failed to log in."))
	}

	if err := s.sessions.Renew(ctx, sess); err != nil {
		s.logger.WarnContext(ctx, "Failed to renew session",
			log.FieldError, err,
			log.FieldComponent, log.ComponentSession)
	}
	sess.SetIdentity(identity.Token, identity.UserID, identity.Email)

	log.FromContext(ctx).InfoContext(ctx, "User logged in", log.FieldOperation, log.OpLogin)
	return Redirect("/").Success("Welcome back.")
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := s.sessions.Load(r)
	if err := s.sessions.Destroy(r.Context(), w, sess); err != nil {
		s.logger.WarnContext(r.Context(), "Failed to destroy session",
			log.FieldError, err,
			log.FieldComponent, log.ComponentSession)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
