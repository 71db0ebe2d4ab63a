package http

import (
	"context"
	"io/fs"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"finweb/internal/log"
	"finweb/internal/middleware/security"
	"finweb/internal/middleware/trace"
	"finweb/internal/session"
	appweb "finweb/web"
)

type sessionContextKey struct{}

// handlerFunc is the shape of every page handler: it reads the request and the
// caller's session and returns what to send back.
type handlerFunc func(r *http.Request, sess *session.Session) *Response

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/metrics", s.handleMetrics)

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("/static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /login", s.page(s.handleLoginForm))
	mux.HandleFunc("POST /login", s.page(s.handleLogin))
	mux.HandleFunc("POST /logout", s.handleLogout)
	mux.Handle("GET /{$}", s.requireAuth(s.page(s.handleDashboard)))

	categories := s.requireAuth(s.categoryRoutes())
	mux.Handle("/categories", categories)
	mux.Handle("/categories/", categories)

	accounts := s.requireAuth(s.accountRoutes())
	transactions := s.requireAuth(s.transactionRoutes())
	mux.Handle("/accounts", accounts)
	mux.Handle("/accounts/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isTransactionPath(r.URL.Path) {
			transactions.ServeHTTP(w, r)
			return
		}
		accounts.ServeHTTP(w, r)
	}))

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())

	var h http.Handler = mux
	h = security.SameOrigin(nil)(h)
	h = s.limiter.Middleware(s.detector.ExtractClientIP, s.handleRateLimited)(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	h = s.detector.Middleware(h)
	h = headers.Middleware(h)
	h = s.recoverPanics(h)
	return h
}

func (s *Server) accountRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts", s.page(s.handleAccountList))
	mux.HandleFunc("GET /accounts/add", s.page(s.handleAccountAddForm))
	mux.HandleFunc("POST /accounts/add", s.page(s.handleAccountAdd))
	mux.HandleFunc("GET /accounts/edit/{id}", s.page(s.handleAccountEditForm))
	mux.HandleFunc("POST /accounts/edit/{id}", s.page(s.handleAccountEdit))
	mux.HandleFunc("POST /accounts/delete/{id}", s.page(s.handleAccountDelete))
	mux.HandleFunc("GET /accounts/share/{id}", s.page(s.handleAccountShareForm))
	mux.HandleFunc("POST /accounts/share/{id}", s.page(s.handleAccountShare))
	mux.HandleFunc("POST /accounts/{accountId}/share/{sharedUserId}", s.page(s.handleSharedAccess))
	return mux
}

func (s *Server) categoryRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /categories", s.page(s.handleCategoryList))
	mux.HandleFunc("GET /categories/add", s.page(s.handleCategoryAddForm))
	mux.HandleFunc("POST /categories/add", s.page(s.handleCategoryAdd))
	mux.HandleFunc("GET /categories/edit/{id}", s.page(s.handleCategoryEditForm))
	mux.HandleFunc("POST /categories/edit/{id}", s.page(s.handleCategoryEdit))
	mux.HandleFunc("POST /categories/delete/{id}", s.page(s.handleCategoryDelete))
	return mux
}

func (s *Server) transactionRoutes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /accounts/{accountId}/transactions", s.page(s.handleTransactionList))
	mux.HandleFunc("GET /accounts/{accountId}/transactions/add", s.page(s.handleTransactionAddForm))
	mux.HandleFunc("POST /accounts/{accountId}/transactions/add", s.page(s.handleTransactionAdd))
	mux.HandleFunc("GET /accounts/{accountId}/transactions/edit/{transactionId}", s.page(s.handleTransactionEditForm))
	mux.HandleFunc("POST /accounts/{accountId}/transactions/edit/{transactionId}", s.page(s.handleTransactionEdit))
	mux.HandleFunc("POST /accounts/{accountId}/transactions/delete/{transactionId}", s.page(s.handleTransactionDelete))
	mux.HandleFunc("POST /accounts/{accountId}/transactions/export", s.page(s.handleTransactionExport))
	return mux
}

// isTransactionPath reports whether path addresses /accounts/{accountId}/transactions[/...].
func isTransactionPath(path string) bool {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	return len(parts) >= 3 && parts[0] == "accounts" && parts[2] == "transactions"
}

// requireAuth redirects requests without an authenticated session to the login
// page and hands the loaded session to the wrapped handler.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := s.sessions.Load(r)
		if !sess.Authenticated() {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		ctx := context.WithValue(r.Context(), sessionContextKey{}, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// page adapts a handlerFunc to http.HandlerFunc.
func (s *Server) page(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := r.Context().Value(sessionContextKey{}).(*session.Session)
		if !ok {
			sess = s.sessions.Load(r)
		}
		s.write(w, r, sess, fn(r, sess))
	}
}

// handleRateLimited sends the client back where it came from with a notice.
func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	s.logger.WarnContext(r.Context(), "Rate limit exceeded",
		log.FieldClientIP, s.detector.ExtractClientIP(r),
		log.FieldPath, r.URL.Path,
		log.FieldComponent, log.ComponentRateLimit)

	sess := s.sessions.Load(r)
	s.write(w, r, sess, Redirect(refererPath(r)).
		Error("Too many requests. Please wait a minute and try again."))
}

// refererPath returns the path of a same-host Referer, or "/".
func refererPath(r *http.Request) string {
	u, err := url.Parse(r.Header.Get("Referer"))
	if err != nil || u.Path == "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	if u.Host != "" && !strings.EqualFold(u.Host, r.Host) {
		return "/"
	}
	return u.Path
}

// headerTracker records whether the response has been started.
type headerTracker struct {
	http.ResponseWriter
	started bool
}

func (t *headerTracker) WriteHeader(code int) {
	t.started = true
	t.ResponseWriter.WriteHeader(code)
}

func (t *headerTracker) Write(b []byte) (int, error) {
	t.started = true
	return t.ResponseWriter.Write(b)
}

func (t *headerTracker) Unwrap() http.ResponseWriter { return t.ResponseWriter }

// recoverPanics logs a handler panic and sends the user to the dashboard with a
// notice. Once the response has started only the log line is possible.
func (s *Server) recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tw := &headerTracker{ResponseWriter: w}
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.logger.ErrorContext(r.Context(), "Handler panic recovered",
					"panic", rec,
					"stack", string(debug.Stack()),
					log.FieldPath, r.URL.Path,
					log.FieldErrorType, log.ErrorTypeInternal)
				if tw.started {
					return
				}
				s.fail(tw, r, s.sessions.Load(r))
			}
		}()
		next.ServeHTTP(tw, r)
	})
}
