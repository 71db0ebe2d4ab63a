package http

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"finweb/internal/config"
	"finweb/internal/core"
	"finweb/internal/log"
	"finweb/internal/middleware/ratelimit"
	"finweb/internal/middleware/security"
	"finweb/internal/middleware/trace"
	"finweb/internal/session"
	"finweb/internal/sheets"
	appweb "finweb/web"
)

// pages lists every page template. Each is parsed together with layout.html.
var pages = []string{
	"home",
	"login",
	"accounts_index",
	"accounts_form",
	"accounts_share",
	"categories_index",
	"categories_form",
	"transactions_index",
	"transactions_form",
}

const sessionCleanupInterval = 10 * time.Minute

// Deps are the collaborators of the server. Publisher and Exporter are optional.
type Deps struct {
	Finance   FinanceAPI
	Sessions  *session.Manager
	Publisher ActivityPublisher
	Exporter  sheets.TransactionExporter
	Logger    *log.Logger
}

type Server struct {
	http.Server
	cfg       *config.Config
	finance   FinanceAPI
	sessions  *session.Manager
	publisher ActivityPublisher
	exporter  sheets.TransactionExporter
	logger    *log.Logger

	templates    map[string]*template.Template
	templatesErr error

	detector *security.Detector
	tracer   *trace.Middleware
	limiter  *ratelimit.Limiter

	started        time.Time
	now            func() time.Time
	mutations      atomic.Int64
	remoteFailures atomic.Int64

	// Session cleanup management
	stopSessionCleanup chan struct{}
	shutdownOnce       sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(cfg *config.Config, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	s := &Server{
		Server: http.Server{
			Addr:              net.JoinHostPort("", cfg.Port),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		cfg:                cfg,
		finance:            deps.Finance,
		sessions:           deps.Sessions,
		publisher:          deps.Publisher,
		exporter:           deps.Exporter,
		logger:             logger,
		detector:           security.NewDetector(logger),
		limiter:            ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: cfg.RateLimitPerMinute}),
		started:            time.Now(),
		now:                time.Now,
		stopSessionCleanup: make(chan struct{}),
	}
	for _, cidr := range cfg.TrustedProxies {
		if err := s.detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", log.FieldError, err)
		}
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	s.templates, s.templatesErr = parseTemplates(s.templateFuncs())
	if s.templatesErr != nil {
		logger.Warn("Failed parsing templates", log.FieldError, s.templatesErr)
	}

	s.Handler = s.routes()

	go s.startSessionCleanup()

	return s
}

func parseTemplates(funcs template.FuncMap) (map[string]*template.Template, error) {
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(appweb.TemplatesFS,
			"templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return out, fmt.Errorf("parse %s: %w", page, err)
		}
		out[page] = t
	}
	return out, nil
}

func (s *Server) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"money": func(d decimal.Decimal, currency string) string {
			return core.FormatMoney(d, currency)
		},
		"date": func(t time.Time) string {
			return core.FormatDisplayDate(t, s.cfg.DateDisplayLayout)
		},
		"title": func(v fmt.Stringer) string {
			name := v.String()
			if name == "" {
				return ""
			}
			return strings.ToUpper(name[:1]) + name[1:]
		},
	}
}

func (s *Server) renderPage(w io.Writer, name string, view pageView) error {
	t, ok := s.templates[name]
	if !ok {
		return fmt.Errorf("template %q not loaded", name)
	}
	return t.ExecuteTemplate(w, "layout", view)
}

// startSessionCleanup periodically removes expired sessions from the store.
func (s *Server) startSessionCleanup() {
	ticker := time.NewTicker(sessionCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			removed, err := s.sessions.Cleanup(ctx)
			cancel()
			if err != nil {
				s.logger.Warn("Session cleanup failed",
					log.FieldError, err,
					log.FieldComponent, log.ComponentSession)
				continue
			}
			if removed > 0 {
				s.logger.Debug("Session cleanup completed", "sessions_removed", removed)
			}
		case <-s.stopSessionCleanup:
			return
		}
	}
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		close(s.stopSessionCleanup)
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
