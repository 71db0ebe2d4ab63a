package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"finweb/internal/log"
)

// CookieName is the name of the cookie carrying the session id.
const CookieName = "finweb_session"

// ManagerConfig configures a Manager.
type ManagerConfig struct {
	TTL    time.Duration
	Secure bool
	Logger *log.Logger
}

// Manager binds sessions to browsers through a cookie.
type Manager struct {
	store  Store
	ttl    time.Duration
	secure bool
	logger *log.Logger
	now    func() time.Time
}

func NewManager(store Store, cfg ManagerConfig) *Manager {
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Discard()
	}
	return &Manager{
		store:  store,
		ttl:    cfg.TTL,
		secure: cfg.Secure,
		logger: logger.WithComponent(log.ComponentSession),
		now:    time.Now,
	}
}

// Store returns the underlying store.
func (m *Manager) Store() Store { return m.store }

func (m *Manager) newSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		ExpiresAt: m.now().Add(m.ttl),
	}
}

// Load returns the session referenced by the request cookie, or a fresh unsaved
// session when there is none or it has expired. Store failures are logged and
// also yield a fresh session so the request can continue anonymously.
func (m *Manager) Load(r *http.Request) *Session {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return m.newSession()
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return m.newSession()
	}

	ctx := r.Context()
	s, err := m.store.Get(ctx, cookie.Value)
	switch {
	case errors.Is(err, ErrNotFound):
		return m.newSession()
	case err != nil:
		m.logger.ErrorContext(ctx, "Failed to load session",
			log.FieldError, err,
			log.FieldOperation, log.OpRead)
		return m.newSession()
	}

	if s.expired(m.now()) {
		if err := m.store.Delete(ctx, s.ID); err != nil {
			m.logger.WarnContext(ctx, "Failed to delete expired session", log.FieldError, err)
		}
		return m.newSession()
	}
	return s
}

// Save persists s, extends its lifetime and refreshes the cookie.
func (m *Manager) Save(ctx context.Context, w http.ResponseWriter, s *Session) error {
	s.ExpiresAt = m.now().Add(m.ttl)
	if err := m.store.Save(ctx, s); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	s.modified = false
	http.SetCookie(w, m.cookie(s.ID, s.ExpiresAt))
	return nil
}

// Renew moves the session to a new id. Called after login to avoid fixation.
func (m *Manager) Renew(ctx context.Context, s *Session) error {
	old := s.ID
	s.ID = uuid.NewString()
	s.modified = true
	if err := m.store.Delete(ctx, old); err != nil {
		return fmt.Errorf("delete previous session: %w", err)
	}
	return nil
}

// Destroy removes the session and expires the cookie.
func (m *Manager) Destroy(ctx context.Context, w http.ResponseWriter, s *Session) error {
	http.SetCookie(w, m.cookie("", time.Unix(0, 0)))
	if s == nil {
		return nil
	}
	if err := m.store.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Cleanup removes expired sessions from the store.
func (m *Manager) Cleanup(ctx context.Context) (int64, error) {
	return m.store.DeleteExpired(ctx, m.now())
}

func (m *Manager) cookie(value string, expires time.Time) *http.Cookie {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if value == "" {
		c.MaxAge = -1
	} else {
		c.MaxAge = int(m.ttl.Seconds())
	}
	return c
}
