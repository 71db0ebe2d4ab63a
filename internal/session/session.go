// Package session keeps per-browser state between requests: the bearer token
// obtained at login and the one-time flash notices shown on the next page.
package session

import (
	"context"
	"errors"
	"time"
)

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

var ErrNotFound = errors.New("session not found")

// Flash is a one-time notice displayed on the next rendered page.
type Flash struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type Session struct {
	ID        string
	Token     string
	UserID    string
	Email     string
	Flashes   []Flash
	ExpiresAt time.Time

	modified bool
}

// Authenticated reports whether the session carries a bearer token.
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// SetIdentity stores the result of a successful login.
func (s *Session) SetIdentity(token, userID, email string) {
	s.Token = token
	s.UserID = userID
	s.Email = email
	s.modified = true
}

// AddFlash queues a notice for the next rendered page. Empty messages are ignored.
func (s *Session) AddFlash(kind, message string) {
	if message == "" {
		return
	}
	s.Flashes = append(s.Flashes, Flash{Kind: kind, Message: message})
	s.modified = true
}

// PopFlashes returns the queued notices and clears them.
func (s *Session) PopFlashes() []Flash {
	if len(s.Flashes) == 0 {
		return nil
	}
	out := s.Flashes
	s.Flashes = nil
	s.modified = true
	return out
}

// Modified reports whether the session changed since it was loaded.
func (s *Session) Modified() bool { return s.modified }

func (s *Session) expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

func (s *Session) clone() *Session {
	c := *s
	if s.Flashes != nil {
		c.Flashes = append([]Flash(nil), s.Flashes...)
	}
	c.modified = false
	return &c
}

// Store persists sessions by id.
type Store interface {
	// Get returns ErrNotFound when no session exists for id.
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes sessions whose expiry is not after now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
