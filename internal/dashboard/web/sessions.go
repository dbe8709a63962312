// internal/dashboard/web/sessions.go
package web

import (
	"context"
	"net/http"
	"sync"
	"time"

	"churn-dashboard/internal/common/metrics"
	"churn-dashboard/internal/dashboard/view"

	"github.com/google/uuid"
)

// SessionCookie carries the id of the caller's view.
const SessionCookie = "churn_session"

// Sessions maps session ids to live views. A view is closed when its session
// expires or the registry shuts down.
type Sessions struct {
	mu      sync.Mutex
	views   map[string]*view.Controller
	newView func() *view.Controller
	ttl     time.Duration
	logger  Logger
}

// NewSessions creates a registry that mounts views with newView. A zero ttl
// disables expiry.
func NewSessions(newView func() *view.Controller, ttl time.Duration, log Logger) *Sessions {
	return &Sessions{
		views:   make(map[string]*view.Controller),
		newView: newView,
		ttl:     ttl,
		logger:  log,
	}
}

// Get returns the live view for id.
func (s *Sessions) Get(id string) (*view.Controller, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ctl, ok := s.views[id]
	if !ok || ctl.Closed() {
		return nil, false
	}
	return ctl, true
}

// Open mounts a new view under a fresh id.
func (s *Sessions) Open() (string, *view.Controller) {
	id := uuid.New().String()
	ctl := s.newView()

	s.mu.Lock()
	s.views[id] = ctl
	n := len(s.views)
	s.mu.Unlock()

	metrics.SessionsActive.Set(float64(n))
	s.logger.Debug("session opened", map[string]interface{}{"sessionId": id})
	return id, ctl
}

// Resolve returns the caller's view, opening one and setting the cookie when
// the request carries no live session.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) (string, *view.Controller) {
	if c, err := r.Cookie(SessionCookie); err == nil {
		if ctl, ok := s.Get(c.Value); ok {
			return c.Value, ctl
		}
	}

	id, ctl := s.Open()
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id, ctl
}

// Remove closes and forgets the view for id.
func (s *Sessions) Remove(id string) {
	s.mu.Lock()
	ctl, ok := s.views[id]
	delete(s.views, id)
	n := len(s.views)
	s.mu.Unlock()

	if ok {
		ctl.Close()
		metrics.SessionsActive.Set(float64(n))
	}
}

// Sweep closes every view idle since before now-ttl and returns how many
// were closed.
func (s *Sessions) Sweep(now time.Time) int {
	if s.ttl <= 0 {
		return 0
	}
	cutoff := now.Add(-s.ttl)

	var expired []*view.Controller
	s.mu.Lock()
	for id, ctl := range s.views {
		if ctl.Closed() || ctl.LastActive().Before(cutoff) {
			expired = append(expired, ctl)
			delete(s.views, id)
		}
	}
	n := len(s.views)
	s.mu.Unlock()

	for _, ctl := range expired {
		ctl.Close()
	}
	if len(expired) > 0 {
		metrics.SessionsActive.Set(float64(n))
		s.logger.Info("expired idle sessions", map[string]interface{}{
			"expired": len(expired),
			"active":  n,
		})
	}
	return len(expired)
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context) {
	if s.ttl <= 0 {
		return
	}
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// CloseAll closes every view.
func (s *Sessions) CloseAll() {
	s.mu.Lock()
	views := s.views
	s.views = make(map[string]*view.Controller)
	s.mu.Unlock()

	for _, ctl := range views {
		ctl.Close()
	}
	metrics.SessionsActive.Set(0)
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.views)
}
