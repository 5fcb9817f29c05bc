package dashboard

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/identity"
	"github.com/lysyi3m/news-digest/app/tasks"
)

var _ tasks.SessionExpirer = (*Registry)(nil)

// Registry holds the live dashboard sessions keyed by access token.
type Registry struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	scheduler tasks.TaskSchedulerInterface
	sources   SourceFactory
	backend   AnnotationBackend
	pageSize  int
	idleTTL   time.Duration
}

func NewRegistry(scheduler tasks.TaskSchedulerInterface, sources SourceFactory, backend AnnotationBackend, pageSize int, idleTTL time.Duration) *Registry {
	return &Registry{
		sessions:  make(map[string]*Session),
		scheduler: scheduler,
		sources:   sources,
		backend:   backend,
		pageSize:  pageSize,
		idleTTL:   idleTTL,
	}
}

// Create opens a dashboard for a signed-in user and starts its article load.
// A session already registered under the same token is closed and replaced.
func (r *Registry) Create(auth *identity.Session) (*Session, error) {
	if auth == nil || auth.AccessToken == "" {
		return nil, errors.New("access token is required")
	}

	var persister digest.Persister
	if r.backend != nil {
		persister = &userPersister{backend: r.backend, userID: auth.User.ID}
	}

	session := NewSession(auth, r.pageSize, persister)

	if r.backend != nil {
		records, err := r.backend.LoadAnnotations(auth.User.ID)
		if err != nil {
			slog.Error("Failed to restore annotations", "user_id", auth.User.ID, "error", err)
		} else {
			session.RestoreAnnotations(records)
		}
	}

	r.mu.Lock()
	previous := r.sessions[auth.AccessToken]
	r.sessions[auth.AccessToken] = session
	r.mu.Unlock()

	if previous != nil {
		previous.Close()
	}

	token := session.Token()
	src := r.sources(func() string { return token })
	if err := session.Start(r.scheduler, src); err != nil {
		return session, err
	}

	slog.Info("Session started", "user_id", auth.User.ID, "sessions", r.Len())

	return session, nil
}

func (r *Registry) Get(token string) (*Session, bool) {
	r.mu.RLock()
	session, ok := r.sessions[token]
	r.mu.RUnlock()

	if ok {
		session.Touch(time.Now())
	}
	return session, ok
}

// Remove closes and forgets the session registered under token.
func (r *Registry) Remove(token string) (*Session, bool) {
	r.mu.Lock()
	session, ok := r.sessions[token]
	delete(r.sessions, token)
	r.mu.Unlock()

	if ok {
		session.Close()
	}
	return session, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Expire closes sessions idle for longer than the registry TTL.
func (r *Registry) Expire(now time.Time) int {
	if r.idleTTL <= 0 {
		return 0
	}

	var expired []*Session

	r.mu.Lock()
	for token, session := range r.sessions {
		if now.Sub(session.LastAccess()) > r.idleTTL {
			expired = append(expired, session)
			delete(r.sessions, token)
		}
	}
	r.mu.Unlock()

	for _, session := range expired {
		session.Close()
		slog.Debug("Session expired", "user_id", session.User().ID)
	}

	return len(expired)
}

func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, session := range sessions {
		session.Close()
	}
}
