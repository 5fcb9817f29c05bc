package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/identity"
	"github.com/lysyi3m/news-digest/app/source"
	"github.com/lysyi3m/news-digest/app/tasks"
)

var _ tasks.ArticleSink = (*Session)(nil)

// Session is one signed-in user's dashboard. It is safe for concurrent use.
type Session struct {
	mu sync.RWMutex

	token        string
	refreshToken string
	user         identity.User

	ctx    context.Context
	cancel context.CancelFunc

	state      State
	errMessage string
	articles   []digest.Article
	categories []string
	criteria   digest.Criteria

	filterer    *digest.Filterer
	window      *digest.Window
	annotations *digest.Annotations

	lastAccess time.Time
	loaded     chan struct{}
	loadedOnce sync.Once
}

func NewSession(auth *identity.Session, pageSize int, persister digest.Persister) *Session {
	ctx, cancel := context.WithCancel(context.Background())

	return &Session{
		token:        auth.AccessToken,
		refreshToken: auth.RefreshToken,
		user:         auth.User,
		ctx:          ctx,
		cancel:       cancel,
		state:        StateLoading,
		criteria:     digest.DefaultCriteria(),
		filterer:     digest.NewFilterer(),
		window:       digest.NewWindow(pageSize),
		annotations:  digest.NewAnnotations(persister),
		lastAccess:   time.Now(),
		loaded:       make(chan struct{}),
	}
}

func (s *Session) Token() string {
	return s.token
}

func (s *Session) RefreshToken() string {
	return s.refreshToken
}

func (s *Session) User() identity.User {
	return s.user
}

// Start enqueues the one article load of this session.
func (s *Session) Start(scheduler tasks.TaskSchedulerInterface, src source.Source) error {
	task := tasks.NewLoadArticlesTask(s.ctx, s.user.ID, src, s)
	if err := scheduler.EnqueueTask(task); err != nil {
		s.ArticlesFailed(err)
		return fmt.Errorf("failed to enqueue article load: %w", err)
	}
	return nil
}

// Loaded is closed once the article load has finished, successfully or not.
func (s *Session) Loaded() <-chan struct{} {
	return s.loaded
}

func (s *Session) ArticlesLoaded(articles []digest.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return
	}

	s.articles = articles
	s.categories = digest.Categories(articles)
	s.state = StateReady
	s.errMessage = ""
	s.markLoaded()
}

func (s *Session) ArticlesFailed(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() == nil {
		slog.Error("Failed to load articles", "user_id", s.user.ID, "error", err)
	}

	s.state = StateFailed
	s.errMessage = FetchFailedMessage
	s.markLoaded()
}

func (s *Session) markLoaded() {
	s.loadedOnce.Do(func() { close(s.loaded) })
}

// RestoreAnnotations seeds the annotation store with persisted records.
func (s *Session) RestoreAnnotations(records map[string]digest.Annotation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.annotations.Load(records)
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Session) Criteria() digest.Criteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria
}

func (s *Session) SetCriteria(criteria digest.Criteria) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if criteria.Filter == "" {
		criteria.Filter = digest.FilterAll
	}
	if criteria.Category == "" {
		criteria.Category = digest.CategoryAll
	}
	s.criteria = criteria
}

func (s *Session) SetFilter(filter digest.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Filter = filter
}

func (s *Session) SetCategory(category string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Category = category
}

func (s *Session) SetSearch(search string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria.Search = search
}

func (s *Session) LoadMore() View {
	s.mu.Lock()
	s.window.LoadMore()
	s.mu.Unlock()

	return s.View()
}

func (s *Session) Categories() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.categories...)
}

func (s *Session) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := s.filterer.Run(s.articles, s.criteria, s.annotations)
	visible := s.window.Slice(filtered)

	articles := make([]ArticleView, 0, len(visible))
	for _, article := range visible {
		annotation := s.annotations.Get(article.ID)
		articles = append(articles, ArticleView{
			Article: article,
			Saved:   annotation.Saved,
			Liked:   annotation.Liked,
			Read:    annotation.Read,
		})
	}

	return View{
		State:      s.state,
		Error:      s.errMessage,
		Articles:   articles,
		Total:      len(filtered),
		Visible:    s.window.Visible(),
		PageSize:   s.window.PageSize(),
		HasMore:    s.window.HasMore(len(filtered)),
		Categories: append([]string{}, s.categories...),
		Criteria:   s.criteria,
	}
}

func (s *Session) ToggleSaved(articleID string) (digest.Annotation, digest.Notification, error) {
	return s.toggle(articleID, s.annotations.ToggleSaved)
}

func (s *Session) ToggleLiked(articleID string) (digest.Annotation, digest.Notification, error) {
	return s.toggle(articleID, s.annotations.ToggleLiked)
}

func (s *Session) ToggleRead(articleID string) (digest.Annotation, digest.Notification, error) {
	return s.toggle(articleID, s.annotations.ToggleRead)
}

func (s *Session) toggle(articleID string, fn func(string) (digest.Annotation, digest.Notification)) (digest.Annotation, digest.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctx.Err() != nil {
		return digest.Annotation{}, digest.Notification{}, ErrSessionClosed
	}
	if _, ok := s.find(articleID); !ok {
		return digest.Annotation{}, digest.Notification{}, ErrArticleNotFound
	}

	annotation, notification := fn(articleID)
	return annotation, notification, nil
}

// Share returns the article URL to hand to the clipboard.
func (s *Session) Share(articleID string) (string, digest.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.ctx.Err() != nil {
		return "", digest.Notification{}, ErrSessionClosed
	}
	article, ok := s.find(articleID)
	if !ok {
		return "", digest.Notification{}, ErrArticleNotFound
	}

	return article.URL, digest.Success(LinkCopiedMessage), nil
}

func (s *Session) find(articleID string) (digest.Article, bool) {
	for _, article := range s.articles {
		if article.ID == articleID {
			return article, true
		}
	}
	return digest.Article{}, false
}

func (s *Session) Touch(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastAccess = now
}

func (s *Session) LastAccess() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastAccess
}

// Close cancels any in-flight load. Results arriving afterwards are dropped.
func (s *Session) Close() {
	s.cancel()
}

func (s *Session) Closed() bool {
	return s.ctx.Err() != nil
}
