package dashboard

import (
	"errors"

	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/source"
)

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

const (
	FetchFailedMessage = "Failed to fetch articles. Please try again later."
	LinkCopiedMessage  = "Link copied to clipboard!"
)

var (
	ErrArticleNotFound = errors.New("article not found")
	ErrSessionClosed   = errors.New("session closed")
)

// SourceFactory builds the article source for a session bound to its token.
type SourceFactory func(token source.TokenFunc) source.Source

// AnnotationBackend persists annotations across sessions.
type AnnotationBackend interface {
	LoadAnnotations(userID string) (map[string]digest.Annotation, error)
	SaveAnnotation(userID, articleID string, annotation digest.Annotation) error
}

type ArticleView struct {
	digest.Article
	Saved bool `json:"saved"`
	Liked bool `json:"liked"`
	Read  bool `json:"read"`
}

type View struct {
	State      State           `json:"state"`
	Error      string          `json:"error,omitempty"`
	Articles   []ArticleView   `json:"articles"`
	Total      int             `json:"total"`
	Visible    int             `json:"visible"`
	PageSize   int             `json:"page_size"`
	HasMore    bool            `json:"has_more"`
	Categories []string        `json:"categories"`
	Criteria   digest.Criteria `json:"criteria"`
}

// userPersister scopes an AnnotationBackend to one user.
type userPersister struct {
	backend AnnotationBackend
	userID  string
}

func (p *userPersister) SaveAnnotation(articleID string, annotation digest.Annotation) error {
	return p.backend.SaveAnnotation(p.userID, articleID, annotation)
}
