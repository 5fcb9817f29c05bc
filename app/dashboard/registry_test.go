package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/source"
)

type mockBackend struct {
	records map[string]map[string]digest.Annotation
	loadErr error
	saves   int
}

func newMockBackend() *mockBackend {
	return &mockBackend{records: make(map[string]map[string]digest.Annotation)}
}

func (m *mockBackend) LoadAnnotations(userID string) (map[string]digest.Annotation, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	return m.records[userID], nil
}

func (m *mockBackend) SaveAnnotation(userID, articleID string, annotation digest.Annotation) error {
	m.saves++
	if m.records[userID] == nil {
		m.records[userID] = make(map[string]digest.Annotation)
	}
	if annotation.IsZero() {
		delete(m.records[userID], articleID)
	} else {
		m.records[userID][articleID] = annotation
	}
	return nil
}

func fixedSources(articles []digest.Article) (SourceFactory, *[]string) {
	var tokens []string
	return func(token source.TokenFunc) source.Source {
		tokens = append(tokens, token())
		return &mockSource{articles: articles}
	}, &tokens
}

func TestRegistry_CreateAndGet(t *testing.T) {
	sources, tokens := fixedSources(numberedArticles(3))
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, time.Hour)

	session, err := registry.Create(testAuth("t1"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(*tokens) != 1 || (*tokens)[0] != "t1" {
		t.Errorf("Expected source to be bound to the session token, got %v", *tokens)
	}
	if session.State() != StateReady {
		t.Errorf("Expected ready session, got %s", session.State())
	}

	got, ok := registry.Get("t1")
	if !ok || got != session {
		t.Error("Expected to find session by token")
	}
	if _, ok := registry.Get("unknown"); ok {
		t.Error("Expected unknown token to miss")
	}
	if registry.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", registry.Len())
	}
}

func TestRegistry_CreateRequiresToken(t *testing.T) {
	sources, _ := fixedSources(nil)
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, 0)

	if _, err := registry.Create(testAuth("")); err == nil {
		t.Error("Expected error for empty access token")
	}
	if _, err := registry.Create(nil); err == nil {
		t.Error("Expected error for missing session")
	}
}

func TestRegistry_ReplaceClosesPrevious(t *testing.T) {
	sources, _ := fixedSources(numberedArticles(1))
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, 0)

	first, _ := registry.Create(testAuth("t1"))
	second, _ := registry.Create(testAuth("t1"))

	if !first.Closed() {
		t.Error("Expected replaced session to be closed")
	}
	if second.Closed() {
		t.Error("Expected new session to stay open")
	}
	if registry.Len() != 1 {
		t.Errorf("Expected 1 session, got %d", registry.Len())
	}
}

func TestRegistry_Remove(t *testing.T) {
	sources, _ := fixedSources(nil)
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, 0)

	session, _ := registry.Create(testAuth("t1"))

	removed, ok := registry.Remove("t1")
	if !ok || removed != session {
		t.Fatal("Expected to remove the session")
	}
	if !session.Closed() {
		t.Error("Expected removed session to be closed")
	}
	if _, ok := registry.Remove("t1"); ok {
		t.Error("Expected second removal to miss")
	}
}

func TestRegistry_Expire(t *testing.T) {
	sources, _ := fixedSources(nil)
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, time.Minute)

	stale, _ := registry.Create(testAuth("stale"))
	fresh, _ := registry.Create(testAuth("fresh"))

	now := time.Now()
	stale.Touch(now.Add(-2 * time.Minute))
	fresh.Touch(now)

	if expired := registry.Expire(now); expired != 1 {
		t.Errorf("Expected 1 expired session, got %d", expired)
	}
	if !stale.Closed() {
		t.Error("Expected stale session to be closed")
	}
	if _, ok := registry.Get("fresh"); !ok {
		t.Error("Expected fresh session to remain")
	}
}

func TestRegistry_ExpireDisabled(t *testing.T) {
	sources, _ := fixedSources(nil)
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, 0)

	session, _ := registry.Create(testAuth("t1"))
	session.Touch(time.Now().Add(-24 * time.Hour))

	if expired := registry.Expire(time.Now()); expired != 0 {
		t.Errorf("Expected no expiry without TTL, got %d", expired)
	}
}

func TestRegistry_CloseAll(t *testing.T) {
	sources, _ := fixedSources(nil)
	registry := NewRegistry(&inlineScheduler{}, sources, nil, 0, 0)

	a, _ := registry.Create(testAuth("a"))
	b, _ := registry.Create(testAuth("b"))

	registry.CloseAll()

	if !a.Closed() || !b.Closed() {
		t.Error("Expected all sessions to be closed")
	}
	if registry.Len() != 0 {
		t.Errorf("Expected empty registry, got %d", registry.Len())
	}
}

func TestRegistry_PersistsAnnotations(t *testing.T) {
	backend := newMockBackend()
	backend.records["user-t1"] = map[string]digest.Annotation{"a2": {Read: true}}

	sources, _ := fixedSources(numberedArticles(2))
	registry := NewRegistry(&inlineScheduler{}, sources, backend, 0, 0)

	session, err := registry.Create(testAuth("t1"))
	if err != nil {
		t.Fatal(err)
	}

	session.SetFilter(digest.FilterRead)
	view := session.View()
	if len(view.Articles) != 1 || view.Articles[0].ID != "a2" {
		t.Errorf("Expected restored read annotation, got %v", viewIDs(view))
	}

	if _, _, err := session.ToggleSaved("a1"); err != nil {
		t.Fatal(err)
	}
	if !backend.records["user-t1"]["a1"].Saved {
		t.Error("Expected toggle to be written through")
	}
	if backend.saves != 1 {
		t.Errorf("Expected 1 save, got %d", backend.saves)
	}
}

func TestRegistry_RestoreFailureKeepsSession(t *testing.T) {
	backend := newMockBackend()
	backend.loadErr = errors.New("disk I/O error")

	sources, _ := fixedSources(numberedArticles(1))
	registry := NewRegistry(&inlineScheduler{}, sources, backend, 0, 0)

	session, err := registry.Create(testAuth("t1"))
	if err != nil {
		t.Fatalf("Expected restore failure to be non-fatal, got %v", err)
	}
	if session.State() != StateReady {
		t.Errorf("Expected ready session, got %s", session.State())
	}
}
