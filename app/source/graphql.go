package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	graphql "github.com/hasura/go-graphql-client"
	"github.com/lysyi3m/news-digest/app/digest"
)

const articlesQuery = `query GetArticles {
  articles {
    id
    title
    summary
    sentiment
    sentiment_explanation
    category
    url
    image_url
    created_at
  }
}`

var _ Source = (*GraphQLSource)(nil)

// GraphQLSource loads articles from a Hasura endpoint.
type GraphQLSource struct {
	endpoint    string
	adminSecret string
	userAgent   string
	token       TokenFunc
	client      *graphql.Client
	timeout     time.Duration
}

type articlesData struct {
	Articles []articleRecord `json:"articles"`
}

type articleRecord struct {
	ID                   string  `json:"id"`
	Title                string  `json:"title"`
	Summary              string  `json:"summary"`
	Sentiment            string  `json:"sentiment"`
	SentimentExplanation string  `json:"sentiment_explanation"`
	Category             *string `json:"category"`
	URL                  string  `json:"url"`
	ImageURL             *string `json:"image_url"`
	CreatedAt            string  `json:"created_at"`
}

func NewGraphQLSource(endpoint, adminSecret, userAgent string, timeout time.Duration, httpClient *http.Client, token TokenFunc) *GraphQLSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GraphQLSource{
		endpoint:    endpoint,
		adminSecret: adminSecret,
		userAgent:   userAgent,
		token:       token,
		client:      graphql.NewClient(endpoint, httpClient),
		timeout:     timeout,
	}
}

// WithToken returns a copy of the source bound to another token supplier.
func (s *GraphQLSource) WithToken(token TokenFunc) *GraphQLSource {
	clone := *s
	clone.token = token
	return &clone
}

func (s *GraphQLSource) FetchAll(ctx context.Context) ([]digest.Article, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	data, err := s.client.WithRequestModifier(s.setHeaders).ExecRaw(ctx, articlesQuery, nil)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &FetchError{Source: s.endpoint, Err: ctxErr}
		}

		var gqlErrs graphql.Errors
		if errors.As(err, &gqlErrs) && len(gqlErrs) > 0 {
			slog.Warn("GraphQL query failed", "endpoint", s.endpoint, "errors", len(gqlErrs), "first", gqlErrs[0].Message)
		}

		return nil, &FetchError{Source: s.endpoint, Err: err}
	}

	if data = bytes.TrimSpace(data); len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil, &FetchError{Source: s.endpoint, Err: errors.New("empty response data")}
	}

	var resp articlesData
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, &FetchError{Source: s.endpoint, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	articles := make([]digest.Article, 0, len(resp.Articles))
	for _, record := range resp.Articles {
		articles = append(articles, record.toArticle())
	}

	slog.Debug("Articles fetched", "source", "graphql", "count", len(articles))

	return articles, nil
}

// setHeaders runs on every outgoing request, so the token is read per call.
func (s *GraphQLSource) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}
	if s.adminSecret != "" {
		req.Header.Set("x-hasura-admin-secret", s.adminSecret)
	}
	if s.token != nil {
		if token := s.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func (r articleRecord) toArticle() digest.Article {
	sentiment, err := digest.ParseSentiment(r.Sentiment)
	if err != nil {
		slog.Warn("Article has unknown sentiment", "article_id", r.ID, "sentiment", r.Sentiment)
		sentiment = digest.Sentiment(r.Sentiment)
	}

	article := digest.Article{
		ID:                   r.ID,
		Title:                r.Title,
		Summary:              r.Summary,
		Sentiment:            sentiment,
		SentimentExplanation: r.SentimentExplanation,
		URL:                  r.URL,
	}

	if r.Category != nil {
		article.Category = *r.Category
	}
	if r.ImageURL != nil {
		article.ImageURL = *r.ImageURL
	}

	if r.CreatedAt != "" {
		createdAt, err := dateparse.ParseAny(r.CreatedAt)
		if err != nil {
			slog.Warn("Article has unparseable created_at", "article_id", r.ID, "created_at", r.CreatedAt, "error", err)
		} else {
			article.CreatedAt = createdAt
		}
	}

	return article
}
