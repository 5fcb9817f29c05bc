package source

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"

	"github.com/lysyi3m/news-digest/app/digest"
)

var _ Source = (*FeedSource)(nil)

// FeedSource reads articles from an RSS/Atom feed. Feed items carry no
// sentiment, so every article is reported as neutral.
type FeedSource struct {
	url          string
	userAgent    string
	timeout      time.Duration
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
}

func NewFeedSource(url, userAgent string, timeout time.Duration, httpClient *http.Client) *FeedSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &FeedSource{
		url:          url,
		userAgent:    userAgent,
		timeout:      timeout,
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
	}
}

func (s *FeedSource) FetchAll(ctx context.Context) ([]digest.Article, error) {
	data, err := s.fetchFeed(ctx)
	if err != nil {
		return nil, err
	}

	feed, err := s.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &FetchError{Source: s.url, Err: fmt.Errorf("failed to parse feed: %w", err)}
	}

	articles := make([]digest.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, s.toArticle(item))
	}

	slog.Debug("Articles fetched", "source", "feed", "feed", feed.Title, "count", len(articles))

	return articles, nil
}

func (s *FeedSource) fetchFeed(ctx context.Context) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, &FetchError{Source: s.url, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Source: s.url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{Source: s.url, Status: resp.StatusCode, Err: fmt.Errorf("HTTP error: %s", resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Source: s.url, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	return data, nil
}

func (s *FeedSource) toArticle(item *gofeed.Item) digest.Article {
	article := digest.Article{
		ID:        cmp.Or(item.GUID, item.Link),
		Title:     strings.TrimSpace(item.Title),
		Summary:   extractSummary(cmp.Or(item.Description, item.Content)),
		Sentiment: digest.SentimentNeutral,
		URL:       item.Link,
	}

	if len(item.Categories) > 0 {
		article.Category = strings.TrimSpace(item.Categories[0])
	}

	if item.Image != nil {
		article.ImageURL = item.Image.URL
	} else {
		for _, enclosure := range item.Enclosures {
			if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
				article.ImageURL = enclosure.URL
				break
			}
		}
	}

	if item.PublishedParsed != nil {
		article.CreatedAt = *item.PublishedParsed
	} else if item.UpdatedParsed != nil {
		article.CreatedAt = *item.UpdatedParsed
	}

	return article
}

// extractSummary reduces an HTML description to readable text. Fragments the
// extractor cannot handle are returned whitespace-collapsed but otherwise as is.
func extractSummary(html string) string {
	if strings.TrimSpace(html) == "" {
		return ""
	}

	if strings.Contains(html, "<") {
		extracted, err := readability.FromReader(strings.NewReader(html), nil)
		if err == nil && strings.TrimSpace(extracted.TextContent) != "" {
			return collapseWhitespace(extracted.TextContent)
		}
		if err != nil {
			slog.Debug("Summary extraction failed", "error", err)
		}
	}

	return collapseWhitespace(html)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
