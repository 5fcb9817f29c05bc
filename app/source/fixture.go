package source

import (
	"context"
	"fmt"
	"os"

	"github.com/araddon/dateparse"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/news-digest/app/digest"
)

var _ Source = (*FixtureSource)(nil)

// FixtureSource serves articles from a YAML file of the form
//
//	articles:
//	  - id: "a1"
//	    title: "..."
//	    sentiment: positive
//	    created_at: "2024-01-02T10:00:00Z"
type FixtureSource struct {
	path string
}

type fixtureFile struct {
	Articles []fixtureArticle `yaml:"articles"`
}

type fixtureArticle struct {
	ID                   string `yaml:"id"`
	Title                string `yaml:"title"`
	Summary              string `yaml:"summary"`
	Sentiment            string `yaml:"sentiment"`
	SentimentExplanation string `yaml:"sentiment_explanation"`
	Category             string `yaml:"category"`
	URL                  string `yaml:"url"`
	ImageURL             string `yaml:"image_url"`
	CreatedAt            string `yaml:"created_at"`
}

func NewFixtureSource(path string) *FixtureSource {
	return &FixtureSource{path: path}
}

func (s *FixtureSource) FetchAll(ctx context.Context) ([]digest.Article, error) {
	select {
	case <-ctx.Done():
		return nil, &FetchError{Source: s.path, Err: ctx.Err()}
	default:
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, &FetchError{Source: s.path, Err: fmt.Errorf("failed to read file: %w", err)}
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &FetchError{Source: s.path, Err: fmt.Errorf("failed to parse YAML: %w", err)}
	}

	articles := make([]digest.Article, 0, len(file.Articles))
	for i, record := range file.Articles {
		sentiment, err := digest.ParseSentiment(record.Sentiment)
		if err != nil {
			return nil, &FetchError{Source: s.path, Err: fmt.Errorf("invalid article at index %d: %w", i, err)}
		}

		article := digest.Article{
			ID:                   record.ID,
			Title:                record.Title,
			Summary:              record.Summary,
			Sentiment:            sentiment,
			SentimentExplanation: record.SentimentExplanation,
			Category:             record.Category,
			URL:                  record.URL,
			ImageURL:             record.ImageURL,
		}

		if record.CreatedAt != "" {
			createdAt, err := dateparse.ParseAny(record.CreatedAt)
			if err != nil {
				return nil, &FetchError{Source: s.path, Err: fmt.Errorf("invalid created_at at index %d: %w", i, err)}
			}
			article.CreatedAt = createdAt
		}

		articles = append(articles, article)
	}

	return articles, nil
}
