package digest

import (
	"fmt"
	"strings"
	"time"
)

// Article types

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// ParseSentiment accepts a sentiment label in any case, ignoring surrounding
// whitespace.
func ParseSentiment(value string) (Sentiment, error) {
	switch s := Sentiment(strings.ToLower(strings.TrimSpace(value))); s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return s, nil
	default:
		return "", fmt.Errorf("unknown sentiment: %q", value)
	}
}

type Article struct {
	ID                   string    `json:"id" yaml:"id"`
	Title                string    `json:"title" yaml:"title"`
	Summary              string    `json:"summary" yaml:"summary"`
	Sentiment            Sentiment `json:"sentiment" yaml:"sentiment"`
	SentimentExplanation string    `json:"sentiment_explanation" yaml:"sentiment_explanation"`
	Category             string    `json:"category" yaml:"category"`
	URL                  string    `json:"url" yaml:"url"`
	ImageURL             string    `json:"image_url,omitempty" yaml:"image_url"`
	CreatedAt            time.Time `json:"created_at" yaml:"created_at"`
}

// Filter criteria types

type Filter string

const (
	FilterAll      Filter = "all"
	FilterPositive Filter = "positive"
	FilterNeutral  Filter = "neutral"
	FilterNegative Filter = "negative"
	FilterSaved    Filter = "saved"
	FilterRead     Filter = "read"
)

// Filters lists the selectable filter options in display order.
var Filters = []Filter{FilterAll, FilterPositive, FilterNeutral, FilterNegative, FilterSaved, FilterRead}

func ParseFilter(value string) (Filter, error) {
	if value == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == value {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown filter: %q", value)
}

// CategoryAll selects articles of every category.
const CategoryAll = "all"

type Criteria struct {
	Filter   Filter `json:"filter"`
	Category string `json:"category"`
	Search   string `json:"search"`
}

func DefaultCriteria() Criteria {
	return Criteria{Filter: FilterAll, Category: CategoryAll}
}

// Annotation types

type Annotation struct {
	Saved bool `json:"saved"`
	Liked bool `json:"liked"`
	Read  bool `json:"read"`
}

func (a Annotation) IsZero() bool {
	return !a.Saved && !a.Liked && !a.Read
}

type NotificationLevel string

const (
	NotificationSuccess NotificationLevel = "success"
	NotificationError   NotificationLevel = "error"
)

type Notification struct {
	Level   NotificationLevel `json:"level"`
	Message string            `json:"message"`
}

func Success(message string) Notification {
	return Notification{Level: NotificationSuccess, Message: message}
}

func Failure(message string) Notification {
	return Notification{Level: NotificationError, Message: message}
}
