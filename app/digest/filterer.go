package digest

import (
	"strings"

	"golang.org/x/text/cases"
)

// AnnotationLookup resolves the user annotations of an article.
type AnnotationLookup interface {
	Get(articleID string) Annotation
}

type Filterer struct{}

func NewFilterer() *Filterer {
	return &Filterer{}
}

// Run returns the articles matching every dimension of criteria, in their
// original order.
func (f *Filterer) Run(articles []Article, criteria Criteria, annotations AnnotationLookup) []Article {
	folder := cases.Fold()
	search := folder.String(criteria.Search)

	filtered := make([]Article, 0, len(articles))
	for _, article := range articles {
		if !f.matchesFilter(article, criteria.Filter, annotations) {
			continue
		}
		if !f.matchesCategory(article, criteria.Category) {
			continue
		}
		if !f.matchesSearch(folder, article, search) {
			continue
		}
		filtered = append(filtered, article)
	}

	return filtered
}

func (f *Filterer) matchesFilter(article Article, filter Filter, annotations AnnotationLookup) bool {
	switch filter {
	case FilterAll, "":
		return true
	case FilterSaved:
		return annotations != nil && annotations.Get(article.ID).Saved
	case FilterRead:
		return annotations != nil && annotations.Get(article.ID).Read
	default:
		return string(article.Sentiment) == string(filter)
	}
}

func (f *Filterer) matchesCategory(article Article, category string) bool {
	if category == "" || category == CategoryAll {
		return true
	}
	return article.Category == category
}

func (f *Filterer) matchesSearch(folder cases.Caser, article Article, search string) bool {
	if search == "" {
		return true
	}
	return strings.Contains(folder.String(article.Title), search)
}
