package digest

import (
	"sort"
)

// Normalize drops later articles whose title was already seen and orders the
// rest newest first. Articles created at the same instant keep their order.
func Normalize(raw []Article) []Article {
	seen := make(map[string]struct{}, len(raw))
	canonical := make([]Article, 0, len(raw))

	for _, article := range raw {
		if _, ok := seen[article.Title]; ok {
			continue
		}
		seen[article.Title] = struct{}{}
		canonical = append(canonical, article)
	}

	sort.SliceStable(canonical, func(i, j int) bool {
		return canonical[i].CreatedAt.After(canonical[j].CreatedAt)
	})

	return canonical
}

// Categories returns the distinct non-empty categories of articles, sorted.
func Categories(articles []Article) []string {
	set := make(map[string]struct{})
	for _, article := range articles {
		if article.Category != "" {
			set[article.Category] = struct{}{}
		}
	}

	categories := make([]string, 0, len(set))
	for category := range set {
		categories = append(categories, category)
	}
	sort.Strings(categories)

	return categories
}
