package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/lysyi3m/news-digest/app/digest"
)

// Source returns the full article set. No filtering or paging is pushed to it.
type Source interface {
	FetchAll(ctx context.Context) ([]digest.Article, error)
}

// TokenFunc yields the current bearer token, or "" when unauthenticated.
type TokenFunc func() string

// FetchError reports that the article source could not be reached or read.
type FetchError struct {
	Source string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch from %s failed with status %d: %v", e.Source, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch from %s failed: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func IsFetchError(err error) bool {
	var fetchErr *FetchError
	return errors.As(err, &fetchErr)
}
