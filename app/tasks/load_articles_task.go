package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/news-digest/app/digest"
	"github.com/lysyi3m/news-digest/app/source"
)

// ArticleSink receives the outcome of a load.
type ArticleSink interface {
	ArticlesLoaded(articles []digest.Article)
	ArticlesFailed(err error)
}

// LoadArticlesTask fetches the full article set once and hands the
// normalized list to its sink. A failed fetch is reported, not retried.
type LoadArticlesTask struct {
	Task
	owner context.Context
	src   source.Source
	sink  ArticleSink
}

func NewLoadArticlesTask(owner context.Context, subject string, src source.Source, sink ArticleSink) *LoadArticlesTask {
	return &LoadArticlesTask{
		Task:  NewTask(TaskTypeLoadArticles, subject),
		owner: owner,
		src:   src,
		sink:  sink,
	}
}

func (t *LoadArticlesTask) Execute(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(t.owner, cancel)
	defer stop()

	select {
	case <-ctx.Done():
		t.sink.ArticlesFailed(ctx.Err())
		return ctx.Err()
	default:
	}

	raw, err := t.src.FetchAll(ctx)
	if err != nil {
		t.sink.ArticlesFailed(err)
		return fmt.Errorf("failed to fetch articles: %w", err)
	}

	articles := digest.Normalize(raw)
	t.sink.ArticlesLoaded(articles)

	slog.Info("Task completed",
		"type", t.GetType(),
		"subject", t.Subject,
		"duration", t.GetDuration(),
		"fetched", len(raw),
		"unique", len(articles))

	return nil
}
