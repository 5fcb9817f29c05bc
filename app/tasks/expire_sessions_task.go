package tasks

import (
	"context"
	"log/slog"
	"time"
)

type SessionExpirer interface {
	Expire(now time.Time) int
}

type ExpireSessionsTask struct {
	Task
	expirer SessionExpirer
}

func NewExpireSessionsTask(expirer SessionExpirer) *ExpireSessionsTask {
	return &ExpireSessionsTask{
		Task:    NewTask(TaskTypeExpireSessions, "registry"),
		expirer: expirer,
	}
}

func (t *ExpireSessionsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	expired := t.expirer.Expire(time.Now())

	if expired > 0 {
		slog.Info("Task completed",
			"type", t.GetType(),
			"duration", t.GetDuration(),
			"expired", expired)
	}

	return nil
}
