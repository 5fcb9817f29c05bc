package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

var ErrQueueFull = errors.New("task queue is full")

const (
	DefaultQueueSize   = 300
	DefaultTaskTimeout = 5 * time.Minute
)

type periodic struct {
	interval time.Duration
	producer TaskProducer
}

type Scheduler struct {
	workerCount int
	taskTimeout time.Duration
	periodics   []periodic
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	taskQueue   chan TaskInterface
}

func NewScheduler(workerCount, queueSize int, taskTimeout time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	if workerCount <= 0 {
		workerCount = 1
	}
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	if taskTimeout <= 0 {
		taskTimeout = DefaultTaskTimeout
	}

	return &Scheduler{
		workerCount: workerCount,
		taskTimeout: taskTimeout,
		ctx:         ctx,
		cancel:      cancel,
		taskQueue:   make(chan TaskInterface, queueSize),
	}
}

// Every registers a producer to run on a fixed interval. Must be called before Start.
func (s *Scheduler) Every(interval time.Duration, producer TaskProducer) {
	s.periodics = append(s.periodics, periodic{interval: interval, producer: producer})
}

func (s *Scheduler) Start() {
	for i := 0; i < s.workerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	for _, p := range s.periodics {
		s.wg.Add(1)
		go func(p periodic) {
			defer s.wg.Done()

			ticker := time.NewTicker(p.interval)
			defer ticker.Stop()

			for {
				select {
				case <-s.ctx.Done():
					return
				case <-ticker.C:
					s.enqueueAll(p.producer())
				}
			}
		}(p)
	}

	slog.Debug("Scheduler started", "workers", s.workerCount, "periodic", len(s.periodics))
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) EnqueueTask(task TaskInterface) error {
	if err := s.ctx.Err(); err != nil {
		return err
	}

	select {
	case s.taskQueue <- task:
		return nil
	case <-s.ctx.Done():
		return s.ctx.Err()
	default:
		return ErrQueueFull
	}
}

func (s *Scheduler) enqueueAll(tasks []TaskInterface) {
	for _, task := range tasks {
		if err := s.EnqueueTask(task); err != nil {
			slog.Warn("Failed to enqueue task", "type", string(task.GetType()), "subject", task.GetSubject(), "error", err)
		}
	}
}

func (s *Scheduler) worker(id int) {
	defer s.wg.Done()

	for {
		select {
		case task := <-s.taskQueue:
			s.executeTask(id, task)

		case <-s.ctx.Done():
			return
		}
	}
}

func (s *Scheduler) executeTask(workerID int, task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(s.ctx, s.taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Worker task execution failed",
			"worker_id", workerID,
			"type", string(task.GetType()),
			"subject", task.GetSubject(),
			"id", task.GetID(),
			"duration", task.GetDuration().String(),
			"error", err)
	}
}
