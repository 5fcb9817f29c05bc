package tasks

import "time"

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Used by the dashboard sessions to load articles in the background and by
// the application to run periodic maintenance.
//
//	scheduler := NewScheduler(workerCount, queueSize, taskTimeout)
//	scheduler.Every(time.Minute, producer)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(NewLoadArticlesTask(...))
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Every(interval time.Duration, producer TaskProducer)
}

// TaskProducer builds the tasks enqueued on each tick of a periodic schedule.
type TaskProducer func() []TaskInterface
