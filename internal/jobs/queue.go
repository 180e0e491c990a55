package jobs

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/WinterJet2021/MayWin-Core-Backend/internal/data/repos"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/domain/scheduling"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/observability"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/dbctx"
	"github.com/WinterJet2021/MayWin-Core-Backend/internal/platform/logger"
)

const DefaultQueueSize = 256

// JobRunner is what the queue drives; *Runner implements it.
type JobRunner interface {
	Run(ctx context.Context, jobID uuid.UUID) error
	Fail(ctx context.Context, jobID uuid.UUID, cause error) error
}

// Queue is a single-consumer FIFO of job ids. Runs never overlap.
type Queue struct {
	log     *logger.Logger
	runner  JobRunner
	jobs    repos.ScheduleJobRepo
	metrics *observability.Metrics
	ch      chan uuid.UUID
	once    sync.Once
	done    chan struct{}
}

func NewQueue(baseLog *logger.Logger, runner JobRunner, jobs repos.ScheduleJobRepo, metrics *observability.Metrics, size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		log:     baseLog.With("component", "JobQueue"),
		runner:  runner,
		jobs:    jobs,
		metrics: metrics,
		ch:      make(chan uuid.UUID, size),
		done:    make(chan struct{}),
	}
}

// Enqueue never blocks. A full buffer returns ErrQueueFull and the job stays
// REQUESTED until the next boot recovery.
func (q *Queue) Enqueue(jobID uuid.UUID) error {
	select {
	case q.ch <- jobID:
		q.metrics.SetQueueBacklog(len(q.ch))
		return nil
	default:
		q.metrics.IncQueueRejected()
		q.log.Warn("job queue full, job left in REQUESTED", "job_id", jobID, "capacity", cap(q.ch))
		return ErrQueueFull
	}
}

// Len is the number of ids waiting.
func (q *Queue) Len() int { return len(q.ch) }

// Start re-enqueues jobs left in REQUESTED and then drains the queue until ctx
// ends. Calling it twice has no effect.
func (q *Queue) Start(ctx context.Context) {
	q.once.Do(func() {
		q.recover(ctx)
		go q.loop(ctx)
	})
}

// Done is closed once the consumer has stopped.
func (q *Queue) Done() <-chan struct{} { return q.done }

func (q *Queue) recover(ctx context.Context) {
	if q.jobs == nil {
		return
	}
	pending, err := q.jobs.ListByStatus(dbctx.Context{Ctx: ctx}, scheduling.JobRequested)
	if err != nil {
		q.log.Warn("list requested jobs failed", "error", err)
		return
	}
	for _, job := range pending {
		if err := q.Enqueue(job.ID); err != nil {
			return
		}
	}
	if len(pending) > 0 {
		q.log.Info("re-enqueued requested jobs", "count", len(pending))
	}
}

func (q *Queue) loop(ctx context.Context) {
	defer close(q.done)
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-q.ch:
			q.metrics.SetQueueBacklog(len(q.ch))
			// Shutdown waits for the job in hand; only the next pick observes ctx.
			q.runOne(context.WithoutCancel(ctx), id)
		}
	}
}

func (q *Queue) runOne(ctx context.Context, jobID uuid.UUID) {
	defer func() {
		if r := recover(); r != nil {
			q.log.Error("job run panic", "job_id", jobID, "panic", r)
			if err := q.runner.Fail(ctx, jobID, errFromRecover(r)); err != nil {
				q.log.Error("fail after panic", "job_id", jobID, "error", err)
			}
		}
	}()
	if err := q.runner.Run(ctx, jobID); err != nil {
		q.log.Error("job run returned error", "job_id", jobID, "error", err)
	}
}
