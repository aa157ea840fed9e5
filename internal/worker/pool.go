package worker

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Xunop/e-editor/internal/log"
	"github.com/Xunop/e-editor/internal/model"
	"github.com/Xunop/e-editor/internal/store"
	"github.com/Xunop/e-editor/internal/util"
)

var ErrPoolStopped = errors.New("import pool is stopped")

// ImportPool runs epub imports in the background. Jobs are kept in memory
// and can be looked up by id until the process exits.
type ImportPool struct {
	ctx   context.Context
	queue chan model.Job
	jobs  sync.Map
	wg    sync.WaitGroup
}

func NewImportPool(ctx context.Context, s *store.Store, size int) *ImportPool {
	if size < 1 {
		size = 1
	}
	pool := &ImportPool{
		ctx:   ctx,
		queue: make(chan model.Job, size),
	}

	for i := 0; i < size; i++ {
		worker := &ImportWorker{id: i, store: s, pool: pool}
		pool.wg.Add(1)
		go func() {
			defer pool.wg.Done()
			worker.Run(ctx, pool.queue)
		}()
	}

	return pool
}

// Submit queues the import of the file at path. The file is removed once the
// job finishes when removeAfter is set.
func (p *ImportPool) Submit(path string, removeAfter bool) (model.Job, error) {
	job := model.Job{
		ID:          util.GenUUID(),
		Path:        path,
		Type:        model.JobTypeImport,
		Status:      model.JobStatusPending,
		RemoveAfter: removeAfter,
	}
	if err := p.Push(job); err != nil {
		return job, err
	}
	return job, nil
}

// Push queues a job. It fails once the pool context is done.
func (p *ImportPool) Push(job model.Job) error {
	if p.ctx.Err() != nil {
		return p.stopped(job)
	}
	p.update(job)
	select {
	case <-p.ctx.Done():
		return p.stopped(job)
	case p.queue <- job:
		return nil
	}
}

func (p *ImportPool) stopped(job model.Job) error {
	job.Status = model.JobStatusFailed
	job.Error = ErrPoolStopped.Error()
	p.update(job)
	return ErrPoolStopped
}

// Get returns a copy of the job with the given id.
func (p *ImportPool) Get(id string) (model.Job, bool) {
	v, ok := p.jobs.Load(id)
	if !ok {
		return model.Job{}, false
	}
	return v.(model.Job), true
}

// Wait blocks until every worker has returned, which happens once the pool
// context is done.
func (p *ImportPool) Wait() {
	p.wg.Wait()
}

func (p *ImportPool) update(job model.Job) {
	p.jobs.Store(job.ID, job)
}

type ImportWorker struct {
	id    int
	store *store.Store
	pool  *ImportPool
}

// Run handles imports until ctx is done.
func (w *ImportWorker) Run(ctx context.Context, c <-chan model.Job) {
	log.Debug("ImportWorker is running", zap.Int("worker_id", w.id))

	for {
		if ctx.Err() != nil {
			w.drain(c)
			log.Debug("ImportWorker stopped", zap.Int("worker_id", w.id))
			return
		}
		select {
		case <-ctx.Done():
		case job := <-c:
			w.handle(ctx, job)
		}
	}
}

func (w *ImportWorker) handle(ctx context.Context, job model.Job) {
	log.Debug("Job received by worker",
		zap.Int("worker_id", w.id),
		zap.String("job_id", job.ID),
		zap.String("path", job.Path))

	job.Status = model.JobStatusRunning
	w.pool.update(job)

	book, first, err := ImportEpub(ctx, w.store, job.Path)
	if book != nil {
		job.BookID = book.ID
	}
	if err != nil {
		log.Error("Error importing book", zap.String("job_id", job.ID), zap.Error(err))
		job.Status = model.JobStatusFailed
		job.Error = err.Error()
	} else {
		job.Status = model.JobStatusDone
		job.FirstChapter = first
	}
	w.pool.update(job)
	w.cleanup(job)
}

// drain fails the jobs still queued when the pool stops.
func (w *ImportWorker) drain(c <-chan model.Job) {
	for {
		select {
		case job := <-c:
			job.Status = model.JobStatusFailed
			job.Error = ErrPoolStopped.Error()
			w.pool.update(job)
			w.cleanup(job)
		default:
			return
		}
	}
}

func (w *ImportWorker) cleanup(job model.Job) {
	if !job.RemoveAfter {
		return
	}
	if err := os.Remove(job.Path); err != nil && !os.IsNotExist(err) {
		log.Warn("Error removing uploaded file", zap.String("path", job.Path), zap.Error(err))
	}
}
