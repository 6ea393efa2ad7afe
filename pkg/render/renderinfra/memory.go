package renderinfra

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/kernel"
	"github.com/Abraxas-365/fittsee/pkg/render"
)

// MemoryRepository is an in-process job store with the same conditional
// semantics as PostgresRepository.
type MemoryRepository struct {
	mu        sync.Mutex
	jobs      map[kernel.JobID]render.RenderJob
	failWrite error
	history   map[kernel.JobID][]render.Status
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		jobs:    make(map[kernel.JobID]render.RenderJob),
		history: make(map[kernel.JobID][]render.Status),
	}
}

// FailWrites makes every later write return err. nil restores normal behaviour.
func (m *MemoryRepository) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrite = err
}

// History returns every status the job has been stored with, in order.
func (m *MemoryRepository) History(id kernel.JobID) []render.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]render.Status(nil), m.history[id]...)
}

// Len returns the number of stored jobs
func (m *MemoryRepository) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.jobs)
}

func (m *MemoryRepository) writeErr() error {
	if m.failWrite != nil {
		return errx.Wrap(m.failWrite, "job store write failed", errx.TypeInternal)
	}
	return nil
}

func (m *MemoryRepository) Create(_ context.Context, j *render.RenderJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	m.jobs[j.ID] = *j
	m.history[j.ID] = append(m.history[j.ID], j.Status)
	return nil
}

func (m *MemoryRepository) FindByID(_ context.Context, id kernel.JobID) (*render.RenderJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, render.ErrJobNotFound().WithDetail("job_id", id)
	}
	return &j, nil
}

func (m *MemoryRepository) Transition(_ context.Context, j *render.RenderJob, from render.Status) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return false, err
	}
	stored, ok := m.jobs[j.ID]
	if !ok || stored.Status != from {
		return false, nil
	}
	j.EnqueuedAt = stored.EnqueuedAt
	m.jobs[j.ID] = *j
	m.history[j.ID] = append(m.history[j.ID], j.Status)
	return true, nil
}

func (m *MemoryRepository) MarkEnqueued(_ context.Context, id kernel.JobID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	if j, ok := m.jobs[id]; ok && j.EnqueuedAt == nil {
		j.EnqueuedAt = &at
		m.jobs[id] = j
	}
	return nil
}

func (m *MemoryRepository) ListUnqueued(_ context.Context, olderThan time.Time, limit int) ([]*render.RenderJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*render.RenderJob
	for _, j := range m.jobs {
		if j.Status == render.StatusQueued && j.EnqueuedAt == nil && j.CreatedAt.Before(olderThan) {
			out = append(out, &j)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.Before(out[b].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryRepository) Delete(_ context.Context, id kernel.JobID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.writeErr(); err != nil {
		return err
	}
	if j, ok := m.jobs[id]; ok && j.Status == render.StatusQueued {
		delete(m.jobs, id)
	}
	return nil
}
