package repository

import (
	"sort"
	"sync"
	"time"

	"github.com/ashwinyue/ml-pipeline/internal/model"
)

// MemoryRunRepository 进程内运行记录仓库，未启用数据库时使用
type MemoryRunRepository struct {
	mu        sync.RWMutex
	runs      map[string]*model.PipelineRun
	artifacts map[string][]model.Artifact
}

// NewMemoryRunRepository 创建内存运行记录仓库
func NewMemoryRunRepository() *MemoryRunRepository {
	return &MemoryRunRepository{
		runs:      make(map[string]*model.PipelineRun),
		artifacts: make(map[string][]model.Artifact),
	}
}

func (r *MemoryRunRepository) Create(run *model.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	if run.CreatedAt.IsZero() {
		run.CreatedAt = now
	}
	run.UpdatedAt = now
	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *MemoryRunRepository) Update(run *model.PipelineRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.runs[run.ID]; !ok {
		return ErrNotFound
	}
	run.UpdatedAt = time.Now()
	r.runs[run.ID] = cloneRun(run)
	return nil
}

func (r *MemoryRunRepository) GetByID(id string) (*model.PipelineRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	run, ok := r.runs[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneRun(run)
	out.Artifacts = append([]model.Artifact(nil), r.artifacts[id]...)
	return out, nil
}

func (r *MemoryRunRepository) List(offset, limit int) ([]*model.PipelineRun, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	runs := make([]*model.PipelineRun, 0, len(r.runs))
	for _, run := range r.runs {
		runs = append(runs, cloneRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].ID > runs[j].ID
		}
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})

	if offset >= len(runs) {
		return []*model.PipelineRun{}, nil
	}
	end := len(runs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return runs[offset:end], nil
}

func (r *MemoryRunRepository) Count() (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.runs)), nil
}

func (r *MemoryRunRepository) CreateArtifacts(artifacts []model.Artifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	for _, a := range artifacts {
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		a.UpdatedAt = now
		r.artifacts[a.RunID] = append(r.artifacts[a.RunID], a)
	}
	return nil
}

func cloneRun(run *model.PipelineRun) *model.PipelineRun {
	c := *run
	c.Columns = append([]string(nil), run.Columns...)
	c.Artifacts = nil
	if run.FinishedAt != nil {
		t := *run.FinishedAt
		c.FinishedAt = &t
	}
	return &c
}
