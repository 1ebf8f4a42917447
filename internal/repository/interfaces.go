// Package repository 定义数据访问接口
// 接口抽象使依赖注入和单元测试成为可能
package repository

import (
	"errors"

	"github.com/ashwinyue/ml-pipeline/internal/model"
)

// ErrNotFound 记录不存在
var ErrNotFound = errors.New("record not found")

// ========== RunRepository 接口 ==========

// RunRepository 流水线运行记录数据访问接口
type RunRepository interface {
	Create(run *model.PipelineRun) error
	Update(run *model.PipelineRun) error
	GetByID(id string) (*model.PipelineRun, error)
	List(offset, limit int) ([]*model.PipelineRun, error)
	Count() (int64, error)

	// 产物操作
	CreateArtifacts(artifacts []model.Artifact) error
}

// 确保实现了接口
var (
	_ RunRepository = (*runRepositoryImpl)(nil)
	_ RunRepository = (*MemoryRunRepository)(nil)
)
