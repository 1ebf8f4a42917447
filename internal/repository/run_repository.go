package repository

import (
	"errors"

	"github.com/ashwinyue/ml-pipeline/internal/model"
	"gorm.io/gorm"
)

// runRepositoryImpl 基于 GORM 的运行记录仓库
type runRepositoryImpl struct {
	db *gorm.DB
}

// NewRunRepository 创建运行记录仓库
func NewRunRepository(db *gorm.DB) RunRepository {
	return &runRepositoryImpl{db: db}
}

// Create 创建运行记录
func (r *runRepositoryImpl) Create(run *model.PipelineRun) error {
	return r.db.Omit("Artifacts").Create(run).Error
}

// Update 更新运行记录，不级联产物
func (r *runRepositoryImpl) Update(run *model.PipelineRun) error {
	return r.db.Omit("Artifacts").Save(run).Error
}

// GetByID 根据ID获取运行记录及其产物
func (r *runRepositoryImpl) GetByID(id string) (*model.PipelineRun, error) {
	var run model.PipelineRun
	err := r.db.Preload("Artifacts", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).Where("id = ?", id).First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List 按开始时间倒序列出运行记录
func (r *runRepositoryImpl) List(offset, limit int) ([]*model.PipelineRun, error) {
	var runs []*model.PipelineRun
	err := r.db.Order("started_at DESC").Offset(offset).Limit(limit).Find(&runs).Error
	return runs, err
}

// Count 统计运行记录数
func (r *runRepositoryImpl) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.PipelineRun{}).Count(&count).Error
	return count, err
}

// CreateArtifacts 批量创建产物记录
func (r *runRepositoryImpl) CreateArtifacts(artifacts []model.Artifact) error {
	if len(artifacts) == 0 {
		return nil
	}
	return r.db.Create(&artifacts).Error
}
