package repository

import "gorm.io/gorm"

// Repositories 仓库集合，用于统一管理所有仓库
type Repositories struct {
	Run RunRepository
}

// NewRepositories 创建基于数据库的仓库
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Run: NewRunRepository(db),
	}
}

// NewMemoryRepositories 创建内存仓库
func NewMemoryRepositories() *Repositories {
	return &Repositories{
		Run: NewMemoryRunRepository(),
	}
}
