package model

import (
	"time"
)

// Artifact 一次运行产出并发布的文件
type Artifact struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	RunID       string    `json:"run_id" gorm:"index"`
	Name        string    `json:"name"`
	LocalPath   string    `json:"local_path"`
	FileSize    int64     `json:"file_size"`
	ContentType string    `json:"content_type"`
	StorageType string    `json:"storage_type"` // local, minio
	StoragePath string    `json:"storage_path"` // 存储中的对象路径
	URL         string    `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Artifact) TableName() string {
	return "artifacts"
}
