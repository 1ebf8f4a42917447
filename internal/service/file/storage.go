package file

import (
	"context"
	"io"
	"path/filepath"
	"strings"
)

// Storage 产物存储接口
type Storage interface {
	// Save 保存文件，返回存储路径
	Save(ctx context.Context, req *SaveRequest) (string, error)
	// Get 获取文件内容
	Get(ctx context.Context, filePath string) (io.ReadCloser, error)
	// Delete 删除文件
	Delete(ctx context.Context, filePath string) error
	// GetURL 获取文件的访问URL
	GetURL(filePath string) string
}

// SaveRequest 保存文件请求
type SaveRequest struct {
	ObjectName  string // 存储中的相对路径，如 runs/{runID}/train.csv
	ContentType string
	Size        int64
	Reader      io.Reader
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeNone  StorageType = ""
	StorageTypeLocal StorageType = "local"
	StorageTypeMinIO StorageType = "minio"
)

// contentTypeByExtension 根据扩展名返回内容类型
func contentTypeByExtension(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "text/csv"
	case ".json":
		return "application/json"
	case ".parquet":
		return "application/vnd.apache.parquet"
	default:
		return "application/octet-stream"
	}
}
