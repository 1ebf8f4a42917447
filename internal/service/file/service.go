package file

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/ashwinyue/ml-pipeline/internal/config"
	"github.com/ashwinyue/ml-pipeline/internal/model"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/google/uuid"
)

// StepUpload 发布步骤
const StepUpload = "upload"

// Service 产物发布服务
type Service struct {
	storage     Storage
	storageType StorageType
}

// NewService 创建产物发布服务
func NewService(storage Storage, storageType StorageType) *Service {
	return &Service{
		storage:     storage,
		storageType: storageType,
	}
}

// NewServiceFromConfig 从配置创建产物发布服务，未配置存储时返回 nil
func NewServiceFromConfig(ctx context.Context, cfg *config.StorageConfig) (*Service, error) {
	var storage Storage
	var err error

	switch StorageType(cfg.Type) {
	case StorageTypeNone:
		return nil, nil

	case StorageTypeLocal:
		basePath := cfg.Local.BasePath
		if basePath == "" {
			basePath = "./data/artifacts"
		}
		urlPrefix := cfg.Local.URLPrefix
		if urlPrefix == "" {
			urlPrefix = "/artifacts"
		}
		storage, err = NewLocalStorage(basePath, urlPrefix)

	case StorageTypeMinIO:
		m := cfg.MinIO
		if m.Endpoint == "" || m.AccessKey == "" || m.SecretKey == "" || m.Bucket == "" {
			return nil, fmt.Errorf("missing required MinIO config")
		}
		storage, err = NewMinIOStorage(ctx, &MinIOConfig{
			Endpoint:   m.Endpoint,
			AccessKey:  m.AccessKey,
			SecretKey:  m.SecretKey,
			BucketName: m.Bucket,
			UseSSL:     m.UseSSL,
			URLPrefix:  m.URLPrefix,
		})

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to create storage: %w", err)
	}

	return NewService(storage, StorageType(cfg.Type)), nil
}

// Type 存储类型
func (s *Service) Type() StorageType {
	return s.storageType
}

// Publish 将本地产物上传到 runs/{runID}/{文件名}
func (s *Service) Publish(ctx context.Context, runID string, paths []string) ([]model.Artifact, error) {
	artifacts := make([]model.Artifact, 0, len(paths))
	for _, p := range paths {
		a, err := s.publishOne(ctx, runID, p)
		if err != nil {
			return artifacts, apperr.Wrap(apperr.StagePublish, StepUpload, err)
		}
		artifacts = append(artifacts, *a)
	}
	return artifacts, nil
}

func (s *Service) publishOne(ctx context.Context, runID, localPath string) (*model.Artifact, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to get artifact info: %w", err)
	}

	name := filepath.Base(localPath)
	contentType := contentTypeByExtension(name)
	storagePath, err := s.storage.Save(ctx, &SaveRequest{
		ObjectName:  path.Join("runs", runID, name),
		ContentType: contentType,
		Size:        info.Size(),
		Reader:      f,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save artifact %s: %w", name, err)
	}

	return &model.Artifact{
		ID:          uuid.New().String(),
		RunID:       runID,
		Name:        name,
		LocalPath:   localPath,
		FileSize:    info.Size(),
		ContentType: contentType,
		StorageType: string(s.storageType),
		StoragePath: storagePath,
		URL:         s.storage.GetURL(storagePath),
	}, nil
}

// Remove 删除已发布的产物
func (s *Service) Remove(ctx context.Context, artifacts []model.Artifact) error {
	for _, a := range artifacts {
		if err := s.storage.Delete(ctx, a.StoragePath); err != nil {
			return fmt.Errorf("failed to delete artifact from storage: %w", err)
		}
	}
	return nil
}
