package service

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/ashwinyue/ml-pipeline/internal/config"
	"github.com/ashwinyue/ml-pipeline/internal/repository"
	"github.com/ashwinyue/ml-pipeline/internal/service/file"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	"github.com/ashwinyue/ml-pipeline/internal/service/lock"
	"github.com/ashwinyue/ml-pipeline/internal/service/pipeline"
	"github.com/ashwinyue/ml-pipeline/internal/service/profile"
	"github.com/ashwinyue/ml-pipeline/internal/service/transformation"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Services 服务集合
type Services struct {
	Pipeline  *pipeline.Service
	Profiler  *profile.Profiler // 未启用时为 nil
	Publisher *file.Service     // 未配置存储时为 nil

	Config *config.Config
}

// NewServices 创建所有服务，redisClient 为 nil 时使用进程内锁
func NewServices(ctx context.Context, cfg *config.Config, repos *repository.Repositories, redisClient *redis.Client, log logrus.FieldLogger) (*Services, error) {
	var profiler *profile.Profiler
	if cfg.Profile.Enabled {
		p, err := profile.NewProfiler()
		if err != nil {
			return nil, fmt.Errorf("failed to create profiler: %w", err)
		}
		profiler = p
	}

	publisher, err := file.NewServiceFromConfig(ctx, &cfg.Storage)
	if err != nil {
		if profiler != nil {
			profiler.Close()
		}
		return nil, fmt.Errorf("failed to create artifact publisher: %w", err)
	}

	var locker lock.Locker
	if redisClient != nil {
		locker = lock.NewRedisLocker(redisClient, log)
	} else {
		locker = lock.NewMemoryLocker()
	}

	ingestCfg := IngestionConfig(cfg)
	opts := pipeline.Options{
		Ingestion: ingestCfg,
		Profiler:  profiler,
		Publisher: publisher,
		Locker:    locker,
		LockKey:   cfg.Redis.LockKey + ":" + ingestCfg.ArtifactDir(),
		LockTTL:   time.Duration(cfg.Redis.LockTTL) * time.Second,
	}
	if cfg.Transformation.Enabled {
		tc := TransformationConfig(cfg)
		opts.Transformation = &tc
	}

	return &Services{
		Pipeline:  pipeline.NewService(repos.Run, opts, log),
		Profiler:  profiler,
		Publisher: publisher,
		Config:    cfg,
	}, nil
}

// Close 释放服务持有的资源
func (s *Services) Close() error {
	if s.Profiler != nil {
		return s.Profiler.Close()
	}
	return nil
}

// IngestionConfig 从应用配置构建摄取配置
func IngestionConfig(cfg *config.Config) ingestion.Config {
	ic := cfg.Ingestion
	return ingestion.NewConfig(ic.ArtifactDir,
		ingestion.WithSourcePath(ic.SourcePath),
		ingestion.WithFileNames(ic.RawFile, ic.TrainFile, ic.TestFile),
		ingestion.WithTestSize(ic.TestSize),
		ingestion.WithRandomState(ic.RandomState),
	)
}

// TransformationConfig 从应用配置构建转换配置，预处理器保存在产物目录
func TransformationConfig(cfg *config.Config) transformation.Config {
	tc := cfg.Transformation
	name := tc.PreprocessorFile
	if name == "" {
		name = transformation.DefaultPreprocessorFile
	}
	artifactDir := cfg.Ingestion.ArtifactDir
	if artifactDir == "" {
		artifactDir = ingestion.DefaultArtifactDir
	}
	return transformation.Config{
		TargetColumn:       tc.TargetColumn,
		NumericalColumns:   tc.NumericalColumns,
		CategoricalColumns: tc.CategoricalColumns,
		PreprocessorPath:   filepath.Join(artifactDir, name),
	}
}
