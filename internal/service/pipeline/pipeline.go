// Package pipeline 编排一次完整的训练数据准备流程：
// 摄取 -> 产物校验 -> 数据转换 -> 产物发布，并记录运行状态
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/ashwinyue/ml-pipeline/internal/model"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/ashwinyue/ml-pipeline/internal/repository"
	"github.com/ashwinyue/ml-pipeline/internal/service/file"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	"github.com/ashwinyue/ml-pipeline/internal/service/lock"
	"github.com/ashwinyue/ml-pipeline/internal/service/profile"
	"github.com/ashwinyue/ml-pipeline/internal/service/transformation"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultLockTTL 默认锁过期时间
	DefaultLockTTL = 10 * time.Minute
	// StepRecordArtifacts 保存产物记录
	StepRecordArtifacts = "record_artifacts"
)

// ErrUnknownArtifact 不可画像的产物名
var ErrUnknownArtifact = errors.New("unknown artifact")

// ErrArtifactNotFound 产物尚未生成
var ErrArtifactNotFound = errors.New("artifact not found")

// ErrProfilerDisabled 未启用画像器
var ErrProfilerDisabled = errors.New("artifact profiling is disabled")

// Options 流水线组件，Transformation/Profiler/Publisher 为 nil 时跳过对应阶段
type Options struct {
	Ingestion      ingestion.Config
	Transformation *transformation.Config
	Profiler       *profile.Profiler
	Publisher      *file.Service
	Locker         lock.Locker
	LockKey        string
	LockTTL        time.Duration
}

// Service 流水线服务
type Service struct {
	opts Options
	repo repository.RunRepository
	log  logrus.FieldLogger
}

// NewService 创建流水线服务
func NewService(repo repository.RunRepository, opts Options, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.Locker == nil {
		opts.Locker = lock.NewMemoryLocker()
	}
	if opts.LockKey == "" {
		opts.LockKey = opts.Ingestion.ArtifactDir()
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = DefaultLockTTL
	}
	return &Service{opts: opts, repo: repo, log: log}
}

// Run 执行一次流水线运行
// 锁被占用时返回 lock.ErrLocked 且不创建运行记录；其余失败会记录到运行记录并返回
func (s *Service) Run(ctx context.Context) (*model.PipelineRun, error) {
	release, err := s.opts.Locker.Acquire(ctx, s.opts.LockKey, s.opts.LockTTL)
	if err != nil {
		return nil, err
	}
	defer release()

	cfg := s.opts.Ingestion
	run := &model.PipelineRun{
		ID:            uuid.New().String(),
		Status:        model.RunStatusRunning,
		SourcePath:    cfg.SourcePath(),
		RawDataPath:   cfg.RawDataPath(),
		TrainDataPath: cfg.TrainDataPath(),
		TestDataPath:  cfg.TestDataPath(),
		TestSize:      cfg.TestSize(),
		RandomState:   cfg.RandomState(),
		StartedAt:     time.Now(),
	}
	if err := s.repo.Create(run); err != nil {
		return nil, fmt.Errorf("failed to create run record: %w", err)
	}

	log := s.log.WithField("run_id", run.ID)
	log.Info("Pipeline run started")

	err = s.execute(ctx, run, log)
	return s.finish(run, err, log)
}

func (s *Service) execute(ctx context.Context, run *model.PipelineRun, log logrus.FieldLogger) error {
	res, err := ingestion.NewDataIngestor(s.opts.Ingestion, log).Run()
	if err != nil {
		return err
	}
	run.TotalRows = res.TotalRows
	run.TrainRows = res.TrainRows
	run.TestRows = res.TestRows
	run.Columns = res.Columns

	if s.opts.Profiler != nil {
		if _, err := s.opts.Profiler.Verify(ctx, res); err != nil {
			return err
		}
		log.Info("Ingestion artifacts verified")
	}

	published := []string{res.RawDataPath, res.TrainDataPath, res.TestDataPath}

	if s.opts.Transformation != nil {
		out, err := transformation.NewService(*s.opts.Transformation, log).Transform(res.TrainDataPath, res.TestDataPath)
		if err != nil {
			return err
		}
		run.PreprocessorPath = out.PreprocessorPath
		run.FeatureCount = len(out.FeatureNames)
		published = append(published, out.PreprocessorPath)
	}

	if s.opts.Publisher != nil {
		artifacts, err := s.opts.Publisher.Publish(ctx, run.ID, published)
		if err != nil {
			s.unpublish(ctx, artifacts, log)
			return err
		}
		if err := s.repo.CreateArtifacts(artifacts); err != nil {
			s.unpublish(ctx, artifacts, log)
			return apperr.Wrap(apperr.StagePublish, StepRecordArtifacts, err)
		}
		run.Artifacts = artifacts
		log.WithField("count", len(artifacts)).Info("Artifacts published")
	}
	return nil
}

// unpublish 删除没有写入运行记录的已发布产物
func (s *Service) unpublish(ctx context.Context, artifacts []model.Artifact, log logrus.FieldLogger) {
	if len(artifacts) == 0 {
		return
	}
	if err := s.opts.Publisher.Remove(ctx, artifacts); err != nil {
		log.WithError(err).Warn("Failed to remove published artifacts")
	}
}

// finish 写入最终状态，失败时记录阶段、步骤与错误信息
func (s *Service) finish(run *model.PipelineRun, runErr error, log logrus.FieldLogger) (*model.PipelineRun, error) {
	now := time.Now()
	run.FinishedAt = &now
	run.Status = model.RunStatusSucceeded

	if runErr != nil {
		run.Status = model.RunStatusFailed
		run.ErrorMessage = runErr.Error()
		var ae *apperr.Error
		if errors.As(runErr, &ae) {
			run.ErrorStage = ae.Stage
			run.ErrorStep = ae.Step
		}
	}

	if err := s.repo.Update(run); err != nil {
		log.WithError(err).Warn("Failed to update run record")
		if runErr == nil {
			runErr = fmt.Errorf("failed to update run record: %w", err)
		}
	}

	entry := log.WithFields(logrus.Fields{
		"status":   run.Status,
		"duration": now.Sub(run.StartedAt).String(),
	})
	if runErr != nil {
		entry.WithField("stage", run.ErrorStage).Error("Pipeline run failed")
	} else {
		entry.Info("Pipeline run finished")
	}
	return run, runErr
}

// Get 获取运行记录
func (s *Service) Get(id string) (*model.PipelineRun, error) {
	return s.repo.GetByID(id)
}

// List 分页列出运行记录，page 从 1 开始
func (s *Service) List(page, size int) ([]*model.PipelineRun, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	runs, err := s.repo.List((page-1)*size, size)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list runs: %w", err)
	}
	total, err := s.repo.Count()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return runs, total, nil
}

// ProfileArtifact 对当前产物目录中的原始/训练/测试文件做画像
func (s *Service) ProfileArtifact(ctx context.Context, name string) (*profile.ArtifactProfile, error) {
	if s.opts.Profiler == nil {
		return nil, ErrProfilerDisabled
	}
	cfg := s.opts.Ingestion
	var path string
	for _, p := range []string{cfg.RawDataPath(), cfg.TrainDataPath(), cfg.TestDataPath()} {
		if filepath.Base(p) == name {
			path = p
			break
		}
	}
	if path == "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, name)
	}
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrArtifactNotFound, name)
		}
		return nil, fmt.Errorf("failed to stat artifact: %w", err)
	}
	return s.opts.Profiler.Profile(ctx, path)
}
