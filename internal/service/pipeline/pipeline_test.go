package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/ashwinyue/ml-pipeline/internal/model"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/logger"
	"github.com/ashwinyue/ml-pipeline/internal/repository"
	"github.com/ashwinyue/ml-pipeline/internal/service/file"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	"github.com/ashwinyue/ml-pipeline/internal/service/lock"
	"github.com/ashwinyue/ml-pipeline/internal/service/profile"
	"github.com/ashwinyue/ml-pipeline/internal/service/transformation"
	"github.com/ashwinyue/ml-pipeline/internal/testutil"
)

type fixture struct {
	svc     *Service
	repo    *repository.MemoryRunRepository
	locker  *lock.MemoryLocker
	dir     string
	storage string
}

func newFixture(t *testing.T, rows int, withSource bool) *fixture {
	t.Helper()
	dir := t.TempDir()
	srcDir := filepath.Join(dir, "src")
	source := filepath.Join(srcDir, "stud.csv")
	if withSource {
		source = testutil.WriteStudentCSV(t, t.TempDir(), rows)
	}
	artifactDir := filepath.Join(dir, "artifacts")

	profiler, err := profile.NewProfiler()
	if err != nil {
		t.Fatalf("NewProfiler() error = %v", err)
	}
	t.Cleanup(func() { profiler.Close() })

	storageDir := filepath.Join(dir, "store")
	storage, err := file.NewLocalStorage(storageDir, "/artifacts")
	if err != nil {
		t.Fatal(err)
	}

	repo := repository.NewMemoryRunRepository()
	locker := lock.NewMemoryLocker()
	svc := NewService(repo, Options{
		Ingestion: ingestion.NewConfig(artifactDir, ingestion.WithSourcePath(source)),
		Transformation: &transformation.Config{
			TargetColumn:     "math_score",
			PreprocessorPath: filepath.Join(artifactDir, "preprocessor.json"),
		},
		Profiler:  profiler,
		Publisher: file.NewService(storage, file.StorageTypeLocal),
		Locker:    locker,
	}, logger.Discard())

	return &fixture{svc: svc, repo: repo, locker: locker, dir: artifactDir, storage: storageDir}
}

func TestRun_Success(t *testing.T) {
	f := newFixture(t, 50, true)
	assert := testutil.NewAssertHelper(t)

	run, err := f.svc.Run(context.Background())
	assert.NoError(err)
	assert.Equal(model.RunStatusSucceeded, run.Status)
	assert.Equal(50, run.TotalRows)
	assert.Equal(40, run.TrainRows)
	assert.Equal(10, run.TestRows)
	assert.Equal(len(testutil.StudentHeader), len(run.Columns))
	assert.True(run.FinishedAt != nil, "FinishedAt should be set")
	assert.True(run.FeatureCount > 0, "FeatureCount should be positive")
	assert.Equal("", run.ErrorMessage)

	for _, name := range []string{"data.csv", "train.csv", "test.csv", "preprocessor.json"} {
		assert.FileExists(filepath.Join(f.dir, name))
		assert.FileExists(filepath.Join(f.storage, "runs", run.ID, name))
	}

	stored, err := f.svc.Get(run.ID)
	assert.NoError(err)
	assert.Equal(model.RunStatusSucceeded, stored.Status)
	assert.Equal(4, len(stored.Artifacts))

	// 运行结束后锁已释放
	release, err := f.locker.Acquire(context.Background(), f.dir, 0)
	assert.NoError(err)
	release()
}

func TestRun_MissingSource(t *testing.T) {
	f := newFixture(t, 0, false)
	assert := testutil.NewAssertHelper(t)

	run, err := f.svc.Run(context.Background())
	assert.Error(err)
	assert.True(apperr.IsStage(err, apperr.StageIngestion), "want ingestion stage error")
	assert.True(errors.Is(err, fs.ErrNotExist), "want fs.ErrNotExist")

	assert.Equal(model.RunStatusFailed, run.Status)
	assert.Equal(apperr.StageIngestion, run.ErrorStage)
	assert.Equal(ingestion.StepReadSource, run.ErrorStep)
	assert.True(run.ErrorMessage != "", "ErrorMessage should be set")

	stored, err := f.svc.Get(run.ID)
	assert.NoError(err)
	assert.Equal(model.RunStatusFailed, stored.Status)
	assert.NoFile(f.dir)
}

type failingArtifactRepo struct {
	*repository.MemoryRunRepository
}

func (r *failingArtifactRepo) CreateArtifacts([]model.Artifact) error {
	return errors.New("artifact table unavailable")
}

func TestRun_RecordArtifactsFailure(t *testing.T) {
	f := newFixture(t, 20, true)
	f.svc.repo = &failingArtifactRepo{f.repo}
	assert := testutil.NewAssertHelper(t)

	run, err := f.svc.Run(context.Background())
	assert.Error(err)
	assert.True(apperr.IsStage(err, apperr.StagePublish), "want publish stage error")
	assert.Equal(model.RunStatusFailed, run.Status)
	assert.Equal(StepRecordArtifacts, run.ErrorStep)
	assert.Equal(0, len(run.Artifacts))

	// 未记录的产物从存储中移除
	for _, name := range []string{"data.csv", "train.csv", "test.csv", "preprocessor.json"} {
		assert.FileExists(filepath.Join(f.dir, name))
		assert.NoFile(filepath.Join(f.storage, "runs", run.ID, name))
	}
}

func TestRun_Locked(t *testing.T) {
	f := newFixture(t, 20, true)

	release, err := f.locker.Acquire(context.Background(), f.dir, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer release()

	run, err := f.svc.Run(context.Background())
	if !errors.Is(err, lock.ErrLocked) {
		t.Fatalf("Run() error = %v, want ErrLocked", err)
	}
	if run != nil {
		t.Errorf("Run() should not return a run when locked")
	}
	if count, _ := f.repo.Count(); count != 0 {
		t.Errorf("Count() = %d, want no run records", count)
	}
}

func TestRun_IngestionOnly(t *testing.T) {
	source := testutil.WriteStudentCSV(t, t.TempDir(), 10)
	artifactDir := filepath.Join(t.TempDir(), "artifacts")
	svc := NewService(repository.NewMemoryRunRepository(), Options{
		Ingestion: ingestion.NewConfig(artifactDir, ingestion.WithSourcePath(source)),
	}, logger.Discard())

	run, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if run.PreprocessorPath != "" || len(run.Artifacts) != 0 {
		t.Errorf("optional stages should be skipped, got %+v", run)
	}
	if run.TrainRows != 8 || run.TestRows != 2 {
		t.Errorf("rows = %d/%d, want 8/2", run.TrainRows, run.TestRows)
	}
}

func TestList(t *testing.T) {
	f := newFixture(t, 20, true)
	for i := 0; i < 3; i++ {
		if _, err := f.svc.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
	}

	runs, total, err := f.svc.List(1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(runs) != 2 {
		t.Errorf("List(1, 2) = %d runs, total %d", len(runs), total)
	}

	runs, _, _ = f.svc.List(2, 2)
	if len(runs) != 1 {
		t.Errorf("List(2, 2) = %d runs, want 1", len(runs))
	}

	if _, err := f.svc.Get("missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("Get(missing) error = %v", err)
	}
}

func TestProfileArtifact(t *testing.T) {
	f := newFixture(t, 30, true)
	ctx := context.Background()

	if _, err := f.svc.ProfileArtifact(ctx, "train.csv"); !errors.Is(err, ErrArtifactNotFound) {
		t.Errorf("ProfileArtifact() before any run error = %v, want ErrArtifactNotFound", err)
	}

	if _, err := f.svc.Run(ctx); err != nil {
		t.Fatal(err)
	}

	prof, err := f.svc.ProfileArtifact(ctx, "train.csv")
	if err != nil {
		t.Fatalf("ProfileArtifact() error = %v", err)
	}
	if prof.RowCount != 24 {
		t.Errorf("RowCount = %d, want 24", prof.RowCount)
	}

	if _, err := f.svc.ProfileArtifact(ctx, "preprocessor.json"); !errors.Is(err, ErrUnknownArtifact) {
		t.Errorf("ProfileArtifact(preprocessor.json) error = %v, want ErrUnknownArtifact", err)
	}
}
