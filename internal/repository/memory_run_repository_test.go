package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/ashwinyue/ml-pipeline/internal/model"
)

func TestMemoryRunRepository_CreateGetUpdate(t *testing.T) {
	repo := NewMemoryRunRepository()

	run := &model.PipelineRun{
		ID:        "run-1",
		Status:    model.RunStatusRunning,
		Columns:   []string{"a", "b"},
		StartedAt: time.Now(),
	}
	if err := repo.Create(run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// 修改调用方持有的对象不应影响已保存的记录
	run.Columns[0] = "changed"

	got, err := repo.GetByID("run-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.Status != model.RunStatusRunning || got.Columns[0] != "a" {
		t.Errorf("GetByID() = %+v", got)
	}

	got.Status = model.RunStatusSucceeded
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	got, _ = repo.GetByID("run-1")
	if got.Status != model.RunStatusSucceeded {
		t.Errorf("Status = %q after update", got.Status)
	}

	if _, err := repo.GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrNotFound", err)
	}
	if err := repo.Update(&model.PipelineRun{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) error = %v, want ErrNotFound", err)
	}
}

func TestMemoryRunRepository_ListCount(t *testing.T) {
	repo := NewMemoryRunRepository()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"r1", "r2", "r3"} {
		if err := repo.Create(&model.PipelineRun{ID: id, StartedAt: base.Add(time.Duration(i) * time.Minute)}); err != nil {
			t.Fatal(err)
		}
	}

	count, err := repo.Count()
	if err != nil || count != 3 {
		t.Fatalf("Count() = %d, %v", count, err)
	}

	tests := []struct {
		name          string
		offset, limit int
		want          []string
	}{
		{"all newest first", 0, 10, []string{"r3", "r2", "r1"}},
		{"first page", 0, 2, []string{"r3", "r2"}},
		{"second page", 2, 2, []string{"r1"}},
		{"past end", 5, 2, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := repo.List(tt.offset, tt.limit)
			if err != nil {
				t.Fatal(err)
			}
			if len(runs) != len(tt.want) {
				t.Fatalf("List() len = %d, want %d", len(runs), len(tt.want))
			}
			for i, id := range tt.want {
				if runs[i].ID != id {
					t.Errorf("runs[%d] = %s, want %s", i, runs[i].ID, id)
				}
			}
		})
	}
}

func TestMemoryRunRepository_Artifacts(t *testing.T) {
	repo := NewMemoryRunRepository()
	if err := repo.Create(&model.PipelineRun{ID: "run-1"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.CreateArtifacts([]model.Artifact{
		{ID: "a1", RunID: "run-1", Name: "train.csv"},
		{ID: "a2", RunID: "run-1", Name: "test.csv"},
	}); err != nil {
		t.Fatalf("CreateArtifacts() error = %v", err)
	}

	run, _ := repo.GetByID("run-1")
	if len(run.Artifacts) != 2 || run.Artifacts[0].Name != "train.csv" {
		t.Errorf("GetByID() artifacts = %+v", run.Artifacts)
	}

	if err := repo.Create(&model.PipelineRun{ID: "run-2"}); err != nil {
		t.Fatal(err)
	}
	if other, _ := repo.GetByID("run-2"); len(other.Artifacts) != 0 {
		t.Errorf("GetByID(run-2) artifacts = %+v", other.Artifacts)
	}
}
