package profile

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/logger"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	"github.com/ashwinyue/ml-pipeline/internal/testutil"
)

func newProfiler(t *testing.T) *Profiler {
	t.Helper()
	p, err := NewProfiler()
	if err != nil {
		t.Fatalf("NewProfiler() error = %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

func TestProfile(t *testing.T) {
	p := newProfiler(t)
	path := testutil.WriteStudentCSV(t, t.TempDir(), 25)

	prof, err := p.Profile(context.Background(), path)
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}
	if prof.RowCount != 25 {
		t.Errorf("RowCount = %d, want 25", prof.RowCount)
	}
	if !reflect.DeepEqual(prof.ColumnNames(), testutil.StudentHeader) {
		t.Errorf("ColumnNames() = %v, want %v", prof.ColumnNames(), testutil.StudentHeader)
	}
	for _, c := range prof.Columns {
		if c.Type == "" {
			t.Errorf("column %s has empty type", c.Name)
		}
	}
}

func TestProfile_MissingFile(t *testing.T) {
	p := newProfiler(t)

	_, err := p.Profile(context.Background(), filepath.Join(t.TempDir(), "none.csv"))
	if !apperr.IsStage(err, apperr.StageProfile) {
		t.Errorf("error = %v, want profile stage error", err)
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteStudentCSV(t, dir, 60)
	cfg := ingestion.NewConfig(filepath.Join(dir, "artifacts"), ingestion.WithSourcePath(source))
	res, err := ingestion.NewDataIngestor(cfg, logger.Discard()).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	p := newProfiler(t)
	profiles, err := p.Verify(context.Background(), res)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("len(profiles) = %d, want 3", len(profiles))
	}
	if profiles[1].RowCount != 48 || profiles[2].RowCount != 12 {
		t.Errorf("train/test rows = %d/%d, want 48/12", profiles[1].RowCount, profiles[2].RowCount)
	}
}

func TestVerify_Mismatch(t *testing.T) {
	dir := t.TempDir()
	source := testutil.WriteStudentCSV(t, dir, 30)
	cfg := ingestion.NewConfig(filepath.Join(dir, "artifacts"), ingestion.WithSourcePath(source))
	res, err := ingestion.NewDataIngestor(cfg, logger.Discard()).Run()
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	res.TotalRows = 31

	_, err = newProfiler(t).Verify(context.Background(), res)
	if apperr.StepOf(err) != StepVerify {
		t.Errorf("StepOf() = %q, want %q", apperr.StepOf(err), StepVerify)
	}
}
