package file

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ashwinyue/ml-pipeline/internal/config"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return p
}

// ========== LocalStorage 测试 ==========

func TestLocalStorage_SaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(filepath.Join(t.TempDir(), "store"), "/files/")
	if err != nil {
		t.Fatalf("NewLocalStorage() error = %v", err)
	}

	p, err := s.Save(ctx, &SaveRequest{ObjectName: "runs/r1/train.csv", Reader: strings.NewReader("a,b\n1,2\n")})
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if p != "runs/r1/train.csv" {
		t.Errorf("Save() path = %q", p)
	}
	if url := s.GetURL(p); url != "/files/runs/r1/train.csv" {
		t.Errorf("GetURL() = %q", url)
	}

	rc, err := s.Get(ctx, p)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "a,b\n1,2\n" {
		t.Errorf("Get() content = %q", data)
	}

	if err := s.Delete(ctx, p); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := s.Delete(ctx, p); err != nil {
		t.Errorf("Delete() of missing file should be a no-op, got %v", err)
	}
}

func TestLocalStorage_RejectsEscape(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"../x.csv", "/abs.csv", "", "a/../../b"} {
		if _, err := s.Save(context.Background(), &SaveRequest{ObjectName: name, Reader: strings.NewReader("")}); err == nil {
			t.Errorf("Save(%q) expected error", name)
		}
	}
}

// ========== Service 测试 ==========

func TestNewServiceFromConfig(t *testing.T) {
	ctx := context.Background()

	svc, err := NewServiceFromConfig(ctx, &config.StorageConfig{})
	if err != nil || svc != nil {
		t.Errorf("empty type should disable publishing, got %v, %v", svc, err)
	}

	svc, err = NewServiceFromConfig(ctx, &config.StorageConfig{
		Type:  "local",
		Local: config.LocalStorageConfig{BasePath: t.TempDir()},
	})
	if err != nil || svc == nil {
		t.Fatalf("local config: %v, %v", svc, err)
	}
	if svc.Type() != StorageTypeLocal {
		t.Errorf("Type() = %q", svc.Type())
	}

	if _, err := NewServiceFromConfig(ctx, &config.StorageConfig{Type: "minio"}); err == nil {
		t.Error("incomplete MinIO config should fail")
	}
	if _, err := NewServiceFromConfig(ctx, &config.StorageConfig{Type: "cos"}); err == nil {
		t.Error("unsupported type should fail")
	}
}

func TestService_Publish(t *testing.T) {
	ctx := context.Background()
	src := t.TempDir()
	train := writeFile(t, src, "train.csv", "x\n1\n")
	prep := writeFile(t, src, "preprocessor.json", "{}")

	dir := filepath.Join(t.TempDir(), "store")
	storage, err := NewLocalStorage(dir, "/artifacts")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(storage, StorageTypeLocal)

	artifacts, err := svc.Publish(ctx, "run-1", []string{train, prep})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if len(artifacts) != 2 {
		t.Fatalf("len(artifacts) = %d, want 2", len(artifacts))
	}

	a := artifacts[0]
	if a.RunID != "run-1" || a.Name != "train.csv" || a.StoragePath != "runs/run-1/train.csv" {
		t.Errorf("artifact = %+v", a)
	}
	if a.ContentType != "text/csv" || a.FileSize != 4 || a.URL != "/artifacts/runs/run-1/train.csv" {
		t.Errorf("artifact = %+v", a)
	}
	if artifacts[1].ContentType != "application/json" {
		t.Errorf("ContentType = %q", artifacts[1].ContentType)
	}

	rc, err := storage.Get(ctx, a.StoragePath)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "x\n1\n" {
		t.Errorf("published content = %q", data)
	}

	if err := svc.Remove(ctx, artifacts); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "runs", "run-1", "train.csv")); !os.IsNotExist(err) {
		t.Errorf("train.csv should be removed from storage, stat error = %v", err)
	}
}

func TestService_PublishMissingFile(t *testing.T) {
	storage, err := NewLocalStorage(t.TempDir(), "")
	if err != nil {
		t.Fatal(err)
	}
	svc := NewService(storage, StorageTypeLocal)

	_, err = svc.Publish(context.Background(), "r", []string{filepath.Join(t.TempDir(), "none.csv")})
	if !apperr.IsStage(err, apperr.StagePublish) {
		t.Errorf("error = %v, want publish stage error", err)
	}
}
