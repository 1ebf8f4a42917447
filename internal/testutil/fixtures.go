// Package testutil 提供测试辅助工具
package testutil

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// StudentHeader 学生成绩样例数据的表头
var StudentHeader = []string{
	"gender",
	"race_ethnicity",
	"parental_level_of_education",
	"lunch",
	"test_preparation_course",
	"math_score",
	"reading_score",
	"writing_score",
}

var (
	genders    = []string{"female", "male"}
	races      = []string{"group A", "group B", "group C", "group D", "group E"}
	educations = []string{"bachelor's degree", "some college", "master's degree", "associate's degree", "high school", "some high school"}
	lunches    = []string{"standard", "free/reduced"}
	courses    = []string{"none", "completed"}
)

// StudentRecords 生成 n 行确定性的学生成绩数据（含表头）
func StudentRecords(n int) [][]string {
	records := [][]string{StudentHeader}
	for i := 0; i < n; i++ {
		records = append(records, []string{
			genders[i%len(genders)],
			races[i%len(races)],
			educations[i%len(educations)],
			lunches[(i/2)%len(lunches)],
			courses[(i/3)%len(courses)],
			fmt.Sprint(40 + (i*7)%60),
			fmt.Sprint(45 + (i*11)%55),
			fmt.Sprint(42 + (i*13)%58),
		})
	}
	return records
}

// WriteCSV 将记录写入 dir/name 并返回路径
func WriteCSV(t *testing.T, dir, name string, records [][]string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create csv: %v", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		t.Fatalf("failed to write csv: %v", err)
	}
	return path
}

// WriteStudentCSV 在 dir 下写入 n 行样例数据
func WriteStudentCSV(t *testing.T, dir string, n int) string {
	t.Helper()
	return WriteCSV(t, dir, "stud.csv", StudentRecords(n))
}

// ReadCSV 读取 CSV 全部记录
func ReadCSV(t *testing.T, path string) [][]string {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open csv: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read csv: %v", err)
	}
	return records
}

// AssertHelper 提供断言相关的测试辅助
type AssertHelper struct {
	t *testing.T
}

// NewAssertHelper 创建断言辅助器
func NewAssertHelper(t *testing.T) *AssertHelper {
	return &AssertHelper{t: t}
}

// NoError 断言没有错误
func (h *AssertHelper) NoError(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("Unexpected error: %v %v", err, msgAndArgs)
	}
}

// Error 断言有错误
func (h *AssertHelper) Error(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err == nil {
		h.t.Fatalf("Expected error, got nil %v", msgAndArgs)
	}
}

// Equal 断言相等
func (h *AssertHelper) Equal(expected, actual interface{}, msgAndArgs ...interface{}) {
	h.t.Helper()
	if expected != actual {
		h.t.Fatalf("Expected %v, got %v %v", expected, actual, msgAndArgs)
	}
}

// True 断言为真
func (h *AssertHelper) True(condition bool, msgAndArgs ...interface{}) {
	h.t.Helper()
	if !condition {
		h.t.Fatalf("Expected true, got false %v", msgAndArgs)
	}
}

// FileExists 断言文件存在
func (h *AssertHelper) FileExists(path string) {
	h.t.Helper()
	if _, err := os.Stat(path); err != nil {
		h.t.Fatalf("Expected file %s to exist: %v", path, err)
	}
}

// NoFile 断言文件不存在
func (h *AssertHelper) NoFile(path string) {
	h.t.Helper()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		h.t.Fatalf("Expected %s not to exist, stat error = %v", path, err)
	}
}
