// Package profile 使用 DuckDB 对落盘的 CSV 产物做画像与一致性校验
package profile

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	_ "github.com/duckdb/duckdb-go/v2"
)

// 校验步骤
const (
	StepQuery  = "query"
	StepVerify = "verify"
)

// Column 列信息
type Column struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// ArtifactProfile 产物画像
type ArtifactProfile struct {
	Path     string   `json:"path"`
	RowCount int64    `json:"row_count"`
	Columns  []Column `json:"columns"`
}

// ColumnNames 列名
func (p *ArtifactProfile) ColumnNames() []string {
	names := make([]string, 0, len(p.Columns))
	for _, c := range p.Columns {
		names = append(names, c.Name)
	}
	return names
}

// Profiler 产物画像器，持有一个内存 DuckDB 连接
type Profiler struct {
	db *sql.DB
	mu sync.Mutex
}

// NewProfiler 创建画像器
func NewProfiler() (*Profiler, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}
	return &Profiler{db: db}, nil
}

// Close 关闭连接
func (p *Profiler) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

// Profile 读取 CSV 产物的行数与列类型
func (p *Profiler) Profile(ctx context.Context, path string) (*ArtifactProfile, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	source := csvSource(path)

	var count int64
	if err := p.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+source).Scan(&count); err != nil {
		return nil, apperr.Wrap(apperr.StageProfile, StepQuery, fmt.Errorf("failed to count rows of %s: %w", path, err))
	}

	rows, err := p.db.QueryContext(ctx, "DESCRIBE SELECT * FROM "+source)
	if err != nil {
		return nil, apperr.Wrap(apperr.StageProfile, StepQuery, fmt.Errorf("failed to describe %s: %w", path, err))
	}
	defer rows.Close()

	columns, err := scanDescribe(rows)
	if err != nil {
		return nil, apperr.Wrap(apperr.StageProfile, StepQuery, fmt.Errorf("failed to scan columns of %s: %w", path, err))
	}

	return &ArtifactProfile{Path: path, RowCount: count, Columns: columns}, nil
}

// Verify 校验摄取产物：原始数据行数等于源行数，训练+测试等于原始数据，表头一致
func (p *Profiler) Verify(ctx context.Context, res *ingestion.Result) ([]*ArtifactProfile, error) {
	raw, err := p.Profile(ctx, res.RawDataPath)
	if err != nil {
		return nil, err
	}
	train, err := p.Profile(ctx, res.TrainDataPath)
	if err != nil {
		return nil, err
	}
	test, err := p.Profile(ctx, res.TestDataPath)
	if err != nil {
		return nil, err
	}
	profiles := []*ArtifactProfile{raw, train, test}

	if raw.RowCount != int64(res.TotalRows) {
		return profiles, apperr.Wrapf(apperr.StageProfile, StepVerify,
			"raw data has %d rows, source had %d", raw.RowCount, res.TotalRows)
	}
	if train.RowCount+test.RowCount != raw.RowCount {
		return profiles, apperr.Wrapf(apperr.StageProfile, StepVerify,
			"train (%d) + test (%d) rows do not add up to %d", train.RowCount, test.RowCount, raw.RowCount)
	}
	if !reflect.DeepEqual(raw.ColumnNames(), res.Columns) {
		return profiles, apperr.Wrapf(apperr.StageProfile, StepVerify,
			"raw data columns %v differ from source columns %v", raw.ColumnNames(), res.Columns)
	}
	for _, prof := range []*ArtifactProfile{train, test} {
		if !reflect.DeepEqual(prof.ColumnNames(), res.Columns) {
			return profiles, apperr.Wrapf(apperr.StageProfile, StepVerify,
				"%s columns %v differ from source columns %v", prof.Path, prof.ColumnNames(), res.Columns)
		}
	}
	return profiles, nil
}

// csvSource 生成 read_csv_auto 表函数调用，路径中的单引号需转义
func csvSource(path string) string {
	return fmt.Sprintf("read_csv_auto('%s', header=true)", strings.ReplaceAll(path, "'", "''"))
}

// scanDescribe 读取 DESCRIBE 结果中的列名与类型
func scanDescribe(rows *sql.Rows) ([]Column, error) {
	names, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Column
	for rows.Next() {
		values := make([]interface{}, len(names))
		pointers := make([]interface{}, len(names))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		var col Column
		for i, name := range names {
			switch name {
			case "column_name":
				col.Name = asString(values[i])
			case "column_type":
				col.Type = asString(values[i])
			}
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func asString(v interface{}) string {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return fmt.Sprintf("%v", v)
}
