// Package dataset 提供表格数据集的加载、切分与落盘
// 底层使用 gota DataFrame，所有单元格按字符串读入，写回时保持原值
package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// ErrEmpty 数据集没有数据行
var ErrEmpty = errors.New("dataset has no rows")

// Dataset 内存中的表格数据集
type Dataset struct {
	df dataframe.DataFrame
}

// Load 从 CSV 文件加载数据集（首行为表头）
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Read 从 CSV 流加载数据集
func Read(r io.Reader) (*Dataset, error) {
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues([]string{}),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", df.Err)
	}
	return &Dataset{df: df}, nil
}

// Save 写入 CSV 文件（含表头，不含行索引），已存在则覆盖
func (d *Dataset) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := d.Write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// Write 以 CSV 写出（含表头）
func (d *Dataset) Write(w io.Writer) error {
	if err := d.df.WriteCSV(w, dataframe.WriteHeader(true)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// Nrow 行数
func (d *Dataset) Nrow() int { return d.df.Nrow() }

// Ncol 列数
func (d *Dataset) Ncol() int { return d.df.Ncol() }

// Names 列名
func (d *Dataset) Names() []string { return d.df.Names() }

// Records 返回数据行（不含表头）
func (d *Dataset) Records() [][]string {
	records := d.df.Records()
	if len(records) == 0 {
		return nil
	}
	return records[1:]
}

// Column 返回指定列的全部取值
func (d *Dataset) Column(name string) ([]string, error) {
	col := d.df.Col(name)
	if col.Err != nil {
		return nil, fmt.Errorf("column %q: %w", name, col.Err)
	}
	return col.Records(), nil
}

// HasColumn 是否包含指定列
func (d *Dataset) HasColumn(name string) bool {
	for _, n := range d.df.Names() {
		if n == name {
			return true
		}
	}
	return false
}

// Subset 按行号取子集，保持给定顺序
func (d *Dataset) Subset(rows []int) (*Dataset, error) {
	if len(rows) == 0 {
		return nil, ErrEmpty
	}
	sub := d.df.Subset(rows)
	if sub.Err != nil {
		return nil, fmt.Errorf("failed to subset rows: %w", sub.Err)
	}
	return &Dataset{df: sub}, nil
}
