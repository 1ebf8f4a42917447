package transformation

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/ashwinyue/ml-pipeline/internal/dataset"
	"gonum.org/v1/gonum/stat"
)

// NumericFeature 数值列：中位数填充 + 标准化
type NumericFeature struct {
	Name   string  `json:"name"`
	Median float64 `json:"median"`
	Mean   float64 `json:"mean"`
	Scale  float64 `json:"scale"`
}

// CategoricalFeature 类别列：众数填充 + 独热编码 + 按标准差缩放（不中心化）
type CategoricalFeature struct {
	Name       string    `json:"name"`
	Mode       string    `json:"mode"`
	Categories []string  `json:"categories"`
	Scales     []float64 `json:"scales"`
}

// Preprocessor 在训练集上拟合得到的预处理参数
type Preprocessor struct {
	Target      string               `json:"target"`
	Numerical   []NumericFeature     `json:"numerical"`
	Categorical []CategoricalFeature `json:"categorical"`
}

// IsMissing 判断单元格是否缺失
func IsMissing(v string) bool {
	return v == "" || v == "NA" || v == "NaN"
}

// DetectColumns 将除目标列外的列划分为数值列与类别列
// 所有非缺失值都能解析为浮点数的列视为数值列
func DetectColumns(d *dataset.Dataset, target string) (numerical, categorical []string, err error) {
	for _, name := range d.Names() {
		if name == target {
			continue
		}
		values, err := d.Column(name)
		if err != nil {
			return nil, nil, err
		}
		if isNumeric(values) {
			numerical = append(numerical, name)
		} else {
			categorical = append(categorical, name)
		}
	}
	return numerical, categorical, nil
}

func isNumeric(values []string) bool {
	seen := false
	for _, v := range values {
		if IsMissing(v) {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return false
		}
		seen = true
	}
	return seen
}

// Fit 在数据集上拟合预处理参数
func Fit(d *dataset.Dataset, target string, numerical, categorical []string) (*Preprocessor, error) {
	if !d.HasColumn(target) {
		return nil, fmt.Errorf("target column %q not found", target)
	}

	p := &Preprocessor{Target: target}

	for _, name := range numerical {
		values, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		nums, err := parseFloats(name, values)
		if err != nil {
			return nil, err
		}
		present := presentValues(nums, values)
		if len(present) == 0 {
			return nil, fmt.Errorf("column %q has no values", name)
		}

		med := median(present)
		filled := make([]float64, len(nums))
		for i := range nums {
			if IsMissing(values[i]) {
				filled[i] = med
			} else {
				filled[i] = nums[i]
			}
		}
		mean, std := stat.PopMeanStdDev(filled, nil)
		p.Numerical = append(p.Numerical, NumericFeature{
			Name:   name,
			Median: med,
			Mean:   mean,
			Scale:  scaleOf(std),
		})
	}

	for _, name := range categorical {
		values, err := d.Column(name)
		if err != nil {
			return nil, err
		}
		m, ok := mode(values)
		if !ok {
			return nil, fmt.Errorf("column %q has no values", name)
		}

		filled := make([]string, len(values))
		set := make(map[string]bool)
		for i, v := range values {
			if IsMissing(v) {
				v = m
			}
			filled[i] = v
			set[v] = true
		}
		cats := make([]string, 0, len(set))
		for c := range set {
			cats = append(cats, c)
		}
		sort.Strings(cats)

		scales := make([]float64, len(cats))
		for j, c := range cats {
			col := make([]float64, len(filled))
			for i, v := range filled {
				if v == c {
					col[i] = 1
				}
			}
			_, std := stat.PopMeanStdDev(col, nil)
			scales[j] = scaleOf(std)
		}

		p.Categorical = append(p.Categorical, CategoricalFeature{
			Name:       name,
			Mode:       m,
			Categories: cats,
			Scales:     scales,
		})
	}

	return p, nil
}

// FeatureNames 输出特征名：数值列在前，独热列为 列名_类别
func (p *Preprocessor) FeatureNames() []string {
	var names []string
	for _, f := range p.Numerical {
		names = append(names, f.Name)
	}
	for _, f := range p.Categorical {
		for _, c := range f.Categories {
			names = append(names, f.Name+"_"+c)
		}
	}
	return names
}

// Transform 将数据集转换为特征矩阵，训练集中未出现的类别编码为全零
func (p *Preprocessor) Transform(d *dataset.Dataset) ([][]float64, error) {
	n := d.Nrow()
	out := make([][]float64, n)
	width := len(p.FeatureNames())
	for i := range out {
		out[i] = make([]float64, 0, width)
	}

	for _, f := range p.Numerical {
		values, err := d.Column(f.Name)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			x := f.Median
			if !IsMissing(v) {
				parsed, err := strconv.ParseFloat(v, 64)
				if err != nil {
					return nil, fmt.Errorf("column %q row %d: %w", f.Name, i, err)
				}
				x = parsed
			}
			out[i] = append(out[i], (x-f.Mean)/f.Scale)
		}
	}

	for _, f := range p.Categorical {
		values, err := d.Column(f.Name)
		if err != nil {
			return nil, err
		}
		index := make(map[string]int, len(f.Categories))
		for j, c := range f.Categories {
			index[c] = j
		}
		for i, v := range values {
			if IsMissing(v) {
				v = f.Mode
			}
			row := make([]float64, len(f.Categories))
			if j, ok := index[v]; ok {
				row[j] = 1 / f.Scales[j]
			}
			out[i] = append(out[i], row...)
		}
	}

	return out, nil
}

// TargetValues 读取目标列
func (p *Preprocessor) TargetValues(d *dataset.Dataset) ([]float64, error) {
	values, err := d.Column(p.Target)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(values))
	for i, v := range values {
		if IsMissing(v) {
			return nil, fmt.Errorf("target column %q row %d is missing", p.Target, i)
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("target column %q row %d: %w", p.Target, i, err)
		}
		out[i] = x
	}
	return out, nil
}

// Save 以 JSON 保存预处理参数
func (p *Preprocessor) Save(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preprocessor: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write preprocessor: %w", err)
	}
	return nil
}

// LoadPreprocessor 读取已保存的预处理参数
func LoadPreprocessor(path string) (*Preprocessor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read preprocessor: %w", err)
	}
	var p Preprocessor
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preprocessor: %w", err)
	}
	return &p, nil
}

func parseFloats(name string, values []string) ([]float64, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if IsMissing(v) {
			continue
		}
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("column %q row %d is not numeric: %w", name, i, err)
		}
		out[i] = x
	}
	return out, nil
}

func presentValues(nums []float64, raw []string) []float64 {
	out := make([]float64, 0, len(nums))
	for i, x := range nums {
		if !IsMissing(raw[i]) {
			out = append(out, x)
		}
	}
	return out
}

func median(x []float64) float64 {
	s := append([]float64(nil), x...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}

// mode 众数，并列时取字典序最小者
func mode(values []string) (string, bool) {
	counts := make(map[string]int)
	for _, v := range values {
		if !IsMissing(v) {
			counts[v]++
		}
	}
	best, bestN := "", 0
	for v, n := range counts {
		if n > bestN || (n == bestN && v < best) {
			best, bestN = v, n
		}
	}
	return best, bestN > 0
}

func scaleOf(std float64) float64 {
	if std == 0 {
		return 1
	}
	return std
}
