package ingestion

import (
	"path/filepath"

	"github.com/ashwinyue/ml-pipeline/internal/dataset"
)

// 默认路径
const (
	DefaultSourcePath  = "notebook/data/stud.csv"
	DefaultArtifactDir = "artifacts"
	DefaultRawFile     = "data.csv"
	DefaultTrainFile   = "train.csv"
	DefaultTestFile    = "test.csv"
)

// Config 数据摄取配置，构造后不可修改
type Config struct {
	sourcePath    string
	rawDataPath   string
	trainDataPath string
	testDataPath  string
	testSize      float64
	randomState   int64
}

// Option 配置选项
type Option func(*Config)

// WithSourcePath 指定源数据文件
func WithSourcePath(path string) Option {
	return func(c *Config) {
		if path != "" {
			c.sourcePath = path
		}
	}
}

// WithTestSize 指定测试集比例
func WithTestSize(size float64) Option {
	return func(c *Config) {
		c.testSize = size
	}
}

// WithRandomState 指定随机种子
func WithRandomState(seed int64) Option {
	return func(c *Config) {
		c.randomState = seed
	}
}

// WithFileNames 指定三个产物的文件名（相对产物目录）
func WithFileNames(raw, train, test string) Option {
	return func(c *Config) {
		dir := filepath.Dir(c.trainDataPath)
		if raw != "" {
			c.rawDataPath = filepath.Join(dir, raw)
		}
		if train != "" {
			c.trainDataPath = filepath.Join(dir, train)
		}
		if test != "" {
			c.testDataPath = filepath.Join(dir, test)
		}
	}
}

// NewConfig 创建配置，产物位于 artifactDir 下
func NewConfig(artifactDir string, opts ...Option) Config {
	if artifactDir == "" {
		artifactDir = DefaultArtifactDir
	}
	c := Config{
		sourcePath:    DefaultSourcePath,
		rawDataPath:   filepath.Join(artifactDir, DefaultRawFile),
		trainDataPath: filepath.Join(artifactDir, DefaultTrainFile),
		testDataPath:  filepath.Join(artifactDir, DefaultTestFile),
		testSize:      dataset.DefaultTestSize,
		randomState:   dataset.DefaultRandomState,
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

func (c Config) SourcePath() string    { return c.sourcePath }
func (c Config) RawDataPath() string   { return c.rawDataPath }
func (c Config) TrainDataPath() string { return c.trainDataPath }
func (c Config) TestDataPath() string  { return c.testDataPath }
func (c Config) TestSize() float64     { return c.testSize }
func (c Config) RandomState() int64    { return c.randomState }

// ArtifactDir 产物目录
func (c Config) ArtifactDir() string { return filepath.Dir(c.trainDataPath) }
