package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config 应用配置
type Config struct {
	App            AppConfig            `mapstructure:"app"`
	Log            LogConfig            `mapstructure:"log"`
	Ingestion      IngestionConfig      `mapstructure:"ingestion"`
	Transformation TransformationConfig `mapstructure:"transformation"`
	Profile        ProfileConfig        `mapstructure:"profile"`
	Storage        StorageConfig        `mapstructure:"storage"`
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Redis          RedisConfig          `mapstructure:"redis"`
}

// AppConfig 应用配置
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	Version     string `mapstructure:"version"`
	Debug       bool   `mapstructure:"debug"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level            string `mapstructure:"level"`
	Format           string `mapstructure:"format"` // json, text
	DisableTimestamp bool   `mapstructure:"disable_timestamp"`
}

// IngestionConfig 数据摄取配置
type IngestionConfig struct {
	SourcePath  string  `mapstructure:"source_path"`
	ArtifactDir string  `mapstructure:"artifact_dir"`
	RawFile     string  `mapstructure:"raw_file"`
	TrainFile   string  `mapstructure:"train_file"`
	TestFile    string  `mapstructure:"test_file"`
	TestSize    float64 `mapstructure:"test_size"`
	RandomState int64   `mapstructure:"random_state"`
}

// TransformationConfig 数据转换配置
type TransformationConfig struct {
	Enabled            bool     `mapstructure:"enabled"`
	TargetColumn       string   `mapstructure:"target_column"`
	NumericalColumns   []string `mapstructure:"numerical_columns"`
	CategoricalColumns []string `mapstructure:"categorical_columns"`
	PreprocessorFile   string   `mapstructure:"preprocessor_file"`
}

// ProfileConfig 产物校验配置
type ProfileConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// StorageConfig 产物存储配置，Type 为空时不发布
type StorageConfig struct {
	Type  string             `mapstructure:"type"` // local, minio
	Local LocalStorageConfig `mapstructure:"local"`
	MinIO MinIOConfig        `mapstructure:"minio"`
}

// LocalStorageConfig 本地存储配置
type LocalStorageConfig struct {
	BasePath  string `mapstructure:"base_path"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// MinIOConfig MinIO 配置
type MinIOConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Mode         string `mapstructure:"mode"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// DatabaseConfig 数据库配置，未启用时运行记录保存在内存
type DatabaseConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	DBName       string `mapstructure:"dbname"`
	SSLMode      string `mapstructure:"sslmode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxLifetime  int    `mapstructure:"max_lifetime"`
}

// RedisConfig Redis配置，未启用时使用进程内锁
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	LockKey  string `mapstructure:"lock_key"`
	LockTTL  int    `mapstructure:"lock_ttl"` // 秒
}

// Load 加载配置，path 为空时只使用默认值和环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// 环境变量，如 ML_PIPELINE_INGESTION_TEST_SIZE
	v.SetEnvPrefix("ML_PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate 校验配置
func (c *Config) Validate() error {
	if c.Ingestion.TestSize <= 0 || c.Ingestion.TestSize >= 1 {
		return fmt.Errorf("invalid ingestion.test_size %v: must be in (0, 1)", c.Ingestion.TestSize)
	}
	if c.Ingestion.SourcePath == "" {
		return fmt.Errorf("ingestion.source_path is required")
	}
	switch c.Storage.Type {
	case "", "local", "minio":
	default:
		return fmt.Errorf("unsupported storage.type: %s", c.Storage.Type)
	}
	return nil
}

// GetDSN 获取数据库连接字符串
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// GetAddr 获取服务器地址
func (c *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// GetAddr 获取 Redis 地址
func (c *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "ml-pipeline")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.debug", true)

	// Log
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.disable_timestamp", false)

	// Ingestion
	v.SetDefault("ingestion.source_path", "notebook/data/stud.csv")
	v.SetDefault("ingestion.artifact_dir", "artifacts")
	v.SetDefault("ingestion.raw_file", "data.csv")
	v.SetDefault("ingestion.train_file", "train.csv")
	v.SetDefault("ingestion.test_file", "test.csv")
	v.SetDefault("ingestion.test_size", 0.2)
	v.SetDefault("ingestion.random_state", 42)

	// Transformation
	v.SetDefault("transformation.enabled", true)
	v.SetDefault("transformation.target_column", "math_score")
	v.SetDefault("transformation.numerical_columns", []string{})
	v.SetDefault("transformation.categorical_columns", []string{})
	v.SetDefault("transformation.preprocessor_file", "preprocessor.json")

	// Profile
	v.SetDefault("profile.enabled", true)

	// Storage
	v.SetDefault("storage.type", "")
	v.SetDefault("storage.local.base_path", "./data/artifacts")
	v.SetDefault("storage.local.url_prefix", "/artifacts")
	v.SetDefault("storage.minio.endpoint", "")
	v.SetDefault("storage.minio.access_key", "")
	v.SetDefault("storage.minio.secret_key", "")
	v.SetDefault("storage.minio.bucket", "ml-pipeline")
	v.SetDefault("storage.minio.use_ssl", false)

	// Server
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 300)

	// Database
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "ml_pipeline")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_lifetime", 300)

	// Redis
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.lock_key", "ml-pipeline:run-lock")
	v.SetDefault("redis.lock_ttl", 600)
}
