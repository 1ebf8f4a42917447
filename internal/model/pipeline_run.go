package model

import (
	"time"
)

// RunStatus 运行状态
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusSucceeded RunStatus = "succeeded"
	RunStatusFailed    RunStatus = "failed"
)

// PipelineRun 一次流水线运行记录
type PipelineRun struct {
	ID               string     `json:"id" gorm:"primaryKey"`
	Status           RunStatus  `json:"status" gorm:"index"`
	SourcePath       string     `json:"source_path"`
	RawDataPath      string     `json:"raw_data_path"`
	TrainDataPath    string     `json:"train_data_path"`
	TestDataPath     string     `json:"test_data_path"`
	PreprocessorPath string     `json:"preprocessor_path,omitempty"`
	TestSize         float64    `json:"test_size"`
	RandomState      int64      `json:"random_state"`
	TotalRows        int        `json:"total_rows"`
	TrainRows        int        `json:"train_rows"`
	TestRows         int        `json:"test_rows"`
	Columns          []string   `json:"columns" gorm:"serializer:json"`
	FeatureCount     int        `json:"feature_count"`
	ErrorStage       string     `json:"error_stage,omitempty"`
	ErrorStep        string     `json:"error_step,omitempty"`
	ErrorMessage     string     `json:"error_message,omitempty"`
	Artifacts        []Artifact `json:"artifacts,omitempty" gorm:"foreignKey:RunID"`
	StartedAt        time.Time  `json:"started_at"`
	FinishedAt       *time.Time `json:"finished_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName 指定表名
func (PipelineRun) TableName() string {
	return "pipeline_runs"
}
