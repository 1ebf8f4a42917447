// Package ingestion 提供数据摄取：读取源数据、备份原始数据、切分训练/测试集并落盘
package ingestion

import (
	"os"
	"path/filepath"

	"github.com/ashwinyue/ml-pipeline/internal/dataset"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
)

// 摄取步骤
const (
	StepReadSource = "read_source"
	StepCreateDir  = "create_dir"
	StepWriteRaw   = "write_raw"
	StepSplit      = "split"
	StepWriteTrain = "write_train"
	StepWriteTest  = "write_test"
)

// Result 摄取结果
type Result struct {
	RawDataPath   string   `json:"raw_data_path"`
	TrainDataPath string   `json:"train_data_path"`
	TestDataPath  string   `json:"test_data_path"`
	TotalRows     int      `json:"total_rows"`
	TrainRows     int      `json:"train_rows"`
	TestRows      int      `json:"test_rows"`
	Columns       []string `json:"columns"`
}

// DataIngestor 数据摄取器
type DataIngestor struct {
	cfg Config
	log logrus.FieldLogger
}

// NewDataIngestor 创建数据摄取器
func NewDataIngestor(cfg Config, log logrus.FieldLogger) *DataIngestor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &DataIngestor{cfg: cfg, log: log}
}

// Config 返回摄取配置
func (d *DataIngestor) Config() Config {
	return d.cfg
}

// Ingest 执行摄取，返回训练集与测试集路径
func (d *DataIngestor) Ingest() (trainPath, testPath string, err error) {
	res, err := d.Run()
	if err != nil {
		return "", "", err
	}
	return res.TrainDataPath, res.TestDataPath, nil
}

// Run 执行摄取并返回完整结果
// 任一步骤失败都会封装为 apperr.Error 返回，已写入的文件保留
func (d *DataIngestor) Run() (*Result, error) {
	d.log.Info("Entered the data ingestion component")

	df, err := dataset.Load(d.cfg.SourcePath())
	if err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepReadSource, err))
	}
	d.log.WithFields(logrus.Fields{
		"source":  d.cfg.SourcePath(),
		"rows":    df.Nrow(),
		"columns": df.Ncol(),
	}).Info("Raw dataset loaded")

	if err := os.MkdirAll(filepath.Dir(d.cfg.TrainDataPath()), 0755); err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepCreateDir, err))
	}

	if err := df.Save(d.cfg.RawDataPath()); err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepWriteRaw, err))
	}
	d.log.WithField("path", d.cfg.RawDataPath()).Info("Raw data saved")

	d.log.WithFields(logrus.Fields{
		"test_size":    d.cfg.TestSize(),
		"random_state": d.cfg.RandomState(),
	}).Info("Initiating train-test split")
	train, test, err := dataset.TrainTestSplit(df, d.cfg.TestSize(), d.cfg.RandomState())
	if err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepSplit, err))
	}

	if err := train.Save(d.cfg.TrainDataPath()); err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepWriteTrain, err))
	}
	if err := test.Save(d.cfg.TestDataPath()); err != nil {
		return nil, d.fail(apperr.Wrap(apperr.StageIngestion, StepWriteTest, err))
	}
	d.log.WithFields(logrus.Fields{
		"train_rows": train.Nrow(),
		"test_rows":  test.Nrow(),
	}).Info("Train and test datasets saved")

	d.log.Info("Data ingestion completed")
	return &Result{
		RawDataPath:   d.cfg.RawDataPath(),
		TrainDataPath: d.cfg.TrainDataPath(),
		TestDataPath:  d.cfg.TestDataPath(),
		TotalRows:     df.Nrow(),
		TrainRows:     train.Nrow(),
		TestRows:      test.Nrow(),
		Columns:       df.Names(),
	}, nil
}

func (d *DataIngestor) fail(err *apperr.Error) error {
	d.log.WithFields(logrus.Fields{
		"step":     err.Step,
		"location": err.Location(),
	}).Errorf("Exception occurred during data ingestion: %v", err.Err)
	return err
}
