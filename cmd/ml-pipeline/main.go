// Command ml-pipeline 执行一次批处理：摄取源数据、划分训练/测试集并完成数据转换
package main

import (
	"errors"
	"io/fs"
	"os"

	"github.com/ashwinyue/ml-pipeline/internal/config"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/logger"
	"github.com/ashwinyue/ml-pipeline/internal/service"
	"github.com/ashwinyue/ml-pipeline/internal/service/ingestion"
	"github.com/ashwinyue/ml-pipeline/internal/service/transformation"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Format, cfg.Log.DisableTimestamp)

	ingestor := ingestion.NewDataIngestor(service.IngestionConfig(cfg), log)
	trainPath, testPath, err := ingestor.Ingest()
	if err != nil {
		log.WithError(err).WithField("step", apperr.StepOf(err)).Fatal("Data ingestion failed")
	}

	if !cfg.Transformation.Enabled {
		log.WithFields(logrus.Fields{
			"train": trainPath,
			"test":  testPath,
		}).Info("Transformation disabled, done")
		return
	}

	res, err := transformation.NewService(service.TransformationConfig(cfg), log).Transform(trainPath, testPath)
	if err != nil {
		log.WithError(err).WithField("step", apperr.StepOf(err)).Fatal("Data transformation failed")
	}

	// 回读已保存的预处理参数
	prep, err := transformation.LoadPreprocessor(res.PreprocessorPath)
	if err != nil {
		log.WithError(err).Fatal("Saved preprocessor is unreadable")
	}

	log.WithFields(logrus.Fields{
		"train_rows":   len(res.Train),
		"test_rows":    len(res.Test),
		"features":     len(res.FeatureNames),
		"target":       prep.Target,
		"numerical":    len(prep.Numerical),
		"categorical":  len(prep.Categorical),
		"preprocessor": res.PreprocessorPath,
	}).Info("Pipeline completed")
}

// configPath 返回配置文件路径，默认路径不存在时只使用默认值
func configPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	const defaultPath = "./configs/config.yaml"
	if _, err := os.Stat(defaultPath); errors.Is(err, fs.ErrNotExist) {
		return ""
	}
	return defaultPath
}
