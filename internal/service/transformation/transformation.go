// Package transformation 提供数据转换：在训练集上拟合预处理器，转换训练/测试集为数值矩阵
package transformation

import (
	"os"
	"path/filepath"

	"github.com/ashwinyue/ml-pipeline/internal/dataset"
	"github.com/ashwinyue/ml-pipeline/internal/pkg/apperr"
	"github.com/sirupsen/logrus"
)

// 转换步骤
const (
	StepReadTrain        = "read_train"
	StepReadTest         = "read_test"
	StepFit              = "fit"
	StepTransformTrain   = "transform_train"
	StepTransformTest    = "transform_test"
	StepSavePreprocessor = "save_preprocessor"
)

// 默认值
const (
	DefaultTargetColumn     = "math_score"
	DefaultPreprocessorFile = "preprocessor.json"
)

// Config 转换配置
// NumericalColumns 与 CategoricalColumns 均为空时自动识别
type Config struct {
	TargetColumn       string
	NumericalColumns   []string
	CategoricalColumns []string
	PreprocessorPath   string
}

// Result 转换结果，矩阵每行最后一列为目标值
type Result struct {
	Train            [][]float64
	Test             [][]float64
	FeatureNames     []string
	PreprocessorPath string
}

// Service 数据转换服务
type Service struct {
	cfg Config
	log logrus.FieldLogger
}

// NewService 创建数据转换服务
func NewService(cfg Config, log logrus.FieldLogger) *Service {
	if cfg.TargetColumn == "" {
		cfg.TargetColumn = DefaultTargetColumn
	}
	if cfg.PreprocessorPath == "" {
		cfg.PreprocessorPath = filepath.Join("artifacts", DefaultPreprocessorFile)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{cfg: cfg, log: log}
}

// Transform 读取训练/测试集，拟合并应用预处理器，保存预处理参数
func (s *Service) Transform(trainPath, testPath string) (*Result, error) {
	train, err := dataset.Load(trainPath)
	if err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepReadTrain, err))
	}
	test, err := dataset.Load(testPath)
	if err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepReadTest, err))
	}
	s.log.WithFields(logrus.Fields{
		"train_rows": train.Nrow(),
		"test_rows":  test.Nrow(),
	}).Info("Read train and test data")

	numerical, categorical := s.cfg.NumericalColumns, s.cfg.CategoricalColumns
	if len(numerical) == 0 && len(categorical) == 0 {
		numerical, categorical, err = DetectColumns(train, s.cfg.TargetColumn)
		if err != nil {
			return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepFit, err))
		}
	}
	s.log.WithFields(logrus.Fields{
		"numerical":   numerical,
		"categorical": categorical,
		"target":      s.cfg.TargetColumn,
	}).Info("Fitting preprocessing object")

	prep, err := Fit(train, s.cfg.TargetColumn, numerical, categorical)
	if err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepFit, err))
	}

	trainArr, err := assemble(prep, train)
	if err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepTransformTrain, err))
	}
	testArr, err := assemble(prep, test)
	if err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepTransformTest, err))
	}

	if err := os.MkdirAll(filepath.Dir(s.cfg.PreprocessorPath), 0755); err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepSavePreprocessor, err))
	}
	if err := prep.Save(s.cfg.PreprocessorPath); err != nil {
		return nil, s.fail(apperr.Wrap(apperr.StageTransformation, StepSavePreprocessor, err))
	}
	s.log.WithField("path", s.cfg.PreprocessorPath).Info("Saved preprocessing object")

	return &Result{
		Train:            trainArr,
		Test:             testArr,
		FeatureNames:     prep.FeatureNames(),
		PreprocessorPath: s.cfg.PreprocessorPath,
	}, nil
}

// assemble 生成特征矩阵并在末尾追加目标列
func assemble(p *Preprocessor, d *dataset.Dataset) ([][]float64, error) {
	features, err := p.Transform(d)
	if err != nil {
		return nil, err
	}
	target, err := p.TargetValues(d)
	if err != nil {
		return nil, err
	}
	for i := range features {
		features[i] = append(features[i], target[i])
	}
	return features, nil
}

func (s *Service) fail(err *apperr.Error) error {
	s.log.WithFields(logrus.Fields{
		"step":     err.Step,
		"location": err.Location(),
	}).Errorf("Exception occurred during data transformation: %v", err.Err)
	return err
}
