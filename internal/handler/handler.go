package handler

import (
	"github.com/ashwinyue/ml-pipeline/internal/service/pipeline"
)

// Handlers 处理器集合
type Handlers struct {
	Run *RunHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *pipeline.Service) *Handlers {
	return &Handlers{
		Run: NewRunHandler(svc),
	}
}
