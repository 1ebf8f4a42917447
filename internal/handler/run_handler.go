package handler

import (
	"strconv"

	"github.com/ashwinyue/ml-pipeline/internal/service/pipeline"
	"github.com/gin-gonic/gin"
)

// RunHandler 流水线运行处理器
type RunHandler struct {
	svc *pipeline.Service
}

// NewRunHandler 创建流水线运行处理器
func NewRunHandler(svc *pipeline.Service) *RunHandler {
	return &RunHandler{svc: svc}
}

// CreateRun 同步执行一次流水线运行
func (h *RunHandler) CreateRun(c *gin.Context) {
	run, err := h.svc.Run(c.Request.Context())
	if err != nil {
		Error(c, err)
		return
	}

	Created(c, run)
}

// ListRuns 分页列出运行记录
func (h *RunHandler) ListRuns(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("size", "20"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	runs, total, err := h.svc.List(page, pageSize)
	if err != nil {
		Error(c, err)
		return
	}

	SuccessWithPagination(c, runs, total, page, pageSize)
}

// GetRun 获取运行记录及其产物
func (h *RunHandler) GetRun(c *gin.Context) {
	run, err := h.svc.Get(c.Param("id"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, run)
}

// ProfileArtifact 获取产物画像
func (h *RunHandler) ProfileArtifact(c *gin.Context) {
	prof, err := h.svc.ProfileArtifact(c.Request.Context(), c.Param("name"))
	if err != nil {
		Error(c, err)
		return
	}

	Success(c, prof)
}
