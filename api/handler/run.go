package handler

import (
	"net/http"

	"github.com/fyerfyer/integra-processual/api/middleware"
	"github.com/fyerfyer/integra-processual/api/model"
	"github.com/fyerfyer/integra-processual/internal/repository"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RunHandler 处理历史查询
// repo为nil时表示未启用数据库
type RunHandler struct {
	repo   repository.RunRepository
	logger *logrus.Logger
}

// NewRunHandler 创建处理历史处理器
func NewRunHandler(repo repository.RunRepository) *RunHandler {
	return &RunHandler{
		repo:   repo,
		logger: middleware.GetLogger(),
	}
}

// ListRuns 列出处理记录
// GET /api/runs
func (h *RunHandler) ListRuns(c *gin.Context) {
	if h.repo == nil {
		middleware.HandleError(c, middleware.NewUnavailableError("processing history is disabled"))
		return
	}

	var req model.RunListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid query parameters", err.Error()))
		return
	}

	filters := make(map[string]interface{})
	if req.Status != "" {
		filters["status"] = req.Status
	}
	if req.BatchID != "" {
		filters["batch_id"] = req.BatchID
	}
	if req.SourceFile != "" {
		filters["source_file"] = req.SourceFile
	}

	runs, total, err := h.repo.List(req.Offset(), req.GetPageSize(), filters)
	if err != nil {
		h.logger.WithError(err).Error("Failed to list processing runs")
		middleware.HandleError(c, err)
		return
	}

	resp := model.RunListResponse{
		Total:    total,
		Page:     req.GetPage(),
		PageSize: req.GetPageSize(),
		Runs:     make([]model.RunInfo, 0, len(runs)),
	}
	for _, run := range runs {
		resp.Runs = append(resp.Runs, model.NewRunInfo(run))
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(resp))
}

// GetRun 获取单条处理记录及其文书统计
// GET /api/runs/:id
func (h *RunHandler) GetRun(c *gin.Context) {
	if h.repo == nil {
		middleware.HandleError(c, middleware.NewUnavailableError("processing history is disabled"))
		return
	}

	var req model.RunRequest
	if err := c.ShouldBindUri(&req); err != nil {
		middleware.HandleError(c, middleware.NewValidationError("invalid run id", err.Error()))
		return
	}

	run, err := h.repo.GetByID(req.ID)
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(model.NewRunInfo(run)))
}
