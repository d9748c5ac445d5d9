package handler

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/fyerfyer/integra-processual/api/middleware"
	"github.com/fyerfyer/integra-processual/api/model"
	"github.com/fyerfyer/integra-processual/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ProcessHandler 处理PDF上传与处理请求
type ProcessHandler struct {
	process   *services.ProcessService // 处理服务
	uploadDir string                   // 上传文件的临时目录
	maxUpload int64                    // 上传大小上限（字节），0表示不限制
	logger    *logrus.Logger           // 日志记录器
}

// NewProcessHandler 创建PDF处理器
func NewProcessHandler(process *services.ProcessService, uploadDir string, maxUploadMB int) *ProcessHandler {
	return &ProcessHandler{
		process:   process,
		uploadDir: uploadDir,
		maxUpload: int64(maxUploadMB) << 20,
		logger:    middleware.GetLogger(),
	}
}

// ProcessPDF 上传PDF并同步处理
// POST /api/process
func (h *ProcessHandler) ProcessPDF(c *gin.Context) {
	var req model.ProcessRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.WithField("error", err.Error()).Warn("Invalid process request")
		middleware.HandleError(c, middleware.NewValidationError("invalid request", err.Error()))
		return
	}

	filename := filepath.Base(req.File.Filename)
	if !strings.EqualFold(filepath.Ext(filename), ".pdf") {
		middleware.HandleError(c, middleware.NewValidationError("only .pdf files are supported", filename))
		return
	}
	if h.maxUpload > 0 && req.File.Size > h.maxUpload {
		middleware.HandleError(c, middleware.NewValidationError(
			"file too large",
			fmt.Sprintf("%d bytes exceeds the %d byte limit", req.File.Size, h.maxUpload),
		))
		return
	}

	// 每次上传使用独立目录，保留原文件名，处理完成后删除
	workDir := filepath.Join(h.uploadDir, uuid.New().String())
	if err := os.MkdirAll(workDir, 0755); err != nil {
		middleware.HandleError(c, middleware.NewInternalError("failed to prepare upload directory", err.Error()))
		return
	}
	defer os.RemoveAll(workDir)

	dst := filepath.Join(workDir, filename)
	if err := c.SaveUploadedFile(req.File, dst); err != nil {
		h.logger.WithFields(logrus.Fields{
			"error":    err.Error(),
			"filename": filename,
		}).Error("Failed to save uploaded file")
		middleware.HandleError(c, middleware.NewInternalError("failed to save uploaded file", err.Error()))
		return
	}

	name := req.Name
	if name == "" {
		name = services.OutputName(filename)
	}

	h.logger.WithFields(logrus.Fields{
		"filename": filename,
		"size":     req.File.Size,
		"output":   name,
	}).Info("File uploaded, starting processing")

	outcome, err := h.process.ProcessAndSave(c.Request.Context(), dst, name, "")
	if err != nil {
		middleware.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.NewSuccessResponse(newProcessResponse(outcome)))
}

func newProcessResponse(o *services.Outcome) model.ProcessResponse {
	meta := o.Result.Metadata
	resp := model.ProcessResponse{
		RunID:          o.RunID,
		SourceFile:     meta.SourceFile,
		Engine:         meta.Engine,
		Pages:          meta.TotalPages,
		Documents:      meta.TotalDocuments,
		LinesRemoved:   meta.TotalLinesRemoved,
		RemovalRate:    meta.RemovalRate,
		JudicialSystem: meta.JudicialSystem,
		OutputDir:      o.OutputDir,
		Files:          make([]string, 0, len(o.Files)),
		Duration:       fmt.Sprintf("%.2fs", o.Duration.Seconds()),
		Summary:        make([]model.DocumentSummary, 0, len(o.Result.Documents)),
	}
	for _, f := range o.Files {
		resp.Files = append(resp.Files, f.Key)
	}
	for _, d := range o.Result.Documents {
		resp.Summary = append(resp.Summary, model.DocumentSummary{
			Number:       d.Number,
			Type:         d.Type,
			Lines:        d.Lines,
			RemovedLines: d.RemovedLines,
		})
	}
	return resp
}
