package services

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/fyerfyer/integra-processual/internal/report"
	"github.com/fyerfyer/integra-processual/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// BatchService 批量处理服务
// 按提交顺序逐个处理PDF，单个失败不影响其余文件
type BatchService struct {
	process   *ProcessService
	storage   storage.Storage // 批处理报告的存储
	reportKey string          // 报告文件名
	logger    *logrus.Logger
}

// BatchOption 批量处理配置选项
type BatchOption func(*BatchService)

// NewBatchService 创建批量处理服务
func NewBatchService(process *ProcessService, store storage.Storage, opts ...BatchOption) *BatchService {
	srv := &BatchService{
		process:   process,
		storage:   store,
		reportKey: report.FileBatchReport,
		logger:    logrus.New(),
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithBatchLogger 设置日志记录器
func WithBatchLogger(logger *logrus.Logger) BatchOption {
	return func(s *BatchService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithReportKey 设置批处理报告的存储键
func WithReportKey(key string) BatchOption {
	return func(s *BatchService) {
		if key != "" {
			s.reportKey = key
		}
	}
}

// Run 依次处理所有PDF并写出批处理报告
// 上下文取消时停止处理剩余文件，已完成的条目仍写入报告
func (s *BatchService) Run(ctx context.Context, paths []string) (*models.BatchReport, error) {
	rep := &models.BatchReport{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
		Results:   make([]models.BatchEntry, 0, len(paths)),
	}

	s.logger.WithFields(logrus.Fields{
		"batch_id": rep.ID,
		"total":    len(paths),
	}).Info("Batch processing started")

	var runErr error
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		s.logger.WithFields(logrus.Fields{
			"batch_id": rep.ID,
			"index":    i + 1,
			"total":    len(paths),
			"source":   filepath.Base(path),
		}).Info("Processing PDF")

		entry := s.processOne(ctx, path, rep.ID)
		rep.Results = append(rep.Results, entry)
	}

	rep.FinishedAt = time.Now()
	rep.Summarize()

	if err := s.writeReport(context.WithoutCancel(ctx), rep); err != nil {
		return rep, err
	}

	s.logger.WithFields(logrus.Fields{
		"batch_id":      rep.ID,
		"total":         rep.TotalPDFs,
		"successes":     rep.Successes,
		"failures":      rep.Failures,
		"documents":     rep.TotalDocuments,
		"lines_removed": rep.TotalLinesRemoved,
		"avg_documents": rep.AvgDocuments,
	}).Info("Batch processing finished")

	return rep, runErr
}

// processOne 处理单个PDF，错误记录在条目中
func (s *BatchService) processOne(ctx context.Context, path, batchID string) models.BatchEntry {
	start := time.Now()
	entry := models.BatchEntry{Source: filepath.Base(path)}

	outcome, err := s.process.ProcessAndSave(ctx, path, "", batchID)
	entry.Duration = formatDuration(time.Since(start))
	if err != nil {
		entry.Status = models.BatchStatusError
		entry.Error = err.Error()
		s.logger.WithError(err).WithField("source", entry.Source).Error("Failed to process PDF")
		return entry
	}

	meta := outcome.Result.Metadata
	entry.Status = models.BatchStatusOK
	entry.Pages = meta.TotalPages
	entry.Documents = meta.TotalDocuments
	entry.LinesRemoved = meta.TotalLinesRemoved
	entry.OutputDir = outcome.OutputDir
	entry.RunID = outcome.RunID
	return entry
}

func (s *BatchService) writeReport(ctx context.Context, rep *models.BatchReport) error {
	data, err := report.RenderBatchReport(rep)
	if err != nil {
		return err
	}
	info, err := s.storage.Put(ctx, s.reportKey, bytes.NewReader(data), "application/json; charset=utf-8")
	if err != nil {
		return fmt.Errorf("failed to save batch report: %w", err)
	}
	rep.ReportLocation = info.Location
	s.logger.WithField("file", info.Location).Info("Batch report saved")
	return nil
}

// formatDuration 以秒为单位，保留两位小数
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.2fs", d.Seconds())
}
