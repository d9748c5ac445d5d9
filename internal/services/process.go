package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/fyerfyer/integra-processual/internal/document"
	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/fyerfyer/integra-processual/internal/patterns"
	"github.com/fyerfyer/integra-processual/internal/report"
	"github.com/fyerfyer/integra-processual/internal/repository"
	"github.com/fyerfyer/integra-processual/pkg/storage"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// ProcessService 单个PDF的处理服务
// 负责协调提取、分段、分类、清洗和输出
type ProcessService struct {
	extractor     document.Extractor
	breakPatterns []string
	segmenter     *document.Segmenter
	classifier    *document.Classifier
	cleaner       *document.NoiseFilter
	detector      *document.SystemDetector  // 为nil时不识别系统
	storage       storage.Storage           // 输出存储
	runs          repository.RunRepository  // 处理历史，可选
	formats       []report.Format           // 输出格式
	logger        *logrus.Logger            // 日志记录器
	now           func() time.Time
}

// ProcessOption 处理服务配置选项
type ProcessOption func(*ProcessService)

// Outcome 处理并保存后的结果
type Outcome struct {
	RunID     string
	Result    *models.ProcessResult
	Files     []storage.FileInfo
	OutputDir string
	Duration  time.Duration
}

// NewProcessService 创建处理服务
// 分段关键词与噪声关键词都取自模式集
func NewProcessService(extractor document.Extractor, set patterns.PatternSet, store storage.Storage, opts ...ProcessOption) *ProcessService {
	srv := &ProcessService{
		extractor:     extractor,
		breakPatterns: set.Get(patterns.BreakPatterns),
		segmenter:     document.NewSegmenter(document.DefaultMinLines),
		classifier:    document.NewClassifier(document.DefaultWindow),
		cleaner:       document.NewNoiseFilter(set.Get(patterns.NoisePatterns)),
		detector:      document.NewSystemDetector(),
		storage:       store,
		formats:       report.DefaultFormats,
		logger:        logrus.New(),
		now:           time.Now,
	}

	for _, opt := range opts {
		opt(srv)
	}

	return srv
}

// WithLogger 设置日志记录器
func WithLogger(logger *logrus.Logger) ProcessOption {
	return func(s *ProcessService) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMinLines 设置分段最小行数
func WithMinLines(n int) ProcessOption {
	return func(s *ProcessService) {
		s.segmenter = document.NewSegmenter(n)
	}
}

// WithClassifierWindow 设置分类窗口
func WithClassifierWindow(n int) ProcessOption {
	return func(s *ProcessService) {
		s.classifier = document.NewClassifier(n)
	}
}

// WithCleanerThresholds 设置清洗阈值
func WithCleanerThresholds(hexMin, shortMax int) ProcessOption {
	return func(s *ProcessService) {
		if hexMin > 0 {
			s.cleaner.HexMinLength = hexMin
		}
		if shortMax >= 0 {
			s.cleaner.ShortLineMaxLength = shortMax
		}
	}
}

// WithSystemDetection 设置是否识别电子诉讼系统
func WithSystemDetection(enabled bool) ProcessOption {
	return func(s *ProcessService) {
		if enabled {
			s.detector = document.NewSystemDetector()
		} else {
			s.detector = nil
		}
	}
}

// WithRunRepository 设置处理历史仓储
func WithRunRepository(repo repository.RunRepository) ProcessOption {
	return func(s *ProcessService) {
		s.runs = repo
	}
}

// WithFormats 设置输出格式
func WithFormats(formats []report.Format) ProcessOption {
	return func(s *ProcessService) {
		if len(formats) > 0 {
			s.formats = formats
		}
	}
}

// Runs 返回处理历史仓储，未启用时为nil
func (s *ProcessService) Runs() repository.RunRepository {
	return s.runs
}

// Process 提取并分析PDF
func (s *ProcessService) Process(ctx context.Context, path string) (*models.ProcessResult, error) {
	extraction, err := s.extractor.Extract(ctx, path)
	if err != nil {
		s.logger.WithError(err).WithField("source", path).Error("Failed to extract PDF text")
		return nil, err
	}

	result := s.Analyze(filepath.Base(path), extraction.FullText(), extraction.PageCount)
	result.Metadata.Engine = s.extractor.Name()
	return result, nil
}

// Analyze 对提取出的全文做分段、分类和清洗，组装处理结果
func (s *ProcessService) Analyze(source, text string, pages int) *models.ProcessResult {
	segments := s.segmenter.Segment(text, s.breakPatterns)

	docs := make([]models.DocumentSegment, 0, len(segments))
	removedTotal, linesTotal := 0, 0
	for i, seg := range segments {
		raw := seg.Text()
		cleaned := s.cleaner.Clean(seg.Lines)
		docType := s.classifier.Classify(raw)

		docs = append(docs, models.DocumentSegment{
			Number:       i + 1,
			Type:         string(docType),
			Lines:        seg.LineCount,
			Chars:        seg.CharCount,
			Text:         raw,
			CleanedText:  cleaned.Text(),
			RemovedLines: cleaned.Removed,
			StartLine:    seg.StartLine,
			RemovalRate:  roundRate(cleaned.RemovalRate()),
			RemovedItems: toRemovedItems(cleaned.Items),
		})
		removedTotal += cleaned.Removed
		linesTotal += seg.LineCount

		s.logger.WithFields(logrus.Fields{
			"number":  i + 1,
			"type":    docType,
			"lines":   seg.LineCount,
			"removed": cleaned.Removed,
		}).Debug("Document segment processed")
	}

	meta := models.Metadata{
		SourceFile:        source,
		TotalPages:        pages,
		TotalDocuments:    len(docs),
		TotalLinesRemoved: removedTotal,
		TotalLines:        linesTotal,
		ProcessedAt:       s.now(),
	}
	if linesTotal > 0 {
		meta.RemovalRate = roundRate(float64(removedTotal) / float64(linesTotal) * 100)
	}
	if s.detector != nil {
		det := s.detector.Detect(text)
		meta.JudicialSystem = &models.JudicialSystem{
			System:     det.System,
			Name:       det.Name,
			Confidence: det.Confidence,
		}
	}

	s.logger.WithFields(logrus.Fields{
		"source":        source,
		"pages":         pages,
		"documents":     len(docs),
		"lines_removed": removedTotal,
		"removal_rate":  meta.RemovalRate,
	}).Info("Documents detected")

	return &models.ProcessResult{Metadata: meta, Documents: docs}
}

// Save 把所有输出写入 name/ 目录
func (s *ProcessService) Save(ctx context.Context, result *models.ProcessResult, name string) ([]storage.FileInfo, string, error) {
	outputs, err := report.RenderAll(result, s.formats)
	if err != nil {
		return nil, "", err
	}

	dir, err := storage.CleanKey(name)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve output directory: %w", err)
	}

	files := make([]storage.FileInfo, 0, len(outputs))
	for _, out := range outputs {
		info, err := s.storage.Put(ctx, dir+"/"+out.Name, bytes.NewReader(out.Data), out.ContentType)
		if err != nil {
			s.logger.WithError(err).WithField("file", out.Name).Error("Failed to save output")
			return files, "", fmt.Errorf("failed to save %s: %w", out.Name, err)
		}
		s.logger.WithFields(logrus.Fields{
			"file":     info.Location,
			"size":     info.Size,
			"document": name,
		}).Info("Output saved")
		files = append(files, info)
	}

	return files, s.storage.Location(dir), nil
}

// ProcessAndSave 处理PDF并保存输出，启用处理历史时同时记录
// 输出目录名取自文件名（不含扩展名），batchID可为空
func (s *ProcessService) ProcessAndSave(ctx context.Context, path, name, batchID string) (*Outcome, error) {
	start := s.now()
	if name == "" {
		name = OutputName(path)
	}

	run := s.startRun(path, batchID, start)

	result, err := s.Process(ctx, path)
	if err != nil {
		s.finishRun(run, nil, "", err, time.Since(start))
		return nil, err
	}

	files, dir, err := s.Save(ctx, result, name)
	if err != nil {
		s.finishRun(run, result, "", err, time.Since(start))
		return nil, err
	}

	elapsed := time.Since(start)
	s.finishRun(run, result, dir, nil, elapsed)

	outcome := &Outcome{
		Result:    result,
		Files:     files,
		OutputDir: dir,
		Duration:  elapsed,
	}
	if run != nil {
		outcome.RunID = run.ID
	}
	return outcome, nil
}

// OutputName 根据源文件得到输出目录名
func OutputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// startRun 创建处理记录，仓储错误只记录日志
func (s *ProcessService) startRun(path, batchID string, start time.Time) *models.ProcessRun {
	if s.runs == nil {
		return nil
	}
	run := &models.ProcessRun{
		ID:         uuid.New().String(),
		BatchID:    batchID,
		SourceFile: filepath.Base(path),
		Engine:     s.extractor.Name(),
		Status:     models.RunStatusProcessing,
		StartedAt:  start,
	}
	if err := s.runs.Create(run); err != nil {
		s.logger.WithError(err).WithField("source", path).Warn("Failed to record processing run")
		return nil
	}
	return run
}

func (s *ProcessService) finishRun(run *models.ProcessRun, result *models.ProcessResult, dir string, procErr error, elapsed time.Duration) {
	if run == nil {
		return
	}

	finished := s.now()
	run.FinishedAt = &finished
	run.DurationMs = elapsed.Milliseconds()
	run.OutputDir = dir

	if procErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = procErr.Error()
	} else {
		run.Status = models.RunStatusCompleted
	}

	var docs []*models.RunDocument
	if result != nil {
		meta := result.Metadata
		run.TotalPages = meta.TotalPages
		run.TotalDocuments = meta.TotalDocuments
		run.TotalLinesRemoved = meta.TotalLinesRemoved
		if meta.JudicialSystem != nil {
			run.JudicialSystem = meta.JudicialSystem.System
		}
		if summary, err := json.Marshal(meta); err == nil {
			run.Summary = datatypes.JSON(summary)
		}
		for _, d := range result.Documents {
			docs = append(docs, &models.RunDocument{
				Number:       d.Number,
				Type:         d.Type,
				Lines:        d.Lines,
				Chars:        d.Chars,
				RemovedLines: d.RemovedLines,
			})
		}
	}

	if err := s.runs.Update(run); err != nil {
		s.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to update processing run")
		return
	}
	if err := s.runs.SaveDocuments(run.ID, docs); err != nil {
		s.logger.WithError(err).WithField("run_id", run.ID).Warn("Failed to save run documents")
	}
}

func toRemovedItems(items []document.RemovedLine) []models.RemovedItem {
	if len(items) == 0 {
		return nil
	}
	out := make([]models.RemovedItem, len(items))
	for i, it := range items {
		out[i] = models.RemovedItem{
			LineNumber: it.LineNumber,
			Text:       it.Text,
			Reason:     string(it.Reason),
		}
	}
	return out
}

// roundRate 保留两位小数
func roundRate(v float64) float64 {
	return math.Round(v*100) / 100
}
