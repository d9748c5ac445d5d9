package model

import (
	"time"

	"github.com/fyerfyer/integra-processual/internal/models"
)

// Response 通用响应结构
type Response struct {
	Code    int         `json:"code"`               // 响应状态码，0表示成功
	Message string      `json:"message"`            // 响应消息
	Details string      `json:"details,omitempty"`  // 错误详情
	Data    interface{} `json:"data,omitempty"`     // 响应数据，可能为空
	TraceID string      `json:"trace_id,omitempty"` // 调用链追踪ID
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) *Response {
	return &Response{
		Code:    code,
		Message: message,
	}
}

// DocumentSummary 单个文书的统计信息
type DocumentSummary struct {
	Number       int    `json:"number"`
	Type         string `json:"type"`
	Lines        int    `json:"lines"`
	RemovedLines int    `json:"removed_lines"`
}

// ProcessResponse PDF处理响应
type ProcessResponse struct {
	RunID          string                 `json:"run_id,omitempty"`         // 处理记录ID，未启用历史时为空
	SourceFile     string                 `json:"source_file"`              // 源文件名
	Engine         string                 `json:"engine"`                   // 提取引擎
	Pages          int                    `json:"pages"`                    // 页数
	Documents      int                    `json:"documents"`                // 文书数
	LinesRemoved   int                    `json:"lines_removed"`            // 删除的行数
	RemovalRate    float64                `json:"removal_rate"`             // 删除比例（百分比）
	JudicialSystem *models.JudicialSystem `json:"judicial_system,omitempty"` // 识别出的电子诉讼系统
	OutputDir      string                 `json:"output_dir"`               // 输出目录
	Files          []string               `json:"files"`                    // 输出文件
	Duration       string                 `json:"duration"`                 // 处理耗时
	Summary        []DocumentSummary      `json:"summary"`                  // 各文书统计
}

// RunInfo 处理记录信息
type RunInfo struct {
	ID             string            `json:"id"`
	BatchID        string            `json:"batch_id,omitempty"`
	SourceFile     string            `json:"source_file"`
	Engine         string            `json:"engine"`
	Status         string            `json:"status"`
	Pages          int               `json:"pages"`
	Documents      int               `json:"documents"`
	LinesRemoved   int               `json:"lines_removed"`
	JudicialSystem string            `json:"judicial_system,omitempty"`
	OutputDir      string            `json:"output_dir,omitempty"`
	Error          string            `json:"error,omitempty"`
	DurationMs     int64             `json:"duration_ms"`
	StartedAt      time.Time         `json:"started_at"`
	FinishedAt     *time.Time        `json:"finished_at,omitempty"`
	Summary        []DocumentSummary `json:"summary,omitempty"`
}

// RunListResponse 处理记录列表响应
type RunListResponse struct {
	Total    int64     `json:"total"`     // 总数量
	Page     int       `json:"page"`      // 当前页码
	PageSize int       `json:"page_size"` // 每页大小
	Runs     []RunInfo `json:"runs"`      // 处理记录
}

// NewRunInfo 将处理记录转换为响应结构
func NewRunInfo(run *models.ProcessRun) RunInfo {
	info := RunInfo{
		ID:             run.ID,
		BatchID:        run.BatchID,
		SourceFile:     run.SourceFile,
		Engine:         run.Engine,
		Status:         string(run.Status),
		Pages:          run.TotalPages,
		Documents:      run.TotalDocuments,
		LinesRemoved:   run.TotalLinesRemoved,
		JudicialSystem: run.JudicialSystem,
		OutputDir:      run.OutputDir,
		Error:          run.Error,
		DurationMs:     run.DurationMs,
		StartedAt:      run.StartedAt,
		FinishedAt:     run.FinishedAt,
	}
	for _, d := range run.Documents {
		info.Summary = append(info.Summary, DocumentSummary{
			Number:       d.Number,
			Type:         d.Type,
			Lines:        d.Lines,
			RemovedLines: d.RemovedLines,
		})
	}
	return info
}
