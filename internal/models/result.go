package models

import (
	"bytes"
	"encoding/json"
	"time"
)

// ProcessResult 单个PDF的处理结果
// 组装完成后不再修改，各种输出格式都由它投影得到
type ProcessResult struct {
	Metadata  Metadata          `json:"metadata"`
	Documents []DocumentSegment `json:"documents"`
}

// Metadata 处理结果元数据
type Metadata struct {
	SourceFile        string          `json:"source_file"`
	TotalPages        int             `json:"total_pages"`
	TotalDocuments    int             `json:"total_documents"`
	TotalLinesRemoved int             `json:"total_lines_removed"`
	TotalLines        int             `json:"total_lines"`
	RemovalRate       float64         `json:"removal_rate"`
	Engine            string          `json:"engine,omitempty"`
	JudicialSystem    *JudicialSystem `json:"judicial_system,omitempty"`
	ProcessedAt       time.Time       `json:"processed_at"`
}

// JudicialSystem 识别出的电子诉讼系统
type JudicialSystem struct {
	System     string `json:"system"`
	Name       string `json:"name"`
	Confidence int    `json:"confidence"`
}

// DocumentSegment 识别出的单个文书
type DocumentSegment struct {
	Number       int           `json:"number"`        // 序号，从1开始
	Type         string        `json:"type"`          // 文书类型
	Lines        int           `json:"lines"`         // 原始行数
	Chars        int           `json:"chars"`         // 原始字符数
	Text         string        `json:"text"`          // 原始文本
	CleanedText  string        `json:"cleaned_text"`  // 清洗后文本
	RemovedLines int           `json:"removed_lines"` // 移除行数
	StartLine    int           `json:"start_line"`    // 在全文中的起始行号
	RemovalRate  float64       `json:"removal_rate"`  // 移除比例（百分比）
	RemovedItems []RemovedItem `json:"removed_items,omitempty"`
}

// RemovedItem 被移除的行及原因
type RemovedItem struct {
	LineNumber int    `json:"line_number"`
	Text       string `json:"text"`
	Reason     string `json:"reason"`
}

// BatchStatus 批处理条目状态
type BatchStatus string

const (
	BatchStatusOK    BatchStatus = "OK"
	BatchStatusError BatchStatus = "ERRO"
)

// BatchEntry 批处理中单个PDF的结果
type BatchEntry struct {
	Source       string      `json:"arquivo"`
	Status       BatchStatus `json:"status"`
	Pages        int         `json:"paginas"`
	Documents    int         `json:"documentos"`
	LinesRemoved int         `json:"linhas_removidas"`
	Duration     string      `json:"tempo_processamento"`
	OutputDir    string      `json:"output_dir,omitempty"`
	Error        string      `json:"erro,omitempty"`
	RunID        string      `json:"run_id,omitempty"`
}

// batchEntryJSON BatchEntry的输出形式，统计字段只在成功条目上出现
type batchEntryJSON struct {
	Source       string      `json:"arquivo"`
	Status       BatchStatus `json:"status"`
	Pages        *int        `json:"paginas,omitempty"`
	Documents    *int        `json:"documentos,omitempty"`
	LinesRemoved *int        `json:"linhas_removidas,omitempty"`
	Duration     string      `json:"tempo_processamento"`
	OutputDir    string      `json:"output_dir,omitempty"`
	Error        string      `json:"erro,omitempty"`
	RunID        string      `json:"run_id,omitempty"`
}

// MarshalJSON 成功条目始终输出页数、文书数和移除行数（包括0），失败条目不输出
func (e BatchEntry) MarshalJSON() ([]byte, error) {
	out := batchEntryJSON{
		Source:    e.Source,
		Status:    e.Status,
		Duration:  e.Duration,
		OutputDir: e.OutputDir,
		Error:     e.Error,
		RunID:     e.RunID,
	}
	if e.Status == BatchStatusOK {
		pages, docs, removed := e.Pages, e.Documents, e.LinesRemoved
		out.Pages = &pages
		out.Documents = &docs
		out.LinesRemoved = &removed
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(out); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// BatchReport 批处理汇总报告
type BatchReport struct {
	ID                string       `json:"id"`
	TotalPDFs         int          `json:"total_pdfs"`
	Successes         int          `json:"sucessos"`
	Failures          int          `json:"erros"`
	TotalDocuments    int          `json:"total_documentos"`
	TotalLinesRemoved int          `json:"total_linhas_removidas"`
	AvgDocuments      float64      `json:"media_documentos_por_pdf"`
	StartedAt         time.Time    `json:"iniciado_em"`
	FinishedAt        time.Time    `json:"finalizado_em"`
	Results           []BatchEntry `json:"resultados"`
	ReportLocation    string       `json:"-"` // 报告写入的位置
}

// Summarize 根据条目重新计算汇总字段
func (r *BatchReport) Summarize() {
	r.TotalPDFs = len(r.Results)
	r.Successes, r.Failures = 0, 0
	r.TotalDocuments, r.TotalLinesRemoved = 0, 0
	for _, e := range r.Results {
		if e.Status == BatchStatusOK {
			r.Successes++
			r.TotalDocuments += e.Documents
			r.TotalLinesRemoved += e.LinesRemoved
		} else {
			r.Failures++
		}
	}
	r.AvgDocuments = 0
	if r.Successes > 0 {
		r.AvgDocuments = float64(r.TotalDocuments) / float64(r.Successes)
	}
}
