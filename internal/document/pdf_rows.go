package document

import (
	"context"
	"fmt"
	"strings"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/ledongthuc/pdf"
	"github.com/sirupsen/logrus"
)

// RowExtractor 基于ledongthuc/pdf的按行提取器
// 每页使用GetTextByRow按行取文本，行与行之间用换行连接
type RowExtractor struct {
	opts extractorOptions
}

// NewRowExtractor 创建按行提取器
func NewRowExtractor(opts ...ExtractorOption) *RowExtractor {
	return &RowExtractor{opts: newExtractorOptions(opts)}
}

// Name 返回引擎名称
func (e *RowExtractor) Name() string {
	return string(EngineRows)
}

// Fingerprint 返回引擎名和规范化选项
func (e *RowExtractor) Fingerprint() string {
	return e.opts.fingerprint(EngineRows)
}

// Extract 逐页提取文本
func (e *RowExtractor) Extract(ctx context.Context, path string) (result *Extraction, err error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}

	// ledongthuc/pdf 打开损坏的文件时可能panic，单页的panic在pageText中处理
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("%w: %s: %v", models.ErrExtractionFailed, path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	defer f.Close()

	total := reader.NumPage()
	e.opts.logger.WithFields(logrus.Fields{
		"source": path,
		"pages":  total,
		"engine": e.Name(),
	}).Info("Extracting text from PDF")

	pages := make([]Page, 0, total)
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := e.opts.finishPage(e.pageText(reader, path, i))
		pages = append(pages, Page{Index: i - 1, Text: text})
		e.opts.reportProgress(path, i, total)
	}

	return &Extraction{
		Source:    path,
		Pages:     pages,
		PageCount: total,
	}, nil
}

// pageText 提取单页文本，单页出错时记录日志并返回空字符串，不影响其他页
func (e *RowExtractor) pageText(reader *pdf.Reader, path string, pageNr int) string {
	text, err := recoverPage(func() string {
		return rowPageText(reader.Page(pageNr))
	})
	if err != nil {
		e.opts.logger.WithFields(logrus.Fields{
			"source": path,
			"page":   pageNr,
		}).WithError(err).Warn("Failed to extract page text, using empty page")
	}
	return text
}

// recoverPage 调用单页提取函数，panic时返回空字符串和错误
func recoverPage(fn func() string) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = ""
			err = fmt.Errorf("page extraction panicked: %v", r)
		}
	}()
	return fn(), nil
}

// rowPageText 按行提取单页文本，行提取失败或没有结果时退回纯文本提取
func rowPageText(page pdf.Page) string {
	if page.V.IsNull() {
		return ""
	}

	rows, err := page.GetTextByRow()
	if err == nil && len(rows) > 0 {
		return joinRows(rows)
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return text
}

// joinRows 行内片段按横坐标顺序拼接，行与行之间用换行连接
func joinRows(rows pdf.Rows) string {
	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		var sb strings.Builder
		for _, t := range row.Content {
			sb.WriteString(t.S)
		}
		lines = append(lines, sb.String())
	}
	return strings.Join(lines, "\n")
}
