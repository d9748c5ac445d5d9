package document

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/sirupsen/logrus"
)

// PDFCPUExtractor 基于pdfcpu的提取器
// 读取每页内容流并解释文本操作符
type PDFCPUExtractor struct {
	opts extractorOptions
}

// NewPDFCPUExtractor 创建pdfcpu提取器
func NewPDFCPUExtractor(opts ...ExtractorOption) *PDFCPUExtractor {
	return &PDFCPUExtractor{opts: newExtractorOptions(opts)}
}

// Name 返回引擎名称
func (e *PDFCPUExtractor) Name() string {
	return string(EnginePDFCPU)
}

// Fingerprint 返回引擎名和规范化选项
func (e *PDFCPUExtractor) Fingerprint() string {
	return e.opts.fingerprint(EnginePDFCPU)
}

// Extract 逐页提取文本
func (e *PDFCPUExtractor) Extract(ctx context.Context, path string) (*Extraction, error) {
	if err := checkInput(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfCtx, err := api.ReadValidateAndOptimize(f, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}

	total := pdfCtx.PageCount
	e.opts.logger.WithFields(logrus.Fields{
		"source": path,
		"pages":  total,
		"engine": e.Name(),
	}).Info("Extracting text from PDF")

	pages := make([]Page, 0, total)
	for pageNr := 1; pageNr <= total; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text, perr := recoverPage(func() string { return pdfcpuPageText(pdfCtx, pageNr) })
		if perr != nil {
			e.opts.logger.WithFields(logrus.Fields{
				"source": path,
				"page":   pageNr,
			}).WithError(perr).Warn("Failed to extract page text, using empty page")
		}
		text = e.opts.finishPage(text)
		pages = append(pages, Page{Index: pageNr - 1, Text: text})
		e.opts.reportProgress(path, pageNr, total)
	}

	return &Extraction{
		Source:    path,
		Pages:     pages,
		PageCount: total,
	}, nil
}

// pdfcpuPageText 提取单页文本，失败时返回空字符串
func pdfcpuPageText(ctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(ctx, pageNr)
	if err != nil || r == nil {
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return decodeContentStream(data)
}
