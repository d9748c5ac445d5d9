package document

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/unicode/norm"
)

// Extractor PDF文本提取器接口
// 负责把PDF拆成按页排列的文本
type Extractor interface {
	// Extract 提取PDF每一页的文本
	Extract(ctx context.Context, path string) (*Extraction, error)

	// Name 返回引擎名称
	Name() string
}

// Fingerprinter 可选接口，返回引擎和影响输出的选项组合，用作缓存键的一部分
type Fingerprinter interface {
	Fingerprint() string
}

// Engine 提取引擎类型
type Engine string

const (
	// EngineRows 基于ledongthuc/pdf按行提取（默认）
	EngineRows Engine = "rows"
	// EnginePDFCPU 基于pdfcpu内容流提取
	EnginePDFCPU Engine = "pdfcpu"
)

// DefaultProgressEvery 每处理多少页输出一次进度
const DefaultProgressEvery = 10

// pageSeparator 页与页之间的分隔符
const pageSeparator = "\n\n"

// Page 单页提取结果
type Page struct {
	Index int    `json:"index"` // 页序号，从0开始
	Text  string `json:"text"`  // 页文本，提取失败时为空字符串
}

// Extraction 整个PDF的提取结果
type Extraction struct {
	Source    string `json:"source"`     // 源文件路径
	Pages     []Page `json:"pages"`      // 按顺序排列的页
	PageCount int    `json:"page_count"` // 总页数
}

// FullText 以双换行连接所有页文本，保留页内换行
func (e *Extraction) FullText() string {
	texts := make([]string, len(e.Pages))
	for i, p := range e.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, pageSeparator)
}

// extractorOptions 提取器公共配置
type extractorOptions struct {
	logger        *logrus.Logger
	progressEvery int
	normalize     bool
}

// ExtractorOption 提取器配置选项
type ExtractorOption func(*extractorOptions)

// WithExtractorLogger 设置日志记录器
func WithExtractorLogger(logger *logrus.Logger) ExtractorOption {
	return func(o *extractorOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithProgressEvery 设置进度输出间隔（页数），0表示不输出
func WithProgressEvery(n int) ExtractorOption {
	return func(o *extractorOptions) {
		if n >= 0 {
			o.progressEvery = n
		}
	}
}

// WithNormalize 设置是否对页文本做NFC规范化
func WithNormalize(enabled bool) ExtractorOption {
	return func(o *extractorOptions) {
		o.normalize = enabled
	}
}

func newExtractorOptions(opts []ExtractorOption) extractorOptions {
	o := extractorOptions{
		logger:        logrus.New(),
		progressEvery: DefaultProgressEvery,
		normalize:     true,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewExtractor 提取器工厂函数，根据引擎类型创建对应的提取器
func NewExtractor(engine Engine, opts ...ExtractorOption) (Extractor, error) {
	switch engine {
	case EngineRows, "":
		return NewRowExtractor(opts...), nil
	case EnginePDFCPU:
		return NewPDFCPUExtractor(opts...), nil
	default:
		return nil, fmt.Errorf("unsupported extractor engine: %s", engine)
	}
}

// checkInput 确认输入文件存在
func checkInput(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", models.ErrInputNotFound, path)
		}
		return fmt.Errorf("%w: %v", models.ErrExtractionFailed, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", models.ErrExtractionFailed, path)
	}
	return nil
}

// finishPage 规范化页文本
func (o extractorOptions) finishPage(text string) string {
	if o.normalize {
		return norm.NFC.String(text)
	}
	return text
}

// fingerprint 引擎名加上会改变输出文本的选项
func (o extractorOptions) fingerprint(engine Engine) string {
	if o.normalize {
		return string(engine) + "+nfc"
	}
	return string(engine)
}

// reportProgress 每progressEvery页记录一次进度
func (o extractorOptions) reportProgress(source string, done, total int) {
	if o.progressEvery <= 0 || done%o.progressEvery != 0 {
		return
	}
	o.logger.WithFields(logrus.Fields{
		"source":    source,
		"processed": done,
		"total":     total,
	}).Info("Extraction progress")
}
