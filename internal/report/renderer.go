package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// Format 输出格式
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatHTML     Format = "html"
)

// 输出文件名
const (
	FileJSON        = "resultado_completo.json"
	FileMarkdown    = "integra_processada.md"
	FileText        = "integra_limpa.txt"
	FileHTML        = "integra_processada.html"
	FileBatchReport = "relatorio_batch.json"
)

// bannerWidth 纯文本输出中分隔线的宽度
const bannerWidth = 60

// DefaultFormats 默认输出的格式
var DefaultFormats = []Format{FormatJSON, FormatMarkdown, FormatText, FormatHTML}

// Output 一个渲染好的输出文件
type Output struct {
	Name        string
	ContentType string
	Data        []byte
}

// FileName 返回格式对应的文件名
func FileName(f Format) (string, error) {
	switch f {
	case FormatJSON:
		return FileJSON, nil
	case FormatMarkdown:
		return FileMarkdown, nil
	case FormatText:
		return FileText, nil
	case FormatHTML:
		return FileHTML, nil
	default:
		return "", fmt.Errorf("unsupported output format: %s", f)
	}
}

// ContentType 返回格式对应的MIME类型
func ContentType(f Format) string {
	switch f {
	case FormatJSON:
		return "application/json; charset=utf-8"
	case FormatMarkdown:
		return "text/markdown; charset=utf-8"
	case FormatHTML:
		return "text/html; charset=utf-8"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Render 按格式渲染处理结果
func Render(result *models.ProcessResult, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		return RenderJSON(result)
	case FormatMarkdown:
		return RenderMarkdown(result), nil
	case FormatText:
		return RenderText(result), nil
	case FormatHTML:
		return RenderHTML(result), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", f)
	}
}

// RenderAll 按给定格式依次渲染，formats为空时使用默认格式
func RenderAll(result *models.ProcessResult, formats []Format) ([]Output, error) {
	if len(formats) == 0 {
		formats = DefaultFormats
	}
	outputs := make([]Output, 0, len(formats))
	for _, f := range formats {
		name, err := FileName(f)
		if err != nil {
			return nil, err
		}
		data, err := Render(result, f)
		if err != nil {
			return nil, fmt.Errorf("failed to render %s: %w", f, err)
		}
		outputs = append(outputs, Output{Name: name, ContentType: ContentType(f), Data: data})
	}
	return outputs, nil
}

// RenderJSON 完整的结构化输出，不丢失任何字段
func RenderJSON(result *models.ProcessResult) ([]byte, error) {
	return marshalIndent(result)
}

// RenderBatchReport 批处理报告的JSON输出
func RenderBatchReport(report *models.BatchReport) ([]byte, error) {
	return marshalIndent(report)
}

// marshalIndent 缩进输出且不转义HTML字符
func marshalIndent(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("failed to encode json: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderMarkdown 带统计信息的Markdown报告
func RenderMarkdown(result *models.ProcessResult) []byte {
	var sb strings.Builder
	meta := result.Metadata

	sb.WriteString("# INTEGRA PROCESSUAL PROCESSADA\n\n")
	fmt.Fprintf(&sb, "**Arquivo:** %s\n", meta.SourceFile)
	fmt.Fprintf(&sb, "**Total de paginas:** %d\n", meta.TotalPages)
	fmt.Fprintf(&sb, "**Documentos detectados:** %d\n", meta.TotalDocuments)
	fmt.Fprintf(&sb, "**Linhas removidas:** %d\n", meta.TotalLinesRemoved)
	if meta.JudicialSystem != nil {
		fmt.Fprintf(&sb, "**Sistema judicial:** %s (%d%%)\n", meta.JudicialSystem.Name, meta.JudicialSystem.Confidence)
	}
	sb.WriteString("\n---\n\n")

	for _, doc := range result.Documents {
		fmt.Fprintf(&sb, "## DOCUMENTO %d: %s\n\n", doc.Number, doc.Type)
		sb.WriteString("**Estatisticas:**\n")
		fmt.Fprintf(&sb, "- Linhas originais: %d\n", doc.Lines)
		fmt.Fprintf(&sb, "- Linhas removidas: %d\n", doc.RemovedLines)
		fmt.Fprintf(&sb, "- Caracteres: %d\n\n", utf8.RuneCountInString(doc.CleanedText))
		sb.WriteString("**Conteudo Limpo:**\n\n")
		sb.WriteString(doc.CleanedText)
		sb.WriteString("\n\n---\n\n")
	}

	return []byte(sb.String())
}

// RenderText 纯文本输出，每个文书前加分隔横幅
func RenderText(result *models.ProcessResult) []byte {
	var sb strings.Builder
	banner := strings.Repeat("=", bannerWidth)

	for _, doc := range result.Documents {
		sb.WriteString(banner + "\n")
		fmt.Fprintf(&sb, "DOCUMENTO %d: %s\n", doc.Number, doc.Type)
		sb.WriteString(banner + "\n\n")
		sb.WriteString(doc.CleanedText)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String())
}

// RenderHTML 把Markdown报告转换为完整的HTML页面
func RenderHTML(result *models.ProcessResult) []byte {
	extensions := parser.CommonExtensions | parser.AutoHeadingIDs
	mdParser := parser.NewWithExtensions(extensions)
	doc := mdParser.Parse(RenderMarkdown(result))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: "Integra Processual - " + result.Metadata.SourceFile,
		Flags: html.CommonFlags | html.CompletePage | html.HrefTargetBlank,
	})
	return markdown.Render(doc, renderer)
}
