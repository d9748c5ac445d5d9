package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fyerfyer/integra-processual/internal/models"
)

// Run 执行batch子命令
// 单个文件失败不会导致命令失败
func (c *BatchCmd) Run(deps *Dependencies) error {
	paths, err := expandPaths(c.Paths)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no PDF files found in %s", strings.Join(c.Paths, ", "))
	}

	fmt.Fprintf(deps.Stdout, "Total de PDFs para processar: %d\n", len(paths))

	rep, err := deps.Batch.Run(deps.Ctx, paths)
	if rep != nil {
		printBatchReport(deps.Stdout, rep)
		if rep.ReportLocation != "" {
			fmt.Fprintf(deps.Stdout, "\n[OK] Relatório salvo em: %s\n", rep.ReportLocation)
		}
	}
	return err
}

// expandPaths 展开目录中的PDF文件，目录内按文件名排序
// 不存在的路径原样保留，由批处理记录为失败条目
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", arg, err)
		}
		var found []string
		for _, e := range entries {
			if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				found = append(found, filepath.Join(arg, e.Name()))
			}
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}

// printBatchReport 打印批处理汇总
func printBatchReport(w io.Writer, rep *models.BatchReport) {
	banner := strings.Repeat("=", bannerWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "RELATÓRIO FINAL")
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "\nTotal processados: %d\n", rep.TotalPDFs)
	fmt.Fprintf(w, "Sucessos: %d\n", rep.Successes)
	fmt.Fprintf(w, "Erros: %d\n", rep.Failures)

	if rep.Successes > 0 {
		fmt.Fprintln(w, "\nEstatísticas:")
		fmt.Fprintf(w, "  Total de documentos detectados: %d\n", rep.TotalDocuments)
		fmt.Fprintf(w, "  Total de linhas removidas: %d\n", rep.TotalLinesRemoved)
		fmt.Fprintf(w, "  Média de documentos/PDF: %.1f\n", rep.AvgDocuments)
	}

	fmt.Fprintln(w, "\nDetalhes por arquivo:")
	fmt.Fprintln(w, strings.Repeat("-", bannerWidth))
	for _, e := range rep.Results {
		fmt.Fprintf(w, "\n%s\n", e.Source)
		fmt.Fprintf(w, "  Status: %s\n", e.Status)
		if e.Status == models.BatchStatusOK {
			fmt.Fprintf(w, "  Páginas: %d\n", e.Pages)
			fmt.Fprintf(w, "  Documentos: %d\n", e.Documents)
			fmt.Fprintf(w, "  Linhas removidas: %d\n", e.LinesRemoved)
			fmt.Fprintf(w, "  Tempo: %s\n", e.Duration)
			fmt.Fprintf(w, "  Output: %s\n", e.OutputDir)
		} else {
			fmt.Fprintf(w, "  Erro: %s\n", e.Error)
		}
	}
}
