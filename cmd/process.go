package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/fyerfyer/integra-processual/internal/services"
)

// bannerWidth 终端输出中分隔线的宽度
const bannerWidth = 60

// Run 执行process子命令
func (c *ProcessCmd) Run(deps *Dependencies) error {
	outcome, err := deps.Process.ProcessAndSave(deps.Ctx, c.Path, c.Name, "")
	if err != nil {
		if errors.Is(err, models.ErrInputNotFound) {
			fmt.Fprintf(deps.Stderr, "ERRO: PDF não encontrado: %s\n", c.Path)
		}
		return err
	}

	printOutcome(deps.Stdout, outcome)
	return nil
}

// printOutcome 打印单个PDF的处理摘要
func printOutcome(w io.Writer, o *services.Outcome) {
	meta := o.Result.Metadata
	banner := strings.Repeat("=", bannerWidth)

	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "INTEGRA PROCESSUAL: %s\n", meta.SourceFile)
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Total de páginas: %d\n", meta.TotalPages)
	fmt.Fprintf(w, "Documentos detectados: %d\n", meta.TotalDocuments)
	for _, d := range o.Result.Documents {
		fmt.Fprintf(w, "  - Doc %d: %s (%d linhas)\n", d.Number, d.Type, d.Lines)
	}
	fmt.Fprintf(w, "Linhas originais: %d\n", meta.TotalLines)
	fmt.Fprintf(w, "Linhas removidas: %d\n", meta.TotalLinesRemoved)
	fmt.Fprintf(w, "Taxa de remoção: %.1f%%\n", meta.RemovalRate)
	if js := meta.JudicialSystem; js != nil {
		fmt.Fprintf(w, "Sistema judicial: %s (%d%%)\n", js.Name, js.Confidence)
	}
	fmt.Fprintln(w)
	for _, f := range o.Files {
		fmt.Fprintf(w, "[OK] %s\n", f.Location)
	}
	fmt.Fprintf(w, "Tempo: %.2fs\n", o.Duration.Seconds())
}
