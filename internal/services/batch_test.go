package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/fyerfyer/integra-processual/internal/models"
	"github.com/fyerfyer/integra-processual/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchRun(t *testing.T) {
	store, base := newTestStorage(t)
	repo := setupRunRepository(t)
	ex := &fakeExtractor{texts: map[string]string{
		"/in/a.pdf": sampleIntegra(),
		"/in/b.pdf": "SENTENÇA\nJulgo procedente o pedido.",
	}}
	process := NewProcessService(ex, testPatterns(), store, WithRunRepository(repo))
	batch := NewBatchService(process, store, WithBatchLogger(newTestLogger()))

	rep, err := batch.Run(context.Background(), []string{"/in/a.pdf", "/in/missing.pdf", "/in/b.pdf"})
	require.NoError(t, err)
	require.NotEmpty(t, rep.ID)

	assert.Equal(t, 3, rep.TotalPDFs)
	assert.Equal(t, 2, rep.Successes)
	assert.Equal(t, 1, rep.Failures)
	assert.Equal(t, 3, rep.TotalDocuments)
	assert.InDelta(t, 1.5, rep.AvgDocuments, 0.001)

	// 条目保持提交顺序
	require.Len(t, rep.Results, 3)
	assert.Equal(t, "a.pdf", rep.Results[0].Source)
	assert.Equal(t, models.BatchStatusOK, rep.Results[0].Status)
	assert.Equal(t, 2, rep.Results[0].Documents)
	assert.Equal(t, 3, rep.Results[0].Pages)
	assert.NotEmpty(t, rep.Results[0].RunID)

	assert.Equal(t, "missing.pdf", rep.Results[1].Source)
	assert.Equal(t, models.BatchStatusError, rep.Results[1].Status)
	assert.Contains(t, rep.Results[1].Error, models.ErrInputNotFound.Error())

	assert.Equal(t, "b.pdf", rep.Results[2].Source)
	assert.Equal(t, models.BatchStatusOK, rep.Results[2].Status)

	for _, e := range rep.Results {
		assert.Regexp(t, `^\d+\.\d{2}s$`, e.Duration)
	}

	data, err := os.ReadFile(filepath.Join(base, report.FileBatchReport))
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, float64(3), raw["total_pdfs"])
	assert.Equal(t, float64(1), raw["erros"])

	_, err = os.Stat(filepath.Join(base, "a", report.FileJSON))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(base, "b", report.FileText))
	assert.NoError(t, err)

	runs, total, err := repo.List(0, 10, map[string]interface{}{"batch_id": rep.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, runs, 3)
}

func TestBatchReportZeroCounts(t *testing.T) {
	store, base := newTestStorage(t)
	ex := &fakeExtractor{texts: map[string]string{
		"/in/limpo.pdf": "Julgo procedente o pedido formulado na inicial.",
	}}
	batch := NewBatchService(NewProcessService(ex, testPatterns(), store), store)

	rep, err := batch.Run(context.Background(), []string{"/in/limpo.pdf", "/in/missing.pdf"})
	require.NoError(t, err)
	require.Len(t, rep.Results, 2)
	assert.Equal(t, models.BatchStatusOK, rep.Results[0].Status)
	assert.Equal(t, 0, rep.Results[0].LinesRemoved)
	assert.Equal(t, filepath.Join(base, report.FileBatchReport), rep.ReportLocation)

	data, err := os.ReadFile(filepath.Join(base, report.FileBatchReport))
	require.NoError(t, err)
	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &raw))
	results := raw["resultados"].([]interface{})

	// 成功条目即使没有移除行也输出统计字段
	ok := results[0].(map[string]interface{})
	assert.Equal(t, float64(0), ok["linhas_removidas"])
	assert.Equal(t, float64(1), ok["documentos"])
	assert.Equal(t, float64(3), ok["paginas"])

	failed := results[1].(map[string]interface{})
	assert.Equal(t, "ERRO", failed["status"])
	assert.NotContains(t, failed, "linhas_removidas")
	assert.NotContains(t, failed, "paginas")
	assert.NotEmpty(t, failed["erro"])
}

func TestBatchRunCanceled(t *testing.T) {
	store, base := newTestStorage(t)
	ex := &fakeExtractor{texts: map[string]string{"/in/a.pdf": sampleIntegra()}}
	batch := NewBatchService(NewProcessService(ex, testPatterns(), store), store, WithReportKey("parcial.json"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rep, err := batch.Run(ctx, []string{"/in/a.pdf"})
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, rep)
	assert.Empty(t, rep.Results)
	assert.Equal(t, 0, ex.calls)

	_, err = os.Stat(filepath.Join(base, "parcial.json"))
	assert.NoError(t, err)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.00s", formatDuration(0))
	assert.Equal(t, "1.50s", formatDuration(1500_000_000))
}
