package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fyerfyer/integra-processual/api/handler"
	"github.com/fyerfyer/integra-processual/api/middleware"
	"github.com/fyerfyer/integra-processual/internal/database"
	"github.com/fyerfyer/integra-processual/internal/document"
	"github.com/fyerfyer/integra-processual/internal/patterns"
	"github.com/fyerfyer/integra-processual/internal/report"
	"github.com/fyerfyer/integra-processual/internal/repository"
	"github.com/fyerfyer/integra-processual/internal/services"
	"github.com/fyerfyer/integra-processual/pkg/storage"
	"github.com/gin-gonic/gin"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试环境配置
type testEnv struct {
	Router     *gin.Engine
	OutputDir  string
	StaticDir  string
	Repository repository.RunRepository
}

// setupTestEnv 创建测试环境，withHistory控制是否启用处理历史
func setupTestEnv(t *testing.T, withHistory bool) *testEnv {
	gin.SetMode(gin.TestMode)

	outputDir := t.TempDir()
	fileStorage, err := storage.NewLocalStorage(storage.LocalConfig{Path: outputDir})
	require.NoError(t, err)

	staticDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "index.html"), []byte("<html>integra</html>"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "app.js"), []byte("console.log('ok')"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(staticDir, "fonts"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(staticDir, "fonts", "inter.woff2"), []byte("font"), 0644))

	extractor, err := document.NewExtractor(document.EngineRows)
	require.NoError(t, err)

	set := patterns.NewPatternSet(map[string][]string{
		patterns.BreakPatterns: {"DESPACHO", "SENTENÇA"},
		patterns.NoisePatterns: {"ASSINADO DIGITALMENTE"},
	})

	var repo repository.RunRepository
	opts := []services.ProcessOption{}
	if withHistory {
		cfg := database.DefaultConfig()
		cfg.DSN = fmt.Sprintf("file:api_%d?mode=memory&cache=shared", time.Now().UnixNano())
		db, err := database.Open(cfg, nil)
		require.NoError(t, err)
		t.Cleanup(func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		})
		repo = repository.NewRunRepositoryWithDB(db)
		opts = append(opts, services.WithRunRepository(repo))
	}

	process := services.NewProcessService(extractor, set, fileStorage, opts...)
	router := SetupRouter(
		handler.NewProcessHandler(process, t.TempDir(), 1),
		handler.NewRunHandler(repo),
		staticDir,
	)

	return &testEnv{
		Router:     router,
		OutputDir:  outputDir,
		StaticDir:  staticDir,
		Repository: repo,
	}
}

// samplePDF 生成一个两页的测试PDF
func samplePDF(t *testing.T) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetFont("Arial", "", 12)
	doc.AddPage()
	doc.MultiCell(0, 10, "PETICAO INICIAL\nO autor requer a citacao do reu.", "", "", false)
	doc.AddPage()
	doc.MultiCell(0, 10, "Documento anexo numero 1", "", "", false)

	var buf bytes.Buffer
	require.NoError(t, doc.Output(&buf))
	return buf.Bytes()
}

// uploadRequest 构造multipart上传请求
func uploadRequest(t *testing.T, filename string, content []byte, fields map[string]string) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if filename != "" {
		part, err := writer.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// decodeResponse 解析通用响应
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp
}

func TestHealthCheck(t *testing.T) {
	env := setupTestEnv(t, false)

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decodeResponse(t, w)["status"])
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
}

func TestPreflight(t *testing.T) {
	env := setupTestEnv(t, false)

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/api/process", nil))

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFiles(t *testing.T) {
	env := setupTestEnv(t, false)

	tests := []struct {
		path        string
		contentType string
		body        string
	}{
		{"/app.js", "application/javascript; charset=utf-8", "console.log('ok')"},
		{"/fonts/inter.woff2", "font/woff2", "font"},
		{"/", "text/html; charset=utf-8", "<html>integra</html>"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.Equal(t, tt.body, w.Body.String())
			assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
		})
	}

	t.Run("missing file", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nao-existe.css", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("unknown route with POST", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/qualquer", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, float64(http.StatusNotFound), decodeResponse(t, w)["code"])
	})
}

func TestProcessPDF(t *testing.T) {
	env := setupTestEnv(t, true)

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, uploadRequest(t, "integra.pdf", samplePDF(t), nil))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decodeResponse(t, w)
	assert.Equal(t, float64(0), resp["code"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "integra.pdf", data["source_file"])
	assert.Equal(t, float64(2), data["pages"])
	assert.Equal(t, "rows", data["engine"])
	assert.NotEmpty(t, data["run_id"])
	assert.Contains(t, data["files"], "integra/"+report.FileJSON)
	assert.NotEmpty(t, data["summary"])

	_, err := os.Stat(filepath.Join(env.OutputDir, "integra", report.FileHTML))
	assert.NoError(t, err)

	runID := data["run_id"].(string)

	t.Run("list runs", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs?status=completed", nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, float64(1), data["total"])
		runs := data["runs"].([]interface{})
		require.Len(t, runs, 1)
		assert.Equal(t, runID, runs[0].(map[string]interface{})["id"])
	})

	t.Run("get run", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/"+runID, nil))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		data := decodeResponse(t, w)["data"].(map[string]interface{})
		assert.Equal(t, "completed", data["status"])
		assert.NotEmpty(t, data["summary"])
	})

	t.Run("unknown run", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs/nao-existe", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("invalid status filter", func(t *testing.T) {
		w := httptest.NewRecorder()
		env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs?status=bogus", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestProcessPDFCustomName(t *testing.T) {
	env := setupTestEnv(t, false)

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, uploadRequest(t, "integra.pdf", samplePDF(t), map[string]string{"name": "processo-123"}))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	data := decodeResponse(t, w)["data"].(map[string]interface{})
	assert.Nil(t, data["run_id"])

	_, err := os.Stat(filepath.Join(env.OutputDir, "processo-123", report.FileText))
	assert.NoError(t, err)
}

func TestProcessPDFErrors(t *testing.T) {
	env := setupTestEnv(t, false)

	tests := []struct {
		name     string
		filename string
		content  []byte
		fields   map[string]string
		status   int
	}{
		{"missing file", "", nil, nil, http.StatusBadRequest},
		{"not a pdf", "notas.txt", []byte("texto"), nil, http.StatusBadRequest},
		{"corrupt pdf", "quebrado.pdf", []byte("isto nao e um pdf"), nil, http.StatusUnprocessableEntity},
		{"too large", "grande.pdf", bytes.Repeat([]byte("a"), 2<<20), nil, http.StatusBadRequest},
		{"escaping name", "integra.pdf", samplePDF(t), map[string]string{"name": "../fora"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			env.Router.ServeHTTP(w, uploadRequest(t, tt.filename, tt.content, tt.fields))

			assert.Equal(t, tt.status, w.Code, w.Body.String())
			resp := decodeResponse(t, w)
			assert.Equal(t, float64(tt.status), resp["code"])
			assert.NotEmpty(t, resp["trace_id"])
		})
	}
}

func TestRunsDisabled(t *testing.T) {
	env := setupTestEnv(t, false)

	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestListenPortInUse(t *testing.T) {
	first, err := Listen("127.0.0.1:0")
	require.NoError(t, err)
	defer first.Close()

	_, err = Listen(first.Addr().String())
	assert.ErrorIs(t, err, ErrPortInUse)

	_, err = Listen("127.0.0.1:-1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrPortInUse)
}

func TestServeShutdown(t *testing.T) {
	env := setupTestEnv(t, false)

	ln, err := Listen("127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, ln, env.Router, middleware.GetLogger())
	}()

	resp, err := http.Get("http://" + ln.Addr().String() + "/api/health")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
