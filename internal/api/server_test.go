package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfeng-dev/thesisfmt/internal/config"
	"github.com/mfeng-dev/thesisfmt/internal/pipeline"
	"github.com/mfeng-dev/thesisfmt/internal/wordml"
)

func testServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	store, err := config.OpenStore(filepath.Join(t.TempDir(), "config.json"))
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		APIKey:         apiKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	orch := pipeline.NewOrchestrator(cfg, store, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	orch.Start(ctx)

	return NewServer(orch, store, log, cfg)
}

func testDocx(t *testing.T) []byte {
	t.Helper()
	data, err := wordml.BuildDocument([]wordml.NewParagraph{
		{
			Text: "第一章 引言",
			Format: wordml.Format{
				Run:  wordml.RunFormat{SizeHalfPt: 24, EastAsia: "宋体", ASCII: "Times New Roman"},
				Para: wordml.ParagraphFormat{LineTwips: 240},
			},
		},
		{
			Text: "正文内容。",
			Format: wordml.Format{
				Run:  wordml.RunFormat{SizeHalfPt: 21, EastAsia: "宋体", ASCII: "Times New Roman"},
				Para: wordml.ParagraphFormat{LineTwips: 360, FirstLineTwips: 420},
			},
		},
	})
	require.NoError(t, err)
	return data
}

func uploadRequest(t *testing.T, url, filename, template string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("template", template))
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	srv := testServer(t, "secret")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/templates", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthDisabledWithoutKey(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConvertLifecycle(t *testing.T) {
	srv := testServer(t, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/convert", "thesis.docx", "通用模板", testDocx(t)))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var accepted struct {
		JobID       string `json:"job_id"`
		PollURL     string `json:"poll_url"`
		DownloadURL string `json:"download_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &accepted))
	require.NotEmpty(t, accepted.JobID)

	// Poll until the job settles.
	deadline := time.After(5 * time.Second)
	var status struct {
		Status string `json:"status"`
	}
	for {
		rec = httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, accepted.PollURL, nil))
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
		if status.Status == "completed" || status.Status == "failed" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job stuck in %s", status.Status)
		case <-time.After(10 * time.Millisecond):
		}
	}
	require.Equal(t, "completed", status.Status)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, accepted.DownloadURL, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, docxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "thesis_formatted.docx")

	doc, err := wordml.Load(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 30, doc.Paragraphs()[0].MaxRunSize())
}

func TestConvertRejectsUnknownTemplate(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/convert", "thesis.docx", "不存在", testDocx(t)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertRejectsUnsupportedExtension(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/convert", "data.csv", "通用模板", []byte("a,b")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestConvertStatusNotFound(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/convert/NOPE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCheckEndpoint(t *testing.T) {
	srv := testServer(t, "")

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/check", "thesis.docx", "通用模板", testDocx(t)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var report struct {
		Count  int `json:"count"`
		Issues []struct {
			Level string   `json:"level"`
			Items []string `json:"issues"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	// The heading is declared at 12pt instead of 15pt.
	require.Equal(t, 1, report.Count)
	assert.Equal(t, "heading1", report.Issues[0].Level)
}

func TestCheckRequiresDocx(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, uploadRequest(t, "/api/check", "notes.md", "通用模板", []byte("# hi")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTemplateCRUD(t *testing.T) {
	srv := testServer(t, "")

	// List defaults.
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Templates []string `json:"templates"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Templates, 2)

	// Fetch one, tweak it, save under a new name.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates/通用模板", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var tpl config.Template
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tpl))
	tpl.Sizes["body"] = 24

	body, err := json.Marshal(tpl)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/templates/我的模板", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Invalid template rejected.
	tpl.ChineseFont = ""
	body, err = json.Marshal(tpl)
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/templates/坏模板", bytes.NewReader(body)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Delete.
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/templates/我的模板", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/templates/我的模板", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t, "")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats struct {
		QueueDepth  int                    `json:"queue_depth"`
		Conversions map[string]interface{} `json:"conversions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 0, stats.QueueDepth)
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"thesis.docx", "thesis.docx"},
		{"../../etc/passwd", "passwd"},
		{"dir/sub/file.docx", "file.docx"},
		{"", "unnamed"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
