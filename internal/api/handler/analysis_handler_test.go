package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/gofrs/uuid/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/analyzer"
	"resume-matcher/internal/api/handler"
	"resume-matcher/internal/config"
	"resume-matcher/internal/reader"
	"resume-matcher/internal/similarity/similaritytest"
	"resume-matcher/internal/types"
)

const (
	testResume = `Jane Doe
jane.doe@example.com | 555-123-4567

Experience
Senior Engineer, Acme Corp 2019 - present
• Built data pipelines in Python processing 2M events per day.

Skills
Python, PostgreSQL, Docker
`
	testJD = "Requirements: 3+ years experience with Python and PostgreSQL."
)

// fakeReader 按文件名返回预置文本
type fakeReader struct {
	broken map[string]bool
}

func (f fakeReader) ReadBytes(_ context.Context, name string, data []byte) (string, error) {
	if f.broken[name] {
		return "", reader.NewUnreadableError(name, "parse", errors.New("corrupt"))
	}
	return string(data), nil
}

func newTestEngine(t *testing.T) *server.Hertz {
	t.Helper()
	cfg := config.Default()
	cfg.Analysis.CurrentYear = 2025

	a, err := analyzer.New(similaritytest.Exact(), cfg.Analysis)
	require.NoError(t, err)

	h := handler.NewAnalysisHandler(cfg, a, fakeReader{broken: map[string]bool{"broken.pdf": true}})
	engine := server.New(server.WithHostPorts("127.0.0.1:0"))
	rg := engine.Group("/api/v1")
	rg.GET("/health", h.HandleHealth)
	rg.POST("/analyze", h.HandleAnalyze)
	rg.POST("/analyze/upload", h.HandleAnalyzeUpload)
	return engine
}

func postJSON(t *testing.T, engine *server.Hertz, payload any) *ut.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return ut.PerformRequest(engine.Engine, "POST", "/api/v1/analyze",
		&ut.Body{Body: bytes.NewReader(body), Len: len(body)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

// createMultipartForm 构造上传表单；jdFile 为空时 JD 以文本字段提交
func createMultipartForm(t *testing.T, resumeName, resumeBody, jdFile, jdBody string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("resume", resumeName)
	require.NoError(t, err)
	_, err = part.Write([]byte(resumeBody))
	require.NoError(t, err)

	if jdFile != "" {
		part, err = writer.CreateFormFile("job_description", jdFile)
		require.NoError(t, err)
		_, err = part.Write([]byte(jdBody))
		require.NoError(t, err)
	} else {
		require.NoError(t, writer.WriteField("job_description", jdBody))
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postUpload(engine *server.Hertz, body *bytes.Buffer, contentType string) *ut.ResponseRecorder {
	return ut.PerformRequest(engine.Engine, "POST", "/api/v1/analyze/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
}

func TestHandleHealth(t *testing.T) {
	engine := newTestEngine(t)
	resp := ut.PerformRequest(engine.Engine, "GET", "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "resume-matcher", body["service"])
	assert.NotEmpty(t, body["version"])
}

func TestHandleAnalyzeSuccess(t *testing.T) {
	engine := newTestEngine(t)
	resp := postJSON(t, engine, handler.AnalyzeRequest{ResumeText: testResume, JobDescription: testJD})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var report types.ScoreReport
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))

	id, err := uuid.FromString(report.AnalysisID)
	require.NoError(t, err, "analysis_id 应为合法的 UUID")
	assert.Equal(t, byte(7), id.Version())

	assert.Contains(t, report.Keywords.Matched, "python")
	assert.Contains(t, report.Keywords.Matched, "postgresql")
	assert.Equal(t, 3, report.Experience.RequiredYears)
	assert.InDelta(t, 100, report.ExperienceMatchScorePercent, 1e-9)
	assert.GreaterOrEqual(t, report.OverallMatchPercent, 0.0)
	assert.LessOrEqual(t, report.OverallMatchPercent, 100.0)
}

func TestHandleAnalyzeErrors(t *testing.T) {
	engine := newTestEngine(t)

	tests := []struct {
		name     string
		payload  any
		wantCode int
		wantKind string
	}{
		{name: "简历为空", payload: handler.AnalyzeRequest{ResumeText: "  ", JobDescription: testJD}, wantCode: http.StatusBadRequest, wantKind: "empty_document"},
		{name: "JD为空", payload: handler.AnalyzeRequest{ResumeText: testResume}, wantCode: http.StatusBadRequest, wantKind: "empty_document"},
		{name: "非法JSON", payload: json.RawMessage(`"not an object"`), wantCode: http.StatusBadRequest, wantKind: "invalid_request"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, engine, tt.payload)
			require.Equal(t, tt.wantCode, resp.Code)

			var body handler.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
			assert.Equal(t, tt.wantKind, body.Kind)
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHandleAnalyzeUpload(t *testing.T) {
	engine := newTestEngine(t)

	t.Run("JD为文本字段", func(t *testing.T) {
		body, ct := createMultipartForm(t, "cv.txt", testResume, "", testJD)
		resp := postUpload(engine, body, ct)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

		var report types.ScoreReport
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &report))
		assert.Contains(t, report.Keywords.Matched, "python")
	})

	t.Run("JD为文件", func(t *testing.T) {
		body, ct := createMultipartForm(t, "cv.md", testResume, "jd.txt", testJD)
		resp := postUpload(engine, body, ct)
		require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	})

	cases := []struct {
		name       string
		resumeName string
		wantCode   int
		wantKind   string
	}{
		{name: "不支持的格式", resumeName: "cv.rtf", wantCode: http.StatusUnsupportedMediaType, wantKind: "unsupported_format"},
		{name: "无法解析", resumeName: "broken.pdf", wantCode: http.StatusUnprocessableEntity, wantKind: "unreadable"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := createMultipartForm(t, tt.resumeName, testResume, "", testJD)
			resp := postUpload(engine, body, ct)
			require.Equal(t, tt.wantCode, resp.Code)

			var errBody handler.ErrorResponse
			require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &errBody))
			assert.Equal(t, tt.wantKind, errBody.Kind)
		})
	}
}

func TestHandleAnalyzeUploadMissingResume(t *testing.T) {
	engine := newTestEngine(t)
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("job_description", testJD))
	require.NoError(t, writer.Close())

	resp := postUpload(engine, body, writer.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		wantCode int
		wantKind string
	}{
		{analyzer.NewEmptyDocumentError("resume"), http.StatusBadRequest, "empty_document"},
		{reader.NewUnsupportedError("cv.rtf", ".rtf"), http.StatusUnsupportedMediaType, "unsupported_format"},
		{reader.NewUnreadableError("cv.pdf", "parse", errors.New("x")), http.StatusUnprocessableEntity, "unreadable"},
		{fmt.Errorf("wrapped: %w", context.DeadlineExceeded), http.StatusGatewayTimeout, "timeout"},
		{errors.New("boom"), http.StatusInternalServerError, "internal"},
	}
	for _, tt := range tests {
		code, kind := handler.StatusFor(tt.err)
		assert.Equal(t, tt.wantCode, code, tt.err.Error())
		assert.Equal(t, tt.wantKind, kind, tt.err.Error())
	}
}
