package reader

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resume-matcher/internal/config"
)

// createMockTikaServer 模拟 Tika Server 的 /tika 接口
func createMockTikaServer(t *testing.T, status int, text string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/tika", r.URL.Path)
		assert.Equal(t, "cv.pdf", r.Header.Get("X-Tika-Resource-Name"))
		assert.Equal(t, "text/plain", r.Header.Get("Accept"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "%PDF-1.4 fake", string(body))

		w.WriteHeader(status)
		_, _ = w.Write([]byte(text))
	}))
	t.Cleanup(server.Close)
	return server
}

func TestTikaClientExtractText(t *testing.T) {
	server := createMockTikaServer(t, http.StatusOK, "\nJane Doe\nGo engineer\n")
	client := NewTikaClient(server.URL+"/", time.Second)

	text, err := client.ExtractText(t.Context(), "/tmp/uploads/cv.pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe\nGo engineer", text)
}

func TestTikaClientErrors(t *testing.T) {
	t.Run("错误状态码", func(t *testing.T) {
		server := createMockTikaServer(t, http.StatusUnprocessableEntity, "")
		_, err := NewTikaClient(server.URL, time.Second).ExtractText(t.Context(), "cv.pdf", []byte("%PDF-1.4 fake"))
		assert.ErrorIs(t, err, ErrUnreadable)
	})

	t.Run("空文本", func(t *testing.T) {
		server := createMockTikaServer(t, http.StatusOK, "  \n")
		_, err := NewTikaClient(server.URL, time.Second).ExtractText(t.Context(), "cv.pdf", []byte("%PDF-1.4 fake"))
		assert.ErrorIs(t, err, ErrUnreadable)
	})

	t.Run("服务不可达", func(t *testing.T) {
		_, err := NewTikaClient("http://127.0.0.1:1", time.Second).ExtractText(t.Context(), "cv.pdf", nil)
		assert.ErrorIs(t, err, ErrUnreadable)
	})
}

func TestFileReaderUsesTikaForPDF(t *testing.T) {
	server := createMockTikaServer(t, http.StatusOK, "Skills: Go, Redis")
	r, err := NewFileReader(t.Context(), WithTika(NewTikaClient(server.URL, time.Second)))
	require.NoError(t, err)

	text, err := r.ReadBytes(t.Context(), "cv.pdf", []byte("%PDF-1.4 fake"))
	require.NoError(t, err)
	assert.Equal(t, "Skills: Go, Redis", text)
}

func TestReadBytesHTML(t *testing.T) {
	r := newReader(t)
	page := `<html><body><h1>Backend Engineer</h1><p>We need <b>5+ years</b> experience.</p>` +
		`<ul><li>Python</li><li>PostgreSQL &amp; Redis</li></ul><script>track()</script></body></html>`

	text, err := r.ReadBytes(t.Context(), "job.html", []byte(page))
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "5+ years")
	assert.Contains(t, text, "PostgreSQL & Redis")
	assert.NotContains(t, text, "<li>")
	assert.NotContains(t, text, "track()")
}

func TestNewFileReaderFromConfig(t *testing.T) {
	r, err := NewFileReaderFromConfig(t.Context(), config.ReaderConfig{PDFBackend: "eino", ParseTimeout: "5s"})
	require.NoError(t, err)
	assert.Nil(t, r.tika)
	assert.Equal(t, 5*time.Second, r.parseTimeout)

	r, err = NewFileReaderFromConfig(t.Context(), config.ReaderConfig{PDFBackend: "tika", TikaURL: "http://tika:9998"})
	require.NoError(t, err)
	require.NotNil(t, r.tika)
	assert.Equal(t, "http://tika:9998", r.tika.serverURL)

	_, err = NewFileReaderFromConfig(t.Context(), config.ReaderConfig{PDFBackend: "tika"})
	assert.Error(t, err)
	_, err = NewFileReaderFromConfig(t.Context(), config.ReaderConfig{PDFBackend: "ocr"})
	assert.Error(t, err)
}
