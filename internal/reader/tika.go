package reader

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"
)

// TikaClient 通过 Apache Tika Server 的 PUT /tika 接口提取纯文本
type TikaClient struct {
	serverURL   string
	client      *http.Client
	annotations bool
}

// TikaOption TikaClient 的配置选项
type TikaOption func(*TikaClient)

// WithTikaAnnotations 是否提取 PDF 链接注释文本，默认提取
func WithTikaAnnotations(extract bool) TikaOption {
	return func(t *TikaClient) {
		t.annotations = extract
	}
}

// WithTikaHTTPClient 替换默认的 HTTP 客户端
func WithTikaHTTPClient(c *http.Client) TikaOption {
	return func(t *TikaClient) {
		if c != nil {
			t.client = c
		}
	}
}

// NewTikaClient serverURL 形如 http://localhost:9998
func NewTikaClient(serverURL string, timeout time.Duration, options ...TikaOption) *TikaClient {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	t := &TikaClient{
		serverURL:   strings.TrimRight(serverURL, "/"),
		client:      &http.Client{Timeout: timeout},
		annotations: true,
	}
	for _, option := range options {
		option(t)
	}
	return t
}

// ExtractText 提交文档内容，返回 Tika 解析出的文本
func (t *TikaClient) ExtractText(ctx context.Context, name string, data []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, t.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", NewUnreadableError(name, "tika_request", err)
	}
	req.Header.Set("Content-Type", "application/pdf")
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("X-Tika-Resource-Name", filepath.Base(name))
	if !t.annotations {
		req.Header.Set("X-Tika-PDFExtractAnnotationText", "false")
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", NewUnreadableError(name, "tika_request", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", NewUnreadableError(name, "tika_parse", fmt.Errorf("tika 返回状态码 %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewUnreadableError(name, "tika_read", err)
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "", NewUnreadableError(name, "tika_parse", fmt.Errorf("解析结果为空"))
	}
	return text, nil
}
