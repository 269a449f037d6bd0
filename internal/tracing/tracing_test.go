package tracing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"resume-matcher/internal/config"
)

func TestInitProviderDisabled(t *testing.T) {
	shutdown, err := InitProvider(context.Background(), config.TracingConfig{}, "svc", "1.0")
	require.NoError(t, err)
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, 1.0, SampleRatio(0))
	assert.Equal(t, 1.0, SampleRatio(2))
	assert.Equal(t, 0.25, SampleRatio(0.25))
}

func attr(kvs []attribute.KeyValue, key string) attribute.Value {
	for _, kv := range kvs {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestRecordFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	_, span := provider.Tracer("test").Start(context.Background(), "op")

	RecordHTTPFailure(span, errors.New("cannot read jane@example.com"), 422, "unreadable")
	RecordFailure(span, nil, "ignored")
	span.End()

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	attrs := spans[0].Attributes()
	assert.Equal(t, "unreadable", attr(attrs, "error.kind").AsString())
	assert.Equal(t, "client_error", attr(attrs, "error.category").AsString())
	assert.Equal(t, int64(422), attr(attrs, "http.status_code").AsInt64())
	assert.Equal(t, "cannot read [email]", attr(attrs, "error.message").AsString())
}

func TestRedactContacts(t *testing.T) {
	in := "Jane Doe\njane.doe@example.com | +1 (555) 123-4567\nGo engineer 2011 - 2015"
	out := RedactContacts(in)
	assert.NotContains(t, out, "example.com")
	assert.NotContains(t, out, "123-4567")
	assert.Contains(t, out, "[email] | [phone]")
	assert.Contains(t, out, "2011 - 2015", "年份区间不应被当作电话")
}

func TestSnippet(t *testing.T) {
	assert.Equal(t, "short text", Snippet("  short\n\ttext ", 20))
	assert.Equal(t, "abcdefg...", Snippet("abcdefghijklmnop", 10))
	assert.Equal(t, "ab", Snippet("abcdef", 2))
	assert.Equal(t, "abcdef", Snippet("abcdef", 0))
}

func TestDocumentAttributes(t *testing.T) {
	attrs := DocumentAttributes("resume", "Jane\njane@x.io\n"+strings.Repeat("Go ", 100))
	assert.Equal(t, int64(3), attr(attrs, "resume.lines").AsInt64())
	snippet := attr(attrs, "resume.snippet").AsString()
	assert.True(t, strings.HasPrefix(snippet, "Jane [email] Go"))
	assert.Len(t, []rune(snippet), MaxSnippetRunes)
}
