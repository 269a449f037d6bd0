package tracing

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// MaxErrorRunes error.message 属性的最大长度
	MaxErrorRunes = 200
	// MaxSnippetRunes 文档片段属性的最大长度
	MaxSnippetRunes = 120
)

var (
	emailLike = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneLike = regexp.MustCompile(`\+?\d[\d\s().-]{7,}\d`)
	spaces    = regexp.MustCompile(`\s+`)
)

// RedactContacts 把邮箱和电话号码替换为占位符，简历文本进入追踪系统前必须经过这里
func RedactContacts(text string) string {
	text = emailLike.ReplaceAllString(text, "[email]")
	return phoneLike.ReplaceAllStringFunc(text, func(m string) string {
		// "2011 - 2015" 这类年份区间数字太少，不是电话
		if countDigits(m) < 9 {
			return m
		}
		return "[phone]"
	})
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// Snippet 折叠空白后取前 maxRunes 个字符，超出部分以 "..." 结尾
func Snippet(text string, maxRunes int) string {
	text = strings.TrimSpace(spaces.ReplaceAllString(text, " "))
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}

// DocumentAttributes 文档的长度、行数和脱敏后的开头片段
func DocumentAttributes(prefix, text string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(prefix+".chars", utf8.RuneCountInString(text)),
		attribute.Int(prefix+".lines", strings.Count(text, "\n")+1),
		attribute.String(prefix+".snippet", Snippet(RedactContacts(text), MaxSnippetRunes)),
	}
}
