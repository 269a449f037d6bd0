// Package textproc 提供文本规范化和停用词处理
package textproc

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"resume-matcher/internal/types"
)

var (
	// 保留字母数字、空白以及技术术语中常见的符号 - + # . , ( ) /
	nonSemanticChars = regexp.MustCompile(`[^\w\s\-+#.,()/]`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
)

// FoldAccents 去掉变音符号，例如 "résumé" -> "resume"
func FoldAccents(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, text)
	if err != nil {
		return text
	}
	return folded
}

// Normalize 规范化文本：折叠变音符号，把非语义字符替换为空格，合并空白并去掉首尾空白。
// 结果只包含单个空格分隔的内容，因此 Normalize(Normalize(x)) == Normalize(x)。
func Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = FoldAccents(text)
	text = nonSemanticChars.ReplaceAllString(text, " ")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// CollapseSpace 只合并空白（含 Unicode 空白），保留标点，用于需要句子边界的场景
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NewDocument 由原始文本构造 Document
func NewDocument(raw string) types.Document {
	return types.Document{
		RawText:        raw,
		NormalizedText: Normalize(raw),
	}
}
