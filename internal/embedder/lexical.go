package embedder

import (
	"context"
	"hash/fnv"
	"regexp"
	"strings"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/kljensen/snowball"

	"resume-matcher/internal/textproc"
)

// LexicalModel 离线词法向量的模型名
const LexicalModel = "lexical-stem-v1"

const defaultLexicalDimensions = 4096

var lexicalToken = regexp.MustCompile(`[a-z0-9][a-z0-9+#]*`)

// LexicalEmbedder 离线向量模型：词干化后的词频经特征哈希映射到固定维度。
// 两段文本的余弦相似度近似于去停用词后的词干重合程度。
type LexicalEmbedder struct {
	dimensions int
}

// NewLexicalEmbedder dimensions <= 0 时使用默认维度
func NewLexicalEmbedder(dimensions int) *LexicalEmbedder {
	if dimensions <= 0 {
		dimensions = defaultLexicalDimensions
	}
	return &LexicalEmbedder{dimensions: dimensions}
}

// GetDimensions 向量维度
func (e *LexicalEmbedder) GetDimensions() int {
	return e.dimensions
}

// EmbedStrings 实现 embedding.Embedder
func (e *LexicalEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = e.vectorize(text)
	}
	return out, nil
}

func (e *LexicalEmbedder) vectorize(text string) []float64 {
	vec := make([]float64, e.dimensions)
	tokens := lexicalToken.FindAllString(strings.ToLower(textproc.FoldAccents(text)), -1)
	for _, tok := range tokens {
		if textproc.IsStopWord(tok) {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(stem(tok)))
		vec[h.Sum32()%uint32(e.dimensions)]++
	}
	return vec
}

// stem 对纯字母词做英文词干化，含数字或符号的技术词（如 c++、k8s）保持原样
func stem(word string) string {
	if len(word) < 3 || strings.ContainsAny(word, "0123456789+#") {
		return word
	}
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		return word
	}
	return stemmed
}
