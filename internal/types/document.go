package types

// Document 一份待比较的文本（简历或JD）
type Document struct {
	// RawText 原始文本，保留换行，用于章节划分、联系方式和版式检测
	RawText string
	// NormalizedText 规范化后的文本，用于术语抽取和语义比较
	NormalizedText string
}

// IsEmpty 规范化后没有剩下任何可比较的内容，例如只有空白、零宽字符或项目符号
func (d Document) IsEmpty() bool {
	return d.NormalizedText == ""
}

// TermSet 去重且保持插入顺序的术语集合
type TermSet struct {
	terms []string
	index map[string]struct{}
}

// NewTermSet 用给定术语构造集合，重复项只保留第一次出现
func NewTermSet(terms ...string) *TermSet {
	s := &TermSet{index: make(map[string]struct{}, len(terms))}
	for _, t := range terms {
		s.Add(t)
	}
	return s
}

// Add 添加术语，空串和已存在的术语被忽略；返回是否新增
func (s *TermSet) Add(term string) bool {
	if term == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[term]; ok {
		return false
	}
	s.index[term] = struct{}{}
	s.terms = append(s.terms, term)
	return true
}

// Contains 是否包含该术语
func (s *TermSet) Contains(term string) bool {
	_, ok := s.index[term]
	return ok
}

// Len 术语数量
func (s *TermSet) Len() int {
	return len(s.terms)
}

// Terms 按插入顺序返回术语的副本
func (s *TermSet) Terms() []string {
	out := make([]string, len(s.terms))
	copy(out, s.terms)
	return out
}
