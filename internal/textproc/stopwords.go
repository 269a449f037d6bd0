package textproc

import "strings"

var stopWords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(`
		the a an and or but in on at to for of with by from as is was are were been be
		have has had do does did will would could should may might must can
		this that these those i you he she it we they who which what where when why how
		all each every both few more most other some such than too very own same so
		about after also any because before between into through during only
		our their its his her your my me him them us up out if then`) {
		stopWords[w] = struct{}{}
	}
}

// IsStopWord 判断单个词（不区分大小写）是否为停用词
func IsStopWord(word string) bool {
	_, ok := stopWords[strings.ToLower(word)]
	return ok
}

// ContainsStopWord 多词短语中任意一个词是停用词即返回 true
func ContainsStopWord(term string) bool {
	for _, w := range strings.Fields(term) {
		if IsStopWord(w) {
			return true
		}
	}
	return false
}

// FilterStopWords 去掉含停用词的术语，保持原有顺序
func FilterStopWords(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, t := range terms {
		if !ContainsStopWord(t) {
			out = append(out, t)
		}
	}
	return out
}
