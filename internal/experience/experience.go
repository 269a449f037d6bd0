// Package experience 抽取工作年限并计算年限匹配度
package experience

import (
	"regexp"
	"strconv"
	"strings"
)

// MinStartYear 早于该年份开始的时间段视为无效
const MinStartYear = 1980

var (
	explicitPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)\s*(?:of)?\s*(?:experience|exp)`),
		regexp.MustCompile(`experience[:\s]+(\d+)\+?\s*(?:years?|yrs?)`),
		regexp.MustCompile(`(\d+)\+?\s*(?:years?|yrs?)`),
	}
	dateRange = regexp.MustCompile(`(\d{4})\s*[-–—]\s*(?:(\d{4})|present|current)`)
)

// ExtractYears 返回文本中的工作年限：有明确的 "N years" 表述时取最大值，
// 否则累加所有有效的 "YYYY - YYYY|present" 时间段，都没有时为 0
func ExtractYears(text string, currentYear int) int {
	if years, ok := ExplicitYears(text); ok {
		return years
	}
	return DateRangeYears(text, currentYear)
}

// ExplicitYears 明确表述的年限中的最大值
func ExplicitYears(text string) (int, bool) {
	lower := strings.ToLower(text)
	best, found := 0, false
	for _, re := range explicitPatterns {
		for _, m := range re.FindAllStringSubmatch(lower, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			if !found || n > best {
				best, found = n, true
			}
		}
	}
	return best, found
}

// DateRangeYears 累加有效时间段的年数。
// 时间段需满足 MinStartYear <= start <= currentYear 且 start <= end <= currentYear，
// present/current 视为 currentYear。
func DateRangeYears(text string, currentYear int) int {
	total := 0
	for _, m := range dateRange.FindAllStringSubmatch(strings.ToLower(text), -1) {
		start, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		end := currentYear
		if m[2] != "" {
			if end, err = strconv.Atoi(m[2]); err != nil {
				continue
			}
		}
		if start < MinStartYear || start > currentYear || end < start || end > currentYear {
			continue
		}
		total += end - start
	}
	return total
}

// MatchScore 年限匹配度（0-100）。
// 无要求时为 100；要求不超过2年时，有经验即为 100、无经验为 60；其余按比例计算并封顶 100。
func MatchScore(requiredYears, candidateYears int) float64 {
	switch {
	case requiredYears <= 0:
		return 100
	case requiredYears <= 2 && candidateYears > 0:
		return 100
	case requiredYears <= 2:
		return 60
	}
	score := float64(candidateYears) / float64(requiredYears) * 100
	if score > 100 {
		return 100
	}
	if score < 0 {
		return 0
	}
	return score
}
