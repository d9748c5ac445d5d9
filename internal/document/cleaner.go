package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// DefaultHexMinLength 超过该长度的纯十六进制行视为哈希
	DefaultHexMinLength = 30
	// DefaultShortLineMaxLength 短于该长度的全大写无数字行视为页眉页脚
	DefaultShortLineMaxLength = 20
)

// RemovalReason 行被移除的原因
type RemovalReason string

const (
	ReasonNoisePattern RemovalReason = "noise_pattern"
	ReasonHexString    RemovalReason = "hex_string"
	ReasonAllCapsShort RemovalReason = "all_caps_short"
)

// RemovedLine 被移除的行
type RemovedLine struct {
	LineNumber int           `json:"line_number"` // 片段内行号，从1开始
	Text       string        `json:"text"`
	Reason     RemovalReason `json:"reason"`
}

// CleanResult 清洗结果
type CleanResult struct {
	Lines    []string      // 保留的行，顺序与输入一致
	Removed  int           // 移除的行数
	Items    []RemovedLine // 移除明细
	Original int           // 输入行数
}

// Text 以换行连接保留的行
func (r CleanResult) Text() string {
	return strings.Join(r.Lines, "\n")
}

// RemovalRate 移除比例（百分比）
func (r CleanResult) RemovalRate() float64 {
	if r.Original == 0 {
		return 0
	}
	return float64(r.Removed) / float64(r.Original) * 100
}

// NoiseFilter 噪声行过滤器
// 无状态，可并发使用
type NoiseFilter struct {
	Patterns           []string
	HexMinLength       int
	ShortLineMaxLength int
}

// NewNoiseFilter 创建使用默认阈值的过滤器
func NewNoiseFilter(patterns []string) *NoiseFilter {
	return &NoiseFilter{
		Patterns:           patterns,
		HexMinLength:       DefaultHexMinLength,
		ShortLineMaxLength: DefaultShortLineMaxLength,
	}
}

// Clean 过滤噪声行，保留行维持原样
func (f *NoiseFilter) Clean(lines []string) CleanResult {
	result := CleanResult{
		Lines:    make([]string, 0, len(lines)),
		Original: len(lines),
	}

	for i, line := range lines {
		reason, noisy := f.Check(line)
		if !noisy {
			result.Lines = append(result.Lines, line)
			continue
		}
		result.Removed++
		result.Items = append(result.Items, RemovedLine{
			LineNumber: i + 1,
			Text:       strings.TrimSpace(line),
			Reason:     reason,
		})
	}

	return result
}

// Check 判断单行是否为噪声，规则按顺序检查，命中第一条即返回
func (f *NoiseFilter) Check(line string) (RemovalReason, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return "", false
	}

	upper := strings.ToUpper(trimmed)
	for _, p := range f.Patterns {
		if strings.Contains(upper, p) {
			return ReasonNoisePattern, true
		}
	}

	n := utf8.RuneCountInString(trimmed)
	if n > f.HexMinLength && isHexLine(trimmed) {
		return ReasonHexString, true
	}

	if n < f.ShortLineMaxLength && trimmed == upper && !hasDigit(trimmed) {
		return ReasonAllCapsShort, true
	}

	return "", false
}

// isHexLine 除ASCII空格外全部为十六进制字符，制表符等其他空白不跳过
func isHexLine(s string) bool {
	for _, r := range s {
		if r == ' ' {
			continue
		}
		if !isHexRune(r) {
			return false
		}
	}
	return true
}

func isHexRune(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
