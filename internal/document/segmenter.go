package document

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLines 分段前当前片段至少需要超过的行数
const DefaultMinLines = 20

// RawSegment 分段器输出的原始片段
type RawSegment struct {
	Lines     []string // 片段包含的行，保留空行与原始空白
	LineCount int      // 行数
	CharCount int      // 以换行连接后的字符数（按rune计）
	StartLine int      // 片段第一行在全文中的行号，从0开始
}

// Text 以换行连接片段的所有行
func (s RawSegment) Text() string {
	return strings.Join(s.Lines, "\n")
}

// Segmenter 文档分段器
// 遇到分段标记行且当前片段足够长时开始新片段
type Segmenter struct {
	MinLines int
}

// NewSegmenter 创建分段器，minLines<0时使用默认值
func NewSegmenter(minLines int) *Segmenter {
	if minLines < 0 {
		minLines = DefaultMinLines
	}
	return &Segmenter{MinLines: minLines}
}

// Segment 把全文切分为有序片段
// 片段按顺序拼接后可还原全文，没有分段标记时只返回一个片段
func (s *Segmenter) Segment(fullText string, breakPatterns []string) []RawSegment {
	lines := strings.Split(fullText, "\n")

	var segments []RawSegment
	current := make([]string, 0, 64)
	start := 0

	for i, line := range lines {
		if len(current) > s.MinLines && isBreakLine(line, breakPatterns) {
			segments = append(segments, newRawSegment(current, start))
			current = make([]string, 0, 64)
			start = i
		}
		current = append(current, line)
	}

	return append(segments, newRawSegment(current, start))
}

// isBreakLine 判断行是否包含任一分段标记
func isBreakLine(line string, breakPatterns []string) bool {
	key := strings.ToUpper(strings.TrimSpace(line))
	for _, p := range breakPatterns {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}

func newRawSegment(lines []string, start int) RawSegment {
	seg := RawSegment{
		Lines:     lines,
		LineCount: len(lines),
		StartLine: start,
	}
	seg.CharCount = utf8.RuneCountInString(seg.Text())
	return seg
}
