package document

import (
	"fmt"
	"strings"
	"testing"

	"github.com/fyerfyer/integra-processual/internal/patterns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBreakPatterns = []string{"EXCELENTÍSSIMO", "PETIÇÃO", "CONTESTAÇÃO", "SENTENÇA", "DECISÃO", "DESPACHO"}

func fillerLines(n int, prefix string) []string {
	lines := make([]string, n)
	for i := range lines {
		lines[i] = fmt.Sprintf("%s linha %d do texto", prefix, i+1)
	}
	return lines
}

func joinSegments(segs []RawSegment) string {
	texts := make([]string, len(segs))
	for i, s := range segs {
		texts[i] = s.Text()
	}
	return strings.Join(texts, "\n")
}

func TestSegmentBasic(t *testing.T) {
	s := NewSegmenter(DefaultMinLines)

	t.Run("break honored after guard", func(t *testing.T) {
		lines := append(fillerLines(25, "a"), "DESPACHO")
		lines = append(lines, fillerLines(5, "b")...)
		text := strings.Join(lines, "\n")

		segs := s.Segment(text, testBreakPatterns)
		require.Len(t, segs, 2)
		assert.Equal(t, 25, segs[0].LineCount)
		assert.Equal(t, 6, segs[1].LineCount)
		assert.Equal(t, "DESPACHO", segs[1].Lines[0])
		assert.Equal(t, 0, segs[0].StartLine)
		assert.Equal(t, 25, segs[1].StartLine)
		assert.Equal(t, text, joinSegments(segs))
	})

	t.Run("break suppressed inside guard", func(t *testing.T) {
		lines := append(fillerLines(10, "a"), "DESPACHO")
		lines = append(lines, fillerLines(5, "b")...)

		segs := s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		require.Len(t, segs, 1)
		assert.Equal(t, 16, segs[0].LineCount)
	})

	t.Run("guard is strictly greater", func(t *testing.T) {
		lines := append(fillerLines(20, "a"), "SENTENÇA")
		segs := s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		require.Len(t, segs, 1)

		lines = append(fillerLines(21, "a"), "SENTENÇA")
		segs = s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		require.Len(t, segs, 2)
		assert.Equal(t, 21, segs[0].LineCount)
		assert.Equal(t, 1, segs[1].LineCount)
	})

	t.Run("no breaks yields one segment", func(t *testing.T) {
		text := strings.Join(fillerLines(50, "x"), "\n")
		segs := s.Segment(text, testBreakPatterns)
		require.Len(t, segs, 1)
		assert.Equal(t, 50, segs[0].LineCount)
	})

	t.Run("empty text", func(t *testing.T) {
		segs := s.Segment("", testBreakPatterns)
		require.Len(t, segs, 1)
		assert.Equal(t, 1, segs[0].LineCount)
		assert.Equal(t, 0, segs[0].CharCount)
	})

	t.Run("empty pattern list", func(t *testing.T) {
		lines := append(fillerLines(30, "a"), "DESPACHO")
		segs := s.Segment(strings.Join(lines, "\n"), nil)
		require.Len(t, segs, 1)
	})
}

func TestSegmentShippedPatterns(t *testing.T) {
	set, err := patterns.Load("../../patterns/signatures_expanded.json", nil)
	require.NoError(t, err)
	breaks := set.Get(patterns.BreakPatterns)
	require.Contains(t, breaks, "PODER JUDICIÁRIO")

	lines := append(fillerLines(25, "a"), "PODER JUDICIÁRIO")
	lines = append(lines, fillerLines(5, "b")...)
	text := strings.Join(lines, "\n")

	segs := NewSegmenter(DefaultMinLines).Segment(text, breaks)
	require.Len(t, segs, 2)
	assert.Equal(t, 25, segs[0].LineCount)
	assert.Equal(t, 6, segs[1].LineCount)
	assert.Equal(t, "PODER JUDICIÁRIO", segs[1].Lines[0])
	assert.Equal(t, text, joinSegments(segs))
}

func TestSegmentMatching(t *testing.T) {
	s := NewSegmenter(DefaultMinLines)

	t.Run("case insensitive and trimmed", func(t *testing.T) {
		lines := append(fillerLines(22, "a"), "   despacho de mero expediente   ")
		segs := s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		require.Len(t, segs, 2)
		assert.Equal(t, "   despacho de mero expediente   ", segs[1].Lines[0])
	})

	t.Run("substring match", func(t *testing.T) {
		lines := append(fillerLines(22, "a"), "Nesta decisão interlocutória")
		segs := s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		assert.Len(t, segs, 2)
	})

	t.Run("blank lines count toward guard", func(t *testing.T) {
		lines := make([]string, 21)
		lines = append(lines, "PETIÇÃO")
		segs := s.Segment(strings.Join(lines, "\n"), testBreakPatterns)
		require.Len(t, segs, 2)
		assert.Equal(t, 21, segs[0].LineCount)
	})
}

func TestSegmentInvariants(t *testing.T) {
	s := NewSegmenter(DefaultMinLines)

	var lines []string
	for i := 0; i < 6; i++ {
		lines = append(lines, testBreakPatterns[i%len(testBreakPatterns)])
		lines = append(lines, fillerLines(15+i*3, "bloco")...)
		lines = append(lines, "")
	}
	text := strings.Join(lines, "\n")

	segs := s.Segment(text, testBreakPatterns)
	require.NotEmpty(t, segs)

	// 拼接还原全文
	assert.Equal(t, text, joinSegments(segs))

	total := 0
	for i, seg := range segs {
		assert.Equal(t, len(seg.Lines), seg.LineCount)
		assert.Equal(t, len([]rune(seg.Text())), seg.CharCount)
		assert.Equal(t, total, seg.StartLine)
		total += seg.LineCount

		// 除最后一个片段外，后继片段的首行必然是分段行
		if i > 0 {
			assert.True(t, isBreakLine(seg.Lines[0], testBreakPatterns))
			assert.Greater(t, segs[i-1].LineCount, DefaultMinLines)
		}
	}
	assert.Equal(t, len(lines), total)
}

func TestSegmentCharCountRunes(t *testing.T) {
	s := NewSegmenter(DefaultMinLines)
	segs := s.Segment("AÇÃO\nJUSTIÇA", nil)
	require.Len(t, segs, 1)
	assert.Equal(t, 12, segs[0].CharCount)
}

func TestNewSegmenterDefault(t *testing.T) {
	assert.Equal(t, DefaultMinLines, NewSegmenter(-1).MinLines)
	assert.Equal(t, 5, NewSegmenter(5).MinLines)
}
