package patterns

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePatternFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "signatures.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// TestLoad 测试模式文件加载
func TestLoad(t *testing.T) {
	logger := logrus.New()

	t.Run("loads categories in order", func(t *testing.T) {
		path := writePatternFile(t, `{
			"break_patterns": ["PETIÇÃO", "SENTENÇA", "PODER JUDICIÁRIO"],
			"noise_patterns": ["ASSINADO DIGITALMENTE", "", "SHA-"]
		}`)

		set, err := Load(path, logger)
		require.NoError(t, err)

		assert.Equal(t, []string{"PETIÇÃO", "SENTENÇA", "PODER JUDICIÁRIO"}, set.Get(BreakPatterns))
		assert.Equal(t, []string{"ASSINADO DIGITALMENTE", "SHA-"}, set.Get(NoisePatterns), "空模式应被丢弃")
		assert.Equal(t, []string{BreakPatterns, NoisePatterns}, set.Categories())
		assert.Equal(t, 5, set.Len())
	})

	t.Run("missing file yields empty set", func(t *testing.T) {
		set, err := Load(filepath.Join(t.TempDir(), "absent.json"), logger)
		require.NoError(t, err)
		assert.True(t, set.IsEmpty())
		assert.Nil(t, set.Get(BreakPatterns))
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		path := writePatternFile(t, `{"break_patterns": [`)
		_, err := Load(path, logger)
		assert.Error(t, err)
	})

	t.Run("shipped pattern file", func(t *testing.T) {
		set, err := Load(filepath.Join("..", "..", DefaultPath), logger)
		require.NoError(t, err)
		assert.Contains(t, set.Get(BreakPatterns), "PODER JUDICIÁRIO")
		assert.Contains(t, set.Get(NoisePatterns), "ICP-BRASIL")
	})
}

// TestPatternSetImmutable 测试返回值不会影响内部状态
func TestPatternSetImmutable(t *testing.T) {
	set := NewPatternSet(map[string][]string{"Noise_Patterns": {"SHA-"}})

	got := set.Get(NoisePatterns)
	require.Len(t, got, 1)
	got[0] = "CHANGED"

	assert.Equal(t, []string{"SHA-"}, set.Get("NOISE_PATTERNS"))
	assert.False(t, Empty().Len() > 0)
}
