package patterns

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	// BreakPatterns 文档分隔模式类别
	BreakPatterns = "break_patterns"
	// NoisePatterns 噪声行模式类别
	NoisePatterns = "noise_patterns"

	// DefaultPath 默认的模式文件路径
	DefaultPath = "patterns/signatures_expanded.json"
)

// PatternSet 按类别保存的字面量模式集合
// 加载后只读，可在多个文档之间安全共享
type PatternSet struct {
	categories map[string][]string
}

// NewPatternSet 由内存中的映射创建模式集合
// 空字符串会被丢弃，因为空字面量会匹配所有行
func NewPatternSet(m map[string][]string) PatternSet {
	categories := make(map[string][]string, len(m))
	for name, values := range m {
		categories[strings.ToLower(name)] = compact(values)
	}
	return PatternSet{categories: categories}
}

// Empty 返回空的模式集合
func Empty() PatternSet {
	return PatternSet{categories: map[string][]string{}}
}

// Get 返回指定类别的模式副本，类别不存在时返回nil
func (p PatternSet) Get(category string) []string {
	values, ok := p.categories[strings.ToLower(category)]
	if !ok {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}

// Categories 返回所有类别名（已排序）
func (p PatternSet) Categories() []string {
	names := make([]string, 0, len(p.categories))
	for name := range p.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len 返回所有类别的模式总数
func (p PatternSet) Len() int {
	total := 0
	for _, values := range p.categories {
		total += len(values)
	}
	return total
}

// IsEmpty 判断集合是否为空
func (p PatternSet) IsEmpty() bool {
	return p.Len() == 0
}

// Load 从JSON文件加载模式集合
// 文件不存在时返回空集合而不是错误，所有模式检查随之退化为"从不匹配"
func Load(path string, logger *logrus.Logger) (PatternSet, error) {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = logrus.New()
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.WithField("path", path).Warn("Pattern file not found, using empty pattern set")
			return Empty(), nil
		}
		return PatternSet{}, fmt.Errorf("failed to stat pattern file: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return PatternSet{}, fmt.Errorf("failed to read pattern file: %w", err)
	}

	raw := make(map[string][]string)
	for _, key := range v.AllKeys() {
		raw[key] = v.GetStringSlice(key)
	}
	set := NewPatternSet(raw)

	logger.WithFields(logrus.Fields{
		"path":       path,
		"categories": len(set.categories),
		"patterns":   set.Len(),
	}).Info("Pattern set loaded")

	return set, nil
}

// compact 去掉空白模式，保持原有顺序
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
