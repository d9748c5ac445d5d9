package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fyerfyer/integra-processual/internal/document"
	"github.com/sirupsen/logrus"
)

// extractionPrefix 提取结果缓存键前缀
const extractionPrefix = "extract"

// CachedExtractor 带缓存的提取器
// 以文件内容哈希和引擎指纹作为键，同一份PDF在相同提取选项下只解析一次
type CachedExtractor struct {
	inner  document.Extractor
	cache  Cache
	ttl    time.Duration
	logger *logrus.Logger
}

// NewCachedExtractor 包装提取器
func NewCachedExtractor(inner document.Extractor, c Cache, ttl time.Duration, logger *logrus.Logger) *CachedExtractor {
	if logger == nil {
		logger = logrus.New()
	}
	return &CachedExtractor{inner: inner, cache: c, ttl: ttl, logger: logger}
}

// Name 返回被包装引擎的名称
func (e *CachedExtractor) Name() string {
	return e.inner.Name()
}

// Extract 先查缓存，未命中时调用被包装的提取器并写回缓存
// 缓存读写失败只记录日志，不影响提取
func (e *CachedExtractor) Extract(ctx context.Context, path string) (*document.Extraction, error) {
	digest, err := FileDigest(path)
	if err != nil {
		// 文件不可读时交给提取器返回规范的错误
		return e.inner.Extract(ctx, path)
	}
	key := ExtractionKey(e.fingerprint(), digest)

	cached, found, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.WithError(err).WithField("key", key).Warn("Failed to read extraction cache")
	} else if found {
		var ex document.Extraction
		if err := json.Unmarshal([]byte(cached), &ex); err == nil {
			ex.Source = path
			e.logger.WithFields(logrus.Fields{
				"source": path,
				"key":    key,
				"pages":  ex.PageCount,
			}).Info("Extraction cache hit")
			return &ex, nil
		}
		e.logger.WithField("key", key).Warn("Discarding undecodable extraction cache entry")
	}

	ex, err := e.inner.Extract(ctx, path)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(ex)
	if err != nil {
		e.logger.WithError(err).Warn("Failed to encode extraction for cache")
		return ex, nil
	}
	if err := e.cache.Set(ctx, key, string(data), e.ttl); err != nil {
		e.logger.WithError(err).WithField("key", key).Warn("Failed to write extraction cache")
	}
	return ex, nil
}

// fingerprint 被包装提取器的指纹，未实现document.Fingerprinter时使用引擎名
func (e *CachedExtractor) fingerprint() string {
	if fp, ok := e.inner.(document.Fingerprinter); ok {
		return fp.Fingerprint()
	}
	return e.inner.Name()
}

// ExtractionKey 生成提取结果缓存键，fingerprint包含引擎名和影响输出的选项
func ExtractionKey(fingerprint, digest string) string {
	return GenerateCacheKey(extractionPrefix, fingerprint, digest)
}

// FileDigest 计算文件内容的xxhash摘要
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}
