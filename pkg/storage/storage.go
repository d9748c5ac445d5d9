package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound 文件不存在
var ErrNotFound = errors.New("file not found")

// ErrInvalidKey 键为空或试图跳出存储根目录
var ErrInvalidKey = errors.New("invalid storage key")

// FileInfo 文件元数据结构
type FileInfo struct {
	Key      string // 相对键，使用/分隔，如 processo/resultado_completo.json
	Name     string // 文件名
	Size     int64  // 文件大小(字节)
	MimeType string // 文件MIME类型
	Location string // 实际位置（本地绝对路径或s3://桶/键）
}

// Storage 输出存储接口
// 处理结果按相对键写入，可以有不同实现(本地文件系统、MinIO等)
type Storage interface {
	// Put 写入文件，已存在时覆盖
	Put(ctx context.Context, key string, reader io.Reader, contentType string) (FileInfo, error)

	// Get 获取文件内容
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete 删除文件
	Delete(ctx context.Context, key string) error

	// List 列出指定前缀下的文件，前缀为空时列出全部
	List(ctx context.Context, prefix string) ([]FileInfo, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// Location 返回键对应的实际位置
	Location(key string) string
}

// Config 存储配置
type Config struct {
	Type  string // local 或 minio
	Local LocalConfig
	Minio MinioConfig
}

// NewStorage 存储工厂函数，根据类型创建对应的实现
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local", "":
		return NewLocalStorage(cfg.Local)
	case "minio":
		return NewMinioStorage(cfg.Minio)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// CleanKey 规范化键，拒绝空键和跳出根目录的键
func CleanKey(key string) (string, error) {
	k := strings.ReplaceAll(key, "\\", "/")
	if strings.HasPrefix(k, "/") {
		return "", fmt.Errorf("%w: %q is absolute", ErrInvalidKey, key)
	}
	for _, part := range strings.Split(k, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q escapes the storage root", ErrInvalidKey, key)
		}
	}
	k = path.Clean(k)
	if k == "." || k == "" {
		return "", fmt.Errorf("%w: empty key", ErrInvalidKey)
	}
	return k, nil
}

// getMimeType 根据文件扩展名判断MIME类型
func getMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return "application/pdf"
	case ".json":
		return "application/json; charset=utf-8"
	case ".md", ".markdown":
		return "text/markdown; charset=utf-8"
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".html", ".htm":
		return "text/html; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}
