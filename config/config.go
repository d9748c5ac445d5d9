package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix 环境变量前缀，如 INTEGRA_SERVER_PORT
const EnvPrefix = "INTEGRA"

// Config 应用程序配置结构体
type Config struct {
	Patterns   PatternsConfig   `mapstructure:"patterns"`
	Segmenter  SegmenterConfig  `mapstructure:"segmenter"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Cleaner    CleanerConfig    `mapstructure:"cleaner"`
	Extractor  ExtractorConfig  `mapstructure:"extractor"`
	Output     OutputConfig     `mapstructure:"output"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
}

// PatternsConfig 模式文件配置
type PatternsConfig struct {
	Path string `mapstructure:"path"` // 模式文件路径，不存在时使用空模式集
}

// SegmenterConfig 分段配置
type SegmenterConfig struct {
	MinLines int `mapstructure:"min_lines" validate:"gte=0"` // 分段前片段需超过的行数
}

// ClassifierConfig 分类配置
type ClassifierConfig struct {
	Window int `mapstructure:"window" validate:"gt=0"` // 检查的前缀字符数
}

// CleanerConfig 清洗配置
type CleanerConfig struct {
	HexMinLength       int  `mapstructure:"hex_min_length" validate:"gt=0"`         // 十六进制行最小长度
	ShortLineMaxLength int  `mapstructure:"short_line_max_length" validate:"gte=0"` // 短大写行最大长度
	DetectSystem       bool `mapstructure:"detect_system"`                          // 是否识别电子诉讼系统
}

// ExtractorConfig 提取配置
type ExtractorConfig struct {
	Engine           string `mapstructure:"engine" validate:"oneof=rows pdfcpu"` // 提取引擎
	ProgressEvery    int    `mapstructure:"progress_every" validate:"gte=0"`     // 进度日志间隔（页）
	NormalizeUnicode bool   `mapstructure:"normalize_unicode"`                   // 是否做NFC规范化
}

// OutputConfig 输出配置
type OutputConfig struct {
	Formats []string `mapstructure:"formats" validate:"dive,oneof=json markdown text html"` // 输出格式
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type      string `mapstructure:"type" validate:"oneof=local minio"` // 存储类型：local 或 minio
	Path      string `mapstructure:"path"`                              // 本地输出根目录
	Bucket    string `mapstructure:"bucket"`                            // MinIO桶名称
	Endpoint  string `mapstructure:"endpoint"`                          // MinIO端点
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"` // 是否使用SSL
	Prefix    string `mapstructure:"prefix"`  // 对象键前缀
}

// CacheConfig 提取结果缓存配置
type CacheConfig struct {
	Enable   bool   `mapstructure:"enable"`                             // 是否启用缓存
	Type     string `mapstructure:"type" validate:"oneof=memory redis"` // 缓存类型：memory 或 redis
	Address  string `mapstructure:"address"`                            // Redis地址
	Password string `mapstructure:"password"`                           // Redis密码
	DB       int    `mapstructure:"db"`                                 // Redis数据库
	TTL      int    `mapstructure:"ttl" validate:"gte=0"`               // 缓存TTL（秒）
	Prefix   string `mapstructure:"prefix"`                             // 键前缀
}

// DatabaseConfig 处理历史数据库配置
type DatabaseConfig struct {
	Enable bool   `mapstructure:"enable"`                       // 是否记录处理历史
	Type   string `mapstructure:"type" validate:"oneof=sqlite"` // 数据库类型
	DSN    string `mapstructure:"dsn"`                          // 数据源名称
}

// ServerConfig 辅助文件服务配置
type ServerConfig struct {
	Host        string `mapstructure:"host"`                                     // 服务器主机
	Port        int    `mapstructure:"port" validate:"gte=0,lte=65535"`          // 服务器端口
	StaticDir   string `mapstructure:"static_dir"`                               // 静态文件目录
	UploadDir   string `mapstructure:"upload_dir"`                               // 上传文件暂存目录
	MaxUploadMB int    `mapstructure:"max_upload_mb" validate:"gt=0"`            // 上传大小上限
	Mode        string `mapstructure:"mode" validate:"oneof=debug release test"` // gin运行模式
}

// LogConfig 日志配置
type LogConfig struct {
	Level      string `mapstructure:"level" validate:"oneof=trace debug info warn error"` // 日志级别
	Format     string `mapstructure:"format" validate:"oneof=text json"`                  // 日志格式
	File       string `mapstructure:"file"`                                               // 日志文件，为空时只输出到标准错误
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gte=0"`                       // 单个日志文件大小上限
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`                       // 保留的旧日志数量
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`                      // 旧日志保留天数
}

// Addr 返回监听地址
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load 从文件和环境变量加载配置
// 配置文件不存在时使用默认值
func Load(configPath string) (*Config, error) {
	var config Config

	if configPath == "" {
		configPath = "config.yaml"
	}

	v := viper.New()
	setDefaults(v)

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		log.Printf("Using config file: %s", v.ConfigFileUsed())
	} else if errors.Is(err, os.ErrNotExist) {
		log.Printf("Warning: Config file not found at %s, using defaults", configPath)
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	// 支持环境变量覆盖
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := processEnvironmentVariables(&config)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回全部使用默认值的配置
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var config Config
	// 默认值来自代码，不会解析失败
	_ = v.Unmarshal(&config)
	return &config
}

// Validate 校验配置取值
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// processEnvironmentVariables 展开 ${VAR} 形式的敏感配置
func processEnvironmentVariables(cfg *Config) *Config {
	cfg.Storage.AccessKey = expandEnv(cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = expandEnv(cfg.Storage.SecretKey)
	cfg.Cache.Password = expandEnv(cfg.Cache.Password)
	return cfg
}

func expandEnv(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		if envVal := os.Getenv(value[2 : len(value)-1]); envVal != "" {
			return envVal
		}
	}
	return value
}

// setDefaults 设置配置的默认值
func setDefaults(v *viper.Viper) {
	v.SetDefault("patterns.path", "patterns/signatures_expanded.json")

	v.SetDefault("segmenter.min_lines", 20)
	v.SetDefault("classifier.window", 500)

	v.SetDefault("cleaner.hex_min_length", 30)
	v.SetDefault("cleaner.short_line_max_length", 20)
	v.SetDefault("cleaner.detect_system", true)

	v.SetDefault("extractor.engine", "rows")
	v.SetDefault("extractor.progress_every", 10)
	v.SetDefault("extractor.normalize_unicode", true)

	v.SetDefault("output.formats", []string{"json", "markdown", "text", "html"})

	// 存储默认配置
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.path", "./test_results")
	v.SetDefault("storage.bucket", "integra")
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.access_key", "")
	v.SetDefault("storage.secret_key", "")
	v.SetDefault("storage.use_ssl", false)
	v.SetDefault("storage.prefix", "")

	// 缓存默认配置
	v.SetDefault("cache.enable", true)
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.address", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 86400)
	v.SetDefault("cache.prefix", "integra")

	// 数据库默认配置
	v.SetDefault("database.enable", false)
	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "data/integra.db")

	// 服务器默认配置
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.static_dir", "./web")
	v.SetDefault("server.upload_dir", "./uploads")
	v.SetDefault("server.max_upload_mb", 200)
	v.SetDefault("server.mode", "release")

	// 日志默认配置
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
}
