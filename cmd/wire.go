package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fyerfyer/integra-processual/api/middleware"
	"github.com/fyerfyer/integra-processual/config"
	"github.com/fyerfyer/integra-processual/internal/cache"
	"github.com/fyerfyer/integra-processual/internal/database"
	"github.com/fyerfyer/integra-processual/internal/document"
	"github.com/fyerfyer/integra-processual/internal/patterns"
	"github.com/fyerfyer/integra-processual/internal/report"
	"github.com/fyerfyer/integra-processual/internal/repository"
	"github.com/fyerfyer/integra-processual/internal/services"
	"github.com/fyerfyer/integra-processual/pkg/storage"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// closerFunc 把函数适配为io.Closer
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// setupLogger 配置包级日志，设置了日志文件时同时写入滚动文件
func (m *Main) setupLogger(cfg config.LogConfig, stderr io.Writer) (*logrus.Logger, error) {
	out := stderr
	if cfg.File != "" {
		rotating := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
		}
		m.closers = append(m.closers, rotating)
		out = io.MultiWriter(stderr, rotating)
	}

	if err := middleware.ConfigureLogger(cfg.Level, cfg.Format, out); err != nil {
		return nil, err
	}
	return middleware.GetLogger(), nil
}

// wire 根据配置创建所有服务
func (m *Main) wire(ctx context.Context, cfg *config.Config, cli *CLI, logger *logrus.Logger) (*Dependencies, error) {
	fileStorage, err := setupStorage(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	extractor, err := m.setupExtractor(cfg, logger)
	if err != nil {
		return nil, err
	}

	set, err := patterns.Load(cfg.Patterns.Path, logger)
	if err != nil {
		return nil, err
	}

	var runs repository.RunRepository
	if cfg.Database.Enable {
		dbCfg := database.DefaultConfig()
		dbCfg.Type = cfg.Database.Type
		dbCfg.DSN = cfg.Database.DSN
		if err := database.Setup(dbCfg, logger); err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		m.closers = append(m.closers, closerFunc(database.Close))
		runs = repository.NewRunRepository()
	}

	formats := make([]report.Format, 0, len(cfg.Output.Formats))
	for _, f := range cfg.Output.Formats {
		formats = append(formats, report.Format(f))
	}

	opts := []services.ProcessOption{
		services.WithLogger(logger),
		services.WithMinLines(cfg.Segmenter.MinLines),
		services.WithClassifierWindow(cfg.Classifier.Window),
		services.WithCleanerThresholds(cfg.Cleaner.HexMinLength, cfg.Cleaner.ShortLineMaxLength),
		services.WithSystemDetection(cfg.Cleaner.DetectSystem),
		services.WithFormats(formats),
	}
	if runs != nil {
		opts = append(opts, services.WithRunRepository(runs))
	}

	process := services.NewProcessService(extractor, set, fileStorage, opts...)
	batch := services.NewBatchService(process, fileStorage, services.WithBatchLogger(logger))

	logger.WithFields(logrus.Fields{
		"engine":   extractor.Name(),
		"storage":  fileStorage.Location(""),
		"patterns": set.Len(),
		"history":  runs != nil,
	}).Debug("Services initialized")

	return &Dependencies{
		Ctx:     ctx,
		Config:  cfg,
		Logger:  logger,
		Process: process,
		Batch:   batch,
		Runs:    runs,
	}, nil
}

// setupStorage 创建输出存储
func setupStorage(cfg config.StorageConfig) (storage.Storage, error) {
	return storage.NewStorage(storage.Config{
		Type:  cfg.Type,
		Local: storage.LocalConfig{Path: cfg.Path},
		Minio: storage.MinioConfig{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			UseSSL:    cfg.UseSSL,
			Bucket:    cfg.Bucket,
			Prefix:    cfg.Prefix,
		},
	})
}

// setupExtractor 创建文本提取器，启用缓存时包装一层提取结果缓存
func (m *Main) setupExtractor(cfg *config.Config, logger *logrus.Logger) (document.Extractor, error) {
	extractor, err := document.NewExtractor(
		document.Engine(cfg.Extractor.Engine),
		document.WithExtractorLogger(logger),
		document.WithProgressEvery(cfg.Extractor.ProgressEvery),
		document.WithNormalize(cfg.Extractor.NormalizeUnicode),
	)
	if err != nil {
		return nil, err
	}

	if !cfg.Cache.Enable {
		return extractor, nil
	}

	ttl := time.Duration(cfg.Cache.TTL) * time.Second
	cacheCfg := cache.DefaultConfig()
	cacheCfg.Type = cfg.Cache.Type
	cacheCfg.RedisAddr = cfg.Cache.Address
	cacheCfg.RedisPassword = cfg.Cache.Password
	cacheCfg.RedisDB = cfg.Cache.DB
	cacheCfg.DefaultTTL = ttl
	if cfg.Cache.Prefix != "" {
		cacheCfg.KeyPrefix = cfg.Cache.Prefix
	}

	c, err := cache.NewCache(cacheCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache: %w", err)
	}
	if closer, ok := c.(io.Closer); ok {
		m.closers = append(m.closers, closer)
	}

	logger.WithFields(logrus.Fields{
		"type": cfg.Cache.Type,
		"ttl":  ttl.String(),
	}).Info("Extraction cache enabled")

	return cache.NewCachedExtractor(extractor, c, ttl, logger), nil
}
