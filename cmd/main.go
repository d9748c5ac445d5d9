package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fyerfyer/integra-processual/api"
	"github.com/fyerfyer/integra-processual/config"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()
	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if cerr := m.Close(); cerr != nil {
		fmt.Fprintln(os.Stderr, cerr)
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode 端口被占用时返回2，其余错误返回1
func exitCode(err error) int {
	if errors.Is(err, api.ErrPortInUse) {
		return 2
	}
	return 1
}

// Main 程序主体
type Main struct {
	closers []io.Closer
}

// NewMain 创建程序实例
func NewMain() *Main {
	return &Main{}
}

// Close 释放数据库、缓存和日志文件等资源
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		if err := m.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	m.closers = nil
	return errors.Join(errs...)
}

// Run 解析命令行并执行对应的子命令
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("integra"),
		kong.Description("Split a Brazilian court case PDF into its documents and strip signature noise"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'integra --help' to see available commands")
	}
	if len(args) == 1 && (args[0] == "--help" || args[0] == "-h" || args[0] == "help") {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.Config)
	if err != nil {
		return err
	}
	if err := applyOverrides(cfg, cli); err != nil {
		return err
	}

	logger, err := m.setupLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}
	gin.SetMode(cfg.Server.Mode)

	deps, err := m.wire(ctx, cfg, cli, logger)
	if err != nil {
		return err
	}
	deps.Stdout = stdout
	deps.Stderr = stderr

	return kongCtx.Run(deps)
}

// applyOverrides 用命令行参数覆盖配置并重新校验
func applyOverrides(cfg *config.Config, cli *CLI) error {
	if cli.LogLevel != "" {
		cfg.Log.Level = cli.LogLevel
	}
	if cli.Output != "" {
		cfg.Storage.Path = cli.Output
	}
	if cli.Engine != "" {
		cfg.Extractor.Engine = cli.Engine
	}
	if cli.NoCache {
		cfg.Cache.Enable = false
	}
	if cli.Serve.Host != "" {
		cfg.Server.Host = cli.Serve.Host
	}
	if cli.Serve.Port != 0 {
		cfg.Server.Port = cli.Serve.Port
	}
	if cli.Serve.StaticDir != "" {
		cfg.Server.StaticDir = cli.Serve.StaticDir
	}
	return config.Validate(cfg)
}
