package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fyerfyer/integra-processual/api"
	"github.com/fyerfyer/integra-processual/api/handler"
	"github.com/fyerfyer/integra-processual/internal/document"
	"github.com/sirupsen/logrus"
)

// Run 执行serve子命令，直到收到终止信号
func (c *ServeCmd) Run(deps *Dependencies) error {
	cfg := deps.Config.Server

	staticDir := cfg.StaticDir
	if info, err := os.Stat(staticDir); err != nil || !info.IsDir() {
		deps.Logger.WithField("dir", staticDir).Warn("Static directory not found, serving API only")
		staticDir = ""
	}

	router := api.SetupRouter(
		handler.NewProcessHandler(deps.Process, cfg.UploadDir, cfg.MaxUploadMB),
		handler.NewRunHandler(deps.Runs),
		staticDir,
	)

	ln, err := api.Listen(cfg.Addr())
	if err != nil {
		if errors.Is(err, api.ErrPortInUse) {
			fmt.Fprintf(deps.Stderr, "[ERRO] Porta %d já está em uso\n", cfg.Port)
			fmt.Fprintf(deps.Stderr, "       Tente outro número de porta ou encerre o processo que está usando a porta %d\n", cfg.Port)
		}
		return err
	}

	dir := staticDir
	if abs, err := filepath.Abs(staticDir); err == nil && staticDir != "" {
		dir = abs
	}
	deps.Logger.WithFields(logrus.Fields{
		"addr":       ln.Addr().String(),
		"static_dir": dir,
		"history":    deps.Runs != nil,
	}).Info("Starting integra server")
	fmt.Fprintf(deps.Stdout, "[OK] Servidor rodando em http://%s\n", ln.Addr().String())

	return api.Serve(deps.Ctx, ln, router, deps.Logger)
}

// Run 执行systems子命令
func (c *SystemsCmd) Run(deps *Dependencies) error {
	for _, s := range document.SupportedSystems() {
		fmt.Fprintln(deps.Stdout, s)
	}
	return nil
}
