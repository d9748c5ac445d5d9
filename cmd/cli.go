package main

import (
	"context"
	"io"

	"github.com/fyerfyer/integra-processual/config"
	"github.com/fyerfyer/integra-processual/internal/repository"
	"github.com/fyerfyer/integra-processual/internal/services"
	"github.com/sirupsen/logrus"
)

// Dependencies 命令执行所需的服务和配置
type Dependencies struct {
	Ctx     context.Context
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Logger  *logrus.Logger
	Process *services.ProcessService
	Batch   *services.BatchService
	Runs    repository.RunRepository
}

// CLI 命令行结构
type CLI struct {
	Config   string `short:"c" default:"config.yaml" env:"INTEGRA_CONFIG" help:"Path to the YAML config file"`
	LogLevel string `name:"log-level" help:"Override the configured log level (trace, debug, info, warn, error)"`
	Output   string `short:"o" help:"Override the output root directory (local storage)"`
	Engine   string `short:"e" help:"Override the text extraction engine (rows, pdfcpu)"`
	NoCache  bool   `name:"no-cache" help:"Disable the extraction cache"`

	Process ProcessCmd `cmd:"" help:"Split, classify and clean one integra PDF"`
	Batch   BatchCmd   `cmd:"" help:"Process several PDFs and write a batch report"`
	Serve   ServeCmd   `cmd:"" help:"Serve static files and the processing API"`
	Systems SystemsCmd `cmd:"" help:"List the judicial systems the detector recognises"`
}

// ProcessCmd process子命令
type ProcessCmd struct {
	Path string `arg:"" help:"PDF file to process"`
	Name string `short:"n" help:"Output directory name (defaults to the file name without extension)"`
}

// BatchCmd batch子命令
type BatchCmd struct {
	Paths []string `arg:"" help:"PDF files or directories containing PDFs"`
}

// ServeCmd serve子命令
type ServeCmd struct {
	Host      string `help:"Override the listen host"`
	Port      int    `short:"p" help:"Override the listen port"`
	StaticDir string `name:"static-dir" help:"Override the static files directory"`
}

// SystemsCmd systems子命令
type SystemsCmd struct{}
