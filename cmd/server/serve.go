package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"PortfolioCMS/internal/config"
	"PortfolioCMS/internal/log"
)

// watchDebounce 同一次保存往往触发多个文件事件
const watchDebounce = 300 * time.Millisecond

type serveOptions struct {
	configPath string
	port       int
}

func (o *serveOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.configPath, "config", "c", "", "YAML 配置文件路径")
	cmd.Flags().IntVar(&o.port, "port", 0, "HTTP 服务端口 (优先级高于配置文件与环境变量 PORT)，默认 3000")
}

// loadConfig 读取配置：命令行 > 环境变量 > .env > 配置文件 > 默认值
func loadConfig(opts serveOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts serveOptions) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log.Setup(cfg.Log.Level, cfg.Log.Dev)
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg, os.Stdout)
	if err != nil {
		return err
	}
	defer a.close()

	if a.watcher != nil {
		a.watcher.Start(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof(log.Fields{"version": Version, "strategy": cfg.Content.Strategy}, "Portfolio CMS[%s] 启动在 http://localhost:%d", Version, cfg.Server.Port)
		errCh <- a.server.Start()
	}()

	// 等待中断信号或服务器异常退出
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP 服务器错误: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
		log.Errorf(log.Fields{"error": err}, "服务器关闭错误")
		return err
	}
	<-errCh
	log.Infof(nil, "服务器已关闭")
	return nil
}
