// Package main 提供 wlansta 站点核心的压力模拟器
//
// 模拟器启动若干接收路径读者与一个控制路径写者，在固定时长内反复
// 创建、替换、移除站点与密钥，最后打印统计。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	wlansta "github.com/dep2p/go-wlansta"
	"github.com/dep2p/go-wlansta/config"
	"github.com/dep2p/go-wlansta/internal/util/logger"
	"github.com/dep2p/go-wlansta/pkg/lib/log"
)

var cmdLogger = log.Logger("wlansta/cmd")

var (
	// ─────────────────────────────────────────────────────────────────────
	// 核心参数
	// ─────────────────────────────────────────────────────────────────────
	configFile = flag.String("config", "", "配置文件路径（JSON）")
	preset     = flag.String("preset", "ibss", "预设配置 (station/ibss)")
	slots      = flag.Int("slots", 0, "站点槽位数量（0 = 使用配置）")

	// ─────────────────────────────────────────────────────────────────────
	// 负载参数
	// ─────────────────────────────────────────────────────────────────────
	macIDs   = flag.Int("mac-ids", 48, "写者使用的 mac_id 范围（大于槽位数时触发取模回绕）")
	readers  = flag.Int("readers", 4, "接收路径读者数量")
	duration = flag.Duration("duration", 5*time.Second, "模拟时长")

	// ─────────────────────────────────────────────────────────────────────
	// 输出参数
	// ─────────────────────────────────────────────────────────────────────
	logFile     = flag.String("log", "", "日志文件路径（默认输出到 stderr）")
	metricsAddr = flag.String("metrics-addr", "", "Prometheus 指标监听地址，如 :9100")
	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Parse()

	if *showVersion {
		fmt.Println(wlansta.VersionInfo())
		return nil
	}

	out := os.Stderr
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("打开日志文件失败: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	logger.Setup(out, nil)

	opts, err := buildOptions()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	reg := prometheus.NewRegistry()
	opts = append(opts, wlansta.WithRegisterer(reg), wlansta.WithFlushFunc(flushInOrder))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	core, err := wlansta.New(opts...)
	if err != nil {
		return err
	}
	if err := core.Start(ctx); err != nil {
		return err
	}
	defer func() { _ = core.Close() }()

	if *metricsAddr != "" {
		srv := serveMetrics(*metricsAddr, reg)
		defer func() { _ = srv.Close() }()
	}

	fmt.Printf("%s  id=%s slots=%d readers=%d duration=%s\n",
		wlansta.VersionInfo(), core.ID(), core.Table().Size(), *readers, *duration)
	cmdLogger.Info("simulation started", "mac_ids", *macIDs, "readers", *readers)

	runCtx, cancel := context.WithTimeout(ctx, *duration)
	defer cancel()

	sim := newSimulator(core, *macIDs)
	if err := sim.run(runCtx, *readers); err != nil {
		return fmt.Errorf("模拟失败: %w", err)
	}

	if err := core.Close(); err != nil {
		return fmt.Errorf("关闭失败: %w", err)
	}
	sim.report(os.Stdout, core.Stats())
	return nil
}

// buildOptions 构建选项
//
// 配置优先级：命令行参数 > 预设 > 配置文件 > 默认值
func buildOptions() ([]wlansta.Option, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		var err error
		cfg, err = config.LoadFile(*configFile)
		if err != nil {
			return nil, err
		}
	}

	opts := []wlansta.Option{wlansta.WithConfig(cfg)}
	if *slots > 0 {
		opts = append(opts, wlansta.WithTableSize(*slots))
	}
	opts = append(opts, wlansta.WithPreset(*preset))
	return opts, nil
}

func serveMetrics(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cmdLogger.Warn("metrics server stopped", "addr", addr, "err", err)
		}
	}()
	return srv
}
