package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/annel0/mmo-game/internal/app"
	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/block/blocktypes"
	"github.com/annel0/mmo-game/internal/cmdparser"
	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/eventbus"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/network"
	"github.com/annel0/mmo-game/internal/server"
	"github.com/annel0/mmo-game/internal/worldgen"
)

// metricsPort is the fixed Prometheus /metrics listen port; spec §6's
// CLI table has no flag for it since the scenarios it documents never
// exercise metrics scraping, but the ambient stack carries it anyway.
const metricsPort = 9100

// tickInterval mirrors internal/server's fixed simulation step, used
// only to give -n (RunFrames) a consistent meaning on this binary.
const tickInterval = 16 * time.Millisecond

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	cfg.EnvOverride()
	cfg.Server = true // so cmdparser's server==client exclusivity check passes by default

	if err := cmdparser.Parse(os.Args[1:], &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if !cfg.Server {
		fmt.Fprintln(os.Stderr, "cmd/server requires --server")
		return 1
	}

	if err := logging.InitLogger("server"); err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return 2
	}
	defer logging.CloseLogger()

	logging.LogInfo("starting server: host=%s port=%d save=%s world=%q seed=%d",
		cfg.Host, cfg.Port, cfg.SavePath, cfg.WorldName, cfg.Seed)

	registry := block.NewRegistry()
	ids := blocktypes.Install(registry)

	gen := worldgen.NewGenerator(cfg.Seed, registry, ids)

	metrics := network.NewMetrics()
	metricsAddr := fmt.Sprintf(":%d", metricsPort)
	metrics.StartHTTP(metricsAddr)

	bus := eventbus.NewMemoryBus(256)
	eventbus.Init(bus)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.LogWarn("start eventbus logging listener: %v", err)
	}
	exporter := eventbus.NewMetricsExporter(bus)
	exporter.Start()
	defer exporter.Stop()

	srv, err := server.New(cfg, registry, ids, gen, metrics)
	if err != nil {
		logging.LogError("server init: %v", err)
		return 2
	}

	runtime := app.NewHeadlessRuntime(cfg)
	defer runtime.Shutdown()

	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.LogInfo("received signal %v, shutting down", sig)
		close(stop)
	}()

	// RunFrames (-n) has no render-frame meaning on a headless server;
	// treat it as N ticks so -n is at least a consistent unit across
	// both binaries instead of silently ignored here.
	if cfg.RunFrames > 0 {
		go func() {
			time.Sleep(time.Duration(cfg.RunFrames) * tickInterval)
			close(stop)
		}()
	}
	if cfg.RunDuration > 0 {
		go func() {
			time.Sleep(time.Duration(cfg.RunDuration) * time.Millisecond)
			close(stop)
		}()
	}

	if err := srv.Run(stop); err != nil {
		logging.LogError("server run: %v", err)
		return 2
	}

	logging.LogInfo("server stopped cleanly")
	return 0
}
