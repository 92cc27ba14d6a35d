package main

import (
	"context"
	"flag"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/matst80/relayroom/internal/obs"
	"github.com/matst80/relayroom/internal/ratelimit"
	"github.com/matst80/relayroom/internal/relay"
)

func main() {
	flag.Parse()
	if cfg.ConfigFile != "" {
		if err := applyConfigFile(cfg.ConfigFile); err != nil {
			obs.Error("config.file", obs.Fields{"err": err.Error(), "path": cfg.ConfigFile})
			os.Exit(1)
		}
	}
	if cfg.Debug {
		obs.EnableDebug(true)
	}
	mode, err := relay.ParseMode(cfg.Mode)
	if err != nil {
		obs.Error("config.mode", obs.Fields{"err": err.Error()})
		os.Exit(1)
	}

	pub, err := newPresencePublisher()
	if err != nil {
		obs.Error("presence.connect", obs.Fields{"err": err.Error(), "addr": cfg.RedisAddr})
		os.Exit(1)
	}
	defer func() { _ = pub.Close() }()

	var limiter *ratelimit.Limiter
	if cfg.GlobalConnRate > 0 || cfg.PerHostConnRate > 0 || cfg.PerNameMsgRate > 0 {
		limiter = ratelimit.New(cfg.GlobalConnRate, cfg.PerHostConnRate, cfg.PerNameMsgRate, cfg.RateBurst)
	}

	srv := relay.NewServer(relay.Options{
		Mode:             mode,
		HandshakeTimeout: cfg.HandshakeTimeout,
		TextBufSize:      cfg.TextBufSize,
		AudioChunkSize:   cfg.AudioChunkSize,
		Limiter:          limiter,
		Presence:         pub,
	})

	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		obs.Error("listen", obs.Fields{"err": err.Error(), "addr": cfg.ListenAddr})
		os.Exit(1)
	}
	obs.Info("server.start", obs.Fields{"addr": cfg.ListenAddr, "mode": string(mode), "metrics": cfg.MetricsAddr})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go startMetricsServer(cfg.MetricsAddr, srv)

	done := make(chan struct{})
	go func() { defer close(done); srv.Serve(ctx, ln) }()

	go runOperator(srv, stop)

	<-ctx.Done()
	obs.Info("server.shutdown.signal", obs.Fields{})
	srv.Shutdown()
	<-done
	obs.Info("server.shutdown.complete", obs.Fields{})
}
