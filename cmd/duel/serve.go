package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	duelerrors "github.com/vango-dev/duel/internal/errors"
	"github.com/vango-dev/duel/pkg/metrics"
	"github.com/vango-dev/duel/pkg/replay"
	"github.com/vango-dev/duel/pkg/server"
)

func serveCmd(a *app) *cobra.Command {
	var (
		addr         string
		tickRate     int
		perspective  bool
		record       bool
		replayDir    string
		replayBucket string
		noMetrics    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the game server",
		Long: `Run the authoritative game server.

Clients connect to /ws. The server also serves /healthz and, unless
disabled, Prometheus metrics on /metrics.

Examples:
  duel serve
  duel serve --addr=:9000 --tick-rate=60
  duel serve --record --replay-dir=./replays`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("tick-rate") {
				cfg.Server.TickRate = tickRate
			}
			if cmd.Flags().Changed("perspective") {
				cfg.Server.Perspective = perspective
			}
			if cmd.Flags().Changed("replay-dir") {
				cfg.Replay.Dir = replayDir
				cfg.Replay.Enabled = true
			}
			if cmd.Flags().Changed("replay-bucket") {
				cfg.Replay.Bucket = replayBucket
				cfg.Replay.Enabled = true
			}
			if record {
				cfg.Replay.Enabled = true
			}
			if noMetrics {
				cfg.Metrics.Enabled = false
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return runServe(a)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Address to listen on (default from duel.json)")
	cmd.Flags().IntVarP(&tickRate, "tick-rate", "t", 0, "Ticks per second (default from duel.json)")
	cmd.Flags().BoolVar(&perspective, "perspective", false, "Send each client its own entity first")
	cmd.Flags().BoolVarP(&record, "record", "r", false, "Record the match as a replay")
	cmd.Flags().StringVar(&replayDir, "replay-dir", "", "Directory for replays (implies --record)")
	cmd.Flags().StringVar(&replayBucket, "replay-bucket", "", "S3 bucket for replays (implies --record)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "Do not register Prometheus collectors")

	return cmd
}

func runServe(a *app) error {
	cfg := a.cfg
	logger := a.logger.With("component", "server")

	shutdownTimeout, _ := cfg.ShutdownTimeout()
	sc := &server.ServerConfig{
		Address:         cfg.Server.Addr,
		TickRate:        cfg.Server.TickRate,
		MaxMessageSize:  cfg.Server.MaxMessageSize,
		ShutdownTimeout: shutdownTimeout,
		Perspective:     cfg.Server.Perspective,
		Logger:          logger,
	}
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		sc.Metrics = metrics.New(metrics.WithRegistry(reg), metrics.WithNamespace(cfg.Metrics.Namespace))
		sc.Gatherer = reg
	}

	var (
		rec   *replay.Recorder
		store replay.Store
		where string
	)
	if cfg.Replay.Enabled {
		var err error
		store, where, err = openStore(cfg)
		if err != nil {
			return err
		}
		rec = replay.NewRecorder(cfg.Replay.MaxBytes)
		sc.Recorder = rec
	}

	printBanner()
	info("listening on %s (%d ticks/s)", cfg.Server.Addr, cfg.Server.TickRate)
	if rec != nil {
		info("recording to %s", where)
	}
	if cfg.Server.Perspective {
		info("perspective ordering on: clients need --slot")
	}
	fmt.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(sc)
	if err := srv.ListenAndServe(ctx); err != nil {
		return duelerrors.New("E110").WithDetail(cfg.Server.Addr).Wrap(err)
	}

	if rec != nil && rec.Frames() > 0 {
		saveCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		name, err := rec.Save(saveCtx, store, "")
		if err != nil {
			return duelerrors.New("E130").WithDetail(where).Wrap(err)
		}
		success("saved replay %s (%d frames)", name, rec.Frames())
	}
	return nil
}
