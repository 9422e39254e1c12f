// Command msn-node runs a star network node on a simulated 802.15.4 medium.
//
// The node joins the configured PAN, or forms it when no coordinator
// answers. Background peers join the same PAN and echo every payload sent
// to them, so a single process can exercise formation, association and
// data relay end to end.
//
// Usage:
//
//	msn-node [flags]
//
// Flags:
//
//	-config string        Configuration file path (YAML)
//	-ext string           Extended address of the node
//	-channel int          Logical channel 11-26
//	-pan string           PAN identifier
//	-peers int            Number of background peers
//	-secure               Enable AES-128 payload framing (needs a network key)
//	-log-level string     Log level: debug, info, warn, error
//	-log-file string      Write operational logs to a rotated file
//	-protocol-log string  Capture MAC primitives and state changes to a CBOR file
//	-metrics string       Serve Prometheus metrics on this address
//	-state-dir string     Persist node state in this directory
//	-interactive          Run the interactive console (default true)
//	-connect              Connect at start-up in interactive mode
//
// Examples:
//
//	# Form a PAN on channel 15 with three echo peers
//	msn-node -channel 15 -peers 3
//
//	# Headless, with protocol capture and metrics
//	msn-node -interactive=false -protocol-log msn.cbor -metrics :9100
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/msn-network/msn-go/cmd/msn-node/interactive"
	"github.com/msn-network/msn-go/internal/config"
	"github.com/msn-network/msn-go/pkg/log"
	"github.com/msn-network/msn-go/pkg/mac"
	"github.com/msn-network/msn-go/pkg/mac/sim"
	"github.com/msn-network/msn-go/pkg/metrics"
	"github.com/msn-network/msn-go/pkg/nwk"
)

var (
	configFile      = flag.String("config", "", "Configuration file path (YAML)")
	interactiveMode = flag.Bool("interactive", true, "Run the interactive console")
	autoConnect     = flag.Bool("connect", false, "Connect at start-up in interactive mode")

	extFlag         = flag.String("ext", "", "Extended address of the node")
	channelFlag     = flag.Uint("channel", 0, "Logical channel 11-26")
	panFlag         = flag.String("pan", "", "PAN identifier")
	peersFlag       = flag.Int("peers", 0, "Number of background peers")
	secureFlag      = flag.Bool("secure", false, "Enable AES-128 payload framing")
	logLevelFlag    = flag.String("log-level", "", "Log level: debug, info, warn, error")
	logFileFlag     = flag.String("log-file", "", "Write operational logs to a rotated file")
	protocolLogFlag = flag.String("protocol-log", "", "Capture protocol events to a CBOR file")
	metricsFlag     = flag.String("metrics", "", "Serve Prometheus metrics on this address")
	stateDirFlag    = flag.String("state-dir", "", "Persist node state in this directory")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "msn-node: %v\n", err)
		os.Exit(1)
	}
}

// applyFlags overrides cfg with the flags given on the command line.
func applyFlags(cfg *config.Config) {
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "ext":
			cfg.Node.ExtendedAddress = *extFlag
		case "channel":
			cfg.Node.Channel = uint8(*channelFlag)
		case "pan":
			cfg.Node.PanID = *panFlag
		case "peers":
			cfg.Simulation.Peers = *peersFlag
		case "secure":
			cfg.Security.Enabled = *secureFlag
		case "log-level":
			cfg.Logging.Level = *logLevelFlag
		case "log-file":
			cfg.Logging.File = *logFileFlag
		case "protocol-log":
			cfg.Logging.ProtocolLog = *protocolLogFlag
		case "metrics":
			cfg.Metrics.Listen = *metricsFlag
		case "state-dir":
			cfg.State.Dir = *stateDirFlag
		}
	})
}

func run() (err error) {
	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}
	applyFlags(cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ext, _ := cfg.ExtendedAddress()
	pan, _ := cfg.PanID()
	channel := mac.Channel(cfg.Node.Channel)

	logger, logCloser := setupLogging(cfg)
	defer func() { err = multierr.Append(err, logCloser.Close()) }()

	plog, plogCloser, err := setupProtocolLog(cfg, logger)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, plogCloser.Close()) }()

	if cfg.State.Dir != "" {
		if err := os.MkdirAll(cfg.State.Dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	energy := make(map[mac.Channel]uint8, len(cfg.Simulation.Energy))
	for ch, level := range cfg.Simulation.Energy {
		energy[mac.Channel(ch)] = level
	}
	medium := sim.NewMedium(sim.Config{
		Latency: cfg.Simulation.Latency,
		Energy:  energy,
		Logger:  logger.With("component", "sim"),
	})
	factory := &nodeFactory{cfg: cfg, medium: medium, logger: logger, plog: plog, metrics: m}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	node, err := factory.start(ctx, ext, pan, true)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, factory.stop(node)) }()

	logger.Info("node initialized", "extAddr", ext.String(), "channel", int(channel), "panID", pan.String(),
		"maxPayload", node.MaxPayload())

	ready := make(chan struct{})
	var readyOnce sync.Once
	markReady := func(ev nwk.Event) {
		if _, ok := ev.(nwk.ManagementEvent); ok && node.Connected() {
			readyOnce.Do(func() { close(ready) })
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Metrics.Listen != "" {
		g.Go(func() error { return serveMetrics(gctx, cfg.Metrics.Listen, reg, logger) })
	}
	g.Go(func() error {
		return runPeers(gctx, factory, cfg.Simulation.Peers, ext, channel, pan, ready)
	})

	if *interactiveMode {
		console, err := interactive.New(node, channel, pan, markReady)
		if err != nil {
			return err
		}
		if *autoConnect {
			console.Execute("connect")
		}
		g.Go(func() error {
			console.Run(gctx, cancel)
			return nil
		})
	} else {
		if err := node.Connect(channel, pan, eventLogger(logger, node, markReady)); err != nil {
			return err
		}
		logger.Info("starting connection, this can take several seconds")
		g.Go(func() error {
			<-gctx.Done()
			return nil
		})
	}

	err = g.Wait()
	logger.Info("shutting down", "outstanding", medium.Outstanding(), "dropped", medium.Dropped())
	return err
}

// setupLogging builds the operational logger. Debug adds source locations.
func setupLogging(cfg *config.Config) (*slog.Logger, io.Closer) {
	level, _ := cfg.LogLevel()

	var w io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if cfg.Logging.File != "" {
		lj := &lumberjack.Logger{
			Filename:   cfg.Logging.File,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAgeDays,
			Compress:   cfg.Logging.Compress,
		}
		w, closer = lj, lj
	}

	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	})
	return slog.New(handler), closer
}

// setupProtocolLog opens the protocol capture. At debug level events are
// mirrored to the operational log.
func setupProtocolLog(cfg *config.Config, logger *slog.Logger) (log.Logger, io.Closer, error) {
	var loggers []log.Logger
	var closer io.Closer = nopCloser{}

	if path := cfg.Logging.ProtocolLog; path != "" {
		var fl *log.FileLogger
		if cfg.Logging.MaxSizeMB > 0 {
			fl = log.NewRotatingFileLogger(path, log.RotationConfig{
				MaxSizeMB:  cfg.Logging.MaxSizeMB,
				MaxBackups: cfg.Logging.MaxBackups,
				MaxAgeDays: cfg.Logging.MaxAgeDays,
			})
		} else {
			var err error
			if fl, err = log.NewFileLogger(path); err != nil {
				return nil, nil, fmt.Errorf("open protocol log: %w", err)
			}
		}
		loggers = append(loggers, fl)
		closer = fl
	}
	if level, _ := cfg.LogLevel(); level == slog.LevelDebug {
		loggers = append(loggers, log.NewSlogAdapter(logger.With("component", "capture")))
	}

	switch len(loggers) {
	case 0:
		return log.NoopLogger{}, closer, nil
	case 1:
		return loggers[0], closer, nil
	default:
		return log.NewMultiLogger(loggers...), closer, nil
	}
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, logger *slog.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("serving metrics", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server: %w", err)
	}
	return nil
}

// eventLogger logs node events in headless mode.
func eventLogger(logger *slog.Logger, node *simNode, next nwk.Handler) nwk.Handler {
	return func(ev nwk.Event) {
		switch e := ev.(type) {
		case nwk.ManagementEvent:
			switch e.Message.(type) {
			case *mac.AssociateConfirm, *mac.StartConfirm:
				logger.Info("node connected", "role", node.Role().String(), "shortAddr", node.ShortAddress().String(),
					"panID", node.PanID().String(), "channel", int(node.Channel()))
			default:
				logger.Info("network management event", "type", e.Message.Type().String())
			}
		case nwk.DataEvent:
			if ind, ok := e.Message.(*mac.DataIndication); ok {
				logger.Info("message received", "src", ind.SrcAddr.String(), "payload", strconv.Quote(string(e.Payload)))
			}
		case nwk.ConnectFailedEvent:
			logger.Error("connection failed", "error", e.Err)
		case nwk.TransmitFailedEvent:
			logger.Warn("transmission failed", "dest", e.Dest.String(), "error", e.Err)
		}
		next(ev)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
