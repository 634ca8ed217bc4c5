// Command witherlocate runs a live fusion server: it reads observer
// sessions from a replay file (or, in a full deployment, a protocol
// client), feeds their hints through the Coincidence Gate and fusion
// pipeline, and writes the resulting event estimates to the log and chat
// sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hollowgrove/witherlocate/internal/config"
	"github.com/hollowgrove/witherlocate/internal/diag"
	"github.com/hollowgrove/witherlocate/internal/errest"
	"github.com/hollowgrove/witherlocate/internal/obs"
	"github.com/hollowgrove/witherlocate/internal/orchestrator"
	"github.com/hollowgrove/witherlocate/internal/sink"
)

const versionString = "witherlocate version 0.1.0 Go source."

type fatal struct{ err interface{} }

// exit ultimately calls log.Fatal but first allows deferred functions to
// run.
func exit(err interface{}) {
	panic(fatal{err})
}

type commandLine struct {
	configPath string
	replayPath string
	debugAddr  string
	showVer    bool
}

func parseCommandLine() *commandLine {
	var cl commandLine
	flag.StringVar(&cl.configPath, "c", "", "path to witherlocate.config")
	flag.StringVar(&cl.replayPath, "r", "", "path to a replay file of observer hints (fixed-width obs.ReplaySource format)")
	flag.StringVar(&cl.debugAddr, "debug-addr", "", "address to serve the debug raster endpoint on (empty disables it)")
	flag.BoolVar(&cl.showVer, "v", false, "display version")
	flag.Usage = func() {
		os.Stderr.WriteString(`
Usage: witherlocate [options]    run the fusion server

Options:
       -c <config-file>
       -r <replay-file>
       -debug-addr <host:port>
       -v                        display version
`)
	}
	flag.Parse()
	return &cl
}

func loadConfig(cl *commandLine) config.Config {
	if cl.configPath == "" {
		return config.Default()
	}
	f, err := os.Open(cl.configPath)
	if err != nil {
		exit(err)
	}
	defer f.Close()
	cfg, err := config.Parse(f)
	if err != nil {
		exit(err)
	}
	return cfg
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			if f, ok := err.(fatal); ok {
				log.Fatal(f.err)
			}
			panic(err)
		}
	}()

	cl := parseCommandLine()
	if cl.showVer {
		fmt.Println(versionString)
		os.Exit(0)
	}

	cfg := loadConfig(cl)

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	strategy, err := errest.New(cfg.Estimator, cfg.Sigma)
	if err != nil {
		exit(err)
	}

	logSink, err := sink.NewLogSink("sqlite3", cfg.LogConnectionString)
	if err != nil {
		exit(err)
	}
	chatSink := sink.NewChatSink(cfg.ChatWebhookURL, cfg.ChatChannelID, logger)

	orch := orchestrator.New(cfg.BatchWindow, strategy, logSink, chatSink, logger, 0)
	orch.Gate().SetActiveObserverCount(cfg.ActiveObservers)

	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("witherlocate: shutdown signal received")
		cancel()
	}()

	var debugServer *diag.Server
	if cl.debugAddr != "" {
		debugServer = diag.NewServer(cl.debugAddr, logger)
		go func() {
			if err := debugServer.ListenAndServe(); err != nil {
				logger.WithError(err).Warn("witherlocate: debug raster server stopped")
			}
		}()
		go func() {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			_ = debugServer.Shutdown(shutdownCtx)
		}()
	}
	if debugServer != nil || cfg.DiagDir != "" {
		orch.EnableDiagnostics(debugServer, cfg.DiagDir)
	}

	if cl.replayPath != "" {
		go orch.RunObserver(ctx, "replay", func(ctx context.Context) (obs.Source, error) {
			f, err := os.Open(cl.replayPath)
			if err != nil {
				return nil, err
			}
			defer f.Close()
			return obs.NewReplaySource(f, 50*time.Millisecond)
		})
	}

	logger.WithFields(logrus.Fields{
		"estimator":        cfg.Estimator,
		"activeObservers":  cfg.ActiveObservers,
		"batchWindow":      cfg.BatchWindow,
		"logConnectionStr": cfg.LogConnectionString,
	}).Info("witherlocate: starting fusion pipeline")

	orch.Run(ctx)

	if err := orch.Shutdown(); err != nil {
		logger.WithError(err).Warn("witherlocate: errors draining sinks during shutdown")
	}
}
