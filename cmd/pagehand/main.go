// Package main runs the pagehand MCP server: browser automation exposed as
// callable tools over JSON-RPC on stdio.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pagehand/pagehand/pkg/config"
	"github.com/pagehand/pagehand/pkg/engine"
	"github.com/pagehand/pagehand/pkg/logging"
	"github.com/pagehand/pagehand/pkg/mcp"
	"github.com/pagehand/pagehand/pkg/tools"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	debug := flag.Bool("debug", false, "mirror log output to stderr")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("pagehand v%s\n", version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pagehand: %v\n", err)
		os.Exit(1)
	}
	if *debug {
		cfg.Debug = true
	}

	log, logErr := logging.New(cfg.Debug)
	if logErr != nil {
		// The fallback logger is already reporting to stderr; keep going.
		log.Warnf("file logging unavailable: %v", logErr)
	}
	defer log.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Infof("shutdown signal received")
		cancel()
	}()

	interp := engine.NewInterpreter(cfg.Engine.APIKey, cfg.Engine.BaseURL, cfg.Engine.Model)
	manager := tools.NewManager(func() engine.Engine {
		return engine.NewBrowser(cfg.Engine, interp, log)
	}, log)
	defer manager.Close()

	dispatcher := tools.NewDispatcher(tools.NewRegistry(), manager, log)

	server := mcp.NewServer(
		mcp.NewStdioTransport(),
		dispatcher,
		mcp.ServerInfo{Name: "pagehand", Version: version},
		log,
	)

	if err := server.Serve(ctx); err != nil {
		log.Errorf("failed to start server: %v", err)
		fmt.Fprintf(os.Stderr, "pagehand: %v\n", err)
		os.Exit(1)
	}
}
