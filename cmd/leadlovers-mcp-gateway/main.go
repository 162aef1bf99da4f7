/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/leadlovers/leadlovers-mcp/bridge"
	"github.com/leadlovers/leadlovers-mcp/cache"
	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/gateway"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/identity"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/prompt"
)

func main() {
	// Top-level panic recovery
	defer func() {
		if rec := recover(); rec != nil {
			_, _ = fmt.Fprintf(os.Stderr, "FATAL PANIC: %v\n", rec)
			os.Exit(2)
		}
	}()

	var (
		configPath = flag.String("config", "", "Path to configuration file")
		version    = flag.Bool("version", false, "Show version information")
		help       = flag.Bool("help", false, "Show help information")
	)
	flag.Parse()

	if *version {
		fmt.Printf("%s v%s\n", global.GatewayName, global.Version)
		return
	}
	if *help {
		showHelp()
		return
	}

	var opts []config.Option
	if *configPath != "" {
		opts = append(opts, config.WithConfigPath(*configPath))
	}
	cfg := config.New(opts...)
	if err := cfg.Load(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Configuration error: %v\n", err)
		os.Exit(1)
	}

	var logger *logging.Logger
	if cfg.LogFile() != "" {
		fileLogger, err := logging.NewFile(cfg.LogFile())
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
			os.Exit(1)
		}
		logger = fileLogger
	} else {
		logger = logging.New()
	}
	defer func(logger *logging.Logger) {
		_ = logger.Sync()
		_ = logger.Close()
	}(logger)
	logger.SetLevel(cfg.LogLevel())

	logger.Infof("%s v%s starting", global.GatewayName, global.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := cache.NewRedisStore(ctx, cfg.RedisURL(), logger)
	cancel()
	if err != nil {
		logger.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer func() { _ = store.Close() }()

	tokens, err := identity.NewTokenService(cfg.JWTSecret())
	if err != nil {
		logger.Fatalf("Failed to initialize token service: %v", err)
	}
	sessions := identity.NewSessionService(identity.NewLeadLoversSSO(cfg, logger), tokens, logger)

	provider, err := bridge.NewProvider(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize AI bridge: %v", err)
	}
	defer func() { _ = provider.Close() }()

	conversations := prompt.NewConversations(store, cfg.ConversationTTL(), cfg.TranscriptMaxSize(), logger)
	pipeline := prompt.NewPipeline(conversations, provider, logger)

	srv := gateway.New(cfg, logger, store, tokens, sessions, pipeline)
	if err := srv.Run(); err != nil {
		logger.Fatalf("Gateway error: %v", err)
	}
}

func showHelp() {
	fmt.Printf(`%s v%s - WebSocket gateway for the LeadLovers MCP suite

USAGE:
    %s [OPTIONS]

OPTIONS:
    --config PATH    Path to configuration file
                     (default: $LEADLOVERS_MCP_CONFIG)
    --version        Show version information
    --help           Show this help message

DESCRIPTION:
    Serves the client-facing surface:

    - POST /v1/sessions  exchanges LeadLovers SSO tokens for a session JWT
    - GET  /v1/health    liveness and uptime
    - GET  /ws           authenticated websocket carrying send-prompt events

    Prompts run through the AI provider with the MCP server's CRM tools
    attached; each user keeps one active connection and one conversation
    transcript in Redis.

CONFIGURATION:
    Requires REDIS_URL, JWT_SECRET and the API key of the AI provider
    selected by AI_PROVIDER (OPENAI_API_KEY or ANTHROPIC_API_KEY). The MCP
    server binary is spawned from MCP_SERVER_COMMAND (default: %s).
`, global.GatewayName, global.Version, global.GatewayName, global.ServerName)
}
