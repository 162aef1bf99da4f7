/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/server"
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
		fmt.Printf("%s v%s\n", global.ServerName, global.Version)
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

	// stdout carries the MCP protocol; logs go to a file or stderr
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

	logger.Infof("%s v%s starting", global.ServerName, global.Version)

	if !cfg.HasAPIToken() {
		logger.Warn("LEADLOVERS_API_TOKEN is not set - CRM tools will fail until it is configured")
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to create server: %v", err)
	}

	if err := srv.Run(); err != nil {
		logger.Fatalf("Server error: %v", err)
	}
}

func showHelp() {
	fmt.Printf(`%s v%s - MCP server for the LeadLovers CRM

USAGE:
    %s [OPTIONS]

OPTIONS:
    --config PATH    Path to configuration file
                     (default: $LEADLOVERS_MCP_CONFIG)
    --version        Show version information
    --help           Show this help message

DESCRIPTION:
    Speaks the Model Context Protocol over stdio and exposes the
    LeadLovers CRM as tools:

    - get_leads, create_lead, update_lead, delete_lead
    - get_machines, get_machine_details
    - get_email_sequences
    - create_email_content (AI-generated BeeFree email documents)

CONFIGURATION:
    Settings come from an optional YAML file and environment variables;
    the environment wins. LEADLOVERS_API_TOKEN is required for the CRM
    tools, and OPENAI_API_KEY or ANTHROPIC_API_KEY for email content
    generation.
`, global.ServerName, global.Version, global.ServerName)
}
