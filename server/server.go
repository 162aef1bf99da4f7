/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package server wires the CRM tool services into an MCP server on stdio.
// Every tool call flows through the same pipeline: input validation against
// the tool's JSON schema, service execution, output re-validation, then
// presentation. A handler middleware enforces the global timeout and turns
// panics into uniform error results.
package server

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leadlovers/leadlovers-mcp/ai"
	"github.com/leadlovers/leadlovers-mcp/beefree"
	"github.com/leadlovers/leadlovers-mcp/config"
	"github.com/leadlovers/leadlovers-mcp/emailmarketing"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/leads"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/machines"
	"github.com/leadlovers/leadlovers-mcp/schemas"
	"github.com/leadlovers/leadlovers-mcp/sequences"
)

// Services groups the tool services the handlers dispatch to.
type Services struct {
	Leads          *leads.Service
	Machines       *machines.Service
	Sequences      *sequences.Service
	EmailMarketing *emailmarketing.Service
}

// Server wraps the MCP server with the CRM services
type Server struct {
	config    *config.Config
	logger    *logging.Logger
	validator *schemas.Validator
	services  Services
	mcpServer *server.MCPServer
}

// New creates a server with the full production wiring: upstream API
// client, AI generator, BeeFree builder.
func New(cfg *config.Config, logger *logging.Logger) (*Server, error) {
	api := leadlovers.NewClient(cfg, logger)

	generator, err := ai.NewGenerator(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI generator: %w", err)
	}
	builder := beefree.NewBuilder(cfg, logger)

	return NewWithServices(cfg, logger, Services{
		Leads:          leads.NewService(api, logger),
		Machines:       machines.NewService(api, logger),
		Sequences:      sequences.NewService(api, logger),
		EmailMarketing: emailmarketing.NewService(generator, builder, logger),
	})
}

// NewWithServices creates a server around pre-built services.
func NewWithServices(cfg *config.Config, logger *logging.Logger, services Services) (*Server, error) {
	srv := &Server{
		config:    cfg,
		logger:    logger,
		validator: schemas.NewValidator(logger),
		services:  services,
	}

	srv.mcpServer = server.NewMCPServer(
		global.ServerName,
		global.Version,
		server.WithToolCapabilities(true),
		server.WithLogging(),
		server.WithToolHandlerMiddleware(srv.withGuards),
	)

	if err := srv.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	return srv, nil
}

// readOnlyTool creates a tool with read-only annotations
// ReadOnly: true, Destructive: false, OpenWorld: true (calls a remote API)
func (s *Server) readOnlyTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(true),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// defaultTool creates a tool with default annotations (non-destructive write)
func (s *Server) defaultTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(false),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// destructiveTool creates a tool with destructive annotations
func (s *Server) destructiveTool(name string, opts ...mcp.ToolOption) mcp.Tool {
	opts = append(opts, mcp.WithToolAnnotation(mcp.ToolAnnotation{
		ReadOnlyHint:    mcp.ToBoolPtr(false),
		DestructiveHint: mcp.ToBoolPtr(true),
		OpenWorldHint:   mcp.ToBoolPtr(true),
	}))
	return mcp.NewTool(name, opts...)
}

// registerTools registers all MCP tools
func (s *Server) registerTools() error {
	// Lead tools
	s.mcpServer.AddTool(
		s.readOnlyTool(global.ToolGetLeads,
			mcp.WithDescription("Recupera uma lista de leads com base nos parâmetros fornecidos"),
			mcp.WithNumber("page",
				mcp.Description("Número da página para paginação"),
				mcp.Required(),
				mcp.Min(1),
			),
			mcp.WithString("startDate",
				mcp.Description("Data de início do cadastro do lead (AAAA-MM-DD)"),
			),
			mcp.WithString("endDate",
				mcp.Description("Data de término do cadastro do lead (AAAA-MM-DD)"),
			),
		), s.handleGetLeads)

	s.mcpServer.AddTool(
		s.defaultTool(global.ToolCreateLead,
			mcp.WithDescription("Cria um novo lead no CRM LeadLovers com os dados fornecidos"),
			mcp.WithString("Name",
				mcp.Description("Nome completo do lead (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithString("Email",
				mcp.Description("E-mail do lead (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithNumber("MachineCode",
				mcp.Description("Código da máquina onde o lead será criado (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithNumber("EmailSequenceCode",
				mcp.Description("Código da sequência de e-mail (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithNumber("SequenceLevelCode",
				mcp.Description("Código do nível da sequência de e-mail (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithString("Company", mcp.Description("Empresa do lead (opcional)")),
			mcp.WithString("Phone", mcp.Description("Telefone do lead (opcional)")),
			mcp.WithString("Photo", mcp.Description("URL da foto (opcional)")),
			mcp.WithString("City", mcp.Description("Cidade (opcional)")),
			mcp.WithString("State", mcp.Description("Estado (opcional)")),
			mcp.WithString("Birthday", mcp.Description("Data de nascimento (opcional)")),
			mcp.WithString("Gender", mcp.Description("Gênero (opcional)")),
			mcp.WithNumber("Score", mcp.Description("Pontuação do lead (opcional)")),
			mcp.WithNumber("Tag", mcp.Description("Tag ID (opcional)")),
			mcp.WithString("Source", mcp.Description("Origem do lead (opcional)")),
			mcp.WithString("Message", mcp.Description("Mensagem (opcional)")),
			mcp.WithString("Notes", mcp.Description("Notas sobre o lead (opcional)")),
		), s.handleCreateLead)

	s.mcpServer.AddTool(
		s.defaultTool(global.ToolUpdateLead,
			mcp.WithDescription("Atualiza um lead existente no CRM LeadLovers, identificado pelo e-mail"),
			mcp.WithString("Email",
				mcp.Description("E-mail do lead a atualizar (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithString("Name", mcp.Description("Nome completo do lead (opcional)")),
			mcp.WithNumber("MachineCode", mcp.Description("Código da máquina (opcional)")),
			mcp.WithNumber("EmailSequenceCode", mcp.Description("Código da sequência de e-mail (opcional)")),
			mcp.WithNumber("SequenceLevelCode", mcp.Description("Código do nível da sequência (opcional)")),
			mcp.WithString("Company", mcp.Description("Empresa do lead (opcional)")),
			mcp.WithString("Phone", mcp.Description("Telefone do lead (opcional)")),
			mcp.WithString("City", mcp.Description("Cidade (opcional)")),
			mcp.WithString("State", mcp.Description("Estado (opcional)")),
			mcp.WithString("Source", mcp.Description("Origem do lead (opcional)")),
		), s.handleUpdateLead)

	s.mcpServer.AddTool(
		s.destructiveTool(global.ToolDeleteLead,
			mcp.WithDescription("Deleta um lead do funil e sequência de e-mails na LeadLovers, não deleta o lead da máquina."),
			mcp.WithNumber("machineCode",
				mcp.Description("Código da máquina para localizar a sequência da qual o lead será removido (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithNumber("sequenceCode",
				mcp.Description("Código da sequência de e-mail (obrigatório)"),
				mcp.Required(),
			),
			mcp.WithString("email", mcp.Description("E-mail do lead (opcional)")),
			mcp.WithString("phone", mcp.Description("Telefone do lead (opcional)")),
		), s.handleDeleteLead)

	// Machine tools
	s.mcpServer.AddTool(
		s.readOnlyTool(global.ToolGetMachines,
			mcp.WithDescription("Lista as máquinas (funis) da conta LeadLovers"),
			mcp.WithNumber("page", mcp.Description("Número da página para paginação")),
			mcp.WithNumber("registers", mcp.Description("Quantidade de máquinas por página (padrão: 10)")),
			mcp.WithNumber("details", mcp.Description("Incluir detalhes das máquinas (0 ou 1, padrão: 0)")),
			mcp.WithString("types", mcp.Description("Filtro por tipos de máquina (opcional)")),
		), s.handleGetMachines)

	s.mcpServer.AddTool(
		s.readOnlyTool(global.ToolGetMachineDetails,
			mcp.WithDescription("Recupera os detalhes de uma máquina específica"),
			mcp.WithNumber("machineCode",
				mcp.Description("Código da máquina (obrigatório)"),
				mcp.Required(),
			),
		), s.handleGetMachineDetails)

	// Email sequence tools
	s.mcpServer.AddTool(
		s.readOnlyTool(global.ToolGetEmailSequences,
			mcp.WithDescription("Lista as sequências de e-mail de uma máquina"),
			mcp.WithNumber("machineCode",
				mcp.Description("Código da máquina (obrigatório)"),
				mcp.Required(),
			),
		), s.handleGetEmailSequences)

	// Email marketing tools
	s.mcpServer.AddTool(
		s.defaultTool(global.ToolCreateEmailContent,
			mcp.WithDescription("Cria o conteúdo de um e-mail marketing baseado nas informações fornecidas."),
			mcp.WithString("prompt",
				mcp.Description("Informações sobre o conteúdo do e-mail que deseja criar (obrigatório)"),
				mcp.Required(),
			),
		), s.handleCreateEmailContent)

	return nil
}

// withGuards enforces the global tool timeout and converts handler panics
// into uniform error results. The handler races its own completion against
// the deadline; whichever side wins responds exactly once, and a late
// completion drains into the buffered channel instead of blocking or
// panicking.
func (s *Server) withGuards(next server.ToolHandlerFunc) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := request.Params.Name

		ctx, cancel := context.WithTimeout(ctx, s.config.ToolTimeout())
		defer cancel()

		type outcome struct {
			result *mcp.CallToolResult
			err    error
		}
		done := make(chan outcome, 1)

		go func() {
			defer func() {
				if r := recover(); r != nil {
					s.logger.Errorf("panic in tool %s: %v", name, r)
					done <- outcome{result: mcp.NewToolResultError(
						fmt.Sprintf("❌ Erro ao executar %s: erro interno do servidor", name))}
				}
			}()
			result, err := next(ctx, request)
			done <- outcome{result: result, err: err}
		}()

		select {
		case o := <-done:
			return o.result, o.err
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				s.logger.Errorf("tool %s timed out after %s", name, s.config.ToolTimeout())
				return mcp.NewToolResultError(fmt.Sprintf(
					"❌ Erro ao executar %s: Operação timeout após %d segundos",
					name, int(s.config.ToolTimeout().Seconds()))), nil
			}
			return nil, ctx.Err()
		}
	}
}

// Run starts the MCP server with graceful shutdown
func (s *Server) Run() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	errChan := make(chan error, 1)
	go func() {
		// ServeStdio returns when stdin is closed (EOF) or on error
		errChan <- server.ServeStdio(s.mcpServer)
	}()

	s.logger.Infof("MCP server started successfully")

	select {
	case <-sigChan:
		s.logger.Info("Shutdown signal received")
		if err := s.logger.Sync(); err != nil {
			s.logger.Warnf("Failed to flush logs on shutdown: %v", err)
		}
		return nil

	case err := <-errChan:
		if err != nil {
			s.logger.Errorf("Server error: %v", err)
			return fmt.Errorf("server error: %w", err)
		}
		// nil error means stdin was closed (EOF) - normal exit
		s.logger.Info("Connection closed, server exiting")
		return nil
	}
}
