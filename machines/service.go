/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package machines implements the machine catalog operations. Reads are
// idempotent; calling them twice yields the same result envelope for the
// same upstream state.
package machines

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/result"
)

// GetMachinesInput selects a page of the machine catalog.
type GetMachinesInput struct {
	Page      int    `json:"page,omitempty"`
	Registers int    `json:"registers,omitempty"`
	Details   int    `json:"details,omitempty"`
	Types     string `json:"types,omitempty"`
}

// GetMachineDetailsInput looks up a single machine.
type GetMachineDetailsInput struct {
	MachineCode int `json:"machineCode"`
}

// Service executes machine catalog operations against the upstream API.
type Service struct {
	api    leadlovers.API
	logger *logging.Logger
}

// NewService creates a machine service.
func NewService(api leadlovers.API, logger *logging.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// GetMachines fetches one catalog page. Registers defaults to 10 when the
// caller leaves it unset.
func (s *Service) GetMachines(ctx context.Context, input GetMachinesInput) result.Result[leadlovers.GetMachinesResponse] {
	empty := leadlovers.GetMachinesResponse{Items: []leadlovers.Machine{}}

	registers := input.Registers
	if registers <= 0 {
		registers = 10
	}

	query := url.Values{}
	query.Set("page", strconv.Itoa(input.Page))
	query.Set("registers", strconv.Itoa(registers))
	query.Set("details", strconv.Itoa(input.Details))
	query.Set("types", input.Types)

	resp := s.api.Get(ctx, "/Machines", query)
	if !resp.IsSuccess {
		s.logger.Errorf("error fetching machines: %s", resp.Err)
		return result.Fail("Erro desconhecido ao buscar máquinas", empty)
	}

	var page leadlovers.GetMachinesResponse
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		s.logger.Errorf("malformed machines payload: %v", err)
		return result.Fail("Erro ao interpretar resposta da API de máquinas", empty)
	}
	if page.Items == nil {
		page.Items = []leadlovers.Machine{}
	}
	return result.Ok("Máquinas recuperadas com sucesso", page)
}

// GetMachineDetails looks up one machine with details enabled.
func (s *Service) GetMachineDetails(ctx context.Context, input GetMachineDetailsInput) result.Result[leadlovers.GetMachineDetailsResponse] {
	empty := leadlovers.GetMachineDetailsResponse{Items: []leadlovers.Machine{}}

	query := url.Values{}
	query.Set("machineCode", strconv.Itoa(input.MachineCode))
	query.Set("details", "1")

	resp := s.api.Get(ctx, "/Machines", query)
	if !resp.IsSuccess {
		s.logger.Errorf("error fetching machine details: %s", resp.Err)
		return result.Fail("Erro desconhecido ao buscar detalhes da máquina", empty)
	}

	var details leadlovers.GetMachineDetailsResponse
	if err := json.Unmarshal(resp.Data, &details); err != nil {
		s.logger.Errorf("malformed machine details payload: %v", err)
		return result.Fail("Erro ao interpretar resposta da API de máquinas", empty)
	}
	if details.Items == nil {
		details.Items = []leadlovers.Machine{}
	}
	return result.Ok("Detalhes da máquina recuperados com sucesso", details)
}
