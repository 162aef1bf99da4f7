/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package sequences lists the email sequences configured inside a machine.
package sequences

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/result"
)

// GetEmailSequencesInput identifies the machine whose sequences to list.
type GetEmailSequencesInput struct {
	MachineCode int `json:"machineCode"`
}

// Service executes sequence lookups against the upstream API.
type Service struct {
	api    leadlovers.API
	logger *logging.Logger
}

// NewService creates a sequence service.
func NewService(api leadlovers.API, logger *logging.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// GetEmailSequences lists the sequences of one machine. A machine with no
// sequences is a success with an empty list, not a failure.
func (s *Service) GetEmailSequences(ctx context.Context, input GetEmailSequencesInput) result.Result[leadlovers.GetSequenceEmailsResponse] {
	empty := leadlovers.GetSequenceEmailsResponse{Items: []leadlovers.SequenceEmail{}}

	query := url.Values{}
	query.Set("machineCode", strconv.Itoa(input.MachineCode))

	resp := s.api.Get(ctx, "/EmailSequences", query)
	if !resp.IsSuccess {
		s.logger.Errorf("error fetching email sequences: %s", resp.Err)
		return result.Fail("Erro desconhecido ao buscar sequências de email", empty)
	}

	var out leadlovers.GetSequenceEmailsResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		s.logger.Errorf("malformed sequences payload: %v", err)
		return result.Fail("Erro ao interpretar resposta da API de sequências", empty)
	}
	if out.Items == nil {
		out.Items = []leadlovers.SequenceEmail{}
	}
	return result.Ok("Sequências recuperadas com sucesso", out)
}
