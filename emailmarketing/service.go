/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package emailmarketing composes the AI generator and the BeeFree builder
// into the create_email_content pipeline: briefing in, full editor JSON out.
package emailmarketing

import (
	"context"

	"github.com/leadlovers/leadlovers-mcp/ai"
	"github.com/leadlovers/leadlovers-mcp/beefree"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/result"
)

// CreateEmailContentInput is the generation briefing.
type CreateEmailContentInput struct {
	Prompt string `json:"prompt"`
}

// CreateEmailContentOutput carries the BeeFree full editor document.
type CreateEmailContentOutput struct {
	FullJSON string `json:"fullJson"`
}

// EmailBuilder is the conversion surface the service needs from the BeeFree
// package.
type EmailBuilder interface {
	ContentToSimpleSchema(content ai.Content) beefree.SimpleSchema
	SimpleToFullJSON(ctx context.Context, schema beefree.SimpleSchema) (string, error)
}

// Service runs the generation pipeline.
type Service struct {
	generator ai.Generator
	builder   EmailBuilder
	logger    *logging.Logger
}

// NewService creates an email marketing service.
func NewService(generator ai.Generator, builder EmailBuilder, logger *logging.Logger) *Service {
	return &Service{generator: generator, builder: builder, logger: logger}
}

// CreateEmailContent generates copy and converts it to the full BeeFree
// document. The first failing stage short-circuits; later stages never see
// partial data.
func (s *Service) CreateEmailContent(ctx context.Context, input CreateEmailContentInput) result.Result[CreateEmailContentOutput] {
	empty := CreateEmailContentOutput{}

	content, err := s.generator.Generate(ctx, input.Prompt)
	if err != nil {
		s.logger.Errorf("error creating email content: %v", err)
		return result.Fail("Erro ao gerar conteúdo do email: "+err.Error(), empty)
	}

	schema := s.builder.ContentToSimpleSchema(content)
	fullJSON, err := s.builder.SimpleToFullJSON(ctx, schema)
	if err != nil {
		s.logger.Errorf("error converting email content: %v", err)
		return result.Fail("Erro ao converter conteúdo do email: "+err.Error(), empty)
	}

	return result.Ok("Email content created successfully", CreateEmailContentOutput{FullJSON: fullJSON})
}
