/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

// Package leads implements the lead lifecycle operations. Every Execute
// method returns a Result whose payload is shaped even on failure, so the
// tool layer can validate the output structurally regardless of outcome.
package leads

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/logging"
	"github.com/leadlovers/leadlovers-mcp/result"
)

// GetLeadsInput selects a page of leads, optionally bounded by a
// registration date window.
type GetLeadsInput struct {
	Page      int    `json:"page"`
	StartDate string `json:"startDate,omitempty"`
	EndDate   string `json:"endDate,omitempty"`
}

// DynamicField is a custom CRM field attached to a lead.
type DynamicField struct {
	ID    int    `json:"Id,omitempty"`
	Value string `json:"Value,omitempty"`
}

// AdditionalInfo carries auxiliary lead context.
type AdditionalInfo struct {
	AbandonedCartURL string `json:"AbandonedCartUrl,omitempty"`
}

// TrackingParameters carries UTM attribution.
type TrackingParameters struct {
	UTMSource   string `json:"UTMSource,omitempty"`
	UTMMedium   string `json:"UTMMedium,omitempty"`
	UTMCampaign string `json:"UTMCampaign,omitempty"`
	UTMTerm     string `json:"UTMTerm,omitempty"`
	UTMContent  string `json:"UTMContent,omitempty"`
}

// CreateLeadInput is the full lead registration payload. Field names match
// the upstream body verbatim; the input schema enforces which are required.
type CreateLeadInput struct {
	Name              string              `json:"Name"`
	Email             string              `json:"Email"`
	MachineCode       int                 `json:"MachineCode"`
	EmailSequenceCode int                 `json:"EmailSequenceCode"`
	SequenceLevelCode int                 `json:"SequenceLevelCode"`
	Company           string              `json:"Company,omitempty"`
	Phone             string              `json:"Phone,omitempty"`
	Photo             string              `json:"Photo,omitempty"`
	City              string              `json:"City,omitempty"`
	State             string              `json:"State,omitempty"`
	Birthday          string              `json:"Birthday,omitempty"`
	Gender            string              `json:"Gender,omitempty"`
	Score             int                 `json:"Score,omitempty"`
	Tag               int                 `json:"Tag,omitempty"`
	Source            string              `json:"Source,omitempty"`
	Message           string              `json:"Message,omitempty"`
	Notes             string              `json:"Notes,omitempty"`
	DynamicFields     []DynamicField      `json:"DynamicFields,omitempty"`
	AdditionalInfo    *AdditionalInfo     `json:"AdditionalInfo,omitempty"`
	Parameters        *TrackingParameters `json:"Parameters,omitempty"`
}

// UpdateLeadInput mirrors CreateLeadInput but only Email is mandatory; the
// machine/sequence routing fields become optional.
type UpdateLeadInput = CreateLeadInput

// DeleteLeadInput removes a lead from one funnel. Email or phone identifies
// the lead; either may be absent but not both (the schema enforces this).
type DeleteLeadInput struct {
	MachineCode  int    `json:"machineCode"`
	SequenceCode int    `json:"sequenceCode"`
	Email        string `json:"email,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

// Service executes lead operations against the upstream API.
type Service struct {
	api    leadlovers.API
	logger *logging.Logger
}

// NewService creates a lead service.
func NewService(api leadlovers.API, logger *logging.Logger) *Service {
	return &Service{api: api, logger: logger}
}

// GetLeads fetches one page of leads. Failures degrade to an empty page so
// the caller always has a rendering-safe payload.
func (s *Service) GetLeads(ctx context.Context, input GetLeadsInput) result.Result[leadlovers.GetLeadsResponse] {
	empty := leadlovers.GetLeadsResponse{Data: []leadlovers.Lead{}}

	query := url.Values{}
	query.Set("page", strconv.Itoa(input.Page))
	query.Set("startDate", input.StartDate)
	query.Set("endDate", input.EndDate)

	resp := s.api.Get(ctx, "/Leads", query)
	if !resp.IsSuccess {
		s.logger.Errorf("error fetching leads: %s", resp.Err)
		return result.Fail(failureMessage(resp, "Erro desconhecido ao buscar leads"), empty)
	}

	var page leadlovers.GetLeadsResponse
	if err := json.Unmarshal(resp.Data, &page); err != nil {
		s.logger.Errorf("malformed leads payload: %v", err)
		return result.Fail("Erro ao interpretar resposta da API de leads", empty)
	}
	if page.Data == nil {
		page.Data = []leadlovers.Lead{}
	}
	return result.Ok("Leads recuperados com sucesso", page)
}

// CreateLead registers a new lead. The upstream signals domain rejections
// inside an HTTP-200 Message, so the text is classified before trusting the
// transport status.
func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput) result.Result[leadlovers.MessageResponse] {
	resp := s.api.Post(ctx, "/Lead", input)
	if !resp.IsSuccess {
		msg := failureMessage(resp, "Erro desconhecido ao criar lead")
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}

	var out leadlovers.MessageResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil || out.Message == "" {
		msg := "Erro desconhecido ao criar lead"
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}

	if result.IsFailureMessage(out.Message) {
		msg := "Erro ao criar lead: " + out.Message
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}
	return result.Ok(out.Message, out)
}

// UpdateLead modifies an existing lead identified by email.
func (s *Service) UpdateLead(ctx context.Context, input UpdateLeadInput) result.Result[leadlovers.UpdateLeadResponse] {
	errOut := func(msg string) result.Result[leadlovers.UpdateLeadResponse] {
		return result.Fail(msg, leadlovers.UpdateLeadResponse{StatusCode: "ERROR", Message: msg})
	}

	resp := s.api.Put(ctx, "/Lead", input)
	if !resp.IsSuccess {
		s.logger.Errorf("error updating lead: %s", resp.Err)
		return errOut(failureMessage(resp, "Erro desconhecido ao atualizar lead"))
	}

	var out leadlovers.UpdateLeadResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil {
		s.logger.Errorf("malformed update payload: %v", err)
		return errOut("Erro desconhecido ao atualizar lead")
	}
	if !out.Succeeded() {
		msg := out.Message
		if msg == "" {
			msg = "Erro desconhecido ao atualizar lead"
		}
		return result.Fail(msg, out)
	}
	return result.Ok("Lead updated successfully", out)
}

// DeleteLead removes a lead from a funnel. All arguments travel in the
// query string; absent email/phone are simply omitted.
func (s *Service) DeleteLead(ctx context.Context, input DeleteLeadInput) result.Result[leadlovers.MessageResponse] {
	query := url.Values{}
	query.Set("machineCode", strconv.Itoa(input.MachineCode))
	query.Set("sequenceCode", strconv.Itoa(input.SequenceCode))
	if input.Email != "" {
		query.Set("email", input.Email)
	}
	if input.Phone != "" {
		query.Set("phone", input.Phone)
	}

	resp := s.api.Delete(ctx, "/Lead/Funnel", query)
	if !resp.IsSuccess {
		msg := failureMessage(resp, "Erro desconhecido ao deletar lead")
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}

	var out leadlovers.MessageResponse
	if err := json.Unmarshal(resp.Data, &out); err != nil || out.Message == "" {
		msg := "Erro desconhecido ao deletar lead"
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}

	if result.IsFailureMessage(out.Message) {
		msg := "Erro ao deletar lead: " + out.Message
		return result.Fail(msg, leadlovers.MessageResponse{Message: msg})
	}
	return result.Ok(out.Message, out)
}

// failureMessage extracts the upstream Message from a failed response body
// when one exists, otherwise falls back to the given default.
func failureMessage(resp leadlovers.Response, fallback string) string {
	if len(resp.Data) > 0 {
		var body leadlovers.MessageResponse
		if err := json.Unmarshal(resp.Data, &body); err == nil && body.Message != "" {
			return body.Message
		}
	}
	return fallback
}
