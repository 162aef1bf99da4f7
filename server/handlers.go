/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leadlovers/leadlovers-mcp/emailmarketing"
	"github.com/leadlovers/leadlovers-mcp/global"
	"github.com/leadlovers/leadlovers-mcp/leads"
	"github.com/leadlovers/leadlovers-mcp/machines"
	"github.com/leadlovers/leadlovers-mcp/sequences"
)

// logToolCall logs an MCP tool invocation at INFO level
func (s *Server) logToolCall(toolName string, params map[string]string) {
	var parts []string
	for k, v := range params {
		if v != "" {
			parts = append(parts, fmt.Sprintf("%s=%s", k, v))
		}
	}
	if len(parts) == 0 {
		s.logger.Infof("Tool %s called", toolName)
	} else {
		s.logger.Infof("Tool %s called: %s", toolName, strings.Join(parts, ", "))
	}
}

// validatedArgs marshals the raw arguments and checks them against the
// tool's input contract. A validation failure short-circuits before any
// upstream call; the second return value is the error result to send back.
func (s *Server) validatedArgs(tool string, request mcp.CallToolRequest) ([]byte, *mcp.CallToolResult) {
	raw, err := json.Marshal(request.GetArguments())
	if err != nil {
		s.logger.Errorf("tool %s: failed to encode arguments: %v", tool, err)
		return nil, formatError("processar a solicitação", "Dados inválidos fornecidos", "")
	}

	vr, err := s.validator.ValidateInput(tool, raw)
	if err != nil {
		s.logger.Errorf("tool %s: input validation fault: %v", tool, err)
		return nil, formatError("processar a solicitação", "Erro interno do servidor", "")
	}
	if !vr.Valid {
		s.logger.Infof("tool %s rejected: %s", tool, strings.Join(vr.Errors, "; "))
		return nil, formatValidationError(vr.Errors)
	}
	return raw, nil
}

// checkOutput re-validates a service payload against the tool's output
// contract. A violation here is an internal fault, reported as such and
// never blamed on the caller's input.
func (s *Server) checkOutput(tool, action string, payload any) *mcp.CallToolResult {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Errorf("tool %s: failed to encode output: %v", tool, err)
		return formatError(action, "Erro interno do servidor", "Tente novamente em instantes")
	}
	vr, err := s.validator.ValidateOutput(tool, raw)
	if err != nil {
		s.logger.Errorf("tool %s: output validation fault: %v", tool, err)
		return formatError(action, "Erro interno do servidor", "Tente novamente em instantes")
	}
	if !vr.Valid {
		s.logger.Errorf("tool %s produced invalid output: %s", tool, strings.Join(vr.RawErrors, "; "))
		return formatError(action, "Erro interno do servidor", "Tente novamente em instantes")
	}
	return nil
}

// Lead tool handlers

func (s *Server) handleGetLeads(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolGetLeads, request)
	if errResult != nil {
		return errResult, nil
	}

	var input leads.GetLeadsInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("obter os leads", "Parâmetros inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolGetLeads, map[string]string{"page": strconv.Itoa(input.Page)})

	res := s.services.Leads.GetLeads(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "obter os leads"), nil
	}
	if errResult := s.checkOutput(global.ToolGetLeads, "obter os leads", res.Data); errResult != nil {
		return errResult, nil
	}

	period := "Todos os períodos"
	if input.StartDate != "" && input.EndDate != "" {
		period = input.StartDate + " a " + input.EndDate
	}

	if len(res.Data.Data) == 0 {
		return formatSuccess("Busca realizada com sucesso",
			[]Detail{
				detail("Página", strconv.Itoa(input.Page)),
				detail("Período", period),
				detail("Resultado", "0 leads encontrados"),
			},
			"💡 **Dica:** Tente ajustar o período de busca ou verificar outras páginas."), nil
	}

	var list []string
	list = append(list, "**Lista de Leads:**")
	for _, lead := range res.Data.Data {
		var parts []string
		if lead.Name != "" {
			parts = append(parts, "**"+lead.Name+"**")
		}
		if lead.Email != "" {
			parts = append(parts, "📧 "+lead.Email)
		}
		if lead.Company != "" {
			parts = append(parts, "🏢 "+lead.Company)
		}
		if lead.Phone != "" {
			parts = append(parts, "📞 "+lead.Phone)
		}
		if lead.City != "" && lead.State != "" {
			parts = append(parts, "🗺 "+lead.City+"/"+lead.State)
		}
		if lead.Score != 0 {
			parts = append(parts, "🏆 "+strconv.Itoa(lead.Score))
		}
		if lead.RegistrationDate != "" {
			parts = append(parts, "📅 "+lead.RegistrationDate)
		}
		list = append(list, "• "+strings.Join(parts, " | "))
	}
	if res.Data.Links.Next != nil {
		list = append(list, fmt.Sprintf("\n👉 **Dica:** Use `page: %d` para ver mais leads.", input.Page+1))
	}

	return formatSuccess(fmt.Sprintf("%d leads encontrados", len(res.Data.Data)),
		[]Detail{
			detail("Página", strconv.Itoa(input.Page)),
			detail("Período", period),
		},
		list...), nil
}

func (s *Server) handleCreateLead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolCreateLead, request)
	if errResult != nil {
		return errResult, nil
	}

	var input leads.CreateLeadInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("criar o lead", "Dados inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolCreateLead, map[string]string{"email": input.Email, "machine": strconv.Itoa(input.MachineCode)})

	res := s.services.Leads.CreateLead(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "criar o lead"), nil
	}
	if errResult := s.checkOutput(global.ToolCreateLead, "criar o lead", res.Data); errResult != nil {
		return errResult, nil
	}

	return formatSuccess(fmt.Sprintf("Lead criado com sucesso na máquina %d", input.MachineCode),
		[]Detail{
			detail("ID", res.Data.Message),
			detail("Nome", input.Name),
			detail("Email", input.Email),
			detail("Telefone", input.Phone),
			detail("Empresa", input.Company),
			detail("Origem", input.Source),
			detail("Máquina", strconv.Itoa(input.MachineCode)),
			detail("Sequência", strconv.Itoa(input.EmailSequenceCode)),
		},
		"💡 **Dica:** O lead foi adicionado à sequência de emails e receberá as mensagens automaticamente."), nil
}

func (s *Server) handleUpdateLead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolUpdateLead, request)
	if errResult != nil {
		return errResult, nil
	}

	var input leads.UpdateLeadInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("atualizar o lead", "Dados inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolUpdateLead, map[string]string{"email": input.Email})

	res := s.services.Leads.UpdateLead(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "atualizar o lead"), nil
	}
	if errResult := s.checkOutput(global.ToolUpdateLead, "atualizar o lead", res.Data); errResult != nil {
		return errResult, nil
	}

	machine := ""
	if input.MachineCode != 0 {
		machine = strconv.Itoa(input.MachineCode)
	}

	return formatSuccess("Lead atualizado com sucesso",
		[]Detail{
			detail("Email", input.Email),
			detail("Nome", input.Name),
			detail("Telefone", input.Phone),
			detail("Empresa", input.Company),
			detail("Cidade", input.City),
			detail("Estado", input.State),
			detail("Origem", input.Source),
			detail("Máquina", machine),
		},
		"💡 **Dica:** As alterações foram aplicadas imediatamente no CRM LeadLovers."), nil
}

func (s *Server) handleDeleteLead(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolDeleteLead, request)
	if errResult != nil {
		return errResult, nil
	}

	var input leads.DeleteLeadInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("deletar o lead", "Dados inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolDeleteLead, map[string]string{
		"machine":  strconv.Itoa(input.MachineCode),
		"sequence": strconv.Itoa(input.SequenceCode),
	})

	res := s.services.Leads.DeleteLead(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "deletar o lead"), nil
	}
	if errResult := s.checkOutput(global.ToolDeleteLead, "deletar o lead", res.Data); errResult != nil {
		return errResult, nil
	}

	email := input.Email
	if email == "" {
		email = "não informado"
	}
	phone := input.Phone
	if phone == "" {
		phone = "não informado"
	}

	return formatSuccess("Lead deletado com sucesso",
		[]Detail{
			detail("Máquina", strconv.Itoa(input.MachineCode)),
			detail("Sequência", strconv.Itoa(input.SequenceCode)),
			detail("Email", email),
			detail("Telefone", phone),
		},
		"O lead foi removido do funil e sequência de emails."), nil
}

// Machine tool handlers

func (s *Server) handleGetMachines(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolGetMachines, request)
	if errResult != nil {
		return errResult, nil
	}

	var input machines.GetMachinesInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("obter as máquinas", "Parâmetros inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolGetMachines, map[string]string{"page": strconv.Itoa(input.Page)})

	res := s.services.Machines.GetMachines(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "obter a lista de máquinas"), nil
	}
	if errResult := s.checkOutput(global.ToolGetMachines, "obter a lista de máquinas", res.Data); errResult != nil {
		return errResult, nil
	}

	if len(res.Data.Items) == 0 {
		return formatSuccess("Busca realizada com sucesso",
			[]Detail{
				detail("Página", strconv.Itoa(input.Page)),
				detail("Resultado", "Nenhuma máquina encontrada"),
			},
			"💡 **Dica:** Verifique se você possui máquinas criadas em sua conta LeadLovers."), nil
	}

	total := res.Data.Registers
	if total == 0 {
		total = len(res.Data.Items)
	}

	var list []string
	list = append(list, "Máquinas disponíveis:")
	for _, m := range res.Data.Items {
		list = append(list, fmt.Sprintf("- **%s** (Código: %d, Leads: %d, Views: %d)",
			m.MachineName, m.MachineCode, m.Leads, m.Views))
	}
	list = append(list, "\n💡 **Dica:** Use o código da máquina para criar leads nela.")

	return formatSuccess(fmt.Sprintf("%d máquinas encontradas", total), nil, list...), nil
}

func (s *Server) handleGetMachineDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolGetMachineDetails, request)
	if errResult != nil {
		return errResult, nil
	}

	var input machines.GetMachineDetailsInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("obter detalhes da máquina", "Parâmetros inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolGetMachineDetails, map[string]string{"machine": strconv.Itoa(input.MachineCode)})

	res := s.services.Machines.GetMachineDetails(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "obter detalhes da máquina"), nil
	}
	if errResult := s.checkOutput(global.ToolGetMachineDetails, "obter detalhes da máquina", res.Data); errResult != nil {
		return errResult, nil
	}

	if len(res.Data.Items) == 0 {
		return formatError("obter detalhes da máquina",
			fmt.Sprintf("Máquina com código %d não encontrada", input.MachineCode),
			"Verifique se o código da máquina está correto e se ela existe em sua conta"), nil
	}

	machine := res.Data.Items[0]
	image := machine.MachineImage
	if image == "" {
		image = "Não informado"
	}

	return formatSuccess(fmt.Sprintf("Detalhes da máquina %d", input.MachineCode),
		[]Detail{
			detail("Nome", machine.MachineName),
			detail("Código", strconv.Itoa(machine.MachineCode)),
			detail("Visualizações", strconv.Itoa(machine.Views)),
			detail("Leads", strconv.Itoa(machine.Leads)),
			detail("Imagem", image),
		},
		"💡 **Dica:** Use este código de máquina para criar ou gerenciar leads."), nil
}

// Email sequence tool handlers

func (s *Server) handleGetEmailSequences(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolGetEmailSequences, request)
	if errResult != nil {
		return errResult, nil
	}

	var input sequences.GetEmailSequencesInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("obter sequências de email", "Parâmetros inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolGetEmailSequences, map[string]string{"machine": strconv.Itoa(input.MachineCode)})

	res := s.services.Sequences.GetEmailSequences(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "obter sequências de email"), nil
	}
	if errResult := s.checkOutput(global.ToolGetEmailSequences, "obter sequências de email", res.Data); errResult != nil {
		return errResult, nil
	}

	if len(res.Data.Items) == 0 {
		return formatSuccess("Busca realizada com sucesso",
			[]Detail{
				detail("Máquina", strconv.Itoa(input.MachineCode)),
				detail("Resultado", "Nenhuma sequência de email encontrada"),
			},
			"💡 **Dica:** Crie sequências de email na sua máquina para automatizar o envio de mensagens."), nil
	}

	var list []string
	list = append(list, "**Lista de Sequências:**")
	for _, seq := range res.Data.Items {
		list = append(list, fmt.Sprintf("• **%s** (Código: %d)", seq.SequenceName, seq.SequenceCode))
	}
	list = append(list, "\n💡 **Dica:** Use o código da sequência para criar leads diretamente nela.")

	return formatSuccess(fmt.Sprintf("%d sequência(s) de email encontrada(s)", len(res.Data.Items)),
		[]Detail{detail("Máquina", strconv.Itoa(input.MachineCode))},
		list...), nil
}

// Email marketing tool handlers

func (s *Server) handleCreateEmailContent(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, errResult := s.validatedArgs(global.ToolCreateEmailContent, request)
	if errResult != nil {
		return errResult, nil
	}

	var input emailmarketing.CreateEmailContentInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return formatError("criar o conteúdo do e-mail marketing", "Dados inválidos fornecidos", ""), nil
	}

	s.logToolCall(global.ToolCreateEmailContent, map[string]string{"prompt_len": strconv.Itoa(len(input.Prompt))})

	res := s.services.EmailMarketing.CreateEmailContent(ctx, input)
	if !res.IsSuccess {
		return formatAPIError(res.Message, "criar o conteúdo do e-mail marketing"), nil
	}
	if errResult := s.checkOutput(global.ToolCreateEmailContent, "criar o conteúdo do e-mail marketing", res.Data); errResult != nil {
		return errResult, nil
	}

	// The document goes out as an embedded resource so clients can load it
	// into the editor without re-parsing the chat text.
	uri := "leadlovers://email-content/" + uuid.NewString()
	return mcp.NewToolResultResource(
		"✅ **Conteúdo de e-mail criado com sucesso!**",
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     res.Data.FullJSON,
		}), nil
}
