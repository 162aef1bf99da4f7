/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package leads

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

// fakeAPI scripts one response per verb and records calls.
type fakeAPI struct {
	getResp    leadlovers.Response
	postResp   leadlovers.Response
	putResp    leadlovers.Response
	deleteResp leadlovers.Response

	getCalls    int
	postCalls   int
	putCalls    int
	deleteCalls int

	lastQuery url.Values
	lastBody  any
}

func (f *fakeAPI) Get(_ context.Context, _ string, query url.Values) leadlovers.Response {
	f.getCalls++
	f.lastQuery = query
	return f.getResp
}

func (f *fakeAPI) Post(_ context.Context, _ string, body any) leadlovers.Response {
	f.postCalls++
	f.lastBody = body
	return f.postResp
}

func (f *fakeAPI) Put(_ context.Context, _ string, body any) leadlovers.Response {
	f.putCalls++
	f.lastBody = body
	return f.putResp
}

func (f *fakeAPI) Delete(_ context.Context, _ string, query url.Values) leadlovers.Response {
	f.deleteCalls++
	f.lastQuery = query
	return f.deleteResp
}

func ok(body string) leadlovers.Response {
	return leadlovers.Response{IsSuccess: true, StatusCode: 200, Data: json.RawMessage(body)}
}

func TestGetLeadsSuccess(t *testing.T) {
	api := &fakeAPI{getResp: ok(`{"Data":[{"Code":7,"Email":"a@b.com","Name":"Ana"}],"Links":{"Self":null,"Next":"/Leads?page=1","Prev":null}}`)}
	svc := NewService(api, logging.New())

	res := svc.GetLeads(context.Background(), GetLeadsInput{Page: 0})
	if !res.IsSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if len(res.Data.Data) != 1 || res.Data.Data[0].Email != "a@b.com" {
		t.Errorf("unexpected payload: %+v", res.Data)
	}
	if res.Data.Links.Next == nil {
		t.Error("Next cursor lost in decoding")
	}
}

func TestGetLeadsFailureKeepsShapedPayload(t *testing.T) {
	api := &fakeAPI{getResp: leadlovers.Response{StatusCode: 502, Err: "upstream returned 502 Bad Gateway"}}
	svc := NewService(api, logging.New())

	res := svc.GetLeads(context.Background(), GetLeadsInput{Page: 0})
	if res.IsSuccess {
		t.Fatal("502 must not be a success")
	}
	if res.Data.Data == nil {
		t.Error("failure payload must keep an empty, non-nil lead slice")
	}
}

func TestCreateLeadRejectsEmbeddedErrorMessage(t *testing.T) {
	// HTTP 200 but the Message text signals a domain rejection.
	api := &fakeAPI{postResp: ok(`{"Message":"Erro: email já existe"}`)}
	svc := NewService(api, logging.New())

	res := svc.CreateLead(context.Background(), CreateLeadInput{
		Name: "Ana", Email: "a@b.com", MachineCode: 1, EmailSequenceCode: 2, SequenceLevelCode: 3,
	})
	if res.IsSuccess {
		t.Fatal("embedded error message must override transport success")
	}
	if res.Message != "Erro ao criar lead: Erro: email já existe" {
		t.Errorf("unexpected message: %q", res.Message)
	}
}

func TestCreateLeadSuccess(t *testing.T) {
	api := &fakeAPI{postResp: ok(`{"Message":"Lead cadastrado com sucesso"}`)}
	svc := NewService(api, logging.New())

	res := svc.CreateLead(context.Background(), CreateLeadInput{
		Name: "Ana", Email: "a@b.com", MachineCode: 1, EmailSequenceCode: 2, SequenceLevelCode: 3,
	})
	if !res.IsSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if res.Data.Message != "Lead cadastrado com sucesso" {
		t.Errorf("unexpected payload message: %q", res.Data.Message)
	}
}

func TestUpdateLeadStatusCodeDecides(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		success bool
	}{
		{"accepted", `{"StatusCode":"SUCCESS","Message":"ok","Email":"a@b.com"}`, true},
		{"accepted variant", `{"StatusCode":"NoContent","Message":""}`, true},
		{"rejected", `{"StatusCode":"NotFound","Message":"Lead não encontrado"}`, false},
		{"error", `{"StatusCode":"ERROR","Message":"Falha interna"}`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeAPI{putResp: ok(tt.body)}
			svc := NewService(api, logging.New())

			res := svc.UpdateLead(context.Background(), UpdateLeadInput{Email: "a@b.com"})
			if res.IsSuccess != tt.success {
				t.Errorf("IsSuccess = %v, want %v (%s)", res.IsSuccess, tt.success, tt.body)
			}
		})
	}
}

func TestUpdateLeadTransportFailureShapesPayload(t *testing.T) {
	api := &fakeAPI{putResp: leadlovers.Response{Err: "request failed: connection refused"}}
	svc := NewService(api, logging.New())

	res := svc.UpdateLead(context.Background(), UpdateLeadInput{Email: "a@b.com"})
	if res.IsSuccess {
		t.Fatal("transport failure must not be a success")
	}
	if res.Data.StatusCode != "ERROR" {
		t.Errorf("failure payload StatusCode = %q, want ERROR", res.Data.StatusCode)
	}
}

func TestDeleteLeadOmitsAbsentIdentifiers(t *testing.T) {
	api := &fakeAPI{deleteResp: ok(`{"Message":"Lead removido com sucesso"}`)}
	svc := NewService(api, logging.New())

	res := svc.DeleteLead(context.Background(), DeleteLeadInput{MachineCode: 10, SequenceCode: 20, Email: "a@b.com"})
	if !res.IsSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if api.lastQuery.Get("email") != "a@b.com" {
		t.Error("email identifier missing from query")
	}
	if _, present := api.lastQuery["phone"]; present {
		t.Error("absent phone must not appear in the query at all")
	}
}

func TestDeleteLeadClassifiesEmbeddedError(t *testing.T) {
	api := &fakeAPI{deleteResp: ok(`{"Message":"Falha ao remover: lead inexistente"}`)}
	svc := NewService(api, logging.New())

	res := svc.DeleteLead(context.Background(), DeleteLeadInput{MachineCode: 1, SequenceCode: 1, Phone: "+5541999999999"})
	if res.IsSuccess {
		t.Fatal("embedded failure text must override transport success")
	}
}
