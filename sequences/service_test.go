/******************************************************************************
 * Copyright (c) 2025-2026 LeadLovers                                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package sequences

import (
	"context"
	"encoding/json"
	"net/url"
	"testing"

	"github.com/leadlovers/leadlovers-mcp/leadlovers"
	"github.com/leadlovers/leadlovers-mcp/logging"
)

type fakeAPI struct {
	resp      leadlovers.Response
	lastQuery url.Values
}

func (f *fakeAPI) Get(_ context.Context, _ string, query url.Values) leadlovers.Response {
	f.lastQuery = query
	return f.resp
}

func (f *fakeAPI) Post(context.Context, string, any) leadlovers.Response {
	panic("sequences service must never POST")
}

func (f *fakeAPI) Put(context.Context, string, any) leadlovers.Response {
	panic("sequences service must never PUT")
}

func (f *fakeAPI) Delete(context.Context, string, url.Values) leadlovers.Response {
	panic("sequences service must never DELETE")
}

func TestGetEmailSequences(t *testing.T) {
	api := &fakeAPI{resp: leadlovers.Response{IsSuccess: true, StatusCode: 200,
		Data: json.RawMessage(`{"Items":[{"SequenceCode":101,"SequenceName":"Welcome Series"}]}`)}}
	svc := NewService(api, logging.New())

	res := svc.GetEmailSequences(context.Background(), GetEmailSequencesInput{MachineCode: 42})
	if !res.IsSuccess {
		t.Fatalf("expected success, got %+v", res)
	}
	if api.lastQuery.Get("machineCode") != "42" {
		t.Errorf("machineCode = %q, want 42", api.lastQuery.Get("machineCode"))
	}
	if len(res.Data.Items) != 1 {
		t.Fatalf("expected one sequence, got %d", len(res.Data.Items))
	}
	if res.Data.Items[0].SequenceCode != 101 || res.Data.Items[0].SequenceName != "Welcome Series" {
		t.Errorf("unexpected item: %+v", res.Data.Items[0])
	}
}

func TestGetEmailSequencesEmptyMachineIsSuccess(t *testing.T) {
	api := &fakeAPI{resp: leadlovers.Response{IsSuccess: true, StatusCode: 200,
		Data: json.RawMessage(`{"Items":[]}`)}}
	svc := NewService(api, logging.New())

	res := svc.GetEmailSequences(context.Background(), GetEmailSequencesInput{MachineCode: 7})
	if !res.IsSuccess {
		t.Fatal("empty sequence list is still a success")
	}
	if res.Data.Items == nil || len(res.Data.Items) != 0 {
		t.Errorf("want empty non-nil items, got %+v", res.Data.Items)
	}
}

func TestGetEmailSequencesUpstreamFailure(t *testing.T) {
	api := &fakeAPI{resp: leadlovers.Response{StatusCode: 401, Err: "upstream returned 401 Unauthorized"}}
	svc := NewService(api, logging.New())

	res := svc.GetEmailSequences(context.Background(), GetEmailSequencesInput{MachineCode: 7})
	if res.IsSuccess {
		t.Fatal("401 must not be a success")
	}
	if res.Data.Items == nil {
		t.Error("failure payload must keep an empty, non-nil item slice")
	}
}
