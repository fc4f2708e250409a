package application

import (
	"testing"

	"github.com/opena2a/rpc-capabilities/internal/application/caveats"
	"github.com/opena2a/rpc-capabilities/internal/domain"
)

func newTestExecutor(methods map[string]domain.RestrictedMethodEntry) *Executor {
	return NewExecutor(caveats.NewRegistry(), methods)
}

func echoMethod(result any) domain.MiddlewareFunc {
	return func(req *domain.Request, res *domain.Response, next domain.NextFunc, end domain.EndFunc) {
		res.Result = result
		next()
	}
}

func TestExecutor_UnknownMethodKey(t *testing.T) {
	e := newTestExecutor(map[string]domain.RestrictedMethodEntry{})
	res := &domain.Response{}
	ended := false
	e.Execute("", domain.Capability{}, &domain.Request{}, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		ended = true
		res.Error = err
	})
	if !ended || res.Error == nil || res.Error.Code != domain.CodeMethodNotFound {
		t.Fatalf("expected METHOD_NOT_FOUND, got %v", res.Error)
	}
}

func TestExecutor_NoCaveatsDispatchesDirectly(t *testing.T) {
	methods := map[string]domain.RestrictedMethodEntry{
		"readContacts": {Method: echoMethod([]string{"alice"})},
	}
	e := newTestExecutor(methods)
	res := &domain.Response{}
	ended := false
	e.Execute("readContacts", domain.Capability{ParentCapability: "readContacts"}, &domain.Request{}, res,
		func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
			ended = true
			res.Error = err
		})
	if !ended {
		t.Fatal("expected executor to finalize via end")
	}
	if res.Error != nil {
		t.Fatalf("unexpected error: %v", res.Error)
	}
	list, ok := res.Result.([]string)
	if !ok || len(list) != 1 || list[0] != "alice" {
		t.Fatalf("expected terminal method result, got %#v", res.Result)
	}
}

func TestExecutor_UnknownCaveatTypeFailsClosed(t *testing.T) {
	methods := map[string]domain.RestrictedMethodEntry{
		"readContacts": {Method: echoMethod("unreachable")},
	}
	e := newTestExecutor(methods)
	perm := domain.Capability{
		ParentCapability: "readContacts",
		Caveats:          []domain.Caveat{{Type: "notRegistered"}},
	}
	res := &domain.Response{}
	e.Execute("readContacts", perm, &domain.Request{}, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	if res.Error == nil || res.Error.Code != domain.CodeInvalidParams {
		t.Fatalf("expected invalid params, got %v", res.Error)
	}
	if res.Result != nil {
		t.Fatal("terminal method must never run when a caveat type is unknown")
	}
}

func TestExecutor_FilterResponseCaveatPrunesResult(t *testing.T) {
	methods := map[string]domain.RestrictedMethodEntry{
		"readAccounts": {Method: echoMethod([]any{"0xA", "0xB", "0xC"})},
	}
	e := newTestExecutor(methods)
	perm := domain.Capability{
		ParentCapability: "readAccounts",
		Caveats:          []domain.Caveat{{Type: "filterResponse", Value: []any{"0xA", "0xB"}}},
	}
	res := &domain.Response{}
	e.Execute("readAccounts", perm, &domain.Request{}, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	list, ok := res.Result.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected result pruned to 2 entries, got %#v", res.Result)
	}
}
