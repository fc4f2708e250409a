package caveats

import (
	"testing"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

func runStage(t *testing.T, stage domain.MiddlewareFunc, req *domain.Request, res *domain.Response) {
	t.Helper()
	done := false
	stage(req, res, func(onReturn ...domain.ReturnHandler) {
		done = true
		if len(onReturn) > 0 {
			onReturn[0]()
		}
	}, func(err *domain.ProtocolError) {
		done = true
		res.Error = err
	})
	if !done {
		t.Fatal("stage never called next or end")
	}
}

func TestFilterParamsGenerator_Admits(t *testing.T) {
	gen, _ := filterParamsGenerator(domain.Caveat{Type: "filterParams", Value: []any{map[string]any{"to": "0xA", "value": float64(1)}}})
	req := &domain.Request{Params: []any{map[string]any{"to": "0xA"}}}
	res := &domain.Response{}
	runStage(t, gen, req, res)
	if res.Error != nil {
		t.Fatalf("expected admitted request, got error: %v", res.Error)
	}
}

func TestFilterParamsGenerator_Rejects(t *testing.T) {
	gen, _ := filterParamsGenerator(domain.Caveat{Type: "filterParams", Value: []any{map[string]any{"to": "0xA"}}})
	req := &domain.Request{Params: []any{map[string]any{"to": "0xB"}}}
	res := &domain.Response{}
	runStage(t, gen, req, res)
	if res.Error == nil || res.Error.Code != domain.CodeInvalidParams {
		t.Fatalf("expected invalid params error, got %v", res.Error)
	}
}

func TestFilterResponseGenerator_IntersectsOnReturn(t *testing.T) {
	gen, _ := filterResponseGenerator(domain.Caveat{Type: "filterResponse", Value: []any{"0xA", "0xB"}})
	req := &domain.Request{}
	res := &domain.Response{}

	var onReturn domain.ReturnHandler
	gen(req, res, func(handlers ...domain.ReturnHandler) {
		if len(handlers) > 0 {
			onReturn = handlers[0]
		}
		res.Result = []any{"0xA", "0xB", "0xC"}
	}, func(*domain.ProtocolError) {})

	if onReturn == nil {
		t.Fatal("expected filterResponse to register a return handler")
	}
	onReturn()

	list, ok := res.Result.([]any)
	if !ok || len(list) != 2 {
		t.Fatalf("expected result pruned to [0xA 0xB], got %#v", res.Result)
	}
}

func TestFilterResponseGenerator_SkipsOnError(t *testing.T) {
	gen, _ := filterResponseGenerator(domain.Caveat{Type: "filterResponse", Value: []any{"0xA"}})
	req := &domain.Request{}
	res := &domain.Response{}

	var onReturn domain.ReturnHandler
	gen(req, res, func(handlers ...domain.ReturnHandler) {
		onReturn = handlers[0]
		res.Error = domain.ErrInternal(errString("boom"))
	}, func(*domain.ProtocolError) {})

	onReturn()
	if res.Result != nil {
		t.Fatalf("expected result left untouched on error, got %#v", res.Result)
	}
}

type errString string

func (e errString) Error() string { return string(e) }
