package caveats

import (
	"testing"

	"github.com/opena2a/rpc-capabilities/internal/domain"
)

func TestNewRegistry_BuiltinsRegistered(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Generator("filterParams"); !ok {
		t.Fatal("expected filterParams to be registered")
	}
	if _, ok := r.Generator("filterResponse"); !ok {
		t.Fatal("expected filterResponse to be registered")
	}
}

func TestRegistry_UnknownTypeFailsClosed(t *testing.T) {
	r := NewRegistry()
	if _, ok := r.Generator("someUnknownCaveat"); ok {
		t.Fatal("expected unknown caveat type to report false, not a no-op generator")
	}
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register("custom", func(domain.Caveat) (domain.MiddlewareFunc, error) {
		called = true
		return func(*domain.Request, *domain.Response, domain.NextFunc, domain.EndFunc) {}, nil
	})

	gen, ok := r.Generator("custom")
	if !ok {
		t.Fatal("expected custom generator to be registered")
	}
	if _, err := gen(domain.Caveat{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Fatal("expected generator to have run")
	}
}
