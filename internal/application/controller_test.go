package application

import (
	"context"
	"testing"

	"github.com/opena2a/rpc-capabilities/internal/domain"
	"github.com/opena2a/rpc-capabilities/internal/infrastructure/store"
)

func denyingApproval(context.Context, domain.PermissionRequest) (map[string]domain.RequestedPermission, error) {
	return map[string]domain.RequestedPermission{}, nil
}

func TestNewController_RequiresApprovalFunc(t *testing.T) {
	_, err := NewController(Config{SafeMethods: []string{"net_version"}})
	if err == nil {
		t.Fatal("expected an error when RequestUserApproval is nil")
	}
}

func TestController_SafeMethodBypassesEverything(t *testing.T) {
	c, err := NewController(Config{
		SafeMethods:         []string{"net_version"},
		RequestUserApproval: denyingApproval,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &domain.Request{Method: "net_version"}
	res := &domain.Response{}
	nextCalled := false
	c.Middleware(domain.OriginMetadata{Origin: "o1"})(req, res, func(...domain.ReturnHandler) { nextCalled = true }, func(*domain.ProtocolError) {
		t.Fatal("safe method must never call end")
	})
	if !nextCalled {
		t.Fatal("expected safe method to call next")
	}
}

func TestController_InternalMethodsTakePriorityOverRestricted(t *testing.T) {
	c, err := NewController(Config{
		RestrictedMethods:   map[string]domain.RestrictedMethodEntry{"wallet_getPermissions": {}},
		MethodPrefix:        "wallet_",
		RequestUserApproval: denyingApproval,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &domain.Request{Method: "wallet_getPermissions"}
	res := &domain.Response{}
	c.Middleware(domain.OriginMetadata{Origin: "o1"})(req, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	if res.Error != nil {
		t.Fatalf("expected getPermissions to run and succeed, not fall through to the restricted router and be unauthorized: %v", res.Error)
	}
	if _, ok := res.Result.([]domain.Capability); !ok {
		t.Fatalf("expected a []domain.Capability result from getPermissions, got %#v", res.Result)
	}
}

func TestController_UnknownMethodIsUnauthorized(t *testing.T) {
	c, err := NewController(Config{
		RestrictedMethods:   map[string]domain.RestrictedMethodEntry{"readContacts": {}},
		RequestUserApproval: denyingApproval,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &domain.Request{Method: "writeContacts"}
	res := &domain.Response{}
	c.Middleware(domain.OriginMetadata{Origin: "o1"})(req, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	if res.Error == nil || res.Error.Code != domain.CodeUnauthorized {
		t.Fatalf("expected unauthorized for a method with no restricted key, got %v", res.Error)
	}
}

func TestController_NoCapabilityIsUnauthorized(t *testing.T) {
	c, err := NewController(Config{
		RestrictedMethods:   map[string]domain.RestrictedMethodEntry{"readContacts": {}},
		RequestUserApproval: denyingApproval,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &domain.Request{Method: "readContacts"}
	res := &domain.Response{}
	c.Middleware(domain.OriginMetadata{Origin: "o1"})(req, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	if res.Error == nil || res.Error.Code != domain.CodeUnauthorized {
		t.Fatalf("expected unauthorized for a restricted method with no granted capability, got %v", res.Error)
	}
}

func TestController_AuthorizedRestrictedMethodDispatches(t *testing.T) {
	permStore := NewPermissionStore(store.NewMemoryStateContainer(store.EmptyState()), nil)
	origin := domain.Origin("o1")
	permStore.AddPermissionsFor(origin, map[string]domain.Capability{
		"readContacts": domain.NewCapability("readContacts", origin, nil),
	})

	c, err := NewController(Config{
		RestrictedMethods: map[string]domain.RestrictedMethodEntry{
			"readContacts": {Method: echoMethod([]string{"alice"})},
		},
		RequestUserApproval: denyingApproval,
		Store:               permStore,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	req := &domain.Request{Method: "readContacts"}
	res := &domain.Response{}
	c.Middleware(domain.OriginMetadata{Origin: origin})(req, res, func(...domain.ReturnHandler) {}, func(err *domain.ProtocolError) {
		res.Error = err
	})
	if res.Error != nil {
		t.Fatalf("unexpected error: %v", res.Error)
	}
	list, ok := res.Result.([]string)
	if !ok || len(list) != 1 || list[0] != "alice" {
		t.Fatalf("expected dispatched result, got %#v", res.Result)
	}
}
