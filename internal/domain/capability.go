// Package domain holds the capability-middleware core: the immutable
// capability record, the caveat value type and its canonical ordering,
// the protocol error taxonomy, and the request/response pipeline that
// the caveat registry and the restricted-method executor run through.
package domain

import (
	"encoding/json"
	"reflect"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CapabilityContextURI is the constant JSON-LD framing tag stamped on
// every emitted capability.
const CapabilityContextURI = "https://opena2a.org/ns/rpc-capabilities/v1"

// Origin identifies a requester — the unit of authorization.
type Origin string

// OriginMetadata carries the requester's identity plus a request-correlation
// token. ID is assigned by the caller when present; the permission-request
// workflow synthesizes one when it is missing.
type OriginMetadata struct {
	Origin Origin `json:"origin"`
	ID     string `json:"id,omitempty"`
}

// Caveat constrains a capability. Type names a generator registered in the
// caveat registry; Value is opaque data that generator consumes.
type Caveat struct {
	Type  string `json:"type"`
	Value any    `json:"value"`
}

// Capability is an immutable record granting one origin the right to invoke
// one method, optionally constrained by caveats in canonical order.
type Capability struct {
	Context          []string `json:"@context"`
	ParentCapability string   `json:"parentCapability"`
	Invoker          Origin   `json:"invoker"`
	ID               string   `json:"id"`
	Date             int64    `json:"date"`
	Caveats          []Caveat `json:"caveats,omitempty"`
}

// NewCapability stamps a fresh id, the creation time in epoch milliseconds,
// and the fixed @context, and canonicalizes the caveat order.
func NewCapability(method string, invoker Origin, caveats []Caveat) Capability {
	return Capability{
		Context:          []string{CapabilityContextURI},
		ParentCapability: method,
		Invoker:          invoker,
		ID:               uuid.NewString(),
		Date:             time.Now().UnixMilli(),
		Caveats:          SortCaveats(caveats),
	}
}

// DomainEntry is the per-origin capability table. At most one capability per
// ParentCapability is ever stored for a given origin.
type DomainEntry struct {
	Permissions []Capability `json:"permissions"`
}

// RequestedPermission is one entry of a requestPermissions payload: the
// caveats the requester wants the granted capability constrained by.
type RequestedPermission struct {
	Caveats []Caveat `json:"caveats,omitempty"`
}

// PermissionRequest is a pending proposal to grant one or more capabilities
// to Origin, held in the store's queue while user approval is outstanding.
type PermissionRequest struct {
	Origin      Origin                          `json:"origin"`
	Metadata    OriginMetadata                  `json:"metadata"`
	Permissions map[string]RequestedPermission  `json:"permissions"`
	RequestedAt time.Time                       `json:"requestedAt"`
}

// normalizeValue round-trips v through JSON so that values built from Go
// literals (int) and values decoded from a wire payload (float64) compare
// and serialize identically.
func normalizeValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// canonicalKey produces a deterministic sort key for a caveat value.
// encoding/json sorts object keys when marshaling a map, so this is a
// sufficient (not necessarily minimal) canonical serialization.
func canonicalKey(v any) string {
	b, err := json.Marshal(normalizeValue(v))
	if err != nil {
		return ""
	}
	return string(b)
}

// SortCaveats returns a copy of list in canonical order: ascending by Type,
// and within equal Type by a stable ordering of the canonical serialization
// of Value. Idempotent: sorting an already-sorted list is a no-op.
func SortCaveats(list []Caveat) []Caveat {
	out := make([]Caveat, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return canonicalKey(out[i].Value) < canonicalKey(out[j].Value)
	})
	return out
}

// CaveatEqual reports whether two caveats have equal Type and structurally
// deep-equal Value payloads.
func CaveatEqual(a, b Caveat) bool {
	if a.Type != b.Type {
		return false
	}
	return reflect.DeepEqual(normalizeValue(a.Value), normalizeValue(b.Value))
}

// CaveatsCanonicalEqual reports whether two already-canonical caveat
// sequences are equal element-wise, which for two canonically-sorted lists
// is equivalent to multiset equality. Absence on both sides (both nil/empty)
// counts as equal; a length mismatch never does.
func CaveatsCanonicalEqual(a, b []Caveat) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !CaveatEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
