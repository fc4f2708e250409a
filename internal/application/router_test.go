package application

import "testing"

func restrictedSet(methods ...string) map[string]bool {
	set := make(map[string]bool, len(methods))
	for _, m := range methods {
		set[m] = true
	}
	return set
}

func TestGetMethodKeyFor_ExactMatch(t *testing.T) {
	restricted := restrictedSet("readContacts")
	if got := GetMethodKeyFor("readContacts", restricted); got != "readContacts" {
		t.Fatalf("expected exact match, got %q", got)
	}
}

func TestGetMethodKeyFor_NamespaceResolution(t *testing.T) {
	restricted := restrictedSet("plugin_")
	if got := GetMethodKeyFor("plugin_foo_bar", restricted); got != "plugin_" {
		t.Fatalf("expected plugin_, got %q", got)
	}
}

func TestGetMethodKeyFor_FirstAccumulatedMatchWins(t *testing.T) {
	// Per spec.md §9(a): prefix segments accumulate shortest-first, and the
	// first match along that accumulation wins even if a longer registered
	// prefix would also match.
	restricted := restrictedSet("plugin_", "plugin_foo_")
	if got := GetMethodKeyFor("plugin_foo_bar", restricted); got != "plugin_" {
		t.Fatalf("expected the shortest accumulated match plugin_, got %q", got)
	}
}

func TestGetMethodKeyFor_ExactBeatsPrefix(t *testing.T) {
	restricted := restrictedSet("plugin_foo", "plugin_")
	if got := GetMethodKeyFor("plugin_foo", restricted); got != "plugin_foo" {
		t.Fatalf("expected exact match plugin_foo over prefix plugin_, got %q", got)
	}
}

func TestGetMethodKeyFor_NoMatch(t *testing.T) {
	restricted := restrictedSet("readContacts")
	if got := GetMethodKeyFor("writeContacts", restricted); got != "" {
		t.Fatalf("expected no match, got %q", got)
	}
}

func TestGetMethodKeyFor_LeadingUnderscoreNeverMatches(t *testing.T) {
	restricted := restrictedSet("_")
	if got := GetMethodKeyFor("_foo", restricted); got != "" {
		t.Fatalf("leading underscore is not \"after position 0\", expected no match, got %q", got)
	}
}

func TestGetMethodKeyFor_IgnoresSafeMethods(t *testing.T) {
	// This property is enforced by Controller.Middleware checking
	// safeMethods first; GetMethodKeyFor itself has no notion of safe
	// methods, so a method present in both sets still resolves here.
	restricted := restrictedSet("net_version")
	if got := GetMethodKeyFor("net_version", restricted); got != "net_version" {
		t.Fatalf("expected net_version to resolve as restricted key, got %q", got)
	}
}
