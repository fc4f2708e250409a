package application

import "strings"

// GetMethodKeyFor resolves a requested method name to the restricted-method
// key that authorizes it. If method is itself a key in restricted, it is
// returned unchanged. Otherwise method is split on "_" and prefixes are
// accumulated with their trailing underscore — "eth_plugin_foo" tries
// "eth_", then "eth_plugin_" — and the first accumulated prefix found in
// restricted is returned. If no prefix matches, GetMethodKeyFor returns "",
// signalling no such restricted method.
func GetMethodKeyFor(method string, restricted map[string]bool) string {
	if restricted[method] {
		return method
	}
	if idx := strings.Index(method, "_"); idx <= 0 {
		return ""
	}
	segments := strings.Split(method, "_")
	prefix := ""
	for _, seg := range segments[:len(segments)-1] {
		prefix += seg + "_"
		if restricted[prefix] {
			return prefix
		}
	}
	return ""
}

// InternalMethodNames returns the getPermissions/requestPermissions method
// names under prefix.
func InternalMethodNames(prefix string) (getPermissions, requestPermissions string) {
	return prefix + "getPermissions", prefix + "requestPermissions"
}
