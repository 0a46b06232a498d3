package blob

import "strings"

// ResolveKey turns a caller-supplied key into a canonical storage key:
// forward slashes only, no duplicate slashes, no leading or trailing
// slash, prefixed with basePath when one is configured. The function is
// total over string input; empty in yields empty out.
func ResolveKey(basePath, rawKey string) string {
	key := normalizeKey(rawKey)
	if basePath == "" {
		return key
	}
	return normalizeKey(basePath + "/" + key)
}

func normalizeKey(key string) string {
	key = strings.ReplaceAll(key, "\\", "/")
	for strings.Contains(key, "//") {
		key = strings.ReplaceAll(key, "//", "/")
	}
	key = strings.TrimPrefix(key, "/")
	key = strings.TrimSuffix(key, "/")
	return key
}
