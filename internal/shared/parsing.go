package shared

import "strings"

// ParseMultilineRSAKey reconstructs PEM key material from a semicolon-joined
// single-line value, turning each semicolon into a newline. The deployment
// environment cannot store literal newlines in one configuration value.
//
// Returns ok=false for an empty value or one without any semicolons.
func ParseMultilineRSAKey(key string) (string, bool) {
	if len(key) == 0 || !strings.Contains(key, ";") {
		return "", false
	}
	return strings.ReplaceAll(key, ";", "\n"), true
}
