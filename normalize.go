package proaudio

import "strings"

// statusTokens are the sink/source state words backends append to descriptions
var statusTokens = []string{"SUSPENDED", "RUNNING", "IDLE"}

// CleanDescription strips backend state tokens and dangling "-" separators
// from a raw device description. It never fails and is idempotent.
func CleanDescription(raw string) string {
	s := raw
	for {
		// each pass either shortens s or leaves it unchanged
		next := cleanOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func cleanOnce(s string) string {
	for _, token := range statusTokens {
		s = strings.ReplaceAll(s, token, "")
	}
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "-")
	return strings.TrimSpace(s)
}
