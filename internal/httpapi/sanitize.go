package httpapi

import "strings"

// sanitizeForLogging strips control characters and truncates a
// caller-influenced string before it reaches a log line, preventing
// log injection via e.g. a forged header value (spec §6.4, grounded
// on original_source/plinko-reference/utils.py's
// sanitize_for_logging).
func sanitizeForLogging(s string, maxLen int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= 32 && r <= 126 {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if len(out) > maxLen {
		return out[:maxLen-3] + "..."
	}
	return out
}
