// Package headers parses the SCOUT_EXTRA_HEADERS request-header overrides
// applied on top of every marketplace page load.
package headers

import (
	"strings"
)

// Parse converts "Name: Value" entries into a header map. Entries without a
// colon or with a blank name are dropped; a later entry for the same name
// wins. Only the first colon splits, so values carrying colons of their own
// (authorization schemes, URLs) pass through intact.
func Parse(entries []string) map[string]string {
	m := make(map[string]string, len(entries))
	for _, entry := range entries {
		name, value, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			continue
		}
		m[name] = strings.TrimSpace(value)
	}
	return m
}
