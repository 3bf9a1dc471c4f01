package domain

import "strings"

// SanitizeText strips control characters, collapses whitespace runs and caps
// the result at maxLen runes.
func SanitizeText(value string, maxLen int) string {
	var b strings.Builder
	b.Grow(len(value))
	for _, r := range value {
		if r < 0x20 || r == 0x7F {
			b.WriteRune(' ')
			continue
		}
		b.WriteRune(r)
	}
	cleaned := strings.Join(strings.Fields(b.String()), " ")
	runes := []rune(cleaned)
	if maxLen > 0 && len(runes) > maxLen {
		return string(runes[:maxLen])
	}
	return cleaned
}

// SanitizeStringList sanitizes each entry, drops empties and duplicates, and
// caps the list at maxItems.
func SanitizeStringList(values []string, maxItems, itemMaxLen int) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		cleaned := SanitizeText(v, itemMaxLen)
		if cleaned == "" {
			continue
		}
		if _, dup := seen[cleaned]; dup {
			continue
		}
		seen[cleaned] = struct{}{}
		out = append(out, cleaned)
		if len(out) == maxItems {
			break
		}
	}
	return out
}
