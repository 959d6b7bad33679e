package export

import "strings"

const maxNameLen = 60

// downloadName builds a lowercase ASCII file stem from the initiative name,
// falling back to the id when the name has nothing usable. Runs of other
// characters collapse into a single hyphen.
func downloadName(name, id string) string {
	for _, candidate := range []string{name, id} {
		if stem := fileStem(candidate); stem != "" {
			return stem
		}
	}
	return "initiative"
}

func fileStem(s string) string {
	var b strings.Builder
	gap := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if gap && b.Len() > 0 {
				b.WriteByte('-')
			}
			gap = false
			b.WriteRune(r)
			continue
		}
		gap = true
	}
	stem := b.String()
	if len(stem) > maxNameLen {
		stem = stem[:maxNameLen]
	}
	return strings.TrimRight(stem, "-")
}
