// Package markdown extracts initiative metadata from README documents and
// renders markdown to HTML.
package markdown

import "strings"

const (
	titlePrefix     = "# "
	typeMarker      = "**Type:** "
	statusMarker    = "**Status:** "
	deadlineMarker  = "**Target deadline:** "
	idMarker        = "**Initiative ID:** "
	blockersHeading = "## Blockers / Risks"
	sectionPrefix   = "##"
)

// Metadata is the structured view of a README. Missing fields are zero.
type Metadata struct {
	Name         string `json:"name"`
	InitiativeID string `json:"initiativeId,omitempty"`
	Type         string `json:"type"`
	Status       string `json:"status"`
	Deadline     string `json:"deadline"`
	Blockers     int    `json:"blockers"`
}

// ParseMetadata scans a README line by line. It never fails; fields whose
// anchor is absent (or carries no text) are left empty.
func ParseMetadata(readme string) Metadata {
	lines := splitLines(readme)

	var meta Metadata
	var haveName, haveType, haveStatus, haveDeadline, haveID bool
	for _, line := range lines {
		if !haveName && strings.HasPrefix(line, titlePrefix) && len(line) > len(titlePrefix) {
			meta.Name = line[len(titlePrefix):]
			haveName = true
		}
		if !haveType {
			if value, ok := labeledValue(line, typeMarker); ok {
				meta.Type = stripCommentMarkers(value)
				haveType = true
			}
		}
		if !haveStatus {
			meta.Status, haveStatus = labeledValue(line, statusMarker)
		}
		if !haveDeadline {
			meta.Deadline, haveDeadline = labeledValue(line, deadlineMarker)
		}
		if !haveID {
			meta.InitiativeID, haveID = labeledValue(line, idMarker)
		}
	}
	meta.Blockers = countBlockers(lines)
	return meta
}

// labeledValue returns the text following marker on line, requiring at
// least one character after it.
func labeledValue(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx < 0 {
		return "", false
	}
	value := line[idx+len(marker):]
	if value == "" {
		return "", false
	}
	return value, true
}

func stripCommentMarkers(value string) string {
	value = strings.ReplaceAll(value, "<!--", "")
	value = strings.ReplaceAll(value, "-->", "")
	return strings.TrimSpace(value)
}

// countBlockers counts list items between the blockers heading and the next
// "##" line. A bare "-" and horizontal rules ("---") are not blockers.
func countBlockers(lines []string) int {
	start := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == blockersHeading {
			start = i + 1
			break
		}
	}
	if start < 0 {
		return 0
	}

	count := 0
	for _, line := range lines[start:] {
		if strings.HasPrefix(line, sectionPrefix) {
			break
		}
		item := strings.TrimSpace(line)
		if !strings.HasPrefix(item, "-") || len(item) <= 1 {
			continue
		}
		if isThematicBreak(item) {
			continue
		}
		count++
	}
	return count
}

func isThematicBreak(item string) bool {
	return strings.Trim(item, "- ") == ""
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
