package initiative

import (
	"fmt"
	"strings"
)

const readmeTemplate = `# %s

## Overview
- **Initiative ID:** %s
- **Type:** %s
- **Status:** Idea
- **Start date:**
- **Target deadline:**
- **Deadline type:** <!-- Soft | Commercial | Contractual | Regulatory -->

**One-liner:**
<!-- What problem does this solve and why does it matter? (1-2 lines) -->

---

## Ownership
- **Sponsor:** <!-- Name - Area -->
- **Requestor:** <!-- Who raised the need -->
- **Product Owner:**
- **Tech / Staff Owner:**

**Teams involved:**
-

---

## Stakeholders & Approvals
- [ ] Product
- [ ] Business
- [ ] Risk
- [ ] Legal
- [ ] Security
- [ ] Compliance
- [ ] Platform Architecture

---

## High-level Milestones
- [ ] Discovery completed
- [ ] Architecture aligned
- [ ] Risk / Legal sign-off
- [ ] Development started
- [ ] Rollout
- [ ] Post-launch review

---

## Blockers / Risks
-

---

## Final Sign-offs
- [ ] Product – Name – Date
- [ ] Tech / Platform – Name – Date
- [ ] Risk / Legal – Name – Date

---

## References
`

const readmeReferences = "- Links & artifacts → `links.md`\n" +
	"- Notes & decisions → `notes.md`\n" +
	"- Communications log → `comms.md`\n"

const notesTemplate = `# Initiative Notes — %s

<!-- Append-only log. Never edit above, only add below. -->

## %s
- Initiative created.
`

const commsTemplate = `# Communications Log — %s

| Date | Channel | Link | Context |
|------|---------|------|---------|
`

const linksTemplate = `# Important Links — %s

## Docs
- PRD:
- Tech Spec / RFC:
- Architecture Diagram:
- Executive Deck:

## Tracking
- Jira Epic(s):
- Roadmap item:

## Repos
-
`

// typePlaceholder lists the configured types as an HTML comment so an
// unfilled README still shows the choices.
func typePlaceholder(types []string) string {
	return "<!-- " + strings.Join(types, " | ") + " -->"
}

// scaffold returns the initial content of every document for a new initiative.
func scaffold(id, name, initiativeType string, types []string, today string) map[File]string {
	if initiativeType == "" {
		initiativeType = typePlaceholder(types)
	}
	return map[File]string{
		FileReadme: fmt.Sprintf(readmeTemplate, name, id, initiativeType) + readmeReferences,
		FileNotes:  fmt.Sprintf(notesTemplate, id, today),
		FileComms:  fmt.Sprintf(commsTemplate, id),
		FileLinks:  fmt.Sprintf(linksTemplate, id),
	}
}
