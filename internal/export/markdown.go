// internal/export/markdown.go
// Final report writer. Consumes the read-only snapshot the core emits after
// completion; the core itself performs no file I/O.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"podium/internal/state"
)

// BuildReport renders a completed debate as markdown
func BuildReport(snap state.Snapshot) string {
	var sb strings.Builder

	sb.WriteString("# Debate: ")
	sb.WriteString(snap.Topic)
	sb.WriteString("\n\n---\n\n")

	fmt.Fprintf(&sb, "**Debate ID:** `%s`\n\n", snap.ID)
	fmt.Fprintf(&sb, "**Participants:** %s\n\n", strings.Join(snap.Participants, ", "))
	fmt.Fprintf(&sb, "**Rounds:** %d/%d\n\n", snap.Rounds, snap.MaxRounds)
	if !snap.StartedAt.IsZero() {
		fmt.Fprintf(&sb, "**Started:** %s\n\n", snap.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if !snap.EndedAt.IsZero() {
		fmt.Fprintf(&sb, "**Ended:** %s\n\n", snap.EndedAt.Format("2006-01-02 15:04:05"))
	}

	sb.WriteString("---\n\n## Transcript\n\n")

	lastRound := -1
	for _, t := range snap.Turns {
		if t.Round != lastRound {
			fmt.Fprintf(&sb, "### Round %d\n\n", t.Round+1)
			lastRound = t.Round
		}
		fmt.Fprintf(&sb, "**%s** *(%s)*\n\n", t.AgentID, t.Timestamp.Format("15:04:05"))
		for _, line := range strings.Split(strings.TrimSpace(t.Argument), "\n") {
			sb.WriteString("> ")
			sb.WriteString(line)
			sb.WriteString("\n")
		}
		sb.WriteString("\n")
	}

	if v := snap.Verdict; v != nil {
		sb.WriteString("---\n\n## Verdict\n\n")
		fmt.Fprintf(&sb, "**Outcome:** %s\n\n", v.Outcome)
		if v.Winner != "" {
			fmt.Fprintf(&sb, "**Winner:** %s\n\n", v.Winner)
		}
		if len(v.Scores) > 0 {
			sb.WriteString("**Scores:**\n\n")
			ids := make([]string, 0, len(v.Scores))
			for id := range v.Scores {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(&sb, "- %s: %.1f\n", id, v.Scores[id])
			}
			sb.WriteString("\n")
		}
		if v.Rationale != "" {
			sb.WriteString("**Rationale:**\n\n")
			sb.WriteString(v.Rationale)
			sb.WriteString("\n\n")
		}
	}

	sb.WriteString("---\n\n## Diagnostics\n\n")
	fmt.Fprintf(&sb, "- Accepted arguments: %d\n", len(snap.Turns))
	fmt.Fprintf(&sb, "- Rejected candidates: %d\n", len(snap.Rejections))
	contributions := make(map[string]int)
	for _, t := range snap.Turns {
		contributions[t.AgentID]++
	}
	for _, p := range snap.Participants {
		fmt.Fprintf(&sb, "- %s: %d turns, %d failures\n", p, contributions[p], snap.TurnFailures[p])
	}

	if len(snap.Rejections) > 0 {
		sb.WriteString("\n### Rejected candidates\n\n")
		for _, r := range snap.Rejections {
			fmt.Fprintf(&sb, "- round %d, %s (%s): %s\n", r.Round+1, r.AgentID, r.Reason, excerpt(r.Text))
		}
	}

	fmt.Fprintf(&sb, "\n---\n\n*Exported from Podium on %s*\n", time.Now().Format("2006-01-02 15:04:05"))

	return sb.String()
}

// WriteReport writes the report under baseDir/reports and returns the path
func WriteReport(snap state.Snapshot, baseDir string) (string, error) {
	datePart := time.Now().Format("2006-01-02")
	namePart := sanitizeFilename(snap.Topic)
	filename := fmt.Sprintf("%s-%s.md", datePart, namePart)

	reportsDir := filepath.Join(baseDir, "reports")
	if err := os.MkdirAll(reportsDir, 0755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	path := filepath.Join(reportsDir, filename)
	if err := os.WriteFile(path, []byte(BuildReport(snap)), 0644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func excerpt(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "\n", " ")
	runes := []rune(s)
	if len(runes) <= 80 {
		return s
	}
	return string(runes[:77]) + "..."
}

// sanitizeFilename reduces a topic to a safe filename fragment
func sanitizeFilename(name string) string {
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, " ", "-")

	var sb strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteRune(r)
		case r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '-' || r == '_':
			sb.WriteRune(r)
		}
	}

	result := sb.String()
	for strings.Contains(result, "--") {
		result = strings.ReplaceAll(result, "--", "-")
	}
	result = strings.Trim(result, "-")

	if result == "" {
		result = "debate"
	}
	if len(result) > 50 {
		result = result[:50]
	}
	return result
}
