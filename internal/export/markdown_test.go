// internal/export/markdown_test.go
package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"podium/internal/state"
)

func sampleSnapshot() state.Snapshot {
	return state.Snapshot{
		ID:           "abc-123",
		Topic:        "Should AI be regulated?",
		Participants: []string{"scientist", "philosopher"},
		Rounds:       2,
		MaxRounds:    2,
		Phase:        state.PhaseComplete,
		Turns: []state.Turn{
			{AgentID: "scientist", Round: 0, Argument: "Evidence first.", Timestamp: time.Now(), Accepted: true},
			{AgentID: "philosopher", Round: 0, Argument: "Principles first.", Timestamp: time.Now(), Accepted: true},
			{AgentID: "scientist", Round: 1, Argument: "Data again.", Timestamp: time.Now(), Accepted: true},
		},
		Rejections: []state.RejectedAttempt{
			{AgentID: "philosopher", Round: 1, Text: "meh", Reason: "too short"},
		},
		TurnFailures: map[string]int{"philosopher": 1},
		Verdict: &state.Verdict{
			Winner:    "scientist",
			Rationale: "Better grounded.",
			Scores:    map[string]float64{"scientist": 8.5, "philosopher": 7},
			Outcome:   state.OutcomeDecided,
		},
	}
}

func TestBuildReport(t *testing.T) {
	report := BuildReport(sampleSnapshot())

	for _, want := range []string{
		"# Debate: Should AI be regulated?",
		"**Participants:** scientist, philosopher",
		"**Rounds:** 2/2",
		"### Round 1",
		"### Round 2",
		"> Evidence first.",
		"**Winner:** scientist",
		"- scientist: 8.5",
		"- philosopher: 7.0",
		"Better grounded.",
		"- Accepted arguments: 3",
		"- Rejected candidates: 1",
		"- scientist: 2 turns, 0 failures",
		"- philosopher: 1 turns, 1 failures",
		"round 2, philosopher (too short): meh",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func TestBuildReportWithoutVerdict(t *testing.T) {
	snap := sampleSnapshot()
	snap.Verdict = nil

	report := BuildReport(snap)
	if strings.Contains(report, "## Verdict") {
		t.Error("verdict section rendered without a verdict")
	}
	if !strings.Contains(report, "## Diagnostics") {
		t.Error("diagnostics section missing")
	}
}

func TestWriteReport(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteReport(sampleSnapshot(), dir)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}

	if filepath.Dir(path) != filepath.Join(dir, "reports") {
		t.Errorf("report written to %s", path)
	}
	if !strings.HasSuffix(path, "-should-ai-be-regulated.md") {
		t.Errorf("unexpected filename %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if !strings.Contains(string(data), "**Winner:** scientist") {
		t.Error("written report incomplete")
	}
}

func TestExcerptKeepsRunesIntact(t *testing.T) {
	if got := excerpt("  a short\ncandidate  "); got != "a short candidate" {
		t.Errorf("excerpt = %q", got)
	}

	long := strings.Repeat("ü", 100)
	got := excerpt(long)
	if !utf8.ValidString(got) {
		t.Errorf("excerpt split a rune: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != 80 {
		t.Errorf("excerpt length = %d runes, want 80", n)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Should AI be regulated?", "should-ai-be-regulated"},
		{"  weird -- spacing  ", "weird-spacing"},
		{"???", "debate"},
		{strings.Repeat("x", 80), strings.Repeat("x", 50)},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
