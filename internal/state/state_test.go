// internal/state/state_test.go
package state

import (
	"errors"
	"testing"
)

func newDebate(t *testing.T) *Debate {
	t.Helper()
	d, err := New("Should AI be regulated?", []string{"scientist", "philosopher"}, 2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name         string
		topic        string
		participants []string
		maxRounds    int
		wantErr      bool
	}{
		{"valid", "topic", []string{"a", "b"}, 3, false},
		{"single participant allowed", "topic", []string{"a"}, 1, false},
		{"empty topic", "", []string{"a"}, 1, true},
		{"no participants", "topic", nil, 1, true},
		{"zero rounds", "topic", []string{"a"}, 0, true},
		{"negative rounds", "topic", []string{"a"}, -1, true},
		{"duplicate participant", "topic", []string{"a", "a"}, 1, true},
		{"empty participant id", "topic", []string{"a", ""}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := New(tt.topic, tt.participants, tt.maxRounds)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				var cfgErr *ConfigurationError
				if !errors.As(err, &cfgErr) {
					t.Errorf("want ConfigurationError, got %T", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if d.Phase() != PhaseInit {
				t.Errorf("new debate phase = %s, want init", d.Phase())
			}
			if d.ID == "" {
				t.Error("debate ID not assigned")
			}
		})
	}
}

func TestPhaseTransitions(t *testing.T) {
	d := newDebate(t)

	if err := d.BeginJudging(); err == nil {
		t.Error("BeginJudging from init should fail")
	}
	if err := d.BeginDebate(); err != nil {
		t.Fatalf("BeginDebate: %v", err)
	}
	if d.Phase() != PhaseDebating {
		t.Fatalf("phase = %s, want debating", d.Phase())
	}
	if err := d.BeginDebate(); err == nil {
		t.Error("double BeginDebate should fail")
	}
	if err := d.BeginJudging(); err != nil {
		t.Fatalf("BeginJudging: %v", err)
	}
	if err := d.Complete(Verdict{Winner: "scientist", Scores: map[string]float64{"scientist": 8, "philosopher": 7}}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if d.Phase() != PhaseComplete {
		t.Errorf("phase = %s, want complete", d.Phase())
	}
}

func TestVerdictSetIffComplete(t *testing.T) {
	d := newDebate(t)
	if d.Verdict() != nil {
		t.Error("verdict set before completion")
	}

	d.BeginDebate()
	if d.Verdict() != nil {
		t.Error("verdict set while debating")
	}

	// Abort path: COMPLETE without passing through JUDGING still sets a verdict
	if err := d.Complete(Verdict{Outcome: OutcomeAborted, Scores: map[string]float64{}}); err != nil {
		t.Fatalf("Complete on abort path: %v", err)
	}
	if d.Phase() != PhaseComplete {
		t.Errorf("phase = %s, want complete", d.Phase())
	}
	v := d.Verdict()
	if v == nil {
		t.Fatal("verdict not set after completion")
	}
	if v.Outcome != OutcomeAborted {
		t.Errorf("outcome = %s, want aborted", v.Outcome)
	}

	// Verdict is write-once
	if err := d.Complete(Verdict{Winner: "scientist"}); err == nil {
		t.Error("second Complete should fail")
	}
}

func TestAppendTurnInvariants(t *testing.T) {
	d := newDebate(t)

	if _, err := d.AppendTurn("scientist", "arg"); err == nil {
		t.Error("AppendTurn before debating should fail")
	}

	d.BeginDebate()

	if _, err := d.AppendTurn("outsider", "arg"); err == nil {
		t.Error("AppendTurn for non-participant should fail")
	}

	if _, err := d.AppendTurn("scientist", "first argument"); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}
	if _, err := d.AppendTurn("scientist", "second in same round"); err == nil {
		t.Error("agent speaking twice in one round should fail")
	}
	if _, err := d.AppendTurn("philosopher", "reply"); err != nil {
		t.Fatalf("AppendTurn: %v", err)
	}

	if err := d.AdvanceRound(); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	if _, err := d.AppendTurn("scientist", "new round argument"); err != nil {
		t.Errorf("AppendTurn in next round: %v", err)
	}
}

func TestTranscriptAppendOnly(t *testing.T) {
	d := newDebate(t)
	d.BeginDebate()

	d.AppendTurn("scientist", "original")
	turns := d.Turns()
	turns[0].Argument = "mutated"

	if got := d.Turns()[0].Argument; got != "original" {
		t.Errorf("transcript mutated through copy: %q", got)
	}

	prev := d.TurnCount()
	d.AppendTurn("philosopher", "reply")
	if d.TurnCount() != prev+1 {
		t.Errorf("turn count = %d, want %d", d.TurnCount(), prev+1)
	}
}

func TestRotation(t *testing.T) {
	d := newDebate(t)
	d.BeginDebate()

	if got := d.NextSpeaker(); got != "scientist" {
		t.Errorf("first speaker = %s, want scientist", got)
	}
	d.AppendTurn("scientist", "a1")
	if got := d.NextSpeaker(); got != "philosopher" {
		t.Errorf("second speaker = %s, want philosopher", got)
	}
	if d.RotationComplete() {
		t.Error("rotation complete after one of two turns")
	}
	d.AppendTurn("philosopher", "a2")
	if !d.RotationComplete() {
		t.Error("rotation not complete after full cycle")
	}
}

func TestRoundNeverExceedsMax(t *testing.T) {
	d := newDebate(t)
	d.BeginDebate()
	if err := d.AdvanceRound(); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	if err := d.AdvanceRound(); err != nil {
		t.Fatalf("AdvanceRound: %v", err)
	}
	if err := d.AdvanceRound(); err == nil {
		t.Error("AdvanceRound past max should fail")
	}
	if d.Round() != d.MaxRounds {
		t.Errorf("round = %d, want %d", d.Round(), d.MaxRounds)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	d := newDebate(t)
	d.BeginDebate()
	d.AppendTurn("scientist", "argument one")
	d.RecordRejection("philosopher", "meh", "too short")
	d.RecordTurnFailure("philosopher")
	d.BeginJudging()
	d.Complete(Verdict{Winner: "scientist", Scores: map[string]float64{"scientist": 9, "philosopher": 6}})

	snap := d.Snapshot()
	snap.Turns[0].Argument = "mutated"
	snap.Verdict.Scores["scientist"] = 0
	snap.TurnFailures["philosopher"] = 99

	if d.Turns()[0].Argument != "argument one" {
		t.Error("snapshot shares turn storage with debate")
	}
	if d.Verdict().Scores["scientist"] != 9 {
		t.Error("snapshot shares score map with debate")
	}
	if d.Snapshot().TurnFailures["philosopher"] != 1 {
		t.Error("snapshot shares failure map with debate")
	}

	if len(snap.Rejections) != 1 || snap.Rejections[0].Reason != "too short" {
		t.Errorf("rejections not captured: %+v", snap.Rejections)
	}
}
