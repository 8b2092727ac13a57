// internal/state/state.go
// Shared debate state: the append-only transcript, phase machine bookkeeping,
// and the final verdict. Exactly one component mutates it at a time; the
// controller drives every transition.
package state

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle phase of a debate
type Phase int

const (
	PhaseInit Phase = iota
	PhaseDebating
	PhaseJudging
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhaseInit:
		return "init"
	case PhaseDebating:
		return "debating"
	case PhaseJudging:
		return "judging"
	case PhaseComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Outcome marks how a debate concluded
type Outcome int

const (
	OutcomeDecided Outcome = iota
	OutcomeAborted
	OutcomeInconclusive
)

func (o Outcome) String() string {
	switch o {
	case OutcomeDecided:
		return "decided"
	case OutcomeAborted:
		return "aborted"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Turn is one accepted argument by one participant in one round
type Turn struct {
	AgentID   string
	Round     int
	Argument  string
	Timestamp time.Time
	Accepted  bool
}

// RejectedAttempt records a candidate the validator refused.
// Kept separate from Turns so context builders only ever see accepted arguments.
type RejectedAttempt struct {
	AgentID string
	Round   int
	Text    string
	Reason  string
}

// Verdict is the judge's final output
type Verdict struct {
	Winner    string
	Rationale string
	Scores    map[string]float64
	Outcome   Outcome
}

// ConfigurationError indicates an invalid debate setup, detected before
// any turn is taken
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// Debate is the single shared record threading through every component.
// Not safe for concurrent use; the round-robin discipline means there is
// exactly one writer at any point.
type Debate struct {
	ID           string
	Topic        string
	Participants []string
	MaxRounds    int

	round        int
	phase        Phase
	turns        []Turn
	rejections   []RejectedAttempt
	turnFailures map[string]int
	verdict      *Verdict

	StartedAt time.Time
	EndedAt   time.Time
}

// New validates the resolved configuration and creates a debate in PhaseInit
func New(topic string, participants []string, maxRounds int) (*Debate, error) {
	if topic == "" {
		return nil, &ConfigurationError{Field: "topic", Reason: "must not be empty"}
	}
	if len(participants) == 0 {
		return nil, &ConfigurationError{Field: "participants", Reason: "must not be empty"}
	}
	if maxRounds <= 0 {
		return nil, &ConfigurationError{Field: "max_rounds", Reason: "must be positive"}
	}
	seen := make(map[string]bool, len(participants))
	for _, p := range participants {
		if p == "" {
			return nil, &ConfigurationError{Field: "participants", Reason: "empty participant id"}
		}
		if seen[p] {
			return nil, &ConfigurationError{Field: "participants", Reason: "duplicate participant " + p}
		}
		seen[p] = true
	}

	return &Debate{
		ID:           uuid.NewString(),
		Topic:        topic,
		Participants: append([]string(nil), participants...),
		MaxRounds:    maxRounds,
		phase:        PhaseInit,
		turnFailures: make(map[string]int),
	}, nil
}

// Phase returns the current lifecycle phase
func (d *Debate) Phase() Phase {
	return d.phase
}

// Round returns the number of completed rotations
func (d *Debate) Round() int {
	return d.round
}

// BeginDebate transitions INIT -> DEBATING
func (d *Debate) BeginDebate() error {
	if d.phase != PhaseInit {
		return fmt.Errorf("begin debate: invalid phase %s", d.phase)
	}
	d.phase = PhaseDebating
	d.StartedAt = time.Now()
	return nil
}

// BeginJudging transitions DEBATING -> JUDGING
func (d *Debate) BeginJudging() error {
	if d.phase != PhaseDebating {
		return fmt.Errorf("begin judging: invalid phase %s", d.phase)
	}
	d.phase = PhaseJudging
	return nil
}

// Complete sets the verdict and moves to the terminal phase. The verdict is
// write-once: a second call is an error regardless of content.
func (d *Debate) Complete(v Verdict) error {
	if d.phase == PhaseComplete || d.verdict != nil {
		return fmt.Errorf("complete: verdict already set")
	}
	scores := make(map[string]float64, len(v.Scores))
	for k, s := range v.Scores {
		scores[k] = s
	}
	v.Scores = scores
	d.verdict = &v
	d.phase = PhaseComplete
	d.EndedAt = time.Now()
	return nil
}

// Verdict returns a copy of the verdict, or nil if the debate is not complete
func (d *Debate) Verdict() *Verdict {
	if d.verdict == nil {
		return nil
	}
	v := *d.verdict
	v.Scores = make(map[string]float64, len(d.verdict.Scores))
	for k, s := range d.verdict.Scores {
		v.Scores[k] = s
	}
	return &v
}

// NextSpeaker returns the participant whose turn is next under strict rotation
func (d *Debate) NextSpeaker() string {
	return d.Participants[len(d.turns)%len(d.Participants)]
}

// RotationComplete reports whether the last rotation has cycled back to the
// first participant
func (d *Debate) RotationComplete() bool {
	return len(d.turns) > 0 && len(d.turns)%len(d.Participants) == 0
}

// AppendTurn commits an accepted argument to the transcript. It enforces the
// one-turn-per-agent-per-round invariant and membership in Participants.
func (d *Debate) AppendTurn(agentID, argument string) (Turn, error) {
	if d.phase != PhaseDebating {
		return Turn{}, fmt.Errorf("append turn: invalid phase %s", d.phase)
	}
	if !d.isParticipant(agentID) {
		return Turn{}, fmt.Errorf("append turn: unknown participant %q", agentID)
	}
	for _, t := range d.turns {
		if t.AgentID == agentID && t.Round == d.round {
			return Turn{}, fmt.Errorf("append turn: %s already spoke in round %d", agentID, d.round)
		}
	}
	turn := Turn{
		AgentID:   agentID,
		Round:     d.round,
		Argument:  argument,
		Timestamp: time.Now(),
		Accepted:  true,
	}
	d.turns = append(d.turns, turn)
	return turn, nil
}

// RecordRejection stores a refused candidate for diagnostics
func (d *Debate) RecordRejection(agentID, text, reason string) {
	d.rejections = append(d.rejections, RejectedAttempt{
		AgentID: agentID,
		Round:   d.round,
		Text:    text,
		Reason:  reason,
	})
}

// RecordTurnFailure counts a turn that was skipped or aborted the debate
func (d *Debate) RecordTurnFailure(agentID string) {
	d.turnFailures[agentID]++
}

// AdvanceRound increments the round counter after a completed rotation.
// The counter never exceeds MaxRounds.
func (d *Debate) AdvanceRound() error {
	if d.round >= d.MaxRounds {
		return fmt.Errorf("advance round: already at max rounds %d", d.MaxRounds)
	}
	d.round++
	return nil
}

// Turns returns a copy of the accepted transcript
func (d *Debate) Turns() []Turn {
	return append([]Turn(nil), d.turns...)
}

// Rejections returns a copy of the rejected attempts
func (d *Debate) Rejections() []RejectedAttempt {
	return append([]RejectedAttempt(nil), d.rejections...)
}

// TurnCount returns the number of accepted turns
func (d *Debate) TurnCount() int {
	return len(d.turns)
}

// UsedArguments returns every accepted argument in order, for the novelty gate
func (d *Debate) UsedArguments() []string {
	used := make([]string, len(d.turns))
	for i, t := range d.turns {
		used[i] = t.Argument
	}
	return used
}

func (d *Debate) isParticipant(agentID string) bool {
	for _, p := range d.Participants {
		if p == agentID {
			return true
		}
	}
	return false
}

// Snapshot is the read-only view handed to the report and storage sinks
// after the debate completes
type Snapshot struct {
	ID           string
	Topic        string
	Participants []string
	Rounds       int
	MaxRounds    int
	Phase        Phase
	Turns        []Turn
	Rejections   []RejectedAttempt
	TurnFailures map[string]int
	Verdict      *Verdict
	StartedAt    time.Time
	EndedAt      time.Time
}

// Snapshot returns a deep copy of the debate for external sinks
func (d *Debate) Snapshot() Snapshot {
	failures := make(map[string]int, len(d.turnFailures))
	for k, n := range d.turnFailures {
		failures[k] = n
	}
	return Snapshot{
		ID:           d.ID,
		Topic:        d.Topic,
		Participants: append([]string(nil), d.Participants...),
		Rounds:       d.round,
		MaxRounds:    d.MaxRounds,
		Phase:        d.phase,
		Turns:        d.Turns(),
		Rejections:   d.Rejections(),
		TurnFailures: failures,
		Verdict:      d.Verdict(),
		StartedAt:    d.StartedAt,
		EndedAt:      d.EndedAt,
	}
}
