// internal/judge/judge.go
// Consumes the full transcript and produces the verdict: winner, rationale,
// and a numeric score per participant. Malformed collaborator output is
// retried a bounded number of times; the controller falls back to an
// inconclusive verdict if every attempt fails.
package judge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"podium/internal/llm"
	"podium/internal/state"
)

// ErrMalformedVerdict indicates the collaborator's judgment could not be
// parsed into a complete verdict
var ErrMalformedVerdict = errors.New("malformed verdict")

const defaultRetries = 2

var jsonBlockRegex = regexp.MustCompile(`\{[\s\S]*\}`)

const systemPrompt = `You are an impartial debate judge. Evaluate arguments based on:
- Logical consistency and reasoning quality
- Evidence and support for claims
- Relevance to the topic and avoidance of repetition
- Persuasiveness and rhetorical quality
- Adherence to persona and perspective

Provide a comprehensive summary, score every participant, and declare a clear winner with detailed justification.`

// Judge evaluates completed debates
type Judge struct {
	completer   llm.Completer
	retries     int
	temperature float64
}

// New creates a judge. retries bounds re-attempts after malformed output.
func New(completer llm.Completer, retries int, temperature float64) *Judge {
	if retries < 0 {
		retries = defaultRetries
	}
	return &Judge{completer: completer, retries: retries, temperature: temperature}
}

// Decide evaluates the transcript and returns a decided verdict. The returned
// verdict always names a winner from participants and carries a score for
// every participant; otherwise an error is returned.
func (j *Judge) Decide(ctx context.Context, topic string, turns []state.Turn, participants []string) (state.Verdict, error) {
	req := llm.Request{
		System:      systemPrompt,
		Prompt:      j.buildPrompt(topic, turns, participants),
		Temperature: j.temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= j.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return state.Verdict{}, err
		}
		raw, err := j.completer.Complete(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		verdict, err := parseJudgment(raw, participants)
		if err != nil {
			lastErr = err
			continue
		}
		return verdict, nil
	}
	return state.Verdict{}, fmt.Errorf("judge: %w", lastErr)
}

func (j *Judge) buildPrompt(topic string, turns []state.Turn, participants []string) string {
	var sb strings.Builder
	sb.WriteString("DEBATE TOPIC: ")
	sb.WriteString(topic)
	sb.WriteString("\n\nPARTICIPANTS: ")
	sb.WriteString(strings.Join(participants, ", "))
	sb.WriteString("\n\nCOMPLETE TRANSCRIPT:\n")
	for _, t := range turns {
		fmt.Fprintf(&sb, "Round %d - %s: %s\n", t.Round+1, t.AgentID, t.Argument)
	}

	names := strings.Join(participants, ", ")
	fmt.Fprintf(&sb, `
Please evaluate this debate and provide your judgment in the following JSON format:
{
    "summary": "A comprehensive summary of the debate (3-5 sentences)",
    "winner": "The exact identifier of the winning participant (must be one of: %s)",
    "reasoning": "Detailed reasoning for your decision (4-6 sentences)",
    "scores": {%s}
}

Score every participant from 0 to 10. The "winner" field must contain EXACTLY one of: %s.
`, names, scoreTemplate(participants), names)
	return sb.String()
}

func scoreTemplate(participants []string) string {
	parts := make([]string, len(participants))
	for i, p := range participants {
		parts[i] = fmt.Sprintf("%q: <number>", p)
	}
	return strings.Join(parts, ", ")
}

type judgment struct {
	Summary   string             `json:"summary"`
	Winner    string             `json:"winner"`
	Reasoning string             `json:"reasoning"`
	Scores    map[string]float64 `json:"scores"`
}

// parseJudgment extracts and validates the collaborator's JSON judgment.
// A missing or non-numeric score, or a winner that cannot be resolved to a
// participant, is a malformed verdict.
func parseJudgment(raw string, participants []string) (state.Verdict, error) {
	block := jsonBlockRegex.FindString(raw)
	if block == "" {
		return state.Verdict{}, fmt.Errorf("%w: no JSON object in response", ErrMalformedVerdict)
	}

	var j judgment
	if err := json.Unmarshal([]byte(block), &j); err != nil {
		return state.Verdict{}, fmt.Errorf("%w: %v", ErrMalformedVerdict, err)
	}

	scores := make(map[string]float64, len(participants))
	for _, p := range participants {
		score, ok := j.Scores[p]
		if !ok {
			return state.Verdict{}, fmt.Errorf("%w: missing score for %s", ErrMalformedVerdict, p)
		}
		scores[p] = score
	}

	winner, err := resolveWinner(j.Winner, scores, participants)
	if err != nil {
		return state.Verdict{}, err
	}

	rationale := strings.TrimSpace(j.Reasoning)
	if summary := strings.TrimSpace(j.Summary); summary != "" {
		if rationale != "" {
			rationale = summary + "\n\n" + rationale
		} else {
			rationale = summary
		}
	}

	return state.Verdict{
		Winner:    winner,
		Rationale: rationale,
		Scores:    scores,
		Outcome:   state.OutcomeDecided,
	}, nil
}

// resolveWinner maps the named winner onto a participant. A tie (or an empty
// name) is broken deterministically: highest score first, then earliest
// participant index.
func resolveWinner(named string, scores map[string]float64, participants []string) (string, error) {
	named = strings.TrimSpace(named)
	for _, p := range participants {
		if strings.EqualFold(named, p) {
			return p, nil
		}
	}

	if named != "" && !strings.EqualFold(named, "tie") {
		// Loose match: the collaborator sometimes decorates the identifier
		lower := strings.ToLower(named)
		for _, p := range participants {
			if strings.Contains(lower, strings.ToLower(p)) {
				return p, nil
			}
		}
		return "", fmt.Errorf("%w: winner %q is not a participant", ErrMalformedVerdict, named)
	}

	return topScorer(scores, participants), nil
}

func topScorer(scores map[string]float64, participants []string) string {
	winner := participants[0]
	best := scores[winner]
	for _, p := range participants[1:] {
		if scores[p] > best {
			winner = p
			best = scores[p]
		}
	}
	return winner
}
