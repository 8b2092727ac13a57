// internal/agents/agent.go
// Debater capability: turn a topic plus retained context into a candidate
// argument. The completion call is the only suspension point; collaborator
// failures are retried here before they surface as a turn-level failure.
package agents

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"podium/internal/llm"
	"podium/internal/memory"
)

// ProposeRequest carries everything an agent sees before speaking
type ProposeRequest struct {
	Topic    string
	Context  memory.Context
	Used     []string // recent accepted arguments from all participants
	Feedback string   // validator guidance after a rejection, empty on first attempt
}

// Agent is the capability every debater variant implements
type Agent interface {
	ID() string
	Persona() Persona
	Propose(ctx context.Context, req ProposeRequest) (string, error)
}

const (
	usedContextDepth  = 3
	excerptLen        = 100
	defaultGenRetries = 2
)

// LLMAgent backs a persona with the text-generation collaborator
type LLMAgent struct {
	persona     Persona
	completer   llm.Completer
	retries     int
	temperature float64
}

// NewLLMAgent creates an agent for one persona. retries bounds how many times
// a failed generation is re-attempted before the error propagates.
func NewLLMAgent(persona Persona, completer llm.Completer, retries int, temperature float64) *LLMAgent {
	if retries < 0 {
		retries = defaultGenRetries
	}
	return &LLMAgent{
		persona:     persona,
		completer:   completer,
		retries:     retries,
		temperature: temperature,
	}
}

func (a *LLMAgent) ID() string {
	return a.persona.ID
}

func (a *LLMAgent) Persona() Persona {
	return a.persona
}

// Propose generates one candidate argument. Generation errors are retried
// with the same feedback-augmented prompt; the last error is returned once
// retries are exhausted.
func (a *LLMAgent) Propose(ctx context.Context, req ProposeRequest) (string, error) {
	llmReq := llm.Request{
		System:      a.buildSystemPrompt(req),
		Prompt:      fmt.Sprintf("Provide your argument about: %s", req.Topic),
		Temperature: a.temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= a.retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := a.completer.Complete(ctx, llmReq)
		if err == nil {
			return strings.TrimSpace(text), nil
		}
		lastErr = err
		var genErr *llm.GenerationError
		if !errors.As(err, &genErr) {
			break
		}
	}
	return "", fmt.Errorf("agent %s: %w", a.persona.ID, lastErr)
}

func (a *LLMAgent) buildSystemPrompt(req ProposeRequest) string {
	var sb strings.Builder
	sb.WriteString(a.persona.SystemPrompt)
	sb.WriteString("\n\nDebate Topic: ")
	sb.WriteString(req.Topic)

	if len(req.Context.Own) > 0 {
		sb.WriteString("\n\nYour previous arguments:\n")
		for _, arg := range req.Context.Own {
			sb.WriteString("- ")
			sb.WriteString(excerpt(arg))
			sb.WriteString("\n")
		}
	}

	if len(req.Context.Opponents) > 0 {
		sb.WriteString("\nYour opponents' latest arguments:\n")
		for _, arg := range req.Context.Opponents {
			sb.WriteString("- ")
			sb.WriteString(excerpt(arg))
			sb.WriteString("\n")
		}
	}

	recent := req.Used
	if len(recent) > usedContextDepth {
		recent = recent[len(recent)-usedContextDepth:]
	}
	if len(recent) > 0 {
		sb.WriteString("\nRecent arguments from all participants (DO NOT REPEAT):\n")
		for _, arg := range recent {
			sb.WriteString("- ")
			sb.WriteString(excerpt(arg))
			sb.WriteString("\n")
		}
	}

	if req.Feedback != "" {
		sb.WriteString("\nYour previous attempt was rejected: ")
		sb.WriteString(req.Feedback)
		sb.WriteString("\nProvide a different argument that addresses this.")
	}

	sb.WriteString(`

Instructions:
1. Provide a logical, well-reasoned argument from your professional perspective
2. DO NOT repeat or closely mirror previous arguments - offer NEW insights
3. Build upon or counter previous points when relevant
4. Keep arguments concise but substantive (2-4 sentences, 30-100 words)
5. Maintain professional tone and stay in character
6. Be specific and avoid vague generalities

Your response should be ONLY your argument, with no meta-commentary or explanations.`)

	return sb.String()
}

func excerpt(s string) string {
	runes := []rune(s)
	if len(runes) <= excerptLen {
		return s
	}
	return string(runes[:excerptLen-3]) + "..."
}
