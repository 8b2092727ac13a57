// internal/llm/llm.go
// Text-generation collaborator interface. The debate core treats completion
// as an opaque capability; retry and feedback policy live in the agent and
// judge wrappers, not here.
package llm

import (
	"context"
	"fmt"
)

// ErrorKind classifies a failed generation
type ErrorKind int

const (
	KindTimeout ErrorKind = iota
	KindMalformed
	KindRefused
)

func (k ErrorKind) String() string {
	switch k {
	case KindTimeout:
		return "timeout"
	case KindMalformed:
		return "malformed"
	case KindRefused:
		return "refused"
	default:
		return "unknown"
	}
}

// GenerationError is returned when the collaborator fails to produce usable
// text. A timeout is treated identically to a malformed response for retry
// purposes.
type GenerationError struct {
	Kind ErrorKind
	Err  error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("generation %s", e.Kind)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Request is a single completion request
type Request struct {
	System      string
	Prompt      string
	Temperature float64
}

// Completer turns a prompt into text. Implementations must honor ctx
// cancellation and apply their own per-call timeout.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
