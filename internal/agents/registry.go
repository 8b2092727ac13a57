// internal/agents/registry.go
package agents

import (
	"fmt"
	"strings"

	"podium/internal/llm"
)

// Registry holds the agents participating in one debate, in speaking order
type Registry struct {
	agents map[string]Agent
	order  []string
}

// NewRegistry resolves participant identifiers against the builtin persona
// set and constructs an agent for each. Unknown identifiers fail here, before
// the debate starts.
func NewRegistry(ids []string, completer llm.Completer, retries int, temperature float64) (*Registry, error) {
	r := &Registry{
		agents: make(map[string]Agent, len(ids)),
	}
	for _, id := range ids {
		persona, ok := Builtin(id)
		if !ok {
			return nil, fmt.Errorf("unknown persona %q (available: %s)",
				id, strings.Join(BuiltinIDs(), ", "))
		}
		r.agents[id] = NewLLMAgent(persona, completer, retries, temperature)
		r.order = append(r.order, id)
	}
	return r, nil
}

// Add registers a pre-built agent, preserving insertion order. Used by tests
// and by callers wiring custom variants.
func (r *Registry) Add(a Agent) {
	if r.agents == nil {
		r.agents = make(map[string]Agent)
	}
	if _, ok := r.agents[a.ID()]; !ok {
		r.order = append(r.order, a.ID())
	}
	r.agents[a.ID()] = a
}

// Get returns an agent by identifier, or nil
func (r *Registry) Get(id string) Agent {
	return r.agents[id]
}

// Order returns the participant identifiers in speaking order
func (r *Registry) Order() []string {
	return append([]string(nil), r.order...)
}

// Count returns the number of registered agents
func (r *Registry) Count() int {
	return len(r.order)
}
