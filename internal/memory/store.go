// internal/memory/store.go
// Per-agent bounded debate memory. Every accepted turn fans out to each
// participant's memory; each agent's next prompt context is built from its
// own recent arguments plus the latest argument from every opponent.
package memory

import (
	"fmt"
	"strings"

	"podium/internal/validator"
)

// Entry is one remembered argument, tagged with the relevance of its content
// to the debate topic. Relevance is computed once at record time so pruning
// decisions are stable.
type Entry struct {
	Round     int
	AgentID   string
	Content   string
	Relevance float64
}

// Context is the retained history handed to an agent before it speaks
type Context struct {
	Own       []string // the agent's own recent arguments, oldest first
	Opponents []string // the latest argument from each opponent, speaker-tagged
}

const (
	ownContextDepth = 3
)

// Store owns the per-agent memories for a single debate. Not safe for
// concurrent use; under the round-robin discipline there is never more than
// one writer.
type Store struct {
	topicKeys []string
	entries   map[string][]Entry
	order     []string
}

// NewStore creates memories for the given participants
func NewStore(topic string, participants []string) *Store {
	s := &Store{
		topicKeys: validator.ExtractKeywords(topic),
		entries:   make(map[string][]Entry, len(participants)),
		order:     append([]string(nil), participants...),
	}
	for _, p := range participants {
		s.entries[p] = nil
	}
	return s
}

// Record appends an accepted argument to every participant's memory
func (s *Store) Record(round int, agentID, content string) error {
	if _, ok := s.entries[agentID]; !ok {
		return fmt.Errorf("memory: unknown participant %q", agentID)
	}
	e := Entry{
		Round:     round,
		AgentID:   agentID,
		Content:   content,
		Relevance: s.relevance(content),
	}
	for _, p := range s.order {
		s.entries[p] = append(s.entries[p], e)
	}
	return nil
}

// Context builds the prompt context for one agent's next turn
func (s *Store) Context(agentID string) Context {
	var ctx Context

	mem := s.entries[agentID]
	var own []string
	for _, e := range mem {
		if e.AgentID == agentID {
			own = append(own, e.Content)
		}
	}
	if len(own) > ownContextDepth {
		own = own[len(own)-ownContextDepth:]
	}
	ctx.Own = own

	// Latest argument from each opponent, in participant order
	latest := make(map[string]string)
	for _, e := range mem {
		if e.AgentID != agentID {
			latest[e.AgentID] = e.Content
		}
	}
	for _, p := range s.order {
		if arg, ok := latest[p]; ok {
			ctx.Opponents = append(ctx.Opponents, fmt.Sprintf("[%s] %s", p, arg))
		}
	}
	return ctx
}

// Entries returns a copy of one agent's memory
func (s *Store) Entries(agentID string) []Entry {
	return append([]Entry(nil), s.entries[agentID]...)
}

// Replace swaps in a pruned memory for one agent
func (s *Store) Replace(agentID string, entries []Entry) {
	if _, ok := s.entries[agentID]; ok {
		s.entries[agentID] = append([]Entry(nil), entries...)
	}
}

// Participants returns the participant order the store was built with
func (s *Store) Participants() []string {
	return append([]string(nil), s.order...)
}

// relevance scores how much of the topic's key vocabulary an argument uses
func (s *Store) relevance(content string) float64 {
	if len(s.topicKeys) == 0 {
		return 0
	}
	words := make(map[string]bool)
	for _, w := range strings.Fields(validator.Normalize(content)) {
		words[w] = true
	}
	matched := 0
	for _, key := range s.topicKeys {
		if words[key] {
			matched++
		}
	}
	return float64(matched) / float64(len(s.topicKeys))
}
