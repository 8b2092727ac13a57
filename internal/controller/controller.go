// internal/controller/controller.go
// The turn-taking state machine. A single goroutine drives the debate strictly
// one turn at a time: INIT -> DEBATING -> JUDGING -> COMPLETE, with one abort
// edge out of DEBATING. The only blocking points are the collaborator calls
// inside agents and the judge.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"podium/internal/agents"
	"podium/internal/judge"
	"podium/internal/memory"
	"podium/internal/state"
	"podium/internal/validator"
)

// FailurePolicy decides what a turn failure does to the debate
type FailurePolicy int

const (
	PolicySkip  FailurePolicy = iota // skip the agent's turn for that round
	PolicyAbort                      // end the debate with an aborted verdict
)

func (p FailurePolicy) String() string {
	switch p {
	case PolicySkip:
		return "skip"
	case PolicyAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// ParsePolicy resolves a configured policy name
func ParsePolicy(s string) (FailurePolicy, error) {
	switch strings.ToLower(s) {
	case "skip", "":
		return PolicySkip, nil
	case "abort":
		return PolicyAbort, nil
	default:
		return PolicySkip, fmt.Errorf("unknown failure policy %q", s)
	}
}

// TurnFailure is a turn that could not produce an accepted argument:
// validator retries exhausted or the collaborator gave up
type TurnFailure struct {
	AgentID string
	Round   int
	Err     error
}

func (e *TurnFailure) Error() string {
	return fmt.Sprintf("turn failed for %s in round %d: %v", e.AgentID, e.Round, e.Err)
}

func (e *TurnFailure) Unwrap() error {
	return e.Err
}

const defaultRejectLimit = 2

// Params wires a controller
type Params struct {
	Debate      *state.Debate
	Registry    *agents.Registry
	Validator   *validator.Validator
	Store       *memory.Store
	Manager     *memory.Manager
	Judge       *judge.Judge
	Policy      FailurePolicy
	RejectLimit int // validator rejections tolerated per turn before failure
	Logger      *slog.Logger
}

// Controller advances one debate from start to verdict
type Controller struct {
	debate      *state.Debate
	registry    *agents.Registry
	validator   *validator.Validator
	store       *memory.Store
	manager     *memory.Manager
	judge       *judge.Judge
	policy      FailurePolicy
	rejectLimit int
	logger      *slog.Logger
}

// New validates the wiring and creates a controller. Every participant must
// resolve to a registered agent.
func New(p Params) (*Controller, error) {
	if p.Debate == nil {
		return nil, &state.ConfigurationError{Field: "debate", Reason: "must not be nil"}
	}
	for _, id := range p.Debate.Participants {
		if p.Registry == nil || p.Registry.Get(id) == nil {
			return nil, &state.ConfigurationError{Field: "participants", Reason: "no agent registered for " + id}
		}
	}
	if p.RejectLimit <= 0 {
		p.RejectLimit = defaultRejectLimit
	}
	if p.Logger == nil {
		p.Logger = slog.Default()
	}
	return &Controller{
		debate:      p.Debate,
		registry:    p.Registry,
		validator:   p.Validator,
		store:       p.Store,
		manager:     p.Manager,
		judge:       p.Judge,
		policy:      p.Policy,
		rejectLimit: p.RejectLimit,
		logger:      p.Logger.With("debate", p.Debate.ID),
	}, nil
}

// Run drives the debate to completion. The returned snapshot always carries a
// verdict: decided, aborted, or inconclusive. The error is non-nil only for
// cancellation or a broken state transition, never for a judged outcome.
func (c *Controller) Run(ctx context.Context) (state.Snapshot, error) {
	d := c.debate
	if err := d.BeginDebate(); err != nil {
		return d.Snapshot(), err
	}
	c.logger.Info("debate started",
		"topic", d.Topic,
		"participants", strings.Join(d.Participants, ","),
		"max_rounds", d.MaxRounds)

	for d.Round() < d.MaxRounds {
		for _, agentID := range d.Participants {
			// Cancellation is honored only here, at the turn boundary
			if err := ctx.Err(); err != nil {
				c.abort(fmt.Sprintf("cancelled: %v", err))
				return d.Snapshot(), err
			}

			if err := c.takeTurn(ctx, agentID); err != nil {
				tf, ok := err.(*TurnFailure)
				if !ok {
					return d.Snapshot(), err
				}
				d.RecordTurnFailure(agentID)
				if c.policy == PolicyAbort {
					c.logger.Error("turn failed, aborting debate", "agent", agentID, "error", tf.Err)
					c.abort(tf.Error())
					return d.Snapshot(), nil
				}
				c.logger.Warn("turn failed, skipping", "agent", agentID, "round", d.Round(), "error", tf.Err)
			}
		}

		if err := d.AdvanceRound(); err != nil {
			return d.Snapshot(), err
		}
		c.manager.PruneAll(c.store)
		c.logger.Info("round complete", "round", d.Round(), "of", d.MaxRounds)
	}

	if err := d.BeginJudging(); err != nil {
		return d.Snapshot(), err
	}
	c.logger.Info("judging debate", "turns", d.TurnCount())

	verdict, err := c.judge.Decide(ctx, d.Topic, d.Turns(), d.Participants)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.abort(fmt.Sprintf("cancelled during judging: %v", ctxErr))
			return d.Snapshot(), ctxErr
		}
		c.logger.Error("judge retries exhausted", "error", err)
		verdict = state.Verdict{
			Rationale: fmt.Sprintf("Judging failed: %v", err),
			Scores:    map[string]float64{},
			Outcome:   state.OutcomeInconclusive,
		}
	}

	if err := d.Complete(verdict); err != nil {
		return d.Snapshot(), err
	}
	c.logger.Info("debate complete", "outcome", verdict.Outcome.String(), "winner", verdict.Winner)
	return d.Snapshot(), nil
}

// takeTurn asks one agent for an argument and gates it through the validator,
// feeding rejection reasons back into regeneration up to the reject limit
func (c *Controller) takeTurn(ctx context.Context, agentID string) error {
	d := c.debate
	agent := c.registry.Get(agentID)

	feedback := ""
	for attempt := 0; attempt <= c.rejectLimit; attempt++ {
		candidate, err := agent.Propose(ctx, agents.ProposeRequest{
			Topic:    d.Topic,
			Context:  c.store.Context(agentID),
			Used:     d.UsedArguments(),
			Feedback: feedback,
		})
		if err != nil {
			return &TurnFailure{AgentID: agentID, Round: d.Round(), Err: err}
		}

		result := c.validator.Check(candidate, d.UsedArguments())
		if result.OK {
			if _, err := d.AppendTurn(agentID, candidate); err != nil {
				return err
			}
			if err := c.store.Record(d.Round(), agentID, candidate); err != nil {
				return err
			}
			c.logger.Info("argument accepted",
				"agent", agentID, "round", d.Round(), "attempt", attempt+1)
			return nil
		}

		d.RecordRejection(agentID, candidate, result.Reason)
		feedback = validator.Feedback(result.Reason)
		c.logger.Debug("argument rejected",
			"agent", agentID, "round", d.Round(), "reason", result.Reason, "attempt", attempt+1)
	}

	return &TurnFailure{
		AgentID: agentID,
		Round:   d.Round(),
		Err:     fmt.Errorf("validator rejected %d candidates", c.rejectLimit+1),
	}
}

// abort ends the debate on the DEBATING -> COMPLETE edge. The verdict is
// still set so the verdict-iff-complete invariant holds.
func (c *Controller) abort(reason string) {
	_ = c.debate.Complete(state.Verdict{
		Rationale: "Debate aborted: " + reason,
		Scores:    map[string]float64{},
		Outcome:   state.OutcomeAborted,
	})
}
