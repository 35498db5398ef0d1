package goap

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/tailored-agentic-units/goap/observability"
)

// cancelCheckInterval is how many node expansions pass between context checks.
const cancelCheckInterval = 128

// Result describes one planning run.
type Result struct {
	RunID string

	// Actions is the cheapest plan, root first. Empty when nothing was found.
	Actions []*Action

	// Cost is the running cost of the selected leaf.
	Cost float64

	Found     bool
	Nodes     int  // search tree size, root included
	Leaves    int  // goal-satisfying nodes recorded
	Truncated bool // search stopped early; Actions is the best seen so far
	Duration  time.Duration
}

// Plan returns the cheapest sequence of actions that turns current into a
// state satisfying goal, or an empty slice when no such sequence exists.
//
// Every ordering of every subset of actions reachable from current is
// explored; an action appears at most once per plan. Among equally cheap
// plans the one found first wins, and actions are tried in ascending cost
// order with ties kept in the order given, so results are reproducible.
// Inputs are never modified and the returned actions are the caller's
// pointers.
//
// The current state is never tested against the goal on its own: a plan
// needs at least one action. Planner.Plan with AcceptSatisfiedStart changes
// that.
func Plan(actions []*Action, current, goal *State) []*Action {
	r, _ := unbounded.Plan(context.Background(), actions, current, goal)
	return r.Actions
}

var unbounded = &Planner{observer: observability.NoOpObserver{}}

// Planner runs searches with the limits and observer from its Config.
// It holds no per-search state and is safe for concurrent use.
type Planner struct {
	observer             observability.Observer
	maxNodes             int
	maxDepth             int
	concurrency          int
	acceptSatisfiedStart bool
}

// New builds a Planner, resolving cfg.Observer from the observability
// registry.
func New(cfg Config) (*Planner, error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}
	return NewWithObserver(cfg, observer), nil
}

// NewWithObserver builds a Planner that reports to observer, ignoring
// cfg.Observer. A nil observer discards events.
func NewWithObserver(cfg Config, observer observability.Observer) *Planner {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Planner{
		observer:             observer,
		maxNodes:             cfg.MaxNodes,
		maxDepth:             cfg.MaxDepth,
		concurrency:          concurrency,
		acceptSatisfiedStart: cfg.AcceptSatisfiedStart,
	}
}

// Plan searches like the package-level Plan, subject to the planner's limits.
//
// When the node limit is hit or ctx ends, the search stops and Plan returns a
// *PlanError wrapping ErrNodeLimit or the context error, together with a
// Result marked Truncated that carries the best plan seen so far. A goal that
// cannot be reached is not an error: the Result simply has Found == false.
func (p *Planner) Plan(ctx context.Context, actions []*Action, current, goal *State) (*Result, error) {
	start := time.Now()
	s := &search{
		ctx:      ctx,
		goal:     goal,
		tree:     newTree(current),
		maxNodes: p.maxNodes,
		maxDepth: p.maxDepth,
		observer: p.observer,
		runID:    uuid.Must(uuid.NewV7()).String(),
	}

	usable := usableActions(actions)

	p.observer.OnEvent(ctx, observability.NewEvent(EventPlanStart, observability.LevelInfo, "goap.Planner", map[string]any{
		"run_id":    s.runID,
		"actions":   len(usable),
		"current":   current.Len(),
		"goal":      goal.Len(),
		"max_nodes": p.maxNodes,
		"max_depth": p.maxDepth,
	}))

	result := &Result{RunID: s.runID, Actions: []*Action{}}

	switch {
	case ctx.Err() != nil:
		s.stop(ctx.Err())
	case p.acceptSatisfiedStart && goal.SatisfiedBy(current):
		result.Found = true
	default:
		s.expand(0, usable)
	}

	if leaf, ok := s.tree.cheapest(s.leaves); ok {
		result.Actions = s.tree.path(leaf)
		result.Cost = s.tree.nodes[leaf].cost
		result.Found = true
	}
	result.Nodes = s.tree.size()
	result.Leaves = len(s.leaves)
	result.Truncated = s.err != nil
	result.Duration = time.Since(start)

	p.observer.OnEvent(ctx, observability.NewEvent(EventPlanComplete, observability.LevelInfo, "goap.Planner", map[string]any{
		"run_id":    s.runID,
		"found":     result.Found,
		"cost":      result.Cost,
		"length":    len(result.Actions),
		"nodes":     result.Nodes,
		"leaves":    result.Leaves,
		"truncated": result.Truncated,
		"stopped":   stopReason(s.err),
		"duration":  result.Duration,
	}))

	if s.err != nil {
		return result, &PlanError{RunID: s.runID, Nodes: result.Nodes, Err: s.err}
	}
	return result, nil
}

// usableActions drops nil and repeated actions and orders the rest by
// ascending cost, keeping the caller's order among equal costs.
func usableActions(actions []*Action) []*Action {
	seen := make(map[*Action]bool, len(actions))
	usable := make([]*Action, 0, len(actions))
	for _, a := range actions {
		if a == nil || seen[a] {
			continue
		}
		seen[a] = true
		usable = append(usable, a)
	}
	slices.SortStableFunc(usable, func(a, b *Action) int {
		return cmp.Compare(a.Cost, b.Cost)
	})
	return usable
}

// search is the state of one planning run.
type search struct {
	ctx      context.Context
	goal     *State
	tree     *tree
	leaves   []int
	maxNodes int
	maxDepth int
	observer observability.Observer
	runID    string
	steps    int
	err      error
}

// expand tries every usable action at node parent and recurses into children
// that do not yet satisfy the goal. usable is sorted by cost and stays sorted
// when an element is removed, so each level is visited cheapest first.
// It reports whether any leaf was recorded below parent.
func (s *search) expand(parent int, usable []*Action) bool {
	found := false

	for i, a := range usable {
		if s.err != nil {
			return found
		}
		if !a.Applicable(s.tree.nodes[parent].state) {
			continue
		}
		if !s.admit() {
			return found
		}

		child := s.tree.grow(parent, a)
		n := s.tree.nodes[child]

		if s.goal.SatisfiedBy(n.state) {
			s.leaves = append(s.leaves, child)
			found = true
			s.observer.OnEvent(s.ctx, observability.NewEvent(EventPlanLeaf, observability.LevelVerbose, "goap.Planner", map[string]any{
				"run_id": s.runID,
				"cost":   n.cost,
				"depth":  n.depth,
			}))
			continue
		}

		if s.maxDepth > 0 && n.depth >= s.maxDepth {
			continue
		}

		if s.expand(child, without(usable, i)) {
			found = true
		}
	}

	return found
}

// admit reports whether one more node may be added, recording why not.
func (s *search) admit() bool {
	if s.maxNodes > 0 && s.tree.size() >= s.maxNodes {
		s.stop(ErrNodeLimit)
		return false
	}

	s.steps++
	if s.steps%cancelCheckInterval == 0 {
		if err := s.ctx.Err(); err != nil {
			s.stop(err)
			return false
		}
	}
	return true
}

func (s *search) stop(err error) {
	s.err = err
	s.observer.OnEvent(s.ctx, observability.NewEvent(EventPlanLimit, observability.LevelWarning, "goap.Planner", map[string]any{
		"run_id": s.runID,
		"nodes":  s.tree.size(),
		"leaves": len(s.leaves),
		"reason": err.Error(),
	}))
}

// stopReason names why a search ended early: "node_limit", "canceled" or
// "" for a complete search.
func stopReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNodeLimit):
		return "node_limit"
	default:
		return "canceled"
	}
}

// without returns a copy of actions minus the element at i.
func without(actions []*Action, i int) []*Action {
	out := make([]*Action, 0, len(actions)-1)
	out = append(out, actions[:i]...)
	return append(out, actions[i+1:]...)
}
