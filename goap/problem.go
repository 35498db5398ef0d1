package goap

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tailored-agentic-units/goap/observability"
)

// Problem bundles the inputs of one planning call.
type Problem struct {
	Name    string
	Actions []*Action
	Current *State
	Goal    *State
}

// Plan solves the problem with the package-level Plan.
func (p Problem) Plan() []*Action {
	return Plan(p.Actions, p.Current, p.Goal)
}

// Action returns the first action named name, or nil.
func (p Problem) Action(name string) *Action {
	for _, a := range p.Actions {
		if a != nil && a.Name == name {
			return a
		}
	}
	return nil
}

func (p Problem) label(i int) string {
	if p.Name != "" {
		return p.Name
	}
	return fmt.Sprintf("#%d", i)
}

// PlanAll plans independent problems concurrently, at most
// Config.Concurrency at a time. Results line up with problems.
//
// The first problem that stops early (node limit, cancellation) cancels the
// rest; its error is returned and every slot still holds the Result its
// search produced.
func (p *Planner) PlanAll(ctx context.Context, problems []Problem) ([]*Result, error) {
	p.observer.OnEvent(ctx, observability.NewEvent(EventBatchStart, observability.LevelInfo, "goap.Planner", map[string]any{
		"problems":    len(problems),
		"concurrency": p.concurrency,
	}))

	results := make([]*Result, len(problems))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, prob := range problems {
		g.Go(func() error {
			r, err := p.Plan(gctx, prob.Actions, prob.Current, prob.Goal)
			results[i] = r
			if err != nil {
				return fmt.Errorf("problem %s: %w", prob.label(i), err)
			}
			return nil
		})
	}

	err := g.Wait()

	found := 0
	for _, r := range results {
		if r != nil && r.Found {
			found++
		}
	}

	p.observer.OnEvent(ctx, observability.NewEvent(EventBatchComplete, observability.LevelInfo, "goap.Planner", map[string]any{
		"problems": len(problems),
		"found":    found,
		"failed":   err != nil,
	}))

	return results, err
}
