// Package goap implements goal-oriented action planning.
//
// A planning problem is a set of actions, each with preconditions, effects
// and a cost, plus a current world state and a goal. Plan finds the cheapest
// ordered list of actions whose effects, applied in turn to the current
// state, produce a state that satisfies the goal.
//
//	getWood := goap.NewAction("getWood").AddEffect("hasWood", true)
//	makeAxe := goap.NewAction("makeAxe").
//	    AddPrecondition("hasWood", true).
//	    AddEffect("hasAxe", true)
//
//	plan := goap.Plan(
//	    []*goap.Action{getWood, makeAxe},
//	    goap.NewState(),
//	    goap.StateOf("hasAxe", true),
//	)
//	// plan == [getWood makeAxe]
//
// # Search
//
// The search is exhaustive branch and bound over orderings of action subsets:
// from each node every unused applicable action is tried, cheapest first, and
// every node whose state satisfies the goal is kept as a candidate. Nodes
// live in an index-addressed arena for the duration of one call. Identical
// states reached through different orderings are expanded independently, so
// the worst case grows with the factorial of the action count.
//
// # Limits and observability
//
// Planner adds what the bare function leaves to the caller: a node budget, a
// depth bound, context cancellation, concurrent batch planning and events
// reported through an observability.Observer.
package goap
