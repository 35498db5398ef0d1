package goap

import "slices"

// noParent marks the root of a search tree.
const noParent = -1

// node is one point in the search tree. Parents are referenced by index into
// the owning tree, so a path is recovered by chasing indices.
type node struct {
	parent int
	depth  int
	cost   float64
	state  *State
	action *Action
}

// tree is an arena of nodes built and discarded within one planning call.
type tree struct {
	nodes []node
}

func newTree(root *State) *tree {
	t := &tree{nodes: make([]node, 0, 64)}
	t.nodes = append(t.nodes, node{parent: noParent, state: root})
	return t
}

// grow appends the child reached from parent by applying a and returns its
// index.
func (t *tree) grow(parent int, a *Action) int {
	p := t.nodes[parent]
	t.nodes = append(t.nodes, node{
		parent: parent,
		depth:  p.depth + 1,
		cost:   p.cost + a.Cost,
		state:  a.Apply(p.state),
		action: a,
	})
	return len(t.nodes) - 1
}

func (t *tree) size() int {
	return len(t.nodes)
}

// path returns the actions from the root to leaf, root first.
func (t *tree) path(leaf int) []*Action {
	var actions []*Action
	for i := leaf; i != noParent; i = t.nodes[i].parent {
		if a := t.nodes[i].action; a != nil {
			actions = append(actions, a)
		}
	}
	slices.Reverse(actions)
	return actions
}

// cheapest returns the leaf with the lowest running cost, preferring the
// earliest recorded on ties. ok is false when leaves is empty.
func (t *tree) cheapest(leaves []int) (best int, ok bool) {
	if len(leaves) == 0 {
		return 0, false
	}
	best = leaves[0]
	for _, l := range leaves[1:] {
		if t.nodes[l].cost < t.nodes[best].cost {
			best = l
		}
	}
	return best, true
}
