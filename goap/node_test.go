package goap

import (
	"slices"
	"testing"
)

func TestTree_PathAndCost(t *testing.T) {
	a := NewAction("a").AddEffect("x", true).WithCost(2)
	b := NewAction("b").AddEffect("y", true).WithCost(3)

	tr := newTree(NewState())
	n1 := tr.grow(0, a)
	n2 := tr.grow(n1, b)
	sibling := tr.grow(0, b)

	if got := tr.path(n2); !slices.Equal(got, []*Action{a, b}) {
		t.Errorf("path(n2) = %v, want [a b]", got)
	}
	if got := tr.path(0); len(got) != 0 {
		t.Errorf("path(root) = %v, want empty", got)
	}
	if tr.nodes[n2].cost != 5 || tr.nodes[n2].depth != 2 {
		t.Errorf("n2 cost/depth = %v/%d, want 5/2", tr.nodes[n2].cost, tr.nodes[n2].depth)
	}
	if tr.nodes[sibling].parent != 0 {
		t.Errorf("sibling parent = %d, want 0", tr.nodes[sibling].parent)
	}
	if tr.nodes[0].parent != noParent {
		t.Errorf("root parent = %d, want %d", tr.nodes[0].parent, noParent)
	}
	if tr.size() != 4 {
		t.Errorf("size() = %d, want 4", tr.size())
	}
}

func TestTree_Cheapest(t *testing.T) {
	cheap := NewAction("cheap").WithCost(1)
	dear := NewAction("dear").WithCost(3)

	tr := newTree(nil)
	first := tr.grow(0, cheap)
	second := tr.grow(0, dear)
	third := tr.grow(0, cheap)

	if _, ok := tr.cheapest(nil); ok {
		t.Error("cheapest(nil) ok = true, want false")
	}

	best, ok := tr.cheapest([]int{second, first, third})
	if !ok || best != first {
		t.Errorf("cheapest = %d, want %d (earliest of equal cost)", best, first)
	}
}

func TestUsableActions(t *testing.T) {
	a := NewAction("a").WithCost(2)
	b := NewAction("b").WithCost(1)
	c := NewAction("c").WithCost(2)
	d := NewAction("d").WithCost(1)

	got := usableActions([]*Action{a, nil, b, c, a, d})
	want := []*Action{b, d, a, c}
	if !slices.Equal(got, want) {
		t.Errorf("usableActions() = %v, want %v", got, want)
	}
}

func TestWithout(t *testing.T) {
	a, b, c := NewAction("a"), NewAction("b"), NewAction("c")
	in := []*Action{a, b, c}

	got := without(in, 1)
	if !slices.Equal(got, []*Action{a, c}) {
		t.Errorf("without() = %v, want [a c]", got)
	}
	if !slices.Equal(in, []*Action{a, b, c}) {
		t.Error("without modified its input")
	}
}
