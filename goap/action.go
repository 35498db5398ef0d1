package goap

// DefaultCost is the cost given to actions built with NewAction.
const DefaultCost = 1.0

// Action is a unit of planning: it may run where Preconditions hold and
// leaves Effects merged into the world state. Cost is non-negative.
//
// The planner only reads actions and returns them by pointer, so callers can
// attach their own executors keyed on the returned *Action or its Name.
type Action struct {
	Name          string
	Preconditions *State
	Effects       *State
	Cost          float64
}

// NewAction returns an action with DefaultCost and empty preconditions and
// effects.
//
//	chop := goap.NewAction("chopLog").
//	    AddPrecondition("hasAxe", true).
//	    AddEffect("hasWood", true).
//	    WithCost(4)
func NewAction(name string) *Action {
	return &Action{
		Name:          name,
		Preconditions: NewState(),
		Effects:       NewState(),
		Cost:          DefaultCost,
	}
}

// AddPrecondition requires key to equal value before the action applies.
func (a *Action) AddPrecondition(key string, value any) *Action {
	if a.Preconditions == nil {
		a.Preconditions = NewState()
	}
	a.Preconditions.Set(key, value)
	return a
}

// RemovePrecondition drops the requirement on key.
func (a *Action) RemovePrecondition(key string) *Action {
	a.Preconditions.Remove(key)
	return a
}

// AddEffect records that the action sets key to value.
func (a *Action) AddEffect(key string, value any) *Action {
	if a.Effects == nil {
		a.Effects = NewState()
	}
	a.Effects.Set(key, value)
	return a
}

// RemoveEffect drops the effect on key.
func (a *Action) RemoveEffect(key string) *Action {
	a.Effects.Remove(key)
	return a
}

// WithCost sets the action cost.
func (a *Action) WithCost(cost float64) *Action {
	a.Cost = cost
	return a
}

// Applicable reports whether the action's preconditions hold in s.
func (a *Action) Applicable(s *State) bool {
	return a.Preconditions.SatisfiedBy(s)
}

// Apply returns s with the action's effects merged in. s is not modified.
func (a *Action) Apply(s *State) *State {
	return s.Merge(a.Effects)
}

func (a *Action) String() string {
	return a.Name
}

// TotalCost sums the cost of a plan.
func TotalCost(plan []*Action) float64 {
	var total float64
	for _, a := range plan {
		total += a.Cost
	}
	return total
}

// Simulate applies each action's effects to current in order and returns the
// final state. Preconditions are not checked.
func Simulate(current *State, plan []*Action) *State {
	s := current.Copy()
	for _, a := range plan {
		s = a.Apply(s)
	}
	return s
}
