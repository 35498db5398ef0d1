package goap

import (
	"errors"
	"fmt"
)

// ErrNodeLimit is reported when a search reaches Config.MaxNodes.
var ErrNodeLimit = errors.New("node limit reached")

// PlanError is returned when a search stops before exploring the whole tree.
// The Result returned alongside it still holds the best plan found so far.
type PlanError struct {
	RunID string
	Nodes int
	Err   error
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("plan %s stopped after %d nodes: %v", e.RunID, e.Nodes, e.Err)
}

func (e *PlanError) Unwrap() error {
	return e.Err
}
