package goap

import "github.com/tailored-agentic-units/goap/observability"

const (
	EventPlanStart    observability.EventType = "plan.start"
	EventPlanLeaf     observability.EventType = "plan.leaf"
	EventPlanLimit    observability.EventType = "plan.limit"
	EventPlanComplete observability.EventType = "plan.complete"

	EventBatchStart    observability.EventType = "plan.batch.start"
	EventBatchComplete observability.EventType = "plan.batch.complete"
)
