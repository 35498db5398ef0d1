package engine

import "github.com/tailored-agentic-units/goap/observability"

const (
	EventServeStart observability.EventType = "engine.serve.start"
	EventServeStop  observability.EventType = "engine.serve.stop"
)
