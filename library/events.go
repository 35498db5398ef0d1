package library

import "github.com/tailored-agentic-units/goap/observability"

const (
	EventLoad   observability.EventType = "library.load"
	EventSave   observability.EventType = "library.save"
	EventRemove observability.EventType = "library.remove"
)
