package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventStageEnter EventType = "stage_enter"
	EventStageLeave EventType = "stage_leave"
	EventInterrupt  EventType = "interrupt"
	EventTerminal   EventType = "terminal"
)

// StageEvent describes a lifecycle transition of one session.
type StageEvent struct {
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	SessionID string      `json:"session_id"`
	Stage     Stage       `json:"stage"`
	InputKind InputKind   `json:"input_kind,omitempty"`
	Status    FinalStatus `json:"status,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnStageEnter func(context.Context, *StageEvent)
	OnStageLeave func(context.Context, *StageEvent)
	OnInterrupt  func(context.Context, *StageEvent)
	OnTerminal   func(context.Context, *StageEvent)
}
