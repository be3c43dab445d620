package models

import "time"

// PlanGeneratedEvent is published after a plan has been persisted so that
// downstream consumers (notification senders, audit sinks) can react without
// reading the plan store.
type PlanGeneratedEvent struct {
	PlanID      string    `json:"planId"`
	Students    int       `json:"students"`
	Rooms       int       `json:"rooms"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	GeneratedBy string    `json:"generatedBy,omitempty"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// PlanClearedEvent is published when the current plan is deleted.
type PlanClearedEvent struct {
	ClearedBy string    `json:"clearedBy,omitempty"`
	ClearedAt time.Time `json:"clearedAt"`
}
