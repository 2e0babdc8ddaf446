package audit

import (
	"context"
	"time"
)

// Actions recorded by the console.
const (
	ActionLogin           = "login"
	ActionReportGenerated = "report_generated"
	ActionViewExported    = "view_exported"
	ActionDataRefreshed   = "data_refreshed"
	ActionAssistantUsed   = "assistant_used"
)

type Event struct {
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityRef string    `json:"entity_ref"`
	Metadata  any       `json:"metadata,omitempty"`
	At        time.Time `json:"at"`
}

// Sink persists or forwards one event.
type Sink interface {
	Write(ctx context.Context, ev Event) error
}
