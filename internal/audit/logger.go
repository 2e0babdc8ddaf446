package audit

import (
	"context"
	"encoding/json"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
)

// Store is the persistence the Logger writes through.
type Store interface {
	Create(ctx context.Context, log *models.AuditLog) error
}

// Logger is the database sink.
type Logger struct {
	store Store
}

func New(store Store) *Logger {
	return &Logger{store: store}
}

func (l *Logger) Write(ctx context.Context, ev Event) error {
	var metaJSON string
	if ev.Metadata != nil {
		if b, err := json.Marshal(ev.Metadata); err == nil {
			metaJSON = string(b)
		}
	}

	log := models.AuditLog{
		Actor:     ev.Actor,
		Action:    ev.Action,
		Entity:    ev.Entity,
		EntityRef: ev.EntityRef,
		Metadata:  metaJSON,
		CreatedAt: ev.At,
	}
	return l.store.Create(ctx, &log)
}
