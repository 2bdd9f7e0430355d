package logging

import (
	"time"

	"go.uber.org/zap"
)

// =============================================================================
// AUDIT EVENTS - one structured record per state-changing operation
// =============================================================================

// AuditEventType names a mutation the console performed against the catalog.
type AuditEventType string

const (
	AuditLogin         AuditEventType = "login"
	AuditLogout        AuditEventType = "logout"
	AuditProductCreate AuditEventType = "product_create"
	AuditProductUpdate AuditEventType = "product_update"
	AuditProductDelete AuditEventType = "product_delete"
)

// AuditEvent is a structured audit record.
type AuditEvent struct {
	Type      AuditEventType
	RequestID string
	Target    string // product id or account email
	Success   bool
	Duration  time.Duration
	Err       error
}

// Audit writes ev to the audit stream. It is a no-op unless debug logging is on.
func Audit(ev AuditEvent) {
	mu.RLock()
	r := root
	enabled := r != nil && opts.DebugMode
	mu.RUnlock()
	if !enabled {
		return
	}

	fields := []zap.Field{
		zap.String("event", string(ev.Type)),
		zap.String("target", ev.Target),
		zap.Bool("success", ev.Success),
		zap.Int64("dur_ms", ev.Duration.Milliseconds()),
	}
	if ev.RequestID != "" {
		fields = append(fields, zap.String("req", ev.RequestID))
	}
	if ev.Err != nil {
		fields = append(fields, zap.String("error", ev.Err.Error()))
	}

	l := r.Named("audit")
	if ev.Success {
		l.Info("audit", fields...)
		return
	}
	l.Warn("audit", fields...)
}
