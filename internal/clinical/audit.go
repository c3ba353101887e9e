package clinical

import (
	"context"
	"log"

	"github.com/aurelia-health/aurelia-backend/internal/models"
)

// Auditor is a thin convenience wrapper over the append-only sink for call
// sites outside the engine services (export handler, dashboard feed).
type Auditor struct {
	Sink AuditSink
}

// Record appends an audit record. Failures are logged, never propagated:
// auditing must not take down the read path it observes.
func (a *Auditor) Record(ctx context.Context, actorID, action, targetID string, metadata map[string]string) {
	if a == nil || a.Sink == nil {
		return
	}
	if err := a.Sink.Append(ctx, models.AuditRecord{
		ActorID:  actorID,
		Action:   action,
		TargetID: targetID,
		Metadata: metadata,
	}); err != nil {
		log.Printf("audit append failed (%s): %v", action, err)
	}
}
