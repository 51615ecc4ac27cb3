package audit

import (
	"context"
	"errors"

	"github.com/vibelang-org/vibe/engine"
)

// Multi fans one completed interaction out to several sinks — cmd/vibe uses
// it to record every interaction to both SQLSink (the queryable audit trail)
// and memory.VectorStore (semantic recall) without either needing to know
// about the other. A failing sink doesn't stop the rest from recording;
// their errors are joined and returned together.
type Multi []engine.AuditSink

// RecordInteraction implements engine.AuditSink.
func (m Multi) RecordInteraction(ctx context.Context, interaction engine.AIInteraction) error {
	var errs []error
	for _, sink := range m {
		if sink == nil {
			continue
		}
		if err := sink.RecordInteraction(ctx, interaction); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
