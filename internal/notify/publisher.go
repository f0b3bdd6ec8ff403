// Package notify publishes recompute events to a socket.io server so that
// external viewers can follow a document as it recomputes.
package notify

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/featuregraph/internal/ctxlog"
	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
)

// Event names emitted by the Publisher.
const (
	EventObjectRecomputed   = "object_recomputed"
	EventObjectError        = "object_error"
	EventDocumentRecomputed = "document_recomputed"
)

// Emitter sends one event with a JSON-encodable payload.
type Emitter interface {
	Emit(event string, payload any)
}

// Publisher is a document.Observer that forwards recompute events to an
// Emitter.
type Publisher struct {
	document.BaseObserver

	emitter  Emitter
	document string
	logger   *slog.Logger
}

var _ document.Observer = (*Publisher)(nil)

// NewPublisher creates a publisher for the named document.
func NewPublisher(ctx context.Context, e Emitter, documentName string) *Publisher {
	return &Publisher{
		emitter:  e,
		document: documentName,
		logger:   ctxlog.FromContext(ctx).With("component", "notify", "document", documentName),
	}
}

func (p *Publisher) emit(event string, payload map[string]any) {
	payload["document"] = p.document
	p.logger.Debug("Emitting event.", "event", event)
	p.emitter.Emit(event, payload)
}

// OnObjectRecomputed implements document.Observer.
func (p *Publisher) OnObjectRecomputed(o *object.Object) {
	p.emit(EventObjectRecomputed, map[string]any{
		"object": o.Name(),
		"label":  o.Label(),
		"type":   o.Type(),
	})
}

// OnObjectError implements document.Observer.
func (p *Publisher) OnObjectError(o *object.Object, err error) {
	p.emit(EventObjectError, map[string]any{
		"object": o.Name(),
		"label":  o.Label(),
		"type":   o.Type(),
		"kind":   recompute.KindOf(err),
		"error":  err.Error(),
	})
}

// OnDocumentRecomputed implements document.Observer.
func (p *Publisher) OnDocumentRecomputed(_ *document.Document, res document.RecomputeResult) {
	p.emit(EventDocumentRecomputed, map[string]any{
		"executed":    nonNil(res.Executed),
		"failed":      nonNil(res.Failed),
		"skipped":     nonNil(res.Skipped),
		"aborted":     res.Aborted,
		"duration_ms": res.Duration.Milliseconds(),
	})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
