package notify

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/specialistvlad/featuregraph/internal/document"
	"github.com/specialistvlad/featuregraph/internal/object"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type emitted struct {
	event   string
	payload map[string]any
}

type fakeEmitter struct {
	mu     sync.Mutex
	events []emitted
}

func (f *fakeEmitter) Emit(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, emitted{event: event, payload: payload.(map[string]any)})
}

func TestPublisher_ForwardsPassEvents(t *testing.T) {
	ctx := context.Background()
	d := document.New("Bracket")
	em := &fakeEmitter{}
	d.Observe(NewPublisher(ctx, em, d.Name()))

	_, err := d.AddObject(ctx, object.Spec{Type: "box", Name: "Box", Label: "Plate"})
	require.NoError(t, err)
	_, err = d.AddObject(ctx, object.Spec{
		Type: "sphere",
		Name: "Ball",
		Behavior: object.BehaviorFunc(func(context.Context, *object.Object) error {
			return errors.New("radius must be positive")
		}),
	})
	require.NoError(t, err)

	_, err = recompute.New().Recompute(ctx, d)
	require.NoError(t, err)

	require.Len(t, em.events, 3)

	assert.Equal(t, EventObjectRecomputed, em.events[0].event)
	assert.Equal(t, map[string]any{"document": "Bracket", "object": "Box", "label": "Plate", "type": "box"}, em.events[0].payload)

	assert.Equal(t, EventObjectError, em.events[1].event)
	assert.Equal(t, "Ball", em.events[1].payload["object"])
	assert.Equal(t, recompute.KindComputation, em.events[1].payload["kind"])
	assert.Contains(t, em.events[1].payload["error"], "radius must be positive")

	assert.Equal(t, EventDocumentRecomputed, em.events[2].event)
	assert.Equal(t, []string{"Box"}, em.events[2].payload["executed"])
	assert.Equal(t, []string{"Ball"}, em.events[2].payload["failed"])
	assert.Equal(t, []string{}, em.events[2].payload["skipped"])
	assert.Equal(t, false, em.events[2].payload["aborted"])
}
