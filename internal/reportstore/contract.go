package reportstore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunContract runs a suite of tests that every Store implementation must
// pass. The store must be empty and configured to keep maxHistory reports.
func RunContract(t *testing.T, store Store, maxHistory int) {
	ctx := context.Background()
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	report := func(doc string, n int) *recompute.Report {
		return &recompute.Report{
			Document: doc,
			Success:  n%2 == 0,
			Errors:   map[string]string{"Fillet": fmt.Sprintf("failure %d", n)},
			Failures: []recompute.Failure{{Object: "Fillet", Kind: recompute.KindComputation, Message: fmt.Sprintf("failure %d", n)}},
			Executed: []string{"Box"},
			Started:  started.Add(time.Duration(n) * time.Second),
			Duration: time.Duration(n) * time.Millisecond,
		}
	}

	t.Run("Latest of unknown document", func(t *testing.T) {
		_, err := store.Latest(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		history, err := store.History(ctx, "missing", 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("Save and Latest", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, report("Part", 1)))
		require.NoError(t, store.Save(ctx, report("Part", 2)))

		latest, err := store.Latest(ctx, "Part")
		require.NoError(t, err)
		assert.Equal(t, "Part", latest.Document)
		assert.True(t, latest.Success)
		assert.Equal(t, "failure 2", latest.Errors["Fillet"])
		assert.Equal(t, []string{"Box"}, latest.Executed)
		assert.Equal(t, recompute.KindComputation, latest.Failures[0].Kind)
		assert.True(t, latest.Started.Equal(started.Add(2*time.Second)))
		assert.Equal(t, 2*time.Millisecond, latest.Duration)
	})

	t.Run("History is bounded and newest first", func(t *testing.T) {
		for n := 1; n <= maxHistory+2; n++ {
			require.NoError(t, store.Save(ctx, report("Bracket", n)))
		}

		history, err := store.History(ctx, "Bracket", 0)
		require.NoError(t, err)
		require.Len(t, history, maxHistory)
		assert.Equal(t, fmt.Sprintf("failure %d", maxHistory+2), history[0].Errors["Fillet"])
		assert.Equal(t, "failure 3", history[maxHistory-1].Errors["Fillet"])

		limited, err := store.History(ctx, "Bracket", 2)
		require.NoError(t, err)
		require.Len(t, limited, 2)
		assert.Equal(t, history[1].Errors, limited[1].Errors)
	})

	t.Run("Documents", func(t *testing.T) {
		docs, err := store.Documents(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Bracket", "Part"}, docs)
	})

	t.Run("Saved reports are copies", func(t *testing.T) {
		r := report("Copy", 1)
		require.NoError(t, store.Save(ctx, r))
		r.Executed[0] = "Changed"
		r.Errors["Fillet"] = "changed"

		latest, err := store.Latest(ctx, "Copy")
		require.NoError(t, err)
		assert.Equal(t, []string{"Box"}, latest.Executed)
		assert.Equal(t, "failure 1", latest.Errors["Fillet"])
	})
}
