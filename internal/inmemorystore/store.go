// Package inmemorystore provides a thread-safe, in-memory implementation of
// the reportstore.Store interface. It is suitable for a single server
// process and for tests; reports are lost when the process exits.
package inmemorystore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/reportstore"
)

// Store keeps reports per document in a bounded slice, newest last.
//
// Reports are stored as encoded JSON so that readers never share memory
// with the engine or with each other.
type Store struct {
	mu         sync.RWMutex
	history    map[string][][]byte
	maxHistory int
}

var _ reportstore.Store = (*Store)(nil)

// New creates a new, empty store keeping maxHistory reports per document.
// A maxHistory <= 0 selects reportstore.DefaultMaxHistory.
func New(maxHistory int) *Store {
	if maxHistory <= 0 {
		maxHistory = reportstore.DefaultMaxHistory
	}
	return &Store{
		history:    make(map[string][][]byte),
		maxHistory: maxHistory,
	}
}

// Save implements reportstore.Store.
func (s *Store) Save(ctx context.Context, r *recompute.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	h := append(s.history[r.Document], data)
	if len(h) > s.maxHistory {
		h = h[len(h)-s.maxHistory:]
	}
	s.history[r.Document] = h
	return nil
}

// Latest implements reportstore.Store.
func (s *Store) Latest(ctx context.Context, document string) (*recompute.Report, error) {
	s.mu.RLock()
	h := s.history[document]
	var data []byte
	if len(h) > 0 {
		data = h[len(h)-1]
	}
	s.mu.RUnlock()

	if data == nil {
		return nil, reportstore.ErrNotFound
	}
	return decode(data)
}

// History implements reportstore.Store.
func (s *Store) History(ctx context.Context, document string, limit int) ([]*recompute.Report, error) {
	s.mu.RLock()
	h := s.history[document]
	n := len(h)
	if limit > 0 && limit < n {
		n = limit
	}
	raw := make([][]byte, 0, n)
	for i := len(h) - 1; i >= len(h)-n; i-- {
		raw = append(raw, h[i])
	}
	s.mu.RUnlock()

	out := make([]*recompute.Report, 0, len(raw))
	for _, data := range raw {
		r, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Documents implements reportstore.Store.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]string, 0, len(s.history))
	for doc := range s.history {
		docs = append(docs, doc)
	}
	sort.Strings(docs)
	return docs, nil
}

func decode(data []byte) (*recompute.Report, error) {
	var r recompute.Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
