// Package redisstore implements reportstore.Store on top of Redis, so that
// several server processes can share the recompute history of a document.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	backend "github.com/redis/go-redis/v9"
	"github.com/specialistvlad/featuregraph/internal/recompute"
	"github.com/specialistvlad/featuregraph/internal/reportstore"
)

const defaultPrefix = "featuregraph:reports:"

// Store keeps each document's reports in a Redis list, newest at the head,
// and the document names in a set.
type Store struct {
	client     *backend.Client
	prefix     string
	maxHistory int
}

var _ reportstore.Store = (*Store)(nil)

type Option func(*Store)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// WithMaxHistory sets how many reports are kept per document.
func WithMaxHistory(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

// New creates a Redis-backed store connected to address.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client:     client,
		prefix:     defaultPrefix,
		maxHistory: reportstore.DefaultMaxHistory,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

func (s *Store) key(document string) string {
	return s.prefix + "doc:" + document
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Save implements reportstore.Store.
func (s *Store) Save(ctx context.Context, r *recompute.Report) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.LPush(ctx, s.key(r.Document), data)
	pipe.LTrim(ctx, s.key(r.Document), 0, int64(s.maxHistory-1))
	pipe.SAdd(ctx, s.indexKey(), r.Document)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save report to redis: %w", err)
	}
	return nil
}

// Latest implements reportstore.Store.
func (s *Store) Latest(ctx context.Context, document string) (*recompute.Report, error) {
	val, err := s.client.LIndex(ctx, s.key(document), 0).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, reportstore.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get report from redis: %w", err)
	}
	return decode(val)
}

// History implements reportstore.Store.
func (s *Store) History(ctx context.Context, document string, limit int) ([]*recompute.Report, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	vals, err := s.client.LRange(ctx, s.key(document), 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list reports from redis: %w", err)
	}

	out := make([]*recompute.Report, 0, len(vals))
	for _, val := range vals {
		r, err := decode(val)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Documents implements reportstore.Store.
func (s *Store) Documents(ctx context.Context) ([]string, error) {
	docs, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	sort.Strings(docs)
	return docs, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

func decode(val string) (*recompute.Report, error) {
	var r recompute.Report
	if err := json.Unmarshal([]byte(val), &r); err != nil {
		return nil, fmt.Errorf("failed to unmarshal report: %w", err)
	}
	return &r, nil
}
