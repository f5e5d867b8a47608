// Package redis provides a shared schema registry backed by Redis.
//
// Documents are stored as canonical JSON under prefix+"doc:"+uri. A sorted
// set at prefix+"index" tracks the stored URIs, scored by expiry, so List can prune
// entries whose keys have already expired.
package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/jsonval/pkg/ports"
	"github.com/aretw0/jsonval/pkg/value"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces all keys written by the store.
const DefaultPrefix = "jsonval:schema:"

// noExpiry is the index score of documents stored without a TTL.
const noExpiry = 4102444800 // 2100-01-01

// Store implements ports.SchemaStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
}

type Option func(*Store)

// WithTTL sets the expiration for stored documents.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for stored documents.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a new Redis store with options.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis store from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(uri string) string {
	return s.prefix + "doc:" + uri
}

func (s *Store) indexKey() string {
	return s.prefix + "index"
}

// Put stores the document and indexes its URI.
func (s *Store) Put(ctx context.Context, uri string, doc value.Value) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	score := float64(time.Now().Add(s.ttl).Unix())
	if s.ttl == 0 {
		score = noExpiry
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.key(uri), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{Score: score, Member: uri})
	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("save to redis", err)
	}
	return nil
}

// Resolve retrieves the document from Redis.
func (s *Store) Resolve(ctx context.Context, uri string) (value.Value, error) {
	data, err := s.client.Get(ctx, s.key(uri)).Bytes()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return value.Value{}, fmt.Errorf("%w: %s", ports.ErrNotFound, uri)
		}
		return value.Value{}, wrap("get from redis", err)
	}

	doc, err := value.ParseJSON(data)
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to parse stored schema %s: %w", uri, err)
	}
	return doc, nil
}

// Delete removes the document.
func (s *Store) Delete(ctx context.Context, uri string) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, s.key(uri))
	pipe.ZRem(ctx, s.indexKey(), uri)

	if _, err := pipe.Exec(ctx); err != nil {
		return wrap("delete from redis", err)
	}
	return nil
}

// List returns the stored URIs, sorted. Expired entries are pruned from the
// index first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	now := float64(time.Now().Unix())
	err := s.client.ZRemRangeByScore(ctx, s.indexKey(), "-inf", fmt.Sprintf("%f", now)).Err()
	if err != nil {
		return nil, wrap("prune expired schemas", err)
	}

	uris, err := s.client.ZRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, wrap("list schemas", err)
	}
	slices.Sort(uris)
	return uris, nil
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}

// wrap marks backend failures as ports.ErrNetwork, leaving context errors
// recognizable.
func wrap(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("failed to %s: %w", op, err)
	}
	return fmt.Errorf("failed to %s: %w: %w", op, ports.ErrNetwork, err)
}

var _ ports.SchemaStore = (*Store)(nil)
