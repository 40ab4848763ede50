// Package ratelimit implements fixed-window admission control backed by
// a shared counting store. A Redis store enforces one global budget per
// client across replicas; the memory store serves tests and
// single-instance runs with the same semantics.
package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Store counts admissions. Incr atomically increments the counter for
// key and returns the new count; the entry must expire on its own once
// ttl has passed.
type Store interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Limit is a fixed-window policy: at most Capacity admissions per
// time-aligned Window.
type Limit struct {
	Capacity int64
	Window   time.Duration
}

type Limiter struct {
	store  Store
	prefix string
	limit  Limit
}

func New(store Store, prefix string, limit Limit) *Limiter {
	return &Limiter{store: store, prefix: prefix, limit: limit}
}

// Allow records one admission for id and reports whether it fits the
// window's capacity. The window index is part of the counter key, so
// counters reset at window boundaries without explicit cleanup.
func (l *Limiter) Allow(ctx context.Context, id string) (bool, error) {
	window := time.Now().UnixMilli() / l.limit.Window.Milliseconds()
	key := fmt.Sprintf("%s:%s:%d", l.prefix, id, window)

	n, err := l.store.Incr(ctx, key, l.limit.Window)
	if err != nil {
		return false, err
	}
	return n <= l.limit.Capacity, nil
}
