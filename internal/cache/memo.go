// Package cache provides process-lifetime memoization for dataset loaders.
package cache

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// LoadFunc produces the memoized value.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Memo caches the result of a LoadFunc until Invalidate is called. Concurrent
// first callers share a single load. Failed loads are not cached.
//
// A shared load runs detached from any one caller's context, so a caller
// that gives up does not fail the others. A load that was in flight when
// Invalidate ran is returned to its waiters but never stored.
type Memo[T any] struct {
	name string
	load LoadFunc[T]

	mu       sync.RWMutex
	value    T
	loaded   bool
	loadedAt time.Time
	gen      uint64

	group singleflight.Group

	// OnLoad, if set, is called after every load attempt.
	OnLoad func(name string, d time.Duration, err error)
}

// NewMemo creates a Memo around load. name is used in logs and OnLoad.
func NewMemo[T any](name string, load LoadFunc[T]) *Memo[T] {
	return &Memo[T]{name: name, load: load}
}

// Get returns the cached value, loading it on first use. It returns early
// with ctx's error if ctx ends before the shared load completes.
func (m *Memo[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	if m.loaded {
		v := m.value
		m.mu.RUnlock()
		return v, nil
	}
	gen := m.gen
	m.mu.RUnlock()

	// Loads of different generations never share a flight.
	key := m.name + "#" + strconv.FormatUint(gen, 10)
	loadCtx := context.WithoutCancel(ctx)
	ch := m.group.DoChan(key, func() (any, error) {
		return m.loadAndStore(loadCtx, gen)
	})

	var zero T
	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		if res.Shared {
			zap.L().Debug("cache: shared in-flight load", zap.String("name", m.name))
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		return zero, eris.Wrapf(ctx.Err(), "cache: waiting for %s", m.name)
	}
}

func (m *Memo[T]) loadAndStore(ctx context.Context, gen uint64) (any, error) {
	m.mu.RLock()
	if m.loaded && m.gen == gen {
		v := m.value
		m.mu.RUnlock()
		return v, nil
	}
	m.mu.RUnlock()

	start := time.Now()
	v, err := m.load(ctx)
	if m.OnLoad != nil {
		m.OnLoad(m.name, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	stale := m.gen != gen
	if !stale {
		m.value = v
		m.loaded = true
		m.loadedAt = time.Now()
	}
	m.mu.Unlock()

	if stale {
		zap.L().Info("cache: discarded load invalidated in flight", zap.String("name", m.name))
	} else {
		zap.L().Debug("cache: loaded",
			zap.String("name", m.name),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	return v, nil
}

// Invalidate drops the cached value; the next Get reloads. A load already
// in flight is not stored.
func (m *Memo[T]) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero T
	m.value = zero
	m.loaded = false
	m.loadedAt = time.Time{}
	m.gen++
	zap.L().Info("cache: invalidated", zap.String("name", m.name))
}

// Loaded reports whether a value is cached and when it was loaded.
func (m *Memo[T]) Loaded() (bool, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded, m.loadedAt
}
