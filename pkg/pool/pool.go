// Package pool hands out per-goroutine Conductors. A Conductor's taggers keep
// adaptive state, so concurrent documents must never share one; the pool
// reuses idle instances instead of rebuilding taggers for every document.
package pool

import (
	"context"
	"sync"

	"github.com/kittclouds/opinion/pkg/scanner/conductor"
)

// Factory builds a fresh Conductor.
type Factory func() (*conductor.Conductor, error)

// Pool keeps up to a fixed number of idle Conductors.
type Pool struct {
	factory Factory
	idle    chan *conductor.Conductor

	mu      sync.Mutex
	created int
}

// New creates a pool retaining at most size idle Conductors.
func New(size int, factory Factory) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{factory: factory, idle: make(chan *conductor.Conductor, size)}
}

// Get returns an idle Conductor or builds a new one.
func (p *Pool) Get(ctx context.Context) (*conductor.Conductor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case c := <-p.idle:
		return c, nil
	default:
	}
	c, err := p.factory()
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.created++
	p.mu.Unlock()
	return c, nil
}

// Put resets c and returns it to the pool. Surplus instances are dropped.
func (p *Pool) Put(c *conductor.Conductor) {
	if c == nil {
		return
	}
	c.Reset()
	select {
	case p.idle <- c:
	default:
	}
}

// Created reports how many Conductors the factory has built.
func (p *Pool) Created() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.created
}
