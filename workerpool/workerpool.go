// Copyright 2025 The go-highway Authors. SPDX-License-Identifier: Apache-2.0

// Package workerpool runs a precomputed set of disjoint index ranges in
// parallel and blocks until all of them are done.
//
// Two executors are provided. Spawn starts a fresh goroutine per range on
// every call and keeps nothing alive between calls. Pool keeps a fixed set
// of workers alive and feeds them ranges, which avoids the spawn cost when
// many small multiplications run back to back:
//
//	pool := workerpool.New(runtime.GOMAXPROCS(0))
//	defer pool.Close()
//
//	for _, size := range sizes {
//	    pool.Execute(ranges, func(start, end int) {
//	        processRows(start, end)
//	    })
//	}
//
// Neither executor changes how work is split: the caller decides the ranges,
// and each range is handed to exactly one invocation of fn.
package workerpool

import (
	"runtime"
	"sync"
)

// Range is the half-open interval [Start, End).
type Range struct {
	Start, End int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Executor runs fn once per range, possibly concurrently, and returns after
// every call has returned.
type Executor interface {
	Execute(ranges []Range, fn func(start, end int))
}

// Spawn is an Executor that starts one goroutine per non-empty range on
// every call. The zero value is ready to use.
type Spawn struct{}

// Execute implements Executor.
func (Spawn) Execute(ranges []Range, fn func(start, end int)) {
	var wg sync.WaitGroup
	for _, r := range ranges {
		if r.Len() <= 0 {
			continue
		}
		wg.Go(func() {
			fn(r.Start, r.End)
		})
	}
	wg.Wait()
}

// Pool is an Executor backed by a fixed set of long-lived worker
// goroutines. Create one with New and release it with Close.
type Pool struct {
	size  int
	queue chan task

	// mu guards stopped and the queue's closed state. Execute holds the
	// read side while it sends, Close the write side while it closes.
	mu      sync.RWMutex
	stopped bool
}

// task is one range of one Execute call.
type task struct {
	r    Range
	fn   func(start, end int)
	done *sync.WaitGroup
}

// New starts a pool of n workers; n <= 0 means GOMAXPROCS. The workers
// live until Close.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.GOMAXPROCS(0)
	}
	p := &Pool{
		size: n,
		// Two pending tasks per worker keeps Execute from blocking on
		// the send while earlier ranges are still running.
		queue: make(chan task, 2*n),
	}
	for range n {
		go p.loop()
	}
	return p
}

func (p *Pool) loop() {
	for t := range p.queue {
		t.fn(t.r.Start, t.r.End)
		t.done.Done()
	}
}

// NumWorkers returns the number of worker goroutines.
func (p *Pool) NumWorkers() int {
	return p.size
}

// Close stops the workers once queued tasks drain. It is idempotent and
// may race with Execute: a closed pool still accepts Execute calls and
// runs them inline.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopped {
		return
	}
	p.stopped = true
	close(p.queue)
}

// Execute implements Executor. Ranges are queued in order; with fewer
// workers than ranges some workers run several.
func (p *Pool) Execute(ranges []Range, fn func(start, end int)) {
	p.mu.RLock()
	if p.stopped {
		p.mu.RUnlock()
		for _, r := range ranges {
			if r.Len() > 0 {
				fn(r.Start, r.End)
			}
		}
		return
	}

	var wg sync.WaitGroup
	for _, r := range ranges {
		if r.Len() <= 0 {
			continue
		}
		wg.Add(1)
		p.queue <- task{r: r, fn: fn, done: &wg}
	}
	p.mu.RUnlock()
	wg.Wait()
}
