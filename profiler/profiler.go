// Copyright 2025 go-highway Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package profiler is a small registry of named wall-clock timers.
//
// Each name maps to one point. Start and End may be called on the same name
// any number of times; elapsed time accumulates, so a phase repeated across
// iterations reports its total. The registry is not safe for concurrent
// use: it is meant to be driven from the goroutine that dispatches work,
// never from inside workers.
package profiler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"k8s.io/klog/v2"
)

const (
	// MaxPoints bounds the number of distinct names a Profiler tracks.
	MaxPoints = 100

	// MaxNameLen is the longest name kept; longer names are truncated.
	MaxNameLen = 63
)

var (
	// ErrCapacity is returned by Start when MaxPoints names are in use.
	ErrCapacity = errors.New("profiler: too many profile points")

	// ErrNotActive is returned by End for a name with no running timer.
	ErrNotActive = errors.New("profiler: no active profile point")
)

// Point is the accumulated state for one name.
type Point struct {
	Name    string
	Elapsed time.Duration
	Active  bool

	start time.Time
}

// Milliseconds returns Elapsed as fractional milliseconds.
func (p Point) Milliseconds() float64 {
	return float64(p.Elapsed) / float64(time.Millisecond)
}

// Profiler holds up to MaxPoints named timers in first-start order.
type Profiler struct {
	points []Point
	index  map[string]int
	now    func() time.Time
}

// New returns an empty Profiler using the monotonic wall clock.
func New() *Profiler {
	return NewWithClock(time.Now)
}

// NewWithClock returns an empty Profiler reading time from now.
func NewWithClock(now func() time.Time) *Profiler {
	return &Profiler{
		points: make([]Point, 0, MaxPoints),
		index:  make(map[string]int, MaxPoints),
		now:    now,
	}
}

func truncateName(name string) string {
	if len(name) > MaxNameLen {
		return name[:MaxNameLen]
	}
	return name
}

// Start begins (or restarts) the timer for name, creating the point on
// first use. Restarting an already active point discards its pending
// interval.
func (p *Profiler) Start(name string) error {
	name = truncateName(name)
	idx, ok := p.index[name]
	if !ok {
		if len(p.points) >= MaxPoints {
			klog.Warningf("profiler: dropping %q: %d points already registered", name, MaxPoints)
			return ErrCapacity
		}
		idx = len(p.points)
		p.points = append(p.points, Point{Name: name})
		p.index[name] = idx
	}
	pt := &p.points[idx]
	pt.start = p.now()
	pt.Active = true
	return nil
}

// End stops the timer for name and adds the interval to its total. Ending
// a name that is unknown or not running logs a warning and changes
// nothing.
func (p *Profiler) End(name string) error {
	end := p.now()
	name = truncateName(name)
	idx, ok := p.index[name]
	if !ok || !p.points[idx].Active {
		klog.Warningf("profiler: no active profile point named %q", name)
		return ErrNotActive
	}
	pt := &p.points[idx]
	pt.Elapsed += end.Sub(pt.start)
	pt.Active = false
	return nil
}

// Time runs fn between Start(name) and End(name).
func (p *Profiler) Time(name string, fn func()) {
	started := p.Start(name) == nil
	fn()
	if started {
		_ = p.End(name)
	}
}

// Points returns a copy of every point in first-start order.
func (p *Profiler) Points() []Point {
	return append([]Point(nil), p.points...)
}

// Lookup returns the point for name, if registered.
func (p *Profiler) Lookup(name string) (Point, bool) {
	idx, ok := p.index[truncateName(name)]
	if !ok {
		return Point{}, false
	}
	return p.points[idx], true
}

// Total is the sum of every point's accumulated time.
func (p *Profiler) Total() time.Duration {
	var total time.Duration
	for _, pt := range p.points {
		total += pt.Elapsed
	}
	return total
}

// Reset forgets every point.
func (p *Profiler) Reset() {
	p.points = p.points[:0]
	clear(p.index)
}

const (
	tableRule  = "========================================"
	tableSplit = "----------------------------------------"
)

// WriteTable prints a fixed-width report of every point followed by a
// TOTAL row.
func (p *Profiler) WriteTable(w io.Writer) error {
	ew := &errWriter{w: w}
	ew.printf("\n%s\n", tableRule)
	ew.printf("         PROFILING RESULTS              \n")
	ew.printf("%s\n", tableRule)
	ew.printf("%-30s %15s\n", "Section", "Time (ms)")
	ew.printf("%s\n", tableSplit)
	for _, pt := range p.points {
		ew.printf("%-30s %15.4f\n", pt.Name, pt.Milliseconds())
	}
	ew.printf("%s\n", tableSplit)
	ew.printf("%-30s %15.4f\n", "TOTAL", float64(p.Total())/float64(time.Millisecond))
	ew.printf("%s\n", tableRule)
	return ew.err
}

// WriteCSV writes a "section,time_ms" header and one row per point, with
// times at 6 decimal places.
func (p *Profiler) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"section", "time_ms"}); err != nil {
		return err
	}
	for _, pt := range p.points {
		ms := strconv.FormatFloat(pt.Milliseconds(), 'f', 6, 64)
		if err := cw.Write([]string{pt.Name, ms}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// SaveCSV overwrites filename with WriteCSV's output.
func (p *Profiler) SaveCSV(filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("profiler: cannot open %s for writing: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return p.WriteCSV(f)
}

// errWriter remembers the first write error so a report can be printed
// without checking every line.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
