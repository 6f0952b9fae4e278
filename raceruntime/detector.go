// Package raceruntime implements the two independent race detectors the
// generator's sanitizing mode instruments the emitted program with: a
// lock-set engine and a FastTrack-style vector-clock engine. A race is
// reported only when both flag the same cell on the same access,
// matching spec.md §4.D's dual-check policy. The six C-ABI hooks
// (tsan_read, tsan_write, tsan_acquire, tsan_release, tsan_fork,
// tsan_join) are exported separately, by cshared/tsanrt, which takes
// ThreadID from pthread_self and CellIndex from the raw state pointer
// (or the cell argument) it receives, and calls into this package's
// Detector.
package raceruntime

import (
	"fmt"
	"os"
	"sync"
)

// ThreadID is the OS-native thread identifier. The current thread's id
// is always obtained by the caller from the OS; another thread's id is
// passed in only at fork time (the parent's, so the child hook knows
// which fork edge to record) and at join time (the joined child's).
type ThreadID uint64

// CellIndex addresses one of the thirty thousand tape cells. It also
// doubles as the mutex identity for Acquire/Release: each cell has
// exactly one associated lock.
type CellIndex int64

// Race is a single flagged access, reported only once both detectors
// agree on it.
type Race struct {
	Cell CellIndex
	Kind string // "read" or "write"
}

// String renders Race in the stable single-line format spec.md §7
// requires for standard-error output.
func (r Race) String() string {
	return fmt.Sprintf("race: cell=%d kind=%s", r.Cell, r.Kind)
}

// Reporter receives confirmed races. Detector's zero value has no
// Reporter; use NewDetector to get one wired to standard error, or
// NewDetectorWithReporter for tests that want to capture races instead
// of printing them.
type Reporter interface {
	Report(Race)
}

// StderrReporter writes each race to os.Stderr in Race's String format,
// matching spec.md §7: non-fatal, execution continues.
type StderrReporter struct{}

func (StderrReporter) Report(r Race) { fmt.Fprintln(os.Stderr, r.String()) }

// Detector owns the two engines and serializes every hook through a
// single mutex. This is intentionally coarse — instrumented runs are for
// correctness, not performance (spec.md §5) — and keeps the FFI surface
// free of hidden static construction: a Detector is always explicitly
// created and owned by its caller.
type Detector struct {
	mu       sync.Mutex
	ls       *lockSetEngine
	vc       *vcEngine
	reporter Reporter
}

// NewDetector returns a Detector that reports confirmed races to
// standard error.
func NewDetector() *Detector {
	return NewDetectorWithReporter(StderrReporter{})
}

// NewDetectorWithReporter returns a Detector reporting to r.
func NewDetectorWithReporter(r Reporter) *Detector {
	return &Detector{ls: newLockSetEngine(), vc: newVCEngine(), reporter: r}
}

func (d *Detector) onAccess(t ThreadID, cell CellIndex, isWrite bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	lsRace, priorWasWrite := d.ls.access(t, cell, isWrite)

	var vcRace bool
	if isWrite {
		vcRace = d.vc.write(t, cell)
	} else {
		vcRace = d.vc.read(t, cell)
	}

	if lsRace && vcRace {
		kind := "read"
		if isWrite || priorWasWrite {
			kind = "write"
		}
		d.reporter.Report(Race{Cell: cell, Kind: kind})
	}
}

// Read records a tape read by t at cell.
func (d *Detector) Read(t ThreadID, cell CellIndex) { d.onAccess(t, cell, false) }

// Write records a tape write by t at cell.
func (d *Detector) Write(t ThreadID, cell CellIndex) { d.onAccess(t, cell, true) }

// Acquire records t taking the lock on cell.
func (d *Detector) Acquire(t ThreadID, cell CellIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ls.acquire(t, cell)
	d.vc.acquire(t, cell)
}

// Release records t releasing the lock on cell.
func (d *Detector) Release(t ThreadID, cell CellIndex) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ls.release(t, cell)
	d.vc.release(t, cell)
}

// Fork records that parent forked child.
func (d *Detector) Fork(parent, child ThreadID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vc.fork(parent, child)
}

// Join records that parent joined a completed child.
func (d *Detector) Join(parent, child ThreadID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.vc.join(parent, child)
}
