// Command tsanrt builds, via `go build -buildmode=c-shared`, into
// libtsanrt.so plus a generated tsanrt.h: the cgo bridge between the
// pthreads C program the generator emits in sanitizing mode and the
// pure-Go dual race detector in raceruntime. The emitted C module
// declares the six tsan_* symbols as extern; linking it against
// libtsanrt.so at link time (spec.md §6: "loaded dynamically at link
// time") resolves them to the definitions below.
//
// A single process-wide Detector backs every exported hook: the
// generated C program is one OS process per run, so a package-level
// variable is the natural scope, mirroring how the generated code
// itself treats the tape and its slabs as process-lifetime globals.
// main is otherwise unused — c-shared mode never calls it.
package main

/*
#include <stdint.h>
#include <pthread.h>

// Mirrors codegen's state_t field order exactly (sanitizing build
// only: the tid field is only emitted when the generator runs with
// codegen.sanitize=true, which is the only mode this package is ever
// linked into).
typedef struct state {
	uint8_t*  tape_base;
	int64_t   ptr_index;
	uint8_t*  mutex_slab;
	int64_t*  lock_stack;
	int64_t   lock_sp;
	int64_t   lock_cap;
	uint64_t  tid;
} state_t;
*/
import "C"

import (
	"unsafe"

	"github.com/tapeforge/tapecc/raceruntime"
)

func main() {}

var detector = raceruntime.NewDetector()

func selfTID() raceruntime.ThreadID {
	return raceruntime.ThreadID(uint64(C.pthread_self()))
}

//export tsan_read
func tsan_read(st unsafe.Pointer) {
	s := (*C.state_t)(st)
	detector.Read(selfTID(), raceruntime.CellIndex(s.ptr_index))
}

//export tsan_write
func tsan_write(st unsafe.Pointer) {
	s := (*C.state_t)(st)
	detector.Write(selfTID(), raceruntime.CellIndex(s.ptr_index))
}

//export tsan_acquire
func tsan_acquire(st unsafe.Pointer, cell C.long) {
	_ = st
	detector.Acquire(selfTID(), raceruntime.CellIndex(cell))
}

//export tsan_release
func tsan_release(st unsafe.Pointer, cell C.long) {
	_ = st
	detector.Release(selfTID(), raceruntime.CellIndex(cell))
}

//export tsan_fork
func tsan_fork(parentTid C.ulonglong) {
	detector.Fork(raceruntime.ThreadID(uint64(parentTid)), selfTID())
}

//export tsan_join
func tsan_join(childTid C.ulonglong) {
	detector.Join(selfTID(), raceruntime.ThreadID(uint64(childTid)))
}
