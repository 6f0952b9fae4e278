package codegen

import "fmt"

// Constants fixed by spec.md §6.
const (
	DefaultTapeLen     = 30000
	MutexStride        = 64 // bytes; largest known platform mutex
	InitialLockCapacity = 16
)

// writeStateStruct emits the state type. Field order is the wire-level
// contract with the race-detection runtime (spec.md §3/§6): tape-base
// pointer, pointer-index integer, mutex-slab pointer, lock-stack pointer,
// lock-stack length, lock-stack capacity, and — sanitizing mode only —
// the parent thread id.
func (g *Generator) writeStateStruct() {
	g.out.writel("typedef struct state {")
	g.out.indent()
	g.out.writeil("uint8_t* tape_base;")
	g.out.writeil("int64_t  ptr_index;")
	g.out.writeil("uint8_t* mutex_slab;")
	g.out.writeil("int64_t* lock_stack;")
	g.out.writeil("int64_t  lock_sp;")
	g.out.writeil("int64_t  lock_cap;")
	if g.sanitize {
		g.out.writeil("uint64_t tid;")
	}
	g.out.unindent()
	g.out.writel("} state_t;")
	g.out.writel("")
}

// writeConstants emits the fixed tape/stride/capacity constants the
// helpers and main below depend on.
func (g *Generator) writeConstants() {
	g.out.writel(fmt.Sprintf("#define TAPE_LEN %d", g.tapeLen))
	g.out.writel(fmt.Sprintf("#define MUTEX_STRIDE %d", MutexStride))
	g.out.writel(fmt.Sprintf("#define INITIAL_LOCK_CAP %d", InitialLockCapacity))
	g.out.writel("")
}
