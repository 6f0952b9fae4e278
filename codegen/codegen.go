// Package codegen emits a self-contained textual IR module for the
// instruction tree a parser.Parser produces: a state type, the runtime
// helpers spec.md §4.C fixes, and one thunk per parallel branch (plus
// main), in the teacher's deferred-definition style — call sites are
// written where they occur, callee bodies are captured into a queue and
// appended at the tail of the module so no forward declaration is ever
// needed.
package codegen

import (
	"fmt"

	"github.com/tapeforge/tapecc/ast"
	"github.com/tapeforge/tapecc/internal/config"
)

// deferredFn is one captured, fully-built function body waiting to be
// appended to the module tail. Order of appearance in the queue matches
// registration order, so branches at the same nesting depth land in
// source order in the output.
type deferredFn struct {
	name string
	text string
}

// Generator walks an instruction tree and produces IR text. It holds no
// state across calls to Generate.
type Generator struct {
	out      *outputWriter
	deferred []deferredFn

	nameCounter int

	sanitize bool
	tapeLen  int
}

// Generate emits the full IR module for body under cfg. It is the only
// entry point; the generator never fails at emission time — every input
// that survived parsing is always emittable (spec.md §4.C).
func Generate(body []ast.Instruction, cfg *config.Config) (string, error) {
	g := &Generator{
		out:      newOutputWriter(),
		sanitize: cfg.GetBool("codegen.sanitize"),
		tapeLen:  cfg.GetInt("codegen.tape_len"),
	}

	g.writePrelude()
	g.writeConstants()
	g.writeExterns()
	g.writeStateStruct()
	g.writeRuntimeHelpers()

	mainName := g.registerThunk("tapecc_main", body)
	g.writeMainEntry(mainName)
	g.flushDeferred()

	return g.out.buffer.String(), nil
}

func (g *Generator) writePrelude() {
	g.out.writel("/*")
	g.out.writel(" * Auto-generated by tapecc. Do not edit.")
	if g.sanitize {
		g.out.writel(" * Built with race instrumentation (codegen.sanitize=true).")
	}
	g.out.writel(" */")
	g.out.writel("")
	g.out.writel("#include <stdint.h>")
	g.out.writel("#include <stddef.h>")
	g.out.writel("")
}

// freshName returns label-prefix suffixed with a module-unique counter,
// guaranteeing uniqueness within the module regardless of emission
// order (spec.md §4.C, "Uniqueness and determinism").
func (g *Generator) freshName(prefix string) string {
	g.nameCounter++
	return fmt.Sprintf("%s_%d", prefix, g.nameCounter)
}

// registerThunk builds body into a fresh function of a state pointer,
// queuing its text for end-of-module emission and returning its name.
// The output buffer is swapped for the duration of the build so the
// thunk is constructed in isolation; the call site that invoked
// registerThunk keeps writing into its own (outer) buffer immediately
// afterwards — this is the "emit the call site now, queue the callee"
// discipline spec.md §9 describes.
func (g *Generator) registerThunk(label string, body []ast.Instruction) string {
	name := g.freshName(label)

	saved := g.out
	g.out = newOutputWriter()
	g.out.writel(fmt.Sprintf("/* thunk: %s */", label))
	g.out.writel(fmt.Sprintf("static void %s(state_t* st) {", name))
	g.out.indent()
	for _, n := range body {
		// Accept dispatches back into this same Generator; nested
		// Parallel nodes register their own branch thunks recursively,
		// still via this buffer-swap discipline.
		_ = n.Accept(g)
	}
	g.out.unindent()
	g.out.writel("}")

	g.deferred = append(g.deferred, deferredFn{name: name, text: g.out.buffer.String()})
	g.out = saved
	return name
}

func (g *Generator) flushDeferred() {
	for _, fn := range g.deferred {
		g.out.writel("")
		g.out.write(fn.text)
	}
}

// --- ast.Visitor ---

func (g *Generator) VisitIncPtr(*ast.IncPtr) error {
	g.out.writeil("bf_incptr(st);")
	return nil
}

func (g *Generator) VisitDecPtr(*ast.DecPtr) error {
	g.out.writeil("bf_decptr(st);")
	return nil
}

func (g *Generator) VisitIncCell(*ast.IncCell) error {
	g.out.writeil("bf_inccell(st);")
	return nil
}

func (g *Generator) VisitDecCell(*ast.DecCell) error {
	g.out.writeil("bf_deccell(st);")
	return nil
}

func (g *Generator) VisitOutput(*ast.Output) error {
	g.out.writeil("bf_output(st);")
	return nil
}

func (g *Generator) VisitInput(*ast.Input) error {
	g.out.writeil("bf_input(st);")
	return nil
}

func (g *Generator) VisitLockAcquire(*ast.LockAcquire) error {
	g.out.writeil("bf_lock_acquire(st);")
	return nil
}

func (g *Generator) VisitLockRelease(*ast.LockRelease) error {
	g.out.writeil("bf_lock_release(st);")
	return nil
}

func (g *Generator) VisitWait(*ast.Wait) error {
	g.out.writeil("bf_wait(st);")
	return nil
}

func (g *Generator) VisitNotify(*ast.Notify) error {
	g.out.writeil("bf_notify(st);")
	return nil
}

func (g *Generator) VisitSleep(n *ast.Sleep) error {
	g.out.writeil(fmt.Sprintf("bf_sleep(st, %d);", n.N))
	return nil
}

// VisitLoop lowers a Loop into three blocks: the labeled cond block loads
// the current cell and branches on zero, the unlabeled body runs the
// loop's instructions and jumps back to cond, and the end label is where
// control resumes.
func (g *Generator) VisitLoop(n *ast.Loop) error {
	cond := g.freshName("loop_cond")
	end := g.freshName("loop_end")

	g.out.writeil(cond + ":")
	g.out.writeil(fmt.Sprintf("if (*(st->tape_base + st->ptr_index) == 0) goto %s;", end))
	for _, c := range n.Body {
		if err := c.Accept(g); err != nil {
			return err
		}
	}
	g.out.writeil("goto " + cond + ";")
	g.out.writeil(end + ":")
	return nil
}
