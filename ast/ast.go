// Package ast defines the instruction tree the parser builds and the
// code generator walks. The tree is a closed tagged union: every node
// kind is a concrete Go type implementing Instruction, and dispatch
// happens through each node's Accept calling back into a Visitor, not
// through subclassing.
package ast

import (
	"fmt"
	"strings"

	"github.com/tapeforge/tapecc/internal/pos"
)

// Instruction is implemented by every node in the tree.
type Instruction interface {
	Span() pos.Span
	String() string
	Accept(Visitor) error
}

// Visitor dispatches over every concrete Instruction type. Implementors
// that only care about a handful of node kinds still must provide all
// methods; the code generator's emitter is the canonical implementation.
type Visitor interface {
	VisitIncPtr(*IncPtr) error
	VisitDecPtr(*DecPtr) error
	VisitIncCell(*IncCell) error
	VisitDecCell(*DecCell) error
	VisitOutput(*Output) error
	VisitInput(*Input) error
	VisitLockAcquire(*LockAcquire) error
	VisitLockRelease(*LockRelease) error
	VisitWait(*Wait) error
	VisitNotify(*Notify) error
	VisitSleep(*Sleep) error
	VisitLoop(*Loop) error
	VisitParallel(*Parallel) error
}

// Walk visits every node in order, dispatching through v. It exists so
// that simple consumers (pretty-printers, static counters) don't need to
// reimplement the recursive descent the code generator already does.
func Walk(v Visitor, body []Instruction) error {
	for _, n := range body {
		if err := n.Accept(v); err != nil {
			return err
		}
	}
	return nil
}

// leaf operations — no children, no payload.

type IncPtr struct{ rg pos.Span }
type DecPtr struct{ rg pos.Span }
type IncCell struct{ rg pos.Span }
type DecCell struct{ rg pos.Span }
type Output struct{ rg pos.Span }
type Input struct{ rg pos.Span }

// Wait and Notify are the condition-variable pair. The source grammar's
// run-collapsing encoding of a repeated wait token is parser-level sugar:
// a run of n consecutive wait tokens produces n of these leaves, not one
// counted node (see spec.md §9's resolution of the Wait/Notify
// ambiguity).
type Wait struct{ rg pos.Span }
type Notify struct{ rg pos.Span }

// LockAcquire and LockRelease bracket a ( ... ) region. The parser does
// not nest the enclosed sequence under them: they are two ordinary
// leaves with whatever lies between left untouched in the tree, matching
// spec.md §4.B's "brackets do not form a structured region" rule. Depth
// is a diagnostics-only nesting counter kept in program order: on a
// LockAcquire, the number of unmatched LockAcquire leaves up to and
// including this one; on a LockRelease, that number just before this
// release closes one (so "(+)" yields depth 1 on both); the code
// generator never reads it — balance is enforced dynamically by the
// runtime, never statically.
type LockAcquire struct {
	rg    pos.Span
	Depth int
}
type LockRelease struct {
	rg    pos.Span
	Depth int
}

func NewIncPtr(s pos.Span) *IncPtr           { return &IncPtr{rg: s} }
func NewDecPtr(s pos.Span) *DecPtr           { return &DecPtr{rg: s} }
func NewIncCell(s pos.Span) *IncCell         { return &IncCell{rg: s} }
func NewDecCell(s pos.Span) *DecCell         { return &DecCell{rg: s} }
func NewOutput(s pos.Span) *Output           { return &Output{rg: s} }
func NewInput(s pos.Span) *Input             { return &Input{rg: s} }
func NewWait(s pos.Span) *Wait               { return &Wait{rg: s} }
func NewNotify(s pos.Span) *Notify           { return &Notify{rg: s} }
func NewLockAcquire(s pos.Span, d int) *LockAcquire { return &LockAcquire{rg: s, Depth: d} }
func NewLockRelease(s pos.Span, d int) *LockRelease { return &LockRelease{rg: s, Depth: d} }

func (n *IncPtr) Span() pos.Span      { return n.rg }
func (n *DecPtr) Span() pos.Span      { return n.rg }
func (n *IncCell) Span() pos.Span     { return n.rg }
func (n *DecCell) Span() pos.Span     { return n.rg }
func (n *Output) Span() pos.Span      { return n.rg }
func (n *Input) Span() pos.Span       { return n.rg }
func (n *Wait) Span() pos.Span        { return n.rg }
func (n *Notify) Span() pos.Span      { return n.rg }
func (n *LockAcquire) Span() pos.Span { return n.rg }
func (n *LockRelease) Span() pos.Span { return n.rg }

func (n *IncPtr) String() string  { return ">" }
func (n *DecPtr) String() string  { return "<" }
func (n *IncCell) String() string { return "+" }
func (n *DecCell) String() string { return "-" }
func (n *Output) String() string  { return "." }
func (n *Input) String() string   { return "," }
func (n *Wait) String() string    { return "^" }
func (n *Notify) String() string  { return "v" }
func (n *LockAcquire) String() string {
	return fmt.Sprintf("(depth=%d", n.Depth)
}
func (n *LockRelease) String() string {
	return fmt.Sprintf(")depth=%d", n.Depth)
}

func (n *IncPtr) Accept(v Visitor) error      { return v.VisitIncPtr(n) }
func (n *DecPtr) Accept(v Visitor) error      { return v.VisitDecPtr(n) }
func (n *IncCell) Accept(v Visitor) error     { return v.VisitIncCell(n) }
func (n *DecCell) Accept(v Visitor) error     { return v.VisitDecCell(n) }
func (n *Output) Accept(v Visitor) error      { return v.VisitOutput(n) }
func (n *Input) Accept(v Visitor) error       { return v.VisitInput(n) }
func (n *Wait) Accept(v Visitor) error        { return v.VisitWait(n) }
func (n *Notify) Accept(v Visitor) error      { return v.VisitNotify(n) }
func (n *LockAcquire) Accept(v Visitor) error { return v.VisitLockAcquire(n) }
func (n *LockRelease) Accept(v Visitor) error { return v.VisitLockRelease(n) }

// Sleep sleeps for N ticks of one hundred milliseconds each. N is the
// length of the run of consecutive sleep-tick tokens that produced it.
type Sleep struct {
	rg pos.Span
	N  int
}

func NewSleep(n int, s pos.Span) *Sleep { return &Sleep{rg: s, N: n} }
func (n *Sleep) Span() pos.Span         { return n.rg }
func (n *Sleep) String() string         { return fmt.Sprintf("sleep(%d)", n.N) }
func (n *Sleep) Accept(v Visitor) error { return v.VisitSleep(n) }

// Loop runs Body while the current cell is non-zero.
type Loop struct {
	rg   pos.Span
	Body []Instruction
}

func NewLoop(body []Instruction, s pos.Span) *Loop { return &Loop{rg: s, Body: body} }
func (n *Loop) Span() pos.Span                     { return n.rg }
func (n *Loop) Accept(v Visitor) error             { return v.VisitLoop(n) }
func (n *Loop) String() string {
	var b strings.Builder
	b.WriteString("[")
	for _, c := range n.Body {
		b.WriteString(c.String())
	}
	b.WriteString("]")
	return b.String()
}

// Parallel runs every branch concurrently and joins all of them before
// control proceeds. Branches is never empty: the grammar guarantees at
// least one branch (branch count is separators+1, and zero separators
// still yields the single branch `{ b0 }`).
type Parallel struct {
	rg       pos.Span
	Branches [][]Instruction
}

func NewParallel(branches [][]Instruction, s pos.Span) *Parallel {
	return &Parallel{rg: s, Branches: branches}
}
func (n *Parallel) Span() pos.Span     { return n.rg }
func (n *Parallel) Accept(v Visitor) error { return v.VisitParallel(n) }
func (n *Parallel) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, branch := range n.Branches {
		if i > 0 {
			b.WriteString("|")
		}
		for _, c := range branch {
			b.WriteString(c.String())
		}
	}
	b.WriteString("}")
	return b.String()
}
