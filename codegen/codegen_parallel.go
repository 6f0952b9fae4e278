package codegen

import (
	"fmt"

	"github.com/tapeforge/tapecc/ast"
)

// registerTrampoline emits the C-signature function pthread_create
// requires: it casts its void* argument back to state_t*, and — in
// sanitizing mode — reads the parent tid out of the inherited state,
// reports the fork to the runtime, then records its own OS thread id
// into the state before running the branch thunk.
func (g *Generator) registerTrampoline(thunkName string) string {
	name := g.freshName("trampoline")

	saved := g.out
	g.out = newOutputWriter()
	g.out.writel(fmt.Sprintf("static void* %s(void* arg) {", name))
	g.out.indent()
	g.out.writeil("state_t* st = (state_t*)arg;")
	if g.sanitize {
		g.out.writeil("tsan_fork(st->tid);")
		g.out.writeil("st->tid = (unsigned long long)pthread_self();")
	}
	g.out.writeil(fmt.Sprintf("%s(st);", thunkName))
	g.out.writeil("return 0;")
	g.out.unindent()
	g.out.writel("}")

	g.deferred = append(g.deferred, deferredFn{name: name, text: g.out.buffer.String()})
	g.out = saved
	return name
}

// VisitParallel lowers a Parallel node. For each branch it registers a
// thunk and a trampoline (deferred), then — at the call site, in the
// current function — allocates a stack-local array of thread ids,
// forks one thread per branch with a freshly allocated state block
// copied from the current one, and joins all of them in order before
// control proceeds. Nesting is unbounded; only process resources limit
// it (spec.md §5).
func (g *Generator) VisitParallel(n *ast.Parallel) error {
	k := len(n.Branches)

	thunkNames := make([]string, k)
	trampolineNames := make([]string, k)
	for i, branch := range n.Branches {
		thunkNames[i] = g.registerThunk(fmt.Sprintf("branch_%d_of_%d", i, k), branch)
		trampolineNames[i] = g.registerTrampoline(thunkNames[i])
	}

	tids := g.freshName("tids")
	children := g.freshName("children")

	g.out.writeil(fmt.Sprintf("pthread_t %s[%d];", tids, k))
	g.out.writeil(fmt.Sprintf("state_t* %s[%d];", children, k))

	for i := 0; i < k; i++ {
		cs := fmt.Sprintf("%s[%d]", children, i)
		g.out.writeil(fmt.Sprintf("%s = (state_t*)malloc(sizeof(state_t));", cs))
		g.out.writeil(fmt.Sprintf("%s->tape_base = st->tape_base;", cs))
		g.out.writeil(fmt.Sprintf("%s->ptr_index = st->ptr_index;", cs))
		g.out.writeil(fmt.Sprintf("%s->mutex_slab = st->mutex_slab;", cs))
		g.out.writeil(fmt.Sprintf("%s->lock_stack = (int64_t*)malloc(sizeof(int64_t) * INITIAL_LOCK_CAP);", cs))
		g.out.writeil(fmt.Sprintf("%s->lock_sp = 0;", cs))
		g.out.writeil(fmt.Sprintf("%s->lock_cap = INITIAL_LOCK_CAP;", cs))
		if g.sanitize {
			g.out.writeil(fmt.Sprintf("%s->tid = st->tid;", cs))
		}
		g.out.writeil(fmt.Sprintf("pthread_create(&%s[%d], (void*)0, %s, %s);", tids, i, trampolineNames[i], cs))
	}

	for i := 0; i < k; i++ {
		g.out.writeil(fmt.Sprintf("pthread_join(%s[%d], (void**)0);", tids, i))
		if g.sanitize {
			g.out.writeil(fmt.Sprintf("tsan_join(%s[%d]->tid);", children, i))
		}
	}

	return nil
}
