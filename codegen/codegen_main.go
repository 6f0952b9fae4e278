package codegen

import "fmt"

// writeMainEntry emits the process entry point: it allocates the tape
// and the three per-cell slabs once (never freed — the program is
// short-lived and uses process teardown as its collector, per
// spec.md §3/§9), initializes every cell's mutex, cond-var, and
// cond-mutex, wires up the root state, and calls the deferred main
// thunk.
func (g *Generator) writeMainEntry(mainThunk string) {
	g.out.writel("int main(void) {")
	g.out.indent()

	g.out.writeil(fmt.Sprintf("uint8_t* tape = (uint8_t*)malloc(TAPE_LEN);"))
	g.out.writeil("for (int64_t i = 0; i < TAPE_LEN; i++) { tape[i] = 0; }")
	g.out.writeil("")

	g.out.writeil("uint8_t* mutex_slab = (uint8_t*)malloc((unsigned long)TAPE_LEN * MUTEX_STRIDE);")
	g.out.writeil("g_cond_slab = (uint8_t*)malloc((unsigned long)TAPE_LEN * MUTEX_STRIDE);")
	g.out.writeil("g_cond_mtx_slab = (uint8_t*)malloc((unsigned long)TAPE_LEN * MUTEX_STRIDE);")
	g.out.writeil("")

	g.out.writeil("for (int64_t i = 0; i < TAPE_LEN; i++) {")
	g.out.indent()
	g.out.writeil("pthread_mutex_init((pthread_mutex_t*)(mutex_slab + i * MUTEX_STRIDE), (void*)0);")
	g.out.writeil("pthread_cond_init((pthread_cond_t*)(g_cond_slab + i * MUTEX_STRIDE), (void*)0);")
	g.out.writeil("pthread_mutex_init((pthread_mutex_t*)(g_cond_mtx_slab + i * MUTEX_STRIDE), (void*)0);")
	g.out.unindent()
	g.out.writeil("}")
	g.out.writeil("")

	g.out.writeil("state_t* root = (state_t*)malloc(sizeof(state_t));")
	g.out.writeil("root->tape_base = tape;")
	g.out.writeil("root->ptr_index = 0;")
	g.out.writeil("root->mutex_slab = mutex_slab;")
	g.out.writeil("root->lock_stack = (int64_t*)malloc(sizeof(int64_t) * INITIAL_LOCK_CAP);")
	g.out.writeil("root->lock_sp = 0;")
	g.out.writeil("root->lock_cap = INITIAL_LOCK_CAP;")
	if g.sanitize {
		g.out.writeil("root->tid = (unsigned long long)pthread_self();")
	}
	g.out.writeil("")

	g.out.writeil(fmt.Sprintf("%s(root);", mainThunk))
	g.out.writeil("return 0;")

	g.out.unindent()
	g.out.writel("}")
}
