package codegen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapeforge/tapecc/internal/config"
	"github.com/tapeforge/tapecc/parser"
)

func compile(t *testing.T, src string, sanitize bool) string {
	t.Helper()
	body, err := parser.New(src).Parse()
	require.NoError(t, err)

	cfg := config.New()
	cfg.SetBool("codegen.sanitize", sanitize)

	out, err := Generate(body, cfg)
	require.NoError(t, err)
	return out
}

func TestGenerateHelloLike(t *testing.T) {
	out := compile(t, "+++++++++[>++++++++<-]>.", false)

	assert.Contains(t, out, "typedef struct state {")
	assert.Contains(t, out, "int main(void) {")
	assert.Contains(t, out, "bf_incptr(st);")
	assert.Contains(t, out, "bf_output(st);")
	assert.Contains(t, out, "goto loop_cond_")
	assert.NotContains(t, out, "tsan_")
}

func TestGenerateRaceExposedEmitsSanitizerHooksOnEveryCellAccess(t *testing.T) {
	out := compile(t, "{+|+}", true)

	assert.Contains(t, out, "extern void tsan_write(void*);")
	assert.Contains(t, out, "tsan_write(st);") // inside bf_inccell
	assert.Contains(t, out, "tsan_fork(st->tid);")
	assert.Contains(t, out, "tsan_join(")
	assert.Equal(t, 2, strings.Count(out, "static void* trampoline_"))
}

func TestGenerateWithoutSanitizeOmitsHooksAndTidField(t *testing.T) {
	out := compile(t, "{+|+}", false)

	assert.NotContains(t, out, "tsan_")
	assert.NotContains(t, out, "uint64_t tid;")
}

func TestGenerateLockSourceEmitsLockHelperCalls(t *testing.T) {
	out := compile(t, "{(+)|(+)}", false)

	assert.Equal(t, 2, strings.Count(out, "bf_lock_acquire(st);"))
	assert.Equal(t, 2, strings.Count(out, "bf_lock_release(st);"))
}

func TestGenerateWaitNotifyHandshake(t *testing.T) {
	out := compile(t, "{^|v}", false)

	assert.Contains(t, out, "bf_wait(st);")
	assert.Contains(t, out, "bf_notify(st);")
}

func TestGenerateDeepLockStackGrowth(t *testing.T) {
	out := compile(t, strings.Repeat("(", 18), false)

	assert.Equal(t, 18, strings.Count(out, "bf_lock_acquire(st);"))
	assert.Contains(t, out, "INITIAL_LOCK_CAP")
	assert.Contains(t, out, "st->lock_cap * 2")
}

func TestGenerateDeterministicThunkOrderMatchesBranchOrder(t *testing.T) {
	out := compile(t, "{+|-|.}", false)

	i0 := strings.Index(out, "/* thunk: branch_0_of_3 */")
	i1 := strings.Index(out, "/* thunk: branch_1_of_3 */")
	i2 := strings.Index(out, "/* thunk: branch_2_of_3 */")
	require.True(t, i0 >= 0 && i1 >= 0 && i2 >= 0)
	assert.True(t, i0 < i1)
	assert.True(t, i1 < i2)
}

func TestGenerateNestedParallelDoesNotCollideNames(t *testing.T) {
	out := compile(t, "{{+|-}|.}", false)

	// Every freshName call is suffixed by a strictly increasing counter,
	// so no two emitted labels or thunk names can collide even across
	// nested Parallel blocks.
	names := map[string]int{}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "static void ") || strings.HasPrefix(line, "static void* ") {
			names[line]++
		}
	}
	for line, n := range names {
		assert.Equal(t, 1, n, "duplicate definition: %s", line)
	}
}

func TestGenerateTapeLenIsConfigurable(t *testing.T) {
	body, err := parser.New("+").Parse()
	require.NoError(t, err)

	cfg := config.New()
	cfg.SetInt("codegen.tape_len", 100)
	out, err := Generate(body, cfg)
	require.NoError(t, err)

	assert.Contains(t, out, "#define TAPE_LEN 100")
}

func TestGenerateNeverFailsOnAWellFormedTree(t *testing.T) {
	// The generator has no failure mode of its own: anything that
	// survived parsing is always emittable (spec.md §4.C).
	for _, src := range []string{"", "+", "[+]", "{+|-}", "(+)", "^", "v", "~~~"} {
		body, err := parser.New(src).Parse()
		require.NoError(t, err)
		_, err = Generate(body, config.New())
		assert.NoError(t, err)
	}
}
