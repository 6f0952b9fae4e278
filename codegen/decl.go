package codegen

// externSymbol is one line of the module's external-symbol table,
// emitted verbatim at module head. Keeping this as a slice of data
// rather than inlined strings lets sanitizing-mode symbols be filtered
// with a slice operation instead of string surgery, mirroring how the
// original's codegen/decl.rs keeps the symbol table as one ordered list.
type externSymbol struct {
	decl      string
	sanitizeOnly bool
}

var externTable = []externSymbol{
	{decl: "extern int putchar(int);"},
	{decl: "extern int getchar(void);"},
	{decl: "extern int fflush(void*);"},
	{decl: "extern int nanosleep(const struct timespec*, struct timespec*);"},
	{decl: "extern void* malloc(unsigned long);"},
	{decl: "extern void free(void*);"},
	{decl: "extern void* memcpy(void*, const void*, unsigned long);"},
	{decl: "extern int pthread_create(pthread_t*, const void*, void* (*)(void*), void*);"},
	{decl: "extern int pthread_join(pthread_t, void**);"},
	{decl: "extern int pthread_mutex_init(pthread_mutex_t*, const void*);"},
	{decl: "extern int pthread_mutex_lock(pthread_mutex_t*);"},
	{decl: "extern int pthread_mutex_unlock(pthread_mutex_t*);"},
	{decl: "extern int pthread_cond_init(pthread_cond_t*, const void*);"},
	{decl: "extern int pthread_cond_wait(pthread_cond_t*, pthread_mutex_t*);"},
	{decl: "extern int pthread_cond_broadcast(pthread_cond_t*);"},
	{decl: "extern void tsan_read(void*);", sanitizeOnly: true},
	{decl: "extern void tsan_write(void*);", sanitizeOnly: true},
	{decl: "extern void tsan_acquire(void*, long);", sanitizeOnly: true},
	{decl: "extern void tsan_release(void*, long);", sanitizeOnly: true},
	{decl: "extern void tsan_fork(unsigned long long);", sanitizeOnly: true},
	{decl: "extern void tsan_join(unsigned long long);", sanitizeOnly: true},
}

func (g *Generator) writeExterns() {
	g.out.writel("/* external symbols */")
	for _, sym := range externTable {
		if sym.sanitizeOnly && !g.sanitize {
			continue
		}
		g.out.writel(sym.decl)
	}
	g.out.writel("")
}
