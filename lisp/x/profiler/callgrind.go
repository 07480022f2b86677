// Copyright © 2018 The ELPS authors

package profiler

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/clove/lisp"
)

// errWriter wraps an io.Writer and captures the first write error,
// short-circuiting subsequent writes after a failure.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// callgrindProfiler writes a profile in the callgrind format which can be
// opened with KCacheGrind or QCacheGrind.  Each completed call writes one
// cost block, costs of a function called many times are summed by the
// viewer.
type callgrindProfiler struct {
	profiler
	mu       sync.Mutex
	writer   io.Writer
	closer   io.Closer
	writeErr error
	start    time.Time
	refs     map[string]int
	current  *callRef
}

var _ lisp.Profiler = &callgrindProfiler{}

// callRef is one active or completed call.
type callRef struct {
	prev        *callRef
	name        string
	file        string
	line        int
	start       time.Time
	startMemory uint64
	duration    time.Duration
	memory      uint64
	children    []*callRef
}

// NewCallgrindProfiler returns a profiler writing to w.  Output may instead
// be directed to a file with SetFile before the profiler is enabled.
func NewCallgrindProfiler(runtime *lisp.Runtime, w io.Writer, opts ...Option) *callgrindProfiler {
	p := &callgrindProfiler{writer: w}
	p.runtime = runtime
	p.applyConfigs(opts...)
	return p
}

// SetFile creates filename and directs the profile to it.  The file is
// closed by Complete.
func (p *callgrindProfiler) SetFile(filename string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.writer = f
	p.closer = f
	return nil
}

func (p *callgrindProfiler) Enable() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writer == nil {
		return errors.New("no output set in profiler")
	}
	if err := p.profiler.Enable(); err != nil {
		return err
	}
	w := &errWriter{w: p.writer}
	w.printf("version: 1\ncreator: clove %s (Go %s)\n", lisp.Version, runtime.Version())
	w.printf("cmd: Eval\npart: 1\npositions: line\n\n")
	w.printf("events: Time_(ns) Memory_(bytes)\n\n")
	if w.err != nil {
		p.enabled = false
		return w.err
	}
	p.start = time.Now()
	p.refs = make(map[string]int)
	p.current = newCallRef(nil, "ENTRYPOINT", "-", 0)
	p.runtime.Profiler = p
	return nil
}

func newCallRef(prev *callRef, name string, file string, line int) *callRef {
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	return &callRef{
		prev:        prev,
		name:        name,
		file:        file,
		line:        line,
		start:       time.Now(),
		startMemory: ms.TotalAlloc,
	}
}

func (p *callgrindProfiler) Complete() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	for p.current.prev != nil {
		p.finish()
	}
	p.finish()
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	w := &errWriter{w: p.writer}
	w.printf("totals: %d %d\n", time.Since(p.start).Nanoseconds(), ms.TotalAlloc)
	if p.writeErr == nil {
		p.writeErr = w.err
	}
	if p.closer != nil {
		if err := p.closer.Close(); err != nil && p.writeErr == nil {
			p.writeErr = err
		}
	}
	return p.writeErr
}

// getRef returns the compressed name of a file or function.
func (p *callgrindProfiler) getRef(name string) string {
	if ref, ok := p.refs[name]; ok {
		return fmt.Sprintf("(%d)", ref)
	}
	ref := len(p.refs) + 1
	p.refs[name] = ref
	return fmt.Sprintf("(%d) %s", ref, name)
}

func (p *callgrindProfiler) Start(fun *lisp.LVal) func() {
	if p.skipTrace(fun) {
		return func() {}
	}
	label, _ := p.prettyFunName(fun)
	file, line := "-", 0
	if loc := getSourceLoc(fun); loc != nil {
		file, line = loc.File, loc.Line
	}
	p.mu.Lock()
	ref := newCallRef(p.current, label, file, line)
	p.current.children = append(p.current.children, ref)
	p.current = ref
	p.mu.Unlock()
	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.enabled && p.current == ref {
			p.finish()
		}
	}
}

// finish pops the current call and writes its cost block.
func (p *callgrindProfiler) finish() {
	ref := p.current
	p.current = ref.prev
	ref.duration = time.Since(ref.start)
	ms := &runtime.MemStats{}
	runtime.ReadMemStats(ms)
	ref.memory = ms.TotalAlloc - ref.startMemory
	if p.writeErr != nil {
		return
	}
	self, selfMemory := ref.duration, ref.memory
	for _, child := range ref.children {
		self -= child.duration
		if child.memory <= selfMemory {
			selfMemory -= child.memory
		}
	}
	w := &errWriter{w: p.writer}
	w.printf("fl=%s\n", p.getRef(ref.file))
	w.printf("fn=%s\n", p.getRef(ref.name))
	w.printf("%d %d %d\n", ref.line, self.Nanoseconds(), selfMemory)
	for _, child := range ref.children {
		w.printf("cfl=%s\n", p.getRef(child.file))
		w.printf("cfn=%s\n", p.getRef(child.name))
		w.printf("calls=1 %d\n", child.line)
		w.printf("%d %d %d\n", ref.line, child.duration.Nanoseconds(), child.memory)
	}
	w.printf("\n")
	ref.children = nil
	p.writeErr = w.err
}
