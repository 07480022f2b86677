// Copyright © 2018 The ELPS authors

package clovetest

import (
	"bytes"
	"io"
	"sync"
	"testing"
)

// Logger is an io.Writer which forwards each complete line to a test log.
// Runtime diagnostics written during a test appear alongside the test's own
// output.
type Logger struct {
	t   testing.TB
	mu  sync.Mutex
	buf []byte
}

var _ io.Writer = (*Logger)(nil)

// NewLogger returns a Logger writing to the log of t.
func NewLogger(t testing.TB) *Logger {
	return &Logger{
		t: t,
	}
}

func (log *Logger) Write(b []byte) (int, error) {
	log.mu.Lock()
	defer log.mu.Unlock()
	log.buf = append(log.buf, b...)
	for {
		i := bytes.IndexByte(log.buf, '\n')
		if i < 0 {
			return len(b), nil
		}
		log.t.Log(string(log.buf[:i]))
		log.buf = log.buf[i+1:]
	}
}

// Flush logs any partial line.
func (log *Logger) Flush() {
	log.mu.Lock()
	defer log.mu.Unlock()
	if len(log.buf) == 0 {
		return
	}
	log.t.Log(string(log.buf))
	log.buf = nil
}
