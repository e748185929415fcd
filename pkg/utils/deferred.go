// Package utils provides small helpers with no project dependencies.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers writes in memory until Flush is called. The zero
// value is ready to use. It is safe for concurrent use, so it can back a
// logger while a full-screen program owns the terminal.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write appends p to the buffer.
func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush writes the buffered data to out and resets the buffer.
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return nil
	}

	_, err := io.Copy(out, &w.buf)
	w.buf.Reset()
	return err
}
