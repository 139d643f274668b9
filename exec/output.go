package exec

import (
	"bytes"
	"io"
	"sync"
)

// multiWriter fans writes out to every underlying writer.
type multiWriter struct {
	writers []io.Writer
}

func newMultiWriter(writers ...io.Writer) *multiWriter {
	return &multiWriter{writers: writers}
}

func (mw *multiWriter) Write(p []byte) (int, error) {
	for _, w := range mw.writers {
		n, err := w.Write(p)
		if err != nil {
			return n, err
		}
		if n != len(p) {
			return n, io.ErrShortWrite
		}
	}
	return len(p), nil
}

// outputCapture is a buffer safe for the concurrent writes os/exec makes
// when stdout and stderr share a destination.
type outputCapture struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

func newOutputCapture() *outputCapture {
	return &outputCapture{}
}

func (oc *outputCapture) Write(p []byte) (int, error) {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.buffer.Write(p)
}

func (oc *outputCapture) String() string {
	oc.mu.Lock()
	defer oc.mu.Unlock()
	return oc.buffer.String()
}
