package vos

import (
	"io"
	"os"
)

// VIOAdapter implements VIO over plain readers and writers.
type VIOAdapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

// NewVIOAdapter wraps the given streams, nil streams behave like /dev/null.
//
// Closing a wrapped stream never closes the underlying one, the owner of the
// stream is responsible for that.
func NewVIOAdapter(stdin io.Reader, stdout, stderr io.Writer) *VIOAdapter {
	return &VIOAdapter{
		IStdin:  toReadCloserOrDiscard(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

// NewNullIO creates a valid /dev/null style I/O, reads won't work and
// writes will be discarded.
func NewNullIO() VIO {
	return NewVIOAdapter(nil, nil, nil)
}

// NewHostIO wraps the standard streams of the shell process.
func NewHostIO() VIO {
	return NewVIOAdapter(os.Stdin, os.Stdout, os.Stderr)
}

var _ VIO = (*VIOAdapter)(nil)

func (pr *VIOAdapter) Stdin() io.ReadCloser {
	return pr.IStdin
}

func (pr *VIOAdapter) Stdout() io.WriteCloser {
	return pr.IStdout
}

func (pr *VIOAdapter) Stderr() io.WriteCloser {
	return pr.IStderr
}

// Reader returns the reader behind a stream from NewVIOAdapter so it can be
// handed to a child process, nil means /dev/null.
func Reader(r io.ReadCloser) io.Reader {
	switch v := r.(type) {
	case nopReadCloser:
		return v.Reader
	case *devNull:
		return nil
	}
	return r
}

// Writer returns the writer behind a stream from NewVIOAdapter so it can be
// handed to a child process, nil means /dev/null.
func Writer(w io.WriteCloser) io.Writer {
	switch v := w.(type) {
	case nopWriteCloser:
		return v.Writer
	case *devNull:
		return nil
	}
	return w
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if n, ok := w.(nopWriteCloser); ok {
		return n
	}
	return nopWriteCloser{w}
}

func toReadCloserOrDiscard(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if n, ok := r.(nopReadCloser); ok {
		return n
	}
	return nopReadCloser{r}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

type nopReadCloser struct {
	io.Reader
}

func (nopReadCloser) Close() error { return nil }

// devNull implements io.Reader and io.Writer, always closing for reads and
// discarding writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, io.EOF
}

func (*devNull) Close() error {
	return nil
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}
