// Package ttylog records the standard streams of a shell session and plays
// them back.
package ttylog

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/ncsh/ncsh/core/vos"
)

// FD identifies the stream an entry was read from or written to.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

// Entry is a chunk of data that passed through one of the streams.
type Entry struct {
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// LogSink receives log entries.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Entry) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if sleepDuration := time.Duration(delta) * time.Microsecond; sleepDuration > 0 {
			if maxSleep > 0 && sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.FD == FDStdin {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of entries to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// Recorder is a VIO that copies everything passing through its streams to
// a sink.
type Recorder struct {
	*vos.VIOAdapter

	mu     sync.Mutex
	output LogSink
	log    *log.Logger
	now    func() time.Time
}

var _ vos.VIO = (*Recorder)(nil)

func (r *Recorder) record(fd FD, data []byte) {
	if len(data) == 0 {
		return
	}
	e := &Entry{
		TimestampMicros: r.now().UnixMicro(),
		FD:              fd,
		Data:            append([]byte(nil), data...),
	}

	r.mu.Lock()
	err := r.output(e)
	r.mu.Unlock()
	if err != nil {
		r.log.Printf("couldn't record session: %v", err)
	}
}

type recordingReader struct {
	r       *Recorder
	wrapped io.ReadCloser
}

func (rr *recordingReader) Read(p []byte) (int, error) {
	n, err := rr.wrapped.Read(p)
	rr.r.record(FDStdin, p[:n])
	return n, err
}

func (rr *recordingReader) Close() error {
	return rr.wrapped.Close()
}

type recordingWriter struct {
	r       *Recorder
	fd      FD
	wrapped io.WriteCloser
}

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(rw.fd, p[:n])
	return n, err
}

func (rw *recordingWriter) Close() error {
	return rw.wrapped.Close()
}

// NewRecorder creates a VIO wrapping toWrap that forwards all data to output.
// Errors from output are logged to logger and never reach the session.
func NewRecorder(toWrap vos.VIO, output LogSink, logger *log.Logger) *Recorder {
	r := &Recorder{
		output: output,
		log:    logger,
		now:    time.Now,
	}

	r.VIOAdapter = vos.NewVIOAdapter(
		&recordingReader{r: r, wrapped: toWrap.Stdin()},
		&recordingWriter{r: r, fd: FDStdout, wrapped: toWrap.Stdout()},
		&recordingWriter{r: r, fd: FDStderr, wrapped: toWrap.Stderr()},
	)

	return r
}
