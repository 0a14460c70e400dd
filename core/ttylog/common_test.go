package ttylog

import (
	"bytes"
	"errors"
	"io"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/ncsh/ncsh/core/vos"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entryList struct {
	entries []*Entry
}

func (l *entryList) sink(e *Entry) error {
	l.entries = append(l.entries, e)
	return nil
}

func TestRecorder(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	recorded := &entryList{}
	r := NewRecorder(vos.NewVIOAdapter(strings.NewReader("in"), stdout, stderr), recorded.sink, log.New(io.Discard, "", 0))
	r.now = func() time.Time { return time.UnixMicro(42) }

	in, err := io.ReadAll(r.Stdin())
	require.NoError(t, err)
	_, err = io.WriteString(r.Stdout(), "out")
	require.NoError(t, err)
	_, err = io.WriteString(r.Stderr(), "err")
	require.NoError(t, err)

	assert.Equal(t, "in", string(in))
	assert.Equal(t, "out", stdout.String())
	assert.Equal(t, "err", stderr.String())
	assert.Equal(t, []*Entry{
		{TimestampMicros: 42, FD: FDStdin, Data: []byte("in")},
		{TimestampMicros: 42, FD: FDStdout, Data: []byte("out")},
		{TimestampMicros: 42, FD: FDStderr, Data: []byte("err")},
	}, recorded.entries)
}

func TestRecorder_SinkErrorsAreLogged(t *testing.T) {
	stdout := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	r := NewRecorder(vos.NewVIOAdapter(nil, stdout, nil), func(*Entry) error {
		return errors.New("disk full")
	}, log.New(logs, "", 0))

	n, err := io.WriteString(r.Stdout(), "out")

	assert.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, "out", stdout.String())
	assert.Equal(t, "couldn't record session: disk full\n", logs.String())
}

func TestNewClientOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	sink := NewClientOutput(buf)

	require.NoError(t, sink(&Entry{FD: FDStdin, Data: []byte("typed")}))
	require.NoError(t, sink(&Entry{FD: FDStdout, Data: []byte("out ")}))
	require.NoError(t, sink(&Entry{FD: FDStderr, Data: []byte("err")}))

	assert.Equal(t, "out err", buf.String())
}

func TestNewRealTimePlayback(t *testing.T) {
	recorded := &entryList{}
	sink := NewRealTimePlayback(time.Millisecond, recorded.sink)

	start := time.Now()
	require.NoError(t, sink(&Entry{TimestampMicros: 0}))
	// A ten second gap is capped to maxSleep.
	require.NoError(t, sink(&Entry{TimestampMicros: 10e6}))

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, recorded.entries, 2)
}

type sliceSource struct {
	entries []*Entry
	err     error
}

func (s *sliceSource) Next() (*Entry, error) {
	if len(s.entries) == 0 {
		if s.err != nil {
			return nil, s.err
		}
		return nil, io.EOF
	}
	e := s.entries[0]
	s.entries = s.entries[1:]
	return e, nil
}

func TestReplay(t *testing.T) {
	boom := errors.New("boom")

	t.Run("source-error", func(t *testing.T) {
		src := &sliceSource{entries: []*Entry{{}}, err: boom}
		recorded := &entryList{}

		assert.ErrorIs(t, Replay(src, recorded.sink), boom)
		assert.Len(t, recorded.entries, 1)
	})

	t.Run("sink-error", func(t *testing.T) {
		src := &sliceSource{entries: []*Entry{{}, {}}}
		calls := 0

		err := Replay(src, func(*Entry) error {
			calls++
			return boom
		})

		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})
}
