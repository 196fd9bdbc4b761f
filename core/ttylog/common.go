// Package ttylog records REPL sessions so they can be played back later.
package ttylog

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/josephlewis42/hybridsh/core/logger"
)

// Stream identifies which side of the terminal an event came from.
type Stream int

const (
	Input Stream = iota
	Output
)

// Event is one chunk of terminal traffic.
type Event struct {
	TimestampMicros int64
	Stream          Stream
	Data            []byte
}

// LogSink receives log events.
type LogSink func(e *Event) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available event. It returns io.EOF if the source
	// has no more events.
	Next() (*Event, error)
}

// NewRealTimePlayback plays back the results in real-time.
// If maxSleep > 0, it's used as the maximum duration to pause.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	var once sync.Once
	var prevTimeMicros int64

	return func(e *Event) error {
		once.Do(func() {
			prevTimeMicros = e.TimestampMicros
		})

		delta := e.TimestampMicros - prevTimeMicros
		prevTimeMicros = e.TimestampMicros

		if maxSleep > 0 {
			sleepDuration := time.Duration(delta) * time.Microsecond
			if sleepDuration > maxSleep {
				sleepDuration = maxSleep
			}
			time.Sleep(sleepDuration)
		}

		return next(e)
	}
}

// NewOutputSink writes the output stream to w.
func NewOutputSink(w io.Writer) LogSink {
	return func(e *Event) error {
		if e.Stream != Output {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of events to a callback.
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

// Recorder forwards what the REPL reads and writes to a sink. A failing sink
// is logged and never interrupts the session.
type Recorder struct {
	mutex sync.Mutex
	sink  LogSink
	now   func() time.Time
	log   *slog.Logger
}

// NewRecorder creates a recorder that forwards all events to sink.
func NewRecorder(sink LogSink, log *slog.Logger) *Recorder {
	if log == nil {
		log = logger.NewNop()
	}
	return &Recorder{sink: sink, now: time.Now, log: log}
}

func (r *Recorder) record(stream Stream, data []byte) {
	if len(data) == 0 {
		return
	}
	// Sinks may keep the slice.
	owned := append([]byte(nil), data...)

	r.mutex.Lock()
	defer r.mutex.Unlock()
	if err := r.sink(&Event{
		TimestampMicros: r.now().UnixMicro(),
		Stream:          stream,
		Data:            owned,
	}); err != nil {
		r.log.Warn("couldn't record session event", "error", err)
	}
}

// RecordInput records a line the user entered.
func (r *Recorder) RecordInput(line string) {
	r.record(Input, []byte(line+"\n"))
}

// Writer returns a writer that records everything written through it to w.
func (r *Recorder) Writer(w io.Writer) io.Writer {
	return &recordingWriter{r: r, wrapped: w}
}

type recordingWriter struct {
	r       *Recorder
	wrapped io.Writer
}

var _ io.Writer = (*recordingWriter)(nil)

func (rw *recordingWriter) Write(p []byte) (int, error) {
	n, err := rw.wrapped.Write(p)
	rw.r.record(Output, p[:n])
	return n, err
}
