package ttylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

func writeJSONLine(w io.Writer, structure interface{}) error {
	line, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", string(line))
	return err
}

// AsciicastHeader is the first line of an asciicast v2 file.
type AsciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// NewAsciicastLogSink creates a LogSink compatible with the asciicast v2
// format. The header is written with the first event.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
func NewAsciicastLogSink(w io.Writer, header AsciicastHeader) LogSink {
	var (
		firstLogTimeMicros int64
		once               sync.Once
	)

	return func(e *Event) error {
		var headerErr error
		once.Do(func() {
			firstLogTimeMicros = e.TimestampMicros
			header.Version = 2
			header.Timestamp = time.UnixMicro(firstLogTimeMicros).Unix()
			headerErr = writeJSONLine(w, &header)
		})
		if headerErr != nil {
			return headerErr
		}

		direction := "o"
		if e.Stream == Input {
			direction = "i"
		}
		deltaSeconds := microsecondsToSeconds(e.TimestampMicros - firstLogTimeMicros)
		return writeJSONLine(w, &asciicastLogLine{deltaSeconds, direction, string(e.Data)})
	}
}

type AsciicastLogSource struct {
	r             *bufio.Reader
	consumeHeader sync.Once
	header        AsciicastHeader
	headerErr     error
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an Asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

func (s *AsciicastLogSource) readHeader() {
	s.consumeHeader.Do(func() {
		line, err := s.r.ReadBytes('\n')
		if err != nil {
			s.headerErr = err
			return
		}
		if err := json.Unmarshal(line, &s.header); err != nil {
			s.headerErr = fmt.Errorf("malformed header: %w", err)
			return
		}
		if s.header.Version != 2 {
			s.headerErr = fmt.Errorf("unsupported asciicast version %d", s.header.Version)
		}
	})
}

// Header returns the recording's header.
func (s *AsciicastLogSource) Header() (AsciicastHeader, error) {
	s.readHeader()
	return s.header, s.headerErr
}

// Next gets the next event, it returns io.EOF if there are no more.
func (s *AsciicastLogSource) Next() (*Event, error) {
	if s.readHeader(); s.headerErr != nil {
		return nil, s.headerErr
	}

	for {
		line, err := s.r.ReadBytes('\n')
		if err != nil {
			return nil, err
		}

		if len(line) == 1 {
			// Skip blank lines
			continue
		}

		var asciicastLine asciicastLogLine
		if err := json.Unmarshal(line, &asciicastLine); err != nil {
			return nil, err
		}

		var stream Stream
		switch asciicastLine.EventType {
		case "o":
			stream = Output
		case "i":
			stream = Input
		default:
			// skip unknown events
			continue
		}

		return &Event{
			TimestampMicros: secondsToMicroseconds(asciicastLine.TimeSeconds),
			Stream:          stream,
			Data:            []byte(asciicastLine.EventData),
		}, nil
	}
}

type asciicastLogLine struct {
	TimeSeconds float64
	EventType   string
	EventData   string
}

func (l *asciicastLogLine) UnmarshalJSON(data []byte) error {
	var v []interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if count := len(v); count != 3 {
		return fmt.Errorf("malformed line, expected 3 entries got %d", count)
	}

	var timeOk, typeOk, dataOk bool
	l.TimeSeconds, timeOk = v[0].(float64)
	l.EventType, typeOk = v[1].(string)
	l.EventData, dataOk = v[2].(string)

	if !timeOk || !typeOk || !dataOk {
		return fmt.Errorf("malformed data in line: %q", v)
	}

	return nil
}

func (l *asciicastLogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.TimeSeconds, l.EventType, l.EventData})
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(float64(seconds)*float64(time.Second)) / int64(time.Microsecond)
}
