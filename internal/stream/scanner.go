// Package stream consumes a workflow execution event feed and drives the
// per-node run status of a graph model. The feed is newline-delimited
// "data: "-prefixed JSON over an arbitrarily chunked byte stream, so the
// scanner reassembles lines across read boundaries before parsing.
package stream

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/soochol/flowcanvas/internal/canvas"
)

const readChunkSize = 4096

// Scanner incrementally parses NodeRunEvents out of a chunked stream.
// Incomplete trailing lines are carried over to the next read, and
// malformed frames are logged and dropped without ending the stream.
type Scanner struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	done  bool
}

// NewScanner wraps a stream body.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{r: r, chunk: make([]byte, readChunkSize)}
}

// Next returns the next event frame. It returns io.EOF once the stream
// body ends; any other error is a transport failure.
func (s *Scanner) Next() (canvas.NodeRunEvent, error) {
	for {
		raw, err := s.NextFrame()
		if err != nil {
			return canvas.NodeRunEvent{}, err
		}
		var ev canvas.NodeRunEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			slog.Warn("stream: dropping malformed frame", "err", err)
			continue
		}
		return ev, nil
	}
}

// NextFrame returns the JSON payload of the next data frame, for callers
// carrying a different event shape over the same framing (e.g. progress
// subscriptions).
func (s *Scanner) NextFrame() ([]byte, error) {
	for {
		line, ok := s.takeLine()
		if !ok {
			if s.done {
				return nil, io.EOF
			}
			if err := s.fill(); err != nil {
				return nil, err
			}
			continue
		}
		raw, ok := parseFrame(line)
		if !ok {
			continue
		}
		return raw, nil
	}
}

// takeLine removes the next complete line from the buffer. Once the
// stream has ended, a trailing unterminated line is returned as-is.
func (s *Scanner) takeLine() ([]byte, bool) {
	if i := bytes.IndexByte(s.buf, '\n'); i >= 0 {
		line := s.buf[:i]
		s.buf = s.buf[i+1:]
		return line, true
	}
	if s.done && len(s.buf) > 0 {
		line := s.buf
		s.buf = nil
		return line, true
	}
	return nil, false
}

// fill reads one chunk off the stream into the carry buffer.
func (s *Scanner) fill() error {
	n, err := s.r.Read(s.chunk)
	if n > 0 {
		s.buf = append(s.buf, s.chunk[:n]...)
	}
	if err == io.EOF {
		s.done = true
		return nil
	}
	return err
}

// parseFrame extracts the payload of one line. Blank lines are protocol
// padding; a line without the data prefix is dropped with a log, never
// failing the stream.
func parseFrame(line []byte) ([]byte, bool) {
	line = bytes.TrimRight(line, "\r")
	if len(bytes.TrimSpace(line)) == 0 {
		return nil, false
	}
	rest, ok := bytes.CutPrefix(line, []byte("data:"))
	if !ok {
		slog.Warn("stream: dropping frame without data prefix", "line", string(line))
		return nil, false
	}
	return bytes.TrimSpace(rest), true
}
