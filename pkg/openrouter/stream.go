package openrouter

import (
	"bufio"
	"encoding/json"
	"io"
	"iter"
	"strings"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/llm"
	"github.com/papercomputeco/voicechat/pkg/logger"
)

const (
	eventPrefix = "data:"
	doneMarker  = "[DONE]"

	// maxEventSize bounds a single event line.
	maxEventSize = 1024 * 1024
)

// Stream is a pull-based sequence of content fragments decoded from a server-sent
// event response. It is finite and cannot be restarted:
//
//	s := client.GenerateStreamingResponse(ctx, input, "", history)
//	defer s.Close()
//	for s.Next() {
//		fmt.Print(s.Fragment())
//	}
//	full := s.Text()
//
// A consumer may stop calling Next early; Close then abandons the connection.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	logger  *zap.Logger

	fragment string
	text     strings.Builder
	pending  string
	yielded  bool
	done     bool

	failure Failure
	err     error
}

// NewStream decodes the event stream read from body. The stream owns body.
func NewStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxEventSize)

	return &Stream{
		body:    body,
		scanner: scanner,
		logger:  zap.NewNop(),
	}
}

// failedStream yields the failure's fallback text as its only fragment.
func failedStream(f Failure, err error) *Stream {
	return &Stream{
		logger:  zap.NewNop(),
		pending: f.Fallback(),
		failure: f,
		err:     err,
	}
}

// Next advances to the next non-empty fragment. It returns false once the end
// marker is seen, the body is exhausted, or the stream was closed.
func (s *Stream) Next() bool {
	if s.pending != "" {
		s.emit(s.pending)
		s.pending = ""
		return true
	}
	if s.done || s.scanner == nil {
		s.finish()
		return false
	}

	for s.scanner.Scan() {
		line := strings.TrimRight(s.scanner.Text(), "\r")
		data, ok := strings.CutPrefix(line, eventPrefix)
		if !ok {
			// blank separators, comments and other SSE fields
			continue
		}
		data = strings.TrimPrefix(data, " ")

		if strings.TrimSpace(data) == doneMarker {
			s.finish()
			return false
		}

		var chunk llm.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.logger.Debug("skipping malformed chunk",
				zap.Error(err),
				zap.String("line", logger.Truncate(data, 100)),
			)
			continue
		}

		if content := chunk.Content(); content != "" {
			s.emit(content)
			return true
		}
	}

	if err := s.scanner.Err(); err != nil {
		s.err = err
		s.logger.Error("error reading stream", zap.Error(err))
		if !s.yielded {
			s.failure = FailureTransport
			s.finish()
			s.emit(FallbackTransport)
			return true
		}
	}

	s.finish()
	return false
}

// Fragment returns the fragment produced by the last successful call to Next.
func (s *Stream) Fragment() string {
	return s.fragment
}

// Text returns every fragment yielded so far, concatenated. After the stream is
// drained it is the full reply.
func (s *Stream) Text() string {
	return s.text.String()
}

// Failure reports whether the stream carried fallback text instead of model output.
func (s *Stream) Failure() Failure {
	return s.failure
}

// Err returns the underlying transport or read error, if any.
func (s *Stream) Err() error {
	return s.err
}

// Done reports whether the stream has ended.
func (s *Stream) Done() bool {
	return s.done && s.pending == ""
}

// All adapts the stream to a range-over-func sequence. The stream is closed when
// the loop ends, including on break.
func (s *Stream) All() iter.Seq[string] {
	return func(yield func(string) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Fragment()) {
				return
			}
		}
	}
}

// Close releases the underlying connection. It is safe to call more than once.
func (s *Stream) Close() error {
	s.done = true
	s.pending = ""
	if s.body == nil {
		return nil
	}
	body := s.body
	s.body = nil
	return body.Close()
}

func (s *Stream) emit(fragment string) {
	s.fragment = fragment
	s.yielded = true
	s.text.WriteString(fragment)
}

func (s *Stream) finish() {
	if s.body != nil {
		s.body.Close()
		s.body = nil
	}
	s.done = true
}
