package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/peterh/liner"
)

// LineReader reads one line of user input after showing a prompt. It returns
// io.EOF when the user ends the session.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

// LinerReader reads lines with history and line editing on a terminal.
type LinerReader struct {
	state *liner.State
}

// NewLinerReader takes over the terminal until Close is called.
func NewLinerReader() *LinerReader {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerReader{state: state}
}

// ReadLine implements LineReader. Ctrl+C is reported as io.EOF.
func (r *LinerReader) ReadLine(prompt string) (string, error) {
	line, err := r.state.Prompt(prompt)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", io.EOF
		}
		return "", err
	}
	if strings.TrimSpace(line) != "" {
		r.state.AppendHistory(line)
	}
	return line, nil
}

// Close restores the terminal.
func (r *LinerReader) Close() error {
	return r.state.Close()
}

// BufferedReader reads lines from a plain stream such as a pipe.
type BufferedReader struct {
	in  *bufio.Reader
	out io.Writer
}

// NewBufferedReader reads from in and writes prompts to out.
func NewBufferedReader(in io.Reader, out io.Writer) *BufferedReader {
	return &BufferedReader{in: bufio.NewReader(in), out: out}
}

// ReadLine implements LineReader.
func (r *BufferedReader) ReadLine(prompt string) (string, error) {
	if _, err := fmt.Fprint(r.out, prompt); err != nil {
		return "", err
	}
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Close implements LineReader.
func (r *BufferedReader) Close() error {
	return nil
}
