// Package speech provides the audio collaborators of a conversation: capturing
// the user's voice, turning it into text and narrating replies.
//
// The command-backed implementations delegate to external programs (arecord,
// whisper, espeak, ...) configured as argv templates. The placeholders "{file}"
// and "{text}" are substituted inside every argument.
package speech

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"
)

var (
	// ErrNotRecording is returned by StopRecording when no capture is running.
	ErrNotRecording = errors.New("not recording")

	// ErrNoAudio is returned when a capture produced no audio data.
	ErrNoAudio = errors.New("no audio recorded")

	// ErrNoSpeech is returned when transcription yields no text.
	ErrNoSpeech = errors.New("could not transcribe audio")

	// ErrUnavailable is returned by disabled collaborators.
	ErrUnavailable = errors.New("speech capability not configured")
)

// Recorder captures audio from the default input device.
type Recorder interface {
	// StartRecording begins a capture. It returns false when a capture is
	// already running or could not be started.
	StartRecording() bool

	// StopRecording ends the running capture and returns it.
	StopRecording() (*Recording, error)

	IsRecording() bool
	Close() error
}

// Transcriber converts a recording to text.
type Transcriber interface {
	Transcribe(ctx context.Context, rec *Recording) (string, error)
}

// Synthesizer narrates text.
type Synthesizer interface {
	// Speak narrates text. When blocking is false it returns as soon as
	// playback has started. A new call interrupts the current narration.
	Speak(text string, blocking bool) error

	StopSpeaking() error
	IsBusy() bool
	Close() error
}

// Recording is a finished audio capture on disk.
type Recording struct {
	ID        string
	Path      string
	StartedAt time.Time
	Duration  time.Duration
}

// Remove deletes the audio file.
func (r *Recording) Remove() error {
	if r == nil || r.Path == "" {
		return nil
	}
	if err := os.Remove(r.Path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// expand substitutes placeholders in every argument of an argv template.
func expand(argv []string, file, text string) []string {
	r := strings.NewReplacer("{file}", file, "{text}", text)
	out := make([]string, len(argv))
	for i, arg := range argv {
		out[i] = r.Replace(arg)
	}
	return out
}
