package speech

import (
	"context"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/logger"
)

// DisabledRecorder is used when no record command is configured.
type DisabledRecorder struct{}

func (DisabledRecorder) StartRecording() bool               { return false }
func (DisabledRecorder) StopRecording() (*Recording, error) { return nil, ErrUnavailable }
func (DisabledRecorder) IsRecording() bool                  { return false }
func (DisabledRecorder) Close() error                       { return nil }

// DisabledTranscriber is used when no transcribe command is configured.
type DisabledTranscriber struct{}

func (DisabledTranscriber) Transcribe(context.Context, *Recording) (string, error) {
	return "", ErrUnavailable
}

// SilentSynthesizer logs text instead of narrating it.
type SilentSynthesizer struct {
	Logger *zap.Logger
}

func (s SilentSynthesizer) Speak(text string, _ bool) error {
	if s.Logger != nil && text != "" {
		s.Logger.Debug("speech disabled, not narrating", zap.String("text", logger.Truncate(text, 50)))
	}
	return nil
}

func (SilentSynthesizer) StopSpeaking() error { return nil }
func (SilentSynthesizer) IsBusy() bool        { return false }
func (SilentSynthesizer) Close() error        { return nil }
