package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/logger"
)

// CommandTranscriber runs an external speech-to-text program on "{file}" and
// reads the transcription from its standard output.
type CommandTranscriber struct {
	argv   []string
	logger *zap.Logger
}

// NewCommandTranscriber creates a transcriber for argv.
func NewCommandTranscriber(argv []string, logger *zap.Logger) (*CommandTranscriber, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("transcribe command: %w", ErrUnavailable)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandTranscriber{
		argv:   append([]string(nil), argv...),
		logger: logger,
	}, nil
}

// Transcribe implements Transcriber.
func (t *CommandTranscriber) Transcribe(ctx context.Context, rec *Recording) (string, error) {
	if rec == nil {
		return "", ErrNoAudio
	}

	startTime := time.Now()
	args := expand(t.argv, rec.Path, "")
	out, err := exec.CommandContext(ctx, args[0], args[1:]...).Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			t.logger.Debug("transcriber stderr", zap.String("stderr", logger.Truncate(string(exitErr.Stderr), 200)))
		}
		return "", fmt.Errorf("running %s: %w", args[0], err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", ErrNoSpeech
	}

	t.logger.Debug("transcription complete",
		zap.String("recording_id", rec.ID),
		zap.String("text", logger.Truncate(text, 50)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return text, nil
}
