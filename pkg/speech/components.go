package speech

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/config"
)

// Components bundles the speech collaborators built from configuration.
type Components struct {
	Recorder    Recorder
	Transcriber Transcriber
	Synthesizer Synthesizer

	recordDir string
	enabled   bool
}

// NewComponents builds command-backed collaborators for every configured
// command and disabled ones for the rest.
func NewComponents(cfg config.SpeechConfig, logger *zap.Logger) (*Components, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Components{
		Recorder:    DisabledRecorder{},
		Transcriber: DisabledTranscriber{},
		Synthesizer: SilentSynthesizer{Logger: logger},
		enabled:     true,
	}

	if len(cfg.RecordCommand) > 0 {
		rec, err := NewCommandRecorder(cfg.RecordCommand, "", logger)
		if err != nil {
			return nil, err
		}
		c.Recorder = rec
		c.recordDir = rec.Dir()
	} else {
		c.enabled = false
	}

	if len(cfg.TranscribeCommand) > 0 {
		tr, err := NewCommandTranscriber(cfg.TranscribeCommand, logger)
		if err != nil {
			return nil, err
		}
		c.Transcriber = tr
	} else {
		c.enabled = false
	}

	if len(cfg.SpeakCommand) > 0 {
		syn, err := NewCommandSynthesizer(cfg.SpeakCommand, logger)
		if err != nil {
			return nil, err
		}
		c.Synthesizer = syn
	} else {
		c.enabled = false
	}

	if !c.enabled {
		logger.Info("speech partially disabled",
			zap.Bool("record", len(cfg.RecordCommand) > 0),
			zap.Bool("transcribe", len(cfg.TranscribeCommand) > 0),
			zap.Bool("speak", len(cfg.SpeakCommand) > 0),
		)
	}
	return c, nil
}

// Initialized reports whether every collaborator is command-backed.
func (c *Components) Initialized() bool {
	return c.enabled
}

// Close stops capture and narration and removes the recording directory.
func (c *Components) Close() error {
	err := errors.Join(c.Recorder.Close(), c.Synthesizer.Close())
	if c.recordDir != "" {
		err = errors.Join(err, os.RemoveAll(c.recordDir))
	}
	return err
}
