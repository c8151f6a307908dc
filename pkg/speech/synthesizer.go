package speech

import (
	"fmt"
	"os/exec"
	"sync"

	"go.uber.org/zap"

	"github.com/papercomputeco/voicechat/pkg/logger"
)

// CommandSynthesizer narrates text by running an external text-to-speech
// program with the text substituted for "{text}".
type CommandSynthesizer struct {
	mu      sync.Mutex
	argv    []string
	logger  *zap.Logger
	current *playback
}

// playback is one run of the speak command.
type playback struct {
	cmd         *exec.Cmd
	done        chan struct{}
	err         error
	interrupted bool
}

// NewCommandSynthesizer creates a synthesizer for argv.
func NewCommandSynthesizer(argv []string, logger *zap.Logger) (*CommandSynthesizer, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("speak command: %w", ErrUnavailable)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandSynthesizer{
		argv:   append([]string(nil), argv...),
		logger: logger,
	}, nil
}

// Speak implements Synthesizer.
func (s *CommandSynthesizer) Speak(text string, blocking bool) error {
	if text == "" {
		return nil
	}

	s.mu.Lock()
	s.stopLocked()

	args := expand(s.argv, "", text)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("starting %s: %w", args[0], err)
	}

	p := &playback{cmd: cmd, done: make(chan struct{})}
	s.current = p
	s.mu.Unlock()

	go func() {
		err := cmd.Wait()
		s.mu.Lock()
		p.err = err
		if s.current == p {
			s.current = nil
		}
		s.mu.Unlock()
		close(p.done)
	}()

	s.logger.Debug("speaking", zap.String("text", logger.Truncate(text, 50)))

	if !blocking {
		return nil
	}
	<-p.done

	if p.err != nil && !p.interrupted {
		return fmt.Errorf("running %s: %w", args[0], p.err)
	}
	return nil
}

// stopLocked kills the running narration, if any, and waits for it to exit.
// s.mu is released while waiting.
func (s *CommandSynthesizer) stopLocked() {
	for s.current != nil {
		p := s.current
		s.current = nil
		p.interrupted = true
		_ = p.cmd.Process.Kill()

		s.mu.Unlock()
		<-p.done
		s.mu.Lock()
	}
}

// StopSpeaking implements Synthesizer.
func (s *CommandSynthesizer) StopSpeaking() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	return nil
}

// IsBusy implements Synthesizer.
func (s *CommandSynthesizer) IsBusy() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current != nil
}

// Close implements Synthesizer.
func (s *CommandSynthesizer) Close() error {
	return s.StopSpeaking()
}
