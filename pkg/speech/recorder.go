package speech

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// stopGrace is how long a capture process gets to flush after being
// interrupted before it is killed.
const stopGrace = 2 * time.Second

// CommandRecorder records audio by running an external capture program that
// writes to "{file}" until it is interrupted.
type CommandRecorder struct {
	mu      sync.Mutex
	argv    []string
	dir     string
	logger  *zap.Logger
	cmd     *exec.Cmd
	done    chan error
	current *Recording
}

// NewCommandRecorder creates a recorder writing captures into dir. An empty dir
// uses a fresh directory under the system temp dir.
func NewCommandRecorder(argv []string, dir string, logger *zap.Logger) (*CommandRecorder, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("record command: %w", ErrUnavailable)
	}
	if dir == "" {
		var err error
		dir, err = os.MkdirTemp("", "voicechat-recordings-")
		if err != nil {
			return nil, fmt.Errorf("creating recording dir: %w", err)
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CommandRecorder{
		argv:   append([]string(nil), argv...),
		dir:    dir,
		logger: logger,
	}, nil
}

// Dir returns the directory recordings are written to.
func (r *CommandRecorder) Dir() string {
	return r.dir
}

// StartRecording implements Recorder.
func (r *CommandRecorder) StartRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd != nil {
		return false
	}

	rec := &Recording{
		ID:        uuid.New().String(),
		StartedAt: time.Now(),
	}
	rec.Path = filepath.Join(r.dir, rec.ID+".wav")

	args := expand(r.argv, rec.Path, "")
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		r.logger.Error("failed to start recording",
			zap.String("command", args[0]),
			zap.Error(err),
		)
		return false
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	r.cmd = cmd
	r.done = done
	r.current = rec

	r.logger.Info("recording started", zap.String("recording_id", rec.ID))
	return true
}

// StopRecording implements Recorder.
func (r *CommandRecorder) StopRecording() (*Recording, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil, ErrNotRecording
	}

	r.stopLocked()
	rec := r.current
	r.current = nil
	rec.Duration = time.Since(rec.StartedAt)

	info, err := os.Stat(rec.Path)
	if err != nil || info.Size() == 0 {
		_ = rec.Remove()
		r.logger.Warn("recording produced no audio", zap.String("recording_id", rec.ID))
		return nil, ErrNoAudio
	}

	r.logger.Info("recording stopped",
		zap.String("recording_id", rec.ID),
		zap.Duration("duration", rec.Duration),
		zap.Int64("bytes", info.Size()),
	)
	return rec, nil
}

// stopLocked interrupts the capture process and waits for it to exit.
func (r *CommandRecorder) stopLocked() {
	_ = r.cmd.Process.Signal(os.Interrupt)

	select {
	case <-r.done:
	case <-time.After(stopGrace):
		_ = r.cmd.Process.Kill()
		<-r.done
	}

	r.cmd = nil
	r.done = nil
}

// IsRecording implements Recorder.
func (r *CommandRecorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd != nil
}

// Close stops any running capture and discards it.
func (r *CommandRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cmd == nil {
		return nil
	}
	r.stopLocked()
	err := r.current.Remove()
	r.current = nil
	return err
}
