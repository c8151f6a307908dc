package openrouter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

// ErrStreamIdle is reported by a stream whose body went quiet for longer than
// the client timeout.
var ErrStreamIdle = errors.New("stream idle timeout")

// idleBody cancels the request when no bytes arrive for timeout. Every read that
// returns data pushes the deadline back.
type idleBody struct {
	body    io.ReadCloser
	timeout time.Duration
	cancel  context.CancelFunc
	timer   *time.Timer
	expired atomic.Bool
}

func newIdleBody(body io.ReadCloser, timeout time.Duration, cancel context.CancelFunc) *idleBody {
	b := &idleBody{body: body, timeout: timeout, cancel: cancel}
	b.timer = time.AfterFunc(timeout, func() {
		b.expired.Store(true)
		cancel()
	})
	return b
}

func (b *idleBody) Read(p []byte) (int, error) {
	n, err := b.body.Read(p)
	if n > 0 && !b.expired.Load() {
		b.timer.Reset(b.timeout)
	}
	if err != nil && err != io.EOF && b.expired.Load() {
		return n, fmt.Errorf("%w: no data for %s", ErrStreamIdle, b.timeout)
	}
	return n, err
}

func (b *idleBody) Close() error {
	b.timer.Stop()
	err := b.body.Close()
	b.cancel()
	return err
}
