package host

import (
	"context"
	"io"
	"time"
)

// BatchConfig controls how a [PullHost] drains its queue of signals.
type BatchConfig struct {
	// MaxSize is the maximum number of signals handled per batch. A value
	// < 0 disables the limit.
	//
	// Defaults to 16, if 0.
	MaxSize int

	// MinSize is the (target) minimum number of signals per batch. Once
	// PartialTimeout elapses after the first signal, the batch completes
	// with what it has.
	//
	// Defaults to 1, if 0.
	MinSize int

	// PartialTimeout is the maximum time to wait for MinSize signals, after
	// receiving the first.
	//
	// Defaults to 50ms, if 0.
	PartialTimeout time.Duration
}

// receiveBatch blocks until at least one signal is received, then handles
// as many as are available, within the configured constraints. It returns
// io.EOF if ch is closed, or the first error from handler, or ctx's error.
func receiveBatch[T any](ctx context.Context, cfg *BatchConfig, ch <-chan T, handler func(value T) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	maxSize := 16
	minSize := 1
	partialTimeout := 50 * time.Millisecond
	if cfg != nil {
		if cfg.MaxSize != 0 {
			maxSize = cfg.MaxSize
		}
		if cfg.MinSize > 0 {
			minSize = cfg.MinSize
		}
		if cfg.PartialTimeout != 0 {
			partialTimeout = cfg.PartialTimeout
		}
	}

	var (
		size      int
		partialCh <-chan time.Time
	)

	// wait for the minimum, cut short by the partial timeout
MinSizeLoop:
	for (maxSize < 0 || size < maxSize) && size < minSize {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-partialCh:
			break MinSizeLoop

		case value, ok := <-ch:
			if !ok {
				return io.EOF
			}

			size++

			if size == 1 && partialTimeout > 0 {
				timer := time.NewTimer(partialTimeout)
				//goland:noinspection GoDeferInLoop
				defer timer.Stop()
				partialCh = timer.C
			}

			if err := handler(value); err != nil {
				return err
			}
		}
	}

	// take what is immediately available, up to the maximum
	for maxSize < 0 || size < maxSize {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case value, ok := <-ch:
			if !ok {
				return io.EOF
			}

			size++

			if err := handler(value); err != nil {
				return err
			}

		default:
			return ctx.Err()
		}
	}

	return ctx.Err()
}
