package workpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
)

// ErrPanic wraps a panic recovered from submitted work
var ErrPanic = errors.New("worker panic")

// Pool limits how many functions run at once. Callers over the limit wait
// for a free slot instead of starting more work.
type Pool struct {
	slots chan struct{}
}

// New creates a pool with size slots (at least 1)
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{slots: make(chan struct{}, size)}
}

// Size returns the number of slots
func (p *Pool) Size() int {
	return cap(p.slots)
}

// InUse returns the number of busy slots
func (p *Pool) InUse() int {
	return len(p.slots)
}

// Do waits for a slot and runs fn in it. A panic inside fn is returned as an
// error wrapping ErrPanic.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-p.slots }()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v\n%s", ErrPanic, r, debug.Stack())
		}
	}()

	return fn(ctx)
}

// Run is Do for functions that produce a value
func Run[T any](ctx context.Context, p *Pool, fn func(ctx context.Context) (T, error)) (T, error) {
	var out T
	err := p.Do(ctx, func(ctx context.Context) error {
		v, err := fn(ctx)
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}
