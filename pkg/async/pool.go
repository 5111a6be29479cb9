package async

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

const DefaultWidth = 30

var ErrPanic = errors.New("task panicked")

// Pool runs submitted tasks on at most width goroutines at a time. Submissions never block; tasks
// beyond the width wait in FIFO order.
type Pool struct {
	width int
	sem   *semaphore.Weighted

	queued  atomic.Int64
	running atomic.Int64
}

func New(width int) *Pool {
	if width <= 0 {
		width = DefaultWidth
	}

	return &Pool{
		width: width,
		sem:   semaphore.NewWeighted(int64(width)),
	}
}

type Stats struct {
	Width int `json:"width"`

	Queued  int `json:"queued"`
	Running int `json:"running"`
}

func (p *Pool) Stats() Stats {
	return Stats{
		Width: p.width,

		Queued:  int(p.queued.Load()),
		Running: int(p.running.Load()),
	}
}

// Submit schedules fn on the pool and returns its future immediately.
func Submit[T any](p *Pool, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()

	p.queued.Add(1)

	go func() {
		// background context: tasks are never cancelled once submitted
		if err := p.sem.Acquire(context.Background(), 1); err != nil {
			p.queued.Add(-1)

			var zero T
			f.resolve(zero, err)

			return
		}

		p.queued.Add(-1)
		p.running.Add(1)

		value, err := run(fn)

		p.running.Add(-1)
		p.sem.Release(1)

		f.resolve(value, err)
	}()

	return f
}

func run[T any](fn func() (T, error)) (value T, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("task panicked", "panic", r)
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	return fn()
}
