package async

// Future is the single-assignment result of a submitted task.
type Future[T any] struct {
	done chan struct{}

	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{
		done: make(chan struct{}),
	}
}

// Resolved returns a future that already holds value.
func Resolved[T any](value T) *Future[T] {
	f := newFuture[T]()
	f.resolve(value, nil)

	return f
}

// Failed returns a future that already holds err.
func Failed[T any](err error) *Future[T] {
	var zero T

	f := newFuture[T]()
	f.resolve(zero, err)

	return f
}

func (f *Future[T]) resolve(value T, err error) {
	f.value = value
	f.err = err

	close(f.done)
}

// Wait blocks until the task finished.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
