package sse

import (
	"context"
	"io"
	"iter"

	"github.com/gammazero/deque"

	deepseek "github.com/hunjixin/deepseek-api"
)

// Chunk is one read from a byte source. Exactly one of Data and Err is set.
// Ownership of Data passes to the receiver.
type Chunk struct {
	Data []byte
	Err  error
}

// Pump reads r on its own goroutine and delivers the bytes as chunks of at
// most size bytes. The channel is closed after io.EOF, after a read error has
// been delivered, or once ctx is done. On cancellation ctx.Err() is delivered
// when the channel has room for it.
func Pump(ctx context.Context, r io.Reader, size int) <-chan Chunk {
	if size <= 0 {
		size = defaultChunkSize
	}
	ch := make(chan Chunk, 1)
	go func() {
		defer close(ch)
		for {
			buf := make([]byte, size)
			n, err := r.Read(buf)
			if n > 0 && !send(ctx, ch, Chunk{Data: buf[:n]}) {
				offer(ch, Chunk{Err: ctx.Err()})
				return
			}
			if err == io.EOF {
				return
			}
			if err != nil {
				if !send(ctx, ch, Chunk{Err: err}) {
					offer(ch, Chunk{Err: ctx.Err()})
				}
				return
			}
		}
	}()
	return ch
}

func send(ctx context.Context, ch chan<- Chunk, c Chunk) bool {
	select {
	case ch <- c:
		return true
	case <-ctx.Done():
		return false
	}
}

func offer(ch chan<- Chunk, c Chunk) {
	select {
	case ch <- c:
	default:
	}
}

// AsyncStream decodes items from a channel of chunks. Next suspends the
// calling goroutine on the channel and a context; TryNext never waits, which
// lets a single goroutine poll many streams.
type AsyncStream[T any] struct {
	chunks  <-chan Chunk
	queue   *deque.Deque[Chunk]
	srcDone bool
	dec     *Decoder[T]

	// srcCtx is the pump's context. A channel closed after it is done was
	// cut short, not exhausted.
	srcCtx context.Context

	cancel   context.CancelFunc
	body     io.Closer
	closed   bool
	released bool
}

// NewAsyncStream returns an AsyncStream over chunks produced elsewhere. The
// producer signals the end of the source by closing the channel.
func NewAsyncStream[T any](chunks <-chan Chunk, opts ...Option) *AsyncStream[T] {
	return &AsyncStream[T]{
		chunks: chunks,
		queue:  deque.New[Chunk](),
		dec:    NewDecoder[T](opts...),
	}
}

// NewAsyncStreamFromBody pumps body on a background goroutine and returns an
// AsyncStream over it. Close, or reaching a terminal state, stops the pump
// and closes body.
func NewAsyncStreamFromBody[T any](ctx context.Context, body io.ReadCloser, opts ...Option) *AsyncStream[T] {
	ctx, cancel := context.WithCancel(ctx)
	s := NewAsyncStream[T](Pump(ctx, body, defaultChunkSize), opts...)
	s.srcCtx = ctx
	s.cancel = cancel
	s.body = body
	return s
}

// Next returns the next item, waiting for chunks as needed. If ctx is done
// while waiting, the cancellation is reported as a TransportError and the
// stream terminates.
func (s *AsyncStream[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if s.closed {
		return zero, deepseek.ErrStreamClosed
	}
	for {
		item, err := s.dec.Next()
		if err != ErrPending {
			return s.settle(item, err)
		}
		if s.step() {
			continue
		}
		if err := ctx.Err(); err != nil {
			s.dec.Fail(err)
			continue
		}
		select {
		case c, ok := <-s.chunks:
			s.receive(c, ok)
			if err := ctx.Err(); !ok && err != nil {
				s.fail(err)
			}
		case <-ctx.Done():
			s.dec.Fail(ctx.Err())
		}
	}
}

// TryNext returns the next item if it can be produced from chunks that have
// already arrived, and ErrPending otherwise.
func (s *AsyncStream[T]) TryNext() (T, error) {
	var zero T
	if s.closed {
		return zero, deepseek.ErrStreamClosed
	}
	for {
		item, err := s.dec.Next()
		if err != ErrPending {
			return s.settle(item, err)
		}
		if s.step() {
			continue
		}
		if !s.poll() {
			return zero, ErrPending
		}
	}
}

// State returns the current stream state.
func (s *AsyncStream[T]) State() deepseek.StreamState {
	if s.closed {
		return deepseek.StreamStateClosed
	}
	return s.dec.State()
}

// Close stops the pump and releases the body.
func (s *AsyncStream[T]) Close() error {
	if !s.dec.State().Terminal() {
		s.closed = true
	}
	return s.release()
}

// All returns an iterator over the remaining items, waiting with ctx.
func (s *AsyncStream[T]) All(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			item, err := s.Next(ctx)
			if err == io.EOF {
				return
			}
			if !yield(item, err) || err == deepseek.ErrStreamClosed {
				return
			}
		}
	}
}

// step feeds one queued chunk, or the end of the source, to the decoder.
func (s *AsyncStream[T]) step() bool {
	if s.queue.Len() > 0 {
		c := s.queue.PopFront()
		if c.Err != nil {
			s.dec.Fail(c.Err)
		} else {
			s.dec.Feed(c.Data)
		}
		return true
	}
	if s.srcDone && !s.finished() {
		s.dec.Finish()
		return true
	}
	return false
}

func (s *AsyncStream[T]) finished() bool {
	return s.dec.exhausted
}

// poll moves every chunk already waiting on the channel into the queue.
func (s *AsyncStream[T]) poll() bool {
	got := false
	for range cap(s.chunks) + 1 {
		select {
		case c, ok := <-s.chunks:
			s.receive(c, ok)
			got = true
			if !ok {
				return true
			}
		default:
			return got
		}
	}
	return got
}

func (s *AsyncStream[T]) receive(c Chunk, ok bool) {
	if !ok {
		s.chunks = nil
		if s.srcCtx != nil && s.srcCtx.Err() != nil {
			s.fail(s.srcCtx.Err())
			return
		}
		s.srcDone = true
		return
	}
	s.queue.PushBack(c)
}

// fail queues err behind the chunks already received, so complete lines
// that arrived first are still delivered and the partial line is dropped.
func (s *AsyncStream[T]) fail(err error) {
	s.queue.PushBack(Chunk{Err: err})
}

func (s *AsyncStream[T]) settle(item T, err error) (T, error) {
	if s.dec.State().Terminal() {
		s.release()
	}
	return item, err
}

func (s *AsyncStream[T]) release() error {
	if s.released {
		return nil
	}
	s.released = true
	if s.cancel != nil {
		s.cancel()
	}
	if s.body != nil {
		return s.body.Close()
	}
	return nil
}
