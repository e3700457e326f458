package event

import (
	"errors"
	"sync"
	"time"
)

var (
	ErrStreamClosed  = errors.New("cannot notify closed stream")
	ErrStreamTimeout = errors.New("timed out sending event to stream")
)

type Stream[E any] interface {
	ID() string
	Notify(event E, timeout time.Duration) error
	Close()
}

// ChannelStream delivers events over a buffered channel. A consumer that does
// not keep up within the send timeout gets its stream closed.
type ChannelStream[E any] struct {
	sync.Mutex

	id      string
	timeout time.Duration

	closed bool
	ch     chan E
	filter func(E) bool
}

func NewChannelStream[E any](
	id string,
	bufferSize int,
	timeout time.Duration,
	filter func(event E) bool,
) *ChannelStream[E] {
	return &ChannelStream[E]{
		id:      id,
		timeout: timeout,
		ch:      make(chan E, bufferSize),
		filter:  filter,
	}
}

func (s *ChannelStream[E]) ID() string {
	return s.id
}

func (s *ChannelStream[E]) Notify(event E, timeout time.Duration) error {
	if s.filter != nil && !s.filter(event) {
		return nil
	}

	s.Lock()
	if s.closed {
		s.Unlock()
		return ErrStreamClosed
	}

	select {
	case s.ch <- event:
	case <-time.After(timeout):
		s.Unlock()
		s.Close()
		return ErrStreamTimeout
	}

	s.Unlock()
	return nil
}

// OnEvent lets a stream be registered on a Bus. Delivery errors close the
// stream and are otherwise dropped.
func (s *ChannelStream[E]) OnEvent(event E) {
	_ = s.Notify(event, s.timeout)
}

func (s *ChannelStream[E]) Channel() <-chan E {
	return s.ch
}

func (s *ChannelStream[E]) Close() {
	s.Lock()
	defer s.Unlock()

	if s.closed {
		return
	}

	s.closed = true
	close(s.ch)
}
