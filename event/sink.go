package event

import "sync"

// Listener consumes normalized events.
type Listener interface {
	OnEvent(Event)
}

// ListenerFunc adapts a function to a Listener.
type ListenerFunc func(Event)

func (f ListenerFunc) OnEvent(e Event) {
	f(e)
}

// Sink queues events until a listener is attached, then delivers them in
// order. Detaching resumes queueing; nothing is dropped.
//
// The queue and the listener are guarded together. Delivery happens outside
// the lock, by whichever caller found the sink idle, so a listener may call
// back into the sink (or anything that feeds it) without deadlocking, and
// events pushed meanwhile are delivered after the current one.
type Sink struct {
	mu       sync.Mutex
	delegate Listener
	queue    []Event
	draining bool
}

// NewSink returns a sink with no listener attached.
func NewSink() *Sink {
	return &Sink{}
}

// Success enqueues an event and delivers it if a listener is attached.
func (s *Sink) Success(e Event) {
	s.Enqueue(e)
	s.drain()
}

// Enqueue appends events without delivering them. Producers that compute
// events under their own lock enqueue there and call Flush once unlocked,
// so queue order follows their state order.
func (s *Sink) Enqueue(events ...Event) {
	if len(events) == 0 {
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, events...)
	s.mu.Unlock()
}

// Flush delivers queued events to the attached listener, if any.
func (s *Sink) Flush() {
	s.drain()
}

// Error enqueues an Error event.
func (s *Sink) Error(code, message string, details any) {
	s.Success(Error{Code: code, Message: message, Details: details})
}

// SetDelegate attaches l, flushing queued events to it first, or detaches the
// current listener when l is nil.
func (s *Sink) SetDelegate(l Listener) {
	s.mu.Lock()
	s.delegate = l
	s.mu.Unlock()

	s.drain()
}

// Len reports how many events are waiting for a listener.
func (s *Sink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func (s *Sink) drain() {
	s.mu.Lock()
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	for s.delegate != nil && len(s.queue) > 0 {
		e, l := s.queue[0], s.delegate
		s.queue[0] = nil
		s.queue = s.queue[1:]

		s.mu.Unlock()
		l.OnEvent(e)
		s.mu.Lock()
	}

	if len(s.queue) == 0 {
		s.queue = nil
	}
	s.draining = false
	s.mu.Unlock()
}
