package registry

import "sync"

// Topic fans a change signal out to every subscribed writer. Signals carry no
// payload: subscribers re-read the room state when woken, so collapsing a
// burst of publishes into one pending signal loses nothing.
type Topic struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

// Subscription is one writer's handle on a Topic. Its channel is closed when
// the topic shuts down or the subscription is cancelled.
type Subscription struct {
	topic *Topic
	ch    chan struct{}
}

func NewTopic() *Topic {
	return &Topic{subs: make(map[*Subscription]struct{})}
}

// Subscribe registers a new listener. Subscribing to a closed topic returns a
// subscription whose channel is already closed.
func (t *Topic) Subscribe() *Subscription {
	sub := &Subscription{topic: t, ch: make(chan struct{}, 1)}

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		close(sub.ch)
		return sub
	}
	t.subs[sub] = struct{}{}
	return sub
}

// Publish wakes every subscriber. A subscriber that already has a signal
// pending is skipped; it will re-read the latest state either way.
func (t *Topic) Publish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for sub := range t.subs {
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

// Close shuts the topic down, closing every subscriber channel. Publish and
// Subscribe remain safe to call afterwards.
func (t *Topic) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	t.closed = true
	for sub := range t.subs {
		close(sub.ch)
	}
	t.subs = make(map[*Subscription]struct{})
}

// C returns the signal channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan struct{} {
	return s.ch
}

// Cancel removes the subscription from its topic and closes the channel.
// Cancelling twice, or after the topic closed, is a no-op.
func (s *Subscription) Cancel() {
	s.topic.mu.Lock()
	defer s.topic.mu.Unlock()
	if _, ok := s.topic.subs[s]; !ok {
		return
	}
	delete(s.topic.subs, s)
	close(s.ch)
}
