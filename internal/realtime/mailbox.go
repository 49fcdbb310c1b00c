package realtime

import "sync"

// mailbox holds at most one pending frame per event type. A newer frame
// replaces the pending one and moves to the back, so the pending set keeps
// the order in which each type last changed.
type mailbox struct {
	mu      sync.Mutex
	pending map[string][]byte
	order   []string
	closed  bool

	// Signalled on every put and on close; capacity 1
	ready chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{
		pending: make(map[string][]byte),
		ready:   make(chan struct{}, 1),
	}
}

func (m *mailbox) put(eventType string, data []byte) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if _, ok := m.pending[eventType]; ok {
		m.order = removeType(m.order, eventType)
	}
	m.pending[eventType] = data
	m.order = append(m.order, eventType)
	m.mu.Unlock()

	m.signal()
}

// take empties the mailbox and returns its frames in order. closed reports
// that no more frames will arrive.
func (m *mailbox) take() (frames [][]byte, closed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	frames = make([][]byte, 0, len(m.order))
	for _, eventType := range m.order {
		frames = append(frames, m.pending[eventType])
	}
	m.pending = make(map[string][]byte, len(m.order))
	m.order = m.order[:0]
	return frames, m.closed
}

// replayTo copies the pending frames into dst without emptying m
func (m *mailbox) replayTo(dst *mailbox) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, eventType := range m.order {
		dst.put(eventType, m.pending[eventType])
	}
}

func (m *mailbox) close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.signal()
}

func (m *mailbox) signal() {
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

func removeType(order []string, eventType string) []string {
	out := order[:0]
	for _, t := range order {
		if t != eventType {
			out = append(out, t)
		}
	}
	return out
}
