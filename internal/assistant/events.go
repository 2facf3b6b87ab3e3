package assistant

import "context"

type EventType string

const (
	EventOpened   EventType = "opened"
	EventUpdated  EventType = "updated"
	EventLoading  EventType = "loading"
	EventResolved EventType = "resolved"
	EventSaved    EventType = "saved"
	EventClosed   EventType = "closed"
)

// Event reports a session change. Session is nil once the session is closed.
type Event struct {
	Type    EventType `json:"type"`
	Session *Snapshot `json:"session,omitempty"`
}

const subscriberBuffer = 16

// Subscribe emits session events until ctx is canceled. The first event is
// the current state. Slow subscribers lose their oldest events.
func (m *Manager) Subscribe(ctx context.Context) <-chan Event {
	out := make(chan Event, subscriberBuffer)

	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = out
	if m.cur != nil {
		snap := m.cur.snapshot()
		pushEvent(out, Event{Type: EventUpdated, Session: &snap})
	} else {
		pushEvent(out, Event{Type: EventClosed})
	}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, id)
		close(out)
		m.mu.Unlock()
	}()
	return out
}

func (m *Manager) publishLocked(t EventType, snap *Snapshot) {
	for _, ch := range m.subs {
		var s *Snapshot
		if snap != nil {
			cp := *snap
			s = &cp
		}
		pushEvent(ch, Event{Type: t, Session: s})
	}
}

// pushEvent never blocks; when out is full the oldest event is dropped.
func pushEvent(out chan Event, ev Event) {
	select {
	case out <- ev:
		return
	default:
	}
	select {
	case <-out:
	default:
	}
	select {
	case out <- ev:
	default:
	}
}
