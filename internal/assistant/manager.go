// Package assistant runs the AI assistant modal: one live session at a time,
// bound to a checklist item, that generates output and saves it back.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"contentflow/internal/action"
	"contentflow/internal/checklist"
	"contentflow/internal/llm"
	"contentflow/internal/metrics"
)

var (
	ErrNoSession         = errors.New("assistant: no open session")
	ErrSessionMismatch   = errors.New("assistant: session was replaced")
	ErrInputInvalid      = errors.New("assistant: input is empty")
	ErrBusy              = errors.New("assistant: generation already in flight")
	ErrNotCommittable    = errors.New("assistant: nothing to save")
	ErrItemNotAssistable = errors.New("assistant: item has no available action")
)

// DefaultCloseDelay is how long a saved session stays visible before it
// closes on its own.
const DefaultCloseDelay = time.Second

type Config struct {
	Generator  llm.Generator
	Checklist  *checklist.Model
	Policy     FailurePolicy
	CloseDelay time.Duration
	Logger     zerolog.Logger

	// AfterFunc schedules the post-save close. Defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) Timer
	// NewID returns session ids. Defaults to uuid.NewString.
	NewID func() string
}

// Timer is the part of *time.Timer the manager needs.
type Timer interface {
	Stop() bool
}

type Manager struct {
	gen        llm.Generator
	items      *checklist.Model
	policy     FailurePolicy
	closeDelay time.Duration
	log        zerolog.Logger
	afterFunc  func(time.Duration, func()) Timer
	newID      func() string

	mu         sync.Mutex
	cur        *Session
	closeTimer Timer
	subs       map[int]chan Event
	nextSub    int
}

func New(cfg Config) (*Manager, error) {
	if cfg.Generator == nil {
		return nil, fmt.Errorf("assistant: generator is required")
	}
	if cfg.Checklist == nil {
		return nil, fmt.Errorf("assistant: checklist is required")
	}
	m := &Manager{
		gen:        cfg.Generator,
		items:      cfg.Checklist,
		policy:     cfg.Policy,
		closeDelay: cfg.CloseDelay,
		log:        cfg.Logger.With().Str("component", "assistant").Logger(),
		afterFunc:  cfg.AfterFunc,
		newID:      cfg.NewID,
		subs:       make(map[int]chan Event),
	}
	if m.policy == "" {
		m.policy = PolicyTyped
	}
	if m.closeDelay < 0 {
		m.closeDelay = 0
	}
	if m.afterFunc == nil {
		m.afterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m, nil
}

func (m *Manager) Policy() FailurePolicy { return m.policy }

// Open starts a fresh session for itemID, replacing any live one. An empty
// contextTitle falls back to the item's text.
func (m *Manager) Open(itemID string, kind action.Kind, contextTitle string) (Snapshot, error) {
	if _, err := action.Lookup(kind); err != nil {
		return Snapshot{}, err
	}
	item, err := m.items.FindItem(itemID)
	if err != nil {
		return Snapshot{}, err
	}
	title := strings.TrimSpace(contextTitle)
	if title == "" {
		title = item.Text
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != nil {
		m.closeLocked("replaced")
	}
	m.cur = newSession(m.newID(), item.ID, kind, title)
	snap := m.cur.snapshot()
	metrics.AssistantSessionsTotal.WithLabelValues(string(EventOpened)).Inc()
	m.log.Info().Str("session", snap.ID).Str("item", item.ID).Str("action", string(kind)).Msg("session opened")
	m.publishLocked(EventOpened, &snap)
	return snap, nil
}

// OpenForItem opens the session for the item's own bound action.
func (m *Manager) OpenForItem(itemID string) (Snapshot, error) {
	item, err := m.items.FindItem(itemID)
	if err != nil {
		return Snapshot{}, err
	}
	if !item.CanAssist() {
		return Snapshot{}, fmt.Errorf("%w: %s", ErrItemNotAssistable, item.ID)
	}
	return m.Open(item.ID, *item.Action, item.Text)
}

// Current returns the live session, if any.
func (m *Manager) Current() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur == nil {
		return Snapshot{}, false
	}
	return m.cur.snapshot(), true
}

func (m *Manager) SetInput(sessionID, text string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionLocked(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.setInput(text); err != nil {
		return s.snapshot(), err
	}
	snap := s.snapshot()
	m.publishLocked(EventUpdated, &snap)
	return snap, nil
}

// Generate runs one provider call for the session's input and blocks until
// it resolves. The call is not tied to ctx cancellation: closing or
// replacing the session abandons the result instead.
func (m *Manager) Generate(ctx context.Context, sessionID string) (Snapshot, error) {
	m.mu.Lock()
	s, err := m.sessionLocked(sessionID)
	if err != nil {
		m.mu.Unlock()
		return Snapshot{}, err
	}
	req, err := s.begin()
	if err != nil {
		snap := s.snapshot()
		m.mu.Unlock()
		return snap, err
	}
	// A regenerate after saving cancels the pending post-save close.
	m.stopTimerLocked()
	snap := s.snapshot()
	m.publishLocked(EventLoading, &snap)
	m.mu.Unlock()

	callCtx := llm.WithAction(context.WithoutCancel(ctx), req.kind)
	var out checklist.Output
	var genErr error
	if req.kind.IsImage() {
		var h checklist.ImageHandle
		h, genErr = m.gen.GenerateImage(callCtx, req.prompt.Text)
		out = checklist.ImageOutput(h)
	} else {
		var txt string
		txt, genErr = m.gen.GenerateText(callCtx, req.prompt.SystemInstruction, req.prompt.Text)
		out = checklist.TextOutput(txt)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != s || !s.resolve(req.attempt, out, genErr, m.policy) {
		m.log.Debug().Str("session", snap.ID).Msg("generation result discarded")
		return Snapshot{}, fmt.Errorf("%w: closed while generating", ErrNoSession)
	}
	snap = s.snapshot()
	ev := m.log.Info()
	if genErr != nil {
		ev = m.log.Warn().Err(genErr)
	}
	ev.Str("session", snap.ID).Str("status", string(snap.Status)).Msg("generation resolved")
	m.publishLocked(EventResolved, &snap)
	return snap, nil
}

// Commit saves the session's result to its item and schedules the session
// to close after the configured delay.
func (m *Manager) Commit(sessionID string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.sessionLocked(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	if !s.committable() {
		return s.snapshot(), ErrNotCommittable
	}
	if _, err := m.items.AttachSavedOutput(s.itemID, *s.result); err != nil {
		return s.snapshot(), err
	}
	s.saved = true
	snap := s.snapshot()
	metrics.OutputsSavedTotal.WithLabelValues(string(s.result.Type)).Inc()
	metrics.AssistantSessionsTotal.WithLabelValues(string(EventSaved)).Inc()
	m.log.Info().Str("session", snap.ID).Str("item", snap.ItemID).Str("type", string(s.result.Type)).Msg("output saved")
	m.publishLocked(EventSaved, &snap)

	if m.closeDelay == 0 {
		m.closeLocked("saved")
		return snap, nil
	}
	m.stopTimerLocked()
	m.closeTimer = m.afterFunc(m.closeDelay, func() { m.closeIfSaved(s) })
	return snap, nil
}

// closeIfSaved closes s only while it is still the live session and still
// holds its saved result.
func (m *Manager) closeIfSaved(s *Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cur != s || !s.saved {
		m.log.Debug().Str("session", s.id).Msg("delayed close skipped")
		return
	}
	m.closeLocked("saved")
}

// Close discards the session from any state. Closing when nothing is open is
// a no-op.
func (m *Manager) Close(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, err := m.sessionLocked(sessionID); err != nil {
		if errors.Is(err, ErrNoSession) {
			return nil
		}
		return err
	}
	m.closeLocked("closed")
	return nil
}

func (m *Manager) sessionLocked(sessionID string) (*Session, error) {
	if m.cur == nil {
		return nil, ErrNoSession
	}
	if id := strings.TrimSpace(sessionID); id != "" && id != m.cur.id {
		return nil, ErrSessionMismatch
	}
	return m.cur, nil
}

func (m *Manager) closeLocked(reason string) {
	m.stopTimerLocked()
	id := m.cur.id
	m.cur = nil
	metrics.AssistantSessionsTotal.WithLabelValues(string(EventClosed)).Inc()
	m.log.Info().Str("session", id).Str("reason", reason).Msg("session closed")
	m.publishLocked(EventClosed, nil)
}

func (m *Manager) stopTimerLocked() {
	if m.closeTimer != nil {
		m.closeTimer.Stop()
		m.closeTimer = nil
	}
}
