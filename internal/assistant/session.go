package assistant

import (
	"errors"
	"strings"

	"contentflow/internal/action"
	"contentflow/internal/checklist"
	"contentflow/internal/llm"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// FailurePolicy decides how a failed provider call is shown.
type FailurePolicy string

const (
	// PolicyTyped ends text and image failures in StatusFailed with the
	// error's user message.
	PolicyTyped FailurePolicy = "typed"
	// PolicyFallback ends every failure in StatusSucceeded with the generic
	// text fallback as the result.
	PolicyFallback FailurePolicy = "fallback"
)

func ParsePolicy(raw string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", PolicyTyped:
		return PolicyTyped, nil
	case PolicyFallback:
		return PolicyFallback, nil
	}
	return "", errors.New("assistant: failure policy must be typed or fallback")
}

// Session is one generate, review and save interaction bound to an item.
// It does no I/O and is not safe for concurrent use; Manager serialises it.
type Session struct {
	id      string
	itemID  string
	kind    action.Kind
	title   string
	input   string
	status  Status
	result  *checklist.Output
	errMsg  string
	failure llm.FailureKind
	saved   bool
	attempt uint64
}

func newSession(id, itemID string, kind action.Kind, title string) *Session {
	return &Session{
		id:     id,
		itemID: itemID,
		kind:   kind,
		title:  title,
		status: StatusIdle,
	}
}

// request is what begin hands to the provider call.
type request struct {
	attempt uint64
	kind    action.Kind
	prompt  action.Prompt
}

func (s *Session) setInput(text string) error {
	if s.status == StatusLoading {
		return ErrBusy
	}
	s.input = text
	return nil
}

// begin moves the session to loading and clears the previous result.
// Blank input and an in-flight call leave the session untouched.
func (s *Session) begin() (request, error) {
	if s.status == StatusLoading {
		return request{}, ErrBusy
	}
	if strings.TrimSpace(s.input) == "" {
		return request{}, ErrInputInvalid
	}
	prompt, err := action.BuildPrompt(s.kind, s.input)
	if err != nil {
		return request{}, err
	}
	s.attempt++
	s.status = StatusLoading
	s.result = nil
	s.errMsg = ""
	s.failure = ""
	s.saved = false
	return request{attempt: s.attempt, kind: s.kind, prompt: prompt}, nil
}

// resolve records the outcome of attempt. It reports false when the attempt
// is stale and the outcome was dropped.
func (s *Session) resolve(attempt uint64, out checklist.Output, err error, policy FailurePolicy) bool {
	if s.status != StatusLoading || attempt != s.attempt {
		return false
	}
	if err == nil {
		s.status = StatusSucceeded
		s.result = &out
		return true
	}

	kind, msg := llm.ProviderFailure, llm.TextFailureMessage
	if ge, ok := llm.AsGenerationError(err); ok {
		kind, msg = ge.Kind, ge.UserMessage()
	}
	if policy == PolicyFallback {
		fallback := checklist.TextOutput(llm.TextFailureMessage)
		s.status = StatusSucceeded
		s.result = &fallback
		return true
	}
	s.status = StatusFailed
	s.failure = kind
	s.errMsg = msg
	return true
}

// committable requires a non-empty successful result that was not saved yet.
func (s *Session) committable() bool {
	return s.status == StatusSucceeded && s.result != nil && !s.result.IsEmpty() && !s.saved
}

// Snapshot is a read-only copy of a session.
type Snapshot struct {
	ID           string            `json:"id"`
	ItemID       string            `json:"itemId"`
	Action       action.Kind       `json:"action"`
	Label        string            `json:"label"`
	Placeholder  string            `json:"placeholder"`
	ContextTitle string            `json:"contextTitle"`
	Input        string            `json:"input"`
	Status       Status            `json:"status"`
	Result       *checklist.Output `json:"result,omitempty"`
	Error        string            `json:"error,omitempty"`
	FailureKind  llm.FailureKind   `json:"failureKind,omitempty"`
	Saved        bool              `json:"saved"`
	Committable  bool              `json:"committable"`
}

func (s *Session) snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.id,
		ItemID:       s.itemID,
		Action:       s.kind,
		ContextTitle: s.title,
		Input:        s.input,
		Status:       s.status,
		Error:        s.errMsg,
		FailureKind:  s.failure,
		Saved:        s.saved,
		Committable:  s.committable(),
	}
	if spec, err := action.Lookup(s.kind); err == nil {
		snap.Label = spec.Label
		snap.Placeholder = spec.Placeholder
	}
	if s.result != nil {
		r := *s.result
		snap.Result = &r
	}
	return snap
}
