package llm

import (
	"context"
	"sync"

	"contentflow/internal/checklist"
)

// FakeCall records one request seen by FakeClient.
type FakeCall struct {
	Image             bool
	SystemInstruction string
	Prompt            string
}

// FakeClient is a deterministic offline Generator. It echoes prompts, can be
// scripted per call type, and can hold calls in flight until released.
type FakeClient struct {
	mu      sync.Mutex
	textFn  func(systemInstruction, prompt string) (string, error)
	imageFn func(prompt string) (checklist.ImageHandle, error)
	gate    chan struct{}
	calls   []FakeCall
	started chan FakeCall
}

// fakeJPEG is the smallest byte sequence with JPEG start and end markers.
var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xD9}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		textFn: func(_, prompt string) (string, error) {
			return "[offline] " + prompt, nil
		},
		imageFn: func(string) (checklist.ImageHandle, error) {
			return EncodeJPEG(fakeJPEG), nil
		},
		started: make(chan FakeCall, 64),
	}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

// OnText replaces the text reply.
func (f *FakeClient) OnText(fn func(systemInstruction, prompt string) (string, error)) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.textFn = fn
	return f
}

// OnImage replaces the image reply.
func (f *FakeClient) OnImage(fn func(prompt string) (checklist.ImageHandle, error)) *FakeClient {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageFn = fn
	return f
}

// Hold makes every following call block until release is called or the
// call's context ends.
func (f *FakeClient) Hold() (release func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gate := make(chan struct{})
	f.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() {
			close(gate)
			f.mu.Lock()
			if f.gate == gate {
				f.gate = nil
			}
			f.mu.Unlock()
		})
	}
}

// Started receives every call as it begins. Sends never block; calls beyond
// the buffer are dropped from the channel but still recorded.
func (f *FakeClient) Started() <-chan FakeCall { return f.started }

func (f *FakeClient) Calls() []FakeCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]FakeCall, len(f.calls))
	copy(out, f.calls)
	return out
}

func (f *FakeClient) begin(ctx context.Context, call FakeCall) error {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	gate := f.gate
	f.mu.Unlock()

	select {
	case f.started <- call:
	default:
	}
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *FakeClient) GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if err := f.begin(ctx, FakeCall{SystemInstruction: systemInstruction, Prompt: prompt}); err != nil {
		return "", providerFailure(err)
	}
	f.mu.Lock()
	fn := f.textFn
	f.mu.Unlock()
	out, err := fn(systemInstruction, prompt)
	if err != nil {
		if _, ok := AsGenerationError(err); !ok {
			err = providerFailure(err)
		}
		return "", err
	}
	if out == "" {
		return EmptyTextFallback, nil
	}
	return out, nil
}

func (f *FakeClient) GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error) {
	if err := f.begin(ctx, FakeCall{Image: true, Prompt: prompt}); err != nil {
		return "", imageFailure(err)
	}
	f.mu.Lock()
	fn := f.imageFn
	f.mu.Unlock()
	out, err := fn(prompt)
	if err != nil {
		if _, ok := AsGenerationError(err); !ok {
			err = imageFailure(err)
		}
		return "", err
	}
	return out, nil
}
