package llm

import (
	"context"
	"encoding/base64"

	"contentflow/internal/checklist"
)

// Generator is the boundary to the external text and image providers. Each
// call is a single round trip with no retries.
type Generator interface {
	Name() string
	GenerateText(ctx context.Context, systemInstruction, prompt string) (string, error)
	GenerateImage(ctx context.Context, prompt string) (checklist.ImageHandle, error)
	Close() error
}

// EncodeJPEG wraps raw JPEG bytes as a data URI. No bytes yields the empty
// handle.
func EncodeJPEG(b []byte) checklist.ImageHandle {
	if len(b) == 0 {
		return ""
	}
	return checklist.ImageHandle(checklist.ImageDataURIPrefix + base64.StdEncoding.EncodeToString(b))
}
