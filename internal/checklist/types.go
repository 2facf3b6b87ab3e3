package checklist

import (
	"strings"

	"contentflow/internal/action"
)

// ImageHandle is a directly displayable image reference, a
// data:image/jpeg;base64 URI. The empty handle means no image was produced.
type ImageHandle string

const ImageDataURIPrefix = "data:image/jpeg;base64,"

type OutputType string

const (
	OutputText  OutputType = "text"
	OutputImage OutputType = "image"
)

// Output is generated content attached to an item. Type is fixed when the
// output is created; callers never infer it from the payload.
type Output struct {
	Type  OutputType  `json:"type"`
	Text  string      `json:"text,omitempty"`
	Image ImageHandle `json:"image,omitempty"`
}

func TextOutput(s string) Output { return Output{Type: OutputText, Text: s} }

func ImageOutput(h ImageHandle) Output { return Output{Type: OutputImage, Image: h} }

// IsEmpty reports whether there is nothing worth saving.
func (o Output) IsEmpty() bool {
	switch o.Type {
	case OutputText:
		return strings.TrimSpace(o.Text) == ""
	case OutputImage:
		return strings.TrimSpace(string(o.Image)) == ""
	default:
		return true
	}
}

// Item is one actionable step of a phase.
type Item struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	Description string       `json:"description"`
	IsCompleted bool         `json:"isCompleted"`
	Expanded    bool         `json:"expanded"`
	ExpertTip   string       `json:"expertTip,omitempty"`
	Action      *action.Kind `json:"action,omitempty"`
	SavedOutput *Output      `json:"savedOutput,omitempty"`
}

// CanAssist reports whether the AI assistant may be opened for the item.
func (it Item) CanAssist() bool {
	return it.Action != nil && !it.IsCompleted
}

func (it Item) clone() Item {
	out := it
	if it.Action != nil {
		k := *it.Action
		out.Action = &k
	}
	if it.SavedOutput != nil {
		o := *it.SavedOutput
		out.SavedOutput = &o
	}
	return out
}

// Phase is an ordered group of items. Effort is the share of total work the
// phase represents, in percent.
type Phase struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Effort int    `json:"effort"`
	Items  []Item `json:"items"`
}

func (p Phase) clone() Phase {
	out := p
	out.Items = make([]Item, len(p.Items))
	for i, it := range p.Items {
		out.Items[i] = it.clone()
	}
	return out
}
