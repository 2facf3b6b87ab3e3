// Package action holds the fixed catalog of AI actions a checklist item can be
// bound to, and turns free-text user context into a provider prompt.
package action

import (
	"errors"
	"fmt"
	"strings"
)

// Kind identifies one entry in the catalog. The set is closed.
type Kind string

const (
	GenerateIdeas    Kind = "GENERATE_IDEAS"
	GenerateHooks    Kind = "GENERATE_HOOKS"
	PolishContent    Kind = "POLISH_CONTENT"
	SEOKeywords      Kind = "SEO_KEYWORDS"
	RepurposeContent Kind = "REPURPOSE_CONTENT"
	GenerateImage    Kind = "GENERATE_IMAGE"
)

var ErrUnknownKind = errors.New("action: unknown kind")

// Spec describes how an action is presented and how its prompt is built.
// SystemInstruction is empty only for GenerateImage, whose prompt is the raw
// user text.
type Spec struct {
	Kind              Kind
	Label             string
	Placeholder       string
	SystemInstruction string
	Template          func(context string) string
}

// Prompt is what gets sent to the generation client.
type Prompt struct {
	SystemInstruction string
	Text              string
}

func (k Kind) String() string { return string(k) }

// IsImage reports whether the action produces an image rather than text.
func (k Kind) IsImage() bool { return k == GenerateImage }

// Valid reports whether k is part of the catalog.
func (k Kind) Valid() bool {
	_, ok := catalog[k]
	return ok
}

var order = []Kind{
	GenerateIdeas,
	GenerateHooks,
	PolishContent,
	SEOKeywords,
	RepurposeContent,
	GenerateImage,
}

var catalog = map[Kind]Spec{
	GenerateIdeas: {
		Kind:              GenerateIdeas,
		Label:             "Content Idea Generator",
		Placeholder:       `Enter your general niche or topic (e.g., "SaaS Marketing")`,
		SystemInstruction: "You are a world-class content strategist. Generate 5 high-potential content ideas based on the user's topic. Focus on: 1) Contrarian views ('Why everyone is wrong about X'), 2) Data-backed insights, 3) Personal stories/case studies. Avoid generic advice.",
		Template: func(c string) string {
			return fmt.Sprintf("Topic: %s. Provide 5 ideas with a brief 'Why this works' explanation for each.", c)
		},
	},
	GenerateHooks: {
		Kind:              GenerateHooks,
		Label:             "Viral Hook Writer",
		Placeholder:       `Enter your specific topic (e.g., "Why cold calling is dead")`,
		SystemInstruction: "You are a viral copywriting expert. Write 3 distinct 'Scroll-Stopping' hooks using these specific frameworks: 1) The Negative Angle ('Stop doing X'), 2) The Specific Outcome ('How I got Y results in Z days'), 3) The Curiosity Gap (Implying a secret).",
		Template: func(c string) string {
			return fmt.Sprintf("Topic/Context: %s. Write 3 hooks.", c)
		},
	},
	PolishContent: {
		Kind:              PolishContent,
		Label:             "Content Polisher",
		Placeholder:       "Paste your rough paragraph here...",
		SystemInstruction: "You are a senior editor at a top publication. Rewrite the provided text to be punchier, clearer, and more authoritative. Use active voice. Vary sentence length. Remove fluff.",
		Template: func(c string) string {
			return "Draft Text: " + c
		},
	},
	SEOKeywords: {
		Kind:              SEOKeywords,
		Label:             "SEO Keyword Finder",
		Placeholder:       `Enter your main topic (e.g., "Vegan recipes")`,
		SystemInstruction: "You are an advanced SEO specialist. Suggest 5 long-tail keywords (4+ words) with high commercial intent relevant to the topic. Explain the user intent behind each.",
		Template: func(c string) string {
			return "Niche/Topic: " + c
		},
	},
	RepurposeContent: {
		Kind:              RepurposeContent,
		Label:             "Content Repurposer",
		Placeholder:       "Paste your main content text or idea here...",
		SystemInstruction: "You are a social media growth expert. Repurpose the provided content idea or text into three formats: 1) A short, punchy LinkedIn text post (max 200 words) with bullet points. 2) A Twitter/X thread outline (5 tweets). 3) A 60-second Short-Form Video Script (TikTok/Reels) using a 'Hook, Value, CTA' structure. Focus on high engagement.",
		Template: func(c string) string {
			return "Content to Repurpose: " + c
		},
	},
	GenerateImage: {
		Kind:        GenerateImage,
		Label:       "AI Image Generator",
		Placeholder: `Describe the image in detail. Mention style, lighting, colors, and specific objects (e.g., "A cinematic shot of...")`,
		Template: func(c string) string {
			return c
		},
	},
}

// Kinds returns every catalog kind in display order.
func Kinds() []Kind {
	out := make([]Kind, len(order))
	copy(out, order)
	return out
}

// Lookup returns the spec for kind. It only fails for values outside the
// enumeration.
func Lookup(kind Kind) (Spec, error) {
	spec, ok := catalog[kind]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(kind))
	}
	return spec, nil
}

// MustLookup is Lookup for kinds known at compile time.
func MustLookup(kind Kind) Spec {
	spec, err := Lookup(kind)
	if err != nil {
		panic(err)
	}
	return spec
}

// ParseKind accepts the wire form of a kind, ignoring case and surrounding
// whitespace.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToUpper(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// BuildPrompt applies the kind's template to context. Context is passed
// through untouched.
func BuildPrompt(kind Kind, context string) (Prompt, error) {
	spec, err := Lookup(kind)
	if err != nil {
		return Prompt{}, err
	}
	return Prompt{
		SystemInstruction: spec.SystemInstruction,
		Text:              spec.Template(context),
	}, nil
}
