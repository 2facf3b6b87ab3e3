package rpc

import (
	"contentflow/internal/action"
	"contentflow/internal/assistant"
	"contentflow/internal/checklist"
	"contentflow/internal/export"
)

type ListPhasesRequest struct{}

type ListPhasesResponse struct {
	Phases   []checklist.Phase  `json:"phases"`
	Progress checklist.Progress `json:"progress"`
}

type ItemRequest struct {
	ItemID string `json:"itemId"`
}

type ItemResponse struct {
	Item checklist.Item `json:"item"`
}

type GetProgressRequest struct{}

type ProgressResponse struct {
	Progress checklist.Progress `json:"progress"`
}

type ListActionsRequest struct{}

type ActionInfo struct {
	Kind        action.Kind `json:"kind"`
	Label       string      `json:"label"`
	Placeholder string      `json:"placeholder"`
	Image       bool        `json:"image"`
}

type ListActionsResponse struct {
	Actions       []ActionInfo `json:"actions"`
	ImageExamples []string     `json:"imageExamples"`
}

// OpenRequest opens the assistant for an item. Without Action the item's own
// bound action is used.
type OpenRequest struct {
	ItemID       string `json:"itemId"`
	Action       string `json:"action,omitempty"`
	ContextTitle string `json:"contextTitle,omitempty"`
}

type SessionRequest struct {
	SessionID string `json:"sessionId"`
}

type SetInputRequest struct {
	SessionID string `json:"sessionId"`
	Input     string `json:"input"`
}

type SessionResponse struct {
	Session *assistant.Snapshot `json:"session,omitempty"`
}

type CommitResponse struct {
	Session *assistant.Snapshot `json:"session,omitempty"`
	Item    checklist.Item      `json:"item"`
}

type CloseResponse struct {
	Closed bool `json:"closed"`
}

type CurrentRequest struct{}

type InspireImageRequest struct{}

type InspireImageResponse struct {
	Prompt string `json:"prompt"`
}

// ExportItemRequest exports the item's saved output, or the live session's
// result when FromSession is set.
type ExportItemRequest struct {
	ItemID      string `json:"itemId"`
	FromSession bool   `json:"fromSession,omitempty"`
}

type ExportItemResponse struct {
	Asset export.Asset `json:"asset"`
}
