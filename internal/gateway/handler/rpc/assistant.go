package rpc

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"contentflow/internal/action"
	"contentflow/internal/assistant"
	"contentflow/internal/checklist"
	"contentflow/internal/export"
)

const (
	AssistantServiceName = "contentflow.v1.AssistantService"

	AssistantListActionsProcedure  = "/" + AssistantServiceName + "/ListActions"
	AssistantOpenProcedure         = "/" + AssistantServiceName + "/Open"
	AssistantSetInputProcedure     = "/" + AssistantServiceName + "/SetInput"
	AssistantGenerateProcedure     = "/" + AssistantServiceName + "/Generate"
	AssistantCommitProcedure       = "/" + AssistantServiceName + "/Commit"
	AssistantCloseProcedure        = "/" + AssistantServiceName + "/Close"
	AssistantCurrentProcedure      = "/" + AssistantServiceName + "/Current"
	AssistantInspireImageProcedure = "/" + AssistantServiceName + "/InspireImage"
	AssistantExportItemProcedure   = "/" + AssistantServiceName + "/ExportItem"
)

// AssistantHandler serves the assistant modal over Connect and websocket.
type AssistantHandler struct {
	mgr      *assistant.Manager
	items    *checklist.Model
	exporter *export.Exporter
	upgrader websocket.Upgrader
	log      zerolog.Logger
}

// NewAssistantHandler builds the handler. allowedOrigins limits which browser
// origins may open the websocket; empty allows any.
func NewAssistantHandler(mgr *assistant.Manager, items *checklist.Model, exporter *export.Exporter, allowedOrigins []string, logger zerolog.Logger) *AssistantHandler {
	return &AssistantHandler{
		mgr:      mgr,
		items:    items,
		exporter: exporter,
		upgrader: newAssistantWSUpgrader(allowedOrigins),
		log:      logger.With().Str("component", "assistant_handler").Logger(),
	}
}

func NewAssistantServiceHandler(h *AssistantHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(AssistantListActionsProcedure, connect.NewUnaryHandler(AssistantListActionsProcedure, h.ListActions, opts...))
	mux.Handle(AssistantOpenProcedure, connect.NewUnaryHandler(AssistantOpenProcedure, h.Open, opts...))
	mux.Handle(AssistantSetInputProcedure, connect.NewUnaryHandler(AssistantSetInputProcedure, h.SetInput, opts...))
	mux.Handle(AssistantGenerateProcedure, connect.NewUnaryHandler(AssistantGenerateProcedure, h.Generate, opts...))
	mux.Handle(AssistantCommitProcedure, connect.NewUnaryHandler(AssistantCommitProcedure, h.Commit, opts...))
	mux.Handle(AssistantCloseProcedure, connect.NewUnaryHandler(AssistantCloseProcedure, h.Close, opts...))
	mux.Handle(AssistantCurrentProcedure, connect.NewUnaryHandler(AssistantCurrentProcedure, h.Current, opts...))
	mux.Handle(AssistantInspireImageProcedure, connect.NewUnaryHandler(AssistantInspireImageProcedure, h.InspireImage, opts...))
	mux.Handle(AssistantExportItemProcedure, connect.NewUnaryHandler(AssistantExportItemProcedure, h.ExportItem, opts...))
	return "/" + AssistantServiceName + "/", mux
}

func (h *AssistantHandler) ListActions(_ context.Context, _ *connect.Request[ListActionsRequest]) (*connect.Response[ListActionsResponse], error) {
	kinds := action.Kinds()
	out := &ListActionsResponse{
		Actions:       make([]ActionInfo, 0, len(kinds)),
		ImageExamples: action.ImageExamples(),
	}
	for _, k := range kinds {
		spec := action.MustLookup(k)
		out.Actions = append(out.Actions, ActionInfo{
			Kind:        k,
			Label:       spec.Label,
			Placeholder: spec.Placeholder,
			Image:       k.IsImage(),
		})
	}
	return connect.NewResponse(out), nil
}

func (h *AssistantHandler) Open(_ context.Context, req *connect.Request[OpenRequest]) (*connect.Response[SessionResponse], error) {
	snap, err := h.open(*req.Msg)
	if err != nil {
		return nil, toRPCError(err)
	}
	return sessionResponse(snap), nil
}

func (h *AssistantHandler) open(in OpenRequest) (assistant.Snapshot, error) {
	if strings.TrimSpace(in.Action) == "" {
		return h.mgr.OpenForItem(in.ItemID)
	}
	kind, err := action.ParseKind(in.Action)
	if err != nil {
		return assistant.Snapshot{}, err
	}
	return h.mgr.Open(in.ItemID, kind, in.ContextTitle)
}

func (h *AssistantHandler) SetInput(_ context.Context, req *connect.Request[SetInputRequest]) (*connect.Response[SessionResponse], error) {
	snap, err := h.mgr.SetInput(req.Msg.SessionID, req.Msg.Input)
	if err != nil {
		return nil, toRPCError(err)
	}
	return sessionResponse(snap), nil
}

// Generate blocks until the provider call resolves.
func (h *AssistantHandler) Generate(ctx context.Context, req *connect.Request[SessionRequest]) (*connect.Response[SessionResponse], error) {
	snap, err := h.mgr.Generate(ctx, req.Msg.SessionID)
	if err != nil {
		return nil, toRPCError(err)
	}
	return sessionResponse(snap), nil
}

func (h *AssistantHandler) Commit(_ context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CommitResponse], error) {
	snap, err := h.mgr.Commit(req.Msg.SessionID)
	if err != nil {
		return nil, toRPCError(err)
	}
	item, err := h.items.FindItem(snap.ItemID)
	if err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&CommitResponse{Session: &snap, Item: item}), nil
}

func (h *AssistantHandler) Close(_ context.Context, req *connect.Request[SessionRequest]) (*connect.Response[CloseResponse], error) {
	if err := h.mgr.Close(req.Msg.SessionID); err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&CloseResponse{Closed: true}), nil
}

func (h *AssistantHandler) Current(_ context.Context, _ *connect.Request[CurrentRequest]) (*connect.Response[SessionResponse], error) {
	snap, ok := h.mgr.Current()
	if !ok {
		return connect.NewResponse(&SessionResponse{}), nil
	}
	return sessionResponse(snap), nil
}

func (h *AssistantHandler) InspireImage(_ context.Context, _ *connect.Request[InspireImageRequest]) (*connect.Response[InspireImageResponse], error) {
	return connect.NewResponse(&InspireImageResponse{Prompt: action.RandomImageExample(nil)}), nil
}

func (h *AssistantHandler) ExportItem(ctx context.Context, req *connect.Request[ExportItemRequest]) (*connect.Response[ExportItemResponse], error) {
	out, err := h.exportSource(*req.Msg)
	if err != nil {
		return nil, toRPCError(err)
	}
	asset, err := h.exporter.Export(ctx, req.Msg.ItemID, out)
	if err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&ExportItemResponse{Asset: asset}), nil
}

func (h *AssistantHandler) exportSource(in ExportItemRequest) (checklist.Output, error) {
	if in.FromSession {
		snap, ok := h.mgr.Current()
		if !ok || snap.ItemID != strings.TrimSpace(in.ItemID) {
			return checklist.Output{}, assistant.ErrNoSession
		}
		if snap.Result == nil {
			return checklist.Output{}, export.ErrNothingToExport
		}
		return *snap.Result, nil
	}
	item, err := h.items.FindItem(in.ItemID)
	if err != nil {
		return checklist.Output{}, err
	}
	if item.SavedOutput == nil {
		return checklist.Output{}, export.ErrNothingToExport
	}
	return *item.SavedOutput, nil
}

func sessionResponse(snap assistant.Snapshot) *connect.Response[SessionResponse] {
	return connect.NewResponse(&SessionResponse{Session: &snap})
}
