package rpc

import (
	"context"
	"net/http"

	"connectrpc.com/connect"

	"contentflow/internal/checklist"
)

const (
	ChecklistServiceName = "contentflow.v1.ChecklistService"

	ChecklistListPhasesProcedure     = "/" + ChecklistServiceName + "/ListPhases"
	ChecklistGetItemProcedure        = "/" + ChecklistServiceName + "/GetItem"
	ChecklistToggleItemProcedure     = "/" + ChecklistServiceName + "/ToggleItem"
	ChecklistToggleExpandedProcedure = "/" + ChecklistServiceName + "/ToggleExpanded"
	ChecklistGetProgressProcedure    = "/" + ChecklistServiceName + "/GetProgress"
)

type ChecklistHandler struct {
	model *checklist.Model
}

func NewChecklistHandler(model *checklist.Model) *ChecklistHandler {
	return &ChecklistHandler{model: model}
}

// NewChecklistServiceHandler returns the mount path and handler for every
// ChecklistService procedure.
func NewChecklistServiceHandler(h *ChecklistHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = handlerOptions(opts)
	mux := http.NewServeMux()
	mux.Handle(ChecklistListPhasesProcedure, connect.NewUnaryHandler(ChecklistListPhasesProcedure, h.ListPhases, opts...))
	mux.Handle(ChecklistGetItemProcedure, connect.NewUnaryHandler(ChecklistGetItemProcedure, h.GetItem, opts...))
	mux.Handle(ChecklistToggleItemProcedure, connect.NewUnaryHandler(ChecklistToggleItemProcedure, h.ToggleItem, opts...))
	mux.Handle(ChecklistToggleExpandedProcedure, connect.NewUnaryHandler(ChecklistToggleExpandedProcedure, h.ToggleExpanded, opts...))
	mux.Handle(ChecklistGetProgressProcedure, connect.NewUnaryHandler(ChecklistGetProgressProcedure, h.GetProgress, opts...))
	return "/" + ChecklistServiceName + "/", mux
}

func (h *ChecklistHandler) ListPhases(_ context.Context, _ *connect.Request[ListPhasesRequest]) (*connect.Response[ListPhasesResponse], error) {
	return connect.NewResponse(&ListPhasesResponse{
		Phases:   h.model.Phases(),
		Progress: h.model.Progress(),
	}), nil
}

func (h *ChecklistHandler) GetItem(_ context.Context, req *connect.Request[ItemRequest]) (*connect.Response[ItemResponse], error) {
	item, err := h.model.FindItem(req.Msg.ItemID)
	if err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&ItemResponse{Item: item}), nil
}

func (h *ChecklistHandler) ToggleItem(_ context.Context, req *connect.Request[ItemRequest]) (*connect.Response[ItemResponse], error) {
	item, err := h.model.ToggleCompletion(req.Msg.ItemID)
	if err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&ItemResponse{Item: item}), nil
}

func (h *ChecklistHandler) ToggleExpanded(_ context.Context, req *connect.Request[ItemRequest]) (*connect.Response[ItemResponse], error) {
	item, err := h.model.ToggleExpanded(req.Msg.ItemID)
	if err != nil {
		return nil, toRPCError(err)
	}
	return connect.NewResponse(&ItemResponse{Item: item}), nil
}

func (h *ChecklistHandler) GetProgress(_ context.Context, _ *connect.Request[GetProgressRequest]) (*connect.Response[ProgressResponse], error) {
	return connect.NewResponse(&ProgressResponse{Progress: h.model.Progress()}), nil
}
