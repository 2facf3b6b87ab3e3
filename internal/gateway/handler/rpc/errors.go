package rpc

import (
	"errors"
	"fmt"

	"connectrpc.com/connect"

	"contentflow/internal/action"
	"contentflow/internal/assistant"
	"contentflow/internal/checklist"
	"contentflow/internal/export"
)

func toRPCError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, checklist.ErrItemNotFound),
		errors.Is(err, export.ErrNotFound),
		errors.Is(err, assistant.ErrNoSession):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, assistant.ErrInputInvalid),
		errors.Is(err, action.ErrUnknownKind),
		errors.Is(err, export.ErrNothingToExport),
		errors.Is(err, export.ErrInvalidDataURI),
		errors.Is(err, export.ErrInvalidKey):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, assistant.ErrBusy),
		errors.Is(err, assistant.ErrNotCommittable),
		errors.Is(err, assistant.ErrSessionMismatch),
		errors.Is(err, assistant.ErrItemNotAssistable):
		return connect.NewError(connect.CodeFailedPrecondition, err)
	}
	return connect.NewError(connect.CodeInternal, fmt.Errorf("contentflow: %w", err))
}

// codeName is the snake_case code used in websocket error frames.
func codeName(err error) string {
	var ce *connect.Error
	if errors.As(toRPCError(err), &ce) {
		return ce.Code().String()
	}
	return "internal"
}
