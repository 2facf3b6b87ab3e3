package llm

import (
	"context"

	"contentflow/internal/action"
)

type ctxKeyAction struct{}

// WithAction tags ctx with the catalog action a call is made for, so
// middleware can label logs and metrics.
func WithAction(ctx context.Context, kind action.Kind) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKeyAction{}, kind)
}

func ActionFrom(ctx context.Context) action.Kind {
	if ctx != nil {
		if v, ok := ctx.Value(ctxKeyAction{}).(action.Kind); ok {
			return v
		}
	}
	return ""
}

func actionLabel(ctx context.Context) string {
	if k := ActionFrom(ctx); k != "" {
		return string(k)
	}
	return "unknown"
}
