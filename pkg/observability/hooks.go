package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/humdrum/pkg/mvc"
)

// LogHooks logs every process call, render and forward at debug level, and
// failures at error level.
func LogHooks(logger *slog.Logger) mvc.Hooks {
	return mvc.Hooks{
		OnProcess: func(ctx context.Context, e *mvc.ProcessEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "process failed", "controller", e.Controller, "index", e.Index, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "process", "controller", e.Controller, "index", e.Index, "view", e.View, "matched", e.Matched, "duration", e.Duration)
		},
		OnRender: func(ctx context.Context, e *mvc.RenderEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "render failed", "controller", e.Controller, "view", e.View, "default", e.Default, "err", e.Err)
				return
			}
			logger.DebugContext(ctx, "render", "controller", e.Controller, "view", e.View, "default", e.Default, "duration", e.Duration)
		},
		OnForward: func(ctx context.Context, e *mvc.ForwardEvent) {
			logger.DebugContext(ctx, "forward", "from", e.From, "to", e.To, "depth", e.Depth, "duration", e.Duration)
		},
	}
}

// Combine returns hooks calling each of the given hooks in order.
func Combine(hooks ...mvc.Hooks) mvc.Hooks {
	var out mvc.Hooks
	var onProcess []func(context.Context, *mvc.ProcessEvent)
	var onRender []func(context.Context, *mvc.RenderEvent)
	var onForward []func(context.Context, *mvc.ForwardEvent)
	for _, h := range hooks {
		if h.OnProcess != nil {
			onProcess = append(onProcess, h.OnProcess)
		}
		if h.OnRender != nil {
			onRender = append(onRender, h.OnRender)
		}
		if h.OnForward != nil {
			onForward = append(onForward, h.OnForward)
		}
	}
	if len(onProcess) > 0 {
		out.OnProcess = func(ctx context.Context, e *mvc.ProcessEvent) {
			for _, fn := range onProcess {
				fn(ctx, e)
			}
		}
	}
	if len(onRender) > 0 {
		out.OnRender = func(ctx context.Context, e *mvc.RenderEvent) {
			for _, fn := range onRender {
				fn(ctx, e)
			}
		}
	}
	if len(onForward) > 0 {
		out.OnForward = func(ctx context.Context, e *mvc.ForwardEvent) {
			for _, fn := range onForward {
				fn(ctx, e)
			}
		}
	}
	return out
}
