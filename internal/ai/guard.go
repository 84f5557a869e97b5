package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appErrors "resumeforge/internal/errors"
)

// guardedCompleter adapts a Provider to Completer and maps every failure
// to an AI AppError with a completion code.
type guardedCompleter struct {
	provider  Provider
	operation string
	timeout   time.Duration
	system    func() string
	observer  Observer
}

// Guard wraps provider in a per-call timeout and an empty reply check.
// system is consulted on every call so reloaded prompts take effect; it may be nil.
// observer may be nil.
func Guard(provider Provider, operation string, timeout time.Duration, system func() string, observer Observer) Completer {
	return &guardedCompleter{
		provider:  provider,
		operation: operation,
		timeout:   timeout,
		system:    system,
		observer:  observer,
	}
}

func (g *guardedCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	systemPrompt := ""
	if g.system != nil {
		systemPrompt = g.system()
	}

	start := time.Now()
	text, usage, err := g.provider.Generate(callCtx, systemPrompt, prompt)
	if err == nil && strings.TrimSpace(text) == "" {
		err = appErrors.NewAIError(appErrors.ErrCodeCompletionEmpty,
			fmt.Sprintf("%s returned an empty reply", g.operation), nil)
	}
	if g.observer != nil {
		g.observer.ObserveCompletion(ctx, g.operation, time.Since(start), usage, err)
	}
	if err != nil {
		return "", classify(ctx, callCtx, g.operation, g.timeout, err)
	}
	return text, nil
}

func classify(parent, callCtx context.Context, operation string, timeout time.Duration, err error) error {
	var appErr *appErrors.AppError
	if errors.As(err, &appErr) && appErr.Code == appErrors.ErrCodeCompletionEmpty {
		return err
	}
	if parent.Err() != nil {
		return appErrors.NewAIError(appErrors.ErrCodeCancelled,
			fmt.Sprintf("%s cancelled", operation), parent.Err())
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
		return appErrors.NewAIError(appErrors.ErrCodeCompletionTimeout,
			fmt.Sprintf("%s timed out after %s", operation, timeout), err).
			WithContext("operation", operation)
	}
	return appErrors.NewAIError(appErrors.ErrCodeCompletionFailed,
		fmt.Sprintf("%s completion failed", operation), err).
		WithContext("operation", operation)
}
