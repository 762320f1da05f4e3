package apiclient

import (
	"context"
	"errors"
)

// genericErrorMessage is shown when a failure carries no usable message.
const genericErrorMessage = "An error occured."

// Outcome is the result of a remote call made through Do. Exactly one of
// Result and Errors is set.
type Outcome[T any] struct {
	Result *T
	Errors []string
}

// Do executes the provided remote call and normalizes its outcome so that
// callers never need to branch on error types. Server-provided messages are
// passed through verbatim, any other error contributes its message, and a
// generic fallback covers the rest.
func Do[T any](ctx context.Context, call func(ctx context.Context) (T, error)) Outcome[T] {
	result, err := call(ctx)
	if err == nil {
		return Outcome[T]{Result: &result}
	}
	return Outcome[T]{Errors: normalizeError(err)}
}

// DoErr is Do for remote calls without a return value. It returns nil on
// success and the normalized error messages otherwise.
func DoErr(ctx context.Context, call func(ctx context.Context) error) []string {
	if err := call(ctx); err != nil {
		return normalizeError(err)
	}
	return nil
}

func normalizeError(err error) []string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && len(apiErr.Messages) > 0 {
		return apiErr.Messages
	}
	if message := err.Error(); message != "" {
		return []string{message}
	}
	return []string{genericErrorMessage}
}
