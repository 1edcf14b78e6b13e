// Package environment holds the user-selected backend deployment that
// outbound calls are routed to.
package environment

import (
	"context"
	"errors"
	"fmt"
)

// Target names a backend deployment. The zero value means "unset" and
// resolves to the configured default.
type Target string

const (
	Unset  Target = ""
	Python Target = "python"
	Node   Target = "node"
)

var ErrUnknownTarget = errors.New("environment: unknown backend target")

// ErrNoBaseURL is returned when neither the target nor the default has a URL.
var ErrNoBaseURL = errors.New("environment: base URL not defined")

// ParseTarget accepts only the three known values.
func ParseTarget(s string) (Target, error) {
	switch Target(s) {
	case Unset, Python, Node:
		return Target(s), nil
	}
	return Unset, fmt.Errorf("%w: %q", ErrUnknownTarget, s)
}

// Label is the human-readable name shown by the switcher.
func (t Target) Label() string {
	switch t {
	case Python:
		return "Python"
	case Node:
		return "NODE"
	}
	return "Default"
}

// Next is the target the switcher flips to.
func (t Target) Next() Target {
	if t == Python {
		return Node
	}
	return Python
}

type targetKey struct{}

// WithTarget attaches the request's backend target to ctx.
func WithTarget(ctx context.Context, t Target) context.Context {
	return context.WithValue(ctx, targetKey{}, t)
}

// TargetFromContext returns the target attached by WithTarget, or Unset.
func TargetFromContext(ctx context.Context) Target {
	t, _ := ctx.Value(targetKey{}).(Target)
	return t
}

// BaseURLs maps targets to backend base URLs.
type BaseURLs struct {
	Default string
	Python  string
	Node    string
}

// Resolve returns the base URL for t. A target without its own URL falls
// back to Default.
func (b BaseURLs) Resolve(t Target) (string, error) {
	var url string
	switch t {
	case Python:
		url = b.Python
	case Node:
		url = b.Node
	}
	if url == "" {
		url = b.Default
	}
	if url == "" {
		return "", ErrNoBaseURL
	}
	return url, nil
}

// ResolveContext resolves the target carried by ctx.
func (b BaseURLs) ResolveContext(ctx context.Context) (string, error) {
	return b.Resolve(TargetFromContext(ctx))
}
