package logging

import (
	"context"

	"go.viam.com/utils"
)

type traceKey struct{}

// EnableDebugMode marks ctx so CDebugf logs through it at any level. name tags the trace; an
// empty name gets a random one.
func EnableDebugMode(ctx context.Context, name string) context.Context {
	if name == "" {
		name = utils.RandomAlphaString(6)
	}
	return context.WithValue(ctx, traceKey{}, name)
}

// IsDebugMode reports whether ctx went through EnableDebugMode.
func IsDebugMode(ctx context.Context) bool {
	return GetName(ctx) != ""
}

// GetName returns the name ctx was marked with, or "".
func GetName(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	name, _ := ctx.Value(traceKey{}).(string)
	return name
}
