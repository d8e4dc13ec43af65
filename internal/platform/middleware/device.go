package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mssola/useragent"
)

type contextKeyDeviceLabel struct{}

// GetDeviceLabel retrieves the human-readable device label from the context.
func GetDeviceLabel(ctx context.Context) string {
	if label, ok := ctx.Value(contextKeyDeviceLabel{}).(string); ok {
		return label
	}
	return ""
}

// WithDeviceLabel injects a device label into a context. Useful for service
// unit tests that don't run the full HTTP middleware chain.
func WithDeviceLabel(ctx context.Context, label string) context.Context {
	return context.WithValue(ctx, contextKeyDeviceLabel{}, label)
}

// Device derives a coarse device label from the User-Agent header so audit
// events can record where a login came from without storing the raw header.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		label := DeviceLabel(r.Header.Get("User-Agent"))
		ctx := WithDeviceLabel(r.Context(), label)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// DeviceLabel reduces a User-Agent string to "Browser x.y on OS" or
// "Bot (name)". Empty input yields "unknown".
func DeviceLabel(rawUserAgent string) string {
	if rawUserAgent == "" {
		return "unknown"
	}
	ua := useragent.New(rawUserAgent)
	if ua.Bot() {
		name, _ := ua.Browser()
		return fmt.Sprintf("Bot (%s)", name)
	}
	name, version := ua.Browser()
	if name == "" {
		return "unknown"
	}
	label := name
	if version != "" {
		label = fmt.Sprintf("%s %s", name, version)
	}
	if os := ua.OS(); os != "" {
		label = fmt.Sprintf("%s on %s", label, os)
	}
	return label
}
