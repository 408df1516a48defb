package gateway

import (
	"context"
	"net/http"
)

type requestOptions struct {
	header http.Header
}

// RequestOption customises a single call.
type RequestOption func(*requestOptions)

// WithHeader sets a request header. Caller headers override the client defaults.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		o.header.Set(key, value)
	}
}

func WithHeaders(h http.Header) RequestOption {
	return func(o *requestOptions) {
		for k, values := range h {
			o.header.Del(k)
			for _, v := range values {
				o.header.Add(k, v)
			}
		}
	}
}

func collectOptions(opts []RequestOption) requestOptions {
	o := requestOptions{header: make(http.Header)}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

type userIDKey struct{}

// WithUserID attaches the user on whose behalf gateway calls are made.
// Telemetry events carry it unless Config.GetUserID supplies another one.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
