package obs

import "context"

type routeKey struct{}

// WithRoutePattern stores the matched chi route template (e.g.
// /create-payment-intent) on the context so metrics and traces label by
// template, never by raw path.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, routeKey{}, pattern)
}

// RoutePatternFromContext returns the stored route template, or "".
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routeKey{}).(string)
	return v
}
