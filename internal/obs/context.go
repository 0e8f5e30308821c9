package obs

import "context"

type routePatternKey struct{}

// WithRoutePattern stamps the router's template (e.g. /status/{transactionId})
// onto the context so metrics, logs and spans share one bounded route label.
func WithRoutePattern(ctx context.Context, pattern string) context.Context {
	return context.WithValue(ctx, routePatternKey{}, pattern)
}

// RoutePatternFromContext returns the stamped route template, or "".
func RoutePatternFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(routePatternKey{}).(string)
	return v
}
