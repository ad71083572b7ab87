package authcore

import "context"

type principalContextKey struct{}
type clientIPContextKey struct{}

// ContextWithPrincipal attaches an authenticated [Principal] to ctx.
// Used by the middleware package after access-token validation.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the [Principal] set by
// [ContextWithPrincipal], if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	if ctx == nil {
		return Principal{}, false
	}
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

// ContextWithClientIP attaches the caller's IP address to ctx for audit
// logging.
func ContextWithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}
