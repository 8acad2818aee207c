package auth

import (
	"context"

	"google.golang.org/grpc/metadata"
)

// Principal is the caller as asserted by the upstream gateway. Authentication happens there.
type Principal struct {
	OrganizationID string
	UserID         string
	Role           string
	BranchIDs      []string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// GetOrganizationID prefers the interceptor-populated principal and falls back to raw metadata.
func GetOrganizationID(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok && p.OrganizationID != "" {
		return p.OrganizationID
	}
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if val := md.Get("x-organization-id"); len(val) > 0 {
			return val[0]
		}
	}
	return ""
}

func GetUserID(ctx context.Context) string {
	if p, ok := FromContext(ctx); ok {
		return p.UserID
	}
	return ""
}
