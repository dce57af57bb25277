package dbversion

import "context"

// Minimum server versions for features the client switches on.
const (
	VersionClassNamespacedEndpoints = "1.14.0"
	VersionGRPCBatch                = "1.23.7"
	VersionTenantExists             = "1.25.0"
)

// Support answers capability questions for the API families.
type Support struct {
	provider *Provider
}

// NewSupport wraps provider.
func NewSupport(provider *Provider) *Support {
	return &Support{provider: provider}
}

// Provider returns the underlying version cache.
func (s *Support) Provider() *Provider {
	if s == nil {
		return nil
	}
	return s.provider
}

// Version returns the cached server version, fetching it when needed.
func (s *Support) Version(ctx context.Context) string {
	if s == nil || s.provider == nil {
		return ""
	}
	return s.provider.Get(ctx)
}

// AtLeast reports whether the server is at or above min.
func (s *Support) AtLeast(ctx context.Context, min string) bool {
	if s == nil || s.provider == nil {
		return false
	}
	return s.provider.AtLeast(ctx, min)
}

// SupportsClassNameNamespacedEndpoints reports whether /objects/{class}/{id}
// paths and class-qualified beacons are understood by the server.
func (s *Support) SupportsClassNameNamespacedEndpoints(ctx context.Context) bool {
	return s.AtLeast(ctx, VersionClassNamespacedEndpoints)
}

// SupportsGRPCBatch reports whether batch ingestion may use the gRPC service.
func (s *Support) SupportsGRPCBatch(ctx context.Context) bool {
	return s.AtLeast(ctx, VersionGRPCBatch)
}

// SupportsTenantExists reports whether HEAD /schema/{class}/tenants/{name} exists.
func (s *Support) SupportsTenantExists(ctx context.Context) bool {
	return s.AtLeast(ctx, VersionTenantExists)
}
