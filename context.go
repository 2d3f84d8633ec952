package debugctx

import "context"

type serviceKey struct{}

// WithService returns a copy of ctx carrying s.
func WithService(ctx context.Context, s *Service) context.Context {
	return context.WithValue(ctx, serviceKey{}, s)
}

// FromContext returns the service carried by ctx, or Default.
func FromContext(ctx context.Context) *Service {
	if ctx != nil {
		if s, ok := ctx.Value(serviceKey{}).(*Service); ok && s != nil {
			return s
		}
	}
	return Default()
}
