// Package dbgtest hooks debugctx into tests: it resets the scope stack around
// each test and appends the contexts stack to assertion failure messages.
//
//	func TestCheckout(t *testing.T) {
//		dbgtest.Setup(t)
//		must := dbgtest.Require(t)
//
//		h := debugctx.Acquire("cart", cart.ID)
//		defer h.Release()
//		must.Equal(3, cart.Len())
//	}
package dbgtest

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"debugctx"
)

// Setup resets the default service for t, and again when t finishes, also
// restoring the configuration t started with. The default service is shared
// by the whole process, so Setup must not be used by parallel tests; give
// each of those its own service with SetupService(t, debugctx.New(cfg)).
func Setup(t testing.TB) *debugctx.Service {
	t.Helper()
	return SetupService(t, debugctx.Default())
}

// SetupService is Setup for a specific service. It is safe in parallel
// tests as long as the service is not shared between them.
func SetupService(t testing.TB, svc *debugctx.Service) *debugctx.Service {
	t.Helper()
	saved := svc.Config()
	svc.Reset()
	t.Cleanup(func() {
		svc.SetConfig(saved)
		svc.Reset()
	})
	return svc
}

// T wraps a testing.TB so that failures reported through Errorf carry the
// contexts stack. It satisfies assert.TestingT and require.TestingT.
type T struct {
	testing.TB
	svc *debugctx.Service
}

// Wrap wraps t with the default service.
func Wrap(t testing.TB) *T {
	return WrapService(t, debugctx.Default())
}

// WrapService wraps t with svc.
func WrapService(t testing.TB, svc *debugctx.Service) *T {
	if w, ok := t.(*T); ok && w.svc == svc {
		return w
	}
	return &T{TB: t, svc: svc}
}

// Errorf reports a failure decorated with the contexts stack.
func (t *T) Errorf(format string, args ...any) {
	t.TB.Helper()
	t.TB.Error(t.svc.DecorateMessage(fmt.Sprintf(format, args...)))
}

// Assert returns testify assertions reporting through Wrap(t).
func Assert(t testing.TB) *assert.Assertions {
	return assert.New(Wrap(t))
}

// Require returns testify assertions reporting through Wrap(t).
func Require(t testing.TB) *require.Assertions {
	return require.New(Wrap(t))
}
