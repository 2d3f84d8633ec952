package render

import (
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// VendorMatcher reports whether a source file is third-party code.
type VendorMatcher interface {
	IsVendor(file string) bool
}

// PathVendorMatcher treats files under GOROOT, the module cache or a vendor
// directory as vendor code.
type PathVendorMatcher struct {
	GOROOT string
	// Extra lists more path prefixes to treat as vendor.
	Extra []string
}

var (
	defaultVendorOnce sync.Once
	defaultVendor     *PathVendorMatcher
)

// DefaultVendorMatcher returns a matcher for the toolchain that built the binary.
func DefaultVendorMatcher() *PathVendorMatcher {
	defaultVendorOnce.Do(func() {
		defaultVendor = &PathVendorMatcher{GOROOT: stdlibRoot()}
	})
	return defaultVendor
}

// stdlibRoot locates GOROOT from the recorded path of a standard library
// function, which stays correct when the binary runs elsewhere.
func stdlibRoot() string {
	pc := reflect.ValueOf(strings.Cut).Pointer()
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return ""
	}
	file, _ := fn.FileLine(pc)
	root, _, found := strings.Cut(filepath.ToSlash(file), "/src/strings/")
	if !found || root == "" {
		return ""
	}
	return root
}

// IsVendor implements VendorMatcher.
func (m *PathVendorMatcher) IsVendor(file string) bool {
	if file == "" {
		return false
	}
	file = filepath.ToSlash(file)
	if m.GOROOT != "" && strings.HasPrefix(file, strings.TrimSuffix(m.GOROOT, "/")+"/src/") {
		return true
	}
	if strings.Contains(file, "/pkg/mod/") || strings.Contains(file, "/vendor/") {
		return true
	}
	for _, prefix := range m.Extra {
		if strings.HasPrefix(file, filepath.ToSlash(prefix)) {
			return true
		}
	}
	return false
}
