package config

import (
	"fmt"
	"slices"
)

// Option names as used in YAML, env overrides and Get/Set.
const (
	OptionEnabled               = "enabled"
	OptionAddToAssertionMessage = "add_to_assertion_message"
	OptionAutoCaptureReceiver   = "auto_capture_receiver"
	OptionAutoCaptureArgs       = "auto_capture_args"
	OptionOnlyExplicitContext   = "only_explicit_context"
	OptionTrimVendorFrames      = "trim_vendor_frames"
	OptionReleaseOnScopeExit    = "release_on_scope_exit"
)

// DebugContext holds the toggles of the diagnostic-context stack.
type DebugContext struct {
	// Master switch. When off every read is empty and every mutation a no-op.
	Enabled bool `yaml:"enabled" json:"enabled"`
	// Append the rendered context to assertion failure messages.
	AddToAssertionMessage bool `yaml:"add_to_assertion_message" json:"add_to_assertion_message"`
	// Add the receiver of each frame to its layer.
	AutoCaptureReceiver bool `yaml:"auto_capture_receiver" json:"auto_capture_receiver"`
	// Add the named arguments of each frame to its layer.
	AutoCaptureArgs bool `yaml:"auto_capture_args" json:"auto_capture_args"`
	// Render only scopes with explicitly added context instead of every frame.
	OnlyExplicitContext bool `yaml:"only_explicit_context" json:"only_explicit_context"`
	// Drop stdlib, module cache and vendored frames around the user's code.
	TrimVendorFrames bool `yaml:"trim_vendor_frames" json:"trim_vendor_frames"`
	// Release removes the scope. When off, reconciliation alone discards it.
	ReleaseOnScopeExit bool `yaml:"release_on_scope_exit" json:"release_on_scope_exit"`
}

// DefaultDebugContext returns the default toggles.
func DefaultDebugContext() DebugContext {
	return DebugContext{
		Enabled:               true,
		AddToAssertionMessage: true,
		AutoCaptureReceiver:   true,
		AutoCaptureArgs:       true,
		OnlyExplicitContext:   false,
		TrimVendorFrames:      true,
		ReleaseOnScopeExit:    true,
	}
}

// OptionNames lists every option in declaration order.
func OptionNames() []string {
	return []string{
		OptionEnabled,
		OptionAddToAssertionMessage,
		OptionAutoCaptureReceiver,
		OptionAutoCaptureArgs,
		OptionOnlyExplicitContext,
		OptionTrimVendorFrames,
		OptionReleaseOnScopeExit,
	}
}

// IsOption reports whether name is a known option.
func IsOption(name string) bool {
	return slices.Contains(OptionNames(), name)
}

func (c *DebugContext) field(name string) (*bool, error) {
	switch name {
	case OptionEnabled:
		return &c.Enabled, nil
	case OptionAddToAssertionMessage:
		return &c.AddToAssertionMessage, nil
	case OptionAutoCaptureReceiver:
		return &c.AutoCaptureReceiver, nil
	case OptionAutoCaptureArgs:
		return &c.AutoCaptureArgs, nil
	case OptionOnlyExplicitContext:
		return &c.OnlyExplicitContext, nil
	case OptionTrimVendorFrames:
		return &c.TrimVendorFrames, nil
	case OptionReleaseOnScopeExit:
		return &c.ReleaseOnScopeExit, nil
	}
	return nil, fmt.Errorf("unknown debug context option: %q (valid: %v)", name, OptionNames())
}

// Get returns the value of the named option.
func (c DebugContext) Get(name string) (bool, error) {
	p, err := c.field(name)
	if err != nil {
		return false, err
	}
	return *p, nil
}

// Set changes the named option and returns its previous value.
func (c *DebugContext) Set(name string, value bool) (bool, error) {
	p, err := c.field(name)
	if err != nil {
		return false, err
	}
	old := *p
	*p = value
	return old, nil
}

// Map returns the options keyed by name.
func (c DebugContext) Map() map[string]bool {
	out := make(map[string]bool, len(OptionNames()))
	for _, name := range OptionNames() {
		v, _ := c.Get(name)
		out[name] = v
	}
	return out
}
