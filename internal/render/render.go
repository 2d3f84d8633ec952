// Package render turns the scope stack into labelled context layers and
// encodes them as text that can be parsed back.
package render

import (
	"fmt"
	"strconv"

	"debugctx/internal/scope"
	"debugctx/internal/stackframe"
)

// ReceiverKey is the context key of an auto-captured receiver.
const ReceiverKey = "receiver"

// Layer is the context contributed by one frame or scope.
type Layer struct {
	Label   string
	Context *scope.Context
}

// Layers is an ordered list of layers, innermost first.
type Layers []Layer

// Labels returns the layer labels in order.
func (l Layers) Labels() []string {
	out := make([]string, len(l))
	for i, layer := range l {
		out[i] = layer.Label
	}
	return out
}

// Find returns the first layer whose context has key.
func (l Layers) Find(key string) (Layer, bool) {
	for _, layer := range l {
		if _, ok := layer.Context.Get(key); ok {
			return layer, true
		}
	}
	return Layer{}, false
}

// Options select what Render emits.
type Options struct {
	OnlyExplicitContext bool
	AutoCaptureReceiver bool
	AutoCaptureArgs     bool
	TrimVendorFrames    bool

	// Namer names auto-captured arguments; nil means positional names.
	Namer ArgumentNamer
	// Vendor classifies frames for trimming; nil means DefaultVendorMatcher.
	Vendor VendorMatcher
}

// LayerLabel formats the label of layer index (0-based, innermost first).
func LayerLabel(index, total int, name string) string {
	return fmt.Sprintf("Scope %d out of %d: %s", index+1, total, name)
}

// Render builds the layers for scopes anchored in frames (outermost first,
// the stack the scopes were last reconciled against).
func Render(scopes []*scope.Scope, frames []stackframe.Frame, opts Options) Layers {
	var names []string
	var contexts []*scope.Context // outermost first

	if opts.OnlyExplicitContext {
		for _, s := range scopes {
			names = append(names, s.Name())
			contexts = append(contexts, s.Merged())
		}
	} else {
		names, contexts = renderFrames(scopes, frames, opts)
	}

	out := make(Layers, len(names))
	for i := range names {
		j := len(names) - 1 - i
		out[i] = Layer{Label: LayerLabel(i, len(names), names[j]), Context: contexts[j]}
	}
	return out
}

func renderFrames(scopes []*scope.Scope, frames []stackframe.Frame, opts Options) ([]string, []*scope.Context) {
	byFrame := make(map[int]*scope.Scope, len(scopes))
	for _, s := range scopes {
		byFrame[s.FrameIndex()] = s
	}

	vendor := opts.Vendor
	if vendor == nil {
		vendor = DefaultVendorMatcher()
	}

	var names []string
	var contexts []*scope.Context
	lastNonVendor := -1

	for i, frame := range frames {
		if opts.TrimVendorFrames {
			isVendor := frame.HasLocation() && vendor.IsVendor(frame.File)
			if lastNonVendor < 0 && isVendor {
				continue
			}
			if !isVendor {
				lastNonVendor = len(names)
			}
		}
		names = append(names, frame.Label())
		contexts = append(contexts, frameContext(frame, byFrame[i], opts))
	}

	// Keep one vendor frame above the last non-vendor one: the call into the
	// assertion library that is failing.
	if lastNonVendor >= 0 && lastNonVendor+2 < len(names) {
		names = names[:lastNonVendor+2]
		contexts = contexts[:lastNonVendor+2]
	}
	return names, contexts
}

// frameContext orders the layer like a call: receiver, arguments, then the
// explicitly added context.
func frameContext(frame stackframe.Frame, s *scope.Scope, opts Options) *scope.Context {
	ctx := scope.NewContext()

	receiver, args := frame.Receiver, frame.Args
	if s != nil {
		if receiver == nil {
			receiver = s.Receiver()
		}
		if args == nil {
			args = s.Args()
		}
	}

	if opts.AutoCaptureReceiver && receiver != nil {
		ctx.Set(ReceiverKey, receiver)
	}
	if opts.AutoCaptureArgs && len(args) > 0 {
		var names []string
		if opts.Namer != nil {
			names = opts.Namer.ArgumentNames(frame)
		}
		for i, arg := range args {
			ctx.Set(argumentName(names, i), arg)
		}
	}
	if s != nil {
		ctx.Append(s.Merged())
	}
	return ctx
}

func argumentName(names []string, i int) string {
	if i < len(names) && names[i] != "" && names[i] != "_" {
		return names[i]
	}
	return "arg #" + strconv.Itoa(i+1)
}
