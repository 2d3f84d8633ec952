// Package stackframe captures the current goroutine's call stack in a
// canonical form and filters out frames that belong to the diagnostic
// machinery itself.
package stackframe

import (
	"reflect"
	"strconv"
	"strings"
)

// CallKind tells whether a frame is a plain function call or a method call.
type CallKind int

const (
	// CallUnknown is used when the stack walk did not report the call kind.
	CallUnknown CallKind = iota
	// CallStatic is a call to a function without a receiver (including closures).
	CallStatic
	// CallMethod is a call to a method.
	CallMethod
)

func (k CallKind) String() string {
	switch k {
	case CallStatic:
		return "static"
	case CallMethod:
		return "method"
	default:
		return "unknown"
	}
}

// Frame is one level of the call stack. Zero values mean "not available".
type Frame struct {
	File     string
	Line     int
	Package  string
	TypeName string // "T" for value receivers, "*T" for pointer receivers
	Kind     CallKind
	Function string
	Receiver any
	Args     []any
}

// HasLocation reports whether the frame carries a source location.
func (f Frame) HasLocation() bool {
	return f.File != ""
}

// HasIdentity reports whether the frame carries the identity of a routine.
func (f Frame) HasIdentity() bool {
	return f.Function != ""
}

// WithLine returns a copy of the frame with the given line.
func (f Frame) WithLine(line int) Frame {
	f.Line = line
	return f
}

// QualifiedType returns "pkg.T" (or "pkg.*T"), or "" for frames without a type.
func (f Frame) QualifiedType() string {
	if f.TypeName == "" {
		return ""
	}
	if f.Package == "" {
		return f.TypeName
	}
	return f.Package + "." + f.TypeName
}

// QualifiedFunction returns the function the way the Go runtime spells it,
// e.g. "pkg/path.(*T).Method" or "pkg/path.helper.func1".
func (f Frame) QualifiedFunction() string {
	var sb strings.Builder
	if f.Package != "" {
		sb.WriteString(f.Package)
		sb.WriteByte('.')
	}
	if f.TypeName != "" {
		if strings.HasPrefix(f.TypeName, "*") {
			sb.WriteString("(" + f.TypeName + ")")
		} else {
			sb.WriteString(f.TypeName)
		}
		if f.Function != "" {
			sb.WriteByte('.')
		}
	}
	sb.WriteString(f.Function)
	return sb.String()
}

// Label renders the frame as "<function> [<file>:<line>]".
// Frames without identity are rendered as the location alone.
func (f Frame) Label() string {
	fileLine := f.File
	if f.File != "" && f.Line != 0 {
		fileLine += ":" + strconv.Itoa(f.Line)
	}

	name := ""
	if f.TypeName != "" || f.Function != "" {
		name = f.QualifiedFunction()
	}
	if name == "" {
		return fileLine
	}
	return name + " [" + fileLine + "]"
}

// SameCall reports whether two frames can be the same call: same routine,
// same call kind and the same receiver object. Location is not compared.
func (f Frame) SameCall(other Frame) bool {
	return f.Package == other.Package &&
		f.TypeName == other.TypeName &&
		f.Function == other.Function &&
		f.Kind == other.Kind &&
		SameReceiver(f.Receiver, other.Receiver)
}

// SameReceiver compares receivers by identity. Pointer-like values are equal
// only when they point at the same object; other comparable values fall back
// to ==; values that cannot be compared are never the same.
func SameReceiver(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}

	switch va.Kind() {
	case reflect.Pointer, reflect.UnsafePointer, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice:
		return va.Pointer() == vb.Pointer()
	}

	if !va.Type().Comparable() {
		return false
	}
	defer func() { _ = recover() }() // interface fields may still hold uncomparable values
	return a == b
}

// ParseFunction splits a runtime function symbol into its parts.
//
//	"example.com/pkg.(*T).M"      -> "example.com/pkg", "*T", CallMethod, "M"
//	"example.com/pkg.T.M"         -> "example.com/pkg", "T",  CallMethod, "M"
//	"example.com/pkg.f.func1"     -> "example.com/pkg", "",   CallStatic, "f.func1"
//	"example.com/pkg.f"           -> "example.com/pkg", "",   CallStatic, "f"
//	"gopkg.in/yaml%2ev3.Marshal"  -> "gopkg.in/yaml.v3", "",  CallStatic, "Marshal"
func ParseFunction(symbol string) (pkg, typeName string, kind CallKind, function string) {
	if symbol == "" {
		return "", "", CallUnknown, ""
	}

	pkgEnd := 0
	if slash := strings.LastIndex(symbol, "/"); slash >= 0 {
		pkgEnd = slash + 1
	}
	dot := strings.Index(symbol[pkgEnd:], ".")
	if dot < 0 {
		return "", "", CallStatic, symbol
	}
	// The linker writes dots in the last path element as %2e.
	pkg = strings.ReplaceAll(symbol[:pkgEnd+dot], "%2e", ".")
	rest := symbol[pkgEnd+dot+1:]

	if strings.HasPrefix(rest, "(") {
		closing := strings.Index(rest, ")")
		if closing < 0 || closing+1 >= len(rest) || rest[closing+1] != '.' {
			return pkg, "", CallStatic, rest
		}
		return pkg, rest[1:closing], CallMethod, rest[closing+2:]
	}

	head, tail, found := strings.Cut(rest, ".")
	if !found || isClosureSuffix(tail) {
		return pkg, "", CallStatic, rest
	}
	return pkg, head, CallMethod, tail
}

// isClosureSuffix matches the names the compiler gives to function literals
// and wrappers ("func1", "gowrap2", "deferwrap1", "1").
func isClosureSuffix(s string) bool {
	first, _, _ := strings.Cut(s, ".")
	for _, prefix := range []string{"func", "gowrap", "deferwrap", ""} {
		digits, ok := strings.CutPrefix(first, prefix)
		if ok && digits != "" && strings.Trim(digits, "0123456789") == "" {
			return true
		}
	}
	return false
}
