package scope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
	"slices"
)

// Context is an insertion-ordered map from key to diagnostic value.
// Setting an existing key moves it to the end. The zero value is empty and
// ready to use; a nil *Context reads as empty.
type Context struct {
	keys   []string
	values map[string]any
}

// NewContext returns an empty context.
func NewContext() *Context {
	return &Context{}
}

// FromPairs builds a context from alternating keys and values, the way zap's
// sugared logger takes them. Non-string keys are formatted with %v; a
// dangling key gets a nil value.
func FromPairs(keysAndValues ...any) *Context {
	c := NewContext()
	for i := 0; i < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", keysAndValues[i])
		}
		var value any
		if i+1 < len(keysAndValues) {
			value = keysAndValues[i+1]
		}
		c.Set(key, value)
	}
	return c
}

// Set stores value under key, moving key to the end of the iteration order.
func (c *Context) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, exists := c.values[key]; exists {
		c.keys = slices.DeleteFunc(c.keys, func(k string) bool { return k == key })
	}
	c.keys = append(c.keys, key)
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Context) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.values[key]
	return v, ok
}

// Len returns the number of keys.
func (c *Context) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Keys returns the keys in iteration order.
func (c *Context) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Clone(c.keys)
}

// All iterates over the entries in order.
func (c *Context) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		if c == nil {
			return
		}
		for _, k := range c.keys {
			if !yield(k, c.values[k]) {
				return
			}
		}
	}
}

// Append sets every entry of from on c, in from's order.
func (c *Context) Append(from *Context) {
	for k, v := range from.All() {
		c.Set(k, v)
	}
}

// Clone returns a shallow copy.
func (c *Context) Clone() *Context {
	out := NewContext()
	out.Append(c)
	return out
}

// MarshalJSON encodes the context as a JSON object in iteration order.
func (c *Context) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	i := 0
	for k, v := range c.All() {
		if i > 0 {
			buf.WriteByte(',')
		}
		i++
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(EncodeValue(v))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// EncodeValue returns the compact JSON encoding of v. Values JSON cannot
// represent are encoded as their %+v string.
func EncodeValue(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		data, _ = json.Marshal(fmt.Sprintf("%+v", v))
	}
	return data
}
