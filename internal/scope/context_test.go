package scope

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextSetMovesKeyToEnd(t *testing.T) {
	c := FromPairs("a", 1, "b", 2, "c", 3)
	c.Set("a", 10)

	if diff := cmp.Diff([]string{"b", "c", "a"}, c.Keys()); diff != "" {
		t.Errorf("Keys() mismatch (-want +got):\n%s", diff)
	}
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 10, v)
}

func TestFromPairs(t *testing.T) {
	c := FromPairs("name", "x", 42, "answer", "dangling")

	assert.Equal(t, []string{"name", "42", "dangling"}, c.Keys())
	v, ok := c.Get("dangling")
	assert.True(t, ok)
	assert.Nil(t, v)
}

func TestNilContextReadsEmpty(t *testing.T) {
	var c *Context
	assert.Zero(t, c.Len())
	assert.Nil(t, c.Keys())
	_, ok := c.Get("x")
	assert.False(t, ok)

	out := NewContext()
	out.Append(c)
	assert.Zero(t, out.Len())
}

func TestCloneIsIndependent(t *testing.T) {
	c := FromPairs("a", 1)
	clone := c.Clone()
	clone.Set("b", 2)

	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 2, clone.Len())
}

func TestMarshalJSONKeepsOrder(t *testing.T) {
	c := FromPairs("z", 1, "a", []int{1, 2}, "m", map[string]string{"k": "v"})
	data, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":[1,2],"m":{"k":"v"}}`, string(data))
}

func TestEncodeValueFallsBackToString(t *testing.T) {
	raw := EncodeValue(make(chan int))

	var s string
	require.NoError(t, json.Unmarshal(raw, &s))
	assert.NotEmpty(t, s)
	assert.Equal(t, json.RawMessage(`"ok"`), EncodeValue("ok"))
}
