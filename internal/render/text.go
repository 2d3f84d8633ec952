package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"debugctx/internal/scope"
)

const indent = "    "

// ToText encodes layers as a pretty-printed JSON object whose values stay on
// one line each. Values are swapped for unique placeholders while the
// skeleton is indented, then the compact encodings are substituted back.
func ToText(layers Layers) (string, error) {
	skeleton := scope.NewContext()
	var replacements []string

	for _, layer := range layers {
		if _, dup := skeleton.Get(layer.Label); dup {
			return "", fmt.Errorf("duplicate layer label %q", layer.Label)
		}
		inner := scope.NewContext()
		for key, value := range layer.Context.All() {
			token := uuid.NewString()
			inner.Set(key, token)
			quoted, err := json.Marshal(token)
			if err != nil {
				return "", err
			}
			replacements = append(replacements, string(quoted), string(scope.EncodeValue(value)))
		}
		skeleton.Set(layer.Label, inner)
	}

	data, err := json.MarshalIndent(skeleton, "", indent)
	if err != nil {
		return "", fmt.Errorf("failed to encode layers: %w", err)
	}
	return strings.NewReplacer(replacements...).Replace(string(data)), nil
}

// FromText parses text produced by ToText. Values are kept as compact
// json.RawMessage in their original order. It reports false for anything
// that is not a JSON object of JSON objects.
func FromText(text string) (Layers, bool) {
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	layers, err := decodeLayers(dec)
	if err != nil {
		return nil, false
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, false
	}
	return layers, true
}

func decodeLayers(dec *json.Decoder) (Layers, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	layers := Layers{}
	seen := make(map[string]bool)
	for dec.More() {
		label, err := decodeKey(dec)
		if err != nil {
			return nil, err
		}
		if seen[label] {
			return nil, fmt.Errorf("duplicate label %q", label)
		}
		seen[label] = true

		ctx, err := decodeContext(dec)
		if err != nil {
			return nil, err
		}
		layers = append(layers, Layer{Label: label, Context: ctx})
	}
	return layers, expectDelim(dec, '}')
}

func decodeContext(dec *json.Decoder) (*scope.Context, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}

	ctx := scope.NewContext()
	for dec.More() {
		key, err := decodeKey(dec)
		if err != nil {
			return nil, err
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return nil, err
		}
		ctx.Set(key, json.RawMessage(compact.Bytes()))
	}
	return ctx, expectDelim(dec, '}')
}

func decodeKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %v, got %v", want, tok)
	}
	return nil
}
