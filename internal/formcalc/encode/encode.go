// Package encode serializes dumped FormCalc trees and analysis reports.
package encode

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

var mapStringAny = reflect.TypeOf(map[string]any(nil))

// Format is an output encoding
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists the supported encodings
func Formats() []Format {
	return []Format{FormatJSON, FormatYAML, FormatCBOR}
}

// ParseFormat resolves a format name, case-insensitively. "yml" is accepted
// for YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "cbor":
		return FormatCBOR, nil
	}
	return "", fmt.Errorf("unsupported format %q (supported: json, yaml, cbor)", name)
}

// IsBinary reports whether the format is not printable text
func (f Format) IsBinary() bool {
	return f == FormatCBOR
}

// Marshal encodes v in the given format
func Marshal(v any, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return JSON(v)
	case FormatYAML:
		return YAML(v)
	case FormatCBOR:
		return CBOR(v)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// JSON encodes v as indented JSON. JSON has no NaN or infinities, so
// non-finite numbers in dumped trees are written as the strings "NaN",
// "Infinity" and "-Infinity".
func JSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(finite(v)); err != nil {
		return nil, fmt.Errorf("JSON encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

// YAML encodes v as YAML. Non-finite numbers use the YAML spellings .nan,
// .inf and -.inf.
func YAML(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("YAML encoding failed: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("YAML encoding failed: %w", err)
	}
	return buf.Bytes(), nil
}

// CBOR encodes v as canonical CBOR (RFC 7049 canonical map ordering), so
// equal trees give equal bytes. Floats keep NaN, infinities and signed zero.
func CBOR(v any) ([]byte, error) {
	encMode, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR encoder: %w", err)
	}
	data, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// DecodeCBOR decodes CBOR produced by CBOR into plain data: maps become
// map[string]any and arrays []any.
func DecodeCBOR(data []byte) (any, error) {
	decMode, err := cbor.DecOptions{
		DefaultMapType: mapStringAny,
	}.DecMode()
	if err != nil {
		return nil, fmt.Errorf("failed to create CBOR decoder: %w", err)
	}
	var v any
	if err := decMode.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	return v, nil
}

// finite replaces non-finite floats in a dumped tree. Other values, such as
// structs, are returned unchanged.
func finite(v any) any {
	switch x := v.(type) {
	case float64:
		switch {
		case math.IsNaN(x):
			return "NaN"
		case math.IsInf(x, 1):
			return "Infinity"
		case math.IsInf(x, -1):
			return "-Infinity"
		}
		return x
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = finite(e)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = finite(e)
		}
		return out
	}
	return v
}
