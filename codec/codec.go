// Package codec centralizes JSON encoding of query input and result output.
//
// Codecs are selected by stable name so the local CLI and tests can switch
// between the standard library and go-json without code changes.
package codec

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is selected.
var Default Codec = GoJSON{}

// MustMarshal is a helper for tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}

// DecodeVectors reads query vectors from r. The input is either a single JSON
// array of numbers, a JSON array of such arrays, or one array per line.
func DecodeVectors(c Codec, r io.Reader) ([][]float32, error) {
	if c == nil {
		c = Default
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var single []float32
	if err := c.Unmarshal(data, &single); err == nil {
		return [][]float32{single}, nil
	}

	var many [][]float32
	if err := c.Unmarshal(data, &many); err == nil {
		return many, nil
	}

	var out [][]float32
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), len(data)+1)
	for line := 1; sc.Scan(); line++ {
		text := bytes.TrimSpace(sc.Bytes())
		if len(text) == 0 {
			continue
		}
		var v []float32
		if err := c.Unmarshal(text, &v); err != nil {
			return nil, fmt.Errorf("codec %s: line %d: %w", c.Name(), line, err)
		}
		out = append(out, v)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
