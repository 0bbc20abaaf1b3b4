// Package jsoncodec is the JSON codec shared by the HTTP transport and the
// postgres boundary. It is backed by sonic in standard-library compatible mode.
package jsoncodec

import (
	"io"

	"github.com/bytedance/sonic"
)

var config = sonic.ConfigStd

func Marshal(v any) ([]byte, error) {
	return config.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	return config.Unmarshal(data, v)
}

// Encode writes v to w followed by a newline
func Encode(w io.Writer, v any) error {
	return config.NewEncoder(w).Encode(v)
}

// Decode reads a single JSON value from r into v
func Decode(r io.Reader, v any) error {
	return config.NewDecoder(r).Decode(v)
}
