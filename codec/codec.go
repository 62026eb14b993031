// Package codec serialises derived series for storage.
//
// The only supported encoding is base64 over little-endian IEEE-754 float32
// samples.
package codec

import (
	"encoding/base64"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"
)

// EncodingBase64 names the base64 little-endian float32 encoding.
const EncodingBase64 = "base64"

// ErrUnsupportedEncoding is returned for any encoding other than EncodingBase64.
var ErrUnsupportedEncoding = errors.New("codec: unsupported encoding")

// Encode packs values as little-endian float32 and returns them in the
// requested encoding.
func Encode(values []float32, encoding string) (string, error) {
	if err := checkEncoding(encoding); err != nil {
		return "", err
	}

	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return base64.StdEncoding.EncodeToString(buf), nil
}

// Decode reverses Encode.
func Decode(s, encoding string) ([]float32, error) {
	if err := checkEncoding(encoding); err != nil {
		return nil, err
	}

	buf, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("codec: decode base64: %w", err)
	}
	if len(buf)%4 != 0 {
		return nil, fmt.Errorf("codec: payload of %d bytes is not a whole number of float32 samples", len(buf))
	}

	out := make([]float32, len(buf)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[4*i:]))
	}
	return out, nil
}

func checkEncoding(encoding string) error {
	if !strings.EqualFold(encoding, EncodingBase64) {
		return fmt.Errorf("%w: %q", ErrUnsupportedEncoding, encoding)
	}
	return nil
}
