// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package codec

import (
	"errors"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/klauspost/compress/zstd"
)

// frame header values
const (
	rawFrame  byte = 0x00
	zstdFrame byte = 0x01
)

// DefaultCompressionThreshold is the payload size above which frames are zstd-compressed.
const DefaultCompressionThreshold = 16 * 1024

var (
	cborEncOpts = cbor.EncOptions{
		Sort:        cbor.SortCoreDeterministic,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeUnixDynamic,
	}
	cborDecOpts = cbor.DecOptions{
		MaxNestedLevels: 64,
		IndefLength:     cbor.IndefLengthForbidden,
		UTF8:            cbor.UTF8DecodeInvalid,
	}

	zstdEncoders = sync.Pool{
		New: func() any {
			enc, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
			return enc
		},
	}
)

// Option configures the CBOR codec
type Option interface {
	Apply(c *CBOR)
}

// OptionFunc implements the Option interface.
type OptionFunc func(c *CBOR)

// Apply applies the option
func (f OptionFunc) Apply(c *CBOR) {
	f(c)
}

// WithCompressionThreshold sets the payload size above which frames are compressed.
// A negative threshold disables compression.
func WithCompressionThreshold(size int) Option {
	return OptionFunc(func(c *CBOR) {
		c.threshold = size
	})
}

// CBOR encodes values as deterministic CBOR behind a one byte header telling
// whether the payload is zstd-compressed.
//
// ┌────────┬──────────────────────────┐
// │ header │ CBOR bytes (maybe zstd)  │
// │ 1 byte │ N bytes                  │
// └────────┴──────────────────────────┘
type CBOR struct {
	encMode   cbor.EncMode
	decMode   cbor.DecMode
	decoder   *zstd.Decoder
	threshold int
}

// enforce compilation error
var _ Codec = (*CBOR)(nil)

// NewCBOR creates a CBOR codec
func NewCBOR(opts ...Option) *CBOR {
	encMode, _ := cborEncOpts.EncMode()
	decMode, _ := cborDecOpts.DecMode()
	decoder, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
	codec := &CBOR{
		encMode:   encMode,
		decMode:   decMode,
		decoder:   decoder,
		threshold: DefaultCompressionThreshold,
	}

	for _, opt := range opts {
		opt.Apply(codec)
	}
	return codec
}

// Encode implements Codec.
func (c *CBOR) Encode(v any) ([]byte, error) {
	payload, err := c.encMode.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrEncodeFailed, err)
	}

	if c.threshold < 0 || len(payload) <= c.threshold {
		out := make([]byte, 0, len(payload)+1)
		out = append(out, rawFrame)
		return append(out, payload...), nil
	}

	encoder := zstdEncoders.Get().(*zstd.Encoder)
	defer zstdEncoders.Put(encoder)
	return encoder.EncodeAll(payload, []byte{zstdFrame}), nil
}

// Decode implements Codec.
func (c *CBOR) Decode(data []byte, v any) error {
	if len(data) < 2 {
		return ErrInvalidFrame
	}

	payload := data[1:]
	switch data[0] {
	case rawFrame:
	case zstdFrame:
		decoded, err := c.decoder.DecodeAll(payload, nil)
		if err != nil {
			return errors.Join(ErrInvalidFrame, err)
		}
		payload = decoded
	default:
		return ErrInvalidFrame
	}

	if err := c.decMode.Unmarshal(payload, v); err != nil {
		return errors.Join(ErrDecodeFailed, err)
	}
	return nil
}
