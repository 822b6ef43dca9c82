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

// Package codec turns gossip envelopes into bytes and back.
package codec

import "errors"

var (
	// ErrInvalidFrame is returned when decoding bytes that were not produced by the codec.
	ErrInvalidFrame = errors.New("codec: malformed or truncated frame")
	// ErrEncodeFailed wraps encoding failures.
	ErrEncodeFailed = errors.New("codec: failed to encode value")
	// ErrDecodeFailed wraps decoding failures.
	ErrDecodeFailed = errors.New("codec: failed to decode value")
)

// Codec encodes and decodes envelope values. Implementations must be safe for concurrent use.
type Codec interface {
	// Encode returns the wire form of v.
	Encode(v any) ([]byte, error)
	// Decode fills the value pointed to by v from data.
	Decode(data []byte, v any) error
}
