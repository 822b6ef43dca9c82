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

package device

import (
	"cmp"
	"fmt"
)

// ProviderID identifies a component feeding device and port descriptions.
// An ancillary provider only contributes annotations while a primary provider exists.
type ProviderID struct {
	Scheme    string `cbor:"1,keyasint"`
	Name      string `cbor:"2,keyasint"`
	Ancillary bool   `cbor:"3,keyasint"`
}

// NewProviderID creates a primary ProviderID
func NewProviderID(scheme, name string) ProviderID {
	return ProviderID{Scheme: scheme, Name: name}
}

// NewAncillaryProviderID creates an ancillary ProviderID
func NewAncillaryProviderID(scheme, name string) ProviderID {
	return ProviderID{Scheme: scheme, Name: name, Ancillary: true}
}

// String returns scheme:name
func (p ProviderID) String() string {
	return fmt.Sprintf("%s:%s", p.Scheme, p.Name)
}

// Compare orders provider ids by scheme, name then ancillary flag.
func (p ProviderID) Compare(other ProviderID) int {
	if c := cmp.Compare(p.Scheme, other.Scheme); c != 0 {
		return c
	}
	if c := cmp.Compare(p.Name, other.Name); c != 0 {
		return c
	}
	switch {
	case p.Ancillary == other.Ancillary:
		return 0
	case !p.Ancillary:
		return -1
	default:
		return 1
	}
}
