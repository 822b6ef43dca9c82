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

import "maps"

// Annotations are free-form key/value attributes attached to devices and ports.
type Annotations map[string]string

// Copy returns a copy of the annotations. A nil receiver yields nil.
func (a Annotations) Copy() Annotations {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Equal reports whether both sets hold the same pairs. Nil and empty are equal.
func (a Annotations) Equal(other Annotations) bool {
	return maps.Equal(a, other)
}

// Union returns a new set holding base overlaid with every overlay in order.
// Later overlays win on key collision. The result is nil when every input is empty.
func Union(base Annotations, overlays ...Annotations) Annotations {
	size := len(base)
	for _, overlay := range overlays {
		size += len(overlay)
	}

	if size == 0 {
		return nil
	}

	out := make(Annotations, size)
	maps.Copy(out, base)
	for _, overlay := range overlays {
		maps.Copy(out, overlay)
	}
	return out
}
