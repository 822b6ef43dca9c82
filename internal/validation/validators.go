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

package validation

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
)

type assertion struct {
	ok      bool
	message string
}

// NewAssertion creates a Validator failing with message when ok is false
func NewAssertion(ok bool, message string) Validator {
	return assertion{ok: ok, message: message}
}

func (a assertion) Validate() error {
	if a.ok {
		return nil
	}
	return errors.New(a.message)
}

// HostPortValidator checks a host:port address.
// A host is required unless the validator allows binding on every interface.
type HostPortValidator struct {
	field     string
	address   string
	emptyHost bool
}

var _ Validator = (*HostPortValidator)(nil)

// NewHostPortValidator creates a HostPortValidator for the named field
func NewHostPortValidator(field, address string) *HostPortValidator {
	return &HostPortValidator{field: field, address: address}
}

// AllowEmptyHost accepts addresses such as ":7946"
func (v *HostPortValidator) AllowEmptyHost() *HostPortValidator {
	v.emptyHost = true
	return v
}

// Validate implements Validator.
func (v *HostPortValidator) Validate() error {
	host, port, err := net.SplitHostPort(strings.TrimSpace(v.address))
	if err != nil {
		return fmt.Errorf("%s=(%s) is not a host:port address: %w", v.field, v.address, err)
	}

	if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("%s=(%s) has an invalid port: %w", v.field, v.address, err)
	}

	if host == "" && !v.emptyHost {
		return fmt.Errorf("%s=(%s) has no host", v.field, v.address)
	}
	return nil
}

type patternValidator struct {
	field   string
	pattern *regexp.Regexp
	value   string
}

// NewPatternValidator creates a Validator requiring value to match pattern
func NewPatternValidator(field string, pattern *regexp.Regexp, value string) Validator {
	return &patternValidator{field: field, pattern: pattern, value: value}
}

func (v *patternValidator) Validate() error {
	if v.pattern.MatchString(v.value) {
		return nil
	}
	return fmt.Errorf("%s=(%s) does not match %s", v.field, v.value, v.pattern)
}
