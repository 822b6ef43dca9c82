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

// Package validation assembles configuration checks into a single error.
package validation

import (
	"go.uber.org/multierr"
)

// Validator checks one configuration rule
type Validator interface {
	Validate() error
}

// Chain runs validators in the order they were added.
type Chain struct {
	failFast   bool
	validators []Validator
}

// ChainOption configures a Chain
type ChainOption func(*Chain)

// New creates an empty Chain. By default every violation is reported.
func New(opts ...ChainOption) *Chain {
	chain := new(Chain)
	for _, opt := range opts {
		opt(chain)
	}
	return chain
}

// FailFast stops the chain on the first violation
func FailFast() ChainOption {
	return func(c *Chain) { c.failFast = true }
}

// AllErrors makes the chain report every violation
func AllErrors() ChainOption {
	return func(c *Chain) { c.failFast = false }
}

// AddValidator appends validators to the chain
func (c *Chain) AddValidator(validators ...Validator) *Chain {
	c.validators = append(c.validators, validators...)
	return c
}

// AddAssertion appends a check failing with message when ok is false
func (c *Chain) AddAssertion(ok bool, message string) *Chain {
	return c.AddValidator(NewAssertion(ok, message))
}

// Validate runs the chain. Violations are combined with multierr unless the
// chain fails fast.
func (c *Chain) Validate() error {
	var violations error
	for _, validator := range c.validators {
		err := validator.Validate()
		if err == nil {
			continue
		}
		if c.failFast {
			return err
		}
		violations = multierr.Append(violations, err)
	}
	return violations
}
