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
	"regexp"
	"testing"

	"github.com/stretchr/testify/suite"
)

type chainSuite struct {
	suite.Suite
}

func TestChain(t *testing.T) {
	suite.Run(t, new(chainSuite))
}

func (s *chainSuite) TestEmptyChain() {
	s.NoError(New().Validate())
	s.NoError(New(FailFast()).Validate())
}

func (s *chainSuite) TestFailFast() {
	err := New(FailFast()).
		AddAssertion(true, "never reported").
		AddAssertion(false, "workers must be positive").
		AddAssertion(false, "period must be positive").
		Validate()
	s.EqualError(err, "workers must be positive")
}

func (s *chainSuite) TestAllErrors() {
	chain := New(FailFast(), AllErrors()).
		AddAssertion(false, "workers must be positive").
		AddValidator(NewHostPortValidator("bind", "localhost"))
	err := chain.Validate()
	s.Error(err)
	s.Contains(err.Error(), "workers must be positive")
	s.Contains(err.Error(), "bind=(localhost)")

	// a chain can be validated again
	s.EqualError(chain.Validate(), err.Error())
}

func (s *chainSuite) TestHostPortValidator() {
	s.Run("With a valid address", func() {
		s.NoError(NewHostPortValidator("seed", "10.0.0.1:7946").Validate())
		s.NoError(NewHostPortValidator("seed", "node-1.cluster.local:0").Validate())
	})
	s.Run("With an out of range port", func() {
		s.Error(NewHostPortValidator("seed", "10.0.0.1:65536").Validate())
		s.Error(NewHostPortValidator("seed", "10.0.0.1:-1").Validate())
	})
	s.Run("With a missing host", func() {
		s.Error(NewHostPortValidator("seed", ":7946").Validate())
		s.NoError(NewHostPortValidator("bind", ":7946").AllowEmptyHost().Validate())
	})
	s.Run("With no port", func() {
		s.Error(NewHostPortValidator("seed", "10.0.0.1").Validate())
	})
}

func (s *chainSuite) TestPatternValidator() {
	pattern := regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	s.NoError(NewPatternValidator("name", pattern, "node-1").Validate())
	s.EqualError(NewPatternValidator("name", pattern, "Node 1").Validate(), "name=(Node 1) does not match ^[a-z][a-z0-9-]*$")
}
