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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommands(t *testing.T) {
	t.Run("With the version command", func(t *testing.T) {
		out := new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetArgs([]string{"version"})
		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "gossipstored dev (commit unknown)\n", out.String())
	})
	t.Run("With an invalid configuration", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "gossipstore.yaml")
		require.NoError(t, os.WriteFile(path, []byte("store:\n  workers: -1\n"), 0o600))

		rootCmd.SetArgs([]string{"start", "--config", path})
		err := rootCmd.Execute()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "store.workers must be positive")
	})
}
