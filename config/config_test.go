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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gerrors "github.com/tochemey/gossipstore/errors"
)

const sample = `
node:
  id: node-1
  log_level: debug
  data_dir: /var/lib/gossipstore
cluster:
  bind_addr: 127.0.0.1
  bind_port: 7950
  advertise_addr: 10.0.0.1:7950
  seeds:
    - 10.0.0.2:7950
    - 10.0.0.3:7950
  join_attempts: 3
  join_retry_interval: 500ms
store:
  anti_entropy_period: 2s
  workers: 16
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gossipstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("With a configuration file", func(t *testing.T) {
		config, err := Load(writeConfig(t, sample))
		require.NoError(t, err)

		assert.Equal(t, "node-1", config.Node.ID)
		assert.Equal(t, "debug", config.Node.LogLevel)
		assert.Equal(t, "/var/lib/gossipstore", config.Node.DataDir)
		assert.Equal(t, "127.0.0.1", config.Cluster.BindAddr)
		assert.Equal(t, 7950, config.Cluster.BindPort)
		assert.Equal(t, "10.0.0.1:7950", config.Cluster.AdvertiseAddr)
		assert.Equal(t, []string{"10.0.0.2:7950", "10.0.0.3:7950"}, config.Cluster.Seeds)
		assert.Equal(t, 3, config.Cluster.JoinAttempts)
		assert.Equal(t, 500*time.Millisecond, config.Cluster.JoinRetryInterval)
		assert.Equal(t, 2*time.Second, config.Store.AntiEntropyPeriod)
		assert.Equal(t, 16, config.Store.Workers)

		// defaults
		assert.Equal(t, 30*time.Second, config.Cluster.JoinTimeout)
		assert.Equal(t, 5*time.Second, config.Store.AntiEntropyInitialDelay)
		assert.Equal(t, 5*time.Second, config.Store.ShutdownTimeout)
	})
	t.Run("With no configuration file", func(t *testing.T) {
		config, err := Load("")
		require.NoError(t, err)

		_, err = uuid.Parse(config.Node.ID)
		assert.NoError(t, err)
		assert.Equal(t, "info", config.Node.LogLevel)
		assert.Equal(t, "0.0.0.0", config.Cluster.BindAddr)
		assert.Equal(t, 7946, config.Cluster.BindPort)
		assert.Empty(t, config.Cluster.Seeds)
		assert.Equal(t, 8, config.Store.Workers)
	})
	t.Run("With environment overrides", func(t *testing.T) {
		t.Setenv("GOSSIPSTORE_NODE_ID", "node-env")
		t.Setenv("GOSSIPSTORE_CLUSTER_BIND_PORT", "8000")
		t.Setenv("GOSSIPSTORE_STORE_ANTI_ENTROPY_PERIOD", "10s")

		config, err := Load(writeConfig(t, sample))
		require.NoError(t, err)
		assert.Equal(t, "node-env", config.Node.ID)
		assert.Equal(t, 8000, config.Cluster.BindPort)
		assert.Equal(t, 10*time.Second, config.Store.AntiEntropyPeriod)
		assert.Equal(t, 16, config.Store.Workers)
	})
	t.Run("With a missing configuration file", func(t *testing.T) {
		config, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.Error(t, err)
		assert.Nil(t, config)
	})
	t.Run("With an invalid configuration", func(t *testing.T) {
		config, err := Load(writeConfig(t, `
node:
  id: "node 1"
  log_level: verbose
cluster:
  bind_port: 70000
  seeds:
    - 10.0.0.2
store:
  workers: 0
`))
		require.Error(t, err)
		assert.Nil(t, config)
		assert.ErrorIs(t, err, gerrors.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "node.id=(node 1)")
		assert.Contains(t, err.Error(), "node.log_level=(verbose)")
		assert.Contains(t, err.Error(), "cluster.bind_addr")
		assert.Contains(t, err.Error(), "cluster.seeds=(10.0.0.2)")
		assert.Contains(t, err.Error(), "store.workers must be positive")
	})
}
