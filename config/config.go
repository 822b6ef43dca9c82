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

// Package config loads the gossipstored daemon configuration from a YAML file
// and GOSSIPSTORE_ prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/viper"

	gerrors "github.com/tochemey/gossipstore/errors"
	"github.com/tochemey/gossipstore/internal/validation"
	"github.com/tochemey/gossipstore/log"
)

// EnvPrefix prefixes every environment variable read by Load.
// GOSSIPSTORE_CLUSTER_BIND_PORT overrides cluster.bind_port.
const EnvPrefix = "GOSSIPSTORE"

var nodeIDPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]*$`)

// Config is the daemon configuration
type Config struct {
	Node    Node    `mapstructure:"node"`
	Cluster Cluster `mapstructure:"cluster"`
	Store   Store   `mapstructure:"store"`
}

// Node identifies the local node. An empty ID is replaced by a random one.
type Node struct {
	ID       string `mapstructure:"id"`
	LogLevel string `mapstructure:"log_level"`
	DataDir  string `mapstructure:"data_dir"`
}

// Cluster configures the memberlist transport
type Cluster struct {
	BindAddr          string        `mapstructure:"bind_addr"`
	BindPort          int           `mapstructure:"bind_port"`
	AdvertiseAddr     string        `mapstructure:"advertise_addr"`
	Seeds             []string      `mapstructure:"seeds"`
	JoinAttempts      int           `mapstructure:"join_attempts"`
	JoinRetryInterval time.Duration `mapstructure:"join_retry_interval"`
	JoinTimeout       time.Duration `mapstructure:"join_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout"`
}

// Store configures the device store
type Store struct {
	AntiEntropyInitialDelay time.Duration `mapstructure:"anti_entropy_initial_delay"`
	AntiEntropyPeriod       time.Duration `mapstructure:"anti_entropy_period"`
	StatsAntiEntropyPeriod  time.Duration `mapstructure:"stats_anti_entropy_period"`
	ShutdownTimeout         time.Duration `mapstructure:"shutdown_timeout"`
	Workers                 int           `mapstructure:"workers"`
}

// Load reads the configuration file at path, when given, then the environment.
// Keys missing from both keep their default value.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file=%s: %w", path, err)
		}
	}

	config := new(Config)
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if config.Node.ID == "" {
		config.Node.ID = uuid.NewString()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate reports every invalid setting at once
func (c *Config) Validate() error {
	chain := validation.New(validation.AllErrors()).
		AddValidator(validation.NewPatternValidator("node.id", nodeIDPattern, c.Node.ID)).
		AddAssertion(log.ParseLevel(c.Node.LogLevel) != log.InvalidLevel, fmt.Sprintf("node.log_level=(%s) is not a log level", c.Node.LogLevel)).
		AddAssertion(c.Node.DataDir != "", "node.data_dir is required").
		AddValidator(validation.NewHostPortValidator("cluster.bind_addr", net.JoinHostPort(c.Cluster.BindAddr, strconv.Itoa(c.Cluster.BindPort))).AllowEmptyHost()).
		AddAssertion(c.Cluster.JoinAttempts > 0, "cluster.join_attempts must be positive").
		AddAssertion(c.Cluster.JoinRetryInterval > 0, "cluster.join_retry_interval must be positive").
		AddAssertion(c.Cluster.JoinTimeout > 0, "cluster.join_timeout must be positive").
		AddAssertion(c.Cluster.ShutdownTimeout > 0, "cluster.shutdown_timeout must be positive").
		AddAssertion(c.Store.AntiEntropyInitialDelay >= 0, "store.anti_entropy_initial_delay must not be negative").
		AddAssertion(c.Store.AntiEntropyPeriod > 0, "store.anti_entropy_period must be positive").
		AddAssertion(c.Store.StatsAntiEntropyPeriod > 0, "store.stats_anti_entropy_period must be positive").
		AddAssertion(c.Store.ShutdownTimeout > 0, "store.shutdown_timeout must be positive").
		AddAssertion(c.Store.Workers > 0, "store.workers must be positive")

	if c.Cluster.AdvertiseAddr != "" {
		chain.AddValidator(validation.NewHostPortValidator("cluster.advertise_addr", c.Cluster.AdvertiseAddr))
	}
	for _, seed := range c.Cluster.Seeds {
		chain.AddValidator(validation.NewHostPortValidator("cluster.seeds", seed))
	}

	if err := chain.Validate(); err != nil {
		return errors.Join(gerrors.ErrInvalidConfig, err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("node.id", "")
	v.SetDefault("node.log_level", "info")
	v.SetDefault("node.data_dir", "data")

	v.SetDefault("cluster.bind_addr", "0.0.0.0")
	v.SetDefault("cluster.bind_port", 7946)
	v.SetDefault("cluster.advertise_addr", "")
	v.SetDefault("cluster.seeds", []string{})
	v.SetDefault("cluster.join_attempts", 5)
	v.SetDefault("cluster.join_retry_interval", time.Second)
	v.SetDefault("cluster.join_timeout", 30*time.Second)
	v.SetDefault("cluster.shutdown_timeout", 5*time.Second)

	v.SetDefault("store.anti_entropy_initial_delay", 5*time.Second)
	v.SetDefault("store.anti_entropy_period", 5*time.Second)
	v.SetDefault("store.stats_anti_entropy_period", 5*time.Second)
	v.SetDefault("store.shutdown_timeout", 5*time.Second)
	v.SetDefault("store.workers", 8)
}
