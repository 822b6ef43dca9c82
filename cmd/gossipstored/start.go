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
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/tochemey/gossipstore/cluster"
	"github.com/tochemey/gossipstore/config"
	"github.com/tochemey/gossipstore/device"
	"github.com/tochemey/gossipstore/internal/tombstone"
	"github.com/tochemey/gossipstore/log"
	"github.com/tochemey/gossipstore/mastership"
	"github.com/tochemey/gossipstore/store"
)

var configFile string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Join the cluster and serve the device store until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return run(ctx, cfg)
	},
}

func init() {
	startCmd.Flags().StringVarP(&configFile, "config", "c", "", "path to the YAML configuration file")
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := log.NewZap(log.ParseLevel(cfg.Node.LogLevel), os.Stdout)
	defer func() { _ = logger.Flush() }()

	if err := os.MkdirAll(cfg.Node.DataDir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	tombstones, err := tombstone.NewBoltStore(filepath.Join(cfg.Node.DataDir, "tombstones.db"))
	if err != nil {
		return err
	}
	defer func() {
		if err := tombstones.Close(); err != nil {
			logger.Errorf("failed to close tombstone store: %v", err)
		}
	}()

	transportOpts := []cluster.MemberlistOption{
		cluster.WithLogger(logger),
		cluster.WithSeeds(cfg.Cluster.Seeds...),
		cluster.WithJoinRetry(cfg.Cluster.JoinAttempts, cfg.Cluster.JoinRetryInterval),
		cluster.WithJoinTimeout(cfg.Cluster.JoinTimeout),
		cluster.WithShutdownTimeout(cfg.Cluster.ShutdownTimeout),
	}
	if cfg.Cluster.AdvertiseAddr != "" {
		transportOpts = append(transportOpts, cluster.WithAdvertiseAddr(cfg.Cluster.AdvertiseAddr))
	}
	transport := cluster.NewMemberlistTransport(cfg.Node.ID, cfg.Cluster.BindAddr, cfg.Cluster.BindPort, transportOpts...)

	deviceStore, err := store.New(transport, mastership.NewRing(transport),
		store.WithLogger(logger),
		store.WithTombstoneStore(tombstones),
		store.WithDelegate(store.DelegateFunc(func(event *device.Event) {
			if event.Port != nil {
				logger.Infof("%s device=%s port=%s", event.Type, event.Device.ID, event.Port.Number)
				return
			}
			logger.Infof("%s device=%s", event.Type, event.Device.ID)
		})),
		store.WithAntiEntropyInitialDelay(cfg.Store.AntiEntropyInitialDelay),
		store.WithAntiEntropyPeriod(cfg.Store.AntiEntropyPeriod),
		store.WithStatsAntiEntropyPeriod(cfg.Store.StatsAntiEntropyPeriod),
		store.WithShutdownTimeout(cfg.Store.ShutdownTimeout),
		store.WithWorkers(cfg.Store.Workers))
	if err != nil {
		return err
	}

	if err := transport.Start(ctx); err != nil {
		return fmt.Errorf("failed to join cluster: %w", err)
	}

	if err := deviceStore.Start(ctx); err != nil {
		return multierr.Append(err, transport.Stop(context.Background()))
	}

	logger.Infof("node=%s serving the device store on %s:%d", cfg.Node.ID, cfg.Cluster.BindAddr, cfg.Cluster.BindPort)
	<-ctx.Done()
	logger.Infof("node=%s shutting down", cfg.Node.ID)

	// the start context is cancelled by now
	shutdownCtx := context.Background()
	return multierr.Combine(deviceStore.Stop(shutdownCtx), transport.Stop(shutdownCtx))
}
