// Copyright (C) 2024 Storj Labs, Inc.
// See LICENSE for copying information.

// Command shardsyncd wires configuration, logging, metrics and a device
// pair into a synchronizer.Synchronizer and runs it until terminated.
// It is a reference daemon: the device and storage client it wires are
// the in-memory fixtures in package memdevice, not a production piece
// store.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"storj.io/common/sync2"
	"storj.io/shardsync/memdevice"
	"storj.io/shardsync/synchronizer"
)

var cfg runCfg

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shardsyncd",
		Short: "run the per-node replica synchronizer",
		RunE:  run,
	}

	flags := root.Flags()
	flags.StringVar(&cfg.NodeID, "node-id", "", "this node's identity")
	flags.Uint64Var(&cfg.FullSyncStep, "full-sync-step", 1000, "versions listed per full-sync step")
	flags.StringVar(&cfg.RepairIdle, "repair-idle", "disabled", "repair idleness threshold, or 'disabled'")
	flags.IntVar(&cfg.EventBuffer, "event-buffer", 4096, "control-channel buffer size")
	flags.DurationVar(&cfg.DialTimeout, "dial-timeout", 5*time.Second, "peer fetch dial timeout")
	flags.DurationVar(&cfg.Heartbeat, "heartbeat", time.Minute, "interval between heartbeat status logs")

	_ = viper.BindPFlags(flags)
	return root
}

func run(cmd *cobra.Command, _ []string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	threshold, err := parseRepairIdleness(cfg.RepairIdle)
	if err != nil {
		return err
	}

	device := memdevice.New()
	client := &memdevice.StorageClient{Local: device}
	metrics := synchronizer.NewMetrics(nil, cfg.NodeID)

	syncer := synchronizer.New(logger, cfg.NodeID, device, client, cfg.FullSyncStep, metrics,
		synchronizer.WithEventBuffer(cfg.EventBuffer),
		synchronizer.WithPeerFetchTimeout(cfg.DialTimeout))
	syncer.SetRepairIdlenessThreshold(threshold)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("shardsyncd starting", zap.String("node_id", cfg.NodeID), zap.Stringer("repair_idleness", threshold))

	heartbeat := sync2.NewCycle(cfg.Heartbeat)
	defer heartbeat.Close()

	var group errgroup.Group
	heartbeat.Start(ctx, &group, func(ctx context.Context) error {
		logger.Info("shardsyncd heartbeat", zap.String("node_id", cfg.NodeID))
		return nil
	})
	group.Go(func() error {
		return syncer.Run(ctx)
	})

	err = group.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
