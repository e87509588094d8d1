// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/waybridge/config"
	"github.com/bureau-foundation/waybridge/internal/netutil"
	"github.com/bureau-foundation/waybridge/relay"
	"github.com/bureau-foundation/waybridge/transport"
	"github.com/bureau-foundation/waybridge/wire"
)

const version = "0.3.0"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := pflag.StringP("config", "c", "", "configuration file (default: $WAYBRIDGE_CONFIG)")
	verbose := pflag.BoolP("verbose", "v", false, "per-message debug logging")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Printf("waybridge %s\n", version)
		return nil
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	allocator, err := newAllocator(cfg)
	if err != nil {
		return err
	}
	defer allocator.Close()

	listener, err := transport.ListenGuest(cfg.GuestSocket)
	if err != nil {
		return err
	}
	defer listener.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	logger.Info("waybridge started",
		"guest_socket", cfg.GuestSocket,
		"allocator", cfg.Allocator,
		"tag", cfg.Tag,
	)

	var sessions sync.WaitGroup
	var clientCount int64
	for {
		guestConn, err := listener.AcceptUnix()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Error("accept failed", "error", err)
			continue
		}

		clientCount++
		sessionLogger := logger.With("client", clientCount)
		hostConn, err := transport.DialHost(cfg.HostSocket)
		if err != nil {
			sessionLogger.Error("host connection failed", "error", err)
			guestConn.Close()
			continue
		}

		session := relay.NewSession(relay.SessionConfig{
			Guest:     wire.NewConn(guestConn),
			Host:      wire.NewConn(hostConn),
			Allocator: allocator,
			Tag:       cfg.Tag,
			Logger:    sessionLogger,
		})
		sessions.Add(1)
		go func() {
			defer sessions.Done()
			if err := session.Run(ctx); err != nil && !netutil.IsExpectedClose(err) {
				sessionLogger.Error("session ended", "error", err)
			}
		}()
	}

	sessions.Wait()
	logger.Info("waybridge stopped")
	return nil
}

func newAllocator(cfg *config.Config) (transport.Allocator, error) {
	switch cfg.Allocator {
	case config.AllocatorMemfd:
		return transport.MemfdAllocator{}, nil
	case config.AllocatorControl:
		return transport.DialControl(cfg.ControlSocket)
	}
	return nil, fmt.Errorf("unknown allocator %q", cfg.Allocator)
}
