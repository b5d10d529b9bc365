package main

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/NullSpells/NomadSquare/internal/platform/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		config.EnvHost, config.EnvPort, config.EnvLogLevel,
		config.EnvShutdownTimeout, config.EnvDocsPath,
	} {
		t.Setenv(k, "")
	}
	// Run from an empty directory so no .env file is picked up.
	t.Chdir(t.TempDir())
}

func TestVersionCommand(t *testing.T) {
	orig := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = orig })

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if got := out.String(); got != "nomadsquare 1.2.3\n" {
		t.Fatalf("unexpected version output %q", got)
	}
}

func TestLoadConfigFlagsOverrideEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvPort, "9000")
	t.Setenv(config.EnvLogLevel, "warn")

	cmd := newServeCmd()
	if err := cmd.ParseFlags([]string{"--port", "9100", "--host", "127.0.0.1"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 9100 || cfg.Host != "127.0.0.1" {
		t.Fatalf("expected flag overrides, got %+v", cfg)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected env log level to survive, got %q", cfg.LogLevel)
	}
}

func TestLoadConfigWithoutFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvPort, "9000")

	cmd := newServeCmd()
	if err := cmd.ParseFlags(nil); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(cmd.Flags())
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != 9000 || cfg.LogLevel != "info" {
		t.Fatalf("expected env config, got %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalidFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"port", []string{"--port", "70000"}, "port"},
		{"log level", []string{"--log-level", "loud"}, "log level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cmd := newServeCmd()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			_, err := loadConfig(cmd.Flags())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %s error, got %v", tt.want, err)
			}
		})
	}
}

func TestRootRejectsInvalidPort(t *testing.T) {
	clearEnv(t)
	root := newRootCmd()
	root.SetArgs([]string{"--port", "0"})
	if err := root.Execute(); err == nil {
		t.Fatal("expected error for port 0")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = port
	cfg.ShutdownTimeout = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, cfg) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean exit, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timeout waiting for run to return")
	}
}
