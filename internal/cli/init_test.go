package cli

import (
	"context"
	"log/slog"
	"syscall"
	"testing"
	"time"
)

func TestSetupLogger(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	l := SetupLogger("debug", "test")
	if l.Component() != "test" {
		t.Errorf("component = %q", l.Component())
	}
	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		t.Error("debug level should be enabled")
	}
}

func TestGracefulShutdownRunsCleanup(t *testing.T) {
	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(slog.Default(), time.Second, func(context.Context) { close(cleaned) })

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	if ctx.Err() == nil {
		t.Error("context should be cancelled")
	}
	select {
	case <-cleaned:
	default:
		t.Error("cleanup should have run")
	}
}
