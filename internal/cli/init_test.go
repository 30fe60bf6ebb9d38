package cli

import (
	"io"
	"log/slog"
	"syscall"
	"testing"
	"time"

	"turni/internal/log"
)

func quietLogger() *log.Logger {
	return log.New(log.Config{
		Component: log.ComponentCLI,
		Handler:   slog.NewTextHandler(io.Discard, nil),
	})
}

func TestGracefulShutdownCompletesWhenCleanupFinishes(t *testing.T) {
	cleaned := make(chan struct{})
	ctx, done := GracefulShutdown(quietLogger(), 5*time.Second, func() {
		time.Sleep(50 * time.Millisecond)
		close(cleaned)
	})

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not complete")
	}
	elapsed := time.Since(start)

	select {
	case <-cleaned:
	default:
		t.Fatal("done closed before cleanup finished")
	}
	select {
	case <-ctx.Done():
	default:
		t.Fatal("context not cancelled after shutdown")
	}
	if elapsed >= time.Second {
		t.Fatalf("shutdown took %v, expected to track cleanup completion", elapsed)
	}
}

func TestGracefulShutdownTimesOutOnStuckCleanup(t *testing.T) {
	block := make(chan struct{})
	defer close(block)

	_, done := GracefulShutdown(quietLogger(), 100*time.Millisecond, func() {
		<-block
	})

	time.Sleep(50 * time.Millisecond)
	start := time.Now()
	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("send SIGTERM: %v", err)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("shutdown did not give up on stuck cleanup")
	}
	if elapsed := time.Since(start); elapsed >= time.Second {
		t.Fatalf("timeout branch took %v, expected roughly the shutdown timeout", elapsed)
	}
}
