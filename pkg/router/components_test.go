package router

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestLazyComponentLoadsOutsideLock(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	var loads atomic.Int32
	lazy := Lazy(func(ctx context.Context) (Component, error) {
		loads.Add(1)
		close(started)
		<-release
		return "loaded", nil
	})

	results := make(chan Component, 2)
	go func() {
		c, _ := lazy.Resolve(context.Background())
		results <- c
	}()
	<-started

	// Reads do not wait for the loader.
	readDone := make(chan struct{})
	go func() {
		lazy.Resolved()
		close(readDone)
	}()
	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("Resolved() blocked while a load was running")
	}

	go func() {
		c, _ := lazy.Resolve(context.Background())
		results <- c
	}()

	close(release)
	for i := 0; i < 2; i++ {
		select {
		case c := <-results:
			if c != "loaded" {
				t.Errorf("Resolve() = %v, want loaded", c)
			}
		case <-time.After(time.Second):
			t.Fatal("Resolve() did not return")
		}
	}
	if n := loads.Load(); n != 1 {
		t.Errorf("loads = %d, want 1", n)
	}
}

func TestLazyComponentWaiterHonorsContext(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	lazy := Lazy(func(ctx context.Context) (Component, error) {
		close(started)
		<-release
		return "loaded", nil
	})
	defer close(release)

	go lazy.Resolve(context.Background())
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := lazy.Resolve(ctx); err != context.Canceled {
		t.Errorf("Resolve() error = %v, want %v", err, context.Canceled)
	}
}
