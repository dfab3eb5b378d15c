package guard

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestGuard_SerializesSameKey(t *testing.T) {
	ctx := context.Background()
	g := New()

	const iterations = 1000
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				_ = g.Do(ctx, "interview-1", func() error {
					counter++
					return nil
				})
			}
		}()
	}
	wg.Wait()

	if counter != 8*iterations {
		t.Errorf("expected %d increments, got %d", 8*iterations, counter)
	}
}

func TestGuard_ParallelAcrossKeys(t *testing.T) {
	ctx := context.Background()
	g := New()

	// One goroutine parks inside key A; key B must stay usable meanwhile.
	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan struct{})

	go func() {
		_ = g.Do(ctx, "a", func() error {
			close(entered)
			<-release
			return nil
		})
		close(done)
	}()

	<-entered
	finished := make(chan struct{})
	go func() {
		_ = g.Do(ctx, "b", func() error { return nil })
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("key b blocked behind key a")
	}

	close(release)
	<-done
}

func TestGuard_ContextCancelled(t *testing.T) {
	g := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := g.Do(ctx, "k", func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
	if called {
		t.Error("fn must not run when the context is already cancelled")
	}
}

func TestGuard_ReleasesEntries(t *testing.T) {
	ctx := context.Background()
	g := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			key := string(rune('a' + n%16))
			_ = g.Do(ctx, key, func() error { return nil })
		}(i)
	}
	wg.Wait()

	if size := g.Size(); size != 0 {
		t.Errorf("expected empty lock map after release, got %d entries", size)
	}
}

func TestGuard_PropagatesFnError(t *testing.T) {
	ctx := context.Background()
	g := New()

	want := context.DeadlineExceeded
	if got := g.Do(ctx, "k", func() error { return want }); got != want {
		t.Errorf("expected fn error %v, got %v", want, got)
	}
	if size := g.Size(); size != 0 {
		t.Errorf("lock entry leaked after error, size %d", size)
	}
}
