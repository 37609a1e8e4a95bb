// File path: internal/common/once_test.go
package common

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestOnceGuardRunsOnce(t *testing.T) {
	var guard OnceGuard
	var calls int32

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = guard.Do(func() error {
				atomic.AddInt32(&calls, 1)
				return nil
			})
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("expected exactly one initialization, got %d", got)
	}
	if !guard.Done() {
		t.Fatal("guard must report done after success")
	}
}

func TestOnceGuardRetriesAfterFailure(t *testing.T) {
	var guard OnceGuard
	boom := errors.New("boom")

	if err := guard.Do(func() error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("expected failure to propagate, got %v", err)
	}
	if guard.Done() {
		t.Fatal("failed init must leave the guard open")
	}
	if err := guard.Do(func() error { return nil }); err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if !guard.Done() {
		t.Fatal("guard must close after successful retry")
	}
	calls := 0
	_ = guard.Do(func() error { calls++; return nil })
	if calls != 0 {
		t.Fatal("closed guard must not invoke the function again")
	}
}
