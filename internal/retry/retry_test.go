package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestPoll_SucceedsEarly(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 5, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return calls == 2, nil
	})
	if err != nil {
		t.Fatalf("Poll: %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestPoll_BoundedAttempts(t *testing.T) {
	calls := 0
	err := Poll(context.Background(), 3, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return false, nil
	})
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("err = %v, want ErrExhausted", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want exactly 3", calls)
	}
}

func TestPoll_ProbeErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := Poll(context.Background(), 5, time.Millisecond, func(ctx context.Context) (bool, error) {
		calls++
		return false, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want probe error", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestPoll_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Poll(ctx, 5, time.Minute, func(ctx context.Context) (bool, error) {
		return false, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
