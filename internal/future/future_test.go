package future_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sufield/cloudsqlconn/internal/bg"
	"github.com/sufield/cloudsqlconn/internal/future"
)

func TestFuture_Get_ReturnsValue(t *testing.T) {
	f := future.New(bg.Sync{}, func() (int, error) { return 42, nil })
	v, err := f.Get(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v != 42 {
		t.Errorf("got %d, want 42", v)
	}
}

func TestFuture_Get_ReturnsError(t *testing.T) {
	wantErr := errors.New("boom")
	f := future.New(bg.Sync{}, func() (int, error) { return 0, wantErr })
	_, err := f.Get(context.Background())
	if !errors.Is(err, wantErr) {
		t.Errorf("got %v, want %v", err, wantErr)
	}
}

func TestFuture_Get_ContextCancelled(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	f := future.New(bg.Async{}, func() (int, error) {
		<-block
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Get(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestFuture_Get_ManyReaders(t *testing.T) {
	f := future.New(bg.Async{}, func() (int, error) { return 7, nil })
	for i := 0; i < 5; i++ {
		v, err := f.Get(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if v != 7 {
			t.Errorf("read %d: got %d, want 7", i, v)
		}
	}
}
