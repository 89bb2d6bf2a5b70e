package services

import (
	"context"
	"errors"
	"testing"
)

type fakeCompleter struct {
	completed []int64
	err       error
}

func (f *fakeCompleter) CompleteJob(_ context.Context, id int64) error {
	if f.err != nil {
		return f.err
	}
	f.completed = append(f.completed, id)
	return nil
}

type fakePublisher struct {
	published []int64
	err       error
	closed    bool
}

func (f *fakePublisher) PublishJobCompleted(_ context.Context, jobID int64) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, jobID)
	return nil
}

func (f *fakePublisher) Close() error {
	f.closed = true
	return nil
}

func TestJobServiceCompleteJob(t *testing.T) {
	ctx := context.Background()

	t.Run("completes and publishes", func(t *testing.T) {
		store := &fakeCompleter{}
		pub := &fakePublisher{}
		svc := NewJobService(store, pub)

		if err := svc.CompleteJob(ctx, 42); err != nil {
			t.Fatalf("CompleteJob: %v", err)
		}
		if len(store.completed) != 1 || store.completed[0] != 42 {
			t.Errorf("expected store completion for 42, got %v", store.completed)
		}
		if len(pub.published) != 1 || pub.published[0] != 42 {
			t.Errorf("expected publish for 42, got %v", pub.published)
		}
	})

	t.Run("storage failure propagates and skips publish", func(t *testing.T) {
		storeErr := errors.New("locked")
		pub := &fakePublisher{}
		svc := NewJobService(&fakeCompleter{err: storeErr}, pub)

		if err := svc.CompleteJob(ctx, 42); !errors.Is(err, storeErr) {
			t.Errorf("expected storage error, got %v", err)
		}
		if len(pub.published) != 0 {
			t.Errorf("publish must not happen when storage fails, got %v", pub.published)
		}
	})

	t.Run("publish failure does not fail the request", func(t *testing.T) {
		store := &fakeCompleter{}
		svc := NewJobService(store, &fakePublisher{err: errors.New("broker down")})

		if err := svc.CompleteJob(ctx, 42); err != nil {
			t.Errorf("expected success despite publish failure, got %v", err)
		}
		if len(store.completed) != 1 {
			t.Errorf("expected completion to stick, got %v", store.completed)
		}
	})

	t.Run("nil publisher is fine", func(t *testing.T) {
		store := &fakeCompleter{}
		svc := NewJobService(store, nil)

		if err := svc.CompleteJob(ctx, 42); err != nil {
			t.Errorf("expected success without publisher, got %v", err)
		}
	})

	t.Run("nil store rejects completion", func(t *testing.T) {
		svc := NewJobService(nil, &fakePublisher{})
		if err := svc.CompleteJob(ctx, 42); err == nil {
			t.Error("expected error for backend without completion support")
		}
	})
}

func TestJobServiceClose(t *testing.T) {
	pub := &fakePublisher{}
	svc := NewJobService(&fakeCompleter{}, pub)

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !pub.closed {
		t.Error("expected publisher to be closed")
	}
}
