// Package services orchestrates writes across storage and the AMQP event
// stream.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// JobCompleter marks a service job completed in the backing store.
type JobCompleter interface {
	CompleteJob(ctx context.Context, id int64) error
}

// CompletionPublisher notifies the refresh worker about a completed job.
type CompletionPublisher interface {
	PublishJobCompleted(ctx context.Context, jobID int64) error
	Close() error
}

// JobService completes jobs in storage and publishes the completion event.
// The event is best-effort: the periodic refresh sweep covers a lost message.
type JobService struct {
	store     JobCompleter
	publisher CompletionPublisher
}

func NewJobService(store JobCompleter, publisher CompletionPublisher) *JobService {
	return &JobService{store: store, publisher: publisher}
}

// CompleteJob updates the job locally first, then publishes the refresh
// trigger. A publish failure never fails the request; the job is completed.
func (s *JobService) CompleteJob(ctx context.Context, id int64) error {
	if s.store == nil {
		return errors.New("job completion not supported by this backend")
	}

	if err := s.store.CompleteJob(ctx, id); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping completion event", "job_id", id)
		return nil
	}
	if err := s.publisher.PublishJobCompleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish completion event",
			"job_id", id, "error", err)
	}

	return nil
}

func (s *JobService) Close() error {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}
