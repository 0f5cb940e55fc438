package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/ledgerbot/internal/jobs"
)

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

func TestQueue_ProcessesJob(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var handled atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		if job.GetType() != jobs.JobTypeAnalyzeReceipt {
			t.Errorf("unexpected job type %s", job.GetType())
		}
		handled.Add(1)
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.AnalyzeReceiptJob{UserID: "42", Image: []byte("img"), MimeType: "image/jpeg"}
	if err := q.PublishAnalyzeReceipt(ctx, job); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if job.JobID == "" {
		t.Fatal("publish did not assign a job id")
	}

	waitFor(t, 2*time.Second, func() bool { return handled.Load() == 1 })
	waitFor(t, 2*time.Second, func() bool {
		got, err := store.GetJob(ctx, job.JobID)
		return err == nil && got.Status == jobs.JobStatusCompleted
	})
}

func TestQueue_RetriesThenFails(t *testing.T) {
	store := NewStore()
	q := NewQueue(10, store)
	defer q.Close()

	var attempts atomic.Int32
	handler := func(ctx context.Context, job jobs.Job) error {
		attempts.Add(1)
		return errors.New("analysis backend down")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := q.Start(ctx, handler); err != nil {
		t.Fatalf("Start: %v", err)
	}

	job := &jobs.AnalyzeReceiptJob{UserID: "42", MaxRetries: 1}
	if err := q.PublishAnalyzeReceipt(ctx, job); err != nil {
		t.Fatalf("publish: %v", err)
	}

	// Initial attempt plus one retry.
	waitFor(t, 5*time.Second, func() bool {
		got, err := store.GetJob(ctx, job.JobID)
		return err == nil && got.Status == jobs.JobStatusFailed
	})
	if got := attempts.Load(); got != 2 {
		t.Errorf("attempts = %d, want 2", got)
	}
}

func TestQueue_PublishAfterCloseFails(t *testing.T) {
	q := NewQueue(1, NewStore())
	_ = q.Close()

	err := q.PublishAnalyzeReceipt(context.Background(), &jobs.AnalyzeReceiptJob{UserID: "42"})
	if err == nil {
		t.Fatal("publish succeeded on a closed queue")
	}
}

func TestStore_ListJobsFilters(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	base := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	for i, j := range []*jobs.AnalyzeReceiptJob{
		{JobID: "a", UserID: "42", Status: jobs.JobStatusCompleted},
		{JobID: "b", UserID: "42", Status: jobs.JobStatusFailed},
		{JobID: "c", UserID: "7", Status: jobs.JobStatusCompleted},
	} {
		j.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := store.SaveJob(ctx, j); err != nil {
			t.Fatalf("save %s: %v", j.JobID, err)
		}
	}

	got, err := store.ListJobs(ctx, jobs.JobFilter{UserID: "42"})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("jobs = %d, want 2", len(got))
	}
	if got[0].JobID != "b" {
		t.Errorf("order wrong, first = %s, want newest", got[0].JobID)
	}

	got, err = store.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusCompleted, Limit: 1})
	if err != nil {
		t.Fatalf("ListJobs: %v", err)
	}
	if len(got) != 1 || got[0].Status != jobs.JobStatusCompleted {
		t.Errorf("filtered jobs wrong: %+v", got)
	}
}
