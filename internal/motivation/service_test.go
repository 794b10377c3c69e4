package motivation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/notexe/motivator/internal/gateway"
	"github.com/notexe/motivator/internal/kv"
	"github.com/notexe/motivator/internal/notify"
	"github.com/notexe/motivator/internal/reminder"
)

var refNow = time.Date(2026, 1, 13, 10, 0, 0, 0, time.UTC)

// fakeScheduler keeps handles in a map and can be told to fail.
type fakeScheduler struct {
	mu        sync.Mutex
	now       func() time.Time
	pending   map[string]time.Time
	failBody  map[string]error
	failAll   error
	cancelErr error
	calls     int
	next      int
}

func newFakeScheduler(now func() time.Time) *fakeScheduler {
	return &fakeScheduler{now: now, pending: map[string]time.Time{}, failBody: map[string]error{}}
}

func (f *fakeScheduler) Schedule(_ context.Context, _, body string, at time.Time) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.failAll != nil {
		return "", f.failAll
	}
	if err, ok := f.failBody[body]; ok {
		return "", err
	}
	if !at.After(f.now()) {
		return "", &notify.SchedulingError{Kind: notify.KindPastTime, Err: errors.New("past")}
	}
	f.next++
	h := fmt.Sprintf("h%d", f.next)
	f.pending[h] = at
	return h, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancelErr != nil {
		return f.cancelErr
	}
	delete(f.pending, handle)
	return nil
}

func (f *fakeScheduler) CancelAll(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pending = map[string]time.Time{}
	return nil
}

func (f *fakeScheduler) ListScheduled(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.pending))
	for h := range f.pending {
		out = append(out, h)
	}
	sort.Strings(out)
	return out, nil
}

func (f *fakeScheduler) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeScheduler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

type fakeGateway struct {
	result *gateway.Result
	err    error
}

func (f *fakeGateway) RequestCandidates(context.Context, string, string) (*gateway.Result, error) {
	return f.result, f.err
}

type failingStore struct {
	*reminder.Store
}

func (f failingStore) Add(context.Context, reminder.Record) error {
	return &reminder.StorageError{Op: "save", Err: errors.New("disk full")}
}

type fixture struct {
	svc   *Service
	sched *fakeScheduler
	store *reminder.Store
}

func newFixture(t *testing.T, gw Gateway) *fixture {
	t.Helper()
	now := func() time.Time { return refNow }
	store := reminder.NewStore(kv.NewMemory(), time.Second, zerolog.Nop())
	sched := newFakeScheduler(now)

	svc := New(Deps{
		Store:     store,
		Scheduler: sched,
		Gateway:   gw,
		Logger:    zerolog.Nop(),
		Now:       now,
	})
	return &fixture{svc: svc, sched: sched, store: store}
}

func (f *fixture) stored(t *testing.T) []reminder.Record {
	t.Helper()
	records, err := f.store.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return records
}

func candidates(n int) []reminder.Candidate {
	out := make([]reminder.Candidate, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, reminder.Candidate{Message: fmt.Sprintf("Step %d", i), DayOffset: float64(i), Category: "Daily"})
	}
	return out
}

func TestCreateManual(t *testing.T) {
	f := newFixture(t, nil)
	at := refNow.Add(2 * time.Hour)

	rec, err := f.svc.CreateManual(context.Background(), "  Stretch for five minutes  ", at)
	if err != nil {
		t.Fatalf("CreateManual: %v", err)
	}

	if rec.Message != "Stretch for five minutes" || !rec.ScheduledTime.Equal(at) {
		t.Errorf("unexpected record %+v", rec)
	}
	if !rec.IsActive || rec.IsAIGenerated || rec.Category != reminder.CategoryCustom || rec.NotificationHandle == "" {
		t.Errorf("unexpected flags %+v", rec)
	}
	if !rec.CreatedAt.Equal(refNow) {
		t.Errorf("expected createdAt %s, got %s", refNow, rec.CreatedAt)
	}

	stored := f.stored(t)
	if len(stored) != 1 || stored[0].ID != rec.ID {
		t.Fatalf("expected the record to be stored, got %+v", stored)
	}
}

func TestCreateManualRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		message string
		at      time.Time
	}{
		{"past time", "hello", refNow.Add(-time.Minute)},
		{"now", "hello", refNow},
		{"empty message", "   ", refNow.Add(time.Hour)},
		{"long message", strings.Repeat("x", reminder.MaxMessageLength+1), refNow.Add(time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)

			_, err := f.svc.CreateManual(context.Background(), tt.message, tt.at)

			var valErr *reminder.ValidationError
			if !errors.As(err, &valErr) || !errors.Is(err, reminder.ErrValidation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if f.sched.calls != 0 {
				t.Errorf("scheduler should not be called, got %d calls", f.sched.calls)
			}
			if len(f.stored(t)) != 0 {
				t.Error("nothing should be stored")
			}
		})
	}
}

func TestCreateManualSchedulingFailureBlocksPersistence(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.failAll = &notify.SchedulingError{Kind: notify.KindPermissionDenied, Err: errors.New("disabled")}

	_, err := f.svc.CreateManual(context.Background(), "hello", refNow.Add(time.Hour))

	var schedErr *notify.SchedulingError
	if !errors.As(err, &schedErr) || schedErr.Kind != notify.KindPermissionDenied {
		t.Fatalf("expected permission denied, got %v", err)
	}
	if len(f.stored(t)) != 0 {
		t.Error("nothing should be stored")
	}
}

func TestCreateManualWrapsUntypedSchedulerErrors(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.failAll = errors.New("platform exploded")

	_, err := f.svc.CreateManual(context.Background(), "hello", refNow.Add(time.Hour))

	var schedErr *notify.SchedulingError
	if !errors.As(err, &schedErr) || schedErr.Kind != notify.KindPlatform {
		t.Fatalf("expected platform SchedulingError, got %v", err)
	}
}

func TestCreateManualStorageFailureCancelsNotification(t *testing.T) {
	f := newFixture(t, nil)
	f.svc.store = failingStore{Store: f.store}

	_, err := f.svc.CreateManual(context.Background(), "hello", refNow.Add(time.Hour))

	var storageErr *reminder.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected StorageError, got %v", err)
	}
	if f.sched.count() != 0 {
		t.Errorf("scheduled notification should be cancelled, %d left", f.sched.count())
	}
}

func TestCreateFromGoalFallsBackOnGatewayError(t *testing.T) {
	gwErr := &gateway.GatewayError{Kind: gateway.KindNetwork, Err: errors.New("offline")}
	f := newFixture(t, &fakeGateway{err: gwErr})

	result, err := f.svc.CreateFromGoal(context.Background(), "Learn Go", "1 month")
	if err != nil {
		t.Fatalf("CreateFromGoal: %v", err)
	}

	if result.Source != reminder.SourceFallback || result.TimeframeDays != 30 {
		t.Errorf("unexpected plan: source %s, days %d", result.Source, result.TimeframeDays)
	}
	if !errors.Is(result.GatewayErr, gwErr) {
		t.Errorf("gateway error should be kept, got %v", result.GatewayErr)
	}
	if result.Strategy == "" {
		t.Error("fallback plan should carry a strategy")
	}
	if len(result.Created) != 14 || len(f.stored(t)) != 14 {
		t.Errorf("expected 14 fallback reminders, got %d created, %d stored", len(result.Created), len(f.stored(t)))
	}
	for _, r := range result.Created {
		if r.Goal != "Learn Go" || !r.IsAIGenerated {
			t.Errorf("unexpected record %+v", r)
		}
	}
}

func TestCreateFromGoalWithoutGatewayUsesFallback(t *testing.T) {
	f := newFixture(t, nil)

	result, err := f.svc.CreateFromGoal(context.Background(), "Read more", "1 week")
	if err != nil {
		t.Fatal(err)
	}
	if result.Source != reminder.SourceFallback || result.GatewayErr != nil {
		t.Errorf("unexpected result %+v", result)
	}
}

func TestCreateFromGoalPartialBatch(t *testing.T) {
	f := newFixture(t, &fakeGateway{result: &gateway.Result{Strategy: "Go daily", Candidates: candidates(10)}})
	for _, msg := range []string{"Step 2", "Step 5", "Step 8"} {
		f.sched.failBody[msg] = &notify.SchedulingError{Kind: notify.KindPlatform, Err: errors.New("busy")}
	}

	result, err := f.svc.CreateFromGoal(context.Background(), "Learn Go", "2 weeks")
	if err != nil {
		t.Fatalf("partial batch should not fail: %v", err)
	}

	if result.Source != reminder.SourceAI || result.Strategy != "Go daily" {
		t.Errorf("unexpected plan: %s %q", result.Source, result.Strategy)
	}
	if len(result.Created) != 7 || len(result.Failures) != 3 {
		t.Fatalf("expected 7 created and 3 failures, got %d and %d", len(result.Created), len(result.Failures))
	}
	if len(f.stored(t)) != 7 {
		t.Errorf("expected 7 stored records, got %d", len(f.stored(t)))
	}
	if result.Failures[0].Message != "Step 2" {
		t.Errorf("failures should keep the draft message, got %q", result.Failures[0].Message)
	}
}

func TestCreateFromGoalAllFailed(t *testing.T) {
	f := newFixture(t, nil)
	f.sched.failAll = &notify.SchedulingError{Kind: notify.KindPermissionDenied, Err: errors.New("disabled")}

	result, err := f.svc.CreateFromGoal(context.Background(), "Learn Go", "1 week")

	var batchErr *BatchError
	if !errors.As(err, &batchErr) {
		t.Fatalf("expected BatchError, got %v", err)
	}
	if len(batchErr.Failures) != len(result.Failures) || len(result.Failures) == 0 {
		t.Errorf("batch error should list every failure")
	}
	var schedErr *notify.SchedulingError
	if !errors.As(err, &schedErr) {
		t.Error("item errors should be reachable through the batch error")
	}
}

func TestCreateFromGoalValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.CreateFromGoal(ctx, "  ", "1 week"); !errors.Is(err, reminder.ErrValidation) {
		t.Errorf("empty goal: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreateFromGoal(ctx, "Learn Go", "   "); !errors.Is(err, reminder.ErrValidation) {
		t.Errorf("blank timeframe: expected validation error, got %v", err)
	}
	if f.sched.calls != 0 {
		t.Error("scheduler should not be called")
	}
}

func TestCancel(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, err := f.svc.CreateManual(ctx, "hello", refNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Cancel(ctx, rec.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if f.sched.count() != 0 {
		t.Error("notification should be cancelled")
	}
	got, _ := f.store.Get(ctx, rec.ID)
	if got.IsActive {
		t.Error("record should be inactive")
	}

	if err := f.svc.Cancel(ctx, rec.ID); err != nil {
		t.Errorf("second cancel should succeed, got %v", err)
	}
	if err := f.svc.Cancel(ctx, "missing"); !errors.Is(err, reminder.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelFailureKeepsRecordActive(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, _ := f.svc.CreateManual(ctx, "hello", refNow.Add(time.Hour))
	f.sched.cancelErr = errors.New("platform busy")

	if err := f.svc.Cancel(ctx, rec.ID); err == nil {
		t.Fatal("expected cancel to fail")
	}
	got, _ := f.store.Get(ctx, rec.ID)
	if !got.IsActive {
		t.Error("record should stay active when the notification could not be cancelled")
	}
}

func TestDeleteIsBestEffortOnNotification(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	rec, _ := f.svc.CreateManual(ctx, "hello", refNow.Add(time.Hour))
	f.sched.cancelErr = errors.New("platform busy")

	if err := f.svc.Delete(ctx, rec.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(f.stored(t)) != 0 {
		t.Error("record should be removed")
	}
	if err := f.svc.Delete(ctx, rec.ID); !errors.Is(err, reminder.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if _, err := f.svc.CreateFromGoal(ctx, "Learn Go", "1 week"); err != nil {
		t.Fatal(err)
	}
	if err := f.svc.ClearAll(ctx); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	if len(f.stored(t)) != 0 || f.sched.count() != 0 {
		t.Error("store and scheduler should be empty")
	}
}

func addRecord(t *testing.T, store *reminder.Store, id string, at time.Time, active bool, handle string) {
	t.Helper()
	err := store.Add(context.Background(), reminder.Record{
		ID:                 id,
		Message:            "msg " + id,
		ScheduledTime:      at,
		NotificationHandle: handle,
		IsActive:           active,
		Category:           reminder.CategoryDaily,
		CreatedAt:          refNow.Add(-48 * time.Hour),
		Goal:               "Learn Go",
	})
	if err != nil {
		t.Fatal(err)
	}
}

func TestSyncReschedulesMissingOnly(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	addRecord(t, f.store, "live-no-handle", refNow.Add(time.Hour), true, "")
	addRecord(t, f.store, "live-stale-handle", refNow.Add(2*time.Hour), true, "gone")
	addRecord(t, f.store, "expired", refNow.Add(-time.Hour), true, "")
	addRecord(t, f.store, "cancelled", refNow.Add(time.Hour), false, "")

	report, err := f.svc.Sync(ctx)
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if report.Checked != 2 || report.Rescheduled != 2 || report.Failed != 0 {
		t.Errorf("unexpected first report %+v", report)
	}
	if f.sched.count() != 2 {
		t.Errorf("expected 2 scheduled notifications, got %d", f.sched.count())
	}

	expired, _ := f.store.Get(ctx, "expired")
	if expired.NotificationHandle != "" {
		t.Error("past records must not be rescheduled")
	}

	calls := f.sched.callCount()
	report, err = f.svc.Sync(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.sched.callCount(); got != calls {
		t.Errorf("second sync called Schedule %d more times", got-calls)
	}
	if report.Rescheduled != 0 || f.sched.count() != 2 {
		t.Errorf("second sync should be a no-op, got %+v with %d scheduled", report, f.sched.count())
	}
}

// process is one binary sharing the store, with its own timers.
type process struct {
	svc    *Service
	timers *notify.Local
}

func newProcess(t *testing.T, shared kv.Store, owner string) process {
	t.Helper()
	now := func() time.Time { return refNow }
	local := notify.NewLocal(notify.NewConsoleSender(io.Discard, false), notify.LocalOptions{Now: now, Owner: owner}, zerolog.Nop())
	t.Cleanup(func() { _ = local.Close() })
	svc := New(Deps{
		Store:     reminder.NewStore(shared, time.Second, zerolog.Nop()),
		Scheduler: local,
		Logger:    zerolog.Nop(),
		Now:       now,
	})
	return process{svc: svc, timers: local}
}

func (p process) pending(t *testing.T) int {
	t.Helper()
	handles, err := p.timers.ListScheduled(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	return len(handles)
}

func TestSyncSharedStoreIsIdempotent(t *testing.T) {
	ctx := context.Background()
	shared := kv.NewMemory()
	repl := newProcess(t, shared, "repl")
	mcp := newProcess(t, shared, "mcp")

	rec, err := repl.svc.CreateManual(ctx, "Stretch your back", refNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 3; round++ {
		for _, p := range []process{repl, mcp} {
			report, err := p.svc.Sync(ctx)
			if err != nil {
				t.Fatalf("round %d: %v", round, err)
			}
			if report.Rescheduled != 0 {
				t.Fatalf("round %d: rescheduled %d", round, report.Rescheduled)
			}
		}
	}

	if repl.pending(t) != 1 || mcp.pending(t) != 0 {
		t.Errorf("expected one timer in the owning process, got repl=%d mcp=%d", repl.pending(t), mcp.pending(t))
	}
	got, err := mcp.svc.Resolve(ctx, rec.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.NotificationHandle != rec.NotificationHandle {
		t.Errorf("handle changed from %q to %q", rec.NotificationHandle, got.NotificationHandle)
	}
}

func TestSyncSharedStoreClaimsUnownedOnce(t *testing.T) {
	ctx := context.Background()
	shared := kv.NewMemory()
	repl := newProcess(t, shared, "repl")
	mcp := newProcess(t, shared, "mcp")

	store := reminder.NewStore(shared, time.Second, zerolog.Nop())
	addRecord(t, store, "legacy", refNow.Add(time.Hour), true, "stale-handle")

	report, err := mcp.svc.Sync(ctx)
	if err != nil || report.Rescheduled != 1 {
		t.Fatalf("first sync should claim the record: %+v, %v", report, err)
	}
	report, err = repl.svc.Sync(ctx)
	if err != nil || report.Rescheduled != 0 {
		t.Fatalf("second process should leave it alone: %+v, %v", report, err)
	}
	if mcp.pending(t) != 1 || repl.pending(t) != 0 {
		t.Errorf("unexpected timers mcp=%d repl=%d", mcp.pending(t), repl.pending(t))
	}
}

func TestDeliverableAfterForeignCancel(t *testing.T) {
	ctx := context.Background()
	shared := kv.NewMemory()
	repl := newProcess(t, shared, "repl")
	mcp := newProcess(t, shared, "mcp")

	rec, err := repl.svc.CreateManual(ctx, "Drink water", refNow.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if !repl.svc.Deliverable(ctx, rec.NotificationHandle) {
		t.Fatal("active reminder should be deliverable")
	}

	if err := mcp.svc.Cancel(ctx, rec.ID); err != nil {
		t.Fatal(err)
	}
	if repl.svc.Deliverable(ctx, rec.NotificationHandle) {
		t.Error("reminder cancelled by another process should not be delivered")
	}
	if repl.svc.Deliverable(ctx, "repl:unknown") {
		t.Error("unknown handle should not be delivered")
	}
}

func TestUpcomingCapsHugeWindows(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	addRecord(t, f.store, "next-year", refNow.AddDate(1, 0, 0), true, "")

	for _, hours := range []int{MaxUpcomingHours, MaxUpcomingHours + 1, math.MaxInt} {
		got, err := f.svc.Upcoming(ctx, hours)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Errorf("Upcoming(%d) = %v, want the reminder a year ahead", hours, ids(got))
		}
	}
}

func TestSyncCountsFailures(t *testing.T) {
	f := newFixture(t, nil)
	addRecord(t, f.store, "a", refNow.Add(time.Hour), true, "")
	f.sched.failAll = errors.New("down")

	report, err := f.svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("per-record failures should not fail the sync: %v", err)
	}
	if report.Failed != 1 || report.Rescheduled != 0 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestQueries(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	addRecord(t, f.store, "b-soon", refNow.Add(3*time.Hour), true, "")
	addRecord(t, f.store, "a-later", refNow.Add(72*time.Hour), true, "")
	addRecord(t, f.store, "c-past", refNow.Add(-time.Hour), true, "")
	addRecord(t, f.store, "d-cancelled", refNow.Add(time.Hour), false, "")
	manual, _ := f.svc.CreateManual(ctx, "manual", refNow.Add(30*time.Minute))

	all, err := f.svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 || all[0].ID != "c-past" || all[4].ID != "a-later" {
		t.Errorf("List should be sorted by time, got %v", ids(all))
	}

	active, _ := f.svc.ListActive(ctx)
	if len(active) != 3 {
		t.Errorf("expected 3 active, got %v", ids(active))
	}

	upcoming, _ := f.svc.Upcoming(ctx, 0)
	if len(upcoming) != 2 || upcoming[0].ID != manual.ID || upcoming[1].ID != "b-soon" {
		t.Errorf("unexpected upcoming %v", ids(upcoming))
	}

	byGoal, _ := f.svc.ListByGoal(ctx, "learn go")
	if len(byGoal) != 4 {
		t.Errorf("expected 4 by goal, got %v", ids(byGoal))
	}

	custom, _ := f.svc.ListByCategory(ctx, reminder.CategoryCustom)
	if len(custom) != 1 || custom[0].ID != manual.ID {
		t.Errorf("unexpected custom %v", ids(custom))
	}

	st, _ := f.svc.Stats(ctx)
	if st.Total != 5 || st.Active != 3 || st.Expired != 1 || st.Cancelled != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
	if st.ByCategory[reminder.CategoryDaily] != 4 || st.ByGoal["Learn Go"] != 4 {
		t.Errorf("unexpected breakdown %+v", st)
	}
}

func TestResolve(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	addRecord(t, f.store, "abc-1", refNow.Add(time.Hour), true, "")
	addRecord(t, f.store, "abc-2", refNow.Add(time.Hour), true, "")
	addRecord(t, f.store, "xyz", refNow.Add(time.Hour), true, "")

	if r, err := f.svc.Resolve(ctx, "xy"); err != nil || r.ID != "xyz" {
		t.Errorf("expected xyz, got %v, %v", r, err)
	}
	if r, err := f.svc.Resolve(ctx, "abc-1"); err != nil || r.ID != "abc-1" {
		t.Errorf("expected exact match, got %v, %v", r, err)
	}
	if _, err := f.svc.Resolve(ctx, "abc"); !errors.Is(err, ErrAmbiguous) {
		t.Errorf("expected ErrAmbiguous, got %v", err)
	}
	if _, err := f.svc.Resolve(ctx, "nope"); !errors.Is(err, reminder.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestSyncerRunsUntilCancelled(t *testing.T) {
	f := newFixture(t, nil)
	addRecord(t, f.store, "a", refNow.Add(time.Hour), true, "")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewSyncer(f.svc, time.Hour, zerolog.Nop()).Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.sched.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if f.sched.count() != 1 {
		t.Fatal("syncer should sync immediately on start")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("syncer did not stop")
	}
}

func TestSyncerRejectsZeroInterval(t *testing.T) {
	f := newFixture(t, nil)
	if err := NewSyncer(f.svc, 0, zerolog.Nop()).Run(context.Background()); err == nil {
		t.Fatal("expected an error for a zero interval")
	}
}

func ids(records []reminder.Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.ID)
	}
	return out
}
