package tracking

import (
	"context"
	"testing"
	"time"

	memoryRepo "pingparcel/database/repository/memory"
	"pingparcel/models"
	"pingparcel/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

type countingLedger struct {
	*memoryRepo.TrackingRepo
	reads int
}

func (r *countingLedger) ListByTrackingID(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	r.reads++
	return r.TrackingRepo.ListByTrackingID(ctx, trackingID)
}

// blockingLedger parks the first armed read after it has queried the store,
// so a test can append while that read is in flight.
type blockingLedger struct {
	*memoryRepo.TrackingRepo
	armed   bool
	read    chan struct{}
	release chan struct{}
}

func (r *blockingLedger) ListByTrackingID(ctx context.Context, trackingID string) ([]models.TrackingEvent, error) {
	events, err := r.TrackingRepo.ListByTrackingID(ctx, trackingID)
	if r.armed {
		r.armed = false
		close(r.read)
		<-r.release
	}
	return events, err
}

func newService(t *testing.T, cache EventCache) (*DefaultTrackingService, *countingLedger, *time.Time) {
	t.Helper()
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	repo := &countingLedger{TrackingRepo: memoryRepo.NewTrackingRepo("trackings")}
	svc := NewDefaultTrackingService(repo, cache, nil)
	svc.Now = func() time.Time { return clock }
	return svc, repo, &clock
}

func newRedisCache(t *testing.T) (*RedisEventCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisEventCache(client, time.Minute), mr
}

func TestAppendEventRequiresTrackingIDAndStatus(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newService(t, nil)

	tests := []struct {
		name  string
		event *models.TrackingEvent
	}{
		{"nil body", nil},
		{"missing tracking id", &models.TrackingEvent{Status: "picked_up"}},
		{"blank tracking id", &models.TrackingEvent{TrackingID: "  ", Status: "picked_up"}},
		{"missing status", &models.TrackingEvent{TrackingID: "TRK-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AppendEvent(ctx, tt.event)
			if utils.KindOf(err) != utils.KindInvalidArgument {
				t.Fatalf("kind = %s, want invalid_argument", utils.KindOf(err))
			}
		})
	}

	events, _ := repo.TrackingRepo.ListByTrackingID(ctx, "TRK-1")
	if len(events) != 0 {
		t.Fatalf("invalid events were stored: %d", len(events))
	}
}

func TestAppendEventAssignsServerTimestamp(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newService(t, nil)

	ev := &models.TrackingEvent{
		TrackingID: "TRK-1",
		Status:     "picked_up",
		UpdatedBy:  "courier@x.com",
		Timestamp:  time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
		Extra:      map[string]interface{}{"time": "1999-01-01", "location": "Dhaka"},
	}
	if _, err := svc.AppendEvent(ctx, ev); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	got := events[0]
	if !got.Timestamp.Equal(*clock) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, *clock)
	}
	if _, ok := got.Extra["time"]; ok {
		t.Fatal("client time leaked into the stored event")
	}
	if got.Extra["location"] != "Dhaka" {
		t.Fatalf("location = %v", got.Extra["location"])
	}
}

func TestListEventsChronological(t *testing.T) {
	ctx := context.Background()
	svc, _, clock := newService(t, nil)

	for _, status := range []string{"picked_up", "in_transit", "delivered"} {
		if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: status}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		*clock = clock.Add(time.Minute)
	}
	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-2", Status: "picked_up"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"picked_up", "in_transit", "delivered"}
	if len(events) != len(want) {
		t.Fatalf("len = %d, want %d", len(events), len(want))
	}
	for i, ev := range events {
		if ev.Status != want[i] {
			t.Fatalf("events[%d].status = %q, want %q", i, ev.Status, want[i])
		}
	}
}

func TestListEventsUnknownTrackingIDIsEmpty(t *testing.T) {
	svc, _, _ := newService(t, nil)

	events, err := svc.ListEvents(context.Background(), "nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if events == nil || len(events) != 0 {
		t.Fatalf("events = %#v, want empty slice", events)
	}
}

func TestListEventsServedFromCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	svc, repo, _ := newService(t, cache)

	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "picked_up"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mr.Exists(TrackingCachePrefix + "trackings:TRK-1") {
		t.Fatal("history was not cached")
	}
	second, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.reads != 1 {
		t.Fatalf("store reads = %d, want 1", repo.reads)
	}
	if len(second) != 1 || second[0].ID != first[0].ID || !second[0].Timestamp.Equal(first[0].Timestamp) {
		t.Fatalf("cached history differs: %+v vs %+v", second, first)
	}
}

func TestAppendEventInvalidatesCache(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	svc, repo, clock := newService(t, cache)

	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "picked_up"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.ListEvents(ctx, "TRK-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	*clock = clock.Add(time.Minute)
	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "in_transit"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists(TrackingCachePrefix + "trackings:TRK-1") {
		t.Fatal("append should drop the cached history")
	}

	events, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 || events[1].Status != "in_transit" {
		t.Fatalf("events = %+v", events)
	}
	if repo.reads != 2 {
		t.Fatalf("store reads = %d, want 2", repo.reads)
	}
}

func TestListEventsFallsBackWhenCacheIsDown(t *testing.T) {
	ctx := context.Background()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	svc, _, _ := newService(t, NewRedisEventCache(client, time.Minute))

	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "picked_up"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mr.Close()

	events, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("cache outage should not fail reads: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
}

func TestListEventsDoesNotCacheReadRacingAnAppend(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)
	repo := &blockingLedger{
		TrackingRepo: memoryRepo.NewTrackingRepo("trackings"),
		read:         make(chan struct{}),
		release:      make(chan struct{}),
	}
	svc := NewDefaultTrackingService(repo, cache, nil)

	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "picked_up"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	repo.armed = true
	done := make(chan []models.TrackingEvent, 1)
	go func() {
		events, err := svc.ListEvents(ctx, "TRK-1")
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		done <- events
	}()

	<-repo.read
	if _, err := svc.AppendEvent(ctx, &models.TrackingEvent{TrackingID: "TRK-1", Status: "in_transit"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	close(repo.release)

	if stale := <-done; len(stale) != 1 {
		t.Fatalf("in-flight read len = %d, want 1", len(stale))
	}
	if mr.Exists(TrackingCachePrefix + "trackings:TRK-1") {
		t.Fatal("a read that raced an append was cached")
	}

	events, err := svc.ListEvents(ctx, "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
}

func TestRedisEventCacheSetSkipsStaleGeneration(t *testing.T) {
	ctx := context.Background()
	cache, mr := newRedisCache(t)

	gen, err := cache.Generation(ctx, "trackings", "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gen != 0 {
		t.Fatalf("generation = %d, want 0", gen)
	}
	if err := cache.Invalidate(ctx, "trackings", "TRK-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	events := []models.TrackingEvent{{TrackingID: "TRK-1", Status: "picked_up"}}
	if err := cache.Set(ctx, "trackings", "TRK-1", gen, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists(TrackingCachePrefix + "trackings:TRK-1") {
		t.Fatal("stale generation was written")
	}

	current, err := cache.Generation(ctx, "trackings", "TRK-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if current != 1 {
		t.Fatalf("generation = %d, want 1", current)
	}
	if err := cache.Set(ctx, "trackings", "TRK-1", current, events); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, ok, err := cache.Get(ctx, "trackings", "TRK-1")
	if err != nil || !ok || len(got) != 1 {
		t.Fatalf("Get = %v, %v, %v", got, ok, err)
	}
	if ttl := mr.TTL(TrackingGenerationPrefix + "trackings:TRK-1"); ttl <= 0 {
		t.Fatalf("generation ttl = %v, want > 0", ttl)
	}
}
