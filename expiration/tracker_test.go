package expiration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tranvictor/uns/namehash"
)

const day = 24 * time.Hour

type fakeReader struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	err     error
	fetches int
}

func (f *fakeReader) Expiry(ctx context.Context, name string) (time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches++
	if f.err != nil {
		return time.Time{}, f.err
	}
	return f.expiry[name], nil
}

func (f *fakeReader) set(name string, expiry time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.expiry[name] = expiry
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestTracker(t *testing.T) (*Tracker, *fakeReader, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := &fakeReader{expiry: map[string]time.Time{}}
	return NewTracker(r, Config{Now: c.Now}), r, c
}

func drain(ch <-chan Event) []Event {
	events := []Event{}
	for {
		select {
		case e := <-ch:
			events = append(events, e)
		default:
			return events
		}
	}
}

func TestThresholdsEmitOncePerCrossing(t *testing.T) {
	tracker, reader, c := newTestTracker(t)
	ctx := context.Background()
	reader.set("vitalik.eth", c.Now().Add(31*day))
	if err := tracker.Track(ctx, "vitalik.eth"); err != nil {
		t.Fatal(err)
	}
	_, ch := tracker.Subscribe(0)

	poll := func() {
		t.Helper()
		if err := tracker.Poll(ctx); err != nil {
			t.Fatalf("poll failed: %s", err)
		}
	}

	poll()
	if events := drain(ch); len(events) != 0 {
		t.Fatalf("31 days out should not notify, got %v", events)
	}

	c.Advance(2 * day) // 29 days left
	poll()
	poll()
	events := drain(ch)
	if len(events) != 1 || events[0].Kind != EventExpiring || events[0].Threshold != 30*day {
		t.Fatalf("expected one 30 day event, got %+v", events)
	}

	c.Advance(23 * day) // 6 days left, 14 and 7 crossed together
	poll()
	poll()
	events = drain(ch)
	if len(events) != 1 || events[0].Threshold != 7*day {
		t.Fatalf("expected one 7 day event, got %+v", events)
	}

	records, _ := tracker.Records(ctx)
	if len(records[0].Notified) != 3 {
		t.Fatalf("30, 14 and 7 days should be marked, got %v", records[0].Notified)
	}
}

func TestExpiredIsEmittedEveryPoll(t *testing.T) {
	tracker, reader, c := newTestTracker(t)
	ctx := context.Background()
	reader.set("gone.eth", c.Now().Add(-time.Hour))
	tracker.Track(ctx, "gone.eth")
	_, ch := tracker.Subscribe(0)

	for i := 0; i < 3; i++ {
		tracker.Poll(ctx)
	}
	events := drain(ch)
	if len(events) != 3 {
		t.Fatalf("expected 3 expired events, got %d", len(events))
	}
	for _, e := range events {
		if e.Kind != EventExpired || e.Name != "gone.eth" || e.Remaining > 0 {
			t.Fatalf("unexpected event %+v", e)
		}
	}
	if events[0].ID == events[1].ID {
		t.Fatalf("events need distinct ids")
	}
}

func TestMarkRenewed(t *testing.T) {
	tracker, reader, c := newTestTracker(t)
	ctx := context.Background()
	reader.set("renew.eth", c.Now().Add(5*day))
	tracker.Track(ctx, "renew.eth")
	_, ch := tracker.Subscribe(0)

	tracker.Poll(ctx)
	if events := drain(ch); len(events) != 1 || events[0].Threshold != 7*day {
		t.Fatalf("expected a 7 day event, got %+v", events)
	}

	// renewed for a year, nothing is due anymore
	reader.set("renew.eth", c.Now().Add(365*day))
	if err := tracker.MarkRenewed(ctx, "RENEW.eth"); err != nil {
		t.Fatalf("MarkRenewed failed: %s", err)
	}
	if events := drain(ch); len(events) != 0 {
		t.Fatalf("renewed name should be quiet, got %+v", events)
	}
	records, _ := tracker.Records(ctx)
	if len(records[0].Notified) != 0 || !records[0].ExpiresAt.Equal(c.Now().Add(365*day)) {
		t.Fatalf("unexpected record after renewal %+v", records[0])
	}

	c.Advance(340 * day)
	tracker.Poll(ctx)
	if events := drain(ch); len(events) != 1 || events[0].Threshold != 30*day {
		t.Fatalf("thresholds should fire again after renewal, got %+v", events)
	}
}

func TestUnknownExpiryAndReadErrors(t *testing.T) {
	tracker, reader, c := newTestTracker(t)
	ctx := context.Background()
	tracker.Track(ctx, "mystery.eth")
	_, ch := tracker.Subscribe(0)

	tracker.Poll(ctx)
	records, _ := tracker.Records(ctx)
	if records[0].Known() {
		t.Fatalf("expiry should be unknown")
	}

	reader.set("mystery.eth", c.Now().Add(2*day))
	tracker.Poll(ctx)
	if events := drain(ch); len(events) != 1 || events[0].Threshold != 3*day {
		t.Fatalf("expected a 3 day event, got %+v", events)
	}

	// a failing read keeps the last known expiry
	reader.err = errors.New("node down")
	c.Advance(36 * time.Hour)
	tracker.Poll(ctx)
	if events := drain(ch); len(events) != 1 || events[0].Threshold != day {
		t.Fatalf("expected a 1 day event from the stored expiry, got %+v", events)
	}
}

func TestTrackUntrack(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	ctx := context.Background()
	if err := tracker.Track(ctx, "x"); !errors.Is(err, namehash.ErrInvalidName) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	for _, name := range []string{"Alice.eth", "alice.eth"} {
		if err := tracker.Track(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	records, _ := tracker.Records(ctx)
	if len(records) != 1 || records[0].Name != "alice.eth" {
		t.Fatalf("unexpected records %+v", records)
	}
	if err := tracker.Untrack(ctx, "alice.eth"); err != nil {
		t.Fatal(err)
	}
	if err := tracker.Untrack(ctx, "alice.eth"); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}
	if err := tracker.MarkRenewed(ctx, "bob.eth"); !errors.Is(err, ErrNotTracked) {
		t.Fatalf("expected ErrNotTracked, got %v", err)
	}
}

// gatedReader blocks every read until release is closed.
type gatedReader struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
	expiry  time.Time
}

func (g *gatedReader) Expiry(ctx context.Context, name string) (time.Time, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.expiry, nil
}

func TestUntrackDuringPoll(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	reader := &gatedReader{
		entered: make(chan struct{}),
		release: make(chan struct{}),
		expiry:  now.Add(60 * day),
	}
	tracker := NewTracker(reader, Config{Now: func() time.Time { return now }})
	ctx := context.Background()
	if err := tracker.Track(ctx, "vitalik.eth"); err != nil {
		t.Fatal(err)
	}

	polled := make(chan error, 1)
	go func() { polled <- tracker.Poll(ctx) }()
	<-reader.entered

	untracked := make(chan error, 1)
	go func() { untracked <- tracker.Untrack(ctx, "vitalik.eth") }()
	time.Sleep(20 * time.Millisecond)
	close(reader.release)

	if err := <-polled; err != nil {
		t.Fatalf("poll failed: %s", err)
	}
	if err := <-untracked; err != nil {
		t.Fatalf("untrack failed: %s", err)
	}
	records, err := tracker.Records(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 0 {
		t.Fatalf("untracked name is back after the poll: %+v", records)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	tracker, _, _ := newTestTracker(t)
	id, ch := tracker.Subscribe(1)
	tracker.Unsubscribe(id)
	if _, open := <-ch; open {
		t.Fatalf("channel should be closed")
	}
	tracker.Unsubscribe(id)
}

func TestSortThresholds(t *testing.T) {
	got := sortThresholds([]time.Duration{day, 7 * day, -day, 0, 7 * day, 30 * day})
	expected := []time.Duration{30 * day, 7 * day, day}
	if len(got) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, got)
	}
	for i := range got {
		if got[i] != expected[i] {
			t.Fatalf("expected %v, got %v", expected, got)
		}
	}
}

func TestStartStop(t *testing.T) {
	tracker, reader, c := newTestTracker(t)
	reader.set("loop.eth", c.Now().Add(-time.Hour))
	tracker.Track(context.Background(), "loop.eth")
	_, ch := tracker.Subscribe(0)

	tracker.Start()
	tracker.Start()
	select {
	case e := <-ch:
		if e.Kind != EventExpired {
			t.Fatalf("unexpected event %+v", e)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Start should poll right away")
	}
	tracker.Stop()
	tracker.Stop()
}
