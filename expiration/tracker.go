// Package expiration watches registration expiry of names and notifies
// subscribers when a name gets close to, or past, its expiry.
package expiration

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tranvictor/uns/namehash"
)

const (
	DEFAULT_POLL_INTERVAL = time.Hour
	DEFAULT_FETCH_WORKERS = 8
	DEFAULT_EVENT_BUFFER  = 32
)

var DefaultThresholds = []time.Duration{
	30 * 24 * time.Hour,
	14 * 24 * time.Hour,
	7 * 24 * time.Hour,
	3 * 24 * time.Hour,
	24 * time.Hour,
}

var ErrNotTracked = errors.New("name is not tracked")

// ExpiryReader returns when a name's registration ends. A zero time means
// the reader does not know.
type ExpiryReader interface {
	Expiry(ctx context.Context, name string) (time.Time, error)
}

type EventKind string

const (
	EventExpiring EventKind = "expiring"
	EventExpired  EventKind = "expired"
)

type Event struct {
	ID        uuid.UUID     `json:"id"`
	Kind      EventKind     `json:"kind"`
	Name      string        `json:"name"`
	ExpiresAt time.Time     `json:"expiresAt"`
	Remaining time.Duration `json:"remaining"`
	// Threshold is the crossed threshold of an expiring event.
	Threshold time.Duration `json:"threshold,omitempty"`
	At        time.Time     `json:"at"`
}

type Config struct {
	PollInterval time.Duration
	Thresholds   []time.Duration
	Store        Store
	// Now defaults to time.Now.
	Now    func() time.Time
	Logger log.Logger
}

type Tracker struct {
	reader     ExpiryReader
	store      Store
	thresholds []time.Duration
	interval   time.Duration
	now        func() time.Time
	l          log.Logger

	// held for the whole of a poll, ticks that find it taken are skipped
	pollMu sync.Mutex

	subsMu sync.Mutex
	subs   map[uuid.UUID]chan Event

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// descending, positive, unique
func sortThresholds(thresholds []time.Duration) []time.Duration {
	seen := map[time.Duration]bool{}
	result := []time.Duration{}
	for _, th := range thresholds {
		if th <= 0 || seen[th] {
			continue
		}
		seen[th] = true
		result = append(result, th)
	}
	sort.Slice(result, func(i, j int) bool { return result[i] > result[j] })
	return result
}

func NewTracker(reader ExpiryReader, cfg Config) *Tracker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DEFAULT_POLL_INTERVAL
	}
	if len(cfg.Thresholds) == 0 {
		cfg.Thresholds = DefaultThresholds
	}
	if cfg.Store == nil {
		cfg.Store = NewMemoryStore()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = log.New("component", "expiration")
	}
	return &Tracker{
		reader:     reader,
		store:      cfg.Store,
		thresholds: sortThresholds(cfg.Thresholds),
		interval:   cfg.PollInterval,
		now:        cfg.Now,
		l:          cfg.Logger,
		subs:       map[uuid.UUID]chan Event{},
	}
}

func (t *Tracker) Thresholds() []time.Duration {
	return append([]time.Duration{}, t.thresholds...)
}

// Track starts watching name. Tracking a tracked name is a no-op.
func (t *Tracker) Track(ctx context.Context, name string) error {
	normalized, err := namehash.Validate(name)
	if err != nil {
		return err
	}
	_, found, err := t.store.Load(ctx, normalized)
	if err != nil {
		return fmt.Errorf("loading %s: %w", normalized, err)
	}
	if found {
		return nil
	}
	return t.store.Save(ctx, Record{Name: normalized, UpdatedAt: t.now()})
}

func (t *Tracker) load(ctx context.Context, name string) (Record, error) {
	r, found, err := t.store.Load(ctx, namehash.Fold(name))
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{}, fmt.Errorf("%w: %s", ErrNotTracked, name)
	}
	return r, nil
}

// Untrack stops watching name. It waits for a running poll so the poll
// can't save the record back.
func (t *Tracker) Untrack(ctx context.Context, name string) error {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()
	r, err := t.load(ctx, name)
	if err != nil {
		return err
	}
	return t.store.Delete(ctx, r.Name)
}

// MarkRenewed forgets which thresholds were notified for name and polls it
// right away, so a renewed name can cross its thresholds again.
func (t *Tracker) MarkRenewed(ctx context.Context, name string) error {
	t.pollMu.Lock()
	defer t.pollMu.Unlock()
	r, err := t.load(ctx, name)
	if err != nil {
		return err
	}
	r.Notified = nil
	if err := t.store.Save(ctx, r); err != nil {
		return err
	}
	return t.poll(ctx, []Record{r})
}

// Records lists every tracked record sorted by name.
func (t *Tracker) Records(ctx context.Context) ([]Record, error) {
	return t.store.List(ctx)
}

// Poll refreshes every tracked name and emits due events. It returns
// immediately when another poll is running.
func (t *Tracker) Poll(ctx context.Context) error {
	if !t.pollMu.TryLock() {
		t.l.Debug("Previous poll still running, skipping")
		return nil
	}
	defer t.pollMu.Unlock()
	records, err := t.store.List(ctx)
	if err != nil {
		return fmt.Errorf("listing tracked names: %w", err)
	}
	return t.poll(ctx, records)
}

// poll expects pollMu to be held.
func (t *Tracker) poll(ctx context.Context, records []Record) error {
	expiries := make([]time.Time, len(records))
	fetched := make([]bool, len(records))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DEFAULT_FETCH_WORKERS)
	for i, r := range records {
		i, r := i, r
		g.Go(func() error {
			expiry, err := t.reader.Expiry(gctx, r.Name)
			if err != nil {
				t.l.Warn("Couldn't read expiry", "name", r.Name, "err", err)
				return nil
			}
			expiries[i] = expiry
			fetched[i] = true
			return nil
		})
	}
	_ = g.Wait()

	errs := []error{}
	now := t.now()
	for i, r := range records {
		if fetched[i] && !expiries[i].IsZero() {
			r.ExpiresAt = expiries[i]
		}
		r.UpdatedAt = now
		for _, e := range t.evaluate(&r, now) {
			t.emit(e)
		}
		if err := t.store.Save(ctx, r); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", r.Name, err))
		}
	}
	return errors.Join(errs...)
}

// evaluate returns the events r is due for at now and records notified
// thresholds on r. Only the tightest newly crossed threshold is reported,
// the wider ones it implies are marked as notified too.
func (t *Tracker) evaluate(r *Record, now time.Time) []Event {
	if !r.Known() {
		return nil
	}
	remaining := r.ExpiresAt.Sub(now)
	if remaining <= 0 {
		return []Event{t.event(EventExpired, *r, remaining, 0, now)}
	}
	tightest := time.Duration(0)
	for _, th := range t.thresholds {
		if remaining <= th {
			tightest = th
		}
	}
	if tightest == 0 {
		return nil
	}
	events := []Event{}
	if !r.notified(tightest) {
		events = append(events, t.event(EventExpiring, *r, remaining, tightest, now))
	}
	for _, th := range t.thresholds {
		if th >= tightest && !r.notified(th) {
			r.Notified = append(r.Notified, th)
		}
	}
	return events
}

func (t *Tracker) event(kind EventKind, r Record, remaining, threshold time.Duration, now time.Time) Event {
	return Event{
		ID:        uuid.New(),
		Kind:      kind,
		Name:      r.Name,
		ExpiresAt: r.ExpiresAt,
		Remaining: remaining,
		Threshold: threshold,
		At:        now,
	}
}

func (t *Tracker) emit(e Event) {
	t.l.Info("Name expiration", "kind", e.Kind, "name", e.Name, "expires", e.ExpiresAt, "threshold", e.Threshold)
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	for id, ch := range t.subs {
		select {
		case ch <- e:
		default:
			t.l.Warn("Subscriber is not keeping up, dropping event", "subscriber", id, "name", e.Name)
		}
	}
}

// Subscribe returns a channel receiving every event from now on. A slow
// subscriber loses events once its buffer is full.
func (t *Tracker) Subscribe(buffer int) (uuid.UUID, <-chan Event) {
	if buffer <= 0 {
		buffer = DEFAULT_EVENT_BUFFER
	}
	id := uuid.New()
	ch := make(chan Event, buffer)
	t.subsMu.Lock()
	t.subs[id] = ch
	t.subsMu.Unlock()
	return id, ch
}

func (t *Tracker) Unsubscribe(id uuid.UUID) {
	t.subsMu.Lock()
	defer t.subsMu.Unlock()
	if ch, found := t.subs[id]; found {
		delete(t.subs, id)
		close(ch)
	}
}

// Start polls once, then every poll interval until Stop.
func (t *Tracker) Start() {
	t.runMu.Lock()
	defer t.runMu.Unlock()
	if t.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.cancel = cancel
	t.done = make(chan struct{})
	go t.loop(ctx, t.done)
}

func (t *Tracker) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		if err := t.Poll(ctx); err != nil {
			t.l.Warn("Poll failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop ends the poll loop and waits for a running poll to return.
func (t *Tracker) Stop() {
	t.runMu.Lock()
	cancel, done := t.cancel, t.done
	t.cancel, t.done = nil, nil
	t.runMu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}
