package cache_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/mclock"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/util/cache"
)

func newTestCache(clock *mclock.Simulated, maxSize int) *cache.NameCache {
	return cache.NewNameCache(cache.Config{
		MaxSize:         maxSize,
		ForwardTTL:      time.Minute,
		ReverseTTL:      time.Minute,
		RecordsTTL:      time.Minute,
		CleanupInterval: 10 * time.Second,
		Clock:           clock,
	})
}

func result(name, addr string) unscommon.ResolutionResult {
	return unscommon.ResolutionResult{Address: addr, Name: name, ResolverUsed: "ens"}
}

func TestForwardHitBeforeExpiry(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.SetForward("vitalik.eth", result("vitalik.eth", "0x1"))

	clock.Run(30 * time.Second)
	got, ok := c.GetForward("VITALIK.eth ")
	if !ok {
		t.Fatalf("expected a hit before expiry")
	}
	if got.Address != "0x1" {
		t.Fatalf("address = %q, want 0x1", got.Address)
	}
	stats := c.Stats()
	if stats.ForwardSize != 1 {
		t.Fatalf("a read must not change the size, got %d", stats.ForwardSize)
	}
	if stats.Hits != 1 || stats.Misses != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestZeroTTLExpiresOnceClockAdvances(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.SetForwardWithTTL("alice.eth", result("alice.eth", "0x2"), 0)

	clock.Run(time.Millisecond)
	if _, ok := c.GetForward("alice.eth"); ok {
		t.Fatalf("expected a miss for an expired entry")
	}
	stats := c.Stats()
	if stats.Misses != 1 || stats.Expirations != 1 {
		t.Fatalf("expired read must count as miss and expiration, got %+v", stats)
	}
	if stats.ForwardSize != 0 {
		t.Fatalf("expired entry must be removed lazily, size = %d", stats.ForwardSize)
	}
}

func TestEvictsOldestInsertion(t *testing.T) {
	clock := &mclock.Simulated{}
	maxSize := 3
	c := newTestCache(clock, maxSize)
	for i := 0; i < maxSize; i++ {
		c.SetForward(fmt.Sprintf("name%d.eth", i), result("", fmt.Sprintf("0x%d", i)))
		clock.Run(time.Second)
	}
	// reading the oldest entry must not save it from eviction
	if _, ok := c.GetForward("name0.eth"); !ok {
		t.Fatalf("expected name0.eth to be cached")
	}
	c.SetForward("name3.eth", result("", "0x3"))

	stats := c.Stats()
	if stats.ForwardSize != maxSize {
		t.Fatalf("size = %d, want %d", stats.ForwardSize, maxSize)
	}
	if stats.Evictions != 1 {
		t.Fatalf("evictions = %d, want 1", stats.Evictions)
	}
	if _, ok := c.GetForward("name0.eth"); ok {
		t.Fatalf("name0.eth was inserted first and should have been evicted")
	}
	for _, name := range []string{"name1.eth", "name2.eth", "name3.eth"} {
		if _, ok := c.GetForward(name); !ok {
			t.Errorf("%s should still be cached", name)
		}
	}
}

func TestOverwriteDoesNotEvict(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 2)
	c.SetForward("a.eth", result("", "0x1"))
	c.SetForward("b.eth", result("", "0x2"))
	c.SetForward("a.eth", result("", "0x3"))
	if stats := c.Stats(); stats.Evictions != 0 || stats.ForwardSize != 2 {
		t.Fatalf("unexpected stats after overwrite %+v", stats)
	}
	// a.eth was re-inserted so b.eth is now the oldest
	c.SetForward("c.eth", result("", "0x4"))
	if _, ok := c.GetForward("b.eth"); ok {
		t.Fatalf("b.eth should have been evicted")
	}
	if got, _ := c.GetForward("a.eth"); got.Address != "0x3" {
		t.Fatalf("a.eth = %q, want 0x3", got.Address)
	}
}

func TestReverseKeyNormalization(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.SetReverse("0xD8dA6BF26964aF9D7eEd9e03E53415D37aA96045", "vitalik.eth")

	for _, addr := range []string{
		"0xd8da6bf26964af9d7eed9e03e53415d37aa96045",
		"d8da6bf26964af9d7eed9e03e53415d37aa96045",
		"D8DA6BF26964AF9D7EED9E03E53415D37AA96045",
	} {
		name, ok := c.GetReverse(addr)
		if !ok || name != "vitalik.eth" {
			t.Errorf("GetReverse(%s) = %q, %v", addr, name, ok)
		}
	}
}

func TestSubCachesAreIndependent(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 1)
	c.SetForward("a.eth", result("", "0x1"))
	c.SetReverse("0x1", "a.eth")
	records := unscommon.NewNameRecords()
	records.Texts["url"] = "https://a.example"
	c.SetRecords("a.eth", *records)

	stats := c.Stats()
	if stats.ForwardSize != 1 || stats.ReverseSize != 1 || stats.RecordsSize != 1 || stats.Evictions != 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	c.ClearForward()
	if _, ok := c.GetRecords("a.eth"); !ok {
		t.Fatalf("clearing forward must not touch records")
	}
	if _, ok := c.GetReverse("0x1"); !ok {
		t.Fatalf("clearing forward must not touch reverse")
	}
}

func TestCachedValuesAreCopies(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	records := unscommon.NewNameRecords()
	records.Texts["url"] = "https://a.example"
	c.SetRecords("a.eth", *records)
	records.Texts["url"] = "mutated"

	got, _ := c.GetRecords("a.eth")
	got.Texts["email"] = "x@y.z"
	again, _ := c.GetRecords("a.eth")
	if again.Texts["url"] != "https://a.example" {
		t.Fatalf("cache shares the caller's map: %q", again.Texts["url"])
	}
	if _, ok := again.Texts["email"]; ok {
		t.Fatalf("cache shares the returned map")
	}
}

func TestSweepRemovesExpiredEntries(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.SetForward("a.eth", result("", "0x1"))
	c.SetReverseWithTTL("0x1", "a.eth", time.Hour)
	c.SetRecords("a.eth", *unscommon.NewNameRecords())

	clock.Run(2 * time.Minute)
	if removed := c.Sweep(); removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}
	stats := c.Stats()
	if stats.ForwardSize != 0 || stats.RecordsSize != 0 || stats.ReverseSize != 1 {
		t.Fatalf("unexpected sizes %+v", stats)
	}
	if stats.Expirations != 2 {
		t.Fatalf("expirations = %d, want 2", stats.Expirations)
	}
}

func TestBackgroundSweep(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.Start()
	defer c.Close()

	c.SetForward("a.eth", result("", "0x1"))
	clock.WaitForTimers(1)
	clock.Run(2 * time.Minute)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c.Stats().ForwardSize == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("background sweep did not remove the expired entry")
}

func TestHitRateAndReset(t *testing.T) {
	clock := &mclock.Simulated{}
	c := newTestCache(clock, 10)
	c.SetForward("a.eth", result("", "0x1"))
	c.GetForward("a.eth")
	c.GetForward("a.eth")
	c.GetForward("a.eth")
	c.GetForward("missing.eth")

	if rate := c.Stats().HitRate(); rate != 0.75 {
		t.Fatalf("hit rate = %v, want 0.75", rate)
	}
	c.ResetStats()
	if stats := c.Stats(); stats.Hits != 0 || stats.Misses != 0 || stats.HitRate() != 0 {
		t.Fatalf("stats not reset: %+v", stats)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := cache.NewNameCache(cache.DefaultConfig())
	c.Start()
	c.Close()
	c.Close()
}
