package resolvers

import (
	"context"
	"testing"

	"github.com/tranvictor/uns/db"
)

func newTestBook(t *testing.T) *db.AddressBook {
	t.Helper()
	book := db.NewAddressBook()
	for name, addr := range map[string]string{
		"treasury.team": vitalik,
		"trading.desk":  ownerAddr,
	} {
		if err := book.Register(name, addr); err != nil {
			t.Fatal(err)
		}
	}
	return book
}

func TestCustomResolver(t *testing.T) {
	r := NewCustomResolver("", newTestBook(t))
	if r.ID() != CustomID {
		t.Fatalf("unexpected id %s", r.ID())
	}
	if !r.CanResolve("Treasury.Team") || r.CanResolve("unknown.team") {
		t.Fatalf("unexpected CanResolve answers")
	}
	res, err := r.Resolve(context.Background(), "treasury.team", ResolveOptions{ChainID: 10})
	if err != nil || res == nil || res.Address != vitalik || res.ChainID != 10 {
		t.Fatalf("unexpected result %+v, %v", res, err)
	}
	name, err := r.ReverseResolve(context.Background(), ownerAddr, 0)
	if err != nil || name != "trading.desk" {
		t.Fatalf("unexpected reverse %q, %v", name, err)
	}
	if got := r.Suggest("tre", 5); len(got) == 0 || got[0] != "treasury.team" {
		t.Fatalf("unexpected suggestions %v", got)
	}
}

func TestCustomResolverTLDFilter(t *testing.T) {
	r := NewCustomResolver("team", newTestBook(t), "team")
	if r.CanResolve("trading.desk") {
		t.Fatalf("desk names are outside the team TLD")
	}
	res, err := r.Resolve(context.Background(), "trading.desk", ResolveOptions{})
	if err != nil || res != nil {
		t.Fatalf("expected nil outside TLD, got %+v", res)
	}
}

func TestCustomResolverNonEVMCoin(t *testing.T) {
	r := NewCustomResolver("", newTestBook(t))
	for _, coin := range []uint32{0, 501, 784} {
		res, err := r.Resolve(context.Background(), "treasury.team", ResolveOptions{CoinType: CoinType(coin)})
		if err != nil || res != nil {
			t.Fatalf("coin %d: expected not found, got %+v, %v", coin, res, err)
		}
	}
	res, err := r.Resolve(context.Background(), "treasury.team", ResolveOptions{CoinType: CoinType(60)})
	if err != nil || res == nil || res.Address != vitalik {
		t.Fatalf("unexpected ETH result %+v, %v", res, err)
	}
}
