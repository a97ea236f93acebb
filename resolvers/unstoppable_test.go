package resolvers

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/util/reader/readertest"
)

type unsFixture struct {
	chain   *readertest.Chain
	owners  map[common.Hash]common.Address
	records map[common.Hash]map[string]string
	reverse map[common.Address]string
}

func newUNSFixture(t *testing.T, proxy string) *unsFixture {
	t.Helper()
	f := &unsFixture{
		chain:   readertest.NewChain(),
		owners:  map[common.Hash]common.Address{},
		records: map[common.Hash]map[string]string{},
		reverse: map[common.Address]string{},
	}
	f.chain.Handle(proxy, unscommon.GetUNSProxyReaderABI(), "getData", func(args []interface{}) ([]interface{}, error) {
		keys := args[0].([]string)
		token := common.BigToHash(args[1].(*big.Int))
		values := make([]string, len(keys))
		for i, k := range keys {
			values[i] = f.records[token][k]
		}
		return []interface{}{common.Address{}, f.owners[token], values}, nil
	})
	f.chain.Handle(proxy, unscommon.GetUNSProxyReaderABI(), "reverseNameOf", func(args []interface{}) ([]interface{}, error) {
		return []interface{}{f.reverse[args[0].(common.Address)]}, nil
	})
	return f
}

func (f *unsFixture) set(name string, records map[string]string) {
	token := namehash.NameHash(name)
	f.owners[token] = common.HexToAddress(ownerAddr)
	f.records[token] = records
}

func newTestUnstoppable(t *testing.T) (*UnstoppableResolver, *unsFixture, *unsFixture) {
	l1 := newUNSFixture(t, UNSProxyReaderMainnet)
	l2 := newUNSFixture(t, UNSProxyReaderPolygon)
	return NewUnstoppable(l1.chain, l2.chain), l1, l2
}

func TestUnstoppableResolve(t *testing.T) {
	r, l1, l2 := newTestUnstoppable(t)
	l1.set("brad.crypto", map[string]string{"crypto.ETH.address": vitalik})
	l2.set("alice.nft", map[string]string{
		"crypto.ETH.address":                 ownerAddr,
		"crypto.MATIC.version.MATIC.address": vitalik,
	})

	res, err := r.Resolve(context.Background(), "brad.crypto", ResolveOptions{})
	if err != nil || res == nil || res.Address != vitalik || res.ChainID != 1 {
		t.Fatalf("unexpected L1 result %+v, %v", res, err)
	}
	res, err = r.Resolve(context.Background(), "alice.nft", ResolveOptions{})
	if err != nil || res == nil || res.Address != ownerAddr || res.ChainID != 137 {
		t.Fatalf("unexpected L2 result %+v, %v", res, err)
	}
	res, err = r.Resolve(context.Background(), "alice.nft", ResolveOptions{ChainID: 137})
	if err != nil || res == nil || res.Address != vitalik {
		t.Fatalf("expected the MATIC record for chain 137, got %+v, %v", res, err)
	}
	res, err = r.Resolve(context.Background(), "nobody.crypto", ResolveOptions{})
	if err != nil || res != nil {
		t.Fatalf("expected nil for unknown name, got %+v, %v", res, err)
	}
}

func TestUnstoppableRecords(t *testing.T) {
	r, l1, _ := newTestUnstoppable(t)
	l1.set("brad.crypto", map[string]string{
		"crypto.ETH.address":      vitalik,
		"crypto.BTC.address":      "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"social.twitter.username": "brad",
		"social.picture.value":    "https://example.com/brad.png",
	})

	records, err := r.GetRecords(context.Background(), "brad.crypto")
	if err != nil || records == nil {
		t.Fatalf("GetRecords failed: %+v, %v", records, err)
	}
	if records.Addresses[unscommon.CoinTypeBTC] != "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh" {
		t.Fatalf("unexpected addresses %v", records.Addresses)
	}
	if records.Texts["com.twitter"] != "brad" || records.Avatar != "https://example.com/brad.png" {
		t.Fatalf("unexpected texts %v", records.Texts)
	}
	value, err := r.Text(context.Background(), "brad.crypto", "com.twitter")
	if err != nil || value != "brad" {
		t.Fatalf("expected twitter text, got %q, %v", value, err)
	}
}

func TestUnstoppableReverse(t *testing.T) {
	r, _, l2 := newTestUnstoppable(t)
	l2.reverse[common.HexToAddress(vitalik)] = "alice.nft"

	name, err := r.ReverseResolve(context.Background(), vitalik, 0)
	if err != nil || name != "alice.nft" {
		t.Fatalf("expected alice.nft, got %q, %v", name, err)
	}
	name, err = r.ReverseResolve(context.Background(), vitalik, 1)
	if err != nil || name != "" {
		t.Fatalf("chain 1 has no reverse record, got %q, %v", name, err)
	}
}

func TestUnstoppableUnknownCoinIsNotFound(t *testing.T) {
	r, l1, _ := newTestUnstoppable(t)
	l1.set("brad.crypto", map[string]string{"crypto.ETH.address": vitalik})

	for _, coin := range []uint32{2, unscommon.CoinTypeSUI} {
		res, err := r.Resolve(context.Background(), "brad.crypto", ResolveOptions{CoinType: CoinType(coin)})
		if err != nil || res != nil {
			t.Fatalf("coin %d: expected not found, got %+v, %v", coin, res, err)
		}
	}
	res, err := r.Resolve(context.Background(), "brad.crypto", ResolveOptions{CoinType: CoinType(unscommon.EVMCoinType(100))})
	if err != nil || res == nil || res.Address != vitalik {
		t.Fatalf("EVM coin should fall back to the ETH record, got %+v, %v", res, err)
	}
}
