// Package resolvers holds the Resolver capability and one implementation per
// naming protocol. Every implementation reports "not found" as a nil result
// with a nil error; errors are reserved for transport and protocol failures.
package resolvers

import (
	"context"
	"strings"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
)

type ResolveOptions struct {
	// ChainID selects the chain whose address is wanted. 0 means the
	// resolver's home chain.
	ChainID uint64
	// CoinType overrides the SLIP-0044 coin type. nil means 60 (or the
	// ENSIP-11 coin type of ChainID when one is given).
	CoinType *uint32
}

// CoinTypeOf returns the coin type a lookup should ask for.
func (o ResolveOptions) CoinTypeOf() uint32 {
	if o.CoinType != nil {
		return *o.CoinType
	}
	return unscommon.EVMCoinType(o.ChainID)
}

func CoinType(ct uint32) *uint32 {
	return &ct
}

type Resolver interface {
	ID() string
	SupportedTLDs() []string
	SupportedChainIDs() []uint64
	SupportsReverse() bool
	// CanResolve is a syntactic pre-filter only.
	CanResolve(name string) bool

	Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error)
	ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error)
	GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error)
}

// TextResolver is implemented by resolvers that can read a single text
// record without fetching every record.
type TextResolver interface {
	Text(ctx context.Context, name, key string) (string, error)
}

// DefaultTextKeys are fetched by GetRecords.
var DefaultTextKeys = []string{
	"avatar",
	"description",
	"display",
	"email",
	"url",
	"com.twitter",
	"com.github",
	"com.discord",
	"org.telegram",
}

// DefaultRecordCoins are the coin types fetched by GetRecords.
var DefaultRecordCoins = []uint32{
	unscommon.CoinTypeETH,
	unscommon.CoinTypeBTC,
	unscommon.CoinTypeSOL,
}

func hasTLD(name string, tlds []string) bool {
	tld := namehash.TLD(namehash.Fold(name))
	if tld == "" {
		return false
	}
	for _, t := range tlds {
		if t == tld {
			return true
		}
	}
	return false
}

func sameAddress(a, b string) bool {
	return unscommon.AddressKey(a) == unscommon.AddressKey(b)
}

func isEmptyAddress(addr string) bool {
	addr = strings.TrimSpace(addr)
	return addr == "" || sameAddress(addr, unscommon.ZeroAddress)
}
