package resolvers

import (
	"context"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/db"
	"github.com/tranvictor/uns/namehash"
)

const CustomID = "custom"

// CustomResolver answers from a local address book. With no TLDs it
// accepts any name the book knows.
type CustomResolver struct {
	id   string
	book *db.AddressBook
	tlds []string
}

func NewCustomResolver(id string, book *db.AddressBook, tlds ...string) *CustomResolver {
	if id == "" {
		id = CustomID
	}
	if book == nil {
		book = db.NewAddressBook()
	}
	return &CustomResolver{id: id, book: book, tlds: tlds}
}

func (r *CustomResolver) ID() string                  { return r.id }
func (r *CustomResolver) SupportedTLDs() []string     { return r.tlds }
func (r *CustomResolver) SupportedChainIDs() []uint64 { return nil }
func (r *CustomResolver) SupportsReverse() bool       { return true }

func (r *CustomResolver) Book() *db.AddressBook { return r.book }

func (r *CustomResolver) CanResolve(name string) bool {
	if len(r.tlds) > 0 && !hasTLD(name, r.tlds) {
		return false
	}
	_, found := r.book.Address(name)
	return found
}

func (r *CustomResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	if len(r.tlds) > 0 && !hasTLD(name, r.tlds) {
		return nil, nil
	}
	addr, found := r.book.Address(name)
	if !found {
		return nil, nil
	}
	// a hex entry is an EVM address and has nothing for other coins
	if opts.CoinType != nil && !isEVMCoin(*opts.CoinType) && unscommon.IsHexAddress(addr) {
		return nil, nil
	}
	return &unscommon.ResolutionResult{
		Address:      addr,
		ResolverUsed: r.id,
		Name:         namehash.Fold(name),
		ChainID:      opts.ChainID,
	}, nil
}

func (r *CustomResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	name, _ := r.book.Name(address)
	return name, nil
}

func (r *CustomResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	addr, found := r.book.Address(name)
	if !found {
		return nil, nil
	}
	records := unscommon.NewNameRecords()
	records.Addresses[unscommon.CoinTypeETH] = addr
	return records, nil
}

// Suggest returns up to limit book names fuzzy matching prefix.
func (r *CustomResolver) Suggest(prefix string, limit int) []string {
	result := []string{}
	for _, m := range r.book.Search(prefix, limit) {
		result = append(result, m.Desc)
	}
	return result
}
