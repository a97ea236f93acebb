package resolvers

import (
	"context"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/rpc"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
)

const (
	SuiNSID = "suins"

	SuiNSTLD         = "sui"
	DefaultSuiRPCURL = "https://fullnode.mainnet.sui.io:443"
)

// SuiRPC is the part of a JSON-RPC client SuiNS needs. *rpc.Client
// satisfies it.
type SuiRPC interface {
	CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error
}

type suiNamesPage struct {
	Data        []string `json:"data"`
	NextCursor  *string  `json:"nextCursor"`
	HasNextPage bool     `json:"hasNextPage"`
}

// SuiNSResolver resolves .sui names with the Sui full node name service
// JSON-RPC methods.
type SuiNSResolver struct {
	client SuiRPC
}

func NewSuiNSResolver(client SuiRPC) *SuiNSResolver {
	return &SuiNSResolver{client: client}
}

// DialSuiNS dials url, or the Sui mainnet full node when url is empty.
func DialSuiNS(ctx context.Context, url string) (*SuiNSResolver, error) {
	if url == "" {
		url = DefaultSuiRPCURL
	}
	client, err := rpc.DialContext(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("couldn't connect to sui node: %w", err)
	}
	return NewSuiNSResolver(client), nil
}

func (r *SuiNSResolver) ID() string                  { return SuiNSID }
func (r *SuiNSResolver) SupportedTLDs() []string     { return []string{SuiNSTLD} }
func (r *SuiNSResolver) SupportedChainIDs() []uint64 { return nil }
func (r *SuiNSResolver) SupportsReverse() bool       { return true }

func (r *SuiNSResolver) CanResolve(name string) bool {
	return hasTLD(name, []string{SuiNSTLD})
}

func (r *SuiNSResolver) address(ctx context.Context, name string) (string, error) {
	var addr *string
	if err := r.client.CallContext(ctx, &addr, "suix_resolveNameServiceAddress", namehash.Fold(name)); err != nil {
		return "", fmt.Errorf("resolving %s: %w", name, err)
	}
	if addr == nil {
		return "", nil
	}
	return *addr, nil
}

func (r *SuiNSResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	if opts.CoinType != nil && *opts.CoinType != unscommon.CoinTypeSUI {
		return nil, nil
	}
	addr, err := r.address(ctx, name)
	if err != nil || addr == "" {
		return nil, err
	}
	return &unscommon.ResolutionResult{
		Address:      addr,
		ResolverUsed: SuiNSID,
		Name:         namehash.Fold(name),
		Metadata: map[string]any{
			"coinType": unscommon.CoinTypeSUI,
		},
	}, nil
}

// ReverseResolve returns the first name the address owns. Sui addresses
// are 32 byte hex strings.
func (r *SuiNSResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	address = unscommon.AddressKey(address)
	if !unscommon.IsHexString(address) || len(address) != 66 {
		return "", nil
	}
	page := suiNamesPage{}
	if err := r.client.CallContext(ctx, &page, "suix_resolveNameServiceNames", address, nil, 1); err != nil {
		return "", fmt.Errorf("reverse resolving %s: %w", address, err)
	}
	if len(page.Data) == 0 {
		return "", nil
	}
	return strings.ToLower(page.Data[0]), nil
}

func (r *SuiNSResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	addr, err := r.address(ctx, name)
	if err != nil || addr == "" {
		return nil, err
	}
	records := unscommon.NewNameRecords()
	records.Addresses[unscommon.CoinTypeSUI] = addr
	return records, nil
}
