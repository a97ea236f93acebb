package resolvers

import (
	"context"
	"sort"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/util/reader"
)

const (
	SpaceIDID = "spaceid"

	SpaceIDBSCRegistry      = "0x08CEd32a7f3eeC915Ba84415e9C07a7286977956"
	SpaceIDArbitrumRegistry = "0x4a067EE58e73ac5E4a43722E008DFdf65B2bF348"
)

// SpaceIDResolver serves SPACE ID names. Each TLD lives on its own chain
// behind an ENS compatible registry.
type SpaceIDResolver struct {
	byTLD map[string]*ENSResolver
	tlds  []string
	order []*ENSResolver
}

// NewSpaceIDResolver takes one ENS style deployment per TLD.
func NewSpaceIDResolver(deployments map[string]*ENSResolver) *SpaceIDResolver {
	r := &SpaceIDResolver{byTLD: map[string]*ENSResolver{}}
	for tld, d := range deployments {
		r.byTLD[tld] = d
		r.tlds = append(r.tlds, tld)
	}
	sort.Strings(r.tlds)
	for _, tld := range r.tlds {
		r.order = append(r.order, r.byTLD[tld])
	}
	return r
}

// NewSpaceID wires .bnb on BNB Chain and .arb on Arbitrum.
func NewSpaceID(bsc, arbitrum reader.ContractCaller) *SpaceIDResolver {
	return NewSpaceIDResolver(map[string]*ENSResolver{
		"bnb": NewENSResolver(bsc, ENSConfig{
			ID:            SpaceIDID,
			TLDs:          []string{"bnb"},
			ChainIDs:      []uint64{networks.BSCMainnet.GetChainID()},
			Registry:      SpaceIDBSCRegistry,
			Multicall:     networks.BSCMainnet.MultiCallContract(),
			VerifyReverse: true,
		}),
		"arb": NewENSResolver(arbitrum, ENSConfig{
			ID:            SpaceIDID,
			TLDs:          []string{"arb"},
			ChainIDs:      []uint64{networks.ArbitrumMainnet.GetChainID()},
			Registry:      SpaceIDArbitrumRegistry,
			Multicall:     networks.ArbitrumMainnet.MultiCallContract(),
			VerifyReverse: true,
		}),
	})
}

func (r *SpaceIDResolver) ID() string              { return SpaceIDID }
func (r *SpaceIDResolver) SupportedTLDs() []string { return r.tlds }
func (r *SpaceIDResolver) SupportsReverse() bool   { return true }

func (r *SpaceIDResolver) SupportedChainIDs() []uint64 {
	result := []uint64{}
	for _, d := range r.order {
		result = append(result, d.SupportedChainIDs()...)
	}
	return result
}

func (r *SpaceIDResolver) CanResolve(name string) bool {
	return hasTLD(name, r.tlds)
}

func (r *SpaceIDResolver) deployment(name string) *ENSResolver {
	return r.byTLD[namehash.TLD(namehash.Fold(name))]
}

func (r *SpaceIDResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	d := r.deployment(name)
	if d == nil {
		return nil, nil
	}
	return d.Resolve(ctx, name, opts)
}

// ReverseResolve asks the deployment on chainID, or every deployment in
// TLD order when chainID is 0.
func (r *SpaceIDResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	for _, d := range r.order {
		if chainID != 0 && d.homeChain() != chainID {
			continue
		}
		name, err := d.ReverseResolve(ctx, address, chainID)
		if err != nil {
			return "", err
		}
		if name != "" {
			return name, nil
		}
	}
	return "", nil
}

func (r *SpaceIDResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	d := r.deployment(name)
	if d == nil {
		return nil, nil
	}
	return d.GetRecords(ctx, name)
}

func (r *SpaceIDResolver) Text(ctx context.Context, name, key string) (string, error) {
	d := r.deployment(name)
	if d == nil {
		return "", nil
	}
	return d.Text(ctx, name, key)
}
