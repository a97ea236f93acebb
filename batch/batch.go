// Package batch resolves many ENS style names, reverse records or text
// records with a fixed number of Multicall3 round trips per chunk.
package batch

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/resolvers"
	"github.com/tranvictor/uns/util/reader"
)

const DEFAULT_MAX_BATCH_SIZE = 50

type Config struct {
	MaxBatchSize int
	ResolverID   string
	TLDs         []string
	ChainID      uint64
	Registry     string
	Multicall    string
}

type Resolver struct {
	caller reader.ContractCaller
	cfg    Config
	l      log.Logger
}

func New(caller reader.ContractCaller, cfg Config) *Resolver {
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = DEFAULT_MAX_BATCH_SIZE
	}
	return &Resolver{
		caller: caller,
		cfg:    cfg,
		l:      log.New("component", "batch", "resolver", cfg.ResolverID),
	}
}

// NewForENS batches against the same deployment r reads from.
func NewForENS(r *resolvers.ENSResolver, maxBatchSize int) *Resolver {
	chainID := uint64(1)
	if ids := r.SupportedChainIDs(); len(ids) > 0 {
		chainID = ids[0]
	}
	return New(r.Caller(), Config{
		MaxBatchSize: maxBatchSize,
		ResolverID:   r.ID(),
		TLDs:         r.SupportedTLDs(),
		ChainID:      chainID,
		Registry:     r.Registry(),
		Multicall:    r.MulticallAddress(),
	})
}

func (b *Resolver) ResolverID() string { return b.cfg.ResolverID }
func (b *Resolver) ChainID() uint64    { return b.cfg.ChainID }
func (b *Resolver) MaxBatchSize() int  { return b.cfg.MaxBatchSize }

// CanBatch reports whether name belongs to the batched deployment.
func (b *Resolver) CanBatch(name string) bool {
	tld := namehash.TLD(namehash.Fold(name))
	for _, t := range b.cfg.TLDs {
		if t == tld {
			return true
		}
	}
	return false
}

func chunks(items []string, size int) [][]string {
	result := [][]string{}
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		result = append(result, items[start:end])
	}
	return result
}

// resolversOf looks up the resolver contract of every node in one round
// trip. Nodes without a resolver map to the zero address.
func (b *Resolver) resolversOf(ctx context.Context, nodes []common.Hash) ([]common.Address, error) {
	result := make([]common.Address, len(nodes))
	mc := reader.NewMultiCall(b.caller, b.cfg.Multicall)
	for i, node := range nodes {
		mc.Register(&result[i], b.cfg.Registry, unscommon.GetENSRegistryABI(), "resolver", node)
	}
	if err := mc.Do(ctx); err != nil {
		return nil, err
	}
	for i := range result {
		if !mc.OK(i) {
			result[i] = common.Address{}
		}
	}
	return result, nil
}

// ResolveMany returns the ETH address of every name. Names that are not
// found, or whose sub call failed, map to "". An error means a whole round
// trip failed and no result is reliable.
func (b *Resolver) ResolveMany(ctx context.Context, names []string) (map[string]string, error) {
	result := make(map[string]string, len(names))
	for _, chunk := range chunks(names, b.cfg.MaxBatchSize) {
		if err := b.resolveChunk(ctx, chunk, result); err != nil {
			return nil, fmt.Errorf("batch resolving %d names: %w", len(names), err)
		}
	}
	return result, nil
}

func (b *Resolver) resolveChunk(ctx context.Context, names []string, result map[string]string) error {
	nodes := make([]common.Hash, len(names))
	for i, name := range names {
		nodes[i] = namehash.NameHash(name)
		result[name] = ""
	}
	resolverAddrs, err := b.resolversOf(ctx, nodes)
	if err != nil {
		return err
	}

	mc := reader.NewMultiCall(b.caller, b.cfg.Multicall)
	for i, name := range names {
		if unscommon.IsZeroAddress(resolverAddrs[i]) {
			continue
		}
		name := name
		mc.RegisterWithHook(new(common.Address), func(ok bool, r interface{}) error {
			addr := *r.(*common.Address)
			if ok && !unscommon.IsZeroAddress(addr) {
				result[name] = addr.Hex()
			}
			return nil
		}, resolverAddrs[i].Hex(), unscommon.GetENSResolverABI(), "addr", nodes[i])
	}
	return mc.Do(ctx)
}

// ReverseResolveMany returns the primary name of every address. Names are
// forward verified with one more batched lookup, unverified ones map to "".
func (b *Resolver) ReverseResolveMany(ctx context.Context, addresses []string) (map[string]string, error) {
	result := make(map[string]string, len(addresses))
	for _, chunk := range chunks(addresses, b.cfg.MaxBatchSize) {
		if err := b.reverseChunk(ctx, chunk, result); err != nil {
			return nil, fmt.Errorf("batch reverse resolving %d addresses: %w", len(addresses), err)
		}
	}

	claimed := []string{}
	for _, name := range result {
		if name != "" {
			claimed = append(claimed, name)
		}
	}
	if len(claimed) == 0 {
		return result, nil
	}
	forward, err := b.ResolveMany(ctx, claimed)
	if err != nil {
		return nil, fmt.Errorf("verifying reverse names: %w", err)
	}
	for addr, name := range result {
		if name == "" {
			continue
		}
		if unscommon.AddressKey(forward[name]) != unscommon.AddressKey(addr) {
			b.l.Debug("Reverse record does not resolve back", "address", addr, "name", name)
			result[addr] = ""
		}
	}
	return result, nil
}

func (b *Resolver) reverseChunk(ctx context.Context, addresses []string, result map[string]string) error {
	nodes := make([]common.Hash, len(addresses))
	for i, addr := range addresses {
		nodes[i] = namehash.ReverseNode(addr)
		result[addr] = ""
	}
	resolverAddrs, err := b.resolversOf(ctx, nodes)
	if err != nil {
		return err
	}

	mc := reader.NewMultiCall(b.caller, b.cfg.Multicall)
	for i, addr := range addresses {
		if unscommon.IsZeroAddress(resolverAddrs[i]) || !unscommon.IsHexAddress(addr) {
			continue
		}
		addr := addr
		mc.RegisterWithHook(new(string), func(ok bool, r interface{}) error {
			if name := *r.(*string); ok && name != "" {
				result[addr] = name
			}
			return nil
		}, resolverAddrs[i].Hex(), unscommon.GetENSResolverABI(), "name", nodes[i])
	}
	return mc.Do(ctx)
}

// FetchRecordsMany reads the text records keys of every name. Unset keys
// are left out of the inner maps.
func (b *Resolver) FetchRecordsMany(ctx context.Context, names []string, keys []string) (map[string]map[string]string, error) {
	result := make(map[string]map[string]string, len(names))
	for _, chunk := range chunks(names, b.cfg.MaxBatchSize) {
		if err := b.recordsChunk(ctx, chunk, keys, result); err != nil {
			return nil, fmt.Errorf("batch fetching records of %d names: %w", len(names), err)
		}
	}
	return result, nil
}

func (b *Resolver) recordsChunk(ctx context.Context, names []string, keys []string, result map[string]map[string]string) error {
	nodes := make([]common.Hash, len(names))
	for i, name := range names {
		nodes[i] = namehash.NameHash(name)
		result[name] = map[string]string{}
	}
	resolverAddrs, err := b.resolversOf(ctx, nodes)
	if err != nil {
		return err
	}

	mc := reader.NewMultiCall(b.caller, b.cfg.Multicall)
	for i, name := range names {
		if unscommon.IsZeroAddress(resolverAddrs[i]) {
			continue
		}
		for _, key := range keys {
			name, key := name, key
			mc.RegisterWithHook(new(string), func(ok bool, r interface{}) error {
				if value := *r.(*string); ok && value != "" {
					result[name][key] = value
				}
				return nil
			}, resolverAddrs[i].Hex(), unscommon.GetENSResolverABI(), "text", nodes[i], key)
		}
	}
	return mc.Do(ctx)
}
