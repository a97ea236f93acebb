package resolvers

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/util/reader"
)

const (
	ENSID = "ens"

	ENSRegistryAddress      = "0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e"
	ENSBaseRegistrarAddress = "0x57f1887a8BF19b14fC0dF6Fd9B2acc9Af147eA85"
)

// ENSConfig describes one ENS style deployment: a registry mapping
// namehashes to resolver contracts that answer addr/name/text.
type ENSConfig struct {
	ID       string
	TLDs     []string
	ChainIDs []uint64
	Registry string
	// BaseRegistrar is optional, it enables Expiry for second level names.
	BaseRegistrar string
	Multicall     string
	// VerifyReverse requires a reverse record to resolve back to the
	// address it was read for.
	VerifyReverse bool
	TextKeys      []string
}

func DefaultENSConfig() ENSConfig {
	return ENSConfig{
		ID:            ENSID,
		TLDs:          []string{"eth"},
		ChainIDs:      []uint64{1},
		Registry:      ENSRegistryAddress,
		BaseRegistrar: ENSBaseRegistrarAddress,
		Multicall:     networks.Multicall3Address.Hex(),
		VerifyReverse: true,
		TextKeys:      DefaultTextKeys,
	}
}

type ENSResolver struct {
	cfg    ENSConfig
	caller reader.ContractCaller
	l      log.Logger
}

func NewENSResolver(caller reader.ContractCaller, cfg ENSConfig) *ENSResolver {
	if cfg.Multicall == "" {
		cfg.Multicall = networks.Multicall3Address.Hex()
	}
	if cfg.TextKeys == nil {
		cfg.TextKeys = DefaultTextKeys
	}
	return &ENSResolver{
		cfg:    cfg,
		caller: caller,
		l:      log.New("component", "resolver", "resolver", cfg.ID),
	}
}

// NewENS returns the mainnet ENS resolver.
func NewENS(caller reader.ContractCaller) *ENSResolver {
	return NewENSResolver(caller, DefaultENSConfig())
}

func (r *ENSResolver) ID() string                  { return r.cfg.ID }
func (r *ENSResolver) SupportedTLDs() []string     { return r.cfg.TLDs }
func (r *ENSResolver) SupportedChainIDs() []uint64 { return r.cfg.ChainIDs }
func (r *ENSResolver) SupportsReverse() bool       { return true }

func (r *ENSResolver) CanResolve(name string) bool {
	return hasTLD(name, r.cfg.TLDs)
}

func (r *ENSResolver) Registry() string              { return r.cfg.Registry }
func (r *ENSResolver) MulticallAddress() string      { return r.cfg.Multicall }
func (r *ENSResolver) Caller() reader.ContractCaller { return r.caller }

func (r *ENSResolver) homeChain() uint64 {
	if len(r.cfg.ChainIDs) == 0 {
		return 1
	}
	return r.cfg.ChainIDs[0]
}

// resolverOf returns the zero address when no resolver is set.
func (r *ENSResolver) resolverOf(ctx context.Context, node common.Hash) (common.Address, error) {
	var resolver common.Address
	err := reader.ReadContract(ctx, r.caller, &resolver, r.cfg.Registry, unscommon.GetENSRegistryABI(), "resolver", node)
	if errors.Is(err, reader.ErrEmptyResult) {
		return common.Address{}, nil
	}
	return resolver, err
}

func (r *ENSResolver) addr(ctx context.Context, resolver common.Address, node common.Hash, coinType uint32) (string, error) {
	if coinType == unscommon.CoinTypeETH {
		var addr common.Address
		err := reader.ReadContract(ctx, r.caller, &addr, resolver.Hex(), unscommon.GetENSResolverABI(), "addr", node)
		if errors.Is(err, reader.ErrEmptyResult) {
			return "", nil
		}
		if err != nil {
			return "", err
		}
		if unscommon.IsZeroAddress(addr) {
			return "", nil
		}
		return addr.Hex(), nil
	}
	var raw []byte
	err := reader.ReadContract(ctx, r.caller, &raw, resolver.Hex(), unscommon.GetMultiCoinResolverABI(), "addr", node, new(big.Int).SetUint64(uint64(coinType)))
	if errors.Is(err, reader.ErrEmptyResult) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return FormatAddress(coinType, raw)
}

func (r *ENSResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	name = namehash.Fold(name)
	node := namehash.NameHash(name)
	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("reading resolver of %s: %w", name, err)
	}
	if unscommon.IsZeroAddress(resolver) {
		return nil, nil
	}

	coinType := opts.CoinTypeOf()
	addr, err := r.addr(ctx, resolver, node, coinType)
	if err != nil {
		return nil, fmt.Errorf("reading addr of %s: %w", name, err)
	}
	if addr == "" && opts.CoinType == nil && coinType != unscommon.CoinTypeETH {
		// most names only set the ETH address, which is valid on every EVM chain
		addr, err = r.addr(ctx, resolver, node, unscommon.CoinTypeETH)
		if err != nil {
			return nil, fmt.Errorf("reading addr of %s: %w", name, err)
		}
	}
	if addr == "" {
		return nil, nil
	}

	chainID := opts.ChainID
	if chainID == 0 {
		chainID = r.homeChain()
	}
	return &unscommon.ResolutionResult{
		Address:      addr,
		ResolverUsed: r.cfg.ID,
		Name:         name,
		ChainID:      chainID,
		Metadata: map[string]any{
			"node":     node.Hex(),
			"resolver": resolver.Hex(),
			"coinType": coinType,
		},
	}, nil
}

func (r *ENSResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	if !unscommon.IsHexAddress(address) {
		return "", nil
	}
	node := namehash.ReverseNode(address)
	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return "", fmt.Errorf("reading reverse resolver of %s: %w", address, err)
	}
	if unscommon.IsZeroAddress(resolver) {
		return "", nil
	}
	var name string
	err = reader.ReadContract(ctx, r.caller, &name, resolver.Hex(), unscommon.GetENSResolverABI(), "name", node)
	if errors.Is(err, reader.ErrEmptyResult) || name == "" {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading reverse name of %s: %w", address, err)
	}
	if !r.cfg.VerifyReverse {
		return name, nil
	}
	forward, err := r.Resolve(ctx, name, ResolveOptions{})
	if err != nil {
		return "", fmt.Errorf("verifying reverse name %s: %w", name, err)
	}
	if forward == nil || !sameAddress(forward.Address, address) {
		r.l.Debug("Reverse record does not resolve back", "address", address, "name", name)
		return "", nil
	}
	return name, nil
}

func (r *ENSResolver) Text(ctx context.Context, name, key string) (string, error) {
	node := namehash.NameHash(name)
	resolver, err := r.resolverOf(ctx, node)
	if err != nil {
		return "", fmt.Errorf("reading resolver of %s: %w", name, err)
	}
	if unscommon.IsZeroAddress(resolver) {
		return "", nil
	}
	var value string
	err = reader.ReadContract(ctx, r.caller, &value, resolver.Hex(), unscommon.GetENSResolverABI(), "text", node, key)
	if errors.Is(err, reader.ErrEmptyResult) {
		return "", nil
	}
	return value, err
}

// GetRecords reads owner and resolver in one multicall, then every default
// address and text record in a second one.
func (r *ENSResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	name = namehash.Fold(name)
	node := namehash.NameHash(name)

	var resolver, owner common.Address
	mc := reader.NewMultiCall(r.caller, r.cfg.Multicall)
	mc.Register(&resolver, r.cfg.Registry, unscommon.GetENSRegistryABI(), "resolver", node)
	mc.Register(&owner, r.cfg.Registry, unscommon.GetENSRegistryABI(), "owner", node)
	if err := mc.Do(ctx); err != nil {
		return nil, fmt.Errorf("reading registry records of %s: %w", name, err)
	}
	if unscommon.IsZeroAddress(resolver) && unscommon.IsZeroAddress(owner) {
		return nil, nil
	}

	records := unscommon.NewNameRecords()
	if !unscommon.IsZeroAddress(owner) {
		records.Owner = owner.Hex()
	}
	if unscommon.IsZeroAddress(resolver) {
		return records, nil
	}
	records.Resolver = resolver.Hex()

	mc = reader.NewMultiCall(r.caller, r.cfg.Multicall)
	for _, coin := range DefaultRecordCoins {
		coin := coin
		if coin == unscommon.CoinTypeETH {
			mc.RegisterWithHook(new(common.Address), func(ok bool, result interface{}) error {
				addr := *result.(*common.Address)
				if ok && !unscommon.IsZeroAddress(addr) {
					records.Addresses[coin] = addr.Hex()
				}
				return nil
			}, resolver.Hex(), unscommon.GetENSResolverABI(), "addr", node)
			continue
		}
		mc.RegisterWithHook(new([]byte), func(ok bool, result interface{}) error {
			if !ok {
				return nil
			}
			formatted, err := FormatAddress(coin, *result.(*[]byte))
			if err != nil {
				r.l.Debug("Skipping malformed address record", "name", name, "coin", coin, "err", err)
				return nil
			}
			if formatted != "" {
				records.Addresses[coin] = formatted
			}
			return nil
		}, resolver.Hex(), unscommon.GetMultiCoinResolverABI(), "addr", node, new(big.Int).SetUint64(uint64(coin)))
	}
	for _, key := range r.cfg.TextKeys {
		key := key
		mc.RegisterWithHook(new(string), func(ok bool, result interface{}) error {
			if value := *result.(*string); ok && value != "" {
				records.Texts[key] = value
			}
			return nil
		}, resolver.Hex(), unscommon.GetENSResolverABI(), "text", node, key)
	}
	if err := mc.Do(ctx); err != nil {
		return nil, fmt.Errorf("reading resolver records of %s: %w", name, err)
	}
	records.Avatar = records.Texts["avatar"]
	return records, nil
}

// Expiry reads the registration expiry of a second level name from the
// base registrar. A zero time means the expiry is unknown.
func (r *ENSResolver) Expiry(ctx context.Context, name string) (time.Time, error) {
	if r.cfg.BaseRegistrar == "" {
		return time.Time{}, nil
	}
	labels := namehash.Labels(namehash.Fold(name))
	if len(labels) != 2 || !hasTLD(name, r.cfg.TLDs) {
		return time.Time{}, nil
	}
	id := new(big.Int).SetBytes(namehash.LabelHash(labels[0]).Bytes())
	var expires *big.Int
	err := reader.ReadContract(ctx, r.caller, &expires, r.cfg.BaseRegistrar, unscommon.GetBaseRegistrarABI(), "nameExpires", id)
	if errors.Is(err, reader.ErrEmptyResult) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading expiry of %s: %w", name, err)
	}
	if expires == nil || expires.Sign() == 0 {
		return time.Time{}, nil
	}
	return time.Unix(expires.Int64(), 0).UTC(), nil
}
