package resolvers

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/util/reader"
)

const (
	UnstoppableID = "unstoppable"

	UNSProxyReaderMainnet = "0x578853aa776Eef10CeE6c4dd2B5862bdcE767A8B"
	UNSProxyReaderPolygon = "0x91EDd8708062bd4233f4Dd0FCE15A7cb4d500091"
)

var UnstoppableTLDs = []string{
	"crypto", "nft", "wallet", "x", "blockchain", "bitcoin",
	"dao", "888", "zil", "polygon", "unstoppable",
}

var unsCoinKeys = map[uint32]string{
	unscommon.CoinTypeETH:        "crypto.ETH.address",
	unscommon.CoinTypeBTC:        "crypto.BTC.address",
	unscommon.CoinTypeSOL:        "crypto.SOL.address",
	unscommon.EVMCoinType(137):   "crypto.MATIC.version.MATIC.address",
	unscommon.EVMCoinType(56):    "crypto.BNB.version.BEP20.address",
	unscommon.EVMCoinType(42161): "crypto.ETH.version.ARBITRUM.address",
	unscommon.EVMCoinType(8453):  "crypto.ETH.version.BASE.address",
	unscommon.EVMCoinType(10):    "crypto.ETH.version.OPTIMISM.address",
}

// record keys UNS stores for the ENS style text keys we expose
var unsTextKeys = map[string]string{
	"avatar":       "social.picture.value",
	"url":          "browser.redirect_url",
	"email":        "whois.email.value",
	"com.twitter":  "social.twitter.username",
	"com.discord":  "social.discord.username",
	"com.github":   "social.github.username",
	"org.telegram": "social.telegram.username",
}

// UNSDeployment is one ProxyReader contract on one chain.
type UNSDeployment struct {
	ChainID     uint64
	ProxyReader string
	Caller      reader.ContractCaller
}

// UnstoppableResolver reads Unstoppable Domains records. The token id of a
// name is its namehash. Deployments are tried in order, the first one
// where the name has an owner answers.
type UnstoppableResolver struct {
	deployments []UNSDeployment
	tlds        []string
}

func NewUnstoppableResolver(tlds []string, deployments ...UNSDeployment) *UnstoppableResolver {
	if len(tlds) == 0 {
		tlds = UnstoppableTLDs
	}
	return &UnstoppableResolver{deployments: deployments, tlds: tlds}
}

func NewUnstoppable(mainnet, polygon reader.ContractCaller) *UnstoppableResolver {
	return NewUnstoppableResolver(
		UnstoppableTLDs,
		UNSDeployment{ChainID: networks.EthereumMainnet.GetChainID(), ProxyReader: UNSProxyReaderMainnet, Caller: mainnet},
		UNSDeployment{ChainID: networks.Matic.GetChainID(), ProxyReader: UNSProxyReaderPolygon, Caller: polygon},
	)
}

func (r *UnstoppableResolver) ID() string              { return UnstoppableID }
func (r *UnstoppableResolver) SupportedTLDs() []string { return r.tlds }
func (r *UnstoppableResolver) SupportsReverse() bool   { return true }

func (r *UnstoppableResolver) SupportedChainIDs() []uint64 {
	result := []uint64{}
	for _, d := range r.deployments {
		result = append(result, d.ChainID)
	}
	return result
}

func (r *UnstoppableResolver) CanResolve(name string) bool {
	return hasTLD(name, r.tlds)
}

type unsData struct {
	Resolver common.Address
	Owner    common.Address
	Values   []string
}

// getData returns the deployment holding the name and its values for keys,
// or a nil deployment when no deployment knows the name.
func (r *UnstoppableResolver) getData(ctx context.Context, name string, keys []string) (*UNSDeployment, *unsData, error) {
	tokenID := new(big.Int).SetBytes(namehash.NameHash(name).Bytes())
	errs := []error{}
	for i := range r.deployments {
		d := &r.deployments[i]
		data := &unsData{}
		err := reader.ReadContract(ctx, d.Caller, data, d.ProxyReader, unscommon.GetUNSProxyReaderABI(), "getData", keys, tokenID)
		if errors.Is(err, reader.ErrEmptyResult) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("chain %d: %w", d.ChainID, err))
			continue
		}
		if unscommon.IsZeroAddress(data.Owner) {
			continue
		}
		return d, data, nil
	}
	return nil, nil, errors.Join(errs...)
}

func (r *UnstoppableResolver) Resolve(ctx context.Context, name string, opts ResolveOptions) (*unscommon.ResolutionResult, error) {
	name = namehash.Fold(name)
	coinType := opts.CoinTypeOf()
	key, known := unsCoinKeys[coinType]
	if !known {
		if !isEVMCoin(coinType) {
			return nil, nil
		}
		key = unsCoinKeys[unscommon.CoinTypeETH]
	}
	keys := []string{key}
	if isEVMCoin(coinType) && key != unsCoinKeys[unscommon.CoinTypeETH] {
		keys = append(keys, unsCoinKeys[unscommon.CoinTypeETH])
	}

	d, data, err := r.getData(ctx, name, keys)
	if err != nil {
		return nil, fmt.Errorf("reading uns records of %s: %w", name, err)
	}
	if d == nil {
		return nil, nil
	}
	addr := ""
	for _, v := range data.Values {
		if !isEmptyAddress(v) {
			addr = v
			break
		}
	}
	if addr == "" {
		return nil, nil
	}
	chainID := opts.ChainID
	if chainID == 0 {
		chainID = d.ChainID
	}
	return &unscommon.ResolutionResult{
		Address:      addr,
		ResolverUsed: UnstoppableID,
		Name:         name,
		ChainID:      chainID,
		Metadata: map[string]any{
			"owner":         data.Owner.Hex(),
			"resolver":      data.Resolver.Hex(),
			"registryChain": d.ChainID,
		},
	}, nil
}

func (r *UnstoppableResolver) ReverseResolve(ctx context.Context, address string, chainID uint64) (string, error) {
	if !unscommon.IsHexAddress(address) {
		return "", nil
	}
	errs := []error{}
	for _, d := range r.deployments {
		if chainID != 0 && d.ChainID != chainID {
			continue
		}
		var name string
		err := reader.ReadContract(ctx, d.Caller, &name, d.ProxyReader, unscommon.GetUNSProxyReaderABI(), "reverseNameOf", unscommon.HexToAddress(address))
		if errors.Is(err, reader.ErrEmptyResult) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("chain %d: %w", d.ChainID, err))
			continue
		}
		if name != "" {
			return name, nil
		}
	}
	return "", errors.Join(errs...)
}

func (r *UnstoppableResolver) GetRecords(ctx context.Context, name string) (*unscommon.NameRecords, error) {
	name = namehash.Fold(name)
	coins := make([]uint32, 0, len(DefaultRecordCoins))
	keys := []string{}
	for _, coin := range DefaultRecordCoins {
		coins = append(coins, coin)
		keys = append(keys, unsCoinKeys[coin])
	}
	textKeys := []string{}
	for _, key := range DefaultTextKeys {
		if unsKey, ok := unsTextKeys[key]; ok {
			textKeys = append(textKeys, key)
			keys = append(keys, unsKey)
		}
	}

	d, data, err := r.getData(ctx, name, keys)
	if err != nil {
		return nil, fmt.Errorf("reading uns records of %s: %w", name, err)
	}
	if d == nil {
		return nil, nil
	}
	if len(data.Values) != len(keys) {
		return nil, fmt.Errorf("uns returned %d values for %d keys", len(data.Values), len(keys))
	}
	records := unscommon.NewNameRecords()
	records.Owner = data.Owner.Hex()
	if !unscommon.IsZeroAddress(data.Resolver) {
		records.Resolver = data.Resolver.Hex()
	}
	for i, coin := range coins {
		if v := data.Values[i]; !isEmptyAddress(v) {
			records.Addresses[coin] = v
		}
	}
	for i, key := range textKeys {
		if v := data.Values[len(coins)+i]; v != "" {
			records.Texts[key] = v
		}
	}
	records.Avatar = records.Texts["avatar"]
	return records, nil
}

func (r *UnstoppableResolver) Text(ctx context.Context, name, key string) (string, error) {
	unsKey, ok := unsTextKeys[key]
	if !ok {
		unsKey = key
	}
	d, data, err := r.getData(ctx, namehash.Fold(name), []string{unsKey})
	if err != nil || d == nil || len(data.Values) == 0 {
		return "", err
	}
	return data.Values[0], nil
}
