package nameservice

import (
	"context"
	"fmt"
	"net/http"
	"sort"

	"github.com/ethereum/go-ethereum/log"

	"github.com/tranvictor/uns/batch"
	"github.com/tranvictor/uns/config"
	"github.com/tranvictor/uns/db"
	"github.com/tranvictor/uns/networks"
	"github.com/tranvictor/uns/resolvers"
	"github.com/tranvictor/uns/util/cache"
	"github.com/tranvictor/uns/util/reader"
)

// readers shares one EthReader per network among the resolvers.
type readers map[uint64]*reader.EthReader

func (rs readers) of(network networks.Network) *reader.EthReader {
	if r, found := rs[network.GetChainID()]; found {
		return r
	}
	r := reader.NewEthReader(network)
	rs[network.GetChainID()] = r
	return r
}

func cacheConfig(cfg config.CacheConfig) cache.Config {
	return cache.Config{
		MaxSize:         cfg.MaxSize,
		ForwardTTL:      cfg.ForwardTTL.Std(),
		ReverseTTL:      cfg.ReverseTTL.Std(),
		RecordsTTL:      cfg.RecordsTTL.Std(),
		CleanupInterval: cfg.CleanupInterval.Std(),
	}
}

// BuildResolvers constructs every enabled resolver, keyed by id.
func BuildResolvers(ctx context.Context, cfg config.ResolversConfig) (map[string]resolvers.Resolver, *resolvers.ENSResolver, error) {
	rs := readers{}
	result := map[string]resolvers.Resolver{}
	var ens *resolvers.ENSResolver

	if cfg.ENS.Enabled {
		network, err := networks.GetNetwork(cfg.ENS.Network)
		if err != nil {
			return nil, nil, fmt.Errorf("ens network: %w", err)
		}
		ensCfg := resolvers.DefaultENSConfig()
		ensCfg.ChainIDs = []uint64{network.GetChainID()}
		ensCfg.Multicall = network.MultiCallContract()
		if cfg.ENS.Registry != "" {
			ensCfg.Registry = cfg.ENS.Registry
		}
		if cfg.ENS.BaseRegistrar != "" {
			ensCfg.BaseRegistrar = cfg.ENS.BaseRegistrar
		}
		ens = resolvers.NewENSResolver(rs.of(network), ensCfg)
		result[resolvers.ENSID] = ens
	}

	if cfg.SpaceID.Enabled {
		deployments := map[string]*resolvers.ENSResolver{}
		add := func(tld, registry string, network networks.Network) {
			if registry == "" {
				return
			}
			deployments[tld] = resolvers.NewENSResolver(rs.of(network), resolvers.ENSConfig{
				ID:            resolvers.SpaceIDID,
				TLDs:          []string{tld},
				ChainIDs:      []uint64{network.GetChainID()},
				Registry:      registry,
				Multicall:     network.MultiCallContract(),
				VerifyReverse: true,
			})
		}
		add("bnb", cfg.SpaceID.BSCRegistry, networks.BSCMainnet)
		add("arb", cfg.SpaceID.ArbitrumRegistry, networks.ArbitrumMainnet)
		result[resolvers.SpaceIDID] = resolvers.NewSpaceIDResolver(deployments)
	}

	if cfg.Unstoppable.Enabled {
		deployments := []resolvers.UNSDeployment{}
		if cfg.Unstoppable.MainnetProxyReader != "" {
			deployments = append(deployments, resolvers.UNSDeployment{
				ChainID:     networks.EthereumMainnet.GetChainID(),
				ProxyReader: cfg.Unstoppable.MainnetProxyReader,
				Caller:      rs.of(networks.EthereumMainnet),
			})
		}
		if cfg.Unstoppable.PolygonProxyReader != "" {
			deployments = append(deployments, resolvers.UNSDeployment{
				ChainID:     networks.Matic.GetChainID(),
				ProxyReader: cfg.Unstoppable.PolygonProxyReader,
				Caller:      rs.of(networks.Matic),
			})
		}
		result[resolvers.UnstoppableID] = resolvers.NewUnstoppableResolver(resolvers.UnstoppableTLDs, deployments...)
	}

	client := &http.Client{Timeout: resolvers.HTTP_TIMEOUT}

	if cfg.CiFi.Enabled {
		result[resolvers.CiFiID] = resolvers.NewCiFiResolver(
			resolvers.NewHTTPIdentityClient(cfg.CiFi.APIURL, client, cfg.CiFi.RateLimit),
		)
	}

	if cfg.SNS.Enabled {
		result[resolvers.SNSID] = resolvers.NewSNSResolver(cfg.SNS.ProxyURL, client, cfg.SNS.RateLimit)
	}

	if cfg.SuiNS.Enabled {
		suins, err := resolvers.DialSuiNS(ctx, cfg.SuiNS.RPCURL)
		if err != nil {
			return nil, nil, fmt.Errorf("suins: %w", err)
		}
		result[resolvers.SuiNSID] = suins
	}

	if cfg.Custom.Enabled {
		book, err := db.LoadAddressBook(cfg.Custom.File)
		if err != nil {
			return nil, nil, fmt.Errorf("address book: %w", err)
		}
		result[resolvers.CustomID] = resolvers.NewCustomResolver(resolvers.CustomID, book, cfg.Custom.TLDs...)
	}
	return result, ens, nil
}

// NewFromConfig builds a ready to use service: enabled resolvers registered
// in cfg.Priority order, their TLDs routed to them, the ENS batch resolver
// when batching is on and a started cache.
func NewFromConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Service, error) {
	built, ens, err := BuildResolvers(ctx, cfg.Resolvers)
	if err != nil {
		return nil, err
	}
	if cfg.Batch.Enabled && ens != nil {
		opts = append([]Option{WithBatchResolver(batch.NewForENS(ens, cfg.Batch.MaxBatchSize))}, opts...)
	}

	c := cache.NewNameCache(cacheConfig(cfg.Cache))
	s := New(c, opts...)

	ordered := []string{}
	seen := map[string]bool{}
	for _, id := range cfg.Priority {
		if seen[id] {
			continue
		}
		seen[id] = true
		if _, found := built[id]; !found {
			s.l.Debug("Priority names a resolver that is not enabled", "resolver", id)
			continue
		}
		ordered = append(ordered, id)
	}
	for _, id := range sortedIDs(built) {
		if !seen[id] {
			ordered = append(ordered, id)
		}
	}

	for _, id := range ordered {
		r := built[id]
		s.RegisterResolver(id, r)
		for _, tld := range r.SupportedTLDs() {
			if _, taken := s.routeOf(tld); !taken {
				s.RegisterTLD(tld, id)
			}
		}
	}
	c.Start()
	log.Debug("Name service ready", "resolvers", ordered, "batch", cfg.Batch.Enabled && ens != nil)
	return s, nil
}

func (s *Service) routeOf(tld string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, found := s.tlds[tld]
	return id, found
}

func sortedIDs(m map[string]resolvers.Resolver) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
