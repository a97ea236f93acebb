// Package nameservice is the single entry point for name resolution. It
// owns the resolver registry, the TLD routing table, the name cache and an
// optional batch resolver.
package nameservice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/log"

	unscommon "github.com/tranvictor/uns/common"
	"github.com/tranvictor/uns/namehash"
	"github.com/tranvictor/uns/resolvers"
	"github.com/tranvictor/uns/util/cache"
)

const (
	DEFAULT_CONCURRENCY = 8

	DefaultIdentityResolverID = resolvers.CiFiID
	IdentitySuffix            = "." + resolvers.CiFiTLD
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrDisposed     = errors.New("name service disposed")
)

// BatchResolver resolves many names of one deployment in few round trips.
// *batch.Resolver implements it.
type BatchResolver interface {
	ResolverID() string
	ChainID() uint64
	CanBatch(name string) bool
	ResolveMany(ctx context.Context, names []string) (map[string]string, error)
}

// Suggester is implemented by resolvers that can complete partial names.
type Suggester interface {
	Suggest(prefix string, limit int) []string
}

type Options struct {
	ChainID  uint64
	CoinType *uint32
	NoCache  bool
}

func (o Options) resolveOptions() resolvers.ResolveOptions {
	return resolvers.ResolveOptions{ChainID: o.ChainID, CoinType: o.CoinType}
}

type Service struct {
	mu         sync.RWMutex
	registry   map[string]resolvers.Resolver
	priority   []string
	tlds       map[string]string
	identityID string

	cache       *cache.NameCache
	batch       BatchResolver
	concurrency int
	disposed    atomic.Bool
	l           log.Logger
}

type Option func(*Service)

func WithBatchResolver(b BatchResolver) Option {
	return func(s *Service) { s.batch = b }
}

func WithIdentityResolverID(id string) Option {
	return func(s *Service) { s.identityID = id }
}

// WithConcurrency bounds how many names ResolveMany resolves at once
// outside the batch path.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithLogger(l log.Logger) Option {
	return func(s *Service) { s.l = l }
}

// New creates an empty service. A nil cache gets a default one.
func New(c *cache.NameCache, opts ...Option) *Service {
	if c == nil {
		c = cache.NewNameCache(cache.DefaultConfig())
	}
	s := &Service{
		registry:    map[string]resolvers.Resolver{},
		tlds:        map[string]string{},
		identityID:  DefaultIdentityResolverID,
		cache:       c,
		concurrency: DEFAULT_CONCURRENCY,
		l:           log.New("component", "nameservice"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterResolver adds or replaces the resolver under id. Without a
// priority a new id is appended and a replaced id keeps its position. With
// a priority the id is moved to that index, clamped to the list bounds.
func (s *Service) RegisterResolver(id string, r resolvers.Resolver, priority ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.registry[id]
	s.registry[id] = r
	if exists && len(priority) == 0 {
		return
	}
	if exists {
		s.priority = removeID(s.priority, id)
	}
	if len(priority) == 0 {
		s.priority = append(s.priority, id)
		return
	}
	idx := priority[0]
	if idx < 0 {
		idx = 0
	}
	if idx > len(s.priority) {
		idx = len(s.priority)
	}
	s.priority = append(s.priority, "")
	copy(s.priority[idx+1:], s.priority[idx:])
	s.priority[idx] = id
}

func removeID(ids []string, id string) []string {
	result := ids[:0]
	for _, existing := range ids {
		if existing != id {
			result = append(result, existing)
		}
	}
	return result
}

// RegisterTLD routes tld to resolverID. The id does not have to be
// registered yet, dispatch skips ids that are missing.
func (s *Service) RegisterTLD(tld, resolverID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tlds[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tld), "."))] = resolverID
}

// Resolvers returns the registered ids in priority order.
func (s *Service) Resolvers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.priority...)
}

func (s *Service) Resolver(id string) (resolvers.Resolver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, found := s.registry[id]
	return r, found
}

func (s *Service) Cache() *cache.NameCache {
	return s.cache
}

type candidate struct {
	id string
	r  resolvers.Resolver
}

func (s *Service) isIdentityName(name string) bool {
	return strings.HasPrefix(name, namehash.IdentityPrefix) || strings.HasSuffix(name, IdentitySuffix)
}

// candidates computes the ordered resolvers to try for a normalized name.
func (s *Service) candidates(name string) []candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := []string{}
	switch {
	case s.isIdentityName(name):
		ids = append(ids, s.identityID)
	default:
		if mapped, found := s.tlds[namehash.TLD(name)]; found {
			ids = append(ids, mapped)
			if s.identityID != mapped {
				ids = append(ids, s.identityID)
			}
		} else {
			ids = append(ids, s.priority...)
		}
	}

	result := make([]candidate, 0, len(ids))
	for _, id := range ids {
		if r, found := s.registry[id]; found {
			result = append(result, candidate{id: id, r: r})
		}
	}
	return result
}

func (s *Service) reverseCandidates() []candidate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []candidate{}
	for _, id := range s.priority {
		if r := s.registry[id]; r != nil && r.SupportsReverse() {
			result = append(result, candidate{id: id, r: r})
		}
	}
	return result
}

func (s *Service) checkAlive() error {
	if s.disposed.Load() {
		return ErrDisposed
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

func (o Options) validate() error {
	if o.ChainID > unscommon.MaxEVMChainID {
		return invalid(fmt.Errorf("chain id %d is larger than %d", o.ChainID, unscommon.MaxEVMChainID))
	}
	return nil
}

func (s *Service) normalize(name string) (string, error) {
	if err := s.checkAlive(); err != nil {
		return "", err
	}
	normalized, err := namehash.Validate(name)
	if err != nil {
		return "", invalid(err)
	}
	return normalized, nil
}

func forwardKey(name string, opts Options) string {
	if opts.ChainID == 0 && opts.CoinType == nil {
		return name
	}
	coin := "-"
	if opts.CoinType != nil {
		coin = fmt.Sprint(*opts.CoinType)
	}
	return fmt.Sprintf("%s|%s|%d", name, coin, opts.ChainID)
}

func reverseKey(address string, chainID uint64) string {
	if chainID == 0 {
		return address
	}
	return fmt.Sprintf("%s|%d", unscommon.AddressKey(address), chainID)
}

// safely runs fn and turns a panic into an error so one misbehaving
// resolver can not take the caller down.
func safely[T any](fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("resolver panicked: %v", r)
		}
	}()
	return fn()
}

// dispatch tries each candidate in order. Errors are logged and treated as
// not found.
func (s *Service) dispatch(ctx context.Context, name string, opts Options) *unscommon.ResolutionResult {
	for _, c := range s.candidates(name) {
		res, err := safely(func() (*unscommon.ResolutionResult, error) {
			return c.r.Resolve(ctx, name, opts.resolveOptions())
		})
		if err != nil {
			s.l.Debug("Resolver failed", "resolver", c.id, "name", name, "err", err)
			continue
		}
		if res != nil {
			if res.ResolverUsed == "" {
				res.ResolverUsed = c.id
			}
			if res.Name == "" {
				res.Name = name
			}
			return res
		}
	}
	return nil
}

func (s *Service) resolveNormalized(ctx context.Context, name string, opts Options) (*unscommon.ResolutionResult, bool) {
	key := forwardKey(name, opts)
	if !opts.NoCache {
		if cached, found := s.cache.GetForward(key); found {
			return &cached, true
		}
	}
	res := s.dispatch(ctx, name, opts)
	if res != nil {
		s.cache.SetForward(key, *res)
	}
	return res, false
}

// Resolve returns the address name points to, or nil when no resolver
// knows it. Only invalid input is an error.
func (s *Service) Resolve(ctx context.Context, name string, opts Options) (*unscommon.ResolutionResult, error) {
	normalized, err := s.normalize(name)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	res, _ := s.resolveNormalized(ctx, normalized, opts)
	return res, nil
}

// ResolveWithMetadata is Resolve plus lookup details in Metadata: the
// normalized name, whether the cache answered, the candidates considered
// and confusable script warnings.
func (s *Service) ResolveWithMetadata(ctx context.Context, name string, opts Options) (*unscommon.ResolutionResult, error) {
	normalized, err := s.normalize(name)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}
	res, cached := s.resolveNormalized(ctx, normalized, opts)
	if res == nil {
		return nil, nil
	}
	out := res.Clone()
	if out.Metadata == nil {
		out.Metadata = map[string]any{}
	}
	ids := []string{}
	for _, c := range s.candidates(normalized) {
		ids = append(ids, c.id)
	}
	out.Metadata["normalizedName"] = normalized
	out.Metadata["cached"] = cached
	out.Metadata["candidates"] = ids
	if scripts := namehash.Scripts(normalized); len(scripts) > 1 {
		out.Metadata["warnings"] = []string{
			fmt.Sprintf("name mixes %s scripts", strings.Join(scripts, ", ")),
		}
	}
	return &out, nil
}

// ReverseResolve asks every reverse capable resolver in priority order.
func (s *Service) ReverseResolve(ctx context.Context, address string, opts Options) (string, error) {
	if err := s.checkAlive(); err != nil {
		return "", err
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return "", invalid(errors.New("empty address"))
	}
	if err := opts.validate(); err != nil {
		return "", err
	}
	key := reverseKey(address, opts.ChainID)
	if !opts.NoCache {
		if name, found := s.cache.GetReverse(key); found {
			return name, nil
		}
	}
	for _, c := range s.reverseCandidates() {
		name, err := safely(func() (string, error) {
			return c.r.ReverseResolve(ctx, address, opts.ChainID)
		})
		if err != nil {
			s.l.Debug("Reverse resolver failed", "resolver", c.id, "address", address, "err", err)
			continue
		}
		if name != "" {
			s.cache.SetReverse(key, name)
			return name, nil
		}
	}
	return "", nil
}

// GetRecords returns the records of the first candidate that knows name.
func (s *Service) GetRecords(ctx context.Context, name string, opts Options) (*unscommon.NameRecords, error) {
	normalized, err := s.normalize(name)
	if err != nil {
		return nil, err
	}
	if !opts.NoCache {
		if cached, found := s.cache.GetRecords(normalized); found {
			return &cached, nil
		}
	}
	for _, c := range s.candidates(normalized) {
		records, err := safely(func() (*unscommon.NameRecords, error) {
			return c.r.GetRecords(ctx, normalized)
		})
		if err != nil {
			s.l.Debug("Records lookup failed", "resolver", c.id, "name", normalized, "err", err)
			continue
		}
		if records != nil {
			s.cache.SetRecords(normalized, *records)
			return records, nil
		}
	}
	return nil, nil
}

// GetText reads one text record. Cached records answer first, then each
// candidate's direct text lookup, then its full records.
func (s *Service) GetText(ctx context.Context, name, key string, opts Options) (string, error) {
	normalized, err := s.normalize(name)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(key) == "" {
		return "", invalid(errors.New("empty text key"))
	}
	if !opts.NoCache {
		if cached, found := s.cache.GetRecords(normalized); found {
			return cached.Texts[key], nil
		}
	}
	for _, c := range s.candidates(normalized) {
		value, err := safely(func() (string, error) {
			if tr, ok := c.r.(resolvers.TextResolver); ok {
				return tr.Text(ctx, normalized, key)
			}
			records, err := c.r.GetRecords(ctx, normalized)
			if err != nil || records == nil {
				return "", err
			}
			return records.Texts[key], nil
		})
		if err != nil {
			s.l.Debug("Text lookup failed", "resolver", c.id, "name", normalized, "key", key, "err", err)
			continue
		}
		if value != "" {
			return value, nil
		}
	}
	return "", nil
}

func (s *Service) GetAvatar(ctx context.Context, name string, opts Options) (string, error) {
	return s.GetText(ctx, name, "avatar", opts)
}

// Suggest collects completions from every resolver that offers them.
func (s *Service) Suggest(prefix string, limit int) []string {
	s.mu.RLock()
	suggesters := []Suggester{}
	for _, id := range s.priority {
		if sg, ok := s.registry[id].(Suggester); ok {
			suggesters = append(suggesters, sg)
		}
	}
	s.mu.RUnlock()

	seen := map[string]bool{}
	result := []string{}
	for _, sg := range suggesters {
		for _, name := range sg.Suggest(prefix, limit) {
			if seen[name] {
				continue
			}
			seen[name] = true
			result = append(result, name)
			if limit > 0 && len(result) >= limit {
				return result
			}
		}
	}
	return result
}

func (s *Service) ClearCache()        { s.cache.Clear() }
func (s *Service) ClearForwardCache() { s.cache.ClearForward() }
func (s *Service) ClearReverseCache() { s.cache.ClearReverse() }
func (s *Service) ClearRecordsCache() { s.cache.ClearRecords() }

func (s *Service) GetCacheStats() cache.Stats {
	return s.cache.Stats()
}

// Dispose stops the cache sweeper and drops every resolver. Later calls
// fail with ErrDisposed.
func (s *Service) Dispose() {
	if s.disposed.Swap(true) {
		return
	}
	s.cache.Close()
	s.cache.Clear()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = map[string]resolvers.Resolver{}
	s.priority = nil
	s.tlds = map[string]string{}
	s.batch = nil
}
